package handler

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/josswuzhur/cloud-notes-app/dto"
	"github.com/josswuzhur/cloud-notes-app/middleware"
	"github.com/josswuzhur/cloud-notes-app/repository"
	"github.com/josswuzhur/cloud-notes-app/stream"
	"github.com/josswuzhur/cloud-notes-app/usecase"
	"github.com/josswuzhur/cloud-notes-app/utils"

	"github.com/gin-gonic/gin"
)

type NoteHandler struct {
	Service *usecase.NoteService
	Source  stream.Store
}

func NewNoteHandler(service *usecase.NoteService, source stream.Store) *NoteHandler {
	return &NoteHandler{
		Service: service,
		Source:  source,
	}
}

// CreateNote handles POST /notes. The response carries the canonical created
// record; connected clients still learn about it through the push channel.
func (h *NoteHandler) CreateNote(c *gin.Context) {
	var req dto.CreateNoteRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.BadRequest(c, "note text is required")
		return
	}

	userID := c.GetString("user_id")
	note, err := h.Service.CreateNote(c.Request.Context(), userID, req.Text)
	if err != nil {
		h.writeError(c, err)
		return
	}

	middleware.TrackNoteOperation("create")
	c.JSON(http.StatusCreated, dto.ToNoteResponse(note))
}

// UpdateNote handles PUT /notes/:id. Only the text mutates.
func (h *NoteHandler) UpdateNote(c *gin.Context) {
	var req dto.UpdateNoteRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.BadRequest(c, "note text is required")
		return
	}

	noteID := c.Param("id")
	userID := c.GetString("user_id")

	note, err := h.Service.UpdateNote(c.Request.Context(), noteID, userID, req.Text)
	if err != nil {
		h.writeError(c, err)
		return
	}

	middleware.TrackNoteOperation("update")
	c.JSON(http.StatusOK, dto.ToNoteResponse(note))
}

// DeleteNote handles DELETE /notes/:id. Idempotent: 204 whether or not the
// id still existed.
func (h *NoteHandler) DeleteNote(c *gin.Context) {
	noteID := c.Param("id")
	userID := c.GetString("user_id")

	if err := h.Service.DeleteNote(c.Request.Context(), noteID, userID); err != nil {
		h.writeError(c, err)
		return
	}

	middleware.TrackNoteOperation("delete")
	utils.NoContent(c)
}

// writeError maps validation failures to 400 and store failures, including
// update targets that do not exist, to 500.
func (h *NoteHandler) writeError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, usecase.ErrEmptyText),
		errors.Is(err, usecase.ErrTextTooLong),
		errors.Is(err, usecase.ErrNoteLimit):
		middleware.TrackError("validation")
		utils.BadRequest(c, err.Error())
	case errors.Is(err, repository.ErrNoteNotFound):
		middleware.TrackError("db")
		utils.InternalError(c, err.Error())
	default:
		slog.Error("store operation failed",
			"request_id", middleware.RequestID(c), "error", err)
		middleware.TrackError("db")
		utils.InternalError(c, "store operation failed")
	}
}
