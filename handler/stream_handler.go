package handler

import (
	"log/slog"

	"github.com/josswuzhur/cloud-notes-app/dto"
	"github.com/josswuzhur/cloud-notes-app/middleware"
	"github.com/josswuzhur/cloud-notes-app/stream"
	"github.com/josswuzhur/cloud-notes-app/utils"

	"github.com/gin-contrib/sse"
	"github.com/gin-gonic/gin"
)

// StreamNotes handles GET /notes: a long-lived server-sent event stream that
// delivers the user's complete ordered collection on connect and again after
// every store change. The live query is bound to the request context, so a
// client disconnect cancels the feed; the deferred Close covers the error
// paths. Between them the store subscription is released exactly once.
func (h *NoteHandler) StreamNotes(c *gin.Context) {
	userID := c.GetString("user_id")

	requestID := middleware.RequestID(c)

	lq, err := stream.Open(c.Request.Context(), h.Source, userID)
	if err != nil {
		slog.Error("failed to open live query",
			"request_id", requestID, "user_id", userID, "error", err)
		middleware.ChangeFeedErrorsTotal.Inc()
		utils.InternalError(c, "failed to subscribe to notes")
		return
	}
	defer lq.Close()

	browser, os, device := utils.ParseUserAgent(c.Request.UserAgent())
	slog.Info("push channel opened",
		"request_id", requestID,
		"user_id", userID,
		"client", browser+" on "+os+" ("+device+")",
	)

	c.Writer.Header().Set("Content-Type", "text/event-stream")
	c.Writer.Header().Set("Cache-Control", "no-cache")
	c.Writer.Header().Set("Connection", "keep-alive")
	c.Writer.Header().Set("X-Accel-Buffering", "no")

	middleware.OpenPushChannels.Inc()
	defer middleware.OpenPushChannels.Dec()

	clientGone := c.Request.Context().Done()
	for {
		select {
		case <-clientGone:
			slog.Debug("push channel client disconnected",
				"request_id", requestID, "user_id", userID)
			return
		case notes, ok := <-lq.Snapshots():
			if !ok {
				if err := lq.Err(); err != nil {
					slog.Error("change feed terminated",
						"request_id", requestID, "user_id", userID, "error", err)
					middleware.ChangeFeedErrorsTotal.Inc()
				}
				return
			}
			if err := sse.Encode(c.Writer, sse.Event{Data: dto.ToSnapshot(notes)}); err != nil {
				// Treat a failed write as a disconnect.
				slog.Debug("push channel write failed",
					"request_id", requestID, "user_id", userID, "error", err)
				return
			}
			c.Writer.Flush()
			middleware.SnapshotsPushedTotal.Inc()
		}
	}
}
