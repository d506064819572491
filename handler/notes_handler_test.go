package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/josswuzhur/cloud-notes-app/client"
	"github.com/josswuzhur/cloud-notes-app/dto"
	"github.com/josswuzhur/cloud-notes-app/usecase"
	"github.com/josswuzhur/cloud-notes-app/utils"

	"github.com/gin-gonic/gin"
)

func init() {
	gin.SetMode(gin.TestMode)
	utils.InitValidator()
}

const testUser = "test-user"

func newTestRouter(store *memStore) *gin.Engine {
	router := gin.New()
	// Stand-in for the identity middleware: every request belongs to the
	// same test user.
	router.Use(func(c *gin.Context) {
		c.Set("user_id", testUser)
		c.Next()
	})

	h := NewNoteHandler(&usecase.NoteService{NotesRepo: store}, store)
	router.GET("/notes", h.StreamNotes)
	router.POST("/notes", h.CreateNote)
	router.PUT("/notes/:id", h.UpdateNote)
	router.DELETE("/notes/:id", h.DeleteNote)
	return router
}

func newTestServer(t *testing.T) (*httptest.Server, *memStore) {
	t.Helper()
	store := newMemStore()
	srv := httptest.NewServer(newTestRouter(store))
	t.Cleanup(srv.Close)
	return srv, store
}

// waitForSnapshot reads updates until cond holds, tolerating duplicate or
// intermediate snapshots along the way.
func waitForSnapshot(t *testing.T, sub *client.Subscription, cond func([]dto.NoteResponse) bool) []dto.NoteResponse {
	t.Helper()
	deadline := time.After(5 * time.Second)
	for {
		select {
		case notes, ok := <-sub.Updates():
			if !ok {
				t.Fatalf("subscription ended early: %v", sub.Err())
			}
			if cond(notes) {
				return notes
			}
		case <-deadline:
			t.Fatal("timed out waiting for matching snapshot")
		}
	}
}

func waitForUnsubscribes(t *testing.T, store *memStore, want int32) {
	t.Helper()
	deadline := time.Now().Add(5 * time.Second)
	for time.Now().Before(deadline) {
		if store.unsubscribes.Load() == want {
			return
		}
		time.Sleep(10 * time.Millisecond)
	}
	t.Fatalf("expected %d unsubscribes, got %d", want, store.unsubscribes.Load())
}

func TestCreateNoteHandler(t *testing.T) {
	tests := []struct {
		name       string
		body       string
		wantStatus int
		wantStored int
	}{
		{
			name:       "valid text",
			body:       `{"text": "buy milk"}`,
			wantStatus: http.StatusCreated,
			wantStored: 1,
		},
		{
			name:       "empty text",
			body:       `{"text": ""}`,
			wantStatus: http.StatusBadRequest,
		},
		{
			name:       "whitespace-only text",
			body:       `{"text": "   "}`,
			wantStatus: http.StatusBadRequest,
		},
		{
			name:       "missing text field",
			body:       `{}`,
			wantStatus: http.StatusBadRequest,
		},
		{
			name:       "malformed json",
			body:       `{"text":`,
			wantStatus: http.StatusBadRequest,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			store := newMemStore()
			router := newTestRouter(store)

			w := httptest.NewRecorder()
			req := httptest.NewRequest(http.MethodPost, "/notes", bytes.NewBufferString(tt.body))
			req.Header.Set("Content-Type", "application/json")
			router.ServeHTTP(w, req)

			if w.Code != tt.wantStatus {
				t.Fatalf("expected status %d, got %d (%s)", tt.wantStatus, w.Code, w.Body.String())
			}

			count, _ := store.CountUserNotes(context.Background(), testUser)
			if count != tt.wantStored {
				t.Errorf("expected %d stored notes, got %d", tt.wantStored, count)
			}

			if tt.wantStatus != http.StatusCreated {
				return
			}
			var resp dto.NoteResponse
			if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
				t.Fatalf("failed to parse response: %v", err)
			}
			if resp.ID == "" {
				t.Error("created note response has no id")
			}
			if resp.Text != "buy milk" {
				t.Errorf("expected text %q, got %q", "buy milk", resp.Text)
			}
			if resp.Date == "" || resp.CreatedAt == 0 {
				t.Errorf("response missing date fields: %+v", resp)
			}
		})
	}
}

func TestUpdateNoteHandler(t *testing.T) {
	store := newMemStore()
	router := newTestRouter(store)

	created, err := (&usecase.NoteService{NotesRepo: store}).CreateNote(context.Background(), testUser, "original")
	if err != nil {
		t.Fatalf("seed create failed: %v", err)
	}

	tests := []struct {
		name       string
		noteID     string
		body       string
		wantStatus int
	}{
		{
			name:       "valid update",
			noteID:     created.ID,
			body:       `{"text": "changed"}`,
			wantStatus: http.StatusOK,
		},
		{
			name:       "empty text is a client error",
			noteID:     created.ID,
			body:       `{"text": ""}`,
			wantStatus: http.StatusBadRequest,
		},
		{
			name:       "unknown id is a server error",
			noteID:     "does-not-exist",
			body:       `{"text": "changed"}`,
			wantStatus: http.StatusInternalServerError,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := httptest.NewRecorder()
			req := httptest.NewRequest(http.MethodPut, "/notes/"+tt.noteID, bytes.NewBufferString(tt.body))
			req.Header.Set("Content-Type", "application/json")
			router.ServeHTTP(w, req)

			if w.Code != tt.wantStatus {
				t.Fatalf("expected status %d, got %d (%s)", tt.wantStatus, w.Code, w.Body.String())
			}
			if tt.wantStatus != http.StatusOK {
				return
			}
			var resp dto.NoteResponse
			if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
				t.Fatalf("failed to parse response: %v", err)
			}
			if resp.ID != created.ID {
				t.Errorf("id changed across update: %q -> %q", created.ID, resp.ID)
			}
			if resp.Text != "changed" {
				t.Errorf("expected text %q, got %q", "changed", resp.Text)
			}
		})
	}
}

func TestDeleteNoteHandlerIsIdempotent(t *testing.T) {
	store := newMemStore()
	router := newTestRouter(store)

	created, err := (&usecase.NoteService{NotesRepo: store}).CreateNote(context.Background(), testUser, "to delete")
	if err != nil {
		t.Fatalf("seed create failed: %v", err)
	}

	for _, noteID := range []string{created.ID, created.ID, "never-existed"} {
		w := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodDelete, "/notes/"+noteID, nil)
		router.ServeHTTP(w, req)
		if w.Code != http.StatusNoContent {
			t.Errorf("delete %q: expected 204, got %d", noteID, w.Code)
		}
		if w.Body.Len() != 0 {
			t.Errorf("delete %q: expected empty body, got %q", noteID, w.Body.String())
		}
	}
}

// Full loop, scenario: connect, see the empty collection, create, see the
// note arrive via push, delete, see it go.
func TestStreamEndToEnd(t *testing.T) {
	srv, store := newTestServer(t)
	c := client.New(srv.URL, "")

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sub := c.Subscribe(ctx)

	waitForSnapshot(t, sub, func(notes []dto.NoteResponse) bool {
		return len(notes) == 0
	})

	if err := c.CreateNote(ctx, "buy milk"); err != nil {
		t.Fatalf("create failed: %v", err)
	}
	snap := waitForSnapshot(t, sub, func(notes []dto.NoteResponse) bool {
		return len(notes) == 1
	})
	if snap[0].Text != "buy milk" {
		t.Errorf("expected pushed note text %q, got %q", "buy milk", snap[0].Text)
	}
	if snap[0].ID == "" {
		t.Error("pushed note has no id")
	}

	if err := c.DeleteNote(ctx, snap[0].ID); err != nil {
		t.Fatalf("delete failed: %v", err)
	}
	waitForSnapshot(t, sub, func(notes []dto.NoteResponse) bool {
		return len(notes) == 0
	})

	sub.Close()
	waitForUnsubscribes(t, store, store.subscribes.Load())
}

// Two clients connected at once: a third-party mutation reaches both with
// an identical snapshot, in no particular order between them.
func TestStreamFansOutToAllClients(t *testing.T) {
	srv, store := newTestServer(t)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	subA := client.New(srv.URL, "").Subscribe(ctx)
	subB := client.New(srv.URL, "").Subscribe(ctx)
	defer subA.Close()
	defer subB.Close()

	waitForSnapshot(t, subA, func(n []dto.NoteResponse) bool { return len(n) == 0 })
	waitForSnapshot(t, subB, func(n []dto.NoteResponse) bool { return len(n) == 0 })

	svc := &usecase.NoteService{NotesRepo: store}
	created, err := svc.CreateNote(context.Background(), testUser, "shared")
	if err != nil {
		t.Fatalf("third-party create failed: %v", err)
	}
	if _, err := svc.UpdateNote(context.Background(), created.ID, testUser, "shared v2"); err != nil {
		t.Fatalf("third-party update failed: %v", err)
	}

	match := func(n []dto.NoteResponse) bool {
		return len(n) == 1 && n[0].Text == "shared v2"
	}
	snapA := waitForSnapshot(t, subA, match)
	snapB := waitForSnapshot(t, subB, match)

	if snapA[0].ID != snapB[0].ID || snapA[0].Text != snapB[0].Text {
		t.Errorf("clients diverged: %+v vs %+v", snapA[0], snapB[0])
	}
}

// Disconnecting a streaming client must release its store subscription,
// exactly once, every time.
func TestStreamReleasesSubscriptionOnDisconnect(t *testing.T) {
	srv, store := newTestServer(t)

	for i := int32(1); i <= 3; i++ {
		ctx, cancel := context.WithCancel(context.Background())
		sub := client.New(srv.URL, "").Subscribe(ctx)

		waitForSnapshot(t, sub, func(n []dto.NoteResponse) bool { return true })
		cancel()
		sub.Close()

		waitForUnsubscribes(t, store, i)
	}

	if subs := store.subscribes.Load(); subs != 3 {
		t.Errorf("expected 3 subscribes, got %d", subs)
	}
}

func TestStreamHeaders(t *testing.T) {
	srv, _ := newTestServer(t)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	req, _ := http.NewRequestWithContext(ctx, http.MethodGet, srv.URL+"/notes", nil)
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatalf("stream request failed: %v", err)
	}
	defer resp.Body.Close()

	if got := resp.Header.Get("Content-Type"); got != "text/event-stream" {
		t.Errorf("Content-Type = %q, want text/event-stream", got)
	}
	if got := resp.Header.Get("Cache-Control"); got != "no-cache" {
		t.Errorf("Cache-Control = %q, want no-cache", got)
	}
}
