package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
)

// Mutations are fire-and-forget relative to local state: only the status
// code is checked, and the response body is never applied. The snapshot that
// reflects a mutation arrives through the subscription once the store's
// change feed fires, after an arbitrary delay.

func (c *Client) CreateNote(ctx context.Context, text string) error {
	return c.mutate(ctx, http.MethodPost, "/notes", text, http.StatusCreated)
}

func (c *Client) UpdateNote(ctx context.Context, noteID string, text string) error {
	return c.mutate(ctx, http.MethodPut, "/notes/"+noteID, text, http.StatusOK)
}

func (c *Client) DeleteNote(ctx context.Context, noteID string) error {
	return c.mutate(ctx, http.MethodDelete, "/notes/"+noteID, "", http.StatusNoContent)
}

func (c *Client) mutate(ctx context.Context, method string, path string, text string, wantStatus int) error {
	var body io.Reader
	if text != "" || method != http.MethodDelete {
		payload, err := json.Marshal(map[string]string{"text": text})
		if err != nil {
			return err
		}
		body = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.BaseURL+path, body)
	if err != nil {
		return err
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	c.authorize(req)

	resp, err := c.httpClient().Do(req)
	if err != nil {
		slog.Error("mutation request failed", "method", method, "path", path, "error", err)
		return err
	}
	defer resp.Body.Close()
	io.Copy(io.Discard, resp.Body)

	if resp.StatusCode != wantStatus {
		err := fmt.Errorf("%s %s: unexpected status %d", method, path, resp.StatusCode)
		slog.Error("mutation rejected", "method", method, "path", path, "status", resp.StatusCode)
		return err
	}
	return nil
}
