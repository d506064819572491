package client

import (
	"bufio"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/josswuzhur/cloud-notes-app/dto"
)

type State int32

const (
	StateConnecting State = iota
	StateLive
	StateRetrying
	StateClosed
)

const (
	initialBackoff = time.Second
	maxBackoff     = 30 * time.Second
)

// Subscription is one open push-channel connection. Every received snapshot
// replaces local state wholesale; a malformed frame keeps the previous state;
// a broken transport reconnects with capped backoff while Retrying is
// surfaced instead of an error. Close tears the connection down
// deterministically, which is the client half of the subscription-release
// contract.
type Subscription struct {
	updates chan []dto.NoteResponse
	cancel  context.CancelFunc
	done    chan struct{}
	state   atomic.Int32

	mu      sync.Mutex
	notes   []dto.NoteResponse
	lastErr error
}

// Subscribe opens the push channel and keeps it open until ctx ends or Close
// is called. Open one subscription per active view.
func (c *Client) Subscribe(ctx context.Context) *Subscription {
	ctx, cancel := context.WithCancel(ctx)
	sub := &Subscription{
		updates: make(chan []dto.NoteResponse, 1),
		cancel:  cancel,
		done:    make(chan struct{}),
	}
	go sub.run(ctx, c)
	return sub
}

// Updates delivers snapshots, latest-wins: a slow consumer skips
// intermediate snapshots and still converges on the next one it reads.
func (s *Subscription) Updates() <-chan []dto.NoteResponse {
	return s.updates
}

// Notes returns the most recently received snapshot.
func (s *Subscription) Notes() []dto.NoteResponse {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.notes
}

func (s *Subscription) State() State {
	return State(s.state.Load())
}

// Err returns the last transport error observed. Non-nil while Retrying does
// not mean the subscription is dead.
func (s *Subscription) Err() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.lastErr
}

func (s *Subscription) setErr(err error) {
	s.mu.Lock()
	s.lastErr = err
	s.mu.Unlock()
}

// Close ends the subscription and waits for the connection to be torn down.
func (s *Subscription) Close() {
	s.cancel()
	<-s.done
}

func (s *Subscription) run(ctx context.Context, c *Client) {
	defer close(s.done)
	defer close(s.updates)
	defer s.state.Store(int32(StateClosed))

	backoff := initialBackoff
	for {
		connected, err := s.consume(ctx, c)
		if ctx.Err() != nil {
			return
		}
		if connected {
			backoff = initialBackoff
		}

		s.setErr(err)
		s.state.Store(int32(StateRetrying))
		slog.Warn("notes stream disconnected, retrying", "backoff", backoff, "error", err)

		select {
		case <-ctx.Done():
			return
		case <-time.After(backoff):
		}
		backoff = min(2*backoff, maxBackoff)
	}
}

// consume runs one connection to completion. connected reports whether the
// stream was established at all, which resets the retry backoff.
func (s *Subscription) consume(ctx context.Context, c *Client) (connected bool, err error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.BaseURL+"/notes", nil)
	if err != nil {
		return false, err
	}
	req.Header.Set("Accept", "text/event-stream")
	req.Header.Set("Cache-Control", "no-cache")
	c.authorize(req)

	resp, err := c.httpClient().Do(req)
	if err != nil {
		return false, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		io.Copy(io.Discard, resp.Body)
		return false, fmt.Errorf("stream request: unexpected status %d", resp.StatusCode)
	}

	s.state.Store(int32(StateLive))
	s.setErr(nil)

	scanner := bufio.NewScanner(resp.Body)
	scanner.Buffer(make([]byte, 0, 64*1024), 4*1024*1024)

	var data []string
	for scanner.Scan() {
		line := scanner.Text()
		switch {
		case line == "":
			if len(data) > 0 {
				s.apply(strings.Join(data, "\n"))
				data = data[:0]
			}
		case strings.HasPrefix(line, "data:"):
			data = append(data, strings.TrimPrefix(strings.TrimPrefix(line, "data:"), " "))
		default:
			// event/id/retry fields and comments carry nothing we need.
		}
	}

	if err := scanner.Err(); err != nil {
		return true, err
	}
	return true, errors.New("stream closed by server")
}

// apply parses one frame and replaces local state. Parse failures are
// non-fatal: log and keep what we have.
func (s *Subscription) apply(payload string) {
	var notes []dto.NoteResponse
	if err := json.Unmarshal([]byte(payload), &notes); err != nil {
		slog.Warn("dropping malformed snapshot", "error", err)
		return
	}

	s.mu.Lock()
	s.notes = notes
	s.mu.Unlock()

	// Latest wins: drop the stale buffered snapshot, if any.
	select {
	case <-s.updates:
	default:
	}
	select {
	case s.updates <- notes:
	default:
	}
}
