package stream

import (
	"context"
	"sync"

	"github.com/josswuzhur/cloud-notes-app/model"
)

// Feed is one change-feed subscription on the store. It follows the cursor
// shape of the MongoDB driver, so *mongo.ChangeStream satisfies it directly.
type Feed interface {
	Next(ctx context.Context) bool
	Err() error
	Close(ctx context.Context) error
}

// Store is the slice of the document store the live query consumes: an
// ordered full-collection read plus a change-feed subscription.
type Store interface {
	Snapshot(ctx context.Context, userID string) ([]*model.Note, error)
	Watch(ctx context.Context) (Feed, error)
}

// LiveQuery turns one change-feed subscription into a lazy, unbounded,
// non-restartable sequence of full-collection snapshots: the current state on
// open, then one snapshot per store change. Changes a consumer has not kept
// up with coalesce into the newest snapshot. It owns the subscription and
// releases it exactly once, whether the owner calls Close, the parent context
// ends, or the feed fails.
type LiveQuery struct {
	snapshots chan []*model.Note
	cancel    context.CancelFunc
	release   sync.Once
	feed      Feed

	mu  sync.Mutex
	err error
}

// Open subscribes to the store's change feed and starts streaming snapshots
// of the given user's notes. The sequence ends when ctx is cancelled, Close
// is called, or the feed errors; after that Snapshots is closed and Err
// reports the cause, if any.
func Open(ctx context.Context, store Store, userID string) (*LiveQuery, error) {
	ctx, cancel := context.WithCancel(ctx)

	feed, err := store.Watch(ctx)
	if err != nil {
		cancel()
		return nil, err
	}

	lq := &LiveQuery{
		snapshots: make(chan []*model.Note, 1),
		cancel:    cancel,
		feed:      feed,
	}
	go lq.run(ctx, store, userID)
	return lq, nil
}

// Snapshots delivers the ordered full-collection snapshots. The channel is
// closed when the sequence ends; it is never reopened.
func (lq *LiveQuery) Snapshots() <-chan []*model.Note {
	return lq.snapshots
}

// Err reports why the sequence ended. It is meaningful only after Snapshots
// is closed, and stays nil for a plain Close or context cancellation.
func (lq *LiveQuery) Err() error {
	lq.mu.Lock()
	defer lq.mu.Unlock()
	return lq.err
}

// Close ends the sequence and releases the store subscription. Safe to call
// more than once and concurrently with a feed error; the subscription is
// released exactly once either way. The release itself runs on the feed's
// goroutine since the driver's change stream is not safe for concurrent use.
func (lq *LiveQuery) Close() {
	lq.cancel()
}

func (lq *LiveQuery) run(ctx context.Context, store Store, userID string) {
	defer close(lq.snapshots)
	defer lq.releaseFeed()
	defer lq.cancel()

	if !lq.emit(ctx, store, userID) {
		return
	}

	for lq.feed.Next(ctx) {
		if !lq.emit(ctx, store, userID) {
			return
		}
	}

	if err := lq.feed.Err(); err != nil && ctx.Err() == nil {
		lq.setErr(err)
	}
}

// emit re-queries the ordered collection and delivers it, latest-wins: an
// undelivered older snapshot is dropped rather than stalling the feed behind
// a slow consumer. A false return means the sequence must terminate.
func (lq *LiveQuery) emit(ctx context.Context, store Store, userID string) bool {
	notes, err := store.Snapshot(ctx, userID)
	if err != nil {
		if ctx.Err() == nil {
			lq.setErr(err)
		}
		return false
	}

	select {
	case <-lq.snapshots:
	default:
	}
	select {
	case lq.snapshots <- notes:
		return true
	case <-ctx.Done():
		return false
	}
}

func (lq *LiveQuery) releaseFeed() {
	lq.release.Do(func() {
		// The parent context may already be cancelled; the release itself
		// must still go through.
		_ = lq.feed.Close(context.Background())
	})
}

func (lq *LiveQuery) setErr(err error) {
	lq.mu.Lock()
	lq.err = err
	lq.mu.Unlock()
}
