package booking

import (
	"context"
	"errors"
	"sync"
	"time"

	"go.uber.org/zap"

	"slot-booking-api/internal/model"
	"slot-booking-api/internal/store"
)

var errFeedClosed = errors.New("change feed closed")

// Subscription is the handle for a running change feed.
type Subscription struct {
	client *Client
	cancel context.CancelFunc
	done   chan struct{}
	once   sync.Once
}

// Subscribe starts delivering the full, normalized reservation set to
// onUpdate whenever the store changes. When the feed drops, onDrop (if set)
// is told and the feed is reopened after the retry delay. Only one
// subscription may be active per client; Stop it before subscribing again.
//
// Callbacks run on the feed goroutine and must not call Stop.
func (c *Client) Subscribe(onUpdate func([]model.Reservation), onDrop func(error)) (*Subscription, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.active != nil {
		return nil, ErrAlreadySubscribed
	}

	ctx, cancel := context.WithCancel(context.Background())
	s := &Subscription{client: c, cancel: cancel, done: make(chan struct{})}
	c.active = s

	go s.run(ctx, onUpdate, onDrop)
	return s, nil
}

func (s *Subscription) run(ctx context.Context, onUpdate func([]model.Reservation), onDrop func(error)) {
	defer close(s.done)
	c := s.client
	for {
		err := c.backend.Watch(ctx, func(recs []store.Record) {
			onUpdate(c.normalize(recs))
		})
		if ctx.Err() != nil {
			return
		}
		if err == nil {
			err = errFeedClosed
		}
		c.log.Warn("reservation feed dropped", zap.Error(err), zap.Duration("retry_in", c.retry))
		if onDrop != nil {
			onDrop(err)
		}

		select {
		case <-ctx.Done():
			return
		case <-time.After(c.retry):
		}
	}
}

// Stop cancels the feed and waits for it to exit. Calling it again is a no-op.
func (s *Subscription) Stop() {
	s.once.Do(func() {
		s.cancel()
		<-s.done

		s.client.mu.Lock()
		if s.client.active == s {
			s.client.active = nil
		}
		s.client.mu.Unlock()
	})
}

// Done is closed once the feed goroutine has exited.
func (s *Subscription) Done() <-chan struct{} { return s.done }
