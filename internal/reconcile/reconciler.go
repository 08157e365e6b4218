// Package reconcile owns the in-memory reservation set of the running
// process. Every update, whether pushed by the change feed or pulled by a
// refresh, replaces the whole set and the local cache; there is no
// field-level merge, so the last writer wins.
package reconcile

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/robfig/cron/v3"
	"go.uber.org/zap"

	"slot-booking-api/internal/booking"
	"slot-booking-api/internal/cache"
	"slot-booking-api/internal/model"
)

var ErrClosed = errors.New("reconciler closed")

type Reconciler struct {
	client *booking.Client
	cache  cache.Cache
	log    *zap.Logger

	resync   string
	cacheTTL time.Duration

	// writeMu serializes whole replacements (swap plus cache save); mu only
	// guards the fields readers see.
	writeMu sync.Mutex
	mu      sync.RWMutex
	regs    []model.Reservation
	synced  bool
	updated time.Time

	ctx    context.Context
	cancel context.CancelFunc

	sub       *booking.Subscription
	cron      *cron.Cron
	closeOnce sync.Once
}

type Option func(*Reconciler)

// WithResync schedules a periodic Refresh using a cron spec such as
// "@every 5m" or "*/10 * * * *".
func WithResync(spec string) Option {
	return func(r *Reconciler) { r.resync = spec }
}

// WithCacheTimeout bounds each cache read or write.
func WithCacheTimeout(d time.Duration) Option {
	return func(r *Reconciler) { r.cacheTTL = d }
}

func New(client *booking.Client, c cache.Cache, log *zap.Logger, opts ...Option) *Reconciler {
	if c == nil {
		c = cache.Nop{}
	}
	ctx, cancel := context.WithCancel(context.Background())
	r := &Reconciler{
		client:   client,
		cache:    c,
		log:      log,
		cacheTTL: 2 * time.Second,
		ctx:      ctx,
		cancel:   cancel,
	}
	for _, o := range opts {
		o(r)
	}
	return r
}

// Start seeds the set from the local cache, opens the change feed and runs
// one refresh. An unreachable store is logged, not returned: the process
// keeps serving the cached view until the feed or a later refresh succeeds.
func (r *Reconciler) Start(ctx context.Context) error {
	if r.ctx.Err() != nil {
		return ErrClosed
	}

	cctx, cancel := context.WithTimeout(ctx, r.cacheTTL)
	cached, ok, err := r.cache.Load(cctx)
	cancel()
	switch {
	case err != nil:
		r.log.Warn("local cache unreadable", zap.Error(err))
	case ok:
		r.mu.Lock()
		r.regs = cached
		r.mu.Unlock()
		r.log.Info("seeded from local cache", zap.Int("count", len(cached)))
	}

	sub, err := r.client.Subscribe(
		func(regs []model.Reservation) { r.replace(regs, "push") },
		func(error) { go r.Refresh(r.ctx) },
	)
	if err != nil {
		return err
	}
	r.sub = sub

	if err := r.Refresh(ctx); err != nil {
		r.log.Warn("initial sync failed, serving cached view", zap.Error(err))
	}

	if r.resync != "" {
		c := cron.New()
		if _, err := c.AddFunc(r.resync, func() {
			if err := r.Refresh(r.ctx); err != nil {
				r.log.Warn("scheduled resync failed", zap.Error(err))
			}
		}); err != nil {
			r.Close()
			return err
		}
		c.Start()
		r.cron = c
	}
	return nil
}

// Refresh pulls the full set from the store. When the store is unavailable
// the current set and cache are left untouched and the error is returned.
func (r *Reconciler) Refresh(ctx context.Context) error {
	regs, err := r.client.FetchAll(ctx)
	if err != nil {
		return err
	}
	r.replace(regs, "fetch")
	return nil
}

func (r *Reconciler) replace(regs []model.Reservation, source string) {
	own := make([]model.Reservation, len(regs))
	copy(own, regs)

	r.writeMu.Lock()
	defer r.writeMu.Unlock()

	r.mu.Lock()
	r.regs = own
	r.synced = true
	r.updated = time.Now()
	r.mu.Unlock()

	r.log.Debug("reservations replaced", zap.String("source", source), zap.Int("count", len(own)))

	ctx, cancel := context.WithTimeout(context.Background(), r.cacheTTL)
	defer cancel()
	if err := r.cache.Save(ctx, own); err != nil {
		r.log.Warn("local cache write failed", zap.Error(err))
	}
}

// Snapshot returns a copy of the current set.
func (r *Reconciler) Snapshot() []model.Reservation {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]model.Reservation, len(r.regs))
	copy(out, r.regs)
	return out
}

// Synced reports whether the store has answered at least once and when the
// set was last replaced.
func (r *Reconciler) Synced() (bool, time.Time) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.synced, r.updated
}

// Close stops the change feed and the resync schedule. Safe to call more
// than once.
func (r *Reconciler) Close() {
	r.closeOnce.Do(func() {
		r.cancel()
		if r.cron != nil {
			<-r.cron.Stop().Done()
		}
		if r.sub != nil {
			r.sub.Stop()
		}
	})
}
