// Package booking is the reservation store client: it talks to a
// store.Backend and hands out reservations in canonical form only.
package booking

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.uber.org/zap"

	"slot-booking-api/internal/model"
	"slot-booking-api/internal/store"
	"slot-booking-api/internal/timefmt"
)

var (
	// ErrUnavailable means the backing store could not be reached. It is not
	// the same as an empty result and callers should keep what they have.
	ErrUnavailable = errors.New("reservation store unavailable")

	ErrAlreadySubscribed = errors.New("subscription already active")
)

var tracer = otel.Tracer("slot-booking-api/booking")

type Client struct {
	backend store.Backend
	log     *zap.Logger
	now     func() time.Time
	retry   time.Duration

	mu     sync.Mutex
	active *Subscription
}

type Option func(*Client)

// WithClock replaces time.Now for createdAt stamping.
func WithClock(now func() time.Time) Option {
	return func(c *Client) { c.now = now }
}

// WithRetryDelay sets the pause before a dropped change feed is reopened.
func WithRetryDelay(d time.Duration) Option {
	return func(c *Client) { c.retry = d }
}

func New(backend store.Backend, log *zap.Logger, opts ...Option) *Client {
	c := &Client{
		backend: backend,
		log:     log,
		now:     time.Now,
		retry:   5 * time.Second,
	}
	for _, o := range opts {
		o(c)
	}
	return c
}

// Create normalizes r and submits it. On success the returned reservation
// carries the store identity. A taken slot yields store.ErrSlotTaken; any
// other failure means nothing was committed.
func (c *Client) Create(ctx context.Context, r model.Reservation) (model.Reservation, error) {
	ctx, span := tracer.Start(ctx, "booking.Create")
	defer span.End()

	r.Date = timefmt.NormalizeDate(r.Date)
	r.TimeSlot = timefmt.NormalizeTime(r.TimeSlot)
	if r.CreatedAt == 0 {
		r.CreatedAt = c.now().UnixMilli()
	}
	span.SetAttributes(attribute.String("reservation.date", r.Date), attribute.String("reservation.time", r.TimeSlot))

	id, err := c.backend.Insert(ctx, store.Record{
		Name:       r.Name,
		Department: r.Department,
		Extension:  r.Extension,
		Date:       r.Date,
		TimeSlot:   r.TimeSlot,
		CreatedAt:  r.CreatedAt,
	})
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "insert failed")
		if errors.Is(err, store.ErrSlotTaken) || errors.Is(err, store.ErrNotCanonical) {
			return model.Reservation{}, err
		}
		c.log.Error("reservation save failed", zap.Error(err), zap.String("date", r.Date), zap.String("time", r.TimeSlot))
		return model.Reservation{}, fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	r.ID = id
	return r, nil
}

// FetchAll reads the whole collection. Transport failures come back wrapped
// in ErrUnavailable.
func (c *Client) FetchAll(ctx context.Context) ([]model.Reservation, error) {
	ctx, span := tracer.Start(ctx, "booking.FetchAll")
	defer span.End()

	recs, err := c.backend.All(ctx)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "fetch failed")
		c.log.Warn("reservation fetch failed", zap.Error(err))
		return nil, fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	span.SetAttributes(attribute.Int("reservation.count", len(recs)))
	return c.normalize(recs), nil
}

// normalize converts raw records; the store is not trusted to hold canonical
// forms and may omit createdAt.
func (c *Client) normalize(recs []store.Record) []model.Reservation {
	out := make([]model.Reservation, 0, len(recs))
	for _, r := range recs {
		created := r.CreatedAt
		if created == 0 {
			created = c.now().UnixMilli()
		}
		out = append(out, model.Reservation{
			ID:         r.ID,
			Name:       r.Name,
			Department: r.Department,
			Extension:  r.Extension,
			Date:       timefmt.NormalizeDate(r.Date),
			TimeSlot:   timefmt.NormalizeTime(r.TimeSlot),
			CreatedAt:  created,
		})
	}
	return out
}
