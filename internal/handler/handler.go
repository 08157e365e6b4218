package handler

import (
	"go.uber.org/zap"

	"slot-booking-api/internal/booking"
	"slot-booking-api/internal/bookingv1"
	"slot-booking-api/internal/events"
	"slot-booking-api/internal/receipt"
	"slot-booking-api/internal/reconcile"
	"slot-booking-api/internal/slots"
)

type Handler struct {
	bookingv1.UnimplementedBookingServiceServer
	client   *booking.Client
	view     *reconcile.Reconciler
	schedule slots.Schedule
	timezone string
	events   events.Publisher
	receipts *receipt.Issuer
	log      *zap.Logger
}

type Option func(*Handler)

func WithEvents(p events.Publisher) Option {
	return func(h *Handler) { h.events = p }
}

func WithReceipts(iss *receipt.Issuer) Option {
	return func(h *Handler) { h.receipts = iss }
}

// WithTimezone only labels the schedule; slot times are wall-clock strings.
func WithTimezone(tz string) Option {
	return func(h *Handler) { h.timezone = tz }
}

func New(client *booking.Client, view *reconcile.Reconciler, schedule slots.Schedule, log *zap.Logger, opts ...Option) *Handler {
	h := &Handler{
		client:   client,
		view:     view,
		schedule: schedule,
		timezone: "UTC",
		events:   events.Nop{},
		log:      log,
	}
	for _, o := range opts {
		o(h)
	}
	return h
}
