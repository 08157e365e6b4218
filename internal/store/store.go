package store

import (
	"context"
	"errors"
)

// ErrSlotTaken is returned by Insert when another record already holds the
// same date and time.
var ErrSlotTaken = errors.New("slot already reserved")

// ErrNotCanonical is returned when a store refuses a date or time that does
// not normalize to YYYY-MM-DD / HH:MM.
var ErrNotCanonical = errors.New("date or time not in canonical form")

// Record is a registration as the backing store holds it. Date and TimeSlot
// may be in any accepted form; CreatedAt is epoch ms, zero when missing.
type Record struct {
	ID         string
	Name       string
	Department string
	Extension  string
	Date       string
	TimeSlot   string
	CreatedAt  int64
}

// Backend is the shared, continuously updated registration collection.
type Backend interface {
	// Insert stores rec and returns the identity the store assigned to it.
	Insert(ctx context.Context, rec Record) (string, error)
	// All returns every record, unordered.
	All(ctx context.Context) ([]Record, error)
	// Watch emits the full collection once, then again after every change.
	// It returns nil when ctx is done and an error when the feed drops.
	Watch(ctx context.Context, emit func([]Record)) error
}
