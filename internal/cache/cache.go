// Package cache persists the last known reservation list so a restarted
// process can show something before the store answers. It is never treated
// as authoritative and is always replaced wholesale.
package cache

import (
	"context"
	"encoding/json"

	"slot-booking-api/internal/model"
)

const DefaultKey = "activity_registrations_v2"

type Cache interface {
	// Load returns the cached list and whether one was present. A corrupt
	// entry reads as absent.
	Load(ctx context.Context) ([]model.Reservation, bool, error)
	Save(ctx context.Context, regs []model.Reservation) error
}

func decode(data []byte) ([]model.Reservation, bool) {
	var regs []model.Reservation
	if err := json.Unmarshal(data, &regs); err != nil {
		return nil, false
	}
	return regs, true
}

func encode(regs []model.Reservation) ([]byte, error) {
	if regs == nil {
		regs = []model.Reservation{}
	}
	return json.Marshal(regs)
}

// Nop caches nothing.
type Nop struct{}

func (Nop) Load(context.Context) ([]model.Reservation, bool, error) { return nil, false, nil }
func (Nop) Save(context.Context, []model.Reservation) error        { return nil }
