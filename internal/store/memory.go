package store

import (
	"context"
	"sync"

	"github.com/google/uuid"

	"slot-booking-api/internal/timefmt"
)

// Memory is an in-process Backend. Uniqueness is checked on normalized
// date/time, so seeded records in loose formats still collide.
type Memory struct {
	mu       sync.Mutex
	recs     []Record
	watchers map[chan struct{}]struct{}
}

func NewMemory(seed ...Record) *Memory {
	m := &Memory{watchers: make(map[chan struct{}]struct{})}
	for _, r := range seed {
		if r.ID == "" {
			r.ID = uuid.New().String()
		}
		m.recs = append(m.recs, r)
	}
	return m
}

func (m *Memory) Insert(ctx context.Context, rec Record) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	m.mu.Lock()
	defer m.mu.Unlock()

	date, slot := timefmt.NormalizeDate(rec.Date), timefmt.NormalizeTime(rec.TimeSlot)
	for _, r := range m.recs {
		if timefmt.NormalizeDate(r.Date) == date && timefmt.NormalizeTime(r.TimeSlot) == slot {
			return "", ErrSlotTaken
		}
	}
	rec.ID = uuid.New().String()
	m.recs = append(m.recs, rec)

	for ch := range m.watchers {
		select {
		case ch <- struct{}{}:
		default: // a wakeup is already pending
		}
	}
	return rec.ID, nil
}

func (m *Memory) All(ctx context.Context) ([]Record, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return m.snapshot(), nil
}

func (m *Memory) Watch(ctx context.Context, emit func([]Record)) error {
	ch := make(chan struct{}, 1)
	m.mu.Lock()
	m.watchers[ch] = struct{}{}
	m.mu.Unlock()
	defer func() {
		m.mu.Lock()
		delete(m.watchers, ch)
		m.mu.Unlock()
	}()

	emit(m.snapshot())
	for {
		select {
		case <-ctx.Done():
			return nil
		case <-ch:
			emit(m.snapshot())
		}
	}
}

func (m *Memory) snapshot() []Record {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]Record, len(m.recs))
	copy(out, m.recs)
	return out
}
