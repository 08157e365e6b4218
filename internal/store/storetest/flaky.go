// Package storetest provides a store.Backend for tests that can be switched
// offline and whose change feed can be dropped on demand.
package storetest

import (
	"context"
	"errors"
	"sync/atomic"

	"slot-booking-api/internal/store"
)

var ErrOffline = errors.New("storetest: backend offline")

type Flaky struct {
	*store.Memory
	offline atomic.Bool
	drops   chan error
	watches atomic.Int32
	fetches atomic.Int32
}

func NewFlaky(seed ...store.Record) *Flaky {
	return &Flaky{Memory: store.NewMemory(seed...), drops: make(chan error, 1)}
}

// SetOffline makes Insert, All and new Watch calls fail until called again
// with false.
func (f *Flaky) SetOffline(v bool) { f.offline.Store(v) }

// Drop ends the current Watch with err.
func (f *Flaky) Drop(err error) { f.drops <- err }

// Watches counts how many times Watch has been opened.
func (f *Flaky) Watches() int { return int(f.watches.Load()) }

// Fetches counts calls to All.
func (f *Flaky) Fetches() int { return int(f.fetches.Load()) }

func (f *Flaky) Insert(ctx context.Context, rec store.Record) (string, error) {
	if f.offline.Load() {
		return "", ErrOffline
	}
	return f.Memory.Insert(ctx, rec)
}

func (f *Flaky) All(ctx context.Context) ([]store.Record, error) {
	f.fetches.Add(1)
	if f.offline.Load() {
		return nil, ErrOffline
	}
	return f.Memory.All(ctx)
}

func (f *Flaky) Watch(ctx context.Context, emit func([]store.Record)) error {
	f.watches.Add(1)
	if f.offline.Load() {
		return ErrOffline
	}
	inner, cancel := context.WithCancel(ctx)
	defer cancel()

	errc := make(chan error, 1)
	go func() { errc <- f.Memory.Watch(inner, emit) }()

	select {
	case err := <-f.drops:
		cancel()
		<-errc
		return err
	case err := <-errc:
		return err
	}
}
