package store

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"
)

func TestMemoryInsertAssignsID(t *testing.T) {
	m := NewMemory()
	id, err := m.Insert(context.Background(), Record{Name: "Ann", Date: "2025-01-22", TimeSlot: "08:00"})
	if err != nil {
		t.Fatalf("insert: %v", err)
	}
	if id == "" {
		t.Fatal("empty id")
	}
	all, _ := m.All(context.Background())
	if len(all) != 1 || all[0].ID != id {
		t.Fatalf("expected stored record with id %s, got %+v", id, all)
	}
}

func TestMemoryUniqueAcrossFormats(t *testing.T) {
	m := NewMemory(Record{Date: "2025/1/22", TimeSlot: "8:0"})
	_, err := m.Insert(context.Background(), Record{Date: "2025-01-22", TimeSlot: "08:00"})
	if !errors.Is(err, ErrSlotTaken) {
		t.Fatalf("expected ErrSlotTaken, got %v", err)
	}
	if _, err := m.Insert(context.Background(), Record{Date: "2025-01-22", TimeSlot: "08:10"}); err != nil {
		t.Fatalf("neighbouring slot should be free: %v", err)
	}
}

func TestMemoryConcurrentInsert(t *testing.T) {
	m := NewMemory()
	const n = 10
	var wg sync.WaitGroup
	errs := make(chan error, n)
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, err := m.Insert(context.Background(), Record{Name: fmt.Sprint(i), Date: "2025-01-22", TimeSlot: "09:00"})
			errs <- err
		}(i)
	}
	wg.Wait()
	close(errs)

	wins := 0
	for err := range errs {
		if err == nil {
			wins++
		} else if !errors.Is(err, ErrSlotTaken) {
			t.Errorf("unexpected error: %v", err)
		}
	}
	if wins != 1 {
		t.Errorf("expected exactly 1 insert to win, got %d", wins)
	}
}

func TestMemoryWatch(t *testing.T) {
	m := NewMemory(Record{Date: "2025-01-22", TimeSlot: "08:00"})
	ctx, cancel := context.WithCancel(context.Background())

	updates := make(chan []Record, 4)
	done := make(chan error, 1)
	go func() { done <- m.Watch(ctx, func(r []Record) { updates <- r }) }()

	select {
	case got := <-updates:
		if len(got) != 1 {
			t.Fatalf("initial emit: expected 1 record, got %d", len(got))
		}
	case <-time.After(time.Second):
		t.Fatal("no initial emit")
	}

	if _, err := m.Insert(context.Background(), Record{Date: "2025-01-22", TimeSlot: "08:10"}); err != nil {
		t.Fatalf("insert: %v", err)
	}
	select {
	case got := <-updates:
		if len(got) != 2 {
			t.Fatalf("change emit: expected 2 records, got %d", len(got))
		}
	case <-time.After(time.Second):
		t.Fatal("no emit after insert")
	}

	cancel()
	select {
	case err := <-done:
		if err != nil {
			t.Fatalf("watch should end cleanly on cancel, got %v", err)
		}
	case <-time.After(time.Second):
		t.Fatal("watch did not return after cancel")
	}
}

func TestMemoryCancelledContext(t *testing.T) {
	m := NewMemory()
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if _, err := m.Insert(ctx, Record{Date: "2025-01-22", TimeSlot: "08:00"}); err == nil {
		t.Fatal("insert with cancelled context should fail")
	}
	if _, err := m.All(ctx); err == nil {
		t.Fatal("all with cancelled context should fail")
	}
}
