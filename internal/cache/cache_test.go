package cache

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/joho/godotenv"
	"github.com/redis/go-redis/v9"

	"slot-booking-api/internal/model"
)

var sample = []model.Reservation{
	{ID: "a", Name: "Ann", Department: "QA", Extension: "101", Date: "2025-01-22", TimeSlot: "08:00", CreatedAt: 1},
	{ID: "b", Name: "Bob", Department: "Ops", Extension: "102", Date: "2025-01-23", TimeSlot: "13:30", CreatedAt: 2},
}

func TestFileMissing(t *testing.T) {
	f := NewFile(filepath.Join(t.TempDir(), "none.json"))
	regs, ok, err := f.Load(context.Background())
	if err != nil || ok || regs != nil {
		t.Fatalf("missing file: regs=%v ok=%v err=%v", regs, ok, err)
	}
}

func TestFileSaveReplaces(t *testing.T) {
	f := NewFile(filepath.Join(t.TempDir(), "nested", "cache.json"))
	ctx := context.Background()

	if err := f.Save(ctx, sample); err != nil {
		t.Fatalf("save: %v", err)
	}
	if err := f.Save(ctx, sample[:1]); err != nil {
		t.Fatalf("second save: %v", err)
	}

	regs, ok, err := f.Load(ctx)
	if err != nil || !ok {
		t.Fatalf("load: ok=%v err=%v", ok, err)
	}
	if len(regs) != 1 || regs[0] != sample[0] {
		t.Fatalf("expected wholesale replacement, got %+v", regs)
	}
}

func TestFileEmptyListIsPresent(t *testing.T) {
	f := NewFile(filepath.Join(t.TempDir(), "cache.json"))
	if err := f.Save(context.Background(), nil); err != nil {
		t.Fatalf("save: %v", err)
	}
	regs, ok, err := f.Load(context.Background())
	if err != nil || !ok || len(regs) != 0 {
		t.Fatalf("empty list: regs=%v ok=%v err=%v", regs, ok, err)
	}
}

func TestFileCorrupt(t *testing.T) {
	path := filepath.Join(t.TempDir(), "cache.json")
	if err := os.WriteFile(path, []byte("{not json"), 0o600); err != nil {
		t.Fatal(err)
	}
	regs, ok, err := NewFile(path).Load(context.Background())
	if err != nil || ok || regs != nil {
		t.Fatalf("corrupt file should read as absent: regs=%v ok=%v err=%v", regs, ok, err)
	}
}

func TestJSONFieldNames(t *testing.T) {
	data, err := encode(sample[:1])
	if err != nil {
		t.Fatal(err)
	}
	want := `[{"id":"a","name":"Ann","department":"QA","extension":"101","date":"2025-01-22","timeSlot":"08:00","createdAt":1}]`
	if string(data) != want {
		t.Errorf("encoded:\n got %s\nwant %s", data, want)
	}
}

func TestRedis(t *testing.T) {
	_ = godotenv.Load("../../.env")
	addr := os.Getenv("REDIS_ADDR")
	if addr == "" {
		t.Skip("REDIS_ADDR not set")
	}
	rdb := redis.NewClient(&redis.Options{Addr: addr, Password: os.Getenv("REDIS_PASSWORD")})
	t.Cleanup(func() { rdb.Close() })

	ctx := context.Background()
	key := "test:registrations:" + time.Now().Format("150405.000000")
	t.Cleanup(func() { rdb.Del(ctx, key) })
	c := NewRedis(rdb, key)

	if _, ok, err := c.Load(ctx); err != nil || ok {
		t.Fatalf("fresh key: ok=%v err=%v", ok, err)
	}
	if err := c.Save(ctx, sample); err != nil {
		t.Fatalf("save: %v", err)
	}
	regs, ok, err := c.Load(ctx)
	if err != nil || !ok || len(regs) != 2 {
		t.Fatalf("load: regs=%v ok=%v err=%v", regs, ok, err)
	}
}
