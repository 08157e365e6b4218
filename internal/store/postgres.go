package store

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"slot-booking-api/internal/timefmt"
)

// channel the registrations trigger notifies on (see db/migrations)
const notifyChannel = "registrations_changed"

type Postgres struct {
	pool *pgxpool.Pool
}

func NewPostgres(pool *pgxpool.Pool) *Postgres {
	return &Postgres{pool: pool}
}

func (s *Postgres) Insert(ctx context.Context, rec Record) (string, error) {
	id := uuid.New().String()
	_, err := s.pool.Exec(ctx,
		`INSERT INTO registrations (id, name, department, extension, date, time_slot, created_at)
		 VALUES ($1,$2,$3,$4,$5,$6,$7)`,
		id, rec.Name, rec.Department, rec.Extension,
		timefmt.NormalizeDate(rec.Date), timefmt.NormalizeTime(rec.TimeSlot), rec.CreatedAt,
	)
	if err != nil {
		// unique (date, time_slot) caught a double booking
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) {
			switch pgErr.Code {
			case "23505":
				return "", ErrSlotTaken
			case "23514":
				return "", fmt.Errorf("%w: %q %q", ErrNotCanonical, rec.Date, rec.TimeSlot)
			}
		}
		return "", err
	}
	return id, nil
}

func (s *Postgres) All(ctx context.Context) ([]Record, error) {
	rows, err := s.pool.Query(ctx,
		`SELECT id, name, department, extension, date, time_slot, COALESCE(created_at, 0)
		 FROM registrations`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []Record
	for rows.Next() {
		var r Record
		if err := rows.Scan(&r.ID, &r.Name, &r.Department, &r.Extension, &r.Date, &r.TimeSlot, &r.CreatedAt); err != nil {
			return nil, err
		}
		out = append(out, r)
	}
	return out, rows.Err()
}

// Watch holds one pooled connection on LISTEN and re-reads the whole table
// on every notification.
func (s *Postgres) Watch(ctx context.Context, emit func([]Record)) error {
	conn, err := s.pool.Acquire(ctx)
	if err != nil {
		return err
	}
	defer conn.Release()

	if _, err := conn.Exec(ctx, "LISTEN "+notifyChannel); err != nil {
		return err
	}
	defer conn.Exec(context.Background(), "UNLISTEN *")

	for {
		recs, err := s.All(ctx)
		if err != nil {
			if ctx.Err() != nil {
				return nil
			}
			return err
		}
		emit(recs)

		if _, err := conn.Conn().WaitForNotification(ctx); err != nil {
			if ctx.Err() != nil {
				return nil
			}
			return err
		}
	}
}
