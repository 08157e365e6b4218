package cache

import (
	"context"
	"errors"

	"github.com/redis/go-redis/v9"

	"slot-booking-api/internal/model"
)

// Redis keeps the list under a single key.
type Redis struct {
	rdb *redis.Client
	key string
}

func NewRedis(rdb *redis.Client, key string) *Redis {
	if key == "" {
		key = DefaultKey
	}
	return &Redis{rdb: rdb, key: key}
}

func (r *Redis) Load(ctx context.Context) ([]model.Reservation, bool, error) {
	data, err := r.rdb.Get(ctx, r.key).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, false, nil
		}
		return nil, false, err
	}
	regs, ok := decode(data)
	return regs, ok, nil
}

func (r *Redis) Save(ctx context.Context, regs []model.Reservation) error {
	data, err := encode(regs)
	if err != nil {
		return err
	}
	return r.rdb.Set(ctx, r.key, data, 0).Err()
}
