package lock

import (
	"context"
	"errors"
	"time"

	"github.com/Govind-619/InfuseDesk/utils"
	"github.com/bsm/redislock"
	"github.com/redis/go-redis/v9"
)

// Redis is a Locker shared by every process talking to the same Redis
type Redis struct {
	ttl time.Duration
	cli *redislock.Client
}

func NewRedis(cli *redis.Client, ttl time.Duration) *Redis {
	return &Redis{cli: redislock.New(cli), ttl: ttl}
}

func (r *Redis) Lock(ctx context.Context, key string) (func(), error) {
	l, err := r.cli.Obtain(ctx, key, r.ttl, nil)
	if errors.Is(err, redislock.ErrNotObtained) {
		return nil, ErrHeld
	}
	if err != nil {
		return nil, err
	}
	return func() {
		// the job may have outlived ctx
		if err := l.Release(context.Background()); err != nil && !errors.Is(err, redislock.ErrLockNotHeld) {
			utils.LogError("Failed to release lock %s: %v", key, err)
		}
	}, nil
}
