package revocation

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

const keyPrefix = "farmclub:revoked:"

// RedisList stores revoked ids as keys that expire with the token.
type RedisList struct {
	rdb *redis.Client
	now func() time.Time
}

type RedisConfig struct {
	Addr     string
	Password string
	DB       int
}

func NewRedisList(cfg RedisConfig) *RedisList {
	rdb := redis.NewClient(&redis.Options{
		Addr:     cfg.Addr,
		Password: cfg.Password,
		DB:       cfg.DB,
	})
	return &RedisList{rdb: rdb, now: time.Now}
}

// Ping checks the connection.
func (r *RedisList) Ping(ctx context.Context) error {
	return r.rdb.Ping(ctx).Err()
}

func (r *RedisList) Revoke(ctx context.Context, jti string, until time.Time) error {
	ttl := until.Sub(r.now())
	if ttl <= 0 {
		return nil
	}
	if err := r.rdb.Set(ctx, keyPrefix+jti, 1, ttl).Err(); err != nil {
		return fmt.Errorf("revoke token in redis: %w", err)
	}
	return nil
}

func (r *RedisList) IsRevoked(ctx context.Context, jti string) (bool, error) {
	err := r.rdb.Get(ctx, keyPrefix+jti).Err()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return false, nil
		}
		return false, fmt.Errorf("check revoked token in redis: %w", err)
	}
	return true, nil
}

func (r *RedisList) Close() error {
	return r.rdb.Close()
}
