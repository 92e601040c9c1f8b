package cache

import (
	"context"
	"crypto/sha1"
	"encoding/hex"
	"errors"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"
)

const (
	defaultTTL    = 7 * 24 * time.Hour
	defaultPrefix = "board:suggest:"
)

// Redis shares suggestions across processes. Keys are hashed FENs.
type Redis struct {
	rdb    *redis.Client
	prefix string
	ttl    time.Duration
}

func NewRedis(rdb *redis.Client, ttl time.Duration) *Redis {
	if ttl <= 0 {
		ttl = defaultTTL
	}
	return &Redis{rdb: rdb, prefix: defaultPrefix, ttl: ttl}
}

func (r *Redis) key(pos string) string {
	sum := sha1.Sum([]byte(strings.TrimSpace(pos)))
	return r.prefix + hex.EncodeToString(sum[:])
}

func (r *Redis) Get(ctx context.Context, pos string) (string, bool, error) {
	v, err := r.rdb.Get(ctx, r.key(pos)).Result()
	if errors.Is(err, redis.Nil) {
		return "", false, nil
	}
	if err != nil {
		return "", false, err
	}
	return v, true, nil
}

func (r *Redis) Set(ctx context.Context, pos, move string) error {
	if strings.TrimSpace(move) == "" {
		return nil
	}
	return r.rdb.Set(ctx, r.key(pos), move, r.ttl).Err()
}

// Ping checks connectivity at startup.
func (r *Redis) Ping(ctx context.Context) error { return r.rdb.Ping(ctx).Err() }

func (r *Redis) Close() error { return r.rdb.Close() }
