package cache

import (
	"context"
	"errors"
	"fmt"
	"time"

	redis "github.com/redis/go-redis/v9"
)

const (
	defaultOpTimeout = 250 * time.Millisecond
	scanBatch        = 500
)

var _ Cache = (*RedisCache)(nil)

// RedisCache implementiert Cache über go-redis. Jeder Aufruf ist durch opTimeout begrenzt,
// damit ein hängender Redis nur zu Misses führt und keine Requests blockiert.
type RedisCache struct {
	client    redis.UniversalClient
	opTimeout time.Duration
}

// RedisOptions konfiguriert die Verbindung.
type RedisOptions struct {
	Addr      string
	Password  string
	DB        int
	OpTimeout time.Duration
}

// NewRedisCache verbindet sich (lazy) mit Redis.
func NewRedisCache(opts RedisOptions) *RedisCache {
	timeout := opts.OpTimeout
	if timeout <= 0 {
		timeout = defaultOpTimeout
	}
	client := redis.NewClient(&redis.Options{
		Addr:         opts.Addr,
		Password:     opts.Password,
		DB:           opts.DB,
		Protocol:     2,
		DialTimeout:  timeout,
		ReadTimeout:  timeout,
		WriteTimeout: timeout,
		MaxRetries:   1,
	})
	return NewRedisCacheFromClient(client, timeout)
}

// NewRedisCacheFromClient verwendet einen bestehenden Client.
func NewRedisCacheFromClient(client redis.UniversalClient, opTimeout time.Duration) *RedisCache {
	if opTimeout <= 0 {
		opTimeout = defaultOpTimeout
	}
	return &RedisCache{client: client, opTimeout: opTimeout}
}

func (r *RedisCache) Get(ctx context.Context, key string) ([]byte, error) {
	ctx, cancel := context.WithTimeout(ctx, r.opTimeout)
	defer cancel()

	buf, err := r.client.Get(ctx, key).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, ErrCacheMiss
		}
		return nil, fmt.Errorf("redis get %s: %w", key, err)
	}
	return buf, nil
}

func (r *RedisCache) Set(ctx context.Context, key string, val []byte, ttl time.Duration) error {
	ctx, cancel := context.WithTimeout(ctx, r.opTimeout)
	defer cancel()

	if err := r.client.Set(ctx, key, val, ttl).Err(); err != nil {
		return fmt.Errorf("redis set %s: %w", key, err)
	}
	return nil
}

func (r *RedisCache) Del(ctx context.Context, keys ...string) (int64, error) {
	if len(keys) == 0 {
		return 0, nil
	}
	ctx, cancel := context.WithTimeout(ctx, r.opTimeout)
	defer cancel()

	n, err := r.client.Del(ctx, keys...).Result()
	if err != nil {
		return 0, fmt.Errorf("redis del: %w", err)
	}
	return n, nil
}

// DelPrefix iteriert per SCAN statt KEYS, damit Redis bei großen Keyspaces nicht blockiert.
// Der Timeout gilt pro SCAN/DEL-Runde.
func (r *RedisCache) DelPrefix(ctx context.Context, prefix string) (int64, error) {
	var (
		cursor  uint64
		deleted int64
	)
	for {
		keys, next, err := r.scan(ctx, cursor, prefix+"*")
		if err != nil {
			return deleted, err
		}
		n, err := r.Del(ctx, keys...)
		if err != nil {
			return deleted, err
		}
		deleted += n

		cursor = next
		if cursor == 0 {
			return deleted, nil
		}
	}
}

func (r *RedisCache) scan(ctx context.Context, cursor uint64, match string) ([]string, uint64, error) {
	ctx, cancel := context.WithTimeout(ctx, r.opTimeout)
	defer cancel()

	keys, next, err := r.client.Scan(ctx, cursor, match, scanBatch).Result()
	if err != nil {
		return nil, 0, fmt.Errorf("redis scan %s: %w", match, err)
	}
	return keys, next, nil
}

func (r *RedisCache) Ping(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, r.opTimeout)
	defer cancel()
	return r.client.Ping(ctx).Err()
}

func (r *RedisCache) Close() error {
	return r.client.Close()
}
