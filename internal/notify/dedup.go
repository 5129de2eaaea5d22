package notify

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"
)

// DedupStore remembers the last delivered digest per owner.
type DedupStore interface {
	LastDigest(ctx context.Context, owner string) (string, error)
	SetDigest(ctx context.Context, owner, digest string) error
}

const dedupKeyPrefix = "foodalert:notify:digest:"

// RedisDedup keeps the digests in redis so every checker replica shares the
// same view of what was already delivered.
type RedisDedup struct {
	rdb *redis.Client
	ttl time.Duration
}

func NewRedisDedup(addr, password string, db int, ttl time.Duration) *RedisDedup {
	rdb := redis.NewClient(&redis.Options{
		Addr:         addr,
		Password:     password,
		DB:           db,
		DialTimeout:  2 * time.Second,
		ReadTimeout:  2 * time.Second,
		WriteTimeout: 2 * time.Second,
	})

	if ttl <= 0 {
		ttl = 24 * time.Hour
	}

	return &RedisDedup{rdb: rdb, ttl: ttl}
}

func (d *RedisDedup) Ping(ctx context.Context) error {
	return d.rdb.Ping(ctx).Err()
}

func (d *RedisDedup) Close() error {
	return d.rdb.Close()
}

func (d *RedisDedup) LastDigest(ctx context.Context, owner string) (string, error) {
	v, err := d.rdb.Get(ctx, dedupKeyPrefix+owner).Result()

	if err != nil {
		if errors.Is(err, redis.Nil) {
			return "", nil
		}
		return "", err
	}

	return v, nil
}

func (d *RedisDedup) SetDigest(ctx context.Context, owner, digest string) error {
	return d.rdb.Set(ctx, dedupKeyPrefix+owner, digest, d.ttl).Err()
}

// MemoryDedup backs tests and single-process deployments without redis.
type MemoryDedup struct {
	mu sync.Mutex
	m  map[string]string
}

func NewMemoryDedup() *MemoryDedup {
	return &MemoryDedup{m: make(map[string]string)}
}

func (d *MemoryDedup) LastDigest(ctx context.Context, owner string) (string, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.m[owner], nil
}

func (d *MemoryDedup) SetDigest(ctx context.Context, owner, digest string) error {
	d.mu.Lock()
	d.m[owner] = digest
	d.mu.Unlock()
	return nil
}
