package cache

import (
	"context"
	"fmt"
	"time"

	"github.com/andresuchdata/filedrop/internal/config"
	"github.com/andresuchdata/filedrop/internal/domain"
	"github.com/redis/go-redis/v9"
)

// HashSetter writes a set of hash fields under a key.
type HashSetter interface {
	SetHash(ctx context.Context, key string, fields map[string]interface{}, ttl time.Duration) error
}

// RedisHashStore implements HashSetter on top of a redis client.
type RedisHashStore struct {
	client redis.Cmdable
	closer func() error
}

// NewRedisHashStore connects to redis and verifies the connection with a ping.
func NewRedisHashStore(cfg config.CacheConfig) (*RedisHashStore, error) {
	client, err := newRedisClient(cfg)
	if err != nil {
		return nil, err
	}
	return &RedisHashStore{client: client, closer: client.Close}, nil
}

// SetHash writes fields under key; a positive ttl also sets an expiry.
func (s *RedisHashStore) SetHash(ctx context.Context, key string, fields map[string]interface{}, ttl time.Duration) error {
	if err := s.client.HSet(ctx, key, fields).Err(); err != nil {
		return fmt.Errorf("redis hset failed: %w", err)
	}
	if ttl > 0 {
		if err := s.client.Expire(ctx, key, ttl).Err(); err != nil {
			return fmt.Errorf("redis expire failed: %w", err)
		}
	}
	return nil
}

// Close closes the underlying client.
func (s *RedisHashStore) Close() error {
	if s.closer == nil {
		return nil
	}
	return s.closer()
}

var _ HashSetter = (*RedisHashStore)(nil)

// FileInfoCache stores the per-file metadata record.
type FileInfoCache struct {
	hashes HashSetter
	ttl    time.Duration
}

func NewFileInfoCache(hashes HashSetter, ttl time.Duration) *FileInfoCache {
	return &FileInfoCache{hashes: hashes, ttl: ttl}
}

// Store writes the {name, lines} record under file:<name>.
func (c *FileInfoCache) Store(ctx context.Context, file domain.GeneratedFile) error {
	record := domain.CacheRecord{Name: file.Name, Lines: file.Lines}
	return c.hashes.SetHash(ctx, file.CacheKey(), record.Fields(), c.ttl)
}
