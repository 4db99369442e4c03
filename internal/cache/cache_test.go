package cache

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/andresuchdata/filedrop/internal/config"
	"github.com/andresuchdata/filedrop/internal/domain"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeRedis struct {
	redis.Cmdable
	hashes  map[string]map[string]interface{}
	expires map[string]time.Duration
	hsetErr error
}

func newFakeRedis() *fakeRedis {
	return &fakeRedis{
		hashes:  map[string]map[string]interface{}{},
		expires: map[string]time.Duration{},
	}
}

func (f *fakeRedis) HSet(ctx context.Context, key string, values ...interface{}) *redis.IntCmd {
	cmd := redis.NewIntCmd(ctx)
	if f.hsetErr != nil {
		cmd.SetErr(f.hsetErr)
		return cmd
	}
	fields := values[0].(map[string]interface{})
	f.hashes[key] = fields
	cmd.SetVal(int64(len(fields)))
	return cmd
}

func (f *fakeRedis) Expire(ctx context.Context, key string, ttl time.Duration) *redis.BoolCmd {
	cmd := redis.NewBoolCmd(ctx)
	f.expires[key] = ttl
	cmd.SetVal(true)
	return cmd
}

func TestBuildRedisOptionsFromHost(t *testing.T) {
	opts, err := buildRedisOptions(config.CacheConfig{RedisHost: "cache.local", RedisPort: "6380", RedisDB: 2})
	require.NoError(t, err)

	assert.Equal(t, "cache.local:6380", opts.Addr)
	assert.Equal(t, 2, opts.DB)
	assert.Equal(t, 5*time.Second, opts.DialTimeout)
	assert.Equal(t, 5*time.Second, opts.ReadTimeout)
	assert.Equal(t, 5*time.Second, opts.WriteTimeout)
	assert.Equal(t, -1, opts.MaxRetries)
}

func TestBuildRedisOptionsFromURL(t *testing.T) {
	opts, err := buildRedisOptions(config.CacheConfig{RedisURL: "redis://:secret@localhost:6379/1"})
	require.NoError(t, err)

	assert.Equal(t, "localhost:6379", opts.Addr)
	assert.Equal(t, "secret", opts.Password)
	assert.Equal(t, 1, opts.DB)
	assert.Equal(t, 5*time.Second, opts.DialTimeout)
	assert.Equal(t, 5*time.Second, opts.ReadTimeout)
	assert.Equal(t, -1, opts.MaxRetries)
}

func TestBuildRedisOptionsRequiresHost(t *testing.T) {
	_, err := buildRedisOptions(config.CacheConfig{})
	assert.Error(t, err)

	_, err = buildRedisOptions(config.CacheConfig{RedisURL: "http://nope"})
	assert.Error(t, err)
}

func TestFileInfoCacheStore(t *testing.T) {
	fake := newFakeRedis()
	c := NewFileInfoCache(&RedisHashStore{client: fake}, 0)

	err := c.Store(context.Background(), domain.GeneratedFile{Name: "a.txt", Lines: 5})
	require.NoError(t, err)

	assert.Equal(t, map[string]interface{}{"name": "a.txt", "lines": 5}, fake.hashes["file:a.txt"])
	assert.Empty(t, fake.expires)
}

func TestFileInfoCacheStoreWithTTL(t *testing.T) {
	fake := newFakeRedis()
	c := NewFileInfoCache(&RedisHashStore{client: fake}, time.Hour)

	require.NoError(t, c.Store(context.Background(), domain.GeneratedFile{Name: "b.txt", Lines: 7}))
	assert.Equal(t, time.Hour, fake.expires["file:b.txt"])
}

func TestRedisHashStoreError(t *testing.T) {
	fake := newFakeRedis()
	fake.hsetErr = errors.New("connection refused")
	s := &RedisHashStore{client: fake}

	err := s.SetHash(context.Background(), "k", map[string]interface{}{"a": 1}, 0)
	assert.ErrorContains(t, err, "connection refused")
	assert.NoError(t, s.Close())
}
