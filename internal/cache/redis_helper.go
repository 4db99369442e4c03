package cache

import (
	"context"
	"fmt"
	"net"
	"time"

	"github.com/andresuchdata/filedrop/internal/config"
	"github.com/redis/go-redis/v9"
)

const (
	dialTimeout = 5 * time.Second
	ioTimeout   = 5 * time.Second
	pingTimeout = 5 * time.Second
)

func newRedisClient(cfg config.CacheConfig) (*redis.Client, error) {
	opts, err := buildRedisOptions(cfg)
	if err != nil {
		return nil, err
	}

	client := redis.NewClient(opts)

	ctx, cancel := context.WithTimeout(context.Background(), pingTimeout)
	defer cancel()
	if err := client.Ping(ctx).Err(); err != nil {
		client.Close()
		return nil, fmt.Errorf("redis ping failed: %w", err)
	}

	return client, nil
}

func buildRedisOptions(cfg config.CacheConfig) (*redis.Options, error) {
	if cfg.RedisURL != "" {
		opt, err := redis.ParseURL(cfg.RedisURL)
		if err != nil {
			return nil, fmt.Errorf("invalid redis url: %w", err)
		}
		applyTimeouts(opt)
		return opt, nil
	}

	host := cfg.RedisHost
	if host == "" {
		return nil, fmt.Errorf("redis host must be provided")
	}

	port := cfg.RedisPort
	if port == "" {
		port = "6379"
	}

	opt := &redis.Options{
		Addr:     net.JoinHostPort(host, port),
		Password: cfg.RedisPassword,
		DB:       cfg.RedisDB,
	}
	applyTimeouts(opt)
	return opt, nil
}

// applyTimeouts pins connect and socket timeouts and disables retries; a run
// must never block on an unreachable cache for longer than one attempt.
func applyTimeouts(opt *redis.Options) {
	opt.MaxRetries = -1
	opt.DialTimeout = dialTimeout
	opt.ReadTimeout = ioTimeout
	opt.WriteTimeout = ioTimeout
}
