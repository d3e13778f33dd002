// Package redis holds the storefront's optional Redis features: idempotency
// records, submission rate-limit windows, the cached home page and the cron
// lock. Every key lives under the "evergreen:" namespace.
package redis

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/evergreenfarmers/storefront/pkg/config"
	"github.com/evergreenfarmers/storefront/pkg/logger"
)

// Nil is returned by Get when a key does not exist.
var Nil = redis.Nil

var errNotConnected = errors.New("redis client not initialized")

// commands is the slice of go-redis the storefront uses; tests substitute an
// in-memory fake.
type commands interface {
	Ping(ctx context.Context) *redis.StatusCmd
	Get(ctx context.Context, key string) *redis.StringCmd
	Set(ctx context.Context, key string, value any, ttl time.Duration) *redis.StatusCmd
	SetNX(ctx context.Context, key string, value any, ttl time.Duration) *redis.BoolCmd
	Del(ctx context.Context, keys ...string) *redis.IntCmd
	Incr(ctx context.Context, key string) *redis.IntCmd
	ExpireNX(ctx context.Context, key string, ttl time.Duration) *redis.BoolCmd
}

// Client is the storefront's handle on Redis.
type Client struct {
	cmd  commands
	conn *redis.Client
}

// IdempotencyStore is what the checkout idempotency guard needs.
type IdempotencyStore interface {
	Get(ctx context.Context, key string) (string, error)
	SetNX(ctx context.Context, key string, value any, ttl time.Duration) (bool, error)
	Del(ctx context.Context, keys ...string) error
	IdempotencyKey(scope, id string) string
}

// WindowCounter counts hits inside a fixed window per scope.
type WindowCounter interface {
	WindowCount(ctx context.Context, scope string, window time.Duration) (int64, error)
}

// Cache stores JSON documents under namespaced keys.
type Cache interface {
	CacheKey(parts ...string) string
	GetJSON(ctx context.Context, key string, dest any) (bool, error)
	SetJSON(ctx context.Context, key string, value any, ttl time.Duration) error
}

// New connects using cfg and fails unless Redis answers PING.
func New(ctx context.Context, cfg config.RedisConfig, logg *logger.Logger) (*Client, error) {
	opts, err := optionsFromConfig(cfg)
	if err != nil {
		return nil, err
	}
	conn := redis.NewClient(opts)
	if err := conn.Ping(ctx).Err(); err != nil {
		_ = conn.Close()
		return nil, fmt.Errorf("ping redis at %s: %w", opts.Addr, err)
	}
	if logg != nil {
		logg.Info(logg.WithFields(ctx, map[string]any{"addr": opts.Addr, "db": opts.DB}), "redis connection established")
	}
	return &Client{cmd: conn, conn: conn}, nil
}

// optionsFromConfig prefers EVERGREEN_REDIS_URL; the discrete settings fill
// whatever the URL leaves unset.
func optionsFromConfig(cfg config.RedisConfig) (*redis.Options, error) {
	if !cfg.Enabled() {
		return nil, errors.New("redis url or address is required")
	}
	opts := &redis.Options{Addr: cfg.Address, Password: cfg.Password, DB: cfg.DB}
	if cfg.URL != "" {
		parsed, err := redis.ParseURL(cfg.URL)
		if err != nil {
			return nil, fmt.Errorf("parsing redis url: %w", err)
		}
		opts = parsed
		if opts.DB == 0 {
			opts.DB = cfg.DB
		}
	}
	opts.PoolSize = orConfigured(opts.PoolSize, cfg.PoolSize)
	opts.MinIdleConns = orConfigured(opts.MinIdleConns, cfg.MinIdleConns)
	opts.DialTimeout = orConfigured(opts.DialTimeout, cfg.DialTimeout)
	opts.ReadTimeout = orConfigured(opts.ReadTimeout, cfg.ReadTimeout)
	opts.WriteTimeout = orConfigured(opts.WriteTimeout, cfg.WriteTimeout)
	return opts, nil
}

// orConfigured keeps a value set by the URL and falls back to the configured one.
func orConfigured[T comparable](fromURL, configured T) T {
	var zero T
	if fromURL != zero {
		return fromURL
	}
	return configured
}

// Ping reports whether Redis answers; used by readiness.
func (c *Client) Ping(ctx context.Context) error {
	if c.cmd == nil {
		return errNotConnected
	}
	return c.cmd.Ping(ctx).Err()
}

// Close releases the connection pool. A client built without New is a no-op.
func (c *Client) Close() error {
	if c.conn == nil {
		return nil
	}
	return c.conn.Close()
}
