package redis

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/evergreenfarmers/storefront/pkg/config"
)

type fakeCommands struct {
	data    map[string]string
	counts  map[string]int64
	expires map[string]time.Duration
	failGet error
}

func newFakeCommands() *fakeCommands {
	return &fakeCommands{
		data:    map[string]string{},
		counts:  map[string]int64{},
		expires: map[string]time.Duration{},
	}
}

func (f *fakeCommands) Ping(context.Context) *redis.StatusCmd {
	return redis.NewStatusResult("PONG", nil)
}

func (f *fakeCommands) Get(_ context.Context, key string) *redis.StringCmd {
	if f.failGet != nil {
		return redis.NewStringResult("", f.failGet)
	}
	v, ok := f.data[key]
	if !ok {
		return redis.NewStringResult("", redis.Nil)
	}
	return redis.NewStringResult(v, nil)
}

func (f *fakeCommands) Set(_ context.Context, key string, value any, _ time.Duration) *redis.StatusCmd {
	f.data[key] = fmt.Sprintf("%s", value)
	return redis.NewStatusResult("OK", nil)
}

func (f *fakeCommands) SetNX(_ context.Context, key string, value any, _ time.Duration) *redis.BoolCmd {
	if _, exists := f.data[key]; exists {
		return redis.NewBoolResult(false, nil)
	}
	f.data[key] = fmt.Sprintf("%s", value)
	return redis.NewBoolResult(true, nil)
}

func (f *fakeCommands) Del(_ context.Context, keys ...string) *redis.IntCmd {
	for _, key := range keys {
		delete(f.data, key)
	}
	return redis.NewIntResult(int64(len(keys)), nil)
}

func (f *fakeCommands) Incr(_ context.Context, key string) *redis.IntCmd {
	f.counts[key]++
	return redis.NewIntResult(f.counts[key], nil)
}

func (f *fakeCommands) ExpireNX(_ context.Context, key string, ttl time.Duration) *redis.BoolCmd {
	if _, set := f.expires[key]; set {
		return redis.NewBoolResult(false, nil)
	}
	f.expires[key] = ttl
	return redis.NewBoolResult(true, nil)
}

func TestWindowCount(t *testing.T) {
	ctx := context.Background()
	fake := newFakeCommands()
	client := &Client{cmd: fake}

	for want := int64(1); want <= 3; want++ {
		got, err := client.WindowCount(ctx, "ip:review:10.0.0.1", time.Minute)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if got != want {
			t.Fatalf("expected count %d got %d", want, got)
		}
	}
	if ttl := fake.expires["evergreen:rate_limit:ip:review:10.0.0.1"]; ttl != time.Minute {
		t.Fatalf("expected namespaced window key with 1m ttl, got %v (%v)", ttl, fake.expires)
	}
}

func TestJSONCache(t *testing.T) {
	ctx := context.Background()
	fake := newFakeCommands()
	client := &Client{cmd: fake}

	type homePage struct {
		Featured []string `json:"featured"`
	}
	key := client.CacheKey("home")
	if key != "evergreen:cache:home" {
		t.Fatalf("unexpected cache key %s", key)
	}

	var miss homePage
	found, err := client.GetJSON(ctx, key, &miss)
	if err != nil || found {
		t.Fatalf("expected clean miss, found=%v err=%v", found, err)
	}

	if err := client.SetJSON(ctx, key, homePage{Featured: []string{"maize"}}, time.Minute); err != nil {
		t.Fatalf("set failed: %v", err)
	}
	var hit homePage
	found, err = client.GetJSON(ctx, key, &hit)
	if err != nil || !found {
		t.Fatalf("expected hit, found=%v err=%v", found, err)
	}
	if len(hit.Featured) != 1 || hit.Featured[0] != "maize" {
		t.Fatalf("unexpected cached value %+v", hit)
	}

	fake.data[key] = "{not json"
	if _, err := client.GetJSON(ctx, key, &hit); err == nil {
		t.Fatalf("expected decode error for corrupt entry")
	}

	fake.failGet = errors.New("connection reset")
	if _, err := client.GetJSON(ctx, key, &hit); err == nil {
		t.Fatalf("expected transport error to surface")
	}
}

func TestKeyBuilders(t *testing.T) {
	client := &Client{}
	if got := client.IdempotencyKey("session-1|/checkout/whatsapp/", "abc"); got != "evergreen:idempotency:session-1|/checkout/whatsapp/:abc" {
		t.Fatalf("unexpected idempotency key %s", got)
	}
	if got := client.CacheKey("home", " "); got != "evergreen:cache:home" {
		t.Fatalf("cache key should skip blank parts, got %s", got)
	}
}

func TestUninitializedClient(t *testing.T) {
	client := &Client{}
	ctx := context.Background()
	if err := client.Ping(ctx); err == nil {
		t.Fatalf("expected error from uninitialized client")
	}
	if _, err := client.WindowCount(ctx, "x", time.Second); err == nil {
		t.Fatalf("expected error from uninitialized client")
	}
	if err := client.Close(); err != nil {
		t.Fatalf("close without connection should be a no-op, got %v", err)
	}
}

func TestOptionsFromConfig(t *testing.T) {
	if _, err := optionsFromConfig(config.RedisConfig{}); err == nil {
		t.Fatalf("expected error without url or address")
	}

	opts, err := optionsFromConfig(config.RedisConfig{URL: "redis://:secret@cache.internal:6380/2", PoolSize: 7, DialTimeout: time.Second})
	if err != nil {
		t.Fatalf("parse url: %v", err)
	}
	if opts.Addr != "cache.internal:6380" || opts.DB != 2 || opts.Password != "secret" {
		t.Fatalf("unexpected options from url: %+v", opts)
	}
	if opts.PoolSize != 7 || opts.DialTimeout != time.Second {
		t.Fatalf("expected configured pool settings to fill gaps: %+v", opts)
	}

	opts, err = optionsFromConfig(config.RedisConfig{Address: "localhost:6379", DB: 3})
	if err != nil {
		t.Fatalf("address config: %v", err)
	}
	if opts.Addr != "localhost:6379" || opts.DB != 3 {
		t.Fatalf("unexpected options from address: %+v", opts)
	}
}
