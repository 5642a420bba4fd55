package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// Config is filled from VALKEY_* variables. The cache is off when Addr is empty.
type Config struct {
	Addr     string
	Password string
	DB       int           `default:"0"`
	StatsTTL time.Duration `split_words:"true" default:"30s"`
}

func (c Config) Enabled() bool {
	return c.Addr != ""
}

// ValkeyClient caches aggregated stats payloads under "stats:<resource>".
type ValkeyClient struct {
	client   *redis.Client
	statsTTL time.Duration
}

func NewValkeyClient(cfg Config) (*ValkeyClient, error) {
	rdb := redis.NewClient(&redis.Options{
		Addr:         cfg.Addr,
		Password:     cfg.Password,
		DB:           cfg.DB,
		ReadTimeout:  2 * time.Second,
		WriteTimeout: 2 * time.Second,
		DialTimeout:  5 * time.Second,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := rdb.Ping(ctx).Err(); err != nil {
		rdb.Close()
		return nil, fmt.Errorf("failed to connect to Valkey: %w", err)
	}

	return NewWithClient(rdb, cfg.StatsTTL), nil
}

// NewWithClient wraps an existing client.
func NewWithClient(rdb *redis.Client, statsTTL time.Duration) *ValkeyClient {
	if statsTTL <= 0 {
		statsTTL = 30 * time.Second
	}
	return &ValkeyClient{client: rdb, statsTTL: statsTTL}
}

func statsKey(resource string) string {
	return "stats:" + resource
}

// GetStats decodes the cached stats of resource into dst. It reports false
// on a cache miss.
func (v *ValkeyClient) GetStats(ctx context.Context, resource string, dst any) (bool, error) {
	raw, err := v.client.Get(ctx, statsKey(resource)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return false, nil
		}
		return false, fmt.Errorf("cache lookup error: %w", err)
	}
	if err := json.Unmarshal(raw, dst); err != nil {
		return false, fmt.Errorf("invalid cached stats: %w", err)
	}
	return true, nil
}

func (v *ValkeyClient) SetStats(ctx context.Context, resource string, stats any) error {
	payload, err := json.Marshal(stats)
	if err != nil {
		return fmt.Errorf("failed to marshal stats: %w", err)
	}
	if err := v.client.Set(ctx, statsKey(resource), string(payload), v.statsTTL).Err(); err != nil {
		return fmt.Errorf("failed to cache stats: %w", err)
	}
	return nil
}

// InvalidateStats drops the cached stats of resource after a write.
func (v *ValkeyClient) InvalidateStats(ctx context.Context, resource string) error {
	if err := v.client.Del(ctx, statsKey(resource)).Err(); err != nil {
		return fmt.Errorf("failed to invalidate stats: %w", err)
	}
	return nil
}

func (v *ValkeyClient) Ping(ctx context.Context) error {
	return v.client.Ping(ctx).Err()
}

func (v *ValkeyClient) Close() error {
	return v.client.Close()
}
