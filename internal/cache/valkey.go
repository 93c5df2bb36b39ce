package cache

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/redis/go-redis/v9"
)

// ValkeyClient caches rendered API responses (dashboard aggregates, event
// listings) with a short TTL. A cache failure is never fatal to a request.
type ValkeyClient struct {
	client *redis.Client
	ttl    time.Duration
}

type Config struct {
	Addr     string
	Password string
	TTL      time.Duration
}

func NewValkeyClient(cfg Config) (*ValkeyClient, error) {
	if cfg.TTL == 0 {
		cfg.TTL = 30 * time.Second
	}

	rdb := redis.NewClient(&redis.Options{
		Addr:         cfg.Addr,
		Password:     cfg.Password,
		DB:           0,
		ReadTimeout:  2 * time.Second,
		WriteTimeout: 2 * time.Second,
		DialTimeout:  5 * time.Second,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := rdb.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("failed to connect to Valkey: %w", err)
	}

	return &ValkeyClient{
		client: rdb,
		ttl:    cfg.TTL,
	}, nil
}

func eventsListKey(page, pageSize int) string {
	return fmt.Sprintf("events:list:%d:%d", page, pageSize)
}

const dashboardKey = "dashboard:stats"

// GetEventsListRaw returns the cached JSON for an events page, if present.
func (v *ValkeyClient) GetEventsListRaw(ctx context.Context, page, pageSize int) ([]byte, error) {
	data, err := v.client.Get(ctx, eventsListKey(page, pageSize)).Bytes()
	if err != nil {
		return nil, err
	}
	return data, nil
}

// SetEventsList stores an events page response.
func (v *ValkeyClient) SetEventsList(ctx context.Context, page, pageSize int, value interface{}) {
	payload, err := json.Marshal(value)
	if err != nil {
		slog.Error("Failed to marshal events list for cache", "error", err)
		return
	}
	if err := v.client.Set(ctx, eventsListKey(page, pageSize), payload, v.ttl).Err(); err != nil {
		slog.Warn("Failed to cache events list", "error", err)
	}
}

// GetDashboardRaw returns the cached dashboard JSON, if present.
func (v *ValkeyClient) GetDashboardRaw(ctx context.Context) ([]byte, error) {
	data, err := v.client.Get(ctx, dashboardKey).Bytes()
	if err != nil {
		return nil, err
	}
	return data, nil
}

// SetDashboard stores the dashboard response.
func (v *ValkeyClient) SetDashboard(ctx context.Context, value interface{}) {
	payload, err := json.Marshal(value)
	if err != nil {
		slog.Error("Failed to marshal dashboard for cache", "error", err)
		return
	}
	if err := v.client.Set(ctx, dashboardKey, payload, v.ttl).Err(); err != nil {
		slog.Warn("Failed to cache dashboard", "error", err)
	}
}

// InvalidateEvents drops cached event listings and the dashboard after a
// mutation.
func (v *ValkeyClient) InvalidateEvents(ctx context.Context) {
	iter := v.client.Scan(ctx, 0, "events:list:*", 100).Iterator()
	for iter.Next(ctx) {
		v.client.Del(ctx, iter.Val())
	}
	if err := iter.Err(); err != nil {
		slog.Warn("Failed to scan events cache keys", "error", err)
	}
	v.client.Del(ctx, dashboardKey)
}

func (v *ValkeyClient) Close() error {
	return v.client.Close()
}
