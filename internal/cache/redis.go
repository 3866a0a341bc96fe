package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/julianstephens/tracked/internal/constants"
	"github.com/julianstephens/tracked/internal/logger"
	"github.com/julianstephens/tracked/internal/models"
)

// Redis is a MonthCache shared between server instances.
type Redis struct {
	client *redis.Client
	ttl    time.Duration
}

// NewRedis connects to the server at url (redis://host:port/db) and
// verifies the connection.
func NewRedis(url string, ttl time.Duration) (*Redis, error) {
	opts, err := redis.ParseURL(url)
	if err != nil {
		return nil, fmt.Errorf("invalid redis url: %w", err)
	}
	opts.ReadTimeout = 3 * time.Second
	opts.WriteTimeout = 3 * time.Second
	client := redis.NewClient(opts)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := client.Ping(ctx).Err(); err != nil {
		client.Close()
		return nil, fmt.Errorf("failed to connect to Redis: %w", err)
	}

	return NewRedisWithClient(client, ttl), nil
}

// NewRedisWithClient wraps an existing client.
func NewRedisWithClient(client *redis.Client, ttl time.Duration) *Redis {
	return &Redis{client: client, ttl: ttl}
}

func (r *Redis) Get(ctx context.Context, year, month int) (models.MonthView, bool) {
	data, err := r.client.Get(ctx, monthKey(year, month)).Bytes()
	if errors.Is(err, redis.Nil) {
		return models.MonthView{}, false
	}
	if err != nil {
		logger.Warn("Month cache read failed", "error", err)
		return models.MonthView{}, false
	}

	var view models.MonthView
	if err := json.Unmarshal(data, &view); err != nil {
		logger.Warn("Discarding unreadable cached month", "error", err)
		r.Invalidate(ctx, year, month)
		return models.MonthView{}, false
	}
	return view, true
}

func (r *Redis) Set(ctx context.Context, view models.MonthView) {
	data, err := json.Marshal(view)
	if err != nil {
		logger.Warn("Failed to encode month for cache", "error", err)
		return
	}
	if err := r.client.Set(ctx, monthKey(view.Year, view.Month), data, r.ttl).Err(); err != nil {
		logger.Warn("Month cache write failed", "error", err)
	}
}

func (r *Redis) Invalidate(ctx context.Context, year, month int) {
	if err := r.client.Del(ctx, monthKey(year, month)).Err(); err != nil {
		logger.Warn("Month cache invalidation failed", "error", err)
	}
}

func (r *Redis) InvalidateAll(ctx context.Context) {
	iter := r.client.Scan(ctx, 0, constants.AppName+":month:*", 100).Iterator()
	var keys []string
	for iter.Next(ctx) {
		keys = append(keys, iter.Val())
	}
	if err := iter.Err(); err != nil {
		logger.Warn("Month cache scan failed", "error", err)
		return
	}
	if len(keys) == 0 {
		return
	}
	if err := r.client.Del(ctx, keys...).Err(); err != nil {
		logger.Warn("Month cache invalidation failed", "error", err)
	}
}

func (r *Redis) Close() error {
	return r.client.Close()
}
