// Package app wires shared infrastructure used by the api and worker binaries.
package app

import (
	"fmt"
	"net/http"
	"time"

	migrate "github.com/golang-migrate/migrate/v4"
	_ "github.com/golang-migrate/migrate/v4/database/postgres"
	"github.com/golang-migrate/migrate/v4/source/iofs"
	"github.com/hibiken/asynq"
	redis "github.com/redis/go-redis/v9"
	limiter "github.com/ulule/limiter/v3"
	limitermw "github.com/ulule/limiter/v3/drivers/middleware/stdlib"
	limiterredis "github.com/ulule/limiter/v3/drivers/store/redis"

	"github.com/yusapos/backend-pos/internal/alert"
	"github.com/yusapos/backend-pos/migrations"
)

// MigrateUp applies all pending schema migrations. A schema that is already
// current is not an error.
func MigrateUp(databaseURL string) error {
	src, err := iofs.New(migrations.FS, ".")
	if err != nil {
		return fmt.Errorf("open migration source: %w", err)
	}
	m, err := migrate.NewWithSourceInstance("iofs", src, databaseURL)
	if err != nil {
		return fmt.Errorf("open migrations: %w", err)
	}
	defer func() {
		_, _ = m.Close()
	}()
	if err := m.Up(); err != nil && err != migrate.ErrNoChange {
		return fmt.Errorf("apply migrations: %w", err)
	}
	return nil
}

// NewRateLimitMiddleware builds a per-client request limiter backed by Redis.
func NewRateLimitMiddleware(rdb *redis.Client, perMinute int) (func(http.Handler) http.Handler, error) {
	store, err := limiterredis.NewStoreWithOptions(rdb, limiter.StoreOptions{Prefix: "pos:ratelimit"})
	if err != nil {
		return nil, fmt.Errorf("limiter store: %w", err)
	}
	rate := limiter.Rate{Period: time.Minute, Limit: int64(perMinute)}
	mw := limitermw.NewMiddleware(limiter.New(store, rate))
	return mw.Handler, nil
}

// NewTaskClient opens an asynq client on the shared Redis instance.
func NewTaskClient(redisURL string) (*asynq.Client, error) {
	opt, err := asynq.ParseRedisURI(redisURL)
	if err != nil {
		return nil, fmt.Errorf("parse redis uri: %w", err)
	}
	return asynq.NewClient(opt), nil
}

// NewTaskServer opens the asynq server consuming the alerts queue.
func NewTaskServer(redisURL string, concurrency int) (*asynq.Server, error) {
	opt, err := asynq.ParseRedisURI(redisURL)
	if err != nil {
		return nil, fmt.Errorf("parse redis uri: %w", err)
	}
	if concurrency <= 0 {
		concurrency = 5
	}
	return asynq.NewServer(opt, asynq.Config{
		Concurrency: concurrency,
		Queues:      map[string]int{alert.QueueAlerts: 1},
	}), nil
}
