package main

import (
	"os"
	"strings"

	"github.com/hibiken/asynq"

	"github.com/yusapos/backend-pos/internal/alert"
	"github.com/yusapos/backend-pos/internal/app"
	"github.com/yusapos/backend-pos/internal/config"
	"github.com/yusapos/backend-pos/internal/obs"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		panic(err)
	}

	logFormat := envOrDefault("OBS_LOG_FORMAT", "json")
	logLevel := envOrDefault("OBS_LOG_LEVEL", "info")
	logger := obs.NewLogger(logFormat, logLevel).With().Str("component", "worker").Logger()

	srv, err := app.NewTaskServer(cfg.RedisURL, cfg.WorkerConcurrency)
	if err != nil {
		logger.Fatal().Err(err).Msg("initialise task server")
	}

	worker := &alert.Worker{Log: logger}

	mux := asynq.NewServeMux()
	mux.HandleFunc(alert.TaskStockLow, worker.HandleStockLow)

	// Run handles SIGINT and SIGTERM itself and drains in-flight tasks
	// before returning.
	logger.Info().Msg("worker starting")
	if err := srv.Run(mux); err != nil {
		logger.Fatal().Err(err).Msg("worker stopped with error")
	}
	logger.Info().Msg("worker shutdown complete")
}

func envOrDefault(key, fallback string) string {
	if val, ok := os.LookupEnv(key); ok {
		trimmed := strings.TrimSpace(val)
		if trimmed != "" {
			return trimmed
		}
	}
	return fallback
}
