package main

import (
	"strconv"

	"github.com/hibiken/asynq"
	"github.com/rs/zerolog/log"

	"tropharbour-backend/internal/config"
)

// Config holds the worker settings derived from the application config.
type Config struct {
	Redis       asynq.RedisClientOpt
	Concurrency int
	HealthAddr  string
}

func loadConfig(app *config.Config) *Config {
	concurrency, err := strconv.Atoi(getEnv("WORKER_CONCURRENCY", "10"))
	if err != nil || concurrency < 1 {
		concurrency = 10
	}

	cfg := &Config{
		Redis: asynq.RedisClientOpt{
			Addr:     app.Redis.Host,
			Password: app.Redis.Password,
			DB:       app.Redis.DB,
		},
		Concurrency: concurrency,
		HealthAddr:  getEnv("WORKER_HEALTH_ADDR", ":9999"),
	}

	log.Info().
		Str("redis", cfg.Redis.Addr).
		Int("concurrency", cfg.Concurrency).
		Msg("[Config] Worker configured")

	return cfg
}
