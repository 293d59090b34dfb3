package main

import (
	"github.com/go-redis/redis/v8"
	"github.com/hibiken/asynq"
	"go.uber.org/zap"

	"github.com/BruksfildServices01/barber-loyalty/internal/config"
	"github.com/BruksfildServices01/barber-loyalty/internal/logging"
	"github.com/BruksfildServices01/barber-loyalty/internal/mailer"
	"github.com/BruksfildServices01/barber-loyalty/internal/tasks"
	"github.com/BruksfildServices01/barber-loyalty/internal/timezone"
)

// The worker delivers appointment reminders queued by the API.
func main() {
	cfg := config.Load()
	log := logging.New(cfg.IsProduction(), cfg.LogLevel)
	defer func() { _ = log.Sync() }()

	if cfg.RedisURL == "" {
		log.Fatal("REDIS_URL is required by the worker")
	}
	opt, err := redis.ParseURL(cfg.RedisURL)
	if err != nil {
		log.Fatal("parse REDIS_URL", zap.Error(err))
	}

	srv := asynq.NewServer(asynq.RedisClientOpt{
		Addr:     opt.Addr,
		Password: opt.Password,
		DB:       opt.DB,
	}, asynq.Config{
		Concurrency: 5,
		Logger:      log.Sugar(),
	})

	sender := mailer.New(cfg.SMTP, log)
	handler := tasks.NewReminderHandler(sender, timezone.Location(cfg.Timezone), log)

	log.Info("worker running", zap.Bool("smtp", cfg.SMTP.Enabled()))
	if err := srv.Run(tasks.NewServeMux(handler)); err != nil {
		log.Fatal("worker", zap.Error(err))
	}
}
