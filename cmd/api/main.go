package main

import (
	"context"
	"errors"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/go-redis/redis/v8"
	"github.com/hibiken/asynq"
	"go.uber.org/zap"

	"github.com/BruksfildServices01/barber-loyalty/internal/audit"
	"github.com/BruksfildServices01/barber-loyalty/internal/cache"
	"github.com/BruksfildServices01/barber-loyalty/internal/config"
	dbpkg "github.com/BruksfildServices01/barber-loyalty/internal/db"
	"github.com/BruksfildServices01/barber-loyalty/internal/events"
	infraRepo "github.com/BruksfildServices01/barber-loyalty/internal/infra/repository"
	"github.com/BruksfildServices01/barber-loyalty/internal/logging"
	"github.com/BruksfildServices01/barber-loyalty/internal/metrics"
	"github.com/BruksfildServices01/barber-loyalty/internal/push"
	"github.com/BruksfildServices01/barber-loyalty/internal/routes"
	"github.com/BruksfildServices01/barber-loyalty/internal/storage"
	"github.com/BruksfildServices01/barber-loyalty/internal/tasks"
	"github.com/BruksfildServices01/barber-loyalty/internal/telemetry"
	"github.com/BruksfildServices01/barber-loyalty/internal/validators"
)

func main() {
	cfg := config.Load()
	log := logging.New(cfg.IsProduction(), cfg.LogLevel)
	defer func() { _ = log.Sync() }()

	if cfg.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}
	if err := validators.Register(); err != nil {
		log.Fatal("register validators", zap.Error(err))
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if cfg.Tracing.Enabled {
		shutdown, err := telemetry.Setup(ctx, cfg.Tracing)
		if err != nil {
			log.Error("tracing setup failed", zap.Error(err))
		} else {
			defer func() {
				sctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
				defer cancel()
				_ = shutdown(sctx)
			}()
		}
	}

	// ======================================================
	// DATABASE
	// ======================================================
	conn, err := dbpkg.Open(ctx, cfg, log)
	if err != nil {
		log.Fatal("database", zap.Error(err))
	}
	defer conn.Close()

	if err := dbpkg.Seed(ctx, conn.DB, cfg, log); err != nil {
		log.Fatal("seed", zap.Error(err))
	}

	// ======================================================
	// REDIS-BACKED SERVICES (in-process fallbacks)
	// ======================================================
	hub := events.NewHub()
	hub.OnSubscribersChanged(func(n int) {
		metrics.FeedSubscribers.Set(float64(n))
	})

	var (
		catalogCache cache.Cache     = cache.NewMemory(cfg.CatalogCacheTTL)
		feed         events.Feed     = hub
		reminders    tasks.Scheduler = tasks.NoopScheduler{}
	)

	if cfg.RedisURL != "" {
		opt, err := redis.ParseURL(cfg.RedisURL)
		if err != nil {
			log.Fatal("parse REDIS_URL", zap.Error(err))
		}
		client := redis.NewClient(opt)
		defer client.Close()

		if err := client.Ping(ctx).Err(); err != nil {
			log.Warn("redis unreachable, using in-process cache and feed", zap.Error(err))
		} else {
			catalogCache = cache.NewRedis(client, "barber:")

			redisFeed := events.NewRedisFeed(client, hub, log)
			go redisFeed.Run(ctx)
			feed = redisFeed

			scheduler := tasks.NewAsynqScheduler(asynq.RedisClientOpt{
				Addr:     opt.Addr,
				Password: opt.Password,
				DB:       opt.DB,
			}, cfg.ReminderLead)
			defer scheduler.Close()
			reminders = scheduler
		}
	}

	var uploader storage.Uploader
	if cfg.S3.Enabled() {
		uploader = storage.NewS3(cfg.S3)
	}

	var notifier *push.Service
	if cfg.Push.Enabled() {
		notifier = push.NewService(infraRepo.NewPushGormRepository(conn.DB), cfg.Push, log)
	} else {
		log.Info("web push disabled, VAPID keys not set")
	}

	dispatcher := audit.NewDispatcher(audit.New(conn.DB), log)
	defer dispatcher.Close()

	// ======================================================
	// HTTP
	// ======================================================
	router := routes.NewRouter(routes.Deps{
		Config:       cfg,
		Log:          log,
		DB:           conn.DB,
		Users:        infraRepo.NewUserGormRepository(conn.DB),
		Appointments: infraRepo.NewAppointmentGormRepository(conn.DB),
		Catalog:      infraRepo.NewCatalogGormRepository(conn.DB),
		Cache:        catalogCache,
		Uploader:     uploader,
		Feed:         feed,
		Reminders:    reminders,
		Audit:        dispatcher,
		Push:         notifier,
	})

	srv := &http.Server{
		Addr:              cfg.Addr(),
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		log.Info("server running", zap.String("addr", cfg.Addr()))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal("listen", zap.Error(err))
		}
	}()

	<-ctx.Done()
	log.Info("shutting down")

	sctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(sctx); err != nil {
		log.Error("shutdown", zap.Error(err))
	}
}
