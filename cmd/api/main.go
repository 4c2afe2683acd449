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

	"github.com/BruksfildServices01/barbershop-admin/internal/audit"
	"github.com/BruksfildServices01/barbershop-admin/internal/auth"
	"github.com/BruksfildServices01/barbershop-admin/internal/config"
	dbpkg "github.com/BruksfildServices01/barbershop-admin/internal/db"
	"github.com/BruksfildServices01/barbershop-admin/internal/infra/repository"
	"github.com/BruksfildServices01/barbershop-admin/internal/logger"
	"github.com/BruksfildServices01/barbershop-admin/internal/media"
	"github.com/BruksfildServices01/barbershop-admin/internal/metrics"
	"github.com/BruksfildServices01/barbershop-admin/internal/realtime"
	"github.com/BruksfildServices01/barbershop-admin/internal/reminder"
	"github.com/BruksfildServices01/barbershop-admin/internal/routes"
	"github.com/BruksfildServices01/barbershop-admin/internal/store"
	"github.com/BruksfildServices01/barbershop-admin/internal/timezone"
)

func main() {
	cfg := config.Load()
	log := logger.New(logger.Config{Env: cfg.Env, Level: cfg.LogLevel})
	metrics.Register()

	if !cfg.IsDevelopment() {
		gin.SetMode(gin.ReleaseMode)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	db := dbpkg.NewDB(cfg, log)

	var redisClient *redis.Client
	if cfg.NeedsRedis() {
		redisClient = redis.NewClient(&redis.Options{
			Addr:     cfg.RedisAddr,
			Password: cfg.RedisPassword,
			DB:       cfg.RedisDB,
		})
		if err := redisClient.Ping(ctx).Err(); err != nil {
			log.Fatal().Err(err).Str("addr", cfg.RedisAddr).Msg("redis unreachable")
		}
		defer redisClient.Close()
	}

	// ======================================================
	// Realtime: one broker, fed by the configured source
	// ======================================================
	broker := realtime.NewBroker(log)
	defer broker.Close()

	var pub realtime.Publisher
	switch cfg.RealtimeDriver {
	case "postgres":
		if cfg.DBDriver != "postgres" {
			log.Fatal().Str("db_driver", cfg.DBDriver).Msg("postgres realtime needs the postgres database driver")
		}
		// the triggers emit every change, including our own
		pub = realtime.NopPublisher{}
		listener := &realtime.PgListener{
			DSN:        cfg.DBUrl,
			Broker:     broker,
			Log:        log,
			RetryDelay: cfg.RealtimeReloadDelay,
			Heartbeat:  30 * time.Second,
		}
		go listener.Run(ctx)
	case "redis":
		bridge := realtime.NewRedisBridge(redisClient, cfg.RedisChannel, broker, log)
		pub = bridge
		go bridge.Run(ctx)
	default:
		pub = broker
	}

	// ======================================================
	// Hub
	// ======================================================
	hub := store.NewHub(
		repository.NewBackends(db, pub, log),
		broker,
		cfg.RealtimeReloadDelay,
		log,
	)
	hub.Start(ctx)
	defer hub.Stop()

	clock := timezone.NewClock(cfg.Timezone)

	scheduler := reminder.NewScheduler(
		reminder.NewQueue(cfg.ReminderLead, timezone.Location(cfg.Timezone)),
		hub.Appointments,
		reminder.LogNotifier{Log: log.Named("notifier")},
		cfg.ReminderInterval,
		clock,
		log,
	)
	go scheduler.Run(ctx)

	auditLog := audit.New(db)
	auditDispatcher := audit.NewDispatcher(auditLog, log)
	defer auditDispatcher.Close()

	// ======================================================
	// Auth
	// ======================================================
	var sessions auth.SessionStore = auth.NewMemoryStore()
	if cfg.SessionDriver == "redis" {
		sessions = auth.NewRedisStore(redisClient)
	}
	authService := auth.NewService(db, auth.NewTokens(cfg.JWTSecret), sessions, cfg.JWTExpiration)

	// ======================================================
	// Uploads
	// ======================================================
	var objects media.ObjectStore
	if cfg.UploadsEnabled() {
		objects = media.NewS3Store(media.S3Config{
			Bucket:    cfg.S3Bucket,
			Region:    cfg.S3Region,
			Endpoint:  cfg.S3Endpoint,
			AccessKey: cfg.S3AccessKey,
			SecretKey: cfg.S3SecretKey,
			PublicURL: cfg.S3PublicURL,
		})
	} else {
		log.Warn().Msg("S3_BUCKET not set, image uploads disabled")
	}
	uploader := media.NewUploader(media.Encoder{MaxWidth: cfg.ImageWidth}, objects)

	// ======================================================
	// HTTP
	// ======================================================
	r := gin.New()
	r.Use(gin.Recovery())

	routes.RegisterRoutes(r, routes.Deps{
		Config:   cfg,
		Hub:      hub,
		Auth:     authService,
		Audit:    auditDispatcher,
		AuditLog: auditLog,
		Uploader: uploader,
		Clock:    clock,
		Log:      log,
	})

	srv := &http.Server{
		Addr:              cfg.Addr(),
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
	}
	// closing the hub ends open SSE streams
	srv.RegisterOnShutdown(hub.Stop)

	go func() {
		log.Info().Str("addr", cfg.Addr()).Str("realtime", cfg.RealtimeDriver).Msg("server running")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal().Err(err).Msg("failed to start server")
		}
	}()

	<-ctx.Done()
	log.Info().Msg("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("graceful shutdown failed")
	}
}
