package main

import (
	"context"
	"errors"
	"log"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"healthlab-backend/internal/cache"
	"healthlab-backend/internal/catalog"
	"healthlab-backend/internal/config"
	"healthlab-backend/internal/db"
	"healthlab-backend/internal/events"
	"healthlab-backend/internal/handlers"
	"healthlab-backend/internal/notifications"
	"healthlab-backend/internal/store"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatal(err)
	}

	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: cfg.SlogLevel()}))

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	var st store.Store
	switch cfg.StorageDriver {
	case store.DriverMongo:
		client, database, err := db.Connect(ctx, cfg.DatabaseURL, cfg.DatabaseName)
		if err != nil {
			logger.Error("mongo connection failed", slog.String("error", err.Error()))
			os.Exit(1)
		}
		logger.Info("mongo connected", slog.String("database", cfg.DatabaseName))
		defer client.Disconnect(context.Background())

		if err := db.EnsureIndexes(ctx, database); err != nil {
			logger.Error("index creation failed", slog.String("error", err.Error()))
			os.Exit(1)
		}
		st = store.NewMongo(database)
	case store.DriverMemory:
		logger.Warn("using in-memory storage; data is lost on restart")
		st = store.NewMemory()
	default:
		static, err := store.NewStatic(catalog.DefaultTests())
		if err != nil {
			logger.Error("static catalog load failed", slog.String("error", err.Error()))
			os.Exit(1)
		}
		logger.Warn("database not configured; serving static catalog only")
		st = static
	}

	var cacheStore cache.Cache = cache.NewNoop()
	if cfg.RedisURL != "" || cfg.RedisAddr != "" {
		var redisCache *cache.RedisCache
		var err error
		if cfg.RedisURL != "" {
			redisCache, err = cache.NewRedisFromURL(cfg.RedisURL)
		} else {
			redisCache = cache.NewRedis(cfg.RedisAddr, cfg.RedisPassword, cfg.RedisDB)
		}
		if err != nil {
			logger.Error("redis connection failed", slog.String("error", err.Error()))
			os.Exit(1)
		}
		if err := redisCache.Ping(ctx); err != nil {
			logger.Error("redis connection failed", slog.String("error", err.Error()))
			os.Exit(1)
		}
		logger.Info("redis connected")
		defer redisCache.Close()
		cacheStore = redisCache
	}

	deps := handlers.Deps{Cache: cacheStore}

	if cfg.RabbitURL != "" {
		publisher, err := events.NewRabbitPublisher(cfg.RabbitURL, cfg.RabbitExchange)
		if err != nil {
			logger.Error("rabbitmq connection failed", slog.String("error", err.Error()))
			os.Exit(1)
		}
		logger.Info("rabbitmq connected", slog.String("exchange", cfg.RabbitExchange))
		defer publisher.Close()
		deps.Publisher = publisher
	}

	// Only assign a non-nil client: a nil *BrevoClient in the interface would
	// not compare equal to nil.
	if mailer := notifications.NewBrevoClient(cfg.BrevoAPIKey, cfg.BrevoSenderEmail, cfg.BrevoSenderName, cfg.BrevoSandbox); mailer != nil {
		logger.Info("brevo mailer enabled", slog.String("sender", cfg.BrevoSenderEmail), slog.Bool("sandbox", cfg.BrevoSandbox))
		deps.Mailer = mailer
	} else {
		logger.Info("brevo mailer disabled")
	}

	server := handlers.NewServer(cfg, st, logger, deps)

	srv := &http.Server{
		Addr:              cfg.Addr(),
		Handler:           server.Routes(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		logger.Info("server started", slog.String("addr", cfg.Addr()), slog.String("storage", cfg.StorageDriver))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("server error", slog.String("error", err.Error()))
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)
	<-stop

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("server shutdown error", slog.String("error", err.Error()))
	}
	server.Drain()
}
