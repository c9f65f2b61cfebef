package main

import (
	"context"
	"net"
	"net/http"
	"time"

	"github.com/md-rashed-zaman/meetings/libs/auth"
	"github.com/md-rashed-zaman/meetings/libs/db"
	"github.com/md-rashed-zaman/meetings/libs/grpcx"
	"github.com/md-rashed-zaman/meetings/libs/httpx"
	"github.com/md-rashed-zaman/meetings/libs/kafkax"
	otelx "github.com/md-rashed-zaman/meetings/libs/otel"
	"github.com/md-rashed-zaman/meetings/libs/runtime"
	"github.com/md-rashed-zaman/meetings/services/meetings-service/internal/availability"
	"github.com/md-rashed-zaman/meetings/services/meetings-service/internal/busy"
	"github.com/md-rashed-zaman/meetings/services/meetings-service/internal/handlers"
	"github.com/md-rashed-zaman/meetings/services/meetings-service/internal/outbox"
	"github.com/md-rashed-zaman/meetings/services/meetings-service/internal/storage"
	"github.com/redis/go-redis/v9"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
)

func main() {
	cfg, err := loadSettings()
	logger := runtime.NewLogger(cfg.Service)
	if err != nil {
		logger.Error("invalid configuration", "err", err)
		panic(err)
	}

	ctx, stop := runtime.SignalContext()
	defer stop()

	otelShutdown, err := otelx.Setup(ctx, otelx.ConfigFromEnv(cfg.Service))
	if err != nil {
		logger.Error("otel setup failed", "err", err)
	} else {
		defer func() {
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			_ = otelShutdown(shutdownCtx)
		}()
	}

	pool, err := db.Open(ctx, cfg.DatabaseURL, db.PoolConfig{MaxConns: int32(cfg.DBMaxConns)})
	if err != nil {
		logger.Error("db connection failed", "err", err)
		panic(err)
	}
	defer pool.Close()

	outboxRepo := outbox.NewRepository()
	repo := storage.NewRepository(pool, outboxRepo)
	busyClient := busy.NewClient(cfg.IntegrationsURL, cfg.BusyTimeout)
	slots := availability.NewService(repo, busyClient, logger, availability.Config{
		Step:                   cfg.SlotStep,
		LegacyFixedGranularity: cfg.LegacyFixedGranularity,
		HorizonWeeks:           cfg.HorizonWeeks,
	})

	publisher := outbox.NewPublisher(pool, outboxRepo, logger, outbox.PublisherConfig{
		Brokers:   kafkax.SplitBrokers(cfg.KafkaBrokers),
		PollEvery: cfg.OutboxPoll,
		BatchSize: cfg.OutboxBatchSize,
		Retention: cfg.OutboxRetention,
	})
	go publisher.Run(ctx)

	checks := []runtime.ReadyCheck{{Name: "db", Check: db.ReadyCheck(pool)}}
	if cfg.KafkaBrokers != "" {
		checks = append(checks, runtime.ReadyCheck{Name: "kafka", Check: kafkax.ReadyCheck(kafkax.SplitBrokers(cfg.KafkaBrokers))})
	}

	var rateLimitMW httpx.Middleware
	if cfg.RedisAddr != "" {
		rdb := redis.NewClient(&redis.Options{
			Addr:     cfg.RedisAddr,
			Password: cfg.RedisPassword,
			DB:       cfg.RedisDB,
		})
		defer func() { _ = rdb.Close() }()

		rl := httpx.NewRedisRateLimiter(rdb, cfg.RateLimitPerMinute, time.Minute, "meetings:rl")
		rateLimitMW = rl.Middleware(logger, cfg.RateLimitFailOpen)
		checks = append(checks, runtime.ReadyCheck{Name: "redis", Check: httpx.RedisReadyCheck(rdb)})
		logger.Info("rate limiting enabled (redis)", "per_minute", cfg.RateLimitPerMinute, "redis_addr", cfg.RedisAddr)
	} else {
		rateLimitMW = httpx.NewRateLimiter(cfg.RateLimitPerMinute, time.Minute).Middleware()
		logger.Info("rate limiting enabled (in-memory)", "per_minute", cfg.RateLimitPerMinute)
	}

	var verifier auth.Verifier
	verifier.Secret = cfg.JWTSecret
	if cfg.JWKSURL != "" {
		verifier.JWKS = auth.NewJWKSClient(cfg.JWKSURL, cfg.JWKSTTL, nil)
	}
	if cfg.AuthDisabled {
		logger.Warn("owner authentication disabled, owner id is read from the id query parameter")
	}

	mux := runtime.NewBaseMuxWithReady(checks...)
	handlers.New(handlers.Deps{
		Availabilities: repo,
		EventTypes:     repo,
		Bookings:       repo,
		Slots:          slots,
		Logger:         logger,
	}).Register(mux, requireOwner(verifier, cfg.AuthDisabled), rateLimitMW)

	handler := httpx.Chain(mux,
		httpx.WithCORS(httpx.CORSPolicy{
			AllowedOrigins: cfg.CORSAllowedOrigins,
			AllowedMethods: []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
			AllowedHeaders: []string{"Authorization", "Content-Type", httpx.RequestIDHeader},
			MaxAge:         10 * time.Minute,
		}),
		httpx.WithRequestID,
		httpx.WithAccessLog(logger),
		httpx.WithRecover(logger),
		httpx.WithBodyLimit(int64(cfg.BodyLimitBytes)),
		httpx.WithTimeout(cfg.RequestTimeout),
	)
	handler = otelhttp.NewHandler(handler, "meetings")
	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           handler,
		ReadHeaderTimeout: 5 * time.Second,
	}

	lis, err := net.Listen("tcp", ":"+cfg.GRPCPort)
	if err != nil {
		logger.Error("grpc listen failed", "err", err)
	} else {
		grpcSrv, health := grpcx.NewServer()
		grpcx.Serve(ctx, logger, grpcSrv, health, lis)
	}

	if err := runtime.ServeHTTP(ctx, logger, srv, 10*time.Second); err != nil {
		logger.Error("http server error", "err", err)
	}
	logger.Info("http server stopped")
}
