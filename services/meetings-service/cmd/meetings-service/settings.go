package main

import (
	"errors"
	"time"

	"github.com/md-rashed-zaman/meetings/libs/config"
)

type settings struct {
	Service  string
	Port     string
	GRPCPort string

	DatabaseURL string
	DBMaxConns  int

	IntegrationsURL string
	BusyTimeout     time.Duration

	SlotStep               time.Duration
	LegacyFixedGranularity bool
	HorizonWeeks           int

	KafkaBrokers    string
	OutboxPoll      time.Duration
	OutboxBatchSize int
	OutboxRetention time.Duration

	RedisAddr          string
	RedisPassword      string
	RedisDB            int
	RateLimitPerMinute int
	RateLimitFailOpen  bool

	JWTSecret    string
	JWKSURL      string
	JWKSTTL      time.Duration
	AuthDisabled bool

	CORSAllowedOrigins []string
	RequestTimeout     time.Duration
	BodyLimitBytes     int
}

func loadSettings() (settings, error) {
	s := settings{
		Service:                config.String("SERVICE_NAME", "meetings-service"),
		KafkaBrokers:           config.String("KAFKA_BROKERS", ""),
		RedisAddr:              config.String("REDIS_ADDR", ""),
		RedisPassword:          config.String("REDIS_PASSWORD", ""),
		LegacyFixedGranularity: config.Bool("LEGACY_FIXED_GRANULARITY", false),
		RateLimitFailOpen:      config.Bool("RATE_LIMIT_FAIL_OPEN", true),
		JWTSecret:              config.String("JWT_SECRET", ""),
		JWKSURL:                config.String("JWKS_URL", ""),
		AuthDisabled:           config.Bool("AUTH_DISABLED", false),
		CORSAllowedOrigins:     config.List("CORS_ALLOWED_ORIGINS", "*"),
	}

	var errs []error
	collect := func(err error) {
		if err != nil {
			errs = append(errs, err)
		}
	}

	var err error
	s.Port, err = config.Port("PORT", "8085")
	collect(err)
	s.GRPCPort, err = config.Port("GRPC_PORT", "9095")
	collect(err)
	s.DatabaseURL, err = config.RequiredString("DATABASE_URL")
	collect(err)
	s.IntegrationsURL, err = config.RequiredString("INTEGRATIONS_API_URL")
	collect(err)
	s.BusyTimeout, err = config.Duration("BUSY_PROVIDER_TIMEOUT", 10*time.Second)
	collect(err)
	s.RequestTimeout, err = config.Duration("REQUEST_TIMEOUT", 30*time.Second)
	collect(err)

	stepMinutes, err := config.PositiveInt("SLOT_STEP_MINUTES", 15)
	collect(err)
	s.SlotStep = time.Duration(stepMinutes) * time.Minute
	s.HorizonWeeks, err = config.PositiveInt("HORIZON_WEEKS", 6)
	collect(err)
	s.RateLimitPerMinute, err = config.PositiveInt("RATE_LIMIT_PER_MINUTE", 120)
	collect(err)
	s.BodyLimitBytes, err = config.PositiveInt("REQUEST_BODY_LIMIT_BYTES", 1<<20)
	collect(err)
	jwksSeconds, err := config.PositiveInt("JWKS_CACHE_SECONDS", 300)
	collect(err)
	s.JWKSTTL = time.Duration(jwksSeconds) * time.Second

	s.RedisDB, err = config.NonNegativeInt("REDIS_DB", 0)
	collect(err)
	s.DBMaxConns, err = config.NonNegativeInt("DB_MAX_CONNS", 0)
	collect(err)

	s.OutboxPoll, err = config.Duration("OUTBOX_POLL_INTERVAL", 2*time.Second)
	collect(err)
	s.OutboxBatchSize, err = config.PositiveInt("OUTBOX_BATCH_SIZE", 50)
	collect(err)
	s.OutboxRetention, err = config.Duration("OUTBOX_RETENTION", 7*24*time.Hour)
	collect(err)

	if !s.AuthDisabled && s.JWTSecret == "" && s.JWKSURL == "" {
		collect(errors.New("JWT_SECRET or JWKS_URL is required unless AUTH_DISABLED=true"))
	}
	return s, errors.Join(errs...)
}
