package config

import (
	"fmt"
	"log/slog"
	"net/url"
	"strings"
	"time"

	"healthlab-backend/internal/store"

	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
)

type Config struct {
	Env      string `envconfig:"APP_ENV" default:"development"`
	Port     string `envconfig:"PORT" default:"8000"`
	LogLevel string `envconfig:"LOG_LEVEL" default:"info"`

	DatabaseURL   string `envconfig:"DATABASE_URL"`
	DatabaseName  string `envconfig:"DATABASE_NAME"`
	StorageDriver string `envconfig:"STORAGE_DRIVER"`

	FrontendOrigins []string `envconfig:"FRONTEND_ORIGINS" default:"*"`

	RateLimitChat      int `envconfig:"RATE_LIMIT_CHAT" default:"30"`
	RateLimitReports   int `envconfig:"RATE_LIMIT_REPORTS" default:"10"`
	RateLimitWindowSec int `envconfig:"RATE_LIMIT_WINDOW_SEC" default:"60"`

	RedisURL        string `envconfig:"REDIS_URL"`
	RedisAddr       string `envconfig:"REDIS_ADDR"`
	RedisPassword   string `envconfig:"REDIS_PASSWORD"`
	RedisDB         int    `envconfig:"REDIS_DB" default:"0"`
	CacheTTLSeconds int    `envconfig:"CACHE_TTL_SECONDS" default:"60"`

	RabbitURL      string `envconfig:"RABBIT_URL"`
	RabbitExchange string `envconfig:"RABBIT_EXCHANGE" default:"healthlab.events"`

	BrevoAPIKey      string `envconfig:"BREVO_API_KEY"`
	BrevoSenderEmail string `envconfig:"BREVO_SENDER_EMAIL"`
	BrevoSenderName  string `envconfig:"BREVO_SENDER_NAME" default:"HealthLab"`
	BrevoSandbox     bool   `envconfig:"BREVO_SANDBOX" default:"false"`

	TimezoneName string         `envconfig:"TZ" default:"UTC"`
	Timezone     *time.Location `ignored:"true"`
}

func Load() (*Config, error) {
	// Variables already present in the environment win over .env.
	_ = godotenv.Load()

	var cfg Config
	if err := envconfig.Process("", &cfg); err != nil {
		return nil, fmt.Errorf("process env: %w", err)
	}
	if err := cfg.normalize(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func (c *Config) normalize() error {
	loc, err := time.LoadLocation(c.TimezoneName)
	if err != nil {
		return fmt.Errorf("load timezone %q: %w", c.TimezoneName, err)
	}
	c.Timezone = loc

	if c.DatabaseName == "" {
		c.DatabaseName = mongoDBFromURI(c.DatabaseURL)
	}
	if c.DatabaseName == "" {
		c.DatabaseName = "healthlab"
	}

	c.StorageDriver = strings.ToLower(strings.TrimSpace(c.StorageDriver))
	if c.StorageDriver == "" {
		if c.DatabaseURL != "" {
			c.StorageDriver = store.DriverMongo
		} else {
			c.StorageDriver = store.DriverStatic
		}
	}
	switch c.StorageDriver {
	case store.DriverMongo:
		if c.DatabaseURL == "" {
			return fmt.Errorf("STORAGE_DRIVER=mongo requires DATABASE_URL")
		}
	case store.DriverMemory, store.DriverStatic:
	default:
		return fmt.Errorf("unknown STORAGE_DRIVER %q", c.StorageDriver)
	}

	origins := make([]string, 0, len(c.FrontendOrigins))
	for _, o := range c.FrontendOrigins {
		if o = strings.TrimSpace(o); o != "" {
			origins = append(origins, o)
		}
	}
	c.FrontendOrigins = origins
	return nil
}

func (c *Config) Addr() string {
	return ":" + c.Port
}

func (c *Config) SlogLevel() slog.Level {
	switch strings.ToLower(c.LogLevel) {
	case "debug":
		return slog.LevelDebug
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

func mongoDBFromURI(uri string) string {
	if uri == "" {
		return ""
	}
	u, err := url.Parse(uri)
	if err != nil {
		return ""
	}
	db := strings.Trim(u.Path, "/")
	if db == "" {
		return ""
	}
	// mongodb URIs sometimes include extra path segments; we only support the first one as db name.
	if idx := strings.Index(db, "/"); idx >= 0 {
		db = db[:idx]
	}
	return db
}
