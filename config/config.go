// Package config loads the service configuration: defaults, then an optional
// TOML file, then SHIPMENT_* environment variables.
package config

import (
	"errors"
	"fmt"
	"slices"
	"time"

	"github.com/BurntSushi/toml"
	"github.com/caarlos0/env/v11"
	"github.com/sirupsen/logrus"
)

const envPrefix = "SHIPMENT_"

type Config struct {
	ServiceName     string        `toml:"service_name" env:"SERVICE_NAME"`
	HTTPAddr        string        `toml:"http_addr" env:"HTTP_ADDR"`
	LogLevel        string        `toml:"log_level" env:"LOG_LEVEL"`
	LogFormat       string        `toml:"log_format" env:"LOG_FORMAT"`
	SessionDeadline time.Duration `toml:"session_deadline" env:"SESSION_DEADLINE"`
	ShutdownTimeout time.Duration `toml:"shutdown_timeout" env:"SHUTDOWN_TIMEOUT"`

	Store      Store      `toml:"store" envPrefix:"STORE_"`
	Bus        Bus        `toml:"bus" envPrefix:"BUS_"`
	Collection Collection `toml:"collection" envPrefix:"COLLECTION_"`
	Carrier    Carrier    `toml:"carrier" envPrefix:"CARRIER_"`
	OTel       OTel       `toml:"otel" envPrefix:"OTEL_"`
}

// Store selects the event store backend. DSN is a file path for sqlite, a
// connection string for postgres and kurrentdb, and unused for memory.
type Store struct {
	Driver         string        `toml:"driver" env:"DRIVER"`
	DSN            string        `toml:"dsn" env:"DSN"`
	ConnectTimeout time.Duration `toml:"connect_timeout" env:"CONNECT_TIMEOUT"`
}

type Bus struct {
	PoisonTopic      string        `toml:"poison_topic" env:"POISON_TOPIC"`
	BufferSize       int64         `toml:"buffer_size" env:"BUFFER_SIZE"`
	HandlerTimeout   time.Duration `toml:"handler_timeout" env:"HANDLER_TIMEOUT"`
	MaxRetries       int           `toml:"max_retries" env:"MAX_RETRIES"`
	RetryInterval    time.Duration `toml:"retry_interval" env:"RETRY_INTERVAL"`
	MaxRetryInterval time.Duration `toml:"max_retry_interval" env:"MAX_RETRY_INTERVAL"`
	BreakerTimeout   time.Duration `toml:"breaker_timeout" env:"BREAKER_TIMEOUT"`
	BreakerFailures  uint32        `toml:"breaker_failures" env:"BREAKER_FAILURES"`
}

type Collection struct {
	MaxDaysAhead  int           `toml:"max_days_ahead" env:"MAX_DAYS_AHEAD"`
	ScheduleDelay time.Duration `toml:"schedule_delay" env:"SCHEDULE_DELAY"`
	BookDelay     time.Duration `toml:"book_delay" env:"BOOK_DELAY"`
}

type Carrier struct {
	ResponseDelay  time.Duration `toml:"response_delay" env:"RESPONSE_DELAY"`
	RetryDelay     time.Duration `toml:"retry_delay" env:"RETRY_DELAY"`
	PublishRetries uint64        `toml:"publish_retries" env:"PUBLISH_RETRIES"`
}

type OTel struct {
	// Endpoint is the OTLP/HTTP traces URL. Tracing is off when empty.
	Endpoint string `toml:"endpoint" env:"ENDPOINT"`
}

var drivers = []string{"memory", "sqlite", "postgres", "kurrentdb"}

func Default() Config {
	return Config{
		ServiceName:     "shipment-process",
		HTTPAddr:        ":8080",
		LogLevel:        "info",
		LogFormat:       "text",
		SessionDeadline: 10 * time.Second,
		ShutdownTimeout: 10 * time.Second,
		Store: Store{
			Driver:         "memory",
			ConnectTimeout: 30 * time.Second,
		},
		Bus: Bus{
			PoisonTopic:      "shipment.poison",
			BufferSize:       256,
			HandlerTimeout:   30 * time.Second,
			MaxRetries:       5,
			RetryInterval:    50 * time.Millisecond,
			MaxRetryInterval: 2 * time.Second,
			BreakerTimeout:   10 * time.Second,
			BreakerFailures:  10,
		},
		Collection: Collection{
			MaxDaysAhead:  7,
			ScheduleDelay: 200 * time.Millisecond,
			BookDelay:     5 * time.Second,
		},
		Carrier: Carrier{
			ResponseDelay:  500 * time.Millisecond,
			RetryDelay:     2 * time.Second,
			PublishRetries: 3,
		},
	}
}

// Load returns the defaults overridden by the TOML file at path, if path is
// not empty, and then by the environment.
func Load(path string) (Config, error) {
	cfg := Default()

	if path != "" {
		if _, err := toml.DecodeFile(path, &cfg); err != nil {
			return Config{}, fmt.Errorf("decode %s: %w", path, err)
		}
	}

	if err := env.ParseWithOptions(&cfg, env.Options{Prefix: envPrefix}); err != nil {
		return Config{}, fmt.Errorf("parse env: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func (c Config) Validate() error {
	var errs []error

	if !slices.Contains(drivers, c.Store.Driver) {
		errs = append(errs, fmt.Errorf("store driver %q: want one of %v", c.Store.Driver, drivers))
	}
	if c.Store.Driver != "memory" && c.Store.DSN == "" {
		errs = append(errs, fmt.Errorf("store driver %q needs a dsn", c.Store.Driver))
	}
	if _, err := logrus.ParseLevel(c.LogLevel); err != nil {
		errs = append(errs, err)
	}
	if c.LogFormat != "text" && c.LogFormat != "json" {
		errs = append(errs, fmt.Errorf("log format %q: want text or json", c.LogFormat))
	}
	if c.Collection.MaxDaysAhead < 1 {
		errs = append(errs, errors.New("collection max_days_ahead must be positive"))
	}
	if c.Bus.HandlerTimeout <= 0 {
		errs = append(errs, errors.New("bus handler_timeout must be positive"))
	}

	if len(errs) > 0 {
		return fmt.Errorf("invalid config: %w", errors.Join(errs...))
	}
	return nil
}

// Logger builds the root logger.
func (c Config) Logger() *logrus.Logger {
	log := logrus.New()
	level, err := logrus.ParseLevel(c.LogLevel)
	if err != nil {
		level = logrus.InfoLevel
	}
	log.SetLevel(level)
	if c.LogFormat == "json" {
		log.SetFormatter(&logrus.JSONFormatter{})
	}
	return log
}
