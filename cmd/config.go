package cmd

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"time"

	"fulfillment/internal/core/application/usecases/commands"
	"fulfillment/internal/jobs"
	"fulfillment/internal/pkg/errs"

	"github.com/joho/godotenv"
)

const (
	defaultHTTPPort          = "8080"
	defaultOrderChangedTopic = "order.changed"
	defaultStockMovedTopic   = "stock.moved"
	defaultAppEnv            = "local"
	defaultDBSslMode         = "disable"
)

type Config struct {
	HTTPPort   string
	DBHost     string
	DBPort     string
	DBUser     string
	DBPassword string
	DBName     string
	DBSslMode  string
	LogLevel   string
	AppEnv     string

	// RedisAddr switches aggregate locking from in-process to Redis.
	RedisAddr              string
	KafkaHost              string
	KafkaOrderChangedTopic string
	KafkaStockMovedTopic   string
	OtelEndpoint           string
	PaymentAttemptTimeout  time.Duration
	ReconcileSchedule      string
}

// LoadConfig reads envFile when it exists and then the process environment.
// Variables already set in the environment win over the file.
func LoadConfig(envFile string) (Config, error) {
	if envFile != "" {
		if err := godotenv.Load(envFile); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return Config{}, fmt.Errorf("load %s: %w", envFile, err)
		}
	}

	cfg := Config{
		HTTPPort:               envOr("HTTP_PORT", defaultHTTPPort),
		DBHost:                 os.Getenv("DB_HOST"),
		DBPort:                 envOr("DB_PORT", "5432"),
		DBUser:                 os.Getenv("DB_USER"),
		DBPassword:             os.Getenv("DB_PASSWORD"),
		DBName:                 os.Getenv("DB_NAME"),
		DBSslMode:              envOr("DB_SSLMODE", defaultDBSslMode),
		LogLevel:               envOr("LOG_LEVEL", "info"),
		AppEnv:                 envOr("APP_ENV", defaultAppEnv),
		RedisAddr:              os.Getenv("REDIS_ADDR"),
		KafkaHost:              os.Getenv("KAFKA_HOST"),
		KafkaOrderChangedTopic: envOr("KAFKA_ORDER_CHANGED_TOPIC", defaultOrderChangedTopic),
		KafkaStockMovedTopic:   envOr("KAFKA_STOCK_MOVED_TOPIC", defaultStockMovedTopic),
		OtelEndpoint:           os.Getenv("OTEL_EXPORTER_OTLP_ENDPOINT"),
		PaymentAttemptTimeout:  commands.DefaultPaymentAttemptTimeout,
		ReconcileSchedule:      envOr("RECONCILE_SCHEDULE", jobs.DefaultReconcileSchedule),
	}

	if raw := os.Getenv("PAYMENT_ATTEMPT_TIMEOUT"); raw != "" {
		d, err := time.ParseDuration(raw)
		if err != nil || d <= 0 {
			return Config{}, errs.NewValueIsInvalidErrorWithCause("PAYMENT_ATTEMPT_TIMEOUT", err)
		}
		cfg.PaymentAttemptTimeout = d
	}

	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func (c Config) Validate() error {
	var err error
	if c.DBHost == "" {
		err = errors.Join(err, errs.NewValueIsRequiredError("DB_HOST"))
	}
	if c.DBUser == "" {
		err = errors.Join(err, errs.NewValueIsRequiredError("DB_USER"))
	}
	if c.DBName == "" {
		err = errors.Join(err, errs.NewValueIsRequiredError("DB_NAME"))
	}
	return err
}

func (c Config) DSN() string {
	return fmt.Sprintf("host=%s port=%s user=%s password=%s dbname=%s sslmode=%s",
		c.DBHost, c.DBPort, c.DBUser, c.DBPassword, c.DBName, c.DBSslMode)
}

func envOr(key, fallback string) string {
	if v, ok := os.LookupEnv(key); ok && v != "" {
		return v
	}
	return fallback
}
