package config

import (
	"errors"
	"fmt"
	"time"

	"github.com/kelseyhightower/envconfig"
)

// Config holds the service configuration loaded from the environment
type Config struct {
	Service    Service    `envconfig:"SERVICE"`
	Database   Database   `envconfig:"DATABASE"`
	CRM        CRM        `envconfig:"CRM"`
	CORS       CORS       `envconfig:"CORS"`
	Scoring    Scoring    `envconfig:"SCORING"`
	SQS        SQS        `envconfig:"SQS"`
	ClickHouse ClickHouse `envconfig:"CLICKHOUSE"`
	Consumer   Consumer   `envconfig:"CONSUMER"`
}

type Service struct {
	Environment string `envconfig:"ENVIRONMENT" default:"development"`
	APIPort     string `envconfig:"API_PORT" default:"3000"`
	Host        string `envconfig:"HOST" default:"localhost:3000"`
}

type Database struct {
	URL             string `envconfig:"URL"`
	MaxConns        int32  `envconfig:"MAX_CONNS" default:"10"`
	ConnMaxLifetime int    `envconfig:"CONN_MAX_LIFETIME_SEC" default:"3600"`
	AutoMigrate     bool   `envconfig:"AUTO_MIGRATE" default:"true"`
}

// CRM configures the Klaviyo integration. An empty APIKey disables sync.
type CRM struct {
	APIKey     string `envconfig:"API_KEY"`
	BaseURL    string `envconfig:"BASE_URL" default:"https://a.klaviyo.com/api"`
	Revision   string `envconfig:"REVISION" default:"2023-10-15"`
	TimeoutSec int    `envconfig:"TIMEOUT_SEC" default:"5"`
}

type CORS struct {
	AllowedOrigins []string `envconfig:"ALLOWED_ORIGINS" default:"https://www.lekielectric.com,https://lekielectric.com"`
}

type Scoring struct {
	PolicyFile string `envconfig:"POLICY_FILE"`
}

// SQS configures the analytics queue. An empty QueueURL disables publishing.
type SQS struct {
	Endpoint string `envconfig:"ENDPOINT"`
	QueueURL string `envconfig:"QUEUE_URL"`
	Region   string `envconfig:"REGION" default:"eu-central-1"`
}

// ClickHouse configures the analytics mirror. An empty Host disables it.
type ClickHouse struct {
	Host            string `envconfig:"SERVER_HOST"`
	Port            string `envconfig:"NATIVE_PORT" default:"9000"`
	Database        string `envconfig:"DB" default:"default"`
	User            string `envconfig:"DB_USER" default:"default"`
	Password        string `envconfig:"DB_PASSWORD" default:""`
	UseTLS          bool   `envconfig:"USE_TLS" default:"false"`
	MaxOpenConns    int    `envconfig:"MAX_OPEN_CONNS" default:"5"`
	MaxIdleConns    int    `envconfig:"MAX_IDLE_CONNS" default:"2"`
	ConnMaxLifetime int    `envconfig:"CONN_MAX_LIFETIME_SEC" default:"3600"`
}

type Consumer struct {
	BatchSizeMax    int    `envconfig:"BATCH_SIZE_MAX" default:"500"`
	BatchTimeoutSec int    `envconfig:"BATCH_TIMEOUT_SEC" default:"10"`
	HealthCheckPort string `envconfig:"HEALTH_CHECK_PORT" default:"8081"`
}

// Timeout returns the bounded timeout applied to every CRM call
func (c CRM) Timeout() time.Duration {
	if c.TimeoutSec <= 0 {
		return 5 * time.Second
	}
	return time.Duration(c.TimeoutSec) * time.Second
}

// Enabled reports whether an API key is configured
func (c CRM) Enabled() bool {
	return c.APIKey != ""
}

// Validate checks the settings the API process cannot start without
func (d Database) Validate() error {
	if d.URL == "" {
		return errors.New("DATABASE_URL is required")
	}
	return nil
}

func (s SQS) Enabled() bool {
	return s.QueueURL != ""
}

func (c ClickHouse) Enabled() bool {
	return c.Host != ""
}

func Load() (*Config, error) {
	var cfg Config
	if err := envconfig.Process("", &cfg); err != nil {
		return nil, fmt.Errorf("failed to process config: %w", err)
	}

	return &cfg, nil
}
