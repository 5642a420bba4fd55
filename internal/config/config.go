package config

import (
	"errors"
	"fmt"
	"io/fs"
	"strings"
	"time"

	"hunttickets/internal/cache"
	"hunttickets/internal/database"
	"hunttickets/internal/messaging"

	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
)

// Config is read from the environment, optionally seeded from a .env file.
type Config struct {
	Port              string `envconfig:"PORT" default:"8081"`
	GinMode           string `envconfig:"GIN_MODE" default:"debug"`
	BasePath          string `envconfig:"BASE_PATH" default:""`
	Environment       string `envconfig:"ENVIRONMENT" default:"development"`
	LogLevel          string `envconfig:"LOG_LEVEL" default:"info"`
	LogFormat         string `envconfig:"LOG_FORMAT" default:"json"`
	RequestTimeoutSec int    `envconfig:"REQUEST_TIMEOUT_SEC" default:"30"`
	RunMigrations     bool   `envconfig:"RUN_MIGRATIONS" default:"true"`

	// StrictDeletes makes deleting a missing event or ticket a 404.
	StrictDeletes bool `envconfig:"STRICT_DELETES" default:"false"`

	Database      database.Config     `envconfig:"DB"`
	NATS          messaging.Config    `envconfig:"NATS"`
	Elasticsearch ElasticsearchConfig `envconfig:"ELASTICSEARCH"`
	Valkey        cache.Config        `envconfig:"VALKEY"`

	Consumer ConsumerConfig `envconfig:"CONSUMER"`

	TokenSecret string `envconfig:"TOKEN_SECRET" default:"change-me"`
	// APIKeys enables API key checks when non-empty.
	APIKeys []string `envconfig:"API_KEYS"`
}

// ConsumerConfig is filled from CONSUMER_* variables.
type ConsumerConfig struct {
	Queue         string        `default:"hunt-tickets-consumers"`
	SweepInterval time.Duration `split_words:"true" default:"5m"`
	MetricsPort   string        `split_words:"true" default:"9091"`
}

// defaultTokenSecret is the TOKEN_SECRET default; production refuses it.
const defaultTokenSecret = "change-me"

// ErrInsecureTokenSecret is returned by Load in production when TOKEN_SECRET
// is unset or left at its default.
var ErrInsecureTokenSecret = errors.New("TOKEN_SECRET must be set to a non-default value in production")

// Load reads envFiles (missing files are ignored) and then the environment.
func Load(envFiles ...string) (*Config, error) {
	if len(envFiles) == 0 {
		envFiles = []string{".env"}
	}
	for _, f := range envFiles {
		if err := godotenv.Load(f); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("failed to load %s: %w", f, err)
		}
	}

	var cfg Config
	if err := envconfig.Process("", &cfg); err != nil {
		return nil, fmt.Errorf("failed to process env config: %w", err)
	}
	cfg.BasePath = normalizeBasePath(cfg.BasePath)

	if cfg.IsProduction() && (cfg.TokenSecret == "" || cfg.TokenSecret == defaultTokenSecret) {
		return nil, ErrInsecureTokenSecret
	}
	return &cfg, nil
}

func (c *Config) IsProduction() bool {
	return strings.EqualFold(c.Environment, "production")
}

func (c *Config) RequestTimeout() time.Duration {
	return time.Duration(c.RequestTimeoutSec) * time.Second
}

func normalizeBasePath(p string) string {
	p = strings.Trim(strings.TrimSpace(p), "/")
	if p == "" {
		return ""
	}
	return "/" + p
}
