package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
	"github.com/labstack/gommon/bytes"
	"github.com/sirupsen/logrus"
)

const Production = "production"

const (
	BackendMemory = "memory"
	BackendRedis  = "redis"
)

const maxWorkers = 10

// DefaultEnvFiles are loaded in order when present.
var DefaultEnvFiles = []string{".env", ".env.local"}

type ProgressOptions struct {
	Backend         string        `env:"PROGRESS_BACKEND" envDefault:"memory"`
	RedisURL        string        `env:"REDIS_URL"`
	TTL             time.Duration `env:"PROGRESS_TTL" envDefault:"24h"`
	PgNotifyEnabled bool          `env:"PG_NOTIFY_ENABLED" envDefault:"false"`
	PgNotifyChannel string        `env:"PG_NOTIFY_CHANNEL" envDefault:"household_import_progress"`
}

func (p *ProgressOptions) Validate() error {
	p.Backend = strings.ToLower(strings.TrimSpace(p.Backend))
	switch p.Backend {
	case BackendMemory, BackendRedis:
	default:
		return fmt.Errorf("invalid PROGRESS_BACKEND=%q (expected memory|redis)", p.Backend)
	}
	if p.Backend == BackendRedis && p.RedisURL == "" {
		return fmt.Errorf("REDIS_URL is required when PROGRESS_BACKEND is 'redis'")
	}
	if p.TTL <= 0 {
		return fmt.Errorf("PROGRESS_TTL must be positive, got %s", p.TTL)
	}
	// Listeners on other instances read snapshots from the store.
	if p.PgNotifyEnabled && p.Backend != BackendRedis {
		return fmt.Errorf("PG_NOTIFY_ENABLED requires PROGRESS_BACKEND=redis")
	}
	if p.PgNotifyEnabled && strings.TrimSpace(p.PgNotifyChannel) == "" {
		return fmt.Errorf("PG_NOTIFY_CHANNEL must not be empty when PG_NOTIFY_ENABLED is set")
	}
	return nil
}

type ImportOptions struct {
	Workers       int    `env:"IMPORT_WORKERS" envDefault:"4"`
	QueueSize     int    `env:"IMPORT_QUEUE_SIZE" envDefault:"64"`
	UploadDir     string `env:"IMPORT_UPLOAD_DIR"`
	MaxUploadSize string `env:"MAX_UPLOAD_SIZE" envDefault:"10M"`
}

func (i *ImportOptions) Validate() error {
	if i.Workers < 1 {
		i.Workers = 1
	}
	if i.Workers > maxWorkers {
		i.Workers = maxWorkers
	}
	if i.QueueSize < 1 {
		return fmt.Errorf("IMPORT_QUEUE_SIZE must be positive, got %d", i.QueueSize)
	}
	if i.UploadDir == "" {
		i.UploadDir = os.TempDir()
	}
	if _, err := bytes.Parse(i.MaxUploadSize); err != nil {
		return fmt.Errorf("invalid MAX_UPLOAD_SIZE=%q: %w", i.MaxUploadSize, err)
	}
	return nil
}

type Config struct {
	Progress ProgressOptions
	Import   ImportOptions

	DatabaseURL      string `env:"DATABASE_URL,required"`
	Port             int    `env:"PORT" envDefault:"8080"`
	LogLevel         string `env:"LOG_LEVEL" envDefault:"info"`
	GoAppEnvironment string `env:"GO_APP_ENV" envDefault:"development"`

	logger *logrus.Logger
}

// LoadEnv loads the env files that exist and reports how many it found.
func LoadEnv(envFiles []string) (int, error) {
	existing := make([]string, 0, len(envFiles))
	for _, file := range envFiles {
		if _, err := os.Stat(file); err == nil {
			existing = append(existing, file)
		}
	}
	if len(existing) == 0 {
		return 0, nil
	}
	return len(existing), godotenv.Load(existing...)
}

// Load reads env files then the process environment.
func Load(envFiles ...string) (*Config, error) {
	if len(envFiles) == 0 {
		envFiles = DefaultEnvFiles
	}
	if _, err := LoadEnv(envFiles); err != nil {
		return nil, fmt.Errorf("load env files: %w", err)
	}
	return parse(env.Options{})
}

// FromMap builds a config from an explicit environment instead of the process one.
func FromMap(environment map[string]string) (*Config, error) {
	return parse(env.Options{Environment: environment})
}

func parse(opts env.Options) (*Config, error) {
	c := &Config{}
	if err := env.ParseWithOptions(c, opts); err != nil {
		return nil, err
	}
	if err := c.Progress.Validate(); err != nil {
		return nil, fmt.Errorf("progress configuration error: %w", err)
	}
	if err := c.Import.Validate(); err != nil {
		return nil, fmt.Errorf("import configuration error: %w", err)
	}
	c.logger = c.newLogger()
	return c, nil
}

func (c *Config) Logger() *logrus.Logger {
	return c.logger
}

func (c *Config) Address() string {
	return fmt.Sprintf(":%d", c.Port)
}

func (c *Config) LogrusLogLevel() logrus.Level {
	switch strings.ToLower(c.LogLevel) {
	case "silent":
		return logrus.PanicLevel
	case "error":
		return logrus.ErrorLevel
	case "warn":
		return logrus.WarnLevel
	case "debug":
		return logrus.DebugLevel
	default:
		return logrus.InfoLevel
	}
}

func (c *Config) newLogger() *logrus.Logger {
	logger := logrus.New()
	logger.SetOutput(os.Stdout)
	logger.SetLevel(c.LogrusLogLevel())
	if c.GoAppEnvironment == Production {
		logger.SetFormatter(&logrus.JSONFormatter{TimestampFormat: time.RFC3339Nano})
	} else {
		logger.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})
	}
	return logger
}
