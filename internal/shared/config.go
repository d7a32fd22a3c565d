package shared

import (
	"fmt"
	"time"

	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
	"github.com/rs/zerolog/log"
)

type Config struct {
	AppEnv      string `envconfig:"APP_ENV" default:"prod"`
	LogLevel    string `envconfig:"LOG_LEVEL" default:"info"`
	HTTPAddr    string `envconfig:"HTTP_ADDR" default:":8080"`
	MetricsAddr string `envconfig:"METRICS_ADDR"`

	DataSource string `envconfig:"DATA_SOURCE" default:"csv"` // csv|mysql
	DataPath   string `envconfig:"DATA_PATH" default:"data/real_estate_listings.csv"`
	Preload    bool   `envconfig:"PRELOAD" default:"true"`
	MySQLDSN   string `envconfig:"MYSQL_DSN" default:"root:root@tcp(localhost:3306)/estate?parseTime=true&charset=utf8mb4,utf8&loc=UTC"`

	RedisAddr       string `envconfig:"REDIS_ADDR"`
	RedisPass       string `envconfig:"REDIS_PASSWORD"`
	RedisDB         int    `envconfig:"REDIS_DB" default:"0"`
	CacheTTLSeconds int    `envconfig:"CACHE_TTL_SECONDS" default:"300"`

	RateLimitRPS   float64       `envconfig:"RATE_LIMIT_RPS" default:"50"`
	RateLimitBurst int           `envconfig:"RATE_LIMIT_BURST" default:"100"`
	RequestTimeout time.Duration `envconfig:"REQUEST_TIMEOUT" default:"15s"`

	IngestWorkers   int `envconfig:"INGEST_WORKERS" default:"4"`
	IngestBatchSize int `envconfig:"INGEST_BATCH_SIZE" default:"500"`
}

func (c Config) CacheTTL() time.Duration {
	return time.Duration(c.CacheTTLSeconds) * time.Second
}

// Load reads an optional .env file, then the process environment.
func Load() (Config, error) {
	if err := godotenv.Load(); err != nil {
		log.Debug().Msg("no .env file found, using process environment")
	}

	var c Config
	if err := envconfig.Process("", &c); err != nil {
		return Config{}, fmt.Errorf("config: %w", err)
	}
	if err := c.validate(); err != nil {
		return Config{}, fmt.Errorf("config: %w", err)
	}
	if c.RedisAddr == "" {
		log.Info().Msg("REDIS_ADDR is empty, response cache disabled")
	}
	return c, nil
}

func (c Config) validate() error {
	switch c.DataSource {
	case "csv", "mysql":
	default:
		return fmt.Errorf("DATA_SOURCE %q unknown: want csv|mysql", c.DataSource)
	}
	if c.DataSource == "csv" && c.DataPath == "" {
		return fmt.Errorf("DATA_PATH must be set when DATA_SOURCE=csv")
	}
	if c.CacheTTLSeconds < 0 {
		return fmt.Errorf("CACHE_TTL_SECONDS must not be negative")
	}
	if c.RateLimitRPS < 0 || c.RateLimitBurst < 0 {
		return fmt.Errorf("RATE_LIMIT_RPS and RATE_LIMIT_BURST must not be negative")
	}
	if c.IngestWorkers <= 0 {
		return fmt.Errorf("INGEST_WORKERS must be positive, got %d", c.IngestWorkers)
	}
	if c.IngestBatchSize <= 0 {
		return fmt.Errorf("INGEST_BATCH_SIZE must be positive, got %d", c.IngestBatchSize)
	}
	return nil
}
