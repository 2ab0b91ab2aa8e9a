package common

import (
	"errors"
	"io/fs"
	"log/slog"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

// Config holds all application configuration
type Config struct {
	Database DatabaseConfig
	Server   ServerConfig
	OCR      OCRConfig
	DocAPI   DocAPIConfig
	Pipeline PipelineConfig
	Export   ExportConfig
}

// DatabaseConfig holds database-related configuration. When DSN is empty the
// SQLitePath database is used instead of Postgres.
type DatabaseConfig struct {
	DSN              string
	SQLitePath       string
	MigrationsDir    string
	MaxConns         int32
	MinConns         int32
	MaxConnLifetime  time.Duration
	MaxConnIdleTime  time.Duration
	DialTimeout      time.Duration
	StatementTimeout time.Duration
}

// ServerConfig holds the listener addresses and request throttling
type ServerConfig struct {
	GRPCAddr       string
	HTTPAddr       string
	RateEvery      time.Duration
	RateBurst      int
	MaxUploadBytes int64
}

// OCRConfig holds local text-extraction configuration
type OCRConfig struct {
	TessdataDir      string
	Languages        string
	ArtifactCacheDir string
	DPI              int
}

// DocAPIConfig configures the remote document-understanding API. It is
// optional: an empty BaseURL disables it.
type DocAPIConfig struct {
	BaseURL      string
	APIKey       string
	Timeout      time.Duration
	PollInterval time.Duration
	MaxWait      time.Duration
	RateEvery    time.Duration
	RateBurst    int
}

// PipelineConfig tunes background processing
type PipelineConfig struct {
	Workers    int
	QueueSize  int
	JobTimeout time.Duration
	CacheTTL   time.Duration
	InboxDir   string
	Debounce   time.Duration
}

// ExportConfig holds asset-register export settings
type ExportConfig struct {
	Dir string
}

// LoadConfig loads configuration from a .env file, when present, and the
// process environment. Variables already set in the environment win.
func LoadConfig() *Config {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		slog.Warn("failed to load .env file, using process environment", "error", err)
	}

	return &Config{
		Database: DatabaseConfig{
			DSN:              getEnv("DB_URL", ""),
			SQLitePath:       getEnv("SQLITE_PATH", "./invoice-assets.db"),
			MigrationsDir:    getEnv("MIGRATIONS_DIR", "./db/migrations"),
			MaxConns:         getEnvAsInt32("DB_MAX_CONNS", 20),
			MinConns:         getEnvAsInt32("DB_MIN_CONNS", 2),
			MaxConnLifetime:  getEnvAsDuration("DB_MAX_CONN_LIFETIME", 30*time.Minute),
			MaxConnIdleTime:  getEnvAsDuration("DB_MAX_CONN_IDLE_TIME", 5*time.Minute),
			DialTimeout:      getEnvAsDuration("DB_DIAL_TIMEOUT", 3*time.Second),
			StatementTimeout: getEnvAsDuration("DB_STATEMENT_TIMEOUT", 0),
		},
		Server: ServerConfig{
			GRPCAddr:       getEnv("GRPC_ADDR", ":8080"),
			HTTPAddr:       getEnv("HTTP_ADDR", ":8081"),
			RateEvery:      getEnvAsDuration("HTTP_RATE_EVERY", 100*time.Millisecond),
			RateBurst:      getEnvAsInt("HTTP_RATE_BURST", 30),
			MaxUploadBytes: int64(getEnvAsInt("HTTP_MAX_UPLOAD_MB", 32)) << 20,
		},
		OCR: OCRConfig{
			TessdataDir:      getEnv("TESSDATA_PREFIX", ""),
			Languages:        getEnv("OCR_LANGUAGES", "eng"),
			ArtifactCacheDir: getEnv("ARTIFACT_CACHE_DIR", "./tmp"),
			DPI:              getEnvAsInt("OCR_DPI", 300),
		},
		DocAPI: DocAPIConfig{
			BaseURL:      getEnv("DOCAPI_BASE_URL", ""),
			APIKey:       getEnv("DOCAPI_API_KEY", ""),
			Timeout:      getEnvAsDuration("DOCAPI_TIMEOUT", 30*time.Second),
			PollInterval: getEnvAsDuration("DOCAPI_POLL_INTERVAL", 2*time.Second),
			MaxWait:      getEnvAsDuration("DOCAPI_MAX_WAIT", 3*time.Minute),
			RateEvery:    getEnvAsDuration("DOCAPI_RATE_EVERY", time.Second),
			RateBurst:    getEnvAsInt("DOCAPI_RATE_BURST", 2),
		},
		Pipeline: PipelineConfig{
			Workers:    getEnvAsInt("PIPELINE_WORKERS", 2),
			QueueSize:  getEnvAsInt("PIPELINE_QUEUE_SIZE", 128),
			JobTimeout: getEnvAsDuration("PIPELINE_JOB_TIMEOUT", 5*time.Minute),
			CacheTTL:   getEnvAsDuration("PIPELINE_CACHE_TTL", 30*time.Minute),
			InboxDir:   getEnv("INBOX_DIR", ""),
			Debounce:   getEnvAsDuration("INBOX_DEBOUNCE", 750*time.Millisecond),
		},
		Export: ExportConfig{
			Dir: getEnv("EXPORT_DIR", "./exports"),
		},
	}
}

// Helper functions for environment variable parsing
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvAsInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intVal, err := strconv.Atoi(value); err == nil {
			return intVal
		}
	}
	return defaultValue
}

func getEnvAsInt32(key string, defaultValue int32) int32 {
	if value := os.Getenv(key); value != "" {
		if intVal, err := strconv.ParseInt(value, 10, 32); err == nil {
			return int32(intVal)
		}
	}
	return defaultValue
}

func getEnvAsDuration(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if duration, err := time.ParseDuration(value); err == nil {
			return duration
		}
	}
	return defaultValue
}

// UsePostgres reports whether a Postgres DSN was configured
func (c *Config) UsePostgres() bool {
	return c.Database.DSN != ""
}

// Validate checks the loaded configuration
func (c *Config) Validate() error {
	if c.Database.DSN == "" && c.Database.SQLitePath == "" {
		return NewAppError("CONFIG_ERROR", "DB_URL or SQLITE_PATH is required", ErrInvalidInput)
	}
	if c.Server.GRPCAddr == "" && c.Server.HTTPAddr == "" {
		return NewAppError("CONFIG_ERROR", "GRPC_ADDR or HTTP_ADDR is required", ErrInvalidInput)
	}
	if c.DocAPI.BaseURL != "" && c.DocAPI.APIKey == "" {
		return NewAppError("CONFIG_ERROR", "DOCAPI_API_KEY is required when DOCAPI_BASE_URL is set", ErrInvalidInput)
	}
	if c.Pipeline.Workers < 1 {
		return NewAppError("CONFIG_ERROR", "PIPELINE_WORKERS must be at least 1", ErrInvalidInput)
	}
	return nil
}
