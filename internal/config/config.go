package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

const (
	// BackendDisk stores blobs in a local content directory.
	BackendDisk = "disk"
	// BackendMinIO stores blobs in a MinIO bucket.
	BackendMinIO = "minio"
)

// Config aggregates runtime configuration for the docshelf API.
type Config struct {
	Server   ServerConfig
	Postgres PostgresConfig
	Storage  StorageConfig
	MinIO    MinIOConfig
	Log      LogConfig
	Metrics  MetricsConfig
}

// ServerConfig parameterizes the HTTP server.
type ServerConfig struct {
	Host         string
	Port         int
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
	IdleTimeout  time.Duration
}

// Address returns the listen address in host:port form.
func (s ServerConfig) Address() string {
	return fmt.Sprintf("%s:%d", s.Host, s.Port)
}

// PostgresConfig contains PostgreSQL connection details.
type PostgresConfig struct {
	Host     string
	Port     int
	User     string
	Password string
	Database string
	SSLMode  string
	MaxConns int32
}

// DSN returns the PostgreSQL DSN string.
func (p PostgresConfig) DSN() string {
	return fmt.Sprintf("postgres://%s:%s@%s:%d/%s?sslmode=%s",
		p.User, p.Password, p.Host, p.Port, p.Database, p.SSLMode)
}

// MigrateURL returns the DSN in the pgx5:// form golang-migrate expects.
func (p PostgresConfig) MigrateURL() string {
	return "pgx5" + strings.TrimPrefix(p.DSN(), "postgres")
}

// StorageConfig selects and tunes the blob backend.
type StorageConfig struct {
	Backend        string
	ContentDir     string
	MaxUploadBytes int64
	// StrictFolderRefs rejects uploads and moves that reference an unknown folder.
	StrictFolderRefs bool
}

// MinIOConfig carries MinIO connection and bucket information.
type MinIOConfig struct {
	Endpoint        string
	AccessKeyID     string
	SecretAccessKey string
	Bucket          string
	UseSSL          bool
	Region          string
}

// LogConfig controls the zap logger.
type LogConfig struct {
	Level string
}

// MetricsConfig groups observability settings.
type MetricsConfig struct {
	PrometheusPath string
}

// Load reads configuration values from environment variables, applying defaults.
func Load() (Config, error) {
	cfg := Config{
		Server: ServerConfig{
			Host:         getString("DOCSHELF_API_HOST", "0.0.0.0"),
			Port:         getInt("DOCSHELF_API_PORT", 8080),
			ReadTimeout:  getDuration("DOCSHELF_API_READ_TIMEOUT", 30*time.Second),
			WriteTimeout: getDuration("DOCSHELF_API_WRITE_TIMEOUT", 30*time.Second),
			IdleTimeout:  getDuration("DOCSHELF_API_IDLE_TIMEOUT", 60*time.Second),
		},
		Postgres: PostgresConfig{
			Host:     getString("POSTGRES_HOST", "localhost"),
			Port:     getInt("POSTGRES_PORT", 5432),
			User:     getString("POSTGRES_USER", "docshelf"),
			Password: getString("POSTGRES_PASSWORD", "change-me"),
			Database: getString("POSTGRES_DB", "docshelf"),
			SSLMode:  strings.ToLower(getString("POSTGRES_SSL_MODE", "disable")),
			MaxConns: int32(getInt("POSTGRES_MAX_CONNS", 10)),
		},
		Storage: StorageConfig{
			Backend:          strings.ToLower(getString("DOCSHELF_BLOB_BACKEND", BackendDisk)),
			ContentDir:       getString("DOCSHELF_CONTENT_DIR", "./data/uploads"),
			MaxUploadBytes:   int64(getInt("DOCSHELF_MAX_UPLOAD_BYTES", 10<<20)),
			StrictFolderRefs: getBool("DOCSHELF_STRICT_FOLDER_REFS", false),
		},
		MinIO: MinIOConfig{
			Endpoint:        getString("MINIO_ENDPOINT", "localhost:9000"),
			AccessKeyID:     getString("MINIO_ROOT_USER", "docshelf"),
			SecretAccessKey: getString("MINIO_ROOT_PASSWORD", "change-me-strong-password"),
			Bucket:          getString("MINIO_BUCKET", "docshelf"),
			UseSSL:          getBool("MINIO_USE_SSL", false),
			Region:          getString("MINIO_REGION", ""),
		},
		Log: LogConfig{
			Level: getString("LOG_LEVEL", "info"),
		},
		Metrics: MetricsConfig{
			PrometheusPath: getString("DOCSHELF_METRICS_PATH", "/metrics"),
		},
	}

	if err := cfg.validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func (c Config) validate() error {
	switch c.Storage.Backend {
	case BackendDisk:
		if strings.TrimSpace(c.Storage.ContentDir) == "" {
			return fmt.Errorf("DOCSHELF_CONTENT_DIR must not be empty")
		}
	case BackendMinIO:
		if c.MinIO.Bucket == "" {
			return fmt.Errorf("MINIO_BUCKET must not be empty")
		}
	default:
		return fmt.Errorf("unknown blob backend %q", c.Storage.Backend)
	}
	if c.Storage.MaxUploadBytes <= 0 {
		return fmt.Errorf("DOCSHELF_MAX_UPLOAD_BYTES must be positive")
	}
	return nil
}

func getString(key, fallback string) string {
	if val, ok := os.LookupEnv(key); ok {
		return val
	}
	return fallback
}

func getInt(key string, fallback int) int {
	if val, ok := os.LookupEnv(key); ok {
		if parsed, err := strconv.Atoi(val); err == nil {
			return parsed
		}
	}
	return fallback
}

func getBool(key string, fallback bool) bool {
	if val, ok := os.LookupEnv(key); ok {
		val = strings.ToLower(strings.TrimSpace(val))
		switch val {
		case "1", "true", "t", "yes", "y":
			return true
		case "0", "false", "f", "no", "n":
			return false
		}
	}
	return fallback
}

func getDuration(key string, fallback time.Duration) time.Duration {
	if val, ok := os.LookupEnv(key); ok {
		if parsed, err := time.ParseDuration(val); err == nil {
			return parsed
		}
	}
	return fallback
}
