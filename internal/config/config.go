package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

// Config aggregates runtime configuration for the LineDrive API.
type Config struct {
	Server   ServerConfig
	Postgres PostgresConfig
	MinIO    MinIOConfig
	Line     LineConfig
	Drive    DriveConfig
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
}

// DSN returns the PostgreSQL DSN string.
func (p PostgresConfig) DSN() string {
	return fmt.Sprintf("postgres://%s:%s@%s:%d/%s?sslmode=%s",
		p.User, p.Password, p.Host, p.Port, p.Database, p.SSLMode)
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

// LineConfig holds the chat platform credentials. The channel secret signs
// inbound webhooks; the access token authorizes content downloads and push
// messages.
type LineConfig struct {
	ChannelSecret      string
	ChannelAccessToken string
	APIEndpoint        string
	DataEndpoint       string
}

// DriveConfig maps file categories to destination folders inside the bucket.
// An empty folder for a category makes uploads of that category fail.
type DriveConfig struct {
	PublicBaseURL   string
	ImagesFolder    string
	VideosFolder    string
	DocumentsFolder string
	OthersFolder    string
}

// MetricsConfig groups observability settings.
type MetricsConfig struct {
	PrometheusPath string
}

// Load reads configuration values from environment variables, applying
// defaults. Missing platform credentials are a startup error, not something
// to discover on the first webhook.
func Load() (Config, error) {
	cfg := Config{
		Server: ServerConfig{
			Host:         getString("LINEDRIVE_API_HOST", "0.0.0.0"),
			Port:         getInt("LINEDRIVE_API_PORT", 8080),
			ReadTimeout:  getDuration("LINEDRIVE_API_READ_TIMEOUT", 15*time.Second),
			WriteTimeout: getDuration("LINEDRIVE_API_WRITE_TIMEOUT", 15*time.Second),
			IdleTimeout:  getDuration("LINEDRIVE_API_IDLE_TIMEOUT", 60*time.Second),
		},
		Postgres: PostgresConfig{
			Host:     getString("POSTGRES_HOST", "localhost"),
			Port:     getInt("POSTGRES_PORT", 5432),
			User:     getString("POSTGRES_USER", "linedrive_app"),
			Password: getString("POSTGRES_PASSWORD", "change-me"),
			Database: getString("POSTGRES_DB", "linedrive"),
			SSLMode:  strings.ToLower(getString("POSTGRES_SSL_MODE", "disable")),
		},
		MinIO: MinIOConfig{
			Endpoint:        getString("MINIO_ENDPOINT", "localhost:9000"),
			AccessKeyID:     getString("MINIO_ROOT_USER", "linedrive"),
			SecretAccessKey: getString("MINIO_ROOT_PASSWORD", "change-me-strong-password"),
			Bucket:          getString("MINIO_BUCKET", "linedrive"),
			UseSSL:          getBool("MINIO_USE_SSL", false),
			Region:          getString("MINIO_REGION", ""),
		},
		Line: LineConfig{
			ChannelSecret:      os.Getenv("LINE_CHANNEL_SECRET"),
			ChannelAccessToken: os.Getenv("LINE_CHANNEL_ACCESS_TOKEN"),
			APIEndpoint:        getString("LINE_API_ENDPOINT", "https://api.line.me"),
			DataEndpoint:       getString("LINE_DATA_ENDPOINT", "https://api-data.line.me"),
		},
		Drive: DriveConfig{
			PublicBaseURL:   getString("DRIVE_PUBLIC_BASE_URL", ""),
			ImagesFolder:    getString("DRIVE_IMAGES_FOLDER", "images"),
			VideosFolder:    getString("DRIVE_VIDEOS_FOLDER", "videos"),
			DocumentsFolder: getString("DRIVE_DOCUMENTS_FOLDER", "documents"),
			OthersFolder:    getString("DRIVE_OTHERS_FOLDER", "others"),
		},
		Metrics: MetricsConfig{
			PrometheusPath: getString("LINEDRIVE_METRICS_PATH", "/metrics"),
		},
	}

	if cfg.Line.ChannelSecret == "" {
		return Config{}, fmt.Errorf("missing environment variable: LINE_CHANNEL_SECRET")
	}
	if cfg.Line.ChannelAccessToken == "" {
		return Config{}, fmt.Errorf("missing environment variable: LINE_CHANNEL_ACCESS_TOKEN")
	}

	return cfg, nil
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
