package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

// Record store backends.
const (
	RecordStorePostgres = "postgres"
	RecordStoreDynamoDB = "dynamodb"
)

// Reactor notification sources.
const (
	SourceWebhook = "webhook"
	SourceListen  = "listen"
	SourceAMQP    = "amqp"
)

// DatabaseConfig holds PostgreSQL database connection settings.
type DatabaseConfig struct {
	Host               string
	Port               string
	User               string
	Password           string
	Name               string
	SSLMode            string
	MaxOpenConns       int
	MaxIdleConns       int
	ConnMaxLifetimeSec int
}

// MinIOConfig holds object storage settings for MinIO or any S3-compatible endpoint.
type MinIOConfig struct {
	Endpoint  string
	AccessKey string
	SecretKey string
	Bucket    string
	Region    string
	UseSSL    bool
}

// DynamoDBConfig holds settings for the DynamoDB record store.
type DynamoDBConfig struct {
	Region    string
	Endpoint  string
	AccessKey string
	SecretKey string
}

// AuthConfig controls the shared-secret header check.
// Enabled is explicit: open mode is a deliberate choice, not a side effect of an empty token.
type AuthConfig struct {
	Enabled bool
	Token   string
}

// ReactorConfig selects how object-created notifications reach the reactor.
type ReactorConfig struct {
	Source    string
	Port      string
	AMQPURL   string
	AMQPQueue string
}

// LogConfig controls the slog handler.
type LogConfig struct {
	Level  string
	Format string
}

// AppConfig is the centralized configuration struct for the application.
// It is populated from environment variables. Sensitive values are not hardcoded.
type AppConfig struct {
	Stage           string
	Port            string
	CORSOrigin      string
	JobsTable       string
	UploadPrefix    string
	UploadURLExpiry time.Duration
	RecordStore     string
	Auth            AuthConfig
	Database        DatabaseConfig
	MinIO           MinIOConfig
	DynamoDB        DynamoDBConfig
	Reactor         ReactorConfig
	Log             LogConfig
}

// Load reads configuration from environment variables.
// A .env file can be auto-loaded by importing: _ "github.com/joho/godotenv/autoload"
// Load never fails; call Validate before using the result.
func Load() *AppConfig {
	token := getEnv("API_TOKEN", "")
	return &AppConfig{
		Stage:           getEnv("STAGE", ""),
		Port:            getEnv("PORT", "8080"),
		CORSOrigin:      getEnv("CORS_ORIGIN", ""),
		JobsTable:       getEnv("JOBS_TABLE_NAME", ""),
		UploadPrefix:    getEnv("UPLOAD_PREFIX", "uploads"),
		UploadURLExpiry: getEnvDuration("UPLOAD_URL_EXPIRY", time.Hour),
		RecordStore:     strings.ToLower(getEnv("RECORD_STORE", RecordStorePostgres)),
		Auth: AuthConfig{
			Enabled: getEnvBool("API_AUTH_ENABLED", token != ""),
			Token:   token,
		},
		Database: DatabaseConfig{
			Host:               getEnv("DB_HOST", ""),
			Port:               getEnv("DB_PORT", "5432"),
			User:               getEnv("DB_USER", ""),
			Password:           getEnv("DB_PASSWORD", ""),
			Name:               getEnv("DB_NAME", ""),
			SSLMode:            getEnv("DB_SSLMODE", "disable"),
			MaxOpenConns:       getEnvInt("DB_MAX_OPEN_CONNS", 10),
			MaxIdleConns:       getEnvInt("DB_MAX_IDLE_CONNS", 5),
			ConnMaxLifetimeSec: getEnvInt("DB_CONN_MAX_LIFETIME_SEC", 300),
		},
		MinIO: MinIOConfig{
			Endpoint:  getEnv("MINIO_ENDPOINT", ""),
			AccessKey: getEnv("MINIO_ACCESS_KEY", ""),
			SecretKey: getEnv("MINIO_SECRET_KEY", ""),
			Bucket:    getEnv("UPLOAD_BUCKET_NAME", ""),
			Region:    getEnv("MINIO_REGION", ""),
			UseSSL:    getEnvBool("MINIO_USE_SSL", false),
		},
		DynamoDB: DynamoDBConfig{
			Region:    getEnv("AWS_REGION", "us-east-1"),
			Endpoint:  getEnv("DYNAMODB_ENDPOINT", ""),
			AccessKey: getEnv("AWS_ACCESS_KEY_ID", ""),
			SecretKey: getEnv("AWS_SECRET_ACCESS_KEY", ""),
		},
		Reactor: ReactorConfig{
			Source:    strings.ToLower(getEnv("REACTOR_SOURCE", SourceWebhook)),
			Port:      getEnv("REACTOR_PORT", "8081"),
			AMQPURL:   getEnv("AMQP_URL", ""),
			AMQPQueue: getEnv("AMQP_QUEUE", "upload-events"),
		},
		Log: LogConfig{
			Level:  getEnv("LOG_LEVEL", "info"),
			Format: getEnv("LOG_FORMAT", "json"),
		},
	}
}

// Validate reports every missing or inconsistent setting at once.
func (c *AppConfig) Validate() error {
	var errs []error
	required := map[string]string{
		"STAGE":              c.Stage,
		"JOBS_TABLE_NAME":    c.JobsTable,
		"UPLOAD_BUCKET_NAME": c.MinIO.Bucket,
		"CORS_ORIGIN":        c.CORSOrigin,
	}
	for _, key := range []string{"STAGE", "JOBS_TABLE_NAME", "UPLOAD_BUCKET_NAME", "CORS_ORIGIN"} {
		if required[key] == "" {
			errs = append(errs, fmt.Errorf("%s is required", key))
		}
	}
	if c.Auth.Enabled && c.Auth.Token == "" {
		errs = append(errs, errors.New("API_TOKEN is required when API_AUTH_ENABLED is true"))
	}
	if c.UploadPrefix == "" || strings.Contains(c.UploadPrefix, "/") {
		errs = append(errs, errors.New("UPLOAD_PREFIX must be a single non-empty path segment"))
	}
	if c.UploadURLExpiry <= 0 {
		errs = append(errs, errors.New("UPLOAD_URL_EXPIRY must be positive"))
	}
	switch c.RecordStore {
	case RecordStorePostgres, RecordStoreDynamoDB:
	default:
		errs = append(errs, fmt.Errorf("unsupported RECORD_STORE %q", c.RecordStore))
	}
	return errors.Join(errs...)
}

// ValidateReactor checks the reactor-only settings on top of Validate.
func (c *AppConfig) ValidateReactor() error {
	switch c.Reactor.Source {
	case SourceWebhook, SourceListen:
		return nil
	case SourceAMQP:
		if c.Reactor.AMQPURL == "" {
			return errors.New("AMQP_URL is required when REACTOR_SOURCE is amqp")
		}
		return nil
	default:
		return fmt.Errorf("unsupported REACTOR_SOURCE %q", c.Reactor.Source)
	}
}

func getEnv(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func getEnvBool(key string, def bool) bool {
	if v := os.Getenv(key); v != "" {
		b, err := strconv.ParseBool(v)
		if err == nil {
			return b
		}
	}
	return def
}

func getEnvInt(key string, def int) int {
	if v := os.Getenv(key); v != "" {
		i, err := strconv.Atoi(v)
		if err == nil {
			return i
		}
	}
	return def
}

func getEnvDuration(key string, def time.Duration) time.Duration {
	if v := os.Getenv(key); v != "" {
		d, err := time.ParseDuration(v)
		if err == nil {
			return d
		}
	}
	return def
}
