package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"

	"ai_sdlc/internal/models"
)

// Config holds configuration for the gateway.
type Config struct {
	HTTPPort          string
	JWTSecret         []byte
	AdminPasswordHash string
	Credentials       CredentialsConfig
	Providers         map[models.ProviderID]models.ProviderSettings
	Audit             AuditConfig
}

// CredentialsConfig selects and configures the credential store backend.
type CredentialsConfig struct {
	// Backend is one of "memory", "file", "redis", "postgres".
	Backend string

	// FilePath is the credentials file for the file backend.
	FilePath string

	// EncryptionKey is the base64 AES key used by the postgres backend.
	EncryptionKey string

	Redis    RedisConfig
	Postgres PostgresConfig
}

// RedisConfig holds Redis connection settings.
type RedisConfig struct {
	Address      string
	Password     string
	DB           int
	PoolSize     int
	MinIdleConns int
	DialTimeout  time.Duration
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
}

// PostgresConfig holds database connection settings.
type PostgresConfig struct {
	URL             string
	MaxOpenConns    int
	MaxIdleConns    int
	ConnMaxLifetime time.Duration
	ConnMaxIdleTime time.Duration
}

// AuditConfig holds settings for the request audit trail.
type AuditConfig struct {
	Enabled       bool
	BufferSize    int
	BatchSize     int
	FlushInterval time.Duration

	// S3 archival is enabled when a bucket is set.
	S3Bucket string
	S3Region string
	S3Prefix string
}

func getEnvString(key string, defaultValue string) string {
	val := os.Getenv(key)
	if val == "" {
		return defaultValue
	}
	return val
}

func getEnvInt(key string, defaultValue int) int {
	val := os.Getenv(key)
	if val == "" {
		return defaultValue
	}
	intVal, err := strconv.Atoi(val)
	if err != nil {
		return defaultValue
	}
	return intVal
}

func getEnvBool(key string, defaultValue bool) bool {
	val := os.Getenv(key)
	if val == "" {
		return defaultValue
	}
	boolVal, err := strconv.ParseBool(val)
	if err != nil {
		return defaultValue
	}
	return boolVal
}

func getEnvDuration(key string, defaultValue time.Duration) time.Duration {
	val := os.Getenv(key)
	if val == "" {
		return defaultValue
	}
	duration, err := time.ParseDuration(val)
	if err != nil {
		return defaultValue
	}
	return duration
}

// Load reads configuration from a .env file (if present) and environment
// variables.
func Load() (*Config, error) {
	_ = godotenv.Load()

	backend := strings.ToLower(getEnvString("CREDENTIAL_STORE", "memory"))
	switch backend {
	case "memory", "file", "redis", "postgres":
	default:
		return nil, fmt.Errorf("unknown credential store backend: %q", backend)
	}

	cfg := &Config{
		HTTPPort:          getEnvString("HTTP_PORT", "8080"),
		JWTSecret:         []byte(getEnvString("JWT_SECRET", "supersecretkey")),
		AdminPasswordHash: os.Getenv("ADMIN_PASSWORD_HASH"),
		Credentials: CredentialsConfig{
			Backend:       backend,
			FilePath:      getEnvString("CREDENTIALS_FILE", "credentials.json"),
			EncryptionKey: os.Getenv("CREDENTIALS_ENCRYPTION_KEY"),
			Redis: RedisConfig{
				Address:      getEnvString("REDIS_ADDRESS", "localhost:6379"),
				Password:     getEnvString("REDIS_PASSWORD", ""),
				DB:           getEnvInt("REDIS_DB", 0),
				PoolSize:     getEnvInt("REDIS_POOL_SIZE", 10),
				MinIdleConns: getEnvInt("REDIS_MIN_IDLE_CONNS", 2),
				DialTimeout:  getEnvDuration("REDIS_DIAL_TIMEOUT", 5*time.Second),
				ReadTimeout:  getEnvDuration("REDIS_READ_TIMEOUT", 3*time.Second),
				WriteTimeout: getEnvDuration("REDIS_WRITE_TIMEOUT", 3*time.Second),
			},
			Postgres: PostgresConfig{
				URL:             os.Getenv("DATABASE_URL"),
				MaxOpenConns:    getEnvInt("DB_MAX_OPEN_CONNS", 25),
				MaxIdleConns:    getEnvInt("DB_MAX_IDLE_CONNS", 5),
				ConnMaxLifetime: getEnvDuration("DB_CONN_MAX_LIFETIME", 5*time.Minute),
				ConnMaxIdleTime: getEnvDuration("DB_CONN_MAX_IDLE_TIME", 1*time.Minute),
			},
		},
		Providers: loadProviderSettings(),
		Audit: AuditConfig{
			Enabled:       getEnvBool("AUDIT_ENABLED", true),
			BufferSize:    getEnvInt("AUDIT_BUFFER_SIZE", 1000),
			BatchSize:     getEnvInt("AUDIT_BATCH_SIZE", 100),
			FlushInterval: getEnvDuration("AUDIT_FLUSH_INTERVAL", 30*time.Second),
			S3Bucket:      getEnvString("AUDIT_S3_BUCKET", ""),
			S3Region:      getEnvString("AUDIT_S3_REGION", "us-east-1"),
			S3Prefix:      getEnvString("AUDIT_S3_PREFIX", "audit/"),
		},
	}

	if backend == "postgres" {
		if cfg.Credentials.Postgres.URL == "" {
			return nil, fmt.Errorf("DATABASE_URL is required for the postgres credential store")
		}
		if cfg.Credentials.EncryptionKey == "" {
			return nil, fmt.Errorf("CREDENTIALS_ENCRYPTION_KEY is required for the postgres credential store")
		}
	}

	return cfg, nil
}

// loadProviderSettings reads the static per-provider enabled flag and
// priority, for example PROVIDER_CLAUDE_ENABLED and PROVIDER_CLAUDE_PRIORITY.
// Defaults match the original deployment: all enabled, priorities 1..5.
func loadProviderSettings() map[models.ProviderID]models.ProviderSettings {
	settings := models.DefaultProviderSettings()
	for provider, def := range settings {
		prefix := "PROVIDER_" + strings.ToUpper(string(provider))
		settings[provider] = models.ProviderSettings{
			Enabled:  getEnvBool(prefix+"_ENABLED", def.Enabled),
			Priority: getEnvInt(prefix+"_PRIORITY", def.Priority),
		}
	}
	return settings
}
