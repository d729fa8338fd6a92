package config

import (
	"log"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	App       AppConfig
	Database  DatabaseConfig
	SMTP      SMTPConfig
	Auth      AuthConfig
	Advisory  AdvisoryConfig
	Cache     CacheConfig
	Telemetry TelemetryConfig
}

type AppConfig struct {
	Port                string
	ClientURL           string
	Environment         string
	LogFilePath         string
	AdvisoryLogFilePath string
	AuditLogFilePath    string
	CorsAllowedOrigins  string
	CorsWildcardKeyword string
	CorsWildcardSuffix  string
	NatsURL             string
	RedisURL            string
}

type DatabaseConfig struct {
	Driver     string // "postgres" or "sqlite"
	Connection string
}

type SMTPConfig struct {
	Host       string
	Port       int
	Email      string
	Password   string
	SenderName string
}

type AuthConfig struct {
	JWTSecret     string
	TokenTTL      time.Duration
	ResetTokenTTL time.Duration
}

type AdvisoryConfig struct {
	BaseURL            string
	Timeout            time.Duration
	StatusTimeout      time.Duration
	BreakerMaxFailures int
	BreakerCooldown    time.Duration
}

type CacheConfig struct {
	Driver string // "memory" or "redis"
}

type TelemetryConfig struct {
	Enabled      bool
	OTLPEndpoint string
}

func (c *Config) IsProduction() bool {
	return c.App.Environment == "production"
}

// AllowedOrigins splits CORS_ALLOWED_ORIGINS into a clean list.
func (a AppConfig) AllowedOrigins() []string {
	var origins []string
	for _, o := range strings.Split(a.CorsAllowedOrigins, ",") {
		if o = strings.TrimSpace(o); o != "" {
			origins = append(origins, o)
		}
	}
	return origins
}

func Load() *Config {
	if err := godotenv.Load(); err != nil {
		log.Println("Note: .env file not found, using system environment")
	}

	return &Config{
		App: AppConfig{
			Port:                getEnv("APP_PORT", "5000"),
			ClientURL:           getEnv("CLIENT_URL", "http://localhost:3000"),
			Environment:         getEnv("GO_ENV", "development"),
			LogFilePath:         getEnv("LOG_FILE_PATH", "logs/app.log"),
			AdvisoryLogFilePath: getEnv("ADVISORY_LOG_FILE_PATH", "logs/advisory.log"),
			AuditLogFilePath:    getEnv("AUDIT_LOG_FILE_PATH", "logs/audit.log"),
			CorsAllowedOrigins:  getEnv("CORS_ALLOWED_ORIGINS", "http://localhost:3000,https://unycompass.vercel.app"),
			CorsWildcardKeyword: getEnv("CORS_WILDCARD_KEYWORD", "unycompass"),
			CorsWildcardSuffix:  getEnv("CORS_WILDCARD_SUFFIX", ".vercel.app"),
			NatsURL:             getEnv("NATS_URL", "nats://localhost:4222"),
			RedisURL:            getEnv("REDIS_URL", "redis://localhost:6379"),
		},
		Database: DatabaseConfig{
			Driver:     getEnv("DB_DRIVER", "postgres"),
			Connection: getEnv("DB_CONNECTION_STRING", getEnv("DATABASE_PUBLIC_URL", "")),
		},
		SMTP: SMTPConfig{
			Host:       getEnv("SMTP_HOST", ""),
			Port:       getEnvAsInt("SMTP_PORT", 587),
			Email:      getEnv("SMTP_EMAIL", ""),
			Password:   getEnv("SMTP_PASSWORD", ""),
			SenderName: getEnv("SMTP_SENDER_NAME", "UNY Compass"),
		},
		Auth: AuthConfig{
			JWTSecret:     getEnv("JWT_SECRET", ""),
			TokenTTL:      time.Duration(getEnvAsInt("JWT_EXPIRES_IN_HOURS", 24)) * time.Hour,
			ResetTokenTTL: time.Duration(getEnvAsInt("RESET_TOKEN_TTL_MINUTES", 60)) * time.Minute,
		},
		Advisory: AdvisoryConfig{
			BaseURL:            strings.TrimRight(getEnv("FLASK_API_URL", "https://unycompass-production.up.railway.app"), "/"),
			Timeout:            time.Duration(getEnvAsInt("ADVISORY_TIMEOUT_SECONDS", 30)) * time.Second,
			StatusTimeout:      time.Duration(getEnvAsInt("ADVISORY_STATUS_TIMEOUT_SECONDS", 10)) * time.Second,
			BreakerMaxFailures: getEnvAsInt("ADVISORY_BREAKER_MAX_FAILURES", 5),
			BreakerCooldown:    time.Duration(getEnvAsInt("ADVISORY_BREAKER_COOLDOWN_SECONDS", 30)) * time.Second,
		},
		Cache: CacheConfig{
			Driver: getEnv("CONTEXT_CACHE_DRIVER", "memory"),
		},
		Telemetry: TelemetryConfig{
			Enabled:      getEnvAsBool("OTEL_ENABLED", false),
			OTLPEndpoint: getEnv("OTEL_EXPORTER_OTLP_ENDPOINT", "localhost:4318"),
		},
	}
}

func getEnv(key, fallback string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return fallback
}

func getEnvAsInt(key string, fallback int) int {
	strValue := getEnv(key, "")
	if value, err := strconv.Atoi(strValue); err == nil {
		return value
	}
	return fallback
}

func getEnvAsBool(key string, fallback bool) bool {
	strValue := getEnv(key, "")
	if value, err := strconv.ParseBool(strValue); err == nil {
		return value
	}
	return fallback
}
