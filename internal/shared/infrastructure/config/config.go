package config

import (
	"strings"
	"time"

	"github.com/ltaportal/procurement/internal/shared/infrastructure/database"
	"github.com/spf13/viper"
)

// Config holds all configuration for the application
type Config struct {
	Server      ServerConfig
	Database    database.PostgresConfig
	Redis       database.RedisConfig
	JWT         JWTConfig
	FileStorage FileStorageConfig
	Log         LogConfig
	Kafka       KafkaConfig
	Portal      PortalConfig
}

// ServerConfig holds server configuration
type ServerConfig struct {
	Port           string
	AllowedOrigins string
	PublicBaseURL  string
}

// JWTConfig holds JWT configuration
type JWTConfig struct {
	Secret string
	Expiry time.Duration
}

// FileStorageConfig holds file storage configuration
type FileStorageConfig struct {
	UseS3            bool
	S3Region         string
	S3Endpoint       string
	S3PublicEndpoint string
	S3AccessKey      string
	S3SecretKey      string
	S3BucketName     string
	S3UseSSL         bool
	LocalPath        string
	LocalBaseURL     string
}

// LogConfig controls the zap logger
type LogConfig struct {
	Level  string
	Format string
}

// KafkaConfig holds the domain event publisher settings.
// An empty broker list disables publishing.
type KafkaConfig struct {
	Brokers     []string
	TopicPrefix string
}

// PortalConfig holds business settings of the procurement portal
type PortalConfig struct {
	TaxRate          float64
	DocumentTokenTTL time.Duration
	ProductCacheTTL  time.Duration
	MigrationsAuto   bool
}

var defaults = map[string]any{
	"PORT":               "8080",
	"ALLOWED_ORIGINS":    "http://localhost:5173",
	"PUBLIC_BASE_URL":    "http://localhost:8080",
	"DB_HOST":            "localhost",
	"DB_PORT":            "5432",
	"DB_USER":            "postgres",
	"DB_PASSWORD":        "",
	"DB_NAME":            "procurement",
	"DB_SSLMODE":         "disable",
	"REDIS_HOST":         "localhost",
	"REDIS_PORT":         "6379",
	"REDIS_PASSWORD":     "",
	"REDIS_DB":           0,
	"JWT_SECRET":         "default-dev-secret",
	"JWT_EXPIRATION":     "24h",
	"USE_S3":             false,
	"S3_REGION":          "us-east-1",
	"S3_ENDPOINT":        "",
	"S3_PUBLIC_ENDPOINT": "",
	"S3_ACCESS_KEY":      "",
	"S3_SECRET_KEY":      "",
	"S3_BUCKET":          "",
	"S3_USE_SSL":         true,
	"LOCAL_STORAGE_PATH": "./uploads",
	"LOCAL_STORAGE_URL":  "http://localhost:8080/uploads",
	"LOG_LEVEL":          "info",
	"LOG_FORMAT":         "json",
	"KAFKA_BROKERS":      "",
	"KAFKA_TOPIC_PREFIX": "procurement",
	"TAX_RATE":           0.15,
	"DOCUMENT_TOKEN_TTL": "5m",
	"PRODUCT_CACHE_TTL":  "30m",
	"MIGRATIONS_AUTO":    true,
}

// Load reads configuration from environment variables
func Load() Config {
	v := viper.New()
	v.AutomaticEnv()
	for key, value := range defaults {
		v.SetDefault(key, value)
	}

	return Config{
		Server: ServerConfig{
			Port:           v.GetString("PORT"),
			AllowedOrigins: v.GetString("ALLOWED_ORIGINS"),
			PublicBaseURL:  strings.TrimRight(v.GetString("PUBLIC_BASE_URL"), "/"),
		},
		Database: database.PostgresConfig{
			Host:     v.GetString("DB_HOST"),
			Port:     v.GetString("DB_PORT"),
			User:     v.GetString("DB_USER"),
			Password: v.GetString("DB_PASSWORD"),
			DBName:   v.GetString("DB_NAME"),
			SSLMode:  v.GetString("DB_SSLMODE"),
		},
		Redis: database.RedisConfig{
			Host:     v.GetString("REDIS_HOST"),
			Port:     v.GetString("REDIS_PORT"),
			Password: v.GetString("REDIS_PASSWORD"),
			DB:       v.GetInt("REDIS_DB"),
		},
		JWT: JWTConfig{
			Secret: v.GetString("JWT_SECRET"),
			Expiry: parseDuration(v.GetString("JWT_EXPIRATION"), 24*time.Hour),
		},
		FileStorage: FileStorageConfig{
			UseS3:            v.GetBool("USE_S3"),
			S3Region:         v.GetString("S3_REGION"),
			S3Endpoint:       v.GetString("S3_ENDPOINT"),
			S3PublicEndpoint: firstNonEmpty(v.GetString("S3_PUBLIC_ENDPOINT"), v.GetString("S3_ENDPOINT")),
			S3AccessKey:      v.GetString("S3_ACCESS_KEY"),
			S3SecretKey:      v.GetString("S3_SECRET_KEY"),
			S3BucketName:     v.GetString("S3_BUCKET"),
			S3UseSSL:         v.GetBool("S3_USE_SSL"),
			LocalPath:        v.GetString("LOCAL_STORAGE_PATH"),
			LocalBaseURL:     strings.TrimRight(v.GetString("LOCAL_STORAGE_URL"), "/"),
		},
		Log: LogConfig{
			Level:  v.GetString("LOG_LEVEL"),
			Format: v.GetString("LOG_FORMAT"),
		},
		Kafka: KafkaConfig{
			Brokers:     splitList(v.GetString("KAFKA_BROKERS")),
			TopicPrefix: v.GetString("KAFKA_TOPIC_PREFIX"),
		},
		Portal: PortalConfig{
			TaxRate:          v.GetFloat64("TAX_RATE"),
			DocumentTokenTTL: parseDuration(v.GetString("DOCUMENT_TOKEN_TTL"), 5*time.Minute),
			ProductCacheTTL:  parseDuration(v.GetString("PRODUCT_CACHE_TTL"), 30*time.Minute),
			MigrationsAuto:   v.GetBool("MIGRATIONS_AUTO"),
		},
	}
}

// parseDuration parses a duration string or returns a default value
func parseDuration(value string, defaultValue time.Duration) time.Duration {
	if duration, err := time.ParseDuration(value); err == nil {
		return duration
	}
	return defaultValue
}

func splitList(value string) []string {
	var out []string
	for _, part := range strings.Split(value, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}
