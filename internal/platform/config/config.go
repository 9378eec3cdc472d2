package config

import (
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Config is the full runtime configuration assembled by FromEnv.
type Config struct {
	Server    Server
	Database  DatabaseConfig
	Mongo     MongoConfig
	Redis     RedisConfig
	Kafka     KafkaConfig
	Uploads   UploadConfig
	Bootstrap BootstrapConfig
	RateLimit RateLimitConfig
}

// Server captures HTTP server level configuration.
type Server struct {
	Addr            string
	Environment     string
	LogLevel        string
	JWTSigningKey   string
	TokenTTL        time.Duration
	ShutdownTimeout time.Duration
	SubmitLockTTL   time.Duration
}

// DatabaseConfig configures the PostgreSQL pool. An empty URL selects the
// in-memory stores.
type DatabaseConfig struct {
	URL             string
	MaxOpenConns    int
	MaxIdleConns    int
	ConnMaxLifetime time.Duration
}

// MongoConfig configures the MongoDB application store. When URI is set it
// takes over application records from PostgreSQL.
type MongoConfig struct {
	URI        string
	Database   string
	Collection string
}

// RedisConfig configures the submission guard backend.
type RedisConfig struct {
	URL          string
	PoolSize     int
	MinIdleConns int
	DialTimeout  time.Duration
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
}

// KafkaConfig configures lifecycle event publishing. Empty Brokers disables it.
type KafkaConfig struct {
	Brokers         string
	Topic           string
	Acks            string
	Retries         int
	DeliveryTimeout time.Duration
}

// UploadConfig configures document storage.
type UploadConfig struct {
	Dir           string
	PublicBaseURL string
	MaxBytes      int64
}

// RateLimitConfig sets per-minute request budgets. Zero keeps the default;
// Disabled turns the limiter off.
type RateLimitConfig struct {
	Disabled       bool
	AuthPerMinute  int
	WritePerMinute int
}

// BootstrapConfig seeds an HR account on startup when both fields are set.
type BootstrapConfig struct {
	HREmail    string
	HRPassword string
}

// FromEnv builds the configuration from the environment. A .env file in the
// working directory is loaded first when present; real environment variables
// win over its values.
func FromEnv() Config {
	_ = godotenv.Load() //nolint:errcheck // .env is optional

	return Config{
		Server: Server{
			Addr:            getString("ONBOARD_ADDR", ":8080"),
			Environment:     getString("ENVIRONMENT", "development"),
			LogLevel:        getString("LOG_LEVEL", "info"),
			JWTSigningKey:   getString("JWT_SIGNING_KEY", "dev-secret-key-change-in-production"),
			TokenTTL:        getDuration("TOKEN_TTL", 8*time.Hour),
			ShutdownTimeout: getDuration("SHUTDOWN_TIMEOUT", 15*time.Second),
			SubmitLockTTL:   getDuration("SUBMIT_LOCK_TTL", 2*time.Minute),
		},
		Database: DatabaseConfig{
			URL:             os.Getenv("DATABASE_URL"),
			MaxOpenConns:    getInt("DB_MAX_OPEN_CONNS", 25),
			MaxIdleConns:    getInt("DB_MAX_IDLE_CONNS", 5),
			ConnMaxLifetime: getDuration("DB_CONN_MAX_LIFETIME", 5*time.Minute),
		},
		Mongo: MongoConfig{
			URI:        os.Getenv("MONGO_URI"),
			Database:   getString("MONGO_DATABASE", "onboard"),
			Collection: getString("MONGO_COLLECTION", "onboarding_applications"),
		},
		Redis: RedisConfig{
			URL:          os.Getenv("REDIS_URL"),
			PoolSize:     getInt("REDIS_POOL_SIZE", 10),
			MinIdleConns: getInt("REDIS_MIN_IDLE_CONNS", 2),
			DialTimeout:  getDuration("REDIS_DIAL_TIMEOUT", 5*time.Second),
			ReadTimeout:  getDuration("REDIS_READ_TIMEOUT", 3*time.Second),
			WriteTimeout: getDuration("REDIS_WRITE_TIMEOUT", 3*time.Second),
		},
		Kafka: KafkaConfig{
			Brokers:         os.Getenv("KAFKA_BROKERS"),
			Topic:           getString("KAFKA_TOPIC", "onboarding.application.events"),
			Acks:            getString("KAFKA_ACKS", "all"),
			Retries:         getInt("KAFKA_RETRIES", 3),
			DeliveryTimeout: getDuration("KAFKA_DELIVERY_TIMEOUT", 30*time.Second),
		},
		Uploads: UploadConfig{
			Dir:           getString("UPLOAD_DIR", "./data/uploads"),
			PublicBaseURL: strings.TrimRight(getString("PUBLIC_BASE_URL", ""), "/"),
			MaxBytes:      int64(getInt("MAX_UPLOAD_BYTES", 10<<20)),
		},
		Bootstrap: BootstrapConfig{
			HREmail:    os.Getenv("HR_BOOTSTRAP_EMAIL"),
			HRPassword: os.Getenv("HR_BOOTSTRAP_PASSWORD"),
		},
		RateLimit: RateLimitConfig{
			Disabled:       os.Getenv("RATE_LIMIT_DISABLED") == "true",
			AuthPerMinute:  getInt("RATE_LIMIT_AUTH_PER_MINUTE", 0),
			WritePerMinute: getInt("RATE_LIMIT_WRITE_PER_MINUTE", 0),
		},
	}
}

// IsProduction reports whether development shortcuts must be refused.
func (s Server) IsProduction() bool {
	return s.Environment == "production"
}

func getString(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func getInt(key string, fallback int) int {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return fallback
}

func getDuration(key string, fallback time.Duration) time.Duration {
	if v := os.Getenv(key); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			return d
		}
	}
	return fallback
}
