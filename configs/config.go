package configs

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	Server     ServerConfig
	Mongo      MongoConfig
	JWT        JWTConfig
	Email      EmailConfig
	Redis      RedisConfig
	Cache      CacheConfig
	Log        LogConfig
	ResetGuard ResetGuardConfig
}

type ServerConfig struct {
	Host         string
	Port         string
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
	IdleTimeout  time.Duration
	TLSCertFile  string
	TLSKeyFile   string
}

type MongoConfig struct {
	URI            string
	Database       string
	ConnectTimeout time.Duration
	MaxPoolSize    uint64
	MinPoolSize    uint64
}

type JWTConfig struct {
	Secret   string
	TokenTTL time.Duration
}

type EmailConfig struct {
	SendGridAPIKey string
	FromEmail      string
	FromName       string
	CompanyName    string
	ClientURL      string
}

type RedisConfig struct {
	Host     string
	Port     string
	Password string
	DB       int
	// Pool and timeout settings
	PoolSize     int
	MinIdleConns int
	DialTimeout  time.Duration
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
	PoolTimeout  time.Duration
	IdleTimeout  time.Duration
}

type CacheConfig struct {
	KeyPrefix string
	// TTL for entity, list and count entries. Lists and counts tolerate this
	// much staleness; by-id entries are invalidated synchronously on write.
	EntryTTL time.Duration
}

type LogConfig struct {
	Level  string
	Format string // json or text
}

type ResetGuardConfig struct {
	MaxAttempts int
	Window      time.Duration
	// Validity of an issued reset token; a second token is refused while one
	// is outstanding.
	TokenTTL time.Duration
}

func Load() (*Config, error) {
	// Load .env file if it exists
	_ = godotenv.Load()

	cfg := &Config{
		Server: ServerConfig{
			Host:         getEnv("SERVER_HOST", "0.0.0.0"),
			Port:         getEnv("SERVER_PORT", "5000"),
			ReadTimeout:  getDurationEnv("SERVER_READ_TIMEOUT", 30*time.Second),
			WriteTimeout: getDurationEnv("SERVER_WRITE_TIMEOUT", 30*time.Second),
			IdleTimeout:  getDurationEnv("SERVER_IDLE_TIMEOUT", 120*time.Second),
			TLSCertFile:  getEnv("TLS_CERT_FILE", ""),
			TLSKeyFile:   getEnv("TLS_KEY_FILE", ""),
		},
		Mongo: MongoConfig{
			URI:            getEnvRequired("MONGO_URI"),
			Database:       getEnv("MONGO_DB", "meenabazaar"),
			ConnectTimeout: getDurationEnv("MONGO_CONNECT_TIMEOUT", 10*time.Second),
			MaxPoolSize:    uint64(getIntEnv("MONGO_MAX_POOL_SIZE", 100)),
			MinPoolSize:    uint64(getIntEnv("MONGO_MIN_POOL_SIZE", 0)),
		},
		JWT: JWTConfig{
			Secret:   getEnvRequired("JWT_SECRET"),
			TokenTTL: getDurationEnv("JWT_TOKEN_TTL", 24*time.Hour),
		},
		Email: EmailConfig{
			SendGridAPIKey: getEnvRequired("SENDGRID_API_KEY"),
			FromEmail:      getEnv("FROM_EMAIL", "noreply@meenabazaar.example"),
			FromName:       getEnv("FROM_NAME", "Meenabazaar"),
			CompanyName:    getEnv("COMPANY_NAME", "Meenabazaar"),
			ClientURL:      getEnvRequired("CLIENT_URL"),
		},
		Redis: RedisConfig{
			Host:         getEnv("REDIS_HOST", "localhost"),
			Port:         getEnv("REDIS_PORT", "6379"),
			Password:     getEnv("REDIS_PASSWORD", ""),
			DB:           getIntEnv("REDIS_DB", 0),
			PoolSize:     getIntEnv("REDIS_POOL_SIZE", 10),
			MinIdleConns: getIntEnv("REDIS_MIN_IDLE_CONNS", 2),
			DialTimeout:  getDurationEnv("REDIS_DIAL_TIMEOUT", 5*time.Second),
			ReadTimeout:  getDurationEnv("REDIS_READ_TIMEOUT", 3*time.Second),
			WriteTimeout: getDurationEnv("REDIS_WRITE_TIMEOUT", 3*time.Second),
			PoolTimeout:  getDurationEnv("REDIS_POOL_TIMEOUT", 4*time.Second),
			IdleTimeout:  getDurationEnv("REDIS_IDLE_TIMEOUT", 5*time.Minute),
		},
		Cache: CacheConfig{
			KeyPrefix: getEnv("CACHE_KEY_PREFIX", "mb"),
			EntryTTL:  getDurationEnv("CACHE_ENTRY_TTL", 60*time.Second),
		},
		Log: LogConfig{
			Level:  getEnv("LOG_LEVEL", "info"),
			Format: getEnv("LOG_FORMAT", "json"),
		},
		ResetGuard: ResetGuardConfig{
			MaxAttempts: getIntEnv("RESET_GUARD_MAX_ATTEMPTS", 3),
			Window:      getDurationEnv("RESET_GUARD_WINDOW", time.Hour),
			TokenTTL:    getDurationEnv("RESET_TOKEN_TTL", time.Hour),
		},
	}

	return cfg, nil
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvRequired(key string) string {
	value := os.Getenv(key)
	if value == "" {
		panic(fmt.Sprintf("Required environment variable %s is not set", key))
	}
	return value
}

func getIntEnv(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intValue, err := strconv.Atoi(value); err == nil {
			return intValue
		}
	}
	return defaultValue
}

func getDurationEnv(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if duration, err := time.ParseDuration(value); err == nil {
			return duration
		}
	}
	return defaultValue
}
