package config

import (
	"errors"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

const defaultJWTSecret = "dev-secret-change-in-production"

type Config struct {
	Server    ServerConfig
	Auth      AuthConfig
	Redis     RedisConfig
	RateLimit RateLimitConfig
	Snowflake SnowflakeConfig
}

type ServerConfig struct {
	Port            string
	Environment     string
	APIPrefix       string
	ShutdownTimeout time.Duration
}

type AuthConfig struct {
	JWTSecret  string
	JWTExpiry  time.Duration
	BcryptCost int
}

type RedisConfig struct {
	Addr       string
	Password   string
	DB         int
	StreamName string
}

type RateLimitConfig struct {
	Requests int
	Window   time.Duration
	Clients  int
}

type SnowflakeConfig struct {
	DatacenterID int64
	WorkerID     int64
}

func Load() (*Config, error) {
	// .env is optional; real deployments set the environment directly
	_ = godotenv.Load()

	cfg := &Config{
		Server: ServerConfig{
			Port:            getEnv("PORT", "3000"),
			Environment:     getEnv("APP_ENV", "development"),
			APIPrefix:       getEnv("API_PREFIX", "/api/v1"),
			ShutdownTimeout: getEnvAsDuration("SHUTDOWN_TIMEOUT", 10*time.Second),
		},
		Auth: AuthConfig{
			JWTSecret:  getEnv("JWT_SECRET", ""),
			JWTExpiry:  getEnvAsDuration("JWT_EXPIRY", 24*time.Hour),
			BcryptCost: getEnvAsInt("BCRYPT_COST", 10),
		},
		Redis: RedisConfig{
			Addr:       getEnv("REDIS_ADDR", ""),
			Password:   getEnv("REDIS_PASSWORD", ""),
			DB:         getEnvAsInt("REDIS_DB", 0),
			StreamName: getEnv("REDIS_STREAM_NAME", "tasks:events"),
		},
		RateLimit: RateLimitConfig{
			Requests: getEnvAsInt("API_RATE_LIMIT", 100),
			Window:   getEnvAsDuration("RATE_LIMIT_WINDOW", 15*time.Minute),
			Clients:  getEnvAsInt("RATE_LIMIT_CLIENTS", 10000),
		},
		Snowflake: SnowflakeConfig{
			DatacenterID: int64(getEnvAsInt("SNOWFLAKE_DATACENTER_ID", 1)),
			WorkerID:     int64(getEnvAsInt("SNOWFLAKE_WORKER_ID", 1)),
		},
	}

	if cfg.Auth.JWTSecret == "" {
		if cfg.IsProduction() {
			return nil, errors.New("JWT_SECRET must be set in production")
		}
		cfg.Auth.JWTSecret = defaultJWTSecret
	}

	return cfg, nil
}

func (c *Config) IsProduction() bool {
	return c.Server.Environment == "production"
}

// UsingDefaultSecret reports whether the insecure development secret is in use.
func (c *Config) UsingDefaultSecret() bool {
	return c.Auth.JWTSecret == defaultJWTSecret
}

func (c *Config) RedisEnabled() bool {
	return c.Redis.Addr != ""
}

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

func getEnvAsDuration(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if duration, err := time.ParseDuration(value); err == nil {
			return duration
		}
	}
	return defaultValue
}
