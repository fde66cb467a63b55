// Package config loads service configuration from the environment.
//
// A .env file is honored in development via godotenv's autoload import;
// real deployments set the variables directly.
package config

import (
	"os"
	"strconv"
	"strings"
	"time"

	validation "github.com/go-ozzo/ozzo-validation/v4"
	_ "github.com/joho/godotenv/autoload"
)

// Config is the full service configuration.
type Config struct {
	Server   ServerConfig
	Postgres PostgresConfig
	Redis    RedisConfig
	Kafka    KafkaConfig
	Auth     AuthConfig
}

// ServerConfig captures HTTP server level configuration.
type ServerConfig struct {
	Addr            string
	ShutdownTimeout time.Duration
}

// PostgresConfig holds the database connection settings. An empty URL
// selects the in-memory stores.
type PostgresConfig struct {
	URL string
}

// RedisConfig holds cache connection settings. An empty URL disables
// the summary cache.
type RedisConfig struct {
	URL          string
	PoolSize     int
	MinIdleConns int
	DialTimeout  time.Duration
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
}

// KafkaConfig holds audit publisher settings. Empty brokers select the
// in-process channel publisher.
type KafkaConfig struct {
	Brokers    []string
	AuditTopic string
}

// AuthConfig holds token verification material. The admin token is
// stored only as a bcrypt hash; the plaintext never appears in config.
type AuthConfig struct {
	JWTSigningKey  string
	AdminTokenHash string
}

// FromEnv builds the configuration from environment variables and
// validates it so main stays lean.
func FromEnv() (Config, error) {
	cfg := Config{
		Server: ServerConfig{
			Addr:            envOr("PAWPORT_ADDR", ":8080"),
			ShutdownTimeout: envDuration("PAWPORT_SHUTDOWN_TIMEOUT", 10*time.Second),
		},
		Postgres: PostgresConfig{
			URL: os.Getenv("PAWPORT_POSTGRES_URL"),
		},
		Redis: RedisConfig{
			URL:          os.Getenv("PAWPORT_REDIS_URL"),
			PoolSize:     envInt("PAWPORT_REDIS_POOL_SIZE", 10),
			MinIdleConns: envInt("PAWPORT_REDIS_MIN_IDLE_CONNS", 2),
			DialTimeout:  envDuration("PAWPORT_REDIS_DIAL_TIMEOUT", 5*time.Second),
			ReadTimeout:  envDuration("PAWPORT_REDIS_READ_TIMEOUT", 3*time.Second),
			WriteTimeout: envDuration("PAWPORT_REDIS_WRITE_TIMEOUT", 3*time.Second),
		},
		Kafka: KafkaConfig{
			Brokers:    splitList(os.Getenv("PAWPORT_KAFKA_BROKERS")),
			AuditTopic: envOr("PAWPORT_KAFKA_AUDIT_TOPIC", "pawport.audit.events"),
		},
		Auth: AuthConfig{
			JWTSigningKey:  envOr("PAWPORT_JWT_SIGNING_KEY", "dev-secret-key-change-in-production"),
			AdminTokenHash: os.Getenv("PAWPORT_ADMIN_TOKEN_HASH"),
		},
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Validate enforces the invariants main relies on.
func (c Config) Validate() error {
	if err := c.Server.Validate(); err != nil {
		return err
	}
	return c.Auth.Validate()
}

func (s ServerConfig) Validate() error {
	return validation.ValidateStruct(&s,
		validation.Field(&s.Addr, validation.Required),
		validation.Field(&s.ShutdownTimeout, validation.Required),
	)
}

func (a AuthConfig) Validate() error {
	return validation.ValidateStruct(&a,
		validation.Field(&a.JWTSigningKey, validation.Required, validation.Length(8, 0)),
	)
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func envInt(key string, fallback int) int {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return fallback
	}
	return n
}

func envDuration(key string, fallback time.Duration) time.Duration {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		return fallback
	}
	return d
}

func splitList(v string) []string {
	if v == "" {
		return nil
	}
	parts := strings.Split(v, ",")
	out := parts[:0]
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}
