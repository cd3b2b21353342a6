package config

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"time"

	"github.com/ilyakaznacheev/cleanenv"
	"github.com/joho/godotenv"
	"github.com/sosodev/duration"
)

const (
	BackendPostgres = "postgres"
	BackendRedis    = "redis"
	BackendMemory   = "memory"
)

type Config struct {
	LogLevel     string `env:"LOG_LEVEL" env-default:"info"`
	LogFormat    string `env:"LOG_FORMAT" env-default:"text"`
	StoreBackend string `env:"STORE_BACKEND" env-default:"postgres"`
	KVBackend    string `env:"KV_BACKEND" env-default:"redis"`
	APIPrefix    string `env:"API_PREFIX" env-default:"/api/v1"`

	// TrustProxyHeaders makes the client address come from forwarding
	// headers. Attempt counters and rate limits are keyed on it.
	TrustProxyHeaders bool `env:"TRUST_PROXY_HEADERS" env-default:"false"`

	// MemoryCities seeds the city table when STORE_BACKEND=memory.
	MemoryCities []string `env:"MEMORY_CITIES" env-separator:"," env-default:"Berlin,Hamburg,Munich"`

	Database     DatabaseConfig
	Redis        RedisConfig
	Email        EmailConfig
	Session      SessionConfig
	Verification VerificationConfig
	RateLimit    RateLimitConfig
	Password     PasswordConfig
}

// Load reads envFile, when it exists, and then the environment.
func Load(envFile string) (Config, error) {
	LoadEnvFile(envFile)

	var cfg Config
	if err := cleanenv.ReadEnv(&cfg); err != nil {
		return Config{}, fmt.Errorf("read environment: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func LoadEnvFile(envFile string) {
	if envFile == "" {
		return
	}
	if _, err := os.Stat(envFile); os.IsNotExist(err) {
		slog.Debug("No .env file found (using environment variables or defaults)", "path", envFile)
		return
	}
	slog.Info("Loading configuration from .env file", "path", envFile)
	if err := godotenv.Load(envFile); err != nil {
		slog.Warn("Failed to load .env file", "error", err)
	}
}

func (c Config) Validate() error {
	var errs []error
	switch c.StoreBackend {
	case BackendPostgres, BackendMemory:
	default:
		errs = append(errs, fmt.Errorf("STORE_BACKEND must be %q or %q, got %q", BackendPostgres, BackendMemory, c.StoreBackend))
	}
	switch c.KVBackend {
	case BackendRedis, BackendMemory:
	default:
		errs = append(errs, fmt.Errorf("KV_BACKEND must be %q or %q, got %q", BackendRedis, BackendMemory, c.KVBackend))
	}
	switch c.Email.Delivery {
	case DeliverySMTP, DeliveryLog:
	default:
		errs = append(errs, fmt.Errorf("EMAIL_DELIVERY must be %q or %q, got %q", DeliverySMTP, DeliveryLog, c.Email.Delivery))
	}
	if c.Verification.MaxAttempts < 1 {
		errs = append(errs, errors.New("VERIFICATION_MAX_ATTEMPTS must be positive"))
	}
	if c.Password.Iterations < 1 || c.Password.Parallelism < 1 {
		errs = append(errs, errors.New("ARGON2_ITERATIONS and ARGON2_PARALLELISM must be positive"))
	}
	for name, v := range map[string]string{
		"SESSION_TTL":                   c.Session.TTL,
		"VERIFICATION_CONFIRMATION_TTL": c.Verification.ConfirmationTTL,
		"VERIFICATION_RECOVERY_TTL":     c.Verification.RecoveryTTL,
		"VERIFICATION_ATTEMPT_WINDOW":   c.Verification.AttemptWindow,
		"RATE_LIMIT_BUCKET_TTL":         c.RateLimit.BucketTTL,
	} {
		if _, err := ParseDuration(v); err != nil {
			errs = append(errs, fmt.Errorf("%s: %w", name, err))
		}
	}
	return errors.Join(errs...)
}

// ParseDuration parses an ISO 8601 duration such as "PT15M" or "P7D".
func ParseDuration(s string) (time.Duration, error) {
	d, err := duration.Parse(s)
	if err != nil {
		return 0, fmt.Errorf("invalid duration %q: %w", s, err)
	}
	td := d.ToTimeDuration()
	if td <= 0 {
		return 0, fmt.Errorf("duration %q must be positive", s)
	}
	return td, nil
}

func mustDuration(s string) time.Duration {
	d, err := ParseDuration(s)
	if err != nil {
		panic(err)
	}
	return d
}
