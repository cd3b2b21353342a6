package config

import (
	"time"

	"github.com/tendant/inspection-idm/pkg/credential"
	"github.com/tendant/inspection-idm/pkg/session"
	"github.com/tendant/inspection-idm/pkg/verification"
)

type SessionConfig struct {
	CookieName   string `env:"SESSION_COOKIE_NAME" env-default:"sid"`
	CookieDomain string `env:"SESSION_COOKIE_DOMAIN" env-default:""`
	CookieSecure bool   `env:"SESSION_COOKIE_SECURE" env-default:"false"`
	TTL          string `env:"SESSION_TTL" env-default:"P7D"`
}

func (s SessionConfig) ToCookieConfig() session.CookieConfig {
	return session.CookieConfig{
		Name:   s.CookieName,
		Path:   "/",
		Domain: s.CookieDomain,
		Secure: s.CookieSecure,
	}
}

// TTLDuration assumes Validate has accepted the config.
func (s SessionConfig) TTLDuration() time.Duration {
	return mustDuration(s.TTL)
}

type VerificationConfig struct {
	FrontendURL     string `env:"FRONTEND_URL" env-default:"http://localhost:3000"`
	ConfirmationTTL string `env:"VERIFICATION_CONFIRMATION_TTL" env-default:"PT24H"`
	RecoveryTTL     string `env:"VERIFICATION_RECOVERY_TTL" env-default:"PT1H"`
	AttemptWindow   string `env:"VERIFICATION_ATTEMPT_WINDOW" env-default:"PT15M"`
	MaxAttempts     int64  `env:"VERIFICATION_MAX_ATTEMPTS" env-default:"3"`
}

func (v VerificationConfig) ToVerificationConfig() verification.Config {
	return verification.Config{
		FrontendURL:     v.FrontendURL,
		ConfirmationTTL: mustDuration(v.ConfirmationTTL),
		RecoveryTTL:     mustDuration(v.RecoveryTTL),
		AttemptWindow:   mustDuration(v.AttemptWindow),
		MaxAttempts:     v.MaxAttempts,
	}
}

type RateLimitConfig struct {
	Enabled   bool    `env:"RATE_LIMIT_ENABLED" env-default:"true"`
	Burst     int     `env:"RATE_LIMIT_BURST" env-default:"10"`
	PerMinute float64 `env:"RATE_LIMIT_PER_MINUTE" env-default:"10"`
	BucketTTL string  `env:"RATE_LIMIT_BUCKET_TTL" env-default:"PT1H"`
}

func (r RateLimitConfig) PerSecond() float64 {
	return r.PerMinute / 60
}

func (r RateLimitConfig) BucketTTLDuration() time.Duration {
	return mustDuration(r.BucketTTL)
}

// PasswordConfig tunes the argon2id cost.
type PasswordConfig struct {
	Iterations  uint32 `env:"ARGON2_ITERATIONS" env-default:"3"`
	MemoryKiB   uint32 `env:"ARGON2_MEMORY_KIB" env-default:"65536"`
	Parallelism uint8  `env:"ARGON2_PARALLELISM" env-default:"2"`
}

func (p PasswordConfig) NewCodec() *credential.Codec {
	return credential.NewCodec(
		credential.WithCost(p.Iterations, p.MemoryKiB),
		credential.WithParallelism(p.Parallelism),
	)
}
