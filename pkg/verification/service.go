package verification

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/tendant/inspection-idm/pkg/account"
	apperrors "github.com/tendant/inspection-idm/pkg/errors"
	"github.com/tendant/inspection-idm/pkg/kvstore"
	"github.com/tendant/inspection-idm/pkg/metrics"
)

// Sender delivers verification links. *notification.Mailer implements it.
type Sender interface {
	SendVerificationMessage(ctx context.Context, email, link string) error
	SendPasswordReset(ctx context.Context, email, link, validFor string) error
}

type PasswordCodec interface {
	Encrypt(password string) (string, error)
}

// PasswordValidator rejects passwords that do not meet the policy.
type PasswordValidator func(password string) error

type Config struct {
	// FrontendURL is the base of the links sent by email.
	FrontendURL     string
	ConfirmationTTL time.Duration
	RecoveryTTL     time.Duration
	AttemptWindow   time.Duration
	MaxAttempts     int64
}

func DefaultConfig() Config {
	return Config{
		FrontendURL:     "http://localhost:3000",
		ConfirmationTTL: 24 * time.Hour,
		RecoveryTTL:     time.Hour,
		AttemptWindow:   15 * time.Minute,
		MaxAttempts:     3,
	}
}

type Service struct {
	accounts         account.Repository
	kv               kvstore.Store
	sender           Sender
	codec            PasswordCodec
	validatePassword PasswordValidator
	cfg              Config
	now              func() time.Time
}

type Option func(*Service)

func WithClock(now func() time.Time) Option {
	return func(s *Service) {
		s.now = now
	}
}

func WithPasswordValidator(v PasswordValidator) Option {
	return func(s *Service) {
		s.validatePassword = v
	}
}

func NewService(accounts account.Repository, kv kvstore.Store, sender Sender, codec PasswordCodec, cfg Config, opts ...Option) *Service {
	s := &Service{
		accounts:         accounts,
		kv:               kv,
		sender:           sender,
		codec:            codec,
		validatePassword: func(string) error { return nil },
		cfg:              cfg,
		now:              time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// IssueEmailConfirmation stores a fresh code for email, replacing any
// previous one, and sends the confirmation link.
func (s *Service) IssueEmailConfirmation(ctx context.Context, email string) error {
	email = account.NormalizeEmail(email)
	code, err := generateToken()
	if err != nil {
		return err
	}
	if err := s.kv.Set(ctx, confirmationKey(email), code, s.cfg.ConfirmationTTL); err != nil {
		return fmt.Errorf("store confirmation code: %w", err)
	}

	link := s.link("/verify-email", url.Values{"email": {email}, "code": {code}})
	if err := s.sender.SendVerificationMessage(ctx, email, link); err != nil {
		slog.Error("Failed to send verification email", "error", err)
		return apperrors.Wrap(err, apperrors.ErrCodeDeliveryFailed, ErrDeliveryFailed.Message)
	}
	metrics.Verifications.WithLabelValues("email", "issued").Inc()
	return nil
}

// ResendEmailConfirmation issues a new code for an unverified account. It
// does nothing for unknown or already verified addresses.
func (s *Service) ResendEmailConfirmation(ctx context.Context, email string) error {
	a, err := s.accounts.FindByEmail(ctx, email)
	if errors.Is(err, account.ErrAccountNotFound) {
		return nil
	}
	if err != nil {
		return err
	}
	if a.Verified() {
		return nil
	}
	return s.IssueEmailConfirmation(ctx, a.Email)
}

// VerifyEmail redeems a confirmation code and stamps the account as
// verified. The code is consumed on success.
func (s *Service) VerifyEmail(ctx context.Context, email, code string) error {
	email = account.NormalizeEmail(email)
	key := confirmationKey(email)

	stored, err := s.kv.Get(ctx, key)
	if errors.Is(err, kvstore.ErrNotFound) {
		return s.rejectCode()
	}
	if err != nil {
		return fmt.Errorf("load confirmation code: %w", err)
	}
	if code == "" || !equal(stored, code) {
		return s.rejectCode()
	}

	// Take guards against two concurrent redemptions of the same code.
	taken, err := s.kv.Take(ctx, key)
	if errors.Is(err, kvstore.ErrNotFound) || (err == nil && !equal(taken, code)) {
		return s.rejectCode()
	}
	if err != nil {
		return fmt.Errorf("consume confirmation code: %w", err)
	}

	a, err := s.accounts.FindByEmail(ctx, email)
	if errors.Is(err, account.ErrAccountNotFound) {
		return s.rejectCode()
	}
	if err != nil {
		return err
	}
	if err := s.accounts.MarkVerified(ctx, a.ID, s.now().UTC()); err != nil {
		return fmt.Errorf("mark account verified: %w", err)
	}
	metrics.Verifications.WithLabelValues("email", "verified").Inc()
	slog.Info("Email verified", "account_id", a.ID)
	return nil
}

func (s *Service) rejectCode() error {
	metrics.Verifications.WithLabelValues("email", "rejected").Inc()
	return ErrInvalidCode
}

// RequestPasswordReset sends a reset link to a verified account. Unknown
// and unverified addresses get the same silent success, and so does a
// failed delivery, which is only logged.
func (s *Service) RequestPasswordReset(ctx context.Context, email string) error {
	a, err := s.accounts.FindByEmail(ctx, email)
	if errors.Is(err, account.ErrAccountNotFound) {
		return nil
	}
	if err != nil {
		return err
	}
	if !a.Verified() {
		return nil
	}

	token, err := generateToken()
	if err != nil {
		return err
	}
	key := recoveryKey(token)
	if err := s.kv.Set(ctx, key, strconv.FormatInt(a.ID, 10), s.cfg.RecoveryTTL); err != nil {
		return fmt.Errorf("store recovery token: %w", err)
	}

	link := s.link("/reset-password", url.Values{"token": {token}})
	if err := s.sender.SendPasswordReset(ctx, a.Email, link, humanDuration(s.cfg.RecoveryTTL)); err != nil {
		slog.Error("Failed to send password reset email", "account_id", a.ID, "error", err)
		if err := s.kv.Delete(ctx, key); err != nil {
			slog.Warn("Failed to drop undelivered recovery token", "error", err)
		}
		return nil
	}
	metrics.Verifications.WithLabelValues("password_reset", "issued").Inc()
	return nil
}

// RedeemPasswordReset sets a new password using a recovery token. Every call
// counts against the per-address attempt budget before the token is looked
// at, so the budget also caps guesses with valid tokens.
func (s *Service) RedeemPasswordReset(ctx context.Context, clientAddr, token, newPassword string) error {
	n, ttl, err := s.kv.Incr(ctx, attemptsKey(clientAddr), s.cfg.AttemptWindow)
	if err != nil {
		return fmt.Errorf("count reset attempt: %w", err)
	}
	if n > s.cfg.MaxAttempts {
		metrics.Verifications.WithLabelValues("password_reset", "rate_limited").Inc()
		slog.Warn("Password reset attempts exceeded", "addr", clientAddr, "attempts", n)
		return ErrTooManyAttempts.WithDetail("retry_after", int((ttl+time.Second-1)/time.Second))
	}

	if token == "" {
		return s.rejectToken()
	}
	key := recoveryKey(token)
	raw, err := s.kv.Get(ctx, key)
	if errors.Is(err, kvstore.ErrNotFound) {
		return s.rejectToken()
	}
	if err != nil {
		return fmt.Errorf("load recovery token: %w", err)
	}
	accountID, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		return s.rejectToken()
	}

	if err := s.validatePassword(newPassword); err != nil {
		return err
	}
	digest, err := s.codec.Encrypt(newPassword)
	if err != nil {
		return fmt.Errorf("encrypt password: %w", err)
	}

	taken, err := s.kv.Take(ctx, key)
	if errors.Is(err, kvstore.ErrNotFound) || (err == nil && taken != raw) {
		return s.rejectToken()
	}
	if err != nil {
		return fmt.Errorf("consume recovery token: %w", err)
	}

	err = s.accounts.UpdatePassword(ctx, accountID, digest)
	if errors.Is(err, account.ErrAccountNotFound) {
		return s.rejectToken()
	}
	if err != nil {
		return fmt.Errorf("update password: %w", err)
	}
	metrics.Verifications.WithLabelValues("password_reset", "redeemed").Inc()
	slog.Info("Password reset", "account_id", accountID)
	return nil
}

func (s *Service) rejectToken() error {
	metrics.Verifications.WithLabelValues("password_reset", "rejected").Inc()
	return ErrInvalidRecoveryToken
}

func (s *Service) link(path string, q url.Values) string {
	return strings.TrimRight(s.cfg.FrontendURL, "/") + path + "?" + q.Encode()
}

func humanDuration(d time.Duration) string {
	switch {
	case d == time.Hour:
		return "1 hour"
	case d%time.Hour == 0:
		return fmt.Sprintf("%d hours", int(d/time.Hour))
	case d%time.Minute == 0:
		return fmt.Sprintf("%d minutes", int(d/time.Minute))
	default:
		return d.String()
	}
}
