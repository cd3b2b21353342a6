package login

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/tendant/inspection-idm/pkg/account"
	"github.com/tendant/inspection-idm/pkg/metrics"
	"github.com/tendant/inspection-idm/pkg/profile"
	"github.com/tendant/inspection-idm/pkg/session"
)

// PasswordCodec is implemented by *credential.Codec.
type PasswordCodec interface {
	Encrypt(password string) (string, error)
	Verify(password, digest string) bool
}

type ProfileResolver interface {
	Resolve(ctx context.Context, accountID int64) (profile.Profile, error)
	ResolveAs(ctx context.Context, accountID int64, role account.Role) (profile.Profile, error)
}

type LoginService struct {
	accounts         account.Repository
	codec            PasswordCodec
	profiles         ProfileResolver
	validatePassword func(string) error
	now              func() time.Time

	dummyOnce   sync.Once
	dummyDigest string
}

type Option func(*LoginService)

func WithPasswordValidator(v func(string) error) Option {
	return func(s *LoginService) {
		s.validatePassword = v
	}
}

func WithClock(now func() time.Time) Option {
	return func(s *LoginService) {
		s.now = now
	}
}

func NewLoginService(accounts account.Repository, codec PasswordCodec, profiles ProfileResolver, opts ...Option) *LoginService {
	s := &LoginService{
		accounts:         accounts,
		codec:            codec,
		profiles:         profiles,
		validatePassword: func(string) error { return nil },
		now:              time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Result is a successful sign-in.
type Result struct {
	Profile profile.Profile
	Claims  session.Claims
}

// Login checks the credentials of a verified account, stamps its last
// visit and resolves its profile.
func (s *LoginService) Login(ctx context.Context, email, password string) (Result, error) {
	a, err := s.accounts.FindByEmail(ctx, email)
	if errors.Is(err, account.ErrAccountNotFound) {
		// Burn the same digest work as a real check.
		s.codec.Verify(password, s.dummy())
		return Result{}, s.reject("unknown_email")
	}
	if err != nil {
		return Result{}, err
	}
	if !s.codec.Verify(password, a.Password) {
		return Result{}, s.reject("wrong_password")
	}
	if !a.Verified() {
		return Result{}, s.reject("unverified")
	}

	if err := s.accounts.TouchLastVisit(ctx, a.ID, s.now().UTC()); err != nil {
		slog.Warn("Failed to record last visit", "account_id", a.ID, "error", err)
	}

	p, err := s.profiles.ResolveAs(ctx, a.ID, a.Role)
	if errors.Is(err, profile.ErrProfileNotFound) {
		// Roles without a profile shape, such as sysadmin, cannot sign in here.
		return Result{}, s.reject("no_profile")
	}
	if err != nil {
		return Result{}, fmt.Errorf("resolve profile: %w", err)
	}

	metrics.SignIns.WithLabelValues("success").Inc()
	slog.Info("Signed in", "account_id", a.ID, "role", a.Role)
	return Result{Profile: p, Claims: ClaimsFor(a, p)}, nil
}

// ChangePassword replaces the password of accountID after checking the
// current one.
func (s *LoginService) ChangePassword(ctx context.Context, accountID int64, current, next string) error {
	a, err := s.accounts.FindByID(ctx, accountID)
	if err != nil {
		return err
	}
	if !s.codec.Verify(current, a.Password) {
		return ErrWrongPassword
	}
	if err := s.validatePassword(next); err != nil {
		return err
	}
	digest, err := s.codec.Encrypt(next)
	if err != nil {
		return fmt.Errorf("encrypt password: %w", err)
	}
	if err := s.accounts.UpdatePassword(ctx, accountID, digest); err != nil {
		return fmt.Errorf("update password: %w", err)
	}
	slog.Info("Password changed", "account_id", accountID)
	return nil
}

// Profile resolves the profile of accountID.
func (s *LoginService) Profile(ctx context.Context, accountID int64) (profile.Profile, error) {
	return s.profiles.Resolve(ctx, accountID)
}

// ClaimsFor builds session claims for a signed-in account. Company-scoped
// profiles carry their company id.
func ClaimsFor(a account.Account, p profile.Profile) session.Claims {
	c := session.Claims{AccountID: a.ID, Role: a.Role}
	if p != nil {
		if cid := p.CompanyID(); cid != nil {
			c.CompanyID = *cid
		}
	}
	return c
}

func (s *LoginService) reject(reason string) error {
	metrics.SignIns.WithLabelValues("rejected").Inc()
	slog.Info("Sign-in rejected", "reason", reason)
	return ErrInvalidCredentials
}

func (s *LoginService) dummy() string {
	s.dummyOnce.Do(func() {
		d, err := s.codec.Encrypt("not-a-real-password")
		if err != nil {
			slog.Warn("Failed to prepare dummy digest", "error", err)
			return
		}
		s.dummyDigest = d
	})
	return s.dummyDigest
}
