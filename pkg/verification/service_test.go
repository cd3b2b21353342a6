package verification

import (
	"context"
	"errors"
	"net/url"
	"strconv"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tendant/inspection-idm/pkg/account"
	"github.com/tendant/inspection-idm/pkg/credential"
	apperrors "github.com/tendant/inspection-idm/pkg/errors"
	"github.com/tendant/inspection-idm/pkg/kvstore"
	"github.com/tendant/inspection-idm/pkg/memstore"
)

type sentLink struct {
	email string
	link  *url.URL
}

type recordingSender struct {
	mu    sync.Mutex
	links []sentLink
	err   error
}

func (s *recordingSender) record(email, link string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.err != nil {
		return s.err
	}
	u, err := url.Parse(link)
	if err != nil {
		return err
	}
	s.links = append(s.links, sentLink{email: email, link: u})
	return nil
}

func (s *recordingSender) SendVerificationMessage(_ context.Context, email, link string) error {
	return s.record(email, link)
}

func (s *recordingSender) SendPasswordReset(_ context.Context, email, link, _ string) error {
	return s.record(email, link)
}

func (s *recordingSender) last(t *testing.T) sentLink {
	t.Helper()
	s.mu.Lock()
	defer s.mu.Unlock()
	require.NotEmpty(t, s.links)
	return s.links[len(s.links)-1]
}

func (s *recordingSender) count() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.links)
}

type clock struct {
	mu  sync.Mutex
	now time.Time
}

func (c *clock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *clock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(d)
}

type fixture struct {
	svc    *Service
	store  *memstore.Store
	kv     *kvstore.MemoryStore
	sender *recordingSender
	clock  *clock
	codec  *credential.Codec
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	c := &clock{now: time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)}
	f := &fixture{
		store:  memstore.New(),
		kv:     kvstore.NewMemoryStore(kvstore.WithClock(c.Now)),
		sender: &recordingSender{},
		clock:  c,
		codec:  credential.NewCodec(credential.WithCost(1, 1024), credential.WithParallelism(1)),
	}
	cfg := DefaultConfig()
	cfg.FrontendURL = "https://app.test/"
	f.svc = NewService(f.store, f.kv, f.sender, f.codec, cfg,
		WithClock(c.Now),
		WithPasswordValidator(func(p string) error {
			if len(p) < 8 {
				return apperrors.InvalidInput("password", "too short")
			}
			return nil
		}),
	)
	return f
}

func (f *fixture) addAccount(email string, verified bool) account.Account {
	a := account.Account{Role: account.RoleInspector, Email: email, Password: "x"}
	if verified {
		at := f.clock.Now()
		a.VerifiedAt = &at
	}
	return f.store.AddAccount(a)
}

func TestEmailConfirmation(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	a := f.addAccount("a@x.com", false)

	require.NoError(t, f.svc.IssueEmailConfirmation(ctx, "A@x.com"))
	sent := f.sender.last(t)
	assert.Equal(t, "a@x.com", sent.email)
	assert.Equal(t, "/verify-email", sent.link.Path)
	assert.Equal(t, "a@x.com", sent.link.Query().Get("email"))
	code := sent.link.Query().Get("code")
	require.NotEmpty(t, code)

	t.Run("wrong code", func(t *testing.T) {
		assert.ErrorIs(t, f.svc.VerifyEmail(ctx, "a@x.com", "nope"), ErrInvalidCode)
		assert.ErrorIs(t, f.svc.VerifyEmail(ctx, "a@x.com", ""), ErrInvalidCode)
		assert.ErrorIs(t, f.svc.VerifyEmail(ctx, "b@x.com", code), ErrInvalidCode)
	})

	t.Run("correct code verifies once", func(t *testing.T) {
		require.NoError(t, f.svc.VerifyEmail(ctx, "a@x.com", code))
		got, err := f.store.FindByID(ctx, a.ID)
		require.NoError(t, err)
		require.NotNil(t, got.VerifiedAt)
		assert.Equal(t, f.clock.Now(), *got.VerifiedAt)

		assert.ErrorIs(t, f.svc.VerifyEmail(ctx, "a@x.com", code), ErrInvalidCode)
	})
}

func TestEmailConfirmationExpires(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	f.addAccount("a@x.com", false)

	require.NoError(t, f.svc.IssueEmailConfirmation(ctx, "a@x.com"))
	code := f.sender.last(t).link.Query().Get("code")

	f.clock.Advance(25 * time.Hour)
	assert.ErrorIs(t, f.svc.VerifyEmail(ctx, "a@x.com", code), ErrInvalidCode)
}

func TestReissueReplacesCode(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	f.addAccount("a@x.com", false)

	require.NoError(t, f.svc.IssueEmailConfirmation(ctx, "a@x.com"))
	first := f.sender.last(t).link.Query().Get("code")
	require.NoError(t, f.svc.ResendEmailConfirmation(ctx, "a@x.com"))
	second := f.sender.last(t).link.Query().Get("code")

	assert.NotEqual(t, first, second)
	assert.ErrorIs(t, f.svc.VerifyEmail(ctx, "a@x.com", first), ErrInvalidCode)
	assert.NoError(t, f.svc.VerifyEmail(ctx, "a@x.com", second))
}

func TestResendIsSilentForUnknownAndVerified(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	f.addAccount("v@x.com", true)

	assert.NoError(t, f.svc.ResendEmailConfirmation(ctx, "nobody@x.com"))
	assert.NoError(t, f.svc.ResendEmailConfirmation(ctx, "v@x.com"))
	assert.Zero(t, f.sender.count())
}

func TestIssueDeliveryFailure(t *testing.T) {
	f := newFixture(t)
	f.sender.err = errors.New("smtp down")

	err := f.svc.IssueEmailConfirmation(context.Background(), "a@x.com")
	assert.ErrorIs(t, err, ErrDeliveryFailed)
}

func TestRequestPasswordReset(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	a := f.addAccount("v@x.com", true)
	f.addAccount("u@x.com", false)

	t.Run("unknown and unverified are silent", func(t *testing.T) {
		assert.NoError(t, f.svc.RequestPasswordReset(ctx, "nobody@x.com"))
		assert.NoError(t, f.svc.RequestPasswordReset(ctx, "u@x.com"))
		assert.Zero(t, f.sender.count())
	})

	t.Run("verified account gets a token", func(t *testing.T) {
		require.NoError(t, f.svc.RequestPasswordReset(ctx, "V@x.com"))
		sent := f.sender.last(t)
		assert.Equal(t, "/reset-password", sent.link.Path)
		token := sent.link.Query().Get("token")

		v, err := f.kv.Get(ctx, "recovery:"+token)
		require.NoError(t, err)
		assert.Equal(t, strconv.FormatInt(a.ID, 10), v)

		f.clock.Advance(61 * time.Minute)
		_, err = f.kv.Get(ctx, "recovery:"+token)
		assert.ErrorIs(t, err, kvstore.ErrNotFound)
	})

	t.Run("delivery failure stays silent and drops the token", func(t *testing.T) {
		before := f.kv.Len()
		f.sender.err = errors.New("smtp down")
		defer func() { f.sender.err = nil }()

		assert.NoError(t, f.svc.RequestPasswordReset(ctx, "v@x.com"))
		assert.Equal(t, before, f.kv.Len())
	})
}

func (f *fixture) resetToken(t *testing.T, email string) string {
	t.Helper()
	require.NoError(t, f.svc.RequestPasswordReset(context.Background(), email))
	return f.sender.last(t).link.Query().Get("token")
}

func TestRedeemPasswordReset(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	a := f.addAccount("v@x.com", true)
	token := f.resetToken(t, "v@x.com")

	t.Run("weak password keeps the token", func(t *testing.T) {
		err := f.svc.RedeemPasswordReset(ctx, "10.0.0.1", token, "short")
		assert.True(t, apperrors.IsCode(err, apperrors.ErrCodeInvalidInput))
		_, err = f.kv.Get(ctx, "recovery:"+token)
		assert.NoError(t, err)
	})

	t.Run("success updates the credential", func(t *testing.T) {
		require.NoError(t, f.svc.RedeemPasswordReset(ctx, "10.0.0.2", token, "NewPassword99"))
		got, err := f.store.FindByID(ctx, a.ID)
		require.NoError(t, err)
		assert.True(t, f.codec.Verify("NewPassword99", got.Password))
	})

	t.Run("token cannot be replayed", func(t *testing.T) {
		err := f.svc.RedeemPasswordReset(ctx, "10.0.0.3", token, "OtherPassword99")
		assert.ErrorIs(t, err, ErrInvalidRecoveryToken)
	})

	t.Run("expired token", func(t *testing.T) {
		token := f.resetToken(t, "v@x.com")
		f.clock.Advance(time.Hour + time.Second)
		err := f.svc.RedeemPasswordReset(ctx, "10.0.0.4", token, "NewPassword99")
		assert.ErrorIs(t, err, ErrInvalidRecoveryToken)
	})
}

func TestRedeemAttemptCeiling(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	a := f.addAccount("v@x.com", true)
	token := f.resetToken(t, "v@x.com")
	const addr = "192.0.2.7"

	for i := 1; i <= 3; i++ {
		err := f.svc.RedeemPasswordReset(ctx, addr, "unknown-token", "NewPassword99")
		assert.ErrorIs(t, err, ErrInvalidRecoveryToken)

		n, err := f.kv.Get(ctx, "attempts_to_reset_password:"+addr)
		require.NoError(t, err)
		assert.Equal(t, strconv.Itoa(i), n)
	}

	err := f.svc.RedeemPasswordReset(ctx, addr, token, "NewPassword99")
	assert.ErrorIs(t, err, ErrTooManyAttempts)
	var appErr *apperrors.Error
	require.True(t, errors.As(err, &appErr))
	assert.Equal(t, 900, appErr.Details["retry_after"])

	got, err := f.store.FindByID(ctx, a.ID)
	require.NoError(t, err)
	assert.Equal(t, "x", got.Password)

	t.Run("other addresses are not limited", func(t *testing.T) {
		assert.NoError(t, f.svc.RedeemPasswordReset(ctx, "192.0.2.8", token, "NewPassword99"))
	})

	t.Run("window expires", func(t *testing.T) {
		f.clock.Advance(15 * time.Minute)
		err := f.svc.RedeemPasswordReset(ctx, addr, "unknown-token", "NewPassword99")
		assert.ErrorIs(t, err, ErrInvalidRecoveryToken)
	})
}

func TestHumanDuration(t *testing.T) {
	assert.Equal(t, "1 hour", humanDuration(time.Hour))
	assert.Equal(t, "2 hours", humanDuration(2*time.Hour))
	assert.Equal(t, "15 minutes", humanDuration(15*time.Minute))
}
