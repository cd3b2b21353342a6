package login

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tendant/inspection-idm/pkg/account"
	"github.com/tendant/inspection-idm/pkg/credential"
	"github.com/tendant/inspection-idm/pkg/memstore"
	"github.com/tendant/inspection-idm/pkg/profile"
	"github.com/tendant/inspection-idm/pkg/provisioning"
)

type nopSender struct{}

func (nopSender) SendCredentials(context.Context, string, string) error { return nil }

func testCodec() *credential.Codec {
	return credential.NewCodec(credential.WithCost(1, 1024), credential.WithParallelism(1))
}

type fixture struct {
	store *memstore.Store
	svc   *LoginService
	prov  *provisioning.Service
	now   time.Time
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	store := memstore.New()
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	return &fixture{
		store: store,
		prov:  provisioning.NewService(store, testCodec(), nopSender{}),
		svc: NewLoginService(store, testCodec(), profile.NewResolver(store),
			WithPasswordValidator(provisioning.ValidatePassword),
			WithClock(func() time.Time { return now }),
		),
		now: now,
	}
}

func (f *fixture) verify(t *testing.T, id int64) {
	t.Helper()
	require.NoError(t, f.store.MarkVerified(context.Background(), id, f.now.Add(-time.Hour)))
}

func TestLogin(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)

	company, err := f.prov.SignUpCompany(ctx, provisioning.CompanySignup{Name: "Acme", Email: "owner@acme.test", Password: "Password1234"})
	require.NoError(t, err)

	t.Run("unverified account is rejected generically", func(t *testing.T) {
		_, err := f.svc.Login(ctx, "owner@acme.test", "Password1234")
		assert.ErrorIs(t, err, ErrInvalidCredentials)
	})

	f.verify(t, company.AccountID)

	t.Run("wrong password", func(t *testing.T) {
		_, err := f.svc.Login(ctx, "owner@acme.test", "wrong-password")
		assert.ErrorIs(t, err, ErrInvalidCredentials)
	})

	t.Run("unknown email", func(t *testing.T) {
		_, err := f.svc.Login(ctx, "nobody@acme.test", "Password1234")
		assert.ErrorIs(t, err, ErrInvalidCredentials)
	})

	t.Run("success carries company claims", func(t *testing.T) {
		res, err := f.svc.Login(ctx, " OWNER@acme.test", "Password1234")
		require.NoError(t, err)
		assert.Equal(t, account.RoleAdministrator, res.Profile.Kind())
		assert.Equal(t, company.AccountID, res.Claims.AccountID)
		assert.Equal(t, account.RoleAdministrator, res.Claims.Role)
		assert.Equal(t, company.CompanyID, res.Claims.CompanyID)

		a, err := f.store.FindByID(ctx, company.AccountID)
		require.NoError(t, err)
		assert.True(t, a.LastVisitAt.Equal(f.now))
	})
}

func TestLoginInspectorHasNoCompany(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)

	id, err := f.prov.SignUpInspector(ctx, provisioning.InspectorSignup{Email: "i@x.com", Password: "Password1234"})
	require.NoError(t, err)
	f.verify(t, id)

	res, err := f.svc.Login(ctx, "i@x.com", "Password1234")
	require.NoError(t, err)
	assert.Zero(t, res.Claims.CompanyID)
	_, ok := res.Claims.Company()
	assert.False(t, ok)
}

func TestLoginSysadminIsRejected(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	digest, err := testCodec().Encrypt("Password1234")
	require.NoError(t, err)
	a := f.store.AddAccount(account.Account{Role: account.RoleSysadmin, Email: "root@x.com", Password: digest})
	f.verify(t, a.ID)

	_, err = f.svc.Login(ctx, "root@x.com", "Password1234")
	assert.ErrorIs(t, err, ErrInvalidCredentials)
}

func TestChangePassword(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)

	id, err := f.prov.SignUpInspector(ctx, provisioning.InspectorSignup{Email: "i@x.com", Password: "Password1234"})
	require.NoError(t, err)
	f.verify(t, id)

	assert.ErrorIs(t, f.svc.ChangePassword(ctx, id, "wrong-password", "NewPassword1"), ErrWrongPassword)
	assert.ErrorIs(t, f.svc.ChangePassword(ctx, id, "Password1234", "short"), provisioning.ErrInvalidPassword)

	require.NoError(t, f.svc.ChangePassword(ctx, id, "Password1234", "NewPassword1"))
	_, err = f.svc.Login(ctx, "i@x.com", "Password1234")
	assert.ErrorIs(t, err, ErrInvalidCredentials)
	_, err = f.svc.Login(ctx, "i@x.com", "NewPassword1")
	assert.NoError(t, err)
}
