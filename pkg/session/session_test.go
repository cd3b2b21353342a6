package session

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/go-chi/chi/v5"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tendant/inspection-idm/pkg/account"
	"github.com/tendant/inspection-idm/pkg/kvstore"
)

func newManager(kv kvstore.Store) *Manager {
	return NewManager(NewStore(kv, time.Hour), CookieConfig{Name: "sid"})
}

// signIn starts a session for c and returns the cookie the client would
// send back.
func signIn(t *testing.T, m *Manager, c Claims) *http.Cookie {
	t.Helper()
	rec := httptest.NewRecorder()
	require.NoError(t, m.Start(context.Background(), rec, c))
	cookies := rec.Result().Cookies()
	require.Len(t, cookies, 1)
	return cookies[0]
}

func TestStoreRoundTrip(t *testing.T) {
	ctx := context.Background()
	store := NewStore(kvstore.NewMemoryStore(), time.Hour)

	id, err := store.Create(ctx, Claims{AccountID: 4, Role: account.RoleManager, CompanyID: 2})
	require.NoError(t, err)

	c, err := store.Get(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, Claims{AccountID: 4, Role: account.RoleManager, CompanyID: 2}, c)

	require.NoError(t, store.Destroy(ctx, id))
	_, err = store.Get(ctx, id)
	assert.ErrorIs(t, err, ErrSessionNotFound)

	_, err = store.Get(ctx, "not-a-session-id")
	assert.ErrorIs(t, err, ErrSessionNotFound)

	_, err = store.Create(ctx, Claims{})
	assert.Error(t, err)
}

func TestCookieCarriesOnlyTheID(t *testing.T) {
	m := newManager(kvstore.NewMemoryStore())
	cookie := signIn(t, m, Claims{AccountID: 9, Role: account.RoleAdministrator, CompanyID: 3})

	assert.Equal(t, "sid", cookie.Name)
	assert.True(t, cookie.HttpOnly)
	assert.NotContains(t, cookie.Value, "administrator")
	assert.Len(t, cookie.Value, 36)
}

func TestLoadAndIsAuthorized(t *testing.T) {
	m := newManager(kvstore.NewMemoryStore())
	var seen Claims
	handler := m.Load(IsAuthorized(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		seen, _ = ClaimsFromContext(r.Context())
		w.WriteHeader(http.StatusNoContent)
	})))

	t.Run("anonymous", func(t *testing.T) {
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))
		assert.Equal(t, http.StatusUnauthorized, rec.Code)
	})

	t.Run("unknown session clears cookie", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req.AddCookie(&http.Cookie{Name: "sid", Value: "6f1c5e0e-6b8a-4d8c-9d7e-0a0b0c0d0e0f"})
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, req)
		assert.Equal(t, http.StatusUnauthorized, rec.Code)
		require.Len(t, rec.Result().Cookies(), 1)
		assert.Equal(t, -1, rec.Result().Cookies()[0].MaxAge)
	})

	t.Run("authenticated", func(t *testing.T) {
		want := Claims{AccountID: 7, Role: account.RoleInspector}
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req.AddCookie(signIn(t, m, want))
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, req)
		assert.Equal(t, http.StatusNoContent, rec.Code)
		assert.Equal(t, want, seen)
	})
}

func companyRouter(m *Manager) http.Handler {
	r := chi.NewRouter()
	r.Use(m.Load)
	r.With(IsAuthorized, OwnsCompany("companyId")).Post("/companies/{companyId}/employees", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusCreated)
	})
	return r
}

func TestOwnsCompany(t *testing.T) {
	m := newManager(kvstore.NewMemoryStore())
	router := companyRouter(m)

	do := func(c Claims, path string) int {
		req := httptest.NewRequest(http.MethodPost, path, nil)
		if !c.Empty() {
			req.AddCookie(signIn(t, m, c))
		}
		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, req)
		return rec.Code
	}

	cases := []struct {
		name   string
		claims Claims
		path   string
		want   int
	}{
		{"administrator of the company", Claims{AccountID: 1, Role: account.RoleAdministrator, CompanyID: 2}, "/companies/2/employees", http.StatusCreated},
		{"manager of the company", Claims{AccountID: 2, Role: account.RoleManager, CompanyID: 2}, "/companies/2/employees", http.StatusCreated},
		{"administrator of another company", Claims{AccountID: 1, Role: account.RoleAdministrator, CompanyID: 2}, "/companies/3/employees", http.StatusForbidden},
		{"manager of another company", Claims{AccountID: 2, Role: account.RoleManager, CompanyID: 2}, "/companies/3/employees", http.StatusForbidden},
		{"inspector", Claims{AccountID: 3, Role: account.RoleInspector}, "/companies/2/employees", http.StatusForbidden},
		{"sysadmin", Claims{AccountID: 4, Role: account.RoleSysadmin}, "/companies/2/employees", http.StatusForbidden},
		{"non numeric company", Claims{AccountID: 1, Role: account.RoleAdministrator, CompanyID: 2}, "/companies/abc/employees", http.StatusForbidden},
		{"anonymous", Claims{}, "/companies/2/employees", http.StatusUnauthorized},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, do(tc.claims, tc.path))
		})
	}
}

func TestEnd(t *testing.T) {
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { client.Close() })
	m := newManager(kvstore.NewRedisStore(client, ""))

	cookie := signIn(t, m, Claims{AccountID: 5, Role: account.RoleInspector})
	assert.True(t, mr.Exists("session:"+cookie.Value))

	var rec *httptest.ResponseRecorder
	handler := m.Load(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.NoError(t, m.End(r.Context(), w))
		w.WriteHeader(http.StatusNoContent)
	}))
	req := httptest.NewRequest(http.MethodPost, "/signout", nil)
	req.AddCookie(cookie)
	rec = httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusNoContent, rec.Code)
	assert.False(t, mr.Exists("session:"+cookie.Value))
	require.Len(t, rec.Result().Cookies(), 1)
	assert.Equal(t, -1, rec.Result().Cookies()[0].MaxAge)

	t.Run("session expires with ttl", func(t *testing.T) {
		cookie := signIn(t, m, Claims{AccountID: 6, Role: account.RoleInspector})
		mr.FastForward(2 * time.Hour)
		_, err := m.store.Get(context.Background(), cookie.Value)
		assert.ErrorIs(t, err, ErrSessionNotFound)
	})
}

func TestClaimsOwns(t *testing.T) {
	assert.True(t, Claims{AccountID: 1, Role: account.RoleManager, CompanyID: 2}.Owns(2))
	assert.False(t, Claims{AccountID: 1, Role: account.RoleManager, CompanyID: 2}.Owns(3))
	assert.False(t, Claims{AccountID: 1, Role: account.RoleInspector, CompanyID: 2}.Owns(2))
	assert.False(t, Claims{AccountID: 1, Role: account.RoleAdministrator}.Owns(0))
}
