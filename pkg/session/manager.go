package session

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	apperrors "github.com/tendant/inspection-idm/pkg/errors"
)

// Manager ties the session store to the session cookie and provides the
// route guards.
type Manager struct {
	store  *Store
	cookie CookieConfig
}

func NewManager(store *Store, cookie CookieConfig) *Manager {
	if cookie.Name == "" {
		cookie.Name = "sid"
	}
	if cookie.Path == "" {
		cookie.Path = "/"
	}
	return &Manager{store: store, cookie: cookie}
}

// Start persists claims in a new session and sets the session cookie.
func (m *Manager) Start(ctx context.Context, w http.ResponseWriter, c Claims) error {
	id, err := m.store.Create(ctx, c)
	if err != nil {
		return err
	}
	m.cookie.set(w, id, m.store.TTL())
	return nil
}

// End destroys the request's session, if any, and clears the cookie.
func (m *Manager) End(ctx context.Context, w http.ResponseWriter) error {
	m.cookie.clear(w)
	id, ok := idFromContext(ctx)
	if !ok {
		return nil
	}
	return m.store.Destroy(ctx, id)
}

// Load resolves the session cookie into claims on the request context.
// Requests without a valid session continue anonymously.
func (m *Manager) Load(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		cookie, err := r.Cookie(m.cookie.Name)
		if err != nil || cookie.Value == "" {
			next.ServeHTTP(w, r)
			return
		}

		claims, err := m.store.Get(r.Context(), cookie.Value)
		if errors.Is(err, ErrSessionNotFound) {
			m.cookie.clear(w)
			next.ServeHTTP(w, r)
			return
		}
		if err != nil {
			apperrors.Write(w, r, err)
			return
		}

		ctx := contextWithID(r.Context(), cookie.Value)
		ctx = ContextWithClaims(ctx, claims)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// IsAuthorized rejects requests without session claims.
func IsAuthorized(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if _, ok := ClaimsFromContext(r.Context()); !ok {
			apperrors.Write(w, r, ErrUnauthorized)
			return
		}
		next.ServeHTTP(w, r)
	})
}

// OwnsCompany admits administrators and managers whose company matches the
// route parameter named param.
func OwnsCompany(param string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			claims, _ := ClaimsFromContext(r.Context())
			if !claims.Role.CompanyScoped() {
				slog.Warn("Company route denied for role", "account_id", claims.AccountID, "role", claims.Role)
				apperrors.Write(w, r, ErrNotCompanyAccount)
				return
			}

			companyID, err := strconv.ParseInt(chi.URLParam(r, param), 10, 64)
			if err != nil || !claims.Owns(companyID) {
				slog.Warn("Company route denied", "account_id", claims.AccountID, "cid", claims.CompanyID, "param", chi.URLParam(r, param))
				apperrors.Write(w, r, ErrCompanyMismatch)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}
