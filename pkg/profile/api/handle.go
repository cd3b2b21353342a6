package api

import (
	"context"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/render"
	apperrors "github.com/tendant/inspection-idm/pkg/errors"
	"github.com/tendant/inspection-idm/pkg/profile"
	"github.com/tendant/inspection-idm/pkg/session"
)

type Resolver interface {
	Resolve(ctx context.Context, accountID int64) (profile.Profile, error)
}

type Handle struct {
	profiles Resolver
}

func NewHandle(profiles Resolver) Handle {
	return Handle{profiles: profiles}
}

// RegisterRoutes mounts the profile reads. Both require a session.
func (h Handle) RegisterRoutes(r chi.Router) {
	r.Group(func(r chi.Router) {
		r.Use(session.IsAuthorized)
		r.Get("/me", h.GetCurrentProfile)
		r.Get("/{accountId}", h.GetProfile)
	})
}

// GetCurrentProfile handles GET /me
func (h Handle) GetCurrentProfile(w http.ResponseWriter, r *http.Request) {
	claims, _ := session.ClaimsFromContext(r.Context())
	h.render(w, r, claims.AccountID)
}

// GetProfile handles GET /{accountId}. Any signed-in account may read any
// profile; company scoping applies only to the /companies routes.
func (h Handle) GetProfile(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(chi.URLParam(r, "accountId"), 10, 64)
	if err != nil {
		apperrors.Write(w, r, apperrors.InvalidInput("accountId", "must be a number"))
		return
	}
	h.render(w, r, id)
}

func (h Handle) render(w http.ResponseWriter, r *http.Request, accountID int64) {
	p, err := h.profiles.Resolve(r.Context(), accountID)
	if err != nil {
		apperrors.Write(w, r, err)
		return
	}
	render.JSON(w, r, p)
}
