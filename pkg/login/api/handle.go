package api

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/render"
	apperrors "github.com/tendant/inspection-idm/pkg/errors"
	"github.com/tendant/inspection-idm/pkg/login"
	"github.com/tendant/inspection-idm/pkg/session"
	"github.com/tendant/inspection-idm/pkg/utils"
)

type Handle struct {
	service  *login.LoginService
	sessions *session.Manager
	limiter  func(http.Handler) http.Handler
}

type Option func(*Handle)

func WithLimiter(mw func(http.Handler) http.Handler) Option {
	return func(h *Handle) {
		h.limiter = mw
	}
}

func NewHandle(service *login.LoginService, sessions *session.Manager, opts ...Option) Handle {
	h := Handle{
		service:  service,
		sessions: sessions,
		limiter:  func(next http.Handler) http.Handler { return next },
	}
	for _, opt := range opts {
		opt(&h)
	}
	return h
}

func (h Handle) RegisterRoutes(r chi.Router) {
	r.With(h.limiter).Post("/signin", h.SignIn)
	r.With(session.IsAuthorized).Post("/signout", h.SignOut)
	r.With(session.IsAuthorized).Post("/password/change", h.ChangePassword)
}

// SignIn handles POST /signin
func (h Handle) SignIn(w http.ResponseWriter, r *http.Request) {
	var req SignInRequest
	if err := utils.DecodeJSON(w, r, &req); err != nil {
		apperrors.Write(w, r, err)
		return
	}
	if err := utils.Require([2]string{"email", req.Email}, [2]string{"password", req.Password}); err != nil {
		apperrors.Write(w, r, err)
		return
	}

	res, err := h.service.Login(r.Context(), req.Email, req.Password)
	if err != nil {
		apperrors.Write(w, r, err)
		return
	}
	if err := h.sessions.Start(r.Context(), w, res.Claims); err != nil {
		slog.Error("Failed to start session", "account_id", res.Claims.AccountID, "error", err)
		apperrors.Write(w, r, err)
		return
	}

	render.Status(r, http.StatusOK)
	render.JSON(w, r, res.Profile)
}

// SignOut handles POST /signout
func (h Handle) SignOut(w http.ResponseWriter, r *http.Request) {
	if err := h.sessions.End(r.Context(), w); err != nil {
		// The cookie is already cleared; a stale entry expires on its own.
		slog.Warn("Failed to destroy session", "error", err)
	}
	w.WriteHeader(http.StatusNoContent)
}

// ChangePassword handles POST /password/change
func (h Handle) ChangePassword(w http.ResponseWriter, r *http.Request) {
	claims, _ := session.ClaimsFromContext(r.Context())

	var req ChangePasswordRequest
	if err := utils.DecodeJSON(w, r, &req); err != nil {
		apperrors.Write(w, r, err)
		return
	}

	if err := h.service.ChangePassword(r.Context(), claims.AccountID, req.CurrentPassword, req.NewPassword); err != nil {
		apperrors.Write(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
