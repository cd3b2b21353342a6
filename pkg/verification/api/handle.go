package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/render"
	apperrors "github.com/tendant/inspection-idm/pkg/errors"
	"github.com/tendant/inspection-idm/pkg/utils"
	"github.com/tendant/inspection-idm/pkg/verification"
)

const (
	resendAccepted = "If the address belongs to an unverified account, a new confirmation email has been sent."
	resetAccepted  = "If the address belongs to a verified account, a password reset email has been sent."
)

type Handle struct {
	service *verification.Service
	limiter func(http.Handler) http.Handler
}

type Option func(*Handle)

// WithLimiter guards the endpoints that send email.
func WithLimiter(mw func(http.Handler) http.Handler) Option {
	return func(h *Handle) {
		h.limiter = mw
	}
}

func NewHandle(service *verification.Service, opts ...Option) Handle {
	h := Handle{
		service: service,
		limiter: func(next http.Handler) http.Handler { return next },
	}
	for _, opt := range opts {
		opt(&h)
	}
	return h
}

func (h Handle) RegisterRoutes(r chi.Router) {
	r.Post("/email/verify", h.VerifyEmail)
	r.With(h.limiter).Post("/email/resend", h.ResendConfirmation)
	r.With(h.limiter).Post("/password/forgot", h.ForgotPassword)
	r.Post("/password/reset", h.ResetPassword)
}

// VerifyEmail handles POST /email/verify
func (h Handle) VerifyEmail(w http.ResponseWriter, r *http.Request) {
	var req VerifyEmailRequest
	if err := utils.DecodeJSON(w, r, &req); err != nil {
		apperrors.Write(w, r, err)
		return
	}
	if err := utils.Require([2]string{"email", req.Email}, [2]string{"code", req.Code}); err != nil {
		apperrors.Write(w, r, err)
		return
	}

	if err := h.service.VerifyEmail(r.Context(), req.Email, req.Code); err != nil {
		apperrors.Write(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// ResendConfirmation handles POST /email/resend
func (h Handle) ResendConfirmation(w http.ResponseWriter, r *http.Request) {
	var req ResendRequest
	if err := utils.DecodeJSON(w, r, &req); err != nil {
		apperrors.Write(w, r, err)
		return
	}
	if err := utils.Require([2]string{"email", req.Email}); err != nil {
		apperrors.Write(w, r, err)
		return
	}

	if err := h.service.ResendEmailConfirmation(r.Context(), req.Email); err != nil {
		apperrors.Write(w, r, err)
		return
	}
	render.Status(r, http.StatusAccepted)
	render.JSON(w, r, MessageResponse{Message: resendAccepted})
}

// ForgotPassword handles POST /password/forgot
func (h Handle) ForgotPassword(w http.ResponseWriter, r *http.Request) {
	var req ForgotPasswordRequest
	if err := utils.DecodeJSON(w, r, &req); err != nil {
		apperrors.Write(w, r, err)
		return
	}
	if err := utils.Require([2]string{"email", req.Email}); err != nil {
		apperrors.Write(w, r, err)
		return
	}

	if err := h.service.RequestPasswordReset(r.Context(), req.Email); err != nil {
		apperrors.Write(w, r, err)
		return
	}
	render.Status(r, http.StatusAccepted)
	render.JSON(w, r, MessageResponse{Message: resetAccepted})
}

// ResetPassword handles POST /password/reset
func (h Handle) ResetPassword(w http.ResponseWriter, r *http.Request) {
	var req ResetPasswordRequest
	if err := utils.DecodeJSON(w, r, &req); err != nil {
		apperrors.Write(w, r, err)
		return
	}

	err := h.service.RedeemPasswordReset(r.Context(), utils.ClientIP(r), req.Token, req.NewPassword)
	if err != nil {
		apperrors.Write(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
