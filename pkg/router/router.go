// Package router mounts the HTTP API.
package router

import (
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	loginapi "github.com/tendant/inspection-idm/pkg/login/api"
	"github.com/tendant/inspection-idm/pkg/metrics"
	profileapi "github.com/tendant/inspection-idm/pkg/profile/api"
	"github.com/tendant/inspection-idm/pkg/session"
	signupapi "github.com/tendant/inspection-idm/pkg/signup/api"
	verificationapi "github.com/tendant/inspection-idm/pkg/verification/api"
)

// Config holds the handlers mounted by SetupRoutes.
type Config struct {
	// Prefix is where the API is mounted, for example "/api/v1".
	Prefix string
	// TrustProxyHeaders takes the client address from X-Forwarded-For or
	// X-Real-IP. Enable it only behind a proxy that overwrites them.
	TrustProxyHeaders bool

	Sessions           *session.Manager
	LoginHandle        loginapi.Handle
	SignupHandle       signupapi.Handle
	VerificationHandle verificationapi.Handle
	ProfileHandle      profileapi.Handle
}

// SetupRoutes mounts the API under cfg.Prefix:
//
//	/auth                        sign-up, sign-in, email and password flows
//	/profiles                    profile reads
//	/companies/{companyId}       invites, restricted to the owning company
func SetupRoutes(router chi.Router, cfg Config) {
	router.Route(cfg.Prefix, func(r chi.Router) {
		r.Use(middleware.RequestID)
		if cfg.TrustProxyHeaders {
			r.Use(middleware.RealIP)
		}
		r.Use(metrics.Instrument)
		r.Use(cfg.Sessions.Load)

		r.Route("/auth", func(r chi.Router) {
			cfg.SignupHandle.RegisterRoutes(r)
			cfg.LoginHandle.RegisterRoutes(r)
			cfg.VerificationHandle.RegisterRoutes(r)
		})
		r.Route("/profiles", cfg.ProfileHandle.RegisterRoutes)
		r.Route("/companies/{"+signupapi.CompanyIDParam+"}", cfg.SignupHandle.RegisterCompanyRoutes)
	})
}
