// Package idm assembles the identity services from a Config and a set of
// storage backends.
package idm

import (
	"context"
	"fmt"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/tendant/inspection-idm/pkg/account"
	"github.com/tendant/inspection-idm/pkg/config"
	"github.com/tendant/inspection-idm/pkg/kvstore"
	"github.com/tendant/inspection-idm/pkg/login"
	loginapi "github.com/tendant/inspection-idm/pkg/login/api"
	"github.com/tendant/inspection-idm/pkg/memstore"
	"github.com/tendant/inspection-idm/pkg/notification"
	"github.com/tendant/inspection-idm/pkg/profile"
	profileapi "github.com/tendant/inspection-idm/pkg/profile/api"
	"github.com/tendant/inspection-idm/pkg/provisioning"
	"github.com/tendant/inspection-idm/pkg/ratelimit"
	"github.com/tendant/inspection-idm/pkg/router"
	"github.com/tendant/inspection-idm/pkg/session"
	"github.com/tendant/inspection-idm/pkg/signup"
	signupapi "github.com/tendant/inspection-idm/pkg/signup/api"
	"github.com/tendant/inspection-idm/pkg/verification"
	verificationapi "github.com/tendant/inspection-idm/pkg/verification/api"
)

// Backends are the stores the services run on.
type Backends struct {
	Accounts   account.Repository
	Profiles   profile.Store
	UnitOfWork provisioning.UnitOfWork
	KV         kvstore.Store
	Deliverer  notification.Deliverer
}

// PostgresBackends keeps accounts and profiles in pool. kv is usually a
// *kvstore.RedisStore.
func PostgresBackends(pool *pgxpool.Pool, kv kvstore.Store, deliverer notification.Deliverer) Backends {
	return Backends{
		Accounts:   account.NewPostgresRepository(pool),
		Profiles:   profile.NewPostgresStore(pool),
		UnitOfWork: provisioning.NewPostgresUnitOfWork(pool),
		KV:         kv,
		Deliverer:  deliverer,
	}
}

// MemoryBackends keeps everything in process. Data is lost on restart.
func MemoryBackends(store *memstore.Store, kv kvstore.Store, deliverer notification.Deliverer) Backends {
	return Backends{
		Accounts:   store,
		Profiles:   store,
		UnitOfWork: store,
		KV:         kv,
		Deliverer:  deliverer,
	}
}

type IDM struct {
	Sessions     *session.Manager
	Login        *login.LoginService
	Signup       *signup.SignupService
	Verification *verification.Service
	Provisioning *provisioning.Service
	Profiles     *profile.Resolver
	Limiter      *ratelimit.RateLimiter

	prefix     string
	trustProxy bool
	limit      func(http.Handler) http.Handler
}

func New(cfg config.Config, b Backends) (*IDM, error) {
	mailer, err := notification.NewMailer(b.Deliverer, cfg.Email.From, cfg.Email.LoginURL)
	if err != nil {
		return nil, fmt.Errorf("build mailer: %w", err)
	}
	codec := cfg.Password.NewCodec()
	resolver := profile.NewResolver(b.Profiles)

	verifier := verification.NewService(b.Accounts, b.KV, mailer, codec,
		cfg.Verification.ToVerificationConfig(),
		verification.WithPasswordValidator(provisioning.ValidatePassword),
	)
	prov := provisioning.NewService(b.UnitOfWork, codec, mailer)

	i := &IDM{
		Sessions:     session.NewManager(session.NewStore(b.KV, cfg.Session.TTLDuration()), cfg.Session.ToCookieConfig()),
		Login:        login.NewLoginService(b.Accounts, codec, resolver, login.WithPasswordValidator(provisioning.ValidatePassword)),
		Signup:       signup.NewSignupService(prov, signup.WithConfirmer(verifier), signup.WithProfileResolver(resolver)),
		Verification: verifier,
		Provisioning: prov,
		Profiles:     resolver,
		prefix:       cfg.APIPrefix,
		trustProxy:   cfg.TrustProxyHeaders,
		limit:        func(next http.Handler) http.Handler { return next },
	}
	if cfg.RateLimit.Enabled {
		i.Limiter = ratelimit.NewRateLimiter(cfg.RateLimit.Burst, cfg.RateLimit.PerSecond(), cfg.RateLimit.BucketTTLDuration())
		i.limit = ratelimit.Middleware(i.Limiter, ratelimit.ByClientIP)
	}
	return i, nil
}

// Start runs background cleanup until ctx is done.
func (i *IDM) Start(ctx context.Context) {
	if i.Limiter != nil {
		i.Limiter.StartCleanup(ctx)
	}
}

// Routes mounts the API on r.
func (i *IDM) Routes(r chi.Router) {
	router.SetupRoutes(r, router.Config{
		Prefix:             i.prefix,
		TrustProxyHeaders:  i.trustProxy,
		Sessions:           i.Sessions,
		LoginHandle:        loginapi.NewHandle(i.Login, i.Sessions, loginapi.WithLimiter(i.limit)),
		SignupHandle:       signupapi.NewHandle(i.Signup, signupapi.WithLimiter(i.limit)),
		VerificationHandle: verificationapi.NewHandle(i.Verification, verificationapi.WithLimiter(i.limit)),
		ProfileHandle:      profileapi.NewHandle(i.Profiles),
	})
}
