package ratelimit

import (
	"log/slog"
	"net/http"
	"time"

	apperrors "github.com/tendant/inspection-idm/pkg/errors"
	"github.com/tendant/inspection-idm/pkg/utils"
)

var ErrRateLimited = apperrors.New(apperrors.ErrCodeRateLimitExceeded, "too many requests, please try again later")

// KeyFunc picks the bucket a request is charged to.
type KeyFunc func(r *http.Request) string

// ByClientIP charges requests to the client address.
func ByClientIP(r *http.Request) string {
	return utils.ClientIP(r)
}

// Middleware answers 429 with a Retry-After header once the key's bucket is
// empty.
func Middleware(rl *RateLimiter, key KeyFunc) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			k := key(r)
			ok, wait := rl.Allow(k)
			if !ok {
				slog.Warn("Rate limit exceeded", "key", k, "path", r.URL.Path)
				retry := int((wait + time.Second - 1) / time.Second)
				apperrors.Write(w, r, ErrRateLimited.WithDetail("retry_after", retry))
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}
