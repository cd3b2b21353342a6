package errors

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSentinelMatching(t *testing.T) {
	sentinel := Conflict("account already exists")

	t.Run("wrapped sentinel", func(t *testing.T) {
		err := fmt.Errorf("signup: %w", sentinel)
		assert.True(t, Is(err, sentinel))
		assert.True(t, IsCode(err, ErrCodeConflict))
	})

	t.Run("copy with detail", func(t *testing.T) {
		cp := sentinel.WithDetail("email", "a@x.com")
		assert.True(t, Is(cp, sentinel))
		assert.Nil(t, sentinel.Details)
	})

	t.Run("different message", func(t *testing.T) {
		assert.False(t, Is(Conflict("company already registered"), sentinel))
	})

	t.Run("plain error", func(t *testing.T) {
		assert.Equal(t, ErrCodeInternal, GetCode(fmt.Errorf("boom")))
	})
}

func TestMapErrorCodeToHTTPStatus(t *testing.T) {
	cases := map[ErrorCode]int{
		ErrCodeInvalidInput:      http.StatusBadRequest,
		ErrCodeTooManyAttempts:   http.StatusBadRequest,
		ErrCodeUnauthorized:      http.StatusUnauthorized,
		ErrCodeForbidden:         http.StatusForbidden,
		ErrCodeNotFound:          http.StatusNotFound,
		ErrCodeConflict:          http.StatusConflict,
		ErrCodeRateLimitExceeded: http.StatusTooManyRequests,
		ErrCodeDeliveryFailed:    http.StatusInternalServerError,
		ErrCodeIntegrity:         http.StatusInternalServerError,
		ErrorCode("UNKNOWN"):     http.StatusInternalServerError,
	}
	for code, status := range cases {
		assert.Equal(t, status, MapErrorCodeToHTTPStatus(code), code)
	}
}

func decode(t *testing.T, rec *httptest.ResponseRecorder) ErrorResponse {
	t.Helper()
	var body ErrorResponse
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&body))
	return body
}

func TestWrite(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/x", nil)

	t.Run("structured error keeps message", func(t *testing.T) {
		rec := httptest.NewRecorder()
		Write(rec, req, fmt.Errorf("wrapped: %w", Conflict("company already registered")))
		assert.Equal(t, http.StatusConflict, rec.Code)
		assert.Equal(t, "company already registered", decode(t, rec).Error)
	})

	t.Run("unknown error is generic", func(t *testing.T) {
		rec := httptest.NewRecorder()
		Write(rec, req, fmt.Errorf("connection refused to 10.0.0.3"))
		assert.Equal(t, http.StatusInternalServerError, rec.Code)
		assert.Equal(t, "internal server error", decode(t, rec).Error)
	})

	t.Run("integrity error is generic", func(t *testing.T) {
		rec := httptest.NewRecorder()
		Write(rec, req, New(ErrCodeIntegrity, "profile row missing for account 7"))
		assert.Equal(t, http.StatusInternalServerError, rec.Code)
		assert.Equal(t, "internal server error", decode(t, rec).Error)
	})

	t.Run("retry after header", func(t *testing.T) {
		rec := httptest.NewRecorder()
		Write(rec, req, New(ErrCodeTooManyAttempts, "slow down").WithDetail("retry_after", 900))
		assert.Equal(t, http.StatusBadRequest, rec.Code)
		assert.Equal(t, "900", rec.Header().Get("Retry-After"))
	})
}
