package utils

import (
	"encoding/json"
	"fmt"
	"net"
	"net/http"
	"strings"

	apperrors "github.com/tendant/inspection-idm/pkg/errors"
)

const maxBodyBytes = 1 << 20

var ErrInvalidBody = apperrors.InvalidInput("request body", "malformed JSON")

// DecodeJSON reads a JSON request body into dst.
func DecodeJSON(w http.ResponseWriter, r *http.Request, dst any) error {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	if err := dec.Decode(dst); err != nil {
		return apperrors.Wrap(fmt.Errorf("decode body: %w", err), ErrInvalidBody.Code, ErrInvalidBody.Message)
	}
	return nil
}

// ClientIP returns the host part of RemoteAddr. Forwarding headers are
// only reflected when the router trusts them and has mounted chi's RealIP.
func ClientIP(r *http.Request) string {
	addr := strings.TrimSpace(r.RemoteAddr)
	if host, _, err := net.SplitHostPort(addr); err == nil {
		return host
	}
	return addr
}

// Require returns an INVALID_INPUT error naming the first empty field.
func Require(fields ...[2]string) error {
	for _, f := range fields {
		if strings.TrimSpace(f[1]) == "" {
			return apperrors.InvalidInput(f[0], "is required")
		}
	}
	return nil
}

func StringPtr(s string) *string {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil
	}
	return &s
}
