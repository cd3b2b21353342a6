package verification

import (
	"crypto/rand"
	"crypto/subtle"
	"encoding/base64"
	"fmt"
)

const tokenBytes = 32

func generateToken() (string, error) {
	b := make([]byte, tokenBytes)
	if _, err := rand.Read(b); err != nil {
		return "", fmt.Errorf("generate token: %w", err)
	}
	return base64.RawURLEncoding.EncodeToString(b), nil
}

func equal(a, b string) bool {
	return subtle.ConstantTimeCompare([]byte(a), []byte(b)) == 1
}

// Key namespaces in the ephemeral store.
func confirmationKey(email string) string { return "email_verification:" + email }
func recoveryKey(token string) string     { return "recovery:" + token }
func attemptsKey(addr string) string      { return "attempts_to_reset_password:" + addr }
