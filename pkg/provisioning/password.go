package provisioning

import (
	"crypto/rand"
	"fmt"
	"math/big"
	"net/mail"
	"strings"
	"unicode/utf8"
)

const (
	MinPasswordLength       = 8
	generatedPasswordLength = 12
	passwordAlphabet        = "ABCDEFGHJKLMNPQRSTUVWXYZabcdefghijkmnopqrstuvwxyz23456789"
)

// GeneratePassword returns a random password for invited accounts.
func GeneratePassword() (string, error) {
	max := big.NewInt(int64(len(passwordAlphabet)))
	var b strings.Builder
	b.Grow(generatedPasswordLength)
	for i := 0; i < generatedPasswordLength; i++ {
		n, err := rand.Int(rand.Reader, max)
		if err != nil {
			return "", fmt.Errorf("generate password: %w", err)
		}
		b.WriteByte(passwordAlphabet[n.Int64()])
	}
	return b.String(), nil
}

func ValidatePassword(password string) error {
	if utf8.RuneCountInString(password) < MinPasswordLength {
		return ErrInvalidPassword
	}
	return nil
}

func validateEmail(email string) error {
	addr, err := mail.ParseAddress(email)
	if err != nil || addr.Address != email {
		return ErrInvalidEmail
	}
	return nil
}
