// Package credential derives and checks salted password digests.
//
// A digest has the form base64(salt) + "." + base64(hash) where hash is the
// Argon2id key of the password under that salt. Parameters are fixed per
// Codec and are not encoded in the digest, so changing them invalidates
// every stored digest.
package credential

import (
	"crypto/rand"
	"crypto/subtle"
	"encoding/base64"
	"errors"
	"fmt"
	"strings"

	"golang.org/x/crypto/argon2"
)

const separator = "."

var ErrEmptyPassword = errors.New("password cannot be empty")

// Codec holds the Argon2id parameters used by Encrypt and Verify.
type Codec struct {
	memory      uint32
	iterations  uint32
	parallelism uint8
	saltLength  uint32
	keyLength   uint32
}

type Option func(*Codec)

// WithCost overrides the Argon2id time and memory (KiB) cost.
func WithCost(iterations, memory uint32) Option {
	return func(c *Codec) {
		c.iterations = iterations
		c.memory = memory
	}
}

func WithParallelism(p uint8) Option {
	return func(c *Codec) {
		c.parallelism = p
	}
}

func NewCodec(opts ...Option) *Codec {
	c := &Codec{
		memory:      64 * 1024,
		iterations:  3,
		parallelism: 2,
		saltLength:  16,
		keyLength:   32,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Encrypt returns a new digest for password using a fresh random salt.
func (c *Codec) Encrypt(password string) (string, error) {
	if password == "" {
		return "", ErrEmptyPassword
	}

	salt := make([]byte, c.saltLength)
	if _, err := rand.Read(salt); err != nil {
		return "", fmt.Errorf("generate salt: %w", err)
	}

	hash := c.key(password, salt)
	return base64.StdEncoding.EncodeToString(salt) + separator + base64.StdEncoding.EncodeToString(hash), nil
}

// Verify reports whether password matches digest. Malformed digests never
// match.
func (c *Codec) Verify(password, digest string) bool {
	rawSalt, rawHash, ok := strings.Cut(digest, separator)
	if !ok || rawSalt == "" || rawHash == "" {
		return false
	}
	salt, err := base64.StdEncoding.DecodeString(rawSalt)
	if err != nil {
		return false
	}
	want, err := base64.StdEncoding.DecodeString(rawHash)
	if err != nil || len(want) != int(c.keyLength) {
		return false
	}

	got := c.key(password, salt)
	return subtle.ConstantTimeCompare(got, want) == 1
}

func (c *Codec) key(password string, salt []byte) []byte {
	return argon2.IDKey([]byte(password), salt, c.iterations, c.memory, c.parallelism, c.keyLength)
}
