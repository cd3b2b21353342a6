package credential

import (
	"encoding/base64"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestCodec() *Codec {
	return NewCodec(WithCost(1, 1024), WithParallelism(1))
}

func TestEncryptVerify(t *testing.T) {
	codec := newTestCodec()

	passwords := []string{"Password1234", "correct horse battery staple", "ü-ñ-ß-密码", " "}
	for _, p := range passwords {
		t.Run(p, func(t *testing.T) {
			digest, err := codec.Encrypt(p)
			require.NoError(t, err)
			assert.True(t, codec.Verify(p, digest))
			assert.False(t, codec.Verify(p+"x", digest))
		})
	}
}

func TestEncryptUsesFreshSalt(t *testing.T) {
	codec := newTestCodec()

	d1, err := codec.Encrypt("Password1234")
	require.NoError(t, err)
	d2, err := codec.Encrypt("Password1234")
	require.NoError(t, err)

	assert.NotEqual(t, d1, d2)
	assert.True(t, codec.Verify("Password1234", d1))
	assert.True(t, codec.Verify("Password1234", d2))
}

func TestDigestFormat(t *testing.T) {
	codec := newTestCodec()

	digest, err := codec.Encrypt("Password1234")
	require.NoError(t, err)

	parts := strings.Split(digest, separator)
	require.Len(t, parts, 2)
	salt, err := base64.StdEncoding.DecodeString(parts[0])
	require.NoError(t, err)
	assert.Len(t, salt, 16)
	hash, err := base64.StdEncoding.DecodeString(parts[1])
	require.NoError(t, err)
	assert.Len(t, hash, 32)
}

func TestEncryptEmptyPassword(t *testing.T) {
	_, err := newTestCodec().Encrypt("")
	assert.ErrorIs(t, err, ErrEmptyPassword)
}

func TestVerifyMalformedDigest(t *testing.T) {
	codec := newTestCodec()
	digest, err := codec.Encrypt("Password1234")
	require.NoError(t, err)
	salt, hash, _ := strings.Cut(digest, separator)

	cases := map[string]string{
		"empty":             "",
		"missing separator": salt + hash,
		"empty salt":        separator + hash,
		"empty hash":        salt + separator,
		"bad salt encoding": "!!!" + separator + hash,
		"bad hash encoding": salt + separator + "!!!",
		"truncated hash":    salt + separator + hash[:8],
	}
	for name, d := range cases {
		t.Run(name, func(t *testing.T) {
			assert.False(t, codec.Verify("Password1234", d))
		})
	}
}

func TestVerifyWithDifferentParameters(t *testing.T) {
	digest, err := newTestCodec().Encrypt("Password1234")
	require.NoError(t, err)

	other := NewCodec(WithCost(2, 1024), WithParallelism(1))
	assert.False(t, other.Verify("Password1234", digest))
}
