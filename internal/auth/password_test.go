package auth

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

func TestHashPassword_PrimaryFormat(t *testing.T) {
	hash, err := HashPassword("correct horse")
	require.NoError(t, err)
	assert.True(t, IsPrimaryHash(hash))
	assert.Len(t, hash, saltLen*2+1+scryptKeyLen*2)

	ok, err := VerifyPassword(hash, "correct horse")
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = VerifyPassword(hash, "wrong horse")
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestHashPassword_Salted(t *testing.T) {
	a, err := HashPassword("same password")
	require.NoError(t, err)
	b, err := HashPassword("same password")
	require.NoError(t, err)
	assert.NotEqual(t, a, b)
}

func TestVerifyPassword_LegacyBcrypt(t *testing.T) {
	legacy, err := bcrypt.GenerateFromPassword([]byte("old-password"), bcrypt.MinCost)
	require.NoError(t, err)
	assert.False(t, IsPrimaryHash(string(legacy)))

	ok, err := VerifyPassword(string(legacy), "old-password")
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = VerifyPassword(string(legacy), "nope-nope")
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestVerifyPassword_Malformed(t *testing.T) {
	_, err := VerifyPassword("abcd:not-hex", "whatever")
	assert.Error(t, err)

	_, err = VerifyPassword("not-a-bcrypt-hash", "whatever")
	assert.Error(t, err)
}
