package crypto

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

func TestHashAndCheck(t *testing.T) {
	for _, pw := range []string{"pw123", "", "пароль", "a very long passphrase with spaces"} {
		hash, err := HashPasswordAsBcrypt(pw)
		require.NoError(t, err)
		assert.True(t, CheckPasswordHash(hash, pw), "password %q", pw)
		assert.False(t, CheckPasswordHash(hash, pw+"x"), "password %q", pw)
	}
}

func TestHashIsSalted(t *testing.T) {
	h1, err := HashPasswordAsBcrypt("pw123")
	require.NoError(t, err)
	h2, err := HashPasswordAsBcrypt("pw123")
	require.NoError(t, err)

	assert.NotEqual(t, h1, h2)
	cost, err := bcrypt.Cost([]byte(h1))
	require.NoError(t, err)
	assert.Equal(t, 10, cost)
}

func TestCheckPasswordHash_Malformed(t *testing.T) {
	assert.False(t, CheckPasswordHash("", "pw123"))
	assert.False(t, CheckPasswordHash("not-a-hash", "pw123"))
}
