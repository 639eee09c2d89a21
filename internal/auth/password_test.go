package auth

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestHashPassword_Roundtrip(t *testing.T) {
	hash, err := HashPassword("secret1")
	require.NoError(t, err)
	require.NotEqual(t, "secret1", hash)

	require.True(t, CheckPasswordHash(hash, "secret1"))
	require.False(t, CheckPasswordHash(hash, "secret2"))
	require.False(t, CheckPasswordHash(hash, ""))
}

func TestHashPassword_SaltedHashesDiffer(t *testing.T) {
	first, err := HashPassword("secret1")
	require.NoError(t, err)
	second, err := HashPassword("secret1")
	require.NoError(t, err)

	require.NotEqual(t, first, second)
	require.True(t, CheckPasswordHash(first, "secret1"))
	require.True(t, CheckPasswordHash(second, "secret1"))
}

func TestCheckPasswordHash_GarbageHash(t *testing.T) {
	require.False(t, CheckPasswordHash("not-a-bcrypt-hash", "secret1"))
}
