package helpers

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

func TestHashPasswordRoundTrip(t *testing.T) {
	hash, err := HashPasswordCost("correct horse battery staple", bcrypt.MinCost)
	require.NoError(t, err)
	assert.True(t, CheckPassword(hash, "correct horse battery staple"))
	assert.False(t, CheckPassword(hash, "wrong password"))
}

func TestHashPasswordFreshSaltPerCall(t *testing.T) {
	h1, err := HashPasswordCost("samepassword", bcrypt.MinCost)
	require.NoError(t, err)
	h2, err := HashPasswordCost("samepassword", bcrypt.MinCost)
	require.NoError(t, err)

	assert.NotEqual(t, h1, h2, "two hashes of the same input must differ (fresh salt)")
	assert.True(t, CheckPassword(h1, "samepassword"))
	assert.True(t, CheckPassword(h2, "samepassword"))
}

func TestCheckPasswordMalformedDigest(t *testing.T) {
	assert.False(t, CheckPassword("not-a-bcrypt-digest", "whatever"))
	assert.False(t, CheckPassword("", "whatever"))
}
