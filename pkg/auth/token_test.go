package auth

import (
	"encoding/hex"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGenerateVerificationToken(t *testing.T) {
	token, err := GenerateVerificationToken()

	require.NoError(t, err)
	assert.Len(t, token, VerificationTokenBytes*2)

	_, err = hex.DecodeString(token)
	assert.NoError(t, err, "token must be hex encoded")
}

func TestGenerateVerificationToken_Unique(t *testing.T) {
	seen := make(map[string]bool)
	for i := 0; i < 100; i++ {
		token, err := GenerateVerificationToken()
		require.NoError(t, err)
		assert.False(t, seen[token])
		seen[token] = true
	}
}

func TestHashToken(t *testing.T) {
	digest := HashToken("sometoken")

	assert.Len(t, digest, 64) // sha256 hex
	assert.Equal(t, digest, HashToken("sometoken"))
	assert.NotEqual(t, digest, HashToken("othertoken"))
	assert.NotEqual(t, "sometoken", digest)
}
