package helpers

import (
	"encoding/hex"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGenerateResetToken(t *testing.T) {
	plain, hash, err := GenerateResetToken()
	require.NoError(t, err)

	raw, err := hex.DecodeString(plain)
	require.NoError(t, err)
	assert.Len(t, raw, ResetTokenBytes)
	assert.Equal(t, HashResetToken(plain), hash)
	assert.NotEqual(t, plain, hash)

	other, _, err := GenerateResetToken()
	require.NoError(t, err)
	assert.NotEqual(t, plain, other)
}

func TestHashResetToken_Deterministic(t *testing.T) {
	assert.Equal(t, HashResetToken("abc"), HashResetToken("abc"))
	assert.NotEqual(t, HashResetToken("abc"), HashResetToken("abd"))
	assert.Len(t, HashResetToken("abc"), 64)
}
