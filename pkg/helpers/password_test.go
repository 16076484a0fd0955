package helpers

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

func TestPasswordHasher_HashAndCompare(t *testing.T) {
	h := NewPasswordHasher(bcrypt.MinCost, 2)
	ctx := context.Background()

	hash, err := h.Hash(ctx, "abcd1234")
	require.NoError(t, err)
	assert.NotEqual(t, "abcd1234", hash)

	ok, err := h.Compare(ctx, hash, "abcd1234")
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = h.Compare(ctx, hash, "wrong-password")
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestPasswordHasher_SaltsEachHash(t *testing.T) {
	h := NewPasswordHasher(bcrypt.MinCost, 1)

	a, err := h.Hash(context.Background(), "same-password")
	require.NoError(t, err)
	b, err := h.Hash(context.Background(), "same-password")
	require.NoError(t, err)
	assert.NotEqual(t, a, b)
}

func TestPasswordHasher_CancelledContext(t *testing.T) {
	h := NewPasswordHasher(bcrypt.MinCost, 1)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := h.Hash(ctx, "abcd1234")
	assert.ErrorIs(t, err, context.Canceled)
}

func TestHashPassword_UsesMinimumCost(t *testing.T) {
	hash, err := HashPassword("abcd1234")
	require.NoError(t, err)

	cost, err := bcrypt.Cost([]byte(hash))
	require.NoError(t, err)
	assert.GreaterOrEqual(t, cost, MinPasswordCost)
	assert.True(t, CompareHashAndPassword(hash, "abcd1234"))
}
