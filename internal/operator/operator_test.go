package operator

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMemStore_CreateAndVerify(t *testing.T) {
	ctx := context.Background()
	s := NewMemStore()

	require.NoError(t, s.Create(ctx, "Shop@Example.com", "hunter2hunter2", "operator", "op_1"))

	// email is normalized
	op, err := s.Verify(ctx, "shop@example.com", "hunter2hunter2")
	require.NoError(t, err)
	assert.Equal(t, "op_1", op.ID)
	assert.Equal(t, "operator", op.Role)

	_, err = s.Verify(ctx, "shop@example.com", "wrong-password")
	assert.ErrorIs(t, err, ErrInvalidCredentials)

	_, err = s.Verify(ctx, "nobody@example.com", "hunter2hunter2")
	assert.ErrorIs(t, err, ErrInvalidCredentials)

	err = s.Create(ctx, "shop@example.com", "another-password", "operator", "op_2")
	assert.ErrorIs(t, err, ErrEmailExists)
}

func TestTokenMaker_RoundTrip(t *testing.T) {
	tm := NewTokenMaker("test-secret")

	tok, err := tm.New("op_1", "shop@example.com", "operator", time.Minute)
	require.NoError(t, err)

	claims, err := tm.Parse(tok)
	require.NoError(t, err)
	assert.Equal(t, "op_1", claims.OperatorID)
	assert.Equal(t, "shop@example.com", claims.Email)
	assert.Equal(t, "operator", claims.Role)
}

func TestTokenMaker_RejectsBadTokens(t *testing.T) {
	tm := NewTokenMaker("test-secret")

	_, err := tm.Parse("not-a-token")
	assert.Error(t, err)

	other := NewTokenMaker("different-secret")
	tok, err := other.New("op_1", "shop@example.com", "operator", time.Minute)
	require.NoError(t, err)
	_, err = tm.Parse(tok)
	assert.Error(t, err)

	expired, err := tm.New("op_1", "shop@example.com", "operator", -time.Minute)
	require.NoError(t, err)
	_, err = tm.Parse(expired)
	assert.Error(t, err)
}
