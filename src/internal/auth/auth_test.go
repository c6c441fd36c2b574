package auth

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/clipvault/clipvault/src/internal/database/models"
)

func TestPasswordHashing(t *testing.T) {
	hash, err := HashPassword("secret")
	require.NoError(t, err)
	assert.NotEqual(t, "secret", hash)

	assert.True(t, CheckPasswordHash("secret", hash))
	assert.False(t, CheckPasswordHash("wrong", hash))
}

func TestTokenRoundTrip(t *testing.T) {
	service := NewService("test-secret", "clipvault", time.Hour)
	user := &models.User{
		ID:       uuid.New(),
		Username: "alice",
		Email:    "alice@example.com",
		IsAdmin:  true,
	}

	token, expiresAt, err := service.GenerateToken(user)
	require.NoError(t, err)
	assert.NotEmpty(t, token)
	assert.WithinDuration(t, time.Now().Add(time.Hour), expiresAt, 5*time.Second)

	claims, err := service.ValidateToken(token)
	require.NoError(t, err)
	assert.Equal(t, user.ID, claims.UserID)
	assert.Equal(t, "alice", claims.Username)
	assert.True(t, claims.IsAdmin)
	assert.Equal(t, "clipvault", claims.Issuer)
}

func TestValidateTokenRejectsForgery(t *testing.T) {
	service := NewService("test-secret", "clipvault", time.Hour)
	other := NewService("other-secret", "clipvault", time.Hour)
	user := &models.User{ID: uuid.New(), Username: "alice"}

	token, _, err := other.GenerateToken(user)
	require.NoError(t, err)

	_, err = service.ValidateToken(token)
	assert.Error(t, err)

	_, err = service.ValidateToken("not-a-token")
	assert.Error(t, err)
}

func TestExpiredToken(t *testing.T) {
	service := NewService("test-secret", "clipvault", time.Hour)
	user := &models.User{ID: uuid.New(), Username: "alice"}

	// Zero TTL falls back to the default, so force expiry with a negative one
	expired := &Service{secretKey: []byte("test-secret"), issuer: "clipvault", tokenTTL: -time.Minute}
	token, _, err := expired.GenerateToken(user)
	require.NoError(t, err)

	_, err = service.ValidateToken(token)
	assert.Error(t, err)
}
