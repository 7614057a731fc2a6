package auth

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"enotice/internal/config"
)

func TestTokenManager_RoundTrip(t *testing.T) {
	tm := testTokenManager()
	user := &User{ID: primitive.NewObjectID(), Email: "a@x.com"}

	token, err := tm.Generate(user)
	require.NoError(t, err)

	claims, err := tm.Parse(token)
	require.NoError(t, err)
	assert.Equal(t, user.ID.Hex(), claims.UserID)
	assert.Equal(t, "a@x.com", claims.Email)
	assert.Equal(t, RoleMember, claims.Role)
}

func TestTokenManager_RejectsForeignSecret(t *testing.T) {
	tm := testTokenManager()
	other := NewTokenManager(&config.Config{
		Auth: config.AuthConfig{JWTSecret: "another-secret-9876543210", TokenTTL: time.Hour},
	})

	token, err := tm.Generate(&User{ID: primitive.NewObjectID(), Email: "a@x.com"})
	require.NoError(t, err)

	_, err = other.Parse(token)
	assert.Error(t, err)
}

func TestTokenManager_RejectsExpiredToken(t *testing.T) {
	expired := NewTokenManager(&config.Config{
		Auth: config.AuthConfig{JWTSecret: "unit-test-secret-0123456789", TokenTTL: -time.Minute},
	})

	token, err := expired.Generate(&User{ID: primitive.NewObjectID(), Email: "a@x.com"})
	require.NoError(t, err)

	_, err = testTokenManager().Parse(token)
	assert.Error(t, err)
}

func TestPasswordHashing(t *testing.T) {
	hash, err := HashPassword("correcthorse")
	require.NoError(t, err)
	assert.True(t, CheckPasswordHash("correcthorse", hash))
	assert.False(t, CheckPasswordHash("wrong", hash))
}
