package auth

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testSecret = "test-secret"

func TestVerifier_RoundTrip(t *testing.T) {
	token, err := IssueToken(testSecret, "65f1c2a9e4b0a1b2c3d4e5f6", "PARKER", time.Hour)
	require.NoError(t, err)

	id, err := NewVerifier(testSecret).Verify(token)
	require.NoError(t, err)
	assert.Equal(t, "65f1c2a9e4b0a1b2c3d4e5f6", id.UserID)
	assert.Equal(t, "PARKER", id.Role)
}

func TestVerifier_Rejects(t *testing.T) {
	expired, err := IssueToken(testSecret, "u1", "PARKER", -time.Minute)
	require.NoError(t, err)

	otherKey, err := IssueToken("other-secret", "u1", "PARKER", time.Hour)
	require.NoError(t, err)

	noExp, err := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{"sub": "u1"}).SignedString([]byte(testSecret))
	require.NoError(t, err)

	tests := []struct {
		name  string
		token string
		want  error
	}{
		{"empty", "", ErrMissingToken},
		{"garbage", "not.a.jwt", ErrInvalidToken},
		{"expired", expired, ErrInvalidToken},
		{"wrong key", otherKey, ErrInvalidToken},
		{"no expiry", noExp, ErrInvalidToken},
	}

	v := NewVerifier(testSecret)
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := v.Verify(tt.token)
			assert.True(t, errors.Is(err, tt.want), "got %v", err)
		})
	}
}

func TestVerifier_DisabledWithoutSecret(t *testing.T) {
	token, err := IssueToken(testSecret, "u1", "PARKER", time.Hour)
	require.NoError(t, err)

	v := NewVerifier("")
	assert.False(t, v.Enabled())
	_, err = v.Verify(token)
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestBearerToken(t *testing.T) {
	assert.Equal(t, "abc", BearerToken("Bearer abc"))
	assert.Equal(t, "abc", BearerToken("bearer abc"))
	assert.Equal(t, "", BearerToken("Basic abc"))
	assert.Equal(t, "", BearerToken(""))
}

func TestIdentityContext(t *testing.T) {
	_, ok := FromContext(context.Background())
	assert.False(t, ok)

	ctx := WithIdentity(context.Background(), Identity{UserID: "u1", Role: "ADMIN"})
	id, ok := FromContext(ctx)
	require.True(t, ok)
	assert.Equal(t, "u1", id.UserID)
}
