package auth

import (
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTokenManager_RoundTrip(t *testing.T) {
	m := NewTokenManager("secret", time.Hour)
	id := uuid.New()

	tok, err := m.Generate(id, "a@ieum.app")
	require.NoError(t, err)

	claims, err := m.Parse(tok)
	require.NoError(t, err)
	got, err := claims.UserID()
	require.NoError(t, err)
	assert.Equal(t, id, got)
	assert.Equal(t, "a@ieum.app", claims.Email)
	assert.NotNil(t, claims.IssuedAt)
	assert.WithinDuration(t, time.Now().Add(time.Hour), claims.ExpiresAt.Time, 5*time.Second)
}

func TestTokenManager_Rejects(t *testing.T) {
	m := NewTokenManager("secret", time.Hour)
	id := uuid.New()

	t.Run("wrong secret", func(t *testing.T) {
		tok, _ := NewTokenManager("other", time.Hour).Generate(id, "x@ieum.app")
		_, err := m.Parse(tok)
		assert.ErrorIs(t, err, ErrInvalidToken)
	})

	t.Run("expired", func(t *testing.T) {
		old := NewTokenManager("secret", time.Minute)
		old.now = func() time.Time { return time.Now().Add(-2 * time.Hour) }
		tok, _ := old.Generate(id, "x@ieum.app")
		_, err := m.Parse(tok)
		assert.ErrorIs(t, err, ErrInvalidToken)
	})

	t.Run("garbage", func(t *testing.T) {
		_, err := m.Parse("not-a-jwt")
		assert.ErrorIs(t, err, ErrInvalidToken)
	})

	t.Run("subject is not a uuid", func(t *testing.T) {
		tok := jwt.NewWithClaims(jwt.SigningMethodHS256, Claims{RegisteredClaims: jwt.RegisteredClaims{
			Subject:   "42",
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
		}})
		s, _ := tok.SignedString([]byte("secret"))
		_, err := m.Parse(s)
		assert.ErrorIs(t, err, ErrInvalidToken)
	})

	t.Run("no expiry", func(t *testing.T) {
		tok := jwt.NewWithClaims(jwt.SigningMethodHS256, Claims{RegisteredClaims: jwt.RegisteredClaims{Subject: id.String()}})
		s, _ := tok.SignedString([]byte("secret"))
		_, err := m.Parse(s)
		assert.ErrorIs(t, err, ErrInvalidToken)
	})
}

func TestGoogleVerifier_NotConfigured(t *testing.T) {
	_, err := NewGoogleVerifier("", nil).Verify(t.Context(), "token")
	assert.ErrorIs(t, err, ErrGoogleNotConfigured)
}
