package auth

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestJWTIssueAndVerify(t *testing.T) {
	issuer := NewJWTIssuer("test-secret")
	verifier := NewJWTVerifier("test-secret")

	t.Run("round trip", func(t *testing.T) {
		token, err := issuer.Issue("u-1", "ana@example.com", time.Hour)
		require.NoError(t, err)
		require.NotEmpty(t, token)

		userID, err := verifier.Verify(token)
		require.NoError(t, err)
		assert.Equal(t, "u-1", userID)
	})

	t.Run("wrong secret", func(t *testing.T) {
		token, err := issuer.Issue("u-1", "ana@example.com", time.Hour)
		require.NoError(t, err)

		_, err = NewJWTVerifier("other-secret").Verify(token)
		assert.Error(t, err)
	})

	t.Run("expired token", func(t *testing.T) {
		token, err := issuer.Issue("u-1", "ana@example.com", -time.Minute)
		require.NoError(t, err)

		_, err = verifier.Verify(token)
		assert.Error(t, err)
	})

	t.Run("garbage input", func(t *testing.T) {
		_, err := verifier.Verify("not-a-jwt")
		assert.Error(t, err)
	})
}
