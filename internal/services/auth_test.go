package services

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"eventlive/internal/clock"
	"eventlive/internal/domain"
)

// fakeHasher hashes by concatenation so comparisons are deterministic.
type fakeHasher struct{}

func (fakeHasher) GenerateSalt() (string, error) { return "salt", nil }

func (fakeHasher) Hash(salt, password string) (string, error) {
	return salt + ":" + password, nil
}

func (fakeHasher) Compare(hash, salt, password string) error {
	if hash != salt+":"+password {
		return errors.New("mismatch")
	}
	return nil
}

type fakeIssuer struct{}

func (fakeIssuer) Issue(userID, email string, expiry time.Duration) (string, error) {
	return "token-for-" + userID, nil
}

func newAuthFixture(t *testing.T) (*fakeUserRepo, domain.AuthService) {
	t.Helper()
	users := newFakeUserRepo()
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	svc := NewAuthService(users, fakeHasher{}, fakeIssuer{}, 24*time.Hour, clock.NewFixed(now))
	return users, svc
}

func TestSignUp(t *testing.T) {
	t.Run("creates a user with normalized email", func(t *testing.T) {
		_, svc := newAuthFixture(t)
		user, err := svc.SignUp(context.Background(), "  Ana  ", "Ana@Example.COM", "hunter2hunter2")
		require.NoError(t, err)
		assert.Equal(t, "ana@example.com", user.Email)
		assert.Equal(t, "Ana", user.Name)
		assert.NotEmpty(t, user.PasswordHash)
	})

	t.Run("invalid email", func(t *testing.T) {
		_, svc := newAuthFixture(t)
		_, err := svc.SignUp(context.Background(), "Ana", "not-an-email", "hunter2hunter2")
		verrs, ok := domain.AsValidationErrors(err)
		require.True(t, ok)
		assert.Contains(t, verrs, "email")
	})

	t.Run("short password", func(t *testing.T) {
		_, svc := newAuthFixture(t)
		_, err := svc.SignUp(context.Background(), "Ana", "ana@example.com", "short")
		verrs, ok := domain.AsValidationErrors(err)
		require.True(t, ok)
		assert.Contains(t, verrs, "password")
	})

	t.Run("duplicate email", func(t *testing.T) {
		_, svc := newAuthFixture(t)
		_, err := svc.SignUp(context.Background(), "Ana", "ana@example.com", "hunter2hunter2")
		require.NoError(t, err)

		_, err = svc.SignUp(context.Background(), "Another Ana", "ana@example.com", "hunter2hunter2")
		assert.ErrorIs(t, err, domain.ErrDuplicateEmail)
	})
}

func TestLogin(t *testing.T) {
	t.Run("valid credentials", func(t *testing.T) {
		_, svc := newAuthFixture(t)
		created, err := svc.SignUp(context.Background(), "Ana", "ana@example.com", "hunter2hunter2")
		require.NoError(t, err)

		token, user, err := svc.Login(context.Background(), "ANA@example.com", "hunter2hunter2")
		require.NoError(t, err)
		assert.Equal(t, "token-for-"+created.ID, token)
		assert.Equal(t, created.ID, user.ID)
	})

	t.Run("unknown email and wrong password look the same", func(t *testing.T) {
		_, svc := newAuthFixture(t)
		_, err := svc.SignUp(context.Background(), "Ana", "ana@example.com", "hunter2hunter2")
		require.NoError(t, err)

		_, _, errUnknown := svc.Login(context.Background(), "nobody@example.com", "hunter2hunter2")
		_, _, errWrong := svc.Login(context.Background(), "ana@example.com", "wrong-password")
		assert.ErrorIs(t, errUnknown, domain.ErrInvalidInput)
		assert.ErrorIs(t, errWrong, domain.ErrInvalidInput)
	})
}
