package accounts

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"kgportal/internal/models"
)

func newTestService() *Service {
	s := NewService(NewMemoryUserRepository())
	s.cost = bcrypt.MinCost
	return s
}

func TestAuthenticate(t *testing.T) {
	ctx := context.Background()
	s := newTestService()
	require.NoError(t, s.EnsureAdmin(ctx, "admin", "123"))

	user, err := s.Authenticate(ctx, "admin", "123")
	require.NoError(t, err)
	assert.Equal(t, "admin", user.Username)
	assert.Equal(t, models.UserTypeAdmin, user.UserType)

	tests := []struct {
		name     string
		username string
		password string
	}{
		{"wrong password", "admin", "1234"},
		{"unknown user", "root", "123"},
		{"blank username", "  ", "123"},
		{"blank password", "admin", ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := s.Authenticate(ctx, tt.username, tt.password)
			assert.ErrorIs(t, err, ErrInvalidCredentials)
		})
	}
}

func TestEnsureAdminIsIdempotent(t *testing.T) {
	ctx := context.Background()
	s := newTestService()
	require.NoError(t, s.EnsureAdmin(ctx, "admin", "123"))
	require.NoError(t, s.EnsureAdmin(ctx, "admin", "other"))
	require.NoError(t, s.EnsureAdmin(ctx, "", ""))

	_, err := s.Authenticate(ctx, "admin", "123")
	assert.NoError(t, err)
}

func TestRegister(t *testing.T) {
	ctx := context.Background()
	s := newTestService()

	user, err := s.Register(ctx, "alice", "pw", "pw")
	require.NoError(t, err)
	assert.Equal(t, models.UserTypeMember, user.UserType)
	assert.NotEqual(t, "pw", user.PasswordHash)

	_, err = s.Register(ctx, "alice", "pw", "pw")
	assert.ErrorIs(t, err, ErrUserExists)

	_, err = s.Register(ctx, "bob", "pw", "nope")
	assert.ErrorIs(t, err, ErrPasswordMismatch)

	_, err = s.Register(ctx, "", "pw", "pw")
	assert.ErrorIs(t, err, ErrMissingFields)

	_, err = s.Authenticate(ctx, "alice", "pw")
	assert.NoError(t, err)
}

func TestUsernamesAreCaseInsensitive(t *testing.T) {
	ctx := context.Background()
	s := newTestService()

	user, err := s.Register(ctx, " Alice ", "pw", "pw")
	require.NoError(t, err)
	assert.Equal(t, "alice", user.Username)

	_, err = s.Authenticate(ctx, "ALICE", "pw")
	assert.NoError(t, err)

	_, err = s.Register(ctx, "alice", "pw", "pw")
	assert.ErrorIs(t, err, ErrUserExists)
}

func TestLinkIdentity(t *testing.T) {
	ctx := context.Background()
	s := newTestService()

	user, err := s.LinkIdentity(ctx, "uid-1", "Ada@Example.com")
	require.NoError(t, err)
	assert.Equal(t, "ada@example.com", user.Username)
	assert.Equal(t, "Ada@Example.com", user.Email)
	assert.Equal(t, "uid-1", user.FirebaseUID)

	again, err := s.LinkIdentity(ctx, "uid-1", "changed@example.com")
	require.NoError(t, err)
	assert.Equal(t, user.ID, again.ID)

	noEmail, err := s.LinkIdentity(ctx, "uid-2", "")
	require.NoError(t, err)
	assert.Equal(t, "uid-2", noEmail.Username)

	_, err = s.Authenticate(ctx, "ada@example.com", "")
	assert.ErrorIs(t, err, ErrInvalidCredentials, "linked accounts have no password")

	_, err = s.LinkIdentity(ctx, "uid-3", "ada@example.com")
	assert.ErrorIs(t, err, ErrUserExists)

	_, err = s.LinkIdentity(ctx, "", "x@example.com")
	assert.ErrorIs(t, err, ErrInvalidCredentials)
}
