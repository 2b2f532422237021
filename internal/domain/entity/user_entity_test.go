package entity

import (
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewUser_Valid(t *testing.T) {
	u, err := NewUser("user_1", "john@example.com", "Jo")
	require.NoError(t, err)

	assert.Equal(t, "user_1", u.ID())
	assert.Equal(t, "john@example.com", u.Email())
	assert.Equal(t, "Jo", u.Name())
	assert.False(t, u.CreatedAt().IsZero())
	assert.Equal(t, u.CreatedAt(), u.UpdatedAt())
}

func TestNewUser_KeepsInputsVerbatim(t *testing.T) {
	u, err := NewUser(" id ", "a.b@c.io", "  Jane Doe ")
	require.NoError(t, err)

	assert.Equal(t, " id ", u.ID())
	assert.Equal(t, "  Jane Doe ", u.Name())
}

func TestValidate_RuleOrder(t *testing.T) {
	long := strings.Repeat("a", NameMaxLength+1)

	cases := []struct {
		name    string
		id      string
		email   string
		uname   string
		wantMsg string
	}{
		{"empty id", "", "a@b.com", "John", "User ID cannot be empty"},
		{"blank id beats bad email", "   ", "bad", "J", "User ID cannot be empty"},
		{"empty email", "u1", "", "John", "User email cannot be empty"},
		{"blank email", "u1", "   ", "", "User email cannot be empty"},
		{"malformed email", "u1", "bad-email", "John", "User email must be a valid email address"},
		{"email without tld", "u1", "a@b", "John", "User email must be a valid email address"},
		{"email with space", "u1", "a b@c.com", "John", "User email must be a valid email address"},
		{"email with no-break space", "u1", "jo\u00a0hn@example.com", "John", "User email must be a valid email address"},
		{"domain with em space", "u1", "john@exa\u2003mple.com", "John", "User email must be a valid email address"},
		{"email with next line", "u1", "john@example.com\u0085x", "John", "User email must be a valid email address"},
		{"empty name", "u1", "a@b.com", "", "User name cannot be empty"},
		{"blank name", "u1", "a@b.com", "    ", "User name cannot be empty"},
		{"one char name", "u1", "a@b.com", "J", "User name must be at least 2 characters long"},
		{"one char name padded", "u1", "a@b.com", "  J  ", "User name must be at least 2 characters long"},
		{"name too long", "u1", "a@b.com", long, "User name must not exceed 100 characters"},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			u, err := NewUser(tc.id, tc.email, tc.uname)
			require.Error(t, err)
			assert.Nil(t, u)

			var verr *ValidationError
			require.True(t, errors.As(err, &verr))
			assert.Equal(t, tc.wantMsg, verr.Message)
		})
	}
}

func TestValidate_NameBoundaries(t *testing.T) {
	assert.NoError(t, Validate("u1", "a@b.com", "Jo"))
	assert.NoError(t, Validate("u1", "a@b.com", strings.Repeat("x", NameMaxLength)))
	// multi-byte characters count once each
	assert.NoError(t, Validate("u1", "a@b.com", strings.Repeat("é", NameMaxLength)))
}

func TestRestoreUser_KeepsTimestamps(t *testing.T) {
	created := time.Date(2024, 1, 2, 3, 4, 5, 0, time.UTC)
	updated := created.Add(time.Hour)

	u, err := RestoreUser("u1", "a@b.com", "Alice", created, updated)
	require.NoError(t, err)
	assert.Equal(t, created, u.CreatedAt())
	assert.Equal(t, updated, u.UpdatedAt())
}

func TestRestoreUser_RejectsInvalidRow(t *testing.T) {
	_, err := RestoreUser("u1", "nope", "Alice", time.Now(), time.Now())
	var verr *ValidationError
	assert.ErrorAs(t, err, &verr)
}

func TestWithName(t *testing.T) {
	created := time.Now().UTC().Add(-time.Hour)
	u, err := RestoreUser("u1", "a@b.com", "Alice", created, created)
	require.NoError(t, err)

	renamed, err := u.WithName("Alicia")
	require.NoError(t, err)

	assert.Equal(t, "Alicia", renamed.Name())
	assert.Equal(t, "Alice", u.Name(), "receiver must not change")
	assert.Equal(t, created, renamed.CreatedAt())
	assert.True(t, renamed.UpdatedAt().After(created))
}

func TestWithName_Invalid(t *testing.T) {
	u, err := NewUser("u1", "a@b.com", "Alice")
	require.NoError(t, err)

	_, err = u.WithName("A")
	var verr *ValidationError
	require.ErrorAs(t, err, &verr)
	assert.Equal(t, "User name must be at least 2 characters long", verr.Message)
}

func TestWithEmail(t *testing.T) {
	u, err := NewUser("u1", "a@b.com", "Alice")
	require.NoError(t, err)

	moved, err := u.WithEmail("alice@new.org")
	require.NoError(t, err)
	assert.Equal(t, "alice@new.org", moved.Email())
	assert.Equal(t, "a@b.com", u.Email())

	_, err = u.WithEmail("broken")
	var verr *ValidationError
	require.ErrorAs(t, err, &verr)
	assert.Equal(t, "User email must be a valid email address", verr.Message)
}

func TestStorageError_Unwrap(t *testing.T) {
	base := errors.New("connection refused")
	err := NewStorageError("create user", base)

	assert.ErrorIs(t, err, base)
	assert.Equal(t, "storage: create user: connection refused", err.Error())
}
