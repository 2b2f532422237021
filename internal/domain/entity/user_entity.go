package entity

import (
	"regexp"
	"strings"
	"time"
	"unicode"
	"unicode/utf8"
)

const (
	NameMinLength = 2
	NameMaxLength = 100
)

// \s in RE2 is ASCII only; Unicode whitespace is rejected separately.
var emailPattern = regexp.MustCompile(`^[^\s@]+@[^\s@]+\.[^\s@]+$`)

// User is the aggregate root for the user domain.
// Fields are only reachable through accessors; a User is never observable in an
// invalid state and is never mutated after construction.
type User struct {
	id        string
	email     string
	name      string
	createdAt time.Time
	updatedAt time.Time
}

// NewUser builds a new user stamped with the current time.
func NewUser(id, email, name string) (*User, error) {
	return RestoreUser(id, email, name, time.Time{}, time.Time{})
}

// RestoreUser rebuilds a user from stored values. Zero timestamps default to now.
func RestoreUser(id, email, name string, createdAt, updatedAt time.Time) (*User, error) {
	if err := Validate(id, email, name); err != nil {
		return nil, err
	}
	now := time.Now().UTC()
	if createdAt.IsZero() {
		createdAt = now
	}
	if updatedAt.IsZero() {
		updatedAt = now
	}
	return &User{
		id:        id,
		email:     email,
		name:      name,
		createdAt: createdAt,
		updatedAt: updatedAt,
	}, nil
}

// Validate checks the user fields in a fixed order and reports the first rule violated.
func Validate(id, email, name string) error {
	if strings.TrimSpace(id) == "" {
		return NewValidationError("User ID cannot be empty")
	}
	if strings.TrimSpace(email) == "" {
		return NewValidationError("User email cannot be empty")
	}
	if strings.IndexFunc(email, unicode.IsSpace) >= 0 || !emailPattern.MatchString(email) {
		return NewValidationError("User email must be a valid email address")
	}
	trimmed := strings.TrimSpace(name)
	if trimmed == "" {
		return NewValidationError("User name cannot be empty")
	}
	n := utf8.RuneCountInString(trimmed)
	if n < NameMinLength {
		return NewValidationError("User name must be at least 2 characters long")
	}
	if n > NameMaxLength {
		return NewValidationError("User name must not exceed 100 characters")
	}
	return nil
}

func (u *User) ID() string           { return u.id }
func (u *User) Email() string        { return u.email }
func (u *User) Name() string         { return u.name }
func (u *User) CreatedAt() time.Time { return u.createdAt }
func (u *User) UpdatedAt() time.Time { return u.updatedAt }

// WithName returns a renamed copy with a refreshed UpdatedAt.
func (u *User) WithName(name string) (*User, error) {
	return u.derive(u.email, name)
}

// WithEmail returns a copy with the new email and a refreshed UpdatedAt.
func (u *User) WithEmail(email string) (*User, error) {
	return u.derive(email, u.name)
}

func (u *User) derive(email, name string) (*User, error) {
	if err := Validate(u.id, email, name); err != nil {
		return nil, err
	}
	return &User{
		id:        u.id,
		email:     email,
		name:      name,
		createdAt: u.createdAt,
		updatedAt: time.Now().UTC(),
	}, nil
}
