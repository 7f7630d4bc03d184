package user

import (
	"fmt"
	c "orderform/internal/core/domain/common"
	e "orderform/internal/core/domain/errors"
	"strings"
	"time"
)

type ID int64

type PasswordHash string

func (p PasswordHash) String() string {
	return "***"
}

type RawPassword string

func (p RawPassword) String() string {
	return "***"
}

type User struct {
	ID           ID
	Email        c.Email
	Username     string
	FirstName    string
	LastName     string
	DisplayName  string
	PasswordHash PasswordHash
	IsEnabled    bool
	CreatedAt    time.Time
	ActivatedAt  c.Optional[time.Time]
}

func (u *User) Validate() error {
	if u.Email == "" {
		return e.NewInvalidStateError(fmt.Sprintf("email is not set for user %d", u.ID))
	}
	if u.PasswordHash == "" {
		return e.NewInvalidStateError(fmt.Sprintf("password hash is not set for user %d", u.ID))
	}
	return nil
}

func (u *User) IsActivated() bool {
	return u.ActivatedAt.IsPresent
}

// GetDisplayName is used to greet the user in emails.
func (u *User) GetDisplayName() string {
	if name := strings.TrimSpace(u.DisplayName); name != "" {
		return name
	}
	first, last := strings.TrimSpace(u.FirstName), strings.TrimSpace(u.LastName)
	if first != "" && last != "" {
		return first + " " + last
	}
	if first != "" {
		return first
	}
	if u.Username != "" {
		return u.Username
	}
	return string(u.Email)
}

type PasswordHasher interface {
	HashPassword(password RawPassword) (PasswordHash, error)
	ValidatePassword(password RawPassword, hash PasswordHash) bool
}

type SessionToken string

func (t SessionToken) String() string {
	return "***"
}

// SessionVerifier resolves a bearer token issued by the login service.
type SessionVerifier interface {
	Verify(token SessionToken) (ID, error)
}
