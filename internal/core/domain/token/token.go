package token

import (
	"fmt"
	c "orderform/internal/core/domain/common"
	"orderform/internal/core/domain/user"
	"time"
)

type Kind string

const (
	PasswordReset Kind = "password_reset"
	Activation    Kind = "activation"
)

func (k Kind) Validate() error {
	switch k {
	case PasswordReset, Activation:
		return nil
	}
	return fmt.Errorf("unknown token kind %q", string(k))
}

func (k Kind) String() string {
	return string(k)
}

type ID string

// RawSecret is the value handed to the user. It is never persisted.
type RawSecret string

func (s RawSecret) String() string {
	return "***"
}

type Digest string

func (d Digest) String() string {
	return "***"
}

type Metadata struct {
	SourceIP  c.Optional[string]
	UserAgent string
}

type Token struct {
	ID         ID
	Kind       Kind
	UserID     user.ID
	Digest     Digest
	CreatedAt  time.Time
	ExpiresAt  time.Time
	ConsumedAt c.Optional[time.Time]
	Revoked    bool
	Metadata   Metadata
}

func (t *Token) IsLive() bool {
	return !t.Revoked && !t.ConsumedAt.IsPresent
}

func (t *Token) IsExpired(now time.Time) bool {
	return now.After(t.ExpiresAt)
}

type Codec interface {
	GenerateSecret() (RawSecret, error)
	Hash(secret RawSecret) Digest
}
