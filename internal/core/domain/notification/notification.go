package notification

import (
	"context"
	c "orderform/internal/core/domain/common"
	"orderform/internal/core/domain/token"
	"orderform/internal/core/domain/user"
	"time"
)

type Email struct {
	To      c.Email
	Subject string
	Body    string
}

// EmailSender delivers a rendered email. Delivery guarantees are up to
// the implementation.
type EmailSender interface {
	Send(ctx context.Context, email Email) error
}

type Renderer interface {
	ActivationEmail(u user.User, secret token.RawSecret, t token.Token) (Email, error)
	PasswordResetEmail(u user.User, secret token.RawSecret, t token.Token) (Email, error)
	PasswordChangedEmail(u user.User, at time.Time) (Email, error)
}
