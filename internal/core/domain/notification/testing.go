package notification

import (
	"context"
	"errors"
	"fmt"
	"orderform/internal/core/domain/token"
	"orderform/internal/core/domain/user"
	"strings"
	"sync"
	"time"
)

type FakeEmailSender struct {
	Sent        []Email
	ReturnError bool
	lock        sync.Mutex
}

func NewFakeEmailSender() *FakeEmailSender {
	return &FakeEmailSender{}
}

func (s *FakeEmailSender) Send(ctx context.Context, email Email) error {
	if s.ReturnError {
		return fmt.Errorf("could not send email to %v", email.To)
	}
	s.lock.Lock()
	defer s.lock.Unlock()
	s.Sent = append(s.Sent, email)
	return nil
}

func (s *FakeEmailSender) SentCount() int {
	s.lock.Lock()
	defer s.lock.Unlock()
	return len(s.Sent)
}

func (s *FakeEmailSender) LastSent() Email {
	s.lock.Lock()
	defer s.lock.Unlock()
	l := len(s.Sent)
	if l == 0 {
		panic("Sent count is 0.")
	}
	return s.Sent[l-1]
}

const (
	FakeActivationSubject      = "activation"
	FakePasswordResetSubject   = "password reset"
	FakePasswordChangedSubject = "password changed"
)

// FakeRenderer puts the raw secret into the body as is, so tests can
// read it back with SecretFrom.
type FakeRenderer struct {
	ReturnError bool
}

func NewFakeRenderer() *FakeRenderer {
	return &FakeRenderer{}
}

func (r *FakeRenderer) ActivationEmail(u user.User, secret token.RawSecret, t token.Token) (Email, error) {
	if r.ReturnError {
		return Email{}, errors.New("could not render activation email")
	}
	return Email{To: u.Email, Subject: FakeActivationSubject, Body: "secret:" + string(secret)}, nil
}

func (r *FakeRenderer) PasswordResetEmail(u user.User, secret token.RawSecret, t token.Token) (Email, error) {
	if r.ReturnError {
		return Email{}, errors.New("could not render password reset email")
	}
	return Email{To: u.Email, Subject: FakePasswordResetSubject, Body: "secret:" + string(secret)}, nil
}

func (r *FakeRenderer) PasswordChangedEmail(u user.User, at time.Time) (Email, error) {
	if r.ReturnError {
		return Email{}, errors.New("could not render password changed email")
	}
	return Email{To: u.Email, Subject: FakePasswordChangedSubject, Body: at.Format(time.RFC3339)}, nil
}

func SecretFrom(email Email) token.RawSecret {
	return token.RawSecret(strings.TrimPrefix(email.Body, "secret:"))
}
