package token

import (
	"fmt"
	e "orderform/internal/core/domain/errors"
	"time"
)

type Config struct {
	PasswordResetTTL         time.Duration
	ActivationTTL            time.Duration
	ActivationResendCooldown time.Duration
}

func (c Config) Validate() error {
	if c.PasswordResetTTL <= 0 {
		return e.NewInvalidArgumentError("passwordResetTTL", "must be positive")
	}
	if c.ActivationTTL <= 0 {
		return e.NewInvalidArgumentError("activationTTL", "must be positive")
	}
	if c.ActivationResendCooldown <= 0 {
		return e.NewInvalidArgumentError("activationResendCooldown", "must be positive")
	}
	return nil
}

func (c Config) TTL(kind Kind) time.Duration {
	switch kind {
	case PasswordReset:
		return c.PasswordResetTTL
	case Activation:
		return c.ActivationTTL
	}
	panic(fmt.Sprintf("no TTL configured for token kind %q", string(kind)))
}
