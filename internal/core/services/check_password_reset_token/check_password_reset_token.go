package checkpasswordresettoken

import (
	"context"
	e "orderform/internal/core/domain/errors"
	"orderform/internal/core/domain/logging"
	"orderform/internal/core/domain/token"
	"orderform/internal/core/domain/user"
	"orderform/internal/core/services"
	"time"
)

type Input struct {
	Secret token.RawSecret
}

type Result struct {
	UserID    user.ID
	ExpiresAt time.Time
}

type service struct {
	log       logging.Logger
	store     token.Store
	validator *token.Validator
	now       func() time.Time
}

// New builds the read-only check used to decide whether the new password
// form is shown. The submission is validated again by reset_password.
func New(
	log logging.Logger,
	store token.Store,
	validator *token.Validator,
	now func() time.Time,
) services.Service[Input, Result] {
	if log == nil {
		panic(e.NewNilArgumentError("log"))
	}
	if store == nil {
		panic(e.NewNilArgumentError("store"))
	}
	if validator == nil {
		panic(e.NewNilArgumentError("validator"))
	}
	if now == nil {
		panic(e.NewNilArgumentError("now"))
	}
	return &service{log: log, store: store, validator: validator, now: now}
}

func (s *service) Run(ctx context.Context, input Input) (result Result, err error) {
	claim, err := s.validator.Validate(ctx, s.store, token.PasswordReset, input.Secret, s.now())
	if token.IsInvalid(err) {
		s.log.Info(ctx, "Password reset token rejected.", logging.Entry("reason", err))
		return result, token.NewInvalidLinkError(err)
	}
	if err != nil {
		logging.Error(ctx, s.log, err)
		return result, err
	}
	return Result{UserID: claim.UserID, ExpiresAt: claim.Token.ExpiresAt}, nil
}
