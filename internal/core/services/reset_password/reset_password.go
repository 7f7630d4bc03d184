package resetpassword

import (
	"context"
	"errors"
	e "orderform/internal/core/domain/errors"
	"orderform/internal/core/domain/logging"
	"orderform/internal/core/domain/token"
	uow "orderform/internal/core/domain/unit_of_work"
	"orderform/internal/core/domain/user"
	"orderform/internal/core/services"
	"time"
)

type Input struct {
	Secret      token.RawSecret
	NewPassword user.RawPassword
}

type Result struct {
	User      user.User
	ChangedAt time.Time
}

func (r Result) ChangedUser() (user.User, time.Time) {
	return r.User, r.ChangedAt
}

type service struct {
	log            logging.Logger
	unitOfWork     uow.UnitOfWork
	validator      *token.Validator
	passwordHasher user.PasswordHasher
	now            func() time.Time
}

func New(
	log logging.Logger,
	unitOfWork uow.UnitOfWork,
	validator *token.Validator,
	passwordHasher user.PasswordHasher,
	now func() time.Time,
) services.Service[Input, Result] {
	if log == nil {
		panic(e.NewNilArgumentError("log"))
	}
	if unitOfWork == nil {
		panic(e.NewNilArgumentError("unitOfWork"))
	}
	if validator == nil {
		panic(e.NewNilArgumentError("validator"))
	}
	if passwordHasher == nil {
		panic(e.NewNilArgumentError("passwordHasher"))
	}
	if now == nil {
		panic(e.NewNilArgumentError("now"))
	}
	return &service{
		log:            log,
		unitOfWork:     unitOfWork,
		validator:      validator,
		passwordHasher: passwordHasher,
		now:            now,
	}
}

func (s *service) Run(ctx context.Context, input Input) (result Result, err error) {
	newPasswordHash, err := s.passwordHasher.HashPassword(input.NewPassword)
	if err != nil {
		logging.Error(ctx, s.log, err)
		return result, err
	}

	uow, err := s.unitOfWork.Begin(ctx)
	if err != nil {
		s.log.Error(ctx, "Could not begin unit of work.", logging.Entry("err", err))
		return result, err
	}
	defer uow.Rollback(ctx)

	// Hashing takes a while, so the clock is read after it.
	now := s.now()
	claim, err := s.validator.Validate(ctx, uow.Tokens(), token.PasswordReset, input.Secret, now)
	if token.IsInvalid(err) {
		s.log.Info(ctx, "Password reset token rejected.", logging.Entry("reason", err))
		return result, token.NewInvalidLinkError(err)
	}
	if err != nil {
		logging.Error(ctx, s.log, err)
		return result, err
	}

	u, err := uow.Users().GetByID(ctx, claim.UserID)
	if err != nil {
		logging.Error(ctx, s.log, err, logging.Entry("userId", claim.UserID))
		return result, err
	}
	if !u.IsEnabled {
		s.log.Info(ctx, "Password reset rejected for disabled user.", logging.Entry("userId", u.ID))
		return result, token.NewInvalidLinkError(user.ErrUserIsNotEnabled)
	}

	err = uow.Tokens().Consume(ctx, claim.Token.ID, now)
	if errors.Is(err, token.ErrAlreadyConsumed) {
		s.log.Info(ctx, "Password reset token consumed concurrently.", logging.Entry("tokenId", claim.Token.ID))
		return result, token.NewInvalidLinkError(err)
	}
	if err != nil {
		logging.Error(ctx, s.log, err, logging.Entry("tokenId", claim.Token.ID))
		return result, err
	}

	if err := uow.Users().SetPassword(ctx, u.ID, newPasswordHash); err != nil {
		s.log.Error(
			ctx,
			"Could not set new password.",
			logging.Entry("userId", u.ID),
			logging.Entry("err", err),
		)
		return result, err
	}

	if err := uow.Commit(ctx); err != nil {
		s.log.Error(
			ctx,
			"Could not commit unit of work.",
			logging.Entry("userId", u.ID),
			logging.Entry("err", err),
		)
		return result, err
	}

	s.log.Info(ctx, "Password has been reset.", logging.Entry("userId", u.ID))
	u.PasswordHash = newPasswordHash
	return Result{User: u, ChangedAt: now}, nil
}
