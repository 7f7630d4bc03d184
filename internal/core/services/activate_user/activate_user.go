package activateuser

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
	Secret token.RawSecret
}

type Result struct {
	User user.User
}

type service struct {
	log       logging.Logger
	uow       uow.UnitOfWork
	validator *token.Validator
	now       func() time.Time
}

func New(
	log logging.Logger,
	uow uow.UnitOfWork,
	validator *token.Validator,
	now func() time.Time,
) services.Service[Input, Result] {
	if log == nil {
		panic(e.NewNilArgumentError("log"))
	}
	if uow == nil {
		panic(e.NewNilArgumentError("uow"))
	}
	if validator == nil {
		panic(e.NewNilArgumentError("validator"))
	}
	if now == nil {
		panic(e.NewNilArgumentError("now"))
	}
	return &service{
		log:       log,
		uow:       uow,
		validator: validator,
		now:       now,
	}
}

func (s *service) Run(ctx context.Context, input Input) (result Result, err error) {
	now := s.now()
	uow, err := s.uow.Begin(ctx)
	if err != nil {
		s.log.Error(ctx, "Could not begin unit of work.", logging.Entry("err", err))
		return result, err
	}
	defer uow.Rollback(ctx)

	claim, err := s.validator.Validate(ctx, uow.Tokens(), token.Activation, input.Secret, now)
	if token.IsInvalid(err) {
		s.log.Info(ctx, "Activation token rejected.", logging.Entry("reason", err))
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
		s.log.Info(ctx, "Activation rejected for disabled user.", logging.Entry("userId", u.ID))
		return result, token.NewInvalidLinkError(user.ErrUserIsNotEnabled)
	}

	err = uow.Tokens().Consume(ctx, claim.Token.ID, now)
	if errors.Is(err, token.ErrAlreadyConsumed) {
		s.log.Info(ctx, "Activation token consumed concurrently.", logging.Entry("tokenId", claim.Token.ID))
		return result, token.NewInvalidLinkError(err)
	}
	if err != nil {
		logging.Error(ctx, s.log, err, logging.Entry("tokenId", claim.Token.ID))
		return result, err
	}

	activated, err := uow.Users().Activate(ctx, u.ID, now)
	if err != nil {
		s.log.Error(
			ctx,
			"Could not activate user.",
			logging.Entry("userId", u.ID),
			logging.Entry("err", err),
		)
		return result, err
	}

	if err = uow.Commit(ctx); err != nil {
		s.log.Error(
			ctx,
			"Could not commit unit of work.",
			logging.Entry("userId", u.ID),
			logging.Entry("err", err),
		)
		return result, err
	}

	s.log.Info(ctx, "User successfully activated.", logging.Entry("userId", activated.ID))
	return Result{User: activated}, nil
}
