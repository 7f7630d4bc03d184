package requestactivation

import (
	"context"
	"errors"
	e "orderform/internal/core/domain/errors"
	"orderform/internal/core/domain/logging"
	"orderform/internal/core/domain/notification"
	"orderform/internal/core/domain/token"
	uow "orderform/internal/core/domain/unit_of_work"
	"orderform/internal/core/domain/user"
	"orderform/internal/core/services"
	"orderform/internal/core/services/auth"
	"time"
)

type Input struct {
	User user.User
}

func (i Input) WithAuthenticatedUser(u user.User) auth.Input {
	i.User = u
	return i
}

type Result struct {
	AlreadyActivated bool
	Sent             bool
}

type service struct {
	log        logging.Logger
	unitOfWork uow.UnitOfWork
	issuer     *token.Issuer
	guard      token.CooldownGuard
	cooldown   time.Duration
	renderer   notification.Renderer
	sender     notification.EmailSender
	now        func() time.Time
}

func New(
	log logging.Logger,
	unitOfWork uow.UnitOfWork,
	issuer *token.Issuer,
	config token.Config,
	renderer notification.Renderer,
	sender notification.EmailSender,
	now func() time.Time,
) services.Service[Input, Result] {
	if log == nil {
		panic(e.NewNilArgumentError("log"))
	}
	if unitOfWork == nil {
		panic(e.NewNilArgumentError("unitOfWork"))
	}
	if issuer == nil {
		panic(e.NewNilArgumentError("issuer"))
	}
	if err := config.Validate(); err != nil {
		panic(err)
	}
	if renderer == nil {
		panic(e.NewNilArgumentError("renderer"))
	}
	if sender == nil {
		panic(e.NewNilArgumentError("sender"))
	}
	if now == nil {
		panic(e.NewNilArgumentError("now"))
	}
	return &service{
		log:        log,
		unitOfWork: unitOfWork,
		issuer:     issuer,
		guard:      token.NewCooldownGuard(),
		cooldown:   config.ActivationResendCooldown,
		renderer:   renderer,
		sender:     sender,
		now:        now,
	}
}

func (s *service) Run(ctx context.Context, input Input) (result Result, err error) {
	now := s.now()
	uow, err := s.unitOfWork.Begin(ctx)
	if err != nil {
		s.log.Error(
			ctx,
			"Could not begin unit of work.",
			logging.Entry("userId", input.User.ID),
			logging.Entry("err", err),
		)
		return result, err
	}
	defer uow.Rollback(ctx)

	u, err := uow.Users().GetByID(ctx, input.User.ID)
	if errors.Is(err, user.ErrUserDoesNotExist) {
		return result, err
	}
	if err != nil {
		logging.Error(ctx, s.log, err, logging.Entry("userId", input.User.ID))
		return result, err
	}
	if u.IsActivated() {
		s.log.Info(ctx, "User is already activated, skip issuing token.", logging.Entry("userId", u.ID))
		return Result{AlreadyActivated: true}, nil
	}
	if !u.IsEnabled {
		s.log.Info(ctx, "User is not enabled, skip issuing token.", logging.Entry("userId", u.ID))
		return result, user.ErrUserIsNotEnabled
	}

	decision, err := s.guard.CanIssue(ctx, uow.Tokens(), token.Activation, u.ID, now, s.cooldown)
	if err != nil {
		logging.Error(ctx, s.log, err, logging.Entry("userId", u.ID))
		return result, err
	}
	if !decision.Allowed {
		s.log.Info(
			ctx,
			"Activation token resend is on cooldown.",
			logging.Entry("userId", u.ID),
			logging.Entry("remainingSeconds", decision.RemainingSeconds()),
		)
		return result, &token.CooldownActiveError{Remaining: decision.Remaining}
	}

	secret, issued, err := s.issuer.Issue(ctx, uow.Tokens(), token.IssueInput{
		Kind:   token.Activation,
		UserID: u.ID,
		Now:    now,
	})
	if err != nil {
		logging.Error(ctx, s.log, err, logging.Entry("userId", u.ID))
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
	s.log.Info(
		ctx,
		"Activation token has been issued.",
		logging.Entry("userId", u.ID),
		logging.Entry("tokenId", issued.ID),
		logging.Entry("expiresAt", issued.ExpiresAt),
	)

	result.Sent = s.send(ctx, u, secret, issued)
	return result, nil
}

func (s *service) send(ctx context.Context, u user.User, secret token.RawSecret, issued token.Token) bool {
	email, err := s.renderer.ActivationEmail(u, secret, issued)
	if err != nil {
		logging.Error(ctx, s.log, err, logging.Entry("userId", u.ID))
		return false
	}
	if err := s.sender.Send(ctx, email); err != nil {
		s.log.Error(
			ctx,
			"Could not send activation email.",
			logging.Entry("userId", u.ID),
			logging.Entry("err", err),
		)
		return false
	}
	s.log.Info(ctx, "Activation email has been sent.", logging.Entry("userId", u.ID))
	return true
}
