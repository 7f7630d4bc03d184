package sendpasswordresettoken

import (
	"context"
	"errors"
	c "orderform/internal/core/domain/common"
	e "orderform/internal/core/domain/errors"
	"orderform/internal/core/domain/logging"
	"orderform/internal/core/domain/notification"
	"orderform/internal/core/domain/token"
	uow "orderform/internal/core/domain/unit_of_work"
	"orderform/internal/core/domain/user"
	"orderform/internal/core/services"
	"time"
)

type Input struct {
	Email     c.Email
	SourceIP  c.Optional[string]
	UserAgent string
}

// Result is intentionally empty: registered, unknown and disabled
// emails all produce the same outcome.
type Result struct{}

type service struct {
	log        logging.Logger
	unitOfWork uow.UnitOfWork
	issuer     *token.Issuer
	renderer   notification.Renderer
	sender     notification.EmailSender
	now        func() time.Time
}

func New(
	log logging.Logger,
	unitOfWork uow.UnitOfWork,
	issuer *token.Issuer,
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
		renderer:   renderer,
		sender:     sender,
		now:        now,
	}
}

func (s *service) Run(ctx context.Context, input Input) (result Result, err error) {
	now := s.now()
	uow, err := s.unitOfWork.Begin(ctx)
	if err != nil {
		s.log.Error(ctx, "Could not begin unit of work.", logging.Entry("err", err))
		return result, err
	}
	defer uow.Rollback(ctx)

	u, err := uow.Users().GetByEmail(ctx, input.Email)
	if errors.Is(err, user.ErrUserDoesNotExist) {
		s.log.Info(ctx, "Password reset requested for unknown email.", logging.Entry("email", input.Email))
		return result, nil
	}
	if err != nil {
		logging.Error(ctx, s.log, err, logging.Entry("email", input.Email))
		return result, err
	}
	if !u.IsEnabled {
		s.log.Info(ctx, "Password reset requested for disabled user.", logging.Entry("userId", u.ID))
		return result, nil
	}

	secret, issued, err := s.issuer.Issue(ctx, uow.Tokens(), token.IssueInput{
		Kind:   token.PasswordReset,
		UserID: u.ID,
		Now:    now,
		Metadata: token.Metadata{
			SourceIP:  input.SourceIP,
			UserAgent: input.UserAgent,
		},
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
		"Password reset token has been issued.",
		logging.Entry("userId", u.ID),
		logging.Entry("tokenId", issued.ID),
		logging.Entry("sourceIp", input.SourceIP),
	)

	email, err := s.renderer.PasswordResetEmail(u, secret, issued)
	if err != nil {
		logging.Error(ctx, s.log, err, logging.Entry("userId", u.ID))
		return result, nil
	}
	if err := s.sender.Send(ctx, email); err != nil {
		s.log.Error(
			ctx,
			"Could not send password reset email.",
			logging.Entry("userId", u.ID),
			logging.Entry("err", err),
		)
		return result, nil
	}
	s.log.Info(ctx, "Password reset email has been handed to the sender.", logging.Entry("userId", u.ID))
	return result, nil
}
