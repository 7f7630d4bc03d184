package credentialchanged

import (
	"context"
	e "orderform/internal/core/domain/errors"
	"orderform/internal/core/domain/logging"
	"orderform/internal/core/domain/notification"
	"orderform/internal/core/domain/user"
	"orderform/internal/core/services"
	"time"
)

type hasChangedUser interface {
	ChangedUser() (user.User, time.Time)
}

type service[T any, S hasChangedUser] struct {
	log      logging.Logger
	renderer notification.Renderer
	sender   notification.EmailSender
	inner    services.Service[T, S]
}

// WithNotification emails the user after the inner service changed their
// credential. The change is already durable at that point, so delivery
// problems are logged and never returned.
func WithNotification[T any, S hasChangedUser](
	log logging.Logger,
	renderer notification.Renderer,
	sender notification.EmailSender,
	inner services.Service[T, S],
) services.Service[T, S] {
	if log == nil {
		panic(e.NewNilArgumentError("log"))
	}
	if renderer == nil {
		panic(e.NewNilArgumentError("renderer"))
	}
	if sender == nil {
		panic(e.NewNilArgumentError("sender"))
	}
	if inner == nil {
		panic(e.NewNilArgumentError("inner"))
	}
	return &service[T, S]{log: log, renderer: renderer, sender: sender, inner: inner}
}

func (s *service[T, S]) Run(ctx context.Context, input T) (result S, err error) {
	result, err = s.inner.Run(ctx, input)
	if err != nil {
		return result, err
	}

	u, at := result.ChangedUser()
	email, err := s.renderer.PasswordChangedEmail(u, at)
	if err != nil {
		logging.Error(ctx, s.log, err, logging.Entry("userId", u.ID))
		return result, nil
	}
	if err := s.sender.Send(ctx, email); err != nil {
		s.log.Error(
			ctx,
			"Could not send password changed notification.",
			logging.Entry("userId", u.ID),
			logging.Entry("err", err),
		)
		return result, nil
	}
	s.log.Info(ctx, "Password changed notification has been sent.", logging.Entry("userId", u.ID))
	return result, nil
}
