package changepassword

import (
	"context"
	e "orderform/internal/core/domain/errors"
	"orderform/internal/core/domain/logging"
	"orderform/internal/core/domain/user"
	"orderform/internal/core/services"
	"orderform/internal/core/services/auth"
	"time"
)

type Input struct {
	CurrentPassword user.RawPassword
	NewPassword     user.RawPassword
	User            user.User
}

func (i Input) WithAuthenticatedUser(u user.User) auth.Input {
	i.User = u
	return i
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
	userRepository user.UserRepository
	passwordHasher user.PasswordHasher
	now            func() time.Time
}

func New(
	log logging.Logger,
	userRepository user.UserRepository,
	passwordHasher user.PasswordHasher,
	now func() time.Time,
) services.Service[Input, Result] {
	if log == nil {
		panic(e.NewNilArgumentError("log"))
	}
	if userRepository == nil {
		panic(e.NewNilArgumentError("userRepository"))
	}
	if passwordHasher == nil {
		panic(e.NewNilArgumentError("passwordHasher"))
	}
	if now == nil {
		panic(e.NewNilArgumentError("now"))
	}
	return &service{
		log:            log,
		passwordHasher: passwordHasher,
		userRepository: userRepository,
		now:            now,
	}
}

func (s *service) Run(ctx context.Context, input Input) (result Result, err error) {
	isCurrentPasswordValid := s.passwordHasher.ValidatePassword(
		input.CurrentPassword,
		input.User.PasswordHash,
	)
	if !isCurrentPasswordValid {
		s.log.Info(ctx, "Current password does not match.", logging.Entry("userId", input.User.ID))
		return result, user.ErrWrongCredential
	}

	newPasswordHash, err := s.passwordHasher.HashPassword(input.NewPassword)
	if err != nil {
		logging.Error(ctx, s.log, err, logging.Entry("userId", input.User.ID))
		return result, err
	}
	if err := s.userRepository.SetPassword(ctx, input.User.ID, newPasswordHash); err != nil {
		logging.Error(ctx, s.log, err, logging.Entry("userId", input.User.ID))
		return result, err
	}

	s.log.Info(ctx, "Password has been changed.", logging.Entry("userId", input.User.ID))
	u := input.User
	u.PasswordHash = newPasswordHash
	return Result{User: u, ChangedAt: s.now()}, nil
}
