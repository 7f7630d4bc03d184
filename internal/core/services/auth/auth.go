package auth

import (
	"context"
	"errors"
	e "orderform/internal/core/domain/errors"
	"orderform/internal/core/domain/user"
	"orderform/internal/core/services"
)

type contextAuthToken string

const CONTEXT_AUTH_TOKEN_KEY = contextAuthToken("authToken")

type Input interface {
	WithAuthenticatedUser(u user.User) Input
}

type service[T Input, S any] struct {
	verifier       user.SessionVerifier
	userRepository user.UserRepository
	inner          services.Service[T, S]
}

func WithAuthentication[T Input, S any](
	verifier user.SessionVerifier,
	userRepository user.UserRepository,
	inner services.Service[T, S],
) services.Service[T, S] {
	if verifier == nil {
		panic(e.NewNilArgumentError("verifier"))
	}
	if userRepository == nil {
		panic(e.NewNilArgumentError("userRepository"))
	}
	if inner == nil {
		panic(e.NewNilArgumentError("inner"))
	}
	return &service[T, S]{
		verifier:       verifier,
		userRepository: userRepository,
		inner:          inner,
	}
}

func (s *service[T, S]) Run(ctx context.Context, input T) (result S, err error) {
	authToken, ok := ctx.Value(CONTEXT_AUTH_TOKEN_KEY).(user.SessionToken)
	if !ok {
		return result, user.ErrInvalidSessionToken
	}
	userID, err := s.verifier.Verify(authToken)
	if err != nil {
		return result, user.ErrInvalidSessionToken
	}
	u, err := s.userRepository.GetByID(ctx, userID)
	if errors.Is(err, user.ErrUserDoesNotExist) {
		return result, user.ErrInvalidSessionToken
	}
	if err != nil {
		return result, err
	}
	if !u.IsEnabled {
		return result, user.ErrUserIsNotEnabled
	}
	return s.inner.Run(ctx, input.WithAuthenticatedUser(u).(T))
}
