package user

import (
	"errors"
)

var (
	ErrEmailAlreadyExists = errors.New("email already exists")
	ErrUserDoesNotExist   = errors.New("user does not exist")
	ErrWrongCredential    = errors.New("invalid credentials")
	ErrUserIsNotEnabled   = errors.New("user is not enabled")
)

var (
	ErrInvalidSessionToken = errors.New("invalid session token")
)
