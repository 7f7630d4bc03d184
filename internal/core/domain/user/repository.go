package user

import (
	"context"
	c "orderform/internal/core/domain/common"
	"time"
)

type CreateUserInput struct {
	Email        c.Email
	Username     string
	FirstName    string
	LastName     string
	DisplayName  string
	PasswordHash PasswordHash
	CreatedAt    time.Time
}

type UserRepository interface {
	Create(ctx context.Context, input CreateUserInput) (User, error)
	GetByID(ctx context.Context, id ID) (User, error)
	GetByEmail(ctx context.Context, email c.Email) (User, error)
	Activate(ctx context.Context, id ID, at time.Time) (User, error)
	SetPassword(ctx context.Context, id ID, password PasswordHash) error
}
