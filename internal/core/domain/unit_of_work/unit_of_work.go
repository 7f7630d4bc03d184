package uow

import (
	"context"
	"orderform/internal/core/domain/token"
	"orderform/internal/core/domain/user"
)

type Context interface {
	Rollback(ctx context.Context) error
	Commit(ctx context.Context) error

	Users() user.UserRepository
	Tokens() token.Store
}

type UnitOfWork interface {
	Begin(ctx context.Context) (Context, error)
}
