package uow

import (
	"context"
	e "orderform/internal/core/domain/errors"
	"orderform/internal/core/domain/token"
	uow "orderform/internal/core/domain/unit_of_work"
	"orderform/internal/core/domain/user"
	dbtoken "orderform/internal/db/token"
	dbuser "orderform/internal/db/user"

	"github.com/jackc/pgx/v4"
	"github.com/jackc/pgx/v4/pgxpool"
)

type pgxUnitOfWorkContext struct {
	tx     pgx.Tx
	tokens token.Store
}

func newPgxUnitOfWorkContext(tx pgx.Tx, tokens token.Store) *pgxUnitOfWorkContext {
	if tokens == nil {
		tokens = dbtoken.NewPgxTokenStore(tx)
	}
	return &pgxUnitOfWorkContext{
		tx:     tx,
		tokens: tokens,
	}
}

func (c *pgxUnitOfWorkContext) Commit(ctx context.Context) error {
	return c.tx.Commit(ctx)
}

func (c *pgxUnitOfWorkContext) Rollback(ctx context.Context) error {
	return c.tx.Rollback(ctx)
}

func (c *pgxUnitOfWorkContext) Users() user.UserRepository {
	return dbuser.NewPgxRepository(c.tx)
}

func (c *pgxUnitOfWorkContext) Tokens() token.Store {
	return c.tokens
}

type PgxUnitOfWork struct {
	db     *pgxpool.Pool
	tokens token.Store
}

// NewPgxUnitOfWork keeps users and tokens in the same transaction.
func NewPgxUnitOfWork(db *pgxpool.Pool) *PgxUnitOfWork {
	if db == nil {
		panic(e.NewNilArgumentError("db"))
	}
	return &PgxUnitOfWork{db: db}
}

// NewPgxUnitOfWorkWithTokenStore keeps users in PostgreSQL and delegates
// tokens to an external store. Token writes are not rolled back
// together with the transaction.
func NewPgxUnitOfWorkWithTokenStore(db *pgxpool.Pool, tokens token.Store) *PgxUnitOfWork {
	if tokens == nil {
		panic(e.NewNilArgumentError("tokens"))
	}
	u := NewPgxUnitOfWork(db)
	u.tokens = tokens
	return u
}

func (u *PgxUnitOfWork) Begin(ctx context.Context) (uow.Context, error) {
	tx, err := u.db.Begin(ctx)
	if err != nil {
		return nil, err
	}
	return newPgxUnitOfWorkContext(tx, u.tokens), nil
}
