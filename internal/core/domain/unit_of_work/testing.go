package uow

import (
	"context"
	"errors"
	"orderform/internal/core/domain/token"
	"orderform/internal/core/domain/user"
	"sync"
)

type FakeUnitOfWorkContext struct {
	UserRepository    *user.FakeUserRepository
	TokenStore        *token.FakeStore
	WasRollbackCalled bool
	WasCommitCalled   bool
	CommitReturnError bool
	lock              sync.Mutex
}

func NewFakeUnitOfWorkContext(
	userRepository *user.FakeUserRepository,
	tokenStore *token.FakeStore,
) *FakeUnitOfWorkContext {
	return &FakeUnitOfWorkContext{
		UserRepository: userRepository,
		TokenStore:     tokenStore,
	}
}

func (c *FakeUnitOfWorkContext) Users() user.UserRepository {
	return c.UserRepository
}

func (c *FakeUnitOfWorkContext) Tokens() token.Store {
	return c.TokenStore
}

// FakeUnitOfWork runs units of work one at a time, which is the
// strongest isolation a real database could offer.
type FakeUnitOfWork struct {
	Context     *FakeUnitOfWorkContext
	ReturnError bool
	serial      sync.Mutex
}

func NewFakeUnitOfWork() *FakeUnitOfWork {
	return &FakeUnitOfWork{
		Context: NewFakeUnitOfWorkContext(user.NewFakeUserRepository(), token.NewFakeStore()),
	}
}

func (u *FakeUnitOfWork) Begin(ctx context.Context) (Context, error) {
	if u.ReturnError {
		return nil, errors.New("could not begin unit of work")
	}
	u.serial.Lock()
	return &fakeTransaction{FakeUnitOfWorkContext: u.Context, release: u.serial.Unlock}, nil
}

type fakeTransaction struct {
	*FakeUnitOfWorkContext
	release func()
	done    bool
}

func (t *fakeTransaction) Commit(ctx context.Context) error {
	if t.done {
		return errors.New("transaction is already closed")
	}
	if t.CommitReturnError {
		return errors.New("could not commit")
	}
	t.done = true
	t.lock.Lock()
	t.WasCommitCalled = true
	t.lock.Unlock()
	t.release()
	return nil
}

func (t *fakeTransaction) Rollback(ctx context.Context) error {
	if t.done {
		return nil
	}
	t.done = true
	t.lock.Lock()
	t.WasRollbackCalled = true
	t.lock.Unlock()
	t.release()
	return nil
}
