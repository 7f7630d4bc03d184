package token

import (
	"context"
	c "orderform/internal/core/domain/common"
	"orderform/internal/core/domain/user"
	"time"
)

type InsertInput struct {
	Kind      Kind
	UserID    user.ID
	Digest    Digest
	CreatedAt time.Time
	ExpiresAt time.Time
	Metadata  Metadata
}

// Store persists tokens. Implementations wrap backend failures
// in *StorageError.
type Store interface {
	Insert(ctx context.Context, input InsertInput) (Token, error)
	// FindLiveByDigest ignores expiry so that callers can tell
	// ErrExpired apart from ErrNotFoundOrUsed.
	FindLiveByDigest(ctx context.Context, kind Kind, digest Digest) (Token, error)
	RevokeAllLive(ctx context.Context, kind Kind, userID user.ID) (int64, error)
	// Consume must succeed at most once per token, also under concurrent calls.
	Consume(ctx context.Context, id ID, at time.Time) error
	MostRecent(ctx context.Context, kind Kind, userID user.ID) (c.Optional[Token], error)
}
