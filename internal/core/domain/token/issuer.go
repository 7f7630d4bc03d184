package token

import (
	"context"
	e "orderform/internal/core/domain/errors"
	"orderform/internal/core/domain/user"
	"time"
)

type IssueInput struct {
	Kind     Kind
	UserID   user.ID
	Now      time.Time
	Metadata Metadata
}

type Issuer struct {
	codec  Codec
	config Config
}

func NewIssuer(codec Codec, config Config) *Issuer {
	if codec == nil {
		panic(e.NewNilArgumentError("codec"))
	}
	if err := config.Validate(); err != nil {
		panic(err)
	}
	return &Issuer{codec: codec, config: config}
}

// Issue revokes every live token of the kind for the user and stores a new
// one. The store must run both writes atomically, e.g. inside one unit of
// work, so that concurrent calls leave a single live token behind.
func (i *Issuer) Issue(ctx context.Context, store Store, input IssueInput) (secret RawSecret, t Token, err error) {
	if err := input.Kind.Validate(); err != nil {
		return secret, t, err
	}

	secret, err = i.codec.GenerateSecret()
	if err != nil {
		return "", t, err
	}

	if _, err := store.RevokeAllLive(ctx, input.Kind, input.UserID); err != nil {
		return "", t, err
	}

	metadata := input.Metadata
	if input.Kind != PasswordReset {
		metadata = Metadata{}
	}

	t, err = store.Insert(ctx, InsertInput{
		Kind:      input.Kind,
		UserID:    input.UserID,
		Digest:    i.codec.Hash(secret),
		CreatedAt: input.Now,
		ExpiresAt: input.Now.Add(i.config.TTL(input.Kind)),
		Metadata:  metadata,
	})
	if err != nil {
		return "", t, err
	}
	return secret, t, nil
}
