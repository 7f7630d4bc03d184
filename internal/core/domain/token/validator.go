package token

import (
	"context"
	e "orderform/internal/core/domain/errors"
	"orderform/internal/core/domain/user"
	"time"
)

type Claim struct {
	Token  Token
	UserID user.ID
}

type Validator struct {
	codec Codec
}

func NewValidator(codec Codec) *Validator {
	if codec == nil {
		panic(e.NewNilArgumentError("codec"))
	}
	return &Validator{codec: codec}
}

// Validate never mutates the store. Callers consume the token themselves
// after acting on the claim.
func (v *Validator) Validate(
	ctx context.Context,
	store Store,
	kind Kind,
	secret RawSecret,
	now time.Time,
) (claim Claim, err error) {
	if secret == "" {
		return claim, ErrNotFoundOrUsed
	}

	t, err := store.FindLiveByDigest(ctx, kind, v.codec.Hash(secret))
	if err != nil {
		return claim, err
	}
	if t.IsExpired(now) {
		return claim, ErrExpired
	}
	return Claim{Token: t, UserID: t.UserID}, nil
}
