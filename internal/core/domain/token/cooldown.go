package token

import (
	"context"
	"orderform/internal/core/domain/user"
	"time"
)

type Decision struct {
	Allowed   bool
	Remaining time.Duration
}

func (d Decision) RemainingSeconds() int {
	return floorSeconds(d.Remaining)
}

// CooldownGuard is advisory: it only answers, issuance is up to the caller.
type CooldownGuard struct{}

func NewCooldownGuard() CooldownGuard {
	return CooldownGuard{}
}

func (g CooldownGuard) CanIssue(
	ctx context.Context,
	store Store,
	kind Kind,
	userID user.ID,
	now time.Time,
	cooldown time.Duration,
) (Decision, error) {
	last, err := store.MostRecent(ctx, kind, userID)
	if err != nil {
		return Decision{}, err
	}
	if !last.IsPresent {
		return Decision{Allowed: true}, nil
	}

	elapsed := now.Sub(last.Value.CreatedAt)
	if elapsed >= cooldown {
		return Decision{Allowed: true}, nil
	}
	return Decision{Allowed: false, Remaining: cooldown - elapsed}, nil
}
