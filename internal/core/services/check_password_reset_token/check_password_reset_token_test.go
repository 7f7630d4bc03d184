package checkpasswordresettoken

import (
	"context"
	"orderform/internal/core/domain/logging"
	"orderform/internal/core/domain/token"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

var (
	Start  = time.Date(2023, 5, 1, 12, 0, 0, 0, time.UTC)
	Config = token.Config{
		PasswordResetTTL:         10 * time.Minute,
		ActivationTTL:            10 * time.Minute,
		ActivationResendCooldown: time.Minute,
	}
)

func TestCheckPasswordResetToken(t *testing.T) {
	codec := token.NewFakeCodec()
	store := token.NewFakeStore()
	secret, issued, err := token.NewIssuer(codec, Config).Issue(
		context.Background(),
		store,
		token.IssueInput{Kind: token.PasswordReset, UserID: 1, Now: Start},
	)
	require.NoError(t, err)

	cases := []struct {
		id     string
		secret token.RawSecret
		at     time.Time
		reason error
	}{
		{id: "valid", secret: secret, at: Start.Add(time.Minute)},
		{id: "valid at expiry", secret: secret, at: issued.ExpiresAt},
		{id: "expired", secret: secret, at: issued.ExpiresAt.Add(time.Second), reason: token.ErrExpired},
		{id: "unknown", secret: "nope", at: Start, reason: token.ErrNotFoundOrUsed},
		{id: "empty", secret: "", at: Start, reason: token.ErrNotFoundOrUsed},
	}

	for _, testcase := range cases {
		t.Run(testcase.id, func(t *testing.T) {
			service := New(
				logging.NewFakeLogger(),
				store,
				token.NewValidator(codec),
				func() time.Time { return testcase.at },
			)

			result, err := service.Run(context.Background(), Input{Secret: testcase.secret})

			if testcase.reason == nil {
				require.NoError(t, err)
				require.Equal(t, issued.UserID, result.UserID)
				require.Equal(t, issued.ExpiresAt, result.ExpiresAt)
				return
			}
			require.ErrorIs(t, err, token.ErrInvalidLink)
			require.ErrorIs(t, err, testcase.reason)
		})
	}

	stored, ok := store.Get(issued.ID)
	require.True(t, ok)
	require.True(t, stored.IsLive())
}
