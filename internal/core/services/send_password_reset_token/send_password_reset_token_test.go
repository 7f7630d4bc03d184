package sendpasswordresettoken

import (
	"context"
	"errors"
	c "orderform/internal/core/domain/common"
	"orderform/internal/core/domain/logging"
	"orderform/internal/core/domain/notification"
	"orderform/internal/core/domain/token"
	uow "orderform/internal/core/domain/unit_of_work"
	"orderform/internal/core/domain/user"
	"orderform/internal/core/services"
	"testing"
	"time"

	"github.com/stretchr/testify/suite"
)

const EMAIL = c.Email("test@test.test")

var (
	Now    = time.Date(2023, 5, 1, 12, 0, 0, 0, time.UTC)
	Config = token.Config{
		PasswordResetTTL:         10 * time.Minute,
		ActivationTTL:            10 * time.Minute,
		ActivationResendCooldown: time.Minute,
	}
)

type testSuite struct {
	suite.Suite
	Logger  *logging.FakeLogger
	Uow     *uow.FakeUnitOfWork
	Codec   *token.FakeCodec
	Sender  *notification.FakeEmailSender
	Service services.Service[Input, Result]
}

func (s *testSuite) SetupTest() {
	s.Logger = logging.NewFakeLogger()
	s.Uow = uow.NewFakeUnitOfWork()
	s.Codec = token.NewFakeCodec()
	s.Sender = notification.NewFakeEmailSender()
	s.Service = New(
		s.Logger,
		s.Uow,
		token.NewIssuer(s.Codec, Config),
		notification.NewFakeRenderer(),
		s.Sender,
		func() time.Time { return Now },
	)
}

func TestSendPasswordResetTokenService(t *testing.T) {
	suite.Run(t, new(testSuite))
}

func (s *testSuite) TestTokenIssuedWithMetadata() {
	u := s.createUser()

	_, err := s.Service.Run(context.Background(), Input{
		Email:     EMAIL,
		SourceIP:  c.Some("192.168.1.10"),
		UserAgent: "Mozilla/5.0",
	})

	s.Nil(err)
	live := s.Uow.Context.TokenStore.Live(token.PasswordReset, u.ID)
	s.Require().Len(live, 1)
	s.Equal(c.Some("192.168.1.10"), live[0].Metadata.SourceIP)
	s.Equal("Mozilla/5.0", live[0].Metadata.UserAgent)
	s.Equal(Now.Add(Config.PasswordResetTTL), live[0].ExpiresAt)

	s.Equal(1, s.Sender.SentCount())
	s.Equal(EMAIL, s.Sender.LastSent().To)
	s.Equal(s.Codec.Hash(notification.SecretFrom(s.Sender.LastSent())), live[0].Digest)
}

func (s *testSuite) TestRepeatedRequestRevokesPrevious() {
	u := s.createUser()

	for i := 0; i < 3; i++ {
		_, err := s.Service.Run(context.Background(), Input{Email: EMAIL})
		s.Require().Nil(err)
	}

	s.Len(s.Uow.Context.TokenStore.Tokens, 3)
	live := s.Uow.Context.TokenStore.Live(token.PasswordReset, u.ID)
	s.Require().Len(live, 1)
	s.Equal(s.Codec.Hash(notification.SecretFrom(s.Sender.LastSent())), live[0].Digest)
}

func (s *testSuite) TestResponseIsIdenticalForUnknownEmail() {
	s.createUser()

	registered, registeredErr := s.Service.Run(context.Background(), Input{Email: EMAIL})
	unknown, unknownErr := s.Service.Run(context.Background(), Input{Email: "unknown@test.test"})

	s.Equal(registered, unknown)
	s.Equal(registeredErr, unknownErr)
	s.Nil(unknownErr)
	s.Equal(1, s.Sender.SentCount())
}

func (s *testSuite) TestDisabledUserGetsNothing() {
	s.createUser()
	s.Uow.Context.UserRepository.Users[0].IsEnabled = false

	_, err := s.Service.Run(context.Background(), Input{Email: EMAIL})

	s.Nil(err)
	s.Empty(s.Uow.Context.TokenStore.Tokens)
	s.Equal(0, s.Sender.SentCount())
}

func (s *testSuite) TestSendFailureIsNotReported() {
	s.createUser()
	s.Sender.ReturnError = true

	_, err := s.Service.Run(context.Background(), Input{Email: EMAIL})

	s.Nil(err)
	s.Len(s.Uow.Context.TokenStore.Tokens, 1)
	s.Equal(1, s.Logger.Count(logging.ERROR))
}

func (s *testSuite) TestStorageError() {
	s.createUser()
	s.Uow.Context.TokenStore.ReturnError = true

	_, err := s.Service.Run(context.Background(), Input{Email: EMAIL})

	var storageErr *token.StorageError
	s.True(errors.As(err, &storageErr))
	s.Equal(0, s.Sender.SentCount())
}

func (s *testSuite) createUser() user.User {
	s.T().Helper()
	u, err := s.Uow.Context.UserRepository.Create(
		context.Background(),
		user.CreateUserInput{Email: EMAIL, PasswordHash: "hash", CreatedAt: Now},
	)
	if err != nil {
		s.FailNow(err.Error())
	}
	return u
}
