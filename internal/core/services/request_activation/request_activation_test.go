package requestactivation

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
	Start  = time.Date(2023, 5, 1, 12, 0, 0, 0, time.UTC)
	Config = token.Config{
		PasswordResetTTL:         10 * time.Minute,
		ActivationTTL:            10 * time.Minute,
		ActivationResendCooldown: 60 * time.Second,
	}
)

type testSuite struct {
	suite.Suite
	Now      time.Time
	Logger   *logging.FakeLogger
	Uow      *uow.FakeUnitOfWork
	Codec    *token.FakeCodec
	Sender   *notification.FakeEmailSender
	Renderer *notification.FakeRenderer
	Service  services.Service[Input, Result]
}

func (s *testSuite) SetupTest() {
	s.Now = Start
	s.Logger = logging.NewFakeLogger()
	s.Uow = uow.NewFakeUnitOfWork()
	s.Codec = token.NewFakeCodec()
	s.Sender = notification.NewFakeEmailSender()
	s.Renderer = notification.NewFakeRenderer()
	s.Service = New(
		s.Logger,
		s.Uow,
		token.NewIssuer(s.Codec, Config),
		Config,
		s.Renderer,
		s.Sender,
		func() time.Time { return s.Now },
	)
}

func TestRequestActivationService(t *testing.T) {
	suite.Run(t, new(testSuite))
}

func (s *testSuite) TestTokenIssuedAndSent() {
	u := s.createUser()

	result, err := s.Service.Run(context.Background(), Input{User: u})

	s.Nil(err)
	s.True(result.Sent)
	s.False(result.AlreadyActivated)
	s.True(s.Uow.Context.WasCommitCalled)

	live := s.Uow.Context.TokenStore.Live(token.Activation, u.ID)
	s.Require().Len(live, 1)
	s.Equal(Start.Add(Config.ActivationTTL), live[0].ExpiresAt)

	s.Equal(1, s.Sender.SentCount())
	sent := s.Sender.LastSent()
	s.Equal(EMAIL, sent.To)
	s.Equal(s.Codec.Hash(notification.SecretFrom(sent)), live[0].Digest)
}

func (s *testSuite) TestAlreadyActivatedIsNoop() {
	u := s.createUser()
	_, err := s.Uow.Context.UserRepository.Activate(context.Background(), u.ID, Start)
	s.Require().Nil(err)

	result, err := s.Service.Run(context.Background(), Input{User: u})

	s.Nil(err)
	s.True(result.AlreadyActivated)
	s.Empty(s.Uow.Context.TokenStore.Tokens)
	s.Equal(0, s.Sender.SentCount())
}

func (s *testSuite) TestCooldownActive() {
	u := s.createUser()
	_, err := s.Service.Run(context.Background(), Input{User: u})
	s.Require().Nil(err)

	s.Now = Start.Add(20 * time.Second)
	_, err = s.Service.Run(context.Background(), Input{User: u})

	var cooldownErr *token.CooldownActiveError
	s.Require().True(errors.As(err, &cooldownErr))
	s.Equal(40, cooldownErr.RemainingSeconds())
	s.Len(s.Uow.Context.TokenStore.Tokens, 1)
	s.Equal(1, s.Sender.SentCount())
}

func (s *testSuite) TestResendAfterCooldownRevokesPrevious() {
	u := s.createUser()
	_, err := s.Service.Run(context.Background(), Input{User: u})
	s.Require().Nil(err)
	first := notification.SecretFrom(s.Sender.LastSent())

	s.Now = Start.Add(Config.ActivationResendCooldown)
	_, err = s.Service.Run(context.Background(), Input{User: u})
	s.Require().Nil(err)
	second := notification.SecretFrom(s.Sender.LastSent())

	s.NotEqual(first, second)
	live := s.Uow.Context.TokenStore.Live(token.Activation, u.ID)
	s.Require().Len(live, 1)
	s.Equal(s.Codec.Hash(second), live[0].Digest)
}

func (s *testSuite) TestSendFailureKeepsToken() {
	u := s.createUser()
	s.Sender.ReturnError = true

	result, err := s.Service.Run(context.Background(), Input{User: u})

	s.Nil(err)
	s.False(result.Sent)
	s.Len(s.Uow.Context.TokenStore.Live(token.Activation, u.ID), 1)
	s.Equal(1, s.Logger.Count(logging.ERROR))
}

func (s *testSuite) TestStorageError() {
	u := s.createUser()
	s.Uow.Context.TokenStore.ReturnError = true

	_, err := s.Service.Run(context.Background(), Input{User: u})

	var storageErr *token.StorageError
	s.True(errors.As(err, &storageErr))
	s.False(s.Uow.Context.WasCommitCalled)
	s.Equal(0, s.Sender.SentCount())
}

func (s *testSuite) TestUnknownUser() {
	_, err := s.Service.Run(context.Background(), Input{User: user.User{ID: 404}})

	s.ErrorIs(err, user.ErrUserDoesNotExist)
}

func (s *testSuite) TestDisabledUser() {
	u := s.createUser()
	s.Uow.Context.UserRepository.Users[0].IsEnabled = false

	_, err := s.Service.Run(context.Background(), Input{User: u})

	s.ErrorIs(err, user.ErrUserIsNotEnabled)
	s.Empty(s.Uow.Context.TokenStore.Tokens)
}

func (s *testSuite) createUser() user.User {
	s.T().Helper()
	u, err := s.Uow.Context.UserRepository.Create(
		context.Background(),
		user.CreateUserInput{Email: EMAIL, PasswordHash: "hash", CreatedAt: Start},
	)
	if err != nil {
		s.FailNow(err.Error())
	}
	return u
}
