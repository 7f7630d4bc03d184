package credentialchanged

import (
	"context"
	"errors"
	"orderform/internal/core/domain/logging"
	"orderform/internal/core/domain/notification"
	"orderform/internal/core/domain/user"
	"testing"
	"time"

	"github.com/stretchr/testify/suite"
)

var (
	Now     = time.Date(2023, 5, 1, 12, 0, 0, 0, time.UTC)
	errTest = errors.New("test error")
)

type result struct {
	user user.User
}

func (r result) ChangedUser() (user.User, time.Time) {
	return r.user, Now
}

type stubService struct {
	err error
}

func (s *stubService) Run(ctx context.Context, input string) (result, error) {
	if s.err != nil {
		return result{}, s.err
	}
	return result{user: user.User{ID: 1, Email: "test@test.test"}}, nil
}

type testSuite struct {
	suite.Suite
	Logger   *logging.FakeLogger
	Renderer *notification.FakeRenderer
	Sender   *notification.FakeEmailSender
}

func (s *testSuite) SetupTest() {
	s.Logger = logging.NewFakeLogger()
	s.Renderer = notification.NewFakeRenderer()
	s.Sender = notification.NewFakeEmailSender()
}

func TestCredentialChangedNotification(t *testing.T) {
	suite.Run(t, new(testSuite))
}

func (s *testSuite) TestNotificationSent() {
	service := WithNotification[string, result](s.Logger, s.Renderer, s.Sender, &stubService{})

	_, err := service.Run(context.Background(), "input")

	s.Nil(err)
	s.Require().Equal(1, s.Sender.SentCount())
	sent := s.Sender.LastSent()
	s.Equal(notification.FakePasswordChangedSubject, sent.Subject)
	s.Equal("test@test.test", string(sent.To))
	s.Equal(Now.Format(time.RFC3339), sent.Body)
}

func (s *testSuite) TestNothingSentOnFailure() {
	service := WithNotification[string, result](s.Logger, s.Renderer, s.Sender, &stubService{err: errTest})

	_, err := service.Run(context.Background(), "input")

	s.ErrorIs(err, errTest)
	s.Equal(0, s.Sender.SentCount())
}

func (s *testSuite) TestDeliveryFailureIsSwallowed() {
	s.Sender.ReturnError = true
	service := WithNotification[string, result](s.Logger, s.Renderer, s.Sender, &stubService{})

	r, err := service.Run(context.Background(), "input")

	s.Nil(err)
	s.Equal(user.ID(1), r.user.ID)
	s.Equal(1, s.Logger.Count(logging.ERROR))
}

func (s *testSuite) TestRenderFailureIsSwallowed() {
	s.Renderer.ReturnError = true
	service := WithNotification[string, result](s.Logger, s.Renderer, s.Sender, &stubService{})

	_, err := service.Run(context.Background(), "input")

	s.Nil(err)
	s.Equal(0, s.Sender.SentCount())
	s.Equal(1, s.Logger.Count(logging.ERROR))
}
