package user

import (
	"context"
	c "orderform/internal/core/domain/common"
	"orderform/internal/core/domain/user"
	"orderform/internal/db"
	"testing"
	"time"

	"github.com/jackc/pgx/v4/pgxpool"
	"github.com/stretchr/testify/suite"
)

const (
	EMAIL         = "test@test.test"
	PASSWORD_HASH = "test-password-hash"
)

var NOW time.Time = time.Date(2020, 6, 6, 15, 30, 30, 0, time.UTC)

type testSuite struct {
	suite.Suite
	pool *pgxpool.Pool
	repo *PgxUserRepository
}

func (suite *testSuite) SetupSuite() {
	suite.pool = db.CreateTestPool(suite.T())
	suite.repo = NewPgxRepository(suite.pool)
}

func (suite *testSuite) TearDownSuite() {
	suite.pool.Close()
}

func (suite *testSuite) TearDownTest() {
	db.TruncateTables(suite.pool)
}

func TestPgxUserRepository(t *testing.T) {
	suite.Run(t, new(testSuite))
}

func (suite *testSuite) TestCreateSuccess() {
	type test struct {
		id    string
		input user.CreateUserInput
	}
	cases := []test{
		{
			id: "minimal",
			input: user.CreateUserInput{
				Email:        c.NewEmail("test@test.test"),
				PasswordHash: user.PasswordHash("test"),
				CreatedAt:    NOW,
			},
		},
		{
			id: "with names",
			input: user.CreateUserInput{
				Email:        c.NewEmail("john@test.test"),
				Username:     "john",
				FirstName:    "John",
				LastName:     "Doe",
				DisplayName:  "Johnny",
				PasswordHash: user.PasswordHash("test"),
				CreatedAt:    NOW,
			},
		},
	}

	for _, testcase := range cases {
		suite.Run(testcase.id, func() {
			u, err := suite.repo.Create(context.Background(), testcase.input)

			assert := suite.Require()
			assert.Nil(err)
			assert.Equal(testcase.input.Email, u.Email)
			assert.Equal(testcase.input.PasswordHash, u.PasswordHash)
			assert.Equal(testcase.input.Username, u.Username)
			assert.Equal(testcase.input.DisplayName, u.DisplayName)
			assert.True(testcase.input.CreatedAt.Equal(u.CreatedAt))
			assert.True(u.IsEnabled)
			assert.False(u.IsActivated())
		})
	}
}

func (suite *testSuite) TestEmailAlreadyExistsError() {
	input := user.CreateUserInput{
		Email:        c.NewEmail("test@test.test"),
		PasswordHash: user.PasswordHash("test"),
		CreatedAt:    NOW,
	}
	_, err := suite.repo.Create(context.Background(), input)

	assert := suite.Require()
	assert.Nil(err)

	_, err = suite.repo.Create(context.Background(), input)
	assert.ErrorIs(err, user.ErrEmailAlreadyExists)
}

func (s *testSuite) TestGetByEmail() {
	created := s.createInactiveUser()

	u, err := s.repo.GetByEmail(context.Background(), c.NewEmail(EMAIL))
	s.Require().Nil(err)
	s.Equal(created, u)

	_, err = s.repo.GetByEmail(context.Background(), c.NewEmail("unknown@test.test"))
	s.ErrorIs(err, user.ErrUserDoesNotExist)
}

func (s *testSuite) TestActivateSuccess() {
	inactiveUser := s.createInactiveUser()
	activatedUser, err := s.repo.Activate(context.Background(), inactiveUser.ID, NOW)

	s.Nil(err)
	s.Equal(inactiveUser.ID, activatedUser.ID)
	s.Equal(inactiveUser.Email, activatedUser.Email)
	s.Equal(inactiveUser.PasswordHash, activatedUser.PasswordHash)

	s.True(activatedUser.IsActivated())
	s.Equal(NOW, activatedUser.ActivatedAt.Value)
}

func (s *testSuite) TestActivateKeepsFirstTimestamp() {
	inactiveUser := s.createInactiveUser()

	_, err := s.repo.Activate(context.Background(), inactiveUser.ID, NOW)
	s.Require().Nil(err)
	activatedUser, err := s.repo.Activate(context.Background(), inactiveUser.ID, NOW.Add(time.Hour))
	s.Require().Nil(err)

	s.Equal(NOW, activatedUser.ActivatedAt.Value)
}

func (s *testSuite) TestActivateUnknownUser() {
	_, err := s.repo.Activate(context.Background(), user.ID(111222333), NOW)

	s.ErrorIs(err, user.ErrUserDoesNotExist)
}

func (s *testSuite) TestSetPassword() {
	u := s.createInactiveUser()
	s.Equal(u.PasswordHash, user.PasswordHash(PASSWORD_HASH))

	newPassword := user.PasswordHash("new-password-hash")
	err := s.repo.SetPassword(context.Background(), u.ID, newPassword)
	s.Nil(err)
	userAfterUpdate := s.getUserByID(u.ID)
	s.Equal(newPassword, userAfterUpdate.PasswordHash)
}

func (s *testSuite) TestSetPasswordReturnsErrorIfUserDoesNotExist() {
	u := s.createInactiveUser()

	newPassword := user.PasswordHash("new-password-hash")
	err := s.repo.SetPassword(context.Background(), user.ID(111222333), newPassword)
	s.ErrorIs(err, user.ErrUserDoesNotExist)

	userAfterUpdate := s.getUserByID(u.ID)
	s.Equal(u, userAfterUpdate)
}

func (s *testSuite) createInactiveUser() user.User {
	s.T().Helper()
	u, err := s.repo.Create(
		context.Background(),
		user.CreateUserInput{
			Email:        c.NewEmail(EMAIL),
			PasswordHash: user.PasswordHash(PASSWORD_HASH),
			CreatedAt:    NOW,
		},
	)
	if err != nil {
		s.FailNowf("could not create user", "err: %v", err)
	}
	s.False(u.IsActivated())
	return u
}

func (s *testSuite) getUserByID(id user.ID) user.User {
	s.T().Helper()
	u, err := s.repo.GetByID(context.Background(), id)
	if err != nil {
		s.FailNowf("could not get user by ID", "id: %v, err: %v", id, err)
	}
	return u
}
