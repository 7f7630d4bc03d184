package token

import (
	"context"
	c "orderform/internal/core/domain/common"
	"orderform/internal/core/domain/token"
	"orderform/internal/core/domain/user"
	"orderform/internal/db"
	dbuser "orderform/internal/db/user"
	"testing"
	"time"

	"github.com/jackc/pgx/v4/pgxpool"
	"github.com/stretchr/testify/suite"
)

var NOW time.Time = time.Date(2020, 6, 6, 15, 30, 30, 0, time.UTC)

type testSuite struct {
	suite.Suite
	pool   *pgxpool.Pool
	store  *PgxTokenStore
	userID user.ID
}

func (suite *testSuite) SetupSuite() {
	suite.pool = db.CreateTestPool(suite.T())
	suite.store = NewPgxTokenStore(suite.pool)
}

func (suite *testSuite) SetupTest() {
	u, err := dbuser.NewPgxRepository(suite.pool).Create(context.Background(), user.CreateUserInput{
		Email:        c.NewEmail("test@test.test"),
		PasswordHash: user.PasswordHash("test"),
		CreatedAt:    NOW,
	})
	suite.Require().Nil(err)
	suite.userID = u.ID
}

func (suite *testSuite) TearDownSuite() {
	suite.pool.Close()
}

func (suite *testSuite) TearDownTest() {
	db.TruncateTables(suite.pool)
}

func TestPgxTokenStore(t *testing.T) {
	suite.Run(t, new(testSuite))
}

func (s *testSuite) TestInsertAndFind() {
	ctx := context.Background()
	inserted, err := s.store.Insert(ctx, token.InsertInput{
		Kind:      token.PasswordReset,
		UserID:    s.userID,
		Digest:    "a",
		CreatedAt: NOW,
		ExpiresAt: NOW.Add(10 * time.Minute),
		Metadata:  token.Metadata{SourceIP: c.Some("10.0.0.1"), UserAgent: "curl/8.0"},
	})
	s.Require().Nil(err)
	s.NotEmpty(inserted.ID)
	s.True(inserted.IsLive())

	found, err := s.store.FindLiveByDigest(ctx, token.PasswordReset, "a")
	s.Require().Nil(err)
	s.Equal(inserted, found)
	s.Equal(c.Some("10.0.0.1"), found.Metadata.SourceIP)
	s.Equal("curl/8.0", found.Metadata.UserAgent)
	s.Equal(NOW.Add(10*time.Minute), found.ExpiresAt)

	_, err = s.store.FindLiveByDigest(ctx, token.Activation, "a")
	s.ErrorIs(err, token.ErrNotFoundOrUsed)
}

func (s *testSuite) TestInvalidIPIsStoredAsNull() {
	inserted, err := s.store.Insert(context.Background(), token.InsertInput{
		Kind:      token.PasswordReset,
		UserID:    s.userID,
		Digest:    "a",
		CreatedAt: NOW,
		ExpiresAt: NOW.Add(time.Minute),
		Metadata:  token.Metadata{SourceIP: c.Some("not-an-ip")},
	})

	s.Require().Nil(err)
	s.False(inserted.Metadata.SourceIP.IsPresent)
}

func (s *testSuite) TestDigestCollision() {
	ctx := context.Background()
	s.insert(token.Activation, "a")
	_, err := s.store.RevokeAllLive(ctx, token.Activation, s.userID)
	s.Require().Nil(err)

	_, err = s.store.Insert(ctx, token.InsertInput{
		Kind:      token.Activation,
		UserID:    s.userID,
		Digest:    "a",
		CreatedAt: NOW,
		ExpiresAt: NOW.Add(time.Minute),
	})

	s.ErrorIs(err, token.ErrDigestCollision)
}

func (s *testSuite) TestRevokeAllLive() {
	ctx := context.Background()
	s.insert(token.Activation, "a")
	s.insert(token.PasswordReset, "b")

	count, err := s.store.RevokeAllLive(ctx, token.Activation, s.userID)
	s.Require().Nil(err)
	s.Equal(int64(1), count)

	_, err = s.store.FindLiveByDigest(ctx, token.Activation, "a")
	s.ErrorIs(err, token.ErrNotFoundOrUsed)
	_, err = s.store.FindLiveByDigest(ctx, token.PasswordReset, "b")
	s.Nil(err)

	count, err = s.store.RevokeAllLive(ctx, token.Activation, s.userID)
	s.Require().Nil(err)
	s.Equal(int64(0), count)
}

func (s *testSuite) TestConsume() {
	ctx := context.Background()
	t := s.insert(token.PasswordReset, "a")

	err := s.store.Consume(ctx, t.ID, NOW.Add(time.Minute))
	s.Require().Nil(err)

	err = s.store.Consume(ctx, t.ID, NOW.Add(2*time.Minute))
	s.ErrorIs(err, token.ErrAlreadyConsumed)

	_, err = s.store.FindLiveByDigest(ctx, token.PasswordReset, "a")
	s.ErrorIs(err, token.ErrNotFoundOrUsed)

	recent, err := s.store.MostRecent(ctx, token.PasswordReset, s.userID)
	s.Require().Nil(err)
	s.Equal(c.Some(NOW.Add(time.Minute)), recent.Value.ConsumedAt)
	s.True(recent.Value.Revoked)
}

func (s *testSuite) TestConsumeUnknown() {
	err := s.store.Consume(context.Background(), "00000000-0000-0000-0000-000000000000", NOW)
	s.ErrorIs(err, token.ErrNotFoundOrUsed)

	err = s.store.Consume(context.Background(), "not-a-uuid", NOW)
	s.ErrorIs(err, token.ErrNotFoundOrUsed)
}

func (s *testSuite) TestMostRecent() {
	ctx := context.Background()
	recent, err := s.store.MostRecent(ctx, token.Activation, s.userID)
	s.Require().Nil(err)
	s.False(recent.IsPresent)

	s.insertAt(token.Activation, "a", NOW)
	_, err = s.store.RevokeAllLive(ctx, token.Activation, s.userID)
	s.Require().Nil(err)
	s.insertAt(token.Activation, "b", NOW.Add(time.Minute))

	recent, err = s.store.MostRecent(ctx, token.Activation, s.userID)
	s.Require().Nil(err)
	s.True(recent.IsPresent)
	s.Equal(token.Digest("b"), recent.Value.Digest)
}

func (s *testSuite) insert(kind token.Kind, digest token.Digest) token.Token {
	return s.insertAt(kind, digest, NOW)
}

func (s *testSuite) insertAt(kind token.Kind, digest token.Digest, at time.Time) token.Token {
	s.T().Helper()
	t, err := s.store.Insert(context.Background(), token.InsertInput{
		Kind:      kind,
		UserID:    s.userID,
		Digest:    digest,
		CreatedAt: at,
		ExpiresAt: at.Add(10 * time.Minute),
	})
	if err != nil {
		s.FailNowf("could not insert token", "err: %v", err)
	}
	return t
}
