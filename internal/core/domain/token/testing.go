package token

import (
	"context"
	"errors"
	"fmt"
	c "orderform/internal/core/domain/common"
	"orderform/internal/core/domain/user"
	"sync"
	"time"
)

// FakeCodec hands out "secret-1", "secret-2", ... and hashes by prefixing.
type FakeCodec struct {
	ReturnError bool
	counter     int
	lock        sync.Mutex
}

func NewFakeCodec() *FakeCodec {
	return &FakeCodec{}
}

func (f *FakeCodec) GenerateSecret() (RawSecret, error) {
	if f.ReturnError {
		return "", errors.New("could not generate secret")
	}
	f.lock.Lock()
	defer f.lock.Unlock()
	f.counter++
	return RawSecret(fmt.Sprintf("secret-%d", f.counter)), nil
}

func (f *FakeCodec) Hash(secret RawSecret) Digest {
	return Digest("digest:" + string(secret))
}

type FakeStore struct {
	Tokens      []Token
	ReturnError bool
	counter     int
	lock        sync.Mutex
}

func NewFakeStore() *FakeStore {
	return &FakeStore{Tokens: make([]Token, 0, 10)}
}

func (s *FakeStore) Insert(ctx context.Context, input InsertInput) (t Token, err error) {
	if s.ReturnError {
		return t, NewStorageError("insert", errors.New("fake store failure"))
	}
	s.lock.Lock()
	defer s.lock.Unlock()
	for _, existing := range s.Tokens {
		if existing.Digest == input.Digest {
			return t, ErrDigestCollision
		}
		if existing.Kind == input.Kind && existing.UserID == input.UserID && !existing.Revoked {
			return t, NewStorageError("insert", errors.New("live token already exists"))
		}
	}
	s.counter++
	t = Token{
		ID:        ID(fmt.Sprintf("token-%d", s.counter)),
		Kind:      input.Kind,
		UserID:    input.UserID,
		Digest:    input.Digest,
		CreatedAt: input.CreatedAt,
		ExpiresAt: input.ExpiresAt,
		Metadata:  input.Metadata,
	}
	s.Tokens = append(s.Tokens, t)
	return t, nil
}

func (s *FakeStore) FindLiveByDigest(ctx context.Context, kind Kind, digest Digest) (t Token, err error) {
	if s.ReturnError {
		return t, NewStorageError("find live by digest", errors.New("fake store failure"))
	}
	s.lock.Lock()
	defer s.lock.Unlock()
	for _, t := range s.Tokens {
		if t.Kind == kind && t.Digest == digest && t.IsLive() {
			return t, nil
		}
	}
	return t, ErrNotFoundOrUsed
}

func (s *FakeStore) RevokeAllLive(ctx context.Context, kind Kind, userID user.ID) (int64, error) {
	if s.ReturnError {
		return 0, NewStorageError("revoke all live", errors.New("fake store failure"))
	}
	s.lock.Lock()
	defer s.lock.Unlock()
	count := int64(0)
	for ix, t := range s.Tokens {
		if t.Kind == kind && t.UserID == userID && !t.Revoked {
			s.Tokens[ix].Revoked = true
			count++
		}
	}
	return count, nil
}

func (s *FakeStore) Consume(ctx context.Context, id ID, at time.Time) error {
	if s.ReturnError {
		return NewStorageError("consume", errors.New("fake store failure"))
	}
	s.lock.Lock()
	defer s.lock.Unlock()
	for ix, t := range s.Tokens {
		if t.ID != id {
			continue
		}
		if !t.IsLive() {
			return ErrAlreadyConsumed
		}
		s.Tokens[ix].ConsumedAt = c.Some(at)
		s.Tokens[ix].Revoked = true
		return nil
	}
	return ErrNotFoundOrUsed
}

func (s *FakeStore) MostRecent(ctx context.Context, kind Kind, userID user.ID) (c.Optional[Token], error) {
	if s.ReturnError {
		return c.None[Token](), NewStorageError("most recent", errors.New("fake store failure"))
	}
	s.lock.Lock()
	defer s.lock.Unlock()
	result := c.None[Token]()
	for _, t := range s.Tokens {
		if t.Kind != kind || t.UserID != userID {
			continue
		}
		if !result.IsPresent || t.CreatedAt.After(result.Value.CreatedAt) {
			result = c.Some(t)
		}
	}
	return result, nil
}

// Live returns the live tokens of the kind for the user.
func (s *FakeStore) Live(kind Kind, userID user.ID) []Token {
	s.lock.Lock()
	defer s.lock.Unlock()
	live := make([]Token, 0, 1)
	for _, t := range s.Tokens {
		if t.Kind == kind && t.UserID == userID && t.IsLive() {
			live = append(live, t)
		}
	}
	return live
}

func (s *FakeStore) Get(id ID) (Token, bool) {
	s.lock.Lock()
	defer s.lock.Unlock()
	for _, t := range s.Tokens {
		if t.ID == id {
			return t, true
		}
	}
	return Token{}, false
}
