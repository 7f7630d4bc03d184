package tokenstore

import (
	"context"
	"errors"
	"fmt"
	c "orderform/internal/core/domain/common"
	e "orderform/internal/core/domain/errors"
	"orderform/internal/core/domain/token"
	"orderform/internal/core/domain/user"
	"strconv"
	"time"

	"github.com/go-redis/redis/v9"
	"github.com/google/uuid"
)

// Insert supersedes the live token of the same kind and user, so concurrent
// issuers leave exactly one live token behind.
var insertScript = redis.NewScript(`
if redis.call('EXISTS', KEYS[2]) == 1 then
	return 1
end
local live = redis.call('GET', KEYS[3])
if live then
	local liveKey = ARGV[1] .. live
	if redis.call('EXISTS', liveKey) == 1 then
		redis.call('HSET', liveKey, 'revoked', '1')
	end
end
redis.call('HSET', KEYS[1],
	'id', ARGV[2], 'kind', ARGV[3], 'user_id', ARGV[4], 'digest', ARGV[5],
	'created_at', ARGV[6], 'expires_at', ARGV[7], 'consumed_at', '', 'revoked', '0',
	'source_ip', ARGV[8], 'user_agent', ARGV[9])
redis.call('SET', KEYS[2], ARGV[2])
redis.call('SET', KEYS[3], ARGV[2])
redis.call('SET', KEYS[4], ARGV[2])
for i = 1, 4 do
	redis.call('PEXPIREAT', KEYS[i], ARGV[10])
end
return 0
`)

var revokeScript = redis.NewScript(`
local live = redis.call('GET', KEYS[1])
if not live then
	return 0
end
redis.call('DEL', KEYS[1])
local liveKey = ARGV[1] .. live
if redis.call('HGET', liveKey, 'revoked') == '0' then
	redis.call('HSET', liveKey, 'revoked', '1')
	return 1
end
return 0
`)

var consumeScript = redis.NewScript(`
if redis.call('EXISTS', KEYS[1]) == 0 then
	return 0
end
local f = redis.call('HMGET', KEYS[1], 'revoked', 'consumed_at', 'kind', 'user_id')
if f[1] ~= '0' or f[2] ~= '' then
	return 2
end
redis.call('HSET', KEYS[1], 'revoked', '1', 'consumed_at', ARGV[1])
local liveKey = ARGV[2] .. f[3] .. ':' .. f[4]
if redis.call('GET', liveKey) == ARGV[3] then
	redis.call('DEL', liveKey)
end
return 1
`)

// Redis keeps tokens in hashes with pointer keys per digest and per user.
// Keys are dropped keepFor after the token expires. Writes are atomic Lua
// scripts, but they do not take part in SQL transactions.
type Redis struct {
	redisClient *redis.Client
	prefix      string
	keepFor     time.Duration
}

func NewRedis(redisClient *redis.Client, prefix string, keepFor time.Duration) *Redis {
	if redisClient == nil {
		panic(e.NewNilArgumentError("redisClient"))
	}
	if keepFor < 0 {
		panic(e.NewInvalidArgumentError("keepFor", "must not be negative"))
	}
	return &Redis{redisClient: redisClient, prefix: prefix, keepFor: keepFor}
}

func (r *Redis) Insert(ctx context.Context, input token.InsertInput) (t token.Token, err error) {
	t = token.Token{
		ID:        token.ID(uuid.NewString()),
		Kind:      input.Kind,
		UserID:    input.UserID,
		Digest:    input.Digest,
		CreatedAt: input.CreatedAt,
		ExpiresAt: input.ExpiresAt,
		Metadata:  input.Metadata,
	}
	keys := []string{
		r.tokenKey(t.ID),
		r.digestKey(t.Kind, t.Digest),
		r.liveKey(t.Kind, t.UserID),
		r.recentKey(t.Kind, t.UserID),
	}
	result, err := insertScript.Run(
		ctx,
		r.redisClient,
		keys,
		r.prefix+"token:",
		string(t.ID),
		string(t.Kind),
		strconv.FormatInt(int64(t.UserID), 10),
		string(t.Digest),
		encodeTime(t.CreatedAt),
		encodeTime(t.ExpiresAt),
		t.Metadata.SourceIP.ValueOr(""),
		t.Metadata.UserAgent,
		t.ExpiresAt.Add(r.keepFor).UnixMilli(),
	).Int()
	if err != nil {
		return token.Token{}, token.NewStorageError("insert", err)
	}
	if result == 1 {
		return token.Token{}, token.ErrDigestCollision
	}
	return t, nil
}

func (r *Redis) FindLiveByDigest(ctx context.Context, kind token.Kind, digest token.Digest) (t token.Token, err error) {
	id, err := r.redisClient.Get(ctx, r.digestKey(kind, digest)).Result()
	if errors.Is(err, redis.Nil) {
		return t, token.ErrNotFoundOrUsed
	}
	if err != nil {
		return t, token.NewStorageError("find live by digest", err)
	}
	t, err = r.get(ctx, token.ID(id))
	if errors.Is(err, redis.Nil) {
		return t, token.ErrNotFoundOrUsed
	}
	if err != nil {
		return t, token.NewStorageError("find live by digest", err)
	}
	if t.Kind != kind || !t.IsLive() {
		return token.Token{}, token.ErrNotFoundOrUsed
	}
	return t, nil
}

func (r *Redis) RevokeAllLive(ctx context.Context, kind token.Kind, userID user.ID) (int64, error) {
	count, err := revokeScript.Run(
		ctx,
		r.redisClient,
		[]string{r.liveKey(kind, userID)},
		r.prefix+"token:",
	).Int64()
	if err != nil {
		return 0, token.NewStorageError("revoke all live", err)
	}
	return count, nil
}

func (r *Redis) Consume(ctx context.Context, id token.ID, at time.Time) error {
	result, err := consumeScript.Run(
		ctx,
		r.redisClient,
		[]string{r.tokenKey(id)},
		encodeTime(at),
		r.prefix+"live:",
		string(id),
	).Int()
	if err != nil {
		return token.NewStorageError("consume", err)
	}
	switch result {
	case 0:
		return token.ErrNotFoundOrUsed
	case 2:
		return token.ErrAlreadyConsumed
	}
	return nil
}

func (r *Redis) MostRecent(ctx context.Context, kind token.Kind, userID user.ID) (c.Optional[token.Token], error) {
	id, err := r.redisClient.Get(ctx, r.recentKey(kind, userID)).Result()
	if errors.Is(err, redis.Nil) {
		return c.None[token.Token](), nil
	}
	if err != nil {
		return c.None[token.Token](), token.NewStorageError("most recent", err)
	}
	t, err := r.get(ctx, token.ID(id))
	if errors.Is(err, redis.Nil) {
		return c.None[token.Token](), nil
	}
	if err != nil {
		return c.None[token.Token](), token.NewStorageError("most recent", err)
	}
	return c.Some(t), nil
}

func (r *Redis) get(ctx context.Context, id token.ID) (t token.Token, err error) {
	fields, err := r.redisClient.HGetAll(ctx, r.tokenKey(id)).Result()
	if err != nil {
		return t, err
	}
	if len(fields) == 0 {
		return t, redis.Nil
	}
	return decodeToken(fields)
}

func (r *Redis) tokenKey(id token.ID) string {
	return fmt.Sprintf("%stoken:%s", r.prefix, id)
}

func (r *Redis) digestKey(kind token.Kind, digest token.Digest) string {
	return fmt.Sprintf("%sdigest:%s:%s", r.prefix, kind, string(digest))
}

func (r *Redis) liveKey(kind token.Kind, userID user.ID) string {
	return fmt.Sprintf("%slive:%s:%d", r.prefix, kind, userID)
}

func (r *Redis) recentKey(kind token.Kind, userID user.ID) string {
	return fmt.Sprintf("%srecent:%s:%d", r.prefix, kind, userID)
}

func encodeTime(t time.Time) string {
	return strconv.FormatInt(t.UnixNano(), 10)
}

func decodeTime(s string) (time.Time, error) {
	n, err := strconv.ParseInt(s, 10, 64)
	if err != nil {
		return time.Time{}, err
	}
	return time.Unix(0, n).UTC(), nil
}

func decodeToken(fields map[string]string) (t token.Token, err error) {
	userID, err := strconv.ParseInt(fields["user_id"], 10, 64)
	if err != nil {
		return t, fmt.Errorf("invalid user id: %w", err)
	}
	createdAt, err := decodeTime(fields["created_at"])
	if err != nil {
		return t, fmt.Errorf("invalid created_at: %w", err)
	}
	expiresAt, err := decodeTime(fields["expires_at"])
	if err != nil {
		return t, fmt.Errorf("invalid expires_at: %w", err)
	}
	t = token.Token{
		ID:        token.ID(fields["id"]),
		Kind:      token.Kind(fields["kind"]),
		UserID:    user.ID(userID),
		Digest:    token.Digest(fields["digest"]),
		CreatedAt: createdAt,
		ExpiresAt: expiresAt,
		Revoked:   fields["revoked"] == "1",
		Metadata:  token.Metadata{UserAgent: fields["user_agent"]},
	}
	if raw := fields["consumed_at"]; raw != "" {
		consumedAt, err := decodeTime(raw)
		if err != nil {
			return token.Token{}, fmt.Errorf("invalid consumed_at: %w", err)
		}
		t.ConsumedAt = c.Some(consumedAt)
	}
	if ip := fields["source_ip"]; ip != "" {
		t.Metadata.SourceIP = c.Some(ip)
	}
	return t, nil
}
