package token

import (
	"context"
	"errors"
	"fmt"
	c "orderform/internal/core/domain/common"
	e "orderform/internal/core/domain/errors"
	"orderform/internal/core/domain/token"
	"orderform/internal/core/domain/user"
	"orderform/internal/db"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgtype"
	"github.com/jackc/pgx/v4"
)

const (
	HASH_CONSTRAINT_NAME = "credential_token_hash_idx"
	LIVE_CONSTRAINT_NAME = "credential_token_live_idx"
)

const tokenColumns = `id, kind, user_id, token_hash, created_at, expires_at,
	consumed_at, revoked, source_ip, user_agent`

// PgxTokenStore keeps tokens in the credential_token table. Revocation and
// cooldown lookups take a transaction level advisory lock per kind and user,
// so it should be used within a unit of work.
type PgxTokenStore struct {
	db db.DBTX
}

func NewPgxTokenStore(dbtx db.DBTX) *PgxTokenStore {
	if dbtx == nil {
		panic(e.NewNilArgumentError("db"))
	}
	return &PgxTokenStore{db: dbtx}
}

func (s *PgxTokenStore) Insert(ctx context.Context, input token.InsertInput) (t token.Token, err error) {
	row := s.db.QueryRow(
		ctx,
		`INSERT INTO credential_token (id, kind, user_id, token_hash, created_at, expires_at, source_ip, user_agent)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		RETURNING `+tokenColumns,
		uuid.NewString(),
		string(input.Kind),
		int64(input.UserID),
		string(input.Digest),
		input.CreatedAt,
		input.ExpiresAt,
		encodeIP(input.Metadata.SourceIP),
		input.Metadata.UserAgent,
	)
	t, err = scanToken(row)
	if db.IsUniqueViolation(err, HASH_CONSTRAINT_NAME) {
		return t, token.ErrDigestCollision
	}
	if err != nil {
		return t, token.NewStorageError("insert", err)
	}
	return t, nil
}

func (s *PgxTokenStore) FindLiveByDigest(
	ctx context.Context,
	kind token.Kind,
	digest token.Digest,
) (t token.Token, err error) {
	row := s.db.QueryRow(
		ctx,
		`SELECT `+tokenColumns+` FROM credential_token
		WHERE kind = $1 AND token_hash = $2 AND consumed_at IS NULL AND NOT revoked`,
		string(kind),
		string(digest),
	)
	t, err = scanToken(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return t, token.ErrNotFoundOrUsed
	}
	if err != nil {
		return t, token.NewStorageError("find live by digest", err)
	}
	return t, nil
}

func (s *PgxTokenStore) RevokeAllLive(ctx context.Context, kind token.Kind, userID user.ID) (int64, error) {
	if err := s.lock(ctx, kind, userID); err != nil {
		return 0, token.NewStorageError("revoke all live", err)
	}
	tag, err := s.db.Exec(
		ctx,
		`UPDATE credential_token SET revoked = TRUE
		WHERE kind = $1 AND user_id = $2 AND NOT revoked`,
		string(kind),
		int64(userID),
	)
	if err != nil {
		return 0, token.NewStorageError("revoke all live", err)
	}
	return tag.RowsAffected(), nil
}

// Consume relies on the row lock taken by UPDATE: a concurrent caller waits
// for the first one to finish and then matches no rows.
func (s *PgxTokenStore) Consume(ctx context.Context, id token.ID, at time.Time) error {
	if _, err := uuid.Parse(string(id)); err != nil {
		return token.ErrNotFoundOrUsed
	}
	tag, err := s.db.Exec(
		ctx,
		`UPDATE credential_token SET consumed_at = $2, revoked = TRUE
		WHERE id = $1 AND consumed_at IS NULL AND NOT revoked`,
		string(id),
		at,
	)
	if err != nil {
		return token.NewStorageError("consume", err)
	}
	if tag.RowsAffected() == 1 {
		return nil
	}

	var exists bool
	err = s.db.QueryRow(ctx, `SELECT EXISTS (SELECT 1 FROM credential_token WHERE id = $1)`, string(id)).Scan(&exists)
	if err != nil {
		return token.NewStorageError("consume", err)
	}
	if exists {
		return token.ErrAlreadyConsumed
	}
	return token.ErrNotFoundOrUsed
}

func (s *PgxTokenStore) MostRecent(
	ctx context.Context,
	kind token.Kind,
	userID user.ID,
) (c.Optional[token.Token], error) {
	if err := s.lock(ctx, kind, userID); err != nil {
		return c.None[token.Token](), token.NewStorageError("most recent", err)
	}
	row := s.db.QueryRow(
		ctx,
		`SELECT `+tokenColumns+` FROM credential_token
		WHERE kind = $1 AND user_id = $2
		ORDER BY created_at DESC
		LIMIT 1`,
		string(kind),
		int64(userID),
	)
	t, err := scanToken(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return c.None[token.Token](), nil
	}
	if err != nil {
		return c.None[token.Token](), token.NewStorageError("most recent", err)
	}
	return c.Some(t), nil
}

func (s *PgxTokenStore) lock(ctx context.Context, kind token.Kind, userID user.ID) error {
	_, err := s.db.Exec(ctx, `SELECT pg_advisory_xact_lock(hashtext($1))`, fmt.Sprintf("%s:%d", kind, userID))
	return err
}

func encodeIP(ip c.Optional[string]) pgtype.Inet {
	inet := pgtype.Inet{Status: pgtype.Null}
	if !ip.IsPresent {
		return inet
	}
	if err := inet.Set(ip.Value); err != nil {
		return pgtype.Inet{Status: pgtype.Null}
	}
	return inet
}

func scanToken(row pgx.Row) (t token.Token, err error) {
	var (
		id         string
		kind       string
		userID     int64
		digest     string
		consumedAt *time.Time
		sourceIP   pgtype.Inet
	)
	err = row.Scan(
		&id,
		&kind,
		&userID,
		&digest,
		&t.CreatedAt,
		&t.ExpiresAt,
		&consumedAt,
		&t.Revoked,
		&sourceIP,
		&t.Metadata.UserAgent,
	)
	if err != nil {
		return token.Token{}, err
	}
	t.ID = token.ID(id)
	t.Kind = token.Kind(kind)
	t.UserID = user.ID(userID)
	t.Digest = token.Digest(digest)
	t.CreatedAt = t.CreatedAt.UTC()
	t.ExpiresAt = t.ExpiresAt.UTC()
	if consumedAt != nil {
		t.ConsumedAt = c.Some(consumedAt.UTC())
	}
	if sourceIP.Status == pgtype.Present && sourceIP.IPNet != nil {
		t.Metadata.SourceIP = c.Some(sourceIP.IPNet.IP.String())
	}
	return t, nil
}
