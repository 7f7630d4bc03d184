package user

import (
	"context"
	"errors"
	c "orderform/internal/core/domain/common"
	e "orderform/internal/core/domain/errors"
	"orderform/internal/core/domain/user"
	"orderform/internal/db"
	"time"

	"github.com/jackc/pgx/v4"
)

const EMAIL_CONSTRAINT_NAME = "user_email_idx"

const userColumns = `id, email, username, first_name, last_name, display_name,
	password_hash, is_enabled, created_at, activated_at`

type PgxUserRepository struct {
	db db.DBTX
}

func NewPgxRepository(dbtx db.DBTX) *PgxUserRepository {
	if dbtx == nil {
		panic(e.NewNilArgumentError("db"))
	}
	return &PgxUserRepository{db: dbtx}
}

func (r *PgxUserRepository) Create(ctx context.Context, input user.CreateUserInput) (u user.User, err error) {
	row := r.db.QueryRow(
		ctx,
		`INSERT INTO "user" (email, username, first_name, last_name, display_name, password_hash, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING `+userColumns,
		string(input.Email),
		input.Username,
		input.FirstName,
		input.LastName,
		input.DisplayName,
		string(input.PasswordHash),
		input.CreatedAt,
	)
	u, err = scanUser(row)
	if db.IsUniqueViolation(err, EMAIL_CONSTRAINT_NAME) {
		return u, user.ErrEmailAlreadyExists
	}
	if err != nil {
		return u, err
	}
	return u, u.Validate()
}

func (r *PgxUserRepository) GetByID(ctx context.Context, id user.ID) (u user.User, err error) {
	row := r.db.QueryRow(ctx, `SELECT `+userColumns+` FROM "user" WHERE id = $1`, int64(id))
	return r.get(row)
}

func (r *PgxUserRepository) GetByEmail(ctx context.Context, email c.Email) (u user.User, err error) {
	row := r.db.QueryRow(ctx, `SELECT `+userColumns+` FROM "user" WHERE email = $1`, string(email))
	return r.get(row)
}

// Activate sets activated_at once, repeated calls keep the first timestamp.
func (r *PgxUserRepository) Activate(ctx context.Context, id user.ID, at time.Time) (u user.User, err error) {
	row := r.db.QueryRow(
		ctx,
		`UPDATE "user" SET activated_at = COALESCE(activated_at, $2)
		WHERE id = $1
		RETURNING `+userColumns,
		int64(id),
		at,
	)
	return r.get(row)
}

func (r *PgxUserRepository) SetPassword(ctx context.Context, id user.ID, password user.PasswordHash) error {
	tag, err := r.db.Exec(ctx, `UPDATE "user" SET password_hash = $2 WHERE id = $1`, int64(id), string(password))
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return user.ErrUserDoesNotExist
	}
	return nil
}

func (r *PgxUserRepository) get(row pgx.Row) (u user.User, err error) {
	u, err = scanUser(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return u, user.ErrUserDoesNotExist
	}
	if err != nil {
		return u, err
	}
	return u, u.Validate()
}

func scanUser(row pgx.Row) (u user.User, err error) {
	var (
		id           int64
		email        string
		passwordHash string
		activatedAt  *time.Time
	)
	err = row.Scan(
		&id,
		&email,
		&u.Username,
		&u.FirstName,
		&u.LastName,
		&u.DisplayName,
		&passwordHash,
		&u.IsEnabled,
		&u.CreatedAt,
		&activatedAt,
	)
	if err != nil {
		return user.User{}, err
	}
	u.ID = user.ID(id)
	u.Email = c.Email(email)
	u.PasswordHash = user.PasswordHash(passwordHash)
	u.CreatedAt = u.CreatedAt.UTC()
	if activatedAt != nil {
		u.ActivatedAt = c.Some(activatedAt.UTC())
	}
	return u, nil
}
