package store

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/dongwook32/web-hub/types"
	"github.com/google/uuid"
)

// tokenTTL is how long a verification token stays usable. The window is
// enforced on use for every token, not only stored for some of them.
const tokenTTL = 30 * time.Minute

// VerificationRepository handles persistence for email verification
// tokens, including the atomic token-for-account exchange.
type VerificationRepository struct {
	db *sql.DB
}

func NewVerificationRepository(db *sql.DB) *VerificationRepository {
	return &VerificationRepository{db: db}
}

// CreateToken inserts a fresh single-use token for the email. Repeated
// calls for the same email create additional live tokens.
func (r *VerificationRepository) CreateToken(ctx context.Context, email string) (types.EmailVerification, error) {
	now := time.Now()
	v := types.EmailVerification{
		Email:     email,
		Token:     uuid.New().String(),
		CreatedAt: now,
		ExpiresAt: now.Add(tokenTTL),
	}

	const query = `
		INSERT INTO email_verifications (email, token, created_at, expires_at)
		VALUES ($1, $2, $3, $4)
		RETURNING id`
	if err := r.db.QueryRowContext(ctx, query, v.Email, v.Token, v.CreatedAt, v.ExpiresAt).Scan(&v.ID); err != nil {
		return types.EmailVerification{}, mapWriteErr(err)
	}
	return v, nil
}

func (r *VerificationRepository) GetByToken(ctx context.Context, token string) (types.EmailVerification, error) {
	const query = `
		SELECT id, email, token, created_at, expires_at
		FROM email_verifications
		WHERE token = $1`
	var v types.EmailVerification
	err := r.db.QueryRowContext(ctx, query, token).Scan(
		&v.ID,
		&v.Email,
		&v.Token,
		&v.CreatedAt,
		&v.ExpiresAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return types.EmailVerification{}, ErrNotFound
		}
		return types.EmailVerification{}, err
	}
	return v, nil
}

// CreateUserConsumingToken deletes the verification token and inserts the
// new user in one transaction. Either both writes persist or neither does:
// a consumed token without an account, or an account with a replayable
// token, cannot occur. A uniqueness race surfaces as ErrConflict and the
// token survives; a concurrently consumed token surfaces as ErrNotFound.
func (r *VerificationRepository) CreateUserConsumingToken(ctx context.Context, user types.User, tokenID int) (types.User, error) {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return types.User{}, err
	}
	defer tx.Rollback()

	const deleteQuery = `DELETE FROM email_verifications WHERE id = $1`
	result, err := tx.ExecContext(ctx, deleteQuery, tokenID)
	if err != nil {
		return types.User{}, err
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return types.User{}, err
	}
	if affected == 0 {
		return types.User{}, ErrNotFound
	}

	user.CreatedAt = time.Now()

	const insertQuery = `
		INSERT INTO users (student_id, password_hash, name, nickname, email, is_admin, birthdate, status, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, NULLIF($8, ''), $9)
		RETURNING id`
	if err := tx.QueryRowContext(
		ctx,
		insertQuery,
		user.StudentID,
		user.PasswordHash,
		user.Name,
		user.Nickname,
		user.Email,
		user.IsAdmin,
		user.Birthdate,
		user.Status,
		user.CreatedAt,
	).Scan(&user.ID); err != nil {
		return types.User{}, mapWriteErr(err)
	}

	if err := tx.Commit(); err != nil {
		return types.User{}, mapWriteErr(err)
	}
	return user, nil
}
