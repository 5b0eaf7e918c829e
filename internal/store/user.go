package store

import (
	"context"
	"database/sql"
	"errors"

	"github.com/dongwook32/web-hub/types"
)

// UserRepository handles persistence for user accounts.
type UserRepository struct {
	db *sql.DB
}

func NewUserRepository(db *sql.DB) *UserRepository {
	return &UserRepository{db: db}
}

const userColumns = `id, student_id, name, nickname, email, is_admin, birthdate, status, password_hash, created_at`

func scanUser(row interface{ Scan(...any) error }) (types.User, error) {
	var user types.User
	var status sql.NullString
	err := row.Scan(
		&user.ID,
		&user.StudentID,
		&user.Name,
		&user.Nickname,
		&user.Email,
		&user.IsAdmin,
		&user.Birthdate,
		&status,
		&user.PasswordHash,
		&user.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return types.User{}, ErrNotFound
		}
		return types.User{}, err
	}
	user.Status = status.String
	return user, nil
}

func (r *UserRepository) GetByID(ctx context.Context, id int) (types.User, error) {
	const query = `SELECT ` + userColumns + ` FROM users WHERE id = $1`
	return scanUser(r.db.QueryRowContext(ctx, query, id))
}

func (r *UserRepository) GetByStudentID(ctx context.Context, studentID string) (types.User, error) {
	const query = `SELECT ` + userColumns + ` FROM users WHERE student_id = $1`
	return scanUser(r.db.QueryRowContext(ctx, query, studentID))
}

func (r *UserRepository) GetByEmail(ctx context.Context, email string) (types.User, error) {
	const query = `SELECT ` + userColumns + ` FROM users WHERE email = $1`
	return scanUser(r.db.QueryRowContext(ctx, query, email))
}

func (r *UserRepository) GetByNickname(ctx context.Context, nickname string) (types.User, error) {
	const query = `SELECT ` + userColumns + ` FROM users WHERE nickname = $1`
	return scanUser(r.db.QueryRowContext(ctx, query, nickname))
}

func (r *UserRepository) List(ctx context.Context) ([]types.User, error) {
	const query = `SELECT ` + userColumns + ` FROM users ORDER BY id`
	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	users := make([]types.User, 0)
	for rows.Next() {
		user, err := scanUser(rows)
		if err != nil {
			return nil, err
		}
		users = append(users, user)
	}
	return users, rows.Err()
}

// SetAdmin flips the role flag and returns the updated user.
func (r *UserRepository) SetAdmin(ctx context.Context, id int, isAdmin bool) (types.User, error) {
	const query = `UPDATE users SET is_admin = $1 WHERE id = $2`
	result, err := r.db.ExecContext(ctx, query, isAdmin, id)
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
	return r.GetByID(ctx, id)
}
