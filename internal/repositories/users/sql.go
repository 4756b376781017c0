// Package users implements the user table of the credential store.
package users

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/fizisplayer/fplay/internal/common"
	"github.com/fizisplayer/fplay/internal/dbx"
	"github.com/fizisplayer/fplay/internal/models"
)

const userColumns = `id, email, username, password_hash, salt, role, is_verified,
	verification_code, verification_purpose, verification_code_expires, verification_misses,
	created_at, is_active, last_login, login_attempts, locked_until, avatar_path`

type SQLRepository struct {
	db dbx.DBTX
	d  dbx.Dialect
}

func NewSQLRepository(db dbx.DBTX, d dbx.Dialect) *SQLRepository {
	return &SQLRepository{db: db, d: d}
}

func (r *SQLRepository) Create(ctx context.Context, user *models.User) (*models.User, error) {
	query := `INSERT INTO users (email, username, password_hash, salt, role, is_verified, created_at, is_active)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
		RETURNING id`

	err := r.db.QueryRowContext(ctx, r.d.Rebind(query),
		user.Email, user.Username, user.PasswordHash, user.Salt, string(user.Role),
		user.IsVerified, user.CreatedAt.UTC(), user.IsActive).Scan(&user.ID)
	if err != nil {
		if dbx.IsUniqueViolation(err) {
			return nil, common.ErrDuplicateEmail
		}
		return nil, fmt.Errorf("db error: %w", err)
	}

	return user, nil
}

func (r *SQLRepository) GetByEmail(ctx context.Context, email string) (*models.User, error) {
	query := `SELECT ` + userColumns + ` FROM users WHERE email = ?`
	return r.getOne(ctx, query, email)
}

func (r *SQLRepository) GetByID(ctx context.Context, id int64) (*models.User, error) {
	query := `SELECT ` + userColumns + ` FROM users WHERE id = ?`
	return r.getOne(ctx, query, id)
}

func (r *SQLRepository) getOne(ctx context.Context, query string, arg any) (*models.User, error) {
	var (
		u                   models.User
		role                string
		code, purpose, avat sql.NullString
		codeExp, last, lock sql.NullTime
		misses              int
	)

	err := r.db.QueryRowContext(ctx, r.d.Rebind(query), arg).Scan(
		&u.ID, &u.Email, &u.Username, &u.PasswordHash, &u.Salt, &role, &u.IsVerified,
		&code, &purpose, &codeExp, &misses,
		&u.CreatedAt, &u.IsActive, &last, &u.LoginAttempts, &lock, &avat,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, common.ErrNotFound
		}
		return nil, fmt.Errorf("db error: %w", err)
	}

	u.Role = models.Role(role)
	u.AvatarPath = avat.String
	if code.Valid && code.String != "" {
		u.Pending = &models.PendingCode{
			Code:      code.String,
			Purpose:   models.CodePurpose(purpose.String),
			ExpiresAt: codeExp.Time,
			Misses:    misses,
		}
	}
	u.LastLogin = timePtr(last)
	u.LockedUntil = timePtr(lock)

	return &u, nil
}

func (r *SQLRepository) SetPendingCode(ctx context.Context, id int64, code models.PendingCode) error {
	return r.exec(ctx, `UPDATE users
		SET verification_code = ?, verification_purpose = ?, verification_code_expires = ?, verification_misses = 0
		WHERE id = ?`,
		code.Code, string(code.Purpose), code.ExpiresAt.UTC(), id)
}

func (r *SQLRepository) ClearPendingCode(ctx context.Context, id int64) error {
	return r.exec(ctx, `UPDATE users
		SET verification_code = NULL, verification_purpose = NULL, verification_code_expires = NULL, verification_misses = 0
		WHERE id = ?`, id)
}

func (r *SQLRepository) RecordCodeMiss(ctx context.Context, id int64) (int, error) {
	query := `UPDATE users SET verification_misses = verification_misses + 1
		WHERE id = ? RETURNING verification_misses`

	var n int
	if err := r.db.QueryRowContext(ctx, r.d.Rebind(query), id).Scan(&n); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return 0, common.ErrNotFound
		}
		return 0, fmt.Errorf("db error: %w", err)
	}
	return n, nil
}

func (r *SQLRepository) MarkVerified(ctx context.Context, id int64) error {
	return r.exec(ctx, `UPDATE users
		SET is_verified = ?, verification_code = NULL, verification_purpose = NULL, verification_code_expires = NULL,
			verification_misses = 0
		WHERE id = ?`, true, id)
}

func (r *SQLRepository) RecordFailedLogin(ctx context.Context, id int64, attempts int, lockedUntil *time.Time) error {
	var lock any
	if lockedUntil != nil {
		lock = lockedUntil.UTC()
	}
	return r.exec(ctx, `UPDATE users SET login_attempts = ?, locked_until = ? WHERE id = ?`,
		attempts, lock, id)
}

func (r *SQLRepository) ResetLoginFailures(ctx context.Context, id int64) error {
	return r.exec(ctx, `UPDATE users SET login_attempts = 0, locked_until = NULL WHERE id = ?`, id)
}

func (r *SQLRepository) TouchLastLogin(ctx context.Context, id int64, at time.Time) error {
	return r.exec(ctx, `UPDATE users SET last_login = ? WHERE id = ?`, at.UTC(), id)
}

func (r *SQLRepository) UpdateUsername(ctx context.Context, id int64, username string) error {
	return r.exec(ctx, `UPDATE users SET username = ? WHERE id = ?`, username, id)
}

func (r *SQLRepository) UpdateAvatarPath(ctx context.Context, id int64, path string) error {
	return r.exec(ctx, `UPDATE users SET avatar_path = ? WHERE id = ?`, path, id)
}

func (r *SQLRepository) SetActive(ctx context.Context, id int64, active bool) error {
	return r.exec(ctx, `UPDATE users SET is_active = ? WHERE id = ?`, active, id)
}

func (r *SQLRepository) exec(ctx context.Context, query string, args ...any) error {
	res, err := r.db.ExecContext(ctx, r.d.Rebind(query), args...)
	if err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	if n == 0 {
		return common.ErrNotFound
	}
	return nil
}

func timePtr(t sql.NullTime) *time.Time {
	if !t.Valid {
		return nil
	}
	v := t.Time
	return &v
}
