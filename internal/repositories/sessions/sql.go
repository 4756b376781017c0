// Package sessions stores bearer sessions bound to users.
package sessions

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

type SQLRepository struct {
	db dbx.DBTX
	d  dbx.Dialect
}

func NewSQLRepository(db dbx.DBTX, d dbx.Dialect) *SQLRepository {
	return &SQLRepository{db: db, d: d}
}

func (r *SQLRepository) Create(ctx context.Context, s *models.Session) (*models.Session, error) {
	query := `INSERT INTO sessions (user_id, session_token, device_info, ip_address, created_at, expires_at, last_activity)
		VALUES (?, ?, ?, ?, ?, ?, ?)
		RETURNING id`

	err := r.db.QueryRowContext(ctx, r.d.Rebind(query),
		s.UserID, s.Token, s.DeviceInfo, s.IPAddress,
		s.CreatedAt.UTC(), s.ExpiresAt.UTC(), s.LastActivity.UTC()).Scan(&s.ID)
	if err != nil {
		return nil, fmt.Errorf("failed to create session: %w", err)
	}
	return s, nil
}

func (r *SQLRepository) GetWithUser(ctx context.Context, token string) (*models.SessionWithUser, error) {
	query := `SELECT s.id, s.user_id, s.session_token, s.device_info, s.ip_address,
			s.created_at, s.expires_at, s.last_activity,
			u.email, u.username, u.role, u.avatar_path, u.is_active
		FROM sessions s
		JOIN users u ON u.id = s.user_id
		WHERE s.session_token = ?`

	var (
		out    models.SessionWithUser
		role   string
		avatar sql.NullString
	)
	err := r.db.QueryRowContext(ctx, r.d.Rebind(query), token).Scan(
		&out.ID, &out.UserID, &out.Token, &out.DeviceInfo, &out.IPAddress,
		&out.CreatedAt, &out.ExpiresAt, &out.LastActivity,
		&out.Email, &out.Username, &role, &avatar, &out.IsActive,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, common.ErrNotFound
		}
		return nil, fmt.Errorf("failed to get session: %w", err)
	}
	out.Role = models.Role(role)
	out.AvatarPath = avatar.String
	return &out, nil
}

func (r *SQLRepository) TouchActivity(ctx context.Context, token string, at time.Time) error {
	_, err := r.db.ExecContext(ctx,
		r.d.Rebind(`UPDATE sessions SET last_activity = ? WHERE session_token = ?`), at.UTC(), token)
	if err != nil {
		return fmt.Errorf("failed to touch session: %w", err)
	}
	return nil
}

func (r *SQLRepository) Delete(ctx context.Context, token string) error {
	_, err := r.db.ExecContext(ctx, r.d.Rebind(`DELETE FROM sessions WHERE session_token = ?`), token)
	if err != nil {
		return fmt.Errorf("failed to delete session: %w", err)
	}
	return nil
}

func (r *SQLRepository) DeleteByUser(ctx context.Context, userID int64) (int64, error) {
	return r.deleteWhere(ctx, `DELETE FROM sessions WHERE user_id = ?`, userID)
}

func (r *SQLRepository) DeleteExpired(ctx context.Context, now time.Time) (int64, error) {
	return r.deleteWhere(ctx, `DELETE FROM sessions WHERE expires_at <= ?`, now.UTC())
}

func (r *SQLRepository) deleteWhere(ctx context.Context, query string, arg any) (int64, error) {
	res, err := r.db.ExecContext(ctx, r.d.Rebind(query), arg)
	if err != nil {
		return 0, fmt.Errorf("failed to delete sessions: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("failed to delete sessions: %w", err)
	}
	return n, nil
}
