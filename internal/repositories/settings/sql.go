// Package settings stores the per-user player settings row.
package settings

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

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

func (r *SQLRepository) Upsert(ctx context.Context, userID int64, s models.Settings) error {
	query := `INSERT INTO settings (user_id, volume, repeat_mode, shuffle_mode, current_playlist)
		VALUES (?, ?, ?, ?, ?)
		ON CONFLICT (user_id) DO UPDATE SET
			volume = excluded.volume,
			repeat_mode = excluded.repeat_mode,
			shuffle_mode = excluded.shuffle_mode,
			current_playlist = excluded.current_playlist`

	_, err := r.db.ExecContext(ctx, r.d.Rebind(query),
		userID, s.Volume, s.Repeat, s.Shuffle, s.CurrentPlaylist)
	if err != nil {
		return fmt.Errorf("failed to save settings[%d]: %w", userID, err)
	}
	return nil
}

func (r *SQLRepository) Get(ctx context.Context, userID int64) (*models.Settings, error) {
	query := `SELECT volume, repeat_mode, shuffle_mode, current_playlist FROM settings WHERE user_id = ?`

	var s models.Settings
	err := r.db.QueryRowContext(ctx, r.d.Rebind(query), userID).
		Scan(&s.Volume, &s.Repeat, &s.Shuffle, &s.CurrentPlaylist)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, common.ErrNotFound
		}
		return nil, fmt.Errorf("failed to get settings[%d]: %w", userID, err)
	}
	return &s, nil
}
