// Package playlists stores serialized track lists per (user, playlist name).
package playlists

import (
	"context"
	"fmt"
	"time"

	"github.com/fizisplayer/fplay/internal/common"
	"github.com/fizisplayer/fplay/internal/dbx"
)

type SQLRepository struct {
	db  dbx.DBTX
	d   dbx.Dialect
	now func() time.Time
}

func NewSQLRepository(db dbx.DBTX, d dbx.Dialect) *SQLRepository {
	return &SQLRepository{db: db, d: d, now: time.Now}
}

func (r *SQLRepository) ReplaceAll(ctx context.Context, userID int64, records []Record) error {
	if _, err := r.db.ExecContext(ctx, r.d.Rebind(`DELETE FROM playlists WHERE user_id = ?`), userID); err != nil {
		return fmt.Errorf("failed to clear playlists[%d]: %w", userID, err)
	}

	insert := r.d.Rebind(`INSERT INTO playlists (user_id, playlist_name, tracks, created_at) VALUES (?, ?, ?, ?)`)
	created := r.now().UTC()
	for _, rec := range records {
		if _, err := r.db.ExecContext(ctx, insert, userID, rec.Name, rec.Tracks, created); err != nil {
			return fmt.Errorf("failed to insert playlist[%s]: %w", rec.Name, err)
		}
	}
	return nil
}

func (r *SQLRepository) List(ctx context.Context, userID int64) ([]Record, error) {
	rows, err := r.db.QueryContext(ctx,
		r.d.Rebind(`SELECT playlist_name, tracks FROM playlists WHERE user_id = ? ORDER BY id`), userID)
	if err != nil {
		return nil, fmt.Errorf("failed to list playlists[%d]: %w", userID, err)
	}
	defer rows.Close()

	var out []Record
	for rows.Next() {
		var rec Record
		if err := rows.Scan(&rec.Name, &rec.Tracks); err != nil {
			return nil, fmt.Errorf("failed to scan playlist: %w", err)
		}
		out = append(out, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to list playlists[%d]: %w", userID, err)
	}
	return out, nil
}

func (r *SQLRepository) Delete(ctx context.Context, userID int64, name string) error {
	res, err := r.db.ExecContext(ctx,
		r.d.Rebind(`DELETE FROM playlists WHERE user_id = ? AND playlist_name = ?`), userID, name)
	if err != nil {
		return fmt.Errorf("failed to delete playlist[%s]: %w", name, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to delete playlist[%s]: %w", name, err)
	}
	if n == 0 {
		return common.ErrNotFound
	}
	return nil
}
