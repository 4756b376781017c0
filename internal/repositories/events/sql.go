// Package events stores the account audit trail.
package events

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/fizisplayer/fplay/internal/dbx"
	"github.com/fizisplayer/fplay/internal/models"
	"github.com/google/uuid"
)

type SQLRepository struct {
	db dbx.DBTX
	d  dbx.Dialect
}

func NewSQLRepository(db dbx.DBTX, d dbx.Dialect) *SQLRepository {
	return &SQLRepository{db: db, d: d}
}

func (r *SQLRepository) Add(ctx context.Context, e *models.AuthEvent) error {
	if e.ID == "" {
		e.ID = uuid.NewString()
	}

	var userID sql.NullInt64
	if e.UserID != 0 {
		userID = sql.NullInt64{Int64: e.UserID, Valid: true}
	}

	query := `INSERT INTO auth_events (id, user_id, email, kind, detail, created_at) VALUES (?, ?, ?, ?, ?, ?)`
	_, err := r.db.ExecContext(ctx, r.d.Rebind(query),
		e.ID, userID, e.Email, string(e.Kind), e.Detail, e.CreatedAt.UTC())
	if err != nil {
		return fmt.Errorf("failed to add event[%s]: %w", e.Kind, err)
	}
	return nil
}

func (r *SQLRepository) ListByUser(ctx context.Context, userID int64, limit int) ([]models.AuthEvent, error) {
	query := `SELECT id, user_id, email, kind, detail, created_at FROM auth_events
		WHERE user_id = ?
		ORDER BY created_at DESC
		LIMIT ?`

	rows, err := r.db.QueryContext(ctx, r.d.Rebind(query), userID, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to list events[%d]: %w", userID, err)
	}
	defer rows.Close()

	var out []models.AuthEvent
	for rows.Next() {
		var (
			e    models.AuthEvent
			uid  sql.NullInt64
			kind string
		)
		if err := rows.Scan(&e.ID, &uid, &e.Email, &kind, &e.Detail, &e.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan event: %w", err)
		}
		e.UserID = uid.Int64
		e.Kind = models.EventKind(kind)
		out = append(out, e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to list events[%d]: %w", userID, err)
	}
	return out, nil
}
