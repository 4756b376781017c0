// Package repotest opens migrated in-memory databases for repository and
// service tests.
package repotest

import (
	"context"
	"database/sql"
	"testing"
	"time"

	"github.com/fizisplayer/fplay/internal/dbx"
	"github.com/fizisplayer/fplay/internal/migrations"
	"github.com/stretchr/testify/require"
)

// NewSQLite returns a fresh, migrated in-memory SQLite handle closed with the test.
func NewSQLite(t *testing.T) *sql.DB {
	t.Helper()
	ctx := context.Background()
	db, err := dbx.Open(ctx, dbx.SQLite, ":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })
	require.NoError(t, migrations.Up(ctx, db, dbx.SQLite))
	return db
}

// SeedUser inserts a verified, active user and returns its id.
func SeedUser(t *testing.T, db *sql.DB, email string) int64 {
	t.Helper()
	var id int64
	err := db.QueryRowContext(context.Background(),
		`INSERT INTO users (email, username, password_hash, salt, is_verified, created_at)
		 VALUES (?, ?, 'h', 's', 1, ?) RETURNING id`,
		email, email, time.Now().UTC()).Scan(&id)
	require.NoError(t, err)
	return id
}
