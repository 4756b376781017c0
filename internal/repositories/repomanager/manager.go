// Package repomanager vends dialect-aware repositories bound to a DBTX and
// runs schema migrations.
package repomanager

import (
	"context"
	"database/sql"

	"github.com/fizisplayer/fplay/internal/dbx"
	"github.com/fizisplayer/fplay/internal/migrations"
	"github.com/fizisplayer/fplay/internal/repositories/events"
	"github.com/fizisplayer/fplay/internal/repositories/playlists"
	"github.com/fizisplayer/fplay/internal/repositories/sessions"
	"github.com/fizisplayer/fplay/internal/repositories/settings"
	"github.com/fizisplayer/fplay/internal/repositories/users"
)

type RepositoryManager interface {
	RunMigrations(context.Context, *sql.DB) error
	Users(db dbx.DBTX) users.Repository
	Sessions(db dbx.DBTX) sessions.Repository
	Settings(db dbx.DBTX) settings.Repository
	Playlists(db dbx.DBTX) playlists.Repository
	Events(db dbx.DBTX) events.Repository
}

// SQLRepositoryManager serves both SQLite and PostgreSQL; only placeholders
// and migrations differ between them.
type SQLRepositoryManager struct {
	dialect dbx.Dialect
}

func NewRepositoryManager(d dbx.Dialect) *SQLRepositoryManager {
	return &SQLRepositoryManager{dialect: d}
}

func (m *SQLRepositoryManager) Users(db dbx.DBTX) users.Repository {
	return users.NewSQLRepository(db, m.dialect)
}

func (m *SQLRepositoryManager) Sessions(db dbx.DBTX) sessions.Repository {
	return sessions.NewSQLRepository(db, m.dialect)
}

func (m *SQLRepositoryManager) Settings(db dbx.DBTX) settings.Repository {
	return settings.NewSQLRepository(db, m.dialect)
}

func (m *SQLRepositoryManager) Playlists(db dbx.DBTX) playlists.Repository {
	return playlists.NewSQLRepository(db, m.dialect)
}

func (m *SQLRepositoryManager) Events(db dbx.DBTX) events.Repository {
	return events.NewSQLRepository(db, m.dialect)
}

// migrateUp is a seam for tests.
var migrateUp = migrations.Up

// RunMigrations applies the embedded migrations for the manager's dialect.
func (m *SQLRepositoryManager) RunMigrations(ctx context.Context, db *sql.DB) error {
	return migrateUp(ctx, db, m.dialect)
}
