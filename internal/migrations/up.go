package migrations

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/fizisplayer/fplay/internal/dbx"
	"github.com/pressly/goose/v3"
)

// gooseUpContext is a seam for testing goose.UpContext.
var gooseUpContext = func(ctx context.Context, db *sql.DB, dir string, opts ...goose.OptionsFunc) error {
	return goose.UpContext(ctx, db, dir, opts...)
}

// Up applies every pending migration for the dialect.
func Up(ctx context.Context, db *sql.DB, d dbx.Dialect) error {
	goose.SetBaseFS(Migrations)
	if err := goose.SetDialect(d.Goose()); err != nil {
		return fmt.Errorf("goose dialect: %w", err)
	}
	if err := gooseUpContext(ctx, db, d.MigrationsDir()); err != nil {
		return fmt.Errorf("migrate: %w", err)
	}
	return nil
}
