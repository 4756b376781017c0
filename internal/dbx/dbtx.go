// Package dbx holds the database plumbing shared by the repositories: the
// DBTX handle accepted by every repository constructor, transactions, and
// the SQLite/PostgreSQL dialect differences.
package dbx

import (
	"context"
	"database/sql"
	"fmt"
)

// DBTX is what repositories run their queries on. Passing a *sql.Tx instead
// of the *sql.DB makes several repositories share one transaction.
type DBTX interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

// WithTx runs fn in a transaction. It commits when fn returns nil and rolls
// back on an error or a panic; the panic is re-raised after the rollback.
//
// A new account and its settings row are written together like this:
//
//	err := dbx.WithTx(ctx, db, nil, func(ctx context.Context, tx dbx.DBTX) error {
//	    if _, err := rm.Users(tx).Create(ctx, user); err != nil {
//	        return err
//	    }
//	    return rm.Settings(tx).Upsert(ctx, user.ID, models.DefaultSettings())
//	})
//
// SQLite handles are limited to one connection (see Open), so fn must only use
// tx. Touching db inside fn blocks forever.
func WithTx(ctx context.Context, db *sql.DB, opts *sql.TxOptions, fn func(ctx context.Context, tx DBTX) error) (err error) {
	tx, err := db.BeginTx(ctx, opts)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}

	defer func() {
		if p := recover(); p != nil {
			_ = tx.Rollback()
			panic(p)
		}
		if err != nil {
			_ = tx.Rollback()
			return
		}
		if cerr := tx.Commit(); cerr != nil {
			err = fmt.Errorf("commit tx: %w", cerr)
		}
	}()

	return fn(ctx, tx)
}
