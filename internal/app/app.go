// Package app wires configuration, storage, mail delivery and the account
// core into the interactive console.
package app

import (
	"context"
	"database/sql"
	"fmt"
	"io"

	"github.com/fizisplayer/fplay/internal/cli"
	"github.com/fizisplayer/fplay/internal/config"
	"github.com/fizisplayer/fplay/internal/dbx"
	"github.com/fizisplayer/fplay/internal/logging"
	"github.com/fizisplayer/fplay/internal/notify"
	"github.com/fizisplayer/fplay/internal/repositories/repomanager"
	"github.com/fizisplayer/fplay/internal/services"
)

type App struct {
	config  *config.Config
	logger  logging.Logger
	db      *sql.DB
	account *services.AccountService
	console *cli.App
}

// NewApp opens and migrates the store and builds the account core. The
// console reads commands from in and writes to out; log output goes to logOut.
func NewApp(ctx context.Context, c *config.Config, in io.Reader, out, logOut io.Writer) (*App, error) {
	logger, err := logging.New(logging.Options{
		Backend: c.LogBackend,
		Format:  c.LogFormat,
		Level:   c.LogLevel,
		Output:  logOut,
	})
	if err != nil {
		return nil, err
	}

	d, err := dbx.ParseDialect(c.DatabaseDriver)
	if err != nil {
		return nil, err
	}
	db, err := dbx.Open(ctx, d, c.DatabaseDSN)
	if err != nil {
		return nil, fmt.Errorf("db init error: %w", err)
	}

	rm := repomanager.NewRepositoryManager(d)
	if err := rm.RunMigrations(ctx, db); err != nil {
		_ = db.Close()
		return nil, err
	}

	sender, err := newSender(c, out)
	if err != nil {
		_ = db.Close()
		return nil, err
	}

	account, err := services.NewAccountService(db, rm, sender, logger, c)
	if err != nil {
		_ = db.Close()
		return nil, err
	}

	return &App{
		config:  c,
		logger:  logger,
		db:      db,
		account: account,
		console: cli.NewApp(account, logger, c.TokenFile, in, out),
	}, nil
}

// newSender picks the delivery channel for verification codes and applies
// the configured rate limit.
func newSender(c *config.Config, out io.Writer) (notify.Sender, error) {
	var sender notify.Sender
	switch c.MailMode {
	case config.MailSMTP:
		s, err := notify.NewSMTPSender(notify.SMTPConfig{
			Host:     c.SMTPHost,
			Port:     c.SMTPPort,
			Username: c.SMTPUsername,
			Password: c.SMTPPassword,
			From:     c.MailFrom,
			Subject:  c.MailSubject,
			CodeTTL:  c.CodeTTL,
		})
		if err != nil {
			return nil, err
		}
		sender = s
	case config.MailConsole:
		sender = notify.NewConsoleSender(out)
	default:
		return nil, fmt.Errorf("unknown mail mode %q", c.MailMode)
	}
	return notify.NewThrottled(sender, c.MailRatePerMinute, c.MailBurst), nil
}

// Run purges expired sessions and serves the console until the user exits.
func (app *App) Run(ctx context.Context) {
	app.logger.Info(ctx, "starting fplay", "driver", app.config.DatabaseDriver, "mail", app.config.MailMode)

	if _, err := app.account.PurgeExpiredSessions(ctx); err != nil {
		app.logger.Warn(ctx, "session purge failed", "error", err)
	}

	app.console.Run(ctx)
}

// Close releases the store and flushes buffered logs.
func (app *App) Close() error {
	if s, ok := app.logger.(interface{ Sync() error }); ok {
		_ = s.Sync()
	}
	return app.db.Close()
}
