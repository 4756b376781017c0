package config

import (
	"flag"
	"io"

	"github.com/fizisplayer/fplay/internal/flagx"
)

// parseFlags applies command-line overrides. Only the flags below are
// looked at; -c/-config/-env are consumed earlier by flagx.SourceFlags.
//
//	-driver string      database driver (sqlite, pgx)
//	-d string           database DSN
//	-mail string        mail mode (smtp, console)
//	-token-file string  session token cache path
//	-iterations int     PBKDF2 iteration count
//	-log-backend string slog or zap
//	-log-format string  json or text
//	-log-level string   debug, info, warn, error
func parseFlags(config *Config, args []string) error {
	args = flagx.FilterArgs(args, []string{
		"-driver", "-d", "-mail", "-token-file", "-iterations",
		"-log-backend", "-log-format", "-log-level",
	})

	fs := flag.NewFlagSet("fplay", flag.ContinueOnError)
	fs.SetOutput(io.Discard)

	fs.StringVar(&config.DatabaseDriver, "driver", config.DatabaseDriver, "database driver")
	fs.StringVar(&config.DatabaseDSN, "d", config.DatabaseDSN, "database DSN")
	fs.StringVar(&config.MailMode, "mail", config.MailMode, "mail mode")
	fs.StringVar(&config.TokenFile, "token-file", config.TokenFile, "session token cache path")
	fs.IntVar(&config.PasswordIterations, "iterations", config.PasswordIterations, "PBKDF2 iterations")
	fs.StringVar(&config.LogBackend, "log-backend", config.LogBackend, "log backend")
	fs.StringVar(&config.LogFormat, "log-format", config.LogFormat, "log format")
	fs.StringVar(&config.LogLevel, "log-level", config.LogLevel, "log level")

	return fs.Parse(args)
}
