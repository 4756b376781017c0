// Package config assembles the account core configuration from defaults,
// an optional JSON or YAML file, dotenv/environment variables and flags,
// in that order of precedence (later wins).
package config

import (
	"fmt"
	"time"

	"github.com/fizisplayer/fplay/internal/cryptox"
	"github.com/fizisplayer/fplay/internal/dbx"
	"github.com/fizisplayer/fplay/internal/flagx"
)

const (
	MailSMTP    = "smtp"
	MailConsole = "console"
)

// Config is passed explicitly to every constructor; nothing reads it globally.
//
// SMTPUsername and SMTPPassword are only ever read from the environment.
type Config struct {
	DatabaseDriver string
	DatabaseDSN    string

	PasswordAlgorithm  string
	PasswordIterations int

	CodeTTL          time.Duration
	CodeMaxMisses    int
	SessionTTL       time.Duration
	LockoutThreshold int
	LockoutDuration  time.Duration
	LoginConfirmTTL  time.Duration

	MailMode          string
	SMTPHost          string
	SMTPPort          int
	SMTPUsername      string
	SMTPPassword      string
	MailFrom          string
	MailSubject       string
	MailRatePerMinute float64
	MailBurst         int

	AdminEmails []string

	TokenFile string

	LogBackend string
	LogFormat  string
	LogLevel   string
}

// LoadDefaults fills c with values suitable for a local single-user install.
func (c *Config) LoadDefaults() {
	c.DatabaseDriver = string(dbx.SQLite)
	c.DatabaseDSN = "users.db"
	c.PasswordAlgorithm = string(cryptox.PBKDF2SHA512)
	c.PasswordIterations = cryptox.DefaultIterations
	c.CodeTTL = 10 * time.Minute
	c.CodeMaxMisses = 5
	c.SessionTTL = 30 * 24 * time.Hour
	c.LockoutThreshold = 5
	c.LockoutDuration = 30 * time.Minute
	c.LoginConfirmTTL = 10 * time.Minute
	c.MailMode = MailConsole
	c.SMTPHost = "smtp.gmail.com"
	c.SMTPPort = 587
	c.MailSubject = "fplay verification code"
	c.MailRatePerMinute = 6
	c.MailBurst = 3
	c.TokenFile = "session.token"
	c.LogBackend = "slog"
	c.LogFormat = "text"
	c.LogLevel = "info"
}

// Load builds a Config from args (normally os.Args[1:]) and the process environment.
func Load(args []string) (*Config, error) {
	return load(args, osLookup)
}

func load(args []string, lookup lookupFunc) (*Config, error) {
	cfg := &Config{}
	cfg.LoadDefaults()

	src := flagx.SourceFlags(args)
	if err := parseFile(cfg, src.ConfigPath); err != nil {
		return nil, err
	}
	if err := parseEnv(cfg, src.EnvPath, lookup); err != nil {
		return nil, err
	}
	if err := parseFlags(cfg, args); err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate rejects settings the core cannot run with.
func (c *Config) Validate() error {
	if _, err := dbx.ParseDialect(c.DatabaseDriver); err != nil {
		return err
	}
	if _, err := cryptox.NewHasher(cryptox.Algorithm(c.PasswordAlgorithm), c.PasswordIterations); err != nil {
		return err
	}
	switch c.MailMode {
	case MailSMTP, MailConsole:
	default:
		return fmt.Errorf("unknown mail mode %q", c.MailMode)
	}
	for name, d := range map[string]time.Duration{
		"code ttl":          c.CodeTTL,
		"session ttl":       c.SessionTTL,
		"lockout duration":  c.LockoutDuration,
		"login confirm ttl": c.LoginConfirmTTL,
	} {
		if d <= 0 {
			return fmt.Errorf("%s must be positive, got %s", name, d)
		}
	}
	if c.CodeMaxMisses < 1 {
		return fmt.Errorf("code max misses must be at least 1, got %d", c.CodeMaxMisses)
	}
	if c.LockoutThreshold < 1 {
		return fmt.Errorf("lockout threshold must be at least 1, got %d", c.LockoutThreshold)
	}
	return nil
}
