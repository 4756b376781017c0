package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/fizisplayer/fplay/internal/timex"
	"gopkg.in/yaml.v3"
)

// FileConfig is the on-disk shape of the config file. Keys missing from the
// file keep their previous value. Mail credentials have no key here.
type FileConfig struct {
	DatabaseDriver     string         `json:"database_driver" yaml:"database_driver"`
	DatabaseDSN        string         `json:"database_dsn" yaml:"database_dsn"`
	PasswordAlgorithm  string         `json:"password_algorithm" yaml:"password_algorithm"`
	PasswordIterations int            `json:"password_iterations" yaml:"password_iterations"`
	CodeTTL            timex.Duration `json:"code_ttl" yaml:"code_ttl"`
	CodeMaxMisses      int            `json:"code_max_misses" yaml:"code_max_misses"`
	SessionTTL         timex.Duration `json:"session_ttl" yaml:"session_ttl"`
	LockoutThreshold   int            `json:"lockout_threshold" yaml:"lockout_threshold"`
	LockoutDuration    timex.Duration `json:"lockout_duration" yaml:"lockout_duration"`
	LoginConfirmTTL    timex.Duration `json:"login_confirm_ttl" yaml:"login_confirm_ttl"`
	MailMode           string         `json:"mail_mode" yaml:"mail_mode"`
	SMTPHost           string         `json:"smtp_host" yaml:"smtp_host"`
	SMTPPort           int            `json:"smtp_port" yaml:"smtp_port"`
	MailFrom           string         `json:"mail_from" yaml:"mail_from"`
	MailSubject        string         `json:"mail_subject" yaml:"mail_subject"`
	MailRatePerMinute  float64        `json:"mail_rate_per_minute" yaml:"mail_rate_per_minute"`
	MailBurst          int            `json:"mail_burst" yaml:"mail_burst"`
	AdminEmails        []string       `json:"admin_emails" yaml:"admin_emails"`
	TokenFile          string         `json:"token_file" yaml:"token_file"`
	LogBackend         string         `json:"log_backend" yaml:"log_backend"`
	LogFormat          string         `json:"log_format" yaml:"log_format"`
	LogLevel           string         `json:"log_level" yaml:"log_level"`
}

// parseFile overlays the file at path onto config. The format follows the
// extension: .yaml/.yml is YAML, anything else JSON. An empty path is a no-op.
func parseFile(config *Config, path string) error {
	if path == "" {
		return nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read config file: %w", err)
	}

	fc := toFile(config)
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		err = yaml.Unmarshal(data, fc)
	default:
		err = json.Unmarshal(data, fc)
	}
	if err != nil {
		return fmt.Errorf("parse config file %s: %w", path, err)
	}

	fromFile(config, fc)
	return nil
}

func toFile(c *Config) *FileConfig {
	return &FileConfig{
		DatabaseDriver:     c.DatabaseDriver,
		DatabaseDSN:        c.DatabaseDSN,
		PasswordAlgorithm:  c.PasswordAlgorithm,
		PasswordIterations: c.PasswordIterations,
		CodeTTL:            timex.Duration{Duration: c.CodeTTL},
		CodeMaxMisses:      c.CodeMaxMisses,
		SessionTTL:         timex.Duration{Duration: c.SessionTTL},
		LockoutThreshold:   c.LockoutThreshold,
		LockoutDuration:    timex.Duration{Duration: c.LockoutDuration},
		LoginConfirmTTL:    timex.Duration{Duration: c.LoginConfirmTTL},
		MailMode:           c.MailMode,
		SMTPHost:           c.SMTPHost,
		SMTPPort:           c.SMTPPort,
		MailFrom:           c.MailFrom,
		MailSubject:        c.MailSubject,
		MailRatePerMinute:  c.MailRatePerMinute,
		MailBurst:          c.MailBurst,
		AdminEmails:        c.AdminEmails,
		TokenFile:          c.TokenFile,
		LogBackend:         c.LogBackend,
		LogFormat:          c.LogFormat,
		LogLevel:           c.LogLevel,
	}
}

func fromFile(c *Config, fc *FileConfig) {
	c.DatabaseDriver = fc.DatabaseDriver
	c.DatabaseDSN = fc.DatabaseDSN
	c.PasswordAlgorithm = fc.PasswordAlgorithm
	c.PasswordIterations = fc.PasswordIterations
	c.CodeTTL = fc.CodeTTL.Duration
	c.CodeMaxMisses = fc.CodeMaxMisses
	c.SessionTTL = fc.SessionTTL.Duration
	c.LockoutThreshold = fc.LockoutThreshold
	c.LockoutDuration = fc.LockoutDuration.Duration
	c.LoginConfirmTTL = fc.LoginConfirmTTL.Duration
	c.MailMode = fc.MailMode
	c.SMTPHost = fc.SMTPHost
	c.SMTPPort = fc.SMTPPort
	c.MailFrom = fc.MailFrom
	c.MailSubject = fc.MailSubject
	c.MailRatePerMinute = fc.MailRatePerMinute
	c.MailBurst = fc.MailBurst
	c.AdminEmails = fc.AdminEmails
	c.TokenFile = fc.TokenFile
	c.LogBackend = fc.LogBackend
	c.LogFormat = fc.LogFormat
	c.LogLevel = fc.LogLevel
}
