package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
)

type lookupFunc func(key string) (string, bool)

var osLookup lookupFunc = os.LookupEnv

// defaultEnvFile is read when present and no -env flag was given.
const defaultEnvFile = ".env"

// parseEnv applies FPLAY_* variables. Values come from the dotenv file first
// and are overridden by the real process environment.
func parseEnv(config *Config, envPath string, lookup lookupFunc) error {
	fileVars, err := readDotenv(envPath)
	if err != nil {
		return err
	}

	get := func(key string) (string, bool) {
		if v, ok := lookup(key); ok {
			return v, true
		}
		v, ok := fileVars[key]
		return v, ok
	}

	str := func(key string, dst *string) {
		if v, ok := get(key); ok {
			*dst = v
		}
	}
	str("FPLAY_DB_DRIVER", &config.DatabaseDriver)
	str("FPLAY_DB_DSN", &config.DatabaseDSN)
	str("FPLAY_MAIL_MODE", &config.MailMode)
	str("FPLAY_SMTP_HOST", &config.SMTPHost)
	str("FPLAY_SMTP_USERNAME", &config.SMTPUsername)
	str("FPLAY_SMTP_PASSWORD", &config.SMTPPassword)
	str("FPLAY_MAIL_FROM", &config.MailFrom)
	str("FPLAY_TOKEN_FILE", &config.TokenFile)
	str("FPLAY_LOG_LEVEL", &config.LogLevel)

	if v, ok := get("FPLAY_SMTP_PORT"); ok {
		port, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("FPLAY_SMTP_PORT: %w", err)
		}
		config.SMTPPort = port
	}

	if v, ok := get("FPLAY_ADMIN_EMAILS"); ok {
		config.AdminEmails = splitList(v)
	}

	return nil
}

// readDotenv loads an explicit dotenv file, or the default one if it exists.
func readDotenv(path string) (map[string]string, error) {
	explicit := path != ""
	if !explicit {
		path = defaultEnvFile
	}

	vars, err := godotenv.Read(path)
	if err != nil {
		if !explicit && errors.Is(err, fs.ErrNotExist) {
			return map[string]string{}, nil
		}
		return nil, fmt.Errorf("read env file %s: %w", path, err)
	}
	return vars, nil
}

func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	return out
}
