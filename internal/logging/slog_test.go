package logging

import (
	"bytes"
	"context"
	"log/slog"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func newTestLogger(t *testing.T) (*SlogLogger, *bytes.Buffer) {
	t.Helper()
	var buf bytes.Buffer
	h := slog.NewTextHandler(&buf, &slog.HandlerOptions{Level: slog.LevelDebug})
	return NewSlogLogger(slog.New(h)), &buf
}

func TestSlogLogger_Levels(t *testing.T) {
	log, buf := newTestLogger(t)
	ctx := context.Background()

	log.Debug(ctx, "code issued", "purpose", "login")
	log.Info(ctx, "session created", "user_id", 2)
	log.Warn(ctx, "failed login", "remaining", 3)
	log.Error(ctx, "store failure", "op", "save_settings")

	out := buf.String()
	for _, want := range []string{
		"level=DEBUG", `msg="code issued"`, "purpose=login",
		"level=INFO", `msg="session created"`, "user_id=2",
		"level=WARN", `msg="failed login"`, "remaining=3",
		"level=ERROR", `msg="store failure"`, "op=save_settings",
	} {
		assert.Contains(t, out, want)
	}
}

func TestSlogLogger_With(t *testing.T) {
	log, buf := newTestLogger(t)

	log.With("component", "account", "email", "a@b.c").
		Info(context.Background(), "registered", "user_id", 1)

	line := strings.TrimSpace(buf.String())
	assert.Contains(t, line, "component=account")
	assert.Contains(t, line, "email=a@b.c")
	assert.Contains(t, line, "user_id=1")
}
