package logging

import (
	"fmt"
	"io"
	"log/slog"
	"strings"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Options selects and tunes a Logger backend.
type Options struct {
	Backend string // "slog" or "zap"
	Format  string // "json" or "text"
	Level   string // "debug", "info", "warn", "error"
	Output  io.Writer
}

// New builds a Logger for the given options.
func New(o Options) (Logger, error) {
	switch strings.ToLower(o.Backend) {
	case "", "slog":
		return newSlog(o)
	case "zap":
		return newZap(o)
	default:
		return nil, fmt.Errorf("unknown log backend %q", o.Backend)
	}
}

func newSlog(o Options) (Logger, error) {
	var lvl slog.Level
	if err := lvl.UnmarshalText([]byte(levelOrDefault(o.Level))); err != nil {
		return nil, fmt.Errorf("log level: %w", err)
	}
	opts := &slog.HandlerOptions{Level: lvl}

	var h slog.Handler
	switch strings.ToLower(o.Format) {
	case "", "json":
		h = slog.NewJSONHandler(o.Output, opts)
	case "text":
		h = slog.NewTextHandler(o.Output, opts)
	default:
		return nil, fmt.Errorf("unknown log format %q", o.Format)
	}
	return NewSlogLogger(slog.New(h)), nil
}

func newZap(o Options) (Logger, error) {
	lvl, err := zapcore.ParseLevel(levelOrDefault(o.Level))
	if err != nil {
		return nil, fmt.Errorf("log level: %w", err)
	}

	encCfg := zap.NewProductionEncoderConfig()
	encCfg.EncodeTime = zapcore.ISO8601TimeEncoder

	var enc zapcore.Encoder
	switch strings.ToLower(o.Format) {
	case "", "json":
		enc = zapcore.NewJSONEncoder(encCfg)
	case "text":
		enc = zapcore.NewConsoleEncoder(encCfg)
	default:
		return nil, fmt.Errorf("unknown log format %q", o.Format)
	}

	core := zapcore.NewCore(enc, zapcore.AddSync(o.Output), lvl)
	return NewZapLogger(zap.New(core)), nil
}

func levelOrDefault(level string) string {
	if level == "" {
		return "info"
	}
	return level
}
