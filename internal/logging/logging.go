// Package logging builds the zap loggers used by the CLI, the dashboard and the dev backend.
package logging

import (
	"os"
	"path/filepath"
	"strings"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

type Options struct {
	Level  string
	Format string
	// File, when set, receives all output instead of stderr. The dashboard uses this so
	// log lines never land on its screen.
	File string
	// Development enables stack traces on warnings and caller annotations.
	Development bool
}

func New(opts Options) (*zap.Logger, error) {
	var cfg zap.Config
	if opts.Development {
		cfg = zap.NewDevelopmentConfig()
	} else {
		cfg = zap.NewProductionConfig()
		cfg.Sampling = nil
	}

	switch strings.ToLower(strings.TrimSpace(opts.Format)) {
	case "json":
		cfg.Encoding = "json"
	default:
		cfg.Encoding = "console"
	}

	cfg.Level = zap.NewAtomicLevelAt(zapcore.InfoLevel)
	if lvl := strings.TrimSpace(opts.Level); lvl != "" {
		if err := cfg.Level.UnmarshalText([]byte(lvl)); err != nil {
			cfg.Level = zap.NewAtomicLevelAt(zapcore.InfoLevel)
		}
	}

	cfg.EncoderConfig.TimeKey = "timestamp"
	cfg.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder

	if file := strings.TrimSpace(opts.File); file != "" {
		if err := os.MkdirAll(filepath.Dir(file), 0o755); err != nil {
			return nil, err
		}
		cfg.OutputPaths = []string{file}
		cfg.ErrorOutputPaths = []string{file}
	} else {
		cfg.OutputPaths = []string{"stderr"}
		cfg.ErrorOutputPaths = []string{"stderr"}
	}

	return cfg.Build()
}

// Must is New for callers that prefer a no-op logger over an error.
func Must(opts Options) *zap.Logger {
	l, err := New(opts)
	if err != nil {
		return zap.NewNop()
	}
	return l
}
