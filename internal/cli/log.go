// Package cli implements the flowctl command-line interface.
//
// # Commands
//
//   - serve: run the flow service on the configured store
//   - validate: check a flow for structural problems
//   - describe: print the plain-text flow description
//   - export: re-encode a flow as JSON or YAML
//
// All commands support --verbose (-v) for debug-level logging and
// --config for a TOML configuration file. The logger and configuration
// travel through context.Context.
package cli

import (
	"context"
	"io"

	"github.com/charmbracelet/log"

	"github.com/meikuraledutech/flow/internal/config"
)

// newLogger creates a logger writing to w at the given level.
func newLogger(w io.Writer, level log.Level) *log.Logger {
	return log.NewWithOptions(w, log.Options{
		ReportTimestamp: true,
		TimeFormat:      "15:04:05.00",
		Level:           level,
		Prefix:          "flowctl",
	})
}

type ctxKey int

const (
	loggerKey ctxKey = iota
	configKey
)

func withLogger(ctx context.Context, l *log.Logger) context.Context {
	return context.WithValue(ctx, loggerKey, l)
}

// loggerFromContext returns the logger attached to ctx, or log.Default().
func loggerFromContext(ctx context.Context) *log.Logger {
	if l, ok := ctx.Value(loggerKey).(*log.Logger); ok {
		return l
	}
	return log.Default()
}

func withConfig(ctx context.Context, c config.Config) context.Context {
	return context.WithValue(ctx, configKey, c)
}

// configFromContext returns the loaded configuration, or the defaults.
func configFromContext(ctx context.Context) config.Config {
	if c, ok := ctx.Value(configKey).(config.Config); ok {
		return c
	}
	return config.Default()
}
