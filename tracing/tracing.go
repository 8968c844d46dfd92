// Package tracing configures structured logging for an application run and
// provides the instrumentation wrapper that surrounds every unit-of-work
// invocation with start/finish telemetry.
package tracing

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/groundworkdev/groundwork/app"
)

// Options controls how Setup builds the logger.
type Options struct {
	// Level is the minimum log level (debug, info, warn, error).
	// Defaults to info.
	Level string `yaml:"level,omitempty" json:"level,omitempty" toml:"level,omitempty"`
	// LogFile, when set, appends log lines to the given file instead of
	// stderr. Parent directories are created as needed.
	LogFile string `yaml:"log_file,omitempty" json:"log_file,omitempty" toml:"log_file,omitempty"`
	// JSON switches the encoding from console lines to JSON objects.
	JSON bool `yaml:"json,omitempty" json:"json,omitempty" toml:"json,omitempty"`
}

// Setup builds a logger from the options. The returned closer flushes
// buffered entries and releases the log file; call it when the run ends.
func Setup(opts Options) (*zap.Logger, func(), error) {
	level := zapcore.InfoLevel
	if opts.Level != "" {
		parsed, err := zapcore.ParseLevel(opts.Level)
		if err != nil {
			return nil, nil, fmt.Errorf("tracing: parse level %q: %w", opts.Level, err)
		}
		level = parsed
	}

	encCfg := zap.NewProductionEncoderConfig()
	encCfg.EncodeTime = zapcore.ISO8601TimeEncoder
	var encoder zapcore.Encoder
	if opts.JSON {
		encoder = zapcore.NewJSONEncoder(encCfg)
	} else {
		encCfg.EncodeLevel = zapcore.CapitalLevelEncoder
		encoder = zapcore.NewConsoleEncoder(encCfg)
	}

	sink := zapcore.AddSync(os.Stderr)
	closeFile := func() {}
	if opts.LogFile != "" {
		if err := os.MkdirAll(filepath.Dir(opts.LogFile), 0o755); err != nil {
			return nil, nil, fmt.Errorf("tracing: ensure log dir: %w", err)
		}
		f, err := os.OpenFile(opts.LogFile, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o644)
		if err != nil {
			return nil, nil, fmt.Errorf("tracing: open log file: %w", err)
		}
		sink = zapcore.AddSync(f)
		closeFile = func() { f.Close() }
	}

	logger := zap.New(zapcore.NewCore(encoder, sink, level))
	closer := func() {
		_ = logger.Sync()
		closeFile()
	}
	return logger, closer, nil
}

// Instrument returns an app.Instrument that emits a span around every unit
// of work: a debug entry when it starts and an info or error entry with the
// elapsed time when it finishes.
func Instrument(logger *zap.Logger) app.Instrument {
	return func(ctx context.Context, phase app.Phase, name string, run func(context.Context) error) error {
		logger.Debug("system started",
			zap.Stringer("phase", phase),
			zap.String("system", name),
		)
		startedAt := time.Now()
		err := run(ctx)
		elapsed := time.Since(startedAt)
		if err != nil {
			logger.Error("system failed",
				zap.Stringer("phase", phase),
				zap.String("system", name),
				zap.Duration("elapsed", elapsed),
				zap.Error(err),
			)
		} else {
			logger.Info("system finished",
				zap.Stringer("phase", phase),
				zap.String("system", name),
				zap.Duration("elapsed", elapsed),
			)
		}
		return err
	}
}
