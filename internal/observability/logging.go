// Package observability builds the structured logger shared by the titan
// packages.
package observability

import (
	"fmt"
	"os"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/cory-johannsen/titan/internal/config"
)

// LoggerName is the root name of every logger built here.
const LoggerName = "titan"

// NewLogger creates a structured logger writing to stderr, leaving stdout
// free for command results.
//
// Precondition: cfg.Level must be one of "debug", "info", "warn", "error".
// Precondition: cfg.Format must be "json" or "console".
// Postcondition: Returns a zap.Logger named LoggerName or a non-nil error.
func NewLogger(cfg config.LoggingConfig) (*zap.Logger, error) {
	return NewLoggerTo(cfg, zapcore.Lock(os.Stderr))
}

// NewLoggerTo is NewLogger with an explicit sink.
//
// Precondition: out must be non-nil.
func NewLoggerTo(cfg config.LoggingConfig, out zapcore.WriteSyncer) (*zap.Logger, error) {
	level, err := zapcore.ParseLevel(cfg.Level)
	if err != nil {
		return nil, fmt.Errorf("parsing log level %q: %w", cfg.Level, err)
	}
	enc, opts, err := encoderFor(cfg.Format)
	if err != nil {
		return nil, err
	}
	core := zapcore.NewCore(enc, out, zap.NewAtomicLevelAt(level))
	return zap.New(core, opts...).Named(LoggerName), nil
}

// encoderFor maps a format name to its encoder and logger options. JSON
// carries stack traces on errors; console output stays compact.
func encoderFor(format string) (zapcore.Encoder, []zap.Option, error) {
	switch format {
	case "json":
		ec := zap.NewProductionEncoderConfig()
		ec.EncodeTime = zapcore.ISO8601TimeEncoder
		return zapcore.NewJSONEncoder(ec), []zap.Option{zap.AddCaller(), zap.AddStacktrace(zapcore.ErrorLevel)}, nil
	case "console":
		ec := zap.NewDevelopmentEncoderConfig()
		ec.EncodeTime = zapcore.ISO8601TimeEncoder
		return zapcore.NewConsoleEncoder(ec), []zap.Option{zap.AddCaller()}, nil
	default:
		return nil, nil, fmt.Errorf("unknown log format %q", format)
	}
}
