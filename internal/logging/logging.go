// Package logging builds the process logger.
package logging

import (
	"fmt"
	"io"
	"os"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

func encoderConfig() zapcore.EncoderConfig {
	cfg := zap.NewProductionEncoderConfig()
	cfg.TimeKey = "timestamp"
	cfg.EncodeTime = zapcore.ISO8601TimeEncoder
	return cfg
}

// build tees INFO and WARN to out, ERROR and above to errOut, and every level
// to file when it is non-nil.
func build(out, errOut, file zapcore.WriteSyncer) *zap.Logger {
	enc := zapcore.NewJSONEncoder(encoderConfig())

	belowError := zap.LevelEnablerFunc(func(l zapcore.Level) bool {
		return l >= zapcore.InfoLevel && l < zapcore.ErrorLevel
	})
	atLeastError := zap.LevelEnablerFunc(func(l zapcore.Level) bool {
		return l >= zapcore.ErrorLevel
	})

	cores := []zapcore.Core{
		zapcore.NewCore(enc, out, belowError),
		zapcore.NewCore(enc.Clone(), errOut, atLeastError),
	}
	if file != nil {
		cores = append(cores, zapcore.NewCore(enc.Clone(), file, zapcore.DebugLevel))
	}
	return zap.New(zapcore.NewTee(cores...), zap.AddCaller())
}

// New returns a JSON logger writing INFO/WARN to stdout and ERROR+ to
// stderr. If logPath is set, every level is also appended to that file.
// The returned cleanup flushes the logger and closes the file.
func New(logPath string) (*zap.Logger, func(), error) {
	var file zapcore.WriteSyncer
	var f *os.File
	if logPath != "" {
		var err error
		f, err = os.OpenFile(logPath, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0644)
		if err != nil {
			return nil, nil, fmt.Errorf("opening log file: %w", err)
		}
		file = zapcore.AddSync(f)
	}

	logger := build(zapcore.Lock(os.Stdout), zapcore.Lock(os.Stderr), file)
	cleanup := func() {
		_ = logger.Sync()
		if f != nil {
			f.Close()
		}
	}
	return logger, cleanup, nil
}

// NewWriters builds the same logger over arbitrary writers.
func NewWriters(out, errOut, file io.Writer) *zap.Logger {
	var fileSyncer zapcore.WriteSyncer
	if file != nil {
		fileSyncer = zapcore.AddSync(file)
	}
	return build(zapcore.AddSync(out), zapcore.AddSync(errOut), fileSyncer)
}

// Named returns a child logger for a component. A nil base yields a no-op
// logger.
func Named(base *zap.Logger, component string) *zap.Logger {
	if base == nil {
		return zap.NewNop()
	}
	return base.Named(component)
}
