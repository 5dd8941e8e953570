// internal/logger/logger.go
package logger

import (
	"errors"
	"os"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"gopkg.in/natefinch/lumberjack.v2"
)

// Options configures New.
type Options struct {
	Debug bool
	// Console enables the pretty stdout core. The TUI keeps it off because
	// stdout belongs to the terminal renderer.
	Console bool
	// File is the rotated JSON log path; empty disables file output.
	File       string
	MaxSizeMB  int
	MaxBackups int
	MaxAgeDays int
	Compress   bool
	// Buffer receives a copy of every entry for the logs screen.
	Buffer *LogBuffer
}

// DefaultOptions returns rotation limits for a desktop session.
func DefaultOptions() Options {
	return Options{
		MaxSizeMB:  20,
		MaxBackups: 3,
		MaxAgeDays: 7,
		Compress:   true,
	}
}

// New builds a logger that tees into every enabled sink. With no sinks
// enabled it returns a no-op logger.
func New(opts Options) (*zap.Logger, func() error, error) {
	level := zapcore.InfoLevel
	if opts.Debug {
		level = zapcore.DebugLevel
	}

	var cores []zapcore.Core
	var rotator *lumberjack.Logger

	if opts.Console {
		console := zapcore.NewCore(
			zapcore.NewConsoleEncoder(prettyEncoderConfig()),
			zapcore.Lock(os.Stdout),
			level,
		)
		cores = append(cores, &FieldFilterCore{core: console})
	}

	if opts.File != "" {
		rotator = &lumberjack.Logger{
			Filename:   opts.File,
			MaxSize:    opts.MaxSizeMB,
			MaxBackups: opts.MaxBackups,
			MaxAge:     opts.MaxAgeDays,
			Compress:   opts.Compress,
		}
		encCfg := zap.NewProductionEncoderConfig()
		encCfg.TimeKey = "timestamp"
		encCfg.EncodeTime = zapcore.ISO8601TimeEncoder
		encCfg.EncodeDuration = zapcore.StringDurationEncoder
		cores = append(cores, zapcore.NewCore(zapcore.NewJSONEncoder(encCfg), zapcore.AddSync(rotator), level))
	}

	if opts.Buffer != nil {
		cores = append(cores, zapcore.NewCore(zapcore.NewJSONEncoder(bufferEncoderConfig()), opts.Buffer, level))
	}

	if len(cores) == 0 {
		return zap.NewNop(), func() error { return nil }, nil
	}

	logger := zap.New(zapcore.NewTee(cores...))
	closeFn := func() error {
		err := ignoreStdSyncErr(logger.Sync())
		if rotator != nil {
			err = errors.Join(err, rotator.Close())
		}
		return err
	}
	return logger, closeFn, nil
}

// ignoreStdSyncErr drops the errors Sync returns for terminals.
func ignoreStdSyncErr(err error) error {
	if err == nil {
		return nil
	}
	var pathErr *os.PathError
	if errors.As(err, &pathErr) && (pathErr.Path == "/dev/stdout" || pathErr.Path == "/dev/stderr") {
		return nil
	}
	return err
}
