// Package logger provides a lightweight, centralized logging facility
// with configurable verbosity levels.
//
// Verbosity levels (in increasing order):
//
//	Error < Warn < Info < Debug < Trace
//
// Messages are written through a zap sugared logger. By default the sink is
// a console encoder on stderr; Init can redirect it to a rotating file.
//
// Example usage:
//
//	logger.SetVerbosity(3) // Debug
//	logger.Infof("pricing started")
//	logger.Debugf("alpha=%f numx=%d", alpha, numx)
package logger

import (
	"os"
	"sync/atomic"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"gopkg.in/natefinch/lumberjack.v2"
)

// Level represents a logging verbosity level.
// Higher values mean more verbose logging.
type Level int

const (
	Error Level = iota // Error logs only critical failures.
	Warn               // Warn logs degraded but non-fatal conditions.
	Info               // Info logs high-level application progress.
	Debug              // Debug logs detailed diagnostic information.
	Trace              // Trace logs very fine-grained execution details.
)

// Config controls where log output goes.
type Config struct {
	Verbosity  int    `toml:"verbosity"`
	File       string `toml:"file"` // empty means stderr
	MaxSizeMB  int    `toml:"max_size_mb"`
	MaxBackups int    `toml:"max_backups"`
	JSON       bool   `toml:"json"`
}

// current holds the active verbosity level.
// Only messages with level <= current are logged.
var current atomic.Int32

var sugar atomic.Pointer[zap.SugaredLogger]

func init() {
	current.Store(int32(Info))
	Use(newZap(zapcore.AddSync(os.Stderr), false))
}

// Init configures verbosity and the output sink. It is typically called once
// during startup, after the run configuration has been loaded.
func Init(cfg Config) {
	SetVerbosity(cfg.Verbosity)

	if cfg.File == "" {
		Use(newZap(zapcore.AddSync(os.Stderr), cfg.JSON))
		return
	}

	maxSize := cfg.MaxSizeMB
	if maxSize <= 0 {
		maxSize = 100
	}
	maxBackups := cfg.MaxBackups
	if maxBackups <= 0 {
		maxBackups = 3
	}
	ws := zapcore.AddSync(&lumberjack.Logger{
		Filename:   cfg.File,
		MaxSize:    maxSize,
		MaxBackups: maxBackups,
	})
	Use(newZap(ws, cfg.JSON))
}

// Use replaces the underlying zap logger.
func Use(l *zap.Logger) {
	sugar.Store(l.WithOptions(zap.AddCallerSkip(2)).Sugar())
}

// SetVerbosity sets the global logging verbosity.
// Out-of-range values fall back to Info.
func SetVerbosity(v int) {
	if v < int(Error) || v > int(Trace) {
		v = int(Info)
	}
	current.Store(int32(v))
}

// Verbosity returns the active level.
func Verbosity() Level {
	return Level(current.Load())
}

func newZap(ws zapcore.WriteSyncer, json bool) *zap.Logger {
	encConfig := zapcore.EncoderConfig{
		TimeKey:        "T",
		LevelKey:       "L",
		CallerKey:      "C",
		MessageKey:     "M",
		StacktraceKey:  "S",
		EncodeLevel:    zapcore.CapitalLevelEncoder,
		EncodeTime:     zapcore.TimeEncoderOfLayout("2006/01/02 15:04:05"),
		EncodeDuration: zapcore.SecondsDurationEncoder,
		EncodeCaller:   zapcore.ShortCallerEncoder,
	}

	var enc zapcore.Encoder
	if json {
		enc = zapcore.NewJSONEncoder(encConfig)
	} else {
		enc = zapcore.NewConsoleEncoder(encConfig)
	}

	// verbosity gating happens in logf, the core accepts everything
	core := zapcore.NewCore(enc, ws, zapcore.DebugLevel)
	return zap.New(core, zap.AddCaller())
}

// logf checks verbosity and delegates formatting and output to zap.
func logf(l Level, format string, args ...any) {
	if Level(current.Load()) < l {
		return
	}
	s := sugar.Load()
	switch l {
	case Error:
		s.Errorf(format, args...)
	case Warn:
		s.Warnf(format, args...)
	case Info:
		s.Infof(format, args...)
	case Debug:
		s.Debugf(format, args...)
	default:
		s.Debugf("[TRACE] "+format, args...)
	}
}

// Errorf logs an error-level message.
// Use this for failures that require attention.
func Errorf(format string, args ...any) {
	logf(Error, format, args...)
}

// Warnf logs a warning, e.g. a numerically unstable grid.
func Warnf(format string, args ...any) {
	logf(Warn, format, args...)
}

// Infof logs an informational message.
// Use this for major lifecycle events.
func Infof(format string, args ...any) {
	logf(Info, format, args...)
}

// Debugf logs debugging information.
func Debugf(format string, args ...any) {
	logf(Debug, format, args...)
}

// Tracef logs very detailed execution traces.
// Use this sparingly due to high volume.
func Tracef(format string, args ...any) {
	logf(Trace, format, args...)
}

// Sync flushes any buffered output.
func Sync() {
	_ = sugar.Load().Sync()
}
