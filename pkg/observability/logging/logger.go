// Package logging provides the leveled logger shared by all reflectpause
// packages. It wraps zap so callers never depend on the logging backend
// directly.
package logging

import (
	"os"
	"strings"
	"sync"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

var (
	mu     sync.RWMutex
	logger = newLogger(zapcore.InfoLevel, "console")
)

func newLogger(level zapcore.Level, format string) *zap.SugaredLogger {
	encoderConfig := zapcore.EncoderConfig{
		TimeKey:        "timestamp",
		LevelKey:       "level",
		NameKey:        "logger",
		CallerKey:      "caller",
		FunctionKey:    zapcore.OmitKey,
		MessageKey:     "message",
		StacktraceKey:  "stacktrace",
		LineEnding:     zapcore.DefaultLineEnding,
		EncodeLevel:    zapcore.LowercaseLevelEncoder,
		EncodeTime:     zapcore.ISO8601TimeEncoder,
		EncodeDuration: zapcore.SecondsDurationEncoder,
		EncodeCaller:   zapcore.ShortCallerEncoder,
	}

	var encoder zapcore.Encoder
	if format == "json" {
		encoder = zapcore.NewJSONEncoder(encoderConfig)
	} else {
		encoder = zapcore.NewConsoleEncoder(encoderConfig)
	}

	core := zapcore.NewCore(encoder, zapcore.AddSync(os.Stderr), level)
	return zap.New(core, zap.AddCaller(), zap.AddCallerSkip(1)).Sugar()
}

// Init configures the global logger with an explicit level and format.
// Level accepts zap's textual levels (debug, info, warn, error); format is
// either "json" or "console".
func Init(level, format string) error {
	var zapLevel zapcore.Level
	if err := zapLevel.UnmarshalText([]byte(strings.TrimSpace(level))); err != nil {
		return err
	}

	mu.Lock()
	defer mu.Unlock()
	logger = newLogger(zapLevel, format)
	return nil
}

// InitLoggerFromEnv configures the global logger from REFLECTPAUSE_LOG_LEVEL
// and REFLECTPAUSE_LOG_FORMAT. Unset variables keep the defaults (info,
// console). The configured level is returned so callers can report it.
func InitLoggerFromEnv() (string, error) {
	level := os.Getenv("REFLECTPAUSE_LOG_LEVEL")
	if level == "" {
		level = "info"
	}
	format := os.Getenv("REFLECTPAUSE_LOG_FORMAT")
	if format == "" {
		format = "console"
	}
	if err := Init(level, format); err != nil {
		return "", err
	}
	return level, nil
}

func get() *zap.SugaredLogger {
	mu.RLock()
	defer mu.RUnlock()
	return logger
}

// Debugf logs a formatted message at debug level.
func Debugf(format string, args ...interface{}) {
	get().Debugf(format, args...)
}

// Infof logs a formatted message at info level.
func Infof(format string, args ...interface{}) {
	get().Infof(format, args...)
}

// Warnf logs a formatted message at warn level.
func Warnf(format string, args ...interface{}) {
	get().Warnf(format, args...)
}

// Errorf logs a formatted message at error level.
func Errorf(format string, args ...interface{}) {
	get().Errorf(format, args...)
}

// Sync flushes any buffered log entries.
func Sync() {
	_ = get().Sync()
}
