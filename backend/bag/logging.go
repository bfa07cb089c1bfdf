package bag

import (
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Logger is the logger used by all packages of pdfembed. It logs to stderr
// at info level unless changed with SetLogLevel.
var Logger *zap.SugaredLogger

var logLevel zap.AtomicLevel

func init() {
	logLevel = zap.NewAtomicLevelAt(zapcore.InfoLevel)
	cfg := zap.NewProductionConfig()
	cfg.Level = logLevel
	cfg.Encoding = "console"
	cfg.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder
	cfg.DisableStacktrace = true
	l, err := cfg.Build()
	if err != nil {
		l = zap.NewNop()
	}
	Logger = l.Sugar()
}

// Level type
type Level uint32

const (
	// ErrorLevel is for errors that should definitely be noted.
	ErrorLevel Level = iota
	// WarnLevel is for non-critical entries that deserve eyes.
	WarnLevel
	// InfoLevel is for general operational entries.
	InfoLevel
	// DebugLevel is very verbose.
	DebugLevel
)

// SetLogLevel sets the logging level of Logger.
func SetLogLevel(level Level) {
	switch level {
	case ErrorLevel:
		logLevel.SetLevel(zapcore.ErrorLevel)
	case WarnLevel:
		logLevel.SetLevel(zapcore.WarnLevel)
	case InfoLevel:
		logLevel.SetLevel(zapcore.InfoLevel)
	case DebugLevel:
		logLevel.SetLevel(zapcore.DebugLevel)
	}
}

// ParseLevel converts a level name (error, warn, info, debug) to a Level.
func ParseLevel(name string) (Level, bool) {
	switch name {
	case "error":
		return ErrorLevel, true
	case "warn", "warning":
		return WarnLevel, true
	case "info":
		return InfoLevel, true
	case "debug":
		return DebugLevel, true
	}
	return InfoLevel, false
}
