// Package logging builds the zap logger used for run-level output and adapts it to the
// Printf-style logger interface used by the test framework.
package logging

import (
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// New returns a zap logger. With debug set it uses zap's development configuration with
// colored levels and debug messages enabled; otherwise it uses the production configuration at
// info level.
func New(debug bool) (*zap.Logger, error) {
	var cfg zap.Config
	if debug {
		cfg = zap.NewDevelopmentConfig()
		cfg.Level = zap.NewAtomicLevelAt(zap.DebugLevel)
		cfg.EncoderConfig.EncodeLevel = zapcore.CapitalColorLevelEncoder
	} else {
		cfg = zap.NewProductionConfig()
		cfg.Level = zap.NewAtomicLevelAt(zap.InfoLevel)
	}
	return cfg.Build()
}

// PrintfLogger is a Printf-style logger that writes each message to a zap logger at debug
// level.
type PrintfLogger struct {
	sugar *zap.SugaredLogger
}

// NewPrintfLogger wraps l. A nil l produces a logger that discards everything.
func NewPrintfLogger(l *zap.Logger) PrintfLogger {
	if l == nil {
		l = zap.NewNop()
	}
	return PrintfLogger{sugar: l.WithOptions(zap.AddCallerSkip(1)).Sugar()}
}

func (p PrintfLogger) Printf(message string, args ...interface{}) {
	p.sugar.Debugf(message, args...)
}
