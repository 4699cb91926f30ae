// Package logging builds the zap loggers used by finplan commands.
// Operational events go to stderr; rendered output stays on stdout.
package logging

import (
	"os"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// New returns a console logger writing to stderr. Verbose lowers the level to debug;
// otherwise only warnings and errors are shown so interactive output stays clean.
func New(verbose bool) *zap.Logger {
	level := zapcore.WarnLevel
	if verbose {
		level = zapcore.DebugLevel
	}
	return newWithLevel(level, zapcore.AddSync(os.Stderr), false)
}

// NewServer returns a JSON info-level logger for `finplan serve`.
func NewServer(verbose bool) *zap.Logger {
	level := zapcore.InfoLevel
	if verbose {
		level = zapcore.DebugLevel
	}
	return newWithLevel(level, zapcore.AddSync(os.Stderr), true)
}

func newWithLevel(level zapcore.Level, out zapcore.WriteSyncer, json bool) *zap.Logger {
	encCfg := zap.NewDevelopmentEncoderConfig()
	encCfg.EncodeTime = zapcore.ISO8601TimeEncoder
	enc := zapcore.NewConsoleEncoder(encCfg)
	if json {
		prod := zap.NewProductionEncoderConfig()
		prod.EncodeTime = zapcore.ISO8601TimeEncoder
		enc = zapcore.NewJSONEncoder(prod)
	}
	return zap.New(zapcore.NewCore(enc, out, zap.NewAtomicLevelAt(level)))
}

// Nop returns a logger that discards everything.
func Nop() *zap.Logger {
	return zap.NewNop()
}
