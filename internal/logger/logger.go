// Package logger holds the process-wide zap logger used by the worker
// commands. HTTP handlers log through echo's own logger instead.
package logger

import (
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Log is a nop until Init runs, so early code paths can log safely.
var Log = zap.NewNop()

// Init replaces the global logger. Unknown level strings fall back to info.
func Init(level string) {
	lvl, err := zapcore.ParseLevel(level)
	if err != nil {
		lvl = zapcore.InfoLevel
	}

	cfg := zap.Config{
		Encoding:         "json",
		Level:            zap.NewAtomicLevelAt(lvl),
		OutputPaths:      []string{"stdout"},
		ErrorOutputPaths: []string{"stderr"},
		EncoderConfig:    zap.NewProductionEncoderConfig(),
		InitialFields:    map[string]any{"app": "campaign-gateway"},
	}

	l, err := cfg.Build()
	if err != nil {
		panic(err)
	}
	Log = l
}
