// Package logger builds the zap logger shared by the server and its tools.
package logger

import (
	"fmt"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// New returns a logger tagged with namespace. Development mode writes
// human-readable console lines; otherwise JSON.
func New(namespace, level string, development bool) (*zap.Logger, error) {
	lvl, err := zapcore.ParseLevel(level)
	if err != nil {
		return nil, fmt.Errorf("parse log level %q: %w", level, err)
	}

	cfg := zap.NewProductionConfig()
	if development {
		cfg = zap.NewDevelopmentConfig()
	}
	cfg.Level = zap.NewAtomicLevelAt(lvl)
	cfg.OutputPaths = []string{"stdout"}
	cfg.InitialFields = map[string]any{
		"namespace": namespace,
	}

	return cfg.Build()
}

// Must is New that panics, for tools where a broken logger is fatal.
func Must(namespace, level string, development bool) *zap.Logger {
	l, err := New(namespace, level, development)
	if err != nil {
		panic(err)
	}
	return l
}
