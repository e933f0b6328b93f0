// Unless explicitly stated otherwise all files in this repository are licensed
// under the Apache License Version 2.0.
// This product includes software developed as part of the siltc project.

// Package log is the thin logging facade every other siltc package talks
// to. Call sites never import zap directly; this mirrors the teacher
// corpus's convention of wrapping the logging library behind a narrow
// package-local Component so the backend can be swapped without touching
// call sites.
package log

import (
	"go.uber.org/zap"
)

// Logger is the facade implemented by this package's default logger and
// by test doubles.
type Logger interface {
	Debugf(format string, args ...interface{})
	Infof(format string, args ...interface{})
	Warnf(format string, args ...interface{})
	Errorf(format string, args ...interface{})
	With(fields ...zap.Field) Logger
	Sync() error
}

type zapLogger struct {
	sugar *zap.SugaredLogger
}

var global Logger = mustNewDevelopment()

func mustNewDevelopment() Logger {
	cfg := zap.NewDevelopmentConfig()
	cfg.DisableStacktrace = true
	l, err := cfg.Build(zap.AddCallerSkip(1))
	if err != nil {
		// zap.NewDevelopmentConfig().Build only fails on a malformed
		// encoder/level config, which is a fixed literal above.
		panic(err)
	}
	return &zapLogger{sugar: l.Sugar()}
}

// New wraps an existing *zap.Logger as a Logger.
func New(l *zap.Logger) Logger {
	return &zapLogger{sugar: l.Sugar()}
}

// SetGlobal replaces the package-level default logger, for use by cmd/
// entry points that configure verbosity from flags.
func SetGlobal(l Logger) { global = l }

// Global returns the current package-level default logger.
func Global() Logger { return global }

func (z *zapLogger) Debugf(format string, args ...interface{}) { z.sugar.Debugf(format, args...) }
func (z *zapLogger) Infof(format string, args ...interface{})  { z.sugar.Infof(format, args...) }
func (z *zapLogger) Warnf(format string, args ...interface{})  { z.sugar.Warnf(format, args...) }
func (z *zapLogger) Errorf(format string, args ...interface{}) { z.sugar.Errorf(format, args...) }

func (z *zapLogger) With(fields ...zap.Field) Logger {
	return &zapLogger{sugar: z.sugar.Desugar().With(fields...).Sugar()}
}

func (z *zapLogger) Sync() error { return z.sugar.Sync() }
