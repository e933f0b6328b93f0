// Unless explicitly stated otherwise all files in this repository are licensed
// under the Apache License Version 2.0.
// This product includes software developed as part of the siltc project.

package log

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

func newObserved() (Logger, *observer.ObservedLogs) {
	core, logs := observer.New(zapcore.DebugLevel)
	return New(zap.New(core)), logs
}

func TestLoggerWritesFormattedMessages(t *testing.T) {
	l, logs := newObserved()
	l.Debugf("debug %d", 1)
	l.Infof("info %d", 2)
	l.Warnf("warn %d", 3)
	l.Errorf("error %d", 4)

	require.Equal(t, 4, logs.Len())
	entries := logs.All()
	assert.Equal(t, "debug 1", entries[0].Message)
	assert.Equal(t, zapcore.DebugLevel, entries[0].Level)
	assert.Equal(t, "info 2", entries[1].Message)
	assert.Equal(t, zapcore.InfoLevel, entries[1].Level)
	assert.Equal(t, "warn 3", entries[2].Message)
	assert.Equal(t, zapcore.WarnLevel, entries[2].Level)
	assert.Equal(t, "error 4", entries[3].Message)
	assert.Equal(t, zapcore.ErrorLevel, entries[3].Level)
}

func TestWithAttachesFields(t *testing.T) {
	l, logs := newObserved()
	scoped := l.With(zap.String("component", "girtext"))
	scoped.Infof("decoding")

	require.Equal(t, 1, logs.Len())
	entry := logs.All()[0]
	assert.Equal(t, "decoding", entry.Message)
	require.Len(t, entry.Context, 1)
	assert.Equal(t, "component", entry.Context[0].Key)
	assert.Equal(t, "girtext", entry.Context[0].String)
}

func TestSetGlobalAndGlobalRoundTrip(t *testing.T) {
	prev := Global()
	defer SetGlobal(prev)

	l, logs := newObserved()
	SetGlobal(l)
	assert.Equal(t, l, Global())

	Global().Warnf("via global")
	require.Equal(t, 1, logs.Len())
	assert.Equal(t, "via global", logs.All()[0].Message)
}
