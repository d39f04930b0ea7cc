package logger

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
	gormlogger "gorm.io/gorm/logger"
)

func newObservedGormLogger(level gormlogger.LogLevel, opts ...GormLoggerOption) (*GormLogger, *observer.ObservedLogs) {
	core, recorded := observer.New(zapcore.DebugLevel)
	return NewGormLogger(zap.New(core), level, opts...), recorded
}

func TestGormLogger_TraceLogsQuery(t *testing.T) {
	gl, recorded := newObservedGormLogger(gormlogger.Info)

	gl.Trace(context.Background(), time.Now(), func() (string, int64) {
		return "SELECT * FROM items", 3
	}, nil)

	logs := recorded.All()
	require.Len(t, logs, 1)
	assert.Equal(t, "SQL Query", logs[0].Message)
	assert.EqualValues(t, 3, logs[0].ContextMap()["rows"])
}

func TestGormLogger_TraceLogsError(t *testing.T) {
	gl, recorded := newObservedGormLogger(gormlogger.Error)

	gl.Trace(context.Background(), time.Now(), func() (string, int64) {
		return "SELECT broken", 0
	}, errors.New("syntax error"))

	logs := recorded.All()
	require.Len(t, logs, 1)
	assert.Equal(t, "SQL Error", logs[0].Message)
}

func TestGormLogger_IgnoresRecordNotFound(t *testing.T) {
	gl, recorded := newObservedGormLogger(gormlogger.Error)

	gl.Trace(context.Background(), time.Now(), func() (string, int64) {
		return "SELECT * FROM items WHERE code = 'X'", 0
	}, gormlogger.ErrRecordNotFound)

	assert.Empty(t, recorded.All())
}

func TestGormLogger_SlowQueryWarns(t *testing.T) {
	gl, recorded := newObservedGormLogger(gormlogger.Warn,
		WithSlowThreshold(time.Nanosecond))

	gl.Trace(context.Background(), time.Now().Add(-time.Second), func() (string, int64) {
		return "SELECT pg_sleep(1)", 0
	}, nil)

	logs := recorded.All()
	require.Len(t, logs, 1)
	assert.Equal(t, zapcore.WarnLevel, logs[0].Level)
}

func TestGormLogger_SilentLogsNothing(t *testing.T) {
	gl, recorded := newObservedGormLogger(gormlogger.Silent)

	gl.Trace(context.Background(), time.Now(), func() (string, int64) {
		return "SELECT 1", 1
	}, nil)

	assert.Empty(t, recorded.All())
}

func TestMapGormLogLevel(t *testing.T) {
	assert.Equal(t, gormlogger.Silent, MapGormLogLevel("silent"))
	assert.Equal(t, gormlogger.Error, MapGormLogLevel("error"))
	assert.Equal(t, gormlogger.Info, MapGormLogLevel("debug"))
	assert.Equal(t, gormlogger.Warn, MapGormLogLevel("anything"))
}
