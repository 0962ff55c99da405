package logging

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"

	"github.com/errhub/sentry-errorhandler/pkg/errhandler"
)

func newObservedHub(opts ...Option) (*Hub, *observer.ObservedLogs) {
	core, logs := observer.New(zapcore.DebugLevel)
	return New(zap.New(core), opts...), logs
}

func TestHub_LogsReportWithScope(t *testing.T) {
	hub, logs := newObservedHub()

	store := errhandler.NewStore()
	store.SetUser(map[string]any{"id": 1})
	store.SetTag("region", "eu")
	store.SetExtra("attempt", 2)

	reporter := errhandler.NewReporter(
		errhandler.WithHubAccessor(errhandler.StaticHub(hub)),
		errhandler.WithContextProvider(store),
	)
	require.NoError(t, reporter.HandleException(errors.New("connection refused"), "error1"))

	entries := logs.FilterMessage("error captured").All()
	require.Len(t, entries, 1)

	entry := entries[0]
	fields := entry.ContextMap()
	assert.Equal(t, zapcore.ErrorLevel, entry.Level)
	assert.Equal(t, "connection refused", fields["message"])
	assert.Equal(t, "errors.errorString", fields["error_type"])
	assert.Len(t, fields["event_id"], 32)
	assert.NotEmpty(t, fields["fingerprint"])
	assert.Equal(t, map[string]string{"error_id": "error1", "region": "eu"}, fields["tags"])
	assert.Equal(t, map[string]any{"id": 1}, fields["user"])
	assert.Equal(t, map[string]any{"attempt": 2}, fields["extras"])
	assert.Contains(t, fields, "contexts")
}

func TestHub_RaisedErrorLevels(t *testing.T) {
	tests := []struct {
		name  string
		level errhandler.Level
		fatal bool
		want  zapcore.Level
	}{
		{"debug", errhandler.LevelDebug, false, zapcore.DebugLevel},
		{"info", errhandler.LevelInfo, false, zapcore.InfoLevel},
		{"warning", errhandler.LevelWarning, false, zapcore.WarnLevel},
		{"error", errhandler.LevelError, false, zapcore.ErrorLevel},
		{"fatal never exits", errhandler.LevelFatal, false, zapcore.ErrorLevel},
		{"fatal flag", errhandler.LevelDebug, true, zapcore.ErrorLevel},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			hub, logs := newObservedHub()
			exception := errhandler.NewErrorException(tt.level, "test", "main.go", 10)
			exception.Fatal = tt.fatal

			_, err := hub.CaptureException(exception)
			require.NoError(t, err)

			entries := logs.All()
			require.Len(t, entries, 1)
			assert.Equal(t, tt.want, entries[0].Level)
			assert.Equal(t, "main.go:10", entries[0].ContextMap()["location"])
		})
	}
}

func TestHub_VerboseBacktrace(t *testing.T) {
	exception := errhandler.NewErrorException(errhandler.LevelError, "test", "main.go", 10)
	exception.Backtrace = []errhandler.Frame{{Function: "main.main", File: "main.go", Line: 10}}

	quiet, quietLogs := newObservedHub()
	_, err := quiet.CaptureException(exception)
	require.NoError(t, err)
	assert.NotContains(t, quietLogs.All()[0].ContextMap(), "backtrace")

	verbose, verboseLogs := newObservedHub(WithVerbose())
	_, err = verbose.CaptureException(exception)
	require.NoError(t, err)
	assert.Contains(t, verboseLogs.All()[0].ContextMap(), "backtrace")
}

func TestHub_VerbosePanicStack(t *testing.T) {
	hub, logs := newObservedHub(WithVerbose())

	_, err := hub.CaptureException(&errhandler.PanicError{Cause: "boom", Stack: []byte("goroutine 1 [running]:")})
	require.NoError(t, err)

	assert.Equal(t, "goroutine 1 [running]:", logs.All()[0].ContextMap()["stack"])
}

func TestHub_NilLogger(t *testing.T) {
	hub := New(nil)

	id, err := hub.CaptureException(errors.New("test"))
	assert.NoError(t, err)
	assert.NotEmpty(t, id)
}

func TestScope(t *testing.T) {
	scope := NewScope()
	scope.SetTag("a", "1")
	scope.SetContext("request", map[string]any{"path": "/"})
	scope.SetExtra("attempt", 1)
	scope.SetUser(map[string]any{"id": 1})

	snapshot := scope.Snapshot()
	assert.Equal(t, map[string]string{"a": "1"}, snapshot.Tags)
	assert.Equal(t, map[string]map[string]any{"request": {"path": "/"}}, snapshot.Contexts)
	assert.Equal(t, map[string]any{"attempt": 1}, snapshot.Extras)
	assert.Equal(t, map[string]any{"id": 1}, snapshot.User)

	scope.Clear()
	snapshot = scope.Snapshot()
	assert.Empty(t, snapshot.Tags)
	assert.Empty(t, snapshot.Contexts)
	assert.Empty(t, snapshot.Extras)
	assert.Nil(t, snapshot.User)
}

func TestHub_SerializedReportsKeepTheirOwnScope(t *testing.T) {
	hub, logs := newObservedHub()
	reporter := errhandler.NewReporter(errhandler.WithHubAccessor(errhandler.StaticHub(hub)))

	require.NoError(t, reporter.HandleException(errors.New("first"), "error1"))
	require.NoError(t, reporter.HandleException(errors.New("second"), "error2"))

	entries := logs.FilterMessage("error captured").All()
	require.Len(t, entries, 2)
	assert.Equal(t, map[string]string{"error_id": "error1"}, entries[0].ContextMap()["tags"])
	assert.Equal(t, map[string]string{"error_id": "error2"}, entries[1].ContextMap()["tags"])
}
