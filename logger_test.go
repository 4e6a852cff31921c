package weakevent

import (
	"runtime"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

func observeLogs(t *testing.T) *observer.ObservedLogs {
	t.Helper()
	core, logs := observer.New(zapcore.DebugLevel)
	SetLogger(zap.New(core))
	t.Cleanup(func() { SetLogger(nil) })
	return logs
}

func Test_SubscribeLogsRegistration(t *testing.T) {
	logs := observeLogs(t)
	ev := NewEvent[int]()

	d, err := WeakSubscribe(ev.Add, ev.Remove, Handler[int](&counter{}))
	require.NoError(t, err)
	defer d.Dispose()

	entries := logs.FilterMessage("weak subscription registered").All()
	require.Len(t, entries, 1)
	assert.Equal(t, "handle", entries[0].ContextMap()["liveness"])
}

func Test_RelayLogsSelfUnregistration(t *testing.T) {
	logs := observeLogs(t)
	ev := NewEvent[int]()

	subscribeAndDrop(t, ev, &counter{})
	runtime.GC()

	require.Eventually(t, func() bool {
		ev.Fire(0)
		return ev.Count() == 0
	}, 2*time.Second, 10*time.Millisecond)

	reclaimed := logs.FilterMessage("subscription owner reclaimed, unregistering relay").Len() +
		logs.FilterMessage("disposable reclaimed without explicit dispose").Len()
	assert.Positive(t, reclaimed)
}

func Test_SetLoggerNilRestoresNop(t *testing.T) {
	SetLogger(nil)
	assert.NotNil(t, Logger())
	assert.NotPanics(t, func() { logDebug("discarded") })

	SetDebug(true)
	assert.True(t, Logger().Core().Enabled(zapcore.DebugLevel))
	SetDebug(false)
	assert.False(t, Logger().Core().Enabled(zapcore.DebugLevel))
}
