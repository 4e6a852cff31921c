package weakevent

import (
	"sync"

	"go.uber.org/zap"
)

var (
	loggerMu sync.RWMutex
	logger   = zap.NewNop()
)

// Logger returns the package logger. It is a no-op logger until SetLogger
// or SetDebug installs another one.
func Logger() *zap.Logger {
	loggerMu.RLock()
	defer loggerMu.RUnlock()
	return logger
}

// SetLogger replaces the package logger. A nil logger restores the no-op logger.
func SetLogger(l *zap.Logger) {
	if l == nil {
		l = zap.NewNop()
	}
	loggerMu.Lock()
	logger = l
	loggerMu.Unlock()
}

// SetDebug enables or disables debug logging for the package. Enabling it
// installs a zap development logger; disabling it restores the no-op logger.
func SetDebug(enable bool) {
	if !enable {
		SetLogger(nil)
		return
	}
	l, err := zap.NewDevelopment()
	if err != nil {
		return
	}
	SetLogger(l.Named("weakevent"))
}

// logDebug writes a debug entry through the package logger.
func logDebug(msg string, fields ...zap.Field) {
	Logger().Debug(msg, fields...)
}
