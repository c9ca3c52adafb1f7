package runtime

import (
	"sync"

	"go.uber.org/zap"
)

var (
	loggerMu sync.Mutex
	logger   *zap.Logger
)

// Logger returns the runtime's logger. The default writes to stderr so fatal
// contract-violation diagnostics are always visible.
func Logger() *zap.Logger {
	loggerMu.Lock()
	defer loggerMu.Unlock()
	if logger == nil {
		logger = zap.Must(zap.NewDevelopment())
	}
	return logger
}

// SetLogger replaces the runtime's logger. Call before any runtime activity;
// pass zap.NewNop() to silence diagnostics.
func SetLogger(l *zap.Logger) {
	loggerMu.Lock()
	defer loggerMu.Unlock()
	logger = l
}
