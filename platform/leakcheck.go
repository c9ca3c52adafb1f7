package platform

import "sync/atomic"

// The leak-checker flags are process-wide and consulted only on the explicit
// destroy path. Debug builds enable both by default.

var (
	checkLeaks         atomic.Bool
	checkLeakedCleaner atomic.Bool
)

func init() {
	checkLeaks.Store(NeedDebugInfo)
	checkLeakedCleaner.Store(NeedDebugInfo)
}

// MemoryLeakCheckerEnabled reports whether the object leak checker is on.
func MemoryLeakCheckerEnabled() bool {
	return checkLeaks.Load()
}

// SetMemoryLeakChecker enables or disables the object leak checker.
func SetMemoryLeakChecker(value bool) {
	checkLeaks.Store(value)
}

// CleanersLeakCheckerEnabled reports whether the cleaner leak checker is on.
func CleanersLeakCheckerEnabled() bool {
	return checkLeakedCleaner.Load()
}

// SetCleanersLeakChecker enables or disables the cleaner leak checker.
func SetCleanersLeakChecker(value bool) {
	checkLeakedCleaner.Store(value)
}
