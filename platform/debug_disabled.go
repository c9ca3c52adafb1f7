//go:build !mm.debug

package platform

// NeedDebugInfo is false in release binaries.
const NeedDebugInfo = false
