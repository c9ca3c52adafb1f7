//go:build mm.debug

package platform

// NeedDebugInfo is true in binaries built with the mm.debug tag. It drives
// the default state of the leak-checker flags.
const NeedDebugInfo = true
