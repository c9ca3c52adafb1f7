// Package platform reports build- and process-level facts about the binary
// the runtime is linked into: CPU architecture, OS family, endianness,
// unaligned-access capability, the memory-model variant selected at build
// time, and whether this is a debug build.
//
// It also owns the two process-wide leak-checker flags consulted during the
// explicit destroy path. Both default to enabled in debug builds (built with
// the mm.debug tag) and disabled otherwise, and can be flipped at runtime:
//
//	platform.SetMemoryLeakChecker(true)
//	if platform.CleanersLeakCheckerEnabled() { ... }
//
// Everything in this package is a pure accessor over process-wide state; the
// package has no dependencies and may be imported from anywhere in the
// runtime.
package platform
