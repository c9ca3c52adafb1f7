//go:build !mm.relaxed

package platform

// IsStrictMemoryModel selects the strict memory-consistency backend. The
// relaxed backend is linked instead when building with the mm.relaxed tag.
const IsStrictMemoryModel = true
