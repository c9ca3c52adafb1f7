//go:build mm.relaxed

package platform

// IsStrictMemoryModel is false in binaries built with the mm.relaxed tag.
const IsStrictMemoryModel = false
