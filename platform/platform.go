package platform

import "runtime"

// OS family codes reported by OsFamily. The numbering is part of the
// public ABI and must not be reordered.
const (
	OsFamilyUnknown = 0
	OsFamilyMacos   = 1
	OsFamilyIos     = 2
	OsFamilyLinux   = 3
	OsFamilyWindows = 4
	OsFamilyAndroid = 5
	OsFamilyWasm    = 6
	OsFamilyTvos    = 7
	OsFamilyWatchos = 8
)

// CPU architecture codes reported by CpuArchitecture.
const (
	CpuArchUnknown = 0
	CpuArchArm32   = 1
	CpuArchArm64   = 2
	CpuArchX86     = 3
	CpuArchX64     = 4
	CpuArchMips32  = 5
	CpuArchMipsel3 = 6
	CpuArchWasm32  = 7
)

// Memory-model codes reported by MemoryModel.
const (
	MemoryModelStrict  = 0
	MemoryModelRelaxed = 1
)

// CanAccessUnaligned reports whether the CPU tolerates unaligned loads and
// stores.
func CanAccessUnaligned() bool {
	switch runtime.GOARCH {
	case "386", "amd64", "arm64", "s390x", "ppc64le":
		return true
	default:
		return false
	}
}

// IsLittleEndian reports the byte order of the target.
func IsLittleEndian() bool {
	switch runtime.GOARCH {
	case "mips", "mips64", "ppc64", "s390x":
		return false
	default:
		return true
	}
}

// OsFamily returns the OS family code for the target.
func OsFamily() int {
	switch runtime.GOOS {
	case "darwin":
		return OsFamilyMacos
	case "ios":
		return OsFamilyIos
	case "linux":
		return OsFamilyLinux
	case "windows":
		return OsFamilyWindows
	case "android":
		return OsFamilyAndroid
	case "js", "wasip1":
		return OsFamilyWasm
	default:
		return OsFamilyUnknown
	}
}

// CpuArchitecture returns the CPU architecture code for the target.
func CpuArchitecture() int {
	switch runtime.GOARCH {
	case "arm":
		return CpuArchArm32
	case "arm64":
		return CpuArchArm64
	case "386":
		return CpuArchX86
	case "amd64":
		return CpuArchX64
	case "mips":
		return CpuArchMips32
	case "mipsle":
		return CpuArchMipsel3
	case "wasm":
		return CpuArchWasm32
	default:
		return CpuArchUnknown
	}
}

// MemoryModel returns the memory-model code the binary was built with.
func MemoryModel() int {
	if IsStrictMemoryModel {
		return MemoryModelStrict
	}
	return MemoryModelRelaxed
}

// IsDebugBinary reports whether the binary was built with debug info
// (the mm.debug build tag).
func IsDebugBinary() bool {
	return NeedDebugInfo
}
