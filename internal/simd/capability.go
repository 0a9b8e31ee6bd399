package simd

import (
	"os"
	"runtime"
	"strings"
	"unsafe"

	"golang.org/x/sys/cpu"
)

// ISA represents a SIMD instruction set architecture.
type ISA uint8

const (
	// Generic represents pure Go code (no SIMD assumptions).
	Generic ISA = iota
	// NEON represents ARM64 NEON (128-bit SIMD, ASIMD).
	NEON
	// SVE2 represents ARM64 SVE2 (scalable vectors, 128-2048 bit).
	SVE2
	// AVX2 represents x86-64 AVX2 (256-bit SIMD with FMA).
	AVX2
	// AVX512 represents x86-64 AVX-512 (512-bit SIMD).
	AVX512
)

// String returns the string representation of an ISA.
func (i ISA) String() string {
	switch i {
	case Generic:
		return "generic"
	case NEON:
		return "neon"
	case SVE2:
		return "sve2"
	case AVX2:
		return "avx2"
	case AVX512:
		return "avx512"
	default:
		return "unknown"
	}
}

// VectorBytes returns the register width of the ISA in bytes.
// SVE2 reports its architectural minimum.
func (i ISA) VectorBytes() int {
	switch i {
	case NEON, SVE2:
		return 16
	case AVX2:
		return 32
	case AVX512:
		return 64
	default:
		return 8
	}
}

// ParseISA parses a string into an ISA value.
func ParseISA(s string) (ISA, bool) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "generic":
		return Generic, true
	case "neon":
		return NEON, true
	case "sve2":
		return SVE2, true
	case "avx2":
		return AVX2, true
	case "avx512":
		return AVX512, true
	default:
		return Generic, false
	}
}

// Package-level state, initialized once at package init.
var (
	activeISA   ISA
	hasOverride bool

	// CPU feature flags (set by platform-specific init)
	hasASIMD    bool // ARM64 NEON
	hasSVE2     bool // ARM64 SVE2
	hasAVX2     bool // x86-64 AVX2 + FMA
	hasAVX512F  bool // x86-64 AVX-512 Foundation
	hasAVX512BW bool // x86-64 AVX-512 Byte/Word
)

// initCapabilities is called from platform-specific init functions
// after CPU features are detected.
func initCapabilities() {
	if override := os.Getenv("SOA_SIMD"); override != "" {
		if isa, ok := ParseISA(override); ok && isISAAvailable(isa) {
			hasOverride = true
			activeISA = isa
			return
		}
	}

	activeISA = selectBestISA()
}

func isISAAvailable(isa ISA) bool {
	switch isa {
	case Generic:
		return true
	case NEON:
		return hasASIMD
	case SVE2:
		return hasSVE2
	case AVX2:
		return hasAVX2
	case AVX512:
		return hasAVX512F && hasAVX512BW
	default:
		return false
	}
}

func selectBestISA() ISA {
	switch runtime.GOARCH {
	case "arm64":
		// Apple's SVE2 is slower than its NEON units.
		if hasSVE2 && runtime.GOOS != "darwin" {
			return SVE2
		}
		if hasASIMD {
			return NEON
		}
	case "amd64":
		if hasAVX512F && hasAVX512BW {
			return AVX512
		}
		if hasAVX2 {
			return AVX2
		}
	}
	return Generic
}

// ActiveISA returns the currently active ISA.
func ActiveISA() ISA {
	return activeISA
}

// IsOverridden returns true if SOA_SIMD selected the ISA.
func IsOverridden() bool {
	return hasOverride
}

// CacheLineSize returns the cache line size assumed by golang.org/x/sys/cpu
// for the current architecture.
func CacheLineSize() int {
	return int(unsafe.Sizeof(cpu.CacheLinePad{}))
}

// PreferredAlignment returns the byte alignment for dense column storage:
// the larger of the cache line size and the active vector register width.
func PreferredAlignment() int {
	a := CacheLineSize()
	if v := activeISA.VectorBytes(); v > a {
		a = v
	}
	return a
}
