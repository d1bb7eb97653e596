// Package platform centralizes the per-platform build conventions:
// make variant names, MSBuild architecture tokens, and the ordered
// candidate lists for platform-mandated artifacts.
package platform

import (
	"os"
	"path/filepath"
	"runtime"
	"strings"
)

// Identifiers used as strategy keys. They follow the runtime naming of
// the addon ecosystem rather than GOOS, so z/OS is "os390" and IBM i
// is "os400"; Host maps GOOS values onto them.
const (
	AIX     = "aix"
	OS390   = "os390"
	OS400   = "os400"
	Windows = "windows"
)

// Strategy describes one platform's build conventions.
type Strategy struct {
	// MakeVariant is the default make executable name.
	MakeVariant string

	// ExportsCandidates are probed in order under the runtime root
	// for the linker exports file. Empty means the platform needs no
	// exports file.
	ExportsCandidates []string

	// ZosLibCandidates are probed in order under the runtime root for
	// the directory holding ZosLibHeader. Only set for os390.
	ZosLibCandidates []string
	ZosLibHeader     string
}

var strategies = map[string]Strategy{
	AIX: {
		MakeVariant: "gmake",
		ExportsCandidates: []string{
			"include/node/node.exp",
			"out/Release/node.exp",
			"out/Debug/node.exp",
		},
	},
	OS400: {
		MakeVariant: "gmake",
		ExportsCandidates: []string{
			"include/node/node.exp",
			"out/Release/node.exp",
			"out/Debug/node.exp",
		},
	},
	OS390: {
		MakeVariant: "make",
		ExportsCandidates: []string{
			"out/Release/lib.target/libnode.x",
			"out/Debug/lib.target/libnode.x",
			"out/Release/obj.target/libnode.x",
			"out/Debug/obj.target/libnode.x",
			"lib/libnode.x",
		},
		ZosLibCandidates: []string{
			"include/node/zoslib",
			"out/Release/obj/zoslib",
			"out/Debug/obj/zoslib",
		},
		ZosLibHeader: "zos-base.h",
	},
	"freebsd": {MakeVariant: "gmake"},
	"openbsd": {MakeVariant: "gmake"},
	"netbsd":  {MakeVariant: "gmake"},
}

// defaultStrategy covers every platform without a table entry.
var defaultStrategy = Strategy{MakeVariant: "make"}

// Host returns the identifier for the running platform.
func Host() string {
	if runtime.GOOS == "zos" {
		return OS390
	}
	return runtime.GOOS
}

// Get returns the strategy for a platform identifier.
func Get(platform string) Strategy {
	if s, ok := strategies[platform]; ok {
		return s
	}
	return defaultStrategy
}

// NeedsExportsFile reports whether the platform mandates a linker
// exports file for addon builds.
func NeedsExportsFile(platform string) bool {
	return len(Get(platform).ExportsCandidates) > 0
}

// MSBuildPlatform maps a stored target architecture to the MSBuild
// platform token. Anything unrecognized, including 32-bit intel
// naming, builds as Win32.
func MSBuildPlatform(arch string) string {
	switch strings.ToLower(arch) {
	case "x64":
		return "x64"
	case "arm":
		return "ARM"
	case "arm64":
		return "ARM64"
	default:
		return "Win32"
	}
}

// FindAccessible scans an ordered candidate list under root and returns
// the first path that can be opened for reading, or "" if none can.
func FindAccessible(root string, candidates []string) string {
	for _, candidate := range candidates {
		path := filepath.Join(root, candidate)
		f, err := os.Open(path)
		if err != nil {
			continue
		}
		f.Close()
		return path
	}
	return ""
}
