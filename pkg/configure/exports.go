package configure

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/gypgo/gypgo/pkg/platform"
	"github.com/gypgo/gypgo/pkg/types"
)

// zoslibIncludesEnv overrides the zoslib header location on z/OS.
const zoslibIncludesEnv = "ZOSLIB_INCLUDES"

// findRuntimeRoot locates the install root of the runtime whose
// executable lives at execPath. Installed layouts keep the binary under
// bin/, source checkouts under out/Release or out/Debug.
func findRuntimeRoot(execPath string) string {
	dir := filepath.Dir(execPath)
	switch filepath.Base(dir) {
	case "bin":
		return filepath.Dir(dir)
	case "Release", "Debug":
		if filepath.Base(filepath.Dir(dir)) == "out" {
			return filepath.Dir(filepath.Dir(dir))
		}
	}
	return dir
}

// findExportsFile probes the platform's ordered candidate list under
// the runtime root for a readable linker exports file.
func findExportsFile(plat, runtimeRoot string) (string, error) {
	strategy := platform.Get(plat)
	if path := platform.FindAccessible(runtimeRoot, strategy.ExportsCandidates); path != "" {
		return path, nil
	}
	return "", fmt.Errorf("could not find exports file in %s: %w", runtimeRoot, ErrMissingPlatformArtifact)
}

// findZosLibDir locates the zoslib header directory on os390. An
// explicit environment override must contain the expected header;
// otherwise the ordered candidate list under the runtime root is
// scanned. Releases before major 16 shipped without zoslib, so absence
// is only fatal from 16 on.
func findZosLibDir(runtimeRoot string, release types.ReleaseInfo) (string, error) {
	strategy := platform.Get(platform.OS390)

	if override := os.Getenv(zoslibIncludesEnv); override != "" {
		if platform.FindAccessible(override, []string{strategy.ZosLibHeader}) == "" {
			return "", fmt.Errorf("could not find %s in the directory set by %s (%s): %w",
				strategy.ZosLibHeader, zoslibIncludesEnv, override, ErrMissingPlatformArtifact)
		}
		return override, nil
	}

	for _, candidate := range strategy.ZosLibCandidates {
		dir := filepath.Join(runtimeRoot, candidate)
		if platform.FindAccessible(dir, []string{strategy.ZosLibHeader}) != "" {
			return dir, nil
		}
	}

	if release.Semver != nil && release.Semver.Major() >= 16 {
		return "", fmt.Errorf("could not find zoslib directory under %s: %w",
			runtimeRoot, ErrMissingPlatformArtifact)
	}
	// Legacy releases did not ship this dependency.
	return "", nil
}
