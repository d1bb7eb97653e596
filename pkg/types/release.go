package types

import (
	"strings"

	"github.com/Masterminds/semver/v3"
)

// ReleaseInfo describes the runtime release a build targets. Semver is
// nil when the version string did not parse; every configure step
// treats that as a hard failure before doing anything else.
type ReleaseInfo struct {
	Version    string
	Semver     *semver.Version
	VersionDir string
	Name       string
}

// ProcessRelease computes the ReleaseInfo for a run from the target
// override (may be empty) and the host runtime version.
func ProcessRelease(targetVersion, hostVersion string) ReleaseInfo {
	version := targetVersion
	if version == "" {
		version = hostVersion
	}
	version = strings.TrimPrefix(version, "v")

	release := ReleaseInfo{
		Version:    version,
		VersionDir: version,
		Name:       "node",
	}

	if parsed, err := semver.StrictNewVersion(version); err == nil {
		release.Semver = parsed
	}
	return release
}
