package configure

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/gypgo/gypgo/pkg/types"
)

// EnvVisualStudioFinder resolves the Windows toolchain from the
// environment of a developer command prompt (VSINSTALLDIR and
// VSCMD_VER / VisualStudioVersion). Full product discovery is the job
// of an external locator; this default covers the common case of
// running inside an already-initialized toolchain shell.
type EnvVisualStudioFinder struct{}

// versionYears maps toolchain major versions to product years.
var versionYears = map[int]int{
	14: 2015,
	15: 2017,
	16: 2019,
	17: 2022,
}

// Find implements interfaces.VisualStudioFinder
func (f *EnvVisualStudioFinder) Find(ctx context.Context, release types.ReleaseInfo, requestedVersion string) (*types.VSInfo, error) {
	installDir := os.Getenv("VSINSTALLDIR")
	if installDir == "" {
		return nil, fmt.Errorf("VSINSTALLDIR is not set; run from a developer command prompt or pass --msvs_version: %w",
			ErrUnresolvedToolchain)
	}

	version := requestedVersion
	if version == "" {
		version = os.Getenv("VSCMD_VER")
	}
	if version == "" {
		version = os.Getenv("VisualStudioVersion")
	}

	year, err := versionYear(version)
	if err != nil {
		return nil, err
	}

	msbuild := filepath.Join(installDir, "MSBuild", "Current", "Bin", "MSBuild.exe")
	if _, statErr := os.Stat(msbuild); statErr != nil {
		legacy := filepath.Join(installDir, "MSBuild", "15.0", "Bin", "MSBuild.exe")
		if _, statErr := os.Stat(legacy); statErr != nil {
			return nil, fmt.Errorf("could not find MSBuild under %s: %w", installDir, ErrUnresolvedToolchain)
		}
		msbuild = legacy
	}

	return &types.VSInfo{
		Path:        installDir,
		VersionYear: year,
		MSBuild:     msbuild,
	}, nil
}

// versionYear accepts either a product year ("2022") or a toolchain
// version ("17.9.5").
func versionYear(version string) (int, error) {
	if version == "" {
		return 0, fmt.Errorf("could not determine toolchain version; pass --msvs_version: %w", ErrUnresolvedToolchain)
	}
	major := version
	if i := strings.IndexByte(version, '.'); i >= 0 {
		major = version[:i]
	}
	n, err := strconv.Atoi(major)
	if err != nil {
		return 0, fmt.Errorf("unrecognized toolchain version %q: %w", version, ErrUnresolvedToolchain)
	}
	if n >= 2000 {
		return n, nil
	}
	if year, ok := versionYears[n]; ok {
		return year, nil
	}
	return 0, fmt.Errorf("unrecognized toolchain version %q: %w", version, ErrUnresolvedToolchain)
}
