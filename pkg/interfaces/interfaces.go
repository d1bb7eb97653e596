// Package interfaces provides abstractions for the external collaborators
// of the pipeline: interpreter discovery, Windows toolchain discovery,
// header-tree installation, and artifact serialization. The pipeline
// depends only on these contracts; the default implementations live
// next to their consumers.
package interfaces

import (
	"context"

	"github.com/gypgo/gypgo/pkg/types"
)

// PythonFinder resolves the interpreter used to run the generator.
type PythonFinder interface {
	// Find returns the absolute interpreter path. The override, when
	// non-empty, takes precedence over any discovery heuristic.
	Find(ctx context.Context, override string) (string, error)
}

// VisualStudioFinder locates the Windows toolchain for a target release.
type VisualStudioFinder interface {
	// Find resolves a toolchain compatible with the release,
	// optionally pinned to a requested version.
	Find(ctx context.Context, release types.ReleaseInfo, requestedVersion string) (*types.VSInfo, error)
}

// HeadersInstaller ensures a development-headers tree for a release is
// present locally and returns its directory.
type HeadersInstaller interface {
	// Install is idempotent unless force is set, in which case any
	// existing tree for the release is replaced.
	Install(ctx context.Context, release types.ReleaseInfo, force bool) (string, error)
}

// ConfigWriter serializes the merged build configuration into the
// build output directory and returns the artifact path.
type ConfigWriter interface {
	Write(buildDir string, config *types.BuildConfig) (string, error)
}
