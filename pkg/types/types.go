// Package types provides core types shared by the configure and build phases
package types

// BuildType represents the build configuration selected for a run
type BuildType string

const (
	BuildTypeRelease BuildType = "Release"
	BuildTypeDebug   BuildType = "Debug"
)

// Fixed names of the build output directory and the persisted artifact.
const (
	BuildDirName   = "build"
	ConfigFileName = "config.gypi"

	// ManifestName is the generator input file. The generator requires
	// this exact name, so it is not configurable.
	ManifestName = "binding.gyp"

	// BinsDirName holds the transient interpreter symlink during a
	// Unix build run.
	BinsDirName = "node_gyp_bins"
)

// Options carries the caller-supplied settings consumed by both phases.
// Values come straight from CLI flags or their environment fallbacks.
type Options struct {
	// configure phase
	NodeDir     string // explicit headers directory, skips install
	Target      string // target runtime version override
	Format      string // generator output format (-f)
	Python      string // interpreter override
	DevDir      string // root for installed header trees
	Tarball     string // headers tarball source, forces reinstall
	MSVSVersion string // requested Windows toolchain version
	NodeEngine  string // execution engine define override

	// build phase
	Debug    bool   // overrides the stored default_configuration
	Jobs     string // parallelism: positive integer or "max"
	Solution string // explicit Windows solution file
	Make     string // explicit make variant

	Verbose bool
}

// TargetDefaults is the target_defaults block of the persisted artifact.
type TargetDefaults struct {
	DefaultConfiguration string `json:"default_configuration" yaml:"default_configuration"`
}

// Variables is the variables block of the persisted artifact.
type Variables struct {
	TargetArch  string `json:"target_arch" yaml:"target_arch"`
	NodeDir     string `json:"nodedir" yaml:"nodedir"`
	Python      string `json:"python" yaml:"python"`
	MSBuildPath string `json:"msbuild_path,omitempty" yaml:"msbuild_path,omitempty"`
}

// BuildConfig mirrors the config.gypi artifact written by configure and
// read back by build. It is created exactly once per configure run and
// never mutated on disk afterwards.
type BuildConfig struct {
	TargetDefaults TargetDefaults `json:"target_defaults" yaml:"target_defaults"`
	Variables      Variables      `json:"variables" yaml:"variables"`
}

// VSInfo describes a located Windows toolchain install.
type VSInfo struct {
	Path        string
	VersionYear int
	MSBuild     string
}
