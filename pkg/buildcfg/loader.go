// Package buildcfg reads back the configuration artifact the configure
// phase persisted, which is the only channel between the two phases.
package buildcfg

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/gypgo/gypgo/pkg/platform"
	"github.com/gypgo/gypgo/pkg/types"
)

// ErrMissingPrerequisite indicates the build phase ran against a build
// directory that configure never populated
var ErrMissingPrerequisite = errors.New("must run `gypgo configure` first")

// LoadedConfig is the in-memory view of the artifact consumed by the
// build phase. BuildType may differ from the stored value when the
// caller passed an explicit debug flag; the artifact itself is never
// rewritten.
type LoadedConfig struct {
	BuildType   types.BuildType
	Arch        string
	NodeDir     string
	Python      string
	MSBuildPath string

	// Solution is the project-solution file to build; Windows only.
	Solution string
}

// Load reads the artifact from buildDir and applies the build-time
// overrides. A missing artifact is the specific "configure first"
// failure; any other read error propagates unchanged.
func Load(buildDir string, opts types.Options, plat string) (*LoadedConfig, error) {
	path := filepath.Join(buildDir, types.ConfigFileName)
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("%s not found: %w", path, ErrMissingPrerequisite)
		}
		return nil, err
	}

	config, err := decode(data)
	if err != nil {
		return nil, fmt.Errorf("failed to parse %s: %w", path, err)
	}

	buildType := types.BuildType(config.TargetDefaults.DefaultConfiguration)
	if buildType == "" {
		buildType = types.BuildTypeRelease
	}
	if opts.Debug {
		buildType = types.BuildTypeDebug
	}

	loaded := &LoadedConfig{
		BuildType:   buildType,
		Arch:        config.Variables.TargetArch,
		NodeDir:     config.Variables.NodeDir,
		Python:      config.Variables.Python,
		MSBuildPath: config.Variables.MSBuildPath,
	}

	if plat == platform.Windows {
		solution, err := findSolution(buildDir, opts.Solution)
		if err != nil {
			return nil, err
		}
		loaded.Solution = solution
	}
	return loaded, nil
}

// decode strips the leading comment line and unmarshals the artifact.
// JSON is what the writer emits; YAML is accepted as a superset for
// hand-maintained artifacts.
func decode(data []byte) (*types.BuildConfig, error) {
	text := string(data)
	for strings.HasPrefix(strings.TrimLeft(text, " \t"), "#") {
		if i := strings.IndexByte(text, '\n'); i >= 0 {
			text = text[i+1:]
		} else {
			text = ""
		}
	}

	var config types.BuildConfig
	if err := json.Unmarshal([]byte(text), &config); err == nil {
		return &config, nil
	}
	if err := yaml.Unmarshal([]byte(text), &config); err != nil {
		return nil, err
	}
	return &config, nil
}

// findSolution locates exactly one project-solution file in the build
// directory, unless the caller supplied an explicit override.
func findSolution(buildDir, override string) (string, error) {
	if override != "" {
		return override, nil
	}
	matches, err := filepath.Glob(filepath.Join(buildDir, "*.sln"))
	if err != nil {
		return "", err
	}
	if len(matches) == 0 {
		return "", fmt.Errorf("could not find *.sln file in %s: %w", buildDir, ErrMissingPrerequisite)
	}
	return matches[0], nil
}
