package configure

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/gypgo/gypgo/pkg/platform"
	"github.com/gypgo/gypgo/pkg/types"
)

// generatorInputs carries everything argument assembly needs. The
// resolver fills it from the preceding configure steps.
type generatorInputs struct {
	Platform        string
	Format          string // "" selects the platform default
	BuildDir        string // absolute build output directory
	ConfigPath      string // persisted artifact path
	Fragments       []string
	ToolDir         string
	NodeDir         string
	NodeDirExplicit bool
	ExportsFile     string
	ZosLibDir       string
	Release         types.ReleaseInfo
	ModuleRoot      string
	Engine          string
}

// generatorArgs assembles the full generator argument vector. The
// script path and manifest name come first; the generator consumes
// them positionally ahead of all flags.
func generatorArgs(in generatorInputs) []string {
	gypScript := filepath.Join(in.ToolDir, "gyp", "gyp_main.py")
	addonGypi := filepath.Join(in.ToolDir, "addon.gypi")

	commonGypi := filepath.Join(in.NodeDir, "include", "node", "common.gypi")
	if _, err := os.Stat(commonGypi); err != nil {
		commonGypi = filepath.Join(in.NodeDir, "common.gypi")
	}

	format := in.Format
	if format == "" {
		if in.Platform == platform.Windows {
			format = "msvs"
		} else {
			format = "make"
		}
	}

	engine := in.Engine
	if engine == "" {
		engine = "v8"
	}

	// The lib file embeds a generator placeholder for the architecture
	// unless an explicit headers directory was given, in which case the
	// builder's configuration macro is used instead.
	archDir := "<(target_arch)"
	if in.NodeDirExplicit {
		archDir = "$(Configuration)"
	}
	nodeLibFile := filepath.Join(in.NodeDir, archDir, in.Release.Name+".lib")

	moduleRoot := in.ModuleRoot
	if in.Platform == platform.Windows {
		moduleRoot = strings.ReplaceAll(moduleRoot, `\`, `\\`)
	}

	// Makefiles take a relative output directory; MSBuild wants it
	// absolute.
	outputDir := types.BuildDirName
	if in.Platform == platform.Windows {
		outputDir = in.BuildDir
	}

	argv := []string{gypScript, types.ManifestName, "-f", format}

	includes := []string{in.ConfigPath}
	includes = append(includes, in.Fragments...)
	includes = append(includes, addonGypi, commonGypi)
	for _, include := range includes {
		argv = append(argv, "-I", include)
	}

	argv = append(argv,
		"-Dlibrary=shared_library",
		"-Dvisibility=default",
		"-Dnode_root_dir="+in.NodeDir,
	)
	if in.ExportsFile != "" {
		argv = append(argv, "-Dnode_exp_file="+in.ExportsFile)
	}
	if in.ZosLibDir != "" {
		argv = append(argv, "-Dzoslib_include_dir="+in.ZosLibDir)
	}
	argv = append(argv,
		"-Dnode_gyp_dir="+in.ToolDir,
		"-Dnode_lib_file="+nodeLibFile,
		fmt.Sprintf("-Dmodule_root_dir=%s", moduleRoot),
		"-Dnode_engine="+engine,
		"--depth=.",
		"--no-parallel",
		"--generator-output", outputDir,
		"-Goutput_dir=.",
	)

	return argv
}
