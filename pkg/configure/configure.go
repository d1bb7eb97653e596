// Package configure implements the first pipeline phase: it resolves
// the toolchain and headers tree, persists the build configuration
// artifact, and drives the external project-file generator.
package configure

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strings"

	homedir "github.com/mitchellh/go-homedir"

	"github.com/gypgo/gypgo/pkg/interfaces"
	"github.com/gypgo/gypgo/pkg/logger"
	"github.com/gypgo/gypgo/pkg/platform"
	"github.com/gypgo/gypgo/pkg/process"
	"github.com/gypgo/gypgo/pkg/types"
)

// GYP_MSVS_VERSION is clamped to this ceiling for the generator's
// benefit; do not raise it.
const msvsVersionCeiling = 2015

// Config wires a Resolver. Zero-value fields get sensible defaults in
// NewResolver; the collaborator interfaces must be provided by the
// caller (the CLI installs the package defaults).
type Config struct {
	Options     types.Options
	Logger      logger.Logger
	Platform    string // platform identifier, defaults to the host
	HostVersion string // running runtime version, e.g. "v22.1.0"
	Arch        string // target architecture, defaults to the host's
	ToolDir     string // root holding gyp/ and addon.gypi
	WorkDir     string // module root, defaults to the working directory
	NodeExec    string // runtime executable, for runtime-root discovery

	Python     interfaces.PythonFinder
	VSFinder   interfaces.VisualStudioFinder
	Installer  interfaces.HeadersInstaller
	Writer     interfaces.ConfigWriter
	Supervisor *process.Supervisor
}

// Resolver runs the configure phase as a strict linear sequence; every
// step depends on its predecessor and any failure aborts the phase.
type Resolver struct {
	cfg Config
	log logger.Logger
}

// NewResolver creates a resolver, filling configuration defaults.
func NewResolver(cfg Config) *Resolver {
	if cfg.Platform == "" {
		cfg.Platform = platform.Host()
	}
	if cfg.Arch == "" {
		cfg.Arch = platform.NodeArch()
	}
	if cfg.WorkDir == "" {
		cfg.WorkDir, _ = os.Getwd()
	}
	log := cfg.Logger
	if log == nil {
		log = logger.CreateLogger("info")
	}
	log = log.WithStep("configure")
	if cfg.Python == nil {
		cfg.Python = &PathPythonFinder{Logger: log}
	}
	if cfg.Writer == nil {
		cfg.Writer = &JSONConfigWriter{}
	}
	if cfg.VSFinder == nil && cfg.Platform == platform.Windows {
		cfg.VSFinder = &EnvVisualStudioFinder{}
	}
	if cfg.Supervisor == nil {
		cfg.Supervisor = process.NewSupervisor(log)
	}
	return &Resolver{cfg: cfg, log: log}
}

// Run executes the configure phase.
func (r *Resolver) Run(ctx context.Context) error {
	opts := r.cfg.Options

	python, err := r.cfg.Python.Find(ctx, opts.Python)
	if err != nil {
		return err
	}
	r.log.Debug("using interpreter", logger.WithField("python", python))

	release := types.ProcessRelease(opts.Target, r.cfg.HostVersion)
	if release.Semver == nil {
		return fmt.Errorf("%w: %q", ErrInvalidVersion, release.Version)
	}

	nodeDir, nodeDirExplicit, err := r.resolveNodeDir(ctx, release)
	if err != nil {
		return err
	}
	r.log.Info("build against headers", logger.WithField("nodedir", nodeDir))

	buildDir := filepath.Join(r.cfg.WorkDir, types.BuildDirName)
	if err := os.MkdirAll(buildDir, 0o755); err != nil {
		return fmt.Errorf("failed to create %s: %w", buildDir, err)
	}

	var envDelta []string
	var vsInfo *types.VSInfo
	if r.cfg.Platform == platform.Windows {
		vsInfo, err = r.cfg.VSFinder.Find(ctx, release, opts.MSVSVersion)
		if err != nil {
			return err
		}
		year := vsInfo.VersionYear
		if year > msvsVersionCeiling {
			year = msvsVersionCeiling
		}
		envDelta = append(envDelta,
			fmt.Sprintf("GYP_MSVS_VERSION=%d", year),
			"GYP_MSVS_OVERRIDE_PATH="+vsInfo.Path,
		)
	}

	config := &types.BuildConfig{
		TargetDefaults: types.TargetDefaults{
			DefaultConfiguration: string(buildType(opts.Debug)),
		},
		Variables: types.Variables{
			TargetArch: r.cfg.Arch,
			NodeDir:    nodeDir,
			Python:     python,
		},
	}
	if vsInfo != nil {
		config.Variables.MSBuildPath = vsInfo.MSBuild
	}
	configPath, err := r.cfg.Writer.Write(buildDir, config)
	if err != nil {
		return err
	}
	r.log.Debug("wrote configuration", logger.WithField("path", configPath))

	fragments, err := findFragments(r.cfg.WorkDir)
	if err != nil {
		return err
	}
	for _, fragment := range fragments {
		r.log.Info("found override fragment", logger.WithField("path", fragment))
	}

	exportsFile, zoslibDir, err := r.resolvePlatformArtifacts(release)
	if err != nil {
		return err
	}

	argv := generatorArgs(generatorInputs{
		Platform:        r.cfg.Platform,
		Format:          opts.Format,
		BuildDir:        buildDir,
		ConfigPath:      configPath,
		Fragments:       fragments,
		ToolDir:         r.cfg.ToolDir,
		NodeDir:         nodeDir,
		NodeDirExplicit: nodeDirExplicit,
		ExportsFile:     exportsFile,
		ZosLibDir:       zoslibDir,
		Release:         release,
		ModuleRoot:      r.cfg.WorkDir,
		Engine:          opts.NodeEngine,
	})

	env := append(os.Environ(), envDelta...)
	env = append(env, pythonEnv+"="+python)
	env = append(env, "PYTHONPATH="+extendPythonPath(r.cfg.ToolDir, os.Getenv("PYTHONPATH")))

	r.log.Info("spawning generator", logger.WithField("args", strings.Join(argv, " ")))
	err = r.cfg.Supervisor.Run(ctx, process.Invocation{
		Command: python,
		Args:    argv,
		Dir:     r.cfg.WorkDir,
		Env:     env,
	})
	var procErr *process.Error
	if errors.As(err, &procErr) {
		// The interpreter is only the vehicle; name the tool.
		procErr.Command = "gyp"
		return procErr
	}
	return err
}

// resolveNodeDir determines the development-headers directory per the
// override / target-version policy.
func (r *Resolver) resolveNodeDir(ctx context.Context, release types.ReleaseInfo) (dir string, explicit bool, err error) {
	opts := r.cfg.Options
	if opts.NodeDir != "" {
		expanded, err := homedir.Expand(opts.NodeDir)
		if err != nil {
			return "", false, fmt.Errorf("failed to expand %q: %w", opts.NodeDir, err)
		}
		return expanded, true, nil
	}

	if release.Version == strings.TrimPrefix(r.cfg.HostVersion, "v") {
		// Target matches the running runtime: no install step.
		return filepath.Join(opts.DevDir, release.VersionDir), false, nil
	}

	dir, err = r.cfg.Installer.Install(ctx, release, opts.Tarball != "")
	if err != nil {
		return "", false, err
	}
	return dir, false, nil
}

// resolvePlatformArtifacts handles the exports-file and zoslib lookups
// mandated on the AIX and z/OS families.
func (r *Resolver) resolvePlatformArtifacts(release types.ReleaseInfo) (exportsFile, zoslibDir string, err error) {
	if !platform.NeedsExportsFile(r.cfg.Platform) {
		return "", "", nil
	}

	nodeExec := r.cfg.NodeExec
	if nodeExec == "" {
		nodeExec, err = exec.LookPath("node")
		if err != nil {
			return "", "", fmt.Errorf("could not find node executable: %w", ErrUnresolvedToolchain)
		}
	}
	root := findRuntimeRoot(nodeExec)
	r.log.Debug("runtime root", logger.WithField("dir", root))

	exportsFile, err = findExportsFile(r.cfg.Platform, root)
	if err != nil {
		return "", "", err
	}
	r.log.Info("found exports file", logger.WithField("path", exportsFile))

	if r.cfg.Platform == platform.OS390 {
		zoslibDir, err = findZosLibDir(root, release)
		if err != nil {
			return "", "", err
		}
	}
	return exportsFile, zoslibDir, nil
}

// extendPythonPath prepends the bundled generator library path to an
// existing module search path.
func extendPythonPath(toolDir, existing string) string {
	pylib := filepath.Join(toolDir, "gyp", "pylib")
	if existing == "" {
		return pylib
	}
	return pylib + string(os.PathListSeparator) + existing
}

func buildType(debug bool) types.BuildType {
	if debug {
		return types.BuildTypeDebug
	}
	return types.BuildTypeRelease
}
