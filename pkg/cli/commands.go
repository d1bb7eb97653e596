package cli

import (
	"context"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strings"

	"github.com/gen2brain/beeep"
	homedir "github.com/mitchellh/go-homedir"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/gypgo/gypgo/pkg/build"
	"github.com/gypgo/gypgo/pkg/buildcfg"
	"github.com/gypgo/gypgo/pkg/configure"
	"github.com/gypgo/gypgo/pkg/interfaces"
	"github.com/gypgo/gypgo/pkg/platform"
	"github.com/gypgo/gypgo/pkg/types"
)

func newConfigureCmd() *cobra.Command {
	var opts types.Options
	var arch string

	cmd := &cobra.Command{
		Use:   "configure",
		Short: "Generate project build files for the current module",
		Long:  `Resolve the toolchain and headers tree, then run the generator against binding.gyp.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runConfigure(cmd.Context(), opts, arch)
		},
	}
	addConfigureFlags(cmd, &opts, &arch)
	return cmd
}

func newBuildCmd() *cobra.Command {
	var opts types.Options
	var notify bool

	cmd := &cobra.Command{
		Use:   "build",
		Short: "Run the platform build tool against the generated files",
		Long:  `Invoke make (or MSBuild on Windows) on the output of a prior configure run.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runBuild(cmd.Context(), opts, notify)
		},
	}
	addBuildFlags(cmd, &opts, &notify)
	return cmd
}

func newRebuildCmd() *cobra.Command {
	var opts types.Options
	var arch string
	var notify bool

	cmd := &cobra.Command{
		Use:   "rebuild",
		Short: "Clean, configure and build in one step",
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := runClean(); err != nil {
				return err
			}
			if err := runConfigure(cmd.Context(), opts, arch); err != nil {
				return err
			}
			return runBuild(cmd.Context(), opts, notify)
		},
	}
	addConfigureFlags(cmd, &opts, &arch)
	addBuildFlags(cmd, &opts, &notify)
	return cmd
}

func newCleanCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "clean",
		Short: "Remove the build output directory",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runClean()
		},
	}
}

func addConfigureFlags(cmd *cobra.Command, opts *types.Options, arch *string) {
	f := cmd.Flags()
	f.StringVar(&opts.NodeDir, "nodedir", "", "use this headers directory instead of installing one (supports ~)")
	f.StringVar(&opts.Target, "target", "", "runtime version to build against (defaults to the running version)")
	f.StringVarP(&opts.Format, "format", "f", "", "generator output format (defaults to msvs on Windows, make elsewhere)")
	f.StringVar(&opts.Python, "python", "", "interpreter used to run the generator")
	f.StringVar(&opts.DevDir, "devdir", "", "directory holding installed headers trees")
	f.StringVar(&opts.Tarball, "tarball", "", "local headers tarball; forces a reinstall")
	f.StringVar(&opts.MSVSVersion, "msvs_version", "", "requested Windows toolchain version")
	f.StringVar(&opts.NodeEngine, "node-engine", "", "execution engine define (defaults to v8)")
	f.BoolVar(&opts.Debug, "debug", false, "configure for a Debug build")
	f.StringVar(arch, "arch", "", "target architecture (defaults to the host's)")
}

func addBuildFlags(cmd *cobra.Command, opts *types.Options, notify *bool) {
	f := cmd.Flags()
	f.StringVarP(&opts.Jobs, "jobs", "j", "", `build parallelism: a positive integer or "max"`)
	f.StringVar(&opts.Solution, "solution", "", "explicit solution file to build (Windows)")
	f.StringVar(&opts.Make, "make", "", "make variant to use")
	// rebuild shares the configure flag set, which already has --debug
	if f.Lookup("debug") == nil {
		f.BoolVar(&opts.Debug, "debug", false, "build the Debug configuration")
	}
	f.BoolVar(notify, "notify", false, "send a desktop notification when the build finishes")
}

func runConfigure(ctx context.Context, opts types.Options, arch string) error {
	opts.Verbose = verbose
	applyEnvDefaults(&opts)

	wd, err := resolveWorkDir()
	if err != nil {
		return err
	}
	hostVersion, err := hostNodeVersion(ctx)
	if err != nil {
		return err
	}

	plat := platform.Host()
	var vsFinder interfaces.VisualStudioFinder
	if plat == platform.Windows {
		vsFinder = &configure.EnvVisualStudioFinder{}
	}

	resolver := configure.NewResolver(configure.Config{
		Options:     opts,
		Logger:      log,
		Platform:    plat,
		HostVersion: hostVersion,
		Arch:        arch,
		ToolDir:     toolDir(),
		WorkDir:     wd,
		VSFinder:    vsFinder,
		Installer: &configure.DevDirInstaller{
			DevDir:  opts.DevDir,
			Tarball: opts.Tarball,
			Logger:  log,
		},
	})
	if err := resolver.Run(ctx); err != nil {
		return err
	}
	printSuccess("configure complete")
	return nil
}

func runBuild(ctx context.Context, opts types.Options, notify bool) error {
	opts.Verbose = verbose
	applyEnvDefaults(&opts)

	wd, err := resolveWorkDir()
	if err != nil {
		return err
	}
	plat := platform.Host()
	buildDir := filepath.Join(wd, types.BuildDirName)

	loaded, err := buildcfg.Load(buildDir, opts, plat)
	if err != nil {
		return err
	}

	command, err := build.NewLocator().Locate(loaded, opts, plat)
	if err != nil {
		return err
	}

	runner := &build.Runner{
		Opts:     opts,
		Loaded:   loaded,
		Platform: plat,
		WorkDir:  wd,
		Command:  command,
		Logger:   log,
	}
	err = runner.Run(ctx)

	if notify {
		message := "build succeeded"
		if err != nil {
			message = "build failed: " + err.Error()
		}
		// Best effort; a failed notification never fails the build.
		_ = beeep.Notify("gypgo", message, "")
	}

	if err != nil {
		return err
	}
	printSuccess("build complete")
	return nil
}

func runClean() error {
	wd, err := resolveWorkDir()
	if err != nil {
		return err
	}
	buildDir := filepath.Join(wd, types.BuildDirName)
	if err := os.RemoveAll(buildDir); err != nil {
		return fmt.Errorf("failed to remove %s: %w", buildDir, err)
	}
	printInfo("removed " + buildDir)
	return nil
}

// applyEnvDefaults fills unset options from the GYPGO_* environment or
// the rc file, then from built-in defaults.
func applyEnvDefaults(opts *types.Options) {
	if opts.Python == "" {
		opts.Python = viper.GetString("python")
	}
	if opts.DevDir == "" {
		opts.DevDir = viper.GetString("devdir")
	}
	if opts.Jobs == "" {
		opts.Jobs = viper.GetString("jobs")
	}
	if opts.Make == "" {
		opts.Make = viper.GetString("make")
	}
	if opts.DevDir == "" {
		opts.DevDir = defaultDevDir()
	}
}

// hostNodeVersion asks the installed runtime for its version.
func hostNodeVersion(ctx context.Context) (string, error) {
	out, err := exec.CommandContext(ctx, "node", "--version").Output()
	if err != nil {
		return "", fmt.Errorf("could not determine the installed node version: %w", err)
	}
	return strings.TrimSpace(string(out)), nil
}

func defaultDevDir() string {
	home, err := homedir.Dir()
	if err != nil {
		return filepath.Join(".", ".gypgo")
	}
	return filepath.Join(home, ".cache", "gypgo")
}

// toolDir is the root holding the bundled generator (gyp/gyp_main.py)
// and addon.gypi.
func toolDir() string {
	if dir := os.Getenv("GYPGO_DIR"); dir != "" {
		return dir
	}
	if exe, err := os.Executable(); err == nil {
		return filepath.Dir(exe)
	}
	return "."
}
