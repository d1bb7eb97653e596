package build

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"strconv"
	"strings"

	"github.com/gypgo/gypgo/pkg/buildcfg"
	"github.com/gypgo/gypgo/pkg/logger"
	"github.com/gypgo/gypgo/pkg/platform"
	"github.com/gypgo/gypgo/pkg/process"
	"github.com/gypgo/gypgo/pkg/types"
)

// jobsEnv supplies the parallelism count when no flag is given.
const jobsEnv = "JOBS"

// interpreterLink is the conventional name build scripts invoke; the
// symlink redirects it to the configured interpreter.
const interpreterLink = "python3"

// Runner assembles and executes exactly one build-executor invocation.
type Runner struct {
	Opts     types.Options
	Loaded   *buildcfg.LoadedConfig
	Platform string
	WorkDir  string // module root the executor runs from
	Command  string // located build executable

	Logger     logger.Logger
	Supervisor *process.Supervisor

	// NumCPU resolves the "max" jobs token; defaults to the host's
	// logical core count.
	NumCPU int
}

// Run spawns the build executor and waits for it.
func (r *Runner) Run(ctx context.Context) error {
	log := r.Logger
	if log == nil {
		log = logger.CreateLogger("info")
	}
	log = log.WithStep("build")

	supervisor := r.Supervisor
	if supervisor == nil {
		supervisor = process.NewSupervisor(log)
	}

	argv := r.BuildArgs()
	env := os.Environ()

	if r.Platform != platform.Windows {
		binsDir, release, err := prepareInterpreterBins(
			filepath.Join(r.WorkDir, types.BuildDirName), r.Loaded.Python)
		if err != nil {
			return err
		}
		// The bins dir lives exactly as long as the child process.
		defer release()
		env = prependPath(env, binsDir)
	}

	log.Info("running build tool",
		logger.WithField("command", r.Command),
		logger.WithField("args", strings.Join(argv, " ")))

	return supervisor.Run(ctx, process.Invocation{
		Command: r.Command,
		Args:    argv,
		Dir:     r.WorkDir,
		Env:     env,
	})
}

// BuildArgs assembles the executor argument vector for the platform.
func (r *Runner) BuildArgs() []string {
	if r.Platform == platform.Windows {
		return r.msbuildArgs()
	}
	return r.makeArgs()
}

func (r *Runner) makeArgs() []string {
	argv := []string{
		"BUILDTYPE=" + string(r.Loaded.BuildType),
		"-C", types.BuildDirName,
	}
	if r.Opts.Verbose {
		argv = append(argv, "V=1")
	}
	if jobs, ok := r.parallelism(); ok {
		argv = append(argv, "--jobs", strconv.Itoa(jobs))
	}
	return argv
}

func (r *Runner) msbuildArgs() []string {
	var argv []string
	if !r.Opts.Verbose {
		argv = append(argv, "/clp:Verbosity=minimal")
	}
	argv = append(argv, "/nologo")
	argv = append(argv, fmt.Sprintf("/p:Configuration=%s;Platform=%s",
		r.Loaded.BuildType, platform.MSBuildPlatform(r.Loaded.Arch)))
	if jobs, ok := r.parallelism(); ok {
		argv = append(argv, fmt.Sprintf("/m:%d", jobs))
	}

	if !namesProjectFile(argv) {
		solution := r.Opts.Solution
		if solution == "" {
			solution = r.Loaded.Solution
		}
		argv = append([]string{solution}, argv...)
	}
	return argv
}

// parallelism resolves the job count from the option, falling back to
// the environment. A positive integer passes through; the literal
// "max" resolves to the logical core count; anything else yields no
// parallelism flag.
func (r *Runner) parallelism() (int, bool) {
	jobs := r.Opts.Jobs
	if jobs == "" {
		jobs = os.Getenv(jobsEnv)
	}
	if jobs == "" {
		return 0, false
	}
	if strings.EqualFold(jobs, "max") {
		cpus := r.NumCPU
		if cpus <= 0 {
			cpus = runtime.NumCPU()
		}
		return cpus, true
	}
	if n, err := strconv.Atoi(jobs); err == nil && n > 0 {
		return n, true
	}
	return 0, false
}

// namesProjectFile reports whether an argument already names a
// project or solution file.
func namesProjectFile(argv []string) bool {
	for _, arg := range argv {
		if strings.HasSuffix(arg, ".sln") || strings.HasSuffix(arg, ".vcxproj") {
			return true
		}
	}
	return false
}

// prepareInterpreterBins creates the scoped bin directory holding the
// interpreter symlink and returns its release function. The directory
// is removed on every exit path, success or failure.
func prepareInterpreterBins(buildDir, python string) (string, func(), error) {
	binsDir := filepath.Join(buildDir, types.BinsDirName)
	if err := os.MkdirAll(binsDir, 0o755); err != nil {
		return "", nil, fmt.Errorf("failed to create %s: %w", binsDir, err)
	}

	link := filepath.Join(binsDir, interpreterLink)
	if err := os.Remove(link); err != nil && !os.IsNotExist(err) {
		return "", nil, fmt.Errorf("failed to remove stale %s: %w", link, err)
	}
	if err := os.Symlink(python, link); err != nil {
		return "", nil, fmt.Errorf("failed to link %s: %w", link, err)
	}

	release := func() { os.RemoveAll(binsDir) }
	return binsDir, release, nil
}

// prependPath returns env with dir prepended to the PATH entry.
func prependPath(env []string, dir string) []string {
	out := make([]string, 0, len(env)+1)
	found := false
	for _, kv := range env {
		if !found && strings.HasPrefix(kv, "PATH=") {
			out = append(out, "PATH="+dir+string(os.PathListSeparator)+kv[len("PATH="):])
			found = true
			continue
		}
		out = append(out, kv)
	}
	if !found {
		out = append(out, "PATH="+dir)
	}
	return out
}
