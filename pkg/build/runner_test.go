//go:build !windows

package build

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/gypgo/gypgo/pkg/buildcfg"
	"github.com/gypgo/gypgo/pkg/platform"
	"github.com/gypgo/gypgo/pkg/process"
	"github.com/gypgo/gypgo/pkg/types"
)

func testRunner(t *testing.T, plat string, opts types.Options) *Runner {
	t.Setenv("JOBS", "")
	return &Runner{
		Opts: opts,
		Loaded: &buildcfg.LoadedConfig{
			BuildType: types.BuildTypeRelease,
			Arch:      "x64",
			Python:    "/usr/bin/python3",
			Solution:  `build\addon.sln`,
		},
		Platform: plat,
		NumCPU:   8,
	}
}

func TestMakeArgs(t *testing.T) {
	argv := testRunner(t, "linux", types.Options{}).BuildArgs()

	want := []string{"BUILDTYPE=Release", "-C", "build"}
	if len(argv) != len(want) {
		t.Fatalf("argv = %v, want %v", argv, want)
	}
	for i := range want {
		if argv[i] != want[i] {
			t.Errorf("argv[%d] = %q, want %q", i, argv[i], want[i])
		}
	}
}

func TestMakeArgsVerbose(t *testing.T) {
	argv := testRunner(t, "linux", types.Options{Verbose: true}).BuildArgs()
	if !hasArg(argv, "V=1") {
		t.Errorf("argv = %v, want V=1", argv)
	}
}

func TestParallelism(t *testing.T) {
	tests := []struct {
		jobs   string
		want   int
		wantOK bool
	}{
		{"", 0, false},
		{"4", 4, true},
		{"max", 8, true},
		{"MAX", 8, true},
		{"banana", 0, false},
		{"0", 0, false},
		{"-3", 0, false},
	}

	for _, tt := range tests {
		t.Run(tt.jobs, func(t *testing.T) {
			r := testRunner(t, "linux", types.Options{Jobs: tt.jobs})
			got, ok := r.parallelism()
			if ok != tt.wantOK || got != tt.want {
				t.Errorf("parallelism(%q) = (%d, %v), want (%d, %v)",
					tt.jobs, got, ok, tt.want, tt.wantOK)
			}
		})
	}
}

func TestParallelismFromEnv(t *testing.T) {
	r := testRunner(t, "linux", types.Options{})
	t.Setenv("JOBS", "5")
	got, ok := r.parallelism()
	if !ok || got != 5 {
		t.Errorf("parallelism() = (%d, %v), want (5, true)", got, ok)
	}
}

func TestMSBuildArgs(t *testing.T) {
	argv := testRunner(t, platform.Windows, types.Options{Jobs: "4"}).BuildArgs()

	if argv[0] != `build\addon.sln` {
		t.Errorf("argv[0] = %q, want the discovered solution", argv[0])
	}
	for _, want := range []string{
		"/clp:Verbosity=minimal",
		"/nologo",
		"/p:Configuration=Release;Platform=x64",
		"/m:4",
	} {
		if !hasArg(argv, want) {
			t.Errorf("argv = %v, missing %q", argv, want)
		}
	}
}

func TestMSBuildArgsVerbose(t *testing.T) {
	argv := testRunner(t, platform.Windows, types.Options{Verbose: true}).BuildArgs()
	if hasArg(argv, "/clp:Verbosity=minimal") {
		t.Error("verbose build should not minimize logger verbosity")
	}
	if !hasArg(argv, "/nologo") {
		t.Error("banner suppression must always be passed")
	}
}

func TestMSBuildArgsSolutionOverride(t *testing.T) {
	r := testRunner(t, platform.Windows, types.Options{Solution: "custom.sln"})
	argv := r.BuildArgs()
	if argv[0] != "custom.sln" {
		t.Errorf("argv[0] = %q, want the explicit override", argv[0])
	}
}

func TestPrepareInterpreterBins(t *testing.T) {
	buildDir := t.TempDir()

	binsDir, release, err := prepareInterpreterBins(buildDir, "/usr/bin/python3")
	if err != nil {
		t.Fatal(err)
	}

	link := filepath.Join(binsDir, "python3")
	target, err := os.Readlink(link)
	if err != nil {
		t.Fatal(err)
	}
	if target != "/usr/bin/python3" {
		t.Errorf("symlink target = %q, want /usr/bin/python3", target)
	}

	release()
	if _, err := os.Stat(binsDir); !os.IsNotExist(err) {
		t.Error("bins dir still present after release")
	}
}

func TestPrepareInterpreterBinsReplacesStaleLink(t *testing.T) {
	buildDir := t.TempDir()

	if _, release, err := prepareInterpreterBins(buildDir, "/old/python"); err != nil {
		t.Fatal(err)
	} else {
		defer release()
	}

	binsDir, release, err := prepareInterpreterBins(buildDir, "/new/python")
	if err != nil {
		t.Fatal(err)
	}
	defer release()

	target, err := os.Readlink(filepath.Join(binsDir, "python3"))
	if err != nil {
		t.Fatal(err)
	}
	if target != "/new/python" {
		t.Errorf("symlink target = %q, want /new/python", target)
	}
}

func TestRunRemovesBinsDirOnFailure(t *testing.T) {
	wd := t.TempDir()
	if err := os.MkdirAll(filepath.Join(wd, types.BuildDirName), 0o755); err != nil {
		t.Fatal(err)
	}

	r := testRunner(t, "linux", types.Options{})
	r.WorkDir = wd
	r.Command = "false"

	err := r.Run(context.Background())
	var procErr *process.Error
	if !errors.As(err, &procErr) {
		t.Fatalf("err = %v, want *process.Error", err)
	}
	if procErr.ExitCode != 1 {
		t.Errorf("ExitCode = %d, want 1", procErr.ExitCode)
	}

	binsDir := filepath.Join(wd, types.BuildDirName, types.BinsDirName)
	if _, err := os.Stat(binsDir); !os.IsNotExist(err) {
		t.Error("bins dir still present after a failed run")
	}
}

func TestRunRemovesBinsDirOnSuccess(t *testing.T) {
	wd := t.TempDir()
	if err := os.MkdirAll(filepath.Join(wd, types.BuildDirName), 0o755); err != nil {
		t.Fatal(err)
	}

	r := testRunner(t, "linux", types.Options{})
	r.WorkDir = wd
	r.Command = "true"

	if err := r.Run(context.Background()); err != nil {
		t.Fatal(err)
	}

	binsDir := filepath.Join(wd, types.BuildDirName, types.BinsDirName)
	if _, err := os.Stat(binsDir); !os.IsNotExist(err) {
		t.Error("bins dir still present after a successful run")
	}
}

func TestPrependPath(t *testing.T) {
	env := prependPath([]string{"HOME=/home/u", "PATH=/usr/bin:/bin"}, "/work/build/bins")
	found := false
	for _, kv := range env {
		if strings.HasPrefix(kv, "PATH=") {
			found = true
			if !strings.HasPrefix(kv, "PATH=/work/build/bins"+string(os.PathListSeparator)) {
				t.Errorf("PATH = %q, want the bins dir first", kv)
			}
		}
	}
	if !found {
		t.Fatal("no PATH entry in result")
	}
}

func hasArg(argv []string, want string) bool {
	for _, arg := range argv {
		if arg == want {
			return true
		}
	}
	return false
}
