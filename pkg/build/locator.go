// Package build implements the second pipeline phase: locating the
// platform build executor and driving it against the generator output.
package build

import (
	"errors"
	"fmt"
	"os"
	"os/exec"

	"github.com/gypgo/gypgo/pkg/buildcfg"
	"github.com/gypgo/gypgo/pkg/platform"
	"github.com/gypgo/gypgo/pkg/types"
)

// ErrUnresolvedToolchain indicates the build executable could not be
// located
var ErrUnresolvedToolchain = errors.New("build tool not found")

// makeEnv overrides the make variant when no flag is given.
const makeEnv = "MAKE"

// Locator resolves the platform build executable.
type Locator struct {
	// LookPath is swappable for tests; defaults to exec.LookPath.
	LookPath func(file string) (string, error)
}

// NewLocator creates a locator using the real search path.
func NewLocator() *Locator {
	return &Locator{LookPath: exec.LookPath}
}

// Locate returns the build executor command. On Windows this is the
// MSBuild path recorded at configure time, never a search-path lookup;
// elsewhere it is the platform's make variant, overridable by option
// then environment, confirmed resolvable.
func (l *Locator) Locate(loaded *buildcfg.LoadedConfig, opts types.Options, plat string) (string, error) {
	if plat == platform.Windows {
		if loaded.MSBuildPath == "" {
			return "", fmt.Errorf("MSBuild is not set: %w", buildcfg.ErrMissingPrerequisite)
		}
		return loaded.MSBuildPath, nil
	}

	command := opts.Make
	if command == "" {
		command = os.Getenv(makeEnv)
	}
	if command == "" {
		command = platform.Get(plat).MakeVariant
	}

	if _, err := l.LookPath(command); err != nil {
		return "", fmt.Errorf("could not find %q on PATH: %w", command, ErrUnresolvedToolchain)
	}
	return command, nil
}
