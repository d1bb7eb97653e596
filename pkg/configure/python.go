package configure

import (
	"context"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"

	"github.com/gypgo/gypgo/pkg/logger"
)

// pythonEnv overrides interpreter discovery when no flag is given.
const pythonEnv = "PYTHON"

// PathPythonFinder resolves the generator interpreter from an explicit
// override, the PYTHON environment variable, or the search path, in
// that order.
type PathPythonFinder struct {
	Logger logger.Logger
}

// Find implements interfaces.PythonFinder
func (f *PathPythonFinder) Find(ctx context.Context, override string) (string, error) {
	if override == "" {
		override = os.Getenv(pythonEnv)
	}
	if override != "" {
		path, err := exec.LookPath(override)
		if err != nil {
			return "", fmt.Errorf("could not find %q: %w", override, ErrUnresolvedToolchain)
		}
		return absPath(path), nil
	}

	for _, name := range []string{"python3", "python"} {
		if path, err := exec.LookPath(name); err == nil {
			if f.Logger != nil {
				f.Logger.Debug("found interpreter", logger.WithField("python", path))
			}
			return absPath(path), nil
		}
	}
	return "", fmt.Errorf("could not find python3 or python on PATH: %w", ErrUnresolvedToolchain)
}

func absPath(path string) string {
	if abs, err := filepath.Abs(path); err == nil {
		return abs
	}
	return path
}
