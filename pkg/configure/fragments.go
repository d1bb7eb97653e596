package configure

import (
	"fmt"
	"os"
	"path/filepath"
)

// fragmentNames are probed in fixed priority order; each file found in
// the working directory becomes an include directive for the generator.
var fragmentNames = []string{"config.gypi", "common.gypi"}

// findFragments scans the working directory for override fragments.
// A missing file just continues the scan; any other stat error aborts
// the whole configure run.
func findFragments(dir string) ([]string, error) {
	var found []string
	for _, name := range fragmentNames {
		path := filepath.Join(dir, name)
		if _, err := os.Stat(path); err != nil {
			if os.IsNotExist(err) {
				continue
			}
			return nil, fmt.Errorf("failed to stat %s: %w", path, err)
		}
		found = append(found, path)
	}
	return found, nil
}
