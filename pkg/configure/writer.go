package configure

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/gypgo/gypgo/pkg/types"
)

// configFileHeader precedes the serialized artifact; the loader strips
// it before decoding.
const configFileHeader = "# Do not edit. Generated by the configure step."

// JSONConfigWriter serializes the build configuration artifact into the
// build output directory.
type JSONConfigWriter struct{}

// Write implements interfaces.ConfigWriter
func (w *JSONConfigWriter) Write(buildDir string, config *types.BuildConfig) (string, error) {
	data, err := json.MarshalIndent(config, "", "  ")
	if err != nil {
		return "", fmt.Errorf("failed to serialize build configuration: %w", err)
	}

	path := filepath.Join(buildDir, types.ConfigFileName)
	contents := configFileHeader + "\n" + string(data) + "\n"
	if err := os.WriteFile(path, []byte(contents), 0o644); err != nil {
		return "", fmt.Errorf("failed to write %s: %w", path, err)
	}
	return path, nil
}
