package configure_test

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/gypgo/gypgo/pkg/configure"
	"github.com/gypgo/gypgo/pkg/types"
)

func TestJSONConfigWriter(t *testing.T) {
	buildDir := t.TempDir()
	writer := &configure.JSONConfigWriter{}

	path, err := writer.Write(buildDir, &types.BuildConfig{
		TargetDefaults: types.TargetDefaults{DefaultConfiguration: "Debug"},
		Variables:      types.Variables{TargetArch: "arm64"},
	})
	if err != nil {
		t.Fatal(err)
	}
	if want := filepath.Join(buildDir, "config.gypi"); path != want {
		t.Errorf("path = %q, want %q", path, want)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	lines := strings.SplitN(string(data), "\n", 2)
	if !strings.HasPrefix(lines[0], "#") {
		t.Errorf("first line = %q, want a comment", lines[0])
	}
	if !strings.Contains(lines[1], `"default_configuration": "Debug"`) {
		t.Errorf("body missing the build type: %s", lines[1])
	}
	if !strings.Contains(lines[1], `"target_arch": "arm64"`) {
		t.Errorf("body missing the architecture: %s", lines[1])
	}
}
