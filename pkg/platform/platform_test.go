package platform_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/gypgo/gypgo/pkg/platform"
)

func TestMSBuildPlatform(t *testing.T) {
	tests := []struct {
		arch string
		want string
	}{
		{"x64", "x64"},
		{"X64", "x64"},
		{"arm", "ARM"},
		{"Arm", "ARM"},
		{"arm64", "ARM64"},
		{"ARM64", "ARM64"},
		{"ia32", "Win32"},
		{"mips", "Win32"},
		{"", "Win32"},
	}

	for _, tt := range tests {
		t.Run(tt.arch, func(t *testing.T) {
			if got := platform.MSBuildPlatform(tt.arch); got != tt.want {
				t.Errorf("MSBuildPlatform(%q) = %q, want %q", tt.arch, got, tt.want)
			}
		})
	}
}

func TestMakeVariants(t *testing.T) {
	tests := []struct {
		platform string
		want     string
	}{
		{"aix", "gmake"},
		{"os400", "gmake"},
		{"freebsd", "gmake"},
		{"openbsd", "gmake"},
		{"netbsd", "gmake"},
		{"os390", "make"},
		{"linux", "make"},
		{"darwin", "make"},
		{"sunos", "make"},
	}

	for _, tt := range tests {
		t.Run(tt.platform, func(t *testing.T) {
			if got := platform.Get(tt.platform).MakeVariant; got != tt.want {
				t.Errorf("Get(%q).MakeVariant = %q, want %q", tt.platform, got, tt.want)
			}
		})
	}
}

func TestNeedsExportsFile(t *testing.T) {
	for _, p := range []string{"aix", "os390", "os400"} {
		if !platform.NeedsExportsFile(p) {
			t.Errorf("NeedsExportsFile(%q) = false, want true", p)
		}
	}
	for _, p := range []string{"linux", "darwin", "windows", "freebsd"} {
		if platform.NeedsExportsFile(p) {
			t.Errorf("NeedsExportsFile(%q) = true, want false", p)
		}
	}
}

func TestFindAccessible(t *testing.T) {
	root := t.TempDir()
	if err := os.MkdirAll(filepath.Join(root, "out", "Debug"), 0o755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(filepath.Join(root, "out", "Debug", "node.exp"), []byte("exports"), 0o644); err != nil {
		t.Fatal(err)
	}

	candidates := []string{
		"include/node/node.exp",
		"out/Release/node.exp",
		"out/Debug/node.exp",
	}

	got := platform.FindAccessible(root, candidates)
	want := filepath.Join(root, "out", "Debug", "node.exp")
	if got != want {
		t.Errorf("FindAccessible() = %q, want %q", got, want)
	}

	if got := platform.FindAccessible(root, []string{"missing/file"}); got != "" {
		t.Errorf("FindAccessible() = %q for missing candidates, want empty", got)
	}
}

func TestFindAccessibleOrder(t *testing.T) {
	// The first readable candidate wins even when later ones exist.
	root := t.TempDir()
	for _, rel := range []string{"a/node.exp", "b/node.exp"} {
		path := filepath.Join(root, filepath.FromSlash(rel))
		if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
			t.Fatal(err)
		}
		if err := os.WriteFile(path, nil, 0o644); err != nil {
			t.Fatal(err)
		}
	}

	got := platform.FindAccessible(root, []string{"b/node.exp", "a/node.exp"})
	if want := filepath.Join(root, "b", "node.exp"); got != want {
		t.Errorf("FindAccessible() = %q, want %q", got, want)
	}
}
