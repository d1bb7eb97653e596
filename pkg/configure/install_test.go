package configure_test

import (
	"archive/tar"
	"compress/gzip"
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/gypgo/gypgo/pkg/configure"
	"github.com/gypgo/gypgo/pkg/types"
)

// writeHeadersTarball builds a minimal gzipped headers archive with the
// single top-level directory real release archives carry.
func writeHeadersTarball(t *testing.T, path string) {
	t.Helper()
	f, err := os.Create(path)
	if err != nil {
		t.Fatal(err)
	}
	defer f.Close()

	gz := gzip.NewWriter(f)
	tw := tar.NewWriter(gz)

	entries := []struct {
		name string
		body string
	}{
		{"node-v20.10.0/include/node/common.gypi", "{}"},
		{"node-v20.10.0/include/node/node.h", "// header"},
	}
	for _, e := range entries {
		if err := tw.WriteHeader(&tar.Header{
			Name:     e.name,
			Typeflag: tar.TypeReg,
			Mode:     0o644,
			Size:     int64(len(e.body)),
		}); err != nil {
			t.Fatal(err)
		}
		if _, err := tw.Write([]byte(e.body)); err != nil {
			t.Fatal(err)
		}
	}
	if err := tw.Close(); err != nil {
		t.Fatal(err)
	}
	if err := gz.Close(); err != nil {
		t.Fatal(err)
	}
}

func TestInstallFromTarball(t *testing.T) {
	devDir := t.TempDir()
	tarball := filepath.Join(t.TempDir(), "headers.tar.gz")
	writeHeadersTarball(t, tarball)

	installer := &configure.DevDirInstaller{DevDir: devDir, Tarball: tarball}
	release := types.ProcessRelease("20.10.0", "v22.1.0")

	dir, err := installer.Install(context.Background(), release, true)
	if err != nil {
		t.Fatal(err)
	}
	if want := filepath.Join(devDir, "20.10.0"); dir != want {
		t.Errorf("dir = %q, want %q", dir, want)
	}

	// Leading archive directory is stripped.
	if _, err := os.Stat(filepath.Join(dir, "include", "node", "node.h")); err != nil {
		t.Errorf("expected extracted header: %v", err)
	}
}

func TestInstallIdempotentWhenPresent(t *testing.T) {
	devDir := t.TempDir()
	marker := filepath.Join(devDir, "20.10.0", "include", "node", "common.gypi")
	if err := os.MkdirAll(filepath.Dir(marker), 0o755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(marker, []byte("{}"), 0o644); err != nil {
		t.Fatal(err)
	}

	installer := &configure.DevDirInstaller{DevDir: devDir}
	release := types.ProcessRelease("20.10.0", "v22.1.0")

	dir, err := installer.Install(context.Background(), release, false)
	if err != nil {
		t.Fatal(err)
	}
	if want := filepath.Join(devDir, "20.10.0"); dir != want {
		t.Errorf("dir = %q, want %q", dir, want)
	}
}

func TestInstallMissingWithoutTarball(t *testing.T) {
	installer := &configure.DevDirInstaller{DevDir: t.TempDir()}
	release := types.ProcessRelease("20.10.0", "v22.1.0")

	if _, err := installer.Install(context.Background(), release, false); err == nil {
		t.Fatal("expected an error for absent headers and no tarball")
	}
}

func TestInstallForceReplacesTree(t *testing.T) {
	devDir := t.TempDir()
	stale := filepath.Join(devDir, "20.10.0", "stale.txt")
	if err := os.MkdirAll(filepath.Dir(stale), 0o755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(stale, []byte("old"), 0o644); err != nil {
		t.Fatal(err)
	}

	tarball := filepath.Join(t.TempDir(), "headers.tar.gz")
	writeHeadersTarball(t, tarball)

	installer := &configure.DevDirInstaller{DevDir: devDir, Tarball: tarball}
	release := types.ProcessRelease("20.10.0", "v22.1.0")

	dir, err := installer.Install(context.Background(), release, true)
	if err != nil {
		t.Fatal(err)
	}
	if _, err := os.Stat(filepath.Join(dir, "stale.txt")); !os.IsNotExist(err) {
		t.Error("stale file survived a forced reinstall")
	}
}
