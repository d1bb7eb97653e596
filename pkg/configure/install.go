package configure

import (
	"archive/tar"
	"compress/gzip"
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/gypgo/gypgo/pkg/logger"
	"github.com/gypgo/gypgo/pkg/types"
)

// DevDirInstaller keeps development-headers trees under a local devdir,
// one subdirectory per release version. It can unpack a headers tarball
// into place; it never downloads anything itself.
type DevDirInstaller struct {
	DevDir  string
	Tarball string // local headers tarball; forces reinstall when set
	Logger  logger.Logger
}

// Install implements interfaces.HeadersInstaller
func (i *DevDirInstaller) Install(ctx context.Context, release types.ReleaseInfo, force bool) (string, error) {
	dir := filepath.Join(i.DevDir, release.VersionDir)

	if !force && headersPresent(dir) {
		if i.Logger != nil {
			i.Logger.Debug("headers already installed", logger.WithField("dir", dir))
		}
		return dir, nil
	}

	if i.Tarball == "" {
		return "", fmt.Errorf(
			"headers for node %s not found in %s; provide them with --tarball or point --nodedir at a headers tree",
			release.Version, dir)
	}

	if err := os.RemoveAll(dir); err != nil {
		return "", fmt.Errorf("failed to clear %s: %w", dir, err)
	}
	if err := extractTarball(i.Tarball, dir); err != nil {
		return "", fmt.Errorf("failed to unpack %s: %w", i.Tarball, err)
	}
	if !headersPresent(dir) {
		return "", fmt.Errorf("%s did not contain a development headers tree", i.Tarball)
	}

	if i.Logger != nil {
		i.Logger.Info("installed headers", logger.WithField("dir", dir))
	}
	return dir, nil
}

// headersPresent checks for the files configure later depends on.
func headersPresent(dir string) bool {
	for _, marker := range []string{
		filepath.Join(dir, "include", "node", "common.gypi"),
		filepath.Join(dir, "common.gypi"),
	} {
		if _, err := os.Stat(marker); err == nil {
			return true
		}
	}
	return false
}

// extractTarball unpacks a gzipped headers tarball into dest, stripping
// the single top-level directory the release archives carry.
func extractTarball(tarball, dest string) error {
	f, err := os.Open(tarball)
	if err != nil {
		return err
	}
	defer f.Close()

	gz, err := gzip.NewReader(f)
	if err != nil {
		return err
	}
	defer gz.Close()

	tr := tar.NewReader(gz)
	for {
		header, err := tr.Next()
		if err == io.EOF {
			return nil
		}
		if err != nil {
			return err
		}

		name := stripLeadingDir(header.Name)
		if name == "" {
			continue
		}
		target := filepath.Join(dest, filepath.FromSlash(name))
		if !strings.HasPrefix(target, filepath.Clean(dest)+string(os.PathSeparator)) {
			return fmt.Errorf("tarball entry escapes destination: %s", header.Name)
		}

		switch header.Typeflag {
		case tar.TypeDir:
			if err := os.MkdirAll(target, 0o755); err != nil {
				return err
			}
		case tar.TypeReg:
			if err := os.MkdirAll(filepath.Dir(target), 0o755); err != nil {
				return err
			}
			out, err := os.OpenFile(target, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, os.FileMode(header.Mode)&0o777)
			if err != nil {
				return err
			}
			if _, err := io.Copy(out, tr); err != nil {
				out.Close()
				return err
			}
			if err := out.Close(); err != nil {
				return err
			}
		}
	}
}

func stripLeadingDir(name string) string {
	name = strings.TrimPrefix(name, "./")
	if i := strings.IndexByte(name, '/'); i >= 0 {
		return name[i+1:]
	}
	return ""
}
