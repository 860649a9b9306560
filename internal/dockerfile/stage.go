package dockerfile

import (
	"io"
	"os"
	"path/filepath"
)

// CanonicalName is the file name build tooling expects for a build script.
const CanonicalName = "Dockerfile"

// withCanonicalName calls fn with a path whose base name is CanonicalName.
// When path already has that name it is used as is; otherwise the file is
// copied into a temporary directory that is removed on every return path.
func withCanonicalName(path string, fn func(staged string) error) (err error) {
	if filepath.Base(path) == CanonicalName {
		return fn(path)
	}

	dir, err := os.MkdirTemp("", "pinscan-")
	if err != nil {
		return err
	}
	defer func() {
		if rmErr := os.RemoveAll(dir); rmErr != nil && err == nil {
			err = rmErr
		}
	}()

	staged := filepath.Join(dir, CanonicalName)
	if err := copyFile(path, staged); err != nil {
		return err
	}
	return fn(staged)
}

func copyFile(src, dst string) error {
	in, err := os.Open(src)
	if err != nil {
		return err
	}
	defer in.Close()

	out, err := os.OpenFile(dst, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0o600)
	if err != nil {
		return err
	}
	if _, err := io.Copy(out, in); err != nil {
		_ = out.Close()
		return err
	}
	return out.Close()
}
