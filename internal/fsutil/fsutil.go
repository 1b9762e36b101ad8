// Package fsutil holds the idempotent file helpers used to install the agent
// binary and seed its workspace.
package fsutil

import (
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"runtime"
)

// Exists reports whether path exists. Errors other than "not exist" count
// as existing so callers never overwrite something they cannot inspect.
func Exists(path string) bool {
	_, err := os.Stat(path)
	return err == nil || !errors.Is(err, fs.ErrNotExist)
}

// IsDir reports whether path is an existing directory.
func IsDir(path string) bool {
	info, err := os.Stat(path)
	return err == nil && info.IsDir()
}

// InstallBinary copies src to dst and marks it executable. It is a no-op when
// dst already exists. Returns true if the binary was installed.
func InstallBinary(src, dst string) (bool, error) {
	if Exists(dst) {
		return false, nil
	}

	if err := os.MkdirAll(filepath.Dir(dst), 0o755); err != nil {
		return false, fmt.Errorf("creating bin dir %s: %w", filepath.Dir(dst), err)
	}

	if err := copyFile(src, dst, 0o755); err != nil {
		return false, fmt.Errorf("installing binary %s -> %s: %w", src, dst, err)
	}

	if runtime.GOOS != "windows" {
		if err := os.Chmod(dst, 0o755); err != nil {
			return false, fmt.Errorf("setting executable permission on %s: %w", dst, err)
		}
	}

	return true, nil
}

// CopyFileIfNotExists copies src to dst unless dst already exists, creating
// parent directories on demand. Returns true if the file was copied.
func CopyFileIfNotExists(src, dst string) (bool, error) {
	if Exists(dst) {
		return false, nil
	}

	if err := os.MkdirAll(filepath.Dir(dst), 0o755); err != nil {
		return false, fmt.Errorf("creating dir %s: %w", filepath.Dir(dst), err)
	}

	info, err := os.Stat(src)
	if err != nil {
		return false, fmt.Errorf("copying %s -> %s: %w", src, dst, err)
	}
	if err := copyFile(src, dst, info.Mode().Perm()); err != nil {
		return false, fmt.Errorf("copying %s -> %s: %w", src, dst, err)
	}
	return true, nil
}

// CopyDirRecursive recreates the tree under src at dst. Files already present
// at dst are overwritten.
func CopyDirRecursive(src, dst string) error {
	info, err := os.Stat(src)
	if err != nil {
		return fmt.Errorf("copying dir %s -> %s: %w", src, dst, err)
	}
	if !info.IsDir() {
		return fmt.Errorf("copying dir %s -> %s: source is not a directory", src, dst)
	}

	return filepath.WalkDir(src, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}

		rel, err := filepath.Rel(src, path)
		if err != nil {
			return err
		}
		target := filepath.Join(dst, rel)

		if d.IsDir() {
			if err := os.MkdirAll(target, 0o755); err != nil {
				return fmt.Errorf("creating dir %s: %w", target, err)
			}
			return nil
		}

		fi, err := d.Info()
		if err != nil {
			return err
		}
		if !fi.Mode().IsRegular() {
			return nil
		}
		if err := copyFile(path, target, fi.Mode().Perm()); err != nil {
			return fmt.Errorf("copying %s -> %s: %w", path, target, err)
		}
		return nil
	})
}

// copyFile copies a single file from src to dst, replacing dst. The data is
// written to a temp file next to dst and renamed into place, so a failed copy
// never leaves a partial dst behind.
func copyFile(src, dst string, perm fs.FileMode) error {
	in, err := os.Open(src)
	if err != nil {
		return err
	}
	defer func() { _ = in.Close() }()

	out, err := os.CreateTemp(filepath.Dir(dst), "."+filepath.Base(dst)+".tmp-*")
	if err != nil {
		return err
	}
	tmp := out.Name()
	fail := func(err error) error {
		_ = out.Close()
		_ = os.Remove(tmp)
		return err
	}

	if _, err := io.Copy(out, in); err != nil {
		return fail(err)
	}
	if err := out.Chmod(perm); err != nil && runtime.GOOS != "windows" {
		return fail(err)
	}
	if err := out.Close(); err != nil {
		_ = os.Remove(tmp)
		return err
	}
	if err := os.Rename(tmp, dst); err != nil {
		_ = os.Remove(tmp)
		return err
	}
	return nil
}
