// Package fsutil provides the filesystem operations the builder depends on.
package fsutil

import (
	"bytes"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
)

// Exists reports whether path exists, file or directory.
func Exists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}

// CopyFile copies a regular file, preserving its permission bits. The
// destination's parent directory must already exist.
func CopyFile(src, dest string) error {
	info, err := os.Stat(src)
	if err != nil {
		return err
	}
	in, err := os.Open(src)
	if err != nil {
		return err
	}
	defer in.Close()

	out, err := os.OpenFile(dest, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, info.Mode().Perm())
	if err != nil {
		return err
	}
	if _, err := io.Copy(out, in); err != nil {
		out.Close()
		return fmt.Errorf("copy %s: %w", src, err)
	}
	return out.Close()
}

// CopyDir recursively copies the tree rooted at src into dest, creating
// dest if needed. Existing files under dest are overwritten; files present
// only in dest are left alone, so copies from several sources merge.
func CopyDir(src, dest string) error {
	return filepath.WalkDir(src, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		rel, err := filepath.Rel(src, path)
		if err != nil {
			return err
		}
		target := filepath.Join(dest, rel)
		if d.IsDir() {
			info, err := d.Info()
			if err != nil {
				return err
			}
			return os.MkdirAll(target, info.Mode().Perm())
		}
		// Framework bundles carry internal symlinks; recreate them rather
		// than following them.
		if d.Type()&fs.ModeSymlink != 0 {
			link, err := os.Readlink(path)
			if err != nil {
				return err
			}
			if err := os.Remove(target); err != nil && !os.IsNotExist(err) {
				return err
			}
			return os.Symlink(link, target)
		}
		return CopyFile(path, target)
	})
}

// CopyPath copies src to dest, dispatching on whether src is a directory.
// The destination's parent directory is created if needed.
func CopyPath(src, dest string) error {
	info, err := os.Stat(src)
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(dest), 0o755); err != nil {
		return err
	}
	if info.IsDir() {
		return CopyDir(src, dest)
	}
	return CopyFile(src, dest)
}

// ReplaceInFile rewrites the file at path, replacing every occurrence of
// old with new. The file is treated as text and rewritten whole.
func ReplaceInFile(path, old, new string) error {
	info, err := os.Stat(path)
	if err != nil {
		return err
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return err
	}
	replaced := bytes.ReplaceAll(data, []byte(old), []byte(new))
	return os.WriteFile(path, replaced, info.Mode().Perm())
}
