//go:build unix

package autotools

import (
	"os"
	"path/filepath"

	"golang.org/x/sys/unix"
)

// checkExecutable reports whether the script at exe (relative to dir) may be run.
func checkExecutable(exe, dir string) error {
	if !filepath.IsAbs(exe) {
		exe = filepath.Join(dir, exe)
	}
	if err := unix.Access(exe, unix.X_OK); err != nil {
		return &os.PathError{Op: "access", Path: exe, Err: err}
	}
	return nil
}
