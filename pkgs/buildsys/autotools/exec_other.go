//go:build !unix

package autotools

import (
	"os"
	"path/filepath"
)

func checkExecutable(exe, dir string) error {
	if !filepath.IsAbs(exe) {
		exe = filepath.Join(dir, exe)
	}
	_, err := os.Stat(exe)
	return err
}
