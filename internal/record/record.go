// Package record keeps track of what an install produced so it can be
// removed again.
package record

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"time"
)

// ErrUnsafePath is returned for recorded outputs that uninstall refuses to remove.
var ErrUnsafePath = errors.New("refusing to remove path")

// Record is the install record of one package.
type Record struct {
	Name        string    `json:"name"`
	Version     string    `json:"version"`
	SrcDir      string    `json:"src_dir"`
	DestDir     string    `json:"dest_dir"`
	Outputs     []string  `json:"outputs"`
	InstallTime time.Time `json:"install_time"`
}

// Load reads the record at path.
func Load(path string) (*Record, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var rec Record
	if err := json.Unmarshal(data, &rec); err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return &rec, nil
}

// Save writes rec to path, creating parent directories as needed.
func Save(path string, rec *Record) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	data, err := json.MarshalIndent(rec, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0o644)
}

// Uninstall removes every recorded output and then the record at path.
// Only file creation is reversed. It returns the outputs that were removed;
// outputs already gone are skipped.
func Uninstall(path string, rec *Record) ([]string, error) {
	for _, out := range rec.Outputs {
		if err := checkRemovable(out); err != nil {
			return nil, err
		}
	}

	var removed []string
	for _, out := range rec.Outputs {
		if _, err := os.Lstat(out); errors.Is(err, fs.ErrNotExist) {
			slog.Debug("already removed", "path", out)
			continue
		}
		if err := os.RemoveAll(out); err != nil {
			return removed, err
		}
		removed = append(removed, out)
	}
	if err := os.Remove(path); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return removed, err
	}
	return removed, nil
}

func checkRemovable(path string) error {
	clean := filepath.Clean(path)
	if !filepath.IsAbs(clean) || filepath.Dir(clean) == clean {
		return fmt.Errorf("%w %q", ErrUnsafePath, path)
	}
	return nil
}
