// Package descriptor reads cmi.yaml, the build descriptor that sits next to
// a package's configure script.
package descriptor

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"golang.org/x/mod/semver"
	"gopkg.in/yaml.v3"
)

// FileName is the descriptor file looked up in the source directory.
const FileName = "cmi.yaml"

var (
	ErrNoName     = errors.New("descriptor: name is required")
	ErrBadName    = errors.New("descriptor: name must be a single path element")
	ErrBadVersion = errors.New("descriptor: version is not a semantic version")
)

type Descriptor struct {
	Name          string            `yaml:"name"`
	Version       string            `yaml:"version"`
	Author        string            `yaml:"author,omitempty"`
	URL           string            `yaml:"url,omitempty"`
	License       string            `yaml:"license,omitempty"`
	LicenseFiles  []string          `yaml:"license_files,omitempty"`
	Description   string            `yaml:"description,omitempty"`
	ConfigureArgs []string          `yaml:"configure_args,omitempty"`
	Env           map[string]string `yaml:"env,omitempty"`
}

// Parse decodes a descriptor from data, or from file when data is nil.
func Parse(file string, data []byte) (*Descriptor, error) {
	var reader io.Reader

	if data != nil {
		reader = bytes.NewBuffer(data)
	} else {
		f, err := os.Open(file)
		if err != nil {
			return nil, err
		}
		defer f.Close()
		reader = f
	}

	var d Descriptor

	dec := yaml.NewDecoder(reader)
	dec.KnownFields(true)
	if err := dec.Decode(&d); err != nil {
		if errors.Is(err, io.EOF) {
			return nil, fmt.Errorf("%s: %w", file, ErrNoName)
		}
		return nil, fmt.Errorf("%s: %w", file, err)
	}
	if err := d.Validate(); err != nil {
		return nil, fmt.Errorf("%s: %w", file, err)
	}

	return &d, nil
}

// Load parses the descriptor in dir.
func Load(dir string) (*Descriptor, error) {
	return Parse(filepath.Join(dir, FileName), nil)
}

// Validate checks the fields the orchestrator depends on.
func (d *Descriptor) Validate() error {
	if err := ValidateName(d.Name); err != nil {
		return err
	}
	if !semver.IsValid(canonical(d.Version)) {
		return fmt.Errorf("%w: %q", ErrBadVersion, d.Version)
	}
	return nil
}

// ValidateName checks that name is usable as a single directory below the
// install root.
func ValidateName(name string) error {
	switch {
	case name == "":
		return ErrNoName
	case name == "." || name == ".." || strings.ContainsAny(name, `/\`):
		return fmt.Errorf("%w: %q", ErrBadName, name)
	}
	return nil
}

// Compare compares two descriptor versions, with or without a leading "v".
// The result is -1, 0 or +1. An invalid version sorts before valid ones.
func Compare(v1, v2 string) int {
	return semver.Compare(canonical(v1), canonical(v2))
}

func canonical(v string) string {
	if v == "" || strings.HasPrefix(v, "v") {
		return v
	}
	return "v" + v
}
