package internal

import (
	"fmt"
	"path/filepath"

	"github.com/goplus/cmi/internal/env"
	"github.com/goplus/cmi/pkgs/descriptor"
	"github.com/goplus/cmi/pkgs/setup"
)

// loadProject resolves srcDir, loads its .env and its build descriptor.
// The returned context has no phase active.
func loadProject(srcDir string) (*setup.Context, *descriptor.Descriptor, error) {
	c, err := setup.NewContext(srcDir, "")
	if err != nil {
		return nil, nil, err
	}
	if err := env.LoadDotEnv(c.AbsSrcDir()); err != nil {
		return nil, nil, fmt.Errorf("failed to load .env: %w", err)
	}
	d, err := descriptor.Load(c.AbsSrcDir())
	if err != nil {
		return nil, nil, fmt.Errorf("failed to load build descriptor: %w", err)
	}
	c.Name = d.Name
	c.Env = d.Env
	return c, d, nil
}

// resolveInstallLib returns the absolute install-lib, falling back to the default.
func resolveInstallLib(flag string) (string, error) {
	if flag != "" {
		return filepath.Abs(flag)
	}
	return env.InstallLib()
}

// resolveRecord returns the absolute record path, falling back to the default.
func resolveRecord(flag, installLib, name string) (string, error) {
	if flag != "" {
		return filepath.Abs(flag)
	}
	return env.RecordPath(installLib, name), nil
}
