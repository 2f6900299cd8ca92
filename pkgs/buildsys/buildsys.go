package buildsys

import (
	"context"
	"fmt"
	"strings"
)

// BuildSystem captures shared capabilities of build helpers (Autotools and friends).
// It keeps the common lifecycle and env setup; implementations add their own extras.
type BuildSystem interface {
	// Basic paths.
	Source(dir string)
	InstallDir(dir string)

	// Environment helper.
	Env(key, val string)

	// Lifecycle. Every step blocks until the external tool exits.
	Configure(ctx context.Context, args ...string) error
	Build(ctx context.Context, args ...string) error
	Install(ctx context.Context, args ...string) error

	// Where artifacts land.
	OutputDir() string
}

// CommandError is an external tool that did not exit zero.
type CommandError struct {
	Args []string
	Dir  string
	Err  error
}

func (e *CommandError) Error() string {
	return fmt.Sprintf("%s (in %s): %v", strings.Join(e.Args, " "), e.Dir, e.Err)
}

func (e *CommandError) Unwrap() error {
	return e.Err
}
