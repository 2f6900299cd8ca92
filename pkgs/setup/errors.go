package setup

import (
	"errors"
	"fmt"
)

var (
	// ErrNoBuild is reported when the build directory is requested but no
	// build phase takes part in the current invocation.
	ErrNoBuild = errors.New("no build is being performed in this invocation")

	// ErrNoInstall is reported when the destination directory is requested
	// but no install phase takes part in the current invocation.
	ErrNoInstall = errors.New("cannot determine installation prefix in an invocation that does not install")

	// ErrBinaryBuild is returned by every attempt to build a binary artifact.
	ErrBinaryBuild = errors.New("no binary artifact can be built because the installation prefix is hard-coded into generated headers; install from source instead (cmi install, or pip install --no-binary :all:)")
)

// MissingConfigError reports an accessor that needs a phase which is not
// active in the current invocation.
type MissingConfigError struct {
	Phase string // "build" or "install"
	Field string // accessor that was called
}

func (e *MissingConfigError) Error() string {
	return fmt.Sprintf("%s: %v", e.Field, e.Unwrap())
}

func (e *MissingConfigError) Unwrap() error {
	if e.Phase == "install" {
		return ErrNoInstall
	}
	return ErrNoBuild
}
