package setup

import (
	"context"
	"fmt"
	"log/slog"
	"slices"

	"github.com/goplus/cmi/pkgs/buildsys"
)

// Phase is one step of an invocation.
type Phase interface {
	Run(ctx context.Context) error
}

// -----------------------------------------------------------------------------

// NoBinaryBuild disables building binary artifacts. The wrapped library
// hard-codes its installation prefix into generated headers, so nothing
// built before the final prefix is known can be relocated.
type NoBinaryBuild struct {
	c *Context
}

var _ Phase = (*NoBinaryBuild)(nil)

// NewNoBinaryBuild returns the build phase of c.
func NewNoBinaryBuild(c *Context) *NoBinaryBuild {
	return &NoBinaryBuild{c: c}
}

// Run always fails with ErrBinaryBuild.
func (b *NoBinaryBuild) Run(ctx context.Context) error {
	if dir, err := b.c.AbsBuildDir(); err == nil {
		slog.Debug("refusing binary build", "builddir", dir)
	}
	return ErrBinaryBuild
}

// -----------------------------------------------------------------------------

// State is the progress of an Installer.
type State int

const (
	Pending   State = iota // nothing has run yet
	Installed              // configure and make install succeeded
	Failed                 // terminal; partial files are left in place
)

func (s State) String() string {
	switch s {
	case Pending:
		return "pending"
	case Installed:
		return "installed"
	case Failed:
		return "failed"
	}
	return fmt.Sprintf("State(%d)", int(s))
}

// Installer builds and installs a package by running configure and
// make install with the destination directory as prefix.
type Installer struct {
	// ConfigureArgs are appended after --prefix.
	ConfigureArgs []string
	// Outputs reported by earlier install steps.
	BaseOutputs []string

	c     *Context
	sys   buildsys.BuildSystem
	state State
}

var _ Phase = (*Installer)(nil)

// NewInstaller returns a pending installer driving sys with the dirs of c.
func NewInstaller(c *Context, sys buildsys.BuildSystem) *Installer {
	return &Installer{c: c, sys: sys}
}

// SkipBuild reports whether a separate build step precedes the install.
// It never does: the prefix is unknown until install time.
func (i *Installer) SkipBuild() bool {
	return true
}

// State returns the current state.
func (i *Installer) State() State {
	return i.state
}

// Run configures and installs inside the source directory. Any failure is
// terminal; files already installed are left in place.
func (i *Installer) Run(ctx context.Context) error {
	if i.state != Pending {
		return fmt.Errorf("installer is %s", i.state)
	}
	if err := i.run(ctx); err != nil {
		i.state = Failed
		return err
	}
	i.state = Installed
	return nil
}

func (i *Installer) run(ctx context.Context) error {
	destDir, err := i.c.DestDir()
	if err != nil {
		return err
	}
	srcDir := i.c.AbsSrcDir()

	return InDir(srcDir, func() error {
		i.sys.Source(srcDir)
		i.sys.InstallDir(destDir)
		for k, v := range i.c.Env {
			i.sys.Env(k, v)
		}

		slog.Info("configure", "srcdir", srcDir, "prefix", destDir)
		if err := i.sys.Configure(ctx, i.ConfigureArgs...); err != nil {
			return err
		}
		makeCmd := i.c.Make()
		slog.Info("install", "make", makeCmd)
		return i.sys.Install(ctx, makeCmd, "install")
	})
}

// Outputs returns the installed paths so the installation can be reversed.
// The destination directory is included once the install succeeded.
func (i *Installer) Outputs() []string {
	outputs := slices.Clone(i.BaseOutputs)
	if i.state != Installed {
		return outputs
	}
	destDir, err := i.c.DestDir()
	if err != nil {
		return outputs
	}
	return append(outputs, destDir)
}
