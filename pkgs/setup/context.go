// Package setup resolves autotools-style directories for a non-relocatable
// native package and drives its configure/make-install sequence.
//
// The names mirror the variables automake substitutes into Makefiles:
// abs_srcdir, builddir, abs_builddir and MAKE. The destination directory is
// the installation prefix handed to configure.
package setup

import (
	"os"
	"path/filepath"
)

// DefaultMake is the make command used when MAKE is unset.
const DefaultMake = "make"

// BuildPhase is the configuration of an active build phase.
type BuildPhase struct {
	// BuildBase is the scratch directory for intermediate artifacts.
	// It may be relative to the source directory.
	BuildBase string
}

// InstallPhase is the configuration of an active install phase.
type InstallPhase struct {
	// InstallLib is the root under which the package directory is created.
	InstallLib string
}

// Context is the configuration shared by the phases of one invocation.
// A nil Build or Install means that phase is not part of the invocation.
type Context struct {
	Name    string
	Build   *BuildPhase
	Install *InstallPhase

	// Env is set for every spawned tool. A MAKE entry takes precedence over
	// the process environment.
	Env map[string]string

	srcDir string
}

// NewContext returns a context rooted at srcDir, made absolute.
func NewContext(srcDir, name string) (*Context, error) {
	if srcDir == "" {
		srcDir = "."
	}
	abs, err := filepath.Abs(srcDir)
	if err != nil {
		return nil, err
	}
	return &Context{Name: name, srcDir: abs}, nil
}

// AbsSrcDir returns the absolute directory holding the build descriptor,
// equivalent to @abs_srcdir@.
func (c *Context) AbsSrcDir() string {
	return c.srcDir
}

// BuildDir returns the build directory, equivalent to @builddir@.
// It is only available when a build phase is active.
func (c *Context) BuildDir() (string, error) {
	if c.Build == nil {
		return "", &MissingConfigError{Phase: "build", Field: "builddir"}
	}
	return c.Build.BuildBase, nil
}

// AbsBuildDir returns BuildDir joined to the source directory when relative,
// equivalent to @abs_builddir@.
func (c *Context) AbsBuildDir() (string, error) {
	dir, err := c.BuildDir()
	if err != nil {
		return "", &MissingConfigError{Phase: "build", Field: "abs_builddir"}
	}
	if !filepath.IsAbs(dir) {
		dir = filepath.Join(c.srcDir, dir)
	}
	return dir, nil
}

// DestDir returns the installation prefix <install-lib>/<name>, the value
// passed to configure --prefix. It is only available when an install phase
// is active.
func (c *Context) DestDir() (string, error) {
	if c.Install == nil {
		return "", &MissingConfigError{Phase: "install", Field: "destdir"}
	}
	return filepath.Join(c.Install.InstallLib, c.Name), nil
}

// Make returns the make command: MAKE from Env, then from the process
// environment, then DefaultMake.
func (c *Context) Make() string {
	if m := c.Env["MAKE"]; m != "" {
		return m
	}
	if m := os.Getenv("MAKE"); m != "" {
		return m
	}
	return DefaultMake
}
