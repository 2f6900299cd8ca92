// Package autotools wraps the classic configure/make/make-install workflow.
package autotools

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/exec"
	"path/filepath"
	"sort"
	"strings"

	"github.com/goplus/cmi/pkgs/buildsys"
)

// DefaultMake is the make command used when MAKE is unset or empty.
const DefaultMake = "make"

// AutoTools wraps common Autotools build steps with chainable configuration.
type AutoTools struct {
	SourceDir string

	// Stdout and Stderr receive the output of every spawned tool.
	// Nil discards it.
	Stdout io.Writer
	Stderr io.Writer

	buildDir   string
	installDir string
	env        map[string]string
}

var _ buildsys.BuildSystem = (*AutoTools)(nil)

// New creates an AutoTools helper that builds in tree, i.e. inside the
// current working directory.
func New(sourceDir string) *AutoTools {
	return &AutoTools{
		SourceDir: sourceDir,
		env:       map[string]string{},
	}
}

func (a *AutoTools) Source(dir string) {
	a.SourceDir = dir
}

func (a *AutoTools) InstallDir(dir string) {
	a.installDir = dir
}

// BuildDir moves the configure and make steps out of tree.
func (a *AutoTools) BuildDir(dir string) {
	a.buildDir = dir
}

// Env sets key=value for every command spawned later. The orchestrator's
// own environment is left untouched.
func (a *AutoTools) Env(key, value string) {
	if a.env == nil {
		a.env = map[string]string{}
	}
	a.env[key] = value
}

// Configure runs <SourceDir>/configure in the build directory.
// --prefix is prepended automatically when the install dir is set.
func (a *AutoTools) Configure(ctx context.Context, args ...string) error {
	dir := a.workDir()
	if dir != "." {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return err
		}
	}

	exe := "./configure"
	if a.SourceDir != "" {
		exe = filepath.Join(a.SourceDir, "configure")
	}
	if err := checkExecutable(exe, dir); err != nil {
		return fmt.Errorf("configure script: %w", err)
	}

	configArgs := []string{}
	if a.installDir != "" {
		configArgs = append(configArgs, "--prefix="+a.installDir)
	}
	configArgs = append(configArgs, args...)

	return a.run(ctx, exe, configArgs)
}

// Build runs make (or provided args) in the build directory.
func (a *AutoTools) Build(ctx context.Context, args ...string) error {
	cmdArgs := []string{a.Make()}
	if len(args) > 0 {
		cmdArgs = args
	}
	return a.run(ctx, cmdArgs[0], cmdArgs[1:])
}

// Install runs make install (or provided args) in the build directory.
func (a *AutoTools) Install(ctx context.Context, args ...string) error {
	cmdArgs := []string{a.Make(), "install"}
	if len(args) > 0 {
		cmdArgs = args
	}
	return a.run(ctx, cmdArgs[0], cmdArgs[1:])
}

// Make returns the make command, honoring a MAKE set through Env before
// the process environment.
func (a *AutoTools) Make() string {
	if m := a.env["MAKE"]; m != "" {
		return m
	}
	if m := os.Getenv("MAKE"); m != "" {
		return m
	}
	return DefaultMake
}

// OutputDir returns the install dir if set, otherwise the build dir.
func (a *AutoTools) OutputDir() string {
	if a.installDir != "" {
		return a.installDir
	}
	return a.workDir()
}

func (a *AutoTools) workDir() string {
	if a.buildDir == "" {
		return "."
	}
	return a.buildDir
}

func (a *AutoTools) run(ctx context.Context, bin string, args []string) error {
	workdir := a.workDir()
	cmd := exec.CommandContext(ctx, bin, args...)
	cmd.Dir = workdir
	cmd.Stdout = writerOrDiscard(a.Stdout)
	cmd.Stderr = writerOrDiscard(a.Stderr)
	if len(a.env) > 0 {
		cmd.Env = mergeEnv(os.Environ(), a.env)
	}

	slog.Debug("run", "cmd", bin, "args", args, "dir", workdir)
	if err := cmd.Run(); err != nil {
		return &buildsys.CommandError{
			Args: append([]string{bin}, args...),
			Dir:  workdir,
			Err:  err,
		}
	}
	return nil
}

func writerOrDiscard(w io.Writer) io.Writer {
	if w == nil {
		return io.Discard
	}
	return w
}

func mergeEnv(base []string, override map[string]string) []string {
	envMap := make(map[string]string, len(base))
	for _, kv := range base {
		if k, v, ok := strings.Cut(kv, "="); ok {
			envMap[k] = v
		}
	}
	for k, v := range override {
		envMap[k] = v
	}
	keys := make([]string, 0, len(envMap))
	for k := range envMap {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	out := make([]string, 0, len(keys))
	for _, k := range keys {
		out = append(out, k+"="+envMap[k])
	}
	return out
}
