package internal

import (
	"bytes"
	"context"
	"io"
	"os"
	"os/exec"
	"path/filepath"
	"runtime"
	"strings"
	"testing"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/goplus/cmi/internal/record"
	"github.com/goplus/cmi/pkgs/buildsys"
	"github.com/goplus/cmi/pkgs/descriptor"
	"github.com/goplus/cmi/pkgs/setup"
)

// execute runs the root command with args and fresh flag values.
func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()
	resetFlags(rootCmd)

	var out bytes.Buffer
	rootCmd.SetOut(&out)
	rootCmd.SetErr(io.Discard)
	rootCmd.SetArgs(args)
	err := rootCmd.ExecuteContext(context.Background())
	return out.String(), err
}

func resetFlags(cmd *cobra.Command) {
	reset := func(f *pflag.Flag) {
		_ = f.Value.Set(f.DefValue)
		f.Changed = false
	}
	cmd.Flags().VisitAll(reset)
	cmd.PersistentFlags().VisitAll(reset)
	for _, sub := range cmd.Commands() {
		resetFlags(sub)
	}
}

func skipWithoutShell(t *testing.T) {
	t.Helper()
	if runtime.GOOS == "windows" {
		t.Skip("shell scripts are not supported on windows")
	}
	if _, err := exec.LookPath("sh"); err != nil {
		t.Skip("sh not found in PATH")
	}
}

const configureScript = `#!/bin/sh
for a; do
	case $a in
	--prefix=*) echo "PREFIX=${a#--prefix=}" > config.mk ;;
	esac
done
echo "$*" > configure.log
`

const makeScript = `#!/bin/sh
. ./config.mk
echo "$*" > make.log
mkdir -p "$PREFIX/include"
echo "#define PREFIX \"$PREFIX\"" > "$PREFIX/include/antic_config.h"
`

// newProject writes a fake autotools project and a fake make into a temp dir.
func newProject(t *testing.T, configure string) (srcDir, installLib string) {
	t.Helper()
	tmp := t.TempDir()
	srcDir = filepath.Join(tmp, "antic")
	installLib = filepath.Join(tmp, "site-packages")
	require.NoError(t, os.MkdirAll(srcDir, 0755))

	data := "name: antic\nversion: 0.2.1\nconfigure_args: [--disable-static]\n"
	require.NoError(t, os.WriteFile(filepath.Join(srcDir, "cmi.yaml"), []byte(data), 0644))
	require.NoError(t, os.WriteFile(filepath.Join(srcDir, "configure"), []byte(configure), 0755))

	fakeMake := filepath.Join(tmp, "fake-make")
	require.NoError(t, os.WriteFile(fakeMake, []byte(makeScript), 0755))
	t.Setenv("MAKE", fakeMake)
	return srcDir, installLib
}

func TestBuildAlwaysFails(t *testing.T) {
	for _, args := range [][]string{
		{"build"},
		{"build", "--src", t.TempDir()},
		{"build", "--build-base", "/tmp/elsewhere"},
	} {
		_, err := execute(t, args...)
		require.ErrorIs(t, err, setup.ErrBinaryBuild, "args %v", args)
	}
}

func TestInstallAndUninstall(t *testing.T) {
	skipWithoutShell(t)
	before, err := os.Getwd()
	require.NoError(t, err)

	srcDir, installLib := newProject(t, configureScript)
	destDir := filepath.Join(installLib, "antic")

	out, err := execute(t, "install", "--src", srcDir, "--install-lib", installLib)
	require.NoError(t, err)
	assert.Equal(t, destDir+"\n", out)
	assertWd(t, before)

	configureLog, err := os.ReadFile(filepath.Join(srcDir, "configure.log"))
	require.NoError(t, err)
	assert.Equal(t, "--prefix="+destDir+" --disable-static\n", string(configureLog))

	makeLog, err := os.ReadFile(filepath.Join(srcDir, "make.log"))
	require.NoError(t, err)
	assert.Equal(t, "install\n", string(makeLog))

	header, err := os.ReadFile(filepath.Join(destDir, "include", "antic_config.h"))
	require.NoError(t, err)
	assert.Contains(t, string(header), destDir)

	rec, err := record.Load(filepath.Join(installLib, ".cmi", "antic.json"))
	require.NoError(t, err)
	assert.Equal(t, "antic", rec.Name)
	assert.Equal(t, "0.2.1", rec.Version)
	assert.Equal(t, destDir, rec.DestDir)
	assert.Contains(t, rec.Outputs, destDir)

	out, err = execute(t, "uninstall", "antic", "--install-lib", installLib)
	require.NoError(t, err)
	assert.Equal(t, "removed "+destDir+"\n", out)
	assert.NoDirExists(t, destDir)
	assert.NoFileExists(t, filepath.Join(installLib, ".cmi", "antic.json"))
}

func TestInstallWithRecordFile(t *testing.T) {
	skipWithoutShell(t)

	srcDir, installLib := newProject(t, configureScript)
	recordPath := filepath.Join(t.TempDir(), "installed.json")

	_, err := execute(t, "install", "--src", srcDir, "--install-lib", installLib, "--record", recordPath)
	require.NoError(t, err)
	require.FileExists(t, recordPath)

	// Reinstalling over an existing record is allowed.
	_, err = execute(t, "install", "--src", srcDir, "--install-lib", installLib, "--record", recordPath)
	require.NoError(t, err)

	_, err = execute(t, "uninstall", "--record", recordPath)
	require.NoError(t, err)
	assert.NoDirExists(t, filepath.Join(installLib, "antic"))
}

func TestInstallConfigureFails(t *testing.T) {
	skipWithoutShell(t)
	before, err := os.Getwd()
	require.NoError(t, err)

	srcDir, installLib := newProject(t, "#!/bin/sh\nexit 3\n")

	_, err = execute(t, "install", "--src", srcDir, "--install-lib", installLib)
	var cmdErr *buildsys.CommandError
	require.ErrorAs(t, err, &cmdErr)
	assert.Equal(t, filepath.Join(srcDir, "configure"), cmdErr.Args[0])
	assertWd(t, before)

	assert.NoFileExists(t, filepath.Join(srcDir, "make.log"))
	assert.NoFileExists(t, filepath.Join(installLib, ".cmi", "antic.json"))
}

func TestInstallWithoutDescriptor(t *testing.T) {
	_, err := execute(t, "install", "--src", t.TempDir(), "--install-lib", t.TempDir())
	require.ErrorIs(t, err, os.ErrNotExist)
}

func TestUninstallNeedsTarget(t *testing.T) {
	_, err := execute(t, "uninstall")
	require.Error(t, err)

	_, err = execute(t, "uninstall", "antic", "--install-lib", t.TempDir())
	require.ErrorIs(t, err, os.ErrNotExist)
}

func TestInstallUsesMakeFromDescriptor(t *testing.T) {
	skipWithoutShell(t)

	srcDir, installLib := newProject(t, configureScript)
	fakeMake := os.Getenv("MAKE")
	t.Setenv("MAKE", "")
	os.Unsetenv("MAKE")

	data := "name: antic\nversion: 0.2.1\nenv:\n  MAKE: " + fakeMake + "\n"
	require.NoError(t, os.WriteFile(filepath.Join(srcDir, "cmi.yaml"), []byte(data), 0644))

	out, err := execute(t, "dirs", "--src", srcDir)
	require.NoError(t, err)
	assert.Contains(t, out, "MAKE="+fakeMake+"\n")

	_, err = execute(t, "install", "--src", srcDir, "--install-lib", installLib)
	require.NoError(t, err)

	makeLog, err := os.ReadFile(filepath.Join(srcDir, "make.log"))
	require.NoError(t, err)
	assert.Equal(t, "install\n", string(makeLog))
	assert.FileExists(t, filepath.Join(installLib, "antic", "include", "antic_config.h"))
}

func TestUninstallRejectsBadName(t *testing.T) {
	tmp := t.TempDir()
	installLib := filepath.Join(tmp, "lib")
	victim := filepath.Join(tmp, "victim")
	require.NoError(t, os.MkdirAll(victim, 0755))

	// <lib>/.cmi/../../x.json resolves to a record outside the record dir.
	outside := filepath.Join(tmp, "x.json")
	require.NoError(t, record.Save(outside, &record.Record{Name: "x", Outputs: []string{victim}}))

	for _, name := range []string{"../../x", "..", "a/b"} {
		_, err := execute(t, "uninstall", name, "--install-lib", installLib)
		require.ErrorIs(t, err, descriptor.ErrBadName, "name %q", name)
	}
	assert.DirExists(t, victim)
	assert.FileExists(t, outside)
}

func TestDirs(t *testing.T) {
	srcDir, installLib := newProject(t, configureScript)
	t.Setenv("MAKE", "gmake")

	out, err := execute(t, "dirs", "--src", srcDir)
	require.NoError(t, err)
	assert.Contains(t, out, "abs_srcdir="+srcDir+"\n")
	assert.Contains(t, out, "# builddir unavailable:")
	assert.Contains(t, out, "# destdir unavailable:")
	assert.Contains(t, out, "MAKE=gmake\n")

	out, err = execute(t, "dirs", "--src", srcDir, "--build", "--install", "--install-lib", installLib)
	require.NoError(t, err)
	assert.Contains(t, out, "builddir=build\n")
	assert.Contains(t, out, "abs_builddir="+filepath.Join(srcDir, "build")+"\n")
	assert.Contains(t, out, "destdir="+filepath.Join(installLib, "antic")+"\n")
}

func TestVersion(t *testing.T) {
	out, err := execute(t, "version")
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(out, "cmi "), "output %q", out)
}

func TestLogReinstall(t *testing.T) {
	// Unparsable versions in old records must not stop an install.
	prev := &record.Record{Version: "garbage"}
	for _, v := range []string{"0.1.0", "garbage"} {
		assert.NotPanics(t, func() {
			logReinstall(prev, &descriptor.Descriptor{Name: "antic", Version: v})
		})
	}
}

func assertWd(t *testing.T, want string) {
	t.Helper()
	got, err := os.Getwd()
	require.NoError(t, err)
	assert.Equal(t, want, got)
}
