package internal

import (
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"time"

	"github.com/goplus/cmi/internal/record"
	"github.com/goplus/cmi/pkgs/buildsys/autotools"
	"github.com/goplus/cmi/pkgs/descriptor"
	"github.com/goplus/cmi/pkgs/setup"
	"github.com/spf13/cobra"
)

var (
	installSrc    string
	installLib    string
	installRecord string
)

var installCmd = &cobra.Command{
	Use:   "install",
	Short: "Configure, make and install the package",
	Long: `Install runs <src>/configure --prefix=<install-lib>/<name> followed by
$MAKE install inside the source directory, then records the installed
paths so that uninstall can remove them again.`,
	Args: cobra.NoArgs,
	RunE: runInstall,
}

func init() {
	installCmd.Flags().StringVar(&installSrc, "src", ".", "Source directory containing configure and "+descriptor.FileName)
	installCmd.Flags().StringVar(&installLib, "install-lib", "", "Install root; the package lands in <install-lib>/<name>")
	installCmd.Flags().StringVar(&installRecord, "record", "", "File to record installed paths in")
	rootCmd.AddCommand(installCmd)
}

func runInstall(cmd *cobra.Command, args []string) error {
	c, d, err := loadProject(installSrc)
	if err != nil {
		return err
	}
	lib, err := resolveInstallLib(installLib)
	if err != nil {
		return fmt.Errorf("failed to resolve install-lib: %w", err)
	}
	c.Install = &setup.InstallPhase{InstallLib: lib}
	destDir, err := c.DestDir()
	if err != nil {
		return err
	}
	recordPath, err := resolveRecord(installRecord, lib, d.Name)
	if err != nil {
		return fmt.Errorf("failed to resolve record path: %w", err)
	}

	if prev, err := record.Load(recordPath); err == nil {
		logReinstall(prev, d)
	} else if !errors.Is(err, fs.ErrNotExist) {
		slog.Warn("ignoring unreadable install record", "record", recordPath, "err", err)
	}

	sys := autotools.New(c.AbsSrcDir())
	if verbose {
		sys.Stdout = os.Stdout
		sys.Stderr = os.Stderr
	}
	inst := setup.NewInstaller(c, sys)
	inst.ConfigureArgs = d.ConfigureArgs

	if err := inst.Run(cmd.Context()); err != nil {
		return fmt.Errorf("failed to install %s@%s: %w", d.Name, d.Version, err)
	}

	rec := &record.Record{
		Name:        d.Name,
		Version:     d.Version,
		SrcDir:      c.AbsSrcDir(),
		DestDir:     destDir,
		Outputs:     inst.Outputs(),
		InstallTime: time.Now().UTC(),
	}
	if err := record.Save(recordPath, rec); err != nil {
		return fmt.Errorf("failed to write install record: %w", err)
	}
	slog.Debug("recorded", "record", recordPath, "outputs", rec.Outputs)

	fmt.Fprintln(cmd.OutOrStdout(), destDir)
	return nil
}

func logReinstall(prev *record.Record, d *descriptor.Descriptor) {
	switch descriptor.Compare(prev.Version, d.Version) {
	case -1:
		slog.Info("upgrading", "name", d.Name, "from", prev.Version, "to", d.Version)
	case 1:
		slog.Warn("downgrading", "name", d.Name, "from", prev.Version, "to", d.Version)
	default:
		slog.Info("reinstalling", "name", d.Name, "version", d.Version)
	}
}
