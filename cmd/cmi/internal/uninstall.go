package internal

import (
	"errors"
	"fmt"

	"github.com/goplus/cmi/internal/record"
	"github.com/goplus/cmi/pkgs/descriptor"
	"github.com/spf13/cobra"
)

var (
	uninstallLib    string
	uninstallRecord string
)

var uninstallCmd = &cobra.Command{
	Use:   "uninstall [name]",
	Short: "Remove an installed package",
	Long: `Uninstall removes the paths recorded by install. Only created files are
removed; effects of configure outside the recorded paths are left alone.`,
	Args: cobra.MaximumNArgs(1),
	RunE: runUninstall,
}

func init() {
	uninstallCmd.Flags().StringVar(&uninstallLib, "install-lib", "", "Install root the package was installed to")
	uninstallCmd.Flags().StringVar(&uninstallRecord, "record", "", "Record file written by install")
	rootCmd.AddCommand(uninstallCmd)
}

func runUninstall(cmd *cobra.Command, args []string) error {
	var name string
	if len(args) > 0 {
		name = args[0]
	}
	if name == "" && uninstallRecord == "" {
		return errors.New("uninstall needs a package name or --record")
	}
	if name != "" {
		if err := descriptor.ValidateName(name); err != nil {
			return err
		}
	}

	lib, err := resolveInstallLib(uninstallLib)
	if err != nil {
		return fmt.Errorf("failed to resolve install-lib: %w", err)
	}
	recordPath, err := resolveRecord(uninstallRecord, lib, name)
	if err != nil {
		return fmt.Errorf("failed to resolve record path: %w", err)
	}
	rec, err := record.Load(recordPath)
	if err != nil {
		return fmt.Errorf("failed to load install record: %w", err)
	}

	removed, err := record.Uninstall(recordPath, rec)
	for _, path := range removed {
		fmt.Fprintln(cmd.OutOrStdout(), "removed", path)
	}
	if err != nil {
		return fmt.Errorf("failed to uninstall %s: %w", rec.Name, err)
	}
	return nil
}
