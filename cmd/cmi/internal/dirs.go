package internal

import (
	"fmt"
	"io"

	"github.com/goplus/cmi/pkgs/setup"
	"github.com/spf13/cobra"
)

var (
	dirsSrc       string
	dirsBuildBase string
	dirsLib       string
	dirsBuild     bool
	dirsInstall   bool
)

var dirsCmd = &cobra.Command{
	Use:   "dirs",
	Short: "Print the directories a build or install would use",
	Long: `Dirs prints abs_srcdir, builddir, abs_builddir, destdir and MAKE as an
invocation with the given phases would resolve them. Values of phases that
are not active are reported as unavailable.`,
	Args: cobra.NoArgs,
	RunE: runDirs,
}

func init() {
	dirsCmd.Flags().StringVar(&dirsSrc, "src", ".", "Source directory containing the build descriptor")
	dirsCmd.Flags().BoolVar(&dirsBuild, "build", false, "Resolve as if a build phase were active")
	dirsCmd.Flags().StringVarP(&dirsBuildBase, "build-base", "b", "build", "Base directory for build artifacts")
	dirsCmd.Flags().BoolVar(&dirsInstall, "install", false, "Resolve as if an install phase were active")
	dirsCmd.Flags().StringVar(&dirsLib, "install-lib", "", "Install root")
	rootCmd.AddCommand(dirsCmd)
}

func runDirs(cmd *cobra.Command, args []string) error {
	c, _, err := loadProject(dirsSrc)
	if err != nil {
		return err
	}
	if dirsBuild {
		c.Build = &setup.BuildPhase{BuildBase: dirsBuildBase}
	}
	if dirsInstall {
		lib, err := resolveInstallLib(dirsLib)
		if err != nil {
			return err
		}
		c.Install = &setup.InstallPhase{InstallLib: lib}
	}
	printDirs(cmd.OutOrStdout(), c)
	return nil
}

func printDirs(w io.Writer, c *setup.Context) {
	show := func(name string, get func() (string, error)) {
		if v, err := get(); err != nil {
			fmt.Fprintf(w, "# %s unavailable: %v\n", name, err)
		} else {
			fmt.Fprintf(w, "%s=%s\n", name, v)
		}
	}
	fmt.Fprintf(w, "abs_srcdir=%s\n", c.AbsSrcDir())
	show("builddir", c.BuildDir)
	show("abs_builddir", c.AbsBuildDir)
	show("destdir", c.DestDir)
	fmt.Fprintf(w, "MAKE=%s\n", c.Make())
}
