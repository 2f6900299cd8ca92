package internal

import (
	"github.com/goplus/cmi/pkgs/setup"
	"github.com/spf13/cobra"
)

var (
	buildSrc  string
	buildBase string
)

var buildCmd = &cobra.Command{
	Use:   "build",
	Short: "Build a binary artifact (always refused)",
	Long: `Build would produce a binary artifact before the installation prefix is known.
The wrapped library hard-codes that prefix into its headers, so the artifact
could never be relocated. Build therefore always fails; use install instead.`,
	Args: cobra.NoArgs,
	RunE: runBuild,
}

func init() {
	buildCmd.Flags().StringVar(&buildSrc, "src", ".", "Source directory containing configure")
	buildCmd.Flags().StringVarP(&buildBase, "build-base", "b", "build", "Base directory for build artifacts")
	rootCmd.AddCommand(buildCmd)
}

func runBuild(cmd *cobra.Command, args []string) error {
	c, err := setup.NewContext(buildSrc, "")
	if err != nil {
		return err
	}
	c.Build = &setup.BuildPhase{BuildBase: buildBase}
	return setup.NewNoBinaryBuild(c).Run(cmd.Context())
}
