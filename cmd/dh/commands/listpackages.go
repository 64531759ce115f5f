package commands

import (
	"fmt"

	"github.com/spf13/cobra"
	"go.trai.ch/dh/internal/core/domain"
)

func (c *CLI) newListPackagesCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "list-packages",
		Short: "Print the binary packages acted on, one per line",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			all, _ := cmd.Flags().GetBool("all")

			var packages []domain.Package
			var err error
			if all {
				packages, err = c.app.Packages(domain.SelectAllListed)
			} else {
				packages, err = c.actedOnPackages(cmd)
			}
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			for _, pkg := range packages {
				_, _ = fmt.Fprintln(out, pkg.Name)
			}
			return nil
		},
	}
	cmd.Flags().BoolP("arch", "a", false, "Only architecture dependent packages")
	cmd.Flags().BoolP("indep", "i", false, "Only architecture independent packages")
	cmd.Flags().StringArrayP("package", "p", nil, "Act on this package, repeatable")
	cmd.Flags().Bool("all", false, "Every package listed, ignoring profile and architecture filters")
	cmd.MarkFlagsMutuallyExclusive("all", "package")
	return cmd
}
