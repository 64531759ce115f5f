package commands

import (
	"fmt"

	"github.com/spf13/cobra"
	"go.trai.ch/dh/internal/engine/pkgfile"
)

func (c *CLI) newPkgFileCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "pkg-file <package> <kind>",
		Short: "Locate the config file of a kind for a package",
		Long: `Locate the config file of a kind for a package and print its path.
With --lines the file content is printed instead, one entry per line,
comments dropped and substitution directives expanded.`,
		Args: cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			name, _ := cmd.Flags().GetString("name")
			archQualified, _ := cmd.Flags().GetBool("arch-restriction")
			lines, _ := cmd.Flags().GetBool("lines")

			path, err := c.app.PkgFile(pkgfile.Options{
				Name:                   name,
				Named:                  name != "",
				SupportArchRestriction: archQualified,
			}, args[0], args[1])
			if err != nil {
				return err
			}
			if path == "" {
				return nil
			}

			out := cmd.OutOrStdout()
			if !lines {
				_, _ = fmt.Fprintln(out, path)
				return nil
			}

			entries, err := c.app.ConfigLines(path)
			if err != nil {
				return err
			}
			for _, entry := range entries {
				_, _ = fmt.Fprintln(out, entry)
			}
			return nil
		},
	}
	cmd.Flags().String("name", "", "Qualifier segment for named config files")
	cmd.Flags().Bool("arch-restriction", false, "Accept architecture qualified config files")
	cmd.Flags().Bool("lines", false, "Print the file content instead of its path")
	return cmd
}
