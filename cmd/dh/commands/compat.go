package commands

import (
	"fmt"

	"github.com/spf13/cobra"
)

func (c *CLI) newCompatCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "compat",
		Short: "Print the effective compat level",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			level, err := c.app.CompatLevel()
			if err != nil {
				return err
			}
			_, _ = fmt.Fprintln(cmd.OutOrStdout(), level)
			return nil
		},
	}
}
