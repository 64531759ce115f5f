package commands

import (
	"github.com/spf13/cobra"
)

func (c *CLI) newSubstvarCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "substvar",
		Short: "Manage dependency variables in a package's substvars file",
	}
	cmd.AddCommand(c.newSubstvarAddCmd())
	cmd.AddCommand(c.newSubstvarDelCmd())
	return cmd
}

func (c *CLI) newSubstvarAddCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "add <package> <variable> <dependency>",
		Short: "Add a dependency item to a variable",
		Args:  cobra.ExactArgs(3),
		RunE: func(cmd *cobra.Command, args []string) error {
			version, _ := cmd.Flags().GetString("version")
			return c.app.AddSubstvar(args[0], args[1], args[2], version)
		},
	}
	cmd.Flags().String("version", "", "Version relation for the item, e.g. '>= 1.2'")
	return cmd
}

func (c *CLI) newSubstvarDelCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "del <package> <variable> [dependency]",
		Short: "Remove a dependency item, or the whole variable",
		Args:  cobra.RangeArgs(2, 3),
		RunE: func(cmd *cobra.Command, args []string) error {
			if len(args) == 2 {
				return c.app.DelSubstvar(args[0], args[1])
			}
			version, _ := cmd.Flags().GetString("version")
			return c.app.DelSubstvarItem(args[0], args[1], args[2], version)
		},
	}
	cmd.Flags().String("version", "", "Version relation of the item to remove")
	return cmd
}
