// Package commands implements the CLI commands for the dh helper tools.
package commands

import (
	"context"
	"fmt"
	"io"

	"github.com/spf13/cobra"
	"go.trai.ch/dh/internal/build"
	"go.trai.ch/dh/internal/core/domain"
	"go.trai.ch/dh/internal/engine/pkgfile"
	"go.trai.ch/dh/internal/engine/pool"
	"go.trai.ch/dh/internal/engine/script"
)

// CLI represents the command line interface for dh.
type CLI struct {
	app     Application
	rootCmd *cobra.Command
}

// Application represents the application logic interface.
type Application interface {
	SourcePackage() (string, error)
	Packages(sel domain.Selection) ([]domain.Package, error)
	ForEach(ctx context.Context, packages []domain.Package, action pool.Action) error
	CompatLevel() (int, error)
	PkgFile(opts pkgfile.Options, pkg, kind string) (string, error)
	ConfigLines(path string) ([]string, error)
	Autoscript(pkg string, phase domain.ScriptPhase, fragment string, subst script.Substitution, opts script.Options) error
	AddSubstvar(pkg, name, dep, version string) error
	DelSubstvarItem(pkg, name, dep, version string) error
	DelSubstvar(pkg, name string) error
}

// New creates a new CLI instance with the given app.
func New(a Application) *CLI {
	rootCmd := &cobra.Command{
		Use:           "dh",
		Short:         "Debian packaging helper toolkit",
		SilenceUsage:  true,
		SilenceErrors: true,
		Version:       build.Version,
	}

	rootCmd.SetVersionTemplate(fmt.Sprintf(
		"{{.Name}} version {{.Version}} (commit: %s, date: %s)\n",
		build.Commit,
		build.Date,
	))
	rootCmd.InitDefaultVersionFlag()
	rootCmd.Flags().Lookup("version").Usage = "Print the application version"

	rootCmd.InitDefaultHelpFlag()
	rootCmd.Flags().Lookup("help").Usage = "Show help for command"

	c := &CLI{
		app:     a,
		rootCmd: rootCmd,
	}

	rootCmd.AddCommand(c.newListPackagesCmd())
	rootCmd.AddCommand(c.newCompatCmd())
	rootCmd.AddCommand(c.newPkgFileCmd())
	rootCmd.AddCommand(c.newAutoscriptCmd())
	rootCmd.AddCommand(c.newSubstvarCmd())
	rootCmd.AddCommand(c.newVersionCmd())

	return c
}

// Execute runs the root command with the given context.
func (c *CLI) Execute(ctx context.Context) error {
	c.rootCmd.SetContext(ctx)
	return c.rootCmd.Execute()
}

// SetArgs sets the arguments for the root command. Used for testing.
func (c *CLI) SetArgs(args []string) {
	c.rootCmd.SetArgs(args)
}

// SetOutput sets the output and error streams for the root command. Used for testing.
func (c *CLI) SetOutput(out, err io.Writer) {
	c.rootCmd.SetOut(out)
	c.rootCmd.SetErr(err)
}
