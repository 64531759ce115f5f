package commands

import (
	"context"
	"strings"

	"github.com/spf13/cobra"
	"go.trai.ch/dh/internal/core/domain"
	"go.trai.ch/dh/internal/engine/script"
	"go.trai.ch/zerr"
)

var errBadToken = zerr.New("token must be KEY=VALUE")

func (c *CLI) newAutoscriptCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "autoscript <phase> <fragment>",
		Short: "Merge a script fragment into generated maintainer scripts",
		Long: `Merge a script fragment into the generated maintainer script of every
acted-on package. By default all packages pass; use -a, -i or -p to narrow
the set.`,
		Args: cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			phase := domain.ScriptPhase(args[0])
			if !phase.Valid() {
				return zerr.With(domain.ErrScriptPhase, "phase", args[0])
			}

			tokens, _ := cmd.Flags().GetStringArray("token")
			order, _ := cmd.Flags().GetString("order")

			var subst script.Substitution
			if len(tokens) > 0 {
				subst.Tokens = make(map[string]string, len(tokens))
				for _, token := range tokens {
					key, value, found := strings.Cut(token, "=")
					if !found || key == "" {
						return zerr.With(errBadToken, "token", token)
					}
					subst.Tokens[key] = value
				}
			}

			packages, err := c.actedOnPackages(cmd)
			if err != nil {
				return err
			}

			return c.app.ForEach(cmd.Context(), packages, func(_ context.Context, pkg domain.Package) error {
				return c.app.Autoscript(pkg.Name, phase, args[1], subst, script.Options{SnippetOrder: order})
			})
		},
	}
	cmd.Flags().BoolP("arch", "a", false, "Only architecture dependent packages")
	cmd.Flags().BoolP("indep", "i", false, "Only architecture independent packages")
	cmd.Flags().StringArrayP("package", "p", nil, "Act on this package, repeatable")
	cmd.Flags().StringArray("token", nil, "Fragment substitution as KEY=VALUE, repeatable")
	cmd.Flags().String("order", "", "Redirect the fragment into the ordered snippet file for this key")
	return cmd
}

// actedOnPackages resolves the -a/-i/-p flags into the package set the
// command acts on.
func (c *CLI) actedOnPackages(cmd *cobra.Command) ([]domain.Package, error) {
	arch, _ := cmd.Flags().GetBool("arch")
	indep, _ := cmd.Flags().GetBool("indep")
	names, _ := cmd.Flags().GetStringArray("package")

	sel := domain.SelectBoth
	switch {
	case arch && !indep:
		sel = domain.SelectArch
	case indep && !arch:
		sel = domain.SelectIndep
	}

	packages, err := c.app.Packages(sel)
	if err != nil {
		return nil, err
	}
	if len(names) == 0 {
		return packages, nil
	}

	byName := make(map[string]domain.Package, len(packages))
	for _, pkg := range packages {
		byName[pkg.Name] = pkg
	}
	out := make([]domain.Package, 0, len(names))
	for _, name := range names {
		pkg, ok := byName[name]
		if !ok {
			return nil, zerr.With(domain.ErrPackageNotFound, "package", name)
		}
		out = append(out, pkg)
	}
	return out, nil
}
