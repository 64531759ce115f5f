// Package app implements the application layer shared by the helper tools:
// the per-invocation context holding the parsed manifest, compat level,
// package selections and the generated-file engines.
package app

import (
	"context"
	"os"
	"strconv"
	"strings"
	"sync"

	"go.trai.ch/dh/internal/adapters/control"
	"go.trai.ch/dh/internal/adapters/fs"
	"go.trai.ch/dh/internal/core/domain"
	"go.trai.ch/dh/internal/core/ports"
	"go.trai.ch/dh/internal/engine/compat"
	"go.trai.ch/dh/internal/engine/expand"
	"go.trai.ch/dh/internal/engine/pkgfile"
	"go.trai.ch/dh/internal/engine/pool"
	"go.trai.ch/dh/internal/engine/script"
	"go.trai.ch/zerr"
)

// App is the per-invocation application context. The manifest is parsed once
// on first use; every derived fact (compat level, package sets, config file
// locations) is computed from that single parse.
type App struct {
	logger   ports.Logger
	parser   *control.Parser
	arch     ports.ArchTable
	scripts  *script.Engine
	profiles domain.ProfileSet

	compat   *compat.Resolver
	expander *expand.Expander

	manifestOnce sync.Once
	manifest     *domain.Manifest
	manifestErr  error

	pkgfileMu sync.Mutex
	pkgfile   *pkgfile.Resolver
}

// New creates an App rooted in the current working directory.
func New(logger ports.Logger, parser *control.Parser, arch ports.ArchTable, scripts *script.Engine) *App {
	a := &App{
		logger:   logger,
		parser:   parser,
		arch:     arch,
		scripts:  scripts,
		profiles: domain.NewProfileSet(os.Getenv("DEB_BUILD_PROFILES")),
	}
	a.compat = compat.NewResolver(a, logger)
	a.expander = expand.New(os.LookupEnv, arch)
	return a
}

// Manifest returns the parsed package manifest, parsing it on first call.
func (a *App) Manifest() (*domain.Manifest, error) {
	a.manifestOnce.Do(func() {
		a.manifest, a.manifestErr = a.parser.Parse(domain.ControlPath())
	})
	return a.manifest, a.manifestErr
}

// SourcePackage returns the source package name.
func (a *App) SourcePackage() (string, error) {
	m, err := a.Manifest()
	if err != nil {
		return "", err
	}
	return m.Source, nil
}

// MainPackage returns the first binary package of the manifest.
func (a *App) MainPackage() (*domain.Package, error) {
	m, err := a.Manifest()
	if err != nil {
		return nil, err
	}
	return m.MainPackage(), nil
}

// Package returns the stanza for name, or ErrPackageNotFound.
func (a *App) Package(name string) (*domain.Package, error) {
	m, err := a.Manifest()
	if err != nil {
		return nil, err
	}
	pkg := m.Package(name)
	if pkg == nil {
		return nil, zerr.With(domain.ErrPackageNotFound, "package", name)
	}
	return pkg, nil
}

// ExcludePatterns returns the DH_ALWAYS_EXCLUDE patterns, colon separated in
// the environment. Tools filter the file lists they act on by these.
func (a *App) ExcludePatterns() []string {
	var out []string
	for pattern := range strings.SplitSeq(os.Getenv("DH_ALWAYS_EXCLUDE"), ":") {
		if pattern != "" {
			out = append(out, pattern)
		}
	}
	return out
}

// NoAct reports whether DH_NO_ACT requests a dry run. The context itself
// never consults this; tools check it before their write paths.
func (a *App) NoAct() bool {
	return os.Getenv("DH_NO_ACT") != ""
}

// CompatLevel resolves the effective compat level.
func (a *App) CompatLevel() (int, error) {
	return a.compat.Level()
}

// Compat reports whether the effective compat level is at most n.
func (a *App) Compat(n int) (bool, error) {
	return a.compat.Compat(n, false)
}

// Packages computes the named package selection. The arch, indep and both
// selections filter by build profile satisfaction and by architecture match
// against the package's resolution machine; all-listed returns every stanza
// untouched.
func (a *App) Packages(sel domain.Selection) ([]domain.Package, error) {
	m, err := a.Manifest()
	if err != nil {
		return nil, err
	}

	if sel == domain.SelectAllListed {
		out := make([]domain.Package, len(m.Packages))
		copy(out, m.Packages)
		return out, nil
	}

	var out []domain.Package
	for _, pkg := range m.Packages {
		ok, err := domain.EvalRestrictionFormula(pkg.BuildProfiles, a.profiles)
		if err != nil {
			return nil, zerr.With(err, "package", pkg.Name)
		}
		if !ok {
			continue
		}

		include, err := a.selected(sel, &pkg)
		if err != nil {
			return nil, err
		}
		if include {
			out = append(out, pkg)
		}
	}
	return out, nil
}

func (a *App) selected(sel domain.Selection, pkg *domain.Package) (bool, error) {
	if pkg.ArchIndependent() {
		return sel == domain.SelectIndep || sel == domain.SelectBoth, nil
	}
	if sel == domain.SelectIndep {
		return false, nil
	}

	machine := "HOST"
	if pkg.BuildFor == domain.BuildForTarget {
		machine = "TARGET"
	}
	arch, err := a.arch.Value("DEB_" + machine + "_ARCH")
	if err != nil {
		return false, err
	}
	archOS, err := a.arch.Value("DEB_" + machine + "_ARCH_OS")
	if err != nil {
		return false, err
	}
	cpu, err := a.arch.Value("DEB_" + machine + "_ARCH_CPU")
	if err != nil {
		return false, err
	}
	return pkg.ArchMatches(arch, archOS, cpu), nil
}

// PkgFile locates the config file of the given kind for a package, per the
// candidate search rules. Returns "" when no candidate exists.
func (a *App) PkgFile(opts pkgfile.Options, pkg, kind string) (string, error) {
	a.pkgfileMu.Lock()
	if a.pkgfile == nil {
		m, err := a.Manifest()
		if err != nil {
			a.pkgfileMu.Unlock()
			return "", err
		}
		a.pkgfile = pkgfile.NewResolver(a.arch, a.compat, a.logger, m)
	}
	r := a.pkgfile
	a.pkgfileMu.Unlock()

	return r.Find(opts, pkg, kind)
}

// ConfigLines reads a per-package config file as a list of entries: one per
// line, comment lines dropped, surrounding whitespace trimmed, empty lines
// skipped. Substitution directives are expanded.
func (a *App) ConfigLines(path string) ([]string, error) {
	content, err := fs.ReadIfExists(path)
	if err != nil {
		return nil, err
	}

	expandTokens, err := a.supportsExpansion()
	if err != nil {
		return nil, err
	}

	var out []string
	lineNo := 0
	for line := range strings.Lines(content) {
		lineNo++
		line = strings.TrimSpace(strings.TrimSuffix(line, "\n"))
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		if expandTokens {
			line, err = a.expander.Expand(line, path+":"+strconv.Itoa(lineNo))
			if err != nil {
				return nil, err
			}
		}
		out = append(out, line)
	}
	return out, nil
}

// supportsExpansion reports whether the compat level enables substitution in
// config files. Older levels pass lines through verbatim.
func (a *App) supportsExpansion() (bool, error) {
	old, err := a.compat.Compat(domain.HighestStableCompatLevel-1, true)
	if err != nil {
		return false, err
	}
	return !old, nil
}

// ForEach runs action over the given packages with bounded parallelism. The
// first failure cancels the remaining packages.
func (a *App) ForEach(ctx context.Context, packages []domain.Package, action pool.Action) error {
	return pool.Run(ctx, packages, pool.Parallelism(), action)
}

// Autoscript merges a fragment into the generated maintainer script of the
// package and phase.
func (a *App) Autoscript(pkg string, phase domain.ScriptPhase, fragment string, subst script.Substitution, opts script.Options) error {
	return a.scripts.Autoscript(pkg, phase, fragment, subst, opts)
}

// AddSubstvar records a dependency item in the package's substvars file.
func (a *App) AddSubstvar(pkg, name, dep, version string) error {
	return a.scripts.AddSubstvar(pkg, name, dep, version)
}

// DelSubstvarItem removes one dependency item from the package's substvars
// file.
func (a *App) DelSubstvarItem(pkg, name, dep, version string) error {
	return a.scripts.DelSubstvarItem(pkg, name, dep, version)
}

// DelSubstvar removes a variable from the package's substvars file.
func (a *App) DelSubstvar(pkg, name string) error {
	return a.scripts.DelSubstvar(pkg, name)
}
