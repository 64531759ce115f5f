// Package pkgfile locates per-package config files below debian/. A logical
// file kind maps to an ordered list of candidate paths; the first existing
// regular file wins. Older compat levels additionally accept legacy
// unprefixed files for the main package.
package pkgfile

import (
	"errors"
	"io/fs"
	"os"
	"path/filepath"

	"go.trai.ch/dh/internal/core/domain"
	"go.trai.ch/dh/internal/core/ports"
	"go.trai.ch/zerr"
)

// CompatSource answers "is the effective compat level at most n". Satisfied
// by the compat resolver via app.Context.
type CompatSource interface {
	Compat(n int, suppressWarnings bool) (bool, error)
}

// Options controls which candidate forms a lookup may use.
type Options struct {
	// Name is the --name style qualifier segment; only used when Named.
	Name string

	// Named allows the <pkg>.<name>.<kind> candidate forms.
	Named bool

	// SupportArchRestriction allows the architecture and OS qualified
	// candidate forms.
	SupportArchRestriction bool
}

// Resolver implements the candidate search.
type Resolver struct {
	arch   ports.ArchTable
	compat CompatSource
	logger ports.Logger

	// mainPackage is the first binary package of the manifest; only it may
	// use the legacy unprefixed forms.
	mainPackage string

	// packageCount steers the legacy deprecation warning.
	packageCount int

	// kindHasQualified caches, per kind, whether any debian/*.<kind>.*
	// file exists at all. When none does, the arch-qualified candidates
	// (and their dpkg-architecture queries) are skipped wholesale.
	kindHasQualified map[string]bool
}

// NewResolver creates a Resolver for a parsed manifest.
func NewResolver(arch ports.ArchTable, compat CompatSource, logger ports.Logger, m *domain.Manifest) *Resolver {
	return &Resolver{
		arch:             arch,
		compat:           compat,
		logger:           logger,
		mainPackage:      m.MainPackage().Name,
		packageCount:     len(m.Packages),
		kindHasQualified: make(map[string]bool),
	}
}

// Find returns the authoritative config file path for (pkg, kind), or "" when
// no candidate exists. Only genuine I/O errors (not non-existence) and compat
// resolution failures are returned as errors.
func (r *Resolver) Find(opts Options, pkg, kind string) (string, error) {
	// Up to and including compat 13 every lookup behaves as if both
	// qualifier forms were requested, whatever the caller asked for.
	forced, err := r.compat.Compat(13, true)
	if err != nil {
		return "", err
	}
	if forced {
		opts.Named = true
		opts.SupportArchRestriction = true
	}

	candidates, err := r.candidates(opts, pkg, kind)
	if err != nil {
		return "", err
	}

	for _, candidate := range candidates {
		ok, err := isRegularFile(candidate.path)
		if err != nil {
			return "", err
		}
		if !ok {
			continue
		}
		if candidate.legacy {
			if err := r.legacySelected(opts, candidate.path, kind); err != nil {
				return "", err
			}
		}
		return candidate.path, nil
	}
	return "", nil
}

type candidate struct {
	path   string
	legacy bool
}

func (r *Resolver) candidates(opts Options, pkg, kind string) ([]candidate, error) {
	prefix := pkg
	if opts.Named && opts.Name != "" {
		prefix += "." + opts.Name
	}

	var out []candidate

	if opts.SupportArchRestriction && r.anyQualifiedFile(kind) {
		hostArch, err := r.arch.Value("DEB_HOST_ARCH")
		if err != nil {
			return nil, err
		}
		hostOS, err := r.arch.Value("DEB_HOST_ARCH_OS")
		if err != nil {
			return nil, err
		}
		out = append(out,
			candidate{path: filepath.Join(domain.DebianDir, prefix+"."+kind+"."+hostArch)},
			candidate{path: filepath.Join(domain.DebianDir, prefix+"."+kind+"."+hostOS)},
		)
	}

	out = append(out, candidate{path: filepath.Join(domain.DebianDir, prefix+"."+kind)})

	// Legacy unprefixed forms, main package only, and only while the
	// deprecation window is open.
	if pkg == r.mainPackage {
		allowed, err := r.compat.Compat(domain.MaxCompatLevel-1, true)
		if err != nil {
			return nil, err
		}
		if allowed {
			if opts.Named && opts.Name != "" {
				out = append(out, candidate{
					path:   filepath.Join(domain.DebianDir, opts.Name+"."+kind),
					legacy: true,
				})
			}
			out = append(out, candidate{
				path:   filepath.Join(domain.DebianDir, kind),
				legacy: true,
			})
		}
	}

	return out, nil
}

// anyQualifiedFile reports whether any debian/*.<kind>.* file exists,
// cached per kind.
func (r *Resolver) anyQualifiedFile(kind string) bool {
	if has, ok := r.kindHasQualified[kind]; ok {
		return has
	}
	matches, err := filepath.Glob(filepath.Join(domain.DebianDir, "*."+kind+".*"))
	has := err == nil && len(matches) > 0
	r.kindHasQualified[kind] = has
	return has
}

// legacySelected handles an unprefixed candidate winning the search: a
// warning while the form is merely deprecated, an error once the current
// compat level has closed the window.
func (r *Resolver) legacySelected(opts Options, path, kind string) error {
	if r.packageCount <= 1 && (!opts.Named || opts.Name == "") {
		// Single-package source without a name qualifier; the unprefixed
		// form is still unambiguous and tolerated silently.
		return nil
	}

	deprecatedOnly, err := r.compat.Compat(domain.HighestStableCompatLevel, true)
	if err != nil {
		return err
	}
	if !deprecatedOnly {
		err := zerr.With(domain.ErrLegacyConfigFile, "path", path)
		return zerr.With(err, "hint", "rename to "+filepath.Join(domain.DebianDir, r.mainPackage+"."+kind))
	}

	r.logger.WarnOnce("legacy-pkgfile-"+kind,
		"use of unprefixed "+path+" is deprecated, rename to "+
			filepath.Join(domain.DebianDir, r.mainPackage+"."+kind))
	return nil
}

func isRegularFile(path string) (bool, error) {
	info, err := os.Stat(path)
	if errors.Is(err, fs.ErrNotExist) {
		return false, nil
	}
	if err != nil {
		return false, zerr.Wrap(err, domain.ErrFileRead.Error())
	}
	return info.Mode().IsRegular(), nil
}
