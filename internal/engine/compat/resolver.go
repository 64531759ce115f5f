// Package compat resolves the effective debhelper compatibility level, the
// integer that versions the behaviour of the whole suite. The level comes
// from exactly one declared source; declaring it twice is as fatal as not
// declaring it at all.
package compat

import (
	"os"
	"strconv"
	"strings"

	"go.trai.ch/dh/internal/adapters/fs"
	"go.trai.ch/dh/internal/core/domain"
	"go.trai.ch/dh/internal/core/ports"
	"go.trai.ch/zerr"
)

// ManifestSource provides the compat declarations found in debian/control.
// Satisfied by app.Context, which memoizes the parse.
type ManifestSource interface {
	// Manifest returns the parsed debian/control.
	Manifest() (*domain.Manifest, error)
}

// Resolver determines and validates the effective compat level. The level is
// resolved once on first query and then frozen for the resolver's lifetime.
type Resolver struct {
	manifest ManifestSource
	logger   ports.Logger
	env      func(string) (string, bool)

	resolved bool
	level    int
}

// NewResolver creates a Resolver reading overrides from the process
// environment.
func NewResolver(manifest ManifestSource, logger ports.Logger) *Resolver {
	return NewResolverWithEnv(manifest, logger, os.LookupEnv)
}

// NewResolverWithEnv creates a Resolver with an explicit environment lookup.
func NewResolverWithEnv(manifest ManifestSource, logger ports.Logger, env func(string) (string, bool)) *Resolver {
	return &Resolver{manifest: manifest, logger: logger, env: env}
}

// Level resolves (once) and returns the effective compat level, without the
// bounds enforcement of Compat.
func (r *Resolver) Level() (int, error) {
	if r.resolved {
		return r.level, nil
	}

	level, err := r.resolve()
	if err != nil {
		return 0, err
	}

	// A non-empty DH_COMPAT replaces whatever was declared.
	if override, ok := r.env("DH_COMPAT"); ok && override != "" {
		parsed, err := strconv.Atoi(override)
		if err != nil || parsed < 0 {
			return 0, zerr.With(domain.ErrCompatInvalid, "DH_COMPAT", override)
		}
		level = parsed
	}

	r.level = level
	r.resolved = true
	return level, nil
}

// Compat reports whether the effective level is at most n. Unless warnings
// are suppressed it also enforces the level bounds and emits the one-time
// deprecation warning for old levels.
func (r *Resolver) Compat(n int, suppressWarnings bool) (bool, error) {
	level, err := r.Level()
	if err != nil {
		return false, err
	}

	if !suppressWarnings {
		if level < domain.MinCompatLevel {
			err := zerr.With(domain.ErrCompatTooLow, "level", level)
			return false, zerr.With(err, "min", domain.MinCompatLevel)
		}
		if strict, ok := r.env("DH_FATAL_DEPRECATION"); ok && strict != "" &&
			level < domain.MinCompatLevelNotScheduledForRemoval {
			err := zerr.With(domain.ErrCompatRemoval, "level", level)
			return false, zerr.With(err, "min", domain.MinCompatLevelNotScheduledForRemoval)
		}
		if level > domain.MaxCompatLevel {
			err := zerr.With(domain.ErrCompatTooHigh, "level", level)
			return false, zerr.With(err, "max", domain.MaxCompatLevel)
		}
		if level < domain.LowestNonDeprecatedCompatLevel {
			r.logger.WarnOnce("compat-deprecated",
				"compat levels before "+strconv.Itoa(domain.LowestNonDeprecatedCompatLevel)+
					" are deprecated (level "+strconv.Itoa(level)+" in use)")
		}
	}

	return level <= n, nil
}

// Reset discards the resolved level. Test use only.
func (r *Resolver) Reset() {
	r.resolved = false
	r.level = 0
}

// resolve picks the level from the declared sources, enforcing that at most
// one of the legacy file, the debhelper-compat relation and X-DH-Compat is
// present. Relation/field conflicts are already fatal at parse time.
func (r *Resolver) resolve() (int, error) {
	legacy, err := r.legacyFileLevel()
	if err != nil {
		return 0, err
	}

	m, err := r.manifest.Manifest()
	if err != nil {
		return 0, err
	}

	declared := 0
	for _, present := range []bool{legacy >= 0, m.CompatRelation >= 0, m.CompatField >= 0} {
		if present {
			declared++
		}
	}
	if declared > 1 {
		return 0, zerr.With(domain.ErrCompatConflict,
			"hint", "remove debian/compat in favour of the declaration in debian/control")
	}

	switch {
	case legacy >= 0:
		if legacy >= domain.MaxCompatLevel || domain.HighestStableCompatLevel < 13 {
			return 0, zerr.With(domain.ErrCompatFileRetired, "level", legacy)
		}
		return legacy, nil
	case m.CompatRelation >= 0:
		return m.CompatRelation, nil
	case m.CompatField >= 0:
		return m.CompatField, nil
	default:
		return 0, domain.ErrCompatUndeclared
	}
}

// legacyFileLevel reads debian/compat; -1 when the file does not exist.
func (r *Resolver) legacyFileLevel() (int, error) {
	content, err := fs.ReadIfExists(domain.CompatFilePath())
	if err != nil {
		return 0, err
	}
	if content == "" {
		return -1, nil
	}

	line, _, _ := strings.Cut(content, "\n")
	line = strings.TrimSpace(line)
	level, convErr := strconv.Atoi(line)
	if convErr != nil || level < 0 {
		err := zerr.With(domain.ErrCompatInvalid, "debian/compat", line)
		return 0, err
	}
	return level, nil
}
