package domain

import (
	"strings"

	"go.trai.ch/zerr"
)

// ProfileSet is the set of active build profiles, usually taken from
// DEB_BUILD_PROFILES.
type ProfileSet map[string]struct{}

// NewProfileSet builds a ProfileSet from a whitespace separated list.
func NewProfileSet(env string) ProfileSet {
	set := make(ProfileSet)
	for _, name := range strings.Fields(env) {
		set[name] = struct{}{}
	}
	return set
}

// Has reports whether the profile is active.
func (s ProfileSet) Has(name string) bool {
	_, ok := s[name]
	return ok
}

// BuildOptions splits a DEB_BUILD_OPTIONS value into its options.
func BuildOptions(env string) []string {
	return strings.Fields(env)
}

// EvalRestrictionFormula evaluates a Build-Profiles restriction formula
// against the active profile set. The formula is a disjunction of
// angle-bracketed groups, each group a conjunction of terms, a term being a
// profile name optionally negated with '!':
//
//	<cross !nocheck> <pkg.foo.bootstrap>
//
// An empty formula is satisfied.
func EvalRestrictionFormula(formula string, active ProfileSet) (bool, error) {
	formula = strings.TrimSpace(formula)
	if formula == "" {
		return true, nil
	}

	rest := formula
	matched := false
	for rest != "" {
		if !strings.HasPrefix(rest, "<") {
			return false, zerr.With(ErrBuildProfiles, "formula", formula)
		}
		end := strings.IndexByte(rest, '>')
		if end < 0 {
			return false, zerr.With(ErrBuildProfiles, "formula", formula)
		}
		group := rest[1:end]
		rest = strings.TrimSpace(rest[end+1:])

		ok, err := evalGroup(group, active)
		if err != nil {
			return false, zerr.With(err, "formula", formula)
		}
		if ok {
			matched = true
		}
	}
	return matched, nil
}

func evalGroup(group string, active ProfileSet) (bool, error) {
	terms := strings.Fields(group)
	if len(terms) == 0 {
		return false, ErrBuildProfiles
	}
	for _, term := range terms {
		negate := strings.HasPrefix(term, "!")
		name := strings.TrimPrefix(term, "!")
		if name == "" || strings.ContainsAny(name, "<>!") {
			return false, zerr.With(ErrBuildProfiles, "term", term)
		}
		if active.Has(name) == negate {
			return false, nil
		}
	}
	return true, nil
}
