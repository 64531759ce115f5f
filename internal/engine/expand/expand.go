// Package expand implements the bounded ${token} substitution language used
// by config files. Directives come from the source text only; a "${" inside
// a substituted value stays literal. Three independent limits bound runaway
// inputs: a same-position recursion cap, a total expansion cap, and an
// output size cap.
package expand

import (
	"regexp"
	"strings"

	"go.trai.ch/dh/internal/core/domain"
	"go.trai.ch/dh/internal/core/ports"
	"go.trai.ch/zerr"
)

const (
	// maxSamePositionRecursion caps consecutive expansions at one output
	// position. Hitting it means a token's value keeps producing the same
	// unresolved directive.
	maxSamePositionRecursion = 20

	// maxExpansions caps the number of substitutions over the whole input.
	maxExpansions = 50

	// minSizeLimit is the floor of the output size cap; larger inputs may
	// grow to three times their original length.
	minSizeLimit = 4096
)

// tokenRegex matches the leftmost ${name} directive. Names start with an
// alphanumeric and continue with alphanumerics, '-', '_' and ':'.
var tokenRegex = regexp.MustCompile(`\$\{([a-zA-Z0-9][a-zA-Z0-9_:-]*)\}`)

// builtins are fixed replacement values, mainly for characters the
// space-separated config format cannot carry literally.
var builtins = map[string]string{
	"Space":   " ",
	"Dollar":  "$",
	"Newline": "\n",
	"Tab":     "\t",
}

// dollarSentinel temporarily replaces '$' inside substituted values so a
// value containing "${" is never treated as a fresh directive. It is restored
// once the whole expansion is done.
const dollarSentinel = "\x00"

// Expander resolves ${token} directives. Zero value is not usable; both
// lookups must be set.
type Expander struct {
	// Env looks up ${env:NAME} references.
	Env func(string) (string, bool)
	// Arch resolves DEB_BUILD_*, DEB_HOST_* and DEB_TARGET_* tokens.
	Arch ports.ArchTable
}

// New creates an Expander over the given environment lookup and architecture
// table.
func New(env func(string) (string, bool), arch ports.ArchTable) *Expander {
	return &Expander{Env: env, Arch: arch}
}

// Expand substitutes every ${token} directive in text. location names the
// input (file and line) for diagnostics.
func (e *Expander) Expand(text, location string) (string, error) {
	var (
		expansions   int
		lastPos      = -1
		samePosCount int
	)
	sizeLimit := len(text) * 3
	if sizeLimit < minSizeLimit {
		sizeLimit = minSizeLimit
	}

	for {
		loc := tokenRegex.FindStringSubmatchIndex(text)
		if loc == nil {
			break
		}
		name := text[loc[2]:loc[3]]

		value, err := e.resolve(name)
		if err != nil {
			return "", zerr.With(err, "location", location)
		}

		expansions++
		if expansions > maxExpansions {
			err := zerr.With(domain.ErrSubstLimit, "limit", maxExpansions)
			return "", zerr.With(err, "location", location)
		}
		if loc[0] == lastPos {
			samePosCount++
			if samePosCount >= maxSamePositionRecursion {
				err := zerr.With(domain.ErrSubstRecursion, "token", name)
				return "", zerr.With(err, "location", location)
			}
		} else {
			lastPos = loc[0]
			samePosCount = 0
		}

		// Escape '$' in the substituted value; rescanning must not pick
		// up directives that came from data.
		value = strings.ReplaceAll(value, "$", dollarSentinel)
		text = text[:loc[0]] + value + text[loc[1]:]

		if len(text) > sizeLimit {
			err := zerr.With(domain.ErrSubstGrowth, "limit", sizeLimit)
			return "", zerr.With(err, "location", location)
		}
	}

	return strings.ReplaceAll(text, dollarSentinel, "$"), nil
}

func (e *Expander) resolve(name string) (string, error) {
	if value, ok := builtins[name]; ok {
		return value, nil
	}
	if strings.HasPrefix(name, "DEB_BUILD_") ||
		strings.HasPrefix(name, "DEB_HOST_") ||
		strings.HasPrefix(name, "DEB_TARGET_") {
		value, err := e.Arch.Value(name)
		if err != nil {
			return "", zerr.With(domain.ErrSubstUnknownToken, "token", name)
		}
		return value, nil
	}
	if envName, ok := strings.CutPrefix(name, "env:"); ok {
		if value, found := e.Env(envName); found {
			return value, nil
		}
		return "", zerr.With(domain.ErrSubstUnknownToken, "token", name)
	}
	return "", zerr.With(domain.ErrSubstUnknownToken, "token", name)
}
