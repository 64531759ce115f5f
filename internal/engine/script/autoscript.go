// Package script records the side effects of helper tools: shell fragments
// merged into generated maintainer scripts, and dependency tokens in
// substvars files. Both outputs are rewritten atomically and idempotently so
// an interrupted or repeated tool run never corrupts the build state.
package script

import (
	"os"
	"path/filepath"
	"regexp"
	"sort"
	"strings"

	"github.com/cespare/xxhash/v2"
	"go.trai.ch/dh/internal/adapters/fs"
	"go.trai.ch/dh/internal/build"
	"go.trai.ch/dh/internal/core/domain"
	"go.trai.ch/dh/internal/core/ports"
	"go.trai.ch/zerr"
)

// fragmentBaseDirs is the fixed search path for autoscript fragment
// templates, consulted after the DH_AUTOSCRIPTDIR override.
var fragmentBaseDirs = []string{
	"/usr/local/share/debhelper/autoscripts",
	"/usr/share/debhelper/autoscripts",
}

// tokenRegex is the maintainer script token grammar for #TOKEN# placeholders.
var tokenRegex = regexp.MustCompile(`#([A-Z][A-Z0-9_.+-]*)#`)

// Substitution selects how fragment placeholders are filled. At most one of
// the fields may be set; a zero Substitution falls back to exporting the
// #DEBHELPER# token from the already generated ordered snippets.
type Substitution struct {
	// Tokens maps TOKEN names (without the # delimiters) to replacements.
	Tokens map[string]string

	// Line transforms each fragment line. Used by tools whose
	// substitutions cannot be expressed as a token table.
	Line func(string) string
}

// Options for one Autoscript call.
type Options struct {
	// SnippetOrder, when non-empty, redirects the fragment into the
	// ordered snippet file for that order key instead of the phase's
	// accumulator file.
	SnippetOrder string
}

// Engine appends (or, for removal phases, prepends) fragments into the
// generated script files of a package.
type Engine struct {
	logger ports.Logger
	tool   string

	// searchDirs overrides the fragment search path; tests only.
	searchDirs []string

	// seen dedupes ordered snippet insertions per process.
	seen map[uint64]struct{}
}

// NewEngine creates an Engine stamping fragments with the given tool name.
func NewEngine(logger ports.Logger, tool string) *Engine {
	return &Engine{
		logger: logger,
		tool:   tool,
		seen:   make(map[uint64]struct{}),
	}
}

// NewEngineWithSearchDirs creates an Engine with an explicit fragment search
// path, bypassing DH_AUTOSCRIPTDIR and the fixed base directories.
func NewEngineWithSearchDirs(logger ports.Logger, tool string, dirs []string) *Engine {
	e := NewEngine(logger, tool)
	e.searchDirs = dirs
	return e
}

// Autoscript merges the named fragment into the (pkg, phase) script file.
// Fragments for removal phases are prepended: removal undoes install-time
// concerns in reverse order.
func (e *Engine) Autoscript(pkg string, phase domain.ScriptPhase, fragment string, subst Substitution, opts Options) error {
	text, err := e.loadFragment(fragment)
	if err != nil {
		return err
	}

	text, err = e.substitute(text, subst, pkg, phase)
	if err != nil {
		return zerr.With(err, "fragment", fragment)
	}

	block := "# Automatically added by " + e.tool + "/" + build.Version + "\n" +
		strings.TrimRight(text, "\n") + "\n" +
		"# End automatically added section\n"

	if opts.SnippetOrder != "" {
		return e.writeOrderedSnippet(pkg, phase, opts.SnippetOrder, block)
	}
	return e.writeAccumulator(pkg, phase, block)
}

func (e *Engine) loadFragment(fragment string) (string, error) {
	dirs := e.searchDirs
	if dirs == nil {
		if override := os.Getenv("DH_AUTOSCRIPTDIR"); override != "" {
			dirs = append(dirs, override)
		}
		dirs = append(dirs, fragmentBaseDirs...)
	}

	for _, dir := range dirs {
		data, err := os.ReadFile(filepath.Join(dir, fragment))
		if err == nil {
			return string(data), nil
		}
		if !os.IsNotExist(err) {
			return "", zerr.Wrap(err, domain.ErrFileRead.Error())
		}
	}
	err := zerr.With(domain.ErrFragmentNotFound, "fragment", fragment)
	return "", zerr.With(err, "search_path", strings.Join(dirs, ":"))
}

// substitute fills placeholders. This is a single, non-recursive pass; the
// bounded recursive expansion language of config files does not apply to
// fragments.
func (e *Engine) substitute(text string, subst Substitution, pkg string, phase domain.ScriptPhase) (string, error) {
	switch {
	case subst.Tokens != nil:
		return tokenRegex.ReplaceAllStringFunc(text, func(match string) string {
			name := match[1 : len(match)-1]
			if value, ok := subst.Tokens[name]; ok {
				return value
			}
			return match
		}), nil

	case subst.Line != nil:
		var out strings.Builder
		for line := range strings.Lines(text) {
			out.WriteString(subst.Line(strings.TrimSuffix(line, "\n")))
			out.WriteByte('\n')
		}
		return out.String(), nil

	default:
		generated, err := e.collectOrderedSnippets(pkg, phase)
		if err != nil {
			return "", err
		}
		return strings.ReplaceAll(text, "#DEBHELPER#", generated), nil
	}
}

// collectOrderedSnippets concatenates the ordered snippet files of the
// (pkg, phase) pair, sorted by order key.
func (e *Engine) collectOrderedSnippets(pkg string, phase domain.ScriptPhase) (string, error) {
	pattern := filepath.Join(domain.GeneratedDir(pkg), string(phase)+".*")
	matches, err := filepath.Glob(pattern)
	if err != nil || len(matches) == 0 {
		return "", nil
	}
	sort.Strings(matches)

	var out strings.Builder
	for _, match := range matches {
		content, err := fs.ReadIfExists(match)
		if err != nil {
			return "", err
		}
		out.WriteString(content)
	}
	return out.String(), nil
}

func (e *Engine) writeAccumulator(pkg string, phase domain.ScriptPhase, block string) error {
	path := domain.ScriptAccumulatorPath(pkg, phase)
	existing, err := fs.ReadIfExists(path)
	if err != nil {
		return err
	}

	var content string
	if phase.Removal() {
		content = block + existing
	} else {
		content = existing + block
	}
	if err := fs.WriteFileAtomic(path, []byte(content), domain.FilePerm); err != nil {
		return zerr.With(err, "path", path)
	}
	return nil
}

func (e *Engine) writeOrderedSnippet(pkg string, phase domain.ScriptPhase, order, block string) error {
	key := xxhash.Sum64String(pkg + "\x00" + string(phase) + "\x00" + order + "\x00" + block)
	if _, dup := e.seen[key]; dup {
		return nil
	}
	e.seen[key] = struct{}{}

	path := domain.OrderedSnippetPath(pkg, phase, order)
	if err := os.MkdirAll(filepath.Dir(path), domain.DirPerm); err != nil {
		return zerr.Wrap(err, domain.ErrFileWrite.Error())
	}

	existing, err := fs.ReadIfExists(path)
	if err != nil {
		return err
	}
	if strings.Contains(existing, block) {
		// already merged by an earlier invocation
		return nil
	}
	if err := fs.WriteFileAtomic(path, []byte(existing+block), domain.FilePerm); err != nil {
		return zerr.With(err, "path", path)
	}
	return nil
}
