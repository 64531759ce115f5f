package script

import (
	"strings"

	"go.trai.ch/dh/internal/adapters/fs"
	"go.trai.ch/dh/internal/core/domain"
	"go.trai.ch/zerr"
)

// AddSubstvar inserts an item into the named variable of the package's
// substvars file, creating the file and the variable as needed. The item is
// "dep" optionally qualified by a version relation, e.g. (">= 1.2"). Items
// are kept as a deduplicated set; re-adding a present item leaves the file
// untouched.
func (e *Engine) AddSubstvar(pkg, name, dep, version string) error {
	item := dep
	if version != "" {
		item += " (" + version + ")"
	}
	if err := checkSubstvarValue(name, item); err != nil {
		return err
	}

	path := domain.SubstvarsPath(pkg)
	found := false
	transform := func(line string) (string, bool) {
		v, ok := domain.ParseSubstvar(line)
		if !ok || v.Name != name {
			return line, true
		}
		found = true
		v.Add(item)
		return v.String(), true
	}
	appendIfAbsent := func() string {
		if found {
			return ""
		}
		v := domain.NewSubstvar(name)
		v.Add(item)
		return v.String()
	}

	changed, err := fs.UpdateLines(path, transform, appendIfAbsent)
	if err != nil {
		return err
	}
	if changed {
		e.logger.Debug("added " + item + " to " + name + " in " + path)
	}
	return nil
}

// DelSubstvarItem removes one item from the named variable. A variable whose
// last item is removed disappears from the file entirely; an absent file or
// variable is a no-op.
func (e *Engine) DelSubstvarItem(pkg, name, dep, version string) error {
	item := dep
	if version != "" {
		item += " (" + version + ")"
	}
	if err := checkSubstvarValue(name, item); err != nil {
		return err
	}

	transform := func(line string) (string, bool) {
		v, ok := domain.ParseSubstvar(line)
		if !ok || v.Name != name {
			return line, true
		}
		v.Remove(item)
		return v.String(), !v.Empty()
	}

	_, err := fs.UpdateLines(domain.SubstvarsPath(pkg), transform, nil)
	return err
}

// DelSubstvar drops the named variable and all its items.
func (e *Engine) DelSubstvar(pkg, name string) error {
	transform := func(line string) (string, bool) {
		v, ok := domain.ParseSubstvar(line)
		return line, !ok || v.Name != name
	}

	_, err := fs.UpdateLines(domain.SubstvarsPath(pkg), transform, nil)
	return err
}

// checkSubstvarValue rejects values that would corrupt the line-oriented
// substvars format. A newline here is a programmer error in the calling tool,
// not a user input problem.
func checkSubstvarValue(name, item string) error {
	if strings.ContainsAny(name+item, "\n") {
		err := zerr.With(domain.ErrSubstvarNewline, "variable", name)
		return zerr.With(err, "item", item)
	}
	return nil
}
