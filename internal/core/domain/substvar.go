package domain

import (
	"sort"
	"strings"
)

// Substvar is one line of a substvars file: a variable holding a comma
// separated set of items, e.g.
//
//	misc:Depends=libfoo (>= 1.2), libbar
//
// The assignment operator is preserved verbatim so that weak assignments
// (VAR?=) survive a rewrite.
type Substvar struct {
	Name  string
	Op    string
	items map[string]struct{}
}

// ParseSubstvar parses a substvars line. The second return value is false when
// the line is not an assignment; such lines are passed through untouched by
// the rewriter.
func ParseSubstvar(line string) (*Substvar, bool) {
	eq := strings.IndexByte(line, '=')
	if eq <= 0 {
		return nil, false
	}
	name, op := line[:eq], "="
	if strings.HasSuffix(name, "?") {
		name, op = name[:len(name)-1], "?="
	}
	if name == "" || strings.ContainsAny(name, " \t") {
		return nil, false
	}
	v := &Substvar{Name: name, Op: op, items: make(map[string]struct{})}
	for _, item := range strings.Split(line[eq+1:], ",") {
		if item = strings.TrimSpace(item); item != "" {
			v.items[item] = struct{}{}
		}
	}
	return v, true
}

// NewSubstvar returns an empty substvar with a strong assignment operator.
func NewSubstvar(name string) *Substvar {
	return &Substvar{Name: name, Op: "=", items: make(map[string]struct{})}
}

// Has reports whether the item is present.
func (v *Substvar) Has(item string) bool {
	_, ok := v.items[item]
	return ok
}

// Add inserts an item. Adding a present item is a no-op; the return value
// reports whether the set changed.
func (v *Substvar) Add(item string) bool {
	if v.Has(item) {
		return false
	}
	v.items[item] = struct{}{}
	return true
}

// Remove drops an item and reports whether the set changed.
func (v *Substvar) Remove(item string) bool {
	if !v.Has(item) {
		return false
	}
	delete(v.items, item)
	return true
}

// Empty reports whether no items remain.
func (v *Substvar) Empty() bool {
	return len(v.items) == 0
}

// String renders the line with items deduplicated and sorted.
func (v *Substvar) String() string {
	items := make([]string, 0, len(v.items))
	for item := range v.items {
		items = append(items, item)
	}
	sort.Strings(items)
	return v.Name + v.Op + strings.Join(items, ", ")
}
