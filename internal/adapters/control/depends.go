package control

import (
	"regexp"
	"strconv"
	"strings"

	"go.trai.ch/dh/internal/core/domain"
	"go.trai.ch/zerr"
)

// splitRelations splits a dependency field value on top-level commas, i.e.
// commas outside (), [] and <> groups. None of the groups nest, but version
// operators put '<' and '>' inside parentheses, so the angle form counts as
// a group delimiter only outside the other two. Entries are trimmed; empty
// entries (trailing commas, folded blank continuations) are dropped.
func splitRelations(value string) []string {
	var (
		relations []string
		start     int
		parens    bool
		brackets  bool
		angles    bool
	)
	for i := 0; i < len(value); i++ {
		switch value[i] {
		case '(':
			if !brackets && !angles {
				parens = true
			}
		case ')':
			parens = false
		case '[':
			if !parens && !angles {
				brackets = true
			}
		case ']':
			brackets = false
		case '<':
			if !parens && !brackets {
				angles = true
			}
		case '>':
			if !parens && !brackets {
				angles = false
			}
		case ',':
			if !parens && !brackets && !angles {
				relations = append(relations, value[start:i])
				start = i + 1
			}
		}
	}
	relations = append(relations, value[start:])

	out := relations[:0]
	for _, r := range relations {
		if r = strings.Join(strings.Fields(r), " "); r != "" {
			out = append(out, r)
		}
	}
	return out
}

var (
	compatRelationRegex = regexp.MustCompile(`^debhelper-compat \(= (\d+)\)$`)
	sequenceRegex       = regexp.MustCompile(`^dh-sequence-([a-z0-9][a-z0-9+.-]*)$`)
)

// scanRelation inspects one build dependency relation for a declared compat
// level or an addon sequence request. field is the originating field name,
// used to reject debhelper-compat outside plain Build-Depends.
func (p *Parser) scanRelation(relation, fieldName string, m *domain.Manifest) error {
	// Strip architecture and profile restrictions before matching; they do
	// not apply to debhelper-compat and are evaluated for sequences below.
	bare, restrictions := splitRestrictions(relation)

	if name, _, _ := relationParts(bare); name == "debhelper-compat" {
		if !strings.EqualFold(fieldName, "Build-Depends") {
			err := zerr.With(domain.ErrCompatRelation, "field", fieldName)
			return zerr.With(err, "hint", "declare debhelper-compat in Build-Depends, not in "+fieldName)
		}
		if strings.Contains(relation, "|") {
			return zerr.With(domain.ErrCompatRelation, "hint", "debhelper-compat must not be part of an alternative (remove the '|')")
		}
		match := compatRelationRegex.FindStringSubmatch(bare)
		if match == nil {
			err := zerr.With(domain.ErrCompatRelation, "relation", relation)
			return zerr.With(err, "hint", "use an exact version, e.g. debhelper-compat (= 13)")
		}
		level, err := strconv.Atoi(match[1])
		if err != nil {
			return zerr.With(domain.ErrCompatInvalid, "relation", relation)
		}
		if m.CompatRelation >= 0 {
			return zerr.With(domain.ErrCompatConflict, "relation", relation)
		}
		m.CompatRelation = level
		return nil
	}

	// Alternatives never carry sequence requests; an addon either applies
	// or it does not.
	if strings.Contains(relation, "|") {
		return nil
	}
	name, _, _ := relationParts(bare)
	match := sequenceRegex.FindStringSubmatch(name)
	if match == nil {
		return nil
	}
	ok, err := p.restrictionsSatisfied(restrictions)
	if err != nil {
		return zerr.With(err, "relation", relation)
	}
	if !ok {
		return nil
	}
	addon := match[1]
	for _, seen := range m.Sequences {
		if seen == addon {
			return nil
		}
	}
	m.Sequences = append(m.Sequences, addon)
	return nil
}

// splitRestrictions separates "[arch] <profile>" suffixes from the package
// and version part of a relation.
func splitRestrictions(relation string) (bare string, restrictions []string) {
	rest := relation
	for {
		rest = strings.TrimSpace(rest)
		open := -1
		if i := strings.LastIndexByte(rest, '<'); i >= 0 && strings.HasSuffix(rest, ">") {
			open = i
		} else if i := strings.LastIndexByte(rest, '['); i >= 0 && strings.HasSuffix(rest, "]") {
			open = i
		}
		if open < 0 {
			return rest, restrictions
		}
		restrictions = append([]string{rest[open:]}, restrictions...)
		rest = rest[:open]
	}
}

// restrictionsSatisfied evaluates the profile restrictions of a relation
// against the active profile set. Architecture restrictions are ignored for
// sequence requests: addon code is loaded regardless of the arch split.
func (p *Parser) restrictionsSatisfied(restrictions []string) (bool, error) {
	var formula strings.Builder
	for _, r := range restrictions {
		if strings.HasPrefix(r, "<") {
			formula.WriteString(r)
			formula.WriteByte(' ')
		}
	}
	if formula.Len() == 0 {
		return true, nil
	}
	return domain.EvalRestrictionFormula(formula.String(), p.profiles)
}

// relationParts splits a single relation into package name, version operator
// and version. Operator and version are empty when unversioned.
func relationParts(relation string) (name, op, version string) {
	name = relation
	if i := strings.IndexByte(relation, '('); i >= 0 {
		name = strings.TrimSpace(relation[:i])
		ver := strings.TrimSpace(relation[i:])
		ver = strings.TrimPrefix(ver, "(")
		ver = strings.TrimSuffix(ver, ")")
		ver = strings.TrimSpace(ver)
		for _, candidate := range []string{">=", "<=", "<<", ">>", "="} {
			if strings.HasPrefix(ver, candidate) {
				op = candidate
				version = strings.TrimSpace(strings.TrimPrefix(ver, candidate))
				break
			}
		}
	}
	// A name can still carry an arch qualifier (libfoo:any).
	if i := strings.IndexByte(name, ':'); i >= 0 {
		name = name[:i]
	}
	return name, op, version
}
