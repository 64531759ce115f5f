// Package control parses the package manifest (debian/control), a Deb822
// stanza format, into the domain manifest model.
package control

import (
	"regexp"
	"strings"

	"go.trai.ch/dh/internal/core/domain"
	"go.trai.ch/zerr"
)

// field is one parsed "Name: value" entry, with continuation lines folded in.
type field struct {
	name  string
	value string
	line  int
}

// stanza is one paragraph of the manifest.
type stanza struct {
	fields []field
	index  map[string]int
	line   int
}

// get returns the folded value of a field, case-insensitively.
func (s *stanza) get(name string) (string, bool) {
	i, ok := s.index[strings.ToLower(name)]
	if !ok {
		return "", false
	}
	return s.fields[i].value, true
}

// fieldLine returns the line number a field started on, or the stanza's line.
func (s *stanza) fieldLine(name string) int {
	if i, ok := s.index[strings.ToLower(name)]; ok {
		return s.fields[i].line
	}
	return s.line
}

// fieldNameRegex is the Deb822 field name grammar: printable ASCII without
// space or colon. The additional "must not start with # or -" rule is checked
// separately so it can produce a distinct diagnostic.
var fieldNameRegex = regexp.MustCompile(`^[\x21-\x39\x3B-\x7E]+$`)

// lineKind classifies one raw input line.
type lineKind int

const (
	lineBlank lineKind = iota
	lineComment
	lineContinuation
	lineField
)

func classifyLine(line string) lineKind {
	switch {
	case strings.TrimSpace(line) == "":
		return lineBlank
	case strings.HasPrefix(line, "#"):
		return lineComment
	case line[0] == ' ' || line[0] == '\t':
		return lineContinuation
	default:
		return lineField
	}
}

// parseStanzas splits the manifest into stanzas. The walk is a small state
// machine over the classified lines: a blank line ends the current stanza,
// continuation lines fold into the preceding field, comment lines vanish, and
// end of input closes whatever stanza is open (so a trailing comment cannot
// swallow the final stanza).
func parseStanzas(data string) ([]stanza, error) {
	var (
		stanzas []stanza
		current *stanza
		lineNo  int
	)

	flush := func() {
		if current != nil && len(current.fields) > 0 {
			stanzas = append(stanzas, *current)
		}
		current = nil
	}

	for raw := range strings.Lines(data) {
		lineNo++
		line := strings.TrimRight(raw, "\r\n")

		switch classifyLine(line) {
		case lineComment:
			continue

		case lineBlank:
			flush()

		case lineContinuation:
			if current == nil || len(current.fields) == 0 {
				return nil, zerr.With(domain.ErrContinuationOutsideStanza, "line", lineNo)
			}
			last := &current.fields[len(current.fields)-1]
			text := strings.TrimSpace(line)
			if text == "." {
				// whitespace-dot is an explicitly empty continuation
				text = ""
			}
			last.value += "\n" + text

		case lineField:
			name, value, err := splitFieldLine(line, lineNo)
			if err != nil {
				return nil, err
			}
			if current == nil {
				current = &stanza{index: make(map[string]int), line: lineNo}
			}
			key := strings.ToLower(name)
			if _, dup := current.index[key]; dup {
				err := zerr.With(domain.ErrDuplicateField, "field", name)
				return nil, zerr.With(err, "line", lineNo)
			}
			current.index[key] = len(current.fields)
			current.fields = append(current.fields, field{name: name, value: value, line: lineNo})
		}
	}
	flush()

	return stanzas, nil
}

func splitFieldLine(line string, lineNo int) (name, value string, err error) {
	colon := strings.IndexByte(line, ':')
	if colon <= 0 {
		err := zerr.With(domain.ErrControlParse, "line", lineNo)
		return "", "", zerr.With(err, "text", line)
	}
	name = line[:colon]
	if !fieldNameRegex.MatchString(name) || name[0] == '#' || name[0] == '-' {
		err := zerr.With(domain.ErrControlParse, "field", name)
		return "", "", zerr.With(err, "line", lineNo)
	}
	return name, strings.TrimSpace(line[colon+1:]), nil
}
