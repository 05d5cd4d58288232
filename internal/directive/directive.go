// Package directive reads the comments that suppress macro expansion.
//
//	// macrokit:ignore              skip every macro on the next line
//	x = #log(y) // macrokit:ignore  skip every macro on this line
//	// macrokit:ignore log,unwrap   skip only the named macros
//	// macrokit:ignore-file         skip the whole file
package directive

import (
	"fmt"
	"strings"

	"github.com/gnolang/macrokit/internal/syntax"
)

const (
	prefix     = "macrokit:ignore"
	filePrefix = "macrokit:ignore-file"
)

// Manager records the line ranges where expansion is suppressed.
type Manager struct {
	scopes []scope
}

// scope is an inclusive line range; empty names means every macro.
type scope struct {
	names map[string]struct{}
	start int
	end   int
}

// ParseComments collects the ignore directives of a parsed file.
func ParseComments(f *syntax.File) *Manager {
	m := &Manager{scopes: make([]scope, 0, len(f.Comments))}
	for _, c := range f.Comments {
		s, err := parseComment(c, f.Source)
		if err != nil {
			// not a directive
			continue
		}
		m.scopes = append(m.scopes, s)
	}
	return m
}

func parseComment(c syntax.Comment, src string) (scope, error) {
	var s scope
	text, ok := strings.CutPrefix(c.Text, "//")
	if !ok {
		return s, fmt.Errorf("not a line comment")
	}
	text = strings.TrimSpace(text)

	wholeFile := false
	switch {
	case strings.HasPrefix(text, filePrefix):
		wholeFile = true
		text = text[len(filePrefix):]
	case strings.HasPrefix(text, prefix):
		text = text[len(prefix):]
	default:
		return s, fmt.Errorf("not a directive")
	}

	// The directive may be followed by a rule list, separated by a
	// colon or a space.
	if text != "" && text[0] != ':' && text[0] != ' ' && text[0] != '\t' {
		return s, fmt.Errorf("invalid directive %q", c.Text)
	}
	text = strings.TrimSpace(strings.TrimPrefix(text, ":"))
	s.names = parseNames(text)

	line := c.Span.Start.Line
	switch {
	case wholeFile:
		s.start, s.end = 1, int(^uint(0)>>1)
	case isInline(c, src):
		s.start, s.end = line, line
	default:
		s.start, s.end = line, line+1
	}
	return s, nil
}

func parseNames(text string) map[string]struct{} {
	names := make(map[string]struct{})
	for _, name := range strings.FieldsFunc(text, func(r rune) bool {
		return r == ',' || r == ' ' || r == '\t'
	}) {
		names[strings.TrimPrefix(strings.TrimPrefix(name, "#"), "@")] = struct{}{}
	}
	return names
}

// isInline reports whether code precedes the comment on its line.
func isInline(c syntax.Comment, src string) bool {
	off := c.Span.Start.Offset
	lineStart := strings.LastIndexByte(src[:off], '\n') + 1
	return strings.TrimSpace(src[lineStart:off]) != ""
}

// IsIgnored reports whether the macro name is suppressed on line.
func (m *Manager) IsIgnored(line int, name string) bool {
	if m == nil {
		return false
	}
	for _, s := range m.scopes {
		if line < s.start || line > s.end {
			continue
		}
		if len(s.names) == 0 {
			return true
		}
		if _, ok := s.names[name]; ok {
			return true
		}
	}
	return false
}
