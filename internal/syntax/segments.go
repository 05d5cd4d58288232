package syntax

import "strings"

// parseSegments splits the source of a string literal into text and
// interpolation segments. The literal is assumed to be well formed, as
// the lexer has already validated it.
func parseSegments(lit string) ([]Segment, bool) {
	hashes := 0
	for hashes < len(lit) && lit[hashes] == '#' {
		hashes++
	}
	delim := strings.Repeat("#", hashes)
	quote := `"`
	multiline := strings.HasPrefix(lit[hashes:], `"""`)
	if multiline {
		quote = `"""`
	}
	inner := lit[hashes+len(quote) : len(lit)-len(quote)-hashes]
	if multiline {
		inner = dedentMultiline(inner)
	}

	var (
		segs   []Segment
		buf    strings.Builder
		escape = `\` + delim
	)
	flush := func() {
		if buf.Len() > 0 {
			segs = append(segs, Segment{Text: buf.String()})
			buf.Reset()
		}
	}
	for i := 0; i < len(inner); {
		if strings.HasPrefix(inner[i:], escape) {
			j := i + len(escape)
			if j < len(inner) && inner[j] == '(' {
				end := interpolationEnd(inner, j)
				flush()
				segs = append(segs, Segment{Interpolated: true, Text: inner[j+1 : end]})
				i = end + 1
				continue
			}
			buf.WriteString(escape)
			if j < len(inner) {
				buf.WriteByte(inner[j])
			}
			i = j + 1
			continue
		}
		buf.WriteByte(inner[i])
		i++
	}
	flush()
	return segs, multiline
}

// interpolationEnd returns the index of the ')' closing the '(' at open.
func interpolationEnd(s string, open int) int {
	depth := 0
	for i := open; i < len(s); i++ {
		switch s[i] {
		case '(':
			depth++
		case ')':
			depth--
			if depth == 0 {
				return i
			}
		case '"':
			// skip a nested string literal
			for i++; i < len(s) && s[i] != '"'; i++ {
				if s[i] == '\\' {
					i++
				}
			}
		}
	}
	return len(s) - 1
}

// dedentMultiline drops the line breaks after the opening and before the
// closing delimiter, and strips the closing delimiter's indentation.
func dedentMultiline(inner string) string {
	inner = strings.TrimPrefix(strings.TrimPrefix(inner, "\r"), "\n")
	last := strings.LastIndexByte(inner, '\n')
	if last < 0 {
		return ""
	}
	indent := inner[last+1:]
	if strings.TrimLeft(indent, " \t") != "" {
		return inner
	}
	lines := strings.Split(inner[:last], "\n")
	for i, line := range lines {
		lines[i] = strings.TrimPrefix(line, indent)
	}
	return strings.Join(lines, "\n")
}
