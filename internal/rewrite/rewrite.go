// Package rewrite applies byte-offset text edits to a source buffer.
package rewrite

import (
	"fmt"
	"sort"
	"strings"
)

// Edit replaces src[Start:End] with Text. Start == End inserts.
type Edit struct {
	Start int
	End   int
	Text  string
}

func (e Edit) contains(o Edit) bool {
	if e.Start == o.Start && e.End == o.End {
		return false
	}
	return e.Start <= o.Start && o.End <= e.End && e.Start < e.End
}

// Prune drops every edit that lies inside another edit. The outer edit
// is expected to already account for the text of the inner one.
func Prune(edits []Edit) []Edit {
	kept := make([]Edit, 0, len(edits))
	for i, e := range edits {
		inner := false
		for j, o := range edits {
			if i != j && o.contains(e) {
				inner = true
				break
			}
		}
		if !inner {
			kept = append(kept, e)
		}
	}
	return kept
}

// Apply prunes nested edits and applies the rest from the highest offset
// down, so earlier offsets stay valid. Partially overlapping edits are an
// error.
func Apply(src string, edits []Edit) (string, error) {
	edits = Prune(edits)
	for _, e := range edits {
		if e.Start < 0 || e.End < e.Start || e.End > len(src) {
			return "", fmt.Errorf("edit [%d:%d] out of range", e.Start, e.End)
		}
	}

	order := make([]int, len(edits))
	for i := range order {
		order[i] = i
	}
	sort.SliceStable(order, func(a, b int) bool {
		ea, eb := edits[order[a]], edits[order[b]]
		if ea.Start != eb.Start {
			return ea.Start > eb.Start
		}
		// inserts at the same offset keep their given order
		return order[a] > order[b]
	})

	out := src
	for i, idx := range order {
		e := edits[idx]
		if i > 0 {
			prev := edits[order[i-1]]
			if e.End > prev.Start {
				return "", fmt.Errorf("edit [%d:%d] overlaps edit [%d:%d]", e.Start, e.End, prev.Start, prev.End)
			}
		}
		out = out[:e.Start] + e.Text + out[e.End:]
	}
	return out, nil
}

// ApplyRange returns src[lo:hi] with the edits that fall inside that
// range applied.
func ApplyRange(src string, lo, hi int, edits []Edit) (string, error) {
	var local []Edit
	for _, e := range edits {
		if lo <= e.Start && e.End <= hi {
			local = append(local, Edit{Start: e.Start - lo, End: e.End - lo, Text: e.Text})
		}
	}
	return Apply(src[lo:hi], local)
}

// LineIndent returns the leading whitespace of the line holding offset.
func LineIndent(src string, offset int) string {
	start := strings.LastIndexByte(src[:offset], '\n') + 1
	line := src[start:]
	if end := strings.IndexByte(line, '\n'); end >= 0 {
		line = line[:end]
	}
	return ExtractIndent(line)
}

func ExtractIndent(line string) string {
	return line[:len(line)-len(strings.TrimLeft(line, " \t"))]
}

// ApplyIndent prefixes every line of code after the first with indent.
// The first line continues whatever precedes the edit on its line.
func ApplyIndent(code, indent string) string {
	if indent == "" || !strings.Contains(code, "\n") {
		return code
	}
	lines := strings.Split(code, "\n")
	for i := 1; i < len(lines); i++ {
		if lines[i] != "" {
			lines[i] = indent + lines[i]
		}
	}
	return strings.Join(lines, "\n")
}

// Indent prefixes every non-empty line of code with indent.
func Indent(code, indent string) string {
	if indent == "" {
		return code
	}
	lines := strings.Split(code, "\n")
	for i, line := range lines {
		if line != "" {
			lines[i] = indent + line
		}
	}
	return strings.Join(lines, "\n")
}
