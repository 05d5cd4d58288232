package formatter

import (
	"fmt"
	"strings"
	"unicode"

	"github.com/fatih/color"
	"github.com/rivo/uniseg"

	tt "github.com/gnolang/macrokit/internal/types"
)

const tabWidth = 4

var (
	errorStyle   = color.New(color.FgRed, color.Bold)
	warningStyle = color.New(color.FgHiYellow, color.Bold)
	infoStyle    = color.New(color.FgHiCyan, color.Bold)
	ruleStyle    = color.New(color.FgYellow, color.Bold)
	fileStyle    = color.New(color.FgCyan, color.Bold)
	lineStyle    = color.New(color.FgHiBlue, color.Bold)
	messageStyle = color.New(color.FgRed, color.Bold)
	noteStyle    = color.New(color.FgGreen, color.Bold)
)

// GenerateFormattedIssue renders issues found in source the way rustc
// renders diagnostics: a header, the offending lines and an underline.
func GenerateFormattedIssue(issues []tt.Issue, source string) string {
	lines := strings.Split(source, "\n")
	for i, line := range lines {
		lines[i] = strings.TrimSuffix(line, "\r")
	}

	var builder strings.Builder
	for _, issue := range issues {
		builder.WriteString(buildIssue(issue, lines))
	}
	return builder.String()
}

func buildIssue(issue tt.Issue, lines []string) string {
	startLine, endLine := issue.Start.Line, issue.End.Line
	if endLine < startLine {
		endLine = startLine
	}
	maxLineNumWidth := len(fmt.Sprintf("%d", endLine))
	padding := strings.Repeat(" ", maxLineNumWidth+1)

	var b strings.Builder
	b.WriteString(header(issue, maxLineNumWidth))

	if !isValidLineRange(startLine, endLine, lines) {
		b.WriteString(lineStyle.Sprintf("%s= ", padding))
		b.WriteString(messageStyle.Sprintf("%s\n", issue.Message))
		b.WriteString(note(issue.Note))
		b.WriteString("\n")
		return b.String()
	}

	commonIndent := findCommonIndent(lines[startLine-1 : endLine])
	b.WriteString(lineStyle.Sprintf("%s|\n", padding))
	for i := startLine; i <= endLine; i++ {
		line := expandTabs(strings.TrimPrefix(lines[i-1], commonIndent))
		b.WriteString(lineStyle.Sprintf("%*d | ", maxLineNumWidth, i))
		b.WriteString(line + "\n")
	}

	b.WriteString(lineStyle.Sprintf("%s| ", padding))
	b.WriteString(underline(issue, lines, commonIndent))
	b.WriteString(lineStyle.Sprintf("%s= ", padding))
	b.WriteString(messageStyle.Sprintf("%s\n", issue.Message))
	b.WriteString(note(issue.Note))
	b.WriteString("\n")
	return b.String()
}

func header(issue tt.Issue, maxLineNumWidth int) string {
	var s string
	switch issue.Severity {
	case tt.SeverityWarning:
		s = warningStyle.Sprint("warning: ")
	case tt.SeverityInfo:
		s = infoStyle.Sprint("info: ")
	default:
		s = errorStyle.Sprint("error: ")
	}
	s += ruleStyle.Sprintf("%s\n", issue.Rule)
	s += lineStyle.Sprintf("%s--> ", strings.Repeat(" ", maxLineNumWidth))
	s += fileStyle.Sprintf("%s:%d:%d\n", issue.Filename, issue.Start.Line, issue.Start.Column)
	return s
}

// underline marks the issue on its first line. A span running past that
// line is marked up to the line's end.
func underline(issue tt.Issue, lines []string, commonIndent string) string {
	first := strings.TrimPrefix(lines[issue.Start.Line-1], commonIndent)
	trimmed := len(lines[issue.Start.Line-1]) - len(first)

	start := visualColumn(first, issue.Start.Column-trimmed)
	end := visualColumn(first, len(first)+1)
	if issue.End.Line == issue.Start.Line {
		end = visualColumn(first, issue.End.Column-trimmed)
	}
	length := end - start
	if length < 1 {
		length = 1
	}
	return strings.Repeat(" ", start) + messageStyle.Sprintf("%s\n", strings.Repeat("~", length))
}

func note(note string) string {
	if note == "" {
		return ""
	}
	return noteStyle.Sprint("Note: ") + lineStyle.Sprintf("%s\n", note)
}

func isValidLineRange(startLine, endLine int, lines []string) bool {
	return startLine > 0 && endLine >= startLine && endLine <= len(lines)
}

// visualColumn is the display width of line up to the 1-based byte
// column, with tabs expanded and wide characters counted twice.
func visualColumn(line string, column int) int {
	if column <= 1 {
		return 0
	}
	if column-1 < len(line) {
		line = line[:column-1]
	}
	return uniseg.StringWidth(expandTabs(line))
}

func expandTabs(line string) string {
	if !strings.Contains(line, "\t") {
		return line
	}
	var b strings.Builder
	width := 0
	for {
		i := strings.IndexByte(line, '\t')
		if i < 0 {
			b.WriteString(line)
			return b.String()
		}
		b.WriteString(line[:i])
		width += uniseg.StringWidth(line[:i])
		n := tabWidth - width%tabWidth
		b.WriteString(strings.Repeat(" ", n))
		width += n
		line = line[i+1:]
	}
}

// findCommonIndent finds the indentation shared by the non-blank lines.
func findCommonIndent(lines []string) string {
	var common string
	found := false
	for _, line := range lines {
		trimmed := strings.TrimLeftFunc(line, unicode.IsSpace)
		if trimmed == "" {
			continue
		}
		indent := line[:len(line)-len(trimmed)]
		if !found {
			common, found = indent, true
			continue
		}
		common = commonPrefix(common, indent)
		if common == "" {
			break
		}
	}
	return common
}

func commonPrefix(a, b string) string {
	n := min(len(a), len(b))
	for i := 0; i < n; i++ {
		if a[i] != b[i] {
			return a[:i]
		}
	}
	return a[:n]
}
