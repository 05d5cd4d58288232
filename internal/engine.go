package internal

import (
	"errors"
	"fmt"
	"os"
	"sort"
	"strings"
	"time"

	"github.com/gnolang/macrokit/internal/directive"
	"github.com/gnolang/macrokit/internal/macros"
	"github.com/gnolang/macrokit/internal/rewrite"
	"github.com/gnolang/macrokit/internal/syntax"
	tt "github.com/gnolang/macrokit/internal/types"
)

// SyntaxErrorRule is the rule name of issues raised for unparsable input.
const SyntaxErrorRule = "syntax-error"

// Options configures an Engine.
type Options struct {
	Macros    map[string]tt.ConfigMacro
	Hierarchy macros.HierarchyConfig
	// FullPath makes #log print the file path as given instead of its
	// base name.
	FullPath bool
}

// Engine expands the macros of one source file at a time. It holds no
// per-file state, so a single Engine may serve several goroutines once
// configured.
type Engine struct {
	registry     *macros.Registry
	ignoredRules map[string]bool
	severity     map[string]tt.Severity
	fullPath     bool

	// Now is the clock read by #buildDate.
	Now func() time.Time
}

// NewEngine creates an engine with the built-in macros and applies the
// per-macro configuration.
func NewEngine(opts Options) (*Engine, error) {
	engine := &Engine{
		registry: macros.Builtin(opts.Hierarchy),
		severity: make(map[string]tt.Severity),
		fullPath: opts.FullPath,
		Now:      time.Now,
	}
	if err := engine.applyMacros(opts.Macros); err != nil {
		return nil, err
	}
	return engine, nil
}

func (e *Engine) applyMacros(cfg map[string]tt.ConfigMacro) error {
	for name, m := range cfg {
		if _, ok := e.registry.Lookup(name); !ok {
			return fmt.Errorf("unknown macro %q in configuration", name)
		}
		if m.Severity == tt.SeverityOff {
			e.IgnoreMacro(name)
			continue
		}
		e.severity[name] = m.Severity
	}
	return nil
}

// Registry exposes the macros known to the engine.
func (e *Engine) Registry() *macros.Registry {
	return e.registry
}

// IgnoreMacro disables a macro: its invocations are left as written.
func (e *Engine) IgnoreMacro(name string) {
	if e.ignoredRules == nil {
		e.ignoredRules = make(map[string]bool)
	}
	e.ignoredRules[name] = true
}

// Result is the outcome of expanding one file.
type Result struct {
	Filename string
	Source   string
	Output   string
	Issues   []tt.Issue
	// Expanded counts the invocations that were replaced.
	Expanded int
}

// Changed reports whether expansion modified the source.
func (r *Result) Changed() bool {
	return r.Output != r.Source
}

// Run reads filename and expands the macros in it.
func (e *Engine) Run(filename string) (*Result, error) {
	content, err := os.ReadFile(filename)
	if err != nil {
		return nil, fmt.Errorf("error reading file: %w", err)
	}
	return e.RunSource(filename, content)
}

// RunSource expands the macros in source. Malformed invocations and
// syntax errors are reported as issues; the returned error is reserved
// for failures of the engine itself.
func (e *Engine) RunSource(filename string, source []byte) (*Result, error) {
	src := string(source)
	res := &Result{Filename: filename, Source: src, Output: src}

	file, err := syntax.Parse(filename, src)
	if err != nil {
		var synErr *syntax.Error
		if !errors.As(err, &synErr) {
			return nil, fmt.Errorf("error parsing content: %w", err)
		}
		res.Issues = []tt.Issue{{
			Rule:     SyntaxErrorRule,
			Filename: filename,
			Message:  synErr.Msg,
			Start:    synErr.Pos,
			End:      synErr.Pos,
			Severity: tt.SeverityError,
		}}
		return res, nil
	}

	ctx := macros.NewContext(filename, e.Now())
	ctx.FullPath = e.fullPath
	x := &expansion{
		engine: e,
		file:   file,
		ctx:    ctx,
		skip:   directive.ParseComments(file),
	}
	ctx.WithSource(x.source)

	x.expandAttached()
	x.expandFreestanding()

	output, err := x.apply()
	if err != nil {
		return nil, fmt.Errorf("error applying expansions: %w", err)
	}
	sort.SliceStable(x.issues, func(i, j int) bool {
		return x.issues[i].Start.Offset < x.issues[j].Start.Offset
	})

	res.Output = output
	res.Issues = x.issues
	res.Expanded = x.count
	return res, nil
}

// expansion is the per-file state of RunSource.
type expansion struct {
	engine *Engine
	file   *syntax.File
	ctx    *macros.Context
	skip   *directive.Manager

	// expanded holds the output of freestanding invocations with
	// continuation lines relative to column zero; attached holds
	// attribute removals and inserted declarations.
	expanded []rewrite.Edit
	attached []rewrite.Edit
	issues   []tt.Issue
	count    int
}

// lookup returns the entry for name unless it is unknown, disabled or
// suppressed by a directive on line.
func (x *expansion) lookup(name string, line int) (*macros.Entry, bool) {
	entry, ok := x.engine.registry.Lookup(name)
	if !ok || x.engine.ignoredRules[name] || x.skip.IsIgnored(line, name) {
		return nil, false
	}
	return entry, true
}

func (x *expansion) report(entry *macros.Entry, span syntax.Span, err error) {
	issue := tt.Issue{
		Rule:     entry.Name,
		Filename: x.file.Filename,
		Message:  err.Error(),
		Start:    span.Start,
		End:      span.End,
		Severity: tt.SeverityError,
	}
	if sev, ok := x.engine.severity[entry.Name]; ok {
		issue.Severity = sev
	}
	var macroErr *macros.Error
	if errors.As(err, &macroErr) {
		issue.Note = "usage: " + entry.Usage
	}
	x.issues = append(x.issues, issue)
}

func (x *expansion) misuse(entry *macros.Entry, span syntax.Span, format string, args ...any) {
	x.report(entry, span, fmt.Errorf(format, args...))
}

// expandAttached runs member macros on declaration groups and peer
// macros on their members.
func (x *expansion) expandAttached() {
	for _, g := range x.file.Decls {
		var decls []string
		for _, attr := range g.Attributes {
			entry, ok := x.lookup(attr.Name, attr.Span.Start.Line)
			if !ok {
				continue
			}
			m, ok := entry.Member()
			if !ok {
				x.misuse(entry, attr.Span, "@%s cannot be attached to a %s", attr.Name, g.Kind())
				continue
			}
			out, err := m.ExpandMembers(attr, g, x.ctx)
			if err != nil {
				x.report(entry, attr.Span, err)
				continue
			}
			decls = append(decls, out...)
			x.attached = append(x.attached, removeAttribute(x.file.Source, attr, false))
			x.count++
		}
		if len(decls) > 0 {
			x.attached = append(x.attached, insertMembers(x.file.Source, g, decls))
		}

		for _, member := range g.MemberList {
			if member.Group != nil {
				// nested groups are visited on their own
				continue
			}
			x.expandPeers(member)
		}
	}
}

func (x *expansion) expandPeers(member *syntax.Member) {
	var decls []string
	for _, attr := range member.Attributes {
		entry, ok := x.lookup(attr.Name, attr.Span.Start.Line)
		if !ok {
			continue
		}
		p, ok := entry.Peer()
		if !ok {
			x.misuse(entry, attr.Span, "@%s cannot be attached to a member", attr.Name)
			continue
		}
		out, err := p.ExpandPeer(attr, member, x.ctx)
		if err != nil {
			x.report(entry, attr.Span, err)
			continue
		}
		decls = append(decls, out...)
		x.attached = append(x.attached, removeAttribute(x.file.Source, attr, true))
		x.count++
	}
	if len(decls) > 0 {
		x.attached = append(x.attached, insertPeers(x.file.Source, member, decls))
	}
}

// expandFreestanding expands invocations innermost first. An outer
// invocation sees the expanded form of the inner ones through
// Context.Source while captured source text stays as written; when it
// succeeds its edit supersedes theirs.
func (x *expansion) expandFreestanding() {
	invs := make([]*syntax.Expansion, len(x.file.Expansions))
	copy(invs, x.file.Expansions)
	sort.SliceStable(invs, func(i, j int) bool {
		return spanLen(invs[i].Span) < spanLen(invs[j].Span)
	})

	for _, inv := range invs {
		entry, ok := x.lookup(inv.Name, inv.Span.Start.Line)
		if !ok {
			continue
		}
		m, ok := entry.Expression()
		if !ok {
			x.misuse(entry, inv.Span, "#%s is an attached macro; use @%s", inv.Name, inv.Name)
			continue
		}
		text, err := m.ExpandExpression(inv, x.ctx)
		if err != nil {
			x.report(entry, inv.Span, err)
			continue
		}
		x.expanded = append(x.expanded, rewrite.Edit{
			Start: inv.Span.Start.Offset,
			End:   inv.Span.End.Offset,
			Text:  text,
		})
		x.count++
	}
}

// source resolves an argument to its text with the inner expansions
// applied so far.
func (x *expansion) source(expr *syntax.Expr) string {
	text, err := rewrite.ApplyRange(x.file.Source, expr.Span.Start.Offset, expr.Span.End.Offset, x.expanded)
	if err != nil {
		return expr.Text
	}
	return text
}

func (x *expansion) apply() (string, error) {
	src := x.file.Source
	top := rewrite.Prune(x.expanded)
	edits := make([]rewrite.Edit, 0, len(top)+len(x.attached))
	for _, edit := range top {
		edit.Text = rewrite.ApplyIndent(edit.Text, rewrite.LineIndent(src, edit.Start))
		edits = append(edits, edit)
	}
	edits = append(edits, x.attached...)
	return rewrite.Apply(src, edits)
}

func spanLen(s syntax.Span) int {
	return s.End.Offset - s.Start.Offset
}

// removeAttribute deletes attr. An attribute alone on its line takes the
// line with it; with collapse set, blank lines above it go as well.
func removeAttribute(src string, attr *syntax.Attribute, collapse bool) rewrite.Edit {
	start, end := attr.Span.Start.Offset, attr.Span.End.Offset
	for end < len(src) && (src[end] == ' ' || src[end] == '\t') {
		end++
	}
	lineStart := strings.LastIndexByte(src[:start], '\n') + 1
	lineEnd := end
	if lineEnd < len(src) && src[lineEnd] == '\r' {
		lineEnd++
	}
	if strings.TrimSpace(src[lineStart:start]) != "" || (lineEnd < len(src) && src[lineEnd] != '\n') {
		return rewrite.Edit{Start: start, End: end}
	}
	if lineEnd < len(src) {
		lineEnd++
	}

	start = lineStart
	for collapse && start > 0 {
		prev := strings.LastIndexByte(src[:start-1], '\n') + 1
		if strings.TrimSpace(src[prev:start-1]) != "" {
			break
		}
		start = prev
	}
	return rewrite.Edit{Start: start, End: lineEnd}
}

// insertMembers replaces the whitespace before the closing brace of g
// with decls, each preceded by a blank line.
func insertMembers(src string, g *syntax.DeclGroup, decls []string) rewrite.Edit {
	end := g.Close.Offset
	start := end
	for start > g.Open.Offset+1 && isSpace(src[start-1]) {
		start--
	}

	var sb strings.Builder
	for i, decl := range decls {
		if i > 0 || start > g.Open.Offset+1 {
			sb.WriteString("\n")
		}
		sb.WriteString("\n")
		sb.WriteString(rewrite.Indent(decl, g.MemberIndent))
	}
	sb.WriteString("\n")
	sb.WriteString(g.Indent)
	return rewrite.Edit{Start: start, End: end, Text: sb.String()}
}

// insertPeers places decls on the lines following member.
func insertPeers(src string, member *syntax.Member, decls []string) rewrite.Edit {
	offset := member.Span.End.Offset
	indent := rewrite.LineIndent(src, member.Span.Start.Offset)

	var sb strings.Builder
	for _, decl := range decls {
		sb.WriteString("\n")
		sb.WriteString(rewrite.Indent(decl, indent))
	}
	return rewrite.Edit{Start: offset, End: offset, Text: sb.String()}
}

func isSpace(c byte) bool {
	return c == ' ' || c == '\t' || c == '\n' || c == '\r'
}
