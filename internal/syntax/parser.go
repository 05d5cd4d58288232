package syntax

import (
	"fmt"
	"strings"
)

var modifiers = map[string]bool{
	"public":      true,
	"private":     true,
	"fileprivate": true,
	"internal":    true,
	"package":     true,
	"open":        true,
	"final":       true,
	"override":    true,
	"lazy":        true,
	"static":      true,
	"weak":        true,
	"unowned":     true,
	"mutating":    true,
	"nonmutating": true,
	"dynamic":     true,
	"required":    true,
	"convenience": true,
	"indirect":    true,
	"nonisolated": true,
	"optional":    true,
}

// compilerDirectives are '#' forms that are never macro invocations.
var compilerDirectives = map[string]bool{
	"if":             true,
	"elseif":         true,
	"else":           true,
	"endif":          true,
	"sourceLocation": true,
}

type parser struct {
	file  *File
	src   string
	toks  []Token
	match []int
}

// Parse lexes and parses src. The returned File records every
// freestanding macro invocation and every declaration group.
func Parse(filename, src string) (*File, error) {
	toks, comments, err := Lex(filename, src)
	if err != nil {
		return nil, err
	}
	p := &parser{
		file: &File{Filename: filename, Source: src, Comments: comments},
		src:  src,
		toks: toks,
	}
	if err := p.matchBrackets(); err != nil {
		return nil, err
	}
	p.collectExpansions()
	p.scanRange(0, len(p.toks)-1)
	return p.file, nil
}

var closers = map[string]string{")": "(", "]": "[", "}": "{"}

func (p *parser) matchBrackets() error {
	p.match = make([]int, len(p.toks))
	var stack []int
	for i, t := range p.toks {
		p.match[i] = -1
		if t.Kind != TokenPunct {
			continue
		}
		switch t.Text {
		case "(", "[", "{":
			stack = append(stack, i)
		case ")", "]", "}":
			if len(stack) == 0 || p.toks[stack[len(stack)-1]].Text != closers[t.Text] {
				return &Error{Pos: t.Span.Start, Msg: fmt.Sprintf("unexpected %q", t.Text)}
			}
			open := stack[len(stack)-1]
			stack = stack[:len(stack)-1]
			p.match[open] = i
			p.match[i] = open
		}
	}
	if len(stack) > 0 {
		t := p.toks[stack[len(stack)-1]]
		return &Error{Pos: t.Span.Start, Msg: fmt.Sprintf("unclosed %q", t.Text)}
	}
	return nil
}

func (p *parser) is(i int, kind TokenKind, text string) bool {
	return i >= 0 && i < len(p.toks) && p.toks[i].Is(kind, text)
}

// adjacent reports whether token i directly follows token i-1.
func (p *parser) adjacent(i int) bool {
	return i < len(p.toks) && !p.toks[i].SpaceBefore
}

func (p *parser) text(a, b int) string {
	return p.src[p.toks[a].Span.Start.Offset:p.toks[b-1].Span.End.Offset]
}

func (p *parser) span(a, b int) Span {
	return Span{Start: p.toks[a].Span.Start, End: p.toks[b-1].Span.End}
}

/***** freestanding invocations *****/

func (p *parser) collectExpansions() {
	for i := 0; i+1 < len(p.toks); i++ {
		if p.toks[i].Kind != TokenHash || p.toks[i+1].Kind != TokenIdent || !p.adjacent(i+1) {
			continue
		}
		if compilerDirectives[p.toks[i+1].Text] {
			continue
		}
		p.file.Expansions = append(p.file.Expansions, p.parseExpansion(i))
	}
}

func (p *parser) parseExpansion(i int) *Expansion {
	exp := &Expansion{Name: p.toks[i+1].Text}
	end := i + 2
	if p.is(end, TokenPunct, "(") && !p.toks[end].NewlineBefore {
		exp.Args = p.parseArgs(end)
		end = p.match[end] + 1
	}
	// Trailing closures are only taken from the bare form so that
	// `if #name(x) {` keeps its body.
	if len(exp.Args) == 0 && end == i+2 && p.is(end, TokenPunct, "{") && !p.toks[end].NewlineBefore {
		close := p.match[end]
		exp.Args = append(exp.Args, Argument{Expr: p.makeExpr(end, close+1), Span: p.span(end, close+1)})
		exp.Trailing = true
		end = close + 1
	}
	exp.Span = p.span(i, end)
	return exp
}

// parseArgs splits the bracketed list opened at token open into
// labelled arguments.
func (p *parser) parseArgs(open int) []Argument {
	close := p.match[open]
	var args []Argument
	start := open + 1
	for i := open + 1; i <= close; i++ {
		if i < close && !p.is(i, TokenPunct, ",") {
			if p.match[i] > i {
				i = p.match[i]
			}
			continue
		}
		if i > start {
			args = append(args, p.makeArg(start, i))
		}
		start = i + 1
	}
	return args
}

func (p *parser) makeArg(a, b int) Argument {
	arg := Argument{Span: p.span(a, b)}
	if b-a > 2 && p.toks[a].Kind == TokenIdent && p.is(a+1, TokenPunct, ":") {
		arg.Label = p.toks[a].Text
		a += 2
	}
	arg.Expr = p.makeExpr(a, b)
	return arg
}

// makeExpr classifies tokens [a, b).
func (p *parser) makeExpr(a, b int) *Expr {
	e := &Expr{Text: p.text(a, b), Span: p.span(a, b)}
	first := p.toks[a]
	if first.Kind == TokenIdent {
		e.Leading = strings.Trim(first.Text, "`")
	}

	switch {
	case b-a == 1 && first.Kind == TokenString:
		e.Kind = ExprStringLiteral
		e.Segments, e.Multiline = parseSegments(first.Text)

	case first.Is(TokenPunct, "{"):
		close := p.match[a]
		e.Body = p.src[first.Span.End.Offset:p.toks[close].Span.Start.Offset]
		e.BodyIdents = p.identsIn(a+1, close)
		switch {
		case close == b-1:
			e.Kind = ExprClosure
		case close+3 == b && p.is(close+1, TokenPunct, "(") && p.match[close+1] == close+2:
			e.Kind = ExprCall
			e.Invoked = true
		}

	case first.Kind == TokenHash && b-a > 1 && p.toks[a+1].Kind == TokenIdent:
		e.Kind = ExprMacro
		e.Leading = p.toks[a+1].Text

	case first.Kind == TokenIdent:
		i := a + 1
		for i+1 < b && p.is(i, TokenPunct, ".") && p.toks[i+1].Kind == TokenIdent {
			i += 2
		}
		switch {
		case b-a == 1:
			e.Kind = ExprIdentifier
		case i < b && p.is(i, TokenPunct, "(") && p.match[i] == b-1:
			e.Kind = ExprCall
		}
	}
	return e
}

func (p *parser) identsIn(a, b int) []string {
	var idents []string
	for i := a; i < b; i++ {
		if p.toks[i].Kind == TokenIdent {
			idents = append(idents, strings.Trim(p.toks[i].Text, "`"))
		}
	}
	return idents
}

/***** declarations *****/

// scanRange walks tokens [lo, hi) looking for declaration groups.
func (p *parser) scanRange(lo, hi int) {
	var (
		attrs []*Attribute
		mods  []string
		start = -1
	)
	for i := lo; i < hi; {
		t := p.toks[i]
		switch {
		case p.isAttributeStart(i):
			if start < 0 {
				start = i
			}
			var attr *Attribute
			attr, i = p.parseAttribute(i)
			attrs = append(attrs, attr)
			continue

		case t.Kind == TokenIdent && modifiers[t.Text]:
			if start < 0 {
				start = i
			}
			var mod string
			mod, i = p.parseModifier(i)
			mods = append(mods, mod)
			continue

		case p.isGroupStart(i):
			if start < 0 {
				start = i
			}
			_, i = p.parseGroup(i, start, attrs, mods)

		default:
			i++
		}
		attrs, mods, start = nil, nil, -1
	}
}

func (p *parser) isAttributeStart(i int) bool {
	return p.toks[i].Kind == TokenAt && i+1 < len(p.toks) && p.toks[i+1].Kind == TokenIdent && p.adjacent(i+1)
}

func (p *parser) parseAttribute(i int) (*Attribute, int) {
	j := i + 1
	name := p.toks[j].Text
	j++
	for p.is(j, TokenPunct, ".") && p.adjacent(j) && j+1 < len(p.toks) && p.toks[j+1].Kind == TokenIdent {
		name += "." + p.toks[j+1].Text
		j += 2
	}
	attr := &Attribute{Name: name}
	if p.is(j, TokenPunct, "(") && p.adjacent(j) {
		attr.HasParens = true
		attr.Args = p.parseArgs(j)
		j = p.match[j] + 1
	}
	attr.Span = p.span(i, j)
	return attr, j
}

// parseModifier consumes a modifier such as `private` or `private(set)`.
func (p *parser) parseModifier(i int) (string, int) {
	if p.is(i+1, TokenPunct, "(") && p.adjacent(i+1) && p.match[i+1] == i+3 {
		return p.text(i, i+4), i + 4
	}
	return p.toks[i].Text, i + 1
}

// isGroupStart reports whether token i introduces a declaration group.
func (p *parser) isGroupStart(i int) bool {
	t := p.toks[i]
	if t.Kind != TokenIdent {
		return false
	}
	if _, ok := declKeywords[t.Text]; !ok {
		return false
	}
	if i+1 >= len(p.toks) || p.toks[i+1].Kind != TokenIdent {
		return false
	}
	next := p.toks[i+1].Text
	if modifiers[next] || next == "func" || next == "var" || next == "let" || next == "subscript" || next == "init" || next == "case" {
		return false
	}
	_, ok := p.findBody(i + 2)
	return ok
}

// findBody locates the '{' opening a group body, starting at token i.
func (p *parser) findBody(i int) (int, bool) {
	for ; i < len(p.toks); i++ {
		t := p.toks[i]
		if t.Kind == TokenEOF {
			return 0, false
		}
		if t.Kind != TokenPunct {
			continue
		}
		switch t.Text {
		case "{":
			return i, true
		case "(", "[":
			i = p.match[i]
		case ";", "}", ")", "]":
			return 0, false
		}
	}
	return 0, false
}

func (p *parser) parseGroup(kw, start int, attrs []*Attribute, mods []string) (*DeclGroup, int) {
	open, _ := p.findBody(kw + 2)
	close := p.match[open]

	name := p.toks[kw+1].Text
	for j := kw + 2; j+1 < open && p.is(j, TokenPunct, ".") && p.toks[j+1].Kind == TokenIdent; j += 2 {
		name += "." + p.toks[j+1].Text
	}

	g := &DeclGroup{
		DeclKind:       declKeywords[p.toks[kw].Text],
		Name:           name,
		Attributes:     attrs,
		Modifiers:      mods,
		Span:           p.span(start, close+1),
		Open:           p.toks[open].Span.Start,
		Close:          p.toks[close].Span.Start,
		Indent:         p.lineIndent(p.toks[start].Span.Start.Offset),
		CloseOnOwnLine: p.onlySpaceBefore(p.toks[close].Span.Start.Offset),
	}
	p.file.Decls = append(p.file.Decls, g)

	p.parseMembers(open+1, close, g)

	g.MemberIndent = g.Indent + "    "
	if len(g.MemberList) > 0 {
		firstTok := p.tokenAt(g.MemberList[0].Span.Start.Offset)
		if firstTok >= 0 && p.toks[firstTok].NewlineBefore {
			g.MemberIndent = p.lineIndent(g.MemberList[0].Span.Start.Offset)
		}
	}
	return g, close + 1
}

func (p *parser) parseMembers(lo, hi int, g *DeclGroup) {
	for i := lo; i < hi; {
		if p.is(i, TokenPunct, ";") {
			i++
			continue
		}
		start := i
		var (
			attrs []*Attribute
			mods  []string
		)
		for i < hi {
			if p.isAttributeStart(i) {
				var attr *Attribute
				attr, i = p.parseAttribute(i)
				attrs = append(attrs, attr)
				continue
			}
			t := p.toks[i]
			// `class var` and `class func` use class as a modifier.
			if t.Kind == TokenIdent && (modifiers[t.Text] || (t.Text == "class" && !p.isGroupStart(i))) {
				var mod string
				mod, i = p.parseModifier(i)
				mods = append(mods, mod)
				continue
			}
			break
		}
		if i >= hi {
			break
		}

		var (
			m    *Member
			next int
		)
		t := p.toks[i]
		switch {
		case t.Kind == TokenIdent && (t.Text == "let" || t.Text == "var") && p.toks[i+1].Kind == TokenIdent:
			m, next = p.parseProperty(i, hi)

		case p.isGroupStart(i):
			var nested *DeclGroup
			nested, next = p.parseGroup(i, start, attrs, mods)
			m = &Member{Keyword: t.Text, Name: nested.Name, Group: nested}

		default:
			next = p.statementEnd(i, hi)
			m = &Member{Keyword: t.Text}
			if i+1 < next && p.toks[i+1].Kind == TokenIdent {
				m.Name = strings.Trim(p.toks[i+1].Text, "`")
			}
			p.scanRange(i+1, next)
		}
		m.Attributes = attrs
		m.Modifiers = mods
		m.Span = p.span(start, next)
		g.MemberList = append(g.MemberList, m)
		i = next
	}
}

func (p *parser) parseProperty(kw, hi int) (*Member, int) {
	end := p.statementEnd(kw, hi)
	m := &Member{
		Kind:    MemberProperty,
		Keyword: p.toks[kw].Text,
		Name:    strings.Trim(p.toks[kw+1].Text, "`"),
	}

	i := kw + 2
	if p.is(i, TokenPunct, ":") {
		k := p.scanUntil(i+1, end, "=", "{", ",", ";")
		if k > i+1 {
			m.TypeText = p.text(i+1, k)
			m.Type = ParseType(p.toks[i+1 : k])
		}
		i = k
	}

	switch {
	case p.is(i, TokenPunct, "="):
		k := p.scanUntil(i+1, end, ",", ";")
		if k > i+1 {
			expr := p.makeExpr(i+1, k)
			m.Init = &Initializer{Kind: InitDirect, Expr: expr}
			if expr.Invoked {
				m.Init.Kind = InitDeferred
			}
		}
	case p.is(i, TokenPunct, "{"):
		inner := i + 1
		observers := p.toks[inner].Kind == TokenIdent && (p.toks[inner].Text == "willSet" || p.toks[inner].Text == "didSet")
		m.Computed = !observers
	}
	return m, end
}

// scanUntil returns the index of the first token in [i, hi) that is one
// of the given punctuation marks outside brackets, or hi.
func (p *parser) scanUntil(i, hi int, stops ...string) int {
	for ; i < hi; i++ {
		t := p.toks[i]
		if t.Kind == TokenPunct {
			for _, s := range stops {
				if t.Text == s {
					return i
				}
			}
		}
		if p.match[i] > i {
			i = p.match[i]
		}
	}
	return hi
}

// statementEnd returns the index just past the statement starting at
// token i. Statements end at ';' or at a line break that does not
// continue the previous line.
func (p *parser) statementEnd(i, hi int) int {
	for j := i; j < hi; {
		if j > i && p.toks[j].NewlineBefore && !p.continues(j) {
			return j
		}
		if p.is(j, TokenPunct, ";") {
			return j + 1
		}
		if p.match[j] > j {
			j = p.match[j] + 1
			continue
		}
		j++
	}
	return hi
}

// continues reports whether token j, which starts a line, extends the
// statement of the previous line.
func (p *parser) continues(j int) bool {
	t := p.toks[j]
	if t.Kind == TokenPunct && (t.Text == "{" || t.Text[0] == '.' || isOperator(t.Text)) {
		return true
	}
	if t.Is(TokenIdent, "where") {
		return true
	}
	prev := p.toks[j-1]
	if prev.Kind == TokenPunct && (prev.Text == "," || prev.Text == ":" || isOperator(prev.Text)) {
		// postfix ? and ! end an expression
		return prev.Text != "?" && prev.Text != "!"
	}
	return false
}

func isOperator(s string) bool {
	return s != "" && strings.IndexByte(operatorChars, s[0]) >= 0
}

func (p *parser) tokenAt(offset int) int {
	for i, t := range p.toks {
		if t.Span.Start.Offset == offset {
			return i
		}
	}
	return -1
}

func (p *parser) lineIndent(offset int) string {
	start := strings.LastIndexByte(p.src[:offset], '\n') + 1
	end := start
	for end < len(p.src) && (p.src[end] == ' ' || p.src[end] == '\t') {
		end++
	}
	return p.src[start:end]
}

func (p *parser) onlySpaceBefore(offset int) bool {
	start := strings.LastIndexByte(p.src[:offset], '\n') + 1
	return strings.TrimSpace(p.src[start:offset]) == ""
}
