package syntax

import "strings"

// ExprKind classifies the shape of an expression.
type ExprKind int

const (
	ExprOther ExprKind = iota
	ExprIdentifier
	ExprStringLiteral
	ExprClosure
	ExprCall
	ExprMacro
)

func (k ExprKind) String() string {
	switch k {
	case ExprIdentifier:
		return "Identifier"
	case ExprStringLiteral:
		return "StringLiteral"
	case ExprClosure:
		return "Closure"
	case ExprCall:
		return "Call"
	case ExprMacro:
		return "Macro"
	default:
		return "Other"
	}
}

// Segment is one piece of a string literal: either literal text or an
// interpolated expression. Text holds the raw source of the piece, with
// escapes left as written.
type Segment struct {
	Interpolated bool
	Text         string
}

// Expr is an expression subtree. The parser keeps only the shape the
// expanders inspect; everything else stays in Text verbatim.
type Expr struct {
	Kind ExprKind
	Text string
	Span Span

	// Leading is the first identifier of the expression, if any.
	Leading string
	// Segments is set for string literals.
	Segments []Segment
	// Multiline is set for """ string literals.
	Multiline bool
	// Body is the source between the braces of a closure, or of the
	// closure callee of an immediately invoked closure.
	Body string
	// BodyIdents lists the identifiers that appear in Body, in order.
	BodyIdents []string
	// Invoked is set when a closure is called with no arguments: { ... }().
	Invoked bool
}

// IsStaticString reports whether e is a string literal without interpolation.
func (e *Expr) IsStaticString() bool {
	if e == nil || e.Kind != ExprStringLiteral {
		return false
	}
	for _, seg := range e.Segments {
		if seg.Interpolated {
			return false
		}
	}
	return true
}

// StringValue returns the raw content of a static string literal.
func (e *Expr) StringValue() (string, bool) {
	if !e.IsStaticString() {
		return "", false
	}
	var sb strings.Builder
	for _, seg := range e.Segments {
		sb.WriteString(seg.Text)
	}
	return sb.String(), true
}

// Argument is one element of a macro or attribute argument list.
type Argument struct {
	Label string
	Expr  *Expr
	Span  Span
}

// Expansion is a freestanding macro invocation: #name(args).
type Expansion struct {
	Name string
	Args []Argument
	Span Span
	// Trailing is set when the last argument is a trailing closure.
	Trailing bool
}

// Attribute is an attribute written as @Name or @Name(args).
type Attribute struct {
	Name      string
	Args      []Argument
	HasParens bool
	Span      Span
}

// DeclKind is the kind of a declaration group.
type DeclKind int

const (
	DeclClass DeclKind = iota
	DeclStruct
	DeclEnum
	DeclActor
	DeclExtension
	DeclProtocol
)

var declKeywords = map[string]DeclKind{
	"class":     DeclClass,
	"struct":    DeclStruct,
	"enum":      DeclEnum,
	"actor":     DeclActor,
	"extension": DeclExtension,
	"protocol":  DeclProtocol,
}

func (k DeclKind) String() string {
	switch k {
	case DeclClass:
		return "class"
	case DeclStruct:
		return "struct"
	case DeclEnum:
		return "enum"
	case DeclActor:
		return "actor"
	case DeclExtension:
		return "extension"
	case DeclProtocol:
		return "protocol"
	default:
		return "unknown"
	}
}

// DeclGroup is a class, struct, enum, actor, extension or protocol
// declaration together with its member block.
type DeclGroup struct {
	DeclKind   DeclKind
	Name       string
	Attributes []*Attribute
	Modifiers  []string
	MemberList []*Member
	Span       Span

	// Open and Close are the braces of the member block.
	Open  Pos
	Close Pos
	// Indent is the indentation of the line holding the declaration
	// keyword; MemberIndent is the indentation of its members.
	Indent       string
	MemberIndent string
	// CloseOnOwnLine is set when only whitespace precedes the closing
	// brace on its line.
	CloseOnOwnLine bool
}

// MemberKind distinguishes stored or computed properties from every
// other kind of member.
type MemberKind int

const (
	MemberOther MemberKind = iota
	MemberProperty
)

// InitKind tags how a property gets its initial value.
type InitKind int

const (
	// InitDirect is a plain initializer expression.
	InitDirect InitKind = iota
	// InitDeferred is a zero-argument closure invoked in place: { ... }().
	InitDeferred
)

// Initializer is the right-hand side of a property declaration.
type Initializer struct {
	Kind InitKind
	Expr *Expr
}

// Member is one declaration inside a member block.
type Member struct {
	Kind       MemberKind
	Attributes []*Attribute
	Modifiers  []string
	// Keyword is the introducer: let, var, func, init, case, ...
	Keyword string
	Name    string
	// TypeText is the verbatim type annotation; Type is its parsed form.
	TypeText string
	Type     *TypeDescriptor
	Init     *Initializer
	// Computed is set for properties with a getter block.
	Computed bool
	// Group is set for nested declaration groups.
	Group *DeclGroup
	Span  Span
}

// HasModifier reports whether m carries the given modifier.
func (m *Member) HasModifier(name string) bool {
	for _, mod := range m.Modifiers {
		if mod == name {
			return true
		}
	}
	return false
}

// Attribute returns the first attribute with the given name.
func (m *Member) Attribute(name string) (*Attribute, bool) {
	for _, attr := range m.Attributes {
		if attr.Name == name {
			return attr, true
		}
	}
	return nil, false
}

// AttributeArguments returns the arguments of the named attribute.
func (m *Member) AttributeArguments(name string) ([]Argument, bool) {
	attr, ok := m.Attribute(name)
	if !ok {
		return nil, false
	}
	return attr.Args, true
}

// InitializerText returns the initializer source, or "" if there is none.
func (m *Member) InitializerText() string {
	if m.Init == nil || m.Init.Expr == nil {
		return ""
	}
	return m.Init.Expr.Text
}

// TypeAnnotationText returns the type annotation source, or "".
func (m *Member) TypeAnnotationText() string {
	return m.TypeText
}

// File is a parsed source file.
type File struct {
	Filename   string
	Source     string
	Expansions []*Expansion
	// Decls holds every declaration group, nested ones included,
	// in source order.
	Decls    []*DeclGroup
	Comments []Comment
}
