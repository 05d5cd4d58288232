package syntax

import "fmt"

// TokenKind defines the type of a token
type TokenKind int

const (
	TokenEOF TokenKind = iota
	TokenIdent
	TokenNumber
	TokenString
	TokenPunct
	TokenHash // '#'
	TokenAt   // '@'
)

func (k TokenKind) String() string {
	switch k {
	case TokenEOF:
		return "EOF"
	case TokenIdent:
		return "Ident"
	case TokenNumber:
		return "Number"
	case TokenString:
		return "String"
	case TokenPunct:
		return "Punct"
	case TokenHash:
		return "Hash"
	case TokenAt:
		return "At"
	default:
		return "Unknown"
	}
}

// Pos is a location in a source file. Line and Column are 1-based;
// Column counts bytes.
type Pos struct {
	Filename string
	Offset   int
	Line     int
	Column   int
}

func (p Pos) String() string {
	if p.Filename == "" {
		return fmt.Sprintf("%d:%d", p.Line, p.Column)
	}
	return fmt.Sprintf("%s:%d:%d", p.Filename, p.Line, p.Column)
}

// Span is a half-open source range.
type Span struct {
	Start Pos
	End   Pos
}

// Contains reports whether o lies within s.
func (s Span) Contains(o Span) bool {
	return s.Start.Offset <= o.Start.Offset && o.End.Offset <= s.End.Offset
}

// Token is a lexical token of Swift-surface source.
type Token struct {
	Kind TokenKind
	Text string
	Span Span

	// NewlineBefore is set when a line break separates this token
	// from the previous one.
	NewlineBefore bool
	// SpaceBefore is set when any trivia separates this token from
	// the previous one.
	SpaceBefore bool
}

func (t Token) Is(kind TokenKind, text string) bool {
	return t.Kind == kind && t.Text == text
}

// Comment is a line or block comment with its position.
type Comment struct {
	Text string
	Span Span
}
