package syntax

import (
	"fmt"
	"strings"
	"unicode"
	"unicode/utf8"
)

// Error is a syntax error at a source position.
type Error struct {
	Pos Pos
	Msg string
}

func (e *Error) Error() string {
	return fmt.Sprintf("%s: %s", e.Pos, e.Msg)
}

const operatorChars = "/=-+!*%<>&|^~?"

type lexer struct {
	filename string
	src      string

	offset int
	line   int
	col    int

	tokens   []Token
	comments []Comment
}

// Lex performs lexical analysis on the input source
// and returns its tokens and comments. The token slice
// always ends with a TokenEOF.
func Lex(filename, src string) ([]Token, []Comment, error) {
	l := &lexer{filename: filename, src: src, line: 1, col: 1}
	if err := l.run(); err != nil {
		return nil, nil, err
	}
	return l.tokens, l.comments, nil
}

func (l *lexer) pos() Pos {
	return Pos{Filename: l.filename, Offset: l.offset, Line: l.line, Column: l.col}
}

func (l *lexer) errorf(p Pos, format string, args ...any) error {
	return &Error{Pos: p, Msg: fmt.Sprintf(format, args...)}
}

// advance moves the cursor forward n bytes, keeping line and column current.
func (l *lexer) advance(n int) {
	for i := 0; i < n && l.offset < len(l.src); i++ {
		if l.src[l.offset] == '\n' {
			l.line++
			l.col = 1
		} else {
			l.col++
		}
		l.offset++
	}
}

func (l *lexer) peek(n int) byte {
	if l.offset+n < len(l.src) {
		return l.src[l.offset+n]
	}
	return 0
}

func (l *lexer) run() error {
	spaceBefore, newlineBefore := false, false

	emit := func(kind TokenKind, start Pos) {
		l.tokens = append(l.tokens, Token{
			Kind:          kind,
			Text:          l.src[start.Offset:l.offset],
			Span:          Span{Start: start, End: l.pos()},
			SpaceBefore:   spaceBefore,
			NewlineBefore: newlineBefore,
		})
		spaceBefore, newlineBefore = false, false
	}

	for l.offset < len(l.src) {
		c := l.src[l.offset]
		start := l.pos()

		switch {
		case c == '\n':
			newlineBefore, spaceBefore = true, true
			l.advance(1)

		case c == ' ' || c == '\t' || c == '\r' || c == '\f' || c == '\v':
			spaceBefore = true
			l.advance(1)

		case c == '/' && l.peek(1) == '/':
			end := strings.IndexByte(l.src[l.offset:], '\n')
			if end < 0 {
				end = len(l.src) - l.offset
			}
			l.advance(end)
			l.comments = append(l.comments, Comment{Text: l.src[start.Offset:l.offset], Span: Span{start, l.pos()}})
			spaceBefore = true

		case c == '/' && l.peek(1) == '*':
			if err := l.blockComment(start); err != nil {
				return err
			}
			l.comments = append(l.comments, Comment{Text: l.src[start.Offset:l.offset], Span: Span{start, l.pos()}})
			spaceBefore = true

		case c == '"' || (c == '#' && l.rawStringAhead()):
			if err := l.scanString(); err != nil {
				return err
			}
			emit(TokenString, start)

		case c == '#':
			l.advance(1)
			emit(TokenHash, start)

		case c == '@':
			l.advance(1)
			emit(TokenAt, start)

		case c == '`':
			end := strings.IndexByte(l.src[l.offset+1:], '`')
			if end < 0 {
				return l.errorf(start, "unterminated escaped identifier")
			}
			l.advance(end + 2)
			emit(TokenIdent, start)

		case isDigit(c):
			l.scanNumber()
			emit(TokenNumber, start)

		case isIdentStart(l.src[l.offset:]):
			l.scanIdent()
			emit(TokenIdent, start)

		case strings.IndexByte("()[]{},:;", c) >= 0:
			l.advance(1)
			emit(TokenPunct, start)

		case c == '.':
			if l.peek(1) == '.' {
				for l.offset < len(l.src) && (l.src[l.offset] == '.' || l.src[l.offset] == '<') {
					l.advance(1)
				}
			} else {
				l.advance(1)
			}
			emit(TokenPunct, start)

		case strings.IndexByte(operatorChars, c) >= 0:
			l.advance(1)
			for l.offset < len(l.src) && strings.IndexByte(operatorChars, l.src[l.offset]) >= 0 {
				if l.src[l.offset] == '/' && (l.peek(1) == '/' || l.peek(1) == '*') {
					break
				}
				l.advance(1)
			}
			emit(TokenPunct, start)

		default:
			_, size := utf8.DecodeRuneInString(l.src[l.offset:])
			l.advance(size)
			emit(TokenPunct, start)
		}
	}

	l.tokens = append(l.tokens, Token{
		Kind:          TokenEOF,
		Span:          Span{Start: l.pos(), End: l.pos()},
		SpaceBefore:   spaceBefore,
		NewlineBefore: newlineBefore,
	})
	return nil
}

func (l *lexer) blockComment(start Pos) error {
	depth := 0
	for l.offset < len(l.src) {
		switch {
		case l.src[l.offset] == '/' && l.peek(1) == '*':
			depth++
			l.advance(2)
		case l.src[l.offset] == '*' && l.peek(1) == '/':
			depth--
			l.advance(2)
			if depth == 0 {
				return nil
			}
		default:
			l.advance(1)
		}
	}
	return l.errorf(start, "unterminated block comment")
}

// rawStringAhead reports whether the cursor, sitting on '#',
// starts a raw string literal such as #"..."#.
func (l *lexer) rawStringAhead() bool {
	i := l.offset
	for i < len(l.src) && l.src[i] == '#' {
		i++
	}
	return i < len(l.src) && l.src[i] == '"'
}

// scanString consumes a string literal starting at the cursor, including
// raw delimiters, multi-line delimiters and nested interpolations.
func (l *lexer) scanString() error {
	start := l.pos()

	hashes := 0
	for l.src[l.offset] == '#' {
		hashes++
		l.advance(1)
	}
	delim := strings.Repeat("#", hashes)

	multiline := strings.HasPrefix(l.src[l.offset:], `"""`)
	if multiline {
		l.advance(3)
	} else {
		l.advance(1)
	}
	closing := `"` + delim
	if multiline {
		closing = `"""` + delim
	}
	escape := `\` + delim

	for l.offset < len(l.src) {
		rest := l.src[l.offset:]
		switch {
		case strings.HasPrefix(rest, closing):
			l.advance(len(closing))
			return nil

		case strings.HasPrefix(rest, escape):
			l.advance(len(escape))
			if l.offset >= len(l.src) {
				return l.errorf(start, "unterminated string literal")
			}
			if l.src[l.offset] == '(' {
				if err := l.scanInterpolation(); err != nil {
					return err
				}
				continue
			}
			if l.src[l.offset] == '\n' && !multiline {
				return l.errorf(start, "unterminated string literal")
			}
			_, size := utf8.DecodeRuneInString(l.src[l.offset:])
			l.advance(size)

		case rest[0] == '\n' && !multiline:
			return l.errorf(start, "unterminated string literal")

		default:
			l.advance(1)
		}
	}
	return l.errorf(start, "unterminated string literal")
}

// scanInterpolation consumes a balanced \( ... ) segment; the cursor sits on '('.
func (l *lexer) scanInterpolation() error {
	start := l.pos()
	depth := 0
	for l.offset < len(l.src) {
		c := l.src[l.offset]
		switch {
		case c == '(':
			depth++
			l.advance(1)
		case c == ')':
			depth--
			l.advance(1)
			if depth == 0 {
				return nil
			}
		case c == '"' || (c == '#' && l.rawStringAhead()):
			if err := l.scanString(); err != nil {
				return err
			}
		default:
			l.advance(1)
		}
	}
	return l.errorf(start, "unterminated string interpolation")
}

func (l *lexer) scanNumber() {
	for l.offset < len(l.src) {
		c := l.src[l.offset]
		if isDigit(c) || isLetter(c) || c == '_' {
			l.advance(1)
			continue
		}
		if c == '.' && isDigit(l.peek(1)) {
			l.advance(1)
			continue
		}
		if (c == '-' || c == '+') && l.offset > 0 && (l.src[l.offset-1] == 'e' || l.src[l.offset-1] == 'p') && isDigit(l.peek(1)) {
			l.advance(1)
			continue
		}
		break
	}
}

func (l *lexer) scanIdent() {
	for l.offset < len(l.src) {
		r, size := utf8.DecodeRuneInString(l.src[l.offset:])
		if !(r == '_' || r == '$' || unicode.IsLetter(r) || unicode.IsDigit(r)) {
			break
		}
		l.advance(size)
	}
}

func isIdentStart(s string) bool {
	r, _ := utf8.DecodeRuneInString(s)
	return r == '_' || r == '$' || unicode.IsLetter(r)
}

func isDigit(c byte) bool {
	return c >= '0' && c <= '9'
}

func isLetter(c byte) bool {
	return (c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z')
}
