package macros

import (
	"path/filepath"
	"strings"
	"time"

	"github.com/gnolang/macrokit/internal/syntax"
)

// Context carries what an expander may observe besides the invocation
// itself: the file being expanded, the clock and the expanded text of
// nested invocations.
type Context struct {
	Filename string
	Now      time.Time
	// FullPath makes Location report the file path as given instead of
	// its base name.
	FullPath bool

	source func(*syntax.Expr) string
}

func NewContext(filename string, now time.Time) *Context {
	return &Context{Filename: filename, Now: now}
}

// WithSource installs the function that resolves an argument to its
// text after nested invocations inside it have been expanded.
func (c *Context) WithSource(fn func(*syntax.Expr) string) *Context {
	c.source = fn
	return c
}

// Source returns the code to emit for e. It differs from e.Text only
// when e contains expanded invocations.
func (c *Context) Source(e *syntax.Expr) string {
	if c.source != nil {
		return c.source(e)
	}
	return e.Text
}

// Location renders pos as file:line:column.
func (c *Context) Location(pos syntax.Pos) (file string, line, column int) {
	file = pos.Filename
	if file == "" {
		file = c.Filename
	}
	if !c.FullPath {
		file = filepath.Base(file)
	}
	return file, pos.Line, pos.Column
}

var swiftEscaper = strings.NewReplacer(
	`\`, `\\`,
	`"`, `\"`,
	"\n", `\n`,
	"\r", `\r`,
	"\t", `\t`,
	"\x00", `\0`,
)

// escape makes s safe to place between the quotes of a Swift string
// literal.
func escape(s string) string {
	return swiftEscaper.Replace(s)
}

func firstArg(inv *syntax.Expansion) (*syntax.Expr, bool) {
	if len(inv.Args) == 0 || inv.Args[0].Expr == nil {
		return nil, false
	}
	return inv.Args[0].Expr, true
}
