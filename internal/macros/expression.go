package macros

import (
	"fmt"
	"strings"

	"github.com/gnolang/macrokit/internal/rewrite"
	"github.com/gnolang/macrokit/internal/syntax"
)

// Stringify expands #stringify(E) into the tuple (E, "E").
type Stringify struct{}

func (Stringify) ExpandExpression(inv *syntax.Expansion, ctx *Context) (string, error) {
	arg, ok := firstArg(inv)
	if !ok {
		return "", errorf("#stringify requires an argument")
	}
	return fmt.Sprintf(`(%s, "%s")`, ctx.Source(arg), escape(arg.Text)), nil
}

// AddSubview expands #addSubview(V) into self.addSubview(V).
type AddSubview struct{}

func (AddSubview) ExpandExpression(inv *syntax.Expansion, ctx *Context) (string, error) {
	arg, ok := firstArg(inv)
	if !ok {
		return "", errorf("addSubview macro needs a view instance!")
	}
	return fmt.Sprintf("self.addSubview(%s)", ctx.Source(arg)), nil
}

// URL validates a static string literal and expands it into a
// force-unwrapped URL initializer.
type URL struct{}

func (URL) ExpandExpression(inv *syntax.Expansion, _ *Context) (string, error) {
	arg, ok := firstArg(inv)
	if !ok || arg.Multiline {
		return "", errorf("#URL requires a static string literal")
	}
	value, ok := arg.StringValue()
	if !ok {
		return "", errorf("#URL requires a static string literal")
	}
	if err := ValidateURL(value); err != nil {
		return "", errorf("Invalid URL: \"%s\"", value)
	}
	return fmt.Sprintf("URL(string: %s)!", arg.Text), nil
}

// Unwrap expands #unwrap(E) and #unwrap(E, M) into an immediately
// invoked closure that throws UnwrapError.nilValue when E is nil.
type Unwrap struct{}

func (Unwrap) ExpandExpression(inv *syntax.Expansion, ctx *Context) (string, error) {
	arg, ok := firstArg(inv)
	if !ok {
		return "", errorf("#unwrap requires at least one argument")
	}

	message := fmt.Sprintf(`"Failed to unwrap: %s"`, escape(arg.Text))
	if len(inv.Args) >= 2 && inv.Args[1].Expr != nil {
		message = ctx.Source(inv.Args[1].Expr)
	}

	var sb strings.Builder
	sb.WriteString("{\n")
	fmt.Fprintf(&sb, "    guard let unwrapped = %s else {\n", rewrite.ApplyIndent(ctx.Source(arg), "    "))
	fmt.Fprintf(&sb, "        throw UnwrapError.nilValue(%s)\n", rewrite.ApplyIndent(message, "        "))
	sb.WriteString("    }\n")
	sb.WriteString("    return unwrapped\n")
	sb.WriteString("}()")
	return sb.String(), nil
}

// Log expands #log(E) into a closure that prints the source location,
// the source text of E and its value, then yields the value.
type Log struct{}

func (Log) ExpandExpression(inv *syntax.Expansion, ctx *Context) (string, error) {
	arg, ok := firstArg(inv)
	if !ok {
		return "", errorf("#log requires an argument")
	}
	file, line, column := ctx.Location(inv.Span.Start)

	var sb strings.Builder
	sb.WriteString("{\n")
	fmt.Fprintf(&sb, "    let _value = %s\n", rewrite.ApplyIndent(ctx.Source(arg), "    "))
	fmt.Fprintf(&sb, "    print(\"[%s:%d:%d] %s = \\(_value)\")\n", escape(file), line, column, escape(arg.Text))
	sb.WriteString("    return _value\n")
	sb.WriteString("}()")
	return sb.String(), nil
}

// BuildDateLayout renders the expansion clock as yyyy-MM-dd HH:mm:ss.
const BuildDateLayout = "2006-01-02 15:04:05"

// BuildDate expands #buildDate into a string literal holding the
// expansion time in local time.
type BuildDate struct{}

func (BuildDate) ExpandExpression(_ *syntax.Expansion, ctx *Context) (string, error) {
	return fmt.Sprintf("%q", ctx.Now.Local().Format(BuildDateLayout)), nil
}
