package macros

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gnolang/macrokit/internal/syntax"
)

func parseInvocation(t *testing.T, src string) *syntax.Expansion {
	t.Helper()
	file, err := syntax.Parse("/tmp/project/Sources/test.swift", src)
	require.NoError(t, err)
	require.NotEmpty(t, file.Expansions)
	return file.Expansions[0]
}

func testContext() *Context {
	return NewContext("/tmp/project/Sources/test.swift", time.Date(2025, 12, 7, 9, 5, 3, 0, time.Local))
}

func TestExpressionMacros(t *testing.T) {
	t.Parallel()
	tests := []struct {
		name     string
		macro    ExpressionMacro
		input    string
		expected string
	}{
		{
			name:     "stringify keeps source text verbatim",
			macro:    Stringify{},
			input:    "let r = #stringify(a + b)",
			expected: `(a + b, "a + b")`,
		},
		{
			name:     "stringify keeps exact whitespace",
			macro:    Stringify{},
			input:    "let r = #stringify(a  +b)",
			expected: `(a  +b, "a  +b")`,
		},
		{
			name:     "stringify escapes string literals",
			macro:    Stringify{},
			input:    `let r = #stringify("hi\n")`,
			expected: `("hi\n", "\"hi\\n\"")`,
		},
		{
			name:     "addSubview",
			macro:    AddSubview{},
			input:    "#addSubview(titleLabel)",
			expected: "self.addSubview(titleLabel)",
		},
		{
			name:     "url",
			macro:    URL{},
			input:    `let u = #URL("https://apple.com")`,
			expected: `URL(string: "https://apple.com")!`,
		},
		{
			name:     "url with query and escapes",
			macro:    URL{},
			input:    `let u = #URL("https://example.com/a%20b?q=1&r=2#top")`,
			expected: `URL(string: "https://example.com/a%20b?q=1&r=2#top")!`,
		},
		{
			name:     "raw string url",
			macro:    URL{},
			input:    `let u = #URL(#"https://apple.com"#)`,
			expected: `URL(string: #"https://apple.com"#)!`,
		},
		{
			name:  "unwrap with default message",
			macro: Unwrap{},
			input: "let v = try #unwrap(x)",
			expected: `{
    guard let unwrapped = x else {
        throw UnwrapError.nilValue("Failed to unwrap: x")
    }
    return unwrapped
}()`,
		},
		{
			name:  "unwrap with custom message",
			macro: Unwrap{},
			input: `let v = try #unwrap(x, "custom")`,
			expected: `{
    guard let unwrapped = x else {
        throw UnwrapError.nilValue("custom")
    }
    return unwrapped
}()`,
		},
		{
			name:  "unwrap escapes captured source",
			macro: Unwrap{},
			input: `let v = try #unwrap(dict["key"])`,
			expected: `{
    guard let unwrapped = dict["key"] else {
        throw UnwrapError.nilValue("Failed to unwrap: dict[\"key\"]")
    }
    return unwrapped
}()`,
		},
		{
			name:  "log",
			macro: Log{},
			input: "let v = #log(count + 1)",
			expected: `{
    let _value = count + 1
    print("[test.swift:1:9] count + 1 = \(_value)")
    return _value
}()`,
		},
		{
			name:     "buildDate",
			macro:    BuildDate{},
			input:    "let d = #buildDate",
			expected: `"2025-12-07 09:05:03"`,
		},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			inv := parseInvocation(t, tt.input)

			got, err := tt.macro.ExpandExpression(inv, testContext())
			require.NoError(t, err)
			assert.Equal(t, tt.expected, got)

			again, err := tt.macro.ExpandExpression(inv, testContext())
			require.NoError(t, err)
			assert.Equal(t, got, again, "expansion must be deterministic")
		})
	}
}

func TestExpressionMacroErrors(t *testing.T) {
	t.Parallel()
	tests := []struct {
		name    string
		macro   ExpressionMacro
		input   string
		message string
	}{
		{name: "stringify without argument", macro: Stringify{}, input: "#stringify()", message: "#stringify requires an argument"},
		{name: "addSubview without argument", macro: AddSubview{}, input: "#addSubview()", message: "addSubview macro needs a view instance!"},
		{name: "url without argument", macro: URL{}, input: "#URL()", message: "#URL requires a static string literal"},
		{name: "url from variable", macro: URL{}, input: "#URL(address)", message: "#URL requires a static string literal"},
		{name: "url interpolated", macro: URL{}, input: `#URL("https://\(host)/x")`, message: "#URL requires a static string literal"},
		{name: "url multiline", macro: URL{}, input: "#URL(\"\"\"\n    https://apple.com\n    \"\"\")", message: "#URL requires a static string literal"},
		{name: "url with spaces", macro: URL{}, input: `#URL("not a url")`, message: `Invalid URL: "not a url"`},
		{name: "url empty", macro: URL{}, input: `#URL("")`, message: `Invalid URL: ""`},
		{name: "url bad escape", macro: URL{}, input: `#URL("https://a.com/100%")`, message: `Invalid URL: "https://a.com/100%"`},
		{name: "url missing scheme", macro: URL{}, input: `#URL("://apple.com")`, message: `Invalid URL: "://apple.com"`},
		{name: "unwrap without argument", macro: Unwrap{}, input: "#unwrap()", message: "#unwrap requires at least one argument"},
		{name: "log without argument", macro: Log{}, input: "#log()", message: "#log requires an argument"},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			inv := parseInvocation(t, tt.input)

			got, err := tt.macro.ExpandExpression(inv, testContext())
			require.Error(t, err)
			assert.Empty(t, got)

			var macroErr *Error
			require.True(t, errors.As(err, &macroErr))
			assert.Equal(t, tt.message, macroErr.Error())
		})
	}
}

func TestLogLocation(t *testing.T) {
	t.Parallel()
	inv := parseInvocation(t, "func f() {\n    #log(x)\n}")

	ctx := testContext()
	ctx.FullPath = true
	got, err := Log{}.ExpandExpression(inv, ctx)
	require.NoError(t, err)
	assert.Contains(t, got, `print("[/tmp/project/Sources/test.swift:2:5] x = \(_value)")`)
}

func TestNestedSource(t *testing.T) {
	t.Parallel()
	inv := parseInvocation(t, "let v = #log(#addSubview(a))")

	ctx := testContext().WithSource(func(e *syntax.Expr) string {
		if e.Kind == syntax.ExprMacro {
			return "self.addSubview(a)"
		}
		return e.Text
	})
	got, err := Log{}.ExpandExpression(inv, ctx)
	require.NoError(t, err)
	assert.Equal(t, `{
    let _value = self.addSubview(a)
    print("[test.swift:1:9] #addSubview(a) = \(_value)")
    return _value
}()`, got)
}

func TestValidateURL(t *testing.T) {
	t.Parallel()
	tests := []struct {
		input string
		valid bool
	}{
		{input: "https://apple.com", valid: true},
		{input: "mailto:someone@example.com", valid: true},
		{input: "relative/path?x=1", valid: true},
		{input: "http://[::1]:8080/", valid: true},
		{input: "", valid: false},
		{input: "not a url", valid: false},
		{input: "https://apple.com/\t", valid: false},
		{input: "https://apple.com/%zz", valid: false},
		{input: "https://ä.com", valid: false},
		{input: "http://[::1", valid: false},
		{input: "http://host:port/", valid: false},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.input, func(t *testing.T) {
			t.Parallel()
			err := ValidateURL(tt.input)
			if tt.valid {
				assert.NoError(t, err)
			} else {
				assert.Error(t, err)
			}
		})
	}
}
