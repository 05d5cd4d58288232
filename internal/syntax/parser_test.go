package syntax

import (
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseExpansions(t *testing.T) {
	t.Parallel()
	src := `let r = #stringify(a + b)
let u = #unwrap(value, message: "missing")
let url = #URL("https://\(host)/x")
let d = #buildDate
#if DEBUG
let l = #log(#unwrap(x))
#endif
`
	file, err := Parse("test.swift", src)
	require.NoError(t, err)

	names := make([]string, 0, len(file.Expansions))
	for _, exp := range file.Expansions {
		names = append(names, exp.Name)
	}
	assert.Equal(t, []string{"stringify", "unwrap", "URL", "buildDate", "log", "unwrap"}, names)

	stringify := file.Expansions[0]
	require.Len(t, stringify.Args, 1)
	assert.Equal(t, "a + b", stringify.Args[0].Expr.Text)
	assert.Equal(t, "#stringify(a + b)", src[stringify.Span.Start.Offset:stringify.Span.End.Offset])

	unwrap := file.Expansions[1]
	require.Len(t, unwrap.Args, 2)
	assert.Equal(t, "", unwrap.Args[0].Label)
	assert.Equal(t, ExprIdentifier, unwrap.Args[0].Expr.Kind)
	assert.Equal(t, "message", unwrap.Args[1].Label)
	assert.Equal(t, `"missing"`, unwrap.Args[1].Expr.Text)

	url := file.Expansions[2]
	want := []Segment{
		{Text: "https://"},
		{Interpolated: true, Text: "host"},
		{Text: "/x"},
	}
	if diff := cmp.Diff(want, url.Args[0].Expr.Segments); diff != "" {
		t.Errorf("segments mismatch (-want +got):\n%s", diff)
	}
	assert.False(t, url.Args[0].Expr.IsStaticString())

	assert.Empty(t, file.Expansions[3].Args)

	outer, inner := file.Expansions[4], file.Expansions[5]
	assert.Equal(t, ExprMacro, outer.Args[0].Expr.Kind)
	assert.True(t, outer.Span.Contains(inner.Span))
	assert.Equal(t, 6, outer.Span.Start.Line)
	assert.Equal(t, 9, outer.Span.Start.Column)
}

func TestParseStaticString(t *testing.T) {
	t.Parallel()
	tests := []struct {
		name   string
		lit    string
		value  string
		static bool
	}{
		{name: "plain", lit: `"https://apple.com"`, value: "https://apple.com", static: true},
		{name: "escaped quote", lit: `"a\"b"`, value: `a\"b`, static: true},
		{name: "interpolated", lit: `"a\(b)"`, static: false},
		{name: "raw", lit: `#"a\(b)"#`, value: `a\(b)`, static: true},
		{name: "raw interpolated", lit: `#"a\#(b)"#`, static: false},
		{name: "empty", lit: `""`, value: "", static: true},
		{name: "multiline", lit: "\"\"\"\n    line one\n    line two\n    \"\"\"", value: "line one\nline two", static: true},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			file, err := Parse("test.swift", "#URL("+tt.lit+")")
			require.NoError(t, err)
			require.Len(t, file.Expansions, 1)

			expr := file.Expansions[0].Args[0].Expr
			assert.Equal(t, ExprStringLiteral, expr.Kind)
			value, ok := expr.StringValue()
			assert.Equal(t, tt.static, ok)
			if tt.static {
				assert.Equal(t, tt.value, value)
			}
		})
	}
}

func TestParseDeclGroup(t *testing.T) {
	t.Parallel()
	src := `@AddSubviews
class MyViewController {
    let titleLabel = UILabel()
    let button = UIButton()

    @AddTo("titleLabel")
    private(set) var icon: UIImageView?
}
`
	file, err := Parse("test.swift", src)
	require.NoError(t, err)
	require.Len(t, file.Decls, 1)

	g := file.Decls[0]
	assert.Equal(t, DeclClass, g.Kind())
	assert.Equal(t, "MyViewController", g.Name)
	require.Len(t, g.Attributes, 1)
	assert.Equal(t, "AddSubviews", g.Attributes[0].Name)
	assert.False(t, g.Attributes[0].HasParens)
	assert.Equal(t, "", g.Indent)
	assert.Equal(t, "    ", g.MemberIndent)
	assert.True(t, g.CloseOnOwnLine)
	assert.Equal(t, 1, g.Location().Line)

	members := g.Members()
	require.Len(t, members, 3)

	assert.Equal(t, "titleLabel", members[0].Name)
	assert.Equal(t, MemberProperty, members[0].Kind)
	assert.Equal(t, InitDirect, members[0].Init.Kind)
	assert.Equal(t, "UILabel()", members[0].InitializerText())
	assert.Equal(t, "UILabel", members[0].Init.Expr.Leading)
	assert.Equal(t, ExprCall, members[0].Init.Expr.Kind)

	assert.Equal(t, "button", members[1].Name)

	icon := members[2]
	assert.Equal(t, "icon", icon.Name)
	assert.Equal(t, []string{"private(set)"}, icon.Modifiers)
	assert.Equal(t, "UIImageView?", icon.TypeAnnotationText())
	assert.Equal(t, &TypeDescriptor{Name: "UIImageView", Optional: true}, icon.Type)
	assert.Nil(t, icon.Init)
	args, ok := icon.AttributeArguments("AddTo")
	require.True(t, ok)
	require.Len(t, args, 1)
	value, ok := args[0].Expr.StringValue()
	assert.True(t, ok)
	assert.Equal(t, "titleLabel", value)
}

func TestParseMemberKinds(t *testing.T) {
	t.Parallel()
	src := `class A {
    lazy var descriptionLabel: UILabel = {
        let label = UILabel()
        label.numberOfLines = 0
        return label
    }()
    var count: Int { 42 }
    var name: String = "" {
        didSet { print(name) }
    }
    static let shared = UIView()
    func setup() {
        struct Inner { let v = UIView() }
    }
    enum Mode { case on, off }
}
`
	file, err := Parse("test.swift", src)
	require.NoError(t, err)
	require.Len(t, file.Decls, 3)
	assert.Equal(t, "A", file.Decls[0].Name)
	assert.Equal(t, "Inner", file.Decls[1].Name)
	assert.Equal(t, "Mode", file.Decls[2].Name)
	assert.Equal(t, DeclEnum, file.Decls[2].Kind())

	members := file.Decls[0].Members()
	require.Len(t, members, 6)

	lazy := members[0]
	assert.Equal(t, "descriptionLabel", lazy.Name)
	assert.True(t, lazy.HasModifier("lazy"))
	assert.Equal(t, "UILabel", lazy.Type.Name)
	require.NotNil(t, lazy.Init)
	assert.Equal(t, InitDeferred, lazy.Init.Kind)
	assert.Contains(t, lazy.Init.Expr.BodyIdents, "UILabel")
	assert.Contains(t, lazy.Init.Expr.Body, "label.numberOfLines = 0")

	assert.Equal(t, "count", members[1].Name)
	assert.True(t, members[1].Computed)

	assert.Equal(t, "name", members[2].Name)
	assert.False(t, members[2].Computed)

	assert.Equal(t, "shared", members[3].Name)
	assert.True(t, members[3].HasModifier("static"))

	assert.Equal(t, MemberOther, members[4].Kind)
	assert.Equal(t, "func", members[4].Keyword)
	assert.Equal(t, "setup", members[4].Name)

	assert.Equal(t, "enum", members[5].Keyword)
	assert.Same(t, file.Decls[2], members[5].Group)

	inner := file.Decls[1]
	assert.Equal(t, "        ", inner.Indent)
	assert.Equal(t, "            ", inner.MemberIndent)
	assert.False(t, inner.CloseOnOwnLine)
}

func TestParseErrors(t *testing.T) {
	t.Parallel()
	tests := []struct {
		name  string
		input string
		msg   string
		line  int
	}{
		{name: "unclosed brace", input: "class A {\n  let a = 1\n", msg: `unclosed "{"`, line: 1},
		{name: "unexpected paren", input: "let a = b)\n", msg: `unexpected ")"`, line: 1},
		{name: "mismatched", input: "let a = [b)\n", msg: `unexpected ")"`, line: 1},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			_, err := Parse("test.swift", tt.input)
			require.Error(t, err)
			synErr, ok := err.(*Error)
			require.True(t, ok)
			assert.Equal(t, tt.msg, synErr.Msg)
			assert.Equal(t, tt.line, synErr.Pos.Line)
		})
	}
}

func TestParseType(t *testing.T) {
	t.Parallel()
	tests := []struct {
		input    string
		expected TypeDescriptor
	}{
		{input: "UILabel", expected: TypeDescriptor{Name: "UILabel"}},
		{input: "UIKit.UILabel?", expected: TypeDescriptor{Qualifier: "UIKit", Name: "UILabel", Optional: true}},
		{input: "UIButton!", expected: TypeDescriptor{Name: "UIButton", Implicit: true}},
		{input: "[UIView]", expected: TypeDescriptor{}},
		{input: "some View", expected: TypeDescriptor{Name: "View"}},
		{input: "Array<UIView>", expected: TypeDescriptor{Name: "Array", Args: "UIView"}},
		{input: "Optional<UILabel>?", expected: TypeDescriptor{Name: "Optional", Args: "UILabel", Optional: true}},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.input, func(t *testing.T) {
			t.Parallel()
			tokens, _, err := Lex("", tt.input)
			require.NoError(t, err)
			got := ParseType(tokens[:len(tokens)-1])
			assert.Equal(t, tt.expected, *got)
		})
	}
}
