package directive

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gnolang/macrokit/internal/syntax"
)

func TestParseNames(t *testing.T) {
	t.Parallel()
	names := parseNames("log, #unwrap,@AddTo")
	assert.Len(t, names, 3)
	for _, name := range []string{"log", "unwrap", "AddTo"} {
		assert.Contains(t, names, name)
	}
	assert.Empty(t, parseNames(""))
}

func TestIsIgnored(t *testing.T) {
	t.Parallel()
	src := `let a = #log(x) // macrokit:ignore
// macrokit:ignore unwrap
let b = try #unwrap(#log(y))
let c = #stringify(z)
//macrokit:ignore:stringify,log
let d = #stringify(w)
// macrokit:ignored
let e = #log(v)
// regular comment
let f = #log(u)
`
	file, err := syntax.Parse("test.swift", src)
	require.NoError(t, err)
	m := ParseComments(file)

	tests := []struct {
		line    int
		name    string
		ignored bool
	}{
		{line: 1, name: "log", ignored: true},
		{line: 3, name: "unwrap", ignored: true},
		{line: 3, name: "log", ignored: false},
		{line: 4, name: "stringify", ignored: false},
		{line: 6, name: "stringify", ignored: true},
		{line: 6, name: "log", ignored: true},
		{line: 6, name: "unwrap", ignored: false},
		{line: 8, name: "log", ignored: false},
		{line: 10, name: "log", ignored: false},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.ignored, m.IsIgnored(tt.line, tt.name), "line %d %s", tt.line, tt.name)
	}
}

func TestIgnoreFile(t *testing.T) {
	t.Parallel()
	src := "// macrokit:ignore-file log\nlet a = #log(x)\n\n\nlet b = #log(y)\nlet c = #stringify(z)\n"
	file, err := syntax.Parse("test.swift", src)
	require.NoError(t, err)
	m := ParseComments(file)

	assert.True(t, m.IsIgnored(2, "log"))
	assert.True(t, m.IsIgnored(5, "log"))
	assert.False(t, m.IsIgnored(6, "stringify"))

	var nilManager *Manager
	assert.False(t, nilManager.IsIgnored(1, "log"))
}
