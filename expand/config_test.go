package expand

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	tt "github.com/gnolang/macrokit/internal/types"
)

func TestParseConfig(t *testing.T) {
	t.Parallel()
	input := `name: app
macros:
  log:
    severity: off
  URL:
    severity: warning
hierarchy:
  root: contentView
  override: false
  view_types: [ChartView]
log:
  full_path: true
extensions: [swift, .swiftinterface]
ignore_paths:
  - "**/Generated/**"
`
	config, err := ParseConfig(strings.NewReader(input))
	require.NoError(t, err)

	assert.Equal(t, "app", config.Name)
	assert.Equal(t, tt.SeverityOff, config.Macros["log"].Severity)
	assert.Equal(t, tt.SeverityWarning, config.Macros["URL"].Severity)
	assert.Equal(t, "contentView", config.Hierarchy.Root)
	assert.Equal(t, "addSubview", config.Hierarchy.AddMethod)
	assert.Equal(t, "setHierarchy", config.Hierarchy.MethodName)
	require.NotNil(t, config.Hierarchy.Override)
	assert.False(t, *config.Hierarchy.Override)
	assert.Equal(t, []string{"ChartView"}, config.Hierarchy.ViewTypes)
	assert.True(t, config.Log.FullPath)
	assert.Equal(t, []string{".swift", ".swiftinterface"}, config.Extensions)
	assert.Equal(t, []string{"**/Generated/**"}, config.IgnorePaths)

	opts := config.EngineOptions()
	assert.True(t, opts.FullPath)
	assert.Equal(t, config.Macros, opts.Macros)
}

func TestParseConfigErrors(t *testing.T) {
	t.Parallel()
	tests := []struct {
		name  string
		input string
	}{
		{name: "unknown macro", input: "macros:\n  selector:\n    severity: off\n"},
		{name: "unknown severity", input: "macros:\n  log:\n    severity: loud\n"},
		{name: "unknown key", input: "max_depth: 3\n"},
		{name: "bad pattern", input: "ignore_paths: [\"Sources/[a\"]\n"},
		{name: "empty extension", input: "extensions: [\"\"]\n"},
		{name: "malformed yaml", input: "name: [\n"},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			_, err := ParseConfig(strings.NewReader(tt.input))
			assert.Error(t, err)
		})
	}
}

func TestLoadConfig(t *testing.T) {
	t.Parallel()
	tempDir := t.TempDir()

	config, err := LoadConfig(filepath.Join(tempDir, "missing.yaml"))
	require.NoError(t, err)
	assert.Equal(t, DefaultConfig(), config)

	empty := filepath.Join(tempDir, "empty.yaml")
	require.NoError(t, os.WriteFile(empty, nil, 0o644))
	config, err = LoadConfig(empty)
	require.NoError(t, err)
	assert.Equal(t, DefaultConfig(), config)
}

func TestWriteConfigRoundTrip(t *testing.T) {
	t.Parallel()
	path := filepath.Join(t.TempDir(), DefaultConfigFile)

	config := DefaultConfig()
	config.Macros["buildDate"] = tt.ConfigMacro{Severity: tt.SeverityOff}
	config.IgnorePaths = []string{".build/**"}
	require.NoError(t, WriteConfig(path, config))

	content, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(content), "buildDate:")
	assert.Contains(t, string(content), "method_name: setHierarchy")

	loaded, err := LoadConfig(path)
	require.NoError(t, err)
	assert.Equal(t, config, loaded)
}
