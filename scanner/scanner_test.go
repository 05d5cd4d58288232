package scanner

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeTree(t *testing.T, files map[string]string) string {
	t.Helper()
	tempDir := t.TempDir()
	for path, content := range files {
		fullPath := filepath.Join(tempDir, path)
		require.NoError(t, os.MkdirAll(filepath.Dir(fullPath), 0o755))
		require.NoError(t, os.WriteFile(fullPath, []byte(content), 0o644))
	}
	return tempDir
}

func TestProjectScanner(t *testing.T) {
	t.Parallel()
	tempDir := writeTree(t, map[string]string{
		"Sources/App/main.swift":        "let a = 1",
		"Sources/App/View.swift":        "class V {}",
		"README.md":                     "# readme",
		"Tests/AppTests/AppTests.swift": "import XCTest",
		".git/hooks/x.swift":            "let b = 2",
	})

	scanner := New(tempDir, ".swift")
	scannedFiles, err := scanner.Scan()
	require.NoError(t, err)

	paths := make([]string, 0, len(scannedFiles))
	for _, file := range scannedFiles {
		rel, err := filepath.Rel(tempDir, file.Path)
		require.NoError(t, err)
		paths = append(paths, filepath.ToSlash(rel))
		assert.Greater(t, file.Size, int64(0), "File size should be greater than 0")
	}
	assert.Equal(t, []string{
		"Sources/App/View.swift",
		"Sources/App/main.swift",
		"Tests/AppTests/AppTests.swift",
	}, paths)
}

func TestScannerIgnore(t *testing.T) {
	t.Parallel()
	tempDir := writeTree(t, map[string]string{
		"Sources/App/main.swift":         "let a = 1",
		"Sources/App/Generated/G.swift":  "let g = 1",
		"Tests/AppTests/AppTests.swift":  "import XCTest",
		".build/checkouts/dep/Dep.swift": "let d = 1",
	})

	scanner := New(tempDir, ".swift")
	require.NoError(t, scanner.Ignore("**/Generated/**", "Tests", ".build"))

	scannedFiles, err := scanner.Scan()
	require.NoError(t, err)
	require.Len(t, scannedFiles, 1)
	assert.Equal(t, filepath.Join(tempDir, "Sources/App/main.swift"), scannedFiles[0].Path)

	assert.Error(t, scanner.Ignore("Sources/[a"))
}
