package scanner

import (
	"fmt"
	"io/fs"
	"path/filepath"
	"sort"

	"github.com/bmatcuk/doublestar/v4"
)

type FileInfo struct {
	Path string
	Size int64
}

// Scanner walks a directory tree for source files. Ignore patterns are
// doublestar globs matched against slash-separated paths relative to the
// root; a matching directory is not descended into.
type Scanner struct {
	rootDir    string
	extensions []string
	ignore     []string
}

func New(rootDir string, extensions ...string) *Scanner {
	return &Scanner{
		rootDir:    rootDir,
		extensions: extensions,
	}
}

// Ignore adds ignore patterns. Malformed patterns are rejected.
func (s *Scanner) Ignore(patterns ...string) error {
	for _, p := range patterns {
		if !doublestar.ValidatePattern(p) {
			return fmt.Errorf("invalid ignore pattern %q", p)
		}
	}
	s.ignore = append(s.ignore, patterns...)
	return nil
}

func (s *Scanner) Scan() ([]FileInfo, error) {
	var files []FileInfo
	err := filepath.WalkDir(s.rootDir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if s.IsIgnored(path) {
			if d.IsDir() {
				return filepath.SkipDir
			}
			return nil
		}
		if d.IsDir() {
			if path != s.rootDir && d.Name() == ".git" {
				return filepath.SkipDir
			}
			return nil
		}
		if !s.isTargetFile(path) {
			return nil
		}
		info, err := d.Info()
		if err != nil {
			return err
		}
		files = append(files, FileInfo{Path: path, Size: info.Size()})
		return nil
	})

	sort.Slice(files, func(i, j int) bool {
		return files[i].Path < files[j].Path
	})
	return files, err
}

// IsIgnored reports whether path matches an ignore pattern, either
// relative to the root or as given.
func (s *Scanner) IsIgnored(path string) bool {
	if len(s.ignore) == 0 {
		return false
	}
	candidates := []string{filepath.ToSlash(path)}
	if rel, err := filepath.Rel(s.rootDir, path); err == nil && rel != "." {
		candidates = append(candidates, filepath.ToSlash(rel))
	}
	for _, pattern := range s.ignore {
		for _, c := range candidates {
			if ok, _ := doublestar.Match(pattern, c); ok {
				return true
			}
		}
	}
	return false
}

func (s *Scanner) isTargetFile(path string) bool {
	if len(s.extensions) == 0 {
		return true
	}

	ext := filepath.Ext(path)
	for _, targetExt := range s.extensions {
		if ext == targetExt {
			return true
		}
	}
	return false
}
