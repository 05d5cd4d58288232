// Package prelude ships the Swift declarations that expanded code refers
// to but that expansion itself does not generate.
package prelude

import (
	"embed"
	"io/fs"
)

//go:embed *.swift
var files embed.FS

// UnwrapErrorFile is the prelude file declaring UnwrapError.
const UnwrapErrorFile = "UnwrapError.swift"

// List returns the names of the prelude files.
func List() ([]string, error) {
	return fs.Glob(files, "*.swift")
}

// Source returns the content of the named prelude file.
func Source(name string) ([]byte, error) {
	return files.ReadFile(name)
}
