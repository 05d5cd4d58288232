// Package internal provides the expansion engine of macrokit.
//
// An Engine parses one Swift source file into the syntax model of package
// syntax, runs the registered macros over it and splices their output
// back into the text. Freestanding invocations such as #stringify(x) are
// replaced in place; attached ones such as @AddSubviews add declarations
// to the group or member they annotate and are removed from the source.
//
// Key components:
//
// Engine: configures the macro registry and expands files or sources.
//
// Result: the source, its expansion and the issues raised for it.
//
// Watcher: re-expands files as they change on disk.
//
// Usage:
//
//	engine, err := internal.NewEngine(internal.Options{})
//	if err != nil {
//	    // handle error
//	}
//
//	res, err := engine.Run("Sources/App/ViewController.swift")
//	if err != nil {
//	    // handle error
//	}
//
//	for _, issue := range res.Issues {
//	    fmt.Println(issue)
//	}
package internal
