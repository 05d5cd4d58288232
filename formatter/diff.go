package formatter

import (
	"github.com/pmezard/go-difflib/difflib"

	"github.com/gnolang/macrokit/internal"
)

// Diff renders the change made by an expansion as a unified diff. It
// returns an empty string when nothing changed.
func Diff(res *internal.Result) (string, error) {
	if !res.Changed() {
		return "", nil
	}
	return difflib.GetUnifiedDiffString(difflib.UnifiedDiff{
		A:        difflib.SplitLines(res.Source),
		B:        difflib.SplitLines(res.Output),
		FromFile: "a/" + res.Filename,
		ToFile:   "b/" + res.Filename,
		Context:  3,
	})
}
