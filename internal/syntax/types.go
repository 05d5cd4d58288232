package syntax

import "strings"

// TypeDescriptor is the structured form of a type annotation such as
// `UIKit.UILabel?` or `Array<UIView>`.
type TypeDescriptor struct {
	// Qualifier holds the module or enclosing type path, e.g. "UIKit".
	Qualifier string
	// Name is the last path component; empty for tuple, function,
	// array and dictionary sugar.
	Name string
	// Args is the verbatim generic argument list without brackets.
	Args string
	// Optional is set for T?, Implicit for T!.
	Optional bool
	Implicit bool
}

// ParseType builds a TypeDescriptor from annotation tokens.
func ParseType(toks []Token) *TypeDescriptor {
	desc := &TypeDescriptor{}
	i := 0
	for i < len(toks) && toks[i].Kind == TokenIdent && isTypeSpecifier(toks[i].Text) {
		i++
	}
	if i >= len(toks) {
		return desc
	}
	if toks[i].Kind != TokenIdent {
		// [T], [K: V], (A, B), (A) -> B
		applySuffix(desc, toks[len(toks)-1])
		return desc
	}

	var path []string
	for i < len(toks) && toks[i].Kind == TokenIdent {
		path = append(path, strings.Trim(toks[i].Text, "`"))
		i++
		if i < len(toks) && toks[i].Is(TokenPunct, "<") {
			start := i
			depth := 0
			for ; i < len(toks); i++ {
				depth += strings.Count(toks[i].Text, "<") - strings.Count(toks[i].Text, ">")
				if depth <= 0 {
					break
				}
			}
			if i < len(toks) {
				desc.Args = joinTokens(toks[start+1 : i])
				i++
			}
		}
		if i < len(toks) && toks[i].Is(TokenPunct, ".") {
			i++
			continue
		}
		break
	}
	desc.Name = path[len(path)-1]
	desc.Qualifier = strings.Join(path[:len(path)-1], ".")
	applySuffix(desc, toks[len(toks)-1])
	return desc
}

func applySuffix(desc *TypeDescriptor, last Token) {
	if last.Kind != TokenPunct {
		return
	}
	switch {
	case strings.HasSuffix(last.Text, "?"):
		desc.Optional = true
	case strings.HasSuffix(last.Text, "!"):
		desc.Implicit = true
	}
}

func isTypeSpecifier(s string) bool {
	switch s {
	case "some", "any", "inout", "borrowing", "consuming":
		return true
	}
	return false
}

// joinTokens renders tokens with a single space where the source had
// any trivia.
func joinTokens(toks []Token) string {
	var sb strings.Builder
	for i, t := range toks {
		if i > 0 && t.SpaceBefore {
			sb.WriteByte(' ')
		}
		sb.WriteString(t.Text)
	}
	return sb.String()
}
