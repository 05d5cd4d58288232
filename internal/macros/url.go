package macros

import (
	"errors"
	"fmt"
	"net/url"
)

var errEmptyURL = errors.New("empty URL")

// ValidateURL reports whether s is a URI reference made only of the
// characters RFC 3986 allows, with well-formed percent escapes.
func ValidateURL(s string) error {
	if s == "" {
		return errEmptyURL
	}
	for i := 0; i < len(s); i++ {
		c := s[i]
		switch {
		case c == '%':
			if i+2 >= len(s) || !isHex(s[i+1]) || !isHex(s[i+2]) {
				return fmt.Errorf("malformed escape at offset %d", i)
			}
			i += 2
		case !isURLChar(c):
			return fmt.Errorf("invalid character %q at offset %d", c, i)
		}
	}
	if _, err := url.Parse(s); err != nil {
		return err
	}
	return nil
}

func isURLChar(c byte) bool {
	switch {
	case 'a' <= c && c <= 'z', 'A' <= c && c <= 'Z', '0' <= c && c <= '9':
		return true
	}
	switch c {
	// unreserved
	case '-', '.', '_', '~':
		return true
	// gen-delims
	case ':', '/', '?', '#', '[', ']', '@':
		return true
	// sub-delims
	case '!', '$', '&', '\'', '(', ')', '*', '+', ',', ';', '=':
		return true
	}
	return false
}

func isHex(c byte) bool {
	return '0' <= c && c <= '9' || 'a' <= c && c <= 'f' || 'A' <= c && c <= 'F'
}
