package macros

import "fmt"

// Error reports a malformed macro invocation. It is the only error kind
// an expander returns; Error() yields the message unchanged.
type Error struct {
	Message string
}

func (e *Error) Error() string {
	return e.Message
}

func errorf(format string, args ...any) *Error {
	return &Error{Message: fmt.Sprintf(format, args...)}
}
