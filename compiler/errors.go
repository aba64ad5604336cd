package compiler

import (
	"errors"
	"fmt"
	"strings"
)

// Error is a single compile diagnostic.
type Error struct {
	Line    int
	Where   string // " at 'x'", " at end", or empty for lexical errors
	Message string

	// Start and Length locate the offending token in characters.
	Start  int
	Length int

	// Lexical is true when the scanner produced the error.
	Lexical bool
}

func (e *Error) Error() string {
	return fmt.Sprintf("[line %d] Error%s: %s", e.Line, e.Where, e.Message)
}

// ErrorList collects every diagnostic of one compile.
type ErrorList []*Error

func (l ErrorList) Error() string {
	switch len(l) {
	case 0:
		return "no errors"
	case 1:
		return l[0].Error()
	}
	msgs := make([]string, len(l))
	for i, e := range l {
		msgs[i] = e.Error()
	}
	return strings.Join(msgs, "\n")
}

// Err returns nil for an empty list and the list otherwise.
func (l ErrorList) Err() error {
	if len(l) == 0 {
		return nil
	}
	return l
}

// Errors extracts the diagnostics from err. A bare *Error yields a list of
// one; any other error yields nil.
func Errors(err error) ErrorList {
	var list ErrorList
	if errors.As(err, &list) {
		return list
	}
	var single *Error
	if errors.As(err, &single) {
		return ErrorList{single}
	}
	return nil
}
