package injector

import (
	"bytes"
	"errors"
)

// ErrBraceNotFound is returned when no opening body brace follows a definition
var ErrBraceNotFound = errors.New("opening brace not found")

// LocateInsertionPoint scans text from start for the first '{' and returns the
// offset two bytes past it, which skips the brace and one line terminator so
// the snippet lands on the line after the brace.
//
// The scan is a raw byte search. A '{' between the signature and the body is
// taken as the body brace. That includes default arguments, attributes and
// comments, and braced member initialisers such as Foo::Foo() : v{1} {.
func LocateInsertionPoint(text []byte, start int) (int, error) {
	if start < 0 || start >= len(text) {
		return len(text), ErrBraceNotFound
	}
	i := bytes.IndexByte(text[start:], '{')
	if i < 0 {
		return len(text), ErrBraceNotFound
	}
	at := start + i + 2
	if at > len(text) {
		return at, ErrBraceNotFound
	}
	return at, nil
}
