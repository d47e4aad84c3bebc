package checkapi

import (
	"errors"
	"fmt"
)

// ErrorKind classifies errors crossing the engine boundary.
type ErrorKind int

const (
	KindGeneral ErrorKind = iota
	KindFileNotFound
	KindUnrecognizedSource
	KindSave
	KindParsing
	KindCacheSerialization
	KindNetwork
)

func (k ErrorKind) String() string {
	switch k {
	case KindFileNotFound:
		return "file not found"
	case KindUnrecognizedSource:
		return "unrecognized source"
	case KindSave:
		return "save error"
	case KindParsing:
		return "parsing error"
	case KindCacheSerialization:
		return "cache serialization error"
	case KindNetwork:
		return "network error"
	default:
		return "error"
	}
}

// Error is the structured error type returned by checks, testables and sources.
type Error struct {
	Kind ErrorKind
	Path string
	Err  error
}

func (e *Error) Error() string {
	switch {
	case e.Path != "" && e.Err != nil:
		return fmt.Sprintf("%s: %s: %v", e.Kind, e.Path, e.Err)
	case e.Path != "":
		return fmt.Sprintf("%s: %s", e.Kind, e.Path)
	case e.Err != nil:
		return fmt.Sprintf("%s: %v", e.Kind, e.Err)
	default:
		return e.Kind.String()
	}
}

func (e *Error) Unwrap() error { return e.Err }

// Is matches any *Error of the same kind, so errors.Is(err, &Error{Kind: KindNetwork}) works.
func (e *Error) Is(target error) bool {
	var t *Error
	if !errors.As(target, &t) {
		return false
	}
	return t.Kind == e.Kind && t.Path == "" && t.Err == nil
}

func NewError(kind ErrorKind, path string, err error) *Error {
	return &Error{Kind: kind, Path: path, Err: err}
}

func FileNotFoundError(path string) error { return &Error{Kind: KindFileNotFound, Path: path} }

func ParsingError(path string, err error) error {
	return &Error{Kind: KindParsing, Path: path, Err: err}
}

func NetworkError(err error) error { return &Error{Kind: KindNetwork, Err: err} }

// Errorf builds a general error.
func Errorf(format string, args ...any) error {
	return &Error{Kind: KindGeneral, Err: fmt.Errorf(format, args...)}
}

// SkipError marks a check as not applicable.
type SkipError struct {
	Code    string
	Message string
}

func (e *SkipError) Error() string {
	return fmt.Sprintf("skipped (%s): %s", e.Code, e.Message)
}

// Skip returns a SkipError; a check returns it to report a single Skip status.
//
//	if !font.IsVariable() {
//		return nil, checkapi.Skip("not-variable", "Font is not variable")
//	}
func Skip(code, message string) error {
	return &SkipError{Code: code, Message: message}
}
