package condense

import (
	"errors"
	"fmt"
	"strings"

	"github.com/reoring/condense/i18n"
)

// Error codes (exported consts for IDE completion and type safety by convention)
const (
	CodeRegistration     = "registration"
	CodeUnknownShape     = "unknown_shape"
	CodeUnboundParameter = "unbound_parameter"
	CodeParseError       = "parse_error"
	CodeDuplicateKey     = "duplicate_key"
	CodeTruncated        = "truncated"
)

// Sentinels for errors.Is. Every *Error matches the sentinel of its kind;
// duplicate_key and truncated are parse failures.
var (
	ErrRegistration     = &Error{Code: CodeRegistration}
	ErrUnknownShape     = &Error{Code: CodeUnknownShape}
	ErrUnboundParameter = &Error{Code: CodeUnboundParameter}
	ErrParse            = &Error{Code: CodeParseError}
)

// Error is the single error type surfaced by the engine.
type Error struct {
	Code     string
	Shape    string // Shape involved, when known.
	Callable string // Callable involved, when known.
	// Path is a JSON Pointer into the raw input (for arguments the first
	// token is the argument index).
	Path    string
	Message string
	Cause   error
}

func (e *Error) Error() string {
	b := &strings.Builder{}
	b.WriteString("condense: ")
	b.WriteString(e.Code)
	if e.Path != "" {
		fmt.Fprintf(b, " at %s", e.Path)
	}
	if e.Message != "" {
		b.WriteString(": ")
		b.WriteString(e.Message)
	}
	if e.Cause != nil {
		b.WriteString(": ")
		b.WriteString(e.Cause.Error())
	}
	return b.String()
}

func (e *Error) Unwrap() error { return e.Cause }

// Is matches sentinels (errors with only a Code) by error kind.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok {
		return false
	}
	if t == e {
		return true
	}
	if t.Message != "" || t.Path != "" || t.Shape != "" || t.Callable != "" || t.Cause != nil {
		return false
	}
	return kindOf(t.Code) == kindOf(e.Code)
}

func kindOf(code string) string {
	switch code {
	case CodeDuplicateKey, CodeTruncated:
		return CodeParseError
	}
	return code
}

// AsError extracts *Error from an error using errors.As internally.
func AsError(err error) (*Error, bool) {
	if err == nil {
		return nil, false
	}
	var e *Error
	if errors.As(err, &e) {
		return e, true
	}
	return nil, false
}

func newError(code string, data map[string]string) *Error {
	e := &Error{Code: code, Message: i18n.T(code, data)}
	if data != nil {
		e.Shape = data["shape"]
		e.Callable = data["callable"]
	}
	return e
}

func registrationError(shape Shape, detail string) *Error {
	return newError(CodeRegistration, map[string]string{"shape": shape.String(), "detail": detail})
}

func unknownShapeError(name string) *Error {
	return newError(CodeUnknownShape, map[string]string{"shape": name})
}

func unboundParameterError(owner Shape, c Callable) *Error {
	return newError(CodeUnboundParameter, map[string]string{"shape": owner.String(), "callable": c.String()})
}

// rebase prefixes the path of an *Error with one reference token, so nested
// failures report where in the raw input they happened.
func rebase(err error, token string) error {
	e, ok := AsError(err)
	if !ok {
		return err
	}
	out := *e
	out.Path = joinPointer(token, e.Path)
	return &out
}

// withCallable annotates an *Error with the callable being bound.
func withCallable(err error, owner Shape, c Callable) error {
	e, ok := AsError(err)
	if !ok || e.Callable != "" {
		return err
	}
	out := *e
	out.Callable = c.String()
	if out.Shape == "" {
		out.Shape = owner.String()
	}
	return &out
}
