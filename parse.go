package condense

import (
	"encoding/json"
	"errors"
	"strings"

	eng "github.com/reoring/condense/internal/engine"
	"github.com/reoring/condense/i18n"
)

// ParseWire consumes one top-level value from src and builds its untyped
// form: map[string]any, []any, string, bool, nil, and float64 or
// json.Number depending on opt.NumberMode. Any failure is an *Error
// matching ErrParse; nothing is returned for partially read input.
func ParseWire(src Source, opt ParseOpt) (any, error) {
	if src == nil {
		return nil, parseError("", errors.New("nil source"))
	}
	enforced := eng.WrapWithEnforcement(src, eng.EnforceOptions{
		OnDuplicate: toEngineDup(opt.Strictness.OnDuplicateKey),
		MaxDepth:    opt.MaxDepth,
		MaxBytes:    opt.MaxBytes,
	})
	conv := eng.Float64
	if opt.NumberMode == NumberJSONNumber {
		conv = eng.JSONNumber
	}
	v, err := eng.DecodeAny(enforced, conv)
	if err != nil {
		return nil, toParseError(err)
	}
	return v, nil
}

// ParseText parses wire text with the current driver.
func ParseText(text string, opt ParseOpt) (any, error) {
	return ParseBytes(CurrentJSONDriver(), []byte(text), opt)
}

// ParseBytes parses wire text with driver d. MaxBytes is checked against
// the whole input before any token is read.
func ParseBytes(d JSONDriver, b []byte, opt ParseOpt) (any, error) {
	if opt.MaxBytes > 0 && int64(len(b)) > opt.MaxBytes {
		e := newError(CodeTruncated, nil)
		e.Path = "/"
		return nil, e
	}
	return ParseWire(d.NewBytes(b), opt)
}

// textual reports whether raw is wire text that must be parsed before
// dispatch.
func textual(raw any) ([]byte, bool) {
	switch v := raw.(type) {
	case string:
		return []byte(v), true
	case json.RawMessage:
		return v, true
	case []byte:
		return v, true
	}
	return nil, false
}

// looksStructured reports whether text opens an object or array.
func looksStructured(b []byte) bool {
	s := strings.TrimLeft(string(b), " \t\r\n")
	return strings.HasPrefix(s, "{") || strings.HasPrefix(s, "[")
}

func toEngineDup(s Severity) eng.DuplicateStrictness {
	if s == SeverityError {
		return eng.DupError
	}
	return eng.DupIgnore
}

func toParseError(err error) error {
	var ie eng.IssueError
	if errors.As(err, &ie) {
		return &Error{Code: ie.Code, Path: ie.Path, Message: i18n.T(ie.Code, nil) + ": " + ie.Message}
	}
	return parseError("", err)
}

func parseError(path string, cause error) *Error {
	e := newError(CodeParseError, nil)
	e.Path = path
	e.Cause = cause
	return e
}

// joinPointer prefixes rest (a JSON Pointer, possibly "" or "/") with token.
func joinPointer(token, rest string) string {
	if rest == "/" {
		rest = ""
	}
	return eng.JoinPointer("", token) + rest
}
