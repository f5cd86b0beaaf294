package condense

import (
	"io"
	"sync"

	eng "github.com/reoring/condense/internal/engine"
	gojsonsrc "github.com/reoring/condense/source/gojson"
	jsonsrc "github.com/reoring/condense/source/json"
)

// TokenKind enumerates wire token kinds.
type TokenKind = eng.Kind

const (
	TokenBeginObject TokenKind = eng.KindBeginObject
	TokenEndObject   TokenKind = eng.KindEndObject
	TokenBeginArray  TokenKind = eng.KindBeginArray
	TokenEndArray    TokenKind = eng.KindEndArray
	TokenKey         TokenKind = eng.KindKey
	TokenString      TokenKind = eng.KindString
	TokenNumber      TokenKind = eng.KindNumber
	TokenBool        TokenKind = eng.KindBool
	TokenNull        TokenKind = eng.KindNull
)

// Token describes a token in the input stream. Offset records the byte position
// when known (-1 otherwise).
type Token = eng.Token

// Source abstracts over token streams of structured wire data. NextToken
// returns io.EOF once the stream is exhausted.
type Source interface {
	NextToken() (Token, error)
	Location() int64 // byte offset; -1 if unknown
}

// JSONDriver turns wire text into a Source. The default implementation is
// backed by goccy/go-json and may be swapped with SetJSONDriver.
type JSONDriver interface {
	NewReader(r io.Reader) Source
	NewBytes(b []byte) Source
	Name() string
}

var (
	jsonDriverMu      sync.RWMutex
	currentJSONDriver JSONDriver = GoJSONDriver()
)

// SetJSONDriver replaces the global JSON driver; nil values are ignored.
func SetJSONDriver(d JSONDriver) {
	if d == nil {
		return
	}
	jsonDriverMu.Lock()
	currentJSONDriver = d
	jsonDriverMu.Unlock()
}

// UseDefaultJSONDriver restores the default go-json driver.
func UseDefaultJSONDriver() { SetJSONDriver(GoJSONDriver()) }

// CurrentJSONDriver returns the driver used when no other is configured.
func CurrentJSONDriver() JSONDriver {
	jsonDriverMu.RLock()
	d := currentJSONDriver
	jsonDriverMu.RUnlock()
	return d
}

// GoJSONDriver returns the goccy/go-json backed driver.
func GoJSONDriver() JSONDriver { return goJSONDriver{} }

// StdJSONDriver returns the encoding/json backed driver. It reports byte
// offsets, so MaxBytes can also be enforced while streaming.
func StdJSONDriver() JSONDriver { return stdJSONDriver{} }

type goJSONDriver struct{}

func (goJSONDriver) NewReader(r io.Reader) Source { return gojsonsrc.NewReader(r) }
func (goJSONDriver) NewBytes(b []byte) Source     { return gojsonsrc.NewBytes(b) }
func (goJSONDriver) Name() string                 { return "go-json" }

type stdJSONDriver struct{}

func (stdJSONDriver) NewReader(r io.Reader) Source { return jsonsrc.NewReader(r) }
func (stdJSONDriver) NewBytes(b []byte) Source     { return jsonsrc.NewBytes(b) }
func (stdJSONDriver) Name() string                 { return "encoding/json" }

// JSONReader wraps an io.Reader as a Source using the current driver.
func JSONReader(r io.Reader) Source { return CurrentJSONDriver().NewReader(r) }

// JSONBytes wraps a byte slice as a Source using the current driver.
func JSONBytes(b []byte) Source { return CurrentJSONDriver().NewBytes(b) }

// TokensSource replays a fixed token list. Drivers that decode a whole
// document up front (such as YAML) hand their tokens over through it.
func TokensSource(tokens []Token) Source { return &tokenSlice{tokens: tokens} }

type tokenSlice struct {
	tokens []Token
	idx    int
}

func (s *tokenSlice) NextToken() (Token, error) {
	if s.idx >= len(s.tokens) {
		return Token{}, io.EOF
	}
	t := s.tokens[s.idx]
	s.idx++
	return t, nil
}

func (s *tokenSlice) Location() int64 { return -1 }

// ErrorSource is a Source that fails on the first read. Drivers use it to
// surface decode errors through the regular parse path.
func ErrorSource(err error) Source { return errSource{err: err} }

type errSource struct{ err error }

func (s errSource) NextToken() (Token, error) { return Token{}, s.err }
func (s errSource) Location() int64           { return -1 }
