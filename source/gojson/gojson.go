// Package gojson is the goccy/go-json token driver, the default wire driver.
package gojson

import (
	"bytes"
	"errors"
	"io"
	"strconv"

	j "github.com/goccy/go-json"

	eng "github.com/reoring/condense/internal/engine"
)

type source struct {
	dec    *j.Decoder
	frames eng.Framer
}

// errSyntax is reported for input go-json's validator rejects. The
// decoder's Token stream does not check punctuation on its own.
var errSyntax = errors.New("go-json: invalid JSON syntax")

// NewReader wraps an io.Reader into an engine.TokenSource for JSON using
// go-json. The input is buffered so it can be validated before tokenizing.
func NewReader(r io.Reader) eng.TokenSource {
	b, err := io.ReadAll(r)
	if err != nil {
		return errSource{err: err}
	}
	return NewBytes(b)
}

// NewBytes wraps a byte slice into an engine.TokenSource for JSON using go-json.
func NewBytes(b []byte) eng.TokenSource {
	if !j.Valid(b) {
		return errSource{err: errSyntax}
	}
	dec := j.NewDecoder(bytes.NewReader(b))
	dec.UseNumber()
	return &source{dec: dec}
}

type errSource struct{ err error }

func (s errSource) NextToken() (eng.Token, error) { return eng.Token{}, s.err }
func (s errSource) Location() int64               { return -1 }

func (s *source) NextToken() (eng.Token, error) {
	tok, err := s.dec.Token()
	if err != nil {
		return eng.Token{}, err
	}
	t := eng.Token{Offset: -1}

	switch v := tok.(type) {
	case j.Delim:
		switch v {
		case '{':
			s.frames.Open(true)
			t.Kind = eng.KindBeginObject
		case '}':
			s.frames.Close()
			t.Kind = eng.KindEndObject
		case '[':
			s.frames.Open(false)
			t.Kind = eng.KindBeginArray
		default:
			s.frames.Close()
			t.Kind = eng.KindEndArray
		}
		return t, nil
	case string:
		if s.frames.Key() {
			t.Kind, t.String = eng.KindKey, v
			return t, nil
		}
		t.Kind, t.String = eng.KindString, v
	case bool:
		t.Kind, t.Bool = eng.KindBool, v
	case j.Number:
		t.Kind, t.Number = eng.KindNumber, string(v)
	case float64:
		t.Kind, t.Number = eng.KindNumber, strconv.FormatFloat(v, 'g', -1, 64)
	default:
		t.Kind = eng.KindNull
	}
	s.frames.Value()
	return t, nil
}

// Location is unknown for go-json; size limits are enforced up front by callers.
func (s *source) Location() int64 { return -1 }
