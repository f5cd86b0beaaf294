package json_test

import (
	"errors"
	"io"
	"strings"
	"testing"

	eng "github.com/reoring/condense/internal/engine"
	jsonsrc "github.com/reoring/condense/source/json"
)

func collect(t *testing.T, src eng.TokenSource) []eng.Token {
	t.Helper()
	var out []eng.Token
	for {
		tok, err := src.NextToken()
		if errors.Is(err, io.EOF) {
			return out
		}
		if err != nil {
			t.Fatalf("next token: %v", err)
		}
		out = append(out, tok)
	}
}

func TestTokens_KeysAndValues(t *testing.T) {
	toks := collect(t, jsonsrc.NewBytes([]byte(`{"a":["x",1.5,true,null],"b":{"c":"d"},"e":"f"}`)))
	want := []struct {
		kind eng.Kind
		text string
	}{
		{eng.KindBeginObject, ""},
		{eng.KindKey, "a"},
		{eng.KindBeginArray, ""},
		{eng.KindString, "x"},
		{eng.KindNumber, "1.5"},
		{eng.KindBool, ""},
		{eng.KindNull, ""},
		{eng.KindEndArray, ""},
		{eng.KindKey, "b"},
		{eng.KindBeginObject, ""},
		{eng.KindKey, "c"},
		{eng.KindString, "d"},
		{eng.KindEndObject, ""},
		{eng.KindKey, "e"},
		{eng.KindString, "f"},
		{eng.KindEndObject, ""},
	}
	if len(toks) != len(want) {
		t.Fatalf("expected %d tokens, got %d: %+v", len(want), len(toks), toks)
	}
	for i, w := range want {
		got := toks[i]
		text := got.String
		if got.Kind == eng.KindNumber {
			text = got.Number
		}
		if got.Kind != w.kind || text != w.text {
			t.Fatalf("token %d: got kind=%d text=%q, want kind=%d text=%q", i, got.Kind, text, w.kind, w.text)
		}
	}
}

func TestLocation_Advances(t *testing.T) {
	src := jsonsrc.NewReader(strings.NewReader(`{"name":"Josiah"}`))
	if src.Location() != -1 {
		t.Fatalf("location before the first token should be unknown")
	}
	var last int64
	for {
		tok, err := src.NextToken()
		if err != nil {
			break
		}
		if tok.Offset < last {
			t.Fatalf("offsets must not go backwards: %d after %d", tok.Offset, last)
		}
		last = tok.Offset
	}
	if last != int64(len(`{"name":"Josiah"}`)) {
		t.Fatalf("expected final offset at end of input, got %d", last)
	}
}

func TestSyntaxError(t *testing.T) {
	src := jsonsrc.NewBytes([]byte(`{"a" 1}`))
	var err error
	for err == nil {
		_, err = src.NextToken()
	}
	if errors.Is(err, io.EOF) {
		t.Fatalf("expected a syntax error, got EOF")
	}
}
