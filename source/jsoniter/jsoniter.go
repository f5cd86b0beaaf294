// Package jsoniter is a wire driver backed by json-iterator. The input is
// tokenized up front; the Iterator never builds an intermediate tree.
package jsoniter

import (
	"bytes"
	"errors"
	"io"

	jsoniter "github.com/json-iterator/go"

	"github.com/reoring/condense"
)

var (
	errUnexpected = errors.New("jsoniter: unexpected input")
	errTrailing   = errors.New("jsoniter: trailing data after top-level value")
)

// Driver returns a condense.JSONDriver backed by github.com/json-iterator/go.
func Driver() condense.JSONDriver { return driver{} }

type driver struct{}

func (d driver) NewReader(r io.Reader) condense.Source {
	b, err := io.ReadAll(r)
	if err != nil {
		return condense.ErrorSource(err)
	}
	return d.NewBytes(b)
}

func (driver) NewBytes(b []byte) condense.Source {
	if len(bytes.TrimSpace(b)) == 0 {
		return condense.TokensSource(nil)
	}
	iter := jsoniter.ParseBytes(jsoniter.ConfigCompatibleWithStandardLibrary, b)
	e := &emitter{}
	e.value(iter)
	if e.err != nil {
		return condense.ErrorSource(e.err)
	}
	if iter.Error != nil && !errors.Is(iter.Error, io.EOF) {
		return condense.ErrorSource(iter.Error)
	}
	// only whitespace may follow; the iterator reports io.EOF once it is consumed
	iter.WhatIsNext()
	if !errors.Is(iter.Error, io.EOF) {
		return condense.ErrorSource(errTrailing)
	}
	return condense.TokensSource(e.tokens)
}

func (driver) Name() string { return "json-iterator" }

type emitter struct {
	tokens []condense.Token
	err    error
}

func (e *emitter) push(t condense.Token) {
	t.Offset = -1
	e.tokens = append(e.tokens, t)
}

func (e *emitter) ok(iter *jsoniter.Iterator) bool {
	return e.err == nil && (iter.Error == nil || errors.Is(iter.Error, io.EOF))
}

func (e *emitter) value(iter *jsoniter.Iterator) {
	switch iter.WhatIsNext() {
	case jsoniter.ObjectValue:
		e.push(condense.Token{Kind: condense.TokenBeginObject})
		iter.ReadObjectCB(func(it *jsoniter.Iterator, field string) bool {
			e.push(condense.Token{Kind: condense.TokenKey, String: field})
			e.value(it)
			return e.ok(it)
		})
		e.push(condense.Token{Kind: condense.TokenEndObject})
	case jsoniter.ArrayValue:
		e.push(condense.Token{Kind: condense.TokenBeginArray})
		iter.ReadArrayCB(func(it *jsoniter.Iterator) bool {
			e.value(it)
			return e.ok(it)
		})
		e.push(condense.Token{Kind: condense.TokenEndArray})
	case jsoniter.StringValue:
		e.push(condense.Token{Kind: condense.TokenString, String: iter.ReadString()})
	case jsoniter.NumberValue:
		e.push(condense.Token{Kind: condense.TokenNumber, Number: string(iter.ReadNumber())})
	case jsoniter.BoolValue:
		e.push(condense.Token{Kind: condense.TokenBool, Bool: iter.ReadBool()})
	case jsoniter.NilValue:
		iter.ReadNil()
		e.push(condense.Token{Kind: condense.TokenNull})
	default:
		if e.err == nil {
			e.err = errUnexpected
		}
	}
}
