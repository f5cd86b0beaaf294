// Package fastjson is a wire driver backed by valyala/fastjson. Object
// members are visited in input order, duplicates included, so the parser's
// duplicate key policy still applies.
package fastjson

import (
	"bytes"
	"fmt"
	"io"

	"github.com/valyala/fastjson"

	"github.com/reoring/condense"
)

// Driver returns a condense.JSONDriver backed by github.com/valyala/fastjson.
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
	var p fastjson.Parser
	v, err := p.ParseBytes(b)
	if err != nil {
		return condense.ErrorSource(err)
	}
	var tokens []condense.Token
	if err := emit(v, &tokens); err != nil {
		return condense.ErrorSource(err)
	}
	return condense.TokensSource(tokens)
}

func (driver) Name() string { return "fastjson" }

func emit(v *fastjson.Value, out *[]condense.Token) error {
	push := func(t condense.Token) {
		t.Offset = -1
		*out = append(*out, t)
	}
	switch v.Type() {
	case fastjson.TypeObject:
		o, err := v.Object()
		if err != nil {
			return err
		}
		push(condense.Token{Kind: condense.TokenBeginObject})
		o.Visit(func(k []byte, c *fastjson.Value) {
			if err != nil {
				return
			}
			push(condense.Token{Kind: condense.TokenKey, String: string(k)})
			err = emit(c, out)
		})
		if err != nil {
			return err
		}
		push(condense.Token{Kind: condense.TokenEndObject})
	case fastjson.TypeArray:
		items, err := v.Array()
		if err != nil {
			return err
		}
		push(condense.Token{Kind: condense.TokenBeginArray})
		for _, c := range items {
			if err := emit(c, out); err != nil {
				return err
			}
		}
		push(condense.Token{Kind: condense.TokenEndArray})
	case fastjson.TypeString:
		s, err := v.StringBytes()
		if err != nil {
			return err
		}
		push(condense.Token{Kind: condense.TokenString, String: string(s)})
	case fastjson.TypeNumber:
		push(condense.Token{Kind: condense.TokenNumber, Number: string(v.MarshalTo(nil))})
	case fastjson.TypeTrue:
		push(condense.Token{Kind: condense.TokenBool, Bool: true})
	case fastjson.TypeFalse:
		push(condense.Token{Kind: condense.TokenBool, Bool: false})
	case fastjson.TypeNull:
		push(condense.Token{Kind: condense.TokenNull})
	default:
		return fmt.Errorf("fastjson: unsupported value type %s", v.Type())
	}
	return nil
}
