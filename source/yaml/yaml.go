// Package yaml is a wire driver for YAML documents, a superset of the JSON
// grammar. Only the first document of a stream is read.
package yaml

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"math"
	"strconv"

	yamlv3 "gopkg.in/yaml.v3"

	"github.com/reoring/condense"
)

// Driver returns a condense.JSONDriver backed by gopkg.in/yaml.v3.
func Driver() condense.JSONDriver { return driver{} }

type driver struct{}

func (driver) NewReader(r io.Reader) condense.Source {
	var root yamlv3.Node
	if err := yamlv3.NewDecoder(r).Decode(&root); err != nil {
		if errors.Is(err, io.EOF) {
			return condense.TokensSource(nil)
		}
		return condense.ErrorSource(err)
	}
	var tokens []condense.Token
	if err := emit(&root, &tokens); err != nil {
		return condense.ErrorSource(err)
	}
	return condense.TokensSource(tokens)
}

func (d driver) NewBytes(b []byte) condense.Source { return d.NewReader(bytes.NewReader(b)) }
func (driver) Name() string                        { return "yaml.v3" }

// emit flattens a YAML node into wire tokens. Duplicate mapping keys are
// emitted as-is and left to the parser's duplicate key policy.
func emit(n *yamlv3.Node, out *[]condense.Token) error {
	switch n.Kind {
	case yamlv3.DocumentNode:
		if len(n.Content) == 0 {
			*out = append(*out, condense.Token{Kind: condense.TokenNull, Offset: -1})
			return nil
		}
		return emit(n.Content[0], out)
	case yamlv3.AliasNode:
		if n.Alias == nil {
			return fmt.Errorf("yaml: dangling alias at %d:%d", n.Line, n.Column)
		}
		return emit(n.Alias, out)
	case yamlv3.MappingNode:
		*out = append(*out, condense.Token{Kind: condense.TokenBeginObject, Offset: -1})
		for i := 0; i+1 < len(n.Content); i += 2 {
			k := n.Content[i]
			if k.Kind != yamlv3.ScalarNode {
				return fmt.Errorf("yaml: non-scalar key at %d:%d", k.Line, k.Column)
			}
			*out = append(*out, condense.Token{Kind: condense.TokenKey, String: k.Value, Offset: -1})
			if err := emit(n.Content[i+1], out); err != nil {
				return err
			}
		}
		*out = append(*out, condense.Token{Kind: condense.TokenEndObject, Offset: -1})
		return nil
	case yamlv3.SequenceNode:
		*out = append(*out, condense.Token{Kind: condense.TokenBeginArray, Offset: -1})
		for _, c := range n.Content {
			if err := emit(c, out); err != nil {
				return err
			}
		}
		*out = append(*out, condense.Token{Kind: condense.TokenEndArray, Offset: -1})
		return nil
	case yamlv3.ScalarNode:
		*out = append(*out, scalar(n))
		return nil
	}
	return fmt.Errorf("yaml: unsupported node kind %d at %d:%d", n.Kind, n.Line, n.Column)
}

func scalar(n *yamlv3.Node) condense.Token {
	t := condense.Token{Offset: -1}
	switch n.ShortTag() {
	case "!!null":
		t.Kind = condense.TokenNull
	case "!!bool":
		var b bool
		if err := n.Decode(&b); err != nil {
			t.Kind, t.String = condense.TokenString, n.Value
			return t
		}
		t.Kind, t.Bool = condense.TokenBool, b
	case "!!int":
		if i, err := strconv.ParseInt(n.Value, 0, 64); err == nil {
			t.Kind, t.Number = condense.TokenNumber, strconv.FormatInt(i, 10)
			return t
		}
		t.Kind, t.String = condense.TokenString, n.Value
	case "!!float":
		var f float64
		if err := n.Decode(&f); err != nil || math.IsNaN(f) || math.IsInf(f, 0) {
			// the wire grammar has no NaN or infinities
			t.Kind, t.String = condense.TokenString, n.Value
			return t
		}
		t.Kind, t.Number = condense.TokenNumber, strconv.FormatFloat(f, 'g', -1, 64)
	default:
		t.Kind, t.String = condense.TokenString, n.Value
	}
	return t
}
