// Package hcl decodes HCL attributes into raw wire data, so configuration
// files can feed Context.FormalParams, Create and Invoke.
package hcl

import (
	"errors"
	"path/filepath"

	hclv2 "github.com/hashicorp/hcl/v2"
	"github.com/hashicorp/hcl/v2/hclparse"
	"github.com/zclconf/go-cty/cty"
	ctyjson "github.com/zclconf/go-cty/cty/json"

	"github.com/reoring/condense"
	"github.com/reoring/condense/i18n"
)

// Arguments parses an HCL body (native syntax, or HCL's JSON syntax when
// filename ends in ".json") and returns the values of the named
// attributes in order. A missing attribute is absent (nil).
func Arguments(src []byte, filename string, names ...string) ([]any, error) {
	attrs, err := attributes(src, filename)
	if err != nil {
		return nil, err
	}
	out := make([]any, len(names))
	for i, name := range names {
		a, ok := attrs[name]
		if !ok {
			continue
		}
		v, err := value(a)
		if err != nil {
			return nil, err
		}
		out[i] = v
	}
	return out, nil
}

// Object returns every attribute of an HCL body as one raw object.
func Object(src []byte, filename string) (map[string]any, error) {
	attrs, err := attributes(src, filename)
	if err != nil {
		return nil, err
	}
	out := make(map[string]any, len(attrs))
	for name, a := range attrs {
		v, err := value(a)
		if err != nil {
			return nil, err
		}
		out[name] = v
	}
	return out, nil
}

func attributes(src []byte, filename string) (hclv2.Attributes, error) {
	p := hclparse.NewParser()
	var (
		f     *hclv2.File
		diags hclv2.Diagnostics
	)
	if filepath.Ext(filename) == ".json" {
		f, diags = p.ParseJSON(src, filename)
	} else {
		f, diags = p.ParseHCL(src, filename)
	}
	if diags.HasErrors() {
		return nil, parseError("", diags)
	}
	attrs, diags := f.Body.JustAttributes()
	if diags.HasErrors() {
		return nil, parseError("", diags)
	}
	return attrs, nil
}

// value evaluates an attribute without variables or functions.
func value(a *hclv2.Attribute) (any, error) {
	v, diags := a.Expr.Value(nil)
	if diags.HasErrors() {
		return nil, parseError("/"+a.Name, diags)
	}
	raw, err := ToRaw(v)
	if err != nil {
		return nil, parseError("/"+a.Name, err)
	}
	return raw, nil
}

// ToRaw converts a cty value into wire data through its JSON encoding.
func ToRaw(v cty.Value) (any, error) {
	if v.IsNull() {
		return nil, nil
	}
	if !v.IsWhollyKnown() {
		return nil, errors.New("value is not known")
	}
	b, err := ctyjson.Marshal(v, v.Type())
	if err != nil {
		return nil, err
	}
	return condense.ParseWire(condense.GoJSONDriver().NewBytes(b), condense.ParseOpt{})
}

func parseError(path string, cause error) *condense.Error {
	return &condense.Error{
		Code:    condense.CodeParseError,
		Path:    path,
		Message: i18n.T(condense.CodeParseError, nil),
		Cause:   cause,
	}
}
