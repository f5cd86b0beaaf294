package condense

import (
	"encoding/json"
	"math"
	"math/bits"
	"strconv"
	"strings"

	gojson "github.com/goccy/go-json"
)

// Deserializer turns a raw value into a value of its shape. A nil result
// means absent.
type Deserializer interface {
	Read(raw any) (any, error)
}

// DeserializerFunc adapts a function to Deserializer.
type DeserializerFunc func(raw any) (any, error)

func (f DeserializerFunc) Read(raw any) (any, error) { return f(raw) }

// wireParser parses textual raw values met during dispatch.
type wireParser struct {
	driver JSONDriver
	opt    ParseOpt
}

func (p wireParser) parse(b []byte) (any, error) {
	d := p.driver
	if d == nil {
		d = CurrentJSONDriver()
	}
	return ParseBytes(d, b, p.opt)
}

// DeserializerFor returns the deserializer of s using the current JSON
// driver and default parse options for textual input.
func (r *Registry) DeserializerFor(s Shape) (Deserializer, error) {
	return r.deserializerFor(s, wireParser{})
}

// deserializerFor dispatches on s: primitive markers coerce, Dynamic passes
// through, registered composites bind structurally.
func (r *Registry) deserializerFor(s Shape, p wireParser) (Deserializer, error) {
	switch s.mark {
	case markText:
		return DeserializerFunc(readText), nil
	case markBoolean:
		return DeserializerFunc(readBoolean), nil
	case markNumber:
		return DeserializerFunc(readNumber), nil
	case markDynamic:
		return dynamicDeserializer{parser: p}, nil
	}
	desc, err := r.ShapeOf(s)
	if err != nil {
		return nil, err
	}
	return &structuralBinder{reg: r, desc: desc, parser: p}, nil
}

// Read deserializes raw with the deserializer of s.
func (r *Registry) Read(s Shape, raw any) (any, error) {
	d, err := r.DeserializerFor(s)
	if err != nil {
		return nil, err
	}
	return d.Read(raw)
}

// ReadAs deserializes raw against s and converts the result with One.
func ReadAs[T any](d Deserializer, raw any) (T, error) {
	var zero T
	v, err := d.Read(raw)
	if err != nil {
		return zero, err
	}
	out, _ := One[T](v)
	return out, nil
}

// readText coerces raw into a string. Containers become compact JSON.
func readText(raw any) (any, error) {
	switch v := raw.(type) {
	case nil:
		return nil, nil
	case string:
		return v, nil
	case json.Number:
		return v.String(), nil
	case float64:
		return strconv.FormatFloat(v, 'g', -1, 64), nil
	case bool:
		return strconv.FormatBool(v), nil
	case []byte:
		return string(v), nil
	case Bound:
		return nil, nil
	}
	b, err := gojson.Marshal(raw)
	if err != nil {
		return nil, nil
	}
	return string(b), nil
}

// readBoolean coerces raw into a bool; unconvertible input is absent.
func readBoolean(raw any) (any, error) {
	switch v := raw.(type) {
	case bool:
		return v, nil
	case string:
		b, err := strconv.ParseBool(strings.TrimSpace(v))
		if err != nil {
			return nil, nil
		}
		return b, nil
	}
	if f, ok := toFloat(raw); ok {
		return f != 0, nil
	}
	return nil, nil
}

// readNumber coerces raw into a float64; unconvertible input is absent.
func readNumber(raw any) (any, error) {
	switch v := raw.(type) {
	case bool:
		if v {
			return float64(1), nil
		}
		return float64(0), nil
	case string:
		f, err := strconv.ParseFloat(strings.TrimSpace(v), 64)
		if err != nil {
			return nil, nil
		}
		return f, nil
	}
	if f, ok := toFloat(raw); ok {
		return f, nil
	}
	return nil, nil
}

func toFloat(raw any) (float64, bool) {
	switch v := raw.(type) {
	case float64:
		return v, true
	case float32:
		return float64(v), true
	case json.Number:
		f, err := v.Float64()
		return f, err == nil
	case int:
		return float64(v), true
	case int8:
		return float64(v), true
	case int16:
		return float64(v), true
	case int32:
		return float64(v), true
	case int64:
		return float64(v), true
	case uint:
		return float64(v), true
	case uint8:
		return float64(v), true
	case uint16:
		return float64(v), true
	case uint32:
		return float64(v), true
	case uint64:
		return float64(v), true
	}
	return 0, false
}

// dynamicDeserializer passes parsed data through without field binding.
// Strings opening an object or array are parsed as wire text first.
type dynamicDeserializer struct{ parser wireParser }

func (d dynamicDeserializer) Read(raw any) (any, error) {
	if b, ok := textual(raw); ok && looksStructured(b) {
		return d.parser.parse(b)
	}
	return raw, nil
}

// convertNumber converts a float64 into the numeric type V. Fractional
// values only convert to float32; values outside V's range never convert.
func convertNumber[V any](f float64) (V, bool) {
	var zero V
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return zero, false
	}
	var out any
	switch any(zero).(type) {
	case float32:
		if math.Abs(f) > math.MaxFloat32 {
			return zero, false
		}
		v, ok := any(float32(f)).(V)
		return v, ok
	case int:
		if !intRange(f, bits.UintSize) {
			return zero, false
		}
		out = int(f)
	case int8:
		if !intRange(f, 8) {
			return zero, false
		}
		out = int8(f)
	case int16:
		if !intRange(f, 16) {
			return zero, false
		}
		out = int16(f)
	case int32:
		if !intRange(f, 32) {
			return zero, false
		}
		out = int32(f)
	case int64:
		if !intRange(f, 64) {
			return zero, false
		}
		out = int64(f)
	case uint:
		if !uintRange(f, bits.UintSize) {
			return zero, false
		}
		out = uint(f)
	case uint8:
		if !uintRange(f, 8) {
			return zero, false
		}
		out = uint8(f)
	case uint16:
		if !uintRange(f, 16) {
			return zero, false
		}
		out = uint16(f)
	case uint32:
		if !uintRange(f, 32) {
			return zero, false
		}
		out = uint32(f)
	case uint64:
		if !uintRange(f, 64) {
			return zero, false
		}
		out = uint64(f)
	default:
		return zero, false
	}
	if f != math.Trunc(f) {
		return zero, false
	}
	v, ok := out.(V)
	return v, ok
}

// intRange reports whether f fits a signed integer of the given width.
func intRange(f float64, width int) bool {
	lim := math.Ldexp(1, width-1)
	return f >= -lim && f < lim
}

// uintRange reports whether f fits an unsigned integer of the given width.
func uintRange(f float64, width int) bool {
	return f >= 0 && f < math.Ldexp(1, width)
}
