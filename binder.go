package condense

import (
	"strconv"
)

// Bound is the result of binding raw data against a composite shape: either
// one instance or an ordered sequence of instances, decided by whether the
// raw value was an object or an array.
type Bound struct {
	one  any
	many []any
	seq  bool
}

// Single wraps one bound instance.
func Single(v any) Bound { return Bound{one: v} }

// Sequence wraps an ordered sequence of bound instances.
func Sequence(vs []any) Bound { return Bound{many: vs, seq: true} }

// IsSequence reports whether b holds a sequence.
func (b Bound) IsSequence() bool { return b.seq }

// Single returns the instance, or nil for a sequence.
func (b Bound) Single() any { return b.one }

// Sequence returns the instances, or nil for a single instance.
func (b Bound) Sequence() []any { return b.many }

// Len returns the number of instances held.
func (b Bound) Len() int {
	if b.seq {
		return len(b.many)
	}
	if b.one == nil {
		return 0
	}
	return 1
}

// One converts a bound value into T. It unwraps single Bound values and
// converts float64 into other numeric types; it reports false for absent
// values, sequences and mismatched types.
func One[T any](v any) (T, bool) {
	var zero T
	if v == nil {
		return zero, false
	}
	if t, ok := v.(T); ok {
		return t, true
	}
	switch x := v.(type) {
	case Bound:
		if x.seq {
			return zero, false
		}
		return One[T](x.one)
	case float64:
		return convertNumber[T](x)
	}
	return zero, false
}

// Many converts a bound value into []T. Sequences keep their order, a single
// value becomes a one-element list, and elements that do not convert to T
// are dropped.
func Many[T any](v any) []T {
	switch x := v.(type) {
	case nil:
		return nil
	case []T:
		return x
	case Bound:
		if !x.seq {
			if t, ok := One[T](x.one); ok {
				return []T{t}
			}
			return nil
		}
		return collect[T](x.many)
	case []any:
		return collect[T](x)
	}
	if t, ok := One[T](v); ok {
		return []T{t}
	}
	return nil
}

func collect[T any](vs []any) []T {
	out := make([]T, 0, len(vs))
	for _, e := range vs {
		if t, ok := One[T](e); ok {
			out = append(out, t)
		}
	}
	return out
}

// structuralBinder binds raw objects to fresh instances of one composite shape.
type structuralBinder struct {
	reg    *Registry
	desc   *ShapeDescriptor
	parser wireParser
	nested bool
}

// Read binds an object into Single, an array into Sequence (one instance per
// element, in order) and returns nil for absent or scalar input. Textual
// input is parsed first; nested textual values are scalars and stay absent.
func (b *structuralBinder) Read(raw any) (any, error) {
	if text, ok := textual(raw); ok && !b.nested {
		v, err := b.parser.parse(text)
		if err != nil {
			return nil, err
		}
		raw = v
	}
	switch v := raw.(type) {
	case map[string]any:
		inst, err := b.bind(v)
		if err != nil {
			return nil, err
		}
		return Single(inst), nil
	case []any:
		out := make([]any, 0, len(v))
		for i, el := range v {
			m, _ := el.(map[string]any)
			inst, err := b.bind(m)
			if err != nil {
				return nil, rebase(err, strconv.Itoa(i))
			}
			out = append(out, inst)
		}
		return Sequence(out), nil
	}
	return nil, nil
}

// bind allocates an instance and assigns every declared field from m.
// Missing keys leave the field unset; undeclared keys are ignored.
func (b *structuralBinder) bind(m map[string]any) (any, error) {
	inst := b.desc.alloc()
	for _, f := range b.desc.fields {
		d, err := b.reg.deserializerFor(f.Shape, b.parser)
		if err != nil {
			return nil, rebase(err, f.WireAlias)
		}
		if sb, ok := d.(*structuralBinder); ok {
			sb.nested = true
		}
		v, err := d.Read(m[f.WireAlias])
		if err != nil {
			return nil, rebase(err, f.WireAlias)
		}
		if v != nil {
			f.set(inst, v)
		}
	}
	return inst, nil
}
