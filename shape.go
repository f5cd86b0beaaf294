package condense

import (
	"reflect"
)

type marker uint8

const (
	markNone marker = iota
	markText
	markBoolean
	markNumber
	markDynamic
)

// Shape identifies a declared data type: one of the primitive markers, the
// Dynamic marker, or a composite Go type obtained with Of.
type Shape struct {
	typ  reflect.Type
	mark marker
}

// Primitive and passthrough markers.
var (
	Text    = Shape{mark: markText}
	Boolean = Shape{mark: markBoolean}
	Number  = Shape{mark: markNumber}
	Dynamic = Shape{mark: markDynamic}
)

// Of returns the composite shape for T. Of[T] and Of[*T] are the same shape.
func Of[T any]() Shape {
	t := reflect.TypeFor[T]()
	if t.Kind() == reflect.Pointer {
		t = t.Elem()
	}
	return Shape{typ: t}
}

// IsPrimitive reports whether s is Text, Boolean or Number.
func (s Shape) IsPrimitive() bool {
	return s.mark == markText || s.mark == markBoolean || s.mark == markNumber
}

// IsDynamic reports whether s is the Dynamic marker.
func (s Shape) IsDynamic() bool { return s.mark == markDynamic }

// IsComposite reports whether s names a Go type.
func (s Shape) IsComposite() bool { return s.typ != nil }

// IsZero reports whether s is the zero Shape.
func (s Shape) IsZero() bool { return s.typ == nil && s.mark == markNone }

func (s Shape) String() string {
	switch s.mark {
	case markText:
		return "text"
	case markBoolean:
		return "boolean"
	case markNumber:
		return "number"
	case markDynamic:
		return "dynamic"
	}
	if s.typ == nil {
		return "<none>"
	}
	return s.typ.String()
}

// Kind distinguishes constructors from methods.
type Kind uint8

const (
	KindConstructor Kind = iota + 1
	KindMethod
)

func (k Kind) String() string {
	switch k {
	case KindConstructor:
		return "constructor"
	case KindMethod:
		return "method"
	}
	return "unknown"
}

// ConstructorName is the callable name used for constructors.
const ConstructorName = "constructor"

// Callable keys a constructor or method within its owning shape.
type Callable struct {
	Kind Kind
	Name string
}

func (c Callable) String() string {
	if c.Kind == KindConstructor {
		return ConstructorName
	}
	return c.Kind.String() + " " + c.Name
}

// Parameter declares the shape received at one position of a callable.
type Parameter struct {
	Shape Shape
	Index int
	Kind  Kind
	Name  string // method name, or ConstructorName
}

// Callable returns the key of the callable p belongs to.
func (p Parameter) Callable() Callable { return Callable{Kind: p.Kind, Name: p.Name} }

// FieldDescriptor declares one bindable field of a composite shape.
type FieldDescriptor struct {
	WireAlias string // key expected in raw input
	RealName  string // in-memory field identifier
	Shape     Shape

	owner reflect.Type
	set   func(instance, value any)
}

// Alias returns a copy of f read from the given wire key.
func (f FieldDescriptor) Alias(wire string) FieldDescriptor {
	f.WireAlias = wire
	return f
}

// Prop declares a single-valued field. The setter runs only when the bound
// value is present and converts to V; anything else leaves the field unset.
func Prop[T, V any](realName string, shape Shape, set func(*T, V)) FieldDescriptor {
	return field[T](realName, shape, func(t *T, v any) {
		if x, ok := One[V](v); ok {
			set(t, x)
		}
	})
}

// List declares a sequence-valued field. A single bound value arrives as a
// one-element list.
func List[T, E any](realName string, shape Shape, set func(*T, []E)) FieldDescriptor {
	return field[T](realName, shape, func(t *T, v any) { set(t, Many[E](v)) })
}

// Raw declares a field receiving the dispatcher output unchanged (a Bound
// for composite shapes, the coerced value for primitives, the passthrough
// data for Dynamic).
func Raw[T any](realName string, shape Shape, set func(*T, any)) FieldDescriptor {
	return field[T](realName, shape, set)
}

func field[T any](realName string, shape Shape, set func(*T, any)) FieldDescriptor {
	return FieldDescriptor{
		WireAlias: realName,
		RealName:  realName,
		Shape:     shape,
		owner:     reflect.TypeFor[T](),
		set:       func(instance, value any) { set(instance.(*T), value) },
	}
}

// Args holds the bound arguments of one call, in parameter order.
type Args []any

// At returns the i-th argument, or nil when absent.
func (a Args) At(i int) any {
	if i < 0 || i >= len(a) {
		return nil
	}
	return a[i]
}

// Arg converts the i-th argument with One.
func Arg[T any](a Args, i int) (T, bool) { return One[T](a.At(i)) }

// ArgList converts the i-th argument with Many.
func ArgList[E any](a Args, i int) []E { return Many[E](a.At(i)) }
