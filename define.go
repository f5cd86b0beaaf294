package condense

// ShapeDescriptor is the registered form of a composite shape: its ordered
// fields, its zero-argument construction path and the callables it declares.
// It is immutable once registered.
type ShapeDescriptor struct {
	shape    Shape
	fields   []FieldDescriptor
	ancestor Shape
	alloc    func() any

	ctor       func(Args) (any, error)
	ctorParams []Shape
	methods    map[string]methodImpl
	order      []string
}

type methodImpl struct {
	fn     func(instance any, args Args) (any, error)
	params []Shape
}

// Shape returns the shape this descriptor was declared for.
func (d *ShapeDescriptor) Shape() Shape { return d.shape }

// Fields returns a copy of the declared fields in declaration order.
func (d *ShapeDescriptor) Fields() []FieldDescriptor {
	out := make([]FieldDescriptor, len(d.fields))
	copy(out, d.fields)
	return out
}

// Ancestor returns the declared ancestor shape, or the zero Shape.
func (d *ShapeDescriptor) Ancestor() Shape { return d.ancestor }

// HasMethod reports whether an implementation is declared for name.
func (d *ShapeDescriptor) HasMethod(name string) bool {
	_, ok := d.methods[name]
	return ok
}

// New allocates a fresh instance through the zero-argument path.
func (d *ShapeDescriptor) New() any { return d.alloc() }

// Definition builds the descriptor of a composite shape T.
//
//	condense.Define[Person]().
//	    Field(condense.Prop("name", condense.Text, func(p *Person, v string) { p.Name = v })).
//	    Descriptor()
type Definition[T any] struct {
	desc *ShapeDescriptor
}

// Define starts the declaration of shape T.
func Define[T any]() *Definition[T] {
	return &Definition[T]{desc: &ShapeDescriptor{
		shape:   Of[T](),
		alloc:   func() any { return new(T) },
		methods: map[string]methodImpl{},
	}}
}

// Field appends field declarations.
func (d *Definition[T]) Field(fields ...FieldDescriptor) *Definition[T] {
	d.desc.fields = append(d.desc.fields, fields...)
	return d
}

// Extends declares parent as the nearest ancestor; callables without
// parameters of their own reuse the ancestor's declarations.
func (d *Definition[T]) Extends(parent Shape) *Definition[T] {
	d.desc.ancestor = parent
	return d
}

// Constructor declares how Create builds T and the shapes it receives.
func (d *Definition[T]) Constructor(fn func(Args) (*T, error), params ...Shape) *Definition[T] {
	d.desc.ctor = func(a Args) (any, error) {
		v, err := fn(a)
		if err != nil {
			return nil, err
		}
		return v, nil
	}
	d.desc.ctorParams = params
	return d
}

// Method declares an invocable method of T and the shapes it receives.
func (d *Definition[T]) Method(name string, fn func(*T, Args) (any, error), params ...Shape) *Definition[T] {
	if _, seen := d.desc.methods[name]; !seen {
		d.desc.order = append(d.desc.order, name)
	}
	d.desc.methods[name] = methodImpl{
		fn: func(instance any, a Args) (any, error) {
			t, ok := instance.(*T)
			if !ok {
				return nil, registrationError(d.desc.shape, "method "+name+" needs a *"+d.desc.shape.String()+" receiver")
			}
			return fn(t, a)
		},
		params: params,
	}
	return d
}

// Descriptor returns the built descriptor.
func (d *Definition[T]) Descriptor() *ShapeDescriptor { return d.desc }

// Register registers the definition with reg.
func (d *Definition[T]) Register(reg *Registry) error { return reg.Register(d.desc) }

// MustRegister is like Register but panics on error.
func (d *Definition[T]) MustRegister(reg *Registry) {
	if err := reg.Register(d.desc); err != nil {
		panic(err)
	}
}
