package condense

import (
	"fmt"
	"log/slog"
	"reflect"
	"sort"
	"sync"
)

type callableKey struct {
	owner Shape
	Callable
}

// Registry stores shape descriptors and parameter declarations.
//
// Registration is a start-up phase: Register and DefineParameter are
// expected to happen before the first lookup, and Freeze marks the end of
// that phase. Writes are serialised, so late registration is memory-safe,
// but a deserialization running concurrently with a registration is not
// guaranteed a consistent view of the registry.
type Registry struct {
	mu     sync.RWMutex
	shapes map[Shape]*ShapeDescriptor
	byType map[reflect.Type]Shape
	params map[callableKey][]Parameter
	frozen bool
	logger *slog.Logger
}

// RegistryOption configures a Registry.
type RegistryOption func(*Registry)

// WithRegistryLogger sets the logger receiving registration events at debug level.
func WithRegistryLogger(l *slog.Logger) RegistryOption {
	return func(r *Registry) {
		if l != nil {
			r.logger = l
		}
	}
}

// NewRegistry returns an empty registry.
func NewRegistry(opts ...RegistryOption) *Registry {
	r := &Registry{
		shapes: map[Shape]*ShapeDescriptor{},
		byType: map[reflect.Type]Shape{},
		params: map[callableKey][]Parameter{},
		logger: slog.New(slog.DiscardHandler),
	}
	for _, o := range opts {
		o(r)
	}
	return r
}

// Register adds a composite shape. Registering an identical declaration
// again is a no-op; a conflicting one (fields, ancestor or callable
// parameters) fails with ErrRegistration. The
// descriptor's constructor and method parameters are defined as well.
func (r *Registry) Register(desc *ShapeDescriptor) error {
	if desc == nil || !desc.shape.IsComposite() {
		return registrationError(Shape{}, "nil or non-composite descriptor")
	}
	if err := checkDescriptor(desc); err != nil {
		return err
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	if r.frozen {
		return registrationError(desc.shape, "registry is frozen")
	}
	if prev, ok := r.shapes[desc.shape]; ok {
		if sameDeclaration(prev, desc) {
			r.logger.Debug("shape already registered", "shape", desc.shape.String())
			return nil
		}
		return registrationError(desc.shape, "conflicting declaration")
	}

	// stage parameters first so a bad declaration leaves no trace
	staged := make(map[callableKey][]Parameter)
	stage := func(c Callable, shapes []Shape) error {
		key := callableKey{owner: desc.shape, Callable: c}
		list := r.params[key]
		for i, s := range shapes {
			var err error
			list, err = insertParameter(list, Parameter{Shape: s, Index: i, Kind: c.Kind, Name: c.Name}, desc.shape)
			if err != nil {
				return err
			}
		}
		if len(shapes) > 0 {
			staged[key] = list
		}
		return nil
	}
	if err := stage(Callable{Kind: KindConstructor, Name: ConstructorName}, desc.ctorParams); err != nil {
		return err
	}
	for _, name := range desc.order {
		if err := stage(Callable{Kind: KindMethod, Name: name}, desc.methods[name].params); err != nil {
			return err
		}
	}

	r.shapes[desc.shape] = desc
	r.byType[desc.shape.typ] = desc.shape
	for key, list := range staged {
		r.params[key] = list
	}
	r.logger.Debug("shape registered",
		"shape", desc.shape.String(),
		"fields", len(desc.fields),
		"methods", len(desc.methods),
		"ancestor", desc.ancestor.String())
	return nil
}

// DefineParameter appends a parameter declaration for owner. Two
// declarations sharing an index for the same callable fail with
// ErrRegistration.
func (r *Registry) DefineParameter(owner Shape, p Parameter) error {
	if owner.IsZero() || !owner.IsComposite() {
		return registrationError(owner, "parameter owner must be a composite shape")
	}
	if p.Kind == KindConstructor {
		p.Name = ConstructorName
	}
	if p.Kind != KindConstructor && p.Kind != KindMethod {
		return registrationError(owner, "parameter kind must be constructor or method")
	}
	if p.Index < 0 {
		return registrationError(owner, fmt.Sprintf("negative parameter index %d", p.Index))
	}
	if p.Shape.IsZero() {
		return registrationError(owner, "parameter shape is not set")
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	if r.frozen {
		return registrationError(owner, "registry is frozen")
	}
	key := callableKey{owner: owner, Callable: p.Callable()}
	list, err := insertParameter(r.params[key], p, owner)
	if err != nil {
		return err
	}
	r.params[key] = list
	r.logger.Debug("parameter defined",
		"shape", owner.String(),
		"callable", p.Callable().String(),
		"index", p.Index,
		"param", p.Shape.String())
	return nil
}

// insertParameter returns list with p inserted in index order.
func insertParameter(list []Parameter, p Parameter, owner Shape) ([]Parameter, error) {
	i := sort.Search(len(list), func(i int) bool { return list[i].Index >= p.Index })
	if i < len(list) && list[i].Index == p.Index {
		return nil, registrationError(owner, fmt.Sprintf("%s index %d declared twice", p.Callable(), p.Index))
	}
	out := make([]Parameter, 0, len(list)+1)
	out = append(out, list[:i]...)
	out = append(out, p)
	out = append(out, list[i:]...)
	return out, nil
}

// Resolve returns every callable of owner with its ordered parameters,
// merging declarations inherited from the ancestor chain. Declarations of a
// nearer shape replace inherited ones for the same callable.
func (r *Registry) Resolve(owner Shape) map[Callable][]Parameter {
	r.mu.RLock()
	defer r.mu.RUnlock()
	chain := r.chainLocked(owner)
	out := make(map[Callable][]Parameter)
	for i := len(chain) - 1; i >= 0; i-- {
		for key, list := range r.params {
			if key.owner != chain[i] {
				continue
			}
			cp := make([]Parameter, len(list))
			copy(cp, list)
			out[key.Callable] = cp
		}
	}
	return out
}

// Parameters returns the ordered parameters of one callable, taken from the
// nearest shape in the ancestor chain that declares any. It fails with
// ErrUnboundParameter when none does, and with ErrRegistration when the
// declared indices are not contiguous from zero.
func (r *Registry) Parameters(owner Shape, kind Kind, name string) ([]Parameter, error) {
	c := Callable{Kind: kind, Name: name}
	if kind == KindConstructor {
		c.Name = ConstructorName
	}
	r.mu.RLock()
	defer r.mu.RUnlock()
	for _, s := range r.chainLocked(owner) {
		list := r.params[callableKey{owner: s, Callable: c}]
		if len(list) == 0 {
			continue
		}
		for i, p := range list {
			if p.Index != i {
				return nil, registrationError(s, fmt.Sprintf("%s has no parameter at index %d", c, i))
			}
		}
		out := make([]Parameter, len(list))
		copy(out, list)
		return out, nil
	}
	return nil, unboundParameterError(owner, c)
}

// chainLocked returns owner followed by its registered ancestors.
func (r *Registry) chainLocked(owner Shape) []Shape {
	chain := []Shape{owner}
	seen := map[Shape]bool{owner: true}
	cur := owner
	for {
		d, ok := r.shapes[cur]
		if !ok || d.ancestor.IsZero() || seen[d.ancestor] {
			return chain
		}
		cur = d.ancestor
		seen[cur] = true
		chain = append(chain, cur)
	}
}

// ShapeOf returns the descriptor of a registered composite shape.
func (r *Registry) ShapeOf(s Shape) (*ShapeDescriptor, error) {
	r.mu.RLock()
	d, ok := r.shapes[s]
	r.mu.RUnlock()
	if !ok {
		return nil, unknownShapeError(s.String())
	}
	return d, nil
}

// ShapeFor returns the registered shape of an instance (T or *T).
func (r *Registry) ShapeFor(instance any) (Shape, bool) {
	t := reflect.TypeOf(instance)
	if t == nil {
		return Shape{}, false
	}
	if t.Kind() == reflect.Pointer {
		t = t.Elem()
	}
	r.mu.RLock()
	s, ok := r.byType[t]
	r.mu.RUnlock()
	return s, ok
}

// Freeze ends the registration phase; later registrations fail.
func (r *Registry) Freeze() {
	r.mu.Lock()
	r.frozen = true
	r.mu.Unlock()
	r.logger.Debug("registry frozen")
}

// Frozen reports whether Freeze was called.
func (r *Registry) Frozen() bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.frozen
}

func checkDescriptor(desc *ShapeDescriptor) error {
	names := make(map[string]bool, len(desc.fields))
	for _, f := range desc.fields {
		if f.RealName == "" || f.set == nil {
			return registrationError(desc.shape, "field without name or setter")
		}
		if f.owner != desc.shape.typ {
			return registrationError(desc.shape, fmt.Sprintf("field %q is declared for %s", f.RealName, f.owner))
		}
		if f.Shape.IsZero() {
			return registrationError(desc.shape, fmt.Sprintf("field %q has no shape", f.RealName))
		}
		if names[f.RealName] {
			return registrationError(desc.shape, fmt.Sprintf("field %q declared twice", f.RealName))
		}
		names[f.RealName] = true
	}
	if desc.ancestor == desc.shape {
		return registrationError(desc.shape, "shape extends itself")
	}
	for _, s := range desc.ctorParams {
		if s.IsZero() {
			return registrationError(desc.shape, "constructor parameter has no shape")
		}
	}
	for name, m := range desc.methods {
		for _, s := range m.params {
			if s.IsZero() {
				return registrationError(desc.shape, fmt.Sprintf("method %q parameter has no shape", name))
			}
		}
	}
	return nil
}

// sameDeclaration reports whether two descriptors declare the same fields
// (alias, name and shape, in order), the same ancestor and the same callable
// parameter shapes.
func sameDeclaration(a, b *ShapeDescriptor) bool {
	if a.ancestor != b.ancestor || len(a.fields) != len(b.fields) {
		return false
	}
	for i := range a.fields {
		fa, fb := a.fields[i], b.fields[i]
		if fa.WireAlias != fb.WireAlias || fa.RealName != fb.RealName || fa.Shape != fb.Shape {
			return false
		}
	}
	if (a.ctor == nil) != (b.ctor == nil) || !sameShapes(a.ctorParams, b.ctorParams) {
		return false
	}
	if len(a.methods) != len(b.methods) {
		return false
	}
	for name, ma := range a.methods {
		mb, ok := b.methods[name]
		if !ok || !sameShapes(ma.params, mb.params) {
			return false
		}
	}
	return true
}

func sameShapes(a, b []Shape) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}
