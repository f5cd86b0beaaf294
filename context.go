package condense

import (
	"fmt"
	"log/slog"
	"strconv"
)

// Context binds raw arguments to registered callables. It holds no state
// besides its configuration; one Context may serve concurrent calls once the
// registry's start-up phase is over.
type Context struct {
	reg    *Registry
	parser wireParser
	logger *slog.Logger
}

// ContextOption configures a Context.
type ContextOption func(*Context)

// WithParseOpt sets the options used to parse textual arguments.
func WithParseOpt(opt ParseOpt) ContextOption {
	return func(c *Context) { c.parser.opt = opt }
}

// WithDriver sets the driver used to parse textual arguments instead of the
// current global driver.
func WithDriver(d JSONDriver) ContextOption {
	return func(c *Context) { c.parser.driver = d }
}

// WithLogger sets the logger receiving binding events at debug level.
func WithLogger(l *slog.Logger) ContextOption {
	return func(c *Context) {
		if l != nil {
			c.logger = l
		}
	}
}

// NewContext returns a Context reading declarations from reg.
func NewContext(reg *Registry, opts ...ContextOption) *Context {
	c := &Context{reg: reg, logger: slog.New(slog.DiscardHandler)}
	for _, o := range opts {
		o(c)
	}
	return c
}

// Registry returns the registry c reads from.
func (c *Context) Registry() *Registry { return c.reg }

// DeserializerFor returns the deserializer of s, parsing textual input with
// the options of c.
func (c *Context) DeserializerFor(s Shape) (Deserializer, error) {
	return c.reg.deserializerFor(s, c.parser)
}

// FormalParams binds raw arguments to the parameters of a callable of owner.
// Textual arguments (string, []byte, json.RawMessage) are parsed as wire text
// before any argument is dispatched, so a parse failure binds nothing.
// Missing trailing arguments are absent and surplus ones are ignored. The
// result has one entry per declared parameter, in index order.
func (c *Context) FormalParams(owner Shape, kind Kind, name string, raw ...any) ([]any, error) {
	params, err := c.reg.Parameters(owner, kind, name)
	if err != nil {
		return nil, err
	}
	return c.bind(owner, params, raw)
}

func (c *Context) bind(owner Shape, params []Parameter, raw []any) (Args, error) {
	callable := params[0].Callable()
	values := make([]any, len(params))
	for i := range params {
		if i >= len(raw) {
			continue
		}
		values[i] = raw[i]
		if text, ok := textual(raw[i]); ok {
			v, err := c.parser.parse(text)
			if err != nil {
				return nil, withCallable(rebase(err, strconv.Itoa(i)), owner, callable)
			}
			values[i] = v
		}
	}

	out := make(Args, len(params))
	for i, p := range params {
		d, err := c.DeserializerFor(p.Shape)
		if err != nil {
			return nil, withCallable(err, owner, callable)
		}
		v, err := d.Read(values[i])
		if err != nil {
			return nil, withCallable(rebase(err, strconv.Itoa(i)), owner, callable)
		}
		out[i] = v
	}
	c.logger.Debug("arguments bound",
		"shape", owner.String(),
		"callable", callable.String(),
		"params", len(params),
		"args", len(raw))
	return out, nil
}

// callableArgs binds raw for a callable that may declare no parameters: such
// a callable accepts an empty argument list only.
func (c *Context) callableArgs(owner Shape, kind Kind, name string, raw []any) (Args, error) {
	params, err := c.reg.Parameters(owner, kind, name)
	if err != nil {
		if len(raw) == 0 && isUnbound(err) {
			return Args{}, nil
		}
		return nil, err
	}
	return c.bind(owner, params, raw)
}

func isUnbound(err error) bool {
	e, ok := AsError(err)
	return ok && e.Code == CodeUnboundParameter
}

// Create binds raw to the constructor parameters of shape (own or inherited)
// and builds an instance with the declared constructor. Without constructor
// parameters and raw arguments the instance comes from the constructor
// called with no arguments, or from the zero-argument path when no
// constructor is declared.
func (c *Context) Create(shape Shape, raw ...any) (any, error) {
	desc, err := c.reg.ShapeOf(shape)
	if err != nil {
		return nil, err
	}
	args, err := c.callableArgs(shape, KindConstructor, ConstructorName, raw)
	if err != nil {
		return nil, err
	}
	if desc.ctor == nil {
		if len(args) > 0 {
			return nil, registrationError(shape, "constructor parameters declared without a constructor")
		}
		return desc.alloc(), nil
	}
	c.logger.Debug("create", "shape", shape.String(), "args", len(args))
	return desc.ctor(args)
}

// New is the typed form of Create.
func New[T any](c *Context, raw ...any) (*T, error) {
	v, err := c.Create(Of[T](), raw...)
	if err != nil {
		return nil, err
	}
	t, _ := v.(*T)
	return t, nil
}

// Invoke binds raw to the parameters of the named method of the instance's
// registered shape (own or inherited) and calls the method.
func (c *Context) Invoke(instance any, method string, raw ...any) (any, error) {
	shape, ok := c.reg.ShapeFor(instance)
	if !ok {
		name := "<nil>"
		if instance != nil {
			name = typeName(instance)
		}
		return nil, unknownShapeError(name)
	}
	desc, err := c.reg.ShapeOf(shape)
	if err != nil {
		return nil, err
	}
	impl, ok := desc.methods[method]
	if !ok {
		return nil, registrationError(shape, "method "+method+" is not declared")
	}
	args, err := c.callableArgs(shape, KindMethod, method, raw)
	if err != nil {
		return nil, err
	}
	c.logger.Debug("invoke", "shape", shape.String(), "method", method, "args", len(args))
	return impl.fn(instance, args)
}

// Remote returns a function that invokes method on instance, binding the raw
// arguments of every call.
func (c *Context) Remote(instance any, method string) func(raw ...any) (any, error) {
	return func(raw ...any) (any, error) { return c.Invoke(instance, method, raw...) }
}

func typeName(v any) string { return fmt.Sprintf("%T", v) }
