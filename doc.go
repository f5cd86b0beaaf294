// Package condense binds untyped wire data to typed Go object graphs and to
// the arguments of registered constructors and methods.
//
// It provides:
//
// - A Registry of composite shapes (fields with wire aliases and typed
// setters) and of the parameters of their callables, with ancestor fallback.
// - A dispatcher (DeserializerFor) that coerces primitives, passes Dynamic
// data through and binds composite shapes structurally, producing a Bound
// single instance or sequence depending on the raw data.
// - A Context that parses textual arguments and binds them to callables
// (FormalParams, Create, Invoke, Remote).
//
// Design policy:
// - Keep only public APIs in the root package; put token decoding and
// enforcement under internal/engine.
// - Wire drivers live under source/ (go-json by default, encoding/json,
// YAML, and HCL attribute decoding).
// - Registration is a start-up phase; call Registry.Freeze when it is over.
//
// Typical usage:
//
//	reg := condense.NewRegistry()
//	condense.Define[Person]().
//	    Field(condense.Prop("name", condense.Text, func(p *Person, v string) { p.Name = v })).
//	    MustRegister(reg)
//	condense.Define[Manager]().
//	    Method("init", func(m *Manager, a condense.Args) (any, error) {
//	        m.Person, _ = condense.Arg[*Person](a, 0)
//	        return nil, nil
//	    }, condense.Of[Person]()).
//	    MustRegister(reg)
//	reg.Freeze()
//
//	ctx := condense.NewContext(reg)
//	mgr, _ := condense.New[Manager](ctx)
//	_, err := ctx.Invoke(mgr, "init", `{"name":"Josiah"}`)
package condense
