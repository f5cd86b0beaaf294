package condense_test

import (
	"bytes"
	"encoding/json"
	"errors"
	"log/slog"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/require"

	"github.com/reoring/condense"
)

func TestInvoke_TextualArgument(t *testing.T) {
	ctx := condense.NewContext(newRegistry(t))
	mgr, err := condense.New[Manager](ctx)
	require.NoError(t, err)
	require.NotNil(t, mgr)

	_, err = ctx.Invoke(mgr, "init", `{"name":"Josiah"}`)
	require.NoError(t, err)
	require.NotNil(t, mgr.Person)
	require.Equal(t, "Josiah", mgr.Person.Name)
}

func TestCreate_ConstructorParameters(t *testing.T) {
	ctx := condense.NewContext(newRegistry(t))
	v, err := ctx.Create(condense.Of[Receiver](),
		`{"name":"Gerald","momma":{"name":"Wab"}}`,
		json.RawMessage(`{"name":"Josiah"}`))
	require.NoError(t, err)

	r, ok := v.(*Receiver)
	require.True(t, ok, "unexpected instance %T", v)
	require.Equal(t, "Josiah", r.Name)
	require.Equal(t, "Josiah", r.DTO.Name)
	require.Equal(t, "Gerald", r.Pet.Name)
	require.Equal(t, "Wab", r.Pet.Momma.Name)
	require.Equal(t, "Mommymommymommy!", r.Pet.SayHenlo())
}

func TestCreate_AliasedConfiguration(t *testing.T) {
	ctx := condense.NewContext(newRegistry(t))
	gm, err := condense.New[GraphManager](ctx, `{"load-resources":"loading them resources","production-mode":"true"}`)
	require.NoError(t, err)
	require.NotNil(t, gm.Configuration)
	require.Equal(t, "loading them resources", gm.Configuration.LoadResources)
	require.True(t, gm.Configuration.ProductionMode)
}

func TestCreate_MissingTrailingArgumentIsAbsent(t *testing.T) {
	ctx := condense.NewContext(newRegistry(t))
	r, err := condense.New[Receiver](ctx, `{"name":"Gerald"}`)
	require.NoError(t, err)
	require.Equal(t, "Gerald", r.Pet.Name)
	require.Nil(t, r.DTO)
	require.Empty(t, r.Name)
}

func TestCreate_ZeroArgumentPath(t *testing.T) {
	ctx := condense.NewContext(newRegistry(t))
	p, err := condense.New[Person](ctx)
	require.NoError(t, err)
	require.Equal(t, &Person{}, p)

	c, err := condense.New[Canvas](ctx)
	require.NoError(t, err)
	require.NotNil(t, c.Vertices, "declared constructor should run")

	_, err = condense.New[Person](ctx, `{"name":"x"}`)
	require.ErrorIs(t, err, condense.ErrUnboundParameter)
}

func TestCreate_UnknownShape(t *testing.T) {
	ctx := condense.NewContext(newRegistry(t))
	type Stranger struct{}
	_, err := ctx.Create(condense.Of[Stranger]())
	require.ErrorIs(t, err, condense.ErrUnknownShape)
}

func TestCreate_ParametersWithoutConstructor(t *testing.T) {
	type Loose struct{}
	reg := condense.NewRegistry()
	condense.Define[Loose]().MustRegister(reg)
	require.NoError(t, reg.DefineParameter(condense.Of[Loose](),
		condense.Parameter{Shape: condense.Text, Index: 0, Kind: condense.KindConstructor}))

	_, err := condense.NewContext(reg).Create(condense.Of[Loose](), `{}`)
	require.ErrorIs(t, err, condense.ErrRegistration)
}

func TestFormalParams_MatchesDirectReads(t *testing.T) {
	reg := newRegistry(t)
	ctx := condense.NewContext(reg)
	pet := map[string]any{"name": "Gerald", "momma": map[string]any{"name": "Wab"}}
	person := map[string]any{"name": "Josiah"}

	args, err := ctx.FormalParams(condense.Of[Receiver](), condense.KindConstructor, "", pet, person, "surplus")
	require.NoError(t, err)
	require.Len(t, args, 2)

	wantPet, err := condense.ReadAs[*Pet](mustDeserializer(t, reg, condense.Of[Pet]()), pet)
	require.NoError(t, err)
	wantPerson, err := condense.ReadAs[*Person](mustDeserializer(t, reg, condense.Of[Person]()), person)
	require.NoError(t, err)

	gotPet, _ := condense.One[*Pet](args[0])
	gotPerson, _ := condense.One[*Person](args[1])
	if diff := cmp.Diff(wantPet, gotPet); diff != "" {
		t.Fatalf("pet mismatch (-want +got):\n%s", diff)
	}
	if diff := cmp.Diff(wantPerson, gotPerson); diff != "" {
		t.Fatalf("person mismatch (-want +got):\n%s", diff)
	}
}

func TestFormalParams_Unbound(t *testing.T) {
	ctx := condense.NewContext(newRegistry(t))
	_, err := ctx.FormalParams(condense.Of[Manager](), condense.KindMethod, "nope", `{}`)
	require.ErrorIs(t, err, condense.ErrUnboundParameter)

	_, err = ctx.FormalParams(condense.Of[Person](), condense.KindConstructor, "")
	require.ErrorIs(t, err, condense.ErrUnboundParameter)
}

func TestInvoke_ParseFailureInvokesNothing(t *testing.T) {
	ctx := condense.NewContext(newRegistry(t))
	r, err := condense.New[Receiver](ctx)
	require.NoError(t, err)

	_, err = ctx.Invoke(r, "set", `{"name":`)
	require.ErrorIs(t, err, condense.ErrParse)
	e, ok := condense.AsError(err)
	require.True(t, ok)
	require.Equal(t, "/0", e.Path)
	require.Equal(t, "method set", e.Callable)
	require.Nil(t, r.Last, "method must not run after a parse failure")
}

func TestInvoke_InvalidPunctuationInvokesNothing(t *testing.T) {
	ctx := condense.NewContext(newRegistry(t))
	for _, in := range []string{`{"name" "Josiah"}`, `{"name":"Josiah",}`} {
		mgr, err := condense.New[Manager](ctx)
		require.NoError(t, err)
		_, err = ctx.Invoke(mgr, "init", in)
		require.ErrorIs(t, err, condense.ErrParse, "input %q", in)
		require.Nil(t, mgr.Person, "input %q", in)
	}
}

func TestCreate_LaterArgumentParseFailure(t *testing.T) {
	ctx := condense.NewContext(newRegistry(t))
	_, err := ctx.Create(condense.Of[Receiver](), `{"name":"Gerald"}`, `{"name":}`)
	require.ErrorIs(t, err, condense.ErrParse)
	e, _ := condense.AsError(err)
	require.Equal(t, "/1", e.Path)
	require.Equal(t, "constructor", e.Callable)
}

func TestInvoke_DuplicateKeyPolicy(t *testing.T) {
	ctx := condense.NewContext(newRegistry(t), condense.WithParseOpt(condense.ParseOpt{
		Strictness: condense.Strictness{OnDuplicateKey: condense.SeverityError},
	}))
	mgr := &Manager{}
	_, err := ctx.Invoke(mgr, "init", `{"name":"a","name":"b"}`)
	e, ok := condense.AsError(err)
	require.True(t, ok, "expected *Error, got %v", err)
	require.Equal(t, condense.CodeDuplicateKey, e.Code)
	require.Equal(t, "/0/name", e.Path)
	require.Nil(t, mgr.Person)
}

func TestInvoke_ReturnsMethodResult(t *testing.T) {
	ctx := condense.NewContext(newRegistry(t), condense.WithDriver(condense.StdJSONDriver()))
	r := &Receiver{}
	out, err := ctx.Invoke(r, "set", []byte(`{"name":"Josiah"}`))
	require.NoError(t, err)
	require.Same(t, r.Last, out)
}

func TestInvoke_Errors(t *testing.T) {
	ctx := condense.NewContext(newRegistry(t))

	_, err := ctx.Invoke(&struct{ X int }{}, "init")
	require.ErrorIs(t, err, condense.ErrUnknownShape)

	_, err = ctx.Invoke(nil, "init")
	require.ErrorIs(t, err, condense.ErrUnknownShape)

	_, err = ctx.Invoke(&Manager{}, "fly")
	require.ErrorIs(t, err, condense.ErrRegistration)
}

func TestInvoke_MethodWithoutParameters(t *testing.T) {
	type Clock struct{ Ticks int }
	reg := condense.NewRegistry()
	condense.Define[Clock]().
		Method("tick", func(c *Clock, _ condense.Args) (any, error) {
			c.Ticks++
			return c.Ticks, nil
		}).
		MustRegister(reg)
	ctx := condense.NewContext(reg)

	c := &Clock{}
	out, err := ctx.Invoke(c, "tick")
	require.NoError(t, err)
	require.Equal(t, 1, out)

	_, err = ctx.Invoke(c, "tick", `{}`)
	require.ErrorIs(t, err, condense.ErrUnboundParameter)
	require.Equal(t, 1, c.Ticks)
}

func TestInvoke_InheritedParameters(t *testing.T) {
	ctx := condense.NewContext(newRegistry(t))

	child := &Child{}
	_, err := ctx.Invoke(child, "set", `{"name":"Josiah"}`)
	require.NoError(t, err)
	require.Equal(t, "Josiah", child.Person.Name)
	require.Equal(t, 1, child.Calls)

	special := &Special{}
	_, err = ctx.Invoke(special, "set", `{"members":[{"name":"A"},{"name":"B"}]}`)
	require.NoError(t, err)
	require.Len(t, special.Group.Members, 2)
}

func TestRemote_Canvas(t *testing.T) {
	ctx := condense.NewContext(newRegistry(t))
	canvas, err := condense.New[Canvas](ctx)
	require.NoError(t, err)

	addVertex := ctx.Remote(canvas, "addVertex")
	_, err = addVertex(`{"x":null,"y":20,"width":80,"height":30,"label":"hello"}`)
	require.NoError(t, err)
	require.Len(t, canvas.Vertices, 1)
	require.Equal(t, &Vertex{Y: 20, Width: 80, Height: 30, Label: "hello"}, canvas.Vertices[0])

	n, err := ctx.Remote(canvas, "addVertices")(`[{"label":"a"},{"label":"b"}]`)
	require.NoError(t, err)
	require.Equal(t, 3, n)
	require.Equal(t, "a", canvas.Vertices[1].Label)
	require.Equal(t, "b", canvas.Vertices[2].Label)
}

func TestInvoke_DynamicArgument(t *testing.T) {
	ctx := condense.NewContext(newRegistry(t))
	bag := &Bag{}

	_, err := ctx.Invoke(bag, "add", `{"hello":"world"}`)
	require.NoError(t, err)
	_, err = ctx.Invoke(bag, "add", `[{"hello":"jorld"},{"hello":"borld"}]`)
	require.NoError(t, err)
	_, err = ctx.Invoke(bag, "add", map[string]any{"already": "parsed"})
	require.NoError(t, err)

	want := []any{
		map[string]any{"hello": "world"},
		map[string]any{"hello": "jorld"},
		map[string]any{"hello": "borld"},
		map[string]any{"already": "parsed"},
	}
	require.Equal(t, want, bag.Whatevers)
}

func TestContext_Logger(t *testing.T) {
	var buf bytes.Buffer
	logger := slog.New(slog.NewTextHandler(&buf, &slog.HandlerOptions{Level: slog.LevelDebug}))
	ctx := condense.NewContext(newRegistry(t), condense.WithLogger(logger))

	_, err := ctx.Invoke(&Manager{}, "init", `{"name":"Josiah"}`)
	require.NoError(t, err)
	require.Contains(t, buf.String(), "msg=invoke")
	require.Contains(t, buf.String(), "method=init")
	require.True(t, ctx.Registry().Frozen())
}

func TestContext_DeserializerForUsesParseOpt(t *testing.T) {
	ctx := condense.NewContext(newRegistry(t), condense.WithParseOpt(condense.ParseOpt{MaxDepth: 1}))
	d, err := ctx.DeserializerFor(condense.Of[Pet]())
	require.NoError(t, err)
	_, err = d.Read(`{"momma":{"name":"Wab"}}`)
	require.True(t, errors.Is(err, condense.ErrParse), "expected depth failure, got %v", err)
}

func TestFormalParams_TextualPrimitives(t *testing.T) {
	type Greeter struct{}
	reg := condense.NewRegistry()
	condense.Define[Greeter]().
		Method("greet", func(*Greeter, condense.Args) (any, error) { return nil, nil },
			condense.Text, condense.Number, condense.Boolean).
		MustRegister(reg)
	ctx := condense.NewContext(reg)

	args, err := ctx.FormalParams(condense.Of[Greeter](), condense.KindMethod, "greet", `"Josiah"`, "3", true)
	require.NoError(t, err)
	require.Equal(t, []any{"Josiah", 3.0, true}, args)

	_, err = ctx.FormalParams(condense.Of[Greeter](), condense.KindMethod, "greet", "Josiah")
	require.ErrorIs(t, err, condense.ErrParse)
}
