package condense_test

import (
	"testing"

	"github.com/reoring/condense"
)

type Person struct {
	Name string
}

type Pet struct {
	Name  string
	Momma *Person
}

func (p *Pet) SayHenlo() string { return "Mommymommymommy!" }

type Group struct {
	Members []*Person
}

type GraphConfiguration struct {
	LoadResources     string
	ForceIncludes     bool
	LoadStylesheets   bool
	ResourceExtension string
	ProductionMode    bool
	BasePath          string
}

type GraphManager struct {
	Configuration *GraphConfiguration
}

type Manager struct {
	Person *Person
}

type Receiver struct {
	Pet  *Pet
	DTO  *Person
	Name string
	Last *Person
}

type Vertex struct {
	X, Y, Width, Height float64
	Label               string
}

type Canvas struct {
	Vertices []*Vertex
}

type Bag struct {
	Whatevers []any
}

type Base struct {
	Person *Person
}

type Child struct {
	Base
	Calls int
}

type Special struct {
	Group *Group
}

type registrar interface {
	Register(*condense.Registry) error
}

func definitions() []registrar {
	return []registrar{
		condense.Define[Person]().
			Field(condense.Prop("name", condense.Text, func(p *Person, v string) { p.Name = v })),
		condense.Define[Pet]().
			Field(
				condense.Prop("name", condense.Text, func(p *Pet, v string) { p.Name = v }),
				condense.Prop("momma", condense.Of[Person](), func(p *Pet, v *Person) { p.Momma = v }),
			),
		condense.Define[Group]().
			Field(condense.List("members", condense.Of[Person](), func(g *Group, v []*Person) { g.Members = v })),
		condense.Define[GraphConfiguration]().
			Field(
				condense.Prop("loadResources", condense.Text, func(c *GraphConfiguration, v string) { c.LoadResources = v }).Alias("load-resources"),
				condense.Prop("forceIncludes", condense.Boolean, func(c *GraphConfiguration, v bool) { c.ForceIncludes = v }).Alias("force-includes"),
				condense.Prop("loadStylesheets", condense.Boolean, func(c *GraphConfiguration, v bool) { c.LoadStylesheets = v }).Alias("force-includes"),
				condense.Prop("resourceExtension", condense.Text, func(c *GraphConfiguration, v string) { c.ResourceExtension = v }).Alias("resource-extension"),
				condense.Prop("productionMode", condense.Boolean, func(c *GraphConfiguration, v bool) { c.ProductionMode = v }).Alias("production-mode"),
				condense.Prop("basePath", condense.Text, func(c *GraphConfiguration, v string) { c.BasePath = v }).Alias("base-path"),
			),
		condense.Define[GraphManager]().
			Constructor(func(a condense.Args) (*GraphManager, error) {
				cfg, _ := condense.Arg[*GraphConfiguration](a, 0)
				return &GraphManager{Configuration: cfg}, nil
			}, condense.Of[GraphConfiguration]()),
		condense.Define[Manager]().
			Method("init", func(m *Manager, a condense.Args) (any, error) {
				m.Person, _ = condense.Arg[*Person](a, 0)
				return nil, nil
			}, condense.Of[Person]()),
		condense.Define[Receiver]().
			Constructor(func(a condense.Args) (*Receiver, error) {
				r := &Receiver{}
				r.Pet, _ = condense.Arg[*Pet](a, 0)
				r.DTO, _ = condense.Arg[*Person](a, 1)
				if r.DTO != nil {
					r.Name = r.DTO.Name
				}
				return r, nil
			}, condense.Of[Pet](), condense.Of[Person]()).
			Method("set", func(r *Receiver, a condense.Args) (any, error) {
				r.Last, _ = condense.Arg[*Person](a, 0)
				return r.Last, nil
			}, condense.Of[Person]()),
		condense.Define[Vertex]().
			Field(
				condense.Prop("x", condense.Number, func(v *Vertex, f float64) { v.X = f }),
				condense.Prop("y", condense.Number, func(v *Vertex, f float64) { v.Y = f }),
				condense.Prop("width", condense.Number, func(v *Vertex, f float64) { v.Width = f }),
				condense.Prop("height", condense.Number, func(v *Vertex, f float64) { v.Height = f }),
				condense.Prop("label", condense.Text, func(v *Vertex, s string) { v.Label = s }),
			),
		condense.Define[Canvas]().
			Constructor(func(condense.Args) (*Canvas, error) { return &Canvas{Vertices: []*Vertex{}}, nil }).
			Method("addVertex", func(c *Canvas, a condense.Args) (any, error) {
				if v, ok := condense.Arg[*Vertex](a, 0); ok {
					c.Vertices = append(c.Vertices, v)
				}
				return nil, nil
			}, condense.Of[Vertex]()).
			Method("addVertices", func(c *Canvas, a condense.Args) (any, error) {
				c.Vertices = append(c.Vertices, condense.ArgList[*Vertex](a, 0)...)
				return len(c.Vertices), nil
			}, condense.Of[Vertex]()),
		condense.Define[Bag]().
			Method("add", func(b *Bag, a condense.Args) (any, error) {
				switch v := a.At(0).(type) {
				case []any:
					b.Whatevers = append(b.Whatevers, v...)
				case nil:
				default:
					b.Whatevers = append(b.Whatevers, v)
				}
				return nil, nil
			}, condense.Dynamic),
		condense.Define[Base]().
			Method("set", func(b *Base, a condense.Args) (any, error) {
				b.Person, _ = condense.Arg[*Person](a, 0)
				return nil, nil
			}, condense.Of[Person]()),
		condense.Define[Child]().
			Extends(condense.Of[Base]()).
			Method("set", func(c *Child, a condense.Args) (any, error) {
				c.Person, _ = condense.Arg[*Person](a, 0)
				c.Calls++
				return nil, nil
			}),
		condense.Define[Special]().
			Extends(condense.Of[Base]()).
			Method("set", func(s *Special, a condense.Args) (any, error) {
				s.Group, _ = condense.Arg[*Group](a, 0)
				return nil, nil
			}, condense.Of[Group]()),
	}
}

// newRegistry returns a frozen registry holding every fixture shape.
func newRegistry(t *testing.T) *condense.Registry {
	t.Helper()
	reg := condense.NewRegistry()
	for _, d := range definitions() {
		if err := d.Register(reg); err != nil {
			t.Fatalf("register: %v", err)
		}
	}
	reg.Freeze()
	return reg
}
