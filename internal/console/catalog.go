package console

import (
	"fmt"
	"slices"
	"strings"

	"github.com/leapstack-labs/leapcad/internal/scene"
	"github.com/leapstack-labs/leapcad/pkg/core"
	"github.com/leapstack-labs/leapcad/pkg/geom"
	"github.com/leapstack-labs/leapcad/pkg/mesh"
)

// Resolution holds the tessellation settings used by the catalog.
// Non-positive values select the mesh package defaults.
type Resolution struct {
	CircleSegments     int `koanf:"circle_segments"`
	SphereResolution   int `koanf:"sphere_resolution"`
	CylinderResolution int `koanf:"cylinder_resolution"`
}

// Param is one numeric argument of a primitive.
type Param struct {
	Name string
	// Positive rejects zero and negative values.
	Positive bool
}

// Primitive describes a creatable shape: its arguments, how to build it on
// a plane and how it is presented.
type Primitive struct {
	Name      string
	Label     string
	Summary   string
	Params    []Param
	Color     mesh.RGB
	PointSize float64
	Wireframe bool

	build func(args []float64, ctx geom.PlaneContext, res Resolution) (mesh.Data, error)
}

// Usage returns "name p1 p2 ...".
func (p *Primitive) Usage() string {
	names := make([]string, 0, len(p.Params)+1)
	names = append(names, p.Name)
	for _, param := range p.Params {
		names = append(names, param.Name)
	}
	return strings.Join(names, " ")
}

// Build checks args against the parameter list and generates the mesh.
func (p *Primitive) Build(args []float64, ctx geom.PlaneContext, res Resolution) (mesh.Data, error) {
	if len(args) != len(p.Params) {
		return mesh.Data{}, fmt.Errorf("%w: %s takes %d arguments, got %d (usage: %s)",
			core.ErrInvalidOperation, p.Name, len(p.Params), len(args), p.Usage())
	}
	for i, param := range p.Params {
		if param.Positive && args[i] <= 0 {
			return mesh.Data{}, fmt.Errorf("%w: %s %s must be positive, got %g",
				core.ErrInvalidOperation, p.Name, param.Name, args[i])
		}
	}
	return p.build(args, ctx, res)
}

// Properties returns the presentation hints for a new object named name.
func (p *Primitive) Properties(name string) scene.Properties {
	color := p.Color
	return scene.Properties{
		Name:      name,
		TypeLabel: p.Label,
		Color:     &color,
		PointSize: p.PointSize,
		Wireframe: p.Wireframe,
	}
}

func params(names ...string) []Param {
	out := make([]Param, len(names))
	for i, n := range names {
		out[i] = Param{Name: n}
	}
	return out
}

func positive(names ...string) []Param {
	out := params(names...)
	for i := range out {
		out[i].Positive = true
	}
	return out
}

func vec(a []float64) geom.Vec3 {
	return geom.Vec3{a[0], a[1], a[2]}
}

var primitives = []*Primitive{
	{
		Name: "point", Label: "Point", Summary: "a single vertex on the plane",
		Params: params("u", "v"), Color: mesh.RGB{1, 0, 0}, PointSize: 15,
		build: func(a []float64, ctx geom.PlaneContext, _ Resolution) (mesh.Data, error) {
			return mesh.Point(a[0], a[1], ctx), nil
		},
	},
	{
		Name: "line", Label: "Line", Summary: "a segment between two plane points",
		Params: params("u1", "v1", "u2", "v2"), Color: mesh.RGB{0, 1, 0},
		build: func(a []float64, ctx geom.PlaneContext, _ Resolution) (mesh.Data, error) {
			return mesh.Line(a[0], a[1], a[2], a[3], ctx), nil
		},
	},
	{
		Name: "triangle", Label: "Triangle", Summary: "a filled triangle on the plane",
		Params: params("u1", "v1", "u2", "v2", "u3", "v3"), Color: mesh.RGB{0, 0, 1},
		build: func(a []float64, ctx geom.PlaneContext, _ Resolution) (mesh.Data, error) {
			return mesh.Triangle(a[0], a[1], a[2], a[3], a[4], a[5], ctx), nil
		},
	},
	{
		Name: "circle", Label: "Circle", Summary: "a closed circle outline",
		Params: append(params("cu", "cv"), positive("r")...), Color: mesh.RGB{1, 1, 0},
		build: func(a []float64, ctx geom.PlaneContext, res Resolution) (mesh.Data, error) {
			return mesh.Circle(a[0], a[1], a[2], ctx, res.CircleSegments), nil
		},
	},
	{
		Name: "arc", Label: "Arc", Summary: "a counter-clockwise arc between two angles in degrees",
		Params: slices.Concat(params("cu", "cv"), positive("r"), params("start", "end")), Color: mesh.RGB{1, 1, 0},
		build: func(a []float64, ctx geom.PlaneContext, res Resolution) (mesh.Data, error) {
			return mesh.Arc(a[0], a[1], a[2], a[3], a[4], ctx, res.CircleSegments), nil
		},
	},
	{
		Name: "cuboid", Label: "Cuboid", Summary: "a square outline of half-size s",
		Params: positive("s"), Color: mesh.RGB{1, 0.5, 0}, Wireframe: true,
		build: func(a []float64, ctx geom.PlaneContext, _ Resolution) (mesh.Data, error) {
			return mesh.CuboidWireframe(a[0], ctx), nil
		},
	},
	{
		Name: "cube", Label: "Cube", Summary: "a solid cube of half-extent s on the plane origin",
		Params: positive("s"), Color: mesh.RGB{0.8, 0.2, 0.8},
		build: func(a []float64, ctx geom.PlaneContext, _ Resolution) (mesh.Data, error) {
			return mesh.CubeSolid(a[0], ctx), nil
		},
	},
	{
		Name: "sphere", Label: "Sphere", Summary: "a UV sphere on the plane origin",
		Params: positive("r"), Color: mesh.RGB{0.2, 0.8, 0.8},
		build: func(a []float64, ctx geom.PlaneContext, res Resolution) (mesh.Data, error) {
			return mesh.Sphere(a[0], ctx, res.SphereResolution), nil
		},
	},
	{
		Name: "cylinder", Label: "Cylinder", Summary: "a capped cylinder standing on the plane",
		Params: positive("r", "h"), Color: mesh.RGB{0.8, 0.8, 0.2},
		build: func(a []float64, ctx geom.PlaneContext, res Resolution) (mesh.Data, error) {
			return mesh.Cylinder(a[0], a[1], ctx, res.CylinderResolution), nil
		},
	},
	{
		Name: "cone", Label: "Cone", Summary: "a capped cone standing on the plane",
		Params: positive("r", "h"), Color: mesh.RGB{0.2, 0.4, 0.8},
		build: func(a []float64, ctx geom.PlaneContext, res Resolution) (mesh.Data, error) {
			return mesh.Cone(a[0], a[1], ctx, res.CylinderResolution), nil
		},
	},
	{
		Name: "box", Label: "Cuboid", Summary: "a solid box of full lengths around a world center, aligned with the plane",
		Params: slices.Concat(positive("l", "w", "h"), params("cx", "cy", "cz")), Color: mesh.RGB{0.9, 0.4, 0.1},
		build: func(a []float64, ctx geom.PlaneContext, _ Resolution) (mesh.Data, error) {
			o := mesh.Orientation{U: ctx.UAxis, V: ctx.VAxis, W: ctx.Normal()}
			return mesh.CuboidFromDimensions(vec(a[0:3]), vec(a[3:6]), o)
		},
	},
	{
		Name: "corners", Label: "Cuboid", Summary: "a world-aligned solid box spanned by two corners",
		Params: params("x1", "y1", "z1", "x2", "y2", "z2"), Color: mesh.RGB{0.9, 0.4, 0.1},
		build: func(a []float64, _ geom.PlaneContext, _ Resolution) (mesh.Data, error) {
			return mesh.CuboidFromCorners(vec(a[0:3]), vec(a[3:6])), nil
		},
	},
}

var primitivesByName = func() map[string]*Primitive {
	m := make(map[string]*Primitive, len(primitives))
	for _, p := range primitives {
		m[p.Name] = p
	}
	return m
}()

// Primitives returns the catalog in display order.
func Primitives() []*Primitive {
	return slices.Clone(primitives)
}

// LookupPrimitive finds a primitive by name.
func LookupPrimitive(name string) (*Primitive, bool) {
	p, ok := primitivesByName[strings.ToLower(name)]
	return p, ok
}
