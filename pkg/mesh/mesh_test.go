package mesh_test

import (
	"testing"

	"github.com/leapstack-labs/leapcad/pkg/core"
	"github.com/leapstack-labs/leapcad/pkg/dxf"
	"github.com/leapstack-labs/leapcad/pkg/geom"
	"github.com/leapstack-labs/leapcad/pkg/mesh"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const tol = 1e-9

func tiltedContext(t *testing.T) geom.PlaneContext {
	t.Helper()
	def, err := geom.NewPlaneDefinition(geom.Vec3{1, -2, 3}, geom.Vec3{1, 2, 2})
	require.NoError(t, err)
	ctx, err := def.Context()
	require.NoError(t, err)
	return ctx
}

func contexts(t *testing.T) map[string]geom.PlaneContext {
	t.Helper()
	xy, err := geom.GlobalXY().Context()
	require.NoError(t, err)
	down, err := geom.PlaneDefinition{Normal: geom.Vec3{0, 0, -1}}.Context()
	require.NoError(t, err)
	return map[string]geom.PlaneContext{
		"global":  geom.GlobalXYContext(),
		"derived": xy,
		"down":    down,
		"tilted":  tiltedContext(t),
	}
}

func TestGenerators_IndicesValid(t *testing.T) {
	for name, ctx := range contexts(t) {
		t.Run(name, func(t *testing.T) {
			plane, err := mesh.Plane(geom.PlaneDefinition{Origin: ctx.Origin, Normal: ctx.Normal()}, 5)
			require.NoError(t, err)
			cuboid, err := mesh.CuboidFromDimensions(geom.Vec3{1, 2, 3}, ctx.Origin, mesh.Orientation{U: ctx.UAxis, V: ctx.VAxis, W: ctx.Normal()})
			require.NoError(t, err)

			all := map[string]mesh.Data{
				"point":     mesh.Point(1, 2, ctx),
				"line":      mesh.Line(0, 0, 1, 1, ctx),
				"triangle":  mesh.Triangle(0, 0, 1, 0, 0, 1, ctx),
				"circle":    mesh.Circle(0, 0, 2, ctx, 0),
				"arc":       mesh.Arc(0, 0, 2, 0, 90, ctx, 8),
				"polyline":  mesh.Polyline([]geom.Vec3{{0, 0, 0}, {1, 0, 0}, {1, 1, 0}}, true, ctx),
				"wireframe": mesh.CuboidWireframe(2, ctx),
				"cube":      mesh.CubeSolid(1, ctx),
				"sphere":    mesh.Sphere(1, ctx, 0),
				"cylinder":  mesh.Cylinder(1, 2, ctx, 0),
				"cone":      mesh.Cone(1, 2, ctx, 0),
				"plane":     plane,
				"cuboid":    cuboid,
				"corners":   mesh.CuboidFromCorners(geom.Vec3{1, 1, 1}, geom.Vec3{-1, 2, 4}),
			}
			for kind, d := range all {
				assert.NoError(t, d.Validate(), kind)
				assert.NotEmpty(t, d.Points, kind)
			}
		})
	}
}

func TestValidate_OutOfRange(t *testing.T) {
	d := mesh.Data{Points: []geom.Vec3{{}}, Cells: [][]int{{0, 1}}}
	require.ErrorIs(t, d.Validate(), mesh.ErrIndexOutOfRange)
}

func TestPoint_Line_Triangle(t *testing.T) {
	ctx := tiltedContext(t)

	p := mesh.Point(2, 3, ctx)
	assert.Equal(t, mesh.TopologyPoints, p.Topology)
	assert.Equal(t, [][]int{{0}}, p.Cells)
	assert.True(t, ctx.ToWorld(2, 3).ApproxEqualThreshold(p.Points[0], tol))

	l := mesh.Line(0, 0, 1, 2, ctx)
	assert.Equal(t, mesh.TopologyLines, l.Topology)
	assert.Equal(t, [][]int{{0, 1}}, l.Cells)
	assert.Equal(t, ctx.Origin, l.Points[0])

	tri := mesh.Triangle(0, 0, 1, 0, 0, 1, ctx)
	assert.Equal(t, mesh.TopologyPolygons, tri.Topology)
	assert.Equal(t, [][]int{{0, 1, 2}}, tri.Cells)
}

func TestCircle(t *testing.T) {
	ctx := geom.GlobalXYContext()
	d := mesh.Circle(0, 0, 1, ctx, 4)

	require.Len(t, d.Points, 5)
	assert.Equal(t, [][]int{{0, 1, 2, 3, 4}}, d.Cells)
	assert.Equal(t, mesh.TopologyLines, d.Topology)
	assert.True(t, d.Points[0].ApproxEqualThreshold(d.Points[4], tol), "closed loop")

	for _, p := range d.Points {
		assert.InDelta(t, 1, p.Sub(ctx.Origin).Len(), tol)
	}
	for i := 1; i < len(d.Points); i++ {
		assert.InDelta(t, d.Points[1].Sub(d.Points[0]).Len(), d.Points[i].Sub(d.Points[i-1]).Len(), tol)
	}
}

func TestCircle_DefaultSegments(t *testing.T) {
	d := mesh.Circle(1, 1, 3, tiltedContext(t), -1)
	assert.Len(t, d.Points, mesh.DefaultCircleSegments+1)
}

func TestArc(t *testing.T) {
	ctx := geom.GlobalXYContext()

	quarter := mesh.Arc(0, 0, 1, 0, 90, ctx, 2)
	require.Len(t, quarter.Points, 3)
	assert.True(t, geom.Vec3{1, 0, 0}.ApproxEqualThreshold(quarter.Points[0], tol))
	assert.True(t, geom.Vec3{0, 1, 0}.ApproxEqualThreshold(quarter.Points[2], tol))

	// 270 -> 0 wraps forward through 360
	wrapped := mesh.Arc(0, 0, 1, 270, 0, ctx, 2)
	assert.True(t, geom.Vec3{0, -1, 0}.ApproxEqualThreshold(wrapped.Points[0], tol))
	assert.True(t, geom.Vec3{1, 0, 0}.ApproxEqualThreshold(wrapped.Points[2], tol))
}

func TestPolyline(t *testing.T) {
	ctx := geom.GlobalXYContext()

	open := mesh.Polyline([]geom.Vec3{{0, 0, 0}, {1, 0, 0}}, false, ctx)
	assert.Equal(t, [][]int{{0, 1}}, open.Cells)

	closed := mesh.Polyline([]geom.Vec3{{0, 0, 0}, {1, 0, 0}, {1, 1, 0}}, true, ctx)
	assert.Equal(t, [][]int{{0, 1, 2, 0}}, closed.Cells)

	empty := mesh.Polyline(nil, true, ctx)
	assert.Empty(t, empty.Cells)
	assert.NoError(t, empty.Validate())
}

func TestCuboidWireframe(t *testing.T) {
	d := mesh.CuboidWireframe(2, geom.GlobalXYContext())
	assert.Equal(t, [][]int{{0, 1, 2, 3, 0}}, d.Cells)
	assert.Equal(t, []geom.Vec3{{-2, -2, 0}, {2, -2, 0}, {2, 2, 0}, {-2, 2, 0}}, d.Points)
}

// assertOutward checks that every face normal points away from the centroid.
func assertOutward(t *testing.T, d mesh.Data) {
	t.Helper()
	var centroid geom.Vec3
	for _, p := range d.Points {
		centroid = centroid.Add(p)
	}
	centroid = centroid.Mul(1 / float64(len(d.Points)))

	for i, cell := range d.Cells {
		var faceCenter geom.Vec3
		for _, idx := range cell {
			faceCenter = faceCenter.Add(d.Points[idx])
		}
		faceCenter = faceCenter.Mul(1 / float64(len(cell)))

		// Newell normal handles the degenerate pole triangles
		var n geom.Vec3
		for k := range cell {
			a, b := d.Points[cell[k]], d.Points[cell[(k+1)%len(cell)]]
			n = n.Add(a.Cross(b))
		}
		assert.Greater(t, n.Dot(faceCenter.Sub(centroid)), 0.0, "face %d %v winds inward", i, cell)
	}
}

func TestCubeSolid(t *testing.T) {
	for name, ctx := range contexts(t) {
		t.Run(name, func(t *testing.T) {
			d := mesh.CubeSolid(1.5, ctx)
			require.Len(t, d.Points, 8)
			require.Len(t, d.Cells, 6)
			assert.Equal(t, mesh.TopologyPolygons, d.Topology)
			assertOutward(t, d)

			for _, p := range d.Points {
				assert.InDelta(t, 1.5*1.7320508075688772, p.Sub(ctx.Origin).Len(), 1e-9)
			}
		})
	}
}

func TestCuboidFromDimensions(t *testing.T) {
	d, err := mesh.CuboidFromDimensions(geom.Vec3{2, 4, 6}, geom.Vec3{1, 1, 1}, mesh.WorldOrientation())
	require.NoError(t, err)

	lo, hi, ok := d.Bounds()
	require.True(t, ok)
	assert.Equal(t, geom.Vec3{0, -1, -2}, lo)
	assert.Equal(t, geom.Vec3{2, 3, 4}, hi)
	assertOutward(t, d)
}

func TestCuboidFromDimensions_LeftHanded(t *testing.T) {
	o := mesh.Orientation{U: geom.XAxis, V: geom.YAxis, W: geom.Vec3{0, 0, -2}}
	d, err := mesh.CuboidFromDimensions(geom.Vec3{1, 1, 1}, geom.Vec3{}, o)
	require.NoError(t, err)
	assertOutward(t, d)
}

func TestCuboidFromDimensions_Degenerate(t *testing.T) {
	o := mesh.Orientation{U: geom.XAxis, V: geom.Vec3{}, W: geom.ZAxis}
	_, err := mesh.CuboidFromDimensions(geom.Vec3{1, 1, 1}, geom.Vec3{}, o)
	require.ErrorIs(t, err, core.ErrDegenerateVector)
}

func TestCuboidFromCorners(t *testing.T) {
	d := mesh.CuboidFromCorners(geom.Vec3{3, 0, 2}, geom.Vec3{1, 4, -2})

	lo, hi, ok := d.Bounds()
	require.True(t, ok)
	assert.Equal(t, geom.Vec3{1, 0, -2}, lo)
	assert.Equal(t, geom.Vec3{3, 4, 2}, hi)
	assertOutward(t, d)
}

func TestSphere(t *testing.T) {
	for name, ctx := range contexts(t) {
		t.Run(name, func(t *testing.T) {
			d := mesh.Sphere(2, ctx, 8)
			assert.Len(t, d.Points, 2+7*8)
			assert.Len(t, d.Cells, 2*8+6*8)
			assertOutward(t, d)

			for _, p := range d.Points {
				assert.InDelta(t, 2, p.Sub(ctx.Origin).Len(), 1e-9)
			}
			north := ctx.Origin.Add(ctx.Normal().Mul(2))
			assert.True(t, north.ApproxEqualThreshold(d.Points[0], 1e-9))
		})
	}
}

func TestCylinder(t *testing.T) {
	for name, ctx := range contexts(t) {
		t.Run(name, func(t *testing.T) {
			d := mesh.Cylinder(1, 3, ctx, 6)
			assert.Len(t, d.Points, 12)
			assert.Len(t, d.Cells, 8)
			assertOutward(t, d)

			n := ctx.Normal()
			for i, p := range d.Points {
				h := p.Sub(ctx.Origin).Dot(n)
				if i < 6 {
					assert.InDelta(t, 0, h, 1e-9)
				} else {
					assert.InDelta(t, 3, h, 1e-9)
				}
			}
		})
	}
}

func TestCone(t *testing.T) {
	for name, ctx := range contexts(t) {
		t.Run(name, func(t *testing.T) {
			d := mesh.Cone(1, 2, ctx, 0)
			n := mesh.DefaultCylinderResolution
			assert.Len(t, d.Points, n+1)
			assert.Len(t, d.Cells, n+1)
			assertOutward(t, d)

			apex := ctx.Origin.Add(ctx.Normal().Mul(2))
			assert.True(t, apex.ApproxEqualThreshold(d.Points[n], 1e-9))
		})
	}
}

func TestPlane(t *testing.T) {
	def, err := geom.NewPlaneDefinition(geom.Vec3{0, 0, 2}, geom.Vec3{0, 0, 3})
	require.NoError(t, err)

	d, err := mesh.Plane(def, 10)
	require.NoError(t, err)
	require.NotNil(t, d.Plane)
	assert.Equal(t, def, *d.Plane)
	assert.Equal(t, [][]int{{0, 1, 2, 3}}, d.Cells)
	assert.Equal(t, def.Origin, d.Points[0])

	_, err = mesh.Plane(geom.PlaneDefinition{}, 10)
	require.ErrorIs(t, err, core.ErrDegenerateVector)
}

func TestOriginMarker(t *testing.T) {
	axes := mesh.OriginMarker(5)
	require.Len(t, axes, 3)

	wantEnds := []geom.Vec3{{5, 0, 0}, {0, 5, 0}, {0, 0, 5}}
	wantColors := []mesh.RGB{mesh.Red, mesh.Green, mesh.Blue}
	for i, d := range axes {
		assert.Equal(t, []geom.Vec3{{}, wantEnds[i]}, d.Points)
		require.NotNil(t, d.Color)
		assert.Equal(t, wantColors[i], *d.Color)
	}
}

func TestGenerators_Deterministic(t *testing.T) {
	ctx := tiltedContext(t)
	assert.Equal(t, mesh.Sphere(1, ctx, 10), mesh.Sphere(1, ctx, 10))
	assert.Equal(t, mesh.Cylinder(1, 2, ctx, 10), mesh.Cylinder(1, 2, ctx, 10))
}

func TestTranslate(t *testing.T) {
	def := geom.GlobalXY()
	d, err := mesh.Plane(def, 1)
	require.NoError(t, err)

	moved := d.Translate(geom.Vec3{1, 2, 3})
	assert.True(t, geom.Vec3{1, 2, 3}.ApproxEqualThreshold(moved.Points[0], tol))
	assert.Equal(t, geom.Vec3{1, 2, 3}, moved.Plane.Origin)
	assert.Equal(t, geom.Vec3{}, d.Points[0], "original untouched")
	assert.Equal(t, geom.Vec3{}, d.Plane.Origin)
}

func TestFromShape(t *testing.T) {
	ctx := geom.GlobalXYContext()

	tests := []struct {
		name     string
		shape    dxf.Shape
		points   int
		topology mesh.Topology
	}{
		{"line", &dxf.Line{Start: geom.Vec3{0, 0, 0}, End: geom.Vec3{1, 1, 0}}, 2, mesh.TopologyLines},
		{"circle", &dxf.Circle{Radius: 1}, 9, mesh.TopologyLines},
		{"arc", &dxf.Arc{Radius: 1, EndAngle: 180}, 9, mesh.TopologyLines},
		{"polyline", &dxf.Polyline{Vertices: []geom.Vec3{{}, {1, 0, 0}, {1, 1, 0}}, Closed: true}, 3, mesh.TopologyLines},
		{"text", &dxf.Text{Position: geom.Vec3{2, 3, 0}, Text: "A"}, 1, mesh.TopologyPoints},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			d, err := mesh.FromShape(tt.shape, ctx, 8)
			require.NoError(t, err)
			assert.Len(t, d.Points, tt.points)
			assert.Equal(t, tt.topology, d.Topology)
			assert.NoError(t, d.Validate())
		})
	}

	_, err := mesh.FromShape(nil, ctx, 8)
	require.ErrorIs(t, err, core.ErrInvalidOperation)
}

func TestFromShape_ZBecomesNormalOffset(t *testing.T) {
	d, err := mesh.FromShape(&dxf.Circle{Center: geom.Vec3{0, 0, 4}, Radius: 1}, geom.GlobalXYContext(), 4)
	require.NoError(t, err)
	for _, p := range d.Points {
		assert.InDelta(t, 4, p.Z(), tol)
	}
}
