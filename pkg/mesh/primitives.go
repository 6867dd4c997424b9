package mesh

import (
	"math"

	"github.com/leapstack-labs/leapcad/pkg/geom"
)

// Default tessellation resolutions. Generators fall back to these when
// given a non-positive value.
const (
	DefaultCircleSegments     = 100
	DefaultSphereResolution   = 20
	DefaultCylinderResolution = 30
)

func orDefault(n, def int) int {
	if n <= 0 {
		return def
	}
	return n
}

// Point is a single vertex on the plane.
func Point(u, v float64, ctx geom.PlaneContext) Data {
	return Data{
		Points:   []geom.Vec3{ctx.ToWorld(u, v)},
		Cells:    [][]int{{0}},
		Topology: TopologyPoints,
	}
}

// Line is a segment between two plane points.
func Line(u1, v1, u2, v2 float64, ctx geom.PlaneContext) Data {
	return Data{
		Points:   []geom.Vec3{ctx.ToWorld(u1, v1), ctx.ToWorld(u2, v2)},
		Cells:    [][]int{{0, 1}},
		Topology: TopologyLines,
	}
}

// Triangle is a filled triangle on the plane.
func Triangle(u1, v1, u2, v2, u3, v3 float64, ctx geom.PlaneContext) Data {
	return Data{
		Points:   []geom.Vec3{ctx.ToWorld(u1, v1), ctx.ToWorld(u2, v2), ctx.ToWorld(u3, v3)},
		Cells:    [][]int{{0, 1, 2}},
		Topology: TopologyPolygons,
	}
}

// Circle is a closed line strip of segments+1 points, the first point
// repeated as the last.
func Circle(cu, cv, r float64, ctx geom.PlaneContext, segments int) Data {
	segments = orDefault(segments, DefaultCircleSegments)
	points := make([]geom.Vec3, 0, segments+1)
	for i := 0; i <= segments; i++ {
		angle := 2 * math.Pi * float64(i) / float64(segments)
		points = append(points, ctx.ToWorld(cu+r*math.Cos(angle), cv+r*math.Sin(angle)))
	}
	return Data{
		Points:   points,
		Cells:    [][]int{sequence(len(points))},
		Topology: TopologyLines,
	}
}

// Arc is an open line strip from startDeg counter-clockwise to endDeg.
// An end angle at or before the start wraps by a full turn.
func Arc(cu, cv, r, startDeg, endDeg float64, ctx geom.PlaneContext, segments int) Data {
	segments = orDefault(segments, DefaultCircleSegments)
	sweep := endDeg - startDeg
	if sweep <= 0 {
		sweep += 360
	}
	start := startDeg * math.Pi / 180
	step := sweep * math.Pi / 180 / float64(segments)

	points := make([]geom.Vec3, 0, segments+1)
	for i := 0; i <= segments; i++ {
		angle := start + step*float64(i)
		points = append(points, ctx.ToWorld(cu+r*math.Cos(angle), cv+r*math.Sin(angle)))
	}
	return Data{
		Points:   points,
		Cells:    [][]int{sequence(len(points))},
		Topology: TopologyLines,
	}
}

// Polyline maps local vertices (u, v, offset along the normal) onto the
// plane as one line strip. A closed polyline repeats its first index.
func Polyline(vertices []geom.Vec3, closed bool, ctx geom.PlaneContext) Data {
	d := Data{
		Points:   mapPoints(vertices, ctx.Local),
		Topology: TopologyLines,
	}
	if len(vertices) == 0 {
		return d
	}
	cell := sequence(len(vertices))
	if closed && len(vertices) > 1 {
		cell = append(cell, 0)
	}
	d.Cells = [][]int{cell}
	return d
}

// CuboidWireframe is the square outline (±size, ±size) on the plane.
func CuboidWireframe(size float64, ctx geom.PlaneContext) Data {
	return Data{
		Points: []geom.Vec3{
			ctx.ToWorld(-size, -size),
			ctx.ToWorld(size, -size),
			ctx.ToWorld(size, size),
			ctx.ToWorld(-size, size),
		},
		Cells:    [][]int{{0, 1, 2, 3, 0}},
		Topology: TopologyLines,
	}
}

// Plane is the visual quad of a working plane: one corner at the origin and
// edges size·u and size·v along the plane's derived axes. The definition
// rides along on the result.
func Plane(def geom.PlaneDefinition, size float64) (Data, error) {
	ctx, err := def.Context()
	if err != nil {
		return Data{}, err
	}
	return Data{
		Points: []geom.Vec3{
			ctx.ToWorld(0, 0),
			ctx.ToWorld(size, 0),
			ctx.ToWorld(size, size),
			ctx.ToWorld(0, size),
		},
		Cells:    [][]int{{0, 1, 2, 3}},
		Topology: TopologyPolygons,
		Plane:    &def,
	}, nil
}

// OriginMarker returns three lines of the given length along world X, Y
// and Z, colored red, green and blue.
func OriginMarker(size float64) []Data {
	axes := []struct {
		dir   geom.Vec3
		color RGB
	}{
		{geom.XAxis, Red},
		{geom.YAxis, Green},
		{geom.ZAxis, Blue},
	}

	out := make([]Data, 0, len(axes))
	for _, a := range axes {
		color := a.color
		out = append(out, Data{
			Points:   []geom.Vec3{{}, a.dir.Mul(size)},
			Cells:    [][]int{{0, 1}},
			Topology: TopologyLines,
			Color:    &color,
		})
	}
	return out
}
