package mesh

import (
	"fmt"
	"math"

	"github.com/go-gl/mathgl/mgl64"
	"github.com/leapstack-labs/leapcad/pkg/geom"
)

// minResolution is the smallest tessellation that still encloses a volume.
const minResolution = 3

// boxSigns are the local corner signs of a box. Bottom face first
// (counter-clockwise seen from +Z), then the top face.
var boxSigns = [8]geom.Vec3{
	{-1, -1, -1}, {1, -1, -1}, {1, 1, -1}, {-1, 1, -1},
	{-1, -1, 1}, {1, -1, 1}, {1, 1, 1}, {-1, 1, 1},
}

// boxFaces wind counter-clockwise seen from outside a right-handed box.
var boxFaces = [6][4]int{
	{0, 3, 2, 1}, // bottom
	{4, 5, 6, 7}, // top
	{0, 1, 5, 4},
	{2, 3, 7, 6},
	{0, 4, 7, 3},
	{1, 2, 6, 5},
}

// Orientation is the local frame of a cuboid.
type Orientation struct {
	U geom.Vec3 `json:"u" yaml:"u"`
	V geom.Vec3 `json:"v" yaml:"v"`
	W geom.Vec3 `json:"w" yaml:"w"`
}

// WorldOrientation is the frame of the world axes.
func WorldOrientation() Orientation {
	return Orientation{U: geom.XAxis, V: geom.YAxis, W: geom.ZAxis}
}

// box builds the 8 corners center + s·half along each frame axis and the
// 6 face cells. A left-handed frame reverses every face so the winding
// stays outward.
func box(center, half geom.Vec3, o Orientation) Data {
	points := make([]geom.Vec3, len(boxSigns))
	for i, s := range boxSigns {
		points[i] = center.
			Add(o.U.Mul(s[0] * half[0])).
			Add(o.V.Mul(s[1] * half[1])).
			Add(o.W.Mul(s[2] * half[2]))
	}

	leftHanded := o.U.Cross(o.V).Dot(o.W) < 0
	cells := make([][]int, len(boxFaces))
	for i, f := range boxFaces {
		if leftHanded {
			cells[i] = []int{f[3], f[2], f[1], f[0]}
		} else {
			cells[i] = []int{f[0], f[1], f[2], f[3]}
		}
	}
	return Data{Points: points, Cells: cells, Topology: TopologyPolygons}
}

// CubeSolid is a cube of half-extent side centred on the plane origin,
// using (u, v, u×v) as its frame.
func CubeSolid(side float64, ctx geom.PlaneContext) Data {
	o := Orientation{U: ctx.UAxis, V: ctx.VAxis, W: ctx.Normal()}
	return box(ctx.Origin, geom.Vec3{side, side, side}, o)
}

// CuboidFromDimensions is a box of full lengths dims (l, w, h) centred on
// center and aligned with the orientation axes, which are normalized first.
func CuboidFromDimensions(dims, center geom.Vec3, o Orientation) (Data, error) {
	var err error
	for _, axis := range []*geom.Vec3{&o.U, &o.V, &o.W} {
		if *axis, err = geom.Normalize(*axis); err != nil {
			return Data{}, fmt.Errorf("cuboid orientation: %w", err)
		}
	}
	return box(center, dims.Mul(0.5), o), nil
}

// CuboidFromCorners is the world-aligned box spanned by two opposite corners.
func CuboidFromCorners(p1, p2 geom.Vec3) Data {
	center := p1.Add(p2).Mul(0.5)
	half := geom.Vec3{
		math.Abs(p2[0]-p1[0]) / 2,
		math.Abs(p2[1]-p1[1]) / 2,
		math.Abs(p2[2]-p1[2]) / 2,
	}
	return box(center, half, WorldOrientation())
}

// aligned rotates local points built around +Z onto the plane normal and
// moves them to the plane origin.
func aligned(local []geom.Vec3, ctx geom.PlaneContext) []geom.Vec3 {
	q := Rotation(ctx)
	return mapPoints(local, func(p geom.Vec3) geom.Vec3 {
		return ctx.Origin.Add(q.Rotate(p))
	})
}

// ring returns n points of a circle of radius r at height z, counter-clockwise from +X.
func ring(r, z float64, n int) []geom.Vec3 {
	pts := make([]geom.Vec3, n)
	for i := range n {
		theta := 2 * math.Pi * float64(i) / float64(n)
		pts[i] = geom.Vec3{r * math.Cos(theta), r * math.Sin(theta), z}
	}
	return pts
}

// Sphere is a latitude/longitude tessellation centred on the plane origin
// with its poles on the plane normal. Index 0 is the pole along +normal,
// index 1 the opposite pole, followed by resolution-1 rings of resolution
// points each.
func Sphere(radius float64, ctx geom.PlaneContext, resolution int) Data {
	n := max(orDefault(resolution, DefaultSphereResolution), minResolution)

	local := []geom.Vec3{{0, 0, radius}, {0, 0, -radius}}
	for j := 1; j < n; j++ {
		phi := math.Pi * float64(j) / float64(n)
		local = append(local, ring(radius*math.Sin(phi), radius*math.Cos(phi), n)...)
	}

	at := func(j, i int) int { return 2 + (j-1)*n + i%n }
	cells := make([][]int, 0, n*n)
	for i := range n {
		cells = append(cells, []int{0, at(1, i), at(1, i+1)})
	}
	for j := 1; j < n-1; j++ {
		for i := range n {
			cells = append(cells, []int{at(j, i), at(j+1, i), at(j+1, i+1), at(j, i+1)})
		}
	}
	for i := range n {
		cells = append(cells, []int{1, at(n-1, i+1), at(n-1, i)})
	}

	return Data{Points: aligned(local, ctx), Cells: cells, Topology: TopologyPolygons}
}

// Cylinder has its base centred on the plane origin and extends height
// along the plane normal. Points are the base ring then the top ring.
func Cylinder(radius, height float64, ctx geom.PlaneContext, resolution int) Data {
	n := max(orDefault(resolution, DefaultCylinderResolution), minResolution)

	local := append(ring(radius, 0, n), ring(radius, height, n)...)
	cells := make([][]int, 0, n+2)
	for i := range n {
		next := (i + 1) % n
		cells = append(cells, []int{i, next, n + next, n + i})
	}
	cells = append(cells, reversed(sequence(n)))
	top := sequence(n)
	for i := range top {
		top[i] += n
	}
	cells = append(cells, top)

	return Data{Points: aligned(local, ctx), Cells: cells, Topology: TopologyPolygons}
}

// Cone has its base centred on the plane origin and its apex height along
// the plane normal. The apex is the last point.
func Cone(radius, height float64, ctx geom.PlaneContext, resolution int) Data {
	n := max(orDefault(resolution, DefaultCylinderResolution), minResolution)

	local := append(ring(radius, 0, n), geom.Vec3{0, 0, height})
	cells := make([][]int, 0, n+1)
	for i := range n {
		cells = append(cells, []int{i, (i + 1) % n, n})
	}
	cells = append(cells, reversed(sequence(n)))

	return Data{Points: aligned(local, ctx), Cells: cells, Topology: TopologyPolygons}
}

func reversed(idx []int) []int {
	for i, j := 0, len(idx)-1; i < j; i, j = i+1, j-1 {
		idx[i], idx[j] = idx[j], idx[i]
	}
	return idx
}

// Rotation is the rotation taking the canonical +Z up axis of a solid onto
// the plane normal.
func Rotation(ctx geom.PlaneContext) mgl64.Quat {
	return geom.AlignUp(geom.ZAxis, ctx.Normal())
}
