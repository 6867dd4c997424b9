package mesh

import (
	"errors"
	"fmt"
	"math"

	"github.com/leapstack-labs/leapcad/pkg/geom"
)

// ErrIndexOutOfRange is returned by Validate for a cell index past the point list.
var ErrIndexOutOfRange = errors.New("cell index out of range")

// Topology is how cells are interpreted.
type Topology string

// Topology kinds.
const (
	TopologyPoints   Topology = "points"
	TopologyLines    Topology = "lines"
	TopologyPolygons Topology = "polygons"
)

// RGB is a color with components in [0, 1].
type RGB [3]float64

// Marker colors.
var (
	Red   = RGB{1, 0, 0}
	Green = RGB{0, 1, 0}
	Blue  = RGB{0, 0, 1}
)

// Data is a point list plus index cells.
type Data struct {
	Points   []geom.Vec3 `json:"points" yaml:"points,flow"`
	Cells    [][]int     `json:"cells" yaml:"cells,flow"`
	Topology Topology    `json:"topology" yaml:"topology"`
	// Color is presentation metadata; nil means the presenter decides.
	Color *RGB `json:"color,omitempty" yaml:"color,omitempty,flow"`
	// Plane is set on the visual quad of a working plane.
	Plane *geom.PlaneDefinition `json:"plane,omitempty" yaml:"plane,omitempty"`
}

// Validate checks that every cell index refers to an existing point.
func (d Data) Validate() error {
	for ci, cell := range d.Cells {
		for _, idx := range cell {
			if idx < 0 || idx >= len(d.Points) {
				return fmt.Errorf("%w: cell %d index %d with %d points", ErrIndexOutOfRange, ci, idx, len(d.Points))
			}
		}
	}
	return nil
}

// Translate returns a copy of d with every point moved by offset.
func (d Data) Translate(offset geom.Vec3) Data {
	out := d
	out.Points = make([]geom.Vec3, len(d.Points))
	for i, p := range d.Points {
		out.Points[i] = p.Add(offset)
	}
	if d.Plane != nil {
		plane := *d.Plane
		plane.Origin = plane.Origin.Add(offset)
		out.Plane = &plane
	}
	return out
}

// Bounds returns the axis-aligned bounding box of the points.
// ok is false for an empty mesh.
func (d Data) Bounds() (lo, hi geom.Vec3, ok bool) {
	if len(d.Points) == 0 {
		return geom.Vec3{}, geom.Vec3{}, false
	}
	lo = geom.Vec3{math.Inf(1), math.Inf(1), math.Inf(1)}
	hi = geom.Vec3{math.Inf(-1), math.Inf(-1), math.Inf(-1)}
	for _, p := range d.Points {
		for i := range 3 {
			lo[i] = math.Min(lo[i], p[i])
			hi[i] = math.Max(hi[i], p[i])
		}
	}
	return lo, hi, true
}

// mapPoints applies fn to each local point.
func mapPoints(local []geom.Vec3, fn func(geom.Vec3) geom.Vec3) []geom.Vec3 {
	out := make([]geom.Vec3, len(local))
	for i, p := range local {
		out[i] = fn(p)
	}
	return out
}

// sequence returns the indices 0..n-1.
func sequence(n int) []int {
	idx := make([]int, n)
	for i := range idx {
		idx[i] = i
	}
	return idx
}
