package geom

import (
	"fmt"
)

// PlaneContext is an origin plus two orthonormal in-plane axes.
type PlaneContext struct {
	Origin Vec3 `json:"origin" yaml:"origin"`
	UAxis  Vec3 `json:"u_axis" yaml:"u_axis"`
	VAxis  Vec3 `json:"v_axis" yaml:"v_axis"`
}

// GlobalXYContext is the world XY plane at the origin.
func GlobalXYContext() PlaneContext {
	return PlaneContext{UAxis: XAxis, VAxis: YAxis}
}

// ToWorld maps plane coordinates to world space: origin + u·UAxis + v·VAxis.
func (c PlaneContext) ToWorld(u, v float64) Vec3 {
	return c.Origin.Add(c.UAxis.Mul(u)).Add(c.VAxis.Mul(v))
}

// Normal returns UAxis × VAxis.
func (c PlaneContext) Normal() Vec3 {
	return c.UAxis.Cross(c.VAxis)
}

// Local maps a point given in the plane's (u, v, w) frame to world space,
// where w runs along the normal.
func (c PlaneContext) Local(p Vec3) Vec3 {
	return c.ToWorld(p[0], p[1]).Add(c.Normal().Mul(p[2]))
}

// PlaneDefinition is the persisted form of a plane.
type PlaneDefinition struct {
	Origin Vec3 `json:"origin" yaml:"origin"`
	Normal Vec3 `json:"normal" yaml:"normal"`
}

// NewPlaneDefinition returns a plane through origin with a unit normal.
func NewPlaneDefinition(origin, normal Vec3) (PlaneDefinition, error) {
	n, err := Normalize(normal)
	if err != nil {
		return PlaneDefinition{}, fmt.Errorf("plane normal: %w", err)
	}
	return PlaneDefinition{Origin: origin, Normal: n}, nil
}

// PlaneFromPoints returns the plane through three points with
// normal (p2-p1) × (p3-p1). Collinear points are degenerate.
func PlaneFromPoints(p1, p2, p3 Vec3) (PlaneDefinition, error) {
	n := p2.Sub(p1).Cross(p3.Sub(p1))
	def, err := NewPlaneDefinition(p1, n)
	if err != nil {
		return PlaneDefinition{}, fmt.Errorf("points are collinear: %w", err)
	}
	return def, nil
}

// GlobalXY is the plane through the world origin with normal +Z.
func GlobalXY() PlaneDefinition {
	return PlaneDefinition{Normal: ZAxis}
}

// Context rederives the plane's in-plane axes through Perpendiculars.
func (d PlaneDefinition) Context() (PlaneContext, error) {
	u, v, err := Perpendiculars(d.Normal)
	if err != nil {
		return PlaneContext{}, fmt.Errorf("plane normal: %w", err)
	}
	return PlaneContext{Origin: d.Origin, UAxis: u, VAxis: v}, nil
}
