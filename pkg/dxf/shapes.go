package dxf

import "github.com/leapstack-labs/leapcad/pkg/geom"

// Entity type names as they appear after code 0.
const (
	TypeLine       = "LINE"
	TypeCircle     = "CIRCLE"
	TypeArc        = "ARC"
	TypeText       = "TEXT"
	TypeLWPolyline = "LWPOLYLINE"
)

// Defaults for fields an entity does not carry.
const (
	DefaultLayer      = "0"
	DefaultColor      = 256
	DefaultEndAngle   = 360.0
	DefaultTextHeight = 1.0
)

// Shape is one parsed entity. The set of implementations is closed:
// *Line, *Circle, *Arc, *Polyline and *Text.
type Shape interface {
	// Kind returns the upper-case entity type name.
	Kind() string
	// Attrs returns the attributes common to every entity.
	Attrs() Attributes
	isShape()
}

// Attributes are the fields every entity carries.
type Attributes struct {
	Layer string `json:"layer"`
	// Color is a palette index 0-255, or 256 for "by layer".
	Color int `json:"color"`
}

func defaultAttributes() Attributes {
	return Attributes{Layer: DefaultLayer, Color: DefaultColor}
}

// Attrs implements Shape.
func (a Attributes) Attrs() Attributes { return a }

// Line is a segment between two points.
type Line struct {
	Attributes
	Start geom.Vec3 `json:"start"`
	End   geom.Vec3 `json:"end"`
}

// Circle is a full circle in the plane z = Center.z.
type Circle struct {
	Attributes
	Center geom.Vec3 `json:"center"`
	Radius float64   `json:"radius"`
}

// Arc is a circular arc. Angles are in degrees, counter-clockwise from +X.
type Arc struct {
	Attributes
	Center     geom.Vec3 `json:"center"`
	Radius     float64   `json:"radius"`
	StartAngle float64   `json:"start_angle"`
	EndAngle   float64   `json:"end_angle"`
}

// Polyline is a lightweight polyline. Vertices have z = 0.
type Polyline struct {
	Attributes
	Vertices []geom.Vec3 `json:"vertices"`
	Closed   bool        `json:"closed"`
}

// Text is a single-line text entity.
type Text struct {
	Attributes
	Position geom.Vec3 `json:"position"`
	Text     string    `json:"text"`
	Height   float64   `json:"height"`
}

func (*Line) Kind() string     { return TypeLine }
func (*Circle) Kind() string   { return TypeCircle }
func (*Arc) Kind() string      { return TypeArc }
func (*Polyline) Kind() string { return TypeLWPolyline }
func (*Text) Kind() string     { return TypeText }

func (*Line) isShape()     {}
func (*Circle) isShape()   {}
func (*Arc) isShape()      {}
func (*Polyline) isShape() {}
func (*Text) isShape()     {}
