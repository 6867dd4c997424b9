package dxf

import (
	"strconv"
)

// decoder accumulates the type-specific tags of one entity.
// apply ignores codes it does not know and returns a conversion error
// for a value it cannot read.
type decoder interface {
	apply(code int, value string) error
	build(attrs Attributes) Shape
}

// decoders is the per-type code table, keyed by upper-case entity type.
var decoders = map[string]func() decoder{
	TypeLine:       func() decoder { return &lineDecoder{} },
	TypeCircle:     func() decoder { return &circleDecoder{} },
	TypeArc:        func() decoder { return &arcDecoder{end: DefaultEndAngle} },
	TypeText:       func() decoder { return &textDecoder{height: DefaultTextHeight} },
	TypeLWPolyline: func() decoder { return &polylineDecoder{} },
}

// Supported reports whether entities of the given type are decoded.
func Supported(entityType string) bool {
	_, ok := decoders[entityType]
	return ok
}

func parseFloat(value string) (float64, error) {
	return strconv.ParseFloat(value, 64)
}

// setFloat parses value into *dst, leaving *dst untouched on failure.
func setFloat(dst *float64, value string) error {
	f, err := parseFloat(value)
	if err != nil {
		return err
	}
	*dst = f
	return nil
}

type lineDecoder struct {
	start, end [3]float64
}

func (d *lineDecoder) apply(code int, value string) error {
	switch code {
	case 10, 20, 30:
		return setFloat(&d.start[code/10-1], value)
	case 11, 21, 31:
		return setFloat(&d.end[code/10-1], value)
	}
	return nil
}

func (d *lineDecoder) build(attrs Attributes) Shape {
	return &Line{Attributes: attrs, Start: d.start, End: d.end}
}

type circleDecoder struct {
	center [3]float64
	radius float64
}

func (d *circleDecoder) apply(code int, value string) error {
	switch code {
	case 10, 20, 30:
		return setFloat(&d.center[code/10-1], value)
	case 40:
		return setFloat(&d.radius, value)
	}
	return nil
}

func (d *circleDecoder) build(attrs Attributes) Shape {
	return &Circle{Attributes: attrs, Center: d.center, Radius: d.radius}
}

type arcDecoder struct {
	circleDecoder
	start, end float64
}

func (d *arcDecoder) apply(code int, value string) error {
	switch code {
	case 50:
		return setFloat(&d.start, value)
	case 51:
		return setFloat(&d.end, value)
	}
	return d.circleDecoder.apply(code, value)
}

func (d *arcDecoder) build(attrs Attributes) Shape {
	return &Arc{
		Attributes: attrs,
		Center:     d.center,
		Radius:     d.radius,
		StartAngle: d.start,
		EndAngle:   d.end,
	}
}

type textDecoder struct {
	text     string
	position [3]float64
	height   float64
}

func (d *textDecoder) apply(code int, value string) error {
	switch code {
	case 1:
		d.text = value
	case 10, 20:
		return setFloat(&d.position[code/10-1], value)
	case 40:
		return setFloat(&d.height, value)
	}
	return nil
}

func (d *textDecoder) build(attrs Attributes) Shape {
	return &Text{Attributes: attrs, Position: d.position, Text: d.text, Height: d.height}
}

type vertex struct {
	x, y float64
	hasY bool
}

type polylineDecoder struct {
	vertices []vertex
	closed   bool
}

func (d *polylineDecoder) apply(code int, value string) error {
	switch code {
	case 70:
		flags, err := strconv.Atoi(value)
		if err != nil {
			return err
		}
		d.closed = flags&1 != 0
	case 10:
		x, err := parseFloat(value)
		if err != nil {
			return err
		}
		d.vertices = append(d.vertices, vertex{x: x})
	case 20:
		if len(d.vertices) == 0 || d.vertices[len(d.vertices)-1].hasY {
			return nil
		}
		y, err := parseFloat(value)
		if err != nil {
			return err
		}
		last := &d.vertices[len(d.vertices)-1]
		last.y, last.hasY = y, true
	}
	return nil
}

func (d *polylineDecoder) build(attrs Attributes) Shape {
	p := &Polyline{Attributes: attrs, Closed: d.closed}
	for _, v := range d.vertices {
		// a vertex that never got its y is dropped
		if v.hasY {
			p.Vertices = append(p.Vertices, [3]float64{v.x, v.y, 0})
		}
	}
	return p
}
