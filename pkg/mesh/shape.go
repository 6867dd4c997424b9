package mesh

import (
	"fmt"

	"github.com/leapstack-labs/leapcad/pkg/core"
	"github.com/leapstack-labs/leapcad/pkg/dxf"
	"github.com/leapstack-labs/leapcad/pkg/geom"
)

// FromShape maps a parsed entity onto the plane. Entity x/y become plane
// (u, v) coordinates and z becomes an offset along the plane normal.
// Text is reduced to its insertion point.
func FromShape(s dxf.Shape, ctx geom.PlaneContext, segments int) (Data, error) {
	switch s := s.(type) {
	case *dxf.Line:
		return Polyline([]geom.Vec3{s.Start, s.End}, false, ctx), nil
	case *dxf.Circle:
		d := Circle(s.Center.X(), s.Center.Y(), s.Radius, ctx, segments)
		return lift(d, s.Center.Z(), ctx), nil
	case *dxf.Arc:
		d := Arc(s.Center.X(), s.Center.Y(), s.Radius, s.StartAngle, s.EndAngle, ctx, segments)
		return lift(d, s.Center.Z(), ctx), nil
	case *dxf.Polyline:
		return Polyline(s.Vertices, s.Closed, ctx), nil
	case *dxf.Text:
		d := Point(s.Position.X(), s.Position.Y(), ctx)
		return lift(d, s.Position.Z(), ctx), nil
	case nil:
		return Data{}, fmt.Errorf("%w: nil shape", core.ErrInvalidOperation)
	default:
		return Data{}, fmt.Errorf("%w: unsupported shape %s", core.ErrInvalidOperation, s.Kind())
	}
}

func lift(d Data, z float64, ctx geom.PlaneContext) Data {
	if z == 0 {
		return d
	}
	return d.Translate(ctx.Normal().Mul(z))
}
