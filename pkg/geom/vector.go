package geom

import (
	"fmt"
	"math"

	"github.com/go-gl/mathgl/mgl64"
	"github.com/leapstack-labs/leapcad/pkg/core"
)

// Vec3 is a 3D point or direction.
type Vec3 = mgl64.Vec3

// Epsilon is the magnitude below which a vector counts as degenerate.
const Epsilon = 1e-6

// Canonical world axes.
var (
	XAxis = Vec3{1, 0, 0}
	YAxis = Vec3{0, 1, 0}
	ZAxis = Vec3{0, 0, 1}
)

// Normalize returns v scaled to unit length.
// It fails with core.ErrDegenerateVector when |v| < Epsilon.
func Normalize(v Vec3) (Vec3, error) {
	n := v.Len()
	if n < Epsilon {
		return Vec3{}, fmt.Errorf("%w: magnitude %g below %g", core.ErrDegenerateVector, n, Epsilon)
	}
	return v.Mul(1 / n), nil
}

// Perpendiculars returns two unit vectors u, v perpendicular to n and to
// each other, with u × v = n̂.
//
// The choice is deterministic: the components of n are cyclically permuted
// so the largest one comes first, u lies in the plane of the first and
// third permuted components, and v completes the frame. Plane contexts
// rederived from the same normal are therefore always identical.
func Perpendiculars(n Vec3) (u, v Vec3, err error) {
	unit, err := Normalize(n)
	if err != nil {
		return Vec3{}, Vec3{}, err
	}

	x2, y2, z2 := unit[0]*unit[0], unit[1]*unit[1], unit[2]*unit[2]
	var dx, dy, dz int
	switch {
	case x2 > y2 && x2 > z2:
		dx, dy, dz = 0, 1, 2
	case y2 > z2:
		dx, dy, dz = 1, 2, 0
	default:
		dx, dy, dz = 2, 0, 1
	}

	a, b, c := unit[dx], unit[dy], unit[dz]
	tmp := math.Sqrt(a*a + c*c)

	u[dx] = c / tmp
	u[dy] = 0
	u[dz] = -a / tmp

	v[dx] = -a * b / tmp
	v[dy] = tmp
	v[dz] = -b * c / tmp

	return u, v, nil
}

// Basis builds a right-handed orthonormal frame from an x direction and a
// second direction lying in the xy plane: x = x̂, z = normalize(x × y), y = z × x.
// Parallel or zero inputs fail with core.ErrDegenerateVector.
func Basis(xDir, inPlane Vec3) (x, y, z Vec3, err error) {
	x, err = Normalize(xDir)
	if err != nil {
		return Vec3{}, Vec3{}, Vec3{}, fmt.Errorf("x direction: %w", err)
	}
	z, err = Normalize(x.Cross(inPlane))
	if err != nil {
		return Vec3{}, Vec3{}, Vec3{}, fmt.Errorf("directions are parallel: %w", err)
	}
	return x, z.Cross(x), z, nil
}
