package geom

import (
	"math"

	"github.com/go-gl/mathgl/mgl64"
)

// parallelTolerance bounds |1 - |up·target|| for the parallel cases.
const parallelTolerance = 1e-9

// AlignUp returns the rotation taking canonicalUp onto target.
//
// Both inputs are normalized first; a degenerate input yields the identity.
// When the vectors are parallel the rotation is the identity; when they are
// antiparallel it is a half turn about the first perpendicular of
// canonicalUp. Otherwise the axis is canonicalUp × target and the angle is
// acos of the clamped dot product.
func AlignUp(canonicalUp, target Vec3) mgl64.Quat {
	up, err := Normalize(canonicalUp)
	if err != nil {
		return mgl64.QuatIdent()
	}
	to, err := Normalize(target)
	if err != nil {
		return mgl64.QuatIdent()
	}

	dot := up.Dot(to)
	switch {
	case dot >= 1-parallelTolerance:
		return mgl64.QuatIdent()
	case dot <= -1+parallelTolerance:
		axis, _, _ := Perpendiculars(up)
		return mgl64.QuatRotate(math.Pi, axis)
	}

	axis := up.Cross(to).Normalize()
	angle := math.Acos(mgl64.Clamp(dot, -1, 1))
	return mgl64.QuatRotate(angle, axis)
}
