// Package mesh generates renderable point/cell data for primitives.
//
// Every generator is a pure function of its parameters and, where the
// primitive lives on a working plane, a geom.PlaneContext. Plane-relative
// inputs are (u, v) coordinates mapped through the context; solids are
// built around a canonical +Z up axis and rotated onto the plane normal.
package mesh
