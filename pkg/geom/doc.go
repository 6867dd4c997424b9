// Package geom provides the vector and plane math shared by the mesh
// generator, the coordinate system manager and the scene document.
//
// Vectors are mgl64.Vec3 values. A PlaneContext maps 2D (u, v) plane
// coordinates to world space; a PlaneDefinition is the persisted
// {origin, normal} form from which the context is rederived.
package geom
