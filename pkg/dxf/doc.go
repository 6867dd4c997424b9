// Package dxf reads the ENTITIES section of a DXF-like group-code stream.
//
// The input is a sequence of lines interpreted as alternating
// (group code, value) pairs. Reader.Parse scans for the (2, "ENTITIES")
// section marker, then collects one tag buffer per entity and decodes it
// through a per-type code table into a Shape.
//
// # Supported entities
//
//	LINE        10/20/30 start, 11/21/31 end
//	CIRCLE      10/20/30 center, 40 radius
//	ARC         as CIRCLE, plus 50 start angle and 51 end angle (degrees)
//	TEXT        1 string, 10/20 position, 40 height
//	LWPOLYLINE  70 flags (bit 0 = closed), 10 opens a vertex, 20 sets its y
//
// Codes 8 (layer) and 62 (color) are accepted on every entity. Unsupported
// entity types and anything outside the ENTITIES section are ignored.
//
// # Error recovery
//
// Malformed pairs are skipped. A value that fails to convert drops only
// that field; the failure is reported as a *FieldError in
// Container.Diagnostics and the entity keeps its defaults.
package dxf
