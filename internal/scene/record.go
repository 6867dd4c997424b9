package scene

import (
	"github.com/leapstack-labs/leapcad/pkg/mesh"
)

// Category groups objects in the document.
type Category string

// Object categories.
const (
	CategoryPrimitive        Category = "Primitive"
	CategoryImport           Category = "Import"
	CategoryPlane            Category = "Plane"
	CategoryCoordinateSystem Category = "CoordinateSystem"
)

// Categories lists every category in display order.
var Categories = []Category{CategoryPlane, CategoryCoordinateSystem, CategoryPrimitive, CategoryImport}

// Valid reports whether c is a known category.
func (c Category) Valid() bool {
	switch c {
	case CategoryPrimitive, CategoryImport, CategoryPlane, CategoryCoordinateSystem:
		return true
	}
	return false
}

// VisualRef is a presentation-owned handle. The document never looks inside it.
type VisualRef any

// Properties are presentation hints supplied at creation.
type Properties struct {
	// Name is the requested id. Empty generates <TypeLabel>_<n>.
	Name string `json:"name,omitempty"`
	// TypeLabel describes the object, e.g. "Sphere" or "LINE".
	TypeLabel string    `json:"type_label"`
	Color     *mesh.RGB `json:"color,omitempty"`
	Opacity   float64   `json:"opacity,omitempty"`
	PointSize float64   `json:"point_size,omitempty"`
	LineWidth float64   `json:"line_width,omitempty"`
	Wireframe bool      `json:"wireframe,omitempty"`
}

// Record is one registered object.
type Record struct {
	ID        string    `json:"id"`
	Category  Category  `json:"category"`
	TypeLabel string    `json:"type_label"`
	Visible   bool      `json:"visible"`
	Parent    string    `json:"parent,omitempty"`
	Mesh      mesh.Data `json:"-"`
	Visual    VisualRef `json:"-"`

	seq int
}

// IsGroup reports whether the record is an import group.
func (r Record) IsGroup() bool {
	return r.TypeLabel == GroupTypeLabel
}
