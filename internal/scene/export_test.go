package scene

import (
	"fmt"
)

// Consistent checks the cross-map invariants of d.
func Consistent(d *Document) error {
	if d.cursor < -1 || d.cursor > len(d.history)-1 {
		return fmt.Errorf("cursor %d outside history of %d", d.cursor, len(d.history))
	}
	if d.activePlane != "" {
		if _, ok := d.objects[d.activePlane]; !ok {
			return fmt.Errorf("active plane %q not registered", d.activePlane)
		}
		if _, ok := d.planeDefs[d.activePlane]; !ok {
			return fmt.Errorf("active plane %q has no definition", d.activePlane)
		}
	}
	for id := range d.planeDefs {
		rec, ok := d.objects[id]
		if !ok {
			return fmt.Errorf("plane definition %q without object", id)
		}
		if rec.Category != CategoryPlane {
			return fmt.Errorf("plane definition %q on %s object", id, rec.Category)
		}
	}
	for id, rec := range d.objects {
		if rec.ID != id {
			return fmt.Errorf("object %q stored under %q", rec.ID, id)
		}
		if rec.Category == CategoryPlane {
			if _, ok := d.planeDefs[id]; !ok {
				return fmt.Errorf("plane %q has no definition", id)
			}
		}
		if rec.Parent != "" {
			if _, ok := d.objects[rec.Parent]; !ok {
				return fmt.Errorf("object %q has missing parent %q", id, rec.Parent)
			}
		}
	}
	return nil
}
