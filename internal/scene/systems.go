package scene

import (
	"fmt"

	"github.com/leapstack-labs/leapcad/internal/coords"
	"github.com/leapstack-labs/leapcad/pkg/core"
)

// Coordinate system changes go straight to the manager and are not part
// of the undo history.

// DeleteSystem deletes a coordinate system. Global and the active system
// cannot be deleted.
func (d *Document) DeleteSystem(title string) error {
	if title == coords.GlobalTitle {
		return fmt.Errorf("%w: cannot delete the %s coordinate system", core.ErrInvalidOperation, coords.GlobalTitle)
	}
	if title == d.systems.ActiveTitle() {
		return fmt.Errorf("%w: %q is the active coordinate system", core.ErrInvalidOperation, title)
	}
	if !d.systems.Delete(title) {
		return fmt.Errorf("%w: coordinate system %q", core.ErrNotFound, title)
	}
	return nil
}

// RenameSystem renames a coordinate system. Global cannot be renamed.
func (d *Document) RenameSystem(oldTitle, newTitle string) error {
	if oldTitle == coords.GlobalTitle {
		return fmt.Errorf("%w: cannot rename the %s coordinate system", core.ErrInvalidOperation, coords.GlobalTitle)
	}
	return d.systems.Rename(oldTitle, newTitle)
}

// SetActiveSystem makes title the active coordinate system.
func (d *Document) SetActiveSystem(title string) error {
	return d.systems.SetActive(title)
}

// PlaneFromSystem registers the OXY, OYZ or OZX plane of a coordinate
// system as Plane_from_<title>_<kind> and makes it active.
func (d *Document) PlaneFromSystem(title string, kind coords.PlaneKind) (string, error) {
	s, ok := d.systems.Get(title)
	if !ok {
		return "", fmt.Errorf("%w: coordinate system %q", core.ErrNotFound, title)
	}
	def, err := s.Plane(kind)
	if err != nil {
		return "", err
	}
	return d.CreatePlane(coords.PlaneName(title, kind), def)
}
