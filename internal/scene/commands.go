package scene

import (
	"fmt"

	"github.com/leapstack-labs/leapcad/pkg/core"
	"github.com/leapstack-labs/leapcad/pkg/geom"
	"github.com/leapstack-labs/leapcad/pkg/mesh"
)

// Command is a reversible document mutation. Execute is also used for
// redo. Both methods must leave the document untouched when they fail.
type Command interface {
	Execute(d *Document) error
	Undo(d *Document) error
	Describe() string
}

// =============================================================================
// Create
// =============================================================================

// CreateCommand registers one object. The visual is built on the first
// Execute and reused on every redo.
type CreateCommand struct {
	id       string
	category Category
	data     mesh.Data
	props    Properties
	def      *geom.PlaneDefinition

	rec *Record
}

// Execute implements Command.
func (c *CreateCommand) Execute(d *Document) error {
	if err := d.checkFree(c.id); err != nil {
		return err
	}
	if c.rec == nil {
		ref, err := d.presenter.Build(c.id, c.data, c.props)
		if err != nil {
			return fmt.Errorf("failed to build visual for %s: %w", c.id, err)
		}
		c.rec = &Record{
			ID:        c.id,
			Category:  c.category,
			TypeLabel: c.props.TypeLabel,
			Visible:   true,
			Mesh:      c.data,
			Visual:    ref,
			seq:       d.nextSeq(),
		}
	}
	d.insert(c.rec, c.def)
	return nil
}

// Undo implements Command.
func (c *CreateCommand) Undo(d *Document) error {
	if _, ok := d.objects[c.id]; !ok {
		return fmt.Errorf("%w: object %q", core.ErrNotFound, c.id)
	}
	if c.id == d.activePlane {
		return fmt.Errorf("%w: %q is the active plane", core.ErrInvalidOperation, c.id)
	}
	d.remove(c.id)
	return nil
}

// Describe implements Command.
func (c *CreateCommand) Describe() string {
	return "create " + c.id
}

// =============================================================================
// Delete
// =============================================================================

type removed struct {
	rec *Record
	def *geom.PlaneDefinition
}

// DeleteCommand removes an object and, for a group, its children. It
// captures everything needed to put them back unchanged.
type DeleteCommand struct {
	id      string
	removed []removed
}

// Execute implements Command.
func (c *DeleteCommand) Execute(d *Document) error {
	if _, ok := d.objects[c.id]; !ok {
		return fmt.Errorf("%w: object %q", core.ErrNotFound, c.id)
	}
	ids := []string{c.id}
	for _, child := range d.Children(c.id) {
		ids = append(ids, child.ID)
	}
	for _, id := range ids {
		if id == d.activePlane {
			return fmt.Errorf("%w: %q is the active plane", core.ErrInvalidOperation, id)
		}
	}

	c.removed = c.removed[:0]
	for _, id := range ids {
		rec, def := d.remove(id)
		c.removed = append(c.removed, removed{rec: rec, def: def})
	}
	return nil
}

// Undo implements Command.
func (c *DeleteCommand) Undo(d *Document) error {
	ids := make([]string, len(c.removed))
	for i, r := range c.removed {
		ids[i] = r.rec.ID
	}
	if err := d.checkFree(ids...); err != nil {
		return err
	}
	for _, r := range c.removed {
		d.insert(r.rec, r.def)
	}
	return nil
}

// Describe implements Command.
func (c *DeleteCommand) Describe() string {
	return "delete " + c.id
}

// =============================================================================
// Rename
// =============================================================================

// RenameCommand changes an object's id. Undo is the mirror rename.
type RenameCommand struct {
	oldID, newID string
}

// Execute implements Command.
func (c *RenameCommand) Execute(d *Document) error {
	return d.renameID(c.oldID, c.newID)
}

// Undo implements Command.
func (c *RenameCommand) Undo(d *Document) error {
	return d.renameID(c.newID, c.oldID)
}

// Describe implements Command.
func (c *RenameCommand) Describe() string {
	return fmt.Sprintf("rename %s to %s", c.oldID, c.newID)
}

// =============================================================================
// Toggle visibility
// =============================================================================

// ToggleVisibilityCommand flips an object's visibility and sets its
// children to the same value. Prior values are recorded per id.
type ToggleVisibilityCommand struct {
	id    string
	prior map[string]bool
}

// Execute implements Command.
func (c *ToggleVisibilityCommand) Execute(d *Document) error {
	rec, ok := d.objects[c.id]
	if !ok {
		return fmt.Errorf("%w: object %q", core.ErrNotFound, c.id)
	}
	visible := !rec.Visible

	targets := []*Record{rec}
	for _, child := range d.Children(c.id) {
		targets = append(targets, d.objects[child.ID])
	}
	c.prior = make(map[string]bool, len(targets))
	for _, t := range targets {
		c.prior[t.ID] = t.Visible
		d.setVisible(t, visible)
	}
	return nil
}

// Undo implements Command.
func (c *ToggleVisibilityCommand) Undo(d *Document) error {
	for id := range c.prior {
		if _, ok := d.objects[id]; !ok {
			return fmt.Errorf("%w: object %q", core.ErrNotFound, id)
		}
	}
	for id, visible := range c.prior {
		d.setVisible(d.objects[id], visible)
	}
	return nil
}

// Describe implements Command.
func (c *ToggleVisibilityCommand) Describe() string {
	return "toggle visibility of " + c.id
}

func (d *Document) setVisible(rec *Record, visible bool) {
	rec.Visible = visible
	if rec.Visual != nil {
		d.presenter.SetVisible(rec.Visual, visible)
	}
}

// =============================================================================
// Set active plane
// =============================================================================

// SetActivePlaneCommand moves the active plane pointer and recomputes the
// current plane context. Undo applies the same step backwards.
type SetActivePlaneCommand struct {
	from, to string
}

// Execute implements Command.
func (c *SetActivePlaneCommand) Execute(d *Document) error {
	return d.applyActivePlane(c.from, c.to)
}

// Undo implements Command.
func (c *SetActivePlaneCommand) Undo(d *Document) error {
	return d.applyActivePlane(c.to, c.from)
}

// Describe implements Command.
func (c *SetActivePlaneCommand) Describe() string {
	if c.to == "" {
		return "clear active plane"
	}
	return "activate " + c.to
}
