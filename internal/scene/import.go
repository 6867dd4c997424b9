package scene

import (
	"fmt"
	"log/slog"

	"github.com/leapstack-labs/leapcad/pkg/dxf"
	"github.com/leapstack-labs/leapcad/pkg/geom"
	"github.com/leapstack-labs/leapcad/pkg/mesh"
)

// ImportColor is the default color of imported shapes.
var ImportColor = mesh.RGB{1, 0.4, 0.4}

// ImportOptions tune Document.Import.
type ImportOptions struct {
	// Name is the group id. Empty generates DXF_Import_<n>.
	Name string
	// Offset moves every imported shape after it is mapped onto the plane.
	Offset geom.Vec3
	// Segments is the tessellation of circles and arcs (default 100).
	Segments int
}

// ImportGroupCommand registers a group object and one child per shape as a
// single history entry.
type ImportGroupCommand struct {
	group    string
	children []importChild

	groupRec  *Record
	childRecs []*Record
}

type importChild struct {
	id    string
	label string
	data  mesh.Data
}

// Import maps every shape of c onto ctx and registers them under one
// group. An empty container still creates an (empty) group.
func (d *Document) Import(c *dxf.Container, ctx geom.PlaneContext, opts ImportOptions) (string, error) {
	group := opts.Name
	if group == "" {
		group = d.NextID("DXF_Import")
	}

	cmd := &ImportGroupCommand{group: group}
	for i, shape := range c.Shapes {
		data, err := mesh.FromShape(shape, ctx, opts.Segments)
		if err != nil {
			return "", fmt.Errorf("shape %d: %w", i, err)
		}
		cmd.children = append(cmd.children, importChild{
			id:    fmt.Sprintf("%s_Shape_%d", group, i),
			label: shape.Kind(),
			data:  data.Translate(opts.Offset),
		})
	}
	if len(c.Shapes) == 0 {
		d.logger.Warn("import has no supported geometry", slog.String("group", group))
	}

	if err := d.Apply(cmd); err != nil {
		return "", err
	}
	d.logger.Info("imported shapes", slog.String("group", group), slog.Int("shapes", len(cmd.children)))
	return group, nil
}

func (c *ImportGroupCommand) ids() []string {
	ids := []string{c.group}
	for _, ch := range c.children {
		ids = append(ids, ch.id)
	}
	return ids
}

// Execute implements Command. Visuals are built on the first run; if any
// build fails nothing is registered.
func (c *ImportGroupCommand) Execute(d *Document) error {
	if err := d.checkFree(c.ids()...); err != nil {
		return err
	}

	if c.groupRec == nil {
		recs := make([]*Record, 0, len(c.children))
		for _, ch := range c.children {
			color := ImportColor
			ref, err := d.presenter.Build(ch.id, ch.data, Properties{Name: ch.id, TypeLabel: ch.label, Color: &color})
			if err != nil {
				return fmt.Errorf("failed to build visual for %s: %w", ch.id, err)
			}
			recs = append(recs, &Record{
				ID:        ch.id,
				Category:  CategoryImport,
				TypeLabel: ch.label,
				Visible:   true,
				Parent:    c.group,
				Mesh:      ch.data,
				Visual:    ref,
			})
		}
		c.groupRec = &Record{ID: c.group, Category: CategoryImport, TypeLabel: GroupTypeLabel, Visible: true, seq: d.nextSeq()}
		for _, rec := range recs {
			rec.seq = d.nextSeq()
		}
		c.childRecs = recs
	}

	d.insert(c.groupRec, nil)
	for _, rec := range c.childRecs {
		d.insert(rec, nil)
	}
	return nil
}

// Undo implements Command.
func (c *ImportGroupCommand) Undo(d *Document) error {
	for _, rec := range c.childRecs {
		if _, ok := d.objects[rec.ID]; ok {
			d.remove(rec.ID)
		}
	}
	if _, ok := d.objects[c.groupRec.ID]; ok {
		d.remove(c.groupRec.ID)
	}
	return nil
}

// Describe implements Command.
func (c *ImportGroupCommand) Describe() string {
	return fmt.Sprintf("import %s (%d shapes)", c.group, len(c.children))
}
