package console

import (
	"fmt"
	"strconv"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/leapstack-labs/leapcad/internal/coords"
	"github.com/leapstack-labs/leapcad/internal/scene"
	"github.com/leapstack-labs/leapcad/pkg/geom"
)

func formatVec(v geom.Vec3) string {
	return fmt.Sprintf("(%s, %s, %s)", num(v[0]), num(v[1]), num(v[2]))
}

func num(f float64) string {
	if f == 0 {
		f = 0 // drop negative zero
	}
	return strconv.FormatFloat(f, 'g', 6, 64)
}

func renderTable(header []any, rows [][]any) string {
	t := table.NewWriter()
	t.SetStyle(table.StyleLight)
	t.AppendHeader(table.Row(header))
	for _, r := range rows {
		t.AppendRow(table.Row(r))
	}
	return t.Render()
}

func mark(on bool, s string) string {
	if on {
		return s
	}
	return ""
}

// renderObjects lists top-level objects with their children indented
// beneath them.
func renderObjects(d *scene.Document) string {
	objs := d.Objects()
	if len(objs) == 0 {
		return "(no objects)"
	}
	active := d.ActivePlane()

	rows := make([][]any, 0, len(objs))
	add := func(rec scene.Record, indent string) {
		rows = append(rows, []any{
			indent + rec.ID,
			string(rec.Category),
			rec.TypeLabel,
			mark(rec.Visible, "yes"),
			mark(rec.ID == active, "*"),
			len(rec.Mesh.Points),
		})
	}
	for _, rec := range objs {
		if rec.Parent != "" {
			continue
		}
		add(rec, "")
		for _, child := range d.Children(rec.ID) {
			add(child, "  ")
		}
	}
	return renderTable([]any{"ID", "Category", "Type", "Visible", "Active", "Points"}, rows) +
		fmt.Sprintf("\n(%d objects)", len(objs))
}

func renderHistory(d *scene.Document) string {
	entries := d.History()
	if len(entries) == 0 {
		return "(empty history)"
	}
	rows := make([][]any, len(entries))
	for i, e := range entries {
		status := "undone"
		if e.Applied {
			status = "applied"
		}
		rows[i] = []any{i + 1, e.Description, status, mark(i == d.Cursor(), "<")}
	}
	return renderTable([]any{"#", "Command", "Status", ""}, rows)
}

func renderSystems(m *coords.Manager) string {
	rows := make([][]any, 0, m.Len())
	for _, title := range m.Titles() {
		s, _ := m.Get(title)
		rows = append(rows, []any{
			title,
			formatVec(s.Origin),
			formatVec(s.XAxis),
			formatVec(s.YAxis),
			formatVec(s.ZAxis),
			mark(title == m.ActiveTitle(), "*"),
		})
	}
	return renderTable([]any{"Title", "Origin", "X", "Y", "Z", "Active"}, rows)
}
