package console

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"slices"
	"strings"

	"github.com/leapstack-labs/leapcad/internal/coords"
	"github.com/leapstack-labs/leapcad/internal/scene"
	"github.com/leapstack-labs/leapcad/internal/state"
	"github.com/leapstack-labs/leapcad/pkg/core"
	"github.com/leapstack-labs/leapcad/pkg/geom"
)

// Config configures a Console.
type Config struct {
	// Document is the scene the console edits (required).
	Document *scene.Document
	// Journal records imports (optional).
	Journal state.Journal
	// Logger is the structured logger (optional, uses discard if nil).
	Logger *slog.Logger
	// Resolution is the tessellation used for new primitives and imports.
	Resolution Resolution
}

type command struct {
	name  string
	usage string
	help  string
	run   func(ctx context.Context, args []string) (string, error)
}

// Console interprets command lines against a document.
type Console struct {
	doc      *scene.Document
	importer *Importer
	logger   *slog.Logger
	res      Resolution

	commands map[string]*command
	order    []string
}

// New creates a console.
func New(cfg Config) (*Console, error) {
	if cfg.Document == nil {
		return nil, fmt.Errorf("%w: console needs a document", core.ErrInvalidOperation)
	}
	logger := cfg.Logger
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	c := &Console{
		doc:      cfg.Document,
		importer: NewImporter(cfg.Document, cfg.Journal, logger),
		logger:   logger,
		res:      cfg.Resolution,
		commands: make(map[string]*command),
	}
	c.register()
	return c, nil
}

// Document returns the document the console edits.
func (c *Console) Document() *scene.Document {
	return c.doc
}

// Importer returns the importer used by the import command.
func (c *Console) Importer() *Importer {
	return c.importer
}

// Names returns every command name, for completion.
func (c *Console) Names() []string {
	return slices.Clone(c.order)
}

// Exec runs one line and returns its output. Blank lines and lines
// starting with '#' do nothing.
func (c *Console) Exec(ctx context.Context, line string) (string, error) {
	line = strings.TrimSpace(line)
	if line == "" || strings.HasPrefix(line, "#") {
		return "", nil
	}
	args, err := fields(line)
	if err != nil {
		return "", err
	}
	name := strings.ToLower(args[0])
	cmd, ok := c.commands[name]
	if !ok {
		return "", fmt.Errorf("%w: unknown command %q (try 'help')", core.ErrInvalidOperation, args[0])
	}
	c.logger.Debug("console command", slog.String("command", name), slog.Int("args", len(args)-1))
	return cmd.run(ctx, args[1:])
}

// ExecAll runs lines in order and stops at the first error, which is
// prefixed with its 1-based line number.
func (c *Console) ExecAll(ctx context.Context, lines []string) ([]string, error) {
	var out []string
	for i, line := range lines {
		res, err := c.Exec(ctx, line)
		if err != nil {
			return out, fmt.Errorf("line %d: %w", i+1, err)
		}
		if res != "" {
			out = append(out, res)
		}
	}
	return out, nil
}

func (c *Console) add(cmd *command) {
	c.commands[cmd.name] = cmd
	c.order = append(c.order, cmd.name)
}

func (c *Console) register() {
	c.add(&command{name: "help", usage: "help [COMMAND]", help: "list commands or show one command's usage", run: c.help})
	c.add(&command{name: "primitives", usage: "primitives", help: "list creatable primitives", run: c.listPrimitives})
	for _, p := range primitives {
		c.add(&command{
			name:  p.Name,
			usage: p.Usage() + " [on PLANE] [as NAME]",
			help:  "create " + p.Summary,
			run:   c.primitive(p),
		})
	}
	c.add(&command{name: "plane", usage: "plane OX OY OZ NX NY NZ | plane X1 Y1 Z1 X2 Y2 Z2 X3 Y3 Z3 | plane reset | plane cs TITLE OXY|OYZ|OZX [as NAME]",
		help: "create a working plane and make it active", run: c.plane})
	c.add(&command{name: "active", usage: "active [PLANE|none]", help: "show or set the active plane", run: c.active})
	c.add(&command{name: "undo", usage: "undo", help: "reverse the last command", run: c.undo})
	c.add(&command{name: "redo", usage: "redo", help: "reapply the last undone command", run: c.redo})
	c.add(&command{name: "delete", usage: "delete ID", help: "delete an object (a group takes its children along)", run: c.delete})
	c.add(&command{name: "rename", usage: "rename OLD NEW", help: "rename an object", run: c.rename})
	c.add(&command{name: "toggle", usage: "toggle ID", help: "flip an object's visibility", run: c.toggle})
	c.add(&command{name: "ls", usage: "ls", help: "list objects", run: c.list})
	c.add(&command{name: "history", usage: "history", help: "list the command history", run: c.history})
	c.add(&command{name: "cs", usage: "cs ls | cs create TITLE O X Y | cs points TITLE O PX PXY | cs delete TITLE | cs rename OLD NEW | cs use TITLE",
		help: "manage coordinate systems (vectors are three numbers each)", run: c.systems})
	c.add(&command{name: "import", usage: "import FILE [at DX DY DZ] [on PLANE] [as NAME]", help: "import a drawing as one group", run: c.importFile})
	c.add(&command{name: "reset", usage: "reset", help: "clear the document", run: c.reset})
}

func (c *Console) help(_ context.Context, args []string) (string, error) {
	if len(args) == 1 {
		cmd, ok := c.commands[strings.ToLower(args[0])]
		if !ok {
			return "", fmt.Errorf("%w: unknown command %q", core.ErrInvalidOperation, args[0])
		}
		return fmt.Sprintf("%s\n  %s", cmd.usage, cmd.help), nil
	}
	var b strings.Builder
	for _, name := range c.order {
		fmt.Fprintf(&b, "  %-11s %s\n", name, c.commands[name].help)
	}
	return strings.TrimRight(b.String(), "\n"), nil
}

func (c *Console) listPrimitives(_ context.Context, _ []string) (string, error) {
	rows := make([][]any, 0, len(primitives))
	for _, p := range primitives {
		rows = append(rows, []any{p.Name, p.Label, p.Usage(), p.Summary})
	}
	return renderTable([]any{"Name", "Type", "Usage", "Description"}, rows), nil
}

func (c *Console) primitive(p *Primitive) func(context.Context, []string) (string, error) {
	return func(_ context.Context, args []string) (string, error) {
		rest, opts, err := clauses(args, map[string]int{"on": 1, "as": 1})
		if err != nil {
			return "", err
		}
		nums, err := floats(rest)
		if err != nil {
			return "", err
		}
		id, err := c.CreatePrimitive(p, nums, first(opts["on"]), first(opts["as"]))
		if err != nil {
			return "", err
		}
		return "created " + id, nil
	}
}

// CreatePrimitive builds p on the named plane (current plane when empty)
// and registers it.
func (c *Console) CreatePrimitive(p *Primitive, args []float64, plane, name string) (string, error) {
	ctx, err := c.doc.PlaneContext(plane)
	if err != nil {
		return "", err
	}
	data, err := p.Build(args, ctx, c.res)
	if err != nil {
		return "", err
	}
	return c.doc.Create(scene.CategoryPrimitive, data, p.Properties(name))
}

func (c *Console) plane(_ context.Context, args []string) (string, error) {
	rest, opts, err := clauses(args, map[string]int{"as": 1})
	if err != nil {
		return "", err
	}
	name := first(opts["as"])

	var id string
	switch {
	case len(rest) == 1 && strings.EqualFold(rest[0], "reset"):
		id, err = c.ResetPlane()
	case len(rest) == 3 && strings.EqualFold(rest[0], "cs"):
		id, err = c.doc.PlaneFromSystem(rest[1], coords.PlaneKind(strings.ToUpper(rest[2])))
	case len(rest) == 6:
		var v []geom.Vec3
		if v, err = vectors(rest, 2); err == nil {
			var def geom.PlaneDefinition
			if def, err = geom.NewPlaneDefinition(v[0], v[1]); err == nil {
				id, err = c.doc.CreatePlane(name, def)
			}
		}
	case len(rest) == 9:
		var v []geom.Vec3
		if v, err = vectors(rest, 3); err == nil {
			var def geom.PlaneDefinition
			if def, err = geom.PlaneFromPoints(v[0], v[1], v[2]); err == nil {
				id, err = c.doc.CreatePlane(name, def)
			}
		}
	default:
		err = fmt.Errorf("%w: usage: %s", core.ErrInvalidOperation, c.commands["plane"].usage)
	}
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("plane %s is active", id), nil
}

// ResetPlane activates Global_XY_Plane, creating it first if needed.
func (c *Console) ResetPlane() (string, error) {
	if _, ok := c.doc.PlaneDefinition(scene.DefaultPlaneID); ok {
		return scene.DefaultPlaneID, c.doc.SetActivePlane(scene.DefaultPlaneID)
	}
	return c.doc.CreatePlane(scene.DefaultPlaneID, geom.GlobalXY())
}

func (c *Console) active(_ context.Context, args []string) (string, error) {
	switch len(args) {
	case 0:
		ctx := c.doc.CurrentPlane()
		active := c.doc.ActivePlane()
		if active == "" {
			active = "(none)"
		}
		return fmt.Sprintf("active plane: %s\n  origin %s\n  u      %s\n  v      %s\n  normal %s",
			active, formatVec(ctx.Origin), formatVec(ctx.UAxis), formatVec(ctx.VAxis), formatVec(ctx.Normal())), nil
	case 1:
		id := args[0]
		if strings.EqualFold(id, "none") {
			id = ""
		}
		if err := c.doc.SetActivePlane(id); err != nil {
			return "", err
		}
		if id == "" {
			return "no active plane", nil
		}
		return fmt.Sprintf("plane %s is active", id), nil
	default:
		return "", exactly(args, 1, c.commands["active"].usage)
	}
}

func (c *Console) undo(_ context.Context, args []string) (string, error) {
	if err := exactly(args, 0, "undo"); err != nil {
		return "", err
	}
	desc := ""
	if c.doc.CanUndo() {
		desc = c.doc.History()[c.doc.Cursor()].Description
	}
	if err := c.doc.Undo(); err != nil {
		return "", err
	}
	return "undid: " + desc, nil
}

func (c *Console) redo(_ context.Context, args []string) (string, error) {
	if err := exactly(args, 0, "redo"); err != nil {
		return "", err
	}
	if err := c.doc.Redo(); err != nil {
		return "", err
	}
	return "redid: " + c.doc.History()[c.doc.Cursor()].Description, nil
}

func (c *Console) delete(_ context.Context, args []string) (string, error) {
	if err := exactly(args, 1, "delete ID"); err != nil {
		return "", err
	}
	if err := c.doc.Delete(args[0]); err != nil {
		return "", err
	}
	return "deleted " + args[0], nil
}

func (c *Console) rename(_ context.Context, args []string) (string, error) {
	if err := exactly(args, 2, "rename OLD NEW"); err != nil {
		return "", err
	}
	if err := c.doc.Rename(args[0], args[1]); err != nil {
		return "", err
	}
	return fmt.Sprintf("renamed %s to %s", args[0], args[1]), nil
}

func (c *Console) toggle(_ context.Context, args []string) (string, error) {
	if err := exactly(args, 1, "toggle ID"); err != nil {
		return "", err
	}
	if err := c.doc.ToggleVisibility(args[0]); err != nil {
		return "", err
	}
	rec, _ := c.doc.Object(args[0])
	if rec.Visible {
		return args[0] + " is visible", nil
	}
	return args[0] + " is hidden", nil
}

func (c *Console) list(_ context.Context, _ []string) (string, error) {
	return renderObjects(c.doc), nil
}

func (c *Console) history(_ context.Context, _ []string) (string, error) {
	return renderHistory(c.doc), nil
}

func (c *Console) systems(_ context.Context, args []string) (string, error) {
	if len(args) == 0 {
		return "", exactly(args, 1, c.commands["cs"].usage)
	}
	sub, rest := strings.ToLower(args[0]), args[1:]
	m := c.doc.Systems()

	switch sub {
	case "ls":
		return renderSystems(m), nil
	case "create", "points":
		if len(rest) < 1 {
			return "", exactly(rest, 10, c.commands["cs"].usage)
		}
		title := rest[0]
		v, err := vectors(rest[1:], 3)
		if err != nil {
			return "", err
		}
		var s coords.System
		if sub == "create" {
			s, err = m.CreateFromVectors(title, v[0], v[1], v[2])
		} else {
			s, err = m.CreateFromThreePoints(title, v[0], v[1], v[2])
		}
		if err != nil {
			return "", err
		}
		return fmt.Sprintf("created coordinate system %s (z %s)", s.Title, formatVec(s.ZAxis)), nil
	case "delete":
		if err := exactly(rest, 1, "cs delete TITLE"); err != nil {
			return "", err
		}
		if err := c.doc.DeleteSystem(rest[0]); err != nil {
			return "", err
		}
		return "deleted coordinate system " + rest[0], nil
	case "rename":
		if err := exactly(rest, 2, "cs rename OLD NEW"); err != nil {
			return "", err
		}
		if err := c.doc.RenameSystem(rest[0], rest[1]); err != nil {
			return "", err
		}
		return fmt.Sprintf("renamed coordinate system %s to %s", rest[0], rest[1]), nil
	case "use":
		if err := exactly(rest, 1, "cs use TITLE"); err != nil {
			return "", err
		}
		if err := c.doc.SetActiveSystem(rest[0]); err != nil {
			return "", err
		}
		return "active coordinate system: " + rest[0], nil
	default:
		return "", fmt.Errorf("%w: unknown cs subcommand %q", core.ErrInvalidOperation, args[0])
	}
}

func (c *Console) importFile(ctx context.Context, args []string) (string, error) {
	rest, opts, err := clauses(args, map[string]int{"at": 3, "on": 1, "as": 1})
	if err != nil {
		return "", err
	}
	if err := exactly(rest, 1, c.commands["import"].usage); err != nil {
		return "", err
	}
	req := ImportRequest{
		Path:     rest[0],
		Plane:    first(opts["on"]),
		Name:     first(opts["as"]),
		Segments: c.res.CircleSegments,
	}
	if at, ok := opts["at"]; ok {
		v, err := vectors(at, 1)
		if err != nil {
			return "", err
		}
		req.Offset = v[0]
	}

	res, err := c.importer.Import(ctx, req)
	if res == nil {
		return "", err
	}
	msg := fmt.Sprintf("imported %d shape(s) into %s (%d skipped, %d diagnostic(s))",
		res.Container.Len(), res.Group, res.Container.Skipped, len(res.Container.Diagnostics))
	if err != nil {
		// The group exists; only the journal write failed.
		c.logger.Warn("import not journaled", slog.String("error", err.Error()))
	}
	return msg, nil
}

func (c *Console) reset(_ context.Context, _ []string) (string, error) {
	if err := c.doc.Reset(); err != nil {
		return "", err
	}
	return "document reset", nil
}

func first(vals []string) string {
	if len(vals) == 0 {
		return ""
	}
	return vals[0]
}

// IsUserError reports whether err comes from bad input rather than a
// failure of the kernel itself.
func IsUserError(err error) bool {
	return errors.Is(err, core.ErrInvalidOperation) ||
		errors.Is(err, core.ErrNotFound) ||
		errors.Is(err, core.ErrDuplicateName) ||
		errors.Is(err, core.ErrDegenerateVector)
}
