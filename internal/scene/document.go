package scene

import (
	"cmp"
	"fmt"
	"log/slog"
	"slices"
	"strconv"

	"github.com/leapstack-labs/leapcad/internal/coords"
	"github.com/leapstack-labs/leapcad/pkg/core"
	"github.com/leapstack-labs/leapcad/pkg/geom"
	"github.com/leapstack-labs/leapcad/pkg/mesh"
)

// Well-known ids and labels.
const (
	DefaultPlaneID   = "Global_XY_Plane"
	PlaneTypeLabel   = "Plane"
	GroupTypeLabel   = "DXF Group"
	DefaultPlaneSize = 10.0
)

// Config configures a Document.
type Config struct {
	// Presenter receives visuals (optional, uses an in-memory presenter if nil).
	Presenter Presenter
	// Logger is the structured logger (optional, uses discard if nil).
	Logger *slog.Logger
	// DefaultPlane creates Global_XY_Plane, makes it active and leaves the
	// history empty, both on New and on Reset.
	DefaultPlane bool
	// PlaneSize is the edge length of plane visuals (optional, default 10).
	PlaneSize float64
}

// Document is the scene: objects, plane definitions, the active plane and
// the command history.
type Document struct {
	presenter    Presenter
	logger       *slog.Logger
	defaultPlane bool
	planeSize    float64

	objects     map[string]*Record
	planeDefs   map[string]geom.PlaneDefinition
	activePlane string
	current     geom.PlaneContext
	seq         int

	history []Command
	cursor  int

	systems *coords.Manager
}

// New creates a document.
func New(cfg Config) (*Document, error) {
	d := &Document{
		presenter:    cfg.Presenter,
		logger:       cfg.Logger,
		defaultPlane: cfg.DefaultPlane,
		planeSize:    cfg.PlaneSize,
	}
	if d.presenter == nil {
		d.presenter = NewMemoryPresenter()
	}
	if d.logger == nil {
		d.logger = slog.New(slog.DiscardHandler)
	}
	if d.planeSize <= 0 {
		d.planeSize = DefaultPlaneSize
	}
	d.systems = coords.NewManager(d.logger)

	if err := d.Reset(); err != nil {
		return nil, err
	}
	return d, nil
}

// Reset detaches every visual and returns the document to its initial state.
func (d *Document) Reset() error {
	for _, rec := range d.objects {
		d.detach(rec)
	}
	d.objects = make(map[string]*Record)
	d.planeDefs = make(map[string]geom.PlaneDefinition)
	d.activePlane = ""
	d.current = geom.GlobalXYContext()
	d.history = nil
	d.cursor = -1
	d.systems.Reset()

	if !d.defaultPlane {
		return nil
	}
	if _, err := d.CreatePlane(DefaultPlaneID, geom.GlobalXY()); err != nil {
		return fmt.Errorf("failed to create default plane: %w", err)
	}
	d.history = nil
	d.cursor = -1
	return nil
}

// ---------- Accessors ----------

// Object returns a copy of the record with the given id.
func (d *Document) Object(id string) (Record, bool) {
	rec, ok := d.objects[id]
	if !ok {
		return Record{}, false
	}
	return *rec, true
}

// Objects returns copies of every record in creation order.
func (d *Document) Objects() []Record {
	out := make([]Record, 0, len(d.objects))
	for _, rec := range d.objects {
		out = append(out, *rec)
	}
	slices.SortFunc(out, func(a, b Record) int { return cmp.Compare(a.seq, b.seq) })
	return out
}

// Children returns the records whose parent is id, in creation order.
func (d *Document) Children(id string) []Record {
	var out []Record
	for _, rec := range d.Objects() {
		if rec.Parent == id {
			out = append(out, rec)
		}
	}
	return out
}

// Len returns the number of registered objects.
func (d *Document) Len() int {
	return len(d.objects)
}

// PlaneDefinition returns the definition of a registered plane.
func (d *Document) PlaneDefinition(id string) (geom.PlaneDefinition, bool) {
	def, ok := d.planeDefs[id]
	return def, ok
}

// ActivePlane returns the id of the active plane, or "" if none.
func (d *Document) ActivePlane() string {
	return d.activePlane
}

// CurrentPlane returns the plane context consumed by creation calls.
// Without an active plane it is the world XY plane.
func (d *Document) CurrentPlane() geom.PlaneContext {
	return d.current
}

// PlaneContext returns the context of the plane with the given id, or the
// current plane when id is empty.
func (d *Document) PlaneContext(id string) (geom.PlaneContext, error) {
	if id == "" {
		return d.current, nil
	}
	def, ok := d.planeDefs[id]
	if !ok {
		return geom.PlaneContext{}, fmt.Errorf("%w: plane %q", core.ErrNotFound, id)
	}
	return def.Context()
}

// Systems returns the coordinate system manager. Use the document's
// DeleteSystem and RenameSystem to keep the Global and active guards.
func (d *Document) Systems() *coords.Manager {
	return d.systems
}

// Presenter returns the presenter visuals are built with.
func (d *Document) Presenter() Presenter {
	return d.presenter
}

// PlaneSize returns the edge length used for plane visuals.
func (d *Document) PlaneSize() float64 {
	return d.planeSize
}

// ---------- History ----------

// HistoryEntry describes one recorded command.
type HistoryEntry struct {
	Description string `json:"description"`
	Applied     bool   `json:"applied"`
}

// History returns every recorded command, oldest first.
func (d *Document) History() []HistoryEntry {
	out := make([]HistoryEntry, len(d.history))
	for i, c := range d.history {
		out[i] = HistoryEntry{Description: c.Describe(), Applied: i <= d.cursor}
	}
	return out
}

// Cursor returns the index of the last applied command, -1 if none.
func (d *Document) Cursor() int {
	return d.cursor
}

// CanUndo reports whether Undo has a command to reverse.
func (d *Document) CanUndo() bool {
	return d.cursor >= 0
}

// CanRedo reports whether Redo has a command to reapply.
func (d *Document) CanRedo() bool {
	return d.cursor < len(d.history)-1
}

// Apply executes c and records it. On failure nothing is recorded and the
// redo branch is kept.
func (d *Document) Apply(c Command) error {
	if err := c.Execute(d); err != nil {
		return err
	}
	d.history = append(d.history[:d.cursor+1], c)
	d.cursor++
	d.logger.Debug("applied command", slog.String("command", c.Describe()), slog.Int("cursor", d.cursor))
	return nil
}

// Undo reverses the last applied command.
func (d *Document) Undo() error {
	if !d.CanUndo() {
		return fmt.Errorf("%w: nothing to undo", core.ErrInvalidOperation)
	}
	c := d.history[d.cursor]
	if err := c.Undo(d); err != nil {
		return fmt.Errorf("failed to undo %s: %w", c.Describe(), err)
	}
	d.cursor--
	d.logger.Debug("undid command", slog.String("command", c.Describe()), slog.Int("cursor", d.cursor))
	return nil
}

// Redo reapplies the next undone command.
func (d *Document) Redo() error {
	if !d.CanRedo() {
		return fmt.Errorf("%w: nothing to redo", core.ErrInvalidOperation)
	}
	c := d.history[d.cursor+1]
	if err := c.Execute(d); err != nil {
		return fmt.Errorf("failed to redo %s: %w", c.Describe(), err)
	}
	d.cursor++
	d.logger.Debug("redid command", slog.String("command", c.Describe()), slog.Int("cursor", d.cursor))
	return nil
}

// ---------- Operations ----------

// Create registers a new object built from data and returns its id.
// A plane must carry its definition in data.Plane.
func (d *Document) Create(category Category, data mesh.Data, props Properties) (string, error) {
	if !category.Valid() {
		return "", fmt.Errorf("%w: unknown category %q", core.ErrInvalidOperation, category)
	}
	if err := data.Validate(); err != nil {
		return "", fmt.Errorf("%w: %w", core.ErrInvalidOperation, err)
	}
	var def *geom.PlaneDefinition
	if category == CategoryPlane {
		if data.Plane == nil {
			return "", fmt.Errorf("%w: plane mesh without definition", core.ErrInvalidOperation)
		}
		pd := *data.Plane
		def = &pd
	}
	if props.TypeLabel == "" {
		props.TypeLabel = string(category)
	}

	id := props.Name
	if id == "" {
		id = d.NextID(props.TypeLabel)
	}
	c := &CreateCommand{id: id, category: category, data: data, props: props, def: def}
	if err := d.Apply(c); err != nil {
		return "", err
	}
	return id, nil
}

// CreatePlane registers a plane visual for def and makes it active. The
// two steps are separate history entries. An empty name generates one.
func (d *Document) CreatePlane(name string, def geom.PlaneDefinition) (string, error) {
	data, err := mesh.Plane(def, d.planeSize)
	if err != nil {
		return "", err
	}
	id, err := d.Create(CategoryPlane, data, Properties{Name: name, TypeLabel: PlaneTypeLabel})
	if err != nil {
		return "", err
	}
	if err := d.SetActivePlane(id); err != nil {
		return "", err
	}
	return id, nil
}

// Delete removes an object; deleting a group removes its children too.
// The active plane cannot be deleted.
func (d *Document) Delete(id string) error {
	if _, ok := d.objects[id]; !ok {
		return fmt.Errorf("%w: object %q", core.ErrNotFound, id)
	}
	if id == d.activePlane {
		return fmt.Errorf("%w: %q is the active plane", core.ErrInvalidOperation, id)
	}
	return d.Apply(&DeleteCommand{id: id})
}

// Rename changes an object's id everywhere it is referenced.
func (d *Document) Rename(oldID, newID string) error {
	if err := d.checkRename(oldID, newID); err != nil {
		return err
	}
	return d.Apply(&RenameCommand{oldID: oldID, newID: newID})
}

// ToggleVisibility flips an object's visibility. A group carries its
// children along.
func (d *Document) ToggleVisibility(id string) error {
	if _, ok := d.objects[id]; !ok {
		return fmt.Errorf("%w: object %q", core.ErrNotFound, id)
	}
	return d.Apply(&ToggleVisibilityCommand{id: id})
}

// SetActivePlane activates the plane with the given id and recomputes the
// current plane context. An empty id deactivates planes and restores the
// world XY context.
func (d *Document) SetActivePlane(id string) error {
	if id != "" {
		if _, ok := d.planeDefs[id]; !ok {
			return fmt.Errorf("%w: plane %q", core.ErrNotFound, id)
		}
	}
	return d.Apply(&SetActivePlaneCommand{from: d.activePlane, to: id})
}

// NextID returns "<label>_<n>" for the smallest n >= 1 not in use.
func (d *Document) NextID(label string) string {
	for n := 1; ; n++ {
		id := label + "_" + strconv.Itoa(n)
		if _, taken := d.objects[id]; !taken {
			return id
		}
	}
}

// ---------- Mutation primitives used by commands ----------

func (d *Document) nextSeq() int {
	d.seq++
	return d.seq
}

func (d *Document) attach(rec *Record) {
	if rec.Visual == nil {
		return
	}
	d.presenter.Attach(rec.Visual)
	d.presenter.SetVisible(rec.Visual, rec.Visible)
}

func (d *Document) detach(rec *Record) {
	if rec.Visual == nil {
		return
	}
	if rec.ID == d.activePlane {
		d.presenter.Highlight(rec.Visual, false)
	}
	d.presenter.Detach(rec.Visual)
}

// insert registers rec, and def when non-nil. The id must be free.
func (d *Document) insert(rec *Record, def *geom.PlaneDefinition) {
	d.objects[rec.ID] = rec
	if def != nil {
		d.planeDefs[rec.ID] = *def
	}
	d.attach(rec)
}

// remove unregisters id and returns what it held.
func (d *Document) remove(id string) (*Record, *geom.PlaneDefinition) {
	rec := d.objects[id]
	d.detach(rec)
	delete(d.objects, id)
	var def *geom.PlaneDefinition
	if pd, ok := d.planeDefs[id]; ok {
		def = &pd
		delete(d.planeDefs, id)
	}
	return rec, def
}

func (d *Document) checkFree(ids ...string) error {
	for _, id := range ids {
		if id == "" {
			return fmt.Errorf("%w: empty object id", core.ErrInvalidOperation)
		}
		if _, taken := d.objects[id]; taken {
			return fmt.Errorf("%w: object %q", core.ErrDuplicateName, id)
		}
	}
	return nil
}

func (d *Document) checkRename(oldID, newID string) error {
	if _, ok := d.objects[oldID]; !ok {
		return fmt.Errorf("%w: object %q", core.ErrNotFound, oldID)
	}
	return d.checkFree(newID)
}

// renameID moves oldID to newID in every map that references it.
func (d *Document) renameID(oldID, newID string) error {
	if err := d.checkRename(oldID, newID); err != nil {
		return err
	}
	rec := d.objects[oldID]
	delete(d.objects, oldID)
	rec.ID = newID
	d.objects[newID] = rec

	if def, ok := d.planeDefs[oldID]; ok {
		delete(d.planeDefs, oldID)
		d.planeDefs[newID] = def
	}
	if d.activePlane == oldID {
		d.activePlane = newID
	}
	for _, child := range d.objects {
		if child.Parent == oldID {
			child.Parent = newID
		}
	}
	return nil
}

// applyActivePlane moves the active pointer from one plane to another.
// It is its own inverse with the arguments swapped.
func (d *Document) applyActivePlane(from, to string) error {
	ctx := geom.GlobalXYContext()
	if to != "" {
		def, ok := d.planeDefs[to]
		if !ok {
			return fmt.Errorf("%w: plane %q", core.ErrNotFound, to)
		}
		var err error
		if ctx, err = def.Context(); err != nil {
			return err
		}
	}

	if rec, ok := d.objects[from]; ok && rec.Visual != nil {
		d.presenter.Highlight(rec.Visual, false)
	}
	if rec, ok := d.objects[to]; ok && rec.Visual != nil {
		d.presenter.Highlight(rec.Visual, true)
	}
	d.activePlane = to
	d.current = ctx
	d.logger.Debug("active plane changed", slog.String("from", from), slog.String("to", to))
	return nil
}
