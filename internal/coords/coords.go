// Package coords manages named right-handed coordinate systems.
//
// A Manager always holds the "Global" system at the world origin with the
// canonical axes and tracks one active system. The manager performs
// removals unconditionally; refusing to delete the active or Global system
// is the caller's job.
package coords

import (
	"fmt"
	"log/slog"
	"slices"

	"github.com/leapstack-labs/leapcad/pkg/core"
	"github.com/leapstack-labs/leapcad/pkg/geom"
)

// GlobalTitle names the world coordinate system.
const GlobalTitle = "Global"

// PlaneKind selects one of the three coordinate planes of a system.
type PlaneKind string

// Coordinate planes.
const (
	PlaneOXY PlaneKind = "OXY"
	PlaneOYZ PlaneKind = "OYZ"
	PlaneOZX PlaneKind = "OZX"
)

// System is a named orthonormal frame with z = x × y.
type System struct {
	Title  string    `json:"title"`
	Origin geom.Vec3 `json:"origin"`
	XAxis  geom.Vec3 `json:"x_axis"`
	YAxis  geom.Vec3 `json:"y_axis"`
	ZAxis  geom.Vec3 `json:"z_axis"`
}

func global() System {
	return System{Title: GlobalTitle, XAxis: geom.XAxis, YAxis: geom.YAxis, ZAxis: geom.ZAxis}
}

// ToWorld maps coordinates expressed in the system to world coordinates.
func (s System) ToWorld(local geom.Vec3) geom.Vec3 {
	return s.Origin.
		Add(s.XAxis.Mul(local[0])).
		Add(s.YAxis.Mul(local[1])).
		Add(s.ZAxis.Mul(local[2]))
}

// Plane returns the coordinate plane of the system through its origin:
// OXY has normal z, OYZ normal x and OZX normal y.
func (s System) Plane(kind PlaneKind) (geom.PlaneDefinition, error) {
	var normal geom.Vec3
	switch kind {
	case PlaneOXY:
		normal = s.ZAxis
	case PlaneOYZ:
		normal = s.XAxis
	case PlaneOZX:
		normal = s.YAxis
	default:
		return geom.PlaneDefinition{}, fmt.Errorf("%w: unknown plane %q", core.ErrInvalidOperation, kind)
	}
	return geom.NewPlaneDefinition(s.Origin, normal)
}

// PlaneName is the object id used for a plane derived from a system.
func PlaneName(title string, kind PlaneKind) string {
	return fmt.Sprintf("Plane_from_%s_%s", title, kind)
}

// Manager owns the title → System map.
type Manager struct {
	systems map[string]System
	order   []string
	active  string
	logger  *slog.Logger
}

// NewManager returns a manager holding only Global, which is active.
// A nil logger discards output.
func NewManager(logger *slog.Logger) *Manager {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	m := &Manager{logger: logger}
	m.Reset()
	return m
}

// Reset restores the just-constructed state.
func (m *Manager) Reset() {
	g := global()
	m.systems = map[string]System{g.Title: g}
	m.order = []string{g.Title}
	m.active = g.Title
}

// CreateFromThreePoints builds a system from its origin, a point on the
// x axis and a point in the xy plane.
func (m *Manager) CreateFromThreePoints(title string, origin, pointOnX, pointInXY geom.Vec3) (System, error) {
	return m.CreateFromVectors(title, origin, pointOnX.Sub(origin), pointInXY.Sub(origin))
}

// CreateFromVectors builds a system from an x direction and a second
// direction in the xy plane: x = x̂, z = normalize(x × y), y = z × x.
func (m *Manager) CreateFromVectors(title string, origin, xDir, yDir geom.Vec3) (System, error) {
	if err := m.checkNew(title); err != nil {
		return System{}, err
	}
	x, y, z, err := geom.Basis(xDir, yDir)
	if err != nil {
		return System{}, fmt.Errorf("coordinate system %q: %w", title, err)
	}

	s := System{Title: title, Origin: origin, XAxis: x, YAxis: y, ZAxis: z}
	m.systems[title] = s
	m.order = append(m.order, title)
	m.logger.Debug("created coordinate system", slog.String("title", title))
	return s, nil
}

func (m *Manager) checkNew(title string) error {
	if title == "" {
		return fmt.Errorf("%w: empty coordinate system title", core.ErrInvalidOperation)
	}
	if _, ok := m.systems[title]; ok {
		return fmt.Errorf("%w: coordinate system %q", core.ErrDuplicateName, title)
	}
	return nil
}

// SetActive makes title the active system.
func (m *Manager) SetActive(title string) error {
	if _, ok := m.systems[title]; !ok {
		return fmt.Errorf("%w: coordinate system %q", core.ErrNotFound, title)
	}
	m.active = title
	return nil
}

// Active returns the active system.
func (m *Manager) Active() System {
	return m.systems[m.active]
}

// ActiveTitle returns the title of the active system.
func (m *Manager) ActiveTitle() string {
	return m.active
}

// Get returns the system with the given title.
func (m *Manager) Get(title string) (System, bool) {
	s, ok := m.systems[title]
	return s, ok
}

// Titles returns the titles in creation order.
func (m *Manager) Titles() []string {
	return slices.Clone(m.order)
}

// Len returns the number of systems, Global included.
func (m *Manager) Len() int {
	return len(m.systems)
}

// Delete removes title and reports whether it existed.
func (m *Manager) Delete(title string) bool {
	if _, ok := m.systems[title]; !ok {
		return false
	}
	delete(m.systems, title)
	m.order = slices.DeleteFunc(m.order, func(t string) bool { return t == title })
	m.logger.Debug("deleted coordinate system", slog.String("title", title))
	return true
}

// Rename changes a system's title. The active pointer follows it.
func (m *Manager) Rename(oldTitle, newTitle string) error {
	s, ok := m.systems[oldTitle]
	if !ok {
		return fmt.Errorf("%w: coordinate system %q", core.ErrNotFound, oldTitle)
	}
	if err := m.checkNew(newTitle); err != nil {
		return err
	}

	s.Title = newTitle
	delete(m.systems, oldTitle)
	m.systems[newTitle] = s
	m.order[slices.Index(m.order, oldTitle)] = newTitle
	if m.active == oldTitle {
		m.active = newTitle
	}
	m.logger.Debug("renamed coordinate system", slog.String("from", oldTitle), slog.String("to", newTitle))
	return nil
}
