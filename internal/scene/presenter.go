package scene

import (
	"github.com/leapstack-labs/leapcad/pkg/mesh"
)

// Presenter builds and manages visuals for document objects.
//
// Build is called once per object; a failing Build aborts the command
// without side effects. The other methods receive only refs returned by
// Build.
type Presenter interface {
	Build(id string, data mesh.Data, props Properties) (VisualRef, error)
	Attach(ref VisualRef)
	Detach(ref VisualRef)
	SetVisible(ref VisualRef, visible bool)
	Highlight(ref VisualRef, on bool)
}

// MemoryVisual is the visual built by MemoryPresenter.
type MemoryVisual struct {
	ID          string
	Mesh        mesh.Data
	Props       Properties
	Attached    bool
	Visible     bool
	Highlighted bool
}

// MemoryPresenter keeps visuals in memory. It backs the terminal front
// ends and the tests.
type MemoryPresenter struct {
	// FailBuild, when set, is consulted before every build.
	FailBuild func(id string) error

	builds  int
	visuals []*MemoryVisual
}

// NewMemoryPresenter returns an empty presenter.
func NewMemoryPresenter() *MemoryPresenter {
	return &MemoryPresenter{}
}

// Build implements Presenter.
func (p *MemoryPresenter) Build(id string, data mesh.Data, props Properties) (VisualRef, error) {
	if p.FailBuild != nil {
		if err := p.FailBuild(id); err != nil {
			return nil, err
		}
	}
	p.builds++
	v := &MemoryVisual{ID: id, Mesh: data, Props: props, Visible: true}
	p.visuals = append(p.visuals, v)
	return v, nil
}

// Attach implements Presenter.
func (p *MemoryPresenter) Attach(ref VisualRef) {
	if v, ok := ref.(*MemoryVisual); ok {
		v.Attached = true
	}
}

// Detach implements Presenter.
func (p *MemoryPresenter) Detach(ref VisualRef) {
	if v, ok := ref.(*MemoryVisual); ok {
		v.Attached = false
	}
}

// SetVisible implements Presenter.
func (p *MemoryPresenter) SetVisible(ref VisualRef, visible bool) {
	if v, ok := ref.(*MemoryVisual); ok {
		v.Visible = visible
	}
}

// Highlight implements Presenter.
func (p *MemoryPresenter) Highlight(ref VisualRef, on bool) {
	if v, ok := ref.(*MemoryVisual); ok {
		v.Highlighted = on
	}
}

// Builds returns how many visuals were built.
func (p *MemoryPresenter) Builds() int {
	return p.builds
}

// Attached returns the visuals currently attached, in build order.
func (p *MemoryPresenter) Attached() []*MemoryVisual {
	var out []*MemoryVisual
	for _, v := range p.visuals {
		if v.Attached {
			out = append(out, v)
		}
	}
	return out
}
