package console

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/leapstack-labs/leapcad/internal/scene"
	"github.com/leapstack-labs/leapcad/internal/state"
	"github.com/leapstack-labs/leapcad/pkg/dxf"
	"github.com/leapstack-labs/leapcad/pkg/geom"
)

// ImportRequest describes one file import.
type ImportRequest struct {
	Path string
	// Plane is the id of the target plane. Empty uses the current plane.
	Plane  string
	Name   string
	Offset geom.Vec3
	// Segments is the circle and arc tessellation.
	Segments int
}

// ImportResult reports what an import produced.
type ImportResult struct {
	Group     string
	Container *dxf.Container
	// Entry is the journal record, nil without a journal.
	Entry *state.Import
}

// Importer parses files into a document and journals every import.
type Importer struct {
	doc     *scene.Document
	reader  *dxf.Reader
	journal state.Journal
	logger  *slog.Logger
}

// NewImporter creates an importer. journal may be nil.
func NewImporter(doc *scene.Document, journal state.Journal, logger *slog.Logger) *Importer {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &Importer{
		doc:     doc,
		reader:  dxf.NewReader(logger),
		journal: journal,
		logger:  logger,
	}
}

// Import parses req.Path and registers its shapes as one group. A journal
// failure is returned after the group has been created; the document keeps it.
func (im *Importer) Import(ctx context.Context, req ImportRequest) (*ImportResult, error) {
	c, err := im.reader.ParseFile(req.Path)
	if err != nil {
		return nil, err
	}

	planeCtx, err := im.doc.PlaneContext(req.Plane)
	if err != nil {
		return nil, err
	}
	plane := req.Plane
	if plane == "" {
		plane = im.doc.ActivePlane()
	}

	group, err := im.doc.Import(c, planeCtx, scene.ImportOptions{
		Name:     req.Name,
		Offset:   req.Offset,
		Segments: req.Segments,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to import %s: %w", req.Path, err)
	}
	res := &ImportResult{Group: group, Container: c}

	if im.journal == nil {
		return res, nil
	}
	entry := &state.Import{
		Path:        req.Path,
		Group:       group,
		Plane:       plane,
		Offset:      req.Offset,
		Shapes:      c.Len(),
		Skipped:     c.Skipped,
		Diagnostics: len(c.Diagnostics),
		Kinds:       c.CountByKind(),
		ImportedAt:  time.Now().UTC(),
	}
	if err := im.journal.RecordImport(ctx, entry); err != nil {
		return res, fmt.Errorf("journal %s: %w", req.Path, err)
	}
	im.logger.Debug("journaled import", slog.String("id", entry.ID), slog.String("path", req.Path))
	res.Entry = entry
	return res, nil
}
