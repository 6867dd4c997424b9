// Package state keeps the import journal: a SQLite record of every file
// imported into a document. The journal stores metadata about imports
// only, never document contents.
package state

import (
	"context"
	"time"

	"github.com/leapstack-labs/leapcad/pkg/geom"
)

// Import is one journal entry.
type Import struct {
	ID    string `json:"id"`
	Path  string `json:"path"`
	Group string `json:"group"`
	// Plane is the id of the plane the shapes were mapped onto.
	Plane       string         `json:"plane"`
	Offset      geom.Vec3      `json:"offset"`
	Shapes      int            `json:"shapes"`
	Skipped     int            `json:"skipped"`
	Diagnostics int            `json:"diagnostics"`
	Kinds       map[string]int `json:"kinds"`
	ImportedAt  time.Time      `json:"imported_at"`
}

// Journal records imports.
type Journal interface {
	RecordImport(ctx context.Context, imp *Import) error
	ListImports(ctx context.Context, limit int) ([]Import, error)
	GetImport(ctx context.Context, id string) (*Import, error)
	ClearImports(ctx context.Context) (int64, error)
	Close() error
}

var _ Journal = (*SQLiteStore)(nil)
