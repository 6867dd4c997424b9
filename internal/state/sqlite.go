package state

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/leapstack-labs/leapcad/pkg/core"
	_ "modernc.org/sqlite" // registers the "sqlite" driver
)

// SQLiteStore implements Journal using SQLite.
type SQLiteStore struct {
	db   *sql.DB
	path string
}

// NewSQLiteStore creates a new SQLite journal instance.
func NewSQLiteStore() *SQLiteStore {
	return &SQLiteStore{}
}

// Open opens a connection to the SQLite database.
// Use ":memory:" for an in-memory database.
func (s *SQLiteStore) Open(path string) error {
	dsn := path + "?_pragma=busy_timeout(5000)"
	if path != ":memory:" {
		dsn += "&_pragma=journal_mode(WAL)"
	}

	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return fmt.Errorf("failed to open sqlite database: %w", err)
	}
	// every :memory: connection is its own database
	db.SetMaxOpenConns(1)

	if err := db.Ping(); err != nil {
		_ = db.Close()
		return fmt.Errorf("failed to ping sqlite database: %w", err)
	}

	s.db = db
	s.path = path
	return nil
}

// OpenDB uses an existing connection, e.g. one from sqlmock.
func (s *SQLiteStore) OpenDB(db *sql.DB) {
	s.db = db
}

// Path returns the database path given to Open.
func (s *SQLiteStore) Path() string {
	return s.path
}

// Close closes the SQLite database connection.
func (s *SQLiteStore) Close() error {
	if s.db != nil {
		return s.db.Close()
	}
	return nil
}

var errNotOpened = errors.New("database not opened")

// generateID creates a new UUID.
func generateID() string {
	return uuid.New().String()
}

// RecordImport inserts imp, filling in its ID and timestamp when unset.
func (s *SQLiteStore) RecordImport(ctx context.Context, imp *Import) error {
	if s.db == nil {
		return errNotOpened
	}
	if imp.ID == "" {
		imp.ID = generateID()
	}
	if imp.ImportedAt.IsZero() {
		imp.ImportedAt = time.Now().UTC()
	}
	kinds, err := json.Marshal(imp.Kinds)
	if err != nil {
		return fmt.Errorf("failed to encode shape kinds: %w", err)
	}

	_, err = s.db.ExecContext(ctx,
		`INSERT INTO imports (id, path, group_id, plane, offset_x, offset_y, offset_z,
			shapes, skipped, diagnostics, kinds, imported_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		imp.ID, imp.Path, imp.Group, imp.Plane, imp.Offset[0], imp.Offset[1], imp.Offset[2],
		imp.Shapes, imp.Skipped, imp.Diagnostics, string(kinds), imp.ImportedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to record import: %w", err)
	}
	return nil
}

const selectImports = `SELECT id, path, group_id, plane, offset_x, offset_y, offset_z,
	shapes, skipped, diagnostics, kinds, imported_at FROM imports`

type scanner interface {
	Scan(dest ...any) error
}

func scanImport(row scanner) (*Import, error) {
	imp := &Import{}
	var kinds string
	err := row.Scan(&imp.ID, &imp.Path, &imp.Group, &imp.Plane,
		&imp.Offset[0], &imp.Offset[1], &imp.Offset[2],
		&imp.Shapes, &imp.Skipped, &imp.Diagnostics, &kinds, &imp.ImportedAt)
	if err != nil {
		return nil, err
	}
	if err := json.Unmarshal([]byte(kinds), &imp.Kinds); err != nil {
		return nil, fmt.Errorf("failed to decode shape kinds of %s: %w", imp.ID, err)
	}
	return imp, nil
}

// ListImports returns the most recent imports first. A non-positive limit
// returns every entry.
func (s *SQLiteStore) ListImports(ctx context.Context, limit int) ([]Import, error) {
	if s.db == nil {
		return nil, errNotOpened
	}
	if limit <= 0 {
		limit = -1
	}

	rows, err := s.db.QueryContext(ctx, selectImports+` ORDER BY imported_at DESC, id LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to list imports: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var out []Import
	for rows.Next() {
		imp, err := scanImport(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan import: %w", err)
		}
		out = append(out, *imp)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to list imports: %w", err)
	}
	return out, nil
}

// GetImport returns one entry by id.
func (s *SQLiteStore) GetImport(ctx context.Context, id string) (*Import, error) {
	if s.db == nil {
		return nil, errNotOpened
	}

	imp, err := scanImport(s.db.QueryRowContext(ctx, selectImports+` WHERE id = ?`, id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%w: import %s", core.ErrNotFound, id)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get import: %w", err)
	}
	return imp, nil
}

// ClearImports deletes every entry and returns how many were removed.
func (s *SQLiteStore) ClearImports(ctx context.Context) (int64, error) {
	if s.db == nil {
		return 0, errNotOpened
	}

	res, err := s.db.ExecContext(ctx, `DELETE FROM imports`)
	if err != nil {
		return 0, fmt.Errorf("failed to clear imports: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("failed to clear imports: %w", err)
	}
	return n, nil
}
