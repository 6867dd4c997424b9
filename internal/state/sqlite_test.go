package state

import (
	"context"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/leapstack-labs/leapcad/pkg/core"
	"github.com/leapstack-labs/leapcad/pkg/geom"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setupTestStore(t *testing.T) *SQLiteStore {
	t.Helper()
	store, err := OpenJournal(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { _ = store.Close() })
	return store
}

func TestOpenJournal(t *testing.T) {
	store := setupTestStore(t)

	version, err := store.MigrationVersion()
	require.NoError(t, err)
	assert.Equal(t, int64(1), version)

	rows, err := store.db.Query("SELECT 1 FROM imports LIMIT 1")
	require.NoError(t, err)
	require.NoError(t, rows.Close())
}

func TestOpenJournal_File(t *testing.T) {
	path := t.TempDir() + "/journal.db"
	store, err := OpenJournal(path)
	require.NoError(t, err)
	assert.Equal(t, path, store.Path())
	require.NoError(t, store.Close())

	// migrations are idempotent
	store, err = OpenJournal(path)
	require.NoError(t, err)
	require.NoError(t, store.Close())
}

func TestRecordImport_RoundTrip(t *testing.T) {
	ctx := context.Background()
	store := setupTestStore(t)

	imp := &Import{
		Path:        "/drawings/plan.dxf",
		Group:       "DXF_Import_1",
		Plane:       "Global_XY_Plane",
		Offset:      geom.Vec3{1, 2, 3},
		Shapes:      4,
		Skipped:     1,
		Diagnostics: 2,
		Kinds:       map[string]int{"LINE": 3, "CIRCLE": 1},
	}
	require.NoError(t, store.RecordImport(ctx, imp))
	assert.NotEmpty(t, imp.ID)
	assert.False(t, imp.ImportedAt.IsZero())

	got, err := store.GetImport(ctx, imp.ID)
	require.NoError(t, err)
	assert.Equal(t, imp.Path, got.Path)
	assert.Equal(t, imp.Group, got.Group)
	assert.Equal(t, imp.Plane, got.Plane)
	assert.Equal(t, imp.Offset, got.Offset)
	assert.Equal(t, imp.Kinds, got.Kinds)
	assert.Equal(t, 4, got.Shapes)
	assert.Equal(t, 1, got.Skipped)
	assert.Equal(t, 2, got.Diagnostics)
	assert.WithinDuration(t, imp.ImportedAt, got.ImportedAt, time.Second)

	_, err = store.GetImport(ctx, "missing")
	require.ErrorIs(t, err, core.ErrNotFound)
}

func TestListImports(t *testing.T) {
	ctx := context.Background()
	store := setupTestStore(t)

	base := time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC)
	for i, name := range []string{"a.dxf", "b.dxf", "c.dxf"} {
		require.NoError(t, store.RecordImport(ctx, &Import{
			Path:       name,
			Group:      "G",
			Kinds:      map[string]int{},
			ImportedAt: base.Add(time.Duration(i) * time.Minute),
		}))
	}

	all, err := store.ListImports(ctx, 0)
	require.NoError(t, err)
	require.Len(t, all, 3)
	assert.Equal(t, "c.dxf", all[0].Path, "most recent first")
	assert.Equal(t, "a.dxf", all[2].Path)

	two, err := store.ListImports(ctx, 2)
	require.NoError(t, err)
	assert.Len(t, two, 2)

	n, err := store.ClearImports(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(3), n)

	all, err = store.ListImports(ctx, 0)
	require.NoError(t, err)
	assert.Empty(t, all)
}

func TestNotOpened(t *testing.T) {
	ctx := context.Background()
	store := NewSQLiteStore()

	require.ErrorIs(t, store.RecordImport(ctx, &Import{}), errNotOpened)
	_, err := store.ListImports(ctx, 0)
	require.ErrorIs(t, err, errNotOpened)
	_, err = store.GetImport(ctx, "x")
	require.ErrorIs(t, err, errNotOpened)
	_, err = store.ClearImports(ctx)
	require.ErrorIs(t, err, errNotOpened)
	require.ErrorIs(t, store.Migrate(), errNotOpened)
	assert.NoError(t, store.Close())
}

func TestJournal_DatabaseErrors(t *testing.T) {
	ctx := context.Background()

	tests := []struct {
		name    string
		setup   func(mock sqlmock.Sqlmock)
		run     func(s *SQLiteStore) error
		wantErr string
	}{
		{
			name: "record",
			setup: func(mock sqlmock.Sqlmock) {
				mock.ExpectExec("INSERT INTO imports").WillReturnError(assert.AnError)
			},
			run: func(s *SQLiteStore) error {
				return s.RecordImport(ctx, &Import{Path: "a.dxf"})
			},
			wantErr: "failed to record import",
		},
		{
			name: "list",
			setup: func(mock sqlmock.Sqlmock) {
				mock.ExpectQuery("SELECT id, path").WillReturnError(assert.AnError)
			},
			run: func(s *SQLiteStore) error {
				_, err := s.ListImports(ctx, 10)
				return err
			},
			wantErr: "failed to list imports",
		},
		{
			name: "bad kinds column",
			setup: func(mock sqlmock.Sqlmock) {
				rows := sqlmock.NewRows([]string{
					"id", "path", "group_id", "plane", "offset_x", "offset_y", "offset_z",
					"shapes", "skipped", "diagnostics", "kinds", "imported_at",
				}).AddRow("1", "a.dxf", "G", "", 0.0, 0.0, 0.0, 1, 0, 0, "not json", time.Now())
				mock.ExpectQuery("SELECT id, path").WillReturnRows(rows)
			},
			run: func(s *SQLiteStore) error {
				_, err := s.ListImports(ctx, 10)
				return err
			},
			wantErr: "failed to decode shape kinds",
		},
		{
			name: "clear",
			setup: func(mock sqlmock.Sqlmock) {
				mock.ExpectExec("DELETE FROM imports").WillReturnError(assert.AnError)
			},
			run: func(s *SQLiteStore) error {
				_, err := s.ClearImports(ctx)
				return err
			},
			wantErr: "failed to clear imports",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			db, mock, err := sqlmock.New()
			require.NoError(t, err)
			defer func() { _ = db.Close() }()
			tt.setup(mock)

			store := NewSQLiteStore()
			store.OpenDB(db)

			err = tt.run(store)
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
			assert.NoError(t, mock.ExpectationsWereMet())
		})
	}
}
