package commands

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/chzyer/readline"
	"github.com/leapstack-labs/leapcad/internal/cli/testutil"
	"github.com/leapstack-labs/leapcad/internal/scene"
	starctx "github.com/leapstack-labs/leapcad/internal/starlark"
	"github.com/leapstack-labs/leapcad/internal/state"
	coretest "github.com/leapstack-labs/leapcad/internal/testutil"
	"github.com/leapstack-labs/leapcad/pkg/core"
	"github.com/spf13/cobra"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"
)

func TestCommandMetadata(t *testing.T) {
	tests := []struct {
		cmd   *cobra.Command
		use   string
		flags []string
	}{
		{NewInspectCommand(), "inspect <file>...", []string{"shapes", "watch"}},
		{NewMeshCommand(), "mesh [kind] [args...]", []string{"origin", "normal", "format"}},
		{NewImportCommand(), "import <file>...", []string{"at", "name", "plane", "origin", "normal"}},
		{NewHistoryCommand(), "history [id]", []string{"limit", "clear"}},
		{NewRunCommand(), "run [script.star]", []string{"expr", "show"}},
		{NewShellCommand(), "shell", nil},
	}

	for _, tt := range tests {
		t.Run(tt.use, func(t *testing.T) {
			assert.Equal(t, tt.use, tt.cmd.Use)
			assert.NotEmpty(t, tt.cmd.Short, "Short should not be empty")
			assert.NotEmpty(t, tt.cmd.Example, "Example should not be empty")
			for _, flag := range tt.flags {
				assert.NotNil(t, tt.cmd.Flags().Lookup(flag), "flag %q should exist", flag)
			}
		})
	}
}

// ---------- inspect ----------

func TestInspect_JSON(t *testing.T) {
	p := testutil.SetupTestProject(t)
	cfg := testutil.TestConfig(t, "json")

	out, _, err := testutil.Execute(t, NewInspectCommand(), cfg, p.Drawing, "--shapes")
	require.NoError(t, err)

	var reports []FileReport
	require.NoError(t, json.Unmarshal([]byte(out), &reports))
	require.Len(t, reports, 1)

	rep := reports[0]
	assert.Equal(t, p.Drawing, rep.Path)
	assert.Equal(t, 5, rep.Shapes)
	assert.Equal(t, map[string]int{"LINE": 1, "CIRCLE": 1, "ARC": 1, "LWPOLYLINE": 1, "TEXT": 1}, rep.Kinds)
	assert.Zero(t, rep.Skipped)
	assert.Empty(t, rep.Diagnostics)

	require.Len(t, rep.Entities, 5)
	assert.Equal(t, ShapeSummary{Kind: "LINE", Layer: "Walls", Color: 256, Geometry: "(0, 0, 0) -> (10, 0, 0)"}, rep.Entities[0])
	assert.Equal(t, "center (5, 5, 0) r 2", rep.Entities[1].Geometry)
	assert.Equal(t, "center (0, 0, 0) r 3 0..90 deg", rep.Entities[2].Geometry)
	assert.Equal(t, "3 vertices, closed", rep.Entities[3].Geometry)
	assert.Equal(t, `"Door" at (1, 1, 0) h 0.5`, rep.Entities[4].Geometry)
}

func TestInspect_KeepsFileOrder(t *testing.T) {
	cfg := testutil.TestConfig(t, "json")
	first := coretest.WriteFile(t, "first.dxf", coretest.Entities(
		"0", "LINE", "10", "0", "20", "0", "11", "1", "21", "1",
		"0", "SPLINE", "10", "0",
		"0", "CIRCLE", "10", "0", "20", "0", "40", "oops",
	))
	second := coretest.WriteFile(t, "second.dxf", coretest.SampleDrawing())

	out, _, err := testutil.Execute(t, NewInspectCommand(), cfg, first, second)
	require.NoError(t, err)

	var reports []FileReport
	require.NoError(t, json.Unmarshal([]byte(out), &reports))
	require.Len(t, reports, 2)
	assert.Equal(t, first, reports[0].Path)
	assert.Equal(t, 2, reports[0].Shapes)
	assert.Equal(t, 1, reports[0].Skipped)
	assert.Len(t, reports[0].Diagnostics, 1)
	assert.Nil(t, reports[0].Entities)
	assert.Equal(t, second, reports[1].Path)
	assert.Equal(t, 5, reports[1].Shapes)
}

func TestInspect_Markdown(t *testing.T) {
	p := testutil.SetupTestProject(t)
	cfg := testutil.TestConfig(t, "markdown")

	out, _, err := testutil.Execute(t, NewInspectCommand(), cfg, p.Drawing)
	require.NoError(t, err)

	assert.Contains(t, out, "## "+p.Drawing)
	assert.Contains(t, out, "- **shapes:** 5")
	assert.Contains(t, out, "| LINE | 1 |")
	testutil.AssertNoANSI(t, out)
	testutil.AssertValidMarkdown(t, out)
}

func TestInspect_MissingFile(t *testing.T) {
	cfg := testutil.TestConfig(t, "json")
	_, _, err := testutil.Execute(t, NewInspectCommand(), cfg, filepath.Join(t.TempDir(), "nope.dxf"))
	require.Error(t, err)
}

func TestWatchFiles(t *testing.T) {
	path := coretest.WriteFile(t, "plan.dxf", coretest.SampleDrawing())
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	changed := make(chan []string, 16)
	done := make(chan error, 1)
	go func() {
		done <- watchFiles(ctx, []string{path}, coretest.NewTestLogger(t), func(paths []string) {
			changed <- paths
		})
	}()

	// the watcher may not be registered yet, so keep writing until it reports
	require.Eventually(t, func() bool {
		require.NoError(t, os.WriteFile(path, []byte(coretest.SampleDrawing()), 0o600))
		select {
		case got := <-changed:
			return assert.Equal(t, []string{path}, got)
		case <-time.After(3 * watchDebounce):
			return false
		}
	}, 5*time.Second, 10*time.Millisecond)

	cancel()
	select {
	case err := <-done:
		require.NoError(t, err)
	case <-time.After(2 * time.Second):
		t.Fatal("watchFiles did not stop after cancel")
	}
}

// ---------- mesh ----------

func TestMesh_JSON(t *testing.T) {
	cfg := testutil.TestConfig(t, "markdown")

	out, _, err := testutil.Execute(t, NewMeshCommand(), cfg, "--format", "json", "circle", "0", "0", "5")
	require.NoError(t, err)

	var got MeshOutput
	require.NoError(t, json.Unmarshal([]byte(out), &got))
	assert.Equal(t, "circle", got.Kind)
	assert.Equal(t, []float64{0, 0, 5}, got.Args)
	assert.InDeltaSlice(t, []float64{0, 0, 1}, got.Plane.Normal[:], 1e-12)
	require.NotEmpty(t, got.Mesh.Points)
	require.NotNil(t, got.Mesh.Color)
	for _, pt := range got.Mesh.Points {
		assert.InDelta(t, 0, pt[2], 1e-12)
		assert.InDelta(t, 5, pt.Len(), 1e-9)
	}
	require.NoError(t, got.Mesh.Validate())
}

func TestMesh_FollowsOutputMode(t *testing.T) {
	cfg := testutil.TestConfig(t, "json")

	out, _, err := testutil.Execute(t, NewMeshCommand(), cfg, "--origin", "2,0,0", "--normal", "1,0,0", "sphere", "1")
	require.NoError(t, err)

	var got MeshOutput
	require.NoError(t, json.Unmarshal([]byte(out), &got))
	assert.Equal(t, "sphere", got.Kind)
	for _, pt := range got.Mesh.Points {
		assert.InDelta(t, 1, pt.Sub(got.Plane.Origin).Len(), 1e-9)
	}
}

func TestMesh_YAML(t *testing.T) {
	cfg := testutil.TestConfig(t, "markdown")

	out, _, err := testutil.Execute(t, NewMeshCommand(), cfg, "--format", "yaml", "line", "0", "0", "-1", "-1")
	require.NoError(t, err)

	var got struct {
		Kind string    `yaml:"kind"`
		Args []float64 `yaml:"args"`
		Mesh struct {
			Points   [][]float64 `yaml:"points"`
			Topology string      `yaml:"topology"`
		} `yaml:"mesh"`
	}
	require.NoError(t, yaml.Unmarshal([]byte(out), &got))
	assert.Equal(t, "line", got.Kind)
	assert.Equal(t, []float64{0, 0, -1, -1}, got.Args)
	assert.Equal(t, "lines", got.Mesh.Topology)
	assert.Len(t, got.Mesh.Points, 2)
}

func TestMesh_Summary(t *testing.T) {
	cfg := testutil.TestConfig(t, "markdown")

	out, _, err := testutil.Execute(t, NewMeshCommand(), cfg, "cube", "1")
	require.NoError(t, err)
	assert.Contains(t, out, "## Cube")
	assert.Contains(t, out, "- **topology:** polygons")
	assert.Contains(t, out, "- **points:** 8")
	assert.Contains(t, out, "- **bounds:** (-1, -1, -1) .. (1, 1, 1)")
}

func TestMesh_ListPrimitives(t *testing.T) {
	cfg := testutil.TestConfig(t, "markdown")

	out, _, err := testutil.Execute(t, NewMeshCommand(), cfg)
	require.NoError(t, err)
	for _, name := range []string{"point", "arc", "sphere", "box", "corners"} {
		assert.Contains(t, out, "| "+name+" |")
	}
}

func TestMesh_Errors(t *testing.T) {
	tests := []struct {
		name string
		args []string
		want error
	}{
		{"unknown primitive", []string{"torus", "1"}, core.ErrNotFound},
		{"not a number", []string{"sphere", "big"}, core.ErrInvalidOperation},
		{"wrong arity", []string{"cylinder", "1"}, core.ErrInvalidOperation},
		{"non-positive size", []string{"cube", "0"}, core.ErrInvalidOperation},
		{"zero normal", []string{"--normal", "0,0,0", "cube", "1"}, core.ErrDegenerateVector},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := testutil.TestConfig(t, "json")
			_, _, err := testutil.Execute(t, NewMeshCommand(), cfg, tt.args...)
			require.Error(t, err)
			assert.ErrorIs(t, err, tt.want)
		})
	}

	cfg := testutil.TestConfig(t, "json")
	_, _, err := testutil.Execute(t, NewMeshCommand(), cfg, "--format", "obj", "cube", "1")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unknown format")
}

// ---------- import / history ----------

func TestImport_JSONAndJournal(t *testing.T) {
	p := testutil.SetupTestProject(t)
	cfg := testutil.TestConfig(t, "json")

	out, _, err := testutil.Execute(t, NewImportCommand(), cfg, p.Drawing, "--at", "0,0,2")
	require.NoError(t, err)

	var got ImportOutput
	require.NoError(t, json.Unmarshal([]byte(out), &got))
	require.Len(t, got.Imports, 1)
	imp := got.Imports[0]
	assert.Equal(t, "DXF_Import_1", imp.Group)
	assert.Equal(t, 5, imp.Shapes)
	assert.NotEmpty(t, imp.JournalID)

	var children int
	for _, rec := range got.Objects {
		if rec.Parent == imp.Group {
			children++
		}
	}
	assert.Equal(t, 5, children)
	assert.Len(t, got.Objects, 7, "plane, group and five shapes")

	out, _, err = testutil.Execute(t, NewHistoryCommand(), cfg)
	require.NoError(t, err)
	var entries []state.Import
	require.NoError(t, json.Unmarshal([]byte(out), &entries))
	require.Len(t, entries, 1)
	assert.Equal(t, imp.JournalID, entries[0].ID)
	assert.Equal(t, p.Drawing, entries[0].Path)
	assert.Equal(t, scene.DefaultPlaneID, entries[0].Plane)
	assert.InDelta(t, 2, entries[0].Offset[2], 1e-12)
}

func TestImport_MultipleFilesAndNewPlane(t *testing.T) {
	p := testutil.SetupTestProject(t)
	cfg := testutil.TestConfig(t, "json")
	second := coretest.WriteFile(t, "door.dxf", coretest.Entities("0", "LINE", "10", "0", "20", "0", "11", "0", "21", "2"))

	out, _, err := testutil.Execute(t, NewImportCommand(), cfg, p.Drawing, second, "--normal", "1,0,0")
	require.NoError(t, err)

	var got ImportOutput
	require.NoError(t, json.Unmarshal([]byte(out), &got))
	require.Len(t, got.Imports, 2)
	assert.Equal(t, "DXF_Import_1", got.Imports[0].Group)
	assert.Equal(t, "DXF_Import_2", got.Imports[1].Group)

	var planes int
	for _, rec := range got.Objects {
		if rec.Category == scene.CategoryPlane {
			planes++
		}
	}
	assert.Equal(t, 2, planes)

	out, _, err = testutil.Execute(t, NewHistoryCommand(), cfg)
	require.NoError(t, err)
	var entries []state.Import
	require.NoError(t, json.Unmarshal([]byte(out), &entries))
	require.Len(t, entries, 2)
	for _, e := range entries {
		assert.Equal(t, "Plane_1", e.Plane)
	}
}

func TestImport_Markdown(t *testing.T) {
	p := testutil.SetupTestProject(t)
	cfg := testutil.TestConfig(t, "markdown")

	out, _, err := testutil.Execute(t, NewImportCommand(), cfg, p.Drawing, "--name", "Plan")
	require.NoError(t, err)
	assert.Contains(t, out, "# import")
	assert.Contains(t, out, "5 shape(s) into Plan")
	assert.Contains(t, out, "Plan_Shape_0")
	assert.Contains(t, out, "(7 objects)")
}

func TestImport_Errors(t *testing.T) {
	p := testutil.SetupTestProject(t)

	cfg := testutil.TestConfig(t, "json")
	_, _, err := testutil.Execute(t, NewImportCommand(), cfg, p.Drawing, p.Drawing, "--name", "X")
	assert.ErrorIs(t, err, core.ErrInvalidOperation)

	cfg = testutil.TestConfig(t, "json")
	_, _, err = testutil.Execute(t, NewImportCommand(), cfg, p.Drawing, "--plane", "Nowhere")
	assert.ErrorIs(t, err, core.ErrNotFound)

	cfg = testutil.TestConfig(t, "json")
	_, _, err = testutil.Execute(t, NewImportCommand(), cfg, p.Drawing, "--at", "1,2")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "--at needs 3 values")
}

func TestImport_WithoutJournal(t *testing.T) {
	p := testutil.SetupTestProject(t)
	cfg := testutil.TestConfig(t, "json")
	cfg.JournalPath = ""

	out, _, err := testutil.Execute(t, NewImportCommand(), cfg, p.Drawing)
	require.NoError(t, err)

	var got ImportOutput
	require.NoError(t, json.Unmarshal([]byte(out), &got))
	require.Len(t, got.Imports, 1)
	assert.Empty(t, got.Imports[0].JournalID)

	_, _, err = testutil.Execute(t, NewHistoryCommand(), cfg)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "journaling is disabled")
}

func TestHistory_GetAndClear(t *testing.T) {
	p := testutil.SetupTestProject(t)
	cfg := testutil.TestConfig(t, "json")

	for range 2 {
		_, _, err := testutil.Execute(t, NewImportCommand(), cfg, p.Drawing)
		require.NoError(t, err)
	}

	out, _, err := testutil.Execute(t, NewHistoryCommand(), cfg, "--limit", "1")
	require.NoError(t, err)
	var entries []state.Import
	require.NoError(t, json.Unmarshal([]byte(out), &entries))
	require.Len(t, entries, 1)

	out, _, err = testutil.Execute(t, NewHistoryCommand(), cfg, entries[0].ID)
	require.NoError(t, err)
	var one state.Import
	require.NoError(t, json.Unmarshal([]byte(out), &one))
	assert.Equal(t, entries[0].ID, one.ID)
	assert.Equal(t, 1, one.Kinds["ARC"])

	_, _, err = testutil.Execute(t, NewHistoryCommand(), cfg, "missing-id")
	assert.ErrorIs(t, err, core.ErrNotFound)

	mdCfg := *cfg
	mdCfg.OutputFormat = "markdown"
	out, _, err = testutil.Execute(t, NewHistoryCommand(), &mdCfg, "--clear")
	require.NoError(t, err)
	assert.Contains(t, out, "cleared 2 import(s)")

	out, _, err = testutil.Execute(t, NewHistoryCommand(), cfg)
	require.NoError(t, err)
	assert.JSONEq(t, "[]", out)
}

// ---------- run ----------

func TestRun_Script(t *testing.T) {
	p := testutil.SetupTestProject(t)
	cfg := testutil.TestConfig(t, "markdown")

	out, _, err := testutil.Execute(t, NewRunCommand(), cfg, p.Script, "--show")
	require.NoError(t, err)
	assert.Contains(t, out, "objects: 4")
	assert.Contains(t, out, "Ball")
	assert.Contains(t, out, "Cube_1")
	assert.Contains(t, out, "(4 objects)")
}

func TestRun_ShowJSON(t *testing.T) {
	cfg := testutil.TestConfig(t, "json")
	script := coretest.WriteFile(t, "quiet.star", "cad.cone(1, 2, name = \"Tip\")\n")

	out, _, err := testutil.Execute(t, NewRunCommand(), cfg, script, "--show")
	require.NoError(t, err)

	var recs []scene.Record
	require.NoError(t, json.Unmarshal([]byte(out), &recs))
	require.Len(t, recs, 2)
	assert.Equal(t, "Tip", recs[1].ID)
	assert.Equal(t, "Cone", recs[1].TypeLabel)
}

func TestRun_Expr(t *testing.T) {
	cfg := testutil.TestConfig(t, "json")

	out, _, err := testutil.Execute(t, NewRunCommand(), cfg, "-e", "cad.cube(2)")
	require.NoError(t, err)
	assert.JSONEq(t, `"Cube_1"`, out)
}

func TestRun_Errors(t *testing.T) {
	cfg := testutil.TestConfig(t, "json")
	script := coretest.WriteFile(t, "bad.star", "cad.delete(\"Nope\")\n")

	_, _, err := testutil.Execute(t, NewRunCommand(), cfg, script)
	require.Error(t, err)
	assert.ErrorIs(t, err, core.ErrNotFound)

	_, _, err = testutil.Execute(t, NewRunCommand(), testutil.TestConfig(t, "json"))
	require.Error(t, err, "a script or --expr is required")

	_, _, err = testutil.Execute(t, NewRunCommand(), testutil.TestConfig(t, "json"), "-e", "1", "extra.star")
	require.Error(t, err)
}

// ---------- shell ----------

type scriptedLines struct {
	mu    sync.Mutex
	lines []string
}

func (s *scriptedLines) Readline() (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if len(s.lines) == 0 {
		return "", io.EOF
	}
	line := s.lines[0]
	s.lines = s.lines[1:]
	if line == "^C" {
		return "", readline.ErrInterrupt
	}
	return line, nil
}

func newTestShell(t *testing.T) (*shell, *strings.Builder, *strings.Builder) {
	t.Helper()
	cfg := testutil.TestConfig(t, "markdown")
	cfg.JournalPath = ":memory:"
	cc := &CommandContext{Cfg: cfg, Logger: coretest.NewTestLogger(t)}

	journal, err := cc.OpenJournal()
	require.NoError(t, err)
	t.Cleanup(func() { closeJournal(journal) })

	con, err := cc.NewConsole(journal)
	require.NoError(t, err)

	out, errOut := &strings.Builder{}, &strings.Builder{}
	sh := &shell{
		con:    con,
		runner: starctx.NewRunner(con, starctx.WithOutput(out)),
		out:    out,
		errOut: errOut,
	}
	return sh, out, errOut
}

func TestShell_Loop(t *testing.T) {
	sh, out, errOut := newTestShell(t)

	err := sh.loop(context.Background(), &scriptedLines{lines: []string{
		"sphere 2",
		"",
		"^C",
		"bogus",
		".eval len(cad.objects())",
		".unknown",
		"ls",
		".quit",
		"cube 1",
	}})
	require.NoError(t, err)

	assert.Contains(t, out.String(), "created Sphere_1")
	assert.Contains(t, out.String(), "2\n")
	assert.Contains(t, out.String(), "Sphere_1")
	assert.NotContains(t, out.String(), "Cube_1", "lines after .quit are not read")
	assert.Contains(t, errOut.String(), "Error:")
	assert.Contains(t, errOut.String(), "unknown command")
	assert.Contains(t, errOut.String(), "Unknown command: .unknown")
}

func TestShell_SourceAndStar(t *testing.T) {
	sh, out, errOut := newTestShell(t)
	commands := coretest.WriteFile(t, "setup.cad", "# setup\ncube 1\nrename Cube_1 Box\n")
	script := coretest.WriteFile(t, "more.star", "cad.toggle(\"Box\")\nprint(cad.get(\"Box\").visible)\n")
	bad := coretest.WriteFile(t, "bad.cad", "cube 1\ndelete Nope\ncube 2\n")

	err := sh.loop(context.Background(), &scriptedLines{lines: []string{
		".source " + commands,
		".star " + script,
		".source " + bad,
		".source",
		".help",
	}})
	require.NoError(t, err)

	assert.Contains(t, out.String(), "created Cube_1")
	assert.Contains(t, out.String(), "False")
	assert.Contains(t, out.String(), ".source <file>")
	assert.Contains(t, errOut.String(), "line 2:")
	assert.Contains(t, errOut.String(), "Usage: .source <file>")

	rec, ok := sh.con.Document().Object("Box")
	require.True(t, ok)
	assert.False(t, rec.Visible)
	_, ok = sh.con.Document().Object("Cube_1")
	assert.True(t, ok, "commands before the failing line ran")
	_, ok = sh.con.Document().Object("Cube_2")
	assert.False(t, ok, "commands after the failing line did not run")
}

func TestShell_StopsOnCancel(t *testing.T) {
	sh, _, _ := newTestShell(t)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	err := sh.loop(ctx, &scriptedLines{lines: []string{"cube 1"}})
	require.NoError(t, err)
	assert.Equal(t, 1, sh.con.Document().Len(), "only the default plane")
}

func TestShell_ReadError(t *testing.T) {
	sh, _, _ := newTestShell(t)
	err := sh.loop(context.Background(), failingReader{})
	assert.EqualError(t, err, "tty gone")
}

type failingReader struct{}

func (failingReader) Readline() (string, error) { return "", errors.New("tty gone") }
