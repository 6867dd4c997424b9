// Package testutil provides test utilities for CLI testing.
package testutil

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"regexp"
	"strings"
	"testing"

	"github.com/leapstack-labs/leapcad/internal/cli/config"
	"github.com/leapstack-labs/leapcad/internal/cli/output"
	coretest "github.com/leapstack-labs/leapcad/internal/testutil"
	"github.com/spf13/cobra"
)

// Project is a temporary project with a drawing and a script.
type Project struct {
	Dir     string
	Drawing string
	Script  string
}

// SampleScript creates a plane and two primitives, leaving four objects.
const SampleScript = `p = cad.plane((0, 0, 0), (1, 0, 0), name = "Side")
cad.sphere(2, on = p, name = "Ball")
cad.cube(1)
print("objects:", len(cad.objects()))
`

// SetupTestProject creates a temporary project with a sample drawing and
// script.
func SetupTestProject(t *testing.T) *Project {
	t.Helper()

	tmpDir := t.TempDir()
	for _, dir := range []string{"drawings", "scripts"} {
		if err := os.MkdirAll(filepath.Join(tmpDir, dir), 0755); err != nil {
			t.Fatalf("failed to create directory %s: %v", dir, err)
		}
	}

	p := &Project{
		Dir:     tmpDir,
		Drawing: filepath.Join(tmpDir, "drawings", "plan.dxf"),
		Script:  filepath.Join(tmpDir, "scripts", "model.star"),
	}
	if err := os.WriteFile(p.Drawing, []byte(coretest.SampleDrawing()), 0644); err != nil {
		t.Fatalf("failed to create plan.dxf: %v", err)
	}
	if err := os.WriteFile(p.Script, []byte(SampleScript), 0644); err != nil {
		t.Fatalf("failed to create model.star: %v", err)
	}
	return p
}

// TestConfig returns a config writing its journal and shell history into
// a temp directory.
func TestConfig(t *testing.T, format string) *config.Config {
	t.Helper()
	dir := t.TempDir()
	return &config.Config{
		OutputFormat: format,
		JournalPath:  filepath.Join(dir, "journal.db"),
		Shell: config.ShellConfig{
			HistoryFile: filepath.Join(dir, "history"),
			Prompt:      config.DefaultPrompt,
		},
		ProjectRoot: dir,
	}
}

// Execute runs cmd with args and cfg in its context and returns what it
// wrote to stdout and stderr.
func Execute(t *testing.T, cmd *cobra.Command, cfg *config.Config, args ...string) (stdout, stderr string, err error) {
	t.Helper()
	out := &bytes.Buffer{}
	errOut := &bytes.Buffer{}
	cmd.SetOut(out)
	cmd.SetErr(errOut)
	cmd.SetArgs(args)

	ctx := context.WithValue(context.Background(), config.ConfigKey(), cfg)
	ctx = context.WithValue(ctx, config.LoggerKey(), coretest.NewTestLogger(t))
	err = cmd.ExecuteContext(ctx)
	return out.String(), errOut.String(), err
}

// TestRenderer wraps a Renderer for testing with captured output buffers.
type TestRenderer struct {
	*output.Renderer
	Out    *bytes.Buffer
	ErrOut *bytes.Buffer
}

// NewTestRenderer creates a new test renderer with the specified mode and TTY state.
// Output is captured in buffers for inspection.
func NewTestRenderer(mode output.Mode, isTTY bool) *TestRenderer {
	out := &bytes.Buffer{}
	errOut := &bytes.Buffer{}
	return &TestRenderer{
		Renderer: output.NewRendererWithTTY(out, errOut, isTTY, mode),
		Out:      out,
		ErrOut:   errOut,
	}
}

// NewTestRendererAuto creates a new test renderer with auto mode detection.
// In tests, non-TTY defaults to markdown output.
func NewTestRendererAuto() *TestRenderer {
	return NewTestRenderer(output.ModeAuto, false)
}

// NewTestRendererText creates a new test renderer in text mode (simulated TTY).
func NewTestRendererText() *TestRenderer {
	return NewTestRenderer(output.ModeText, true)
}

// NewTestRendererMarkdown creates a new test renderer in markdown mode.
func NewTestRendererMarkdown() *TestRenderer {
	return NewTestRenderer(output.ModeMarkdown, false)
}

// NewTestRendererJSON creates a new test renderer in JSON mode.
func NewTestRendererJSON() *TestRenderer {
	return NewTestRenderer(output.ModeJSON, false)
}

// Output returns the combined stdout output as a string.
func (tr *TestRenderer) Output() string {
	return tr.Out.String()
}

// ErrorOutput returns the stderr output as a string.
func (tr *TestRenderer) ErrorOutput() string {
	return tr.ErrOut.String()
}

// Reset clears both output buffers.
func (tr *TestRenderer) Reset() {
	tr.Out.Reset()
	tr.ErrOut.Reset()
}

// ansiPattern matches ANSI escape codes.
var ansiPattern = regexp.MustCompile(`\x1b\[[0-9;]*[a-zA-Z]`)

// AssertNoANSI checks that a string contains no ANSI escape codes.
func AssertNoANSI(t *testing.T, s string) {
	t.Helper()
	if ansiPattern.MatchString(s) {
		t.Errorf("string contains ANSI escape codes: %q", s)
	}
}

// AssertValidMarkdown performs basic markdown validation.
// It checks for unclosed code fences and basic structure.
func AssertValidMarkdown(t *testing.T, md string) {
	t.Helper()

	fenceCount := strings.Count(md, "```")
	if fenceCount%2 != 0 {
		t.Errorf("unbalanced code fences in markdown: found %d occurrences", fenceCount)
	}

	lines := strings.Split(md, "\n")
	for i, line := range lines {
		trimmed := strings.TrimSpace(line)
		if strings.HasPrefix(trimmed, "#") && strings.TrimLeft(trimmed, "# ") == "" {
			t.Errorf("empty header at line %d: %q", i+1, line)
		}
	}
}
