package commands

import (
	"context"
	"fmt"
	"log/slog"
	"path/filepath"
	"slices"
	"strconv"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/leapstack-labs/leapcad/internal/cli/output"
	"github.com/leapstack-labs/leapcad/pkg/dxf"
	"github.com/leapstack-labs/leapcad/pkg/geom"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"
)

// InspectOptions holds options for the inspect command.
type InspectOptions struct {
	Shapes bool
	Watch  bool
}

// NewInspectCommand creates the inspect command.
func NewInspectCommand() *cobra.Command {
	opts := &InspectOptions{}
	cmd := &cobra.Command{
		Use:   "inspect <file>...",
		Short: "Parse drawing files and summarise their shapes",
		Long: `Parse one or more DXF drawings and report what they contain.

Each file is parsed independently. The report lists the number of shapes
per entity type, unsupported entities that were skipped and fields that
could not be read.

Output adapts to environment:
  - Terminal: Styled tables
  - Piped/Scripted: Markdown format
  - JSON: Machine-readable format`,
		Example: `  # Summarise a drawing
  leapcad inspect plan.dxf

  # List every shape as JSON
  leapcad inspect plan.dxf --shapes -o json

  # Re-inspect whenever the files change
  leapcad inspect a.dxf b.dxf --watch`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runInspect(cmd, args, opts)
		},
	}

	cmd.Flags().BoolVar(&opts.Shapes, "shapes", false, "List every parsed shape")
	cmd.Flags().BoolVarP(&opts.Watch, "watch", "w", false, "Re-inspect files when they change")

	return cmd
}

// FileReport is the inspection result for one file.
type FileReport struct {
	Path        string         `json:"path"`
	Shapes      int            `json:"shapes"`
	Kinds       map[string]int `json:"kinds"`
	Skipped     int            `json:"skipped"`
	Diagnostics []string       `json:"diagnostics,omitempty"`
	Entities    []ShapeSummary `json:"entities,omitempty"`
}

// ShapeSummary is one shape in a report.
type ShapeSummary struct {
	Kind     string `json:"kind"`
	Layer    string `json:"layer"`
	Color    int    `json:"color"`
	Geometry string `json:"geometry"`
}

func runInspect(cmd *cobra.Command, paths []string, opts *InspectOptions) error {
	cc := NewCommandContext(cmd)

	reports, err := inspectFiles(cmd.Context(), paths, opts.Shapes, cc.Logger)
	if err != nil {
		return err
	}
	if err := renderReports(cc.Renderer, reports); err != nil {
		return err
	}
	if !opts.Watch {
		return nil
	}

	cc.Renderer.Muted("watching for changes (Ctrl+C to stop)")
	return watchFiles(cmd.Context(), paths, cc.Logger, func(changed []string) {
		reports, err := inspectFiles(cmd.Context(), changed, opts.Shapes, cc.Logger)
		if err != nil {
			cc.Renderer.Error(fmt.Sprintf("Error: %v", err))
			return
		}
		if err := renderReports(cc.Renderer, reports); err != nil {
			cc.Logger.Error("render failed", "error", err)
		}
	})
}

// inspectFiles parses paths concurrently. Reports keep the order of paths.
func inspectFiles(ctx context.Context, paths []string, withShapes bool, logger *slog.Logger) ([]*FileReport, error) {
	reports := make([]*FileReport, len(paths))
	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(4)
	for i, path := range paths {
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			c, err := dxf.NewReader(logger.With("file", path)).ParseFile(path)
			if err != nil {
				return err
			}
			reports[i] = newFileReport(path, c, withShapes)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return reports, nil
}

func newFileReport(path string, c *dxf.Container, withShapes bool) *FileReport {
	rep := &FileReport{
		Path:    path,
		Shapes:  c.Len(),
		Kinds:   c.CountByKind(),
		Skipped: c.Skipped,
	}
	for _, d := range c.Diagnostics {
		rep.Diagnostics = append(rep.Diagnostics, d.Error())
	}
	if withShapes {
		for _, s := range c.Shapes {
			rep.Entities = append(rep.Entities, ShapeSummary{
				Kind:     s.Kind(),
				Layer:    s.Attrs().Layer,
				Color:    s.Attrs().Color,
				Geometry: describeShape(s),
			})
		}
	}
	return rep
}

func renderReports(r *output.Renderer, reports []*FileReport) error {
	if r.EffectiveMode() == output.ModeJSON {
		return r.JSON(reports)
	}
	for _, rep := range reports {
		renderReport(r, rep)
	}
	return nil
}

func renderReport(r *output.Renderer, rep *FileReport) {
	r.Header(2, rep.Path)
	r.KeyValue("shapes", rep.Shapes)
	r.KeyValue("skipped", rep.Skipped)
	r.KeyValue("diagnostics", len(rep.Diagnostics))
	r.Println("")

	kinds := make([]string, 0, len(rep.Kinds))
	for k := range rep.Kinds {
		kinds = append(kinds, k)
	}
	slices.Sort(kinds)
	rows := make([][]any, 0, len(kinds))
	for _, k := range kinds {
		rows = append(rows, []any{k, rep.Kinds[k]})
	}
	r.Table([]any{"Type", "Count"}, rows)

	if len(rep.Entities) > 0 {
		r.Println("")
		rows = rows[:0]
		for i, e := range rep.Entities {
			rows = append(rows, []any{i + 1, e.Kind, e.Layer, e.Color, e.Geometry})
		}
		r.Table([]any{"#", "Type", "Layer", "Color", "Geometry"}, rows)
	}

	if len(rep.Diagnostics) > 0 {
		r.Println("")
		for _, d := range rep.Diagnostics {
			r.StatusLine("dropped", "skipped", d)
		}
	}
	r.Println("")
}

func describeShape(s dxf.Shape) string {
	switch s := s.(type) {
	case *dxf.Line:
		return point(s.Start) + " -> " + point(s.End)
	case *dxf.Circle:
		return fmt.Sprintf("center %s r %s", point(s.Center), num(s.Radius))
	case *dxf.Arc:
		return fmt.Sprintf("center %s r %s %s..%s deg", point(s.Center), num(s.Radius), num(s.StartAngle), num(s.EndAngle))
	case *dxf.Polyline:
		shape := "open"
		if s.Closed {
			shape = "closed"
		}
		return fmt.Sprintf("%d vertices, %s", len(s.Vertices), shape)
	case *dxf.Text:
		return fmt.Sprintf("%q at %s h %s", s.Text, point(s.Position), num(s.Height))
	}
	return ""
}

func point(v geom.Vec3) string {
	return "(" + num(v[0]) + ", " + num(v[1]) + ", " + num(v[2]) + ")"
}

func num(f float64) string {
	if f == 0 {
		f = 0 // drop the sign of -0
	}
	return strconv.FormatFloat(f, 'g', -1, 64)
}

// watchDebounce collapses the burst of events an editor save produces.
const watchDebounce = 100 * time.Millisecond

// watchFiles calls onChange with the files among paths that were written,
// until ctx is done. The parent directories are watched so files that are
// replaced on save keep being tracked.
func watchFiles(ctx context.Context, paths []string, logger *slog.Logger, onChange func(changed []string)) error {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("failed to create watcher: %w", err)
	}
	defer func() { _ = watcher.Close() }()

	tracked := make(map[string]string, len(paths))
	for _, p := range paths {
		abs, err := filepath.Abs(p)
		if err != nil {
			return err
		}
		tracked[abs] = p
		if err := watcher.Add(filepath.Dir(abs)); err != nil {
			return fmt.Errorf("failed to watch %s: %w", p, err)
		}
	}

	pending := make(map[string]bool)
	timer := time.NewTimer(watchDebounce)
	timer.Stop()
	defer timer.Stop()

	for {
		select {
		case <-ctx.Done():
			return nil

		case event, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			if event.Op&(fsnotify.Write|fsnotify.Create) == 0 {
				continue
			}
			abs, err := filepath.Abs(event.Name)
			if err != nil {
				continue
			}
			p, ok := tracked[abs]
			if !ok {
				continue
			}
			pending[p] = true
			timer.Reset(watchDebounce)

		case <-timer.C:
			changed := make([]string, 0, len(pending))
			for _, p := range paths {
				if pending[p] {
					changed = append(changed, p)
				}
			}
			clear(pending)
			logger.Debug("files changed, re-inspecting", "files", changed)
			onChange(changed)

		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			logger.Error("watcher error", "error", err)
		}
	}
}
