package commands

import (
	"fmt"

	"github.com/leapstack-labs/leapcad/internal/cli/output"
	"github.com/leapstack-labs/leapcad/internal/console"
	"github.com/leapstack-labs/leapcad/internal/scene"
	"github.com/leapstack-labs/leapcad/pkg/core"
	"github.com/leapstack-labs/leapcad/pkg/geom"
	"github.com/spf13/cobra"
)

// ImportOptions holds options for the import command.
type ImportOptions struct {
	At     []float64
	Name   string
	Plane  string
	Origin []float64
	Normal []float64
}

// NewImportCommand creates the import command.
func NewImportCommand() *cobra.Command {
	opts := &ImportOptions{}
	cmd := &cobra.Command{
		Use:   "import <file>...",
		Short: "Import drawings into a document",
		Long: `Import DXF drawings into a fresh document and show the result.

Every file becomes one group whose shapes are mapped onto the target plane:
drawing x and y run along the plane axes and z along its normal. The target
is the active plane (Global_XY_Plane) unless --plane names another one or
--normal defines a new working plane.

Each import is recorded in the journal (see "leapcad history").`,
		Example: `  # Import a drawing onto the XY plane
  leapcad import plan.dxf

  # Import two drawings, moved up by 5
  leapcad import a.dxf b.dxf --at 0,0,5

  # Import onto a vertical plane as JSON
  leapcad import plan.dxf --origin 0,0,0 --normal 1,0,0 -o json`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runImport(cmd, args, opts)
		},
	}

	cmd.Flags().Float64SliceVar(&opts.At, "at", nil, "Offset added to every shape as x,y,z (default from import.offset)")
	cmd.Flags().StringVar(&opts.Name, "name", "", "Group id (single file only)")
	cmd.Flags().StringVar(&opts.Plane, "plane", "", "Target plane id (default from import.plane)")
	cmd.Flags().Float64SliceVar(&opts.Origin, "origin", []float64{0, 0, 0}, "Origin of a new working plane as x,y,z")
	cmd.Flags().Float64SliceVar(&opts.Normal, "normal", nil, "Normal of a new working plane as x,y,z")

	return cmd
}

// ImportOutput is the JSON output of the import command.
type ImportOutput struct {
	Imports []ImportSummary `json:"imports"`
	Objects []scene.Record  `json:"objects"`
}

// ImportSummary describes one imported file.
type ImportSummary struct {
	Path        string `json:"path"`
	Group       string `json:"group"`
	Shapes      int    `json:"shapes"`
	Skipped     int    `json:"skipped"`
	Diagnostics int    `json:"diagnostics"`
	JournalID   string `json:"journal_id,omitempty"`
}

func runImport(cmd *cobra.Command, paths []string, opts *ImportOptions) error {
	cc := NewCommandContext(cmd)
	r := cc.Renderer

	if opts.Name != "" && len(paths) > 1 {
		return fmt.Errorf("%w: --name needs a single file", core.ErrInvalidOperation)
	}
	offset := cc.Cfg.ImportOffset()
	if cmd.Flags().Changed("at") {
		v, err := vectorFlag("at", opts.At)
		if err != nil {
			return err
		}
		offset = v
	}

	journal, err := cc.OpenJournal()
	if err != nil {
		return err
	}
	defer closeJournal(journal)

	con, err := cc.NewConsole(journal)
	if err != nil {
		return err
	}
	doc := con.Document()

	plane := opts.Plane
	if plane == "" {
		plane = cc.Cfg.Import.Plane
	}
	if cmd.Flags().Changed("normal") {
		if plane, err = createWorkingPlane(doc, opts.Origin, opts.Normal); err != nil {
			return err
		}
	}

	var out ImportOutput
	for _, path := range paths {
		res, err := con.Importer().Import(cmd.Context(), console.ImportRequest{
			Path:     path,
			Plane:    plane,
			Name:     opts.Name,
			Offset:   offset,
			Segments: cc.Cfg.Mesh.CircleSegments,
		})
		if res == nil {
			return err
		}
		if err != nil {
			r.Warning(fmt.Sprintf("Warning: %v", err))
		}
		sum := ImportSummary{
			Path:        path,
			Group:       res.Group,
			Shapes:      res.Container.Len(),
			Skipped:     res.Container.Skipped,
			Diagnostics: len(res.Container.Diagnostics),
		}
		if res.Entry != nil {
			sum.JournalID = res.Entry.ID
		}
		out.Imports = append(out.Imports, sum)
	}
	out.Objects = doc.Objects()

	if r.EffectiveMode() == output.ModeJSON {
		return r.JSON(out)
	}

	r.Header(1, "import")
	for _, sum := range out.Imports {
		status := "success"
		if sum.Skipped > 0 || sum.Diagnostics > 0 {
			status = "skipped"
		}
		r.StatusLine(sum.Path, status, fmt.Sprintf("%d shape(s) into %s, %d skipped, %d diagnostic(s)",
			sum.Shapes, sum.Group, sum.Skipped, sum.Diagnostics))
	}
	r.Println("")

	tree, err := con.Exec(cmd.Context(), "ls")
	if err != nil {
		return err
	}
	r.Header(2, "objects")
	r.Println(tree)
	return nil
}

// createWorkingPlane adds a plane through origin with the given normal and
// returns its id. It becomes the active plane.
func createWorkingPlane(doc *scene.Document, origin, normal []float64) (string, error) {
	o, err := vectorFlag("origin", origin)
	if err != nil {
		return "", err
	}
	n, err := vectorFlag("normal", normal)
	if err != nil {
		return "", err
	}
	def, err := geom.NewPlaneDefinition(o, n)
	if err != nil {
		return "", err
	}
	return doc.CreatePlane("", def)
}
