package commands

import (
	"fmt"
	"maps"
	"slices"
	"strings"

	"github.com/leapstack-labs/leapcad/internal/cli/output"
	"github.com/leapstack-labs/leapcad/internal/state"
	"github.com/spf13/cobra"
)

// HistoryOptions holds options for the history command.
type HistoryOptions struct {
	Limit int
	Clear bool
}

// NewHistoryCommand creates the history command.
func NewHistoryCommand() *cobra.Command {
	opts := &HistoryOptions{}
	cmd := &cobra.Command{
		Use:   "history [id]",
		Short: "Show recorded imports",
		Long: `List the imports recorded in the journal, newest first.

With an id the single entry is shown in detail. The journal keeps what was
imported, where and how many shapes were read; it never stores documents.`,
		Example: `  # Last 20 imports
  leapcad history

  # All imports as JSON
  leapcad history --limit 0 -o json

  # Forget every recorded import
  leapcad history --clear`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runHistory(cmd, args, opts)
		},
	}

	cmd.Flags().IntVarP(&opts.Limit, "limit", "n", 20, "Maximum entries to show (0 for all)")
	cmd.Flags().BoolVar(&opts.Clear, "clear", false, "Delete all recorded imports")

	return cmd
}

func runHistory(cmd *cobra.Command, args []string, opts *HistoryOptions) error {
	cc := NewCommandContext(cmd)
	r := cc.Renderer
	ctx := cmd.Context()

	journal, err := cc.OpenJournal()
	if err != nil {
		return err
	}
	if journal == nil {
		return fmt.Errorf("journaling is disabled (journal_path is empty)")
	}
	defer closeJournal(journal)

	if opts.Clear {
		n, err := journal.ClearImports(ctx)
		if err != nil {
			return err
		}
		r.Success(fmt.Sprintf("cleared %d import(s)", n))
		return nil
	}

	if len(args) == 1 {
		imp, err := journal.GetImport(ctx, args[0])
		if err != nil {
			return err
		}
		return renderImport(r, imp)
	}

	imports, err := journal.ListImports(ctx, opts.Limit)
	if err != nil {
		return err
	}
	if r.EffectiveMode() == output.ModeJSON {
		if imports == nil {
			imports = []state.Import{}
		}
		return r.JSON(imports)
	}

	r.Header(1, "import history")
	rows := make([][]any, 0, len(imports))
	for _, imp := range imports {
		rows = append(rows, []any{
			imp.ID,
			imp.ImportedAt.Local().Format("2006-01-02 15:04:05"),
			imp.Path,
			imp.Group,
			imp.Plane,
			imp.Shapes,
			imp.Skipped,
		})
	}
	r.Table([]any{"ID", "Imported", "Path", "Group", "Plane", "Shapes", "Skipped"}, rows)
	return nil
}

func renderImport(r *output.Renderer, imp *state.Import) error {
	if r.EffectiveMode() == output.ModeJSON {
		return r.JSON(imp)
	}
	r.Header(2, imp.Path)
	r.KeyValue("id", imp.ID)
	r.KeyValue("imported", imp.ImportedAt.Local().Format("2006-01-02 15:04:05"))
	r.KeyValue("group", imp.Group)
	r.KeyValue("plane", imp.Plane)
	r.KeyValue("offset", point(imp.Offset))
	r.KeyValue("shapes", imp.Shapes)
	r.KeyValue("skipped", imp.Skipped)
	r.KeyValue("diagnostics", imp.Diagnostics)

	kinds := slices.Sorted(maps.Keys(imp.Kinds))
	parts := make([]string, 0, len(kinds))
	for _, k := range kinds {
		parts = append(parts, fmt.Sprintf("%s=%d", k, imp.Kinds[k]))
	}
	r.KeyValue("kinds", strings.Join(parts, " "))
	return nil
}
