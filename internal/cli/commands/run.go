package commands

import (
	"fmt"

	"github.com/leapstack-labs/leapcad/internal/cli/output"
	starctx "github.com/leapstack-labs/leapcad/internal/starlark"
	"github.com/spf13/cobra"
)

// RunOptions holds options for the run command.
type RunOptions struct {
	Expr string
	Show bool
}

// NewRunCommand creates the run command.
func NewRunCommand() *cobra.Command {
	opts := &RunOptions{}
	cmd := &cobra.Command{
		Use:   "run [script.star]",
		Short: "Run a Starlark script against a document",
		Long: `Execute a Starlark script that builds a document.

Scripts see a "cad" module with one function per primitive plus plane,
import, undo and query helpers, e.g.:

  p = cad.plane((0, 0, 0), (1, 0, 0))
  cad.sphere(2, on=p)
  print(len(cad.objects()))

With --expr a single expression is evaluated and its value printed.`,
		Example: `  # Run a script and show the resulting objects
  leapcad run model.star --show

  # Evaluate an expression
  leapcad run -e 'cad.cube(2)'`,
		Args: func(cmd *cobra.Command, args []string) error {
			if opts.Expr != "" {
				return cobra.NoArgs(cmd, args)
			}
			return cobra.ExactArgs(1)(cmd, args)
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			return runRun(cmd, args, opts)
		},
	}

	cmd.Flags().StringVarP(&opts.Expr, "expr", "e", "", "Evaluate an expression instead of a script")
	cmd.Flags().BoolVar(&opts.Show, "show", false, "Show the document objects afterwards")

	return cmd
}

func runRun(cmd *cobra.Command, args []string, opts *RunOptions) error {
	cc := NewCommandContext(cmd)
	r := cc.Renderer
	ctx := cmd.Context()

	journal, err := cc.OpenJournal()
	if err != nil {
		return err
	}
	defer closeJournal(journal)

	con, err := cc.NewConsole(journal)
	if err != nil {
		return err
	}
	runner := starctx.NewRunner(con, starctx.WithOutput(r.Writer()), starctx.WithLogger(cc.Logger))

	if opts.Expr != "" {
		v, err := runner.Eval(ctx, opts.Expr)
		if err != nil {
			return err
		}
		if r.EffectiveMode() == output.ModeJSON {
			return r.JSON(v)
		}
		r.Println(v)
	} else {
		if _, err := runner.ExecFile(ctx, args[0]); err != nil {
			return err
		}
		cc.Logger.Debug("script finished", "script", args[0], "objects", con.Document().Len())
	}

	if !opts.Show {
		return nil
	}
	if r.EffectiveMode() == output.ModeJSON {
		return r.JSON(con.Document().Objects())
	}
	tree, err := con.Exec(ctx, "ls")
	if err != nil {
		return fmt.Errorf("failed to list objects: %w", err)
	}
	r.Println(tree)
	return nil
}
