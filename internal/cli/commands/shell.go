package commands

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/chzyer/readline"
	"github.com/leapstack-labs/leapcad/internal/console"
	starctx "github.com/leapstack-labs/leapcad/internal/starlark"
	"github.com/spf13/cobra"
)

// NewShellCommand creates the shell command.
func NewShellCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "shell",
		Short: "Start the interactive modelling console",
		Long: `Start an interactive console over a fresh document.

Type console commands such as "sphere 2", "plane 0 0 0 1 0 0" or
"import plan.dxf"; "help" lists them all. Lines starting with a dot control
the shell itself; ".help" lists those. Every edit can be undone with "undo".`,
		Example: `  leapcad shell
  leapcad shell --journal :memory:`,
		Args: cobra.NoArgs,
		RunE: runShell,
	}
}

func runShell(cmd *cobra.Command, _ []string) error {
	cc := NewCommandContext(cmd)

	journal, err := cc.OpenJournal()
	if err != nil {
		return err
	}
	defer closeJournal(journal)

	con, err := cc.NewConsole(journal)
	if err != nil {
		return err
	}

	historyFile := cc.Cfg.Shell.HistoryFile
	if historyFile != "" {
		if err := os.MkdirAll(filepath.Dir(historyFile), 0750); err != nil {
			cc.Logger.Warn("shell history disabled", "error", err)
			historyFile = ""
		}
	}

	prompt := cc.Cfg.Shell.Prompt
	rl, err := readline.NewEx(&readline.Config{
		Prompt:          prompt,
		HistoryFile:     historyFile,
		AutoComplete:    newConsoleCompleter(con),
		InterruptPrompt: "^C",
		EOFPrompt:       ".quit",
		Stdout:          cmd.OutOrStdout(),
		Stderr:          cmd.ErrOrStderr(),
	})
	if err != nil {
		return fmt.Errorf("failed to initialize shell: %w", err)
	}
	defer func() { _ = rl.Close() }()

	_, _ = fmt.Fprintln(cmd.OutOrStdout(), "LeapCAD shell (active plane: "+con.Document().ActivePlane()+")")
	_, _ = fmt.Fprintln(cmd.OutOrStdout(), "Type help for modelling commands, .help for shell commands, .quit to exit")
	_, _ = fmt.Fprintln(cmd.OutOrStdout())

	sh := &shell{
		con:    con,
		runner: starctx.NewRunner(con, starctx.WithOutput(cmd.OutOrStdout()), starctx.WithLogger(cc.Logger)),
		out:    cmd.OutOrStdout(),
		errOut: cmd.ErrOrStderr(),
	}
	return sh.loop(cmd.Context(), rl)
}

// lineReader is the part of *readline.Instance the loop needs.
type lineReader interface {
	Readline() (string, error)
}

type shell struct {
	con    *console.Console
	runner *starctx.Runner
	out    io.Writer
	errOut io.Writer
}

// loop reads lines until EOF, .quit or ctx is done. Errors of single
// commands are printed and do not end the loop.
func (sh *shell) loop(ctx context.Context, rl lineReader) error {
	for {
		if ctx.Err() != nil {
			return nil
		}
		line, err := rl.Readline()
		if errors.Is(err, readline.ErrInterrupt) {
			continue
		}
		if errors.Is(err, io.EOF) {
			return nil
		}
		if err != nil {
			return err
		}

		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}

		if strings.HasPrefix(line, ".") {
			if quit := sh.dotCommand(ctx, line); quit {
				return nil
			}
			continue
		}

		out, err := sh.con.Exec(ctx, line)
		if err != nil {
			_, _ = fmt.Fprintf(sh.errOut, "Error: %v\n", err)
			continue
		}
		if out != "" {
			_, _ = fmt.Fprintln(sh.out, out)
		}
	}
}

// dotCommand handles a shell command and reports whether the shell should exit.
func (sh *shell) dotCommand(ctx context.Context, line string) bool {
	parts := strings.Fields(line)
	command := strings.ToLower(parts[0])

	switch command {
	case ".quit", ".exit":
		return true

	case ".help":
		printShellHelp(sh.out)

	case ".clear":
		_, _ = fmt.Fprint(sh.out, "\033[H\033[2J")

	case ".source":
		if len(parts) != 2 {
			_, _ = fmt.Fprintln(sh.errOut, "Usage: .source <file>")
			return false
		}
		if err := sh.source(ctx, parts[1]); err != nil {
			_, _ = fmt.Fprintf(sh.errOut, "Error: %v\n", err)
		}

	case ".star":
		if len(parts) != 2 {
			_, _ = fmt.Fprintln(sh.errOut, "Usage: .star <script.star>")
			return false
		}
		if _, err := sh.runner.ExecFile(ctx, parts[1]); err != nil {
			_, _ = fmt.Fprintf(sh.errOut, "Error: %v\n", err)
		}

	case ".eval":
		expr := strings.TrimSpace(strings.TrimPrefix(line, parts[0]))
		if expr == "" {
			_, _ = fmt.Fprintln(sh.errOut, "Usage: .eval <expression>")
			return false
		}
		v, err := sh.runner.Eval(ctx, expr)
		if err != nil {
			_, _ = fmt.Fprintf(sh.errOut, "Error: %v\n", err)
			return false
		}
		_, _ = fmt.Fprintf(sh.out, "%v\n", v)

	default:
		_, _ = fmt.Fprintf(sh.errOut, "Unknown command: %s (type .help for commands)\n", command)
	}
	return false
}

// source runs a file of console commands, stopping at the first failure.
func (sh *shell) source(ctx context.Context, path string) error {
	data, err := os.ReadFile(path) //nolint:gosec // G304: path is typed by the user
	if err != nil {
		return fmt.Errorf("failed to read %s: %w", path, err)
	}
	outs, err := sh.con.ExecAll(ctx, strings.Split(string(data), "\n"))
	for _, out := range outs {
		if out != "" {
			_, _ = fmt.Fprintln(sh.out, out)
		}
	}
	return err
}

func printShellHelp(w io.Writer) {
	help := `
Shell commands:
  .help               Show this help message
  .source <file>      Run a file of console commands
  .star <script>      Run a Starlark script against the document
  .eval <expr>        Evaluate a Starlark expression, e.g. .eval len(cad.objects())
  .clear              Clear the screen
  .quit / .exit       Exit the shell

Tips:
  - "help" lists the modelling commands
  - Use arrow keys to navigate history
  - Tab completion works for command names
`
	_, _ = fmt.Fprintln(w, help)
}

// newConsoleCompleter completes console command names and shell commands.
func newConsoleCompleter(con *console.Console) *readline.PrefixCompleter {
	var items []readline.PrefixCompleterInterface
	for _, name := range con.Names() {
		items = append(items, readline.PcItem(name))
	}
	items = append(items,
		readline.PcItem(".help"),
		readline.PcItem(".source"),
		readline.PcItem(".star"),
		readline.PcItem(".eval"),
		readline.PcItem(".clear"),
		readline.PcItem(".quit"),
		readline.PcItem(".exit"),
	)
	return readline.NewPrefixCompleter(items...)
}
