package starlark

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/leapstack-labs/leapcad/internal/console"
	"go.starlark.net/starlark"
	"go.starlark.net/syntax"
)

// Runner executes scripts against a console's document.
type Runner struct {
	con     *console.Console
	out     io.Writer
	logger  *slog.Logger
	globals starlark.StringDict
}

// RunnerOption configures a Runner.
type RunnerOption func(*Runner)

// WithOutput sends print() output to w. The default discards it.
func WithOutput(w io.Writer) RunnerOption {
	return func(r *Runner) {
		r.out = w
	}
}

// WithLogger sets the logger.
func WithLogger(logger *slog.Logger) RunnerOption {
	return func(r *Runner) {
		r.logger = logger
	}
}

// NewRunner creates a runner for con.
func NewRunner(con *console.Console, opts ...RunnerOption) *Runner {
	r := &Runner{
		con:    con,
		out:    io.Discard,
		logger: slog.New(slog.DiscardHandler),
	}
	for _, opt := range opts {
		opt(r)
	}
	r.globals = Predeclared(con)
	return r
}

// Globals returns the predeclared globals of every run.
func (r *Runner) Globals() starlark.StringDict {
	return r.globals
}

// ExecFile runs the script at path.
func (r *Runner) ExecFile(ctx context.Context, path string) (starlark.StringDict, error) {
	src, err := os.ReadFile(path) //nolint:gosec // G304: path comes from the command line
	if err != nil {
		return nil, fmt.Errorf("failed to read script: %w", err)
	}
	return r.Exec(ctx, path, src)
}

// Exec runs src as a script named filename and returns its globals.
// Cancelling ctx stops the script at its next step.
func (r *Runner) Exec(ctx context.Context, filename string, src []byte) (starlark.StringDict, error) {
	thread := r.newThread(ctx, filename)
	stop := context.AfterFunc(ctx, func() { thread.Cancel(ctx.Err().Error()) })
	defer stop()

	r.logger.Debug("running script", slog.String("file", filename))
	globals, err := starlark.ExecFileOptions(&syntax.FileOptions{}, thread, filename, src, r.globals)
	if err != nil {
		return nil, wrapScriptError(filename, "", err)
	}
	return globals, nil
}

// Eval evaluates a single expression and returns its Go value.
func (r *Runner) Eval(ctx context.Context, expr string) (any, error) {
	thread := r.newThread(ctx, "<expr>")
	stop := context.AfterFunc(ctx, func() { thread.Cancel(ctx.Err().Error()) })
	defer stop()

	v, err := starlark.EvalOptions(&syntax.FileOptions{}, thread, "<expr>", expr, r.globals)
	if err != nil {
		return nil, wrapScriptError("<expr>", expr, err)
	}
	return ToGo(v)
}

// newThread creates a thread whose print() writes lines to the runner output.
func (r *Runner) newThread(ctx context.Context, name string) *starlark.Thread {
	thread := &starlark.Thread{
		Name: name,
		Print: func(_ *starlark.Thread, msg string) {
			_, _ = fmt.Fprintln(r.out, msg)
		},
	}
	thread.SetLocal(contextKey, ctx)
	return thread
}

// EvalError is a script failure with its position.
type EvalError struct {
	File    string
	Line    int
	Expr    string
	Message string
	// Err is the underlying error, e.g. a kernel sentinel raised by a builtin.
	Err error
}

func (e *EvalError) Error() string {
	switch {
	case e.Expr != "":
		return fmt.Sprintf("%s: error evaluating %q: %s", e.File, e.Expr, e.Message)
	case e.Line > 0:
		return fmt.Sprintf("%s:%d: %s", e.File, e.Line, e.Message)
	default:
		return fmt.Sprintf("%s: %s", e.File, e.Message)
	}
}

func (e *EvalError) Unwrap() error {
	return e.Err
}

// wrapScriptError keeps the innermost position of a Starlark backtrace.
func wrapScriptError(file, expr string, err error) error {
	out := &EvalError{File: file, Expr: expr, Message: err.Error(), Err: err}

	var evalErr *starlark.EvalError
	if errors.As(err, &evalErr) {
		out.Message = evalErr.Msg
		if len(evalErr.CallStack) > 0 {
			pos := evalErr.CallStack.At(0).Pos
			for _, fr := range evalErr.CallStack {
				if fr.Pos.Filename() == file {
					pos = fr.Pos
				}
			}
			out.Line = int(pos.Line)
		}
		if cause := evalErr.Unwrap(); cause != nil {
			out.Err = cause
		}
		return out
	}

	var syntaxErr syntax.Error
	if errors.As(err, &syntaxErr) {
		out.Line = int(syntaxErr.Pos.Line)
		out.Message = syntaxErr.Msg
	}
	return out
}
