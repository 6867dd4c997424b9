package commands

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/leapstack-labs/leapcad/internal/cli/config"
	"github.com/leapstack-labs/leapcad/internal/cli/output"
	"github.com/leapstack-labs/leapcad/internal/console"
	"github.com/leapstack-labs/leapcad/internal/scene"
	"github.com/leapstack-labs/leapcad/internal/state"
	"github.com/spf13/cobra"
)

// CommandContext holds common dependencies for CLI commands.
type CommandContext struct {
	Cfg      *config.Config
	Logger   *slog.Logger
	Renderer *output.Renderer
}

// NewCommandContext collects the config, logger and a renderer for cmd.
func NewCommandContext(cmd *cobra.Command) *CommandContext {
	cfg := config.GetConfig(cmd.Context())
	return &CommandContext{
		Cfg:      cfg,
		Logger:   config.GetLogger(cmd.Context()),
		Renderer: output.NewRenderer(cmd.OutOrStdout(), cmd.ErrOrStderr(), output.Mode(cfg.OutputFormat)),
	}
}

// OpenJournal opens the configured journal, creating its directory.
// It returns nil when journaling is disabled.
func (cc *CommandContext) OpenJournal() (*state.SQLiteStore, error) {
	path := cc.Cfg.JournalPath
	if path == "" {
		return nil, nil
	}
	if path != ":memory:" {
		if dir := filepath.Dir(path); dir != "." && dir != "" {
			if err := os.MkdirAll(dir, 0750); err != nil {
				return nil, fmt.Errorf("failed to create journal directory: %w", err)
			}
		}
	}
	j, err := state.OpenJournal(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open journal: %w", err)
	}
	return j, nil
}

// NewConsole creates a document with the default plane and a console over
// it. The journal may be nil.
func (cc *CommandContext) NewConsole(journal *state.SQLiteStore) (*console.Console, error) {
	doc, err := scene.New(scene.Config{Logger: cc.Logger, DefaultPlane: true})
	if err != nil {
		return nil, err
	}
	cfg := console.Config{
		Document:   doc,
		Logger:     cc.Logger,
		Resolution: cc.Cfg.Mesh,
	}
	// a typed nil would defeat the importer's nil check
	if journal != nil {
		cfg.Journal = journal
	}
	return console.New(cfg)
}

// closeJournal closes j if it is open.
func closeJournal(j *state.SQLiteStore) {
	if j != nil {
		_ = j.Close()
	}
}
