// Package config provides configuration management for the leapcad CLI.
//
// Values come from defaults, leapcad.yaml, LEAPCAD_* environment variables
// and explicitly set flags, in increasing order of precedence.
package config

import (
	"github.com/leapstack-labs/leapcad/internal/console"
	"github.com/leapstack-labs/leapcad/pkg/geom"
)

// Config holds all CLI configuration options.
type Config struct {
	Verbose      bool   `koanf:"verbose"`
	OutputFormat string `koanf:"output"`
	// JournalPath is the import journal database. Empty disables journaling.
	JournalPath string             `koanf:"journal_path"`
	Import      ImportConfig       `koanf:"import"`
	Mesh        console.Resolution `koanf:"mesh"`
	Shell       ShellConfig        `koanf:"shell"`

	// ProjectRoot is the directory relative paths resolve against.
	ProjectRoot string `koanf:"-"`
}

// ImportConfig holds defaults for importing drawings.
type ImportConfig struct {
	// Offset moves imported shapes, as [x, y, z].
	Offset []float64 `koanf:"offset"`
	// Plane is the id of the target plane; empty uses the active plane.
	Plane string `koanf:"plane"`
}

// ShellConfig holds settings for the interactive shell.
type ShellConfig struct {
	HistoryFile string `koanf:"history_file"`
	Prompt      string `koanf:"prompt"`
}

// Default configuration values.
const (
	DefaultJournalFile = ".leapcad/journal.db"
	DefaultHistoryFile = ".leapcad/shell_history"
	DefaultPrompt      = "leapcad> "
	DefaultOutput      = "auto" // Auto-detect: TTY=text, non-TTY=markdown
)

// OutputFormats lists the accepted values of the output setting.
var OutputFormats = []string{"auto", "text", "markdown", "json"}

// ImportOffset returns the import offset as a vector.
// Call Validate first; a malformed offset yields the zero vector.
func (c *Config) ImportOffset() geom.Vec3 {
	if len(c.Import.Offset) != 3 {
		return geom.Vec3{}
	}
	return geom.Vec3{c.Import.Offset[0], c.Import.Offset[1], c.Import.Offset[2]}
}
