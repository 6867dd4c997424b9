package testutil

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
)

// Entities wraps (code, value) pairs in an ENTITIES section terminated by
// ENDSEC and EOF.
func Entities(pairs ...string) string {
	lines := []string{"0", "SECTION", "2", "ENTITIES"}
	lines = append(lines, pairs...)
	lines = append(lines, "0", "ENDSEC", "0", "EOF")
	return strings.Join(lines, "\n") + "\n"
}

// SampleDrawing is a small drawing with one entity of each supported type.
func SampleDrawing() string {
	return Entities(
		"0", "LINE", "8", "Walls", "10", "0", "20", "0", "11", "10", "21", "0",
		"0", "CIRCLE", "10", "5", "20", "5", "40", "2",
		"0", "ARC", "10", "0", "20", "0", "40", "3", "50", "0", "51", "90",
		"0", "LWPOLYLINE", "70", "1", "10", "0", "20", "0", "10", "4", "20", "0", "10", "4", "20", "4",
		"0", "TEXT", "1", "Door", "10", "1", "20", "1", "40", "0.5",
	)
}

// WriteFile writes content to name inside a fresh temp directory and
// returns the full path.
func WriteFile(t testing.TB, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}
