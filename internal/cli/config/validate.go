package config

import (
	"fmt"
	"slices"
	"strings"
)

// Validate checks if the configuration is valid.
func (c *Config) Validate() error {
	if !slices.Contains(OutputFormats, c.OutputFormat) {
		return fmt.Errorf("invalid output format %q (want one of %s)", c.OutputFormat, strings.Join(OutputFormats, ", "))
	}
	if n := len(c.Import.Offset); n != 0 && n != 3 {
		return fmt.Errorf("import.offset needs 3 values, got %d", n)
	}

	for key, v := range map[string]int{
		"mesh.circle_segments":     c.Mesh.CircleSegments,
		"mesh.sphere_resolution":   c.Mesh.SphereResolution,
		"mesh.cylinder_resolution": c.Mesh.CylinderResolution,
	} {
		if v < 0 {
			return fmt.Errorf("%s must not be negative, got %d", key, v)
		}
	}
	return nil
}
