// Package core defines the shared language of the LeapCAD kernel.
//
// This package contains:
//   - Error kinds shared by every kernel component (ErrDegenerateVector, ...)
//   - Diagnostic severities reported by the format parser
//
// The Golden Rule: pkg/core imports ONLY stdlib.
// All other packages depend on core, not the reverse.
package core
