package dxf

import (
	"fmt"

	"github.com/leapstack-labs/leapcad/pkg/core"
)

// FieldError reports one field of one entity that could not be read.
// The field is dropped and the entity keeps its default for it.
type FieldError struct {
	EntityType string
	Code       int
	Value      string
	Line       int
	Err        error
}

func (e *FieldError) Error() string {
	return fmt.Sprintf("line %d: %s code %d: invalid value %q: %v", e.Line, e.EntityType, e.Code, e.Value, e.Err)
}

func (e *FieldError) Unwrap() error {
	return e.Err
}

// Severity classifies the diagnostic. A dropped field is a warning.
func (e *FieldError) Severity() core.Severity {
	return core.SeverityWarning
}
