package core_test

import (
	"errors"
	"fmt"
	"testing"

	"github.com/leapstack-labs/leapcad/pkg/core"
	"github.com/stretchr/testify/assert"
)

func TestKind(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want string
	}{
		{"degenerate", fmt.Errorf("%w: zero normal", core.ErrDegenerateVector), "degenerate_vector"},
		{"duplicate", fmt.Errorf("%w: %q", core.ErrDuplicateName, "Line_1"), "duplicate_name"},
		{"not found", fmt.Errorf("%w: %q", core.ErrNotFound, "Line_1"), "not_found"},
		{"invalid", fmt.Errorf("%w: nothing to undo", core.ErrInvalidOperation), "invalid_operation"},
		{"other", errors.New("boom"), "error"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, core.Kind(tt.err))
		})
	}
}

func TestParseSeverity(t *testing.T) {
	sev, ok := core.ParseSeverity("WARNING")
	assert.True(t, ok)
	assert.Equal(t, core.SeverityWarning, sev)

	sev, ok = core.ParseSeverity("fatal")
	assert.False(t, ok)
	assert.Equal(t, core.SeverityWarning, sev)

	assert.Equal(t, "info", core.SeverityInfo.String())
	assert.Equal(t, "unknown", core.Severity(42).String())
}
