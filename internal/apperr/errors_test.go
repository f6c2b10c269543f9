package apperr

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestKindOf(t *testing.T) {
	tests := map[string]struct {
		err  error
		want Kind
	}{
		"validation":        {err: Validation("bad"), want: KindValidation},
		"wrapped not found": {err: fmt.Errorf("load: %w", NotFound("missing")), want: KindNotFound},
		"conflict":          {err: Conflict("dup"), want: KindConflict},
		"plain error":       {err: errors.New("boom"), want: KindInternal},
		"nil":               {err: nil, want: KindInternal},
	}

	for name, tt := range tests {
		t.Run(name, func(t *testing.T) {
			assert.Equal(t, tt.want, KindOf(tt.err))
		})
	}
}

func TestErrorUnwrap(t *testing.T) {
	cause := errors.New("db down")
	err := Internal("load failed", cause)

	require.ErrorIs(t, err, cause)
	assert.Equal(t, "load failed: db down", err.Error())
	assert.Equal(t, "internal", err.Kind.String())
}

func TestValidationDetails(t *testing.T) {
	err := Validation("Some items are not available", "a", "b")
	assert.Equal(t, []string{"a", "b"}, err.Details)
	assert.Equal(t, "Some items are not available", err.Error())
}
