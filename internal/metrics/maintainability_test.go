package metrics

import (
	"errors"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMaintainabilityNonFinite(t *testing.T) {
	tests := []struct {
		name string
		cc   float64
		sloc float64
	}{
		{"negative lines", 1, -4},
		{"infinite lines", 1, math.Inf(1)},
		{"not a number", math.NaN(), 10},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := maintainability(tt.cc, tt.sloc)
			var cerr *ComputationError
			require.True(t, errors.As(err, &cerr), "expected ComputationError, got %v", err)
			assert.Equal(t, "maintainability index", cerr.Step)
			assert.Contains(t, cerr.Error(), "non-finite")

			assert.Zero(t, score(tt.cc, tt.sloc))
		})
	}
}

func TestScoreMatchesIndex(t *testing.T) {
	index, err := maintainability(1, 200)
	require.NoError(t, err)
	assert.InDelta(t, index, score(1, 200), 1e-12)
	assert.Equal(t, MaintainabilityIndex(1, 200), score(1, 200))
}
