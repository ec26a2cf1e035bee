package finitediff

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestReasonableDefaultsAreStable(t *testing.T) {
	p := ReasonableDefaults()
	assert.Less(t, p.Alpha(), MaxStableAlpha)
	assert.True(t, p.Stable())
	assert.NoError(t, p.Validate())
}

func TestSpotToArrayLocAtTheMoney(t *testing.T) {
	loc, err := ReasonableDefaults().SpotToArrayLoc(0)
	require.NoError(t, err)
	assert.Equal(t, 1000, loc)
}

func TestSpotToArrayLocRoundsToNearestNode(t *testing.T) {
	p := ReasonableDefaults()

	tests := []struct {
		x        float64
		expected int
	}{
		{0.3365, 1034},
		{-0.004, 1000},
		{-0.006, 999},
		{-10, 0},
		{10, 2000},
	}
	for _, test := range tests {
		loc, err := p.SpotToArrayLoc(test.x)
		require.NoError(t, err, "x=%v", test.x)
		assert.Equal(t, test.expected, loc, "x=%v", test.x)
	}
}

func TestSpotToArrayLocOutOfGrid(t *testing.T) {
	p := Params{DX: 0.01, DT: 0.00003, Minus: -10, Plus: 10}

	for _, x := range []float64{0.2, -0.2, math.NaN()} {
		_, err := p.SpotToArrayLoc(x)
		assert.ErrorIs(t, err, ErrSpotOutOfGrid, "x=%v", x)
	}
}

func TestDerivedQuantities(t *testing.T) {
	p := ReasonableDefaults()
	assert.Equal(t, 2001, p.NumX())
	assert.Equal(t, 333, p.NumT(0.01))
	assert.InDelta(t, 0.3, p.Alpha(), 1e-12)
	assert.InDelta(t, -10.0, p.X(0), 1e-12)
	assert.InDelta(t, 10.0, p.X(p.NumX()-1), 1e-12)
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name string
		p    Params
	}{
		{"zero dx", Params{DX: 0, DT: 1e-4, Minus: -10, Plus: 10}},
		{"negative dt", Params{DX: 0.01, DT: -1e-4, Minus: -10, Plus: 10}},
		{"nan dx", Params{DX: math.NaN(), DT: 1e-4, Minus: -10, Plus: 10}},
		{"inf dt", Params{DX: 0.01, DT: math.Inf(1), Minus: -10, Plus: 10}},
		{"inverted", Params{DX: 0.01, DT: 1e-4, Minus: 10, Plus: -10}},
		{"positive minus", Params{DX: 0.01, DT: 1e-4, Minus: 1, Plus: 10}},
		{"too few nodes", Params{DX: 0.01, DT: 1e-4, Minus: 0, Plus: 1}},
		{"dx squared underflows", Params{DX: 1e-200, DT: 1e-4, Minus: -1, Plus: 1}},
	}
	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			assert.ErrorIs(t, test.p.Validate(), ErrInvalidParams)

			_, err := NewParams(test.p.DX, test.p.DT, test.p.Minus, test.p.Plus)
			assert.ErrorIs(t, err, ErrInvalidParams)
		})
	}

	p, err := NewParams(0.01, 0.0001, -1, 1)
	require.NoError(t, err)
	assert.Equal(t, 3, p.NumX())
}
