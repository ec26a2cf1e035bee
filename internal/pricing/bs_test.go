package pricing_test

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/contactkeval/option-fd/internal/pricing"
	tu "github.com/contactkeval/option-fd/internal/testutil"
)

func TestBlackScholesReferenceCase(t *testing.T) {
	// S=100, K=100, r=5%, σ=20%, T=1
	call := pricing.BlackScholesPrice(pricing.Call, 100, 100, 1, 0.05, 0.2)
	put := pricing.BlackScholesPrice(pricing.Put, 100, 100, 1, 0.05, 0.2)

	assert.InDelta(t, 10.450583572185565, call, 1e-9)
	assert.InDelta(t, 5.573526022256971, put, 1e-9)
}

func TestExactPutCallParity(t *testing.T) {
	a := tu.Asset()
	for _, spot := range []float64{40, 50, 60, 70} {
		call := tu.Call().ExactSolution(a, spot, tu.TimeRemaining)
		put := tu.Put().ExactSolution(a, spot, tu.TimeRemaining)

		assert.InDelta(t, tu.DiscountedStrike(), put+spot-call, 1e-9, "S=%v", spot)
	}
}

func TestBlackScholesIntrinsicFallback(t *testing.T) {
	assert.Equal(t, 0.0, pricing.BlackScholesPrice(pricing.Call, 90, 100, 0, 0.05, 0.2))
	assert.Equal(t, 10.0, pricing.BlackScholesPrice(pricing.Put, 90, 100, 0, 0.05, 0.2))
	assert.Equal(t, 5.0, pricing.BlackScholesPrice(pricing.Call, 105, 100, 1, 0.05, 0))
}

func TestBlackScholesVega(t *testing.T) {
	vega := pricing.BlackScholesVega(100, 100, 1, 0.05, 0.2)
	assert.InDelta(t, 37.524, vega, 1e-3)
	assert.Zero(t, pricing.BlackScholesVega(100, 100, 0, 0.05, 0.2))
}

func TestImpliedVolRoundTrip(t *testing.T) {
	tests := []struct {
		side pricing.Side
		spot float64
		vol  float64
	}{
		{pricing.Call, 60, 0.2},
		{pricing.Put, 45, 0.35},
		{pricing.Call, 50, 0.6},
	}
	for _, test := range tests {
		price := pricing.BlackScholesPrice(test.side, test.spot, tu.Strike, tu.TimeRemaining, tu.Rate, test.vol)
		iv, err := pricing.ImpliedVol(test.side, test.spot, tu.Strike, tu.TimeRemaining, tu.Rate, price)
		require.NoError(t, err)
		assert.InDelta(t, test.vol, iv, 1e-4)
	}

	_, err := pricing.ImpliedVol(pricing.Call, 60, 50, 0, 0.05, 10)
	assert.ErrorIs(t, err, pricing.ErrInvalidInstrument)

	// below intrinsic: no volatility reproduces it
	_, err = pricing.ImpliedVol(pricing.Call, 100, 50, 0.5, 0.05, 1)
	assert.ErrorIs(t, err, pricing.ErrNoConvergence)
}

func TestCashOrNothing(t *testing.T) {
	a := tu.Asset()
	call, err := pricing.NewCashOrNothing(tu.Strike, 10, pricing.Call)
	require.NoError(t, err)
	put, err := pricing.NewCashOrNothing(tu.Strike, 10, pricing.Put)
	require.NoError(t, err)

	assert.Equal(t, 10.0, call.Payoff(60))
	assert.Equal(t, 0.0, call.Payoff(50))
	assert.Equal(t, 10.0, put.Payoff(40))

	// digital parity: call + put = Cash·e^{-rT}
	for _, spot := range []float64{40, 50, 60} {
		sum := call.ExactSolution(a, spot, tu.TimeRemaining) + put.ExactSolution(a, spot, tu.TimeRemaining)
		assert.InDelta(t, 10*math.Exp(-tu.Rate*tu.TimeRemaining), sum, 1e-9)
	}

	assert.Zero(t, call.BoundarySpatialMinus(a, -10, 0.01))
	assert.Zero(t, put.BoundarySpatialPlus(a, 10, 0.01))
	assert.InDelta(t, call.BoundaryT0(a, 10), call.BoundarySpatialPlus(a, 10, 0), 1e-12)
	assert.InDelta(t, put.BoundaryT0(a, -10), put.BoundarySpatialMinus(a, -10, 0), 1e-12)

	_, err = pricing.NewCashOrNothing(tu.Strike, 0, pricing.Call)
	assert.ErrorIs(t, err, pricing.ErrInvalidInstrument)
}
