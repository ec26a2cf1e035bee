package pricing

import (
	"fmt"
	"math"
)

// European is a plain vanilla call or put.
type European struct {
	Strike float64
	Side   Side
}

// NewEuropean validates strike > 0 and a known side.
func NewEuropean(strike float64, side Side) (European, error) {
	if !(strike > 0) || math.IsInf(strike, 0) {
		return European{}, fmt.Errorf("%w: strike must be positive and finite, got %v", ErrInvalidInstrument, strike)
	}
	if !side.valid() {
		return European{}, fmt.Errorf("%w: %v", ErrInvalidInstrument, side)
	}
	return European{Strike: strike, Side: side}, nil
}

func (e European) Payoff(spot float64) float64 {
	return math.Max(e.Side.Sign()*(spot-e.Strike), 0)
}

func (e European) LogMoneyness(spot float64) float64 {
	return math.Log(spot / e.Strike)
}

func (e European) DimensionlessTime(a Asset, timeRemaining float64) float64 {
	return a.DimensionlessTime(timeRemaining)
}

// BoundaryT0 is the payoff max(s(S-K), 0) in transformed variables:
// [s(e^{(k+1)x/2} - e^{(k-1)x/2})]⁺.
func (e European) BoundaryT0(a Asset, x float64) float64 {
	k := a.DimensionlessRate()
	return math.Max(e.Side.Sign()*(math.Exp(0.5*(k+1)*x)-math.Exp(0.5*(k-1)*x)), 0)
}

// BoundarySpatialPlus is the transform of S - K e^{-rt}, the deep in-the-money
// call. A put is worthless there.
func (e European) BoundarySpatialPlus(a Asset, x, tau float64) float64 {
	if e.Side == Put {
		return 0
	}
	return forwardGrowth(a, x, tau) - discountedStrike(a, x, tau)
}

// BoundarySpatialMinus is the transform of K e^{-rt} - S, the deep in-the-money
// put. A call is worthless as spot goes to zero.
func (e European) BoundarySpatialMinus(a Asset, x, tau float64) float64 {
	if e.Side == Call {
		return 0
	}
	return discountedStrike(a, x, tau) - forwardGrowth(a, x, tau)
}

// UToValue returns K·exp(-(k-1)x/2 - (k+1)²τ/4)·u with τ the full
// dimensionless time to expiry.
func (e European) UToValue(a Asset, timeRemaining, spot, u float64) float64 {
	return e.Strike * undiscount(a, e.LogMoneyness(spot), a.DimensionlessTime(timeRemaining)) * u
}

// forwardGrowth is e^{(k+1)x/2 + (k+1)²τ/4}, the transformed spot.
func forwardGrowth(a Asset, x, tau float64) float64 {
	k := a.DimensionlessRate()
	return math.Exp(0.5*(k+1)*x + 0.25*sqr(k+1)*tau)
}

// discountedStrike is e^{(k-1)x/2 + (k-1)²τ/4}, the transformed K e^{-rt}.
func discountedStrike(a Asset, x, tau float64) float64 {
	k := a.DimensionlessRate()
	return math.Exp(0.5*(k-1)*x + 0.25*sqr(k-1)*tau)
}

func undiscount(a Asset, x, tau float64) float64 {
	k := a.DimensionlessRate()
	return math.Exp(-0.5*(k-1)*x - 0.25*sqr(k+1)*tau)
}
