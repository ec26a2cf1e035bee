package pricing

import (
	"fmt"
	"math"
)

// CashOrNothing pays Cash at expiry when the option finishes in the money
// and nothing otherwise.
type CashOrNothing struct {
	Strike float64
	Cash   float64
	Side   Side
}

func NewCashOrNothing(strike, cash float64, side Side) (CashOrNothing, error) {
	if !(strike > 0) || math.IsInf(strike, 0) {
		return CashOrNothing{}, fmt.Errorf("%w: strike must be positive and finite, got %v", ErrInvalidInstrument, strike)
	}
	if !(cash > 0) || math.IsInf(cash, 0) {
		return CashOrNothing{}, fmt.Errorf("%w: cash amount must be positive and finite, got %v", ErrInvalidInstrument, cash)
	}
	if !side.valid() {
		return CashOrNothing{}, fmt.Errorf("%w: %v", ErrInvalidInstrument, side)
	}
	return CashOrNothing{Strike: strike, Cash: cash, Side: side}, nil
}

func (d CashOrNothing) Payoff(spot float64) float64 {
	if d.Side.Sign()*(spot-d.Strike) > 0 {
		return d.Cash
	}
	return 0
}

func (d CashOrNothing) LogMoneyness(spot float64) float64 {
	return math.Log(spot / d.Strike)
}

func (d CashOrNothing) DimensionlessTime(a Asset, timeRemaining float64) float64 {
	return a.DimensionlessTime(timeRemaining)
}

// BoundaryT0 is (Cash/K)·e^{(k-1)x/2} on the paying side of the strike. A node
// sitting exactly on the strike takes the mean of the two one-sided limits.
func (d CashOrNothing) BoundaryT0(a Asset, x float64) float64 {
	switch s := d.Side.Sign() * x; {
	case s < 0:
		return 0
	case s == 0:
		return 0.5 * d.Cash / d.Strike
	}
	return d.Cash / d.Strike * discountedStrike(a, x, 0)
}

func (d CashOrNothing) BoundarySpatialPlus(a Asset, x, tau float64) float64 {
	if d.Side == Put {
		return 0
	}
	return d.Cash / d.Strike * discountedStrike(a, x, tau)
}

func (d CashOrNothing) BoundarySpatialMinus(a Asset, x, tau float64) float64 {
	if d.Side == Call {
		return 0
	}
	return d.Cash / d.Strike * discountedStrike(a, x, tau)
}

func (d CashOrNothing) UToValue(a Asset, timeRemaining, spot, u float64) float64 {
	return d.Strike * undiscount(a, d.LogMoneyness(spot), a.DimensionlessTime(timeRemaining)) * u
}

// ExactSolution is Cash·e^{-rT}·N(s·d2).
func (d CashOrNothing) ExactSolution(a Asset, spot, timeRemaining float64) float64 {
	if timeRemaining <= 0 {
		return d.Payoff(spot)
	}
	_, d2 := d1d2(spot, d.Strike, timeRemaining, a.Rate, a.Vol)
	return d.Cash * math.Exp(-a.Rate*timeRemaining) * normCDF(d.Side.Sign()*d2)
}
