package pricing

import (
	"fmt"
	"strings"
)

// Side selects call or put. The numeric value is the sign used in payoff
// and boundary formulas.
type Side int

const (
	Put  Side = -1
	Call Side = 1
)

func (s Side) Sign() float64 {
	return float64(s)
}

func (s Side) String() string {
	switch s {
	case Call:
		return "call"
	case Put:
		return "put"
	}
	return fmt.Sprintf("Side(%d)", int(s))
}

func (s Side) valid() bool {
	return s == Call || s == Put
}

// ParseSide accepts "call"/"c" and "put"/"p", case-insensitively.
func ParseSide(v string) (Side, error) {
	switch strings.ToLower(strings.TrimSpace(v)) {
	case "call", "c":
		return Call, nil
	case "put", "p":
		return Put, nil
	}
	return 0, fmt.Errorf("%w: unknown side %q", ErrInvalidInstrument, v)
}

// Vanilla is the financial face of a payoff.
type Vanilla interface {
	// Payoff is the intrinsic value at expiry, in price units.
	Payoff(spot float64) float64
	// LogMoneyness maps a spot price onto the grid coordinate x = ln(S/K).
	LogMoneyness(spot float64) float64
}

// Discretisable describes a payoff in the variables of the transformed
// (heat-equation) Black–Scholes problem.
//
// x is log-moneyness and tau is dimensionless time to expiry; tau = 0 is the
// expiry slice the solvers start from.
type Discretisable interface {
	DimensionlessTime(a Asset, timeRemaining float64) float64
	BoundaryT0(a Asset, x float64) float64
	// BoundarySpatialPlus is imposed at the upper (large spot) edge of the grid.
	BoundarySpatialPlus(a Asset, x, tau float64) float64
	// BoundarySpatialMinus is imposed at the lower (spot near zero) edge of the grid.
	BoundarySpatialMinus(a Asset, x, tau float64) float64
	// UToValue inverts the transform for the solution u read at spot.
	UToValue(a Asset, timeRemaining, spot, u float64) float64
}

// Instrument is the constraint the finite-difference solvers are generic over.
type Instrument interface {
	Vanilla
	Discretisable
}
