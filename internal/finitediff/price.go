package finitediff

import (
	"fmt"
	"math"
	"strings"

	"github.com/contactkeval/option-fd/internal/pricing"
)

// Method selects the finite-difference scheme.
type Method int

const (
	MethodExplicit Method = iota
	MethodImplicit
)

func (m Method) String() string {
	switch m {
	case MethodExplicit:
		return "explicit"
	case MethodImplicit:
		return "implicit"
	}
	return fmt.Sprintf("Method(%d)", int(m))
}

// ParseMethod accepts "explicit"/"fwd" and "implicit"/"lu".
func ParseMethod(v string) (Method, error) {
	switch strings.ToLower(strings.TrimSpace(v)) {
	case "explicit", "fwd":
		return MethodExplicit, nil
	case "implicit", "lu":
		return MethodImplicit, nil
	}
	return 0, fmt.Errorf("finitediff: unknown method %q", v)
}

// Solve runs the selected scheme and returns the grid at expiry distance timeRemaining.
func Solve[T pricing.Instrument](m Method, inst T, asset pricing.Asset, timeRemaining float64, p Params) ([]float64, error) {
	switch m {
	case MethodExplicit:
		return Explicit(inst, asset, timeRemaining, p)
	case MethodImplicit:
		return Implicit(inst, asset, timeRemaining, p)
	}
	return nil, fmt.Errorf("finitediff: unknown method %v", m)
}

// Price solves the PDE with the selected scheme and reads the option value
// at spot off the final grid.
func Price[T pricing.Instrument](m Method, inst T, asset pricing.Asset, timeRemaining, spot float64, p Params) (float64, error) {
	if !(timeRemaining > 0) || math.IsInf(timeRemaining, 0) {
		return 0, fmt.Errorf("%w: time remaining must be positive, got %v", ErrInvalidInput, timeRemaining)
	}
	if !(spot > 0) || math.IsInf(spot, 0) {
		return 0, fmt.Errorf("%w: spot must be positive, got %v", ErrInvalidInput, spot)
	}
	if err := asset.Validate(); err != nil {
		return 0, err
	}

	// fail before the timestep loop if the grid cannot hold the answer
	if err := p.Validate(); err != nil {
		return 0, err
	}
	loc, err := p.SpotToArrayLoc(inst.LogMoneyness(spot))
	if err != nil {
		return 0, fmt.Errorf("spot %.4f: %w", spot, err)
	}

	grid, err := Solve(m, inst, asset, timeRemaining, p)
	if err != nil {
		return 0, fmt.Errorf("%v solve: %w", m, err)
	}

	return inst.UToValue(asset, timeRemaining, spot, grid[loc]), nil
}

// ExplicitPrice prices with the explicit scheme.
func ExplicitPrice[T pricing.Instrument](inst T, asset pricing.Asset, timeRemaining, spot float64, p Params) (float64, error) {
	return Price(MethodExplicit, inst, asset, timeRemaining, spot, p)
}

// ImplicitPrice prices with the implicit scheme.
func ImplicitPrice[T pricing.Instrument](inst T, asset pricing.Asset, timeRemaining, spot float64, p Params) (float64, error) {
	return Price(MethodImplicit, inst, asset, timeRemaining, spot, p)
}
