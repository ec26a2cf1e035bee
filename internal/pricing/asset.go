package pricing

import (
	"errors"
	"fmt"
	"math"
)

var (
	// ErrInvalidAsset reports market state the transform cannot handle.
	ErrInvalidAsset = errors.New("pricing: invalid asset")

	// ErrInvalidInstrument reports a malformed contract.
	ErrInvalidInstrument = errors.New("pricing: invalid instrument")
)

// Asset is an immutable snapshot of the underlying's market state.
type Asset struct {
	Vol  float64 // annualised volatility, as a decimal
	Rate float64 // continuously compounded risk-free rate
}

// NewAsset validates vol > 0 and finite inputs.
func NewAsset(vol, rate float64) (Asset, error) {
	a := Asset{Vol: vol, Rate: rate}
	if err := a.Validate(); err != nil {
		return Asset{}, err
	}
	return a, nil
}

func (a Asset) Validate() error {
	if !(a.Vol > 0) || math.IsInf(a.Vol, 0) {
		return fmt.Errorf("%w: vol must be positive and finite, got %v", ErrInvalidAsset, a.Vol)
	}
	if math.IsNaN(a.Rate) || math.IsInf(a.Rate, 0) {
		return fmt.Errorf("%w: rate must be finite, got %v", ErrInvalidAsset, a.Rate)
	}
	return nil
}

// DimensionlessRate is k = r / (σ²/2).
func (a Asset) DimensionlessRate() float64 {
	return a.Rate / (0.5 * sqr(a.Vol))
}

// DimensionlessTime rescales calendar time into the diffusion equation's τ = σ²T/2.
func (a Asset) DimensionlessTime(timeRemaining float64) float64 {
	return 0.5 * sqr(a.Vol) * timeRemaining
}

func sqr(x float64) float64 {
	return x * x
}
