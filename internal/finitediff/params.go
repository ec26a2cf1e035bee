// Package finitediff solves the Black–Scholes equation, transformed into the
// heat equation ∂u/∂τ = ∂²u/∂x², on a uniform log-moneyness grid.
//
// Two schemes are provided: an explicit forward-time centred-space march,
// stable only while α = dt/dx² ≤ ½, and an implicit backward-time march that
// solves a tridiagonal system per step by Thomas (LU) elimination and is
// unconditionally stable. Both are generic over pricing.Instrument, so a new
// payoff only has to supply its boundary conditions.
package finitediff

import (
	"fmt"
	"math"
)

// MaxStableAlpha is the largest α for which the explicit scheme is stable.
const MaxStableAlpha = 0.5

// Params describes the discretisation. Grid node i sits at log-moneyness
// (i + Minus)·DX for i in [0, NumX()).
type Params struct {
	DX    float64 `toml:"dx"`    // spatial step
	DT    float64 `toml:"dt"`    // dimensionless time step
	Minus int     `toml:"minus"` // lower grid index bound, <= 0
	Plus  int     `toml:"plus"`  // upper grid index bound, >= 0
}

// NewParams builds a validated grid.
func NewParams(dx, dt float64, minus, plus int) (Params, error) {
	p := Params{DX: dx, DT: dt, Minus: minus, Plus: plus}
	if err := p.Validate(); err != nil {
		return Params{}, err
	}
	return p, nil
}

// ReasonableDefaults covers log-moneyness [-10, 10] and keeps α = 0.3.
func ReasonableDefaults() Params {
	return Params{
		DX:    0.01,
		DT:    0.00003,
		Minus: -1000,
		Plus:  1000,
	}
}

// Validate rejects grids neither scheme can run on.
func (p Params) Validate() error {
	if !(p.DX > 0) || math.IsInf(p.DX, 0) {
		return fmt.Errorf("%w: dx must be positive and finite, got %v", ErrInvalidParams, p.DX)
	}
	if !(p.DT > 0) || math.IsInf(p.DT, 0) {
		return fmt.Errorf("%w: dt must be positive and finite, got %v", ErrInvalidParams, p.DT)
	}
	if p.Plus < p.Minus {
		return fmt.Errorf("%w: plus (%d) < minus (%d)", ErrInvalidParams, p.Plus, p.Minus)
	}
	if p.Minus > 0 || p.Plus < 0 {
		return fmt.Errorf("%w: grid [%d, %d] must contain x = 0", ErrInvalidParams, p.Minus, p.Plus)
	}
	if p.NumX() < 3 {
		return fmt.Errorf("%w: need at least one interior node, got %d nodes", ErrInvalidParams, p.NumX())
	}
	// dx² can underflow to zero long before dx does.
	if a := p.Alpha(); math.IsInf(a, 0) || math.IsNaN(a) {
		return fmt.Errorf("%w: alpha = dt/dx² is %v: %w", ErrInvalidParams, a, ErrSingularSystem)
	}
	return nil
}

// NumX is the number of spatial nodes.
func (p Params) NumX() int {
	return p.Plus - p.Minus + 1
}

// NumT is the number of timesteps needed to reach dimensionless time tau.
func (p Params) NumT(tau float64) int {
	return int(math.Round(tau / p.DT))
}

// Alpha is the diffusion ratio dt/dx².
func (p Params) Alpha() float64 {
	return p.DT / (p.DX * p.DX)
}

// Stable reports whether the explicit scheme converges on this grid.
func (p Params) Stable() bool {
	return p.Alpha() <= MaxStableAlpha
}

// X is the log-moneyness of node i.
func (p Params) X(i int) float64 {
	return float64(i+p.Minus) * p.DX
}

// SpotToArrayLoc maps a log-moneyness to the nearest grid node. A point the
// truncated grid does not cover is an error, never clamped.
func (p Params) SpotToArrayLoc(logMoneyness float64) (int, error) {
	pos := math.Round((logMoneyness - float64(p.Minus)*p.DX) / p.DX)
	if math.IsNaN(pos) || pos < 0 || pos >= float64(p.NumX()) {
		return 0, fmt.Errorf("%w: log-moneyness %.4f not in [%.4f, %.4f]",
			ErrSpotOutOfGrid, logMoneyness, p.X(0), p.X(p.NumX()-1))
	}
	return int(pos), nil
}

func (p Params) String() string {
	return fmt.Sprintf("dx=%g dt=%g grid=[%d,%d] alpha=%.4f", p.DX, p.DT, p.Minus, p.Plus, p.Alpha())
}
