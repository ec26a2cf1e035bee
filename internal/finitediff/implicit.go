package finitediff

import (
	"fmt"
	"math"

	"github.com/contactkeval/option-fd/internal/logger"
	"github.com/contactkeval/option-fd/internal/pricing"
)

// luPivots returns the diagonal of U in the LU factorisation of the
// interior system (I − αD), where D is the second-difference operator:
//
//	y[0] = 1 + 2α
//	y[i] = 1 + 2α − α²/y[i−1]
//
// It depends only on α, so it is computed once per grid.
func luPivots(p Params) ([]float64, error) {
	alpha := p.Alpha()
	ys := make([]float64, p.NumX()-2)

	for i := range ys {
		if i == 0 {
			ys[i] = 1 + 2*alpha
		} else {
			ys[i] = 1 + 2*alpha - alpha*alpha/ys[i-1]
		}
		if ys[i] == 0 || math.IsNaN(ys[i]) || math.IsInf(ys[i], 0) {
			return nil, fmt.Errorf("%w: pivot %d is %v (%s)", ErrSingularSystem, i, ys[i], p)
		}
	}
	return ys, nil
}

// tridiagonal holds the per-grid elimination state. The work vectors are
// reused across timesteps.
type tridiagonal struct {
	alpha float64
	ys    []float64
	qs    []float64
	bs    []float64
}

func newTridiagonal(p Params) (*tridiagonal, error) {
	ys, err := luPivots(p)
	if err != nil {
		return nil, err
	}
	return &tridiagonal{
		alpha: p.Alpha(),
		ys:    ys,
		qs:    make([]float64, len(ys)),
		bs:    make([]float64, p.NumX()),
	}, nil
}

// advance solves (I − αD)·u_new = u_old in place. The edge nodes of u must
// already hold the boundary values for the new timestep; bs holds u_old with
// the edge contributions folded into its first and last interior entries.
func (td *tridiagonal) advance(u []float64) {
	alpha := td.alpha
	ys, qs, bs := td.ys, td.qs, td.bs
	m := len(ys)

	// forward substitution, Lq = b
	qs[0] = bs[1]
	for i := 1; i < m; i++ {
		qs[i] = bs[i+1] + alpha*qs[i-1]/ys[i-1]
	}

	// back substitution, Uu = q, over every interior node
	u[m] = qs[m-1] / ys[m-1]
	for i := m - 2; i >= 0; i-- {
		u[i+1] = (qs[i] + alpha*u[i+2]) / ys[i]
	}
}

// step moves grid from τ − dt to τ given the edge values at τ.
func (td *tridiagonal) step(grid []float64, lower, upper float64) {
	n := len(grid)
	copy(td.bs, grid)

	grid[0] = lower
	grid[n-1] = upper

	td.bs[1] += td.alpha * grid[0]
	td.bs[n-2] += td.alpha * grid[n-1]

	td.advance(grid)
}

// Implicit marches the backward-time scheme from expiry to the instrument's
// dimensionless time to expiry and returns the final grid. Each step costs
// O(NumX) and no matrix is formed.
func Implicit[T pricing.Instrument](inst T, asset pricing.Asset, timeRemaining float64, p Params) ([]float64, error) {
	if err := p.Validate(); err != nil {
		return nil, err
	}

	td, err := newTridiagonal(p)
	if err != nil {
		logger.Errorf("implicit solve aborted: %v", err)
		return nil, err
	}

	numx := p.NumX()
	numt := p.NumT(inst.DimensionlessTime(asset, timeRemaining))
	logger.Debugf("implicit solve: %s numt=%d", p, numt)

	u := make([]float64, numx)
	for i := range u {
		u[i] = inst.BoundaryT0(asset, p.X(i))
	}

	xMinus, xPlus := p.X(0), p.X(numx-1)
	for j := 1; j <= numt; j++ {
		tau := float64(j) * p.DT
		td.step(u,
			inst.BoundarySpatialMinus(asset, xMinus, tau),
			inst.BoundarySpatialPlus(asset, xPlus, tau),
		)
	}

	return u, nil
}
