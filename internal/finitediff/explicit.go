package finitediff

import (
	"github.com/contactkeval/option-fd/internal/logger"
	"github.com/contactkeval/option-fd/internal/pricing"
)

// Explicit marches the forward-time centred-space scheme from expiry
// (τ = 0) to the instrument's dimensionless time to expiry and returns the
// final grid.
//
// An unstable grid (α > ½) is logged as a warning and solved anyway; the
// result is then unreliable but finite work is still done.
func Explicit[T pricing.Instrument](inst T, asset pricing.Asset, timeRemaining float64, p Params) ([]float64, error) {
	if err := p.Validate(); err != nil {
		return nil, err
	}

	alpha := p.Alpha()
	if !p.Stable() {
		logger.Warnf("explicit scheme unstable: alpha=%.4f > %.1f, reduce dt or increase dx", alpha, MaxStableAlpha)
	}

	numx := p.NumX()
	numt := p.NumT(inst.DimensionlessTime(asset, timeRemaining))
	logger.Debugf("explicit solve: %s numt=%d", p, numt)

	oldu := make([]float64, numx)
	newu := make([]float64, numx)

	for i := range oldu {
		oldu[i] = inst.BoundaryT0(asset, p.X(i))
	}

	xMinus, xPlus := p.X(0), p.X(numx-1)
	for j := 1; j <= numt; j++ {
		tau := float64(j) * p.DT

		newu[0] = inst.BoundarySpatialMinus(asset, xMinus, tau)
		newu[numx-1] = inst.BoundarySpatialPlus(asset, xPlus, tau)

		for n := 1; n < numx-1; n++ {
			newu[n] = oldu[n] + alpha*(oldu[n-1]-2*oldu[n]+oldu[n+1])
		}

		oldu, newu = newu, oldu
	}

	return oldu, nil
}
