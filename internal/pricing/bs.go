package pricing

import (
	"errors"
	"math"

	"gonum.org/v1/gonum/stat/distuv"
)

// ErrNoConvergence is returned by ImpliedVol when Newton iteration stalls.
var ErrNoConvergence = errors.New("pricing: implied vol did not converge")

// BlackScholesPrice calculates the price of a European option using the Black-Scholes model.
//
// Parameters:
//   - side: Call or Put
//   - S: spot price of the underlying asset
//   - K: strike price of the option
//   - T: time to expiry in years
//   - r: risk-free interest rate (annual)
//   - sigma: volatility of the underlying asset (annual, as a decimal)
//
// Returns:
//
//	The theoretical price of the option. If time to expiry or volatility is zero or negative,
//	returns the intrinsic value of the option.
//
// This is the closed-form reference the finite-difference solvers are checked
// against; nothing in the solve path calls it.
func BlackScholesPrice(
	side Side,
	S float64, // spot
	K float64, // strike
	T float64, // time to expiry in years
	r float64, // risk-free rate
	sigma float64, // volatility
) float64 {

	if T <= 0 || sigma <= 0 {
		return math.Max(0, side.Sign()*(S-K)) // intrinsic fallback
	}

	d1, d2 := d1d2(S, K, T, r, sigma)
	s := side.Sign()
	return s * (S*normCDF(s*d1) - K*math.Exp(-r*T)*normCDF(s*d2))
}

// BlackScholesVega calculates the vega of a European option using the Black-Scholes model.
// Vega is the same for calls and puts.
//
// Returns 0 if T or sigma is non-positive.
func BlackScholesVega(
	S float64,
	K float64,
	T float64,
	r float64,
	sigma float64,
) float64 {

	if T <= 0 || sigma <= 0 {
		return 0
	}

	d1, _ := d1d2(S, K, T, r, sigma)
	return S * normPDF(d1) * math.Sqrt(T)
}

// ImpliedVol solves BlackScholesPrice(side, S, K, T, r, σ) = price for σ
// using Newton-Raphson, starting from 20%.
func ImpliedVol(side Side, S, K, T, r, price float64) (float64, error) {
	if T <= 0 || S <= 0 || K <= 0 {
		return 0, ErrInvalidInstrument
	}

	sigma := 0.20

	const (
		maxIter = 100
		tol     = 1e-6
	)

	for i := 0; i < maxIter; i++ {
		diff := BlackScholesPrice(side, S, K, T, r, sigma) - price

		if math.Abs(diff) < tol {
			return sigma, nil
		}

		vega := BlackScholesVega(S, K, T, r, sigma)
		if vega < 1e-8 {
			break
		}

		sigma -= diff / vega

		// Guardrails
		if sigma <= 0 {
			sigma = 1e-4
		}
		if sigma > 5 {
			sigma = 5
		}
	}

	return 0, ErrNoConvergence
}

// ExactSolution prices the option in closed form.
func (e European) ExactSolution(a Asset, spot, timeRemaining float64) float64 {
	return BlackScholesPrice(e.Side, spot, e.Strike, timeRemaining, a.Rate, a.Vol)
}

func d1d2(S, K, T, r, sigma float64) (float64, float64) {
	sqrtT := math.Sqrt(T)
	d1 := (math.Log(S/K) + (r+0.5*sigma*sigma)*T) / (sigma * sqrtT)
	return d1, d1 - sigma*sqrtT
}

func normPDF(x float64) float64 {
	return distuv.UnitNormal.Prob(x)
}

func normCDF(x float64) float64 {
	return distuv.UnitNormal.CDF(x)
}
