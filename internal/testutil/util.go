// Package testutil holds the reference scenario shared by pricing, solver
// and engine tests.
package testutil

import (
	"math"

	"github.com/contactkeval/option-fd/internal/pricing"
)

const (
	Strike        = 50.0
	Vol           = 0.2
	Rate          = 0.05
	TimeRemaining = 0.5

	// PriceTolerance bounds the finite-difference error against the analytic price.
	PriceTolerance = 1.0
)

// Spots covers at- and in-the-money calls on the reference grid.
var Spots = []float64{60, 65, 70}

func Asset() pricing.Asset {
	return pricing.Asset{Vol: Vol, Rate: Rate}
}

func Call() pricing.European {
	return pricing.European{Strike: Strike, Side: pricing.Call}
}

func Put() pricing.European {
	return pricing.European{Strike: Strike, Side: pricing.Put}
}

// DiscountedStrike is K·e^{-rT} for the reference scenario.
func DiscountedStrike() float64 {
	return Strike * math.Exp(-Rate*TimeRemaining)
}
