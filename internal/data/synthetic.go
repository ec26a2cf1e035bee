package data

import (
	"context"
	"math"
	"math/rand"
	"time"
)

// synthDataProvider generates a seeded geometric Brownian motion walk over
// weekdays. The same seed always yields the same bars.
type synthDataProvider struct {
	seed  int64
	start float64
	vol   float64
}

// NewSyntheticProvider starts the walk at start with annualised vol. Zero
// values fall back to 100 and 20%.
func NewSyntheticProvider(seed int64, start, vol float64) Provider {
	if start <= 0 {
		start = 100
	}
	if vol <= 0 {
		vol = 0.2
	}
	return &synthDataProvider{seed: seed, start: start, vol: vol}
}

func (synthDataProv *synthDataProvider) Secondary() Provider {
	return nil
}

func (synthDataProv *synthDataProvider) GetBars(ctx context.Context, underlying string, fromDate, toDate time.Time) ([]Bar, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	rng := rand.New(rand.NewSource(synthDataProv.seed))
	dailyVol := synthDataProv.vol / math.Sqrt(TradingDaysPerYear)
	drift := -0.5 * dailyVol * dailyVol

	cur := truncateDay(fromDate)
	end := truncateDay(toDate)
	price := synthDataProv.start
	var out []Bar
	for !cur.After(end) {
		if cur.Weekday() != time.Saturday && cur.Weekday() != time.Sunday {
			open := price
			close := open * math.Exp(drift+dailyVol*rng.NormFloat64())
			high := math.Max(open, close) * (1 + math.Abs(rng.NormFloat64())*dailyVol/4)
			low := math.Min(open, close) * (1 - math.Abs(rng.NormFloat64())*dailyVol/4)
			out = append(out, Bar{Date: cur, Open: open, High: high, Low: low, Close: close, Vol: float64(1000 + rng.Intn(5000))})
			price = close
		}
		cur = cur.AddDate(0, 0, 1)
	}
	return out, nil
}
