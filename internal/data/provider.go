// Package data supplies the market inputs the pricer cannot be configured
// with directly: the underlying's latest close and its historical volatility.
package data

import (
	"context"
	"errors"
	"fmt"
	"math"
	"sort"
	"strings"
	"time"

	"gonum.org/v1/gonum/stat"

	"github.com/contactkeval/option-fd/internal/logger"
)

// ErrNoBars is returned when a provider has no history for the range asked.
var ErrNoBars = errors.New("no bars")

// DefaultVolatility is used when there are too few closes to estimate one.
const DefaultVolatility = 0.30

// TradingDaysPerYear annualises daily log-return variance.
const TradingDaysPerYear = 252.0

// Provider supplies daily bars for an underlying.
type Provider interface {
	Secondary() Provider
	GetBars(ctx context.Context, underlying string, fromDate, toDate time.Time) ([]Bar, error)
}

// Bar simplified OHLC
type Bar struct {
	Date  time.Time
	Open  float64
	High  float64
	Low   float64
	Close float64
	Vol   float64
}

// Options selects and configures a provider. Kind is one of massive, csv
// or synthetic.
type Options struct {
	Kind    string
	APIKey  string
	BaseURL string
	CSVPath string
	Seed    int64
	Start   float64 // synthetic starting price
	Vol     float64 // synthetic annualised vol
}

// New builds a provider, chaining secondary as its fallback.
func New(opts Options, secondary Provider) (Provider, error) {
	switch strings.ToLower(opts.Kind) {
	case "massive":
		p := NewMassiveDataProvider(opts.APIKey)
		if opts.BaseURL != "" {
			p.SetBaseURL(opts.BaseURL)
		}
		p.secondary = secondary
		return p, nil
	case "csv":
		return NewLocalCSVDataProvider(opts.CSVPath, secondary), nil
	case "synthetic":
		return NewSyntheticProvider(opts.Seed, opts.Start, opts.Vol), nil
	}
	return nil, fmt.Errorf("unknown data provider %q", opts.Kind)
}

// GetBars asks prov for bars and falls back to its secondary when the
// primary fails or returns nothing.
func GetBars(ctx context.Context, prov Provider, underlying string, fromDate, toDate time.Time) ([]Bar, error) {
	bars, err := prov.GetBars(ctx, underlying, fromDate, toDate)
	if err == nil && len(bars) > 0 {
		return bars, nil
	}
	if err == nil {
		err = fmt.Errorf("%w for %s between %s and %s", ErrNoBars, underlying,
			fromDate.Format("2006-01-02"), toDate.Format("2006-01-02"))
	}
	if sec := prov.Secondary(); sec != nil {
		logger.Infof("primary provider failed (%v), trying secondary", err)
		return GetBars(ctx, sec, underlying, fromDate, toDate)
	}
	return nil, err
}

// Closes returns closing prices ordered by date.
func Closes(bars []Bar) []float64 {
	sorted := append([]Bar(nil), bars...)
	sort.SliceStable(sorted, func(i, j int) bool { return sorted[i].Date.Before(sorted[j].Date) })

	out := make([]float64, len(sorted))
	for i, b := range sorted {
		out[i] = b.Close
	}
	return out
}

// LatestClose returns the close of the most recent bar.
func LatestClose(bars []Bar) (float64, error) {
	if len(bars) == 0 {
		return 0, ErrNoBars
	}
	latest := bars[0]
	for _, b := range bars[1:] {
		if b.Date.After(latest.Date) {
			latest = b
		}
	}
	return latest.Close, nil
}

// AnnualizedVolatility is the sample standard deviation of daily log returns
// scaled by √252. Fewer than three closes (one return has no sample
// variance) yields DefaultVolatility.
func AnnualizedVolatility(closes []float64) float64 {
	if len(closes) < 2 {
		return DefaultVolatility
	}
	rets := make([]float64, 0, len(closes)-1)
	for i := 1; i < len(closes); i++ {
		rets = append(rets, math.Log(closes[i]/closes[i-1]))
	}
	if len(rets) < 2 {
		return DefaultVolatility
	}
	return stat.StdDev(rets, nil) * math.Sqrt(TradingDaysPerYear)
}
