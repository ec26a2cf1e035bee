package data

import (
	"context"
	"math"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAnnualizedVolatility(t *testing.T) {
	assert.Equal(t, DefaultVolatility, AnnualizedVolatility(nil))
	assert.Equal(t, DefaultVolatility, AnnualizedVolatility([]float64{100}))
	assert.Equal(t, DefaultVolatility, AnnualizedVolatility([]float64{100, 101}))
	assert.InDelta(t, 0, AnnualizedVolatility([]float64{100, 101, 102.01}), 1e-9)

	// returns +r, -r alternating: sample stdev is r·√(n/(n-1))
	r := 0.01
	closes := []float64{100}
	for i := 0; i < 10; i++ {
		sign := 1.0
		if i%2 == 1 {
			sign = -1
		}
		closes = append(closes, closes[len(closes)-1]*math.Exp(sign*r))
	}
	want := r * math.Sqrt(10.0/9.0) * math.Sqrt(TradingDaysPerYear)
	assert.InDelta(t, want, AnnualizedVolatility(closes), 1e-12)
}

func TestClosesAndLatestClose(t *testing.T) {
	bars := []Bar{
		{Date: time.Date(2025, 1, 3, 0, 0, 0, 0, time.UTC), Close: 3},
		{Date: time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC), Close: 1},
		{Date: time.Date(2025, 1, 2, 0, 0, 0, 0, time.UTC), Close: 2},
	}
	assert.Equal(t, []float64{1, 2, 3}, Closes(bars))
	assert.Equal(t, 3.0, bars[0].Close, "input order untouched")

	last, err := LatestClose(bars)
	require.NoError(t, err)
	assert.Equal(t, 3.0, last)

	_, err = LatestClose(nil)
	assert.ErrorIs(t, err, ErrNoBars)
}

func TestSyntheticProviderIsDeterministic(t *testing.T) {
	ctx := context.Background()
	a, err := NewSyntheticProvider(7, 60, 0.2).GetBars(ctx, "XYZ", fromDate, toDate)
	require.NoError(t, err)
	b, err := NewSyntheticProvider(7, 60, 0.2).GetBars(ctx, "XYZ", fromDate, toDate)
	require.NoError(t, err)
	assert.Equal(t, a, b)

	// 2025-01-01 .. 2025-01-10 has eight weekdays
	require.Len(t, a, 8)
	assert.Equal(t, 60.0, a[0].Open)
	for _, bar := range a {
		assert.NotEqual(t, time.Saturday, bar.Date.Weekday())
		assert.NotEqual(t, time.Sunday, bar.Date.Weekday())
		assert.GreaterOrEqual(t, bar.High, math.Max(bar.Open, bar.Close))
		assert.LessOrEqual(t, bar.Low, math.Min(bar.Open, bar.Close))
	}
}

func TestLocalCSVProvider(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bars.csv")
	body := "date,open,high,low,close,volume\n" +
		"2025-01-03,10,11,9,10.5,100\n" +
		"2024-12-31,9,10,8,9.5,100\n" +
		"2025-01-02,10,11,9,10.2,100\n" +
		"2025-02-01,10,11,9,12,100\n"
	require.NoError(t, os.WriteFile(path, []byte(body), 0o644))

	p, err := New(Options{Kind: "csv", CSVPath: path}, nil)
	require.NoError(t, err)

	bars, err := p.GetBars(context.Background(), "XYZ", fromDate, toDate)
	require.NoError(t, err)
	assert.Equal(t, []float64{10.2, 10.5}, Closes(bars))
	assert.Equal(t, 11.0, bars[0].High)
}

func TestLocalCSVProviderErrors(t *testing.T) {
	ctx := context.Background()
	dir := t.TempDir()

	_, err := NewLocalCSVDataProvider(filepath.Join(dir, "missing.csv"), nil).GetBars(ctx, "XYZ", fromDate, toDate)
	assert.ErrorIs(t, err, os.ErrNotExist)

	noClose := filepath.Join(dir, "noclose.csv")
	require.NoError(t, os.WriteFile(noClose, []byte("date,open\n2025-01-02,1\n"), 0o644))
	_, err = NewLocalCSVDataProvider(noClose, nil).GetBars(ctx, "XYZ", fromDate, toDate)
	assert.ErrorContains(t, err, "close")

	badDate := filepath.Join(dir, "baddate.csv")
	require.NoError(t, os.WriteFile(badDate, []byte("date,close\n01/02/2025,1\n"), 0o644))
	_, err = NewLocalCSVDataProvider(badDate, nil).GetBars(ctx, "XYZ", fromDate, toDate)
	assert.ErrorContains(t, err, "line 2")
}

func TestGetBarsEmptyPrimaryWithoutSecondary(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bars.csv")
	require.NoError(t, os.WriteFile(path, []byte("date,close\n2020-01-02,1\n"), 0o644))

	_, err := GetBars(context.Background(), NewLocalCSVDataProvider(path, nil), "XYZ", fromDate, toDate)
	assert.ErrorIs(t, err, ErrNoBars)
}

func TestNewUnknownProvider(t *testing.T) {
	_, err := New(Options{Kind: "bloomberg"}, nil)
	assert.Error(t, err)
}
