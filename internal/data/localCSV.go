package data

import (
	"context"
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/contactkeval/option-fd/internal/logger"
)

// localCSVDataProvider reads daily bars from a local CSV file with the header
// date,open,high,low,close,volume. Dates are YYYY-MM-DD. The file holds a
// single underlying; the symbol argument is only used in messages.
type localCSVDataProvider struct {
	path      string
	secondary Provider
}

// NewLocalCSVDataProvider convenience constructor.
func NewLocalCSVDataProvider(path string, secondary Provider) *localCSVDataProvider {
	return &localCSVDataProvider{path: path, secondary: secondary}
}

func (localCSVDataProv *localCSVDataProvider) Secondary() Provider {
	return localCSVDataProv.secondary
}

// GetBars returns the rows dated within [fromDate, toDate], ascending.
func (localCSVDataProv *localCSVDataProvider) GetBars(ctx context.Context, underlying string, fromDate, toDate time.Time) ([]Bar, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	f, err := os.Open(localCSVDataProv.path)
	if err != nil {
		return nil, fmt.Errorf("open bars file: %w", err)
	}
	defer f.Close()

	bars, err := parseBarsCSV(f)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", localCSVDataProv.path, err)
	}

	from := truncateDay(fromDate)
	to := truncateDay(toDate)
	out := bars[:0]
	for _, b := range bars {
		if b.Date.Before(from) || b.Date.After(to) {
			continue
		}
		out = append(out, b)
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].Date.Before(out[j].Date) })

	logger.Debugf("csv bars for %s: %d in range", underlying, len(out))
	return out, nil
}

func parseBarsCSV(r io.Reader) ([]Bar, error) {
	cr := csv.NewReader(r)
	cr.TrimLeadingSpace = true

	header, err := cr.Read()
	if err != nil {
		return nil, fmt.Errorf("read header: %w", err)
	}
	col := make(map[string]int, len(header))
	for i, h := range header {
		col[strings.ToLower(strings.TrimSpace(h))] = i
	}
	for _, want := range []string{"date", "close"} {
		if _, ok := col[want]; !ok {
			return nil, fmt.Errorf("missing %q column", want)
		}
	}

	field := func(row []string, name string) (float64, error) {
		i, ok := col[name]
		if !ok || i >= len(row) || strings.TrimSpace(row[i]) == "" {
			return 0, nil
		}
		return strconv.ParseFloat(strings.TrimSpace(row[i]), 64)
	}

	var out []Bar
	for line := 2; ; line++ {
		row, err := cr.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("line %d: %w", line, err)
		}

		date, err := time.Parse("2006-01-02", strings.TrimSpace(row[col["date"]]))
		if err != nil {
			return nil, fmt.Errorf("line %d: %w", line, err)
		}
		b := Bar{Date: date}
		for _, f := range []struct {
			name string
			dst  *float64
		}{
			{"open", &b.Open},
			{"high", &b.High},
			{"low", &b.Low},
			{"close", &b.Close},
			{"volume", &b.Vol},
		} {
			v, err := field(row, f.name)
			if err != nil {
				return nil, fmt.Errorf("line %d %s: %w", line, f.name, err)
			}
			*f.dst = v
		}
		out = append(out, b)
	}
	return out, nil
}

func truncateDay(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}
