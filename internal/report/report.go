package report

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"
	"math"
	"os"
	"path/filepath"
	"strings"
	"text/tabwriter"

	"github.com/shopspring/decimal"

	"github.com/contactkeval/option-fd/internal/engine"
)

// PricePlaces is the number of decimal places quotes are reported with.
const PricePlaces = 4

// Row is a Quote with every number rounded for output. Non-finite values
// are null in JSON and NaN in CSV and tables.
type Row struct {
	Kind       string              `json:"kind"`
	Side       string              `json:"side"`
	Strike     decimal.NullDecimal `json:"strike"`
	Method     string              `json:"method"`
	Price      decimal.NullDecimal `json:"price"`
	Analytic   decimal.NullDecimal `json:"analytic"`
	Error      decimal.NullDecimal `json:"error"`
	Intrinsic  decimal.NullDecimal `json:"intrinsic"`
	ImpliedVol decimal.NullDecimal `json:"implied_vol"`
}

// Summary is what quotes.json holds.
type Summary struct {
	Underlying    string              `json:"underlying,omitempty"`
	Spot          decimal.NullDecimal `json:"spot"`
	Vol           decimal.NullDecimal `json:"vol"`
	VolSource     string              `json:"vol_source"`
	Rate          decimal.NullDecimal `json:"rate"`
	TimeRemaining decimal.NullDecimal `json:"time_remaining"`
	DX            float64             `json:"dx"`
	DT            float64             `json:"dt"`
	Minus         int                 `json:"minus"`
	Plus          int                 `json:"plus"`
	Alpha         decimal.NullDecimal `json:"alpha"`
	Quotes        []Row               `json:"quotes"`
}

// NotANumber is printed in place of a non-finite value, e.g. the price an
// unstable explicit grid blows up to.
const NotANumber = "NaN"

// round is null for NaN and ±Inf, which decimal cannot represent.
func round(v float64) decimal.NullDecimal {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return decimal.NullDecimal{}
	}
	return decimal.NewNullDecimal(decimal.NewFromFloat(v).Round(PricePlaces))
}

func fixed(d decimal.NullDecimal) string {
	if !d.Valid {
		return NotANumber
	}
	return d.Decimal.StringFixed(PricePlaces)
}

func plain(d decimal.NullDecimal) string {
	if !d.Valid {
		return NotANumber
	}
	return d.Decimal.String()
}

// Rows rounds quotes for output, keeping their order.
func Rows(quotes []engine.Quote) []Row {
	out := make([]Row, len(quotes))
	for i, q := range quotes {
		out[i] = Row{
			Kind:       q.Kind,
			Side:       q.Side,
			Strike:     round(q.Strike),
			Method:     q.Method,
			Price:      round(q.Price),
			Analytic:   round(q.Analytic),
			Error:      round(q.Error),
			Intrinsic:  round(q.Intrinsic),
			ImpliedVol: round(q.ImpliedVol),
		}
	}
	return out
}

func Summarize(res *engine.Result) Summary {
	return Summary{
		Underlying:    res.Underlying,
		Spot:          round(res.Spot),
		Vol:           round(res.Vol),
		VolSource:     res.VolSource,
		Rate:          round(res.Rate),
		TimeRemaining: round(res.TimeRemaining),
		DX:            res.Grid.DX,
		DT:            res.Grid.DT,
		Minus:         res.Grid.Minus,
		Plus:          res.Grid.Plus,
		Alpha:         round(res.Alpha),
		Quotes:        Rows(res.Quotes),
	}
}

// Write creates outdir and writes every requested format into it.
func Write(res *engine.Result, outdir string, formats []string) error {
	if err := os.MkdirAll(outdir, 0755); err != nil {
		return fmt.Errorf("creating output dir %s: %w", outdir, err)
	}
	for _, f := range formats {
		var err error
		switch strings.ToLower(f) {
		case "json":
			err = WriteJSON(res, outdir)
		case "csv":
			err = WriteCSV(res.Quotes, outdir)
		default:
			err = fmt.Errorf("unknown report format %q", f)
		}
		if err != nil {
			return err
		}
	}
	return nil
}

func WriteJSON(res *engine.Result, outdir string) error {
	b, err := json.MarshalIndent(Summarize(res), "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(filepath.Join(outdir, "quotes.json"), b, 0644)
}

func WriteCSV(quotes []engine.Quote, outdir string) error {
	f, err := os.Create(filepath.Join(outdir, "quotes.csv"))
	if err != nil {
		return err
	}
	defer f.Close()
	w := csv.NewWriter(f)
	headers := []string{"kind", "side", "strike", "method", "price", "analytic", "error", "intrinsic", "implied_vol"}
	if err := w.Write(headers); err != nil {
		return err
	}
	for _, r := range Rows(quotes) {
		row := []string{r.Kind, r.Side, plain(r.Strike), r.Method, fixed(r.Price), fixed(r.Analytic), fixed(r.Error), fixed(r.Intrinsic), fixed(r.ImpliedVol)}
		if err := w.Write(row); err != nil {
			return err
		}
	}
	w.Flush()
	return w.Error()
}

// WriteTable prints quotes as an aligned table.
func WriteTable(out io.Writer, res *engine.Result) error {
	tw := tabwriter.NewWriter(out, 0, 0, 2, ' ', tabwriter.AlignRight)
	fmt.Fprintf(tw, "spot\t%s\tvol\t%s (%s)\trate\t%s\tT\t%s\t\n",
		plain(round(res.Spot)), plain(round(res.Vol)), res.VolSource, plain(round(res.Rate)), plain(round(res.TimeRemaining)))
	fmt.Fprintln(tw, "kind\tside\tstrike\tmethod\tprice\tanalytic\terror\tiv\t")
	for _, r := range Rows(res.Quotes) {
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\t%s\t%s\t%s\t\n",
			r.Kind, r.Side, plain(r.Strike), r.Method,
			fixed(r.Price), fixed(r.Analytic), fixed(r.Error), fixed(r.ImpliedVol))
	}
	return tw.Flush()
}
