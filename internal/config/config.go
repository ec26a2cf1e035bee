// Package config defines the run configuration of the pricer: the contract,
// the market inputs, the grid and where output goes.
package config

import (
	"errors"
	"fmt"
	"strings"

	fd "github.com/contactkeval/option-fd/internal/finitediff"
	"github.com/contactkeval/option-fd/internal/logger"
	"github.com/contactkeval/option-fd/internal/pricing"
)

// Config is the top-level configuration loaded from TOML.
type Config struct {
	Instrument InstrumentConfig `toml:"instrument"`
	Asset      AssetConfig      `toml:"asset"`
	Market     MarketConfig     `toml:"market"`
	Grid       fd.Params        `toml:"grid"`
	Methods    []string         `toml:"methods"` // explicit, implicit
	Workers    int              `toml:"workers"` // concurrent solves per method, 0 = one per strike
	Log        logger.Config    `toml:"log"`
	Report     ReportConfig     `toml:"report"`
}

// InstrumentConfig describes the contract(s) to price. Strikes, when set,
// prices a ladder and takes precedence over Strike.
type InstrumentConfig struct {
	Kind          string    `toml:"kind"` // european, cash_or_nothing
	Side          string    `toml:"side"` // call, put
	Strike        float64   `toml:"strike"`
	Strikes       []float64 `toml:"strikes"`
	Cash          float64   `toml:"cash"`           // cash_or_nothing payout
	TimeRemaining float64   `toml:"time_remaining"` // years
}

// AssetConfig holds market state. Vol = 0 means estimate it from the
// market-data provider's history.
type AssetConfig struct {
	Vol  float64 `toml:"vol"`
	Rate float64 `toml:"rate"`
}

// MarketConfig says where the spot (and, if needed, vol) come from.
// A positive Spot is used as-is; otherwise the latest close of Underlying
// is fetched from Provider.
type MarketConfig struct {
	Spot         float64 `toml:"spot"`
	Underlying   string  `toml:"underlying"`
	Provider     string  `toml:"provider"` // static, synthetic, massive, csv
	Secondary    string  `toml:"secondary"`
	APIKey       string  `toml:"api_key"`
	BaseURL      string  `toml:"base_url"`
	CSVPath      string  `toml:"csv_path"`
	LookbackDays int     `toml:"lookback_days"`
	Seed         int64   `toml:"seed"`
}

type ReportConfig struct {
	Dir     string   `toml:"dir"`     // empty disables file output
	Formats []string `toml:"formats"` // json, csv
}

const (
	KindEuropean      = "european"
	KindCashOrNothing = "cash_or_nothing"

	ProviderStatic    = "static"
	ProviderSynthetic = "synthetic"
	ProviderMassive   = "massive"
	ProviderCSV       = "csv"
)

var validProviders = map[string]bool{
	ProviderStatic:    true,
	ProviderSynthetic: true,
	ProviderMassive:   true,
	ProviderCSV:       true,
}

var validFormats = map[string]bool{"json": true, "csv": true}

// Defaults reproduces the reference scenario: a 50-strike call, six months
// out, 20% vol, 5% rate, spot 60, priced on the default grid by both schemes.
func Defaults() Config {
	return Config{
		Instrument: InstrumentConfig{
			Kind:          KindEuropean,
			Side:          "call",
			Strike:        50,
			TimeRemaining: 0.5,
		},
		Asset: AssetConfig{
			Vol:  0.2,
			Rate: 0.05,
		},
		Market: MarketConfig{
			Spot:         60,
			Provider:     ProviderStatic,
			BaseURL:      "https://api.massive.com",
			LookbackDays: 90,
		},
		Grid:    fd.ReasonableDefaults(),
		Methods: []string{"explicit", "implicit"},
		Log: logger.Config{
			Verbosity: int(logger.Info),
		},
		Report: ReportConfig{
			Dir:     "./out",
			Formats: []string{"json", "csv"},
		},
	}
}

// StrikeLadder returns the strikes to price, in configured order.
func (c *Config) StrikeLadder() []float64 {
	if len(c.Instrument.Strikes) > 0 {
		return c.Instrument.Strikes
	}
	return []float64{c.Instrument.Strike}
}

// ParsedMethods converts Methods into solver selectors.
func (c *Config) ParsedMethods() ([]fd.Method, error) {
	out := make([]fd.Method, 0, len(c.Methods))
	for _, m := range c.Methods {
		method, err := fd.ParseMethod(m)
		if err != nil {
			return nil, err
		}
		out = append(out, method)
	}
	return out, nil
}

// Validate checks the whole configuration and reports every problem at once.
func (c *Config) Validate() error {
	var errs []error

	switch strings.ToLower(c.Instrument.Kind) {
	case KindEuropean:
	case KindCashOrNothing:
		if !(c.Instrument.Cash > 0) {
			errs = append(errs, fmt.Errorf("instrument: cash must be positive for %s, got %v", KindCashOrNothing, c.Instrument.Cash))
		}
	default:
		errs = append(errs, fmt.Errorf("instrument: unknown kind %q (valid: %s, %s)", c.Instrument.Kind, KindEuropean, KindCashOrNothing))
	}
	if _, err := pricing.ParseSide(c.Instrument.Side); err != nil {
		errs = append(errs, fmt.Errorf("instrument: %w", err))
	}
	for _, k := range c.StrikeLadder() {
		if !(k > 0) {
			errs = append(errs, fmt.Errorf("instrument: strike must be positive, got %v", k))
		}
	}
	if !(c.Instrument.TimeRemaining > 0) {
		errs = append(errs, fmt.Errorf("instrument: time_remaining must be positive, got %v", c.Instrument.TimeRemaining))
	}

	if c.Asset.Vol < 0 {
		errs = append(errs, fmt.Errorf("asset: vol must not be negative, got %v", c.Asset.Vol))
	}

	provider := strings.ToLower(c.Market.Provider)
	if !validProviders[provider] {
		errs = append(errs, fmt.Errorf("market: unknown provider %q", c.Market.Provider))
	}
	if c.Market.Secondary != "" && !validProviders[strings.ToLower(c.Market.Secondary)] {
		errs = append(errs, fmt.Errorf("market: unknown secondary provider %q", c.Market.Secondary))
	}
	needsHistory := c.Market.Spot <= 0 || c.Asset.Vol == 0
	if needsHistory {
		if provider == ProviderStatic {
			errs = append(errs, errors.New("market: static provider needs a positive spot and asset vol"))
		}
		if c.Market.Underlying == "" && provider != ProviderStatic {
			errs = append(errs, errors.New("market: underlying is required to fetch spot or vol"))
		}
		if c.Market.LookbackDays < 2 {
			errs = append(errs, fmt.Errorf("market: lookback_days must be at least 2, got %d", c.Market.LookbackDays))
		}
	}
	if provider == ProviderMassive && c.Market.APIKey == "" {
		errs = append(errs, errors.New("market: api_key is required for the massive provider"))
	}
	if provider == ProviderCSV && c.Market.CSVPath == "" {
		errs = append(errs, errors.New("market: csv_path is required for the csv provider"))
	}

	if err := c.Grid.Validate(); err != nil {
		errs = append(errs, fmt.Errorf("grid: %w", err))
	}

	if len(c.Methods) == 0 {
		errs = append(errs, errors.New("methods: at least one of explicit, implicit is required"))
	}
	if _, err := c.ParsedMethods(); err != nil {
		errs = append(errs, fmt.Errorf("methods: %w", err))
	}
	if c.Workers < 0 {
		errs = append(errs, fmt.Errorf("workers must not be negative, got %d", c.Workers))
	}

	for _, f := range c.Report.Formats {
		if !validFormats[strings.ToLower(f)] {
			errs = append(errs, fmt.Errorf("report: unknown format %q (valid: json, csv)", f))
		}
	}

	return errors.Join(errs...)
}
