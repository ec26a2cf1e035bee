// Package engine turns a Config into quotes: it resolves spot and volatility,
// builds the instruments, and runs every configured solver over them.
package engine

import (
	"context"
	"errors"
	"fmt"
	"math"
	"strings"
	"time"

	"github.com/contactkeval/option-fd/internal/config"
	"github.com/contactkeval/option-fd/internal/data"
	fd "github.com/contactkeval/option-fd/internal/finitediff"
	"github.com/contactkeval/option-fd/internal/logger"
	"github.com/contactkeval/option-fd/internal/pricing"
)

type Engine struct {
	cfg  *config.Config
	prov data.Provider
	now  func() time.Time
}

// Quote is one instrument priced by one method.
type Quote struct {
	Kind       string  `json:"kind"`
	Side       string  `json:"side"`
	Strike     float64 `json:"strike"`
	Method     string  `json:"method"`
	Price      float64 `json:"price"`
	Analytic   float64 `json:"analytic"`
	Error      float64 `json:"error"` // price - analytic
	Intrinsic  float64 `json:"intrinsic"`
	ImpliedVol float64 `json:"implied_vol,omitempty"`
}

// Result is the outcome of one Run.
type Result struct {
	Underlying    string        `json:"underlying,omitempty"`
	Spot          float64       `json:"spot"`
	Vol           float64       `json:"vol"`
	VolSource     string        `json:"vol_source"`
	Rate          float64       `json:"rate"`
	TimeRemaining float64       `json:"time_remaining"`
	Grid          fd.Params     `json:"grid"`
	Alpha         float64       `json:"alpha"`
	Quotes        []Quote       `json:"quotes"`
	Elapsed       time.Duration `json:"elapsed_ns"`
}

const (
	VolFromConfig     = "config"
	VolFromHistorical = "historical"
)

// NewEngine binds a validated config to a market-data provider. prov may be
// nil when the config supplies both spot and vol.
func NewEngine(cfg *config.Config, prov data.Provider) *Engine {
	return &Engine{cfg: cfg, prov: prov, now: time.Now}
}

// NewProvider builds the configured provider chain. The static provider
// needs no market data and yields nil.
func NewProvider(cfg *config.Config) (data.Provider, error) {
	var secondary data.Provider
	if k := strings.ToLower(cfg.Market.Secondary); k != "" && k != config.ProviderStatic {
		sec, err := data.New(providerOptions(cfg, k), nil)
		if err != nil {
			return nil, err
		}
		secondary = sec
	}

	kind := strings.ToLower(cfg.Market.Provider)
	if kind == config.ProviderStatic {
		return secondary, nil
	}
	return data.New(providerOptions(cfg, kind), secondary)
}

func providerOptions(cfg *config.Config, kind string) data.Options {
	return data.Options{
		Kind:    kind,
		APIKey:  cfg.Market.APIKey,
		BaseURL: cfg.Market.BaseURL,
		CSVPath: cfg.Market.CSVPath,
		Seed:    cfg.Market.Seed,
		Start:   cfg.Market.Spot,
		Vol:     cfg.Asset.Vol,
	}
}

// Run prices every strike with every configured method.
func (e *Engine) Run(ctx context.Context) (*Result, error) {
	start := time.Now()
	cfg := e.cfg

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	res := &Result{
		Underlying:    cfg.Market.Underlying,
		Spot:          cfg.Market.Spot,
		Vol:           cfg.Asset.Vol,
		VolSource:     VolFromConfig,
		Rate:          cfg.Asset.Rate,
		TimeRemaining: cfg.Instrument.TimeRemaining,
		Grid:          cfg.Grid,
		Alpha:         cfg.Grid.Alpha(),
	}
	if err := e.resolveMarket(ctx, res); err != nil {
		return nil, err
	}
	logger.Infof("spot=%.4f vol=%.2f%% (%s) rate=%.2f%% T=%.4fy", res.Spot, res.Vol*100, res.VolSource, res.Rate*100, res.TimeRemaining)

	asset, err := pricing.NewAsset(res.Vol, res.Rate)
	if err != nil {
		return nil, err
	}
	side, err := pricing.ParseSide(cfg.Instrument.Side)
	if err != nil {
		return nil, err
	}
	methods, err := cfg.ParsedMethods()
	if err != nil {
		return nil, err
	}

	strikes := cfg.StrikeLadder()
	switch strings.ToLower(cfg.Instrument.Kind) {
	case config.KindEuropean:
		insts := make([]pricing.European, 0, len(strikes))
		for _, k := range strikes {
			inst, err := pricing.NewEuropean(k, side)
			if err != nil {
				return nil, err
			}
			insts = append(insts, inst)
		}
		res.Quotes, err = priceAll(ctx, e.cfg, config.KindEuropean, insts, asset, res.Spot, methods)
	case config.KindCashOrNothing:
		insts := make([]pricing.CashOrNothing, 0, len(strikes))
		for _, k := range strikes {
			inst, err := pricing.NewCashOrNothing(k, cfg.Instrument.Cash, side)
			if err != nil {
				return nil, err
			}
			insts = append(insts, inst)
		}
		res.Quotes, err = priceAll(ctx, e.cfg, config.KindCashOrNothing, insts, asset, res.Spot, methods)
	default:
		err = fmt.Errorf("unknown instrument kind %q", cfg.Instrument.Kind)
	}
	if err != nil {
		return nil, err
	}

	res.Elapsed = time.Since(start)
	logger.Infof("priced %d quotes in %v", len(res.Quotes), res.Elapsed)
	return res, nil
}

// resolveMarket fills spot and vol from history where the config leaves
// them open.
func (e *Engine) resolveMarket(ctx context.Context, res *Result) error {
	cfg := e.cfg
	if res.Spot > 0 && res.Vol > 0 {
		return nil
	}
	if e.prov == nil {
		return errors.New("spot or vol missing and no market-data provider configured")
	}

	to := e.now().UTC()
	from := to.AddDate(0, 0, -cfg.Market.LookbackDays)
	bars, err := data.GetBars(ctx, e.prov, cfg.Market.Underlying, from, to)
	if err != nil {
		return fmt.Errorf("fetching bars for %s: %w", cfg.Market.Underlying, err)
	}
	logger.Debugf("%d bars for %s", len(bars), cfg.Market.Underlying)

	if res.Spot <= 0 {
		spot, err := data.LatestClose(bars)
		if err != nil {
			return err
		}
		res.Spot = spot
	}
	if res.Vol <= 0 {
		res.Vol = data.AnnualizedVolatility(data.Closes(bars))
		res.VolSource = VolFromHistorical
	}
	return nil
}

type analytic interface {
	pricing.Instrument
	ExactSolution(a pricing.Asset, spot, timeRemaining float64) float64
}

func priceAll[T analytic](
	ctx context.Context,
	cfg *config.Config,
	kind string,
	insts []T,
	asset pricing.Asset,
	spot float64,
	methods []fd.Method,
) ([]Quote, error) {
	timeRemaining := cfg.Instrument.TimeRemaining
	strikes := cfg.StrikeLadder()
	side := sideName(cfg.Instrument.Side)

	reqs := make([]fd.Request[T], len(insts))
	for i, inst := range insts {
		reqs[i] = fd.Request[T]{
			Instrument:    inst,
			Asset:         asset,
			TimeRemaining: timeRemaining,
			Spot:          spot,
			Params:        cfg.Grid,
		}
	}

	quotes := make([]Quote, 0, len(insts)*len(methods))
	for _, m := range methods {
		logger.Debugf("%s: %d %s solves", m, len(reqs), kind)
		prices, err := fd.PriceBatch(ctx, m, reqs, cfg.Workers)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", m, err)
		}

		for i, inst := range insts {
			exact := inst.ExactSolution(asset, spot, timeRemaining)
			q := Quote{
				Kind:      kind,
				Side:      side,
				Strike:    strikes[i],
				Method:    m.String(),
				Price:     prices[i],
				Analytic:  exact,
				Error:     prices[i] - exact,
				Intrinsic: inst.Payoff(spot),
			}
			if math.IsNaN(prices[i]) || math.IsInf(prices[i], 0) {
				logger.Warnf("%s K=%.2f: price is %v, grid alpha=%.4f", m, strikes[i], prices[i], cfg.Grid.Alpha())
			} else if eu, ok := any(inst).(pricing.European); ok {
				iv, err := pricing.ImpliedVol(eu.Side, spot, eu.Strike, timeRemaining, asset.Rate, prices[i])
				if err != nil {
					logger.Debugf("implied vol K=%.2f %s: %v", eu.Strike, m, err)
				} else {
					q.ImpliedVol = iv
				}
			}
			quotes = append(quotes, q)
			logger.Tracef("%s %s K=%.2f price=%.6f analytic=%.6f", m, q.Side, q.Strike, q.Price, q.Analytic)
		}
	}
	return quotes, nil
}

func sideName(s string) string {
	if side, err := pricing.ParseSide(s); err == nil {
		return side.String()
	}
	return s
}
