package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	fd "github.com/contactkeval/option-fd/internal/finitediff"
)

func TestDefaultsValidate(t *testing.T) {
	cfg := Defaults()
	require.NoError(t, cfg.Validate())
	assert.Equal(t, []float64{50}, cfg.StrikeLadder())

	methods, err := cfg.ParsedMethods()
	require.NoError(t, err)
	assert.Equal(t, []fd.Method{fd.MethodExplicit, fd.MethodImplicit}, methods)
}

func TestLoadMergesFileOverDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "fdprice.toml")
	body := `
methods = ["implicit"]

[instrument]
side = "put"
strikes = [45.0, 50.0, 55.0]

[grid]
dt = 0.0003

[market]
spot = 70.0
`
	require.NoError(t, os.WriteFile(path, []byte(body), 0o644))

	cfg, err := Load(path)
	require.NoError(t, err)
	require.NoError(t, cfg.Validate())

	assert.Equal(t, "put", cfg.Instrument.Side)
	assert.Equal(t, []float64{45, 50, 55}, cfg.StrikeLadder())
	assert.Equal(t, 0.0003, cfg.Grid.DT)
	assert.Equal(t, 0.01, cfg.Grid.DX, "unset keys keep defaults")
	assert.Equal(t, 70.0, cfg.Market.Spot)
	assert.Equal(t, []string{"implicit"}, cfg.Methods)
	assert.Equal(t, 0.5, cfg.Instrument.TimeRemaining)
}

func TestLoadMissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "nope.toml"))
	assert.Error(t, err)
}

func TestEnvOverrides(t *testing.T) {
	t.Setenv("FDPRICE_SPOT", "65")
	t.Setenv("FDPRICE_STRIKES", "40, 50,60")
	t.Setenv("FDPRICE_METHODS", "explicit")
	t.Setenv("FDPRICE_GRID_MINUS", "-500")
	t.Setenv("FDPRICE_VOL", "not-a-number")

	cfg, err := Load("")
	require.NoError(t, err)

	assert.Equal(t, 65.0, cfg.Market.Spot)
	assert.Equal(t, []float64{40, 50, 60}, cfg.Instrument.Strikes)
	assert.Equal(t, []string{"explicit"}, cfg.Methods)
	assert.Equal(t, -500, cfg.Grid.Minus)
	assert.Equal(t, 0.2, cfg.Asset.Vol, "unparsable values are ignored")
}

func TestEnvOverridesEveryInstrumentAndMarketField(t *testing.T) {
	t.Setenv("FDPRICE_INSTRUMENT_KIND", KindCashOrNothing)
	t.Setenv("FDPRICE_CASH", "10")
	t.Setenv("FDPRICE_MARKET_PROVIDER", ProviderCSV)
	t.Setenv("FDPRICE_CSV_PATH", "bars.csv")
	t.Setenv("FDPRICE_SECONDARY_PROVIDER", ProviderSynthetic)
	t.Setenv("FDPRICE_UNDERLYING", "XYZ")
	t.Setenv("FDPRICE_LOOKBACK_DAYS", "90")
	t.Setenv("FDPRICE_SEED", "8589934592")
	t.Setenv("FDPRICE_REPORT_FORMATS", "csv")

	cfg, err := Load("")
	require.NoError(t, err)
	require.NoError(t, cfg.Validate(), "a digital configured only from the environment must validate")

	assert.Equal(t, 10.0, cfg.Instrument.Cash)
	assert.Equal(t, ProviderSynthetic, cfg.Market.Secondary)
	assert.Equal(t, 90, cfg.Market.LookbackDays)
	assert.Equal(t, int64(1)<<33, cfg.Market.Seed)
	assert.Equal(t, []string{"csv"}, cfg.Report.Formats)
}

func TestValidateCollectsEveryProblem(t *testing.T) {
	cfg := Defaults()
	cfg.Instrument.Kind = "barrier"
	cfg.Instrument.Side = "straddle"
	cfg.Instrument.TimeRemaining = 0
	cfg.Grid.DX = 0
	cfg.Methods = []string{"crank-nicolson"}
	cfg.Report.Formats = []string{"xlsx"}

	err := cfg.Validate()
	require.Error(t, err)
	for _, want := range []string{"unknown kind", "unknown side", "time_remaining", "grid:", "methods:", "xlsx"} {
		assert.Contains(t, err.Error(), want)
	}
	assert.ErrorIs(t, err, fd.ErrInvalidParams)
}

func TestValidateMarketRequirements(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr string
	}{
		{
			name:    "static without spot",
			mutate:  func(c *Config) { c.Market.Spot = 0 },
			wantErr: "static provider",
		},
		{
			name: "massive without key",
			mutate: func(c *Config) {
				c.Market.Provider = ProviderMassive
				c.Market.Underlying = "SPY"
			},
			wantErr: "api_key",
		},
		{
			name: "history without underlying",
			mutate: func(c *Config) {
				c.Market.Provider = ProviderSynthetic
				c.Asset.Vol = 0
			},
			wantErr: "underlying",
		},
		{
			name: "csv without path",
			mutate: func(c *Config) {
				c.Market.Provider = ProviderCSV
			},
			wantErr: "csv_path",
		},
		{
			name: "digital without cash",
			mutate: func(c *Config) {
				c.Instrument.Kind = KindCashOrNothing
			},
			wantErr: "cash",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Defaults()
			tt.mutate(&cfg)
			err := cfg.Validate()
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func TestExampleConfigIsValid(t *testing.T) {
	cfg, err := Load(filepath.Join("..", "..", "configs", "fdprice.toml"))
	require.NoError(t, err)
	require.NoError(t, cfg.Validate())
	assert.Len(t, cfg.StrikeLadder(), 4)
	assert.Equal(t, 4, cfg.Workers)
}
