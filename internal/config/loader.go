package config

import (
	"os"
	"strconv"
	"strings"

	"github.com/BurntSushi/toml"
	"github.com/joho/godotenv"
)

// Load reads a TOML configuration file at path, merges it on top of the
// built-in defaults, applies FDPRICE_* environment variable overrides, and
// returns the final Config. An empty path skips the file and starts from
// Defaults. The returned Config has NOT been validated; the caller should
// invoke Config.Validate() after Load.
func Load(path string) (*Config, error) {
	cfg := Defaults()

	if path != "" {
		if _, err := toml.DecodeFile(path, &cfg); err != nil {
			return nil, err
		}
	}

	// Load .env file if present (silently ignore if missing).
	_ = godotenv.Load()

	applyEnvOverrides(&cfg)

	return &cfg, nil
}

// applyEnvOverrides reads well-known FDPRICE_* environment variables and
// overwrites the corresponding Config fields when a variable is set.
func applyEnvOverrides(cfg *Config) {
	// ── Instrument ──
	setStr(&cfg.Instrument.Kind, "FDPRICE_INSTRUMENT_KIND")
	setStr(&cfg.Instrument.Side, "FDPRICE_INSTRUMENT_SIDE")
	setFloat64(&cfg.Instrument.Strike, "FDPRICE_STRIKE")
	setFloat64Slice(&cfg.Instrument.Strikes, "FDPRICE_STRIKES")
	setFloat64(&cfg.Instrument.Cash, "FDPRICE_CASH")
	setFloat64(&cfg.Instrument.TimeRemaining, "FDPRICE_TIME_REMAINING")

	// ── Asset ──
	setFloat64(&cfg.Asset.Vol, "FDPRICE_VOL")
	setFloat64(&cfg.Asset.Rate, "FDPRICE_RATE")

	// ── Market ──
	setFloat64(&cfg.Market.Spot, "FDPRICE_SPOT")
	setStr(&cfg.Market.Underlying, "FDPRICE_UNDERLYING")
	setStr(&cfg.Market.Provider, "FDPRICE_MARKET_PROVIDER")
	setStr(&cfg.Market.Secondary, "FDPRICE_SECONDARY_PROVIDER")
	setStr(&cfg.Market.APIKey, "FDPRICE_MASSIVE_API_KEY")
	setStr(&cfg.Market.BaseURL, "FDPRICE_MASSIVE_BASE_URL")
	setStr(&cfg.Market.CSVPath, "FDPRICE_CSV_PATH")
	setInt(&cfg.Market.LookbackDays, "FDPRICE_LOOKBACK_DAYS")
	setInt64(&cfg.Market.Seed, "FDPRICE_SEED")

	// ── Grid ──
	setFloat64(&cfg.Grid.DX, "FDPRICE_GRID_DX")
	setFloat64(&cfg.Grid.DT, "FDPRICE_GRID_DT")
	setInt(&cfg.Grid.Minus, "FDPRICE_GRID_MINUS")
	setInt(&cfg.Grid.Plus, "FDPRICE_GRID_PLUS")

	// ── Top-level ──
	setStringSlice(&cfg.Methods, "FDPRICE_METHODS")
	setInt(&cfg.Workers, "FDPRICE_WORKERS")
	setInt(&cfg.Log.Verbosity, "FDPRICE_LOG_VERBOSITY")
	setStr(&cfg.Log.File, "FDPRICE_LOG_FILE")
	setStr(&cfg.Report.Dir, "FDPRICE_REPORT_DIR")
	setStringSlice(&cfg.Report.Formats, "FDPRICE_REPORT_FORMATS")
}

// Typed env-var helpers. Each only mutates the target when the environment
// variable is present and parses.

func setStr(dst *string, key string) {
	if v := os.Getenv(key); v != "" {
		*dst = v
	}
}

func setInt(dst *int, key string) {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			*dst = n
		}
	}
}

func setInt64(dst *int64, key string) {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.ParseInt(v, 10, 64); err == nil {
			*dst = n
		}
	}
}

func setFloat64(dst *float64, key string) {
	if v := os.Getenv(key); v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			*dst = f
		}
	}
}

func setStringSlice(dst *[]string, key string) {
	if v := os.Getenv(key); v != "" {
		if cleaned := splitList(v); len(cleaned) > 0 {
			*dst = cleaned
		}
	}
}

func setFloat64Slice(dst *[]float64, key string) {
	v := os.Getenv(key)
	if v == "" {
		return
	}
	parts := splitList(v)
	out := make([]float64, 0, len(parts))
	for _, p := range parts {
		f, err := strconv.ParseFloat(p, 64)
		if err != nil {
			return
		}
		out = append(out, f)
	}
	if len(out) > 0 {
		*dst = out
	}
}

func splitList(v string) []string {
	parts := strings.Split(v, ",")
	cleaned := make([]string, 0, len(parts))
	for _, p := range parts {
		p = strings.TrimSpace(p)
		if p != "" {
			cleaned = append(cleaned, p)
		}
	}
	return cleaned
}
