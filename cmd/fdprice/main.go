package main

import (
	"context"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/contactkeval/option-fd/internal/config"
	"github.com/contactkeval/option-fd/internal/data"
	"github.com/contactkeval/option-fd/internal/engine"
	fd "github.com/contactkeval/option-fd/internal/finitediff"
	"github.com/contactkeval/option-fd/internal/logger"
	"github.com/contactkeval/option-fd/internal/pricing"
	"github.com/contactkeval/option-fd/internal/report"
)

func main() {
	configPath := flag.String("config", "", "path to TOML config (defaults are used when empty)")
	spot := flag.Float64("spot", 0, "override market spot")
	method := flag.String("method", "", "explicit, implicit or all (overrides config)")
	verbosity := flag.Int("v", -1, "log verbosity 0=error 1=warn 2=info 3=debug 4=trace (overrides config)")
	rest := flag.Bool("rest", false, "run as REST server (price on request)")
	port := flag.String("port", ":8080", "REST server listen address")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "reading config: %v\n", err)
		os.Exit(1)
	}
	if *spot > 0 {
		cfg.Market.Spot = *spot
	}
	if *method != "" {
		if strings.EqualFold(*method, "all") {
			cfg.Methods = []string{"explicit", "implicit"}
		} else {
			cfg.Methods = []string{*method}
		}
	}
	if *verbosity >= 0 {
		cfg.Log.Verbosity = *verbosity
	}

	logger.Init(cfg.Log)
	defer logger.Sync()

	if err := cfg.Validate(); err != nil {
		logger.Errorf("invalid config: %v", err)
		os.Exit(1)
	}

	prov, err := engine.NewProvider(cfg)
	if err != nil {
		logger.Errorf("market data provider: %v", err)
		os.Exit(1)
	}
	eng := engine.NewEngine(cfg, prov)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if *rest {
		serve(ctx, eng, *port)
		return
	}

	res, err := eng.Run(ctx)
	if err != nil {
		logger.Errorf("pricing failed: %v", err)
		os.Exit(1)
	}
	if err := report.WriteTable(os.Stdout, res); err != nil {
		logger.Errorf("writing table: %v", err)
	}
	if cfg.Report.Dir != "" {
		if err := report.Write(res, cfg.Report.Dir, cfg.Report.Formats); err != nil {
			logger.Errorf("writing report: %v", err)
			os.Exit(1)
		}
		logger.Infof("wrote %d quotes to %s", len(res.Quotes), cfg.Report.Dir)
	}
}

func serve(ctx context.Context, eng *engine.Engine, addr string) {
	mux := newMux(eng)

	srv := &http.Server{Addr: addr, Handler: mux, ReadHeaderTimeout: 10 * time.Second}
	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = srv.Shutdown(shutdownCtx)
	}()

	logger.Infof("starting REST server on %s", addr)
	if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		logger.Errorf("server: %v", err)
		os.Exit(1)
	}
}

func newMux(eng *engine.Engine) *http.ServeMux {
	mux := http.NewServeMux()
	mux.HandleFunc("/price", func(w http.ResponseWriter, r *http.Request) {
		logger.Infof("received /price request")
		res, err := eng.Run(r.Context())
		if err != nil {
			code := statusFor(err)
			if code >= http.StatusInternalServerError {
				logger.Errorf("/price: %v", err)
			}
			http.Error(w, err.Error(), code)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(report.Summarize(res))
	})
	mux.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})
	return mux
}

// statusFor maps pricing failures to an HTTP status. Bad inputs and grids
// are the caller's to fix; missing market data is an upstream failure.
func statusFor(err error) int {
	switch {
	case errors.Is(err, fd.ErrSpotOutOfGrid),
		errors.Is(err, fd.ErrInvalidInput),
		errors.Is(err, fd.ErrInvalidParams),
		errors.Is(err, pricing.ErrInvalidAsset),
		errors.Is(err, pricing.ErrInvalidInstrument):
		return http.StatusBadRequest
	case errors.Is(err, data.ErrNoBars):
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}
