package data

// Massive-backed Provider. Daily aggregates come from the REST endpoint
// /v2/aggs/ticker/{ticker}/range/1/day/{from}/{to}; long ranges are paged
// through next_url. Per-minute rate limiting (429) is retried by the client.

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/go-resty/resty/v2"

	"github.com/contactkeval/option-fd/internal/logger"
)

const (
	massiveBaseURL     = "https://api.massive.com"
	massiveBarsPath    = "/v2/aggs/ticker/{ticker}/range/1/day/{from}/{to}"
	massiveMaxLimit    = 50000
	massiveMaxPages    = 100
	massiveRetryCount  = 3
	massiveRetryWait   = 5 * time.Second
	massiveRetryMaxGap = time.Minute
)

// massiveDataProvider implements the Provider interface using Massive APIs.
type massiveDataProvider struct {
	// Client carries base URL, auth and retry policy.
	Client *resty.Client

	// secondary is an optional fallback provider.
	secondary Provider
}

// massiveBarsResp models one page of the aggregates response.
type massiveBarsResp struct {
	Ticker   string `json:"ticker"`
	Adjusted bool   `json:"adjusted"`
	Results  []struct {
		Open      float64 `json:"o"`
		Close     float64 `json:"c"`
		High      float64 `json:"h"`
		Low       float64 `json:"l"`
		VWAP      float64 `json:"vw"`
		Volume    float64 `json:"v"`
		Trades    int64   `json:"n"`
		Timestamp int64   `json:"t"` // epoch millis
	} `json:"results"`
	Status  string `json:"status"`
	NextURL string `json:"next_url"`
}

// NewMassiveDataProvider constructs a Massive-backed data provider.
//
// Parameters:
//   - apiKey: Massive API key, sent as a bearer token
//
// Returns:
//   - *massiveDataProvider: initialized provider instance
func NewMassiveDataProvider(apiKey string) *massiveDataProvider {
	logger.Infof("initializing Massive data provider")

	client := resty.New().
		SetBaseURL(massiveBaseURL).
		SetAuthToken(apiKey).
		SetHeader("Accept", "application/json").
		SetTimeout(60 * time.Second).
		SetRetryCount(massiveRetryCount).
		SetRetryWaitTime(massiveRetryWait).
		SetRetryMaxWaitTime(massiveRetryMaxGap).
		AddRetryCondition(func(r *resty.Response, err error) bool {
			if r != nil && r.StatusCode() == http.StatusTooManyRequests {
				logger.Infof("rate limit hit, retrying %s", r.Request.URL)
				return true
			}
			return false
		})

	return &massiveDataProvider{Client: client}
}

// SetBaseURL points the provider at another host, e.g. a test server.
func (massiveDataProv *massiveDataProvider) SetBaseURL(baseURL string) {
	massiveDataProv.Client.SetBaseURL(baseURL)
}

// Secondary returns the configured secondary Provider, if any.
func (massiveDataProv *massiveDataProvider) Secondary() Provider {
	return massiveDataProv.secondary
}

// GetBars retrieves daily OHLCV bars for the given symbol and date range,
// following next_url until the last page.
//
// Parameters:
//   - ctx: cancels in-flight requests
//   - underlying: ticker symbol
//   - fromDate, toDate: inclusive date range
//
// Returns:
//   - []Bar: bars in ascending date order
//   - error: transport failure or non-2xx status
func (massiveDataProv *massiveDataProvider) GetBars(
	ctx context.Context,
	underlying string,
	fromDate, toDate time.Time,
) ([]Bar, error) {

	logger.Debugf(
		"fetching bars: %s from=%s to=%s",
		underlying,
		fromDate.Format("2006-01-02"),
		toDate.Format("2006-01-02"),
	)

	req := massiveDataProv.Client.R().
		SetContext(ctx).
		SetPathParams(map[string]string{
			"ticker": underlying,
			"from":   fromDate.Format("2006-01-02"),
			"to":     toDate.Format("2006-01-02"),
		}).
		SetQueryParams(map[string]string{
			"adjusted": "true",
			"sort":     "asc",
			"limit":    fmt.Sprint(massiveMaxLimit),
		})

	var out []Bar
	next := massiveBarsPath
	for page := 0; next != ""; page++ {
		if page == massiveMaxPages {
			return nil, fmt.Errorf("massive bars: more than %d pages for %s", massiveMaxPages, underlying)
		}

		var body massiveBarsResp
		resp, err := req.SetResult(&body).Get(next)
		if err != nil {
			logger.Errorf("bars request errored=%v", err)
			return nil, fmt.Errorf("massive api request failed: %w", err)
		}
		if resp.IsError() {
			return nil, fmt.Errorf("massive daily bars status=%d body=%s", resp.StatusCode(), resp.String())
		}

		logger.Tracef("bars page %d: %d records", page, len(body.Results))
		for _, r := range body.Results {
			out = append(out, Bar{
				Date:  time.UnixMilli(r.Timestamp).UTC(),
				Open:  r.Open,
				High:  r.High,
				Low:   r.Low,
				Close: r.Close,
				Vol:   r.Volume,
			})
		}

		// next_url is absolute and already carries the query; only auth is re-sent.
		next = body.NextURL
		req = massiveDataProv.Client.R().SetContext(ctx)
	}

	return out, nil
}
