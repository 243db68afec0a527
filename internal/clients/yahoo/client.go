// Package yahoo provides a client for the Yahoo Finance quote API
package yahoo

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/tidwall/gjson"
	"golang.org/x/time/rate"

	"github.com/bobmcallan/scry/internal/common"
	"github.com/bobmcallan/scry/internal/interfaces"
	"github.com/bobmcallan/scry/internal/models"
)

const (
	DefaultBaseURL   = "https://query1.finance.yahoo.com"
	DefaultTimeout   = 15 * time.Second
	DefaultRateLimit = 60 // requests per minute
)

// quoteModules are the quoteSummary modules flattened into the snapshot
const quoteModules = "summaryDetail,financialData,defaultKeyStatistics,assetProfile,price"

// Client implements MarketDataClient and HistoryClient against Yahoo
// Finance. Snapshot payloads are flattened to one level so field names match
// the summary keys the normalizer expects (trailingPE, returnOnEquity, ...).
type Client struct {
	baseURL    string
	httpClient *http.Client
	logger     *common.Logger
	limiter    *rate.Limiter
}

var (
	_ interfaces.MarketDataClient = (*Client)(nil)
	_ interfaces.HistoryClient    = (*Client)(nil)
)

// ClientOption configures the client
type ClientOption func(*Client)

// WithBaseURL sets the base URL
func WithBaseURL(baseURL string) ClientOption {
	return func(c *Client) {
		c.baseURL = strings.TrimRight(baseURL, "/")
	}
}

// WithLogger sets the logger
func WithLogger(logger *common.Logger) ClientOption {
	return func(c *Client) {
		c.logger = logger
	}
}

// WithRateLimit sets the rate limit in requests per minute
func WithRateLimit(requestsPerMinute int) ClientOption {
	return func(c *Client) {
		c.limiter = rate.NewLimiter(rate.Limit(float64(requestsPerMinute)/60.0), 1)
	}
}

// WithTimeout sets the HTTP timeout
func WithTimeout(timeout time.Duration) ClientOption {
	return func(c *Client) {
		c.httpClient.Timeout = timeout
	}
}

// NewClient creates a new Yahoo Finance client
func NewClient(opts ...ClientOption) *Client {
	c := &Client{
		baseURL: DefaultBaseURL,
		httpClient: &http.Client{
			Timeout: DefaultTimeout,
		},
		limiter: rate.NewLimiter(rate.Limit(float64(DefaultRateLimit)/60.0), 2),
		logger:  common.NewSilentLogger(),
	}

	for _, opt := range opts {
		opt(c)
	}

	return c
}

// APIError represents an API error
type APIError struct {
	StatusCode int
	Message    string
	Endpoint   string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("Yahoo API error: %s (status: %d, endpoint: %s)", e.Message, e.StatusCode, e.Endpoint)
}

// Provider returns the payload provider key
func (c *Client) Provider() string {
	return models.ProviderYahoo
}

// GetSnapshot retrieves the quote summary and flattens it into one payload
func (c *Client) GetSnapshot(ctx context.Context, ticker string) (*models.ProviderPayload, error) {
	ticker = strings.ToUpper(strings.TrimSpace(ticker))
	if ticker == "" {
		return nil, fmt.Errorf("ticker is required: %w", models.ErrInvalidInput)
	}

	params := url.Values{}
	params.Set("modules", quoteModules)
	body, err := c.get(ctx, "/v10/finance/quoteSummary/"+url.PathEscape(ticker), params)
	if err != nil {
		return nil, err
	}

	result := gjson.GetBytes(body, "quoteSummary.result.0")
	if !result.Exists() {
		return nil, fmt.Errorf("no quote summary for %s", ticker)
	}

	flat := flattenModules(result)
	raw, err := json.Marshal(flat)
	if err != nil {
		return nil, fmt.Errorf("encode snapshot for %s: %w", ticker, err)
	}

	c.logger.Debug().Str("ticker", ticker).Int("fields", len(flat)).Msg("Yahoo snapshot fetched")
	return models.NewPayload(models.ProviderYahoo, ticker, raw), nil
}

// GetHistory retrieves daily bars, oldest first
func (c *Client) GetHistory(ctx context.Context, ticker string, opts ...interfaces.HistoryOption) ([]models.OHLCVBar, error) {
	ticker = strings.ToUpper(strings.TrimSpace(ticker))
	if ticker == "" {
		return nil, fmt.Errorf("ticker is required: %w", models.ErrInvalidInput)
	}

	var hp interfaces.HistoryParams
	for _, opt := range opts {
		opt(&hp)
	}

	params := url.Values{}
	params.Set("interval", "1d")
	switch {
	case !hp.From.IsZero():
		to := hp.To
		if to.IsZero() {
			to = time.Now()
		}
		params.Set("period1", fmt.Sprintf("%d", hp.From.Unix()))
		params.Set("period2", fmt.Sprintf("%d", to.Unix()))
	case hp.Days > 0:
		params.Set("range", fmt.Sprintf("%dd", hp.Days))
	default:
		params.Set("range", "1y")
	}

	body, err := c.get(ctx, "/v8/finance/chart/"+url.PathEscape(ticker), params)
	if err != nil {
		return nil, err
	}

	result := gjson.GetBytes(body, "chart.result.0")
	if !result.Exists() {
		return nil, fmt.Errorf("no chart data for %s", ticker)
	}

	timestamps := result.Get("timestamp").Array()
	quote := result.Get("indicators.quote.0")
	opens := quote.Get("open").Array()
	highs := quote.Get("high").Array()
	lows := quote.Get("low").Array()
	closes := quote.Get("close").Array()
	volumes := quote.Get("volume").Array()

	bars := make([]models.OHLCVBar, 0, len(timestamps))
	for i, ts := range timestamps {
		if i >= len(closes) || closes[i].Type == gjson.Null {
			continue // market holiday rows carry nulls
		}
		bar := models.OHLCVBar{
			Date:  time.Unix(ts.Int(), 0).UTC(),
			Close: closes[i].Float(),
		}
		if i < len(opens) {
			bar.Open = opens[i].Float()
		}
		if i < len(highs) {
			bar.High = highs[i].Float()
		}
		if i < len(lows) {
			bar.Low = lows[i].Float()
		}
		if i < len(volumes) {
			bar.Volume = volumes[i].Int()
		}
		bars = append(bars, bar)
	}

	c.logger.Debug().Str("ticker", ticker).Int("bars", len(bars)).Msg("Yahoo history fetched")
	return bars, nil
}

// get performs a rate-limited GET request
func (c *Client) get(ctx context.Context, path string, params url.Values) ([]byte, error) {
	if err := c.limiter.Wait(ctx); err != nil {
		return nil, fmt.Errorf("rate limit wait: %w", err)
	}

	reqURL := c.baseURL + path
	if len(params) > 0 {
		reqURL += "?" + params.Encode()
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("User-Agent", "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read response: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		return nil, &APIError{
			StatusCode: resp.StatusCode,
			Message:    http.StatusText(resp.StatusCode),
			Endpoint:   path,
		}
	}
	return body, nil
}

// flattenModules merges the quoteSummary modules into one flat map. Numeric
// fields arrive wrapped as {"raw": n, "fmt": "..."}; the raw value wins.
// Nested objects and arrays that are not wrappers are dropped.
func flattenModules(result gjson.Result) map[string]any {
	flat := map[string]any{}

	result.ForEach(func(_, module gjson.Result) bool {
		if !module.IsObject() {
			return true
		}
		module.ForEach(func(key, value gjson.Result) bool {
			name := key.String()
			switch {
			case value.IsObject():
				if raw := value.Get("raw"); raw.Exists() {
					flat[name] = raw.Value()
				}
			case value.IsArray():
				// skip
			default:
				if value.Type != gjson.Null {
					flat[name] = value.Value()
				}
			}
			return true
		})
		return true
	})

	return flat
}
