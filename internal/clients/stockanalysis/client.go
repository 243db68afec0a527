// Package stockanalysis scrapes the StockAnalysis stock overview page
package stockanalysis

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
	"golang.org/x/time/rate"

	"github.com/bobmcallan/scry/internal/common"
	"github.com/bobmcallan/scry/internal/interfaces"
	"github.com/bobmcallan/scry/internal/models"
)

const (
	DefaultBaseURL   = "https://stockanalysis.com"
	DefaultTimeout   = 20 * time.Second
	DefaultRateLimit = 20 // requests per minute
)

// Client implements MarketDataClient by scraping the stock overview page.
// Unlike the Finviz payload, values here are parsed to numbers before
// encoding; the page mixes currency strings and percentages that would
// otherwise collide with the yfinance-style keys the payload uses.
type Client struct {
	baseURL    string
	userAgent  string
	httpClient *http.Client
	logger     *common.Logger
	limiter    *rate.Limiter
}

var _ interfaces.MarketDataClient = (*Client)(nil)

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

// NewClient creates a new StockAnalysis client
func NewClient(opts ...ClientOption) *Client {
	c := &Client{
		baseURL:   DefaultBaseURL,
		userAgent: "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36",
		httpClient: &http.Client{
			Timeout: DefaultTimeout,
		},
		limiter: rate.NewLimiter(rate.Limit(float64(DefaultRateLimit)/60.0), 1),
		logger:  common.NewSilentLogger(),
	}

	for _, opt := range opts {
		opt(c)
	}

	return c
}

// Provider returns the payload provider key
func (c *Client) Provider() string {
	return models.ProviderStockAnalysis
}

// GetSnapshot scrapes the overview page into a flat numeric payload
func (c *Client) GetSnapshot(ctx context.Context, ticker string) (*models.ProviderPayload, error) {
	ticker = strings.ToUpper(strings.TrimSpace(ticker))
	if ticker == "" {
		return nil, fmt.Errorf("ticker is required: %w", models.ErrInvalidInput)
	}

	if err := c.limiter.Wait(ctx); err != nil {
		return nil, fmt.Errorf("rate limit wait: %w", err)
	}

	reqURL := c.baseURL + "/stocks/" + strings.ToLower(ticker) + "/"
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("User-Agent", c.userAgent)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		io.Copy(io.Discard, io.LimitReader(resp.Body, 512))
		return nil, fmt.Errorf("stockanalysis returned status %d for %s", resp.StatusCode, ticker)
	}

	doc, err := goquery.NewDocumentFromReader(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("parse response: %w", err)
	}

	fields := parseOverviewPage(doc)
	if len(fields) == 0 {
		return nil, fmt.Errorf("no quote data for %s", ticker)
	}

	raw, err := json.Marshal(fields)
	if err != nil {
		return nil, fmt.Errorf("encode snapshot for %s: %w", ticker, err)
	}

	c.logger.Debug().Str("ticker", ticker).Int("fields", len(fields)).Msg("StockAnalysis snapshot fetched")
	return models.NewPayload(models.ProviderStockAnalysis, ticker, raw), nil
}

// metricKeys maps the key-metrics table labels to payload field names.
// Metrics not listed are ignored.
var metricKeys = map[string]string{
	"P/E Ratio":        "trailingPE",
	"Return on Equity": "returnOnEquity",
	"Debt / Equity":    "debtToEquity",
}

// parseOverviewPage extracts the current price, analyst price target, and
// key-metrics table values
func parseOverviewPage(doc *goquery.Document) map[string]float64 {
	fields := map[string]float64{}

	if price, ok := parseDollar(doc.Find("span.quote-price").First().Text()); ok {
		fields["regularMarketPrice"] = price
	}

	// The price target cell holds "$245.00 (12.5% upside)"; only the
	// dollar figure matters.
	doc.Find("td").EachWithBreak(func(_ int, cell *goquery.Selection) bool {
		if strings.TrimSpace(cell.Text()) != "Price Target" {
			return true
		}
		raw := cell.Next().Text()
		if idx := strings.Index(raw, "("); idx >= 0 {
			raw = raw[:idx]
		}
		if target, ok := parseDollar(raw); ok {
			fields["Target Price"] = target
		}
		return false
	})

	doc.Find("table.key-metrics tr").Each(func(_ int, row *goquery.Selection) {
		cells := row.Find("td")
		if cells.Length() < 2 {
			return
		}
		key, ok := metricKeys[strings.TrimSpace(cells.Eq(0).Text())]
		if !ok {
			return
		}
		raw := strings.TrimSpace(cells.Eq(1).Text())
		isPercent := strings.HasSuffix(raw, "%")
		value, err := strconv.ParseFloat(strings.TrimSuffix(raw, "%"), 64)
		if err != nil {
			return
		}
		if isPercent {
			value /= 100
		}
		fields[key] = value
	})

	return fields
}

func parseDollar(raw string) (float64, bool) {
	raw = strings.TrimSpace(strings.ReplaceAll(raw, "$", ""))
	raw = strings.ReplaceAll(raw, ",", "")
	if raw == "" {
		return 0, false
	}
	value, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return 0, false
	}
	return value, true
}
