// Package finviz scrapes the Finviz quote snapshot table
package finviz

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
	"golang.org/x/time/rate"

	"github.com/bobmcallan/scry/internal/common"
	"github.com/bobmcallan/scry/internal/interfaces"
	"github.com/bobmcallan/scry/internal/models"
)

const (
	DefaultBaseURL   = "https://finviz.com"
	DefaultTimeout   = 15 * time.Second
	DefaultRateLimit = 30 // requests per minute
)

// Client implements MarketDataClient by scraping the Finviz snapshot table.
// The payload keeps the page's own labels ("P/E", "Market Cap", "Dividend %")
// as field names, with values as the page shows them; parsing happens in the
// normalizer.
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

// NewClient creates a new Finviz client
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
	return models.ProviderFinviz
}

// GetSnapshot scrapes the quote page's snapshot table into a flat payload
func (c *Client) GetSnapshot(ctx context.Context, ticker string) (*models.ProviderPayload, error) {
	ticker = strings.ToUpper(strings.TrimSpace(ticker))
	if ticker == "" {
		return nil, fmt.Errorf("ticker is required: %w", models.ErrInvalidInput)
	}

	if err := c.limiter.Wait(ctx); err != nil {
		return nil, fmt.Errorf("rate limit wait: %w", err)
	}

	reqURL := c.baseURL + "/quote.ashx?t=" + url.QueryEscape(ticker)
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
		return nil, fmt.Errorf("finviz returned status %d for %s", resp.StatusCode, ticker)
	}

	doc, err := goquery.NewDocumentFromReader(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("parse response: %w", err)
	}

	fields := parseSnapshotTable(doc)
	if len(fields) == 0 {
		return nil, fmt.Errorf("no snapshot table for %s", ticker)
	}

	raw, err := json.Marshal(fields)
	if err != nil {
		return nil, fmt.Errorf("encode snapshot for %s: %w", ticker, err)
	}

	c.logger.Debug().Str("ticker", ticker).Int("fields", len(fields)).Msg("Finviz snapshot fetched")
	return models.NewPayload(models.ProviderFinviz, ticker, raw), nil
}

// parseSnapshotTable reads the label/value cell pairs of the snapshot
// table. Dashes mean no value and are dropped.
func parseSnapshotTable(doc *goquery.Document) map[string]string {
	fields := map[string]string{}

	doc.Find("table.snapshot-table2 tr").Each(func(_ int, row *goquery.Selection) {
		cells := row.Find("td")
		for i := 0; i+1 < cells.Length(); i += 2 {
			label := strings.TrimSpace(cells.Eq(i).Text())
			value := strings.TrimSpace(cells.Eq(i + 1).Text())
			if label == "" || value == "" || value == "-" {
				continue
			}
			fields[label] = value
		}
	})

	return fields
}
