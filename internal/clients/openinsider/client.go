// Package openinsider provides a client for the OpenInsider screener
package openinsider

import (
	"context"
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
	"github.com/bobmcallan/scry/internal/reconcile"
)

const (
	DefaultBaseURL   = "http://openinsider.com"
	DefaultTimeout   = 15 * time.Second
	DefaultRateLimit = 30 // requests per minute

	// filingTimeLayout is the timestamp format in the screener's date column
	filingTimeLayout = "2006-01-02 15:04:05"

	// minColumns is the column count a screener row needs before parsing
	minColumns = 13
)

// Client implements the InsiderFeedClient interface against the OpenInsider
// screener. The screener serves HTML only, so responses are parsed from the
// filing table rather than a JSON body.
type Client struct {
	baseURL    string
	userAgent  string
	httpClient *http.Client
	logger     *common.Logger
	limiter    *rate.Limiter
}

var _ interfaces.InsiderFeedClient = (*Client)(nil)

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

// NewClient creates a new OpenInsider client
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

// APIError represents a screener request failure
type APIError struct {
	StatusCode int
	Message    string
	Endpoint   string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("OpenInsider error: %s (status: %d, endpoint: %s)", e.Message, e.StatusCode, e.Endpoint)
}

// GetLatestTrades retrieves the most recent insider filings
func (c *Client) GetLatestTrades(ctx context.Context, opts ...interfaces.FeedOption) ([]models.InsiderTrade, error) {
	params := feedParams(opts)

	doc, err := c.getDocument(ctx, "/latest-insider-trading", nil)
	if err != nil {
		return nil, err
	}

	trades := c.parseFilingTable(doc, params, "")
	c.logger.Info().Int("count", len(trades)).Msg("Fetched latest insider filings")
	return trades, nil
}

// GetTickerTrades retrieves insider filings for a single ticker
func (c *Client) GetTickerTrades(ctx context.Context, ticker string, opts ...interfaces.FeedOption) ([]models.InsiderTrade, error) {
	ticker = strings.ToUpper(strings.TrimSpace(ticker))
	if ticker == "" {
		return nil, fmt.Errorf("ticker is required: %w", models.ErrInvalidInput)
	}
	params := feedParams(opts)

	query := url.Values{}
	query.Set("q", ticker)
	doc, err := c.getDocument(ctx, "/search", query)
	if err != nil {
		return nil, err
	}

	trades := c.parseFilingTable(doc, params, ticker)
	c.logger.Info().Str("ticker", ticker).Int("count", len(trades)).Msg("Fetched insider filings")
	return trades, nil
}

func feedParams(opts []interfaces.FeedOption) interfaces.FeedParams {
	var params interfaces.FeedParams
	for _, opt := range opts {
		opt(&params)
	}
	return params
}

// getDocument performs a rate-limited GET and parses the HTML response
func (c *Client) getDocument(ctx context.Context, path string, query url.Values) (*goquery.Document, error) {
	if err := c.limiter.Wait(ctx); err != nil {
		return nil, fmt.Errorf("rate limit wait: %w", err)
	}

	reqURL := c.baseURL + path
	if len(query) > 0 {
		reqURL += "?" + query.Encode()
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("User-Agent", c.userAgent)

	start := time.Now()
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	c.logger.Debug().
		Str("path", path).
		Int("status", resp.StatusCode).
		Dur("duration", time.Since(start)).
		Msg("OpenInsider request")

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return nil, &APIError{
			StatusCode: resp.StatusCode,
			Message:    strings.TrimSpace(string(body)),
			Endpoint:   path,
		}
	}

	doc, err := goquery.NewDocumentFromReader(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("parse response: %w", err)
	}
	return doc, nil
}

// parseFilingTable extracts trades from the screener's filing table.
// Malformed rows are skipped, never fatal. When tickerOverride is set the
// row's own ticker column is ignored (the search page echoes the query).
func (c *Client) parseFilingTable(doc *goquery.Document, params interfaces.FeedParams, tickerOverride string) []models.InsiderTrade {
	var trades []models.InsiderTrade

	doc.Find("table.tinytable tr").Each(func(i int, row *goquery.Selection) {
		if i == 0 {
			return // header row
		}
		cols := row.Find("td")
		if cols.Length() < minColumns {
			return
		}

		cell := func(idx int) string {
			return strings.TrimSpace(cols.Eq(idx).Text())
		}

		date, err := time.Parse(filingTimeLayout, cell(1))
		if err != nil {
			c.logger.Warn().Str("value", cell(1)).Msg("Invalid filing date, row skipped")
			return
		}
		if !params.Since.IsZero() && date.Before(params.Since) {
			return
		}

		ticker := tickerOverride
		if ticker == "" {
			ticker = strings.ToUpper(cell(3))
		}
		if ticker == "" {
			return
		}

		tradeType := parseTradeType(cell(7))
		if tradeType == "" {
			return
		}
		if params.PurchasesOnly && tradeType != models.TradePurchase {
			return
		}

		amount := reconcile.ParseNumeric(cell(12))
		if amount == nil {
			c.logger.Warn().Str("ticker", ticker).Str("value", cell(12)).Msg("Invalid trade value, row skipped")
			return
		}
		value := *amount
		if tradeType == models.TradeSale {
			value = -value
		}
		if params.MinAmount > 0 && value < params.MinAmount && -value < params.MinAmount {
			return
		}

		trade := models.InsiderTrade{
			Date:         date,
			Ticker:       ticker,
			CompanyName:  cell(4),
			InsiderName:  cell(5),
			InsiderTitle: cell(6),
			TradeType:    tradeType,
			Amount:       value,
		}
		if price := reconcile.ParseNumeric(cell(8)); price != nil {
			trade.Price = *price
		}
		if shares := reconcile.ParseNumeric(cell(9)); shares != nil {
			trade.Shares = *shares
		}

		trades = append(trades, trade)
	})

	if params.Limit > 0 && len(trades) > params.Limit {
		trades = trades[:params.Limit]
	}
	return trades
}

// parseTradeType maps the screener's transaction column to a trade type.
// Unrecognized transaction codes return an empty type and the row is dropped.
func parseTradeType(s string) models.TradeType {
	s = strings.ToLower(s)
	switch {
	case strings.Contains(s, "p - purchase"):
		return models.TradePurchase
	case strings.Contains(s, "s - sale"):
		return models.TradeSale
	case strings.Contains(s, "m - exercise"), strings.Contains(s, "option"):
		return models.TradeOptionExercise
	case strings.Contains(s, "g - gift"):
		return models.TradeGift
	default:
		return ""
	}
}
