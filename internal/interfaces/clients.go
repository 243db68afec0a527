// Package interfaces defines service contracts for Scry
package interfaces

import (
	"context"
	"time"

	"github.com/bobmcallan/scry/internal/models"
)

// InsiderFeedClient provides access to the OpenInsider screener feed
type InsiderFeedClient interface {
	// GetLatestTrades retrieves the most recent insider filings
	GetLatestTrades(ctx context.Context, opts ...FeedOption) ([]models.InsiderTrade, error)

	// GetTickerTrades retrieves insider filings for a single ticker
	GetTickerTrades(ctx context.Context, ticker string, opts ...FeedOption) ([]models.InsiderTrade, error)
}

// FeedOption configures insider feed requests
type FeedOption func(*FeedParams)

// FeedParams holds insider feed query parameters
type FeedParams struct {
	MinAmount     float64 // Minimum absolute trade value in dollars
	Limit         int     // Max filings to return
	PurchasesOnly bool    // Drop sales and other transaction types
	Since         time.Time
}

// WithMinAmount sets the minimum trade value filter
func WithMinAmount(amount float64) FeedOption {
	return func(p *FeedParams) {
		p.MinAmount = amount
	}
}

// WithFeedLimit sets the max number of filings returned
func WithFeedLimit(limit int) FeedOption {
	return func(p *FeedParams) {
		p.Limit = limit
	}
}

// WithPurchasesOnly restricts the feed to open-market purchases
func WithPurchasesOnly() FeedOption {
	return func(p *FeedParams) {
		p.PurchasesOnly = true
	}
}

// WithSince drops filings older than the given time
func WithSince(since time.Time) FeedOption {
	return func(p *FeedParams) {
		p.Since = since
	}
}

// MarketDataClient fetches raw provider snapshots and price history for a
// ticker. Implementations report which provider they speak for; the raw
// payload keeps the provider's own field names so the normalizer can apply
// its per-source priority rules.
type MarketDataClient interface {
	// Provider returns the provider name key the payload is stored under
	Provider() string

	// GetSnapshot retrieves the provider's current data payload for a ticker
	GetSnapshot(ctx context.Context, ticker string) (*models.ProviderPayload, error)
}

// HistoryClient retrieves daily OHLCV history. Bars are returned in
// chronological order, oldest first.
type HistoryClient interface {
	// GetHistory retrieves daily bars for a ticker
	GetHistory(ctx context.Context, ticker string, opts ...HistoryOption) ([]models.OHLCVBar, error)
}

// HistoryOption configures history requests
type HistoryOption func(*HistoryParams)

// HistoryParams holds history query parameters
type HistoryParams struct {
	From time.Time
	To   time.Time
	Days int // Trailing window when From is zero
}

// WithHistoryRange sets an explicit date range
func WithHistoryRange(from, to time.Time) HistoryOption {
	return func(p *HistoryParams) {
		p.From = from
		p.To = to
	}
}

// WithHistoryDays sets a trailing window in calendar days
func WithHistoryDays(days int) HistoryOption {
	return func(p *HistoryParams) {
		p.Days = days
	}
}
