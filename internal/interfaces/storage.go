// Package interfaces defines service contracts for Scry
package interfaces

import (
	"context"
	"time"

	"github.com/bobmcallan/scry/internal/models"
)

// TradeStore persists scored trades
type TradeStore interface {
	// SaveTrade persists a scored trade, replacing any existing record
	SaveTrade(ctx context.Context, trade *models.ScoredTrade) error

	// GetTrade retrieves a scored trade by ID
	GetTrade(ctx context.Context, id string) (*models.ScoredTrade, error)

	// ListTrades returns scored trades matching the filter, newest first
	ListTrades(ctx context.Context, opts TradeListOptions) ([]*models.ScoredTrade, error)

	// GetTickerTrades returns scored trades for a ticker, newest first
	GetTickerTrades(ctx context.Context, ticker string) ([]*models.ScoredTrade, error)

	// DeleteTrade removes a scored trade
	DeleteTrade(ctx context.Context, id string) error

	// PurgeOlderThan removes scored trades analyzed before the cutoff.
	// Returns the count of deleted records.
	PurgeOlderThan(ctx context.Context, cutoff time.Time) (int, error)

	Close() error
}

// TradeListOptions configures filtering for trade queries
type TradeListOptions struct {
	Ticker         string
	Recommendation *models.Recommendation
	MinScore       float64
	Limit          int
}

// PayloadCache caches raw provider payloads and price history with a TTL so
// repeated scoring runs within the freshness window skip the network.
type PayloadCache interface {
	// GetPayload returns a cached payload, or nil when absent or stale
	GetPayload(ctx context.Context, provider, ticker string) (*models.ProviderPayload, error)

	// SavePayload stores a payload with the cache's TTL
	SavePayload(ctx context.Context, payload *models.ProviderPayload) error

	// GetHistory returns cached daily bars, or nil when absent or stale
	GetHistory(ctx context.Context, ticker string) ([]models.OHLCVBar, error)

	// SaveHistory stores a ticker's daily bars with the cache's TTL
	SaveHistory(ctx context.Context, ticker string, bars []models.OHLCVBar) error
}
