package tradestore

import (
	"context"
	"fmt"
	"time"

	"github.com/timshannon/badgerhold/v4"

	"github.com/bobmcallan/scry/internal/interfaces"
	"github.com/bobmcallan/scry/internal/models"
)

// cacheSep joins provider and ticker into a composite key. A null byte
// cannot appear in either part, so the mapping is unambiguous.
const cacheSep = "\x00"

// cachedPayload wraps a provider payload for storage
type cachedPayload struct {
	Key     string `badgerhold:"key"`
	Payload models.ProviderPayload
	SavedAt time.Time
}

// cachedHistory wraps a ticker's daily bars for storage
type cachedHistory struct {
	Ticker  string `badgerhold:"key"`
	Bars    []models.OHLCVBar
	SavedAt time.Time
}

// Cache implements interfaces.PayloadCache on top of the trade store's
// database. Entries past the TTL read as absent; they are overwritten on
// the next save rather than evicted.
type Cache struct {
	store *Store
	ttl   time.Duration
}

var _ interfaces.PayloadCache = (*Cache)(nil)

// NewCache creates a payload cache sharing the trade store's database
func NewCache(store *Store, ttl time.Duration) *Cache {
	return &Cache{store: store, ttl: ttl}
}

func (c *Cache) GetPayload(_ context.Context, provider, ticker string) (*models.ProviderPayload, error) {
	var entry cachedPayload
	err := c.store.db.Get(provider+cacheSep+ticker, &entry)
	if err == badgerhold.ErrNotFound {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get cached payload %s/%s: %w", provider, ticker, err)
	}
	if time.Since(entry.SavedAt) > c.ttl {
		return nil, nil
	}
	return &entry.Payload, nil
}

func (c *Cache) SavePayload(_ context.Context, payload *models.ProviderPayload) error {
	if payload == nil || payload.Provider == "" || payload.Ticker == "" {
		return fmt.Errorf("payload requires provider and ticker: %w", models.ErrInvalidInput)
	}
	entry := cachedPayload{
		Key:     payload.Provider + cacheSep + payload.Ticker,
		Payload: *payload,
		SavedAt: time.Now(),
	}
	if err := c.store.db.Upsert(entry.Key, &entry); err != nil {
		return fmt.Errorf("failed to cache payload %s/%s: %w", payload.Provider, payload.Ticker, err)
	}
	return nil
}

func (c *Cache) GetHistory(_ context.Context, ticker string) ([]models.OHLCVBar, error) {
	var entry cachedHistory
	err := c.store.db.Get(ticker, &entry)
	if err == badgerhold.ErrNotFound {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get cached history for %s: %w", ticker, err)
	}
	if time.Since(entry.SavedAt) > c.ttl {
		return nil, nil
	}
	return entry.Bars, nil
}

func (c *Cache) SaveHistory(_ context.Context, ticker string, bars []models.OHLCVBar) error {
	if ticker == "" {
		return fmt.Errorf("history requires a ticker: %w", models.ErrInvalidInput)
	}
	entry := cachedHistory{Ticker: ticker, Bars: bars, SavedAt: time.Now()}
	if err := c.store.db.Upsert(ticker, &entry); err != nil {
		return fmt.Errorf("failed to cache history for %s: %w", ticker, err)
	}
	return nil
}
