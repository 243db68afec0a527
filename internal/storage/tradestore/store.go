// Package tradestore persists scored insider trades using BadgerHold.
package tradestore

import (
	"context"
	"fmt"
	"os"
	"sort"
	"time"

	"github.com/timshannon/badgerhold/v4"

	"github.com/bobmcallan/scry/internal/common"
	"github.com/bobmcallan/scry/internal/interfaces"
	"github.com/bobmcallan/scry/internal/models"
)

var _ interfaces.TradeStore = (*Store)(nil)

// Store implements interfaces.TradeStore using BadgerHold.
type Store struct {
	db     *badgerhold.Store
	logger *common.Logger
}

// NewStore opens (or creates) the trade database at path.
func NewStore(logger *common.Logger, path string) (*Store, error) {
	if err := os.MkdirAll(path, 0755); err != nil {
		return nil, fmt.Errorf("failed to create trade db path %s: %w", path, err)
	}
	opts := badgerhold.DefaultOptions
	opts.Dir = path
	opts.ValueDir = path
	opts.Logger = nil
	db, err := badgerhold.Open(opts)
	if err != nil {
		return nil, fmt.Errorf("failed to open trade db at %s: %w", path, err)
	}
	logger.Info().Str("path", path).Msg("Trade store opened")
	return &Store{db: db, logger: logger}, nil
}

func (s *Store) SaveTrade(_ context.Context, trade *models.ScoredTrade) error {
	if trade == nil || trade.ID == "" {
		return fmt.Errorf("scored trade requires an ID: %w", models.ErrInvalidInput)
	}
	if err := s.db.Upsert(trade.ID, trade); err != nil {
		return fmt.Errorf("failed to save scored trade '%s': %w", trade.ID, err)
	}
	s.logger.Debug().Str("id", trade.ID).Str("ticker", trade.Trade.Ticker).Msg("Scored trade saved")
	return nil
}

func (s *Store) GetTrade(_ context.Context, id string) (*models.ScoredTrade, error) {
	var trade models.ScoredTrade
	if err := s.db.Get(id, &trade); err != nil {
		if err == badgerhold.ErrNotFound {
			return nil, fmt.Errorf("scored trade '%s' not found", id)
		}
		return nil, fmt.Errorf("failed to get scored trade '%s': %w", id, err)
	}
	return &trade, nil
}

func (s *Store) ListTrades(_ context.Context, opts interfaces.TradeListOptions) ([]*models.ScoredTrade, error) {
	var trades []*models.ScoredTrade
	if err := s.db.Find(&trades, nil); err != nil {
		return nil, fmt.Errorf("failed to list scored trades: %w", err)
	}

	filtered := trades[:0]
	for _, t := range trades {
		if opts.Ticker != "" && t.Trade.Ticker != opts.Ticker {
			continue
		}
		if opts.Recommendation != nil && t.Recommendation != *opts.Recommendation {
			continue
		}
		if t.CompositeScore < opts.MinScore {
			continue
		}
		filtered = append(filtered, t)
	}

	sort.Slice(filtered, func(i, j int) bool {
		return filtered[i].AnalyzedAt.After(filtered[j].AnalyzedAt)
	})
	if opts.Limit > 0 && len(filtered) > opts.Limit {
		filtered = filtered[:opts.Limit]
	}
	return filtered, nil
}

func (s *Store) GetTickerTrades(ctx context.Context, ticker string) ([]*models.ScoredTrade, error) {
	return s.ListTrades(ctx, interfaces.TradeListOptions{Ticker: ticker})
}

func (s *Store) DeleteTrade(_ context.Context, id string) error {
	if err := s.db.Delete(id, models.ScoredTrade{}); err != nil && err != badgerhold.ErrNotFound {
		return fmt.Errorf("failed to delete scored trade '%s': %w", id, err)
	}
	return nil
}

func (s *Store) PurgeOlderThan(_ context.Context, cutoff time.Time) (int, error) {
	var stale []*models.ScoredTrade
	if err := s.db.Find(&stale, badgerhold.Where("AnalyzedAt").Lt(cutoff)); err != nil {
		return 0, fmt.Errorf("failed to find stale trades: %w", err)
	}
	deleted := 0
	for _, t := range stale {
		if err := s.db.Delete(t.ID, models.ScoredTrade{}); err != nil {
			s.logger.Warn().Err(err).Str("id", t.ID).Msg("Failed to purge scored trade")
			continue
		}
		deleted++
	}
	if deleted > 0 {
		s.logger.Info().Int("count", deleted).Time("cutoff", cutoff).Msg("Purged stale scored trades")
	}
	return deleted, nil
}

func (s *Store) Close() error {
	return s.db.Close()
}
