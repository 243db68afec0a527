// Package scan drives the periodic insider feed scan: fetch the latest
// filings, score them, persist the results.
package scan

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/robfig/cron/v3"

	"github.com/bobmcallan/scry/internal/common"
	"github.com/bobmcallan/scry/internal/interfaces"
	"github.com/bobmcallan/scry/internal/models"
)

// Service implements ScanService
type Service struct {
	feed      interfaces.InsiderFeedClient
	analyzer  interfaces.AnalyzerService
	store     interfaces.TradeStore
	config    common.ScanConfig
	retention time.Duration
	logger    *common.Logger

	mu   sync.Mutex
	cron *cron.Cron
}

var _ interfaces.ScanService = (*Service)(nil)

// Option configures the scan service
type Option func(*Service)

// WithRetention sets the scored-trade retention window. After each scan,
// trades analyzed longer ago than this are purged. Zero keeps everything.
func WithRetention(age time.Duration) Option {
	return func(s *Service) {
		s.retention = age
	}
}

// NewService creates a scan service
func NewService(feed interfaces.InsiderFeedClient, analyzer interfaces.AnalyzerService, store interfaces.TradeStore, config common.ScanConfig, logger *common.Logger, opts ...Option) *Service {
	s := &Service{
		feed:     feed,
		analyzer: analyzer,
		store:    store,
		config:   config,
		logger:   logger,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// RunScan fetches the latest filings, scores them, and persists results
func (s *Service) RunScan(ctx context.Context) ([]*models.ScoredTrade, error) {
	start := time.Now()

	opts := []interfaces.FeedOption{}
	if s.config.MinTrade > 0 {
		opts = append(opts, interfaces.WithMinAmount(s.config.MinTrade))
	}

	trades, err := s.feed.GetLatestTrades(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("fetch insider feed: %w", err)
	}
	trades = s.filterWatchlist(trades)

	scored, err := s.analyzer.AnalyzeTrades(ctx, trades)
	if err != nil {
		return scored, fmt.Errorf("analyze filings: %w", err)
	}

	saved := 0
	for _, t := range scored {
		if err := s.store.SaveTrade(ctx, t); err != nil {
			s.logger.Warn().Str("ticker", t.Trade.Ticker).Err(err).Msg("Failed to save scored trade")
			continue
		}
		saved++
	}

	if s.retention > 0 {
		cutoff := time.Now().Add(-s.retention)
		purged, err := s.store.PurgeOlderThan(ctx, cutoff)
		if err != nil {
			s.logger.Warn().Err(err).Msg("Retention purge failed")
		} else if purged > 0 {
			s.logger.Info().Int("purged", purged).Time("cutoff", cutoff).Msg("Old scored trades purged")
		}
	}

	s.logger.Info().
		Int("filings", len(trades)).
		Int("scored", len(scored)).
		Int("saved", saved).
		Dur("elapsed", time.Since(start)).
		Msg("Insider scan complete")

	return scored, nil
}

// Start begins the scheduled scan loop. A no-op when scanning is disabled
// in configuration.
func (s *Service) Start(_ context.Context) error {
	if !s.config.Enabled {
		s.logger.Info().Msg("Insider scan disabled")
		return nil
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.cron != nil {
		return nil
	}

	c := cron.New()
	_, err := c.AddFunc(s.config.Schedule, func() {
		if _, err := s.RunScan(context.Background()); err != nil {
			s.logger.Error().Err(err).Msg("Scheduled scan failed")
		}
	})
	if err != nil {
		return fmt.Errorf("register scan schedule %q: %w", s.config.Schedule, err)
	}

	c.Start()
	s.cron = c
	s.logger.Info().Str("schedule", s.config.Schedule).Msg("Insider scan scheduled")
	return nil
}

// Stop halts the scheduled scan loop, waiting for a running scan to finish
func (s *Service) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.cron == nil {
		return
	}
	<-s.cron.Stop().Done()
	s.cron = nil
	s.logger.Info().Msg("Insider scan stopped")
}

// filterWatchlist drops filings outside the configured ticker list; an
// empty list keeps everything
func (s *Service) filterWatchlist(trades []models.InsiderTrade) []models.InsiderTrade {
	if len(s.config.Tickers) == 0 {
		return trades
	}

	allowed := make(map[string]bool, len(s.config.Tickers))
	for _, t := range s.config.Tickers {
		allowed[strings.ToUpper(strings.TrimSpace(t))] = true
	}

	kept := trades[:0]
	for _, t := range trades {
		if allowed[strings.ToUpper(t.Ticker)] {
			kept = append(kept, t)
		}
	}
	return kept
}
