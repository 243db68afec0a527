// Package analyzer runs the end-to-end scoring pipeline for insider trades
package analyzer

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/bobmcallan/scry/internal/common"
	"github.com/bobmcallan/scry/internal/fundamentals"
	"github.com/bobmcallan/scry/internal/interfaces"
	"github.com/bobmcallan/scry/internal/models"
	"github.com/bobmcallan/scry/internal/reconcile"
	"github.com/bobmcallan/scry/internal/scoring"
	"github.com/bobmcallan/scry/internal/sentiment"
	"github.com/bobmcallan/scry/internal/signals"
)

// historyDays is the trailing daily-bar window fetched for indicators
const historyDays = 365

// Service implements AnalyzerService. Provider fetches are best effort: a
// provider that errors contributes nothing and the pipeline continues with
// whatever data the remaining sources produced.
type Service struct {
	providers  []interfaces.MarketDataClient
	history    interfaces.HistoryClient
	cache      interfaces.PayloadCache
	predictor  interfaces.Predictor
	normalizer *fundamentals.Normalizer
	computer   *signals.Computer
	aggregator *sentiment.Aggregator
	weights    scoring.Weights
	logger     *common.Logger
}

var _ interfaces.AnalyzerService = (*Service)(nil)

// Option configures the analyzer service
type Option func(*Service)

// WithProviders sets the market data providers queried per ticker
func WithProviders(providers ...interfaces.MarketDataClient) Option {
	return func(s *Service) {
		s.providers = providers
	}
}

// WithHistory sets the daily bar source
func WithHistory(history interfaces.HistoryClient) Option {
	return func(s *Service) {
		s.history = history
	}
}

// WithCache sets the payload cache
func WithCache(cache interfaces.PayloadCache) Option {
	return func(s *Service) {
		s.cache = cache
	}
}

// WithPredictor sets the optional external probability model
func WithPredictor(predictor interfaces.Predictor) Option {
	return func(s *Service) {
		s.predictor = predictor
	}
}

// WithSentimentSource sets the news and social sentiment feed
func WithSentimentSource(source sentiment.Source) Option {
	return func(s *Service) {
		s.aggregator = sentiment.NewAggregator(source)
	}
}

// WithWeights sets the composite blend weights
func WithWeights(w scoring.Weights) Option {
	return func(s *Service) {
		s.weights = w
	}
}

// NewService creates an analyzer service
func NewService(logger *common.Logger, opts ...Option) *Service {
	s := &Service{
		normalizer: fundamentals.NewNormalizer(),
		computer:   signals.NewComputer(),
		aggregator: sentiment.NewAggregator(nil),
		weights:    scoring.DefaultWeights(),
		logger:     logger,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// AnalyzeTrade scores a single insider trade end to end
func (s *Service) AnalyzeTrade(ctx context.Context, trade models.InsiderTrade) (*models.ScoredTrade, error) {
	ticker := strings.ToUpper(strings.TrimSpace(trade.Ticker))
	if ticker == "" {
		return nil, fmt.Errorf("trade has no ticker: %w", models.ErrInvalidInput)
	}
	trade.Ticker = ticker
	start := time.Now()

	payloads := s.gatherPayloads(ctx, ticker)
	bars := s.gatherHistory(ctx, ticker)

	scored := &models.ScoredTrade{
		ID:         uuid.New().String(),
		Trade:      trade,
		AnalyzedAt: time.Now(),
	}

	if scored.Trade.Sector == "" {
		if str, ok := payloads.Field(models.ProviderYahoo, "sector").(string); ok {
			scored.Trade.Sector = str
		}
	}

	scored.CurrentPrice = s.currentPrice(payloads, bars)

	var fundamentalRecord *models.FundamentalRecord
	if len(payloads) > 0 {
		fundamentalRecord = s.normalizer.Build(ticker, payloads)
		scored.Fundamentals = fundamentalRecord
		scored.MarketCap = fundamentalRecord.MarketCap
	}

	// A short series still gets a record; the computer leaves every
	// indicator nil and the technical score stays at its neutral base.
	// Only a missing history drops the technical component entirely.
	if len(bars) > 0 {
		scored.Technicals = s.computer.Compute(ticker, bars)
	}

	scored.Sentiment = s.aggregator.Aggregate(ticker, payloads, trade.TradeType)

	scored.FundamentalScore = scoring.FundamentalScore(fundamentalRecord)
	scored.TechnicalScore = scoring.TechnicalScore(scored.Technicals)
	scored.SentimentScore = scoring.SentimentScore(scored.Sentiment)
	scored.InsiderScore = scoring.InsiderScore(trade, scored.MarketCap)

	scored.CompositeScore = scoring.Composite(s.weights,
		scored.FundamentalScore, scored.TechnicalScore, scored.InsiderScore, scored.SentimentScore)

	scored.RiskLevel = scoring.AssessRisk(trade, fundamentalRecord, scored.MarketCap, bars)

	if s.predictor != nil {
		prob, err := s.predictor.ProbUp30d(ctx, ticker, bars)
		if err != nil {
			s.logger.Warn().Str("ticker", ticker).Err(err).Msg("Predictor failed, signal skipped")
		} else {
			scored.ProbUp30d = prob
		}
	}

	assessment := scoring.Recommend(scoring.RecommendInput{
		CompositeScore:   scored.CompositeScore,
		FundamentalScore: scored.FundamentalScore,
		TechnicalScore:   scored.TechnicalScore,
		InsiderScore:     scored.InsiderScore,
		RiskLevel:        scored.RiskLevel,
		Fundamentals:     fundamentalRecord,
		Technicals:       scored.Technicals,
		ProbUp30d:        scored.ProbUp30d,
	})
	scored.Recommendation = assessment.Recommendation
	scored.Confidence = assessment.Confidence
	scored.Reasons = assessment.Reasons
	scored.Warnings = assessment.Warnings

	scored.TargetPrices = s.targetPrices(payloads)
	scored.FairValue = scoring.FairValue(fundamentalRecord, scored.CurrentPrice, scored.TargetPrices)

	s.logger.Info().
		Str("ticker", ticker).
		Float64("composite", scored.CompositeScore).
		Str("recommendation", scored.Recommendation.String()).
		Str("risk", scored.RiskLevel.String()).
		Dur("duration", time.Since(start)).
		Msg("Trade analyzed")

	return scored, nil
}

// AnalyzeTrades scores a batch, skipping trades that fail individually
func (s *Service) AnalyzeTrades(ctx context.Context, trades []models.InsiderTrade) ([]*models.ScoredTrade, error) {
	results := make([]*models.ScoredTrade, 0, len(trades))
	for _, trade := range trades {
		if err := ctx.Err(); err != nil {
			return results, err
		}
		scored, err := s.AnalyzeTrade(ctx, trade)
		if err != nil {
			s.logger.Warn().Str("ticker", trade.Ticker).Err(err).Msg("Trade analysis failed, skipped")
			continue
		}
		results = append(results, scored)
	}
	return results, nil
}

// gatherPayloads collects raw snapshots from every configured provider,
// going through the cache when one is wired
func (s *Service) gatherPayloads(ctx context.Context, ticker string) models.PayloadSet {
	payloads := models.PayloadSet{}

	for _, provider := range s.providers {
		name := provider.Provider()

		if s.cache != nil {
			cached, err := s.cache.GetPayload(ctx, name, ticker)
			if err != nil {
				s.logger.Warn().Str("provider", name).Str("ticker", ticker).Err(err).Msg("Cache read failed")
			} else if cached != nil {
				payloads[name] = cached
				continue
			}
		}

		payload, err := provider.GetSnapshot(ctx, ticker)
		if err != nil {
			s.logger.Warn().Str("provider", name).Str("ticker", ticker).Err(err).Msg("Provider fetch failed")
			continue
		}
		if payload == nil {
			continue
		}
		payloads[name] = payload

		if s.cache != nil {
			if err := s.cache.SavePayload(ctx, payload); err != nil {
				s.logger.Warn().Str("provider", name).Str("ticker", ticker).Err(err).Msg("Cache write failed")
			}
		}
	}

	return payloads
}

// gatherHistory fetches the daily bar series, dropping it entirely when the
// series fails validation
func (s *Service) gatherHistory(ctx context.Context, ticker string) []models.OHLCVBar {
	if s.history == nil {
		return nil
	}

	if s.cache != nil {
		cached, err := s.cache.GetHistory(ctx, ticker)
		if err != nil {
			s.logger.Warn().Str("ticker", ticker).Err(err).Msg("History cache read failed")
		} else if cached != nil {
			return cached
		}
	}

	bars, err := s.history.GetHistory(ctx, ticker, interfaces.WithHistoryDays(historyDays))
	if err != nil {
		s.logger.Warn().Str("ticker", ticker).Err(err).Msg("History fetch failed")
		return nil
	}
	if err := signals.ValidateSeries(bars); err != nil {
		s.logger.Warn().Str("ticker", ticker).Err(err).Msg("History series invalid, dropped")
		return nil
	}

	if s.cache != nil {
		if err := s.cache.SaveHistory(ctx, ticker, bars); err != nil {
			s.logger.Warn().Str("ticker", ticker).Err(err).Msg("History cache write failed")
		}
	}
	return bars
}

// currentPrice prefers the providers' live quote, falling back to the last
// daily close
func (s *Service) currentPrice(payloads models.PayloadSet, bars []models.OHLCVBar) *float64 {
	price := reconcile.Reconcile(
		payloads.Field(models.ProviderYahoo, "regularMarketPrice"),
		payloads.Field(models.ProviderYahoo, "currentPrice"),
		payloads.Field(models.ProviderStockAnalysis, "regularMarketPrice"),
	)
	if price != nil {
		return price
	}
	if len(bars) > 0 {
		return models.Float(bars[len(bars)-1].Close)
	}
	return nil
}

// targetPrices collects per-provider analyst targets where present
func (s *Service) targetPrices(payloads models.PayloadSet) map[string]float64 {
	targets := map[string]float64{}

	if v := reconcile.Reconcile(payloads.Field(models.ProviderYahoo, "targetMeanPrice")); v != nil {
		targets[models.ProviderYahoo] = *v
	}
	if v := reconcile.NumericOf(payloads.Field(models.ProviderFinviz, "Target Price")); v != nil {
		targets[models.ProviderFinviz] = *v
	}
	if v := reconcile.NumericOf(payloads.Field(models.ProviderStockAnalysis, "Target Price")); v != nil {
		targets[models.ProviderStockAnalysis] = *v
	}

	if len(targets) == 0 {
		return nil
	}
	return targets
}
