// Package sentiment combines per-source sentiment scalars into one record.
// All components live in [-1, 1].
package sentiment

import (
	"math"
	"time"

	"github.com/bobmcallan/scry/internal/models"
	"github.com/bobmcallan/scry/internal/reconcile"
)

// Source supplies news and social sentiment for a ticker. Implementations
// wrap whatever feed is actually connected; the aggregator treats a nil
// Source, or a nil component, as "no reading" and leaves that component out
// of the mean rather than injecting a fake neutral zero.
type Source interface {
	NewsSentiment(ticker string) *float64
	SocialSentiment(ticker string) *float64
}

// Aggregator builds SentimentRecords from payloads, an optional Source and
// the insider trade direction
type Aggregator struct {
	source Source
}

// NewAggregator creates an aggregator; source may be nil when no news or
// social feed is connected
func NewAggregator(source Source) *Aggregator {
	return &Aggregator{source: source}
}

// Aggregate derives the sentiment record for one trade. Analyst sentiment
// comes from the provider recommendation mean (1 strong buy .. 5 strong
// sell) mapped by (3-mean)/2 and clamped to [-1, 1]. The insider component
// reflects the trade direction itself.
func (a *Aggregator) Aggregate(ticker string, payloads models.PayloadSet, tradeType models.TradeType) *models.SentimentRecord {
	rec := &models.SentimentRecord{
		Ticker: ticker,
		Date:   time.Now(),
	}

	if mean := reconcile.Reconcile(payloads.Field(models.ProviderYahoo, "recommendationMean")); mean != nil {
		v := clamp((3-*mean)/2, -1, 1)
		rec.AnalystSentiment = &v
	}

	if a.source != nil {
		rec.NewsSentiment = a.source.NewsSentiment(ticker)
		rec.SocialSentiment = a.source.SocialSentiment(ticker)
	}

	switch tradeType {
	case models.TradePurchase:
		rec.InsiderSentiment = models.Float(0.1)
	case models.TradeSale:
		rec.InsiderSentiment = models.Float(-0.1)
	default:
		rec.InsiderSentiment = models.Float(0)
	}

	components := present(rec.NewsSentiment, rec.SocialSentiment, rec.AnalystSentiment, rec.InsiderSentiment)
	if len(components) > 0 {
		mean := meanOf(components)
		rec.OverallSentiment = &mean

		vol := stddevOf(components, mean)
		rec.SentimentVolatility = &vol
	}

	return rec
}

func present(values ...*float64) []float64 {
	out := make([]float64, 0, len(values))
	for _, v := range values {
		if v != nil {
			out = append(out, *v)
		}
	}
	return out
}

func meanOf(values []float64) float64 {
	sum := 0.0
	for _, v := range values {
		sum += v
	}
	return sum / float64(len(values))
}

// stddevOf is the population standard deviation around mean
func stddevOf(values []float64, mean float64) float64 {
	sumSq := 0.0
	for _, v := range values {
		d := v - mean
		sumSq += d * d
	}
	return math.Sqrt(sumSq / float64(len(values)))
}

func clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
