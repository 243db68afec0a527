// Package scoring maps normalized records to 0-100 sub-scores and blends
// them into a composite recommendation. Every sub-score starts from a base
// of 50 and applies its threshold rules in a fixed order; later rules may
// offset earlier ones, there is no early exit. Absent metrics contribute
// nothing.
package scoring

import (
	"math"
	"strings"

	"github.com/bobmcallan/scry/internal/models"
)

const baseScore = 50.0

// Executive title fragments that mark a trade as coming from a key insider
var keyInsiderTitles = []string{"ceo", "cfo", "president", "chairman", "founder"}

func clampScore(s float64) float64 {
	return math.Max(0, math.Min(100, s))
}

// FundamentalScore rates a fundamental record 0-100, nil when no record
// was built at all
func FundamentalScore(f *models.FundamentalRecord) *float64 {
	if f == nil {
		return nil
	}

	score := baseScore

	if f.PERatio != nil {
		pe := *f.PERatio
		switch {
		case pe > 0 && pe < 15:
			score += 15
		case pe >= 15 && pe <= 25:
			score += 10
		case pe > 25 && pe <= 35:
			score += 5
		case pe > 40:
			score -= 10
		}
	}

	if f.PEGRatio != nil {
		switch {
		case *f.PEGRatio < 1:
			score += 15
		case *f.PEGRatio < 1.5:
			score += 10
		case *f.PEGRatio > 2:
			score -= 10
		}
	}

	if f.ROE != nil {
		switch {
		case *f.ROE > 0.20:
			score += 15
		case *f.ROE > 0.15:
			score += 10
		case *f.ROE > 0.10:
			score += 5
		case *f.ROE < 0:
			score -= 15
		}
	}

	if f.DebtToEquity != nil {
		switch {
		case *f.DebtToEquity < 0.3:
			score += 10
		case *f.DebtToEquity < 0.6:
			score += 5
		case *f.DebtToEquity > 2:
			score -= 15
		}
	}

	if f.RevenueGrowth != nil {
		switch {
		case *f.RevenueGrowth > 0.20:
			score += 10
		case *f.RevenueGrowth > 0.10:
			score += 5
		case *f.RevenueGrowth < 0:
			score -= 10
		}
	}

	if f.NetMargin != nil {
		switch {
		case *f.NetMargin > 0.20:
			score += 10
		case *f.NetMargin > 0.10:
			score += 5
		case *f.NetMargin < 0:
			score -= 15
		}
	}

	if f.FreeCashFlow != nil {
		if *f.FreeCashFlow > 0 {
			score += 5
		} else {
			score -= 10
		}
	}

	result := clampScore(score)
	return &result
}

// TechnicalScore rates a technical record 0-100, nil when no record exists.
// An all-nil record (short series) scores exactly the base 50.
func TechnicalScore(t *models.TechnicalRecord) *float64 {
	if t == nil {
		return nil
	}

	score := baseScore

	if t.RSI14 != nil {
		rsi := *t.RSI14
		switch {
		case rsi >= 30 && rsi <= 70:
			score += 10
		case rsi < 30:
			score += 15 // oversold, potential entry
		case rsi > 70:
			score -= 10
		}
	}

	if t.MACD != nil && t.MACDSignal != nil {
		if *t.MACD > *t.MACDSignal {
			score += 10
			if *t.MACD > 0 {
				score += 5
			}
		} else {
			score -= 10
		}
	}

	if t.SMA20 != nil && t.SMA50 != nil {
		if *t.SMA20 > *t.SMA50 {
			score += 10
		} else {
			score -= 10
		}
	}

	score += 5 * float64(len(t.BullishPatterns))
	score -= 5 * float64(len(t.BearishPatterns))

	result := clampScore(score)
	return &result
}

// SentimentScore rates a sentiment record 0-100, nil when no record exists
func SentimentScore(s *models.SentimentRecord) *float64 {
	if s == nil {
		return nil
	}

	score := baseScore

	if s.OverallSentiment != nil {
		score += *s.OverallSentiment * 25
	}
	if s.AnalystSentiment != nil {
		score += *s.AnalystSentiment * 15
	}
	if s.NewsSentiment != nil {
		score += *s.NewsSentiment * 10
	}
	if s.SentimentVolatility != nil && *s.SentimentVolatility > 0.5 {
		score -= 10
	}

	result := clampScore(score)
	return &result
}

// InsiderScore rates the disclosure itself: direction, size relative to the
// company, and who traded
func InsiderScore(trade models.InsiderTrade, marketCap *float64) *float64 {
	score := baseScore

	switch trade.TradeType {
	case models.TradePurchase:
		score += 20
	case models.TradeSale:
		score -= 10
	}

	if marketCap != nil && *marketCap > 0 {
		significance := math.Abs(trade.Amount) / *marketCap
		switch {
		case significance > 0.001:
			score += 15
		case significance > 0.0001:
			score += 10
		}
	}

	title := strings.ToLower(trade.InsiderTitle)
	for _, key := range keyInsiderTitles {
		if strings.Contains(title, key) {
			score += 10
			break
		}
	}

	result := clampScore(score)
	return &result
}
