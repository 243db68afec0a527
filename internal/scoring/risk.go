package scoring

import (
	"math"

	"github.com/bobmcallan/scry/internal/models"
)

// minReturnsForVolatility is the number of daily returns below which the
// volatility term is skipped
const minReturnsForVolatility = 20

// AssessRisk classifies a trade's risk on the 1-10 scale and buckets it.
// Independent of the recommendation; the recommendation engine uses the
// result to cap aggressive calls.
func AssessRisk(trade models.InsiderTrade, fundamentals *models.FundamentalRecord, marketCap *float64, bars []models.OHLCVBar) models.RiskLevel {
	risk := 5.0

	if vol := dailyReturnStdDev(bars); vol != nil {
		switch {
		case *vol > 0.05:
			risk += 2
		case *vol > 0.03:
			risk += 1
		case *vol < 0.01:
			risk -= 1
		}
	}

	if fundamentals != nil {
		if fundamentals.PERatio != nil && *fundamentals.PERatio > 40 {
			risk += 1
		}
		if fundamentals.DebtToEquity != nil && *fundamentals.DebtToEquity > 2 {
			risk += 1
		}
		if fundamentals.NetMargin != nil && *fundamentals.NetMargin < 0 {
			risk += 2
		}
	}

	if marketCap != nil {
		switch {
		case *marketCap < 1e9:
			risk += 2
		case *marketCap < 10e9:
			risk += 1
		}
	}

	if trade.TradeType == models.TradeSale {
		risk += 1
	}

	switch {
	case risk <= 3:
		return models.RiskLow
	case risk <= 4:
		return models.RiskModerate
	case risk <= 6:
		return models.RiskHigh
	default:
		return models.RiskVeryHigh
	}
}

// dailyReturnStdDev is the sample standard deviation of close-to-close
// returns, nil when the series is too short to be meaningful
func dailyReturnStdDev(bars []models.OHLCVBar) *float64 {
	if len(bars) < minReturnsForVolatility+1 {
		return nil
	}

	returns := make([]float64, 0, len(bars)-1)
	for i := 1; i < len(bars); i++ {
		prev := bars[i-1].Close
		if prev == 0 {
			continue
		}
		returns = append(returns, (bars[i].Close-prev)/prev)
	}
	if len(returns) < minReturnsForVolatility {
		return nil
	}

	mean := 0.0
	for _, r := range returns {
		mean += r
	}
	mean /= float64(len(returns))

	sumSq := 0.0
	for _, r := range returns {
		d := r - mean
		sumSq += d * d
	}
	std := math.Sqrt(sumSq / float64(len(returns)-1))
	return &std
}
