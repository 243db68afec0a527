package scoring

import (
	"github.com/bobmcallan/scry/internal/models"
)

// Weights holds the composite blend. Missing sub-scores drop their weight
// and the remainder is rescaled to sum to 1, so a lone sub-score passes
// through unchanged.
type Weights struct {
	Fundamental float64
	Technical   float64
	Insider     float64
	Sentiment   float64
}

// DefaultWeights returns the standard 40/30/20/10 blend
func DefaultWeights() Weights {
	return Weights{
		Fundamental: 0.40,
		Technical:   0.30,
		Insider:     0.20,
		Sentiment:   0.10,
	}
}

// Composite blends the available sub-scores. All absent reads as a neutral 50.
func Composite(w Weights, fundamental, technical, insider, sentiment *float64) float64 {
	type part struct {
		score  *float64
		weight float64
	}
	parts := []part{
		{fundamental, w.Fundamental},
		{technical, w.Technical},
		{insider, w.Insider},
		{sentiment, w.Sentiment},
	}

	var weighted, totalWeight float64
	for _, p := range parts {
		if p.score == nil {
			continue
		}
		weighted += *p.score * p.weight
		totalWeight += p.weight
	}

	if totalWeight == 0 {
		return baseScore
	}
	return clampScore(weighted / totalWeight)
}

// Assessment is the recommendation output: the call, how sure we are, and
// the human-readable trail behind both
type Assessment struct {
	Recommendation models.Recommendation
	Confidence     float64
	Reasons        []string
	Warnings       []string
}

// RecommendInput carries everything the recommendation engine reads
type RecommendInput struct {
	CompositeScore   float64
	FundamentalScore *float64
	TechnicalScore   *float64
	InsiderScore     *float64
	RiskLevel        models.RiskLevel
	Fundamentals     *models.FundamentalRecord
	Technicals       *models.TechnicalRecord

	// Optional external predictor signal, probability the price is higher
	// in 30 days
	ProbUp30d *float64
}

// Recommend maps a composite score to a discrete call, then applies the risk
// override and accumulates warnings. Confidence is the unweighted mean of
// every confidence signal that fired; since it is a mean, evaluation order
// does not matter.
func Recommend(in RecommendInput) Assessment {
	a := Assessment{Recommendation: models.Hold}
	var confidenceSignals []float64

	score := in.CompositeScore
	switch {
	case score >= 80:
		a.Recommendation = models.StrongBuy
		a.Reasons = append(a.Reasons, "Exceptional composite score (80+)")
		confidenceSignals = append(confidenceSignals, 0.9)
	case score >= 65:
		a.Recommendation = models.Buy
		a.Reasons = append(a.Reasons, "Strong composite score (65+)")
		confidenceSignals = append(confidenceSignals, 0.8)
	case score >= 45:
		a.Recommendation = models.Hold
		a.Reasons = append(a.Reasons, "Moderate composite score (45-65)")
		confidenceSignals = append(confidenceSignals, 0.6)
	case score >= 30:
		a.Recommendation = models.Sell
		a.Reasons = append(a.Reasons, "Weak composite score (30-45)")
		confidenceSignals = append(confidenceSignals, 0.7)
	default:
		a.Recommendation = models.StrongSell
		a.Reasons = append(a.Reasons, "Poor composite score (<30)")
		confidenceSignals = append(confidenceSignals, 0.8)
	}

	if in.FundamentalScore != nil && *in.FundamentalScore > 70 {
		a.Reasons = append(a.Reasons, "Strong fundamental metrics")
		confidenceSignals = append(confidenceSignals, 0.8)
	}
	if in.TechnicalScore != nil && *in.TechnicalScore > 70 {
		a.Reasons = append(a.Reasons, "Positive technical indicators")
		confidenceSignals = append(confidenceSignals, 0.7)
	}
	if in.InsiderScore != nil && *in.InsiderScore > 70 {
		a.Reasons = append(a.Reasons, "Significant insider buying signal")
		confidenceSignals = append(confidenceSignals, 0.9)
	}

	// Hard override: a very high risk profile caps aggressive calls at Hold.
	// The warning and the 0.5 confidence signal fire for every very-high-risk
	// trade, not only when an actual downgrade happens.
	if in.RiskLevel == models.RiskVeryHigh {
		a.Warnings = append(a.Warnings, "Very high risk investment")
		if a.Recommendation == models.StrongBuy || a.Recommendation == models.Buy {
			a.Recommendation = models.Hold
		}
		confidenceSignals = append(confidenceSignals, 0.5)
	}

	if in.ProbUp30d != nil {
		switch {
		case *in.ProbUp30d > 0.7:
			a.Reasons = append(a.Reasons, "High probability of price appreciation")
			confidenceSignals = append(confidenceSignals, 0.8)
		case *in.ProbUp30d < 0.3:
			a.Warnings = append(a.Warnings, "Low probability of price appreciation")
			confidenceSignals = append(confidenceSignals, 0.6)
		}
	}

	if len(confidenceSignals) > 0 {
		sum := 0.0
		for _, c := range confidenceSignals {
			sum += c
		}
		a.Confidence = sum / float64(len(confidenceSignals))
	} else {
		a.Confidence = 0.5
	}

	if in.Fundamentals != nil && in.Fundamentals.DebtToEquity != nil && *in.Fundamentals.DebtToEquity > 3 {
		a.Warnings = append(a.Warnings, "High debt-to-equity ratio")
	}
	if in.Technicals != nil && in.Technicals.RSI14 != nil && *in.Technicals.RSI14 > 80 {
		a.Warnings = append(a.Warnings, "Extremely overbought conditions")
	}

	return a
}
