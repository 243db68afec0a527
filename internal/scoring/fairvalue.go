package scoring

import (
	"github.com/bobmcallan/scry/internal/models"
)

// Discount and growth assumptions for the simplified valuation methods
const (
	discountRate      = 0.10
	defaultGrowthRate = 0.05
	industryPE        = 20.0
)

// FairValue blends up to three independent estimates: a Gordon-growth DCF,
// a P/E-implied price against an assumed industry multiple, and the mean of
// analyst target prices. Each method only contributes when its inputs are
// available; nil when none are.
func FairValue(fundamentals *models.FundamentalRecord, currentPrice *float64, targetPrices map[string]float64) *float64 {
	var estimates []float64

	if v := dcfValue(fundamentals); v != nil {
		estimates = append(estimates, *v)
	}
	if v := peImpliedValue(fundamentals, currentPrice); v != nil {
		estimates = append(estimates, *v)
	}
	if len(targetPrices) > 0 {
		sum := 0.0
		for _, p := range targetPrices {
			sum += p
		}
		estimates = append(estimates, sum/float64(len(targetPrices)))
	}

	if len(estimates) == 0 {
		return nil
	}

	sum := 0.0
	for _, e := range estimates {
		sum += e
	}
	avg := sum / float64(len(estimates))
	return &avg
}

// dcfValue is the simplified Gordon-growth model: FCF(1+g)/(r-g) per share.
// Growth defaults to 5% when revenue growth is absent. Growth at or above
// the discount rate makes the model undefined and the method is skipped.
func dcfValue(f *models.FundamentalRecord) *float64 {
	if f == nil || f.FreeCashFlow == nil || f.SharesOutstanding == nil || *f.SharesOutstanding <= 0 {
		return nil
	}

	growth := defaultGrowthRate
	if f.RevenueGrowth != nil {
		growth = *f.RevenueGrowth
	}
	if growth >= discountRate {
		return nil
	}

	terminal := *f.FreeCashFlow * (1 + growth) / (discountRate - growth)
	v := terminal / *f.SharesOutstanding
	return &v
}

// peImpliedValue reprices current earnings at the assumed industry multiple
func peImpliedValue(f *models.FundamentalRecord, currentPrice *float64) *float64 {
	if f == nil || f.PERatio == nil || *f.PERatio <= 0 || currentPrice == nil {
		return nil
	}

	eps := *currentPrice / *f.PERatio
	v := eps * industryPE
	return &v
}
