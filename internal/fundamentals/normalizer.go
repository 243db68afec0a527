// Package fundamentals builds canonical fundamental records from raw
// provider payloads.
package fundamentals

import (
	"time"

	"github.com/bobmcallan/scry/internal/models"
	"github.com/bobmcallan/scry/internal/reconcile"
)

// Normalizer maps provider payloads to a FundamentalRecord. The per-metric
// provider order is fixed: Yahoo first, then Finviz, StockAnalysis, Finnhub,
// reflecting how structured each source is. Downstream scoring assumes these
// semantics, so the order must not be reshuffled.
type Normalizer struct{}

// NewNormalizer creates a new fundamental normalizer
func NewNormalizer() *Normalizer {
	return &Normalizer{}
}

// Build assembles a FundamentalRecord for the ticker from whatever the
// payload set contains. Any metric with no parseable candidate stays nil;
// the record is always returned.
func (n *Normalizer) Build(ticker string, payloads models.PayloadSet) *models.FundamentalRecord {
	yahoo := payloads[models.ProviderYahoo]
	sa := payloads[models.ProviderStockAnalysis]
	finnhub := payloads[models.ProviderFinnhub]

	rec := &models.FundamentalRecord{
		Ticker: ticker,
		Date:   time.Now(),
	}

	// Valuation ratios: raw values everywhere, Finviz quotes them as strings
	rec.PERatio = reconcile.Reconcile(
		yahoo.Field("trailingPE"),
		finvizNumeric(payloads, "P/E"),
		sa.Field("trailingPE"),
		finnhub.Field("peTTM"),
	)
	rec.PEGRatio = reconcile.Reconcile(
		yahoo.Field("pegRatio"),
		finvizNumeric(payloads, "PEG"),
		finnhub.Field("pegRatio"),
	)
	rec.PBRatio = reconcile.Reconcile(
		yahoo.Field("priceToBook"),
		finvizNumeric(payloads, "P/B"),
		finnhub.Field("pbRatio"),
	)
	rec.PSRatio = reconcile.Reconcile(
		yahoo.Field("priceToSalesTrailing12Months"),
		finvizNumeric(payloads, "P/S"),
		finnhub.Field("psRatio"),
	)

	// Profitability: decimal fractions; Finviz quotes percentages
	rec.ROE = reconcile.Reconcile(
		yahoo.Field("returnOnEquity"),
		finvizPercentage(payloads, "ROE"),
		sa.Field("returnOnEquity"),
		finnhub.Field("roeTTM"),
	)
	rec.ROA = reconcile.Reconcile(
		yahoo.Field("returnOnAssets"),
		finvizPercentage(payloads, "ROA"),
		finnhub.Field("roaTTM"),
	)
	rec.GrossMargin = reconcile.Reconcile(
		yahoo.Field("grossMargins"),
		finvizPercentage(payloads, "Gross M"),
		finnhub.Field("grossMarginTTM"),
	)
	rec.OperatingMargin = reconcile.Reconcile(
		yahoo.Field("operatingMargins"),
		finvizPercentage(payloads, "Oper M"),
		finnhub.Field("operatingMarginTTM"),
	)
	rec.NetMargin = reconcile.Reconcile(
		yahoo.Field("profitMargins"),
		finvizPercentage(payloads, "Profit M"),
		finnhub.Field("netProfitMarginTTM"),
	)

	// Financial health: raw ratios
	rec.DebtToEquity = reconcile.Reconcile(
		yahoo.Field("debtToEquity"),
		finvizNumeric(payloads, "Debt/Eq"),
		sa.Field("debtToEquity"),
		finnhub.Field("debtToEquityRatio"),
	)
	rec.CurrentRatio = reconcile.Reconcile(
		yahoo.Field("currentRatio"),
		finvizNumeric(payloads, "Current R"),
		finnhub.Field("currentRatio"),
	)
	rec.QuickRatio = reconcile.Reconcile(
		yahoo.Field("quickRatio"),
		finvizNumeric(payloads, "Quick R"),
		finnhub.Field("quickRatio"),
	)

	// Growth: decimal fractions
	rec.RevenueGrowth = reconcile.Reconcile(
		yahoo.Field("revenueGrowth"),
		finvizPercentage(payloads, "Sales Q/Q"),
		finnhub.Field("revenueGrowthTTM"),
	)
	rec.EarningsGrowth = reconcile.Reconcile(
		yahoo.Field("earningsGrowth"),
		finvizPercentage(payloads, "EPS Q/Q"),
		finnhub.Field("epsGrowthTTM"),
	)

	// Cash flow: absolute currency units
	rec.FreeCashFlow = reconcile.Reconcile(
		yahoo.Field("freeCashflow"),
		finnhub.Field("freeCashFlowTTM"),
	)
	rec.OperatingCashFlow = reconcile.Reconcile(
		yahoo.Field("operatingCashflow"),
		finnhub.Field("operatingCashFlowTTM"),
	)

	// Market data: Finviz market cap arrives suffixed ("1.2B")
	rec.MarketCap = reconcile.Reconcile(
		yahoo.Field("marketCap"),
		finvizNumeric(payloads, "Market Cap"),
		finnhub.Field("marketCapitalization"),
	)
	rec.SharesOutstanding = reconcile.Reconcile(
		yahoo.Field("sharesOutstanding"),
		finnhub.Field("sharesOutstanding"),
	)

	// Dividends: decimal fractions
	rec.DividendYield = reconcile.Reconcile(
		yahoo.Field("dividendYield"),
		finvizPercentage(payloads, "Dividend %"),
		finnhub.Field("dividendYieldIndicatedAnnual"),
	)
	rec.PayoutRatio = reconcile.Reconcile(
		yahoo.Field("payoutRatio"),
		finnhub.Field("payoutRatioTTM"),
	)

	return rec
}

// finvizNumeric pulls a Finviz field and parses it without the percentage
// heuristic
func finvizNumeric(payloads models.PayloadSet, field string) *float64 {
	return reconcile.NumericOf(payloads.Field(models.ProviderFinviz, field))
}

// finvizPercentage pulls a Finviz percentage-typed field and converts it to
// a decimal fraction
func finvizPercentage(payloads models.PayloadSet, field string) *float64 {
	return reconcile.PercentageOf(payloads.Field(models.ProviderFinviz, field))
}
