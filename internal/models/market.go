// Package models defines data structures for Scry
package models

import (
	"time"

	"github.com/tidwall/gjson"
)

// Provider names for raw payloads. Field priority tables in the fundamentals
// package reference these names.
const (
	ProviderYahoo         = "yahoo"
	ProviderFinviz        = "finviz"
	ProviderStockAnalysis = "stockanalysis"
	ProviderFinnhub       = "finnhub"
	ProviderAlphaVantage  = "alphavantage"
	ProviderPolygon       = "polygon"
)

// ProviderPayload is one provider's raw ticker payload kept as JSON.
// Providers disagree on types (numbers, percentage strings, suffixed strings
// like "1.2B"), so fields are pulled out with gjson paths and handed to the
// reconciler untyped.
type ProviderPayload struct {
	Provider  string    `json:"provider"`
	Ticker    string    `json:"ticker"`
	Raw       []byte    `json:"raw"`
	FetchedAt time.Time `json:"fetched_at"`
}

// NewPayload wraps one provider's raw JSON for a ticker
func NewPayload(provider, ticker string, raw []byte) *ProviderPayload {
	return &ProviderPayload{
		Provider:  provider,
		Ticker:    ticker,
		Raw:       raw,
		FetchedAt: time.Now(),
	}
}

// Field returns the raw value at a gjson path: float64 for JSON numbers,
// string for JSON strings, nil when absent or null.
func (p *ProviderPayload) Field(path string) any {
	if p == nil || len(p.Raw) == 0 {
		return nil
	}
	res := gjson.GetBytes(p.Raw, path)
	switch res.Type {
	case gjson.Number:
		return res.Num
	case gjson.String:
		return res.Str
	case gjson.True, gjson.False:
		return res.Bool()
	default:
		return nil
	}
}

// PayloadSet maps provider name to that provider's payload for one ticker.
// A consistent snapshot of these plus one OHLCV series is the analyzer input.
type PayloadSet map[string]*ProviderPayload

// Field returns the value at path from the named provider, nil when the
// provider is absent from the set.
func (s PayloadSet) Field(provider, path string) any {
	return s[provider].Field(path)
}

// OHLCVBar represents one period's price data, chronological order oldest first
type OHLCVBar struct {
	Date   time.Time `json:"date"`
	Open   float64   `json:"open"`
	High   float64   `json:"high"`
	Low    float64   `json:"low"`
	Close  float64   `json:"close"`
	Volume int64     `json:"volume"`
}

// FundamentalRecord is the canonical per-ticker fundamental snapshot built by
// the normalizer. Every field is optional; nil means no provider supplied a
// parseable value. Immutable once built.
type FundamentalRecord struct {
	Ticker string    `json:"ticker"`
	Date   time.Time `json:"date"`

	// Valuation
	PERatio  *float64 `json:"pe_ratio,omitempty"`
	PEGRatio *float64 `json:"peg_ratio,omitempty"`
	PBRatio  *float64 `json:"pb_ratio,omitempty"`
	PSRatio  *float64 `json:"ps_ratio,omitempty"`

	// Profitability
	ROE             *float64 `json:"roe,omitempty"`
	ROA             *float64 `json:"roa,omitempty"`
	GrossMargin     *float64 `json:"gross_margin,omitempty"`
	OperatingMargin *float64 `json:"operating_margin,omitempty"`
	NetMargin       *float64 `json:"net_margin,omitempty"`

	// Financial health
	DebtToEquity *float64 `json:"debt_to_equity,omitempty"`
	CurrentRatio *float64 `json:"current_ratio,omitempty"`
	QuickRatio   *float64 `json:"quick_ratio,omitempty"`

	// Growth
	RevenueGrowth  *float64 `json:"revenue_growth,omitempty"`
	EarningsGrowth *float64 `json:"earnings_growth,omitempty"`

	// Cash flow
	FreeCashFlow      *float64 `json:"free_cash_flow,omitempty"`
	OperatingCashFlow *float64 `json:"operating_cash_flow,omitempty"`

	// Market data
	MarketCap         *float64 `json:"market_cap,omitempty"`
	SharesOutstanding *float64 `json:"shares_outstanding,omitempty"`

	// Dividends
	DividendYield *float64 `json:"dividend_yield,omitempty"`
	PayoutRatio   *float64 `json:"payout_ratio,omitempty"`
}

// TechnicalRecord holds the indicator battery derived from one OHLCV snapshot.
// All fields are nil when the series is too short for the indicator.
type TechnicalRecord struct {
	Ticker string    `json:"ticker"`
	Date   time.Time `json:"date"`

	// Moving averages
	SMA5   *float64 `json:"sma_5,omitempty"`
	SMA10  *float64 `json:"sma_10,omitempty"`
	SMA20  *float64 `json:"sma_20,omitempty"`
	SMA50  *float64 `json:"sma_50,omitempty"`
	SMA200 *float64 `json:"sma_200,omitempty"`
	EMA12  *float64 `json:"ema_12,omitempty"`
	EMA26  *float64 `json:"ema_26,omitempty"`
	EMA50  *float64 `json:"ema_50,omitempty"`

	// Momentum
	RSI14     *float64 `json:"rsi_14,omitempty"`
	RSI21     *float64 `json:"rsi_21,omitempty"`
	StochK    *float64 `json:"stoch_k,omitempty"`
	StochD    *float64 `json:"stoch_d,omitempty"`
	WilliamsR *float64 `json:"williams_r,omitempty"`

	// Trend
	MACD          *float64 `json:"macd,omitempty"`
	MACDSignal    *float64 `json:"macd_signal,omitempty"`
	MACDHistogram *float64 `json:"macd_histogram,omitempty"`

	// Volatility
	BBUpper  *float64 `json:"bb_upper,omitempty"`
	BBMiddle *float64 `json:"bb_middle,omitempty"`
	BBLower  *float64 `json:"bb_lower,omitempty"`
	BBWidth  *float64 `json:"bb_width,omitempty"`
	ATR      *float64 `json:"atr,omitempty"`

	// Volume
	OBV *float64 `json:"obv,omitempty"`
	CMF *float64 `json:"cmf,omitempty"`

	// Support and resistance
	Support1    *float64 `json:"support_1,omitempty"`
	Support2    *float64 `json:"support_2,omitempty"`
	Resistance1 *float64 `json:"resistance_1,omitempty"`
	Resistance2 *float64 `json:"resistance_2,omitempty"`

	// Pattern labels, informational only
	BullishPatterns []string `json:"bullish_patterns,omitempty"`
	BearishPatterns []string `json:"bearish_patterns,omitempty"`
}

// SentimentRecord holds per-ticker sentiment scalars in [-1, 1]
type SentimentRecord struct {
	Ticker string    `json:"ticker"`
	Date   time.Time `json:"date"`

	NewsSentiment    *float64 `json:"news_sentiment,omitempty"`
	SocialSentiment  *float64 `json:"social_sentiment,omitempty"`
	AnalystSentiment *float64 `json:"analyst_sentiment,omitempty"`
	InsiderSentiment *float64 `json:"insider_sentiment,omitempty"`

	OverallSentiment    *float64 `json:"overall_sentiment,omitempty"`
	SentimentVolatility *float64 `json:"sentiment_volatility,omitempty"`
}

// Float returns a pointer to v, for optional numeric fields
func Float(v float64) *float64 {
	return &v
}
