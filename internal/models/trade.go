package models

import (
	"errors"
	"fmt"
	"time"
)

// Sentinel errors distinguishing upstream contract violations from the
// expected missing-data case. Missing or malformed per-field data never
// produces an error; these fire only on programmer mistakes.
var (
	ErrInvalidInput     = errors.New("invalid input")
	ErrInsufficientData = errors.New("insufficient data")
)

// TradeType classifies an insider disclosure
type TradeType string

const (
	TradePurchase       TradeType = "purchase"
	TradeSale           TradeType = "sale"
	TradeOptionExercise TradeType = "option_exercise"
	TradeGift           TradeType = "gift"
	TradeOther          TradeType = "other"
)

// Recommendation is the discrete buy/sell call, ordered StrongSell..StrongBuy
type Recommendation int

const (
	StrongSell Recommendation = iota
	Sell
	Hold
	Buy
	StrongBuy
)

var recommendationLabels = map[Recommendation]string{
	StrongSell: "Strong Sell",
	Sell:       "Sell",
	Hold:       "Hold",
	Buy:        "Buy",
	StrongBuy:  "Strong Buy",
}

func (r Recommendation) String() string {
	if label, ok := recommendationLabels[r]; ok {
		return label
	}
	return "Hold"
}

// ParseRecommendation maps a label back to its Recommendation
func ParseRecommendation(label string) (Recommendation, error) {
	for rec, l := range recommendationLabels {
		if l == label {
			return rec, nil
		}
	}
	return Hold, fmt.Errorf("unknown recommendation %q: %w", label, ErrInvalidInput)
}

// MarshalText implements encoding.TextMarshaler for JSON/store round-trips
func (r Recommendation) MarshalText() ([]byte, error) {
	return []byte(r.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler
func (r *Recommendation) UnmarshalText(text []byte) error {
	rec, err := ParseRecommendation(string(text))
	if err != nil {
		return err
	}
	*r = rec
	return nil
}

// RiskLevel is the ordinal risk classification, independent of the
// recommendation and used to override aggressive calls
type RiskLevel int

const (
	RiskLow RiskLevel = iota
	RiskModerate
	RiskHigh
	RiskVeryHigh
)

var riskLabels = map[RiskLevel]string{
	RiskLow:      "Low",
	RiskModerate: "Moderate",
	RiskHigh:     "High",
	RiskVeryHigh: "Very High",
}

func (r RiskLevel) String() string {
	if label, ok := riskLabels[r]; ok {
		return label
	}
	return "Moderate"
}

// ParseRiskLevel maps a label back to its RiskLevel
func ParseRiskLevel(label string) (RiskLevel, error) {
	for lvl, l := range riskLabels {
		if l == label {
			return lvl, nil
		}
	}
	return RiskModerate, fmt.Errorf("unknown risk level %q: %w", label, ErrInvalidInput)
}

// MarshalText implements encoding.TextMarshaler
func (r RiskLevel) MarshalText() ([]byte, error) {
	return []byte(r.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler
func (r *RiskLevel) UnmarshalText(text []byte) error {
	lvl, err := ParseRiskLevel(string(text))
	if err != nil {
		return err
	}
	*r = lvl
	return nil
}

// InsiderTrade is one insider disclosure event as delivered by the feed.
// Amount is signed: positive for purchases, negative for sales.
type InsiderTrade struct {
	Date         time.Time `json:"date"`
	Ticker       string    `json:"ticker"`
	CompanyName  string    `json:"company_name,omitempty"`
	Sector       string    `json:"sector,omitempty"`
	InsiderName  string    `json:"insider_name"`
	InsiderTitle string    `json:"insider_title"`
	TradeType    TradeType `json:"trade_type"`
	Shares       float64   `json:"shares,omitempty"`
	Price        float64   `json:"price,omitempty"`
	Amount       float64   `json:"amount"`
}

// ScoredTrade is the aggregate analysis result for one insider trade.
// It is assembled once by the analyzer pipeline and never mutated afterward.
// The composite score is always derivable from the sub-scores and the
// configured weights; there is no hidden state.
type ScoredTrade struct {
	ID    string       `json:"id" badgerhold:"key"`
	Trade InsiderTrade `json:"trade"`

	CurrentPrice *float64 `json:"current_price,omitempty"`
	MarketCap    *float64 `json:"market_cap,omitempty"`

	Fundamentals *FundamentalRecord `json:"fundamentals,omitempty"`
	Technicals   *TechnicalRecord   `json:"technicals,omitempty"`
	Sentiment    *SentimentRecord   `json:"sentiment,omitempty"`

	FundamentalScore *float64 `json:"fundamental_score,omitempty"`
	TechnicalScore   *float64 `json:"technical_score,omitempty"`
	SentimentScore   *float64 `json:"sentiment_score,omitempty"`
	InsiderScore     *float64 `json:"insider_score,omitempty"`
	CompositeScore   float64  `json:"composite_score"`

	RiskLevel      RiskLevel      `json:"risk_level"`
	Recommendation Recommendation `json:"recommendation"`
	Confidence     float64        `json:"confidence"`

	Reasons  []string `json:"reasons,omitempty"`
	Warnings []string `json:"warnings,omitempty"`

	// Optional probability-of-price-increase signal from an external
	// predictor; never computed here.
	ProbUp30d *float64 `json:"prob_up_30d,omitempty"`

	TargetPrices map[string]float64 `json:"target_prices,omitempty"`
	FairValue    *float64           `json:"fair_value,omitempty"`

	AnalyzedAt time.Time `json:"analyzed_at"`
}

// FairAvg returns the mean of the per-source target prices, falling back to
// the blended fair value when no targets exist
func (t *ScoredTrade) FairAvg() *float64 {
	if len(t.TargetPrices) == 0 {
		return t.FairValue
	}
	sum := 0.0
	for _, p := range t.TargetPrices {
		sum += p
	}
	avg := sum / float64(len(t.TargetPrices))
	return &avg
}
