// Package interfaces defines service contracts for Scry
package interfaces

import (
	"context"
	"io"

	"github.com/bobmcallan/scry/internal/models"
)

// AnalyzerService runs the full scoring pipeline for insider trades
type AnalyzerService interface {
	// AnalyzeTrade scores a single insider trade end to end: market data,
	// fundamentals, technicals, sentiment, risk, composite, recommendation
	AnalyzeTrade(ctx context.Context, trade models.InsiderTrade) (*models.ScoredTrade, error)

	// AnalyzeTrades scores a batch, skipping trades that fail individually
	AnalyzeTrades(ctx context.Context, trades []models.InsiderTrade) ([]*models.ScoredTrade, error)
}

// ScanService drives the periodic insider feed scan
type ScanService interface {
	// RunScan fetches the latest filings, scores them, and persists results
	RunScan(ctx context.Context) ([]*models.ScoredTrade, error)

	// Start begins the scheduled scan loop
	Start(ctx context.Context) error

	// Stop halts the scheduled scan loop
	Stop()
}

// Predictor supplies an optional probability-of-price-increase signal from
// an external model. Returning (nil, nil) means no signal for the ticker.
type Predictor interface {
	// ProbUp30d estimates the probability the price is higher in 30 days
	ProbUp30d(ctx context.Context, ticker string, bars []models.OHLCVBar) (*float64, error)
}

// ExportService renders scored trades into shareable artifacts
type ExportService interface {
	// WriteCSV streams scored trades as a CSV report
	WriteCSV(w io.Writer, trades []*models.ScoredTrade) error

	// RenderChart renders a price and moving-average chart as PNG
	RenderChart(ticker string, bars []models.OHLCVBar, technicals *models.TechnicalRecord) ([]byte, error)
}
