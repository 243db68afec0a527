// Package export renders scored trades into CSV reports and price charts.
package export

import (
	"encoding/csv"
	"fmt"
	"io"
	"strings"

	"github.com/bobmcallan/scry/internal/common"
	"github.com/bobmcallan/scry/internal/interfaces"
	"github.com/bobmcallan/scry/internal/models"
)

// csvHeader is the report column set
var csvHeader = []string{
	"Date", "Ticker", "Sector", "Insider", "Type", "Amount",
	"Current Price", "Fair (Yahoo)", "Fair (Finviz)", "Fair (StockAnalysis)",
	"Fair Avg", "Rec.", "Score",
}

// Service implements interfaces.ExportService
type Service struct {
	logger *common.Logger
}

var _ interfaces.ExportService = (*Service)(nil)

// NewService creates an export service
func NewService(logger *common.Logger) *Service {
	return &Service{logger: logger}
}

// WriteCSV streams scored trades as a CSV report. Missing values render
// as N/A rather than empty cells.
func (s *Service) WriteCSV(w io.Writer, trades []*models.ScoredTrade) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(csvHeader); err != nil {
		return fmt.Errorf("write csv header: %w", err)
	}

	for _, t := range trades {
		row := []string{
			t.Trade.Date.Format("2006-01-02 15:04:05"),
			t.Trade.Ticker,
			t.Trade.Sector,
			insiderLabel(t.Trade),
			tradeTypeLabel(t.Trade.TradeType),
			money(t.Trade.Amount),
			priceCell(t.CurrentPrice),
			targetCell(t.TargetPrices, models.ProviderYahoo),
			targetCell(t.TargetPrices, models.ProviderFinviz),
			targetCell(t.TargetPrices, models.ProviderStockAnalysis),
			priceCell(t.FairAvg()),
			t.Recommendation.String(),
			fmt.Sprintf("%.1f", t.CompositeScore),
		}
		if err := cw.Write(row); err != nil {
			return fmt.Errorf("write csv row for %s: %w", t.Trade.Ticker, err)
		}
	}

	cw.Flush()
	if err := cw.Error(); err != nil {
		return fmt.Errorf("flush csv: %w", err)
	}
	s.logger.Debug().Int("rows", len(trades)).Msg("CSV report written")
	return nil
}

func insiderLabel(t models.InsiderTrade) string {
	if t.InsiderTitle == "" {
		return t.InsiderName
	}
	return fmt.Sprintf("%s (%s)", t.InsiderName, t.InsiderTitle)
}

func tradeTypeLabel(tt models.TradeType) string {
	parts := strings.Split(string(tt), "_")
	for i, p := range parts {
		if p != "" {
			parts[i] = strings.ToUpper(p[:1]) + p[1:]
		}
	}
	return strings.Join(parts, " ")
}

func priceCell(v *float64) string {
	if v == nil {
		return "N/A"
	}
	return fmt.Sprintf("$%.2f", *v)
}

func targetCell(targets map[string]float64, provider string) string {
	if v, ok := targets[provider]; ok {
		return fmt.Sprintf("$%.2f", v)
	}
	return "N/A"
}

// money renders a dollar value with thousands separators, keeping the sign
// in front of the dollar symbol
func money(v float64) string {
	sign := ""
	if v < 0 {
		sign = "-"
		v = -v
	}
	s := fmt.Sprintf("%.2f", v)
	dot := strings.Index(s, ".")
	whole, frac := s[:dot], s[dot:]

	var b strings.Builder
	for i, d := range whole {
		if i > 0 && (len(whole)-i)%3 == 0 {
			b.WriteByte(',')
		}
		b.WriteRune(d)
	}
	return sign + "$" + b.String() + frac
}
