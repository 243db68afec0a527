package export

import (
	"bytes"
	"fmt"
	"time"

	"github.com/wcharczuk/go-chart/v2"
	"github.com/wcharczuk/go-chart/v2/drawing"

	"github.com/bobmcallan/scry/internal/models"
)

// smaOverlayPeriods are the moving averages drawn over the price series
var smaOverlayPeriods = []struct {
	period int
	color  string
}{
	{20, "f59e0b"}, // amber-500
	{50, "9ca3af"}, // gray-400
}

// RenderChart renders a daily close chart with moving-average overlays and,
// when available, support and resistance guide lines. Returns raw PNG bytes.
func (s *Service) RenderChart(ticker string, bars []models.OHLCVBar, technicals *models.TechnicalRecord) ([]byte, error) {
	if len(bars) < 2 {
		return nil, fmt.Errorf("need at least 2 bars, got %d", len(bars))
	}

	xValues := make([]time.Time, len(bars))
	closeY := make([]float64, len(bars))
	for i, b := range bars {
		xValues[i] = b.Date
		closeY[i] = b.Close
	}

	series := []chart.Series{
		chart.TimeSeries{
			Name: "Close",
			Style: chart.Style{
				StrokeColor: drawing.ColorFromHex("2563eb"), // blue-600
				StrokeWidth: 2.0,
			},
			XValues: xValues,
			YValues: closeY,
		},
	}

	for _, overlay := range smaOverlayPeriods {
		if len(bars) < overlay.period {
			continue
		}
		series = append(series, chart.TimeSeries{
			Name: fmt.Sprintf("SMA %d", overlay.period),
			Style: chart.Style{
				StrokeColor:     drawing.ColorFromHex(overlay.color),
				StrokeWidth:     1.5,
				StrokeDashArray: []float64{5.0, 3.0},
			},
			XValues: xValues[overlay.period-1:],
			YValues: rollingMean(closeY, overlay.period),
		})
	}

	if technicals != nil {
		if technicals.Support1 != nil {
			series = append(series, guideLine("Support", *technicals.Support1, "16a34a", xValues))
		}
		if technicals.Resistance1 != nil {
			series = append(series, guideLine("Resistance", *technicals.Resistance1, "dc2626", xValues))
		}
	}

	graph := chart.Chart{
		Title:  ticker,
		Width:  900,
		Height: 400,
		Background: chart.Style{
			Padding: chart.Box{Top: 40, Left: 10, Right: 20, Bottom: 10},
		},
		XAxis: chart.XAxis{
			TickPosition: chart.TickPositionBetweenTicks,
			ValueFormatter: func(v interface{}) string {
				if t, ok := v.(float64); ok {
					return chart.TimeFromFloat64(t).Format("Jan 02")
				}
				return ""
			},
		},
		YAxis: chart.YAxis{
			ValueFormatter: func(v interface{}) string {
				if f, ok := v.(float64); ok {
					return fmt.Sprintf("$%.2f", f)
				}
				return ""
			},
		},
		Series: series,
	}

	graph.Elements = []chart.Renderable{
		chart.LegendLeft(&graph),
	}

	var buf bytes.Buffer
	if err := graph.Render(chart.PNG, &buf); err != nil {
		return nil, fmt.Errorf("chart render failed: %w", err)
	}

	s.logger.Debug().Str("ticker", ticker).Int("bars", len(bars)).Msg("Chart rendered")
	return buf.Bytes(), nil
}

// rollingMean returns the trailing mean of values over the period; the
// result has len(values)-period+1 points aligned to the window ends
func rollingMean(values []float64, period int) []float64 {
	out := make([]float64, 0, len(values)-period+1)
	sum := 0.0
	for i, v := range values {
		sum += v
		if i >= period {
			sum -= values[i-period]
		}
		if i >= period-1 {
			out = append(out, sum/float64(period))
		}
	}
	return out
}

// guideLine is a constant horizontal series spanning the full date range
func guideLine(name string, level float64, colorHex string, xValues []time.Time) chart.TimeSeries {
	return chart.TimeSeries{
		Name: fmt.Sprintf("%s $%.2f", name, level),
		Style: chart.Style{
			StrokeColor:     drawing.ColorFromHex(colorHex),
			StrokeWidth:     1.0,
			StrokeDashArray: []float64{2.0, 4.0},
		},
		XValues: []time.Time{xValues[0], xValues[len(xValues)-1]},
		YValues: []float64{level, level},
	}
}
