// Package signals provides signal computation
package signals

import (
	"time"

	"github.com/bobmcallan/scry/internal/models"
)

// MinBars is the series length below which no indicators are computed
const MinBars = 50

// Pattern labels appended to the technical record. Informational only;
// scoring counts them but never parses them.
const (
	PatternUptrendMomentum    = "Uptrend with momentum"
	PatternOversoldBounce     = "Oversold bounce potential"
	PatternMACDBullishCross   = "MACD bullish crossover"
	PatternDowntrendMomentum  = "Downtrend with momentum"
	PatternOverboughtPullback = "Overbought correction potential"
	PatternMACDBearishCross   = "MACD bearish crossover"
)

// Computer derives a TechnicalRecord from one OHLCV snapshot
type Computer struct{}

// NewComputer creates a new indicator computer
func NewComputer() *Computer {
	return &Computer{}
}

// Compute calculates the full indicator battery. Series shorter than 50 bars
// produce an all-nil record; that is expected data scarcity, not an error.
func (c *Computer) Compute(ticker string, bars []models.OHLCVBar) *models.TechnicalRecord {
	rec := &models.TechnicalRecord{
		Ticker: ticker,
		Date:   time.Now(),
	}

	if len(bars) < MinBars {
		return rec
	}

	rec.SMA5 = SMA(bars, 5)
	rec.SMA10 = SMA(bars, 10)
	rec.SMA20 = SMA(bars, 20)
	rec.SMA50 = SMA(bars, 50)
	if len(bars) >= 200 {
		rec.SMA200 = SMA(bars, 200)
	}

	rec.EMA12 = EMA(bars, 12)
	rec.EMA26 = EMA(bars, 26)
	rec.EMA50 = EMA(bars, 50)

	rec.RSI14 = RSI(bars, 14)
	rec.RSI21 = RSI(bars, 21)

	rec.MACD, rec.MACDSignal, rec.MACDHistogram = MACD(bars, 12, 26, 9)

	rec.BBUpper, rec.BBMiddle, rec.BBLower, rec.BBWidth = Bollinger(bars, 20, 2)

	rec.StochK, rec.StochD = Stochastic(bars, 14, 3)
	rec.WilliamsR = WilliamsR(bars, 14)
	rec.ATR = ATR(bars, 14)
	rec.OBV = OBV(bars)
	rec.CMF = CMF(bars, 20)

	rec.Support1, rec.Support2, rec.Resistance1, rec.Resistance2 = SupportResistance(bars, 50)

	c.detectPatterns(rec, bars[len(bars)-1].Close)

	return rec
}

// detectPatterns appends the simple bullish/bearish pattern labels
func (c *Computer) detectPatterns(rec *models.TechnicalRecord, price float64) {
	if rec.SMA20 != nil && rec.RSI14 != nil {
		if price > *rec.SMA20 && *rec.RSI14 < 70 {
			rec.BullishPatterns = append(rec.BullishPatterns, PatternUptrendMomentum)
		}
		if price < *rec.SMA20 && *rec.RSI14 > 30 {
			rec.BearishPatterns = append(rec.BearishPatterns, PatternDowntrendMomentum)
		}
	}

	if rec.BBLower != nil && price < *rec.BBLower {
		rec.BullishPatterns = append(rec.BullishPatterns, PatternOversoldBounce)
	}
	if rec.BBUpper != nil && price > *rec.BBUpper {
		rec.BearishPatterns = append(rec.BearishPatterns, PatternOverboughtPullback)
	}

	if rec.MACD != nil && rec.MACDSignal != nil {
		if *rec.MACD > *rec.MACDSignal && *rec.MACD > 0 {
			rec.BullishPatterns = append(rec.BullishPatterns, PatternMACDBullishCross)
		}
		if *rec.MACD < *rec.MACDSignal && *rec.MACD < 0 {
			rec.BearishPatterns = append(rec.BearishPatterns, PatternMACDBearishCross)
		}
	}
}
