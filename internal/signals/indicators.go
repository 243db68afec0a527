// Package signals provides technical indicator calculations over OHLCV
// series. Series are chronological, oldest bar first; every indicator
// reports the most recent value of its rolling computation and returns nil
// when the series is too short.
package signals

import (
	"fmt"
	"math"
	"sort"

	"github.com/bobmcallan/scry/internal/models"
)

// ValidateSeries rejects series that violate the input contract: bars must
// be chronological and prices finite and non-negative. Short series are not
// an error; they simply yield nil indicators.
func ValidateSeries(bars []models.OHLCVBar) error {
	for i, b := range bars {
		for _, v := range [4]float64{b.Open, b.High, b.Low, b.Close} {
			if math.IsNaN(v) || math.IsInf(v, 0) || v < 0 {
				return fmt.Errorf("bar %d has non-finite or negative price: %w", i, models.ErrInvalidInput)
			}
		}
		if i > 0 && !bars[i-1].Date.Before(b.Date) {
			return fmt.Errorf("bar %d is not after bar %d: series must be chronological: %w", i, i-1, models.ErrInvalidInput)
		}
	}
	return nil
}

func closes(bars []models.OHLCVBar) []float64 {
	out := make([]float64, len(bars))
	for i, b := range bars {
		out[i] = b.Close
	}
	return out
}

// SMA returns the simple moving average of the last period closes
func SMA(bars []models.OHLCVBar, period int) *float64 {
	if period <= 0 || len(bars) < period {
		return nil
	}
	sum := 0.0
	for _, b := range bars[len(bars)-period:] {
		sum += b.Close
	}
	v := sum / float64(period)
	return &v
}

// EMA returns the exponential moving average of closes with the standard
// 2/(n+1) smoothing, seeded with the SMA of the first period values
func EMA(bars []models.OHLCVBar, period int) *float64 {
	series := emaSeries(closes(bars), period)
	if len(series) == 0 {
		return nil
	}
	v := series[len(series)-1]
	return &v
}

// emaSeries computes the running EMA over values; the result starts at index
// period-1 of the input (earlier values have no EMA).
func emaSeries(values []float64, period int) []float64 {
	if period <= 0 || len(values) < period {
		return nil
	}
	k := 2.0 / float64(period+1)

	seed := 0.0
	for _, v := range values[:period] {
		seed += v
	}
	seed /= float64(period)

	out := make([]float64, 0, len(values)-period+1)
	out = append(out, seed)
	ema := seed
	for _, v := range values[period:] {
		ema = (v-ema)*k + ema
		out = append(out, ema)
	}
	return out
}

// RSI returns the relative strength index over the trailing window.
// When the average loss is zero the ratio is undefined: all-gain windows
// read 100, flat windows read a neutral 50.
func RSI(bars []models.OHLCVBar, period int) *float64 {
	if period <= 0 || len(bars) < period+1 {
		return nil
	}

	var gains, losses float64
	recent := bars[len(bars)-period-1:]
	for i := 1; i < len(recent); i++ {
		change := recent[i].Close - recent[i-1].Close
		if change > 0 {
			gains += change
		} else {
			losses -= change
		}
	}

	avgGain := gains / float64(period)
	avgLoss := losses / float64(period)

	if avgLoss == 0 {
		if avgGain > 0 {
			v := 100.0
			return &v
		}
		v := 50.0
		return &v
	}

	rs := avgGain / avgLoss
	v := 100 - (100 / (1 + rs))
	return &v
}

// MACD returns the MACD line (EMA12-EMA26), its EMA9 signal line, and the
// histogram, all at the most recent bar
func MACD(bars []models.OHLCVBar, fastPeriod, slowPeriod, signalPeriod int) (macd, signal, histogram *float64) {
	values := closes(bars)
	if len(values) < slowPeriod+signalPeriod-1 {
		return nil, nil, nil
	}

	fast := emaSeries(values, fastPeriod)
	slow := emaSeries(values, slowPeriod)

	// Align: slow starts (slowPeriod-fastPeriod) elements later than fast
	offset := slowPeriod - fastPeriod
	macdLine := make([]float64, len(slow))
	for i := range slow {
		macdLine[i] = fast[i+offset] - slow[i]
	}

	signalLine := emaSeries(macdLine, signalPeriod)
	if len(signalLine) == 0 {
		return nil, nil, nil
	}

	m := macdLine[len(macdLine)-1]
	s := signalLine[len(signalLine)-1]
	h := m - s
	return &m, &s, &h
}

// Bollinger returns the 2-sigma bands around the period SMA plus the band
// width as a percentage of the middle band
func Bollinger(bars []models.OHLCVBar, period int, sigmas float64) (upper, middle, lower, width *float64) {
	mid := SMA(bars, period)
	if mid == nil {
		return nil, nil, nil, nil
	}

	// Sample standard deviation of the trailing window
	window := bars[len(bars)-period:]
	sumSq := 0.0
	for _, b := range window {
		d := b.Close - *mid
		sumSq += d * d
	}
	std := math.Sqrt(sumSq / float64(period-1))

	u := *mid + sigmas*std
	l := *mid - sigmas*std
	upper, middle, lower = &u, mid, &l

	if *mid != 0 {
		w := (u - l) / *mid * 100
		width = &w
	}
	return upper, middle, lower, width
}

// Stochastic returns %K at the most recent bar and %D, the 3-period SMA of
// %K. A flat high-low range yields nil.
func Stochastic(bars []models.OHLCVBar, period, smooth int) (k, d *float64) {
	ks := stochasticSeries(bars, period, smooth)
	if len(ks) == 0 {
		return nil, nil
	}

	last := ks[len(ks)-1]
	k = &last

	if len(ks) >= smooth {
		sum := 0.0
		for _, v := range ks[len(ks)-smooth:] {
			sum += v
		}
		avg := sum / float64(smooth)
		d = &avg
	}
	return k, d
}

// stochasticSeries returns the trailing smooth+1 %K values (enough to smooth
// %D); windows with a flat range are dropped.
func stochasticSeries(bars []models.OHLCVBar, period, smooth int) []float64 {
	if len(bars) < period {
		return nil
	}

	n := smooth + 1
	if avail := len(bars) - period + 1; avail < n {
		n = avail
	}

	out := make([]float64, 0, n)
	for i := len(bars) - n; i < len(bars); i++ {
		window := bars[i-period+1 : i+1]
		lo, hi := math.MaxFloat64, -math.MaxFloat64
		for _, b := range window {
			if b.Low < lo {
				lo = b.Low
			}
			if b.High > hi {
				hi = b.High
			}
		}
		if hi == lo {
			continue
		}
		out = append(out, 100*(bars[i].Close-lo)/(hi-lo))
	}
	return out
}

// WilliamsR returns Williams %R over the trailing window, nil on a flat range
func WilliamsR(bars []models.OHLCVBar, period int) *float64 {
	if len(bars) < period {
		return nil
	}

	window := bars[len(bars)-period:]
	lo, hi := math.MaxFloat64, -math.MaxFloat64
	for _, b := range window {
		if b.Low < lo {
			lo = b.Low
		}
		if b.High > hi {
			hi = b.High
		}
	}
	if hi == lo {
		return nil
	}

	v := -100 * (hi - bars[len(bars)-1].Close) / (hi - lo)
	return &v
}

// ATR returns the average true range over the trailing window
func ATR(bars []models.OHLCVBar, period int) *float64 {
	if len(bars) < period+1 {
		return nil
	}

	recent := bars[len(bars)-period-1:]
	trSum := 0.0
	for i := 1; i < len(recent); i++ {
		high := recent[i].High
		low := recent[i].Low
		prevClose := recent[i-1].Close

		tr := math.Max(high-low, math.Max(math.Abs(high-prevClose), math.Abs(low-prevClose)))
		trSum += tr
	}

	v := trSum / float64(period)
	return &v
}

// OBV returns the on-balance volume: the cumulative sum of volume signed by
// the close-to-close direction
func OBV(bars []models.OHLCVBar) *float64 {
	if len(bars) < 2 {
		return nil
	}

	obv := 0.0
	for i := 1; i < len(bars); i++ {
		switch {
		case bars[i].Close > bars[i-1].Close:
			obv += float64(bars[i].Volume)
		case bars[i].Close < bars[i-1].Close:
			obv -= float64(bars[i].Volume)
		}
	}
	return &obv
}

// CMF returns the Chaikin money flow over the trailing window: rolling
// money-flow volume over rolling volume. Flat bars contribute no money flow;
// a zero-volume window yields nil.
func CMF(bars []models.OHLCVBar, period int) *float64 {
	if len(bars) < period {
		return nil
	}

	var mfvSum, volSum float64
	for _, b := range bars[len(bars)-period:] {
		volSum += float64(b.Volume)
		if b.High == b.Low {
			continue
		}
		multiplier := ((b.Close - b.Low) - (b.High - b.Close)) / (b.High - b.Low)
		mfvSum += multiplier * float64(b.Volume)
	}
	if volSum == 0 {
		return nil
	}

	v := mfvSum / volSum
	return &v
}

// SupportResistance returns the primary levels (trailing min low / max high)
// and secondary levels (25th / 75th percentile of the combined high+low
// series) over the lookback window
func SupportResistance(bars []models.OHLCVBar, lookback int) (support1, support2, resistance1, resistance2 *float64) {
	if len(bars) == 0 {
		return nil, nil, nil, nil
	}
	if len(bars) < lookback {
		lookback = len(bars)
	}

	window := bars[len(bars)-lookback:]
	levels := make([]float64, 0, 2*lookback)
	lo, hi := math.MaxFloat64, -math.MaxFloat64
	for _, b := range window {
		if b.Low < lo {
			lo = b.Low
		}
		if b.High > hi {
			hi = b.High
		}
		levels = append(levels, b.High, b.Low)
	}

	sort.Float64s(levels)
	s2 := percentile(levels, 0.25)
	r2 := percentile(levels, 0.75)

	return &lo, &s2, &hi, &r2
}

// percentile computes a linearly interpolated quantile of sorted values
func percentile(sorted []float64, q float64) float64 {
	if len(sorted) == 1 {
		return sorted[0]
	}
	pos := q * float64(len(sorted)-1)
	lower := int(math.Floor(pos))
	upper := int(math.Ceil(pos))
	if lower == upper {
		return sorted[lower]
	}
	frac := pos - float64(lower)
	return sorted[lower]*(1-frac) + sorted[upper]*frac
}
