package scoring

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bobmcallan/scry/internal/models"
)

func TestFundamentalScoreEmptyRecordIsBase(t *testing.T) {
	score := FundamentalScore(&models.FundamentalRecord{Ticker: "TEST"})
	require.NotNil(t, score)
	assert.Equal(t, 50.0, *score)
}

func TestFundamentalScoreNilRecord(t *testing.T) {
	assert.Nil(t, FundamentalScore(nil))
}

func TestFundamentalScoreStrongCompanyClamps(t *testing.T) {
	// Every rule fires positive: 50+15+15+15+10+10+10+5 = 130, clamped to 100
	rec := &models.FundamentalRecord{
		Ticker:        "TEST",
		PERatio:       models.Float(12),
		PEGRatio:      models.Float(0.8),
		ROE:           models.Float(0.25),
		DebtToEquity:  models.Float(0.2),
		RevenueGrowth: models.Float(0.25),
		NetMargin:     models.Float(0.22),
		FreeCashFlow:  models.Float(1),
	}

	score := FundamentalScore(rec)
	require.NotNil(t, score)
	assert.Equal(t, 100.0, *score)
}

func TestFundamentalScoreWeakCompany(t *testing.T) {
	// 50-10-10-15-15-10-15-10 = -35, clamped to 0
	rec := &models.FundamentalRecord{
		Ticker:        "TEST",
		PERatio:       models.Float(55),
		PEGRatio:      models.Float(3),
		ROE:           models.Float(-0.05),
		DebtToEquity:  models.Float(4),
		RevenueGrowth: models.Float(-0.08),
		NetMargin:     models.Float(-0.12),
		FreeCashFlow:  models.Float(-2e6),
	}

	score := FundamentalScore(rec)
	require.NotNil(t, score)
	assert.Equal(t, 0.0, *score)
}

func TestFundamentalScoreSingleRules(t *testing.T) {
	tests := []struct {
		name     string
		rec      *models.FundamentalRecord
		expected float64
	}{
		{"pe mid band", &models.FundamentalRecord{PERatio: models.Float(20)}, 60},
		{"pe upper band", &models.FundamentalRecord{PERatio: models.Float(30)}, 55},
		{"pe dead zone 36-40", &models.FundamentalRecord{PERatio: models.Float(38)}, 50},
		{"peg moderate", &models.FundamentalRecord{PEGRatio: models.Float(1.2)}, 60},
		{"roe mid", &models.FundamentalRecord{ROE: models.Float(0.17)}, 60},
		{"debt moderate", &models.FundamentalRecord{DebtToEquity: models.Float(0.5)}, 55},
		{"fcf zero is penalized", &models.FundamentalRecord{FreeCashFlow: models.Float(0)}, 40},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			score := FundamentalScore(tt.rec)
			require.NotNil(t, score)
			assert.Equal(t, tt.expected, *score)
		})
	}
}

func TestTechnicalScoreEmptyRecordIsBase(t *testing.T) {
	score := TechnicalScore(&models.TechnicalRecord{Ticker: "TEST"})
	require.NotNil(t, score)
	assert.Equal(t, 50.0, *score)
}

func TestTechnicalScoreNilRecord(t *testing.T) {
	assert.Nil(t, TechnicalScore(nil))
}

func TestTechnicalScoreBullishSetup(t *testing.T) {
	// RSI in band +10, MACD above signal and zero +15, SMA20>SMA50 +10,
	// two bullish patterns +10: 50+45 = 95
	rec := &models.TechnicalRecord{
		RSI14:           models.Float(55),
		MACD:            models.Float(1.2),
		MACDSignal:      models.Float(0.8),
		SMA20:           models.Float(105),
		SMA50:           models.Float(100),
		BullishPatterns: []string{"Uptrend with momentum", "MACD bullish crossover"},
	}

	score := TechnicalScore(rec)
	require.NotNil(t, score)
	assert.Equal(t, 95.0, *score)
}

func TestTechnicalScoreBearishSetup(t *testing.T) {
	// RSI overbought -10, MACD below signal -10, SMA20<SMA50 -10,
	// one bearish pattern -5: 50-35 = 15
	rec := &models.TechnicalRecord{
		RSI14:           models.Float(78),
		MACD:            models.Float(-0.5),
		MACDSignal:      models.Float(0.2),
		SMA20:           models.Float(95),
		SMA50:           models.Float(100),
		BearishPatterns: []string{"Downtrend with momentum"},
	}

	score := TechnicalScore(rec)
	require.NotNil(t, score)
	assert.Equal(t, 15.0, *score)
}

func TestTechnicalScoreOversoldIsOpportunity(t *testing.T) {
	score := TechnicalScore(&models.TechnicalRecord{RSI14: models.Float(25)})
	require.NotNil(t, score)
	assert.Equal(t, 65.0, *score)
}

func TestSentimentScore(t *testing.T) {
	t.Run("nil record", func(t *testing.T) {
		assert.Nil(t, SentimentScore(nil))
	})

	t.Run("empty record is base", func(t *testing.T) {
		score := SentimentScore(&models.SentimentRecord{})
		require.NotNil(t, score)
		assert.Equal(t, 50.0, *score)
	})

	t.Run("positive components add linearly", func(t *testing.T) {
		rec := &models.SentimentRecord{
			OverallSentiment: models.Float(0.4), // +10
			AnalystSentiment: models.Float(0.5), // +7.5
			NewsSentiment:    models.Float(0.2), // +2
		}
		score := SentimentScore(rec)
		require.NotNil(t, score)
		assert.InDelta(t, 69.5, *score, 1e-9)
	})

	t.Run("volatile sentiment is penalized", func(t *testing.T) {
		rec := &models.SentimentRecord{
			OverallSentiment:    models.Float(0),
			SentimentVolatility: models.Float(0.8),
		}
		score := SentimentScore(rec)
		require.NotNil(t, score)
		assert.Equal(t, 40.0, *score)
	})
}

func TestInsiderScoreCEOPurchase(t *testing.T) {
	// Purchase +20, significance 2M/500M = 0.004 > 0.001 +15, CEO title +10
	trade := models.InsiderTrade{
		Ticker:       "TEST",
		TradeType:    models.TradePurchase,
		InsiderTitle: "CEO & Director",
		Amount:       2_000_000,
	}

	score := InsiderScore(trade, models.Float(500_000_000))
	require.NotNil(t, score)
	assert.Equal(t, 95.0, *score)
}

func TestInsiderScoreSale(t *testing.T) {
	// Sale -10, |amount| significance still counts: 0.002 > 0.001 +15
	trade := models.InsiderTrade{
		Ticker:       "TEST",
		TradeType:    models.TradeSale,
		InsiderTitle: "VP Engineering",
		Amount:       -1_000_000,
	}

	score := InsiderScore(trade, models.Float(500_000_000))
	require.NotNil(t, score)
	assert.Equal(t, 55.0, *score)
}

func TestInsiderScoreTitleMatchIsCaseInsensitive(t *testing.T) {
	trade := models.InsiderTrade{
		TradeType:    models.TradePurchase,
		InsiderTitle: "Chairman of the Board",
	}

	score := InsiderScore(trade, nil)
	require.NotNil(t, score)
	assert.Equal(t, 80.0, *score) // 50+20+10, no market cap so no significance
}

func TestInsiderScoreSmallTradeNoSignificance(t *testing.T) {
	trade := models.InsiderTrade{
		TradeType: models.TradePurchase,
		Amount:    10_000,
	}

	score := InsiderScore(trade, models.Float(5e11))
	require.NotNil(t, score)
	assert.Equal(t, 70.0, *score)
}
