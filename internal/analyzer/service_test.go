package analyzer

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bobmcallan/scry/internal/common"
	"github.com/bobmcallan/scry/internal/interfaces"
	"github.com/bobmcallan/scry/internal/models"
)

type fakeProvider struct {
	name  string
	raw   string
	err   error
	calls int
}

func (f *fakeProvider) Provider() string { return f.name }

func (f *fakeProvider) GetSnapshot(_ context.Context, ticker string) (*models.ProviderPayload, error) {
	f.calls++
	if f.err != nil {
		return nil, f.err
	}
	return models.NewPayload(f.name, ticker, []byte(f.raw)), nil
}

type fakeHistory struct {
	bars []models.OHLCVBar
	err  error
}

func (f *fakeHistory) GetHistory(_ context.Context, _ string, _ ...interfaces.HistoryOption) ([]models.OHLCVBar, error) {
	return f.bars, f.err
}

type fakePredictor struct {
	prob *float64
	err  error
}

func (f *fakePredictor) ProbUp30d(_ context.Context, _ string, _ []models.OHLCVBar) (*float64, error) {
	return f.prob, f.err
}

type memoryCache struct {
	payloads map[string]*models.ProviderPayload
	history  map[string][]models.OHLCVBar
}

func newMemoryCache() *memoryCache {
	return &memoryCache{
		payloads: map[string]*models.ProviderPayload{},
		history:  map[string][]models.OHLCVBar{},
	}
}

func (m *memoryCache) GetPayload(_ context.Context, provider, ticker string) (*models.ProviderPayload, error) {
	return m.payloads[provider+"/"+ticker], nil
}

func (m *memoryCache) SavePayload(_ context.Context, p *models.ProviderPayload) error {
	m.payloads[p.Provider+"/"+p.Ticker] = p
	return nil
}

func (m *memoryCache) GetHistory(_ context.Context, ticker string) ([]models.OHLCVBar, error) {
	return m.history[ticker], nil
}

func (m *memoryCache) SaveHistory(_ context.Context, ticker string, bars []models.OHLCVBar) error {
	m.history[ticker] = bars
	return nil
}

func trendBars(base, step float64, count int) []models.OHLCVBar {
	start := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	bars := make([]models.OHLCVBar, count)
	price := base
	for i := range bars {
		price += step
		bars[i] = models.OHLCVBar{
			Date:   start.AddDate(0, 0, i),
			Open:   price - 0.2,
			High:   price + 1,
			Low:    price - 1,
			Close:  price,
			Volume: 100000,
		}
	}
	return bars
}

const strongYahooPayload = `{
	"sector": "Technology",
	"regularMarketPrice": 182.50,
	"targetMeanPrice": 210.0,
	"trailingPE": 18.0,
	"pegRatio": 0.9,
	"returnOnEquity": 0.25,
	"debtToEquity": 0.25,
	"revenueGrowth": 0.22,
	"profitMargins": 0.24,
	"freeCashflow": 90000000000,
	"sharesOutstanding": 15000000000,
	"marketCap": 2800000000000
}`

func ceoPurchase(ticker string) models.InsiderTrade {
	return models.InsiderTrade{
		Date:         time.Date(2026, 8, 28, 0, 0, 0, 0, time.UTC),
		Ticker:       ticker,
		InsiderName:  "Cook Timothy",
		InsiderTitle: "CEO",
		TradeType:    models.TradePurchase,
		Amount:       5000000,
	}
}

func TestAnalyzeTradeRequiresTicker(t *testing.T) {
	svc := NewService(common.NewSilentLogger())
	_, err := svc.AnalyzeTrade(context.Background(), models.InsiderTrade{})
	assert.ErrorIs(t, err, models.ErrInvalidInput)
}

func TestAnalyzeTradeFullPipeline(t *testing.T) {
	yahoo := &fakeProvider{name: models.ProviderYahoo, raw: strongYahooPayload}
	finviz := &fakeProvider{name: models.ProviderFinviz, raw: `{"Target Price": "205.00"}`}

	svc := NewService(common.NewSilentLogger(),
		WithProviders(yahoo, finviz),
		WithHistory(&fakeHistory{bars: trendBars(100, 0.5, 120)}),
	)

	scored, err := svc.AnalyzeTrade(context.Background(), ceoPurchase("aapl"))
	require.NoError(t, err)

	assert.NotEmpty(t, scored.ID)
	assert.Equal(t, "AAPL", scored.Trade.Ticker)
	assert.Equal(t, "Technology", scored.Trade.Sector)

	require.NotNil(t, scored.CurrentPrice)
	assert.Equal(t, 182.50, *scored.CurrentPrice)

	require.NotNil(t, scored.Fundamentals)
	require.NotNil(t, scored.MarketCap)
	assert.Equal(t, 2.8e12, *scored.MarketCap)

	require.NotNil(t, scored.Technicals)
	assert.NotNil(t, scored.Technicals.RSI14)

	require.NotNil(t, scored.FundamentalScore)
	assert.Greater(t, *scored.FundamentalScore, 70.0)
	require.NotNil(t, scored.TechnicalScore)
	require.NotNil(t, scored.InsiderScore)
	assert.Greater(t, *scored.InsiderScore, 70.0)
	require.NotNil(t, scored.SentimentScore)

	assert.Greater(t, scored.CompositeScore, 65.0)
	assert.GreaterOrEqual(t, scored.Recommendation, models.Buy)
	assert.NotEmpty(t, scored.Reasons)

	require.NotNil(t, scored.TargetPrices)
	assert.Equal(t, 210.0, scored.TargetPrices[models.ProviderYahoo])
	assert.Equal(t, 205.0, scored.TargetPrices[models.ProviderFinviz])
	assert.NotNil(t, scored.FairValue)
}

func TestAnalyzeTradeNoData(t *testing.T) {
	svc := NewService(common.NewSilentLogger())

	scored, err := svc.AnalyzeTrade(context.Background(), ceoPurchase("AAPL"))
	require.NoError(t, err)

	assert.Nil(t, scored.Fundamentals)
	assert.Nil(t, scored.Technicals)
	assert.Nil(t, scored.FundamentalScore)
	assert.Nil(t, scored.TechnicalScore)
	assert.Nil(t, scored.CurrentPrice)
	assert.Nil(t, scored.TargetPrices)
	assert.Nil(t, scored.FairValue)

	// Insider and sentiment components still fire
	require.NotNil(t, scored.InsiderScore)
	require.NotNil(t, scored.SentimentScore)
	assert.Greater(t, scored.CompositeScore, 0.0)
}

func TestAnalyzeTradeProviderFailureIsNonFatal(t *testing.T) {
	bad := &fakeProvider{name: models.ProviderYahoo, err: errors.New("boom")}
	finviz := &fakeProvider{name: models.ProviderFinviz, raw: `{"Market Cap": "1.5B"}`}

	svc := NewService(common.NewSilentLogger(), WithProviders(bad, finviz))

	scored, err := svc.AnalyzeTrade(context.Background(), ceoPurchase("XYZ"))
	require.NoError(t, err)

	require.NotNil(t, scored.MarketCap)
	assert.Equal(t, 1.5e9, *scored.MarketCap)
}

func TestAnalyzeTradeShortHistoryNeutralTechnicals(t *testing.T) {
	svc := NewService(common.NewSilentLogger(),
		WithHistory(&fakeHistory{bars: trendBars(100, 0.5, 20)}),
	)

	scored, err := svc.AnalyzeTrade(context.Background(), ceoPurchase("AAPL"))
	require.NoError(t, err)

	// Under 50 bars the record exists with every indicator nil, and the
	// technical score holds at its neutral base rather than dropping out
	// of the composite.
	require.NotNil(t, scored.Technicals)
	assert.Nil(t, scored.Technicals.SMA20)
	assert.Nil(t, scored.Technicals.RSI14)
	require.NotNil(t, scored.TechnicalScore)
	assert.Equal(t, 50.0, *scored.TechnicalScore)

	// The short series still supplies a last-close price
	require.NotNil(t, scored.CurrentPrice)
}

func TestAnalyzeTradeInvalidHistoryDropped(t *testing.T) {
	bars := trendBars(100, 0.5, 60)
	bars[10].Close = -5 // negative price fails validation

	svc := NewService(common.NewSilentLogger(), WithHistory(&fakeHistory{bars: bars}))

	scored, err := svc.AnalyzeTrade(context.Background(), ceoPurchase("AAPL"))
	require.NoError(t, err)
	assert.Nil(t, scored.Technicals)
	assert.Nil(t, scored.CurrentPrice)
}

func TestAnalyzeTradeUsesCache(t *testing.T) {
	yahoo := &fakeProvider{name: models.ProviderYahoo, raw: strongYahooPayload}
	cache := newMemoryCache()

	svc := NewService(common.NewSilentLogger(),
		WithProviders(yahoo),
		WithCache(cache),
	)
	ctx := context.Background()

	_, err := svc.AnalyzeTrade(ctx, ceoPurchase("AAPL"))
	require.NoError(t, err)
	_, err = svc.AnalyzeTrade(ctx, ceoPurchase("AAPL"))
	require.NoError(t, err)

	assert.Equal(t, 1, yahoo.calls, "second run served from cache")
}

func TestAnalyzeTradePredictorSignal(t *testing.T) {
	svc := NewService(common.NewSilentLogger(),
		WithPredictor(&fakePredictor{prob: models.Float(0.85)}),
	)

	scored, err := svc.AnalyzeTrade(context.Background(), ceoPurchase("AAPL"))
	require.NoError(t, err)

	require.NotNil(t, scored.ProbUp30d)
	assert.Equal(t, 0.85, *scored.ProbUp30d)
	assert.Contains(t, scored.Reasons, "High probability of price appreciation")
}

func TestAnalyzeTradePredictorFailureSkipped(t *testing.T) {
	svc := NewService(common.NewSilentLogger(),
		WithPredictor(&fakePredictor{err: errors.New("model offline")}),
	)

	scored, err := svc.AnalyzeTrade(context.Background(), ceoPurchase("AAPL"))
	require.NoError(t, err)
	assert.Nil(t, scored.ProbUp30d)
}

func TestAnalyzeTradesSkipsFailures(t *testing.T) {
	svc := NewService(common.NewSilentLogger())

	trades := []models.InsiderTrade{
		ceoPurchase("AAPL"),
		{}, // no ticker, fails
		ceoPurchase("MSFT"),
	}

	scored, err := svc.AnalyzeTrades(context.Background(), trades)
	require.NoError(t, err)
	require.Len(t, scored, 2)
	assert.Equal(t, "AAPL", scored[0].Trade.Ticker)
	assert.Equal(t, "MSFT", scored[1].Trade.Ticker)
}
