package scan

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

type fakeFeed struct {
	trades []models.InsiderTrade
	err    error
	params interfaces.FeedParams
}

func (f *fakeFeed) GetLatestTrades(_ context.Context, opts ...interfaces.FeedOption) ([]models.InsiderTrade, error) {
	for _, opt := range opts {
		opt(&f.params)
	}
	return f.trades, f.err
}

func (f *fakeFeed) GetTickerTrades(ctx context.Context, _ string, opts ...interfaces.FeedOption) ([]models.InsiderTrade, error) {
	return f.GetLatestTrades(ctx, opts...)
}

type fakeAnalyzer struct{}

func (fakeAnalyzer) AnalyzeTrade(_ context.Context, trade models.InsiderTrade) (*models.ScoredTrade, error) {
	if trade.Ticker == "" {
		return nil, models.ErrInvalidInput
	}
	return &models.ScoredTrade{
		ID:             trade.Ticker + "-scored",
		Trade:          trade,
		CompositeScore: 60,
		AnalyzedAt:     time.Now(),
	}, nil
}

func (f fakeAnalyzer) AnalyzeTrades(ctx context.Context, trades []models.InsiderTrade) ([]*models.ScoredTrade, error) {
	out := make([]*models.ScoredTrade, 0, len(trades))
	for _, t := range trades {
		scored, err := f.AnalyzeTrade(ctx, t)
		if err != nil {
			continue
		}
		out = append(out, scored)
	}
	return out, nil
}

type recordingStore struct {
	saved        []*models.ScoredTrade
	saveErr      error
	purgeCutoffs []time.Time
}

func (r *recordingStore) SaveTrade(_ context.Context, t *models.ScoredTrade) error {
	if r.saveErr != nil {
		return r.saveErr
	}
	r.saved = append(r.saved, t)
	return nil
}

func (r *recordingStore) GetTrade(context.Context, string) (*models.ScoredTrade, error) {
	return nil, errors.New("not implemented")
}

func (r *recordingStore) ListTrades(context.Context, interfaces.TradeListOptions) ([]*models.ScoredTrade, error) {
	return r.saved, nil
}

func (r *recordingStore) GetTickerTrades(context.Context, string) ([]*models.ScoredTrade, error) {
	return nil, nil
}

func (r *recordingStore) DeleteTrade(context.Context, string) error { return nil }

func (r *recordingStore) PurgeOlderThan(_ context.Context, cutoff time.Time) (int, error) {
	r.purgeCutoffs = append(r.purgeCutoffs, cutoff)
	return 1, nil
}

func (r *recordingStore) Close() error { return nil }

func purchase(ticker string) models.InsiderTrade {
	return models.InsiderTrade{
		Date:      time.Now(),
		Ticker:    ticker,
		TradeType: models.TradePurchase,
		Amount:    500000,
	}
}

func TestRunScanScoresAndPersists(t *testing.T) {
	feed := &fakeFeed{trades: []models.InsiderTrade{purchase("AAPL"), purchase("MSFT")}}
	store := &recordingStore{}
	svc := NewService(feed, fakeAnalyzer{}, store,
		common.ScanConfig{MinTrade: 100000}, common.NewSilentLogger())

	scored, err := svc.RunScan(context.Background())
	require.NoError(t, err)
	require.Len(t, scored, 2)
	assert.Len(t, store.saved, 2)

	// MinTrade propagates to the feed query
	assert.Equal(t, 100000.0, feed.params.MinAmount)
}

func TestRunScanWatchlistFilter(t *testing.T) {
	feed := &fakeFeed{trades: []models.InsiderTrade{purchase("AAPL"), purchase("MSFT"), purchase("TSLA")}}
	store := &recordingStore{}
	svc := NewService(feed, fakeAnalyzer{}, store,
		common.ScanConfig{Tickers: []string{"aapl", "TSLA"}}, common.NewSilentLogger())

	scored, err := svc.RunScan(context.Background())
	require.NoError(t, err)
	require.Len(t, scored, 2)
	assert.Equal(t, "AAPL", scored[0].Trade.Ticker)
	assert.Equal(t, "TSLA", scored[1].Trade.Ticker)
}

func TestRunScanFeedFailure(t *testing.T) {
	feed := &fakeFeed{err: errors.New("feed down")}
	svc := NewService(feed, fakeAnalyzer{}, &recordingStore{},
		common.ScanConfig{}, common.NewSilentLogger())

	_, err := svc.RunScan(context.Background())
	assert.Error(t, err)
}

func TestRunScanSaveFailureIsNonFatal(t *testing.T) {
	feed := &fakeFeed{trades: []models.InsiderTrade{purchase("AAPL")}}
	store := &recordingStore{saveErr: errors.New("disk full")}
	svc := NewService(feed, fakeAnalyzer{}, store,
		common.ScanConfig{}, common.NewSilentLogger())

	scored, err := svc.RunScan(context.Background())
	require.NoError(t, err)
	assert.Len(t, scored, 1, "scored results returned even when persistence fails")
}

func TestRunScanPurgesOldTrades(t *testing.T) {
	feed := &fakeFeed{trades: []models.InsiderTrade{purchase("AAPL")}}
	store := &recordingStore{}
	svc := NewService(feed, fakeAnalyzer{}, store,
		common.ScanConfig{}, common.NewSilentLogger(),
		WithRetention(90*24*time.Hour))

	_, err := svc.RunScan(context.Background())
	require.NoError(t, err)

	require.Len(t, store.purgeCutoffs, 1)
	assert.WithinDuration(t, time.Now().Add(-90*24*time.Hour), store.purgeCutoffs[0], time.Minute)
}

func TestRunScanNoRetentionNoPurge(t *testing.T) {
	feed := &fakeFeed{trades: []models.InsiderTrade{purchase("AAPL")}}
	store := &recordingStore{}
	svc := NewService(feed, fakeAnalyzer{}, store,
		common.ScanConfig{}, common.NewSilentLogger())

	_, err := svc.RunScan(context.Background())
	require.NoError(t, err)
	assert.Empty(t, store.purgeCutoffs)
}

func TestStartDisabled(t *testing.T) {
	svc := NewService(&fakeFeed{}, fakeAnalyzer{}, &recordingStore{},
		common.ScanConfig{Enabled: false}, common.NewSilentLogger())

	require.NoError(t, svc.Start(context.Background()))
	svc.Stop() // no-op without a scheduler
}

func TestStartRejectsBadSchedule(t *testing.T) {
	svc := NewService(&fakeFeed{}, fakeAnalyzer{}, &recordingStore{},
		common.ScanConfig{Enabled: true, Schedule: "not a cron expr"}, common.NewSilentLogger())

	assert.Error(t, svc.Start(context.Background()))
}

func TestStartAndStop(t *testing.T) {
	svc := NewService(&fakeFeed{}, fakeAnalyzer{}, &recordingStore{},
		common.ScanConfig{Enabled: true, Schedule: "*/15 * * * *"}, common.NewSilentLogger())

	require.NoError(t, svc.Start(context.Background()))
	require.NoError(t, svc.Start(context.Background()), "second start is a no-op")
	svc.Stop()
}
