package export

import (
	"bytes"
	"encoding/csv"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bobmcallan/scry/internal/common"
	"github.com/bobmcallan/scry/internal/models"
)

func TestWriteCSV(t *testing.T) {
	svc := NewService(common.NewSilentLogger())

	trades := []*models.ScoredTrade{
		{
			ID: "t1",
			Trade: models.InsiderTrade{
				Date:         time.Date(2026, 8, 28, 16, 45, 12, 0, time.UTC),
				Ticker:       "AAPL",
				Sector:       "Technology",
				InsiderName:  "Cook Timothy",
				InsiderTitle: "CEO",
				TradeType:    models.TradePurchase,
				Amount:       2251000,
			},
			CurrentPrice: models.Float(225.10),
			TargetPrices: map[string]float64{
				models.ProviderYahoo:  250,
				models.ProviderFinviz: 240,
			},
			CompositeScore: 78.5,
			Recommendation: models.Buy,
		},
		{
			ID: "t2",
			Trade: models.InsiderTrade{
				Date:      time.Date(2026, 8, 27, 9, 0, 0, 0, time.UTC),
				Ticker:    "XYZ",
				TradeType: models.TradeSale,
				Amount:    -75000,
			},
			CompositeScore: 41.0,
			Recommendation: models.Sell,
		},
	}

	var buf bytes.Buffer
	require.NoError(t, svc.WriteCSV(&buf, trades))

	records, err := csv.NewReader(&buf).ReadAll()
	require.NoError(t, err)
	require.Len(t, records, 3)

	assert.Equal(t, csvHeader, records[0])

	row := records[1]
	assert.Equal(t, "2026-08-28 16:45:12", row[0])
	assert.Equal(t, "AAPL", row[1])
	assert.Equal(t, "Technology", row[2])
	assert.Equal(t, "Cook Timothy (CEO)", row[3])
	assert.Equal(t, "Purchase", row[4])
	assert.Equal(t, "$2,251,000.00", row[5])
	assert.Equal(t, "$225.10", row[6])
	assert.Equal(t, "$250.00", row[7])
	assert.Equal(t, "$240.00", row[8])
	assert.Equal(t, "N/A", row[9], "no stockanalysis target")
	assert.Equal(t, "$245.00", row[10], "fair avg over present targets")
	assert.Equal(t, "Buy", row[11])
	assert.Equal(t, "78.5", row[12])

	sale := records[2]
	assert.Equal(t, "XYZ", sale[1])
	assert.Equal(t, "", sale[2])
	assert.Equal(t, "Sale", sale[4])
	assert.Equal(t, "-$75,000.00", sale[5])
	assert.Equal(t, "N/A", sale[6])
	assert.Equal(t, "N/A", sale[10])
	assert.Equal(t, "Sell", sale[11])
}

func TestWriteCSVEmpty(t *testing.T) {
	svc := NewService(common.NewSilentLogger())

	var buf bytes.Buffer
	require.NoError(t, svc.WriteCSV(&buf, nil))

	records, err := csv.NewReader(&buf).ReadAll()
	require.NoError(t, err)
	require.Len(t, records, 1, "header only")
}

func TestTradeTypeLabel(t *testing.T) {
	assert.Equal(t, "Purchase", tradeTypeLabel(models.TradePurchase))
	assert.Equal(t, "Sale", tradeTypeLabel(models.TradeSale))
	assert.Equal(t, "Option Exercise", tradeTypeLabel(models.TradeOptionExercise))
}

func TestMoney(t *testing.T) {
	assert.Equal(t, "$0.00", money(0))
	assert.Equal(t, "$999.99", money(999.99))
	assert.Equal(t, "$1,000.00", money(1000))
	assert.Equal(t, "$12,345,678.90", money(12345678.9))
	assert.Equal(t, "-$2,500.00", money(-2500))
}
