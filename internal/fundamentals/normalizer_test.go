package fundamentals

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bobmcallan/scry/internal/models"
)

func payloadSet(t *testing.T, byProvider map[string]string) models.PayloadSet {
	t.Helper()
	set := models.PayloadSet{}
	for provider, raw := range byProvider {
		set[provider] = models.NewPayload(provider, "TEST", []byte(raw))
	}
	return set
}

func TestBuildPrefersYahoo(t *testing.T) {
	set := payloadSet(t, map[string]string{
		models.ProviderYahoo:   `{"trailingPE": 18.2, "returnOnEquity": 0.21}`,
		models.ProviderFinviz:  `{"P/E": "99.9", "ROE": "5.0%"}`,
		models.ProviderFinnhub: `{"peTTM": 55.5}`,
	})

	rec := NewNormalizer().Build("TEST", set)

	require.NotNil(t, rec.PERatio)
	assert.InDelta(t, 18.2, *rec.PERatio, 1e-9)
	require.NotNil(t, rec.ROE)
	assert.InDelta(t, 0.21, *rec.ROE, 1e-9)
}

func TestBuildFallsThroughProviderOrder(t *testing.T) {
	set := payloadSet(t, map[string]string{
		models.ProviderYahoo:         `{"trailingPE": "N/A"}`,
		models.ProviderFinviz:        `{"P/E": "-"}`,
		models.ProviderStockAnalysis: `{"trailingPE": 21.4}`,
		models.ProviderFinnhub:       `{"peTTM": 30.0}`,
	})

	rec := NewNormalizer().Build("TEST", set)

	require.NotNil(t, rec.PERatio)
	assert.InDelta(t, 21.4, *rec.PERatio, 1e-9)
}

func TestBuildFinvizPercentageFields(t *testing.T) {
	// Finviz quotes profitability as percentages; ratio fields stay raw.
	set := payloadSet(t, map[string]string{
		models.ProviderFinviz: `{"ROE": "15.0%", "Profit M": "22%", "Debt/Eq": "1.45", "Sales Q/Q": "25.00%"}`,
	})

	rec := NewNormalizer().Build("TEST", set)

	require.NotNil(t, rec.ROE)
	assert.InDelta(t, 0.15, *rec.ROE, 1e-9)
	require.NotNil(t, rec.NetMargin)
	assert.InDelta(t, 0.22, *rec.NetMargin, 1e-9)
	require.NotNil(t, rec.DebtToEquity)
	assert.InDelta(t, 1.45, *rec.DebtToEquity, 1e-9)
	require.NotNil(t, rec.RevenueGrowth)
	assert.InDelta(t, 0.25, *rec.RevenueGrowth, 1e-9)
}

func TestBuildFinvizMarketCapSuffix(t *testing.T) {
	set := payloadSet(t, map[string]string{
		models.ProviderFinviz: `{"Market Cap": "1.5B"}`,
	})

	rec := NewNormalizer().Build("TEST", set)

	require.NotNil(t, rec.MarketCap)
	assert.InDelta(t, 1.5e9, *rec.MarketCap, 1)
}

func TestBuildPartialDataNeverAborts(t *testing.T) {
	rec := NewNormalizer().Build("TEST", models.PayloadSet{})
	require.NotNil(t, rec)
	assert.Equal(t, "TEST", rec.Ticker)
	assert.Nil(t, rec.PERatio)
	assert.Nil(t, rec.MarketCap)
	assert.Nil(t, rec.DividendYield)
}

func TestBuildCashFlowOnlyYahooFinnhub(t *testing.T) {
	set := payloadSet(t, map[string]string{
		models.ProviderFinviz:  `{"FCF": "123"}`, // not a source for cash flow
		models.ProviderFinnhub: `{"freeCashFlowTTM": 2.5e8, "operatingCashFlowTTM": 4.0e8}`,
	})

	rec := NewNormalizer().Build("TEST", set)

	require.NotNil(t, rec.FreeCashFlow)
	assert.InDelta(t, 2.5e8, *rec.FreeCashFlow, 1)
	require.NotNil(t, rec.OperatingCashFlow)
	assert.InDelta(t, 4.0e8, *rec.OperatingCashFlow, 1)
}
