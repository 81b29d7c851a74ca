package datasource

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const quoteSummaryJSON = `{
  "quoteSummary": {
    "result": [{
      "price": {"longName": "Berkshire Hathaway Inc.", "regularMarketPrice": {"raw": 410.5, "fmt": "410.50"}},
      "summaryDetail": {
        "marketCap": {"raw": 885000000000},
        "trailingPE": {"raw": 9.4},
        "fiftyTwoWeekHigh": {"raw": 430.0},
        "fiftyTwoWeekLow": {"raw": 330.0}
      },
      "financialData": {
        "currentPrice": {"raw": 412.0},
        "revenueGrowth": {"raw": 0.12},
        "profitMargins": {"raw": 0.18},
        "debtToEquity": {},
        "freeCashflow": {"raw": 21000000000},
        "recommendationKey": "underperform"
      },
      "defaultKeyStatistics": {"priceToBook": {"raw": 1.5}, "shortPercentOfFloat": {"raw": 0.0123}},
      "assetProfile": {"sector": "Financial Services", "industry": "Insurance - Diversified"}
    }],
    "error": null
  }
}`

func TestYahooClient_FetchStock(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/v10/finance/quoteSummary/BRK-B", r.URL.Path)
		assert.Contains(t, r.URL.Query().Get("modules"), "financialData")
		w.Write([]byte(quoteSummaryJSON))
	}))
	defer srv.Close()

	stock, err := NewYahooClient(srv.URL, time.Second).FetchStock(context.Background(), "brk.b")
	require.NoError(t, err)

	assert.Equal(t, "BRK.B", stock.Ticker)
	assert.Equal(t, "Berkshire Hathaway Inc.", stock.Name)
	assert.Equal(t, 412.0, stock.Price)
	assert.Equal(t, "Financial Services", stock.Sector)
	require.NotNil(t, stock.FiftyTwoWeekHigh)
	assert.Equal(t, 430.0, *stock.FiftyTwoWeekHigh)

	f := stock.Fundamentals
	require.NotNil(t, f)
	assert.Equal(t, int64(885000000000), *f.MarketCap)
	assert.Equal(t, 9.4, *f.PERatio)
	assert.Equal(t, 0.12, *f.RevenueGrowth)
	assert.Nil(t, f.DebtToEquity)

	s := stock.Sentiment
	require.NotNil(t, s)
	assert.Equal(t, 10, s.AnalystSellCount)
	assert.Zero(t, s.AnalystBuyCount)
	require.NotNil(t, s.ShortInterestPct)
	assert.InDelta(t, 1.23, *s.ShortInterestPct, 1e-9)
	assert.Equal(t, 0.5, s.RedditSentimentScore)
}

func TestYahooClient_NoResult(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"quoteSummary": {"result": null, "error": {"code": "Not Found", "description": "Quote not found for ticker symbol: ZZZZ"}}}`))
	}))
	defer srv.Close()

	_, err := NewYahooClient(srv.URL, time.Second).FetchStock(context.Background(), "ZZZZ")
	assert.ErrorIs(t, err, ErrNoData)
}

func TestYahooClient_NotFound(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	defer srv.Close()

	_, err := NewYahooClient(srv.URL, time.Second).FetchStock(context.Background(), "ZZZZ")
	assert.ErrorIs(t, err, ErrNoData)
}
