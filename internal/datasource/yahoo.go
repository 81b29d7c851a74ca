package datasource

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"time"

	"contrarian-screener/internal/api"
	"contrarian-screener/internal/types"
)

const yahooModules = "price,summaryDetail,financialData,defaultKeyStatistics,assetProfile"

// Analyst counts are not published per rating, only the consensus key. A
// consensus maps to a block of ten votes in that bucket.
const consensusWeight = 10

// YahooClient fetches the base stock record from the quoteSummary endpoint
type YahooClient struct {
	client *api.Client
	retry  *api.RetryConfig
}

// NewYahooClient creates a Yahoo Finance fetcher
func NewYahooClient(baseURL string, timeout time.Duration) *YahooClient {
	if baseURL == "" {
		baseURL = DefaultYahooURL
	}
	return &YahooClient{
		client: api.NewClient(
			api.WithBaseURL(baseURL),
			api.WithTimeout(timeout),
			api.WithHeaders(api.YahooFinanceHeaders()),
			api.WithLogging(true),
		),
		retry: api.DefaultRetryConfig(),
	}
}

// rawValue is Yahoo's {"raw": 1.23, "fmt": "1.23"} wrapper. Missing values
// come back as an empty object.
type rawValue struct {
	Raw *float64 `json:"raw"`
}

func (v rawValue) int64Ptr() *int64 {
	if v.Raw == nil {
		return nil
	}
	n := int64(*v.Raw)
	return &n
}

type quoteSummaryResponse struct {
	QuoteSummary struct {
		Result []quoteSummaryResult `json:"result"`
		Error  *struct {
			Code        string `json:"code"`
			Description string `json:"description"`
		} `json:"error"`
	} `json:"quoteSummary"`
}

type quoteSummaryResult struct {
	Price struct {
		LongName           string   `json:"longName"`
		ShortName          string   `json:"shortName"`
		RegularMarketPrice rawValue `json:"regularMarketPrice"`
	} `json:"price"`
	SummaryDetail struct {
		MarketCap        rawValue `json:"marketCap"`
		TrailingPE       rawValue `json:"trailingPE"`
		FiftyTwoWeekHigh rawValue `json:"fiftyTwoWeekHigh"`
		FiftyTwoWeekLow  rawValue `json:"fiftyTwoWeekLow"`
	} `json:"summaryDetail"`
	FinancialData struct {
		CurrentPrice      rawValue `json:"currentPrice"`
		RevenueGrowth     rawValue `json:"revenueGrowth"`
		ProfitMargins     rawValue `json:"profitMargins"`
		DebtToEquity      rawValue `json:"debtToEquity"`
		FreeCashflow      rawValue `json:"freeCashflow"`
		RecommendationKey string   `json:"recommendationKey"`
	} `json:"financialData"`
	DefaultKeyStatistics struct {
		PriceToBook         rawValue `json:"priceToBook"`
		ShortPercentOfFloat rawValue `json:"shortPercentOfFloat"`
	} `json:"defaultKeyStatistics"`
	AssetProfile struct {
		Sector   string `json:"sector"`
		Industry string `json:"industry"`
	} `json:"assetProfile"`
}

// FetchStock implements contrarian.StockFetcher
func (y *YahooClient) FetchStock(ctx context.Context, ticker string) (*types.Stock, error) {
	req := api.NewRequest(http.MethodGet, "/v10/finance/quoteSummary/"+yahooSymbol(ticker)).
		WithContext(ctx).
		WithQuery("modules", yahooModules)

	resp, err := y.client.DoWithRetry(req, y.retry)
	if err != nil {
		if api.IsStatus(err, http.StatusNotFound) {
			return nil, fmt.Errorf("yahoo %s: %w", ticker, ErrNoData)
		}
		return nil, fmt.Errorf("yahoo %s: %w", ticker, err)
	}

	var body quoteSummaryResponse
	if err := resp.ParseJSON(&body); err != nil {
		return nil, fmt.Errorf("yahoo %s: %w", ticker, err)
	}
	if e := body.QuoteSummary.Error; e != nil {
		return nil, fmt.Errorf("yahoo %s: %s (%s): %w", ticker, e.Description, e.Code, ErrNoData)
	}
	if len(body.QuoteSummary.Result) == 0 {
		return nil, fmt.Errorf("yahoo %s: %w", ticker, ErrNoData)
	}

	return mapQuoteSummary(strings.ToUpper(ticker), &body.QuoteSummary.Result[0]), nil
}

func mapQuoteSummary(ticker string, r *quoteSummaryResult) *types.Stock {
	name := r.Price.LongName
	if name == "" {
		name = r.Price.ShortName
	}

	price := 0.0
	switch {
	case r.FinancialData.CurrentPrice.Raw != nil:
		price = *r.FinancialData.CurrentPrice.Raw
	case r.Price.RegularMarketPrice.Raw != nil:
		price = *r.Price.RegularMarketPrice.Raw
	}

	sentiment := types.NewSentiment()
	switch r.FinancialData.RecommendationKey {
	case "strong_buy", "buy":
		sentiment.AnalystBuyCount = consensusWeight
	case "hold":
		sentiment.AnalystHoldCount = consensusWeight
	case "underperform", "sell":
		sentiment.AnalystSellCount = consensusWeight
	}
	// Yahoo reports a fraction of float
	if v := r.DefaultKeyStatistics.ShortPercentOfFloat.Raw; v != nil {
		pct := *v * 100
		sentiment.ShortInterestPct = &pct
	}

	return &types.Stock{
		Ticker:           ticker,
		Name:             name,
		Price:            price,
		Sector:           r.AssetProfile.Sector,
		Industry:         r.AssetProfile.Industry,
		FiftyTwoWeekHigh: r.SummaryDetail.FiftyTwoWeekHigh.Raw,
		FiftyTwoWeekLow:  r.SummaryDetail.FiftyTwoWeekLow.Raw,
		Fundamentals: &types.Fundamentals{
			MarketCap:     r.SummaryDetail.MarketCap.int64Ptr(),
			PERatio:       r.SummaryDetail.TrailingPE.Raw,
			PBRatio:       r.DefaultKeyStatistics.PriceToBook.Raw,
			RevenueGrowth: r.FinancialData.RevenueGrowth.Raw,
			ProfitMargin:  r.FinancialData.ProfitMargins.Raw,
			DebtToEquity:  r.FinancialData.DebtToEquity.Raw,
			FreeCashFlow:  r.FinancialData.FreeCashflow.int64Ptr(),
		},
		Sentiment: sentiment,
	}
}
