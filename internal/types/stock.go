package types

// Fundamentals is a point-in-time snapshot of a company's financials.
// Every field is optional; nil means the source did not report it.
type Fundamentals struct {
	MarketCap     *int64   `json:"market_cap,omitempty"`
	PERatio       *float64 `json:"pe_ratio,omitempty"`
	PBRatio       *float64 `json:"pb_ratio,omitempty"`
	RevenueGrowth *float64 `json:"revenue_growth,omitempty"` // fractional, 0.12 = 12%
	ProfitMargin  *float64 `json:"profit_margin,omitempty"`  // fractional
	DebtToEquity  *float64 `json:"debt_to_equity,omitempty"`
	FreeCashFlow  *int64   `json:"free_cash_flow,omitempty"`
}

// Sentiment holds the crowd observations for a stock. It starts with analyst
// data from the base fetch and may be enriched in place with short interest
// and social data before scoring.
type Sentiment struct {
	AnalystBuyCount  int      `json:"analyst_buy_count"`
	AnalystHoldCount int      `json:"analyst_hold_count"`
	AnalystSellCount int      `json:"analyst_sell_count"`
	ShortInterestPct *float64 `json:"short_interest_pct,omitempty"` // 0-100 scale

	RedditMentions       int     `json:"reddit_mentions"`
	RedditSentimentScore float64 `json:"reddit_sentiment_score"` // 0 bearish .. 1 bullish
	StocktwitsBullRatio  float64 `json:"stocktwits_bull_ratio"`  // 0 bearish .. 1 bullish
}

// Neutral defaults used when a social source has nothing to say.
const (
	NeutralRedditScore = 0.5
	NeutralBullRatio   = 0.5
)

// NewSentiment returns a sentiment observation with neutral social defaults.
func NewSentiment() *Sentiment {
	return &Sentiment{
		RedditSentimentScore: NeutralRedditScore,
		StocktwitsBullRatio:  NeutralBullRatio,
	}
}

// AnalystConsensusScore maps analyst counts to 0 (all sell) .. 100 (all buy).
// With no analyst coverage the consensus is neutral (50).
func AnalystConsensusScore(buy, hold, sell int) float64 {
	total := buy + hold + sell
	if total == 0 {
		return 50
	}
	return 100 * (float64(buy) + 0.5*float64(hold)) / float64(total)
}

// RetailSentimentScore averages the Reddit and StockTwits bullish fractions onto 0-100.
func RetailSentimentScore(redditScore, bullRatio float64) float64 {
	return 50 * (redditScore + bullRatio)
}

// AnalystConsensusScore is computed from the stored counts on every call.
func (s Sentiment) AnalystConsensusScore() float64 {
	return AnalystConsensusScore(s.AnalystBuyCount, s.AnalystHoldCount, s.AnalystSellCount)
}

// RetailSentimentScore is computed from the stored social fields on every call.
func (s Sentiment) RetailSentimentScore() float64 {
	return RetailSentimentScore(s.RedditSentimentScore, s.StocktwitsBullRatio)
}

// ShortInterestOrZero returns the short interest percentage, or 0 when unknown.
func (s Sentiment) ShortInterestOrZero() float64 {
	if s.ShortInterestPct == nil {
		return 0
	}
	return *s.ShortInterestPct
}

// Stock is the raw record for one ticker as assembled by the data sources.
type Stock struct {
	Ticker   string  `json:"ticker"`
	Name     string  `json:"company_name,omitempty"`
	Price    float64 `json:"price"`
	Sector   string  `json:"sector,omitempty"`
	Industry string  `json:"industry,omitempty"`

	FiftyTwoWeekHigh *float64 `json:"fifty_two_week_high,omitempty"`
	FiftyTwoWeekLow  *float64 `json:"fifty_two_week_low,omitempty"`

	Fundamentals *Fundamentals `json:"financials,omitempty"`
	Sentiment    *Sentiment    `json:"sentiment,omitempty"`
}

// PercentFromHigh returns how far price sits from the 52-week high, in percent.
// It is nil when either operand is unknown.
func PercentFromHigh(price float64, high *float64) *float64 {
	if price <= 0 || high == nil || *high <= 0 {
		return nil
	}
	pct := 100 * (price - *high) / *high
	return &pct
}

// PercentFromHigh is computed from the stored price fields on every call.
func (s *Stock) PercentFromHigh() *float64 {
	return PercentFromHigh(s.Price, s.FiftyTwoWeekHigh)
}

// Ptr returns a pointer to v. Handy for optional observation fields.
func Ptr[T any](v T) *T {
	return &v
}
