// Package report renders screen results for terminals, files and digests.
package report

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/gocarina/gocsv"

	"contrarian-screener/internal/research/contrarian"
	"contrarian-screener/internal/types"
)

// Format names accepted by the CLI and API
const (
	FormatTerminal = "terminal"
	FormatJSON     = "json"
	FormatCSV      = "csv"
	FormatMarkdown = "md"
)

// Analysis is the JSON view of a single-ticker analysis
type Analysis struct {
	Ticker          string              `json:"ticker"`
	CompanyName     string              `json:"company_name,omitempty"`
	Price           float64             `json:"price"`
	Scores          types.ScoreResult   `json:"scores"`
	Rating          string              `json:"fundamental_rating"`
	CrowdReading    string              `json:"crowd_reading"`
	PercentFromHigh *float64            `json:"percent_from_high,omitempty"`
	Sentiment       *types.Sentiment    `json:"sentiment"`
	Financials      *types.Fundamentals `json:"financials"`
}

// NewAnalysis builds the JSON view for one result
func NewAnalysis(res *types.ScreenResult) Analysis {
	a := Analysis{
		Ticker: res.Ticker,
		Scores: res.Scores,
		Rating: contrarian.FundamentalRating(res.Scores.FundamentalScore),
	}
	if s := res.Stock; s != nil {
		a.CompanyName = s.Name
		a.Price = s.Price
		a.PercentFromHigh = s.PercentFromHigh()
		a.Sentiment = s.Sentiment
		a.Financials = s.Fundamentals
		a.CrowdReading = contrarian.CrowdDescription(s.Sentiment)
	}
	return a
}

// Pick is the compact JSON view of a screen hit
type Pick struct {
	Ticker string       `json:"ticker"`
	Score  float64      `json:"score"`
	Signal types.Signal `json:"signal"`
}

// Picks reduces results to their compact view
func Picks(results []types.ScreenResult) []Pick {
	out := make([]Pick, 0, len(results))
	for _, r := range results {
		out = append(out, Pick{Ticker: r.Ticker, Score: r.Scores.ContrarianScore, Signal: r.Scores.Signal})
	}
	return out
}

// JSON writes v as indented JSON
func JSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

type csvRow struct {
	Ticker string `csv:"Ticker"`
	Price  string `csv:"Price"`
	Score  string `csv:"Score"`
	Signal string `csv:"Signal"`
}

// CSV writes one row per result
func CSV(w io.Writer, results []types.ScreenResult) error {
	rows := make([]csvRow, 0, len(results))
	for _, r := range results {
		rows = append(rows, csvRow{
			Ticker: r.Ticker,
			Price:  fmt.Sprintf("%.2f", price(r)),
			Score:  fmt.Sprintf("%.1f", r.Scores.ContrarianScore),
			Signal: string(r.Scores.Signal),
		})
	}
	return gocsv.Marshal(rows, w)
}

// Table writes a ranked screen table
func Table(w io.Writer, results []types.ScreenResult, minScore float64) error {
	fmt.Fprintf(w, "Contrarian Opportunities (>= %.0f)\n\n", minScore)
	if len(results) == 0 {
		_, err := fmt.Fprintln(w, "No stocks met the score threshold.")
		return err
	}

	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "RANK\tTICKER\tPRICE\tSCORE\tFUND\tCROWD\tSIGNAL")
	for i, r := range results {
		fmt.Fprintf(tw, "%d\t%s\t$%.2f\t%.1f\t%.1f\t%.1f\t%s\n",
			i+1, r.Ticker, price(r),
			r.Scores.ContrarianScore, r.Scores.FundamentalScore, r.Scores.SentimentScore,
			r.Scores.Signal)
	}
	return tw.Flush()
}

// Dashboard writes the detailed terminal view of one ticker
func Dashboard(w io.Writer, res *types.ScreenResult) error {
	s := res.Stock
	if s == nil {
		s = &types.Stock{Ticker: res.Ticker}
	}
	sc := res.Scores

	name := s.Name
	if name == "" {
		name = s.Ticker
	}

	fmt.Fprintln(w, strings.Repeat("═", 62))
	fmt.Fprintf(w, " %s (%s)\n", name, s.Ticker)
	fmt.Fprintf(w, " Price: $%.2f", s.Price)
	if pct := s.PercentFromHigh(); pct != nil {
		fmt.Fprintf(w, " (%.1f%% from 52w high)", *pct)
	}
	fmt.Fprintln(w)
	fmt.Fprintf(w, " Sector: %s | Industry: %s\n", orDash(s.Sector), orDash(s.Industry))
	fmt.Fprintf(w, " Signal: %s (Score: %.1f)\n", sc.Signal, sc.ContrarianScore)
	fmt.Fprintln(w, strings.Repeat("═", 62))
	fmt.Fprintln(w)

	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)

	fmt.Fprintf(tw, "Fundamentals (Score: %.1f, %s)\t\n", sc.FundamentalScore, contrarian.FundamentalRating(sc.FundamentalScore))
	if f := s.Fundamentals; f != nil {
		fmt.Fprintf(tw, "  Market Cap\t%s\n", formatMoney(f.MarketCap))
		fmt.Fprintf(tw, "  P/E Ratio\t%s\n", formatFloat(f.PERatio, "%.2f"))
		fmt.Fprintf(tw, "  P/B Ratio\t%s\n", formatFloat(f.PBRatio, "%.2f"))
		fmt.Fprintf(tw, "  Revenue Growth\t%s\n", formatFraction(f.RevenueGrowth))
		fmt.Fprintf(tw, "  Profit Margin\t%s\n", formatFraction(f.ProfitMargin))
		fmt.Fprintf(tw, "  Debt/Equity\t%s\n", formatFloat(f.DebtToEquity, "%.2f"))
	} else {
		fmt.Fprintln(tw, "  No fundamentals reported\t")
	}
	fmt.Fprintln(tw, "\t")

	fmt.Fprintf(tw, "Sentiment (Score: %.1f)\t\n", sc.SentimentScore)
	if st := s.Sentiment; st != nil {
		fmt.Fprintf(tw, "  Crowd\t%s\n", contrarian.CrowdDescription(st))
		fmt.Fprintf(tw, "  Short Interest\t%s\n", formatFloat(st.ShortInterestPct, "%.2f%%"))
		fmt.Fprintf(tw, "  Analyst Consensus\t%.0f/100\n", st.AnalystConsensusScore())
		fmt.Fprintf(tw, "  Reddit Mentions (Wk)\t%d\n", st.RedditMentions)
		fmt.Fprintf(tw, "  Reddit Sentiment\t%.0f%% Bullish\n", st.RedditSentimentScore*100)
		fmt.Fprintf(tw, "  StockTwits Sentiment\t%.0f%% Bullish\n", st.StocktwitsBullRatio*100)
	}
	return tw.Flush()
}

// Markdown writes a single-ticker report
func Markdown(w io.Writer, res *types.ScreenResult) error {
	s := res.Stock
	if s == nil {
		s = &types.Stock{Ticker: res.Ticker}
	}
	name := s.Name
	if name == "" {
		name = s.Ticker
	}

	var b strings.Builder
	fmt.Fprintf(&b, "# Analysis: %s (%s)\n\n", name, s.Ticker)
	fmt.Fprintf(&b, "**Signal:** %s (Score: %.1f)\n\n", res.Scores.Signal, res.Scores.ContrarianScore)

	fmt.Fprintf(&b, "## Fundamentals (%.1f, %s)\n\n", res.Scores.FundamentalScore, contrarian.FundamentalRating(res.Scores.FundamentalScore))
	if f := s.Fundamentals; f != nil {
		fmt.Fprintf(&b, "- P/E: %s\n", formatFloat(f.PERatio, "%.2f"))
		fmt.Fprintf(&b, "- Revenue Growth: %s\n", formatFraction(f.RevenueGrowth))
		fmt.Fprintf(&b, "- Profit Margin: %s\n", formatFraction(f.ProfitMargin))
		fmt.Fprintf(&b, "- Debt/Equity: %s\n", formatFloat(f.DebtToEquity, "%.2f"))
	}

	fmt.Fprintf(&b, "\n## Sentiment (%.1f)\n\n", res.Scores.SentimentScore)
	if st := s.Sentiment; st != nil {
		fmt.Fprintf(&b, "- Crowd: %s\n", contrarian.CrowdDescription(st))
		fmt.Fprintf(&b, "- Short Interest: %s\n", formatFloat(st.ShortInterestPct, "%.2f%%"))
		fmt.Fprintf(&b, "- Consensus: %.0f/100\n", st.AnalystConsensusScore())
		fmt.Fprintf(&b, "- Retail: %.0f/100\n", st.RetailSentimentScore())
	}

	_, err := io.WriteString(w, b.String())
	return err
}

// Digest writes the daily Markdown digest of picks scoring above threshold.
// results must already be ranked.
func Digest(w io.Writer, results []types.ScreenResult, threshold float64, at time.Time) error {
	var b strings.Builder
	fmt.Fprintf(&b, "# Daily Contrarian Digest - %s\n\n", at.Format("2006-01-02"))

	picks := make([]types.ScreenResult, 0, len(results))
	for _, r := range results {
		if r.Scores.ContrarianScore > threshold {
			picks = append(picks, r)
		}
	}

	if len(picks) == 0 {
		b.WriteString("No strong signals detected today.\n")
	} else {
		b.WriteString("## Top Opportunities\n\n")
		b.WriteString("| Ticker | Score | Signal | Price |\n")
		b.WriteString("|--------|-------|--------|-------|\n")
		for _, p := range picks {
			fmt.Fprintf(&b, "| **%s** | %.1f | %s | $%.2f |\n", p.Ticker, p.Scores.ContrarianScore, p.Scores.Signal, price(p))
		}
	}

	_, err := io.WriteString(w, b.String())
	return err
}

func price(r types.ScreenResult) float64 {
	if r.Stock == nil {
		return 0
	}
	return r.Stock.Price
}

func orDash(s string) string {
	if s == "" {
		return "-"
	}
	return s
}

func formatFloat(v *float64, format string) string {
	if v == nil {
		return "-"
	}
	return fmt.Sprintf(format, *v)
}

func formatFraction(v *float64) string {
	if v == nil {
		return "-"
	}
	return fmt.Sprintf("%.1f%%", *v*100)
}

func formatMoney(v *int64) string {
	if v == nil {
		return "-"
	}
	n := float64(*v)
	switch {
	case n >= 1e12:
		return fmt.Sprintf("$%.2fT", n/1e12)
	case n >= 1e9:
		return fmt.Sprintf("$%.2fB", n/1e9)
	case n >= 1e6:
		return fmt.Sprintf("$%.2fM", n/1e6)
	default:
		return fmt.Sprintf("$%.0f", n)
	}
}
