package datasource

import (
	"context"
	"fmt"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
	"github.com/gocolly/colly/v2"

	"contrarian-screener/internal/api"
	"contrarian-screener/internal/logger"
)

const shortFloatKey = "Short Float"

// FinvizClient scrapes short interest from the Finviz quote page
type FinvizClient struct {
	baseURL string
	timeout time.Duration
	limiter *RateLimiter
}

// NewFinvizClient creates a Finviz scraper. limiter may be nil.
func NewFinvizClient(baseURL string, timeout time.Duration, limiter *RateLimiter) *FinvizClient {
	if baseURL == "" {
		baseURL = DefaultFinvizURL
	}
	return &FinvizClient{
		baseURL: strings.TrimRight(baseURL, "/"),
		timeout: timeout,
		limiter: limiter,
	}
}

// Snapshot returns the quote page's key/value snapshot table
func (f *FinvizClient) Snapshot(ctx context.Context, ticker string) (map[string]string, error) {
	var snapshot map[string]string
	err := WithRateLimit(ctx, f.limiter, func() error {
		var err error
		snapshot, err = f.scrape(ctx, ticker)
		return err
	})
	if err != nil {
		return nil, err
	}
	if len(snapshot) == 0 {
		return nil, fmt.Errorf("finviz %s: snapshot table missing: %w", ticker, ErrNoData)
	}
	return snapshot, nil
}

func (f *FinvizClient) scrape(ctx context.Context, ticker string) (map[string]string, error) {
	var snapshot map[string]string

	c := colly.NewCollector(
		colly.MaxDepth(1),
		colly.Async(false),
	)
	if f.timeout > 0 {
		c.SetRequestTimeout(f.timeout)
	}

	c.OnRequest(func(r *colly.Request) {
		if ctx.Err() != nil {
			r.Abort()
			return
		}
		r.Headers.Set("User-Agent", api.BrowserUserAgent)
	})

	c.OnHTML("table.snapshot-table2", func(e *colly.HTMLElement) {
		snapshot = ParseSnapshotTable(e.DOM)
	})

	c.OnError(func(r *colly.Response, err error) {
		logger.Debug(ctx, "Finviz scrape error", "ticker", ticker, "status", r.StatusCode, "error", err)
	})

	// Visit takes no context: cancellation is only seen before the request
	// starts, so an in-flight request is bounded by the request timeout.
	target := f.baseURL + "/quote.ashx?t=" + url.QueryEscape(strings.ToUpper(ticker))
	if err := c.Visit(target); err != nil {
		return nil, fmt.Errorf("finviz %s: %w", ticker, err)
	}
	c.Wait()

	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return snapshot, nil
}

// ShortInterest implements contrarian.ShortInterestSource
func (f *FinvizClient) ShortInterest(ctx context.Context, ticker string) (float64, error) {
	snapshot, err := f.Snapshot(ctx, ticker)
	if err != nil {
		return 0, err
	}

	raw, ok := snapshot[shortFloatKey]
	if !ok {
		// Newer layouts label the cell "Short Float / Ratio"
		for k, v := range snapshot {
			if strings.HasPrefix(k, shortFloatKey) {
				raw, ok = v, true
				break
			}
		}
	}
	if !ok {
		return 0, fmt.Errorf("finviz %s: %q not on page: %w", ticker, shortFloatKey, ErrNoData)
	}

	pct, ok := ParsePercent(raw)
	if !ok {
		return 0, fmt.Errorf("finviz %s: short float %q: %w", ticker, raw, ErrNoData)
	}
	return pct, nil
}

// ParseSnapshotTable reads alternating key/value cells from each row.
func ParseSnapshotTable(table *goquery.Selection) map[string]string {
	out := make(map[string]string)
	table.Find("tr").Each(func(_ int, row *goquery.Selection) {
		cells := row.Find("td")
		for i := 0; i+1 < cells.Length(); i += 2 {
			key := strings.TrimSpace(cells.Eq(i).Text())
			if key == "" {
				continue
			}
			out[key] = strings.TrimSpace(cells.Eq(i + 1).Text())
		}
	})
	return out
}

// ParsePercent parses a Finviz numeric cell such as "12.34%". "-" means unknown.
func ParsePercent(s string) (float64, bool) {
	s = strings.TrimSpace(s)
	if s == "" || s == "-" {
		return 0, false
	}
	// "Short Float / Ratio" cells read "12.34% / 3.10"
	if i := strings.Index(s, "/"); i >= 0 {
		s = strings.TrimSpace(s[:i])
	}
	v, err := strconv.ParseFloat(strings.TrimSuffix(s, "%"), 64)
	if err != nil {
		return 0, false
	}
	return v, true
}
