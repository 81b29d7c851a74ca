package contrarian

import (
	"context"
	"fmt"
	"strings"
	"sync"

	"contrarian-screener/internal/logger"
	"contrarian-screener/internal/types"
)

// Pipeline runs fetch -> enrich -> score for tickers, one at a time or in a
// bounded worker pool. It holds no per-ticker state, so concurrent runs share
// nothing but the collaborators, which must be safe for concurrent use.
type Pipeline struct {
	fetcher       StockFetcher
	shortInterest ShortInterestSource
	social        SocialSource
	scorer        *Scorer
}

// PipelineOption configures optional enrichment sources.
type PipelineOption func(*Pipeline)

// WithShortInterest enriches each record with short interest after the base fetch.
func WithShortInterest(src ShortInterestSource) PipelineOption {
	return func(p *Pipeline) {
		p.shortInterest = src
	}
}

// WithSocial enriches each record with social sentiment after short interest.
func WithSocial(src SocialSource) PipelineOption {
	return func(p *Pipeline) {
		p.social = src
	}
}

// NewPipeline creates a pipeline around the base fetcher
func NewPipeline(fetcher StockFetcher, opts ...PipelineOption) *Pipeline {
	p := &Pipeline{
		fetcher: fetcher,
		scorer:  NewScorer(),
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// NormalizeTicker trims and upper-cases a ticker symbol.
func NormalizeTicker(ticker string) string {
	return strings.ToUpper(strings.TrimSpace(ticker))
}

// ScoreOne fetches, enriches and scores a single ticker.
func (p *Pipeline) ScoreOne(ctx context.Context, ticker string) (*types.ScreenResult, error) {
	ticker = NormalizeTicker(ticker)
	if ticker == "" {
		return nil, fmt.Errorf("%w: empty ticker", ErrInvalidInput)
	}

	stock, err := p.fetcher.FetchStock(ctx, ticker)
	if err != nil {
		return nil, fmt.Errorf("%w for %s: %w", ErrFetchFailed, ticker, err)
	}
	if stock == nil {
		return nil, fmt.Errorf("%w for %s: no data", ErrFetchFailed, ticker)
	}
	if stock.Ticker == "" {
		stock.Ticker = ticker
	}

	p.enrich(ctx, stock)

	scores, err := p.scorer.ScoreStock(stock)
	if err != nil {
		return nil, err
	}

	return &types.ScreenResult{
		Ticker: ticker,
		Stock:  stock,
		Scores: scores,
	}, nil
}

// enrich applies the optional sources. Each one is best effort: a failure
// leaves the corresponding fields at whatever the base fetch produced.
func (p *Pipeline) enrich(ctx context.Context, stock *types.Stock) {
	if stock.Sentiment == nil {
		return
	}

	if p.shortInterest != nil {
		pct, err := p.shortInterest.ShortInterest(ctx, stock.Ticker)
		if err != nil {
			logger.Debug(ctx, "Short interest enrichment skipped", "ticker", stock.Ticker, "error", err)
		} else {
			stock.Sentiment.ShortInterestPct = &pct
		}
	}

	if p.social != nil {
		snap, err := p.social.Social(ctx, stock.Ticker)
		if err != nil {
			logger.Debug(ctx, "Social enrichment skipped", "ticker", stock.Ticker, "error", err)
		} else {
			stock.Sentiment.RedditMentions = snap.Mentions
			stock.Sentiment.RedditSentimentScore = snap.SentimentScore
			stock.Sentiment.StocktwitsBullRatio = snap.BullRatio
		}
	}
}

// ScoreBatch scores tickers on a fixed pool of workers. Tickers that fail at
// any stage are left out of the result; they never abort the batch. The
// order of the returned results is unspecified.
func (p *Pipeline) ScoreBatch(ctx context.Context, tickers []string, concurrency int) []types.ScreenResult {
	if len(tickers) == 0 {
		return []types.ScreenResult{}
	}

	workers := concurrency
	if workers <= 0 {
		workers = DefaultConcurrency
	}
	if workers > len(tickers) {
		workers = len(tickers)
	}

	jobs := make(chan string)
	out := make(chan types.ScreenResult, len(tickers))

	var wg sync.WaitGroup
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for ticker := range jobs {
				res, err := p.scoreSafely(ctx, ticker)
				if err != nil {
					logger.Warn(ctx, "Dropping ticker from batch", "ticker", ticker, "error", err)
					continue
				}
				out <- *res
			}
		}()
	}

	// Stop handing out work once ctx is done; queued tickers are dropped
feed:
	for _, ticker := range tickers {
		if ctx.Err() != nil {
			break
		}
		select {
		case jobs <- ticker:
		case <-ctx.Done():
			break feed
		}
	}
	close(jobs)

	wg.Wait()
	close(out)

	results := make([]types.ScreenResult, 0, len(tickers))
	for res := range out {
		results = append(results, res)
	}
	return results
}

// scoreSafely keeps a panicking collaborator from taking down the pool.
func (p *Pipeline) scoreSafely(ctx context.Context, ticker string) (res *types.ScreenResult, err error) {
	defer func() {
		if r := recover(); r != nil {
			res = nil
			err = fmt.Errorf("panic while scoring %s: %v", ticker, r)
		}
	}()
	return p.ScoreOne(ctx, ticker)
}
