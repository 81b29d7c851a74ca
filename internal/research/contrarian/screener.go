package contrarian

import (
	"context"
	"sort"
	"time"

	"github.com/google/uuid"

	"contrarian-screener/internal/types"
)

// Screener ranks a universe of tickers by contrarian score
type Screener struct {
	pipeline *Pipeline
}

// NewScreener creates a screener on top of a pipeline
func NewScreener(pipeline *Pipeline) *Screener {
	return &Screener{pipeline: pipeline}
}

// ScoreOne scores a single ticker
func (s *Screener) ScoreOne(ctx context.Context, ticker string) (*types.ScreenResult, error) {
	return s.pipeline.ScoreOne(ctx, ticker)
}

// ScoreBatch scores tickers concurrently, dropping failures
func (s *Screener) ScoreBatch(ctx context.Context, tickers []string, concurrency int) []types.ScreenResult {
	return s.pipeline.ScoreBatch(ctx, tickers, concurrency)
}

// Screen scores every ticker, keeps those at or above MinScore and returns
// them best first, truncated to Limit.
func (s *Screener) Screen(ctx context.Context, tickers []string, opts ScreenOptions) (*ScreenReport, error) {
	if len(tickers) == 0 {
		return nil, ErrEmptyUniverse
	}

	scored := s.pipeline.ScoreBatch(ctx, tickers, opts.Concurrency)

	qualified := FilterByScore(scored, opts.MinScore)
	RankByScore(qualified)

	if opts.Limit > 0 && len(qualified) > opts.Limit {
		qualified = qualified[:opts.Limit]
	}

	return &ScreenReport{
		RunID:     uuid.New().String(),
		RunAt:     time.Now(),
		Requested: len(tickers),
		Scored:    len(scored),
		Qualified: len(qualified),
		Options:   opts,
		Results:   qualified,
	}, nil
}

// FilterByScore keeps results whose contrarian score is at least minScore.
func FilterByScore(results []types.ScreenResult, minScore float64) []types.ScreenResult {
	kept := make([]types.ScreenResult, 0, len(results))
	for _, r := range results {
		if r.Scores.ContrarianScore >= minScore {
			kept = append(kept, r)
		}
	}
	return kept
}

// RankByScore sorts results by contrarian score, highest first. Ties are
// broken by ticker so the ranking is stable across runs.
func RankByScore(results []types.ScreenResult) {
	sort.SliceStable(results, func(i, j int) bool {
		if results[i].Scores.ContrarianScore != results[j].Scores.ContrarianScore {
			return results[i].Scores.ContrarianScore > results[j].Scores.ContrarianScore
		}
		return results[i].Ticker < results[j].Ticker
	})
}
