package interfaces

import (
	"context"

	"contrarian-screener/internal/research/contrarian"
	"contrarian-screener/internal/types"
)

// Screener scores tickers and ranks universes by contrarian opportunity
type Screener interface {
	// ScoreOne fetches, enriches and scores a single ticker
	ScoreOne(ctx context.Context, ticker string) (*types.ScreenResult, error)

	// ScoreBatch scores tickers concurrently; failed tickers are left out
	ScoreBatch(ctx context.Context, tickers []string, concurrency int) []types.ScreenResult

	// Screen scores, filters and ranks a universe
	Screen(ctx context.Context, tickers []string, opts contrarian.ScreenOptions) (*contrarian.ScreenReport, error)
}
