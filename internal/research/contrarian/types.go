package contrarian

import (
	"context"
	"errors"
	"time"

	"contrarian-screener/internal/types"
)

var (
	// ErrInvalidInput flags a contract violation such as scoring without a sentiment observation.
	ErrInvalidInput = errors.New("invalid input")
	// ErrFetchFailed means the base record for a ticker could not be retrieved.
	ErrFetchFailed = errors.New("fetch failed")
	// ErrEmptyUniverse is returned when a screen is requested over no tickers.
	ErrEmptyUniverse = errors.New("no tickers to screen")
)

// DefaultConcurrency is the worker count used when callers do not pick one.
const DefaultConcurrency = 10

// StockFetcher retrieves the base record (price, fundamentals, analyst data) for a ticker.
type StockFetcher interface {
	FetchStock(ctx context.Context, ticker string) (*types.Stock, error)
}

// ShortInterestSource reports short interest as a percentage of float (0-100).
type ShortInterestSource interface {
	ShortInterest(ctx context.Context, ticker string) (float64, error)
}

// SocialSource reports retail chatter for a ticker.
type SocialSource interface {
	Social(ctx context.Context, ticker string) (types.SocialSnapshot, error)
}

// ScreenOptions controls filtering and ranking of a screen.
type ScreenOptions struct {
	MinScore    float64 `json:"min_score"`
	Limit       int     `json:"limit"` // 0 keeps every qualifying result
	Concurrency int     `json:"concurrency"`
}

// ScreenReport is the ranked outcome of a screen.
type ScreenReport struct {
	RunID     string               `json:"run_id"`
	RunAt     time.Time            `json:"run_at"`
	Requested int                  `json:"requested"`
	Scored    int                  `json:"scored"`
	Qualified int                  `json:"qualified"`
	Options   ScreenOptions        `json:"options"`
	Results   []types.ScreenResult `json:"results"`
}
