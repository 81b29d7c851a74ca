package interfaces

import (
	"context"

	"contrarian-screener/internal/watchlist"
)

// Watchlist persists the tickers a user is tracking
type Watchlist interface {
	Add(ctx context.Context, ticker, note string) (*watchlist.Entry, error)
	List(ctx context.Context) ([]watchlist.Entry, error)
	Remove(ctx context.Context, ticker string) error
}
