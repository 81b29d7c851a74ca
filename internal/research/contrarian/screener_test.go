package contrarian

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"contrarian-screener/internal/types"
)

type fetcherFunc func(ctx context.Context, ticker string) (*types.Stock, error)

func (f fetcherFunc) FetchStock(ctx context.Context, ticker string) (*types.Stock, error) {
	return f(ctx, ticker)
}

// hatedBook returns hated-crowd stocks whose contrarian score equals the
// fundamental score configured per ticker.
func hatedBook(pe map[string]float64) StockFetcher {
	return fetcherFunc(func(_ context.Context, ticker string) (*types.Stock, error) {
		s := types.NewSentiment()
		s.ShortInterestPct = types.Ptr(30.0)
		return &types.Stock{
			Ticker:       ticker,
			Fundamentals: &types.Fundamentals{PERatio: types.Ptr(pe[ticker])},
			Sentiment:    s,
		}, nil
	})
}

func TestScreener_Screen(t *testing.T) {
	// P/E 10 -> 60, P/E 25 -> 50, P/E 50 -> 40
	book := map[string]float64{"CHEAP": 10, "FAIR": 25, "RICH": 50, "ALSO": 10}
	s := NewScreener(NewPipeline(hatedBook(book)))

	report, err := s.Screen(context.Background(), []string{"RICH", "CHEAP", "FAIR", "ALSO"}, ScreenOptions{MinScore: 45})
	require.NoError(t, err)

	assert.NotEmpty(t, report.RunID)
	assert.Equal(t, 4, report.Requested)
	assert.Equal(t, 4, report.Scored)
	assert.Equal(t, 3, report.Qualified)
	assert.Equal(t, []string{"ALSO", "CHEAP", "FAIR"}, resultTickers(report.Results))
}

func TestScreener_Screen_Limit(t *testing.T) {
	book := map[string]float64{"A": 10, "B": 25, "C": 50}
	s := NewScreener(NewPipeline(hatedBook(book)))

	report, err := s.Screen(context.Background(), []string{"A", "B", "C"}, ScreenOptions{Limit: 2})
	require.NoError(t, err)

	assert.Equal(t, []string{"A", "B"}, resultTickers(report.Results))
	assert.Equal(t, 2, report.Qualified)
}

func TestScreener_Screen_EmptyUniverse(t *testing.T) {
	s := NewScreener(NewPipeline(hatedBook(nil)))

	_, err := s.Screen(context.Background(), nil, ScreenOptions{})
	assert.ErrorIs(t, err, ErrEmptyUniverse)
}

func TestScreener_Screen_NothingQualifies(t *testing.T) {
	s := NewScreener(NewPipeline(hatedBook(map[string]float64{"A": 50})))

	report, err := s.Screen(context.Background(), []string{"A"}, ScreenOptions{MinScore: 99})
	require.NoError(t, err)
	assert.Empty(t, report.Results)
	assert.Equal(t, 1, report.Scored)
}

func TestRankByScore(t *testing.T) {
	results := []types.ScreenResult{
		{Ticker: "B", Scores: types.ScoreResult{ContrarianScore: 40}},
		{Ticker: "C", Scores: types.ScoreResult{ContrarianScore: 80}},
		{Ticker: "A", Scores: types.ScoreResult{ContrarianScore: 40}},
	}

	RankByScore(results)

	assert.Equal(t, []string{"C", "A", "B"}, resultTickers(results))
}

func TestFilterByScore(t *testing.T) {
	results := []types.ScreenResult{
		{Ticker: "A", Scores: types.ScoreResult{ContrarianScore: 49.9}},
		{Ticker: "B", Scores: types.ScoreResult{ContrarianScore: 50}},
	}

	assert.Equal(t, []string{"B"}, resultTickers(FilterByScore(results, 50)))
	assert.Len(t, FilterByScore(results, 0), 2)
}
