package contrarian

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"contrarian-screener/internal/types"
)

// fakeFetcher builds a fresh record per call so enrichment never leaks between tests.
type fakeFetcher struct {
	fail        map[string]error
	noSent      map[string]bool
	panics      map[string]bool
	delay       time.Duration
	inFlight    atomic.Int32
	maxInFlight atomic.Int32
	calls       atomic.Int32
}

func (f *fakeFetcher) FetchStock(ctx context.Context, ticker string) (*types.Stock, error) {
	f.calls.Add(1)
	n := f.inFlight.Add(1)
	defer f.inFlight.Add(-1)
	for {
		peak := f.maxInFlight.Load()
		if n <= peak || f.maxInFlight.CompareAndSwap(peak, n) {
			break
		}
	}
	if f.delay > 0 {
		time.Sleep(f.delay)
	}

	if f.panics[ticker] {
		panic("upstream exploded")
	}
	if err := f.fail[ticker]; err != nil {
		return nil, err
	}

	stock := &types.Stock{
		Ticker:           ticker,
		Price:            50,
		FiftyTwoWeekHigh: types.Ptr(100.0),
		Fundamentals:     &types.Fundamentals{PERatio: types.Ptr(12.0)},
	}
	if !f.noSent[ticker] {
		stock.Sentiment = types.NewSentiment()
	}
	return stock, nil
}

type fakeShortInterest struct {
	pct map[string]float64
}

func (f *fakeShortInterest) ShortInterest(_ context.Context, ticker string) (float64, error) {
	pct, ok := f.pct[ticker]
	if !ok {
		return 0, errors.New("not on snapshot")
	}
	return pct, nil
}

type fakeSocial struct {
	mu   sync.Mutex
	seen []string
	snap types.SocialSnapshot
	err  error
}

func (f *fakeSocial) Social(_ context.Context, ticker string) (types.SocialSnapshot, error) {
	f.mu.Lock()
	f.seen = append(f.seen, ticker)
	f.mu.Unlock()
	return f.snap, f.err
}

func tickers(n int) []string {
	out := make([]string, n)
	for i := range out {
		out[i] = fmt.Sprintf("T%02d", i)
	}
	return out
}

func resultTickers(results []types.ScreenResult) []string {
	out := make([]string, 0, len(results))
	for _, r := range results {
		out = append(out, r.Ticker)
	}
	return out
}

func TestPipeline_ScoreOne(t *testing.T) {
	p := NewPipeline(&fakeFetcher{})

	res, err := p.ScoreOne(context.Background(), "  acme ")
	require.NoError(t, err)

	assert.Equal(t, "ACME", res.Ticker)
	require.NotNil(t, res.Stock)
	// P/E 12 and 50% below the high: 50 + 10 + 5
	assert.Equal(t, 65.0, res.Scores.FundamentalScore)
	assert.Equal(t, types.SignalWatch, res.Scores.Signal)
}

func TestPipeline_ScoreOne_Errors(t *testing.T) {
	boom := errors.New("quote endpoint down")
	p := NewPipeline(&fakeFetcher{
		fail:   map[string]error{"DOWN": boom},
		noSent: map[string]bool{"BARE": true},
	})

	_, err := p.ScoreOne(context.Background(), "   ")
	assert.ErrorIs(t, err, ErrInvalidInput)

	_, err = p.ScoreOne(context.Background(), "DOWN")
	assert.ErrorIs(t, err, ErrFetchFailed)
	assert.ErrorIs(t, err, boom)

	_, err = p.ScoreOne(context.Background(), "BARE")
	assert.ErrorIs(t, err, ErrInvalidInput)
}

func TestPipeline_Enrichment(t *testing.T) {
	social := &fakeSocial{snap: types.SocialSnapshot{Mentions: 12, SentimentScore: 0.9, BullRatio: 0.8}}
	p := NewPipeline(&fakeFetcher{},
		WithShortInterest(&fakeShortInterest{pct: map[string]float64{"GME": 22.5}}),
		WithSocial(social),
	)

	res, err := p.ScoreOne(context.Background(), "GME")
	require.NoError(t, err)

	s := res.Stock.Sentiment
	require.NotNil(t, s.ShortInterestPct)
	assert.Equal(t, 22.5, *s.ShortInterestPct)
	assert.Equal(t, 12, s.RedditMentions)
	assert.Equal(t, 0.9, s.RedditSentimentScore)
	assert.Equal(t, 0.8, s.StocktwitsBullRatio)
	assert.True(t, res.Scores.IsHated)
}

func TestPipeline_EnrichmentFailuresAreTolerated(t *testing.T) {
	social := &fakeSocial{err: errors.New("rate limited")}
	p := NewPipeline(&fakeFetcher{},
		WithShortInterest(&fakeShortInterest{}),
		WithSocial(social),
	)

	res, err := p.ScoreOne(context.Background(), "AAPL")
	require.NoError(t, err)

	s := res.Stock.Sentiment
	assert.Nil(t, s.ShortInterestPct)
	assert.Equal(t, types.NeutralRedditScore, s.RedditSentimentScore)
	assert.Equal(t, types.NeutralBullRatio, s.StocktwitsBullRatio)
	// Short interest failure does not stop the social step from running
	assert.Equal(t, []string{"AAPL"}, social.seen)
}

func TestPipeline_ScoreBatch_Complete(t *testing.T) {
	p := NewPipeline(&fakeFetcher{})
	in := tickers(25)

	results := p.ScoreBatch(context.Background(), in, 4)

	assert.ElementsMatch(t, in, resultTickers(results))
}

func TestPipeline_ScoreBatch_DropsFailures(t *testing.T) {
	f := &fakeFetcher{
		fail:   map[string]error{"T03": errors.New("timeout"), "T07": errors.New("404")},
		noSent: map[string]bool{"T11": true},
		panics: map[string]bool{"T15": true},
	}
	p := NewPipeline(f)

	results := p.ScoreBatch(context.Background(), tickers(20), 5)

	got := resultTickers(results)
	assert.Len(t, got, 16)
	assert.NotContains(t, got, "T03")
	assert.NotContains(t, got, "T07")
	assert.NotContains(t, got, "T11")
	assert.NotContains(t, got, "T15")
	assert.EqualValues(t, 20, f.calls.Load())
}

func TestPipeline_ScoreBatch_BoundedConcurrency(t *testing.T) {
	f := &fakeFetcher{delay: 5 * time.Millisecond}
	p := NewPipeline(f)

	results := p.ScoreBatch(context.Background(), tickers(30), 3)

	assert.Len(t, results, 30)
	assert.LessOrEqual(t, f.maxInFlight.Load(), int32(3))
}

func TestPipeline_ScoreBatch_DefaultConcurrency(t *testing.T) {
	f := &fakeFetcher{delay: 2 * time.Millisecond}
	p := NewPipeline(f)

	results := p.ScoreBatch(context.Background(), tickers(40), 0)

	assert.Len(t, results, 40)
	assert.LessOrEqual(t, f.maxInFlight.Load(), int32(DefaultConcurrency))
}

func TestPipeline_ScoreBatch_Empty(t *testing.T) {
	p := NewPipeline(&fakeFetcher{})

	results := p.ScoreBatch(context.Background(), nil, 4)

	assert.NotNil(t, results)
	assert.Empty(t, results)
}

func TestPipeline_ScoreBatch_AllFail(t *testing.T) {
	fail := map[string]error{}
	for _, tk := range tickers(5) {
		fail[tk] = errors.New("down")
	}
	p := NewPipeline(&fakeFetcher{fail: fail})

	assert.Empty(t, p.ScoreBatch(context.Background(), tickers(5), 2))
}

// cancellingFetcher cancels the batch context on its first call.
type cancellingFetcher struct {
	cancel context.CancelFunc
	calls  atomic.Int32
}

func (f *cancellingFetcher) FetchStock(ctx context.Context, ticker string) (*types.Stock, error) {
	f.calls.Add(1)
	f.cancel()
	return nil, ctx.Err()
}

func TestPipeline_ScoreBatch_StopsFeedingAfterCancel(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	fetcher := &cancellingFetcher{cancel: cancel}
	p := NewPipeline(fetcher)

	results := p.ScoreBatch(ctx, tickers(50), 1)

	assert.Empty(t, results)
	assert.LessOrEqual(t, fetcher.calls.Load(), int32(2))
}

func TestPipeline_ScoreBatch_AlreadyCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	fetcher := &fakeFetcher{}
	results := NewPipeline(fetcher).ScoreBatch(ctx, tickers(20), 4)

	assert.Empty(t, results)
	assert.Zero(t, fetcher.calls.Load())
}
