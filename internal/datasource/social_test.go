package datasource

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"contrarian-screener/internal/types"
)

func TestStockTwitsClient_Sentiment(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/streams/symbol/TSLA.json":
			w.Write([]byte(`{"messages": [
				{"entities": {"sentiment": {"basic": "Bullish"}}},
				{"entities": {"sentiment": {"basic": "Bullish"}}},
				{"entities": {"sentiment": {"basic": "Bearish"}}},
				{"entities": {"sentiment": null}},
				{"entities": {}}
			]}`))
		case "/streams/symbol/QUIET.json":
			w.Write([]byte(`{"messages": [{"entities": {"sentiment": null}}]}`))
		default:
			http.NotFound(w, r)
		}
	}))
	defer srv.Close()

	st := NewStockTwitsClient(srv.URL, time.Second)
	ctx := context.Background()

	got, err := st.Sentiment(ctx, "tsla")
	require.NoError(t, err)
	assert.InDelta(t, 2.0/3.0, got.BullRatio, 1e-9)
	assert.Equal(t, 5, got.Messages)
	assert.Equal(t, 3, got.Labelled)

	got, err = st.Sentiment(ctx, "QUIET")
	require.NoError(t, err)
	assert.Equal(t, 0.5, got.BullRatio)

	got, err = st.Sentiment(ctx, "UNKNOWN")
	require.NoError(t, err)
	assert.Equal(t, 0.5, got.BullRatio)
}

func TestRedditClient_Disabled(t *testing.T) {
	r := NewRedditClient(RedditConfig{})

	assert.False(t, r.Enabled())
	got, err := r.Sentiment(context.Background(), "AAPL")
	assert.ErrorIs(t, err, ErrRedditDisabled)
	assert.Equal(t, 0.5, got.Score)
}

func TestRedditClient_Sentiment(t *testing.T) {
	var tokenCalls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch {
		case r.URL.Path == "/api/v1/access_token":
			tokenCalls.Add(1)
			user, _, _ := r.BasicAuth()
			assert.Equal(t, "id", user)
			w.Write([]byte(`{"access_token": "tok", "token_type": "bearer", "expires_in": 3600}`))
		case r.URL.Path == "/r/wallstreetbets/search":
			assert.Equal(t, "bearer tok", r.Header.Get("Authorization"))
			assert.Equal(t, "GME OR $GME", r.URL.Query().Get("q"))
			assert.Equal(t, "week", r.URL.Query().Get("t"))
			w.Write([]byte(`{"data": {"children": [
				{"data": {"title": "GME to the moon", "selftext": "buying calls"}},
				{"data": {"title": "GME puts", "selftext": ""}}
			]}}`))
		case r.URL.Path == "/r/stocks/search":
			w.Write([]byte(`{"data": {"children": []}}`))
		default:
			http.NotFound(w, r)
		}
	}))
	defer srv.Close()

	r := NewRedditClient(RedditConfig{
		ClientID:     "id",
		ClientSecret: "secret",
		AuthURL:      srv.URL,
		APIURL:       srv.URL,
		Subreddits:   []string{"wallstreetbets", "stocks"},
	})
	ctx := context.Background()

	got, err := r.Sentiment(ctx, "gme")
	require.NoError(t, err)
	assert.Equal(t, 2, got.Mentions)
	// bull: moon, buy, call; bear: put
	assert.Equal(t, 0.75, got.Score)

	_, err = r.Sentiment(ctx, "GME")
	require.NoError(t, err)
	assert.EqualValues(t, 1, tokenCalls.Load())
}

type stubReddit struct {
	res RedditSentiment
	err error
}

func (s stubReddit) Sentiment(context.Context, string) (RedditSentiment, error) {
	return s.res, s.err
}

type stubStockTwits struct {
	res StockTwitsSentiment
	err error
}

func (s stubStockTwits) Sentiment(context.Context, string) (StockTwitsSentiment, error) {
	return s.res, s.err
}

func TestSocialAggregator(t *testing.T) {
	ctx := context.Background()

	both := NewSocialAggregator(
		stubReddit{res: RedditSentiment{Mentions: 40, Score: 0.8}},
		stubStockTwits{res: StockTwitsSentiment{BullRatio: 0.7}},
	)
	snap, err := both.Social(ctx, "AMC")
	require.NoError(t, err)
	assert.Equal(t, types.SocialSnapshot{Mentions: 40, SentimentScore: 0.8, BullRatio: 0.7}, snap)

	redditDown := NewSocialAggregator(
		stubReddit{err: errors.New("503")},
		stubStockTwits{res: StockTwitsSentiment{BullRatio: 0.2}},
	)
	snap, err = redditDown.Social(ctx, "AMC")
	require.NoError(t, err)
	assert.Equal(t, types.SocialSnapshot{SentimentScore: 0.5, BullRatio: 0.2}, snap)

	none := NewSocialAggregator(nil, nil)
	snap, err = none.Social(ctx, "AMC")
	require.NoError(t, err)
	assert.Equal(t, types.NeutralSocialSnapshot(), snap)
}
