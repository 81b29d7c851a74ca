package datasource

import (
	"context"
	"errors"

	"contrarian-screener/internal/logger"
	"contrarian-screener/internal/types"
)

// RedditSource is satisfied by *RedditClient
type RedditSource interface {
	Sentiment(ctx context.Context, ticker string) (RedditSentiment, error)
}

// StockTwitsSource is satisfied by *StockTwitsClient
type StockTwitsSource interface {
	Sentiment(ctx context.Context, ticker string) (StockTwitsSentiment, error)
}

// SocialAggregator merges Reddit and StockTwits into one snapshot. Either
// source may be nil or fail; its half of the snapshot then stays neutral.
type SocialAggregator struct {
	reddit     RedditSource
	stocktwits StockTwitsSource
}

// NewSocialAggregator creates a social source over the given clients
func NewSocialAggregator(reddit RedditSource, stocktwits StockTwitsSource) *SocialAggregator {
	return &SocialAggregator{reddit: reddit, stocktwits: stocktwits}
}

// Social implements contrarian.SocialSource
func (a *SocialAggregator) Social(ctx context.Context, ticker string) (types.SocialSnapshot, error) {
	snap := types.NeutralSocialSnapshot()

	if a.reddit != nil {
		rs, err := a.reddit.Sentiment(ctx, ticker)
		switch {
		case errors.Is(err, ErrRedditDisabled):
		case err != nil:
			logger.Debug(ctx, "Reddit sentiment unavailable", "ticker", ticker, "error", err)
		default:
			snap.Mentions = rs.Mentions
			snap.SentimentScore = rs.Score
		}
	}

	if a.stocktwits != nil {
		st, err := a.stocktwits.Sentiment(ctx, ticker)
		if err != nil {
			logger.Debug(ctx, "StockTwits sentiment unavailable", "ticker", ticker, "error", err)
		} else {
			snap.BullRatio = st.BullRatio
		}
	}

	return snap, nil
}
