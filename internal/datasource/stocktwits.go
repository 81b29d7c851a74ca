package datasource

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"time"

	"contrarian-screener/internal/api"
	"contrarian-screener/internal/types"
)

// StockTwitsClient reads labelled messages from the public symbol stream
type StockTwitsClient struct {
	client *api.Client
}

// NewStockTwitsClient creates a StockTwits client
func NewStockTwitsClient(baseURL string, timeout time.Duration) *StockTwitsClient {
	if baseURL == "" {
		baseURL = DefaultStockTwitsURL
	}
	return &StockTwitsClient{
		client: api.NewClient(
			api.WithBaseURL(baseURL),
			api.WithTimeout(timeout),
			api.WithHeaders(api.BrowserHeaders()),
			api.WithLogging(true),
		),
	}
}

type streamResponse struct {
	Messages []struct {
		Entities struct {
			Sentiment *struct {
				Basic string `json:"basic"`
			} `json:"sentiment"`
		} `json:"entities"`
	} `json:"messages"`
}

// StockTwitsSentiment summarises one stream page
type StockTwitsSentiment struct {
	BullRatio float64
	Messages  int
	Labelled  int
}

// Sentiment returns the Bullish share of labelled messages. An unknown
// symbol is not an error; it reads as neutral.
func (s *StockTwitsClient) Sentiment(ctx context.Context, ticker string) (StockTwitsSentiment, error) {
	path := "/streams/symbol/" + strings.ToUpper(ticker) + ".json"

	resp, err := s.client.GET(ctx, path)
	if err != nil {
		if api.IsStatus(err, http.StatusNotFound) {
			return StockTwitsSentiment{BullRatio: types.NeutralBullRatio}, nil
		}
		return StockTwitsSentiment{}, fmt.Errorf("stocktwits %s: %w", ticker, err)
	}

	var stream streamResponse
	if err := resp.ParseJSON(&stream); err != nil {
		return StockTwitsSentiment{}, fmt.Errorf("stocktwits %s: %w", ticker, err)
	}

	var bulls, bears int
	for _, msg := range stream.Messages {
		if msg.Entities.Sentiment == nil {
			continue
		}
		switch msg.Entities.Sentiment.Basic {
		case "Bullish":
			bulls++
		case "Bearish":
			bears++
		}
	}

	out := StockTwitsSentiment{
		BullRatio: types.NeutralBullRatio,
		Messages:  len(stream.Messages),
		Labelled:  bulls + bears,
	}
	if out.Labelled > 0 {
		out.BullRatio = float64(bulls) / float64(out.Labelled)
	}
	return out, nil
}
