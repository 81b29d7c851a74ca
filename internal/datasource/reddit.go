package datasource

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"sync"
	"time"

	"contrarian-screener/internal/api"
	"contrarian-screener/internal/types"
)

// ErrRedditDisabled is returned when no API credentials are configured.
var ErrRedditDisabled = errors.New("reddit credentials not configured")

var (
	bullishWords = []string{"call", "moon", "buy", "long", "bull", "gain", "rocket"}
	bearishWords = []string{"put", "drill", "sell", "short", "bear", "loss", "tank"}
)

// DefaultSubreddits are searched when none are configured.
var DefaultSubreddits = []string{"wallstreetbets", "stocks", "investing"}

// RedditConfig configures the Reddit client
type RedditConfig struct {
	ClientID     string
	ClientSecret string
	UserAgent    string
	AuthURL      string
	APIURL       string
	Subreddits   []string
	Limit        int
	Timeout      time.Duration
	Limiter      *RateLimiter
}

// RedditClient measures mentions and keyword sentiment across subreddits
// using application-only OAuth.
type RedditClient struct {
	cfg    RedditConfig
	client *api.Client

	mu          sync.Mutex
	token       string
	tokenExpiry time.Time
}

// NewRedditClient creates a Reddit client. Without credentials it stays disabled.
func NewRedditClient(cfg RedditConfig) *RedditClient {
	if cfg.AuthURL == "" {
		cfg.AuthURL = DefaultRedditAuthURL
	}
	if cfg.APIURL == "" {
		cfg.APIURL = DefaultRedditAPIURL
	}
	if cfg.UserAgent == "" {
		cfg.UserAgent = "ContrarianScreener/1.0"
	}
	if len(cfg.Subreddits) == 0 {
		cfg.Subreddits = DefaultSubreddits
	}
	if cfg.Limit <= 0 {
		cfg.Limit = 100
	}
	cfg.AuthURL = strings.TrimRight(cfg.AuthURL, "/")
	cfg.APIURL = strings.TrimRight(cfg.APIURL, "/")

	return &RedditClient{
		cfg: cfg,
		client: api.NewClient(
			api.WithTimeout(cfg.Timeout),
			api.WithHeader("User-Agent", cfg.UserAgent),
			api.WithLogging(true),
		),
	}
}

// Enabled reports whether credentials are configured
func (r *RedditClient) Enabled() bool {
	return r.cfg.ClientID != "" && r.cfg.ClientSecret != ""
}

type tokenResponse struct {
	AccessToken string `json:"access_token"`
	ExpiresIn   int    `json:"expires_in"`
}

// accessToken returns a cached bearer token, refreshing it a minute early.
func (r *RedditClient) accessToken(ctx context.Context) (string, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.token != "" && time.Now().Before(r.tokenExpiry) {
		return r.token, nil
	}

	req := api.NewRequest(http.MethodPost, r.cfg.AuthURL+"/api/v1/access_token").
		WithContext(ctx).
		WithForm(url.Values{"grant_type": {"client_credentials"}}).
		WithBasicAuth(r.cfg.ClientID, r.cfg.ClientSecret)

	resp, err := r.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("reddit token: %w", err)
	}

	var tok tokenResponse
	if err := resp.ParseJSON(&tok); err != nil {
		return "", fmt.Errorf("reddit token: %w", err)
	}
	if tok.AccessToken == "" {
		return "", fmt.Errorf("reddit token: empty access token")
	}

	r.token = tok.AccessToken
	r.tokenExpiry = time.Now().Add(time.Duration(tok.ExpiresIn)*time.Second - time.Minute)
	return r.token, nil
}

type listingResponse struct {
	Data struct {
		Children []struct {
			Data struct {
				Title    string `json:"title"`
				Selftext string `json:"selftext"`
			} `json:"data"`
		} `json:"children"`
	} `json:"data"`
}

// RedditSentiment is the outcome of one search sweep
type RedditSentiment struct {
	Mentions int
	Score    float64 // bull keyword share, 0.5 when no keywords matched
}

// Sentiment searches each subreddit for posts about ticker from the past week
func (r *RedditClient) Sentiment(ctx context.Context, ticker string) (RedditSentiment, error) {
	if !r.Enabled() {
		return RedditSentiment{Score: types.NeutralRedditScore}, ErrRedditDisabled
	}

	token, err := r.accessToken(ctx)
	if err != nil {
		return RedditSentiment{}, err
	}

	ticker = strings.ToUpper(ticker)
	query := ticker + " OR $" + ticker

	var mentions, bull, bear int
	for _, sub := range r.cfg.Subreddits {
		if err := r.cfg.Limiter.Wait(ctx); err != nil {
			return RedditSentiment{}, err
		}

		req := api.NewRequest(http.MethodGet, r.cfg.APIURL+"/r/"+sub+"/search").
			WithContext(ctx).
			WithHeader("Authorization", "bearer "+token).
			WithQuery("q", query).
			WithQuery("restrict_sr", "1").
			WithQuery("sort", "new").
			WithQuery("t", "week").
			WithQuery("limit", strconv.Itoa(r.cfg.Limit))

		resp, err := r.client.Do(req)
		if err != nil {
			return RedditSentiment{}, fmt.Errorf("reddit search r/%s: %w", sub, err)
		}

		var listing listingResponse
		if err := resp.ParseJSON(&listing); err != nil {
			return RedditSentiment{}, fmt.Errorf("reddit search r/%s: %w", sub, err)
		}

		for _, child := range listing.Data.Children {
			mentions++
			text := strings.ToLower(child.Data.Title + " " + child.Data.Selftext)
			bull += countWords(text, bullishWords)
			bear += countWords(text, bearishWords)
		}
	}

	return RedditSentiment{Mentions: mentions, Score: keywordRatio(bull, bear)}, nil
}

// countWords counts substring occurrences, so "calls" and "buying" count too.
func countWords(text string, words []string) int {
	n := 0
	for _, w := range words {
		n += strings.Count(text, w)
	}
	return n
}

func keywordRatio(bull, bear int) float64 {
	if bull+bear == 0 {
		return types.NeutralRedditScore
	}
	return float64(bull) / float64(bull+bear)
}
