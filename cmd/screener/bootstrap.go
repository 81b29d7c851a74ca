package main

import (
	"context"
	"fmt"
	"os"

	"github.com/joho/godotenv"

	"contrarian-screener/internal/datasource"
	"contrarian-screener/internal/interfaces"
	"contrarian-screener/internal/logger"
	"contrarian-screener/internal/research/contrarian"
	"contrarian-screener/internal/research/contrarian/contrarianobs"
	"contrarian-screener/internal/signallog"
	"contrarian-screener/internal/store"
	"contrarian-screener/internal/trace"
	"contrarian-screener/internal/watchlist"
)

// initializeSystem loads .env and starts the logger and tracer
func initializeSystem() error {
	_ = godotenv.Load()

	if err := logger.Init(); err != nil {
		return fmt.Errorf("failed to initialize logger: %w", err)
	}

	if err := trace.Init(); err != nil {
		fmt.Fprintf(os.Stderr, "Failed to initialize tracer: %v\n", err)
	}

	return nil
}

// shutdownSystem flushes the tracer and logger
func shutdownSystem(ctx context.Context) {
	if err := trace.Shutdown(ctx); err != nil {
		fmt.Fprintf(os.Stderr, "Failed to shut down tracer: %v\n", err)
	}
	logger.Sync()
}

func loadConfig(ctx context.Context, path string) (*store.Config, error) {
	cfg, err := store.LoadConfig(path)
	if err != nil {
		logger.ErrorWithErr(ctx, "Failed to load config", err, "path", path)
		return nil, err
	}
	return cfg, nil
}

// initializeScreener wires the data sources into the scoring pipeline and
// wraps the result with observability
func initializeScreener(ctx context.Context, cfg *store.Config) interfaces.Screener {
	src := cfg.Sources
	timeout := cfg.Timeout()

	yahoo := datasource.NewYahooClient(src.Yahoo.BaseURL, timeout)

	var opts []contrarian.PipelineOption
	if cfg.Screener.EnrichShortInterest {
		limiter := datasource.PerSecond(src.Finviz.RequestsPerSecond, 1)
		opts = append(opts, contrarian.WithShortInterest(
			datasource.NewFinvizClient(src.Finviz.BaseURL, timeout, limiter)))
	}

	if cfg.Screener.EnrichSocial {
		reddit := datasource.NewRedditClient(datasource.RedditConfig{
			ClientID:     src.Reddit.ClientID,
			ClientSecret: src.Reddit.ClientSecret,
			UserAgent:    src.Reddit.UserAgent,
			AuthURL:      src.Reddit.AuthURL,
			APIURL:       src.Reddit.APIURL,
			Subreddits:   src.Reddit.Subreddits,
			Limit:        src.Reddit.Limit,
			Timeout:      timeout,
		})
		if !reddit.Enabled() {
			logger.Warn(ctx, "Reddit credentials not set - Reddit sentiment stays neutral")
		}
		stocktwits := datasource.NewStockTwitsClient(src.StockTwits.BaseURL, timeout)
		opts = append(opts, contrarian.WithSocial(datasource.NewSocialAggregator(reddit, stocktwits)))
	}

	pipeline := contrarian.NewPipeline(yahoo, opts...)
	return contrarianobs.Wrap(contrarian.NewScreener(pipeline))
}

func openWatchlist(ctx context.Context, cfg *store.Config) (*watchlist.Store, error) {
	wl, err := watchlist.Open(cfg.Watchlist.DBPath)
	if err != nil {
		logger.ErrorWithErr(ctx, "Failed to open watchlist", err, "path", cfg.Watchlist.DBPath)
		return nil, err
	}
	return wl, nil
}

// compressOldSignals gzips signal logs past the retention window
func compressOldSignals(ctx context.Context, cfg *store.Config, log *signallog.Log) {
	if cfg.SignalLog.RetentionDays <= 0 {
		return
	}
	if err := log.CompressOlder(cfg.SignalLog.RetentionDays); err != nil {
		logger.Warn(ctx, "Failed to compress old signal logs", "error", err)
	}
}
