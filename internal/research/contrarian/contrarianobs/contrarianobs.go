package contrarianobs

import (
	"context"
	"time"

	"contrarian-screener/internal/interfaces"
	"contrarian-screener/internal/logger"
	"contrarian-screener/internal/research/contrarian"
	"contrarian-screener/internal/trace"
	"contrarian-screener/internal/types"
)

// observableScreener wraps a Screener with logging and tracing
type observableScreener struct {
	inner interfaces.Screener
}

// Wrap wraps a Screener with observability middleware
func Wrap(screener interfaces.Screener) interfaces.Screener {
	return &observableScreener{inner: screener}
}

// ScoreOne wraps the ScoreOne method with logging and tracing
func (o *observableScreener) ScoreOne(ctx context.Context, ticker string) (*types.ScreenResult, error) {
	ctx, span := trace.StartSpan(ctx, "contrarian.ScoreOne")
	defer span.End()
	trace.SetAttributes(span, "ticker", ticker)

	logger.DebugSkip(ctx, 1, "Scoring ticker", "ticker", ticker)
	start := time.Now()

	res, err := o.inner.ScoreOne(ctx, ticker)
	durationMs := time.Since(start).Milliseconds()

	if err != nil {
		logger.ErrorWithErrSkip(ctx, 1, "Ticker scoring failed", err, "ticker", ticker, "duration_ms", durationMs)
		trace.RecordError(span, err)
		return nil, err
	}

	trace.SetAttributes(span, "contrarian_score", res.Scores.ContrarianScore, "signal", string(res.Scores.Signal))
	logger.DebugSkip(ctx, 1, "Ticker scored",
		"ticker", res.Ticker,
		"contrarian_score", res.Scores.ContrarianScore,
		"fundamental_score", res.Scores.FundamentalScore,
		"sentiment_score", res.Scores.SentimentScore,
		"signal", res.Scores.Signal,
		"duration_ms", durationMs,
	)

	return res, nil
}

// ScoreBatch wraps the ScoreBatch method with logging and tracing
func (o *observableScreener) ScoreBatch(ctx context.Context, tickers []string, concurrency int) []types.ScreenResult {
	ctx, span := trace.StartSpan(ctx, "contrarian.ScoreBatch")
	defer span.End()
	trace.SetAttributes(span, "ticker_count", len(tickers), "concurrency", concurrency)

	logger.InfoSkip(ctx, 1, "Starting batch scoring", "ticker_count", len(tickers), "concurrency", concurrency)
	start := time.Now()

	results := o.inner.ScoreBatch(ctx, tickers, concurrency)

	logger.InfoSkip(ctx, 1, "Batch scoring completed",
		"ticker_count", len(tickers),
		"scored_count", len(results),
		"dropped_count", len(tickers)-len(results),
		"duration_ms", time.Since(start).Milliseconds(),
	)

	return results
}

// Screen wraps the Screen method with logging and tracing
func (o *observableScreener) Screen(ctx context.Context, tickers []string, opts contrarian.ScreenOptions) (*contrarian.ScreenReport, error) {
	ctx, span := trace.StartSpan(ctx, "contrarian.Screen")
	defer span.End()
	trace.SetAttributes(span, "ticker_count", len(tickers), "min_score", opts.MinScore, "limit", opts.Limit)

	logger.InfoSkip(ctx, 1, "Starting contrarian screen",
		"ticker_count", len(tickers),
		"min_score", opts.MinScore,
		"limit", opts.Limit,
	)
	start := time.Now()

	report, err := o.inner.Screen(ctx, tickers, opts)
	durationMs := time.Since(start).Milliseconds()

	if err != nil {
		logger.ErrorWithErrSkip(ctx, 1, "Contrarian screen failed", err, "duration_ms", durationMs)
		trace.RecordError(span, err)
		return nil, err
	}

	qualificationRate := 0.0
	if report.Scored > 0 {
		qualificationRate = float64(report.Qualified) / float64(report.Scored) * 100
	}

	trace.SetAttributes(span, "run_id", report.RunID, "qualified_count", report.Qualified)
	logger.InfoSkip(ctx, 1, "Contrarian screen completed",
		"run_id", report.RunID,
		"scored_count", report.Scored,
		"qualified_count", report.Qualified,
		"qualification_rate", qualificationRate,
		"duration_ms", durationMs,
	)

	if len(report.Results) > 0 {
		top := report.Results[0]
		logger.Signal(ctx, top.Ticker, string(top.Scores.Signal), top.Scores.ContrarianScore,
			"run_id", report.RunID,
			"rank", 1,
		)
	}

	return report, nil
}
