package scheduler

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"contrarian-screener/internal/interfaces"
	"contrarian-screener/internal/logger"
	"contrarian-screener/internal/report"
	"contrarian-screener/internal/research/contrarian"
	"contrarian-screener/internal/signallog"
	"contrarian-screener/internal/types"
)

// DigestJob screens a universe and writes the Markdown digest to OutDir
type DigestJob struct {
	Screener    interfaces.Screener
	Tickers     []string
	MinScore    float64
	Concurrency int
	OutDir      string
	Signals     *signallog.Log // optional

	now func() time.Time
}

// Name returns the job name
func (j *DigestJob) Name() string {
	return "digest"
}

// Run screens, renders and stores the digest
func (j *DigestJob) Run(ctx context.Context) error {
	now := time.Now
	if j.now != nil {
		now = j.now
	}

	op := logger.StartOperation(ctx, "scheduler.digest", "tickers", len(j.Tickers))
	ctx = op.Context()

	// Keep everything; the digest applies its own strict threshold
	rep, err := j.Screener.Screen(ctx, j.Tickers, contrarian.ScreenOptions{Concurrency: j.Concurrency})
	if err != nil {
		op.EndWithError(err)
		return fmt.Errorf("digest screen: %w", err)
	}
	defer op.End("run_id", rep.RunID)

	var buf bytes.Buffer
	if err := report.Digest(&buf, rep.Results, j.MinScore, now()); err != nil {
		return err
	}

	if err := os.MkdirAll(j.OutDir, 0o755); err != nil {
		return fmt.Errorf("create digest dir: %w", err)
	}
	path := j.Path(now())
	if err := os.WriteFile(path, buf.Bytes(), 0o644); err != nil {
		return fmt.Errorf("write digest: %w", err)
	}

	picks := make([]types.ScreenResult, 0, len(rep.Results))
	for _, r := range rep.Results {
		if r.Scores.ContrarianScore > j.MinScore {
			picks = append(picks, r)
		}
	}
	if j.Signals != nil {
		hits := *rep
		hits.Results = picks
		if err := j.Signals.AppendReport("digest", &hits); err != nil {
			logger.ErrorWithErr(ctx, "Failed to record digest signals", err, "run_id", rep.RunID)
		}
	}

	logger.Info(ctx, "Digest written", "path", path, "run_id", rep.RunID, "scored", rep.Scored, "picks", len(picks))
	return nil
}

// Path is where the digest for day t is written
func (j *DigestJob) Path(t time.Time) string {
	return filepath.Join(j.OutDir, "digest-"+t.Format("2006-01-02")+".md")
}

// RetentionJob compresses signal logs older than Days
type RetentionJob struct {
	Signals *signallog.Log
	Days    int
}

// Name returns the job name
func (j *RetentionJob) Name() string {
	return "signal-log-retention"
}

// Run compresses old signal logs
func (j *RetentionJob) Run(context.Context) error {
	return j.Signals.CompressOlder(j.Days)
}
