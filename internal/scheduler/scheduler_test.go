package scheduler

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"contrarian-screener/internal/research/contrarian"
	"contrarian-screener/internal/signallog"
	"contrarian-screener/internal/types"
)

type countingJob struct {
	runs atomic.Int32
	err  error
}

func (j *countingJob) Run(context.Context) error {
	j.runs.Add(1)
	return j.err
}

func (j *countingJob) Name() string { return "counting" }

func TestScheduler_RunsJobs(t *testing.T) {
	s := New(context.Background())
	job := &countingJob{}
	require.NoError(t, s.AddJob("@every 1s", job))

	s.Start()
	assert.Eventually(t, func() bool { return job.runs.Load() > 0 }, 3*time.Second, 50*time.Millisecond)
	s.Stop()
}

func TestScheduler_InvalidSchedule(t *testing.T) {
	s := New(context.Background())
	assert.Error(t, s.AddJob("every tuesday", &countingJob{}))
}

func TestScheduler_RunNow(t *testing.T) {
	s := New(context.Background())
	boom := errors.New("boom")
	job := &countingJob{err: boom}

	assert.ErrorIs(t, s.RunNow(job), boom)
	assert.EqualValues(t, 1, job.runs.Load())
}

type stubScreener struct {
	report *contrarian.ScreenReport
	err    error
	opts   contrarian.ScreenOptions
}

func (s *stubScreener) ScoreOne(context.Context, string) (*types.ScreenResult, error) {
	return nil, errors.New("not used")
}

func (s *stubScreener) ScoreBatch(context.Context, []string, int) []types.ScreenResult {
	return nil
}

func (s *stubScreener) Screen(_ context.Context, _ []string, opts contrarian.ScreenOptions) (*contrarian.ScreenReport, error) {
	s.opts = opts
	return s.report, s.err
}

func TestDigestJob_Run(t *testing.T) {
	dir := t.TempDir()
	screener := &stubScreener{report: &contrarian.ScreenReport{
		RunID:  "run-1",
		Scored: 3,
		Results: []types.ScreenResult{
			{Ticker: "GME", Stock: &types.Stock{Price: 20}, Scores: types.ScoreResult{ContrarianScore: 75, Signal: types.SignalPotentialLong}},
			{Ticker: "AMC", Stock: &types.Stock{Price: 4}, Scores: types.ScoreResult{ContrarianScore: 60, Signal: types.SignalNeutral}},
		},
	}}

	job := &DigestJob{
		Screener:    screener,
		Tickers:     []string{"GME", "AMC", "AAPL"},
		MinScore:    60,
		Concurrency: 5,
		OutDir:      filepath.Join(dir, "digests"),
		Signals:     signallog.New(filepath.Join(dir, "signals")),
		now:         func() time.Time { return time.Date(2024, 6, 3, 7, 0, 0, 0, time.UTC) },
	}
	require.NoError(t, job.Run(context.Background()))

	assert.Equal(t, 5, screener.opts.Concurrency)
	assert.Zero(t, screener.opts.MinScore)

	md, err := os.ReadFile(filepath.Join(dir, "digests", "digest-2024-06-03.md"))
	require.NoError(t, err)
	assert.Contains(t, string(md), "| **GME** | 75.0 |")
	assert.NotContains(t, string(md), "AMC")

	entries, err := os.ReadDir(filepath.Join(dir, "signals"))
	require.NoError(t, err)
	assert.Len(t, entries, 1)
}

func TestDigestJob_ScreenError(t *testing.T) {
	job := &DigestJob{
		Screener: &stubScreener{err: contrarian.ErrEmptyUniverse},
		OutDir:   t.TempDir(),
	}
	assert.ErrorIs(t, job.Run(context.Background()), contrarian.ErrEmptyUniverse)
}
