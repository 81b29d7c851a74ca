// Package signallog appends screen hits to daily JSON-lines files and
// compresses old days.
package signallog

import (
	"compress/gzip"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sync"
	"time"

	"contrarian-screener/internal/research/contrarian"
)

type Entry struct {
	Time             string  `json:"time"`
	RunID            string  `json:"run_id"`
	Source           string  `json:"source"`
	Rank             int     `json:"rank"`
	Ticker           string  `json:"ticker"`
	Signal           string  `json:"signal"`
	ContrarianScore  float64 `json:"contrarian_score"`
	FundamentalScore float64 `json:"fundamental_score"`
	SentimentScore   float64 `json:"sentiment_score"`
	Price            float64 `json:"price"`
}

// Log writes entries under dir, one file per UTC day
type Log struct {
	dir string
	mu  sync.Mutex
	now func() time.Time
}

func New(dir string) *Log {
	return &Log{dir: dir, now: time.Now}
}

func (l *Log) dailyFilepath(t time.Time) string {
	return filepath.Join(l.dir, t.UTC().Format("2006-01-02")+".jsonl")
}

// AppendReport writes one entry per ranked result of a screen run
func (l *Log) AppendReport(source string, report *contrarian.ScreenReport) error {
	if report == nil || len(report.Results) == 0 {
		return nil
	}

	entries := make([]Entry, 0, len(report.Results))
	for i, r := range report.Results {
		e := Entry{
			RunID:            report.RunID,
			Source:           source,
			Rank:             i + 1,
			Ticker:           r.Ticker,
			Signal:           string(r.Scores.Signal),
			ContrarianScore:  r.Scores.ContrarianScore,
			FundamentalScore: r.Scores.FundamentalScore,
			SentimentScore:   r.Scores.SentimentScore,
		}
		if r.Stock != nil {
			e.Price = r.Stock.Price
		}
		entries = append(entries, e)
	}
	return l.Append(entries...)
}

func (l *Log) Append(entries ...Entry) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	now := l.now().UTC()
	p := l.dailyFilepath(now)
	if err := os.MkdirAll(filepath.Dir(p), 0o755); err != nil {
		return err
	}
	f, err := os.OpenFile(p, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return err
	}
	defer f.Close()

	for _, e := range entries {
		e.Time = now.Format(time.RFC3339)
		b, err := json.Marshal(e)
		if err != nil {
			return err
		}
		if _, err := fmt.Fprintln(f, string(b)); err != nil {
			return err
		}
	}
	return nil
}

// CompressOlder gzips daily files last modified more than retentionDays ago
func (l *Log) CompressOlder(retentionDays int) error {
	if retentionDays <= 0 {
		return nil
	}
	l.mu.Lock()
	defer l.mu.Unlock()

	cutoff := l.now().AddDate(0, 0, -retentionDays)
	return filepath.WalkDir(l.dir, func(p string, d os.DirEntry, err error) error {
		if err != nil {
			if os.IsNotExist(err) {
				return nil
			}
			return err
		}
		if d.IsDir() || filepath.Ext(p) != ".jsonl" {
			return nil
		}
		info, err := d.Info()
		if err != nil || !info.ModTime().Before(cutoff) {
			return nil
		}
		return gzipFile(p)
	})
}

// gzipFile replaces p with p.gz
func gzipFile(p string) error {
	gz := p + ".gz"
	if _, err := os.Stat(gz); err == nil {
		return os.Remove(p)
	}

	in, err := os.Open(p)
	if err != nil {
		return err
	}
	defer in.Close()

	out, err := os.OpenFile(gz, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0o644)
	if err != nil {
		return err
	}

	gw := gzip.NewWriter(out)
	_, copyErr := io.Copy(gw, in)
	closeErr := gw.Close()
	if err := out.Close(); err != nil && closeErr == nil {
		closeErr = err
	}
	if copyErr != nil || closeErr != nil {
		os.Remove(gz)
		if copyErr != nil {
			return copyErr
		}
		return closeErr
	}
	return os.Remove(p)
}
