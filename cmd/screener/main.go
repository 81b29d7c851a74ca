package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"text/tabwriter"
	"time"

	"contrarian-screener/internal/interfaces"
	"contrarian-screener/internal/logger"
	"contrarian-screener/internal/report"
	"contrarian-screener/internal/research/contrarian"
	"contrarian-screener/internal/scheduler"
	"contrarian-screener/internal/server"
	"contrarian-screener/internal/signallog"
	"contrarian-screener/internal/store"
	"contrarian-screener/internal/universe"
	"contrarian-screener/internal/watchlist"
)

const usage = `Contrarian stock screener: find where the crowd and the fundamentals disagree.

Usage:
  screener [-config config.yaml] <command> [flags]

Commands:
  analyze <ticker>          Score one ticker (--format terminal|json|md)
  screen                    Rank a universe (--universe, --tickers, --min-score, --limit, --format terminal|json|csv)
  digest                    Write today's Markdown digest (--universe, --min-score, --out)
  watch add <ticker>        Start watching a ticker (--note)
  watch list                Show the watchlist (--score to score every entry)
  watch remove <ticker>     Stop watching a ticker
  serve                     Run the HTTP API and the scheduled digest
`

func main() {
	os.Exit(run(os.Args[1:]))
}

func run(args []string) int {
	global := flag.NewFlagSet("screener", flag.ContinueOnError)
	configPath := global.String("config", "config.yaml", "path to config file")
	global.Usage = func() { fmt.Fprint(os.Stderr, usage) }
	if err := global.Parse(args); err != nil {
		return 2
	}
	if global.NArg() == 0 {
		global.Usage()
		return 2
	}

	if err := initializeSystem(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		return 1
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	defer shutdownSystem(context.Background())

	cfg, err := loadConfig(ctx, *configPath)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return 1
	}

	cmd, rest := global.Arg(0), global.Args()[1:]
	switch cmd {
	case "analyze":
		err = runAnalyze(ctx, cfg, rest)
	case "screen":
		err = runScreen(ctx, cfg, rest)
	case "digest":
		err = runDigest(ctx, cfg, rest)
	case "watch":
		err = runWatch(ctx, cfg, rest)
	case "serve":
		err = runServe(ctx, cfg)
	default:
		fmt.Fprintf(os.Stderr, "unknown command %q\n\n", cmd)
		global.Usage()
		return 2
	}

	if err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return 0
		}
		fmt.Fprintln(os.Stderr, "Error:", err)
		return 1
	}
	return 0
}

// parseArgs parses flags that may appear before or after positional
// arguments and returns the positionals in order.
func parseArgs(fs *flag.FlagSet, args []string) ([]string, error) {
	var positional []string
	for {
		if err := fs.Parse(args); err != nil {
			return nil, err
		}
		if fs.NArg() == 0 {
			return positional, nil
		}
		positional = append(positional, fs.Arg(0))
		args = fs.Args()[1:]
	}
}

func runAnalyze(ctx context.Context, cfg *store.Config, args []string) error {
	fs := flag.NewFlagSet("analyze", flag.ContinueOnError)
	format := fs.String("format", report.FormatTerminal, "output format: terminal, json or md")
	pos, err := parseArgs(fs, args)
	if err != nil {
		return err
	}
	if len(pos) != 1 {
		return errors.New("usage: screener analyze <ticker> [--format terminal|json|md]")
	}

	screener := initializeScreener(ctx, cfg)
	res, err := screener.ScoreOne(ctx, pos[0])
	if err != nil {
		return fmt.Errorf("could not fetch data for %s: %w", strings.ToUpper(pos[0]), err)
	}

	switch *format {
	case report.FormatJSON:
		return report.JSON(os.Stdout, report.NewAnalysis(res))
	case report.FormatMarkdown:
		return report.Markdown(os.Stdout, res)
	case report.FormatTerminal:
		return report.Dashboard(os.Stdout, res)
	default:
		return fmt.Errorf("unknown format %q", *format)
	}
}

func runScreen(ctx context.Context, cfg *store.Config, args []string) error {
	fs := flag.NewFlagSet("screen", flag.ContinueOnError)
	name := fs.String("universe", cfg.Screener.DefaultUniverse, "universe to screen: "+strings.Join(universe.Names(), ", "))
	list := fs.String("tickers", "", "comma-separated tickers, overrides --universe")
	minScore := fs.Float64("min-score", cfg.Screener.MinScore, "minimum contrarian score")
	limit := fs.Int("limit", cfg.Screener.Limit, "maximum results, 0 for all")
	format := fs.String("format", report.FormatTerminal, "output format: terminal, json or csv")
	output := fs.String("output", "", "write the report to this file instead of stdout")
	if _, err := parseArgs(fs, args); err != nil {
		return err
	}

	var tickers []string
	var err error
	if *list != "" {
		tickers, err = universe.Resolve(*list)
	} else {
		tickers, err = universe.Get(*name)
	}
	if err != nil {
		return err
	}

	screener := initializeScreener(ctx, cfg)
	rep, err := screener.Screen(ctx, tickers, contrarian.ScreenOptions{
		MinScore:    *minScore,
		Limit:       *limit,
		Concurrency: cfg.Screener.Concurrency,
	})
	if err != nil {
		return err
	}

	signals := signallog.New(cfg.SignalLog.Dir)
	if err := signals.AppendReport("screen", rep); err != nil {
		logger.Warn(ctx, "Failed to record screen signals", "error", err)
	}
	compressOldSignals(ctx, cfg, signals)

	var w io.Writer = os.Stdout
	if *output != "" {
		f, err := os.Create(*output)
		if err != nil {
			return err
		}
		defer f.Close()
		w = f
	}

	switch *format {
	case report.FormatJSON:
		err = report.JSON(w, rep)
	case report.FormatCSV:
		err = report.CSV(w, rep.Results)
	case report.FormatTerminal:
		fmt.Fprintf(w, "Screened %d of %d tickers, %d at or above %.0f\n\n", rep.Scored, rep.Requested, rep.Qualified, *minScore)
		err = report.Table(w, rep.Results, *minScore)
	default:
		return fmt.Errorf("unknown format %q", *format)
	}
	if err == nil && *output != "" {
		fmt.Printf("Report saved to %s\n", *output)
	}
	return err
}

func runDigest(ctx context.Context, cfg *store.Config, args []string) error {
	fs := flag.NewFlagSet("digest", flag.ContinueOnError)
	name := fs.String("universe", cfg.Digest.Universe, "universe to screen")
	minScore := fs.Float64("min-score", cfg.Digest.MinScore, "only scores above this are listed")
	outDir := fs.String("out", cfg.Digest.OutDir, "directory for digest files")
	if _, err := parseArgs(fs, args); err != nil {
		return err
	}

	tickers, err := universe.Get(*name)
	if err != nil {
		return err
	}

	job := newDigestJob(ctx, cfg, initializeScreener(ctx, cfg), tickers)
	job.MinScore = *minScore
	job.OutDir = *outDir

	if err := scheduler.New(ctx).RunNow(job); err != nil {
		return err
	}

	b, err := os.ReadFile(job.Path(time.Now()))
	if err != nil {
		return err
	}
	_, err = os.Stdout.Write(b)
	return err
}

func newDigestJob(ctx context.Context, cfg *store.Config, screener interfaces.Screener, tickers []string) *scheduler.DigestJob {
	signals := signallog.New(cfg.SignalLog.Dir)
	compressOldSignals(ctx, cfg, signals)
	return &scheduler.DigestJob{
		Screener:    screener,
		Tickers:     tickers,
		MinScore:    cfg.Digest.MinScore,
		Concurrency: cfg.Screener.Concurrency,
		OutDir:      cfg.Digest.OutDir,
		Signals:     signals,
	}
}

func runWatch(ctx context.Context, cfg *store.Config, args []string) error {
	if len(args) == 0 {
		return errors.New("usage: screener watch add|list|remove")
	}

	wl, err := openWatchlist(ctx, cfg)
	if err != nil {
		return err
	}
	defer wl.Close()

	sub, args := args[0], args[1:]
	switch sub {
	case "add":
		fs := flag.NewFlagSet("watch add", flag.ContinueOnError)
		note := fs.String("note", "", "why this ticker is interesting")
		pos, err := parseArgs(fs, args)
		if err != nil {
			return err
		}
		if len(pos) != 1 {
			return errors.New("usage: screener watch add <ticker> [--note text]")
		}
		entry, err := wl.Add(ctx, pos[0], *note)
		if errors.Is(err, watchlist.ErrAlreadyWatched) {
			fmt.Printf("%s is already on the watchlist\n", strings.ToUpper(pos[0]))
			return nil
		}
		if err != nil {
			return err
		}
		fmt.Printf("Added %s to the watchlist\n", entry.Ticker)
		return nil

	case "remove":
		if len(args) != 1 {
			return errors.New("usage: screener watch remove <ticker>")
		}
		if err := wl.Remove(ctx, args[0]); err != nil {
			return err
		}
		fmt.Printf("Removed %s from the watchlist\n", strings.ToUpper(args[0]))
		return nil

	case "list":
		fs := flag.NewFlagSet("watch list", flag.ContinueOnError)
		score := fs.Bool("score", false, "score every watched ticker")
		if _, err := parseArgs(fs, args); err != nil {
			return err
		}
		return listWatchlist(ctx, cfg, wl, *score)

	default:
		return fmt.Errorf("unknown watch command %q", sub)
	}
}

func listWatchlist(ctx context.Context, cfg *store.Config, wl *watchlist.Store, score bool) error {
	if !score {
		entries, err := wl.List(ctx)
		if err != nil {
			return err
		}
		if len(entries) == 0 {
			fmt.Println("Watchlist is empty.")
			return nil
		}
		tw := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
		fmt.Fprintln(tw, "TICKER\tADDED\tNOTE")
		for _, e := range entries {
			fmt.Fprintf(tw, "%s\t%s\t%s\n", e.Ticker, e.AddedAt.Local().Format("2006-01-02"), e.Note)
		}
		return tw.Flush()
	}

	tickers, err := wl.Tickers(ctx)
	if err != nil {
		return err
	}
	if len(tickers) == 0 {
		fmt.Println("Watchlist is empty.")
		return nil
	}

	results := initializeScreener(ctx, cfg).ScoreBatch(ctx, tickers, cfg.Screener.Concurrency)
	contrarian.RankByScore(results)
	return report.Table(os.Stdout, results, 0)
}

func runServe(ctx context.Context, cfg *store.Config) error {
	screener := initializeScreener(ctx, cfg)

	wl, err := openWatchlist(ctx, cfg)
	if err != nil {
		return err
	}
	defer wl.Close()

	srv := server.New(server.Config{
		Addr:            cfg.Server.Addr,
		AllowedOrigins:  cfg.Server.AllowedOrigins,
		Screener:        screener,
		Watchlist:       wl,
		DefaultUniverse: cfg.Screener.DefaultUniverse,
		Concurrency:     cfg.Screener.Concurrency,
	})

	sched := scheduler.New(ctx)
	if cfg.Digest.Enabled {
		tickers, err := universe.Get(cfg.Digest.Universe)
		if err != nil {
			return err
		}
		if err := sched.AddJob(cfg.Digest.Schedule, newDigestJob(ctx, cfg, screener, tickers)); err != nil {
			return fmt.Errorf("schedule digest: %w", err)
		}
		if cfg.SignalLog.RetentionDays > 0 {
			retention := &scheduler.RetentionJob{Signals: signallog.New(cfg.SignalLog.Dir), Days: cfg.SignalLog.RetentionDays}
			if err := sched.AddJob("@daily", retention); err != nil {
				return fmt.Errorf("schedule retention: %w", err)
			}
		}
	}
	sched.Start()
	defer sched.Stop()

	errc := make(chan error, 1)
	go func() {
		errc <- srv.Start()
	}()

	select {
	case err := <-errc:
		if !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	return srv.Shutdown(shutdownCtx)
}
