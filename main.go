// paperbot turns scientific journal RSS feeds into ranked, translated daily
// digest reports. Each pipeline stage is exposed as a subcommand so stages
// can be re-run individually against existing artifacts.
package main

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/lmittmann/tint"
	"github.com/spf13/cobra"

	"paperbot/config"
	"paperbot/pipeline"
)

var (
	debug       bool
	feedsPath   string
	inputFile   string
	lookback    int
	concurrency int
	limit       int
)

var rootCmd = &cobra.Command{
	Use:   "paperbot",
	Short: "Scientific journal digest pipeline",
	Long: `paperbot fetches journal RSS feeds, enriches articles with abstracts and
authors, classifies and translates them with an AI model, ranks them per
topic and renders daily Markdown and HTML reports.`,
	SilenceUsage: true,
}

func init() {
	rootCmd.PersistentFlags().BoolVar(&debug, "debug", false, "enable debug logging")
	rootCmd.PersistentFlags().StringVar(&feedsPath, "feeds", "", "YAML file overriding the built-in feed table")
	rootCmd.PersistentFlags().IntVar(&lookback, "days", 0, "override the lookback window in days")
	rootCmd.PersistentFlags().IntVar(&concurrency, "concurrency", 0, "override the concurrent request cap")
	rootCmd.PersistentFlags().IntVar(&limit, "limit", 0, "process at most this many articles per stage (0 = all)")

	for _, c := range []*cobra.Command{enrichCmd, analyzeCmd, rankCmd, reportCmd} {
		c.Flags().StringVar(&inputFile, "file", "", "specific input artifact (defaults to the newest)")
	}

	rootCmd.AddCommand(fetchCmd, enrichCmd, analyzeCmd, rankCmd, reportCmd, runCmd)
}

var fetchCmd = &cobra.Command{
	Use:   "fetch",
	Short: "Stage 1: pull feeds into a raw artifact",
	RunE: withPipeline(func(ctx context.Context, p *pipeline.Pipeline) error {
		_, err := p.Fetch(ctx)
		return err
	}),
}

var enrichCmd = &cobra.Command{
	Use:   "enrich",
	Short: "Stage 2: filter research articles and resolve abstracts",
	RunE: withPipeline(func(ctx context.Context, p *pipeline.Pipeline) error {
		_, err := p.Enrich(ctx, inputFile)
		return err
	}),
}

var analyzeCmd = &cobra.Command{
	Use:   "analyze",
	Short: "Stage 3: classify and translate articles",
	RunE: withPipeline(func(ctx context.Context, p *pipeline.Pipeline) error {
		_, err := p.Analyze(ctx, inputFile)
		return err
	}),
}

var rankCmd = &cobra.Command{
	Use:   "rank",
	Short: "Stage 4: group by label, score and truncate",
	RunE: withPipeline(func(ctx context.Context, p *pipeline.Pipeline) error {
		_, err := p.Rank(ctx, inputFile)
		return err
	}),
}

var reportCmd = &cobra.Command{
	Use:   "report",
	Short: "Stage 5: render per-label Markdown and HTML reports",
	RunE: withPipeline(func(ctx context.Context, p *pipeline.Pipeline) error {
		return p.Report(ctx, inputFile)
	}),
}

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Run every stage end to end",
	RunE: withPipeline(func(ctx context.Context, p *pipeline.Pipeline) error {
		return p.RunAll(ctx)
	}),
}

// withPipeline handles the shared setup: logging, config, feed table,
// pipeline assembly and signal-aware context.
func withPipeline(run func(ctx context.Context, p *pipeline.Pipeline) error) func(*cobra.Command, []string) error {
	return func(cmd *cobra.Command, args []string) error {
		level := slog.LevelInfo
		if debug {
			level = slog.LevelDebug
		}
		slog.SetDefault(slog.New(tint.NewHandler(os.Stderr, &tint.Options{
			Level:      level,
			TimeFormat: time.Kitchen,
		})))

		cfg, err := config.Load()
		if err != nil {
			return err
		}
		if lookback > 0 {
			cfg.LookbackDays = lookback
		}
		if concurrency > 0 {
			cfg.Concurrency = concurrency
		}

		feeds, err := config.LoadFeeds(feedsPath)
		if err != nil {
			return err
		}

		ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()

		p, err := pipeline.New(ctx, cfg, feeds)
		if err != nil {
			return err
		}
		defer p.Close()
		p.Limit = limit

		return run(ctx, p)
	}
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
