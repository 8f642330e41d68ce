// Package pipeline wires the five stages together and moves artifacts
// between them. Each stage reads the newest artifact of the previous stage
// (or an explicit path), does its work and writes its own artifact, so
// stages can be run independently or chained in one process.
package pipeline

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"paperbot/ai"
	"paperbot/analyze"
	"paperbot/config"
	"paperbot/enrich"
	"paperbot/executor"
	"paperbot/fetch"
	"paperbot/rank"
	"paperbot/report"
	"paperbot/store"
	"paperbot/types"
)

// SeenFilter is the cross-run dedup capability: a read-only check against
// links delivered by earlier runs, and a separate mark step invoked only
// once the batch was persisted.
type SeenFilter interface {
	Unseen(ctx context.Context, articles []*types.Article) []*types.Article
	MarkSeen(ctx context.Context, articles []*types.Article)
	Close() error
}

// Pipeline holds the stage collaborators. Seen and Mirror are optional and
// nil when not configured.
type Pipeline struct {
	Config    *config.Config
	Feeds     []config.Feed
	Store     *store.Store
	Fetcher   *fetch.Fetcher
	Resolver  *enrich.Resolver
	Completer ai.Completer
	Reports   *report.Writer
	Seen      SeenFilter
	Mirror    *store.Mirror
	Retry     executor.Policy

	// Limit caps how many articles a stage processes; 0 means unlimited.
	// Useful for cheap trial runs against live feeds and AI quota.
	Limit int

	// Progress creates a per-batch reporter; nil disables progress output.
	Progress func(total int, description string) executor.ProgressReporter
}

// New assembles a pipeline from configuration. The AI stages require an API
// key; fetch and report work without one.
func New(ctx context.Context, cfg *config.Config, feeds []config.Feed) (*Pipeline, error) {
	reports, err := report.NewWriter(cfg.ReportsDir)
	if err != nil {
		return nil, err
	}

	retry := executor.DefaultPolicy
	p := &Pipeline{
		Config:   cfg,
		Feeds:    feeds,
		Store:    store.New(cfg.DataDir),
		Fetcher:  fetch.NewFetcher(nil),
		Resolver: enrich.NewResolver(enrich.NewLookupClient("", retry), enrich.NewPageScraper(retry)),
		Reports:  reports,
		Retry:    retry,
		Progress: func(total int, description string) executor.ProgressReporter {
			return executor.NewBar(total, description)
		},
	}

	if cfg.AIAPIKey != "" {
		completer, err := ai.NewClient(cfg.AIAPIKey, cfg.AIModel)
		if err != nil {
			return nil, err
		}
		p.Completer = completer
	}

	if cfg.RedisAddr != "" {
		seen, err := fetch.NewSeenStore(ctx, cfg.RedisAddr, cfg.RedisPassword, cfg.RedisDB, cfg.SeenTTL)
		if err != nil {
			slog.Warn("seen store unavailable, continuing without cross-run dedup", "error", err)
		} else {
			p.Seen = seen
		}
	}

	if cfg.S3Bucket != "" {
		mirror, err := store.NewMirror(ctx, cfg.S3Bucket, cfg.S3Prefix, cfg.S3Region)
		if err != nil {
			slog.Warn("artifact mirror unavailable, continuing local-only", "error", err)
		} else {
			p.Mirror = mirror
		}
	}

	return p, nil
}

// Close releases optional collaborators.
func (p *Pipeline) Close() {
	if p.Seen != nil {
		p.Seen.Close()
	}
}

func (p *Pipeline) reporter(total int, description string) executor.ProgressReporter {
	if p.Progress == nil {
		return nil
	}
	return p.Progress(total, description)
}

// Fetch runs stage 1: pull all feeds, trim to the lookback window, dedup
// within the batch and (when configured) against earlier runs, and persist
// the raw artifact. Returns its path.
func (p *Pipeline) Fetch(ctx context.Context) (string, error) {
	slog.Info("fetching feeds", "feeds", len(p.Feeds), "lookback_days", p.Config.LookbackDays)

	articles := p.Fetcher.FetchAll(ctx, p.Feeds)
	slog.Info("feeds fetched", "entries", len(articles))

	articles = fetch.Reduce(articles, time.Now().UTC(), p.Config.LookbackDays)
	if p.Seen != nil {
		before := len(articles)
		articles = p.Seen.Unseen(ctx, articles)
		slog.Info("cross-run dedup applied", "in", before, "kept", len(articles))
	}
	if len(articles) == 0 {
		return "", fmt.Errorf("no new articles within the last %d days", p.Config.LookbackDays)
	}
	articles = p.capBatch(articles)

	path, err := p.Store.Write(store.RawDir, store.RawSuffix, articles)
	if err != nil {
		return "", err
	}
	slog.Info("raw artifact written", "path", path, "articles", len(articles))
	// Links are marked only now: articles dropped by the cap or lost to a
	// failed write stay eligible for the next run.
	if p.Seen != nil {
		p.Seen.MarkSeen(ctx, articles)
	}
	p.mirror(ctx, path, store.RawDir)
	return path, nil
}

// Enrich runs stage 2 on the given raw artifact, or the newest one when
// inputPath is empty.
func (p *Pipeline) Enrich(ctx context.Context, inputPath string) (string, error) {
	inputPath, articles, err := p.loadArticles(inputPath, store.RawDir, store.RawSuffix)
	if err != nil {
		return "", err
	}

	enriched := enrich.Run(ctx, articles, p.Resolver, p.Config.Concurrency, p.reporter(len(articles), "enriching"))
	if len(enriched) == 0 {
		return "", fmt.Errorf("no articles survived enrichment from %s", inputPath)
	}

	name := store.SiblingName(inputPath, store.RawSuffix, store.ScrapedSuffix)
	path, err := p.Store.WriteNamed(store.ScrapedDir, name, enriched)
	if err != nil {
		return "", err
	}
	slog.Info("scraped artifact written", "path", path, "articles", len(enriched))
	p.mirror(ctx, path, store.ScrapedDir)
	return path, nil
}

// Analyze runs stage 3: classification and translation.
func (p *Pipeline) Analyze(ctx context.Context, inputPath string) (string, error) {
	if p.Completer == nil {
		return "", fmt.Errorf("analysis requires AI_API_KEY")
	}
	inputPath, articles, err := p.loadArticles(inputPath, store.ScrapedDir, store.ScrapedSuffix)
	if err != nil {
		return "", err
	}

	analyzed := analyze.Run(ctx, articles, p.Completer, p.Retry, p.Config.Concurrency, p.reporter(len(articles), "analyzing"))
	if len(analyzed) == 0 {
		return "", fmt.Errorf("no articles survived analysis from %s", inputPath)
	}

	name := store.SiblingName(inputPath, store.ScrapedSuffix, store.AnalyzedSuffix)
	path, err := p.Store.WriteNamed(store.AnalyzedDir, name, analyzed)
	if err != nil {
		return "", err
	}
	slog.Info("analyzed artifact written", "path", path, "articles", len(analyzed))
	p.mirror(ctx, path, store.AnalyzedDir)
	return path, nil
}

// Rank runs stage 4: grouping, scoring and per-label truncation.
func (p *Pipeline) Rank(ctx context.Context, inputPath string) (string, error) {
	if p.Completer == nil {
		return "", fmt.Errorf("ranking requires AI_API_KEY")
	}
	inputPath, articles, err := p.loadArticles(inputPath, store.AnalyzedDir, store.AnalyzedSuffix)
	if err != nil {
		return "", err
	}

	ranked := rank.Run(ctx, articles, p.Completer, p.Retry, p.Config.Concurrency,
		func(total int, label string) executor.ProgressReporter {
			return p.reporter(total, "scoring "+label)
		})
	if len(ranked) == 0 {
		return "", fmt.Errorf("no labels to rank in %s", inputPath)
	}

	name := store.SiblingName(inputPath, store.AnalyzedSuffix, store.RankedSuffix)
	path, err := p.Store.WriteNamed(store.RankedDir, name, ranked)
	if err != nil {
		return "", err
	}
	slog.Info("ranked artifact written", "path", path, "labels", len(ranked))
	p.mirror(ctx, path, store.RankedDir)
	return path, nil
}

// Report runs stage 5: render per-label Markdown and HTML reports from the
// given ranked artifact, or the newest one when inputPath is empty.
func (p *Pipeline) Report(ctx context.Context, inputPath string) error {
	if inputPath == "" {
		var err error
		inputPath, err = p.Store.Latest(store.RankedDir, store.RankedSuffix)
		if err != nil {
			return err
		}
	}

	var ranked types.RankedSet
	if err := p.Store.Read(inputPath, &ranked); err != nil {
		return err
	}

	paths, err := p.Reports.Write(ranked)
	if err != nil {
		return err
	}
	for _, path := range paths {
		p.mirror(ctx, path, "reports")
	}
	return nil
}

// RunAll chains every stage. Any stage error halts the run; a stage that
// produced no output is an error, not an empty artifact.
func (p *Pipeline) RunAll(ctx context.Context) error {
	raw, err := p.Fetch(ctx)
	if err != nil {
		return fmt.Errorf("fetch stage: %w", err)
	}
	scraped, err := p.Enrich(ctx, raw)
	if err != nil {
		return fmt.Errorf("enrich stage: %w", err)
	}
	analyzed, err := p.Analyze(ctx, scraped)
	if err != nil {
		return fmt.Errorf("analyze stage: %w", err)
	}
	ranked, err := p.Rank(ctx, analyzed)
	if err != nil {
		return fmt.Errorf("rank stage: %w", err)
	}
	if err := p.Report(ctx, ranked); err != nil {
		return fmt.Errorf("report stage: %w", err)
	}
	return nil
}

// loadArticles resolves the input artifact (explicit path or newest match)
// and unmarshals it.
func (p *Pipeline) loadArticles(inputPath, subdir, suffix string) (string, []*types.Article, error) {
	if inputPath == "" {
		var err error
		inputPath, err = p.Store.Latest(subdir, suffix)
		if err != nil {
			return "", nil, err
		}
	}
	var articles []*types.Article
	if err := p.Store.Read(inputPath, &articles); err != nil {
		return "", nil, err
	}
	articles = p.capBatch(articles)
	slog.Info("artifact loaded", "path", inputPath, "articles", len(articles))
	return inputPath, articles, nil
}

func (p *Pipeline) capBatch(articles []*types.Article) []*types.Article {
	if p.Limit > 0 && len(articles) > p.Limit {
		slog.Info("batch capped", "limit", p.Limit, "dropped", len(articles)-p.Limit)
		return articles[:p.Limit]
	}
	return articles
}

// mirror uploads an artifact when a mirror is configured. Upload failure is
// logged, never fatal: the local artifact is the source of truth.
func (p *Pipeline) mirror(ctx context.Context, path, subdir string) {
	if p.Mirror == nil {
		return
	}
	if err := p.Mirror.Upload(ctx, path, subdir); err != nil {
		slog.Warn("artifact mirror upload failed", "path", path, "error", err)
	}
}
