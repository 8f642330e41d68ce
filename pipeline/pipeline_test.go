package pipeline

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"paperbot/config"
	"paperbot/executor"
	"paperbot/fetch"
	"paperbot/report"
	"paperbot/store"
	"paperbot/types"
)

type stubCompleter struct {
	response string
}

func (s *stubCompleter) CompleteJSON(ctx context.Context, system, user string) (string, error) {
	return s.response, nil
}

func testPipeline(t *testing.T, completer *stubCompleter) *Pipeline {
	t.Helper()
	dataDir := t.TempDir()
	reportsDir := t.TempDir()

	reports, err := report.NewWriter(reportsDir)
	if err != nil {
		t.Fatal(err)
	}

	p := &Pipeline{
		Config: &config.Config{
			DataDir:      dataDir,
			ReportsDir:   reportsDir,
			LookbackDays: config.DefaultLookbackDays,
			Concurrency:  2,
		},
		Store:   store.New(dataDir),
		Reports: reports,
		Retry: executor.Policy{
			MaxAttempts: 3,
			BaseDelay:   time.Millisecond,
			Sleep:       func(ctx context.Context, d time.Duration) error { return nil },
		},
	}
	if completer != nil {
		p.Completer = completer
	}
	return p
}

func TestAnalyzeChainsFromScrapedArtifact(t *testing.T) {
	completer := &stubCompleter{response: `{"labels": ["Cancer"], "title_cn": "标题", "abstract_cn": "摘要"}`}
	p := testPipeline(t, completer)

	scraped := []*types.Article{
		{Journal: "Nature", Title: "A paper", Link: "https://example.org/a", Abstract: "long enough"},
	}
	if _, err := p.Store.WriteNamed(store.ScrapedDir, "2025-11-12-scraped.json", scraped); err != nil {
		t.Fatal(err)
	}

	path, err := p.Analyze(context.Background(), "")
	if err != nil {
		t.Fatalf("Analyze: %v", err)
	}
	if filepath.Base(path) != "2025-11-12-analyzed.json" {
		t.Errorf("output name = %q, want input date carried forward", filepath.Base(path))
	}

	var analyzed []*types.Article
	if err := p.Store.Read(path, &analyzed); err != nil {
		t.Fatal(err)
	}
	if len(analyzed) != 1 || analyzed[0].TitleCN != "标题" {
		t.Errorf("analyzed = %+v", analyzed)
	}
}

func TestAnalyzeWithoutCompleterFails(t *testing.T) {
	p := testPipeline(t, nil)
	if _, err := p.Analyze(context.Background(), ""); err == nil {
		t.Error("Analyze without an AI client must fail")
	}
}

func TestAnalyzeWithoutInputFails(t *testing.T) {
	p := testPipeline(t, &stubCompleter{response: "{}"})
	if _, err := p.Analyze(context.Background(), ""); err == nil {
		t.Error("Analyze with no scraped artifact must fail")
	}
}

func TestRankThenReport(t *testing.T) {
	completer := &stubCompleter{response: `{"relevance_score": 7}`}
	p := testPipeline(t, completer)

	analyzed := []*types.Article{
		{Journal: "Nature", Title: "A paper", Link: "https://example.org/a",
			Labels: []string{"Cancer"}, TitleCN: "标题", AbstractCN: "摘要", PublishedDisplay: "2025-11-12"},
	}
	if _, err := p.Store.WriteNamed(store.AnalyzedDir, "2025-11-12-analyzed.json", analyzed); err != nil {
		t.Fatal(err)
	}

	rankedPath, err := p.Rank(context.Background(), "")
	if err != nil {
		t.Fatalf("Rank: %v", err)
	}
	if err := p.Report(context.Background(), rankedPath); err != nil {
		t.Fatalf("Report: %v", err)
	}

	date := time.Now().Format("2006-01-02")
	md, err := os.ReadFile(filepath.Join(p.Config.ReportsDir, date, "Cancer.md"))
	if err != nil {
		t.Fatalf("report not written: %v", err)
	}
	if !strings.Contains(string(md), "A paper") {
		t.Error("report missing the article")
	}
}

type recordingSeen struct {
	marked []*types.Article
}

func (r *recordingSeen) Unseen(ctx context.Context, articles []*types.Article) []*types.Article {
	return articles
}

func (r *recordingSeen) MarkSeen(ctx context.Context, articles []*types.Article) {
	r.marked = append(r.marked, articles...)
}

func (r *recordingSeen) Close() error { return nil }

func TestFetchMarksSeenOnlyForPersistedArticles(t *testing.T) {
	pubDate := time.Now().UTC().Add(-time.Hour).Format("Mon, 02 Jan 2006 15:04:05 GMT")
	feed := fmt.Sprintf(`<?xml version="1.0" encoding="UTF-8"?>
<rss version="2.0"><channel><title>Test</title>
<item><title>first</title><link>https://example.org/1</link><pubDate>%s</pubDate></item>
<item><title>second</title><link>https://example.org/2</link><pubDate>%s</pubDate></item>
</channel></rss>`, pubDate, pubDate)

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(feed))
	}))
	defer srv.Close()

	seen := &recordingSeen{}
	p := testPipeline(t, nil)
	p.Fetcher = fetch.NewFetcher(srv.Client())
	p.Feeds = []config.Feed{{Journal: "Test", URL: srv.URL}}
	p.Seen = seen
	p.Limit = 1

	path, err := p.Fetch(context.Background())
	if err != nil {
		t.Fatalf("Fetch: %v", err)
	}

	var persisted []*types.Article
	if err := p.Store.Read(path, &persisted); err != nil {
		t.Fatal(err)
	}
	if len(persisted) != 1 {
		t.Fatalf("persisted %d articles, want 1 (limit)", len(persisted))
	}
	if len(seen.marked) != 1 {
		t.Fatalf("marked %d links, want only the persisted one", len(seen.marked))
	}
	if seen.marked[0].Link != persisted[0].Link {
		t.Errorf("marked %q, persisted %q", seen.marked[0].Link, persisted[0].Link)
	}
}

func TestLimitCapsBatch(t *testing.T) {
	completer := &stubCompleter{response: `{"labels": ["Cancer"], "title_cn": "t", "abstract_cn": "a"}`}
	p := testPipeline(t, completer)
	p.Limit = 2

	var scraped []*types.Article
	for _, link := range []string{"a", "b", "c", "d"} {
		scraped = append(scraped, &types.Article{
			Journal: "Nature", Title: link, Link: "https://example.org/" + link, Abstract: "x",
		})
	}
	if _, err := p.Store.WriteNamed(store.ScrapedDir, "2025-11-12-scraped.json", scraped); err != nil {
		t.Fatal(err)
	}

	path, err := p.Analyze(context.Background(), "")
	if err != nil {
		t.Fatal(err)
	}
	var analyzed []*types.Article
	if err := p.Store.Read(path, &analyzed); err != nil {
		t.Fatal(err)
	}
	if len(analyzed) != 2 {
		t.Errorf("analyzed = %d articles, want limit of 2", len(analyzed))
	}
}
