// Package fetch implements stage 1: pulling journal RSS/Atom feeds into raw
// article records, plus the dedup and date-window reductions applied to the
// ingested batch.
package fetch

import (
	"context"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
	"github.com/mmcdole/gofeed"

	"paperbot/config"
	"paperbot/types"
)

// Browser-like headers; several journal sites reject default Go clients.
var requestHeaders = map[string]string{
	"User-Agent":      "Mozilla/5.0 (Macintosh; Intel Mac OS X 10_15_7) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/120.0.0.0 Safari/537.36",
	"Accept":          "text/html,application/xhtml+xml,application/xml;q=0.9,image/webp,*/*;q=0.8",
	"Accept-Language": "en-US,en;q=0.9",
	"Referer":         "https://www.google.com/",
}

// Fetcher retrieves and parses journal feeds.
type Fetcher struct {
	client *http.Client
	parser *gofeed.Parser
}

// NewFetcher builds a fetcher with the given HTTP client, defaulting to one
// with the standard feed timeout.
func NewFetcher(client *http.Client) *Fetcher {
	if client == nil {
		client = &http.Client{Timeout: config.FeedTimeout}
	}
	return &Fetcher{client: client, parser: gofeed.NewParser()}
}

// FetchAll retrieves every feed in the table and flattens the entries into
// article records. Duplicate feed URLs are fetched once (first journal name
// wins). A failing feed is logged and skipped; it never aborts the run.
func (f *Fetcher) FetchAll(ctx context.Context, feeds []config.Feed) []*types.Article {
	seenURLs := make(map[string]bool, len(feeds))
	var articles []*types.Article

	for _, feed := range feeds {
		if seenURLs[feed.URL] {
			continue
		}
		seenURLs[feed.URL] = true

		entries, err := f.fetchOne(ctx, feed)
		if err != nil {
			slog.Warn("feed fetch failed", "journal", feed.Journal, "error", err)
			continue
		}
		slog.Debug("feed fetched", "journal", feed.Journal, "entries", len(entries))
		articles = append(articles, entries...)
	}

	return articles
}

func (f *Fetcher) fetchOne(ctx context.Context, feed config.Feed) ([]*types.Article, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, feed.URL, nil)
	if err != nil {
		return nil, err
	}
	for k, v := range requestHeaders {
		req.Header.Set(k, v)
	}

	resp, err := f.client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		io.Copy(io.Discard, resp.Body)
		return nil, &feedStatusError{code: resp.StatusCode, url: feed.URL}
	}

	parsed, err := f.parser.Parse(resp.Body)
	if err != nil {
		return nil, err
	}

	articles := make([]*types.Article, 0, len(parsed.Items))
	for _, item := range parsed.Items {
		if item.Link == "" {
			continue
		}
		article := &types.Article{
			Journal: feed.Journal,
			Title:   strings.TrimSpace(item.Title),
			Link:    item.Link,
			Summary: CleanSummary(item.Description),
			FeedURL: feed.URL,
		}
		if t := publishedTime(item); t != nil {
			article.SetPublished(*t)
		}
		articles = append(articles, article)
	}
	return articles, nil
}

// publishedTime tries the published then updated timestamps.
func publishedTime(item *gofeed.Item) *time.Time {
	if item.PublishedParsed != nil {
		return item.PublishedParsed
	}
	return item.UpdatedParsed
}

// CleanSummary strips HTML markup from a feed summary, leaving plain text.
func CleanSummary(summary string) string {
	summary = strings.TrimSpace(summary)
	if !strings.Contains(summary, "<") {
		return summary
	}
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(summary))
	if err != nil {
		return summary
	}
	return strings.TrimSpace(doc.Text())
}

type feedStatusError struct {
	code int
	url  string
}

func (e *feedStatusError) Error() string {
	return "feed " + e.url + " returned status " + http.StatusText(e.code)
}
