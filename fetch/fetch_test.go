package fetch

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"paperbot/config"
)

const testFeed = `<?xml version="1.0" encoding="UTF-8"?>
<rss version="2.0">
<channel>
<title>Test Journal</title>
<item>
	<title>  A study of something  </title>
	<link>https://example.org/articles/s1</link>
	<description>&lt;p&gt;An &lt;b&gt;HTML&lt;/b&gt; summary.&lt;/p&gt;</description>
	<pubDate>Tue, 11 Nov 2025 08:00:00 GMT</pubDate>
</item>
<item>
	<title>No link entry</title>
	<description>dropped</description>
</item>
</channel>
</rss>`

func TestFetchAllParsesEntries(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("User-Agent") == "" || r.Header.Get("Referer") == "" {
			t.Error("browser-like headers not sent")
		}
		w.Header().Set("Content-Type", "application/rss+xml")
		w.Write([]byte(testFeed))
	}))
	defer srv.Close()

	f := NewFetcher(srv.Client())
	articles := f.FetchAll(context.Background(), []config.Feed{{Journal: "Test Journal", URL: srv.URL}})

	if len(articles) != 1 {
		t.Fatalf("got %d articles, want 1 (linkless entry dropped)", len(articles))
	}
	a := articles[0]
	if a.Title != "A study of something" {
		t.Errorf("title = %q, want trimmed title", a.Title)
	}
	if a.Summary != "An HTML summary." {
		t.Errorf("summary = %q, want HTML stripped", a.Summary)
	}
	if a.Journal != "Test Journal" || a.FeedURL != srv.URL {
		t.Errorf("provenance not recorded: journal=%q feed=%q", a.Journal, a.FeedURL)
	}
	if a.PublishedISO == "" || a.PublishedDisplay != "2025-11-11" {
		t.Errorf("published fields = %q / %q", a.PublishedISO, a.PublishedDisplay)
	}
}

func TestFetchAllSkipsFailingFeed(t *testing.T) {
	bad := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "forbidden", http.StatusForbidden)
	}))
	defer bad.Close()
	good := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(testFeed))
	}))
	defer good.Close()

	f := NewFetcher(nil)
	articles := f.FetchAll(context.Background(), []config.Feed{
		{Journal: "Broken", URL: bad.URL},
		{Journal: "Working", URL: good.URL},
	})

	if len(articles) != 1 {
		t.Fatalf("got %d articles, want 1 from the working feed", len(articles))
	}
	if articles[0].Journal != "Working" {
		t.Errorf("journal = %q, want Working", articles[0].Journal)
	}
}

func TestFetchAllDedupsFeedURLs(t *testing.T) {
	hits := 0
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits++
		w.Write([]byte(testFeed))
	}))
	defer srv.Close()

	f := NewFetcher(nil)
	articles := f.FetchAll(context.Background(), []config.Feed{
		{Journal: "First Name", URL: srv.URL},
		{Journal: "Second Name", URL: srv.URL},
	})

	if hits != 1 {
		t.Errorf("feed URL fetched %d times, want 1", hits)
	}
	if len(articles) != 1 || articles[0].Journal != "First Name" {
		t.Errorf("first journal name must win for a shared URL")
	}
}

func TestCleanSummaryPlainTextUntouched(t *testing.T) {
	if got := CleanSummary("  plain text  "); got != "plain text" {
		t.Errorf("got %q", got)
	}
}
