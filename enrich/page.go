package enrich

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
	"github.com/araddon/dateparse"

	"paperbot/config"
	"paperbot/executor"
)

// Content types that mark a page as something other than primary research.
var nonResearchTypes = []string{
	"news & views", "news and views", "commentary", "editorial", "news",
	"correspondence", "book review", "obituary", "retraction", "correction",
	"perspective", "world view",
}

// Gate rejections. These describe the page's content, not a transient
// fault, so they are terminal: the retry policy classifies them as fatal.
var (
	ErrNonResearchType  = errors.New("page type is not primary research")
	ErrAbstractTooShort = errors.New("abstract missing or below minimum length")
	ErrNoAuthors        = errors.New("no author metadata on page")
)

var scrapeHeaders = map[string]string{
	"User-Agent":      "Mozilla/5.0 (Macintosh; Intel Mac OS X 10_15_7) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/115.0.0.0 Safari/537.36",
	"Accept":          "text/html,application/xhtml+xml,application/xml;q=0.9,image/avif,image/webp,*/*;q=0.8",
	"Accept-Language": "en-US,en;q=0.5",
	"Referer":         "https://www.google.com/",
}

// PageScraper extracts citation metadata from an article's own page. Pages
// pass a two-stage validation: a type gate on the declared content type,
// then a length gate on the extracted abstract.
type PageScraper struct {
	client *http.Client
	retry  executor.Policy
}

// NewPageScraper builds a scraper with the standard scrape timeout.
func NewPageScraper(retry executor.Policy) *PageScraper {
	return &PageScraper{
		client: &http.Client{Timeout: config.ScrapeTimeout},
		retry:  retry,
	}
}

// Scrape fetches the page and applies the gates. Transport and status
// failures are retried; gate rejections abort immediately.
func (s *PageScraper) Scrape(ctx context.Context, pageURL string) (*Enrichment, error) {
	var enr *Enrichment
	err := s.retry.Do(ctx, "page scrape", func(ctx context.Context) error {
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, pageURL, nil)
		if err != nil {
			return err
		}
		for k, v := range scrapeHeaders {
			req.Header.Set(k, v)
		}

		resp, err := s.client.Do(req)
		if err != nil {
			return err
		}
		defer resp.Body.Close()

		if resp.StatusCode < 200 || resp.StatusCode >= 300 {
			return &executor.StatusError{Code: resp.StatusCode, Body: resp.Status}
		}

		doc, err := goquery.NewDocumentFromReader(resp.Body)
		if err != nil {
			return err
		}

		enr, err = extractPage(doc)
		return err
	})
	if err != nil {
		return nil, err
	}
	return enr, nil
}

func extractPage(doc *goquery.Document) (*Enrichment, error) {
	// Stage 1: type gate.
	pageType := firstMetaContent(doc,
		`meta[name="dc.type"]`,
		`meta[property="og:type"]`,
		`meta[name="article:section"]`)
	if pageType != "" {
		lower := strings.ToLower(pageType)
		for _, term := range nonResearchTypes {
			if strings.Contains(lower, term) {
				return nil, fmt.Errorf("%w: %q", ErrNonResearchType, pageType)
			}
		}
	}

	// Stage 2: length gate.
	abstract := strings.TrimSpace(firstMetaContent(doc,
		`meta[name="citation_abstract"]`,
		`meta[name="dc.description"]`,
		`meta[property="og:description"]`))
	if len(abstract) < config.MinAbstractLength {
		return nil, fmt.Errorf("%w: %d chars", ErrAbstractTooShort, len(abstract))
	}

	var authors []string
	doc.Find(`meta[name="citation_author"]`).Each(func(_ int, sel *goquery.Selection) {
		if content, ok := sel.Attr("content"); ok && content != "" {
			authors = append(authors, content)
		}
	})
	if len(authors) == 0 {
		return nil, ErrNoAuthors
	}

	enr := &Enrichment{
		Abstract:    abstract,
		AuthorsFull: authors,
		Source:      "Scrape",
	}

	if raw := firstMetaContent(doc,
		`meta[name="citation_publication_date"]`,
		`meta[name="dc.date"]`); raw != "" {
		if t, err := dateparse.ParseIn(raw, time.UTC); err == nil {
			enr.Published = &t
		}
	}

	return enr, nil
}

func firstMetaContent(doc *goquery.Document, selectors ...string) string {
	for _, sel := range selectors {
		if content, ok := doc.Find(sel).First().Attr("content"); ok && content != "" {
			return content
		}
	}
	return ""
}
