package enrich

import (
	"context"
	"errors"
	"log/slog"

	"paperbot/executor"
	"paperbot/types"
)

// ErrUnresolved marks an article none of the sources could enrich. The
// record is dropped; the batch continues.
var ErrUnresolved = errors.New("no source resolved a valid abstract")

// Resolver produces full metadata for one filtered article via the fallback
// chain: DOI metadata lookup first, page scrape second, short-circuiting on
// the first success. Retries happen inside each source call, never at this
// level.
type Resolver struct {
	lookup  *LookupClient
	scraper *PageScraper
}

// NewResolver wires the two enrichment sources.
func NewResolver(lookup *LookupClient, scraper *PageScraper) *Resolver {
	return &Resolver{lookup: lookup, scraper: scraper}
}

// Resolve enriches the article in place. On success the abstract, authors
// and source are set, and a source-provided publication date replaces the
// feed-derived one (the resolved date is considered more authoritative even
// when it falls outside the original fetch window).
func (r *Resolver) Resolve(ctx context.Context, article *types.Article) error {
	article.DOI = ExtractDOI(article.Link)

	var enr *Enrichment
	if article.DOI != "" {
		found, err := r.lookup.Lookup(ctx, article.DOI)
		if err != nil {
			slog.Debug("metadata lookup failed", "doi", article.DOI, "error", err)
		} else {
			enr = found
		}
	}

	if enr == nil {
		found, err := r.scraper.Scrape(ctx, article.Link)
		if err != nil {
			slog.Debug("page scrape failed", "link", article.Link, "error", err)
			return ErrUnresolved
		}
		enr = found
	}

	article.Abstract = enr.Abstract
	article.AuthorsFull = enr.AuthorsFull
	article.AuthorsShort = AuthorsShort(enr.AuthorsFull)
	article.Source = enr.Source
	if enr.Published != nil {
		article.SetPublished(*enr.Published)
	}
	return nil
}

// Run executes the whole stage: the pure research filter first, then the
// resolver fan-out under the concurrency cap. Returns only the articles
// that were successfully enriched.
func Run(ctx context.Context, articles []*types.Article, resolver *Resolver, concurrency int, reporter executor.ProgressReporter) []*types.Article {
	var candidates []*types.Article
	for _, article := range articles {
		ok, reason := Classify(article)
		if !ok {
			slog.Debug("skipping non-research entry", "title", article.Title, "reason", reason)
			continue
		}
		candidates = append(candidates, article)
	}
	slog.Info("research filter applied", "in", len(articles), "kept", len(candidates))

	results := executor.Map(ctx, candidates, concurrency, reporter, func(ctx context.Context, article *types.Article) (*types.Article, error) {
		if err := resolver.Resolve(ctx, article); err != nil {
			return nil, err
		}
		return article, nil
	})

	enriched := make([]*types.Article, 0, len(results))
	for _, res := range results {
		if res.Err == nil {
			enriched = append(enriched, res.Value)
		}
	}
	slog.Info("enrichment complete", "attempted", len(candidates), "succeeded", len(enriched))
	return enriched
}
