// Package enrich implements stage 2: filtering raw feed entries down to
// primary research articles and resolving their full metadata through a
// prioritized fallback chain (DOI metadata lookup, then page scrape).
package enrich

import (
	"fmt"
	"strings"

	"paperbot/types"
)

// Title markers for known non-research formats.
var skipTerms = []string{
	"author correction", "publisher correction", "retraction note",
	"obituary:", "q&a:", "news:", "editorial:", "world view:",
	"career feature", "outlook:", "book review", "comment:", "policy forum",
	"news & views",
}

// Classify decides whether a feed entry looks like a primary research
// article. Pure and deterministic; it runs before any network access so
// non-research entries never trigger lookups or scrapes. Returns the reason
// when rejecting.
func Classify(article *types.Article) (bool, string) {
	link := strings.ToLower(article.Link)
	title := strings.ToLower(article.Title)

	// URL patterns are the strongest indicators.
	if strings.Contains(link, "nature.com/articles/d41586") {
		return false, "nature news/feature URL"
	}
	if strings.Contains(link, "science.org/content/article/") {
		return false, "science news URL"
	}
	if strings.Contains(article.FeedURL, "science.org/rss/news_current.xml") {
		return false, "science news feed"
	}

	for _, term := range skipTerms {
		if strings.Contains(title, term) {
			return false, fmt.Sprintf("non-research term %q", term)
		}
	}

	return true, ""
}
