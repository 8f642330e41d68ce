package fetch

import (
	"log/slog"
	"time"

	"paperbot/types"
)

// Reduce applies the two batch reductions that run before any per-record
// work: the publication date window, then link deduplication (first
// occurrence wins, across all feeds). Records without a parseable date are
// dropped. The window is inclusive of the cutoff instant. The window runs
// first so a date-rejected entry never claims its link: a later duplicate
// that passes the window is kept. Both reductions are idempotent.
func Reduce(articles []*types.Article, now time.Time, lookbackDays int) []*types.Article {
	cutoff := now.UTC().AddDate(0, 0, -lookbackDays)

	seen := make(map[string]bool, len(articles))
	kept := make([]*types.Article, 0, len(articles))

	for _, article := range articles {
		published := article.PublishedAt()
		if published.IsZero() {
			slog.Debug("dropping article without publication date", "link", article.Link)
			continue
		}
		if published.Before(cutoff) {
			continue
		}
		if seen[article.Link] {
			continue
		}
		seen[article.Link] = true
		kept = append(kept, article)
	}

	return kept
}
