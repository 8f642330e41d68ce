package types

import "time"

// Article represents a single publication as it moves through the pipeline.
// Fields are populated progressively: the fetch stage fills the feed-derived
// fields, enrichment fills abstract/authors, analysis fills labels and
// translations, ranking fills the scoring fields. JSON tags define the
// artifact schema persisted between stages.
type Article struct {
	Journal          string `json:"journal"`
	Title            string `json:"title"`
	Link             string `json:"link"`
	Summary          string `json:"summary"`
	PublishedISO     string `json:"published_iso"`
	PublishedDisplay string `json:"published_display"`
	FeedURL          string `json:"feed_url,omitempty"`

	// Enrichment (stage 2).
	Abstract     string   `json:"abstract,omitempty"`
	AuthorsFull  []string `json:"authors_full,omitempty"`
	AuthorsShort string   `json:"authors_short,omitempty"`
	DOI          string   `json:"doi,omitempty"`
	Source       string   `json:"source,omitempty"`

	// Analysis (stage 3).
	Labels     []string `json:"labels,omitempty"`
	TitleCN    string   `json:"title_cn,omitempty"`
	AbstractCN string   `json:"abstract_cn,omitempty"`

	// Ranking (stage 4).
	PriorityScore float64 `json:"priority_score,omitempty"`
	AIRelevance   int     `json:"ai_relevance,omitempty"`
}

// Relevance sentinels stored in AIRelevance. Scored articles carry 1-10.
const (
	RelevanceSkipped = -1 // label had few enough articles that scoring was skipped
	RelevanceFailed  = 0  // scoring call failed after retries
)

// PublishedAt parses the article's ISO timestamp. Returns the zero time if
// the field is missing or malformed.
func (a *Article) PublishedAt() time.Time {
	t, err := time.Parse(time.RFC3339, a.PublishedISO)
	if err != nil {
		return time.Time{}
	}
	return t
}

// SetPublished stores a publication instant in both artifact forms.
func (a *Article) SetPublished(t time.Time) {
	utc := t.UTC()
	a.PublishedISO = utc.Format(time.RFC3339)
	a.PublishedDisplay = utc.Format("2006-01-02")
}

// Clone returns an independent copy of the article. Ranking copies articles
// into each label group so per-group score mutation cannot leak across
// groups.
func (a *Article) Clone() *Article {
	dup := *a
	if a.AuthorsFull != nil {
		dup.AuthorsFull = append([]string(nil), a.AuthorsFull...)
	}
	if a.Labels != nil {
		dup.Labels = append([]string(nil), a.Labels...)
	}
	return &dup
}

// RankedSet is the stage-4 artifact: label name to its top articles,
// highest priority first.
type RankedSet map[string][]*Article
