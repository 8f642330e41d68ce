package enrich

import (
	"testing"

	"paperbot/types"
)

func TestClassify(t *testing.T) {
	cases := []struct {
		name    string
		article types.Article
		want    bool
	}{
		{
			name:    "research article",
			article: types.Article{Title: "Structure of the ribosome", Link: "https://www.nature.com/articles/s41586-025-01234-5"},
			want:    true,
		},
		{
			name:    "nature news url",
			article: types.Article{Title: "Daily briefing", Link: "https://www.nature.com/articles/d41586-025-00001-1"},
			want:    false,
		},
		{
			name:    "science news url",
			article: types.Article{Title: "Some story", Link: "https://www.science.org/content/article/some-story"},
			want:    false,
		},
		{
			name:    "science news feed",
			article: types.Article{Title: "A paper", Link: "https://example.org/x", FeedURL: "https://www.science.org/rss/news_current.xml"},
			want:    false,
		},
		{
			name:    "author correction",
			article: types.Article{Title: "Author Correction: a study of cells", Link: "https://example.org/x"},
			want:    false,
		},
		{
			name:    "news and views",
			article: types.Article{Title: "News & Views: exciting result", Link: "https://example.org/x"},
			want:    false,
		},
		{
			name:    "obituary",
			article: types.Article{Title: "Obituary: a great scientist", Link: "https://example.org/x"},
			want:    false,
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got, reason := Classify(&tc.article)
			if got != tc.want {
				t.Errorf("Classify() = %v (%s), want %v", got, reason, tc.want)
			}
			if !got && reason == "" {
				t.Error("rejection must carry a reason")
			}
		})
	}
}

func TestExtractDOI(t *testing.T) {
	cases := []struct {
		link string
		want string
	}{
		{"https://www.nature.com/articles/s41586-025-01234-5", ""},
		{"https://doi.org/10.1038/s41586-025-01234-5", "10.1038/s41586-025-01234-5"},
		{"https://www.cell.com/cell/fulltext/S0092-8674(25)00001-2?dgcid=raven", ""},
		{"https://www.science.org/doi/10.1126/science.abc1234", "10.1126/science.abc1234"},
	}
	for _, tc := range cases {
		if got := ExtractDOI(tc.link); got != tc.want {
			t.Errorf("ExtractDOI(%q) = %q, want %q", tc.link, got, tc.want)
		}
	}
}

func TestAuthorsShort(t *testing.T) {
	cases := []struct {
		authors []string
		want    string
	}{
		{nil, "Unknown Authors"},
		{[]string{"A. Smith"}, "A. Smith"},
		{[]string{"A. Smith", "B. Jones"}, "A. Smith & B. Jones"},
		{[]string{"A. Smith", "B. Jones", "C. Lee"}, "A. Smith et al., C. Lee"},
	}
	for _, tc := range cases {
		if got := AuthorsShort(tc.authors); got != tc.want {
			t.Errorf("AuthorsShort(%v) = %q, want %q", tc.authors, got, tc.want)
		}
	}
}
