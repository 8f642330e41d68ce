package report

import (
	"errors"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"paperbot/config"
	"paperbot/types"
)

func sampleRanked() types.RankedSet {
	return types.RankedSet{
		"Cancer": {
			{
				Journal:          "Nature",
				Title:            "A landmark tumor study",
				TitleCN:          "一项里程碑式的肿瘤研究",
				Link:             "https://example.org/tumor",
				PublishedDisplay: "2025-11-12",
				AuthorsShort:     "Smith et al., Lee",
				AbstractCN:       "第一段。\n第二段。",
			},
		},
		config.OthersLabel: {
			{Journal: "Nature", Title: "Misc", Link: "https://example.org/misc"},
		},
	}
}

func TestWriteGeneratesBothFormats(t *testing.T) {
	dir := t.TempDir()
	w, err := NewWriter(dir)
	if err != nil {
		t.Fatalf("NewWriter: %v", err)
	}

	paths, err := w.Write(sampleRanked())
	if err != nil {
		t.Fatalf("Write: %v", err)
	}
	if len(paths) != 2 {
		t.Fatalf("paths = %v, want one .md and one .html", paths)
	}

	date := time.Now().Format("2006-01-02")
	md, err := os.ReadFile(filepath.Join(dir, date, "Cancer.md"))
	if err != nil {
		t.Fatalf("read markdown: %v", err)
	}
	for _, want := range []string{
		"# Cancer | 每日最新研究",
		"本期目录",
		"A landmark tumor study",
		"一项里程碑式的肿瘤研究",
		"**Authors:** Smith et al., Lee",
		"> 第一段。\n> 第二段。",
		"https://example.org/tumor",
	} {
		if !strings.Contains(string(md), want) {
			t.Errorf("markdown missing %q", want)
		}
	}

	html, err := os.ReadFile(filepath.Join(dir, date, "Cancer.html"))
	if err != nil {
		t.Fatalf("read html: %v", err)
	}
	for _, want := range []string{"<h2>A landmark tumor study</h2>", "一项里程碑式的肿瘤研究", `href="https://example.org/tumor"`} {
		if !strings.Contains(string(html), want) {
			t.Errorf("html missing %q", want)
		}
	}
}

func TestWriteSkipsOthers(t *testing.T) {
	dir := t.TempDir()
	w, err := NewWriter(dir)
	if err != nil {
		t.Fatal(err)
	}
	if _, err := w.Write(sampleRanked()); err != nil {
		t.Fatal(err)
	}

	date := time.Now().Format("2006-01-02")
	if _, err := os.Stat(filepath.Join(dir, date, "Others.md")); !os.IsNotExist(err) {
		t.Error("Others report must not be generated")
	}
}

func TestWriteFallbacksForMissingFields(t *testing.T) {
	dir := t.TempDir()
	w, err := NewWriter(dir)
	if err != nil {
		t.Fatal(err)
	}

	ranked := types.RankedSet{
		"Neuroscience": {
			{Journal: "Science", Title: "Bare record", Link: "https://example.org/bare", PublishedDisplay: "2025-11-12"},
		},
	}
	if _, err := w.Write(ranked); err != nil {
		t.Fatal(err)
	}

	date := time.Now().Format("2006-01-02")
	md, err := os.ReadFile(filepath.Join(dir, date, "Neuroscience.md"))
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(string(md), "Not Available") {
		t.Error("missing authors must render as Not Available")
	}
	if !strings.Contains(string(md), "> N/A") {
		t.Error("missing abstract must render as N/A")
	}
}

func TestRenderFailureLeavesNothingBehind(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "Cancer.md")

	err := renderAtomic(path, func(io.Writer) error {
		return errors.New("template exploded")
	})
	if err == nil {
		t.Fatal("expected render error")
	}
	if _, statErr := os.Stat(path); !os.IsNotExist(statErr) {
		t.Error("failed render must not leave a report file")
	}
	entries, readErr := os.ReadDir(dir)
	if readErr != nil {
		t.Fatal(readErr)
	}
	if len(entries) != 0 {
		t.Errorf("failed render left %d files behind", len(entries))
	}
}

func TestSafeFilename(t *testing.T) {
	if got := safeFilename("Cell / Molecular Biology"); got != "Cell___Molecular_Biology" {
		t.Errorf("safeFilename = %q", got)
	}
}
