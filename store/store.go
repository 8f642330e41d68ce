// Package store persists the JSON artifacts passed between pipeline stages
// and locates the most recent artifact for a stage.
package store

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"
)

// Stage artifact suffixes; files are named YYYY-MM-DD-<suffix>.
const (
	RawSuffix      = "raw.json"
	ScrapedSuffix  = "scraped.json"
	AnalyzedSuffix = "analyzed.json"
	RankedSuffix   = "ranked.json"
)

// Subdirectories under the data dir, one per stage output.
const (
	RawDir      = "raw"
	ScrapedDir  = "scraped"
	AnalyzedDir = "analyzed"
	RankedDir   = "ranked"
)

// Store manages the on-disk artifact layout.
type Store struct {
	dataDir string
}

// New creates a store rooted at dataDir.
func New(dataDir string) *Store {
	return &Store{dataDir: dataDir}
}

// Write marshals v into <dataDir>/<subdir>/YYYY-MM-DD-<suffix>, dated
// today. Returns the final path.
func (s *Store) Write(subdir, suffix string, v any) (string, error) {
	return s.WriteNamed(subdir, time.Now().Format("2006-01-02")+"-"+suffix, v)
}

// WriteNamed marshals v into <dataDir>/<subdir>/<name>, creating
// directories as needed. The artifact is written to a temp file and renamed
// so a failure never leaves a partial artifact behind.
func (s *Store) WriteNamed(subdir, name string, v any) (string, error) {
	dir := filepath.Join(s.dataDir, subdir)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("create artifact dir: %w", err)
	}
	path := filepath.Join(dir, name)

	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return "", fmt.Errorf("marshal artifact: %w", err)
	}

	tmp, err := os.CreateTemp(dir, name+".tmp-*")
	if err != nil {
		return "", fmt.Errorf("create temp artifact: %w", err)
	}
	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmp.Name())
		return "", fmt.Errorf("write artifact: %w", err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmp.Name())
		return "", fmt.Errorf("close artifact: %w", err)
	}
	if err := os.Rename(tmp.Name(), path); err != nil {
		os.Remove(tmp.Name())
		return "", fmt.Errorf("finalize artifact: %w", err)
	}
	return path, nil
}

// Latest returns the most recently modified artifact matching the suffix,
// or an error when none exists (a stage run without input halts).
func (s *Store) Latest(subdir, suffix string) (string, error) {
	dir := filepath.Join(s.dataDir, subdir)
	entries, err := os.ReadDir(dir)
	if err != nil {
		return "", fmt.Errorf("no %s artifacts yet (run the previous stage first): %w", subdir, err)
	}

	var newest string
	var newestMod time.Time
	for _, entry := range entries {
		if entry.IsDir() || !strings.HasSuffix(entry.Name(), suffix) {
			continue
		}
		info, err := entry.Info()
		if err != nil {
			continue
		}
		if newest == "" || info.ModTime().After(newestMod) {
			newest = entry.Name()
			newestMod = info.ModTime()
		}
	}
	if newest == "" {
		return "", fmt.Errorf("no %s artifacts in %s (run the previous stage first)", suffix, dir)
	}
	return filepath.Join(dir, newest), nil
}

// Read unmarshals the artifact at path into v.
func (s *Store) Read(path string, v any) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read artifact: %w", err)
	}
	if err := json.Unmarshal(data, v); err != nil {
		return fmt.Errorf("parse artifact %s: %w", path, err)
	}
	return nil
}

// SiblingName converts an input artifact name to the matching output name,
// e.g. 2025-11-12-raw.json -> 2025-11-12-scraped.json. Falls back to
// today's date when the input doesn't follow the convention.
func SiblingName(inputPath, inSuffix, outSuffix string) string {
	base := filepath.Base(inputPath)
	if strings.HasSuffix(base, inSuffix) {
		return strings.TrimSuffix(base, inSuffix) + outSuffix
	}
	return time.Now().Format("2006-01-02") + "-" + outSuffix
}
