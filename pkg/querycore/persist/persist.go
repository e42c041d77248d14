// Package persist reads and writes the on-disk synonym dictionary format
// and, optionally, a SQLite-backed store for query-log history consumed by
// the query-log spell corrector.
package persist

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"
)

// Document is the on-disk representation of a synonym dictionary: the
// synonym adjacency map, per-token confidence scores, and the statistics
// produced by the most recent mining run. Field names match the wire
// format exactly.
type Document struct {
	Synonyms         map[string][]string `json:"synonyms"`
	LastUpdated      string              `json:"lastUpdated"`
	TotalGroups      int                 `json:"totalGroups"`
	ConfidenceScores map[string]float64  `json:"confidenceScores,omitempty"`
	Statistics       *Statistics         `json:"statistics,omitempty"`
}

// Statistics summarizes a mining run. The reader tolerates a missing
// statistics block (field is a pointer so it can be nil).
type Statistics struct {
	TotalWords      int     `json:"totalWords"`
	TotalPairs      int     `json:"totalPairs"`
	MinSimilarity   float64 `json:"minSimilarity"`
	AvgSimilarity   float64 `json:"avgSimilarity"`
	MaxSimilarity   float64 `json:"maxSimilarity"`
	ArticlesAnalyzed int    `json:"articlesAnalyzed"`
}

// Load reads a Document from path. A missing file is not an error: it
// yields an empty Document so callers can initialize fresh state.
func Load(path string) (*Document, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return &Document{Synonyms: make(map[string][]string)}, nil
		}
		return nil, fmt.Errorf("persist: read %s: %w", path, err)
	}

	var doc Document
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("persist: decode %s: %w", path, err)
	}
	if doc.Synonyms == nil {
		doc.Synonyms = make(map[string][]string)
	}
	return &doc, nil
}

// Save writes doc to path as pretty-printed JSON with non-ASCII letters
// preserved literally (no \uXXXX escaping), creating the parent directory
// if necessary. The write goes to a temp file in the same directory and is
// then renamed into place, so a crash mid-write never leaves a truncated
// file at path.
func Save(doc *Document, path string) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("persist: create directory %s: %w", dir, err)
	}

	doc.LastUpdated = time.Now().UTC().Format(time.RFC3339)

	tmp, err := os.CreateTemp(dir, ".querycore-*.tmp")
	if err != nil {
		return fmt.Errorf("persist: create temp file: %w", err)
	}
	tmpName := tmp.Name()
	defer os.Remove(tmpName)

	enc := json.NewEncoder(tmp)
	enc.SetIndent("", "  ")
	enc.SetEscapeHTML(false)
	if err := enc.Encode(doc); err != nil {
		tmp.Close()
		return fmt.Errorf("persist: encode %s: %w", path, err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("persist: close temp file: %w", err)
	}

	if err := os.Rename(tmpName, path); err != nil {
		return fmt.Errorf("persist: rename into place %s: %w", path, err)
	}
	return nil
}
