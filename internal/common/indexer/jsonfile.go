package indexer

import (
	"context"
	"encoding/json"
	"fmt"
	"os"

	"github.com/project-tktt/p24-scraper/internal/domain"
)

// JSONFileIndexer writes the run's listings as one pretty-printed UTF-8 JSON
// array. Non-ASCII characters are written as-is, not escaped.
type JSONFileIndexer struct {
	path string
}

// NewJSONFileIndexer creates an indexer writing to path.
func NewJSONFileIndexer(path string) *JSONFileIndexer {
	return &JSONFileIndexer{path: path}
}

// BulkIndex writes all listings in one shot, replacing any previous file.
func (i *JSONFileIndexer) BulkIndex(_ context.Context, listings []*domain.Listing) error {
	f, err := os.Create(i.path)
	if err != nil {
		return fmt.Errorf("create output file: %w", err)
	}

	enc := json.NewEncoder(f)
	enc.SetIndent("", "    ")
	enc.SetEscapeHTML(false)
	if err := enc.Encode(listings); err != nil {
		f.Close()
		return fmt.Errorf("encode listings: %w", err)
	}

	if err := f.Close(); err != nil {
		return fmt.Errorf("close output file: %w", err)
	}
	return nil
}

// Path returns the output file location.
func (i *JSONFileIndexer) Path() string {
	return i.path
}
