package extractor

import (
	"context"

	"github.com/project-tktt/p24-scraper/internal/domain"
)

// Extractor fetches and extracts Property24 pages in two modes: link
// discovery on search result pages and record extraction on listing pages.
type Extractor interface {
	// ExtractLinks fetches a search result page and returns the listing URLs
	// found on it that the run has not claimed yet.
	ExtractLinks(ctx context.Context, pageURL string) ([]string, error)

	// Extract fetches a listing page and builds its record. Field extraction
	// is best effort; a missing element yields the field's sentinel, never an
	// error.
	Extract(ctx context.Context, listingURL string) (*domain.Listing, error)

	// Name returns the name of this extractor
	Name() string
}

// Config holds common transport configuration for extractors.
type Config struct {
	UserAgent string
	ProxyURL  string
	Timeout   int // milliseconds
}
