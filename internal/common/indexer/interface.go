package indexer

import (
	"context"

	"github.com/project-tktt/p24-scraper/internal/domain"
)

// Indexer is a persistence backend for a run's collected listings.
type Indexer interface {
	// BulkIndex persists multiple listings at once
	BulkIndex(ctx context.Context, listings []*domain.Listing) error
}
