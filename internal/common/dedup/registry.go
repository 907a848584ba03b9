package dedup

import (
	"context"
	"sync"

	"github.com/project-tktt/p24-scraper/internal/domain"
)

// Registry tracks which listing URLs and listing numbers a run has already
// claimed. Reserve operations are atomic: of any number of concurrent callers
// reserving the same key, exactly one wins. There is no separate
// contains/insert pair, so callers cannot race a check against an insert.
type Registry interface {
	// TryReserveURL claims a listing URL. Returns true if the caller now owns
	// it, false if it was already reserved.
	TryReserveURL(ctx context.Context, url string) (bool, error)

	// TryReserveListingNo claims a listing number. The unknown sentinel is
	// never deduplicated: reserving it always succeeds.
	TryReserveListingNo(ctx context.Context, listingNo string) (bool, error)
}

// MemoryRegistry is the default in-process registry. State lives for one run
// and is never persisted.
type MemoryRegistry struct {
	mu         sync.Mutex
	urls       map[string]struct{}
	listingNos map[string]struct{}
}

// NewMemoryRegistry creates an empty in-memory registry.
func NewMemoryRegistry() *MemoryRegistry {
	return &MemoryRegistry{
		urls:       make(map[string]struct{}),
		listingNos: make(map[string]struct{}),
	}
}

func (r *MemoryRegistry) TryReserveURL(_ context.Context, url string) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, seen := r.urls[url]; seen {
		return false, nil
	}
	r.urls[url] = struct{}{}
	return true, nil
}

func (r *MemoryRegistry) TryReserveListingNo(_ context.Context, listingNo string) (bool, error) {
	if listingNo == "" || listingNo == domain.ValueUnset {
		return true, nil
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, seen := r.listingNos[listingNo]; seen {
		return false, nil
	}
	r.listingNos[listingNo] = struct{}{}
	return true, nil
}
