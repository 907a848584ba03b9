package store

import (
	"sync"

	"github.com/project-tktt/p24-scraper/internal/domain"
)

// Store accumulates accepted listings for one run. Appends from concurrent
// fetch tasks are serialized, so records land whole, in completion order.
type Store struct {
	mu       sync.Mutex
	listings []*domain.Listing
}

// New creates an empty store.
func New() *Store {
	return &Store{}
}

// Append adds one listing.
func (s *Store) Append(l *domain.Listing) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.listings = append(s.listings, l)
}

// Listings returns a snapshot of everything collected so far.
func (s *Store) Listings() []*domain.Listing {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]*domain.Listing, len(s.listings))
	copy(out, s.listings)
	return out
}

// Len reports how many listings have been collected.
func (s *Store) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.listings)
}
