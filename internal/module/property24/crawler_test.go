package property24

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/project-tktt/p24-scraper/internal/common/dedup"
	"github.com/project-tktt/p24-scraper/internal/common/extractor"
	"github.com/project-tktt/p24-scraper/internal/domain"
)

const (
	linkA = "https://www.property24.com/for-sale/gauteng/region/town/1/100"
	linkB = "https://www.property24.com/for-sale/gauteng/region/town/1/101"
	linkC = "https://www.property24.com/for-sale/gauteng/region/town/1/102"
)

// fakeExtractor serves canned pages but runs candidate links through the
// real filtering and the shared registry, like the production extractor.
type fakeExtractor struct {
	registry dedup.Registry
	pages    map[string][]string
	listings map[string]*domain.Listing
}

func (f *fakeExtractor) ExtractLinks(ctx context.Context, pageURL string) ([]string, error) {
	hrefs, ok := f.pages[pageURL]
	if !ok {
		return nil, errors.New("page fetch failed")
	}
	return extractor.FilterNewListingLinks(ctx, f.registry, hrefs), nil
}

func (f *fakeExtractor) Extract(ctx context.Context, listingURL string) (*domain.Listing, error) {
	l, ok := f.listings[listingURL]
	if !ok {
		return nil, errors.New("listing fetch failed")
	}
	cp := *l
	cp.URL = listingURL
	return &cp, nil
}

func (f *fakeExtractor) Name() string { return "fake" }

func testConfig(maxPages int) Config {
	return Config{
		SearchURLTemplate: "https://www.property24.com/for-sale/gauteng/1/p%d",
		MaxPages:          maxPages,
		BatchSize:         10,
		PageDelayMin:      time.Millisecond,
		PageDelayMax:      2 * time.Millisecond,
		ListingDelayMin:   time.Millisecond,
		ListingDelayMax:   2 * time.Millisecond,
	}
}

func TestCrawlerRunDeduplicatesAcrossPhases(t *testing.T) {
	// Two search pages share link B; listings A and B share listing number
	// 999. Discovery must yield three candidates and collection must keep
	// exactly two records, whatever the completion order.
	reg := dedup.NewMemoryRegistry()
	ext := &fakeExtractor{
		registry: reg,
		pages: map[string][]string{
			"https://www.property24.com/for-sale/gauteng/1/p1": {linkA, linkB},
			"https://www.property24.com/for-sale/gauteng/1/p2": {linkB, linkC},
		},
		listings: map[string]*domain.Listing{
			linkA: {Price: "R 1", ListingNo: "999"},
			linkB: {Price: "R 2", ListingNo: "999"},
			linkC: {Price: "R 3", ListingNo: "1000"},
		},
	}

	c := NewCrawler(ext, reg, testConfig(2))
	listings, report := c.Run(context.Background())

	if report.LinksFound != 3 {
		t.Errorf("links found = %d, want 3 (shared link counted once)", report.LinksFound)
	}
	if len(listings) != 2 {
		t.Fatalf("got %d listings, want 2", len(listings))
	}
	if report.ListingsSaved != 2 || report.DuplicatesSkipped != 1 {
		t.Errorf("saved = %d, duplicates = %d; want 2 and 1", report.ListingsSaved, report.DuplicatesSkipped)
	}
	if report.ListingNosSeen != 2 {
		t.Errorf("listing numbers seen = %d, want 2", report.ListingNosSeen)
	}

	nos := map[string]int{}
	for _, l := range listings {
		nos[l.ListingNo]++
	}
	if nos["999"] != 1 || nos["1000"] != 1 {
		t.Errorf("unexpected listing numbers in result set: %v", nos)
	}
	if report.Elapsed <= 0 {
		t.Error("elapsed time not recorded")
	}
}

func TestCrawlerRunKeepsSentinelListings(t *testing.T) {
	reg := dedup.NewMemoryRegistry()
	ext := &fakeExtractor{
		registry: reg,
		pages: map[string][]string{
			"https://www.property24.com/for-sale/gauteng/1/p1": {linkA, linkB, linkC},
		},
		listings: map[string]*domain.Listing{
			linkA: {ListingNo: domain.ValueUnset},
			linkB: {ListingNo: domain.ValueUnset},
			linkC: {ListingNo: domain.ValueUnset},
		},
	}

	c := NewCrawler(ext, reg, testConfig(1))
	listings, report := c.Run(context.Background())

	if len(listings) != 3 {
		t.Fatalf("got %d listings, want all 3 sentinel records kept", len(listings))
	}
	if report.DuplicatesSkipped != 0 {
		t.Errorf("duplicates = %d, want 0", report.DuplicatesSkipped)
	}
	if report.ListingNosSeen != 0 {
		t.Errorf("listing numbers seen = %d, want 0 for sentinel-only run", report.ListingNosSeen)
	}
}

func TestCrawlerRunSurvivesItemFailures(t *testing.T) {
	// One search page is unreachable and one listing page fails; the run
	// still finishes with everything else collected.
	reg := dedup.NewMemoryRegistry()
	ext := &fakeExtractor{
		registry: reg,
		pages: map[string][]string{
			"https://www.property24.com/for-sale/gauteng/1/p1": {linkA, linkB},
			// p2 missing: fetch error
		},
		listings: map[string]*domain.Listing{
			linkA: {ListingNo: "111"},
			// linkB missing: fetch error
		},
	}

	c := NewCrawler(ext, reg, testConfig(2))
	listings, report := c.Run(context.Background())

	if report.PagesFailed != 1 || report.PagesScraped != 1 {
		t.Errorf("pages: scraped %d, failed %d; want 1 and 1", report.PagesScraped, report.PagesFailed)
	}
	if report.ListingsFailed != 1 {
		t.Errorf("listings failed = %d, want 1", report.ListingsFailed)
	}
	if len(listings) != 1 || listings[0].ListingNo != "111" {
		t.Fatalf("expected the surviving listing, got %v", listings)
	}
}

func TestCrawlerRunEmptyDiscovery(t *testing.T) {
	reg := dedup.NewMemoryRegistry()
	ext := &fakeExtractor{
		registry: reg,
		pages: map[string][]string{
			"https://www.property24.com/for-sale/gauteng/1/p1": {"/about", "/contact-us"},
		},
		listings: map[string]*domain.Listing{},
	}

	c := NewCrawler(ext, reg, testConfig(1))
	listings, report := c.Run(context.Background())

	if len(listings) != 0 {
		t.Fatalf("expected no listings, got %d", len(listings))
	}
	if report.LinksFound != 0 || report.ListingsSaved != 0 {
		t.Errorf("unexpected report: %+v", report)
	}
}
