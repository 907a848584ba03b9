package property24

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/project-tktt/p24-scraper/internal/common/dedup"
	"github.com/project-tktt/p24-scraper/internal/common/extractor"
	"github.com/project-tktt/p24-scraper/internal/common/store"
	"github.com/project-tktt/p24-scraper/internal/domain"
	"github.com/project-tktt/p24-scraper/internal/scheduler"
)

// Config holds Property24-specific configuration.
type Config struct {
	// SearchURLTemplate carries one %d verb for the page number.
	SearchURLTemplate string
	MaxPages          int
	BatchSize         int

	// Inter-batch pause ranges, one per phase.
	PageDelayMin    time.Duration
	PageDelayMax    time.Duration
	ListingDelayMin time.Duration
	ListingDelayMax time.Duration
}

// Report summarizes a finished run.
type Report struct {
	PagesScraped      int
	PagesFailed       int
	LinksFound        int
	ListingsSaved     int
	ListingsFailed    int
	DuplicatesSkipped int
	ListingNosSeen    int
	Elapsed           time.Duration
}

// Crawler drives the two-phase Property24 scrape: search result pages are
// mined for listing URLs, then each listing page is fetched and extracted.
// Individual page failures never abort a run.
type Crawler struct {
	extractor    extractor.Extractor
	registry     dedup.Registry
	config       Config
	pageDelay    scheduler.DelayPolicy
	listingDelay scheduler.DelayPolicy
}

// NewCrawler creates a new Property24 crawler.
func NewCrawler(ext extractor.Extractor, reg dedup.Registry, cfg Config) *Crawler {
	if cfg.SearchURLTemplate == "" {
		cfg.SearchURLTemplate = "https://www.property24.com/for-sale/gauteng/1/p%d"
	}
	if cfg.MaxPages <= 0 {
		cfg.MaxPages = 10
	}
	if cfg.BatchSize <= 0 {
		cfg.BatchSize = 10
	}
	if cfg.PageDelayMin <= 0 && cfg.PageDelayMax <= 0 {
		cfg.PageDelayMin = 3 * time.Second
		cfg.PageDelayMax = 6 * time.Second
	}
	if cfg.ListingDelayMin <= 0 && cfg.ListingDelayMax <= 0 {
		cfg.ListingDelayMin = 5 * time.Second
		cfg.ListingDelayMax = 10 * time.Second
	}

	return &Crawler{
		extractor:    ext,
		registry:     reg,
		config:       cfg,
		pageDelay:    scheduler.RandomDelay(cfg.PageDelayMin, cfg.PageDelayMax),
		listingDelay: scheduler.RandomDelay(cfg.ListingDelayMin, cfg.ListingDelayMax),
	}
}

// Source returns the source identifier.
func (c *Crawler) Source() string {
	return "property24"
}

// Run executes discovery then collection and returns the accepted listings
// with a run report. Only individual tasks fail; the run itself always
// reaches the end, cancelled or not.
func (c *Crawler) Run(ctx context.Context) ([]*domain.Listing, *Report) {
	startedAt := time.Now()
	report := &Report{}

	links := c.discover(ctx, report)
	log.Printf("[Property24] Phase 1 complete: %d listing links from %d pages (%d pages failed)",
		len(links), report.PagesScraped, report.PagesFailed)

	listings := c.collect(ctx, links, report)
	log.Printf("[Property24] Phase 2 complete: %d listings collected, %d duplicates skipped, %d failed",
		report.ListingsSaved, report.DuplicatesSkipped, report.ListingsFailed)

	report.Elapsed = time.Since(startedAt)
	return listings, report
}

// discover runs phase 1: one task per search page number, flattening every
// per-page link set into a single candidate list. The link sets are already
// globally deduplicated by the registry inside the extractor.
func (c *Crawler) discover(ctx context.Context, report *Report) []string {
	tasks := make([]scheduler.Task[[]string], c.config.MaxPages)
	for page := 1; page <= c.config.MaxPages; page++ {
		pageURL := fmt.Sprintf(c.config.SearchURLTemplate, page)
		tasks[page-1] = func(ctx context.Context) ([]string, error) {
			log.Printf("[Property24] Scraping search page: %s", pageURL)
			links, err := c.extractor.ExtractLinks(ctx, pageURL)
			if err != nil {
				return nil, err
			}
			log.Printf("[Property24] Found %d new listing links on %s", len(links), pageURL)
			return links, nil
		}
	}

	outcomes := scheduler.Run(ctx, tasks, scheduler.Config{
		BatchSize: c.config.BatchSize,
		Delay:     c.pageDelay,
		OnBatch: func(batch, total int) {
			log.Printf("[Property24] Running page scraping batch %d/%d", batch, total)
		},
	})

	var links []string
	for _, o := range outcomes {
		if o.Err != nil {
			// A failed page contributes an empty link set, nothing more.
			log.Printf("[Property24] Error scraping page %d: %v", o.Index+1, o.Err)
			report.PagesFailed++
			continue
		}
		report.PagesScraped++
		links = append(links, o.Value...)
	}
	report.LinksFound = len(links)
	return links
}

// collectResult is what one listing task reports back to the batch driver.
// The listing itself is appended to the store inside the task, so the store
// keeps completion order.
type collectResult struct {
	listing   *domain.Listing
	duplicate bool
}

// collect runs phase 2: fetch and extract every candidate listing, reserve
// its listing number, and keep it only if the reservation wins. Records
// carrying the unknown sentinel are always kept.
func (c *Crawler) collect(ctx context.Context, links []string, report *Report) []*domain.Listing {
	results := store.New()

	tasks := make([]scheduler.Task[collectResult], len(links))
	for i, link := range links {
		link := link
		tasks[i] = func(ctx context.Context) (collectResult, error) {
			listing, err := c.extractor.Extract(ctx, link)
			if err != nil {
				return collectResult{}, err
			}

			ok, err := c.registry.TryReserveListingNo(ctx, listing.ListingNo)
			if err != nil {
				return collectResult{}, fmt.Errorf("reserve listing no: %w", err)
			}
			if !ok {
				return collectResult{duplicate: true}, nil
			}

			results.Append(listing)
			return collectResult{listing: listing}, nil
		}
	}

	outcomes := scheduler.Run(ctx, tasks, scheduler.Config{
		BatchSize: c.config.BatchSize,
		Delay:     c.listingDelay,
		OnBatch: func(batch, total int) {
			log.Printf("[Property24] Running listing scraping batch %d/%d (%d collected so far)",
				batch, total, results.Len())
		},
	})

	for _, o := range outcomes {
		switch {
		case o.Err != nil:
			log.Printf("[Property24] Error scraping listing %s: %v", links[o.Index], o.Err)
			report.ListingsFailed++
		case o.Value.duplicate:
			report.DuplicatesSkipped++
		default:
			report.ListingsSaved++
			if o.Value.listing.ListingNo != domain.ValueUnset && o.Value.listing.ListingNo != "" {
				report.ListingNosSeen++
			}
		}
	}

	return results.Listings()
}
