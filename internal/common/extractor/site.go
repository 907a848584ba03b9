package extractor

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/gocolly/colly/v2"

	"github.com/project-tktt/p24-scraper/internal/common/cleaner"
	"github.com/project-tktt/p24-scraper/internal/common/dedup"
	"github.com/project-tktt/p24-scraper/internal/common/fetcher"
	"github.com/project-tktt/p24-scraper/internal/domain"
)

// SiteExtractor implements Extractor for Property24: Colly for search result
// pages, a plain HTTP fetch plus goquery for listing detail pages.
type SiteExtractor struct {
	collector *colly.Collector
	fetcher   *fetcher.Fetcher
	registry  dedup.Registry
	selectors Selectors
	cleaner   *cleaner.Cleaner
}

// New creates a SiteExtractor. A bad proxy URL is a setup error.
func New(reg dedup.Registry, sel Selectors, cfg Config) (*SiteExtractor, error) {
	c := colly.NewCollector(
		colly.UserAgent(cfg.UserAgent),
		colly.AllowURLRevisit(),
	)
	if cfg.Timeout > 0 {
		c.SetRequestTimeout(time.Duration(cfg.Timeout) * time.Millisecond)
	}
	if cfg.ProxyURL != "" {
		if err := c.SetProxy(cfg.ProxyURL); err != nil {
			return nil, fmt.Errorf("set proxy: %w", err)
		}
	}

	f, err := fetcher.New(fetcher.Config{
		UserAgent: cfg.UserAgent,
		ProxyURL:  cfg.ProxyURL,
		Timeout:   time.Duration(cfg.Timeout) * time.Millisecond,
	})
	if err != nil {
		return nil, err
	}

	return &SiteExtractor{
		collector: c,
		fetcher:   f,
		registry:  reg,
		selectors: sel,
		cleaner:   cleaner.NewCleaner(),
	}, nil
}

func (e *SiteExtractor) Name() string {
	return "property24"
}

// ExtractLinks fetches one search result page and returns the listing URLs
// on it that this run has not claimed yet.
func (e *SiteExtractor) ExtractLinks(ctx context.Context, pageURL string) ([]string, error) {
	var hrefs []string
	var fetchErr error

	c := e.collector.Clone()
	c.OnHTML(e.selectors.Anchor, func(el *colly.HTMLElement) {
		hrefs = append(hrefs, el.Attr("href"))
	})
	c.OnError(func(r *colly.Response, err error) {
		fetchErr = fmt.Errorf("fetch %s (status %d): %w", pageURL, r.StatusCode, err)
	})

	if err := c.Visit(pageURL); err != nil {
		return nil, fmt.Errorf("visit search page: %w", err)
	}
	if fetchErr != nil {
		return nil, fetchErr
	}

	return FilterNewListingLinks(ctx, e.registry, hrefs), nil
}

// Extract fetches a listing page and builds its record.
func (e *SiteExtractor) Extract(ctx context.Context, listingURL string) (*domain.Listing, error) {
	doc, err := e.fetcher.Fetch(ctx, listingURL)
	if err != nil {
		return nil, err
	}
	return ExtractListing(doc, e.selectors, e.cleaner, listingURL), nil
}

// FilterNewListingLinks normalizes candidate hrefs, keeps only those matching
// the listing URL pattern, collapses page-local duplicates, and reserves the
// survivors in the registry. The local collapse just saves registry calls;
// correctness rests on the registry's atomic reserve alone.
func FilterNewListingLinks(ctx context.Context, reg dedup.Registry, hrefs []string) []string {
	var links []string
	local := make(map[string]struct{})

	for _, href := range hrefs {
		u := NormalizeLink(href)
		if !IsListingURL(u) {
			continue
		}
		if _, dup := local[u]; dup {
			continue
		}
		local[u] = struct{}{}

		ok, err := reg.TryReserveURL(ctx, u)
		if err != nil {
			log.Printf("Reserve URL error for %s: %v", u, err)
			continue
		}
		if !ok {
			continue
		}
		links = append(links, u)
	}
	return links
}
