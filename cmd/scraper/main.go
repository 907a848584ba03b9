package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/project-tktt/p24-scraper/internal/common/dedup"
	"github.com/project-tktt/p24-scraper/internal/common/extractor"
	"github.com/project-tktt/p24-scraper/internal/common/indexer"
	"github.com/project-tktt/p24-scraper/internal/config"
	"github.com/project-tktt/p24-scraper/internal/module/property24"
)

func main() {
	log.SetFlags(log.LstdFlags | log.Lshortfile)
	log.Println("Starting Property24 Scraper")

	// Load configuration
	cfg := config.Load()

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	// Dedup registry: in-memory by default, Redis-backed when configured so
	// several scraper instances can share one run's dedup state
	var registry dedup.Registry = dedup.NewMemoryRegistry()
	if cfg.Redis.Addr != "" {
		rdb := redis.NewClient(&redis.Options{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
		if err := rdb.Ping(ctx).Err(); err != nil {
			log.Fatalf("Redis connection failed: %v", err)
		}
		log.Println("Redis connected")
		registry = dedup.NewRedisRegistry(rdb, "", 24*time.Hour)
	}

	// Optional sinks are connected up front: a broken backend is a setup
	// error, not something to discover after an hour of scraping
	sinks := []indexer.Indexer{indexer.NewJSONFileIndexer(cfg.Output.Path)}
	if cfg.Postgres.ConnectionString != "" {
		pg, err := indexer.NewPostgresIndexer(cfg.Postgres.ConnectionString, cfg.Postgres.TableName)
		if err != nil {
			log.Fatalf("PostgreSQL connection failed: %v", err)
		}
		defer pg.Close()
		log.Println("PostgreSQL connected")
		sinks = append(sinks, pg)
	}
	if cfg.Elasticsearch.URL != "" {
		es, err := indexer.NewElasticsearchIndexer([]string{cfg.Elasticsearch.URL}, cfg.Elasticsearch.Index)
		if err != nil {
			log.Fatalf("Elasticsearch connection failed: %v", err)
		}
		log.Println("Elasticsearch connected")
		if err := es.EnsureIndex(ctx); err != nil {
			log.Printf("Warning: ensure index failed: %v", err)
		}
		sinks = append(sinks, es)
	}

	ext, err := extractor.New(registry, extractor.DefaultSelectors(), extractor.Config{
		UserAgent: cfg.Fetch.UserAgent,
		ProxyURL:  cfg.Proxy.URL(),
		Timeout:   int(cfg.Fetch.Timeout.Milliseconds()),
	})
	if err != nil {
		log.Fatalf("Extractor setup failed: %v", err)
	}

	crawler := property24.NewCrawler(ext, registry, property24.Config{
		SearchURLTemplate: cfg.Property24.SearchURLTemplate,
		MaxPages:          cfg.Property24.MaxPages,
		BatchSize:         cfg.Property24.BatchSize,
		PageDelayMin:      cfg.Property24.PageDelayMin,
		PageDelayMax:      cfg.Property24.PageDelayMax,
		ListingDelayMin:   cfg.Property24.ListingDelayMin,
		ListingDelayMax:   cfg.Property24.ListingDelayMax,
	})

	listings, report := crawler.Run(ctx)

	if len(listings) > 0 {
		log.Printf("Saving %d scraped listings to %s", len(listings), cfg.Output.Path)
		for _, sink := range sinks {
			if err := sink.BulkIndex(ctx, listings); err != nil {
				log.Printf("Persist error: %v", err)
			}
		}
	} else {
		log.Println("No new listing data was collected to save.")
	}

	log.Println("------------------------------")
	log.Printf("Scraping finished in %s", report.Elapsed.Round(time.Millisecond))
	log.Printf("Search pages scraped: %d (%d failed)", report.PagesScraped, report.PagesFailed)
	log.Printf("Listing links found: %d", report.LinksFound)
	log.Printf("Total unique listings saved: %d (%d duplicates skipped, %d failed)",
		report.ListingsSaved, report.DuplicatesSkipped, report.ListingsFailed)
	log.Printf("Total unique listing numbers encountered: %d", report.ListingNosSeen)
	log.Println("------------------------------")
}
