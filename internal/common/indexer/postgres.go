package indexer

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"

	"github.com/lib/pq"

	"github.com/project-tktt/p24-scraper/internal/domain"
)

// PostgresIndexer mirrors a run's listings into PostgreSQL, keyed by listing
// URL. Re-running over the same data is a no-op thanks to the conflict
// clause.
type PostgresIndexer struct {
	db        *sql.DB
	tableName string
}

// NewPostgresIndexer connects and ensures the target table exists.
func NewPostgresIndexer(connStr string, tableName string) (*PostgresIndexer, error) {
	db, err := sql.Open("postgres", connStr)
	if err != nil {
		return nil, fmt.Errorf("open postgres connection: %w", err)
	}

	if err := db.Ping(); err != nil {
		return nil, fmt.Errorf("ping postgres: %w", err)
	}

	indexer := &PostgresIndexer{
		db:        db,
		tableName: tableName,
	}

	if err := indexer.ensureTable(); err != nil {
		return nil, fmt.Errorf("ensure table: %w", err)
	}

	return indexer, nil
}

func (i *PostgresIndexer) ensureTable() error {
	query := fmt.Sprintf(`
		CREATE TABLE IF NOT EXISTS %s (
			url TEXT PRIMARY KEY,
			listing_no TEXT,
			price TEXT,
			size TEXT,
			description TEXT,
			features TEXT[],
			address TEXT,
			province TEXT,
			city TEXT,
			town TEXT,
			image_url TEXT,
			extras JSONB,
			scraped_at TIMESTAMP WITH TIME ZONE DEFAULT NOW()
		)
	`, i.tableName)

	_, err := i.db.Exec(query)
	return err
}

// BulkIndex inserts all listings in one transaction, skipping URLs already
// present from earlier runs.
func (i *PostgresIndexer) BulkIndex(ctx context.Context, listings []*domain.Listing) error {
	if len(listings) == 0 {
		return nil
	}

	tx, err := i.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback()

	query := fmt.Sprintf(`
		INSERT INTO %s (
			url, listing_no, price, size, description, features,
			address, province, city, town, image_url, extras
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)
		ON CONFLICT (url) DO NOTHING
	`, i.tableName)

	stmt, err := tx.PrepareContext(ctx, query)
	if err != nil {
		return fmt.Errorf("prepare insert: %w", err)
	}
	defer stmt.Close()

	for _, l := range listings {
		extras, err := json.Marshal(l.Extras)
		if err != nil {
			return fmt.Errorf("marshal extras for %s: %w", l.URL, err)
		}

		if _, err := stmt.ExecContext(ctx,
			l.URL, l.ListingNo, l.Price, l.Size, l.Description,
			pq.Array(l.Features), l.Address, l.Province, l.City, l.Town,
			l.ImageURL, extras,
		); err != nil {
			return fmt.Errorf("insert listing %s: %w", l.URL, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit tx: %w", err)
	}
	return nil
}

// Close releases the connection pool.
func (i *PostgresIndexer) Close() error {
	return i.db.Close()
}
