package database

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"
)

// schemaStatements create the tables and indexes the service needs.
// Statements are idempotent so startup can run them unconditionally.
var schemaStatements = []string{
	`CREATE TABLE IF NOT EXISTS platforms (
		id         BIGSERIAL PRIMARY KEY,
		name       VARCHAR(50) NOT NULL UNIQUE,
		base_url   TEXT NOT NULL,
		is_active  BOOLEAN NOT NULL DEFAULT TRUE,
		created_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
	)`,
	`CREATE INDEX IF NOT EXISTS idx_platforms_name_active ON platforms (name, is_active)`,

	`CREATE TABLE IF NOT EXISTS products (
		id           BIGSERIAL PRIMARY KEY,
		name         VARCHAR(500) NOT NULL UNIQUE,
		brand        VARCHAR(200) NOT NULL DEFAULT '',
		category     VARCHAR(200) NOT NULL DEFAULT '',
		description  TEXT NOT NULL DEFAULT '',
		image_url    TEXT NOT NULL DEFAULT '',
		search_count INTEGER NOT NULL DEFAULT 0,
		created_at   TIMESTAMPTZ NOT NULL DEFAULT NOW(),
		updated_at   TIMESTAMPTZ NOT NULL DEFAULT NOW()
	)`,
	`CREATE INDEX IF NOT EXISTS idx_products_brand_category ON products (brand, category)`,
	`CREATE INDEX IF NOT EXISTS idx_products_search_count ON products (search_count DESC)`,

	`CREATE TABLE IF NOT EXISTS listings (
		id               BIGSERIAL PRIMARY KEY,
		product_id       BIGINT NOT NULL REFERENCES products(id) ON DELETE CASCADE,
		platform_id      BIGINT NOT NULL REFERENCES platforms(id) ON DELETE CASCADE,
		title            VARCHAR(500) NOT NULL,
		url              TEXT NOT NULL,
		image_url        TEXT NOT NULL DEFAULT '',
		price            NUMERIC(10,2) NOT NULL,
		currency         VARCHAR(3) NOT NULL DEFAULT 'USD',
		shipping_cost    NUMERIC(10,2),
		rating           NUMERIC(3,2),
		review_count     INTEGER,
		availability     BOOLEAN NOT NULL DEFAULT TRUE,
		seller_name      VARCHAR(200) NOT NULL DEFAULT '',
		confidence_score NUMERIC(5,2),
		scraped_at       TIMESTAMPTZ NOT NULL DEFAULT NOW(),
		last_updated     TIMESTAMPTZ NOT NULL DEFAULT NOW(),
		UNIQUE (platform_id, url)
	)`,
	`CREATE INDEX IF NOT EXISTS idx_listings_product_platform ON listings (product_id, platform_id)`,
	`CREATE INDEX IF NOT EXISTS idx_listings_price_availability ON listings (price, availability)`,

	`CREATE TABLE IF NOT EXISTS price_history (
		id          BIGSERIAL PRIMARY KEY,
		listing_id  BIGINT NOT NULL REFERENCES listings(id) ON DELETE CASCADE,
		price       NUMERIC(10,2) NOT NULL,
		recorded_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
	)`,
	`CREATE INDEX IF NOT EXISTS idx_price_history_listing_time ON price_history (listing_id, recorded_at DESC)`,

	`CREATE TABLE IF NOT EXISTS scrape_jobs (
		id            VARCHAR(255) PRIMARY KEY,
		fingerprint   VARCHAR(64) NOT NULL,
		search_query  VARCHAR(500) NOT NULL,
		platform_id   BIGINT NOT NULL REFERENCES platforms(id),
		status        VARCHAR(20) NOT NULL DEFAULT 'pending',
		results_count INTEGER NOT NULL DEFAULT 0,
		error_message TEXT NOT NULL DEFAULT '',
		product_ids   BIGINT[] NOT NULL DEFAULT '{}',
		max_results   INTEGER NOT NULL DEFAULT 20,
		started_at    TIMESTAMPTZ,
		completed_at  TIMESTAMPTZ,
		created_at    TIMESTAMPTZ NOT NULL DEFAULT NOW(),
		updated_at    TIMESTAMPTZ NOT NULL DEFAULT NOW()
	)`,
	`CREATE INDEX IF NOT EXISTS idx_scrape_jobs_fingerprint ON scrape_jobs (fingerprint, created_at DESC)`,
	`CREATE INDEX IF NOT EXISTS idx_scrape_jobs_status_time ON scrape_jobs (status, created_at DESC)`,

	`CREATE TABLE IF NOT EXISTS search_history (
		id          BIGSERIAL PRIMARY KEY,
		query       VARCHAR(500) NOT NULL,
		search_type VARCHAR(10) NOT NULL,
		ip_address  VARCHAR(45) NOT NULL DEFAULT '',
		user_agent  VARCHAR(500) NOT NULL DEFAULT '',
		created_at  TIMESTAMPTZ NOT NULL DEFAULT NOW()
	)`,
	`CREATE INDEX IF NOT EXISTS idx_search_history_created ON search_history (created_at DESC)`,
}

// Migrate applies the schema. Safe to call on every startup.
func Migrate(ctx context.Context, db *sqlx.DB) error {
	for _, stmt := range schemaStatements {
		if _, err := db.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("failed to apply schema statement: %w", err)
		}
	}
	return nil
}
