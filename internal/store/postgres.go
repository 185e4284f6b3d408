package store

import (
	"context"
	"database/sql"
	"time"

	_ "github.com/jackc/pgx/v5/stdlib"
)

type Store struct{ DB *sql.DB }

func Open(dsn string) (*Store, error) {
	db, err := sql.Open("pgx", dsn)
	if err != nil {
		return nil, err
	}
	db.SetMaxOpenConns(10)
	db.SetMaxIdleConns(5)
	db.SetConnMaxLifetime(30 * time.Minute)
	return &Store{DB: db}, nil
}

func (s *Store) Ping(ctx context.Context) error { return s.DB.PingContext(ctx) }

func (s *Store) Migrate(ctx context.Context) error {
	stmts := []string{
		`CREATE EXTENSION IF NOT EXISTS pgcrypto;`,
		`CREATE TABLE IF NOT EXISTS listings (
            id UUID PRIMARY KEY DEFAULT gen_random_uuid(),
            address_line     TEXT NOT NULL,
            suburb           TEXT NOT NULL,
            state            TEXT NOT NULL DEFAULT 'VIC',
            postcode         TEXT NOT NULL,
            beds             SMALLINT,
            baths            SMALLINT,
            cars             SMALLINT,
            land_size_sqm    INTEGER,
            property_type    TEXT,
            price_guide_text TEXT,
            soi_url          TEXT,
            lat              DOUBLE PRECISION,
            lng              DOUBLE PRECISION,
            status           TEXT NOT NULL DEFAULT 'draft',
            created_by       TEXT,
            created_at       TIMESTAMPTZ NOT NULL DEFAULT now(),
            updated_at       TIMESTAMPTZ NOT NULL DEFAULT now()
        );`,
		`CREATE INDEX IF NOT EXISTS idx_listings_suburb ON listings(suburb);`,
		`CREATE INDEX IF NOT EXISTS idx_listings_status ON listings(status);`,
		`CREATE TABLE IF NOT EXISTS enrichment (
            listing_id             UUID PRIMARY KEY REFERENCES listings(id) ON DELETE CASCADE,
            schools_json           JSONB,
            planning_overlays_json JSONB,
            heritage_json          JSONB,
            ptv_json               JSONB,
            pois_json              JSONB,
            suburb_medians_json    JSONB,
            disclaimers_json       JSONB,
            generated_at           TIMESTAMPTZ
        );`,
		`CREATE TABLE IF NOT EXISTS leads (
            id BIGSERIAL PRIMARY KEY,
            listing_id UUID REFERENCES listings(id) ON DELETE CASCADE,
            name       TEXT,
            email      TEXT,
            phone      TEXT,
            source     TEXT,
            utm_json   JSONB,
            created_at TIMESTAMPTZ NOT NULL DEFAULT now()
        );`,
		`CREATE INDEX IF NOT EXISTS idx_leads_listing ON leads(listing_id);`,
		`CREATE TABLE IF NOT EXISTS social_assets (
            id BIGSERIAL PRIMARY KEY,
            listing_id   UUID REFERENCES listings(id) ON DELETE CASCADE,
            type         TEXT NOT NULL,
            payload_json JSONB NOT NULL,
            status       TEXT NOT NULL DEFAULT 'draft',
            created_at   TIMESTAMPTZ NOT NULL DEFAULT now()
        );`,
		`CREATE INDEX IF NOT EXISTS idx_social_assets_listing ON social_assets(listing_id);`,
		`CREATE TABLE IF NOT EXISTS schools (
            id BIGSERIAL PRIMARY KEY,
            name     TEXT NOT NULL,
            sector   TEXT,
            level    TEXT,
            lat      DOUBLE PRECISION,
            lng      DOUBLE PRECISION,
            address  TEXT,
            suburb   TEXT,
            postcode TEXT
        );`,
		`CREATE TABLE IF NOT EXISTS vgv_medians (
            id BIGSERIAL PRIMARY KEY,
            suburb        TEXT NOT NULL,
            property_type TEXT NOT NULL,
            year          INTEGER NOT NULL,
            median_price  NUMERIC,
            sales_count   INTEGER
        );`,
		`CREATE INDEX IF NOT EXISTS idx_vgv_medians_suburb ON vgv_medians(suburb, property_type, year);`,
	}
	for _, q := range stmts {
		if _, err := s.DB.ExecContext(ctx, q); err != nil {
			return err
		}
	}
	return nil
}
