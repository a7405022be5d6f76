// Package store implements the listing persistence contracts over
// PostgreSQL, plus the cross-process run lock.
package store

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"jobpulse/ingest-service/internal/model"
)

// Listings persists canonical jobs into the job_listings table, keyed by
// (source, source_job_id). Rows are never deleted: a listing absent from
// a run is marked removed, and first_seen_at survives every update.
type Listings struct {
	pool *pgxpool.Pool
}

// NewListings constructs a Listings store over an open pool.
func NewListings(pool *pgxpool.Pool) *Listings {
	return &Listings{pool: pool}
}

// Migrate creates the job_listings schema if it does not exist yet.
func (l *Listings) Migrate(ctx context.Context) error {
	_, err := l.pool.Exec(ctx, `
CREATE TABLE IF NOT EXISTS job_listings (
  source                      TEXT NOT NULL,
  source_job_id               TEXT NOT NULL,
  url                         TEXT,
  title                       TEXT,
  company_name                TEXT,
  company_logo_url            TEXT,
  category                    TEXT,
  job_type                    TEXT,
  candidate_required_location TEXT,
  salary                      TEXT,
  publication_date            TIMESTAMPTZ,
  description_html            TEXT,
  content_hash                TEXT NOT NULL,
  raw_payload                 JSONB,
  first_seen_at               TIMESTAMPTZ NOT NULL,
  verified_at                 TIMESTAMPTZ NOT NULL,
  removed_at                  TIMESTAMPTZ,
  updated_at                  TIMESTAMPTZ NOT NULL DEFAULT now(),
  PRIMARY KEY (source, source_job_id)
)`)
	if err != nil {
		return fmt.Errorf("create job_listings: %w", err)
	}

	_, err = l.pool.Exec(ctx, `
CREATE INDEX IF NOT EXISTS idx_job_listings_present
ON job_listings (source, verified_at)
WHERE removed_at IS NULL`)
	if err != nil {
		return fmt.Errorf("create idx_job_listings_present: %w", err)
	}

	return nil
}

const upsertListingSQL = `
INSERT INTO job_listings (
  source, source_job_id, url, title, company_name, company_logo_url,
  category, job_type, candidate_required_location, salary,
  publication_date, description_html, content_hash, raw_payload,
  first_seen_at, verified_at, removed_at, updated_at
) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $15, NULL, now())
ON CONFLICT (source, source_job_id) DO UPDATE SET
  url                         = EXCLUDED.url,
  title                       = EXCLUDED.title,
  company_name                = EXCLUDED.company_name,
  company_logo_url            = EXCLUDED.company_logo_url,
  category                    = EXCLUDED.category,
  job_type                    = EXCLUDED.job_type,
  candidate_required_location = EXCLUDED.candidate_required_location,
  salary                      = EXCLUDED.salary,
  publication_date            = EXCLUDED.publication_date,
  description_html            = EXCLUDED.description_html,
  content_hash                = EXCLUDED.content_hash,
  raw_payload                 = EXCLUDED.raw_payload,
  verified_at                 = EXCLUDED.verified_at,
  removed_at                  = NULL,
  updated_at                  = now()`

// UpsertBatch inserts or refreshes every job of one batch inside a single
// transaction and returns the affected row count. first_seen_at is set on
// insert only; verified_at takes the run timestamp; a reappearing listing
// has its removed_at cleared by the same write.
func (l *Listings) UpsertBatch(ctx context.Context, source string, runTS time.Time, jobs []model.Job) (int64, error) {
	if len(jobs) == 0 {
		return 0, nil
	}

	tx, err := l.pool.Begin(ctx)
	if err != nil {
		return 0, fmt.Errorf("begin upsert tx: %w", err)
	}
	defer tx.Rollback(ctx)

	batch := &pgx.Batch{}
	for _, j := range jobs {
		batch.Queue(upsertListingSQL,
			source, j.SourceJobID, j.URL, j.Title, j.CompanyName, j.CompanyLogoURL,
			j.Category, j.JobType, j.CandidateRequiredLocation, j.Salary,
			j.PublicationDate, j.DescriptionHTML, j.ContentHash, j.RawPayload,
			runTS,
		)
	}

	results := tx.SendBatch(ctx, batch)
	var affected int64
	for range jobs {
		tag, err := results.Exec()
		if err != nil {
			results.Close()
			return 0, fmt.Errorf("upsert listing: %w", err)
		}
		affected += tag.RowsAffected()
	}
	if err := results.Close(); err != nil {
		return 0, fmt.Errorf("close upsert batch: %w", err)
	}

	if err := tx.Commit(ctx); err != nil {
		return 0, fmt.Errorf("commit upsert tx: %w", err)
	}
	return affected, nil
}

// MarkMissing stamps removed_at = runTS on every still-present row of the
// source that this run's upserts did not touch (verified_at < runTS).
func (l *Listings) MarkMissing(ctx context.Context, source string, runTS time.Time) (int64, error) {
	tag, err := l.pool.Exec(ctx, `
UPDATE job_listings
SET removed_at = $2, updated_at = now()
WHERE source = $1
  AND removed_at IS NULL
  AND verified_at < $2`,
		source, runTS,
	)
	if err != nil {
		return 0, fmt.Errorf("mark missing for %s: %w", source, err)
	}
	return tag.RowsAffected(), nil
}
