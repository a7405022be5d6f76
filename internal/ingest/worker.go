package ingest

import (
	"context"
	"encoding/json"
	"log"
	"time"

	"golang.org/x/sync/errgroup"

	"jobpulse/ingest-service/internal/model"
)

// batchSize bounds one upsert call's payload, per the persistence
// layer's request limits.
const batchSize = 500

// Source describes one source family: an optional JSON API endpoint plus
// zero or more RSS feeds. Feeds are listed in ascending precedence
// order; the API snapshot, when present, is the richest feed and merges
// last.
type Source struct {
	Name        string
	APIEndpoint string
	FeedURLs    []string
	FeedShape   FeedShape
}

// ListingStore is the persistence collaborator contract. Both calls are
// transactional and idempotent on retry of identical input.
type ListingStore interface {
	UpsertBatch(ctx context.Context, source string, runTS time.Time, jobs []model.Job) (int64, error)
	MarkMissing(ctx context.Context, source string, runTS time.Time) (int64, error)
}

// Worker drives one reconciliation run: fetch, normalise, merge, persist
// in batches, then close out listings missing from the snapshot.
type Worker struct {
	store   ListingStore
	fetcher *Fetcher
	sources []Source
}

// NewWorker constructs a Worker over the configured sources.
func NewWorker(store ListingStore, fetcher *Fetcher, sources []Source) *Worker {
	return &Worker{store: store, fetcher: fetcher, sources: sources}
}

// Run reconciles every configured source concurrently. Sources are
// independent — each writes only its own identity partition — but any
// source failure fails the run.
func (w *Worker) Run(ctx context.Context, runTS time.Time) (model.RunSummary, error) {
	summaries := make([]model.SourceSummary, len(w.sources))

	g, gctx := errgroup.WithContext(ctx)
	for i, src := range w.sources {
		i, src := i, src
		g.Go(func() error {
			s, err := w.runSource(gctx, src, runTS)
			if err != nil {
				return err
			}
			summaries[i] = s
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return model.RunSummary{}, err
	}

	return model.RunSummary{RunTimestamp: runTS, Sources: summaries}, nil
}

// runSource executes the full pipeline for one source family.
func (w *Worker) runSource(ctx context.Context, src Source, runTS time.Time) (model.SourceSummary, error) {
	log.Printf("[worker] %s: reconciliation started", src.Name)

	apiItems, feedItems, fetched, err := w.fetchAll(ctx, src)
	if err != nil {
		return model.SourceSummary{}, err
	}

	// Feeds in configured order first, API snapshot last: the merger
	// gives later slices precedence for identical identities.
	var sets [][]model.Job
	for fi, items := range feedItems {
		feedURL := src.FeedURLs[fi]
		jobs := make([]model.Job, 0, len(items))
		for _, item := range items {
			job, err := NormalizeFeedItem(src.Name, feedURL, src.FeedShape, item)
			if err != nil {
				return model.SourceSummary{}, err
			}
			jobs = append(jobs, job)
		}
		sets = append(sets, jobs)
	}
	if src.APIEndpoint != "" {
		jobs := make([]model.Job, 0, len(apiItems))
		for _, raw := range apiItems {
			job, err := NormalizeAPIItem(src.Name, src.APIEndpoint, raw)
			if err != nil {
				return model.SourceSummary{}, err
			}
			jobs = append(jobs, job)
		}
		sets = append(sets, jobs)
	}

	merged := MergeByIdentity(sets...)

	summary := model.SourceSummary{
		Source:  src.Name,
		Fetched: fetched,
		Jobs:    len(merged),
	}

	for _, batch := range partition(merged, batchSize) {
		affected, err := w.store.UpsertBatch(ctx, src.Name, runTS, batch)
		if err != nil {
			return model.SourceSummary{}, err
		}
		summary.Batches++
		summary.Upserted += affected
	}

	missing, err := w.store.MarkMissing(ctx, src.Name, runTS)
	if err != nil {
		return model.SourceSummary{}, err
	}
	summary.MarkedMissing = missing

	log.Printf("[worker] %s: done — jobs=%d batches=%d upserted=%d markedMissing=%d",
		src.Name, summary.Jobs, summary.Batches, summary.Upserted, summary.MarkedMissing)
	return summary, nil
}

// fetchAll pulls the API snapshot and every feed of a source
// concurrently. Pure read I/O, no shared mutable state.
func (w *Worker) fetchAll(ctx context.Context, src Source) ([]json.RawMessage, [][]FeedItem, map[string]int, error) {
	var apiItems []json.RawMessage
	feedItems := make([][]FeedItem, len(src.FeedURLs))

	g, gctx := errgroup.WithContext(ctx)
	if src.APIEndpoint != "" {
		g.Go(func() error {
			items, err := w.fetcher.FetchAPI(gctx, src.APIEndpoint)
			if err != nil {
				return err
			}
			apiItems = items
			return nil
		})
	}
	for i, feedURL := range src.FeedURLs {
		i, feedURL := i, feedURL
		g.Go(func() error {
			items, err := w.fetcher.FetchFeed(gctx, feedURL)
			if err != nil {
				return err
			}
			feedItems[i] = items
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, nil, nil, err
	}

	fetched := make(map[string]int)
	if src.APIEndpoint != "" {
		fetched[src.APIEndpoint] = len(apiItems)
	}
	for i, feedURL := range src.FeedURLs {
		fetched[feedURL] = len(feedItems[i])
	}
	return apiItems, feedItems, fetched, nil
}

// partition splits jobs into chunks of at most size records.
func partition(jobs []model.Job, size int) [][]model.Job {
	var batches [][]model.Job
	for start := 0; start < len(jobs); start += size {
		end := min(start+size, len(jobs))
		batches = append(batches, jobs[start:end])
	}
	return batches
}
