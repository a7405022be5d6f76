// jobpulse-ingest-service
//
// Polls remote job boards (Remotive API + RSS, WeWorkRemotely RSS),
// normalises every record into one canonical schema, merges redundant
// feeds by identity, and reconciles the snapshot into PostgreSQL:
// new listings get first_seen_at, present listings get verified_at
// refreshed, absent listings get removed_at stamped — never deleted.
//
// Default mode runs one reconciliation pass and exits (for an external
// cron/k8s CronJob trigger); -daemon keeps the process alive on an
// internal cron schedule.
package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/redis/go-redis/v9"

	"jobpulse/ingest-service/internal/config"
	"jobpulse/ingest-service/internal/db"
	"jobpulse/ingest-service/internal/ingest"
	"jobpulse/ingest-service/internal/scheduler"
	"jobpulse/ingest-service/internal/store"
)

func main() {
	daemon := flag.Bool("daemon", false, "stay alive and reconcile on an internal cron schedule")
	flag.Parse()

	// ── Config ──────────────────────────────────────────────────────────────
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("[ingest-service] Config error: %v", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// ── PostgreSQL ───────────────────────────────────────────────────────────
	log.Println("[ingest-service] Connecting to PostgreSQL…")
	pool, err := db.NewPostgresPool(ctx, cfg.DatabaseURL)
	if err != nil {
		log.Fatalf("[ingest-service] PostgreSQL: %v", err)
	}
	defer pool.Close()

	listings := store.NewListings(pool)
	if err := listings.Migrate(ctx); err != nil {
		log.Fatalf("[ingest-service] Migrate: %v", err)
	}

	// ── Redis (optional — run lock only) ─────────────────────────────────────
	var rdb *redis.Client
	if cfg.RedisURL != "" {
		rdb, err = db.NewRedisClient(ctx, cfg.RedisURL)
		if err != nil {
			log.Fatalf("[ingest-service] Redis: %v", err)
		}
		defer rdb.Close()
	}
	lock := store.NewRunLock(rdb)

	worker := ingest.NewWorker(listings, ingest.NewFetcher(cfg.UserAgent), cfg.Sources())

	run := func(ctx context.Context) error {
		return runOnce(ctx, worker, lock)
	}

	if !*daemon {
		if err := run(ctx); err != nil {
			fmt.Fprintf(os.Stderr, "ingest run failed: %v\n", err)
			os.Exit(1)
		}
		return
	}

	// ── Daemon mode ──────────────────────────────────────────────────────────
	sched := scheduler.New(run, cfg.ScrapeIntervalHours)
	if err := sched.Start(ctx); err != nil {
		log.Fatalf("[ingest-service] Scheduler: %v", err)
	}

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Println("[ingest-service] Shutting down…")
	sched.Stop()
	log.Println("[ingest-service] Stopped.")
}

// runOnce executes one reconciliation pass under the run lock and writes
// the summary JSON to stdout.
func runOnce(ctx context.Context, worker *ingest.Worker, lock *store.RunLock) error {
	acquired, err := lock.Acquire(ctx)
	if err != nil {
		return err
	}
	if !acquired {
		log.Println("[ingest-service] Another run holds the lock — skipping")
		return nil
	}
	defer func() {
		if err := lock.Release(ctx); err != nil {
			log.Printf("[ingest-service] Lock release: %v", err)
		}
	}()

	runTS := time.Now().UTC()
	summary, err := worker.Run(ctx, runTS)
	if err != nil {
		return err
	}

	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(summary)
}
