// Package scheduler wires up the cron job that periodically triggers a
// full reconciliation run in daemon mode.
package scheduler

import (
	"context"
	"fmt"
	"log"

	"github.com/robfig/cron/v3"
)

// RunFunc executes one full reconciliation pass.
type RunFunc func(ctx context.Context) error

// Scheduler wraps robfig/cron and manages the ingest loop.
type Scheduler struct {
	cron *cron.Cron
	run  RunFunc
	spec string // cron spec, e.g. "@every 6h"
}

// New creates a Scheduler that fires every intervalHours hours.
func New(run RunFunc, intervalHours int) *Scheduler {
	return &Scheduler{
		cron: cron.New(cron.WithLogger(cron.DefaultLogger)),
		run:  run,
		spec: fmt.Sprintf("@every %dh", intervalHours),
	}
}

// Start registers the job and starts the scheduler. Also runs one pass
// immediately so the store is populated without waiting for the first
// tick.
func (s *Scheduler) Start(ctx context.Context) error {
	_, err := s.cron.AddFunc(s.spec, func() {
		s.runOnce(ctx)
	})
	if err != nil {
		return fmt.Errorf("cron.AddFunc: %w", err)
	}

	s.cron.Start()
	log.Printf("[scheduler] Cron started — spec: %s", s.spec)

	// Run immediately on startup (non-blocking)
	go s.runOnce(ctx)

	return nil
}

// Stop gracefully shuts down the scheduler.
func (s *Scheduler) Stop() {
	s.cron.Stop()
	log.Println("[scheduler] Cron stopped")
}

func (s *Scheduler) runOnce(ctx context.Context) {
	log.Println("[scheduler] Reconciliation cycle started")
	if err := s.run(ctx); err != nil {
		log.Printf("[scheduler] Run error: %v", err)
		return
	}
	log.Println("[scheduler] Reconciliation cycle complete")
}
