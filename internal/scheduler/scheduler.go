package scheduler

import (
	"fmt"
	"sync"
	"time"

	"github.com/robfig/cron/v3"

	"github.com/abrezinsky/polydemo/internal/logger"
	"github.com/abrezinsky/polydemo/internal/services"
)

// Sweeper reclassifies mounted widgets and reaps idle ones
type Sweeper interface {
	Sweep(idleTTL time.Duration) services.SweepResult
}

// Scheduler runs the widget lifecycle sweep on a fixed interval
type Scheduler struct {
	log     logger.Logger
	sweeper Sweeper
	idleTTL time.Duration

	cron    *cron.Cron
	mu      sync.Mutex
	entryID cron.EntryID
	started bool
}

// New creates a scheduler. Overlapping sweeps are skipped.
func New(log logger.Logger, sweeper Sweeper, idleTTL time.Duration) *Scheduler {
	return &Scheduler{
		log:     log,
		sweeper: sweeper,
		idleTTL: idleTTL,
		cron:    cron.New(cron.WithChain(cron.SkipIfStillRunning(cron.DiscardLogger))),
	}
}

// Schedule sets the sweep interval, replacing any previous schedule
func (s *Scheduler) Schedule(interval time.Duration) error {
	if interval < time.Second {
		return fmt.Errorf("sweep interval %s is below one second", interval)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if s.entryID != 0 {
		s.cron.Remove(s.entryID)
	}

	entryID, err := s.cron.AddFunc("@every "+interval.String(), s.RunOnce)
	if err != nil {
		return fmt.Errorf("add cron job: %w", err)
	}
	s.entryID = entryID
	s.log.Debug("Lifecycle sweep scheduled", "interval", interval, "idle_ttl", s.idleTTL)
	return nil
}

// RunOnce performs a single sweep
func (s *Scheduler) RunOnce() {
	result := s.sweeper.Sweep(s.idleTTL)
	if result.Changed > 0 || result.Reaped > 0 {
		s.log.Info("Lifecycle sweep", "checked", result.Checked, "changed", result.Changed, "reaped", result.Reaped)
	}
}

// Start begins the scheduler
func (s *Scheduler) Start() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.started {
		s.cron.Start()
		s.started = true
	}
}

// Stop halts the scheduler and waits for a running sweep to finish
func (s *Scheduler) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.started {
		<-s.cron.Stop().Done()
		s.started = false
	}
}
