package orchestrator

import (
	"context"
	"fmt"
	"log/slog"
	"sync"

	"github.com/robfig/cron/v3"

	"metasync/internal/domain"
)

// SweepScheduler drives periodic change-detection sweeps from the
// orchestrator's sync rules. Every active rule with a recurring frequency
// gets one cron entry sweeping its source system.
type SweepScheduler struct {
	cron    *cron.Cron
	orch    *Orchestrator
	logger  *slog.Logger
	mu      sync.Mutex
	entries map[string]cron.EntryID // sync rule ID → cron entry
}

// NewSweepScheduler creates a sweep scheduler for the orchestrator.
func NewSweepScheduler(orch *Orchestrator, logger *slog.Logger) *SweepScheduler {
	return &SweepScheduler{
		cron:    cron.New(),
		orch:    orch,
		logger:  logger,
		entries: make(map[string]cron.EntryID),
	}
}

// Start registers one cron entry per recurring sync rule and starts the
// scheduler.
func (s *SweepScheduler) Start() error {
	if err := s.loadEntries(); err != nil {
		return err
	}
	s.cron.Start()
	s.logger.Info("sweep scheduler started", "entries", len(s.entries))
	return nil
}

// Stop gracefully stops the scheduler; running sweeps finish.
func (s *SweepScheduler) Stop() {
	s.cron.Stop()
	s.logger.Info("sweep scheduler stopped")
}

// Reload clears all cron entries and rebuilds them from the orchestrator's
// current sync rules.
func (s *SweepScheduler) Reload() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, entryID := range s.entries {
		s.cron.Remove(entryID)
	}
	s.entries = make(map[string]cron.EntryID)
	return s.loadEntries()
}

func (s *SweepScheduler) loadEntries() error {
	s.orch.regMu.RLock()
	rules := append([]domain.SyncRule(nil), s.orch.syncRules...)
	s.orch.regMu.RUnlock()

	for _, rule := range rules {
		offset, recurring := rule.Frequency.Offset()
		if !rule.Active || !recurring {
			continue
		}
		sourceSystem := rule.SourceSystem
		targetSystem := rule.TargetSystem
		ruleName := rule.Name

		spec := fmt.Sprintf("@every %s", offset)
		entryID, err := s.cron.AddFunc(spec, func() {
			ctx := context.Background()
			if _, sweepErr := s.orch.DetectAndSchedule(ctx, sourceSystem, targetSystem); sweepErr != nil {
				s.logger.Warn("scheduled sweep failed",
					"rule", ruleName,
					"source", sourceSystem,
					"error", sweepErr,
				)
			}
		})
		if err != nil {
			s.logger.Warn("invalid sweep schedule", "rule", ruleName, "spec", spec, "error", err)
			continue
		}

		s.entries[rule.ID] = entryID
		s.logger.Info("scheduled sweep", "rule", ruleName, "source", sourceSystem, "every", offset)
	}
	return nil
}
