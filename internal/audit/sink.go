// Package audit provides the engine's default audit sink: structured log
// output plus a bounded in-memory window for summaries and exports. The
// engine only ever writes to it; control decisions never read it back.
package audit

import (
	"context"
	"encoding/json"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"

	"metasync/internal/domain"
)

// defaultWindow caps how many recent events the sink retains.
const defaultWindow = 10000

// LogSink emits audit events to a slog.Logger and keeps a sliding window of
// recent events in memory.
type LogSink struct {
	logger *slog.Logger
	now    func() time.Time

	mu      sync.Mutex
	events  []domain.AuditEvent
	reports map[string]domain.ErrorReport
	limit   int
}

// NewLogSink creates a sink writing through the given logger.
func NewLogSink(logger *slog.Logger) *LogSink {
	return &LogSink{
		logger:  logger,
		now:     time.Now,
		reports: make(map[string]domain.ErrorReport),
		limit:   defaultWindow,
	}
}

// AppendEvent implements domain.AuditSink.
func (s *LogSink) AppendEvent(_ context.Context, event domain.AuditEvent) error {
	s.logger.Info("audit",
		"event", event.EventType,
		"source", event.SourceSystem,
		"target", event.TargetSystem,
		"asset", event.AssetID,
		"operation", event.Operation,
		"status", event.Status,
		"details", event.Details,
		"error", event.ErrorMessage,
		"duration_ms", event.DurationMs,
	)
	s.mu.Lock()
	defer s.mu.Unlock()
	s.events = append(s.events, event)
	if len(s.events) > s.limit {
		s.events = s.events[len(s.events)-s.limit:]
	}
	return nil
}

// CreateErrorReport implements domain.AuditSink.
func (s *LogSink) CreateErrorReport(_ context.Context, report domain.ErrorReport) (string, error) {
	id := uuid.NewString()
	s.logger.Error("error report",
		"report_id", id,
		"type", report.Type,
		"severity", report.Severity,
		"message", report.Message,
		"affected", len(report.AffectedAssetIDs),
	)
	s.mu.Lock()
	defer s.mu.Unlock()
	s.reports[id] = report
	return id, nil
}

// ExportRange implements domain.AuditSink, returning retained events inside
// [start, end] as JSON.
func (s *LogSink) ExportRange(_ context.Context, start, end time.Time) ([]byte, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []domain.AuditEvent
	for _, e := range s.events {
		if !e.Timestamp.Before(start) && !e.Timestamp.After(end) {
			out = append(out, e)
		}
	}
	return json.Marshal(out)
}

// Summarize implements domain.AuditSink, counting retained events by type
// within the window.
func (s *LogSink) Summarize(_ context.Context, window time.Duration) (map[string]int, error) {
	cutoff := s.now().Add(-window)
	s.mu.Lock()
	defer s.mu.Unlock()
	counts := make(map[string]int)
	for _, e := range s.events {
		if e.Timestamp.After(cutoff) {
			counts[e.EventType]++
		}
	}
	return counts, nil
}

var _ domain.AuditSink = (*LogSink)(nil)
