package orchestrator

import (
	"time"

	"metasync/internal/domain"
)

// SyncMetrics is a point-in-time snapshot of orchestrator state, recomputed
// by the coordinator on every tick.
type SyncMetrics struct {
	TotalJobs     int            `json:"total_jobs"`
	QueueDepth    int            `json:"queue_depth"`
	ActiveWorkers int            `json:"active_workers"`
	ByStatus      map[string]int `json:"by_status"`
	ByPriority    map[string]int `json:"by_priority"`
	ByAssetType   map[string]int `json:"by_asset_type"`
	// SuccessRate is completed / (completed + failed), 0 when neither.
	SuccessRate    float64   `json:"success_rate"`
	AvgExecutionMs float64   `json:"avg_execution_ms"`
	UpdatedAt      time.Time `json:"updated_at"`
}

// recomputeMetrics rebuilds the snapshot from coordinator-owned state.
// Called only from the coordinator goroutine.
func (o *Orchestrator) recomputeMetrics() {
	m := SyncMetrics{
		TotalJobs:     len(o.jobs),
		QueueDepth:    o.queue.Len(),
		ActiveWorkers: o.running,
		ByStatus:      make(map[string]int),
		ByPriority:    make(map[string]int),
		ByAssetType:   make(map[string]int),
		UpdatedAt:     o.now(),
	}

	completed, failed := 0, 0
	var execTotal time.Duration
	var execCount int
	for _, job := range o.jobs {
		m.ByStatus[job.Status]++
		m.ByPriority[job.Priority.String()]++
		m.ByAssetType[string(job.AssetType)]++
		switch job.Status {
		case domain.JobStatusCompleted:
			completed++
			if job.Result != nil {
				execTotal += job.Result.Elapsed
				execCount++
			}
		case domain.JobStatusFailed:
			failed++
		}
	}
	if completed+failed > 0 {
		m.SuccessRate = float64(completed) / float64(completed+failed)
	}
	if execCount > 0 {
		m.AvgExecutionMs = float64(execTotal.Milliseconds()) / float64(execCount)
	}
	o.metrics = m
}
