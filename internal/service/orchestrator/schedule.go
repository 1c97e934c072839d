package orchestrator

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"metasync/internal/domain"
)

// SubmitJob fills in defaults and hands the job to the coordinator. It
// returns the job id once the coordinator has accepted it.
func (o *Orchestrator) SubmitJob(ctx context.Context, job *domain.SyncJob) (string, error) {
	if !o.started.Load() {
		return "", domain.ErrConfiguration("orchestrator is not started")
	}
	if job.AssetID == "" {
		return "", domain.ErrConfiguration("job requires an asset id")
	}
	if job.ID == "" {
		job.ID = uuid.NewString()
	}
	if job.Priority == 0 {
		job.Priority = domain.PriorityMedium
	}
	if job.Frequency == "" {
		job.Frequency = domain.FrequencyManual
	}
	if job.MaxRetries == 0 {
		job.MaxRetries = o.cfg.MaxRetries
	}
	now := o.now()
	if job.CreatedAt.IsZero() {
		job.CreatedAt = now
	}
	if job.ScheduledAt.IsZero() {
		job.ScheduledAt = now
	}
	job.Status = domain.JobStatusPending

	cmd := submitCmd{job: job, reply: make(chan error, 1)}
	select {
	case o.commands <- cmd:
	case <-ctx.Done():
		return "", ctx.Err()
	}
	if err := <-cmd.reply; err != nil {
		return "", err
	}
	return job.ID, nil
}

// ScheduleAssetSync schedules one asset for synchronization, resolving
// priority and frequency through the registered sync rules. Assets matched
// by no rule default to Medium priority, Manual frequency.
func (o *Orchestrator) ScheduleAssetSync(ctx context.Context, asset *domain.MetadataAsset, targetSystem string) (string, error) {
	priority, frequency := o.resolvePolicy(asset)
	return o.SubmitJob(ctx, &domain.SyncJob{
		AssetID:      asset.AssetID,
		AssetType:    asset.AssetType,
		SourceSystem: asset.SourceSystem,
		TargetSystem: targetSystem,
		Priority:     priority,
		Frequency:    frequency,
	})
}

// resolvePolicy scans sync rules in registration order; the first match
// supplies the scheduling policy.
func (o *Orchestrator) resolvePolicy(asset *domain.MetadataAsset) (domain.JobPriority, domain.SyncFrequency) {
	o.regMu.RLock()
	defer o.regMu.RUnlock()
	for _, rule := range o.syncRules {
		if rule.Matches(asset) {
			return rule.Priority, rule.Frequency
		}
	}
	return domain.PriorityMedium, domain.FrequencyManual
}

// CancelJob cancels a job that has not yet been dispatched. In-flight work
// runs to completion.
func (o *Orchestrator) CancelJob(ctx context.Context, jobID string) error {
	if !o.started.Load() {
		return domain.ErrConfiguration("orchestrator is not started")
	}
	cmd := cancelCmd{jobID: jobID, reply: make(chan error, 1)}
	select {
	case o.commands <- cmd:
	case <-ctx.Done():
		return ctx.Err()
	}
	return <-cmd.reply
}

// Job returns a snapshot of one job, or nil if unknown or evicted.
func (o *Orchestrator) Job(ctx context.Context, jobID string) (*domain.SyncJob, error) {
	if !o.started.Load() {
		return nil, domain.ErrConfiguration("orchestrator is not started")
	}
	cmd := getCmd{jobID: jobID, reply: make(chan *domain.SyncJob, 1)}
	select {
	case o.commands <- cmd:
	case <-ctx.Done():
		return nil, ctx.Err()
	}
	return <-cmd.reply, nil
}

// Jobs returns snapshots of every retained job, oldest first.
func (o *Orchestrator) Jobs(ctx context.Context) ([]*domain.SyncJob, error) {
	if !o.started.Load() {
		return nil, domain.ErrConfiguration("orchestrator is not started")
	}
	cmd := listCmd{reply: make(chan []*domain.SyncJob, 1)}
	select {
	case o.commands <- cmd:
	case <-ctx.Done():
		return nil, ctx.Err()
	}
	return <-cmd.reply, nil
}

// Metrics returns the current aggregate metrics snapshot.
func (o *Orchestrator) Metrics(ctx context.Context) (SyncMetrics, error) {
	if !o.started.Load() {
		return SyncMetrics{}, domain.ErrConfiguration("orchestrator is not started")
	}
	cmd := metricsCmd{reply: make(chan SyncMetrics, 1)}
	select {
	case o.commands <- cmd:
	case <-ctx.Done():
		return SyncMetrics{}, ctx.Err()
	}
	return <-cmd.reply, nil
}

// DetectAndSchedule sweeps the source system for changes and schedules a
// sync job for every actionable one. Deletions are audited and, when
// configured, propagated to the target connector. Runs on the caller's
// goroutine — typically a cron entry — never on the coordinator loop.
func (o *Orchestrator) DetectAndSchedule(ctx context.Context, sourceSystem, targetSystem string) (*domain.ChangeReport, error) {
	source, err := o.connectorFor(sourceSystem)
	if err != nil {
		return nil, err
	}

	if err := o.limiter.Wait(ctx); err != nil {
		return nil, err
	}
	listing, err := source.GetAssets(ctx, "")
	if err != nil {
		return nil, fmt.Errorf("fetch source listing: %w", err)
	}

	report, err := o.detector.Detect(ctx, sourceSystem, listing)
	if err != nil {
		return nil, err
	}

	scheduled := 0
	for _, change := range report.Changes {
		if change.Change == domain.ChangeDeleted {
			o.handleDeletion(ctx, sourceSystem, targetSystem, change.AssetID)
			continue
		}
		if _, err := o.ScheduleAssetSync(ctx, change.Asset, targetSystem); err != nil {
			o.logger.Warn("failed to schedule changed asset", "asset", change.AssetID, "error", err)
			continue
		}
		scheduled++
	}

	o.emitAsync(ctx, domain.AuditEvent{
		Timestamp:    o.now(),
		EventType:    domain.EventSweepCompleted,
		SourceSystem: sourceSystem,
		TargetSystem: targetSystem,
		Operation:    "detect",
		Status:       domain.EventStatusInfo,
		Details: fmt.Sprintf("changes=%d unchanged=%d scheduled=%d",
			len(report.Changes), report.Unchanged, scheduled),
	})
	return report, nil
}

// handleDeletion audits a source-side deletion and optionally forwards it.
// A connector that does not support deletion is not an error.
func (o *Orchestrator) handleDeletion(ctx context.Context, sourceSystem, targetSystem, assetID string) {
	o.emitAsync(ctx, domain.AuditEvent{
		Timestamp:    o.now(),
		EventType:    domain.EventAssetDeleted,
		SourceSystem: sourceSystem,
		TargetSystem: targetSystem,
		AssetID:      assetID,
		Operation:    "delete",
		Status:       domain.EventStatusInfo,
	})
	if !o.cfg.PropagateDeletes {
		return
	}
	target, err := o.connectorFor(targetSystem)
	if err != nil {
		o.logger.Warn("cannot propagate deletion", "asset", assetID, "error", err)
		return
	}
	if err := o.limiter.Wait(ctx); err != nil {
		return
	}
	supported, err := target.DeleteAsset(ctx, assetID)
	if err != nil {
		o.logger.Warn("target deletion failed", "asset", assetID, "error", err)
		return
	}
	if !supported {
		o.logger.Info("target does not support deletion", "asset", assetID, "target", targetSystem)
	}
}
