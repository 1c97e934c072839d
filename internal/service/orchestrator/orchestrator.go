// Package orchestrator schedules and executes synchronization jobs against
// external catalog connectors. A single coordinator goroutine owns the
// priority queue and the job map; a bounded worker pool performs the
// network-bound work. All mutation flows through the coordinator's command
// and completion channels, so no ad hoc locking guards the queue.
package orchestrator

import (
	"context"
	"log/slog"
	"sort"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"golang.org/x/time/rate"

	"metasync/internal/domain"
	"metasync/internal/service/changedetect"
	"metasync/internal/service/mapper"
)

// Config controls orchestrator behaviour. Zero values fall back to the
// defaults applied by withDefaults.
type Config struct {
	Workers      int
	TickInterval time.Duration
	// RetryDelay is a fixed delay between attempts. Exponential backoff is
	// deliberately not used; see DESIGN.md.
	RetryDelay time.Duration
	MaxRetries int
	// Retention is how long finished jobs stay queryable before eviction.
	Retention time.Duration
	// RateLimit bounds connector calls per second across all workers.
	RateLimit float64
	RateBurst int
	// PropagateDeletes forwards source deletions to the target connector.
	PropagateDeletes bool
}

func (c Config) withDefaults() Config {
	if c.Workers <= 0 {
		c.Workers = 4
	}
	if c.TickInterval <= 0 {
		c.TickInterval = time.Second
	}
	if c.RetryDelay <= 0 {
		c.RetryDelay = 60 * time.Second
	}
	if c.MaxRetries <= 0 {
		c.MaxRetries = 3
	}
	if c.Retention <= 0 {
		c.Retention = 24 * time.Hour
	}
	if c.RateLimit <= 0 {
		c.RateLimit = 10
	}
	if c.RateBurst <= 0 {
		c.RateBurst = 20
	}
	return c
}

// completion is a finished worker execution.
type completion struct {
	jobID  string
	result *domain.SyncJobResult
	err    error
}

// Coordinator commands. Each carries its own reply channel.
type submitCmd struct {
	job   *domain.SyncJob
	reply chan error
}

type cancelCmd struct {
	jobID string
	reply chan error
}

type getCmd struct {
	jobID string
	reply chan *domain.SyncJob
}

type listCmd struct {
	reply chan []*domain.SyncJob
}

type metricsCmd struct {
	reply chan SyncMetrics
}

// Orchestrator is the synchronization engine's scheduler.
type Orchestrator struct {
	cfg      Config
	mapper   *mapper.Mapper
	detector *changedetect.Detector
	audit    domain.AuditSink
	logger   *slog.Logger
	now      func() time.Time
	limiter  *rate.Limiter

	// Registries, configured during setup. Guarded by regMu because cron
	// sweeps and workers read them concurrently.
	regMu      sync.RWMutex
	connectors map[string]domain.Connector
	profiles   []*domain.MappingProfile
	syncRules  []domain.SyncRule

	// Coordinator-owned state. Touched only by the coordinator goroutine.
	queue   *jobQueue
	jobs    map[string]*domain.SyncJob
	running int
	metrics SyncMetrics

	commands    chan any
	completions chan completion
	workCh      chan *domain.SyncJob

	started atomic.Bool
	cancel  context.CancelFunc
	wg      sync.WaitGroup
}

// New creates an orchestrator. Register connectors, profiles, and sync
// rules before calling Start.
func New(cfg Config, m *mapper.Mapper, detector *changedetect.Detector, audit domain.AuditSink, logger *slog.Logger) *Orchestrator {
	cfg = cfg.withDefaults()
	return &Orchestrator{
		cfg:         cfg,
		mapper:      m,
		detector:    detector,
		audit:       audit,
		logger:      logger,
		now:         time.Now,
		limiter:     rate.NewLimiter(rate.Limit(cfg.RateLimit), cfg.RateBurst),
		connectors:  make(map[string]domain.Connector),
		queue:       newJobQueue(),
		jobs:        make(map[string]*domain.SyncJob),
		commands:    make(chan any),
		completions: make(chan completion),
		workCh:      make(chan *domain.SyncJob, cfg.Workers),
	}
}

// WithClock overrides the orchestrator's clock for tests.
func (o *Orchestrator) WithClock(now func() time.Time) *Orchestrator {
	o.now = now
	return o
}

// RegisterConnector binds a connector to its source-system tag.
func (o *Orchestrator) RegisterConnector(system string, c domain.Connector) {
	o.regMu.Lock()
	defer o.regMu.Unlock()
	o.connectors[system] = c
}

// RegisterProfile adds a mapping profile. Profiles are matched in
// registration order.
func (o *Orchestrator) RegisterProfile(p *domain.MappingProfile) error {
	if err := p.Validate(); err != nil {
		return err
	}
	o.regMu.Lock()
	defer o.regMu.Unlock()
	o.profiles = append(o.profiles, p)
	return nil
}

// RegisterSyncRule adds a scheduling rule. Rules are scanned in
// registration order; the first match wins.
func (o *Orchestrator) RegisterSyncRule(r domain.SyncRule) {
	o.regMu.Lock()
	defer o.regMu.Unlock()
	o.syncRules = append(o.syncRules, r)
}

// Start launches the coordinator and the worker pool. It returns
// immediately; Stop shuts everything down.
func (o *Orchestrator) Start(ctx context.Context) error {
	if !o.started.CompareAndSwap(false, true) {
		return domain.ErrConfiguration("orchestrator already started")
	}
	runCtx, cancel := context.WithCancel(ctx)
	o.cancel = cancel

	for i := 0; i < o.cfg.Workers; i++ {
		o.wg.Add(1)
		go o.worker(runCtx)
	}
	o.wg.Add(1)
	go o.coordinate(runCtx)

	o.logger.Info("orchestrator started", "workers", o.cfg.Workers, "tick", o.cfg.TickInterval)
	return nil
}

// Stop cancels the coordinator and workers and waits for them to exit.
// In-flight work runs to completion of its current connector call.
func (o *Orchestrator) Stop() {
	if !o.started.Load() || o.cancel == nil {
		return
	}
	o.cancel()
	o.wg.Wait()
	o.logger.Info("orchestrator stopped")
}

// coordinate is the single-threaded scheduling loop. It never performs
// blocking collaborator calls and never terminates because a job failed.
func (o *Orchestrator) coordinate(ctx context.Context) {
	defer o.wg.Done()
	ticker := time.NewTicker(o.cfg.TickInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case cmd := <-o.commands:
			o.handleCommand(ctx, cmd)
		case c := <-o.completions:
			o.harvest(ctx, c)
			o.admit()
		case <-ticker.C:
			o.admit()
			o.recomputeMetrics()
			o.evict()
		}
	}
}

func (o *Orchestrator) handleCommand(ctx context.Context, cmd any) {
	switch c := cmd.(type) {
	case submitCmd:
		o.jobs[c.job.ID] = c.job
		o.queue.push(c.job)
		o.emitAsync(ctx, domain.AuditEvent{
			Timestamp:    o.now(),
			EventType:    domain.EventJobScheduled,
			SourceSystem: c.job.SourceSystem,
			TargetSystem: c.job.TargetSystem,
			AssetID:      c.job.AssetID,
			AssetType:    c.job.AssetType,
			Operation:    "schedule",
			Status:       domain.EventStatusInfo,
			Details:      c.job.Priority.String() + "/" + string(c.job.Frequency),
		})
		c.reply <- nil

	case cancelCmd:
		job, ok := o.jobs[c.jobID]
		switch {
		case !ok:
			c.reply <- domain.ErrConfiguration("unknown job %s", c.jobID)
		case !o.queue.remove(c.jobID):
			// Already dispatched or finished; cancellation is pre-dispatch only.
			c.reply <- domain.ErrConflict("job %s is %s and can no longer be cancelled", c.jobID, job.Status)
		default:
			t := o.now()
			job.Status = domain.JobStatusCancelled
			job.CompletedAt = &t
			o.emitAsync(ctx, domain.AuditEvent{
				Timestamp:    t,
				EventType:    domain.EventJobCancelled,
				SourceSystem: job.SourceSystem,
				TargetSystem: job.TargetSystem,
				AssetID:      job.AssetID,
				AssetType:    job.AssetType,
				Operation:    "cancel",
				Status:       domain.EventStatusInfo,
			})
			c.reply <- nil
		}

	case getCmd:
		if job, ok := o.jobs[c.jobID]; ok {
			c.reply <- job.Clone()
		} else {
			c.reply <- nil
		}

	case listCmd:
		out := make([]*domain.SyncJob, 0, len(o.jobs))
		for _, job := range o.jobs {
			out = append(out, job.Clone())
		}
		sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.Before(out[j].CreatedAt) })
		c.reply <- out

	case metricsCmd:
		o.recomputeMetrics()
		c.reply <- snapshotMetrics(o.metrics)
	}
}

// admit dispatches due jobs to free workers, strictly in priority order.
// Jobs whose scheduled time has not elapsed are skipped and requeued.
func (o *Orchestrator) admit() {
	now := o.now()
	var notDue []*domain.SyncJob
	for o.running < o.cfg.Workers {
		job := o.queue.pop()
		if job == nil {
			break
		}
		if job.ScheduledAt.After(now) {
			notDue = append(notDue, job)
			continue
		}
		o.dispatch(job)
	}
	for _, job := range notDue {
		o.queue.push(job)
	}
}

// dispatch hands one job to the worker pool and spawns the successor of a
// recurring job. The work channel is buffered to pool size, so the send
// cannot block while running < Workers.
func (o *Orchestrator) dispatch(job *domain.SyncJob) {
	t := o.now()
	job.Status = domain.JobStatusRunning
	job.StartedAt = &t
	o.running++

	// Recurring jobs respawn on the first dispatch of each instance,
	// independent of its eventual outcome, so the cadence survives a
	// failure. Retry re-dispatches must not spawn again.
	if offset, ok := job.Frequency.Offset(); ok && job.RetryCount == 0 {
		succ := &domain.SyncJob{
			ID:           uuid.NewString(),
			AssetID:      job.AssetID,
			AssetType:    job.AssetType,
			SourceSystem: job.SourceSystem,
			TargetSystem: job.TargetSystem,
			Priority:     job.Priority,
			Frequency:    job.Frequency,
			Status:       domain.JobStatusPending,
			MaxRetries:   job.MaxRetries,
			CreatedAt:    t,
			ScheduledAt:  t.Add(offset),
		}
		o.jobs[succ.ID] = succ
		o.queue.push(succ)
	}

	o.workCh <- job.Clone()
}

// harvest folds one worker completion back into coordinator state,
// applying the retry policy on failure.
func (o *Orchestrator) harvest(ctx context.Context, c completion) {
	o.running--
	job, ok := o.jobs[c.jobID]
	if !ok {
		return
	}
	t := o.now()

	if c.err == nil {
		job.Status = domain.JobStatusCompleted
		job.CompletedAt = &t
		job.Result = c.result
		job.LastError = ""
		o.emitAsync(ctx, domain.AuditEvent{
			Timestamp:    t,
			EventType:    domain.EventJobCompleted,
			SourceSystem: job.SourceSystem,
			TargetSystem: job.TargetSystem,
			AssetID:      job.AssetID,
			AssetType:    job.AssetType,
			Operation:    "sync",
			Status:       domain.EventStatusSuccess,
			DurationMs:   c.result.Elapsed.Milliseconds(),
		})
		return
	}

	job.LastError = c.err.Error()
	if job.RetryCount < job.MaxRetries {
		job.RetryCount++
		// Queued jobs are pending, retry or not; dispatch flips them back
		// to running.
		job.Status = domain.JobStatusPending
		job.ScheduledAt = t.Add(o.cfg.RetryDelay)
		o.queue.push(job)
		o.logger.Warn("job attempt failed, retrying",
			"job", job.ID, "asset", job.AssetID,
			"attempt", job.RetryCount, "max_retries", job.MaxRetries,
			"error", c.err)
		return
	}

	job.Status = domain.JobStatusFailed
	job.CompletedAt = &t
	o.logger.Error("job failed terminally", "job", job.ID, "asset", job.AssetID, "error", c.err)
	o.reportFailure(ctx, job, c.err)
}

// evict drops finished jobs older than the retention window.
func (o *Orchestrator) evict() {
	cutoff := o.now().Add(-o.cfg.Retention)
	for id, job := range o.jobs {
		if job.Finished() && job.CompletedAt != nil && job.CompletedAt.Before(cutoff) {
			delete(o.jobs, id)
		}
	}
}

// worker executes jobs from the work channel until cancelled.
func (o *Orchestrator) worker(ctx context.Context) {
	defer o.wg.Done()
	for {
		select {
		case <-ctx.Done():
			return
		case job := <-o.workCh:
			result, err := o.runJob(ctx, job)
			select {
			case o.completions <- completion{jobID: job.ID, result: result, err: err}:
			case <-ctx.Done():
				return
			}
		}
	}
}

// emitAsync appends an audit event off the coordinator goroutine so the
// scheduling loop never blocks on the sink.
func (o *Orchestrator) emitAsync(ctx context.Context, event domain.AuditEvent) {
	if o.audit == nil {
		return
	}
	go func() {
		if err := o.audit.AppendEvent(ctx, event); err != nil {
			o.logger.Warn("audit append failed", "event", event.EventType, "error", err)
		}
	}()
}

func snapshotMetrics(m SyncMetrics) SyncMetrics {
	out := m
	out.ByStatus = copyCounts(m.ByStatus)
	out.ByPriority = copyCounts(m.ByPriority)
	out.ByAssetType = copyCounts(m.ByAssetType)
	return out
}

func copyCounts(in map[string]int) map[string]int {
	out := make(map[string]int, len(in))
	for k, v := range in {
		out[k] = v
	}
	return out
}
