package orchestrator

import (
	"context"
	"errors"
	"strings"

	"metasync/internal/domain"
)

// Coarse failure classes for terminal job failures.
const (
	failureAuthentication = "AUTHENTICATION"
	failureSchema         = "SCHEMA"
	failureNetwork        = "NETWORK"
	failurePermission     = "PERMISSION"
	failureOther          = "OTHER"
)

// remediations maps each failure class to its canned remediation list.
var remediations = map[string][]string{
	failureAuthentication: {
		"refresh or re-issue the connector credentials",
		"verify the OAuth client is still authorized for the catalog",
	},
	failureSchema: {
		"review the profile's schema conflict strategy",
		"run a dry run against the affected asset type",
	},
	failureNetwork: {
		"check connectivity to the catalog endpoint",
		"verify the catalog service status page",
		"the job will be retried automatically on the next schedule",
	},
	failurePermission: {
		"grant the integration user access to the affected space",
		"verify the asset is shared with the connector's service account",
	},
	failureOther: {
		"inspect the audit log for the full error chain",
	},
}

// classifyFailure buckets an execution error into a coarse class.
func classifyFailure(err error) string {
	var authErr *domain.AuthenticationError
	var connErr *domain.ConnectivityError
	var conflictErr *domain.ConflictError
	switch {
	case errors.As(err, &authErr):
		return failureAuthentication
	case errors.As(err, &conflictErr):
		return failureSchema
	case errors.As(err, &connErr):
		return failureNetwork
	}

	msg := strings.ToLower(err.Error())
	switch {
	case strings.Contains(msg, "unauthorized") || strings.Contains(msg, "token") || strings.Contains(msg, "credential"):
		return failureAuthentication
	case strings.Contains(msg, "forbidden") || strings.Contains(msg, "permission") || strings.Contains(msg, "denied"):
		return failurePermission
	case strings.Contains(msg, "schema") || strings.Contains(msg, "column") || strings.Contains(msg, "type mismatch"):
		return failureSchema
	case strings.Contains(msg, "timeout") || strings.Contains(msg, "connection") || strings.Contains(msg, "unreachable") || strings.Contains(msg, "refused"):
		return failureNetwork
	default:
		return failureOther
	}
}

// reportFailure records a terminal job failure through the audit sink.
// Runs asynchronously so the coordinator loop never blocks on the sink.
func (o *Orchestrator) reportFailure(ctx context.Context, job *domain.SyncJob, jobErr error) {
	if o.audit == nil {
		return
	}
	class := classifyFailure(jobErr)
	terminal := &domain.RetryExhaustedError{
		JobID:    job.ID,
		Attempts: job.RetryCount + 1,
		Message:  jobErr.Error(),
	}
	event := domain.AuditEvent{
		Timestamp:    o.now(),
		EventType:    domain.EventJobFailed,
		SourceSystem: job.SourceSystem,
		TargetSystem: job.TargetSystem,
		AssetID:      job.AssetID,
		AssetType:    job.AssetType,
		Operation:    "sync",
		Status:       domain.EventStatusFailure,
		Details:      class,
		ErrorMessage: terminal.Error(),
	}
	report := domain.ErrorReport{
		Type:             class,
		Message:          terminal.Error(),
		Context:          "sync job " + job.ID,
		AffectedAssetIDs: []string{job.AssetID},
		Severity:         domain.ReportSeverityHigh,
		Remediations:     remediations[class],
	}

	go func() {
		if err := o.audit.AppendEvent(ctx, event); err != nil {
			o.logger.Warn("audit append failed", "event", event.EventType, "error", err)
		}
		if _, err := o.audit.CreateErrorReport(ctx, report); err != nil {
			o.logger.Warn("error report failed", "job", job.ID, "error", err)
		}
	}()
}
