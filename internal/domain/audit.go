package domain

import "time"

// Audit event types emitted by the engine.
const (
	EventMappingStarted   = "MAPPING_STARTED"
	EventMappingCompleted = "MAPPING_COMPLETED"
	EventMappingFailed    = "MAPPING_FAILED"
	EventJobScheduled     = "JOB_SCHEDULED"
	EventJobCompleted     = "JOB_COMPLETED"
	EventJobFailed        = "JOB_FAILED"
	EventJobCancelled     = "JOB_CANCELLED"
	EventAssetDeleted     = "ASSET_DELETED"
	EventSweepCompleted   = "SWEEP_COMPLETED"
)

// Audit event statuses.
const (
	EventStatusSuccess = "SUCCESS"
	EventStatusFailure = "FAILURE"
	EventStatusInfo    = "INFO"
)

// AuditEvent is one append-only record handed to the audit sink. The engine
// is a pure producer of these events and never reads them back for control
// decisions.
type AuditEvent struct {
	Timestamp    time.Time
	EventType    string
	SourceSystem string
	TargetSystem string
	AssetID      string
	AssetType    AssetType
	Operation    string
	Status       string
	Details      string
	ErrorMessage string
	DurationMs   int64
}

// Error report severities.
const (
	ReportSeverityLow      = "LOW"
	ReportSeverityMedium   = "MEDIUM"
	ReportSeverityHigh     = "HIGH"
	ReportSeverityCritical = "CRITICAL"
)

// ErrorReport describes a terminal failure with a coarse classification and
// suggested remediations.
type ErrorReport struct {
	Type             string
	Message          string
	Context          string
	AffectedAssetIDs []string
	Severity         string
	Remediations     []string
}
