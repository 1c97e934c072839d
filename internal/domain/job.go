package domain

import (
	"regexp"
	"time"
)

// JobPriority orders jobs for dispatch; smaller ordinals are served first.
type JobPriority int

// Job priorities, most urgent first.
const (
	PriorityCritical    JobPriority = 1
	PriorityHigh        JobPriority = 2
	PriorityMedium      JobPriority = 3
	PriorityLow         JobPriority = 4
	PriorityMaintenance JobPriority = 5
)

// String returns the priority name.
func (p JobPriority) String() string {
	switch p {
	case PriorityCritical:
		return "CRITICAL"
	case PriorityHigh:
		return "HIGH"
	case PriorityMedium:
		return "MEDIUM"
	case PriorityLow:
		return "LOW"
	case PriorityMaintenance:
		return "MAINTENANCE"
	default:
		return "UNKNOWN"
	}
}

// SyncFrequency is the cadence at which a recurring job respawns.
type SyncFrequency string

// Sync frequencies.
const (
	FrequencyRealTime   SyncFrequency = "REAL_TIME"
	FrequencyEvery15Min SyncFrequency = "EVERY_15_MIN"
	FrequencyHourly     SyncFrequency = "HOURLY"
	FrequencyDaily      SyncFrequency = "DAILY"
	FrequencyWeekly     SyncFrequency = "WEEKLY"
	FrequencyManual     SyncFrequency = "MANUAL"
)

// Offset returns the fixed scheduling offset for the frequency. The second
// return is false for RealTime and Manual, which never respawn on a cadence.
func (f SyncFrequency) Offset() (time.Duration, bool) {
	switch f {
	case FrequencyEvery15Min:
		return 15 * time.Minute, true
	case FrequencyHourly:
		return time.Hour, true
	case FrequencyDaily:
		return 24 * time.Hour, true
	case FrequencyWeekly:
		return 7 * 24 * time.Hour, true
	default:
		return 0, false
	}
}

// Job status constants.
const (
	JobStatusPending   = "PENDING"
	JobStatusRunning   = "RUNNING"
	JobStatusCompleted = "COMPLETED"
	JobStatusFailed    = "FAILED"
	JobStatusRetrying  = "RETRYING"
	JobStatusCancelled = "CANCELLED"
)

// SyncJobResult is the payload of a completed job.
type SyncJobResult struct {
	MappedAssetID     string
	TargetAssetID     string
	RulesApplied      int
	ConflictsResolved int
	Elapsed           time.Duration
}

// SyncJob is one scheduled unit of synchronization work.
type SyncJob struct {
	ID           string
	AssetID      string
	AssetType    AssetType
	SourceSystem string
	TargetSystem string
	Priority     JobPriority
	Frequency    SyncFrequency
	Status       string

	RetryCount int
	MaxRetries int

	CreatedAt   time.Time
	ScheduledAt time.Time
	StartedAt   *time.Time
	CompletedAt *time.Time
	LastError   string
	// Dependencies lists job ids this job nominally depends on. The field
	// is declared but not enforced by the orchestrator; see DESIGN.md.
	Dependencies []string
	Result       *SyncJobResult
}

// Finished reports whether the job reached a terminal status.
func (j *SyncJob) Finished() bool {
	switch j.Status {
	case JobStatusCompleted, JobStatusFailed, JobStatusCancelled:
		return true
	}
	return false
}

// Clone returns a copy of the job safe to hand across goroutines.
func (j *SyncJob) Clone() *SyncJob {
	out := *j
	out.Dependencies = append([]string(nil), j.Dependencies...)
	if j.StartedAt != nil {
		t := *j.StartedAt
		out.StartedAt = &t
	}
	if j.CompletedAt != nil {
		t := *j.CompletedAt
		out.CompletedAt = &t
	}
	if j.Result != nil {
		r := *j.Result
		out.Result = &r
	}
	return &out
}

// SyncRule maps a class of assets to a scheduling policy. Rules are scanned
// in registration order; the first match supplies priority and frequency.
type SyncRule struct {
	ID           string        `yaml:"id"`
	Name         string        `yaml:"name"`
	AssetType    AssetType     `yaml:"asset_type"`
	SourceSystem string        `yaml:"source_system"`
	TargetSystem string        `yaml:"target_system"`
	Priority     JobPriority   `yaml:"priority"`
	Frequency    SyncFrequency `yaml:"frequency"`
	// RequiredTag, when set, only matches assets carrying the tag.
	RequiredTag string `yaml:"required_tag,omitempty"`
	// NamePattern, when set, only matches assets whose technical name
	// matches the regular expression.
	NamePattern string `yaml:"name_pattern,omitempty"`
	Active      bool   `yaml:"active"`
}

// Matches reports whether the rule admits the asset.
func (r *SyncRule) Matches(asset *MetadataAsset) bool {
	if !r.Active {
		return false
	}
	if r.AssetType != "" && r.AssetType != asset.AssetType {
		return false
	}
	if r.SourceSystem != "" && r.SourceSystem != asset.SourceSystem {
		return false
	}
	if r.RequiredTag != "" {
		found := false
		for _, tag := range asset.Business.Tags {
			if tag == r.RequiredTag {
				found = true
				break
			}
		}
		if !found {
			return false
		}
	}
	if r.NamePattern != "" {
		re, err := regexp.Compile(r.NamePattern)
		if err != nil || !re.MatchString(asset.TechnicalName) {
			return false
		}
	}
	return true
}
