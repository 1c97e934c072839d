// Package validator previews, diffs, and scores mappings without persisting
// anything. Issues are always aggregated into reports, never raised as
// errors.
package validator

import (
	"log/slog"
	"time"

	"metasync/internal/service/mapper"
)

// IssueSeverity ranks how serious a validation issue is.
type IssueSeverity string

// Issue severities.
const (
	SeverityInfo     IssueSeverity = "INFO"
	SeverityWarning  IssueSeverity = "WARNING"
	SeverityError    IssueSeverity = "ERROR"
	SeverityCritical IssueSeverity = "CRITICAL"
)

// IssueCategory groups issues by the aspect of the mapping they concern.
type IssueCategory string

// Issue categories.
const (
	CategoryNamingConvention      IssueCategory = "NAMING_CONVENTION"
	CategoryDataTypeCompatibility IssueCategory = "DATA_TYPE_COMPATIBILITY"
	CategoryBusinessContext       IssueCategory = "BUSINESS_CONTEXT"
	CategorySchemaStructure       IssueCategory = "SCHEMA_STRUCTURE"
	CategoryMappingLogic          IssueCategory = "MAPPING_LOGIC"
	CategoryPerformance           IssueCategory = "PERFORMANCE"
	CategorySecurity              IssueCategory = "SECURITY"
)

// ValidationIssue is one finding from a preview or profile validation.
// ImpactScore ranges 1 (cosmetic) to 10 (blocking).
type ValidationIssue struct {
	Severity      IssueSeverity
	Category      IssueCategory
	Message       string
	AffectedField string
	SuggestedFix  string
	ImpactScore   int
}

// severityPenalty is the score deduction per issue severity.
var severityPenalty = map[IssueSeverity]int{
	SeverityInfo:     1,
	SeverityWarning:  3,
	SeverityError:    7,
	SeverityCritical: 15,
}

// Score converts a set of issues into an overall score in [0, 100]. Adding
// an issue never increases the score.
func Score(issues []ValidationIssue) int {
	score := 100
	for _, issue := range issues {
		score -= severityPenalty[issue.Severity]
	}
	if score < 0 {
		score = 0
	}
	return score
}

// FieldDiff records one basic-field difference between original and mapped.
type FieldDiff struct {
	Field  string
	Before string
	After  string
}

// ColumnDiff records a schema-level difference.
type ColumnDiff struct {
	Column     string
	Kind       string // ADDED, REMOVED, TYPE_CHANGED
	BeforeType string
	AfterType  string
}

// ListDiff records added/removed entries of a business-context list field.
type ListDiff struct {
	Field   string
	Added   []string
	Removed []string
}

// ImpactEstimate summarizes the blast radius of applying a mapping.
type ImpactEstimate struct {
	DataLossRisk   string // LOW, MEDIUM, HIGH
	BusinessImpact string // LOW, MEDIUM, HIGH
	Notes          []string
}

// MappingPreview is the outcome of a single-asset dry mapping.
type MappingPreview struct {
	Result      mapper.Result
	FieldDiffs  []FieldDiff
	ColumnDiffs []ColumnDiff
	ListDiffs   []ListDiff
	Issues      []ValidationIssue
	Impact      ImpactEstimate
}

// ValidationReport aggregates profile validation across representative
// assets.
type ValidationReport struct {
	ProfileID    string
	Valid        bool
	Issues       []ValidationIssue
	OverallScore int
	Previews     int
	Elapsed      time.Duration
}

// DryRunReport aggregates previews across a batch of real assets.
type DryRunReport struct {
	Total           int
	Succeeded       int
	Failed          int
	Issues          []ValidationIssue
	AssetsWithIssue int
	Throughput      float64 // assets per second
	ReadinessScore  float64
	OverallRisk     string // LOW, MEDIUM, HIGH
	Elapsed         time.Duration
}

// Validator runs previews and aggregates validation reports.
type Validator struct {
	mapper *mapper.Mapper
	logger *slog.Logger
	now    func() time.Time
	// dryRunParallelism bounds concurrent previews in DryRun.
	dryRunParallelism int
}

// New creates a Validator around an existing mapper.
func New(m *mapper.Mapper, logger *slog.Logger) *Validator {
	return &Validator{
		mapper:            m,
		logger:            logger,
		now:               time.Now,
		dryRunParallelism: 4,
	}
}

// WithClock overrides the validator's clock for tests.
func (v *Validator) WithClock(now func() time.Time) *Validator {
	v.now = now
	return v
}
