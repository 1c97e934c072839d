// Package mapper applies mapping profiles to catalog assets, producing a
// target-system copy with naming conventions and conflict resolution applied.
package mapper

import (
	"context"
	"log/slog"
	"sort"
	"strings"
	"time"

	"metasync/internal/domain"
	"metasync/internal/fieldpath"
	"metasync/internal/transform"
)

// Provenance property keys stamped on every mapped asset.
const (
	PropOriginSystem  = "origin_system"
	PropOriginAssetID = "origin_asset_id"
	PropMappedAt      = "mapped_at"
)

// Result is the outcome of one mapping invocation.
type Result struct {
	Success        bool
	Mapped         *domain.MetadataAsset
	AppliedRuleIDs []string
	Conflicts      []string
	Warnings       []string
	Elapsed        time.Duration
	Err            error
}

// Mapper turns a source asset into its target-system counterpart. It never
// mutates its input.
type Mapper struct {
	transforms *transform.Registry
	audit      domain.AuditSink
	logger     *slog.Logger
	now        func() time.Time
}

// New creates a Mapper. The transformation registry must already be seeded.
func New(transforms *transform.Registry, audit domain.AuditSink, logger *slog.Logger) *Mapper {
	return &Mapper{
		transforms: transforms,
		audit:      audit,
		logger:     logger,
		now:        time.Now,
	}
}

// WithClock overrides the mapper's clock. Tests use this to freeze time.
func (m *Mapper) WithClock(now func() time.Time) *Mapper {
	m.now = now
	return m
}

// DeriveAssetID returns the deterministic id of the target-side copy of an
// asset. Renaming the asset changes the derived id.
func DeriveAssetID(targetSystem, technicalName string) string {
	return strings.ToLower(targetSystem) + ":" + technicalName
}

// Map applies the profile to the source asset for the given target system.
// existing, when non-nil, is the current target-side asset with the same
// derived identity and drives conflict resolution. Per-rule failures become
// warnings; only a nil source or profile fails the mapping outright.
func (m *Mapper) Map(ctx context.Context, source *domain.MetadataAsset, targetSystem string, profile *domain.MappingProfile, existing *domain.MetadataAsset) Result {
	start := m.now()
	res := Result{}

	if source == nil || profile == nil {
		res.Err = domain.ErrConfiguration("mapping requires a source asset and a profile")
		res.Elapsed = m.now().Sub(start)
		failed := domain.AuditEvent{
			Timestamp:    start,
			EventType:    domain.EventMappingFailed,
			TargetSystem: targetSystem,
			Operation:    "map",
			Status:       domain.EventStatusFailure,
			ErrorMessage: res.Err.Error(),
		}
		if source != nil {
			failed.SourceSystem = source.SourceSystem
			failed.AssetID = source.AssetID
			failed.AssetType = source.AssetType
		}
		m.emit(ctx, failed)
		return res
	}

	m.emit(ctx, domain.AuditEvent{
		Timestamp:    start,
		EventType:    domain.EventMappingStarted,
		SourceSystem: source.SourceSystem,
		TargetSystem: targetSystem,
		AssetID:      source.AssetID,
		AssetType:    source.AssetType,
		Operation:    "map",
		Status:       domain.EventStatusInfo,
	})

	mapped := source.Clone()
	mapped.SourceSystem = targetSystem
	mapped.AssetID = DeriveAssetID(targetSystem, mapped.TechnicalName)
	mapped.SyncStatus = domain.SyncStatusPending
	mapped.SetProperty(PropOriginSystem, source.SourceSystem)
	mapped.SetProperty(PropOriginAssetID, source.AssetID)
	mapped.SetProperty(PropMappedAt, start.UTC().Format(time.RFC3339))

	for _, rule := range m.activeRules(profile, source) {
		applied, warn := m.applyRule(source, mapped, rule, profile)
		if warn != "" {
			res.Warnings = append(res.Warnings, warn)
			m.logger.Warn("mapping rule skipped", "rule", rule.ID, "asset", source.AssetID, "reason", warn)
		}
		if applied {
			res.AppliedRuleIDs = append(res.AppliedRuleIDs, rule.ID)
		}
	}

	// Rules may rewrite the technical name; the derived id follows it.
	mapped.AssetID = DeriveAssetID(targetSystem, mapped.TechnicalName)

	if conv, ok := profile.ConventionFor(mapped.AssetType); ok {
		renamed, err := applyConvention(mapped.TechnicalName, conv)
		if err != nil {
			res.Warnings = append(res.Warnings, err.Error())
		} else if renamed != mapped.TechnicalName {
			mapped.TechnicalName = renamed
			mapped.AssetID = DeriveAssetID(targetSystem, renamed)
		}
	}

	res.Conflicts = m.resolveConflicts(mapped, existing, profile, targetSystem)

	res.Success = true
	res.Mapped = mapped
	res.Elapsed = m.now().Sub(start)

	m.emit(ctx, domain.AuditEvent{
		Timestamp:    m.now(),
		EventType:    domain.EventMappingCompleted,
		SourceSystem: source.SourceSystem,
		TargetSystem: targetSystem,
		AssetID:      source.AssetID,
		AssetType:    source.AssetType,
		Operation:    "map",
		Status:       domain.EventStatusSuccess,
		Details:      mapped.AssetID,
		DurationMs:   res.Elapsed.Milliseconds(),
	})
	return res
}

// activeRules selects the profile's active rules admitting the asset, in
// ascending priority with insertion order preserved on ties.
func (m *Mapper) activeRules(profile *domain.MappingProfile, asset *domain.MetadataAsset) []domain.MappingRule {
	rules := make([]domain.MappingRule, 0, len(profile.Rules))
	for _, r := range profile.Rules {
		if r.Active && r.AppliesTo(asset) {
			rules = append(rules, r)
		}
	}
	sort.SliceStable(rules, func(i, j int) bool { return rules[i].Priority < rules[j].Priority })
	return rules
}

// applyRule runs one rule against the mapped asset, reading from the source.
// It reports whether the rule applied and a non-empty warning on soft
// failure. An unresolvable source path is a silent skip, not a warning.
func (m *Mapper) applyRule(source, mapped *domain.MetadataAsset, rule domain.MappingRule, profile *domain.MappingProfile) (bool, string) {
	ok, err := transform.Evaluate(rule.Condition, source)
	if err != nil {
		return false, "condition: " + err.Error()
	}
	if !ok {
		return false, ""
	}

	// Unresolvable source paths are a silent skip, never a failure.
	value, resolved := fieldpath.Resolve(source, rule.SourceField)
	if !resolved {
		return false, ""
	}
	if rule.RequireSourceValue && valueEmpty(value) {
		return false, ""
	}

	fn, err := m.transforms.Resolve(rule.Transformation, profile.CustomTransforms)
	if err != nil {
		return false, err.Error()
	}
	out, err := fn(value)
	if err != nil {
		return false, "transform " + rule.Transformation + ": " + err.Error()
	}
	if err := fieldpath.Assign(mapped, rule.TargetField, out); err != nil {
		return false, "assign " + rule.TargetField + ": " + err.Error()
	}
	return true, ""
}

func valueEmpty(v any) bool {
	switch vv := v.(type) {
	case nil:
		return true
	case string:
		return vv == ""
	case []string:
		return len(vv) == 0
	default:
		return false
	}
}

// emit appends an audit event, degrading to a log line on sink failure.
func (m *Mapper) emit(ctx context.Context, event domain.AuditEvent) {
	if m.audit == nil {
		return
	}
	if err := m.audit.AppendEvent(ctx, event); err != nil {
		m.logger.Warn("audit append failed", "event", event.EventType, "error", err)
	}
}
