package validator

import (
	"context"
	"fmt"
	"regexp"
	"strings"

	"metasync/internal/domain"
)

// riskyTypePairs marks source→target column type changes that can silently
// lose data.
var riskyTypePairs = map[string]map[string]bool{
	"decimal":   {"int": true, "integer": true, "bigint": true},
	"double":    {"float": true, "int": true, "integer": true},
	"timestamp": {"date": true, "time": true},
	"bigint":    {"int": true, "integer": true, "smallint": true},
	"string":    {"int": true, "integer": true, "boolean": true, "date": true},
	"text":      {"varchar": true},
}

// namePattern is the target-side naming convention previews check against.
var namePattern = regexp.MustCompile(`^[a-z][a-z0-9_]*$`)

// Preview maps the asset without persisting anything, then diffs and scores
// the outcome.
func (v *Validator) Preview(ctx context.Context, asset *domain.MetadataAsset, targetSystem string, profile *domain.MappingProfile) MappingPreview {
	preview := MappingPreview{}
	preview.Result = v.mapper.Map(ctx, asset, targetSystem, profile, nil)
	if !preview.Result.Success {
		preview.Issues = append(preview.Issues, ValidationIssue{
			Severity:    SeverityCritical,
			Category:    CategoryMappingLogic,
			Message:     fmt.Sprintf("mapping failed: %v", preview.Result.Err),
			ImpactScore: 10,
		})
		preview.Impact = ImpactEstimate{DataLossRisk: "HIGH", BusinessImpact: "HIGH"}
		return preview
	}

	mapped := preview.Result.Mapped
	preview.FieldDiffs = diffBasicFields(asset, mapped)
	preview.ColumnDiffs = diffSchemas(asset.Schema, mapped.Schema)
	preview.ListDiffs = diffLists(asset, mapped)
	preview.Issues = v.check(asset, mapped, preview)
	preview.Impact = estimateImpact(asset, mapped, preview.ColumnDiffs)
	return preview
}

func diffBasicFields(before, after *domain.MetadataAsset) []FieldDiff {
	var diffs []FieldDiff
	pairs := []struct {
		field         string
		before, after string
	}{
		{"technical_name", before.TechnicalName, after.TechnicalName},
		{"business_name", before.BusinessName, after.BusinessName},
		{"description", before.Description, after.Description},
		{"owner", before.Owner, after.Owner},
		{"business_context.business_name", before.Business.BusinessName, after.Business.BusinessName},
		{"business_context.owner", before.Business.Owner, after.Business.Owner},
		{"business_context.steward", before.Business.Steward, after.Business.Steward},
	}
	for _, p := range pairs {
		if p.before != p.after {
			diffs = append(diffs, FieldDiff{Field: p.field, Before: p.before, After: p.after})
		}
	}
	return diffs
}

func diffSchemas(before, after domain.SchemaDescriptor) []ColumnDiff {
	var diffs []ColumnDiff
	beforeTypes := make(map[string]string, len(before.Columns))
	for _, c := range before.Columns {
		beforeTypes[c.Name] = c.Type
	}
	afterTypes := make(map[string]string, len(after.Columns))
	for _, c := range after.Columns {
		afterTypes[c.Name] = c.Type
	}
	for _, c := range after.Columns {
		t, ok := beforeTypes[c.Name]
		switch {
		case !ok:
			diffs = append(diffs, ColumnDiff{Column: c.Name, Kind: "ADDED", AfterType: c.Type})
		case t != c.Type:
			diffs = append(diffs, ColumnDiff{Column: c.Name, Kind: "TYPE_CHANGED", BeforeType: t, AfterType: c.Type})
		}
	}
	for _, c := range before.Columns {
		if _, ok := afterTypes[c.Name]; !ok {
			diffs = append(diffs, ColumnDiff{Column: c.Name, Kind: "REMOVED", BeforeType: c.Type})
		}
	}
	return diffs
}

func diffLists(before, after *domain.MetadataAsset) []ListDiff {
	var diffs []ListDiff
	pairs := []struct {
		field         string
		before, after []string
	}{
		{"business_context.tags", before.Business.Tags, after.Business.Tags},
		{"business_context.dimensions", before.Business.Dimensions, after.Business.Dimensions},
		{"business_context.measures", before.Business.Measures, after.Business.Measures},
	}
	for _, p := range pairs {
		added, removed := diffStringSets(p.before, p.after)
		if len(added) > 0 || len(removed) > 0 {
			diffs = append(diffs, ListDiff{Field: p.field, Added: added, Removed: removed})
		}
	}
	return diffs
}

func diffStringSets(before, after []string) (added, removed []string) {
	beforeSet := make(map[string]bool, len(before))
	for _, s := range before {
		beforeSet[s] = true
	}
	afterSet := make(map[string]bool, len(after))
	for _, s := range after {
		afterSet[s] = true
	}
	for _, s := range after {
		if !beforeSet[s] {
			added = append(added, s)
		}
	}
	for _, s := range before {
		if !afterSet[s] {
			removed = append(removed, s)
		}
	}
	return added, removed
}

// check runs the validation checks over a successful preview.
func (v *Validator) check(original, mapped *domain.MetadataAsset, preview MappingPreview) []ValidationIssue {
	var issues []ValidationIssue

	if !namePattern.MatchString(mapped.TechnicalName) {
		issues = append(issues, ValidationIssue{
			Severity:      SeverityWarning,
			Category:      CategoryNamingConvention,
			Message:       fmt.Sprintf("technical name %q does not match target naming conventions", mapped.TechnicalName),
			AffectedField: "technical_name",
			SuggestedFix:  "apply the sanitize transformation or a naming convention",
			ImpactScore:   3,
		})
	}

	for _, diff := range preview.ColumnDiffs {
		if diff.Kind != "TYPE_CHANGED" {
			continue
		}
		severity, impact := SeverityInfo, 2
		if riskyTypePairs[normalizeType(diff.BeforeType)][normalizeType(diff.AfterType)] {
			severity, impact = SeverityError, 8
		}
		issues = append(issues, ValidationIssue{
			Severity:      severity,
			Category:      CategoryDataTypeCompatibility,
			Message:       fmt.Sprintf("column %s changes type %s → %s", diff.Column, diff.BeforeType, diff.AfterType),
			AffectedField: "schema.columns." + diff.Column,
			SuggestedFix:  "review the type mapping or add an explicit cast on the target side",
			ImpactScore:   impact,
		})
	}

	if mapped.Business.BusinessName == "" && mapped.BusinessName == "" {
		issues = append(issues, ValidationIssue{
			Severity:      SeverityInfo,
			Category:      CategoryBusinessContext,
			Message:       "mapped asset has no business name",
			AffectedField: "business_name",
			SuggestedFix:  "add a FIELD_MAPPING rule from technical_name",
			ImpactScore:   1,
		})
	}
	if original.Owner != "" && mapped.Owner == "" {
		issues = append(issues, ValidationIssue{
			Severity:      SeverityWarning,
			Category:      CategorySecurity,
			Message:       "owner was dropped during mapping",
			AffectedField: "owner",
			SuggestedFix:  "map owner explicitly or configure a default steward",
			ImpactScore:   5,
		})
	}

	if mapped.AssetType == domain.AssetTypeTable && len(mapped.Schema.Columns) == 0 {
		issues = append(issues, ValidationIssue{
			Severity:      SeverityWarning,
			Category:      CategorySchemaStructure,
			Message:       "table asset has no schema columns",
			AffectedField: "schema.columns",
			ImpactScore:   4,
		})
	}
	if dup := duplicateColumn(mapped.Schema); dup != "" {
		issues = append(issues, ValidationIssue{
			Severity:      SeverityError,
			Category:      CategorySchemaStructure,
			Message:       fmt.Sprintf("duplicate column name %q in mapped schema", dup),
			AffectedField: "schema.columns",
			ImpactScore:   7,
		})
	}

	if len(preview.Result.AppliedRuleIDs) == 0 {
		issues = append(issues, ValidationIssue{
			Severity:     SeverityWarning,
			Category:     CategoryMappingLogic,
			Message:      "no mapping rules applied to this asset",
			SuggestedFix: "check rule asset-type and source-system filters",
			ImpactScore:  3,
		})
	}

	if len(mapped.Schema.Columns) > 500 {
		issues = append(issues, ValidationIssue{
			Severity:    SeverityInfo,
			Category:    CategoryPerformance,
			Message:     fmt.Sprintf("wide schema (%d columns) may slow synchronization", len(mapped.Schema.Columns)),
			ImpactScore: 2,
		})
	}

	return issues
}

func duplicateColumn(schema domain.SchemaDescriptor) string {
	seen := make(map[string]bool, len(schema.Columns))
	for _, c := range schema.Columns {
		if seen[c.Name] {
			return c.Name
		}
		seen[c.Name] = true
	}
	return ""
}

func normalizeType(t string) string {
	return strings.ToLower(strings.TrimSpace(t))
}

// estimateImpact derives the risk ladder from the diffs.
func estimateImpact(original, mapped *domain.MetadataAsset, columnDiffs []ColumnDiff) ImpactEstimate {
	impact := ImpactEstimate{DataLossRisk: "LOW", BusinessImpact: "LOW"}

	risky, changed := 0, 0
	for _, diff := range columnDiffs {
		if diff.Kind == "TYPE_CHANGED" {
			changed++
			if riskyTypePairs[normalizeType(diff.BeforeType)][normalizeType(diff.AfterType)] {
				risky++
			}
		}
		if diff.Kind == "REMOVED" {
			changed++
			risky++
		}
	}
	switch {
	case risky > 0:
		impact.DataLossRisk = "HIGH"
		impact.Notes = append(impact.Notes, fmt.Sprintf("%d lossy column change(s)", risky))
	case changed > 0:
		impact.DataLossRisk = "MEDIUM"
		impact.Notes = append(impact.Notes, fmt.Sprintf("%d column change(s)", changed))
	}

	if original.TechnicalName != mapped.TechnicalName {
		impact.BusinessImpact = "MEDIUM"
		impact.Notes = append(impact.Notes,
			fmt.Sprintf("technical name changes %q → %q; downstream references must follow", original.TechnicalName, mapped.TechnicalName))
	}
	return impact
}
