package validator

import (
	"context"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"metasync/internal/domain"
	"metasync/internal/service/mapper"
	"metasync/internal/testutil"
	"metasync/internal/transform"
)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

var frozenTime = time.Date(2024, 1, 15, 10, 30, 0, 0, time.UTC)

func newTestValidator() *Validator {
	clock := func() time.Time { return frozenTime }
	m := mapper.New(transform.NewRegistry().SeedDefaults(), &testutil.MockAuditSink{}, discardLogger()).WithClock(clock)
	return New(m, discardLogger()).WithClock(clock)
}

func cleanProfile() *domain.MappingProfile {
	return &domain.MappingProfile{
		ID:           "p-clean",
		Name:         "Clean",
		SourceSystem: "datasphere",
		TargetSystem: "catalog",
		Rules: []domain.MappingRule{
			{ID: "r-name", SourceField: "technical_name", TargetField: "technical_name",
				Transformation: "sanitize", Priority: 10, Active: true},
			{ID: "r-bname", SourceField: "technical_name", TargetField: "business_context.business_name",
				Priority: 20, Active: true},
		},
	}
}

func cleanAsset() *domain.MetadataAsset {
	return &domain.MetadataAsset{
		AssetID:       "a-1",
		AssetType:     domain.AssetTypeTable,
		SourceSystem:  "datasphere",
		TechnicalName: "orders",
		Owner:         "ops@example.com",
		Business:      domain.BusinessContext{BusinessName: "Orders"},
		Schema: domain.SchemaDescriptor{Columns: []domain.ColumnDescriptor{
			{Name: "id", Type: "bigint"},
		}},
	}
}

func TestScore(t *testing.T) {
	t.Parallel()

	assert.Equal(t, 100, Score(nil))
	assert.Equal(t, 99, Score([]ValidationIssue{{Severity: SeverityInfo}}))
	assert.Equal(t, 97, Score([]ValidationIssue{{Severity: SeverityWarning}}))
	assert.Equal(t, 93, Score([]ValidationIssue{{Severity: SeverityError}}))
	assert.Equal(t, 85, Score([]ValidationIssue{{Severity: SeverityCritical}}))

	// Stacking issues never raises the score and the floor is zero.
	many := make([]ValidationIssue, 10)
	for i := range many {
		many[i] = ValidationIssue{Severity: SeverityCritical}
	}
	assert.Equal(t, 0, Score(many))

	prev := 100
	var issues []ValidationIssue
	for _, sev := range []IssueSeverity{SeverityInfo, SeverityWarning, SeverityError, SeverityCritical} {
		issues = append(issues, ValidationIssue{Severity: sev})
		got := Score(issues)
		assert.LessOrEqual(t, got, prev)
		prev = got
	}
}

func TestPreview_CleanMapping(t *testing.T) {
	t.Parallel()

	v := newTestValidator()
	preview := v.Preview(context.Background(), cleanAsset(), "catalog", cleanProfile())

	require.True(t, preview.Result.Success)
	assert.Empty(t, preview.ColumnDiffs)
	assert.Equal(t, "LOW", preview.Impact.DataLossRisk)
	assert.Equal(t, "LOW", preview.Impact.BusinessImpact)
	for _, issue := range preview.Issues {
		assert.NotEqual(t, SeverityCritical, issue.Severity)
		assert.NotEqual(t, SeverityError, issue.Severity)
	}
}

func TestPreview_FailedMappingIsCritical(t *testing.T) {
	t.Parallel()

	v := newTestValidator()
	preview := v.Preview(context.Background(), nil, "catalog", cleanProfile())

	require.False(t, preview.Result.Success)
	require.Len(t, preview.Issues, 1)
	assert.Equal(t, SeverityCritical, preview.Issues[0].Severity)
	assert.Equal(t, "HIGH", preview.Impact.DataLossRisk)
}

func TestPreview_NamingIssue(t *testing.T) {
	t.Parallel()

	// No sanitize rule, so the raw name flows through and trips the naming
	// check.
	profile := &domain.MappingProfile{ID: "p", Name: "P", TargetSystem: "catalog"}
	asset := cleanAsset()
	asset.TechnicalName = "Customer Table"

	v := newTestValidator()
	preview := v.Preview(context.Background(), asset, "catalog", profile)

	require.True(t, preview.Result.Success)
	found := false
	for _, issue := range preview.Issues {
		if issue.Category == CategoryNamingConvention {
			found = true
			assert.Equal(t, SeverityWarning, issue.Severity)
		}
	}
	assert.True(t, found, "expected a naming convention issue")
}

func TestPreview_FieldDiffs(t *testing.T) {
	t.Parallel()

	v := newTestValidator()
	asset := cleanAsset()
	asset.TechnicalName = "Customer Table"

	preview := v.Preview(context.Background(), asset, "catalog", cleanProfile())
	require.True(t, preview.Result.Success)

	var fields []string
	for _, d := range preview.FieldDiffs {
		fields = append(fields, d.Field)
	}
	assert.Contains(t, fields, "technical_name")
	assert.Equal(t, "MEDIUM", preview.Impact.BusinessImpact, "a rename must register as business impact")
}

func TestValidateProfile_StructuralIssuesBlock(t *testing.T) {
	t.Parallel()

	v := newTestValidator()
	profile := &domain.MappingProfile{
		ID:   "p-broken",
		Name: "Broken",
		Rules: []domain.MappingRule{
			{ID: "r-incomplete", SourceField: "", TargetField: "description", Active: true},
		},
	}

	report := v.ValidateProfile(context.Background(), profile, []*domain.MetadataAsset{cleanAsset()})

	assert.False(t, report.Valid)
	assert.Less(t, report.OverallScore, 100)
	assert.Equal(t, 1, report.Previews)
}

func TestValidateProfile_GeneratesRepresentatives(t *testing.T) {
	t.Parallel()

	v := newTestValidator()
	report := v.ValidateProfile(context.Background(), cleanProfile(), nil)

	// One synthetic preview per asset type.
	assert.Equal(t, len(domain.AllAssetTypes()), report.Previews)
	assert.GreaterOrEqual(t, report.OverallScore, 0)
	assert.LessOrEqual(t, report.OverallScore, 100)
}

func TestDryRun(t *testing.T) {
	t.Parallel()

	v := newTestValidator()
	assets := []*domain.MetadataAsset{cleanAsset(), cleanAsset(), nil}

	report := v.DryRun(context.Background(), assets, "catalog", cleanProfile())

	assert.Equal(t, 3, report.Total)
	assert.Equal(t, 2, report.Succeeded)
	assert.Equal(t, 1, report.Failed)
	assert.Equal(t, "HIGH", report.OverallRisk, "a failed mapping carries a critical issue")
	assert.GreaterOrEqual(t, report.ReadinessScore, 0.0)
	assert.LessOrEqual(t, report.ReadinessScore, 100.0)
}

func TestDryRun_AllClean(t *testing.T) {
	t.Parallel()

	v := newTestValidator()
	assets := []*domain.MetadataAsset{cleanAsset(), cleanAsset()}

	report := v.DryRun(context.Background(), assets, "catalog", cleanProfile())

	assert.Equal(t, 2, report.Succeeded)
	assert.Zero(t, report.Failed)
	assert.Equal(t, "LOW", report.OverallRisk)
	assert.Equal(t, 100.0, report.ReadinessScore)
}

func TestDryRun_Empty(t *testing.T) {
	t.Parallel()

	v := newTestValidator()
	report := v.DryRun(context.Background(), nil, "catalog", cleanProfile())

	assert.Zero(t, report.Total)
	assert.Equal(t, "LOW", report.OverallRisk)
	assert.Zero(t, report.ReadinessScore)
}

func TestRiskyTypeChangeEscalates(t *testing.T) {
	t.Parallel()

	// The profile rewrites the schema to a narrower column type.
	profile := &domain.MappingProfile{
		ID:   "p-narrow",
		Name: "Narrowing",
		Rules: []domain.MappingRule{
			{ID: "r-schema", SourceField: "schema.columns", TargetField: "schema.columns",
				Transformation: "custom:narrow", Priority: 1, Active: true},
		},
		CustomTransforms: map[string]func(any) (any, error){
			"narrow": func(v any) (any, error) {
				cols := v.([]domain.ColumnDescriptor)
				out := make([]domain.ColumnDescriptor, len(cols))
				copy(out, cols)
				for i := range out {
					if out[i].Type == "decimal" {
						out[i].Type = "int"
					}
				}
				return out, nil
			},
		},
	}
	asset := cleanAsset()
	asset.Schema.Columns = append(asset.Schema.Columns, domain.ColumnDescriptor{Name: "amount", Type: "decimal"})

	v := newTestValidator()
	preview := v.Preview(context.Background(), asset, "catalog", profile)
	require.True(t, preview.Result.Success)

	var escalated bool
	for _, issue := range preview.Issues {
		if issue.Category == CategoryDataTypeCompatibility && issue.Severity == SeverityError {
			escalated = true
		}
	}
	assert.True(t, escalated, "decimal to int must escalate to an error")
	assert.Equal(t, "HIGH", preview.Impact.DataLossRisk)
}
