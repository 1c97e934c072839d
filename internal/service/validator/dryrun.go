package validator

import (
	"context"
	"fmt"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"

	"metasync/internal/domain"
)

// ValidateProfile checks the profile's structural integrity, then previews
// it against the supplied test assets — or synthetically generated
// representatives per asset type when none are given — and aggregates every
// issue into one scored report.
func (v *Validator) ValidateProfile(ctx context.Context, profile *domain.MappingProfile, testAssets []*domain.MetadataAsset) ValidationReport {
	start := v.now()
	report := ValidationReport{ProfileID: profile.ID}

	report.Issues = append(report.Issues, structuralIssues(profile)...)

	assets := testAssets
	if len(assets) == 0 {
		assets = representativeAssets(profile.SourceSystem)
	}
	for _, asset := range assets {
		preview := v.Preview(ctx, asset, profile.TargetSystem, profile)
		report.Issues = append(report.Issues, preview.Issues...)
		report.Previews++
	}

	report.OverallScore = Score(report.Issues)
	report.Valid = true
	for _, issue := range report.Issues {
		if issue.Severity == SeverityError || issue.Severity == SeverityCritical {
			report.Valid = false
			break
		}
	}
	report.Elapsed = v.now().Sub(start)
	return report
}

// structuralIssues validates the profile definition itself.
func structuralIssues(profile *domain.MappingProfile) []ValidationIssue {
	var issues []ValidationIssue
	if profile.ID == "" || profile.Name == "" {
		issues = append(issues, ValidationIssue{
			Severity:    SeverityCritical,
			Category:    CategoryMappingLogic,
			Message:     "profile id and name are required",
			ImpactScore: 10,
		})
	}
	for _, rule := range profile.Rules {
		if rule.SourceField == "" || rule.TargetField == "" {
			issues = append(issues, ValidationIssue{
				Severity:      SeverityError,
				Category:      CategoryMappingLogic,
				Message:       fmt.Sprintf("rule %s must set both source and target field", rule.ID),
				AffectedField: rule.SourceField,
				SuggestedFix:  "complete the rule definition or deactivate the rule",
				ImpactScore:   7,
			})
		}
	}
	return issues
}

// representativeAssets builds one synthetic asset per asset type for
// profile validation when no test assets are supplied.
func representativeAssets(sourceSystem string) []*domain.MetadataAsset {
	base := time.Date(2024, 1, 15, 9, 0, 0, 0, time.UTC)
	var assets []*domain.MetadataAsset
	for i, t := range domain.AllAssetTypes() {
		assets = append(assets, &domain.MetadataAsset{
			AssetID:       fmt.Sprintf("sample-%d", i+1),
			AssetType:     t,
			SourceSystem:  sourceSystem,
			TechnicalName: fmt.Sprintf("Sample %s Asset", t),
			Owner:         "validation@local",
			CreatedAt:     base,
			ModifiedAt:    base,
			Business: domain.BusinessContext{
				BusinessName: fmt.Sprintf("Sample %s", t),
				Tags:         []string{"sample"},
			},
			Schema: domain.SchemaDescriptor{Columns: []domain.ColumnDescriptor{
				{Name: "id", Type: "bigint"},
				{Name: "amount", Type: "decimal"},
				{Name: "updated_at", Type: "timestamp", Nullable: true},
			}},
		})
	}
	return assets
}

// DryRun previews the profile against a batch of real assets with bounded
// parallelism and reports throughput, readiness, and overall risk.
func (v *Validator) DryRun(ctx context.Context, assets []*domain.MetadataAsset, targetSystem string, profile *domain.MappingProfile) DryRunReport {
	start := v.now()
	report := DryRunReport{Total: len(assets)}

	var mu sync.Mutex
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(v.dryRunParallelism)

	for _, asset := range assets {
		asset := asset
		g.Go(func() error {
			preview := v.Preview(gctx, asset, targetSystem, profile)
			mu.Lock()
			defer mu.Unlock()
			if preview.Result.Success {
				report.Succeeded++
			} else {
				report.Failed++
			}
			if len(preview.Issues) > 0 {
				report.AssetsWithIssue++
				report.Issues = append(report.Issues, preview.Issues...)
			}
			return nil
		})
	}
	// Preview never returns an error; issues are aggregated instead.
	_ = g.Wait()

	report.Elapsed = v.now().Sub(start)
	if secs := report.Elapsed.Seconds(); secs > 0 {
		report.Throughput = float64(report.Total) / secs
	}

	successRate := 0.0
	if report.Total > 0 {
		successRate = float64(report.Succeeded) / float64(report.Total)
	}
	penalty := float64(len(report.Issues)) * 0.05
	if penalty > 0.5 {
		penalty = 0.5
	}
	report.ReadinessScore = (successRate - penalty) * 100
	if report.ReadinessScore < 0 {
		report.ReadinessScore = 0
	}

	report.OverallRisk = "LOW"
	for _, issue := range report.Issues {
		if issue.Severity == SeverityCritical {
			report.OverallRisk = "HIGH"
			break
		}
	}
	if report.OverallRisk == "LOW" && report.Total > 0 && report.AssetsWithIssue*2 > report.Total {
		report.OverallRisk = "MEDIUM"
	}
	return report
}
