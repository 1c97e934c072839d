package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"metasync/internal/domain"
)

// profileFile is the on-disk layout of a profile definition file.
type profileFile struct {
	Profiles []*domain.MappingProfile `yaml:"profiles"`
}

// ruleFile is the on-disk layout of a sync rule definition file.
type ruleFile struct {
	Rules []domain.SyncRule `yaml:"sync_rules"`
}

// LoadProfiles reads mapping profiles from a YAML file and validates each
// one.
func LoadProfiles(path string) ([]*domain.MappingProfile, error) {
	data, err := os.ReadFile(path) //nolint:gosec // path is caller-controlled
	if err != nil {
		return nil, fmt.Errorf("read profiles %s: %w", path, err)
	}
	var f profileFile
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, domain.ErrConfiguration("parse profiles %s: %v", path, err)
	}
	for _, p := range f.Profiles {
		if err := p.Validate(); err != nil {
			return nil, err
		}
	}
	return f.Profiles, nil
}

// LoadSyncRules reads sync rules from a YAML file.
func LoadSyncRules(path string) ([]domain.SyncRule, error) {
	data, err := os.ReadFile(path) //nolint:gosec // path is caller-controlled
	if err != nil {
		return nil, fmt.Errorf("read sync rules %s: %w", path, err)
	}
	var f ruleFile
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, domain.ErrConfiguration("parse sync rules %s: %v", path, err)
	}
	return f.Rules, nil
}

// SeedDefaultProfiles returns the built-in profile set for the configured
// catalog pair. Seeding is an explicit call — nothing registers itself at
// package load time.
func SeedDefaultProfiles(cfg *Config) []*domain.MappingProfile {
	return []*domain.MappingProfile{
		{
			ID:           "default-" + cfg.SourceSystem + "-" + cfg.TargetSystem,
			Name:         "Default " + cfg.SourceSystem + " to " + cfg.TargetSystem,
			SourceSystem: cfg.SourceSystem,
			TargetSystem: cfg.TargetSystem,
			Rules: []domain.MappingRule{
				{
					ID:             "default-technical-name",
					Type:           domain.RuleTypeValueTransformation,
					SourceField:    "technical_name",
					TargetField:    "technical_name",
					Transformation: "sanitize",
					Priority:       10,
					Active:         true,
				},
				{
					ID:                 "default-business-name",
					Type:               domain.RuleTypeFieldMapping,
					SourceField:        "business_name",
					TargetField:        "business_context.business_name",
					RequireSourceValue: true,
					Priority:           20,
					Active:             true,
				},
				{
					ID:                 "default-description",
					Type:               domain.RuleTypeFieldMapping,
					SourceField:        "description",
					TargetField:        "business_context.description",
					RequireSourceValue: true,
					Priority:           30,
					Active:             true,
				},
				{
					ID:                 "default-owner",
					Type:               domain.RuleTypeFieldMapping,
					SourceField:        "owner",
					TargetField:        "business_context.owner",
					RequireSourceValue: true,
					Priority:           40,
					Active:             true,
				},
			},
			NamingConventions: map[domain.AssetType]domain.NamingConvention{
				domain.AssetTypeAnalyticalModel: {
					Pattern:           `^(.+)$`,
					Replacement:       `${1}_model`,
					Lowercase:         true,
					SystemQualifier:   cfg.SourceSystem,
					EnvironmentSuffix: true,
					Environment:       cfg.Environment,
				},
			},
			Conflicts: domain.ConflictPolicy{
				Naming: domain.NamingTimestampSuffix,
				Schema: domain.SchemaSourceWins,
			},
		},
	}
}

// SeedDefaultSyncRules returns the built-in scheduling rules for the
// configured catalog pair.
func SeedDefaultSyncRules(cfg *Config) []domain.SyncRule {
	return []domain.SyncRule{
		{
			ID:           "certified-hourly",
			Name:         "Certified assets sync hourly",
			SourceSystem: cfg.SourceSystem,
			TargetSystem: cfg.TargetSystem,
			RequiredTag:  "certified",
			Priority:     domain.PriorityHigh,
			Frequency:    domain.FrequencyHourly,
			Active:       true,
		},
		{
			ID:           "models-daily",
			Name:         "Analytical models sync daily",
			AssetType:    domain.AssetTypeAnalyticalModel,
			SourceSystem: cfg.SourceSystem,
			TargetSystem: cfg.TargetSystem,
			Priority:     domain.PriorityMedium,
			Frequency:    domain.FrequencyDaily,
			Active:       true,
		},
		{
			ID:           "everything-daily",
			Name:         "Catch-all daily sync",
			SourceSystem: cfg.SourceSystem,
			TargetSystem: cfg.TargetSystem,
			Priority:     domain.PriorityLow,
			Frequency:    domain.FrequencyDaily,
			Active:       true,
		},
	}
}
