package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"metasync/internal/domain"
)

const profilesYAML = `
profiles:
  - id: datasphere-to-catalog
    name: Datasphere to catalog
    source_system: datasphere
    target_system: catalog
    rules:
      - id: clean-name
        type: VALUE_TRANSFORMATION
        source_field: technical_name
        target_field: technical_name
        transformation: sanitize
        priority: 10
        active: true
      - id: carry-owner
        type: FIELD_MAPPING
        source_field: owner
        target_field: business_context.owner
        require_source_value: true
        priority: 20
        active: true
        condition:
          kind: NOT_EMPTY
          field: owner
    naming_conventions:
      ANALYTICAL_MODEL:
        pattern: "^(.+)$"
        replacement: "${1}_model"
        lowercase: true
        system_qualifier: datasphere
        environment_suffix: true
        environment: dev
    conflicts:
      naming: TIMESTAMP_SUFFIX
      schema: MERGE
      reserved_names: [system, admin]
`

const rulesYAML = `
sync_rules:
  - id: certified-hourly
    name: Certified hourly
    source_system: datasphere
    target_system: catalog
    required_tag: certified
    priority: 2
    frequency: HOURLY
    active: true
  - id: models-daily
    name: Models daily
    asset_type: ANALYTICAL_MODEL
    source_system: datasphere
    target_system: catalog
    priority: 3
    frequency: DAILY
    active: true
`

func writeTemp(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

func TestLoadProfiles(t *testing.T) {
	t.Parallel()

	path := writeTemp(t, "profiles.yaml", profilesYAML)
	profiles, err := LoadProfiles(path)
	require.NoError(t, err)
	require.Len(t, profiles, 1)

	p := profiles[0]
	assert.Equal(t, "datasphere-to-catalog", p.ID)
	assert.Equal(t, "datasphere", p.SourceSystem)
	require.Len(t, p.Rules, 2)
	assert.Equal(t, domain.RuleTypeValueTransformation, p.Rules[0].Type)
	assert.Equal(t, "sanitize", p.Rules[0].Transformation)
	assert.True(t, p.Rules[1].RequireSourceValue)
	require.NotNil(t, p.Rules[1].Condition)
	assert.Equal(t, domain.CondNotEmpty, p.Rules[1].Condition.Kind)

	conv, ok := p.ConventionFor(domain.AssetTypeAnalyticalModel)
	require.True(t, ok)
	assert.Equal(t, "datasphere", conv.SystemQualifier)
	assert.True(t, conv.Lowercase)

	assert.Equal(t, domain.SchemaMerge, p.Conflicts.Schema)
	assert.Equal(t, []string{"system", "admin"}, p.Conflicts.ReservedNames)
}

func TestLoadProfiles_Invalid(t *testing.T) {
	t.Parallel()

	_, err := LoadProfiles(filepath.Join(t.TempDir(), "missing.yaml"))
	require.Error(t, err)

	_, err = LoadProfiles(writeTemp(t, "broken.yaml", "profiles: [not a mapping"))
	require.Error(t, err)

	// Structural validation runs on load: a rule without a target field
	// rejects the whole file.
	bad := `
profiles:
  - id: p1
    name: Broken
    rules:
      - id: r1
        source_field: owner
        active: true
`
	_, err = LoadProfiles(writeTemp(t, "invalid.yaml", bad))
	require.Error(t, err)
	var ruleErr *domain.MappingRuleError
	assert.ErrorAs(t, err, &ruleErr)
}

func TestLoadSyncRules(t *testing.T) {
	t.Parallel()

	path := writeTemp(t, "rules.yaml", rulesYAML)
	rules, err := LoadSyncRules(path)
	require.NoError(t, err)
	require.Len(t, rules, 2)

	assert.Equal(t, "certified-hourly", rules[0].ID)
	assert.Equal(t, "certified", rules[0].RequiredTag)
	assert.Equal(t, domain.PriorityHigh, rules[0].Priority)
	assert.Equal(t, domain.FrequencyHourly, rules[0].Frequency)
	assert.Equal(t, domain.AssetTypeAnalyticalModel, rules[1].AssetType)
}

func TestSeedDefaults(t *testing.T) {
	t.Parallel()

	cfg := &Config{SourceSystem: "datasphere", TargetSystem: "catalog", Environment: "dev"}

	profiles := SeedDefaultProfiles(cfg)
	require.Len(t, profiles, 1)
	p := profiles[0]
	require.NoError(t, p.Validate())
	assert.Equal(t, "datasphere", p.SourceSystem)
	assert.Equal(t, "catalog", p.TargetSystem)
	assert.NotEmpty(t, p.Rules)

	conv, ok := p.ConventionFor(domain.AssetTypeAnalyticalModel)
	require.True(t, ok)
	assert.Equal(t, "dev", conv.Environment)

	rules := SeedDefaultSyncRules(cfg)
	require.NotEmpty(t, rules)
	for _, r := range rules {
		assert.True(t, r.Active)
		assert.Equal(t, "datasphere", r.SourceSystem)
	}
}
