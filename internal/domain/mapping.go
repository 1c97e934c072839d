package domain

// MappingRuleType classifies what a mapping rule does.
type MappingRuleType string

// Mapping rule type constants.
const (
	RuleTypeFieldMapping        MappingRuleType = "FIELD_MAPPING"
	RuleTypeValueTransformation MappingRuleType = "VALUE_TRANSFORMATION"
	RuleTypeConditionalMapping  MappingRuleType = "CONDITIONAL_MAPPING"
	RuleTypeBusinessRule        MappingRuleType = "BUSINESS_RULE"
	RuleTypeNamingConvention    MappingRuleType = "NAMING_CONVENTION"
)

// ConditionKind tags one node of a condition tree.
type ConditionKind string

// Condition kinds.
const (
	CondNotEmpty  ConditionKind = "NOT_EMPTY"
	CondEmpty     ConditionKind = "EMPTY"
	CondEquals    ConditionKind = "EQUALS"
	CondNotEquals ConditionKind = "NOT_EQUALS"
	CondMatches   ConditionKind = "MATCHES"
	CondHasPrefix ConditionKind = "HAS_PREFIX"
	CondAnd       ConditionKind = "AND"
	CondOr        ConditionKind = "OR"
	CondNot       ConditionKind = "NOT"
)

// Condition is a tagged-variant predicate tree evaluated against asset
// fields. Field is a dot-separated logical path; Value is the comparison
// operand for EQUALS/NOT_EQUALS/MATCHES/HAS_PREFIX; Children carries the
// operands of AND/OR/NOT.
type Condition struct {
	Kind     ConditionKind `yaml:"kind"`
	Field    string        `yaml:"field,omitempty"`
	Value    string        `yaml:"value,omitempty"`
	Children []*Condition  `yaml:"children,omitempty"`
}

// MappingRule is one field-level transformation step within a profile.
// Priority is ascending: smaller values are applied first, ties break on
// insertion order.
type MappingRule struct {
	ID             string          `yaml:"id"`
	Type           MappingRuleType `yaml:"type"`
	SourceField    string          `yaml:"source_field"`
	TargetField    string          `yaml:"target_field"`
	Transformation string          `yaml:"transformation,omitempty"`
	Condition      *Condition      `yaml:"condition,omitempty"`
	// RequireSourceValue skips the rule unless the source field resolves
	// to a non-empty value.
	RequireSourceValue bool        `yaml:"require_source_value,omitempty"`
	AssetTypes         []AssetType `yaml:"asset_types,omitempty"`
	SourceSystems      []string    `yaml:"source_systems,omitempty"`
	Priority           int         `yaml:"priority"`
	Active             bool        `yaml:"active"`
}

// AppliesTo reports whether the rule's asset-type and source-system filters
// admit the given asset. Empty filters match everything.
func (r *MappingRule) AppliesTo(asset *MetadataAsset) bool {
	if len(r.AssetTypes) > 0 {
		found := false
		for _, t := range r.AssetTypes {
			if t == asset.AssetType {
				found = true
				break
			}
		}
		if !found {
			return false
		}
	}
	if len(r.SourceSystems) > 0 {
		found := false
		for _, s := range r.SourceSystems {
			if s == asset.SourceSystem {
				found = true
				break
			}
		}
		if !found {
			return false
		}
	}
	return true
}

// Validate checks that the rule is well-formed.
func (r *MappingRule) Validate() error {
	if r.ID == "" {
		return ErrConfiguration("rule id is required")
	}
	if r.SourceField == "" {
		return ErrMappingRule("rule %s: source_field is required", r.ID)
	}
	if r.TargetField == "" {
		return ErrMappingRule("rule %s: target_field is required", r.ID)
	}
	return nil
}

// NamingConvention rewrites technical names for one asset type.
type NamingConvention struct {
	// Pattern is a regular expression applied to the technical name;
	// Replacement may reference capture groups ($1, $2, ...).
	Pattern     string `yaml:"pattern"`
	Replacement string `yaml:"replacement"`
	// Lowercase folds the rewritten name to lower case.
	Lowercase bool `yaml:"lowercase"`
	// SystemQualifier, when set together with EnvironmentSuffix, wraps the
	// name as <qualifier>_<name>_<environment> unless the name already
	// carries the qualifier prefix.
	SystemQualifier   string `yaml:"system_qualifier,omitempty"`
	EnvironmentSuffix bool   `yaml:"environment_suffix,omitempty"`
	Environment       string `yaml:"environment,omitempty"`
}

// NamingStrategy selects how naming collisions are resolved.
type NamingStrategy string

// SchemaStrategy selects how schema mismatches are resolved.
type SchemaStrategy string

// Conflict resolution strategies.
const (
	NamingTimestampSuffix NamingStrategy = "TIMESTAMP_SUFFIX"
	NamingCustom          NamingStrategy = "CUSTOM"

	SchemaSourceWins SchemaStrategy = "SOURCE_WINS"
	SchemaTargetWins SchemaStrategy = "TARGET_WINS"
	SchemaMerge      SchemaStrategy = "MERGE"
	SchemaManual     SchemaStrategy = "MANUAL"
)

// ConflictPolicy is the policy for reconciling naming or schema collisions
// between source and target.
type ConflictPolicy struct {
	Naming NamingStrategy `yaml:"naming"`
	Schema SchemaStrategy `yaml:"schema"`
	// ReservedNames are technical names known to be taken on the target
	// side; mapping onto one of them is a naming collision.
	ReservedNames []string `yaml:"reserved_names,omitempty"`
	// Renamer resolves naming collisions when Naming is CUSTOM.
	Renamer func(name string) string `yaml:"-"`
}

// MappingProfile groups rules, naming conventions, and conflict policy for
// one (source system, target system, asset type) combination.
type MappingProfile struct {
	ID           string    `yaml:"id"`
	Name         string    `yaml:"name"`
	SourceSystem string    `yaml:"source_system"`
	TargetSystem string    `yaml:"target_system"`
	AssetType    AssetType `yaml:"asset_type"`
	Description  string    `yaml:"description,omitempty"`

	Rules []MappingRule `yaml:"rules"`
	// NamingConventions is keyed by asset type; the empty key applies to
	// all types without a specific entry.
	NamingConventions map[AssetType]NamingConvention `yaml:"naming_conventions,omitempty"`
	Conflicts         ConflictPolicy                 `yaml:"conflicts"`

	// CustomTransforms backs "custom:" transformation references in rules.
	CustomTransforms map[string]func(any) (any, error) `yaml:"-"`
}

// Validate checks the profile's structural integrity.
func (p *MappingProfile) Validate() error {
	if p.ID == "" {
		return ErrConfiguration("profile id is required")
	}
	if p.Name == "" {
		return ErrConfiguration("profile %s: name is required", p.ID)
	}
	for i := range p.Rules {
		if err := p.Rules[i].Validate(); err != nil {
			return err
		}
	}
	return nil
}

// ConventionFor returns the naming convention for the given asset type,
// falling back to the catch-all entry.
func (p *MappingProfile) ConventionFor(t AssetType) (NamingConvention, bool) {
	if c, ok := p.NamingConventions[t]; ok {
		return c, true
	}
	c, ok := p.NamingConventions[AssetType("")]
	return c, ok
}
