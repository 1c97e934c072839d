package mapper

import (
	"fmt"

	"metasync/internal/domain"
)

// timestampSuffixLayout renders the collision suffix appended to names.
const timestampSuffixLayout = "20060102150405"

// resolveConflicts reconciles the mapped asset against the target side and
// returns human-readable descriptions of every conflict it resolved or
// flagged.
func (m *Mapper) resolveConflicts(mapped, existing *domain.MetadataAsset, profile *domain.MappingProfile, targetSystem string) []string {
	var conflicts []string

	if c := m.resolveNaming(mapped, existing, profile, targetSystem); c != "" {
		conflicts = append(conflicts, c)
	}
	if existing != nil {
		if c := resolveSchema(mapped, existing, profile.Conflicts.Schema); c != "" {
			conflicts = append(conflicts, c)
		}
	}
	return conflicts
}

// resolveNaming detects a naming collision — the mapped name is reserved on
// the target, or an existing target asset with the same name descends from a
// different origin — and renames per the profile's naming strategy.
func (m *Mapper) resolveNaming(mapped, existing *domain.MetadataAsset, profile *domain.MappingProfile, targetSystem string) string {
	collision := false
	for _, reserved := range profile.Conflicts.ReservedNames {
		if reserved == mapped.TechnicalName {
			collision = true
			break
		}
	}
	if !collision && existing != nil && existing.TechnicalName == mapped.TechnicalName {
		origin, _ := existing.Property(PropOriginAssetID)
		mappedOrigin, _ := mapped.Property(PropOriginAssetID)
		if origin != mappedOrigin {
			collision = true
		}
	}
	if !collision {
		return ""
	}

	old := mapped.TechnicalName
	switch profile.Conflicts.Naming {
	case domain.NamingCustom:
		if profile.Conflicts.Renamer != nil {
			mapped.TechnicalName = profile.Conflicts.Renamer(old)
			break
		}
		fallthrough
	default:
		mapped.TechnicalName = old + "_" + m.now().UTC().Format(timestampSuffixLayout)
	}
	mapped.AssetID = DeriveAssetID(targetSystem, mapped.TechnicalName)
	return fmt.Sprintf("naming collision on %q, renamed to %q", old, mapped.TechnicalName)
}

// resolveSchema reconciles a schema mismatch between the mapped (source)
// schema and the existing target schema. A mismatch is a differing column
// count or any per-column type difference. An existing asset with no schema
// descriptor at all is not a mismatch.
func resolveSchema(mapped, existing *domain.MetadataAsset, strategy domain.SchemaStrategy) string {
	if len(existing.Schema.Columns) == 0 || !schemasDiffer(mapped.Schema, existing.Schema) {
		return ""
	}

	switch strategy {
	case domain.SchemaTargetWins:
		mapped.Schema = existing.Schema.Clone()
		return "schema mismatch resolved: target schema kept"
	case domain.SchemaMerge:
		mapped.Schema = mergeSchemas(mapped.Schema, existing.Schema)
		return "schema mismatch resolved: schemas merged"
	case domain.SchemaManual:
		mapped.SyncStatus = domain.SyncStatusConflict
		return "schema mismatch flagged for manual resolution"
	default: // source wins
		return "schema mismatch resolved: source schema kept"
	}
}

// schemasDiffer applies the richer comparison: column count and per-column
// type, matched by column name.
func schemasDiffer(source, target domain.SchemaDescriptor) bool {
	if len(source.Columns) != len(target.Columns) {
		return true
	}
	types := make(map[string]string, len(target.Columns))
	for _, c := range target.Columns {
		types[c.Name] = c.Type
	}
	for _, c := range source.Columns {
		t, ok := types[c.Name]
		if !ok || t != c.Type {
			return true
		}
	}
	return false
}

// mergeSchemas keeps source columns in order, then appends target-only
// columns in their own order.
func mergeSchemas(source, target domain.SchemaDescriptor) domain.SchemaDescriptor {
	merged := source.Clone()
	seen := make(map[string]bool, len(source.Columns))
	for _, c := range source.Columns {
		seen[c.Name] = true
	}
	for _, c := range target.Columns {
		if !seen[c.Name] {
			merged.Columns = append(merged.Columns, c)
		}
	}
	return merged
}
