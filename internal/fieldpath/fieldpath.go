// Package fieldpath provides typed get/set access to nested asset fields by
// logical dot-separated path. Structured fields are served by an explicit
// registry of getter/setter closures; everything else falls through to the
// asset's open property bag, where intermediate map levels are created on
// write.
package fieldpath

import (
	"strings"

	"metasync/internal/domain"
)

type getter func(a *domain.MetadataAsset) (any, bool)

type setter func(a *domain.MetadataAsset, v any) error

type field struct {
	get getter
	set setter
}

// structured is the registry of logical field names backed by typed struct
// access. Built once; read-only afterwards.
var structured = map[string]field{
	"asset_id": {
		get: func(a *domain.MetadataAsset) (any, bool) { return a.AssetID, a.AssetID != "" },
		set: func(a *domain.MetadataAsset, v any) error {
			return domain.ErrMappingRule("asset_id is immutable")
		},
	},
	"asset_type": {
		get: func(a *domain.MetadataAsset) (any, bool) { return string(a.AssetType), a.AssetType != "" },
		set: func(a *domain.MetadataAsset, v any) error {
			s, err := asString(v, "asset_type")
			if err != nil {
				return err
			}
			a.AssetType = domain.AssetType(s)
			return nil
		},
	},
	"source_system": {
		get: func(a *domain.MetadataAsset) (any, bool) { return a.SourceSystem, a.SourceSystem != "" },
		set: func(a *domain.MetadataAsset, v any) error {
			return assignString(&a.SourceSystem, v, "source_system")
		},
	},
	"technical_name": {
		get: func(a *domain.MetadataAsset) (any, bool) { return a.TechnicalName, a.TechnicalName != "" },
		set: func(a *domain.MetadataAsset, v any) error {
			return assignString(&a.TechnicalName, v, "technical_name")
		},
	},
	"business_name": {
		get: func(a *domain.MetadataAsset) (any, bool) { return a.BusinessName, a.BusinessName != "" },
		set: func(a *domain.MetadataAsset, v any) error {
			return assignString(&a.BusinessName, v, "business_name")
		},
	},
	"description": {
		get: func(a *domain.MetadataAsset) (any, bool) { return a.Description, a.Description != "" },
		set: func(a *domain.MetadataAsset, v any) error {
			return assignString(&a.Description, v, "description")
		},
	},
	"owner": {
		get: func(a *domain.MetadataAsset) (any, bool) { return a.Owner, a.Owner != "" },
		set: func(a *domain.MetadataAsset, v any) error {
			return assignString(&a.Owner, v, "owner")
		},
	},
	"sync_status": {
		get: func(a *domain.MetadataAsset) (any, bool) { return a.SyncStatus, a.SyncStatus != "" },
		set: func(a *domain.MetadataAsset, v any) error {
			return assignString(&a.SyncStatus, v, "sync_status")
		},
	},
	"business_context.business_name": {
		get: func(a *domain.MetadataAsset) (any, bool) {
			return a.Business.BusinessName, a.Business.BusinessName != ""
		},
		set: func(a *domain.MetadataAsset, v any) error {
			return assignString(&a.Business.BusinessName, v, "business_context.business_name")
		},
	},
	"business_context.description": {
		get: func(a *domain.MetadataAsset) (any, bool) {
			return a.Business.Description, a.Business.Description != ""
		},
		set: func(a *domain.MetadataAsset, v any) error {
			return assignString(&a.Business.Description, v, "business_context.description")
		},
	},
	"business_context.owner": {
		get: func(a *domain.MetadataAsset) (any, bool) { return a.Business.Owner, a.Business.Owner != "" },
		set: func(a *domain.MetadataAsset, v any) error {
			return assignString(&a.Business.Owner, v, "business_context.owner")
		},
	},
	"business_context.steward": {
		get: func(a *domain.MetadataAsset) (any, bool) {
			return a.Business.Steward, a.Business.Steward != ""
		},
		set: func(a *domain.MetadataAsset, v any) error {
			return assignString(&a.Business.Steward, v, "business_context.steward")
		},
	},
	"business_context.certification_status": {
		get: func(a *domain.MetadataAsset) (any, bool) {
			return a.Business.CertificationStatus, a.Business.CertificationStatus != ""
		},
		set: func(a *domain.MetadataAsset, v any) error {
			return assignString(&a.Business.CertificationStatus, v, "business_context.certification_status")
		},
	},
	"business_context.tags": {
		get: func(a *domain.MetadataAsset) (any, bool) {
			return a.Business.Tags, len(a.Business.Tags) > 0
		},
		set: func(a *domain.MetadataAsset, v any) error {
			return assignStrings(&a.Business.Tags, v, "business_context.tags")
		},
	},
	"business_context.dimensions": {
		get: func(a *domain.MetadataAsset) (any, bool) {
			return a.Business.Dimensions, len(a.Business.Dimensions) > 0
		},
		set: func(a *domain.MetadataAsset, v any) error {
			return assignStrings(&a.Business.Dimensions, v, "business_context.dimensions")
		},
	},
	"business_context.measures": {
		get: func(a *domain.MetadataAsset) (any, bool) {
			return a.Business.Measures, len(a.Business.Measures) > 0
		},
		set: func(a *domain.MetadataAsset, v any) error {
			return assignStrings(&a.Business.Measures, v, "business_context.measures")
		},
	},
	"business_context.hierarchies": {
		get: func(a *domain.MetadataAsset) (any, bool) {
			return a.Business.Hierarchies, len(a.Business.Hierarchies) > 0
		},
		set: func(a *domain.MetadataAsset, v any) error {
			return assignStrings(&a.Business.Hierarchies, v, "business_context.hierarchies")
		},
	},
	"schema.columns": {
		get: func(a *domain.MetadataAsset) (any, bool) {
			return a.Schema.Columns, len(a.Schema.Columns) > 0
		},
		set: func(a *domain.MetadataAsset, v any) error {
			cols, ok := v.([]domain.ColumnDescriptor)
			if !ok {
				return domain.ErrMappingRule("schema.columns requires []ColumnDescriptor, got %T", v)
			}
			a.Schema.Columns = append([]domain.ColumnDescriptor(nil), cols...)
			return nil
		},
	},
}

// Resolve reads the value at the given logical path. The second return is
// false when the path does not resolve or the value is empty.
func Resolve(a *domain.MetadataAsset, path string) (any, bool) {
	if f, ok := structured[path]; ok {
		return f.get(a)
	}
	return resolveProperty(a, propertySegments(path))
}

// Assign writes the value at the given logical path, creating intermediate
// property map levels as needed. Writing a structured field with an
// incompatible type is a rule error.
func Assign(a *domain.MetadataAsset, path string, v any) error {
	if path == "" {
		return domain.ErrMappingRule("empty field path")
	}
	if f, ok := structured[path]; ok {
		return f.set(a, v)
	}
	return assignProperty(a, propertySegments(path), v)
}

// Known reports whether the path names a structured field.
func Known(path string) bool {
	_, ok := structured[path]
	return ok
}

// propertySegments strips the optional "properties." prefix and splits the
// remaining path on dots.
func propertySegments(path string) []string {
	path = strings.TrimPrefix(path, "properties.")
	return strings.Split(path, ".")
}

func resolveProperty(a *domain.MetadataAsset, segments []string) (any, bool) {
	var current any = a.Properties
	for _, seg := range segments {
		m, ok := current.(map[string]any)
		if !ok {
			return nil, false
		}
		current, ok = m[seg]
		if !ok {
			return nil, false
		}
	}
	if s, ok := current.(string); ok && s == "" {
		return nil, false
	}
	return current, current != nil
}

func assignProperty(a *domain.MetadataAsset, segments []string, v any) error {
	if a.Properties == nil {
		a.Properties = make(map[string]any)
	}
	m := a.Properties
	for _, seg := range segments[:len(segments)-1] {
		next, ok := m[seg].(map[string]any)
		if !ok {
			next = make(map[string]any)
			m[seg] = next
		}
		m = next
	}
	m[segments[len(segments)-1]] = v
	return nil
}

func asString(v any, path string) (string, error) {
	s, ok := v.(string)
	if !ok {
		return "", domain.ErrMappingRule("%s requires a string value, got %T", path, v)
	}
	return s, nil
}

func assignString(dst *string, v any, path string) error {
	s, err := asString(v, path)
	if err != nil {
		return err
	}
	*dst = s
	return nil
}

func assignStrings(dst *[]string, v any, path string) error {
	switch vv := v.(type) {
	case []string:
		*dst = append([]string(nil), vv...)
		return nil
	case string:
		*dst = []string{vv}
		return nil
	default:
		return domain.ErrMappingRule("%s requires string or []string, got %T", path, v)
	}
}
