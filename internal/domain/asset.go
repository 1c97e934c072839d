// Package domain defines core types, interfaces, and errors for the metadata
// synchronization engine.
package domain

import "time"

// AssetType identifies the kind of catalog object an asset describes.
type AssetType string

// Asset type constants.
const (
	AssetTypeSpace           AssetType = "SPACE"
	AssetTypeTable           AssetType = "TABLE"
	AssetTypeView            AssetType = "VIEW"
	AssetTypeAnalyticalModel AssetType = "ANALYTICAL_MODEL"
	AssetTypeDataFlow        AssetType = "DATA_FLOW"
)

// AllAssetTypes lists every asset type, in a stable order.
func AllAssetTypes() []AssetType {
	return []AssetType{
		AssetTypeSpace,
		AssetTypeTable,
		AssetTypeView,
		AssetTypeAnalyticalModel,
		AssetTypeDataFlow,
	}
}

// Sync status constants for an asset.
const (
	SyncStatusPending    = "PENDING"
	SyncStatusInProgress = "IN_PROGRESS"
	SyncStatusCompleted  = "COMPLETED"
	SyncStatusFailed     = "FAILED"
	SyncStatusConflict   = "CONFLICT"
)

// BusinessContext carries the descriptive business metadata embedded in an asset.
type BusinessContext struct {
	BusinessName        string
	Description         string
	Owner               string
	Steward             string
	CertificationStatus string
	Tags                []string
	Dimensions          []string
	Measures            []string
	Hierarchies         []string
}

// Clone returns a deep copy of the business context.
func (b BusinessContext) Clone() BusinessContext {
	out := b
	out.Tags = append([]string(nil), b.Tags...)
	out.Dimensions = append([]string(nil), b.Dimensions...)
	out.Measures = append([]string(nil), b.Measures...)
	out.Hierarchies = append([]string(nil), b.Hierarchies...)
	return out
}

// LineageRelationship is a directed edge between two assets. Assets are graph
// nodes referenced by id, never by direct ownership, so the graph may be
// cyclic without lifetime issues.
type LineageRelationship struct {
	SourceAssetID  string
	TargetAssetID  string
	RelationType   string
	Transformation string
}

// ColumnDescriptor describes one column of an asset's schema.
type ColumnDescriptor struct {
	Name     string
	Type     string
	Nullable bool
	Comment  string
}

// SchemaDescriptor is the ordered column list of a structured asset.
type SchemaDescriptor struct {
	Columns []ColumnDescriptor
}

// Clone returns a deep copy of the schema descriptor.
func (s SchemaDescriptor) Clone() SchemaDescriptor {
	return SchemaDescriptor{Columns: append([]ColumnDescriptor(nil), s.Columns...)}
}

// MetadataAsset is one described unit of catalog metadata. AssetID is
// immutable once assigned by its source system; mapping produces a new asset
// with a freshly derived id and never mutates the source.
type MetadataAsset struct {
	AssetID       string
	AssetType     AssetType
	SourceSystem  string
	TechnicalName string
	BusinessName  string
	Description   string
	Owner         string
	CreatedAt     time.Time
	ModifiedAt    time.Time
	SyncStatus    string
	Business      BusinessContext
	Lineage       []LineageRelationship
	Schema        SchemaDescriptor
	Properties    map[string]any
}

// Clone returns a deep copy of the asset. Property values are copied
// shallowly except for nested string-keyed maps, which are copied
// recursively so that dot-path writes on the copy never leak into the
// original.
func (a *MetadataAsset) Clone() *MetadataAsset {
	out := *a
	out.Business = a.Business.Clone()
	out.Lineage = append([]LineageRelationship(nil), a.Lineage...)
	out.Schema = a.Schema.Clone()
	out.Properties = cloneProperties(a.Properties)
	return &out
}

func cloneProperties(props map[string]any) map[string]any {
	if props == nil {
		return nil
	}
	out := make(map[string]any, len(props))
	for k, v := range props {
		if nested, ok := v.(map[string]any); ok {
			out[k] = cloneProperties(nested)
			continue
		}
		out[k] = v
	}
	return out
}

// Property returns the named entry from the open property bag.
func (a *MetadataAsset) Property(key string) (any, bool) {
	if a.Properties == nil {
		return nil, false
	}
	v, ok := a.Properties[key]
	return v, ok
}

// SetProperty stores an entry in the open property bag, allocating it on
// first use.
func (a *MetadataAsset) SetProperty(key string, value any) {
	if a.Properties == nil {
		a.Properties = make(map[string]any)
	}
	a.Properties[key] = value
}
