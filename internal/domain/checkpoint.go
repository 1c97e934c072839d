package domain

import "time"

// Fingerprint is the last-recorded content and schema signature of an asset,
// used only to detect change, never for identity.
type Fingerprint struct {
	Content string
	Schema  string
	Seen    time.Time
}

// ChangeType classifies what happened to an asset since its checkpoint.
type ChangeType string

// Change classifications.
const (
	ChangeCreated       ChangeType = "CREATED"
	ChangeUpdated       ChangeType = "UPDATED"
	ChangeSchemaChanged ChangeType = "SCHEMA_CHANGED"
	ChangeDeleted       ChangeType = "DELETED"
	ChangeUnchanged     ChangeType = "UNCHANGED"
)

// AssetChange is one classified difference between the current listing and
// the checkpoint store. Asset is nil for deletions.
type AssetChange struct {
	AssetID   string
	AssetType AssetType
	Change    ChangeType
	Asset     *MetadataAsset
}

// ChangeReport is the outcome of one change-detection sweep.
type ChangeReport struct {
	SourceSystem string
	ScannedAt    time.Time
	// Changes holds the actionable classifications (everything except
	// UNCHANGED), in listing order with deletions last.
	Changes   []AssetChange
	Unchanged int
}

// Count returns the number of changes with the given classification.
func (r *ChangeReport) Count(t ChangeType) int {
	if t == ChangeUnchanged {
		return r.Unchanged
	}
	n := 0
	for _, c := range r.Changes {
		if c.Change == t {
			n++
		}
	}
	return n
}
