package domain

import (
	"context"
	"time"
)

// Connector is the narrow contract to one external catalog. Implementations
// live outside the engine; the engine never sees wire formats or credentials.
type Connector interface {
	Connect(ctx context.Context) error
	Disconnect(ctx context.Context) error
	// GetAssets lists assets of the given type; the empty type lists all.
	GetAssets(ctx context.Context, assetType AssetType) ([]MetadataAsset, error)
	// UpsertAsset creates or updates an asset — the same operation either way.
	UpsertAsset(ctx context.Context, asset MetadataAsset) error
	// DeleteAsset removes an asset; false means the catalog does not
	// support deletion, which is legitimate and not an error.
	DeleteAsset(ctx context.Context, assetID string) (bool, error)
	ConnectionStatus(ctx context.Context) (map[string]string, error)
}

// AuditSink receives engine events and error reports. The engine is a pure
// producer: it appends and never reads back.
type AuditSink interface {
	AppendEvent(ctx context.Context, event AuditEvent) error
	CreateErrorReport(ctx context.Context, report ErrorReport) (string, error)
	ExportRange(ctx context.Context, start, end time.Time) ([]byte, error)
	Summarize(ctx context.Context, window time.Duration) (map[string]int, error)
}

// CheckpointStore is the minimal key-value contract backing change
// detection. Durability is the implementation's concern, not the engine's.
type CheckpointStore interface {
	Get(ctx context.Context, assetID string) (Fingerprint, bool, error)
	Put(ctx context.Context, assetID string, fp Fingerprint) error
	Delete(ctx context.Context, assetID string) error
	// List returns every stored fingerprint keyed by asset id; change
	// detection needs the full key set to notice deletions.
	List(ctx context.Context) (map[string]Fingerprint, error)
}
