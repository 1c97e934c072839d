package changedetect

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"metasync/internal/domain"
)

// Detector classifies each asset in a current listing against the
// checkpoint store. One Detector instance serves one source system; the
// store's key set is assumed to belong to that source.
type Detector struct {
	checkpoints domain.CheckpointStore
	logger      *slog.Logger
	now         func() time.Time
}

// New creates a Detector over the given checkpoint store.
func New(checkpoints domain.CheckpointStore, logger *slog.Logger) *Detector {
	return &Detector{checkpoints: checkpoints, logger: logger, now: time.Now}
}

// WithClock overrides the detector's clock for tests.
func (d *Detector) WithClock(now func() time.Time) *Detector {
	d.now = now
	return d
}

// Detect classifies every asset in the current listing, writes back updated
// fingerprints for actionable non-deleted assets, and emits one Deleted
// change (removing the checkpoint) for every checkpointed asset absent from
// the listing.
func (d *Detector) Detect(ctx context.Context, sourceSystem string, current []domain.MetadataAsset) (*domain.ChangeReport, error) {
	report := &domain.ChangeReport{SourceSystem: sourceSystem, ScannedAt: d.now()}
	seen := make(map[string]bool, len(current))

	for i := range current {
		asset := &current[i]
		seen[asset.AssetID] = true

		fp := domain.Fingerprint{
			Content: ContentFingerprint(asset),
			Schema:  SchemaFingerprint(asset),
			Seen:    d.now(),
		}

		prev, ok, err := d.checkpoints.Get(ctx, asset.AssetID)
		if err != nil {
			return nil, fmt.Errorf("checkpoint get %s: %w", asset.AssetID, err)
		}

		change := classify(prev, fp, ok)
		if change == domain.ChangeUnchanged {
			report.Unchanged++
			continue
		}

		if err := d.checkpoints.Put(ctx, asset.AssetID, fp); err != nil {
			return nil, fmt.Errorf("checkpoint put %s: %w", asset.AssetID, err)
		}
		report.Changes = append(report.Changes, domain.AssetChange{
			AssetID:   asset.AssetID,
			AssetType: asset.AssetType,
			Change:    change,
			Asset:     asset,
		})
	}

	stored, err := d.checkpoints.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("checkpoint list: %w", err)
	}
	for assetID := range stored {
		if seen[assetID] {
			continue
		}
		// Emit the deletion once, then drop the checkpoint so the next
		// sweep stays quiet.
		if err := d.checkpoints.Delete(ctx, assetID); err != nil {
			return nil, fmt.Errorf("checkpoint delete %s: %w", assetID, err)
		}
		report.Changes = append(report.Changes, domain.AssetChange{
			AssetID: assetID,
			Change:  domain.ChangeDeleted,
		})
	}

	d.logger.Debug("change sweep finished",
		"source", sourceSystem,
		"created", report.Count(domain.ChangeCreated),
		"updated", report.Count(domain.ChangeUpdated),
		"schema_changed", report.Count(domain.ChangeSchemaChanged),
		"deleted", report.Count(domain.ChangeDeleted),
		"unchanged", report.Unchanged,
	)
	return report, nil
}

// classify orders the checks: schema drift outranks content drift.
func classify(prev, current domain.Fingerprint, hasCheckpoint bool) domain.ChangeType {
	switch {
	case !hasCheckpoint:
		return domain.ChangeCreated
	case prev.Schema != current.Schema:
		return domain.ChangeSchemaChanged
	case prev.Content != current.Content:
		return domain.ChangeUpdated
	default:
		return domain.ChangeUnchanged
	}
}
