package orchestrator

import (
	"context"
	"fmt"

	"metasync/internal/domain"
	"metasync/internal/service/mapper"
)

// runJob performs one synchronization attempt: fetch the current source
// snapshot, map it, and upsert the result on the target. Runs on a worker
// goroutine; every connector call passes the shared rate limiter. A panic
// anywhere in the attempt becomes a job failure.
func (o *Orchestrator) runJob(ctx context.Context, job *domain.SyncJob) (result *domain.SyncJobResult, err error) {
	defer func() {
		if r := recover(); r != nil {
			result = nil
			err = fmt.Errorf("panic during sync: %v", r)
			o.logger.Error("job panicked", "job", job.ID, "asset", job.AssetID, "panic", r)
		}
	}()

	start := o.now()

	source, err := o.connectorFor(job.SourceSystem)
	if err != nil {
		return nil, err
	}
	target, err := o.connectorFor(job.TargetSystem)
	if err != nil {
		return nil, err
	}
	profile, err := o.profileFor(job.SourceSystem, job.TargetSystem, job.AssetType)
	if err != nil {
		return nil, err
	}

	// Current snapshot of the asset: a linear scan over the source's
	// listing for the type. Costly but intentional; see DESIGN.md.
	if err := o.limiter.Wait(ctx); err != nil {
		return nil, err
	}
	listing, err := source.GetAssets(ctx, job.AssetType)
	if err != nil {
		return nil, fmt.Errorf("fetch source assets: %w", err)
	}
	var asset *domain.MetadataAsset
	for i := range listing {
		if listing[i].AssetID == job.AssetID {
			asset = &listing[i]
			break
		}
	}
	if asset == nil {
		return nil, domain.ErrConnectivity("asset %s not found in %s listing", job.AssetID, job.SourceSystem)
	}

	existing, err := o.findExistingTarget(ctx, target, job, asset)
	if err != nil {
		return nil, err
	}

	res := o.mapper.Map(ctx, asset, job.TargetSystem, profile, existing)
	if !res.Success {
		return nil, fmt.Errorf("mapping failed: %w", res.Err)
	}

	if err := o.limiter.Wait(ctx); err != nil {
		return nil, err
	}
	if err := target.UpsertAsset(ctx, *res.Mapped); err != nil {
		return nil, fmt.Errorf("upsert target asset: %w", err)
	}

	return &domain.SyncJobResult{
		MappedAssetID:     res.Mapped.AssetID,
		TargetAssetID:     res.Mapped.AssetID,
		RulesApplied:      len(res.AppliedRuleIDs),
		ConflictsResolved: len(res.Conflicts),
		Elapsed:           o.now().Sub(start),
	}, nil
}

// findExistingTarget looks for the target-side counterpart of the asset —
// same derived id or same technical name — so the mapper can resolve
// naming and schema conflicts against it.
func (o *Orchestrator) findExistingTarget(ctx context.Context, target domain.Connector, job *domain.SyncJob, asset *domain.MetadataAsset) (*domain.MetadataAsset, error) {
	if err := o.limiter.Wait(ctx); err != nil {
		return nil, err
	}
	listing, err := target.GetAssets(ctx, job.AssetType)
	if err != nil {
		return nil, fmt.Errorf("fetch target assets: %w", err)
	}
	derivedID := mapper.DeriveAssetID(job.TargetSystem, asset.TechnicalName)
	for i := range listing {
		if listing[i].AssetID == derivedID || listing[i].TechnicalName == asset.TechnicalName {
			return &listing[i], nil
		}
	}
	return nil, nil
}

func (o *Orchestrator) connectorFor(system string) (domain.Connector, error) {
	o.regMu.RLock()
	defer o.regMu.RUnlock()
	c, ok := o.connectors[system]
	if !ok {
		return nil, domain.ErrConfiguration("no connector registered for system %q", system)
	}
	return c, nil
}

// profileFor returns the first registered profile matching the triple.
// An empty profile asset type acts as a wildcard.
func (o *Orchestrator) profileFor(sourceSystem, targetSystem string, assetType domain.AssetType) (*domain.MappingProfile, error) {
	o.regMu.RLock()
	defer o.regMu.RUnlock()
	for _, p := range o.profiles {
		if p.SourceSystem == sourceSystem && p.TargetSystem == targetSystem &&
			(p.AssetType == "" || p.AssetType == assetType) {
			return p, nil
		}
	}
	return nil, domain.ErrConfiguration("no mapping profile for %s→%s %s", sourceSystem, targetSystem, assetType)
}
