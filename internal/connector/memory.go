// Package connector provides the in-memory reference connector used for
// demos and tests. Real catalog connectors implement the same contract
// outside the engine.
package connector

import (
	"context"
	"sync"

	"metasync/internal/domain"
)

// Memory is an in-process catalog holding assets in a map.
type Memory struct {
	system string

	mu        sync.RWMutex
	assets    map[string]domain.MetadataAsset
	connected bool
	// deletable mirrors catalogs that reject deletion.
	deletable bool
}

// NewMemory creates an in-memory catalog for the given system tag.
func NewMemory(system string) *Memory {
	return &Memory{
		system:    system,
		assets:    make(map[string]domain.MetadataAsset),
		deletable: true,
	}
}

// Seed loads assets into the catalog, stamping the connector's system tag.
func (m *Memory) Seed(assets ...domain.MetadataAsset) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, a := range assets {
		a.SourceSystem = m.system
		m.assets[a.AssetID] = a
	}
}

// Connect implements domain.Connector.
func (m *Memory) Connect(context.Context) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.connected = true
	return nil
}

// Disconnect implements domain.Connector.
func (m *Memory) Disconnect(context.Context) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.connected = false
	return nil
}

// GetAssets implements domain.Connector.
func (m *Memory) GetAssets(_ context.Context, t domain.AssetType) ([]domain.MetadataAsset, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	var out []domain.MetadataAsset
	for _, a := range m.assets {
		if t == "" || a.AssetType == t {
			out = append(out, a)
		}
	}
	return out, nil
}

// UpsertAsset implements domain.Connector.
func (m *Memory) UpsertAsset(_ context.Context, asset domain.MetadataAsset) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.assets[asset.AssetID] = asset
	return nil
}

// DeleteAsset implements domain.Connector.
func (m *Memory) DeleteAsset(_ context.Context, assetID string) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if !m.deletable {
		return false, nil
	}
	delete(m.assets, assetID)
	return true, nil
}

// ConnectionStatus implements domain.Connector.
func (m *Memory) ConnectionStatus(context.Context) (map[string]string, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	state := "disconnected"
	if m.connected {
		state = "connected"
	}
	return map[string]string{"system": m.system, "state": state}, nil
}

var _ domain.Connector = (*Memory)(nil)
