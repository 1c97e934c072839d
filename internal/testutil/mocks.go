// Package testutil provides shared mock implementations of domain
// interfaces for use in tests across the codebase.
package testutil

import (
	"context"
	"sync"
	"time"

	"metasync/internal/domain"
)

// === Connector Mock ===

// MockConnector implements domain.Connector for testing. Unset function
// fields fall back to benign defaults backed by the Assets slice.
type MockConnector struct {
	ConnectFn          func(ctx context.Context) error
	DisconnectFn       func(ctx context.Context) error
	GetAssetsFn        func(ctx context.Context, t domain.AssetType) ([]domain.MetadataAsset, error)
	UpsertAssetFn      func(ctx context.Context, asset domain.MetadataAsset) error
	DeleteAssetFn      func(ctx context.Context, assetID string) (bool, error)
	ConnectionStatusFn func(ctx context.Context) (map[string]string, error)

	mu       sync.Mutex
	Assets   []domain.MetadataAsset
	Upserted []domain.MetadataAsset
	Deleted  []string
}

// Connect implements the interface method for testing.
func (m *MockConnector) Connect(ctx context.Context) error {
	if m.ConnectFn != nil {
		return m.ConnectFn(ctx)
	}
	return nil
}

// Disconnect implements the interface method for testing.
func (m *MockConnector) Disconnect(ctx context.Context) error {
	if m.DisconnectFn != nil {
		return m.DisconnectFn(ctx)
	}
	return nil
}

// GetAssets implements the interface method for testing.
func (m *MockConnector) GetAssets(ctx context.Context, t domain.AssetType) ([]domain.MetadataAsset, error) {
	if m.GetAssetsFn != nil {
		return m.GetAssetsFn(ctx, t)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if t == "" {
		return append([]domain.MetadataAsset(nil), m.Assets...), nil
	}
	var out []domain.MetadataAsset
	for _, a := range m.Assets {
		if a.AssetType == t {
			out = append(out, a)
		}
	}
	return out, nil
}

// UpsertAsset implements the interface method for testing.
func (m *MockConnector) UpsertAsset(ctx context.Context, asset domain.MetadataAsset) error {
	if m.UpsertAssetFn != nil {
		return m.UpsertAssetFn(ctx, asset)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Upserted = append(m.Upserted, asset)
	return nil
}

// DeleteAsset implements the interface method for testing.
func (m *MockConnector) DeleteAsset(ctx context.Context, assetID string) (bool, error) {
	if m.DeleteAssetFn != nil {
		return m.DeleteAssetFn(ctx, assetID)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Deleted = append(m.Deleted, assetID)
	return true, nil
}

// ConnectionStatus implements the interface method for testing.
func (m *MockConnector) ConnectionStatus(ctx context.Context) (map[string]string, error) {
	if m.ConnectionStatusFn != nil {
		return m.ConnectionStatusFn(ctx)
	}
	return map[string]string{"state": "connected"}, nil
}

// UpsertCount returns how many upserts the connector collected.
func (m *MockConnector) UpsertCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.Upserted)
}

// DeleteCount returns how many deletions the connector collected.
func (m *MockConnector) DeleteCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.Deleted)
}

// LastUpserted returns the most recent upserted asset, or nil.
func (m *MockConnector) LastUpserted() *domain.MetadataAsset {
	m.mu.Lock()
	defer m.mu.Unlock()
	if len(m.Upserted) == 0 {
		return nil
	}
	a := m.Upserted[len(m.Upserted)-1]
	return &a
}

var _ domain.Connector = (*MockConnector)(nil)

// === Audit Sink Mock ===

// MockAuditSink implements domain.AuditSink for testing, collecting events
// and reports for assertions.
type MockAuditSink struct {
	AppendEventFn func(ctx context.Context, e domain.AuditEvent) error

	mu      sync.Mutex
	Events  []domain.AuditEvent
	Reports []domain.ErrorReport
}

// AppendEvent implements the interface method for testing.
func (m *MockAuditSink) AppendEvent(ctx context.Context, e domain.AuditEvent) error {
	if m.AppendEventFn != nil {
		if err := m.AppendEventFn(ctx, e); err != nil {
			return err
		}
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Events = append(m.Events, e)
	return nil
}

// CreateErrorReport implements the interface method for testing.
func (m *MockAuditSink) CreateErrorReport(_ context.Context, r domain.ErrorReport) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Reports = append(m.Reports, r)
	return "report-1", nil
}

// ExportRange implements the interface method for testing.
func (m *MockAuditSink) ExportRange(context.Context, time.Time, time.Time) ([]byte, error) {
	return []byte("[]"), nil
}

// Summarize implements the interface method for testing.
func (m *MockAuditSink) Summarize(context.Context, time.Duration) (map[string]int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	counts := make(map[string]int)
	for _, e := range m.Events {
		counts[e.EventType]++
	}
	return counts, nil
}

// HasEvent returns true if any collected event has the given type.
func (m *MockAuditSink) HasEvent(eventType string) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, e := range m.Events {
		if e.EventType == eventType {
			return true
		}
	}
	return false
}

// ReportCount returns how many error reports were created.
func (m *MockAuditSink) ReportCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.Reports)
}

var _ domain.AuditSink = (*MockAuditSink)(nil)

// === Checkpoint Store Mock ===

// MockCheckpointStore implements domain.CheckpointStore for testing with
// optional failure injection.
type MockCheckpointStore struct {
	GetFn func(ctx context.Context, assetID string) (domain.Fingerprint, bool, error)
	PutFn func(ctx context.Context, assetID string, fp domain.Fingerprint) error

	mu           sync.Mutex
	Fingerprints map[string]domain.Fingerprint
}

// NewMockCheckpointStore creates an empty mock store.
func NewMockCheckpointStore() *MockCheckpointStore {
	return &MockCheckpointStore{Fingerprints: make(map[string]domain.Fingerprint)}
}

// Get implements the interface method for testing.
func (m *MockCheckpointStore) Get(ctx context.Context, assetID string) (domain.Fingerprint, bool, error) {
	if m.GetFn != nil {
		return m.GetFn(ctx, assetID)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	fp, ok := m.Fingerprints[assetID]
	return fp, ok, nil
}

// Put implements the interface method for testing.
func (m *MockCheckpointStore) Put(ctx context.Context, assetID string, fp domain.Fingerprint) error {
	if m.PutFn != nil {
		if err := m.PutFn(ctx, assetID, fp); err != nil {
			return err
		}
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Fingerprints[assetID] = fp
	return nil
}

// Delete implements the interface method for testing.
func (m *MockCheckpointStore) Delete(_ context.Context, assetID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.Fingerprints, assetID)
	return nil
}

// List implements the interface method for testing.
func (m *MockCheckpointStore) List(context.Context) (map[string]domain.Fingerprint, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make(map[string]domain.Fingerprint, len(m.Fingerprints))
	for k, v := range m.Fingerprints {
		out[k] = v
	}
	return out, nil
}

var _ domain.CheckpointStore = (*MockCheckpointStore)(nil)
