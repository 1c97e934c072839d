package mapper

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"metasync/internal/domain"
	"metasync/internal/testutil"
)

func TestApplyConvention(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		in      string
		conv    domain.NamingConvention
		want    string
		wantErr bool
	}{
		{
			name: "backslash backrefs work like dollar form",
			in:   "SALES",
			conv: domain.NamingConvention{Pattern: `^(.+)$`, Replacement: `\1_model`},
			want: "SALES_model",
		},
		{
			name: "dollar backrefs",
			in:   "SALES",
			conv: domain.NamingConvention{Pattern: `^(.+)$`, Replacement: `${1}_model`},
			want: "SALES_model",
		},
		{
			name: "lowercase fold",
			in:   "SALES",
			conv: domain.NamingConvention{Lowercase: true},
			want: "sales",
		},
		{
			name: "qualifier and environment",
			in:   "sales_model",
			conv: domain.NamingConvention{SystemQualifier: "datasphere", EnvironmentSuffix: true, Environment: "dev"},
			want: "datasphere_sales_model_dev",
		},
		{
			name: "already qualified name is left alone",
			in:   "datasphere_sales_model_dev",
			conv: domain.NamingConvention{SystemQualifier: "datasphere", EnvironmentSuffix: true, Environment: "dev"},
			want: "datasphere_sales_model_dev",
		},
		{
			name:    "invalid pattern",
			in:      "SALES",
			conv:    domain.NamingConvention{Pattern: `(`},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			got, err := applyConvention(tt.in, tt.conv)
			if tt.wantErr {
				require.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestMap_NamingCollision_TimestampSuffix(t *testing.T) {
	t.Parallel()

	profile := &domain.MappingProfile{
		ID:   "p-collide",
		Name: "Collisions",
		Conflicts: domain.ConflictPolicy{
			Naming:        domain.NamingTimestampSuffix,
			ReservedNames: []string{"Customer Table"},
		},
	}

	m := newTestMapper(&testutil.MockAuditSink{})
	res := m.Map(context.Background(), customerTable(), "catalog", profile, nil)

	require.True(t, res.Success)
	assert.Equal(t, "Customer Table_20240115103000", res.Mapped.TechnicalName)
	assert.Equal(t, "catalog:Customer Table_20240115103000", res.Mapped.AssetID)
	require.Len(t, res.Conflicts, 1)
	assert.Contains(t, res.Conflicts[0], "naming collision")
}

func TestMap_NamingCollision_CustomRenamer(t *testing.T) {
	t.Parallel()

	profile := &domain.MappingProfile{
		ID:   "p-renamer",
		Name: "Renamer",
		Conflicts: domain.ConflictPolicy{
			Naming:        domain.NamingCustom,
			ReservedNames: []string{"Customer Table"},
			Renamer:       func(name string) string { return name + "_alt" },
		},
	}

	m := newTestMapper(&testutil.MockAuditSink{})
	res := m.Map(context.Background(), customerTable(), "catalog", profile, nil)

	require.True(t, res.Success)
	assert.Equal(t, "Customer Table_alt", res.Mapped.TechnicalName)
}

func TestMap_NamingCollision_ExistingDifferentOrigin(t *testing.T) {
	t.Parallel()

	existing := &domain.MetadataAsset{
		AssetID:       "catalog:Customer Table",
		TechnicalName: "Customer Table",
		Properties:    map[string]any{PropOriginAssetID: "someone-else"},
	}
	profile := &domain.MappingProfile{ID: "p", Name: "P"}

	m := newTestMapper(&testutil.MockAuditSink{})
	res := m.Map(context.Background(), customerTable(), "catalog", profile, existing)

	require.True(t, res.Success)
	assert.NotEqual(t, "Customer Table", res.Mapped.TechnicalName)
	assert.Len(t, res.Conflicts, 1)
}

func TestMap_SameOriginIsNotACollision(t *testing.T) {
	t.Parallel()

	existing := &domain.MetadataAsset{
		AssetID:       "catalog:Customer Table",
		TechnicalName: "Customer Table",
		Properties:    map[string]any{PropOriginAssetID: "src-42"},
		Schema: domain.SchemaDescriptor{Columns: []domain.ColumnDescriptor{
			{Name: "customer_id", Type: "bigint"},
			{Name: "name", Type: "string"},
		}},
	}
	profile := &domain.MappingProfile{ID: "p", Name: "P"}

	m := newTestMapper(&testutil.MockAuditSink{})
	res := m.Map(context.Background(), customerTable(), "catalog", profile, existing)

	require.True(t, res.Success)
	assert.Equal(t, "Customer Table", res.Mapped.TechnicalName)
	assert.Empty(t, res.Conflicts)
}

func TestResolveSchema(t *testing.T) {
	t.Parallel()

	sourceSchema := domain.SchemaDescriptor{Columns: []domain.ColumnDescriptor{
		{Name: "id", Type: "bigint"},
		{Name: "amount", Type: "decimal"},
	}}
	targetSchema := domain.SchemaDescriptor{Columns: []domain.ColumnDescriptor{
		{Name: "id", Type: "bigint"},
		{Name: "region", Type: "string"},
	}}

	tests := []struct {
		name       string
		strategy   domain.SchemaStrategy
		wantSchema domain.SchemaDescriptor
		wantStatus string
	}{
		{
			name:       "source wins keeps mapped schema",
			strategy:   domain.SchemaSourceWins,
			wantSchema: sourceSchema,
			wantStatus: domain.SyncStatusPending,
		},
		{
			name:       "target wins adopts existing schema",
			strategy:   domain.SchemaTargetWins,
			wantSchema: targetSchema,
			wantStatus: domain.SyncStatusPending,
		},
		{
			name:     "merge keeps source order then target extras",
			strategy: domain.SchemaMerge,
			wantSchema: domain.SchemaDescriptor{Columns: []domain.ColumnDescriptor{
				{Name: "id", Type: "bigint"},
				{Name: "amount", Type: "decimal"},
				{Name: "region", Type: "string"},
			}},
			wantStatus: domain.SyncStatusPending,
		},
		{
			name:       "manual flags the asset",
			strategy:   domain.SchemaManual,
			wantSchema: sourceSchema,
			wantStatus: domain.SyncStatusConflict,
		},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			mapped := &domain.MetadataAsset{SyncStatus: domain.SyncStatusPending, Schema: sourceSchema.Clone()}
			existing := &domain.MetadataAsset{Schema: targetSchema.Clone()}

			conflict := resolveSchema(mapped, existing, tt.strategy)
			assert.NotEmpty(t, conflict)
			assert.Equal(t, tt.wantSchema, mapped.Schema)
			assert.Equal(t, tt.wantStatus, mapped.SyncStatus)
		})
	}
}

func TestResolveSchema_AbsentTargetSchema(t *testing.T) {
	t.Parallel()

	mapped := &domain.MetadataAsset{
		SyncStatus: domain.SyncStatusPending,
		Schema: domain.SchemaDescriptor{Columns: []domain.ColumnDescriptor{
			{Name: "id", Type: "bigint"},
			{Name: "amount", Type: "decimal"},
		}},
	}
	existing := &domain.MetadataAsset{TechnicalName: "orders"}

	assert.Empty(t, resolveSchema(mapped, existing, domain.SchemaManual),
		"a target with no schema descriptor is not a mismatch")
	assert.Equal(t, domain.SyncStatusPending, mapped.SyncStatus)
	assert.Len(t, mapped.Schema.Columns, 2)
}

func TestSchemasDiffer(t *testing.T) {
	t.Parallel()

	base := domain.SchemaDescriptor{Columns: []domain.ColumnDescriptor{
		{Name: "id", Type: "bigint"},
		{Name: "name", Type: "string"},
	}}

	assert.False(t, schemasDiffer(base, base.Clone()))

	reordered := domain.SchemaDescriptor{Columns: []domain.ColumnDescriptor{
		{Name: "name", Type: "string"},
		{Name: "id", Type: "bigint"},
	}}
	assert.False(t, schemasDiffer(base, reordered), "column order alone is not a schema difference")

	retyped := domain.SchemaDescriptor{Columns: []domain.ColumnDescriptor{
		{Name: "id", Type: "int"},
		{Name: "name", Type: "string"},
	}}
	assert.True(t, schemasDiffer(base, retyped))

	extra := domain.SchemaDescriptor{Columns: append(base.Clone().Columns, domain.ColumnDescriptor{Name: "extra", Type: "string"})}
	assert.True(t, schemasDiffer(base, extra))
}
