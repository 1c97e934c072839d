package transform

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"metasync/internal/domain"
)

func conditionAsset() *domain.MetadataAsset {
	return &domain.MetadataAsset{
		AssetID:       "a-1",
		AssetType:     domain.AssetTypeTable,
		TechnicalName: "ORDERS",
		Owner:         "data-team@example.com",
		Business:      domain.BusinessContext{Tags: []string{"certified", "finance"}},
		Properties:    map[string]any{"region": "emea"},
	}
}

func TestEvaluate(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		cond *domain.Condition
		want bool
	}{
		{name: "nil condition is true", cond: nil, want: true},
		{
			name: "not empty on populated field",
			cond: &domain.Condition{Kind: domain.CondNotEmpty, Field: "owner"},
			want: true,
		},
		{
			name: "not empty on missing field",
			cond: &domain.Condition{Kind: domain.CondNotEmpty, Field: "description"},
			want: false,
		},
		{
			name: "empty on missing field",
			cond: &domain.Condition{Kind: domain.CondEmpty, Field: "business_name"},
			want: true,
		},
		{
			name: "equals",
			cond: &domain.Condition{Kind: domain.CondEquals, Field: "asset_type", Value: "TABLE"},
			want: true,
		},
		{
			name: "not equals",
			cond: &domain.Condition{Kind: domain.CondNotEquals, Field: "asset_type", Value: "VIEW"},
			want: true,
		},
		{
			name: "has prefix",
			cond: &domain.Condition{Kind: domain.CondHasPrefix, Field: "technical_name", Value: "ORD"},
			want: true,
		},
		{
			name: "matches regex",
			cond: &domain.Condition{Kind: domain.CondMatches, Field: "technical_name", Value: `^[A-Z]+$`},
			want: true,
		},
		{
			name: "matches property path",
			cond: &domain.Condition{Kind: domain.CondEquals, Field: "properties.region", Value: "emea"},
			want: true,
		},
		{
			name: "and short circuits",
			cond: &domain.Condition{Kind: domain.CondAnd, Children: []*domain.Condition{
				{Kind: domain.CondNotEmpty, Field: "owner"},
				{Kind: domain.CondEquals, Field: "asset_type", Value: "VIEW"},
			}},
			want: false,
		},
		{
			name: "or takes first match",
			cond: &domain.Condition{Kind: domain.CondOr, Children: []*domain.Condition{
				{Kind: domain.CondEquals, Field: "asset_type", Value: "VIEW"},
				{Kind: domain.CondEquals, Field: "asset_type", Value: "TABLE"},
			}},
			want: true,
		},
		{
			name: "not inverts",
			cond: &domain.Condition{Kind: domain.CondNot, Children: []*domain.Condition{
				{Kind: domain.CondEmpty, Field: "owner"},
			}},
			want: true,
		},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			got, err := Evaluate(tt.cond, conditionAsset())
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestEvaluate_Errors(t *testing.T) {
	t.Parallel()

	asset := conditionAsset()

	_, err := Evaluate(&domain.Condition{Kind: domain.CondMatches, Field: "owner", Value: "("}, asset)
	require.Error(t, err)

	_, err = Evaluate(&domain.Condition{Kind: domain.CondNot}, asset)
	require.Error(t, err)

	_, err = Evaluate(&domain.Condition{Kind: "BOGUS"}, asset)
	require.Error(t, err)
}
