package orchestrator

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"

	"metasync/internal/domain"
)

func TestClassifyFailure(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		err  error
		want string
	}{
		{
			name: "typed authentication error",
			err:  domain.ErrAuthentication("token expired"),
			want: failureAuthentication,
		},
		{
			name: "wrapped connectivity error",
			err:  fmt.Errorf("fetch source assets: %w", domain.ErrConnectivity("dial tcp: refused")),
			want: failureNetwork,
		},
		{
			name: "typed conflict error",
			err:  domain.ErrConflict("schema mismatch on orders"),
			want: failureSchema,
		},
		{
			name: "credential substring",
			err:  errors.New("invalid credential supplied"),
			want: failureAuthentication,
		},
		{
			name: "permission substring",
			err:  errors.New("access denied for space SALES"),
			want: failurePermission,
		},
		{
			name: "schema substring",
			err:  errors.New("column count mismatch"),
			want: failureSchema,
		},
		{
			name: "network substring",
			err:  errors.New("request timeout after 30s"),
			want: failureNetwork,
		},
		{
			name: "anything else",
			err:  errors.New("something odd happened"),
			want: failureOther,
		},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, tt.want, classifyFailure(tt.err))
		})
	}
}

func TestRemediations_CoverEveryClass(t *testing.T) {
	t.Parallel()

	for _, class := range []string{failureAuthentication, failureSchema, failureNetwork, failurePermission, failureOther} {
		assert.NotEmpty(t, remediations[class], "class %s has no remediation", class)
	}
}
