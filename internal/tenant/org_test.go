package tenant

import (
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestValidateOrgID(t *testing.T) {
	tests := []struct {
		name    string
		orgID   string
		wantErr error
	}{
		{name: "uuid", orgID: "3f2b8c1e-9d4a-4e7b-8c1f-2a3b4c5d6e7f"},
		{name: "cuid", orgID: "clx9w2k3p0000qz8h4f6g7j1k"},
		{name: "dotted", orgID: "acme.research"},
		{name: "empty", orgID: "", wantErr: ErrMissingOrg},
		{name: "whitespace", orgID: "acme corp", wantErr: ErrInvalidOrg},
		{name: "path traversal", orgID: "../etc", wantErr: ErrInvalidOrg},
		{name: "filter injection", orgID: `acme","archived":"true`, wantErr: ErrInvalidOrg},
		{name: "too long", orgID: strings.Repeat("a", MaxOrgIDLength+1), wantErr: ErrInvalidOrg},
		{name: "max length", orgID: strings.Repeat("a", MaxOrgIDLength)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateOrgID(tt.orgID)
			if tt.wantErr == nil {
				assert.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.ErrorIs(t, err, tt.wantErr)
			assert.True(t, IsInputError(err))
		})
	}
}

func TestOrgFromContext(t *testing.T) {
	_, err := OrgFromContext(context.Background())
	assert.ErrorIs(t, err, ErrMissingOrg)

	ctx := ContextWithOrg(context.Background(), "org_42")
	orgID, err := OrgFromContext(ctx)
	require.NoError(t, err)
	assert.Equal(t, "org_42", orgID)

	_, err = OrgFromContext(ContextWithOrg(context.Background(), "bad org"))
	assert.ErrorIs(t, err, ErrInvalidOrg)
}

func TestValidator_OrgIDTag(t *testing.T) {
	type request struct {
		OrgID string `validate:"required,orgid"`
	}
	assert.NoError(t, Validator().Struct(request{OrgID: "acme"}))
	assert.Error(t, Validator().Struct(request{OrgID: "a b"}))
	assert.Error(t, Validator().Struct(request{}))
}
