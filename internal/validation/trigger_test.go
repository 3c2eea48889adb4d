package validation

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"notification-engine/internal/common/errors"
)

func TestValidateTriggerRequest(t *testing.T) {
	tests := []struct {
		name    string
		body    string
		wantErr bool
	}{
		{
			name: "minimal valid request",
			body: `{"name":"welcome-email","to":[{"subscriberId":"sub-1"}]}`,
		},
		{
			name: "tenant as identifier string",
			body: `{"name":"welcome-email","to":[{"subscriberId":"sub-1"}],"tenant":"acme"}`,
		},
		{
			name: "tenant as object",
			body: `{"name":"welcome-email","to":[{"subscriberId":"sub-1"}],"tenant":{"identifier":"acme","data":{"tier":"gold"}}}`,
		},
		{
			name:    "missing name",
			body:    `{"to":[{"subscriberId":"sub-1"}]}`,
			wantErr: true,
		},
		{
			name:    "empty recipients",
			body:    `{"name":"welcome-email","to":[]}`,
			wantErr: true,
		},
		{
			name:    "recipient without subscriberId",
			body:    `{"name":"welcome-email","to":[{"email":"ada@example.com"}]}`,
			wantErr: true,
		},
		{
			name:    "tenant object without identifier",
			body:    `{"name":"welcome-email","to":[{"subscriberId":"sub-1"}],"tenant":{"name":"Acme"}}`,
			wantErr: true,
		},
		{
			name:    "not json",
			body:    `not json`,
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateTriggerRequest([]byte(tt.body))
			if !tt.wantErr {
				assert.NoError(t, err)
				return
			}
			var stdErr *errors.StandardError
			require.ErrorAs(t, err, &stdErr)
			assert.Equal(t, errors.ErrCodeTriggerPayloadInvalid, stdErr.Code)
		})
	}
}
