package identity_test

import (
	"testing"

	identity "github.com/goliatone/go-identity"
	"github.com/stretchr/testify/assert"
)

func TestPolicy_Validate(t *testing.T) {
	tests := []struct {
		name     string
		policy   identity.Policy
		password string
		wantOK   bool
		reasons  int
	}{
		{
			name:     "zero policy accepts everything",
			policy:   identity.Policy{},
			password: "",
			wantOK:   true,
		},
		{
			name:     "default policy accepts strong password",
			policy:   identity.DefaultPolicy,
			password: "N3wP@ss!",
			wantOK:   true,
		},
		{
			name:     "default policy rejects short password",
			policy:   identity.DefaultPolicy,
			password: "N3w!",
			wantOK:   false,
			reasons:  1,
		},
		{
			name:     "default policy rejects missing classes",
			policy:   identity.DefaultPolicy,
			password: "password",
			wantOK:   false,
			reasons:  2, // needs upper and digit
		},
		{
			name:     "collects every broken rule",
			policy:   identity.Policy{MinLength: 12, RequireUpper: true, RequireLower: true, RequireDigit: true, RequireSymbol: true},
			password: "short",
			wantOK:   false,
			reasons:  4, // length, upper, digit, symbol
		},
		{
			name:     "symbol requirement counts punctuation",
			policy:   identity.Policy{RequireSymbol: true},
			password: "with.dot",
			wantOK:   true,
		},
		{
			name:     "min length counts runes not bytes",
			policy:   identity.Policy{MinLength: 4},
			password: "áéíó",
			wantOK:   true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ok, reasons := tt.policy.Validate(tt.password)

			assert.Equal(t, tt.wantOK, ok)
			if tt.wantOK {
				assert.Empty(t, reasons)
			} else {
				assert.Len(t, reasons, tt.reasons)
			}
		})
	}
}
