package audit

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestValidateArtifactName(t *testing.T) {
	cases := []struct {
		name  string
		input string
		ok    bool
	}{
		{"plain solidity", "Token.sol", true},
		{"uppercase suffix", "TOKEN.SOL", true},
		{"empty", "", false},
		{"wrong suffix", "token.vy", false},
		{"no suffix", "token", false},
		{"suffix only inside name", "token.sol.txt", false},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			err := ValidateArtifactName(tc.input)
			if tc.ok {
				require.NoError(t, err)
			} else {
				assert.ErrorIs(t, err, ErrFileValidation)
			}
		})
	}
}
