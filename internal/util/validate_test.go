package util

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestValidateNonEmpty(t *testing.T) {
	assert.NoError(t, ValidateNonEmpty("Acme", "title"))
	assert.EqualError(t, ValidateNonEmpty("  \t", "title"), "title cannot be empty or contain only whitespace")
}

func TestValidateStepID(t *testing.T) {
	tests := []struct {
		name    string
		id      string
		taken   []string
		wantErr string
	}{
		{name: "valid", id: "connect-code-host"},
		{name: "underscore", id: "run_search"},
		{name: "upper case", id: "Connect", wantErr: "Connect"},
		{name: "empty", id: "", wantErr: "empty"},
		{name: "taken", id: "search", taken: []string{"connect", "search"}, wantErr: "already used"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateStepID(tt.id, tt.taken)
			if tt.wantErr == "" {
				assert.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func TestParseVariables(t *testing.T) {
	t.Run("comma and newline separated", func(t *testing.T) {
		vars, err := ParseVariables("CODE_HOST=GitHub, DOCS_URL = https://example.com/docs?a=b\n\n")
		require.NoError(t, err)
		assert.Equal(t, map[string]string{
			"CODE_HOST": "GitHub",
			"DOCS_URL":  "https://example.com/docs?a=b",
		}, vars)
	})

	t.Run("empty input", func(t *testing.T) {
		vars, err := ParseVariables("")
		require.NoError(t, err)
		assert.Empty(t, vars)
	})

	t.Run("missing separator", func(t *testing.T) {
		_, err := ParseVariables("CODE_HOST")
		assert.ErrorContains(t, err, "expected KEY=value")
	})

	t.Run("bad name", func(t *testing.T) {
		_, err := ParseVariables("code-host=GitHub")
		assert.ErrorContains(t, err, "upper case")
	})
}
