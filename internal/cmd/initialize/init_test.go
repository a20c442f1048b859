package initialize

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"sigs.k8s.io/yaml"

	"github.com/deployah-dev/activation/internal/activation"
	"github.com/deployah-dev/activation/internal/checklist"
	"github.com/deployah-dev/activation/internal/checklist/schema"
)

func TestBuildChecklist(t *testing.T) {
	latest, err := schema.Latest()
	require.NoError(t, err)

	tests := []struct {
		name    string
		config  ChecklistConfig
		wantErr string
	}{
		{
			name: "valid",
			config: ChecklistConfig{
				Title:     " Acme ",
				Variables: map[string]string{"CODE_HOST": "GitHub"},
				Steps: []activation.Step{
					{ID: "connect", Title: "Connect a code host"},
					{ID: "search", Title: "Run a search"},
				},
			},
		},
		{
			name:    "no steps",
			config:  ChecklistConfig{Title: "Acme"},
			wantErr: "at least one step",
		},
		{
			name: "duplicate ids",
			config: ChecklistConfig{
				Title: "Acme",
				Steps: []activation.Step{
					{ID: "connect", Title: "A"},
					{ID: "connect", Title: "B"},
				},
			},
			wantErr: "duplicate step ids: connect",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c, err := buildChecklist(&tt.config)
			if tt.wantErr != "" {
				require.Error(t, err)
				assert.Contains(t, err.Error(), tt.wantErr)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, latest, c.APIVersion)
			assert.Equal(t, "Acme", c.Title)
			assert.Equal(t, []string{"connect", "search"}, c.IDs())
			assert.Equal(t, "GitHub", c.Variables["CODE_HOST"])
		})
	}
}

func TestShowChecklistPreview(t *testing.T) {
	c := &checklist.Checklist{
		APIVersion: "v1",
		Title:      "Acme",
		Steps:      []activation.Step{{ID: "connect", Title: "Connect a code host"}},
	}

	var buf bytes.Buffer
	require.NoError(t, showChecklistPreview(&buf, c))

	out := buf.String()
	assert.Contains(t, out, DryRunPreviewHeader)
	assert.Contains(t, out, "=== END PREVIEW ===")

	body := out[len(DryRunPreviewHeader) : len(out)-len(DryRunPreviewFooter)-1]
	var parsed checklist.Checklist
	require.NoError(t, yaml.Unmarshal([]byte(body), &parsed))
	assert.Equal(t, *c, parsed)
}

func TestNormalizeStep(t *testing.T) {
	got := normalizeStep(activation.Step{ID: " connect ", Title: " Connect ", Detail: "\nSync repositories.\n"})
	assert.Equal(t, activation.Step{ID: "connect", Title: "Connect", Detail: "Sync repositories."}, got)
}
