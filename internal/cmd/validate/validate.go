// Package validate checks a checklist file without showing the widget.
package validate

import (
	"context"
	"fmt"

	"github.com/charmbracelet/huh/spinner"
	"github.com/spf13/cobra"

	"github.com/deployah-dev/activation/internal/checklist"
	"github.com/deployah-dev/activation/internal/cli"
	"github.com/deployah-dev/activation/internal/logging"
	"github.com/deployah-dev/activation/internal/ui"
)

// New creates the validate sub-command for the CLI.
func New() *cobra.Command {
	validateCommand := &cobra.Command{
		Use:   "validate",
		Short: "Validate an activation checklist",
		Long:  `Validate an activation checklist against the JSON schema of its apiVersion and render its step details.`,
		Example: `
# Validate the checklist at the default path (./.activation.yaml)
activation validate

# Validate a checklist at an explicit path
activation validate -f ./path/to/checklist.yaml
`,
		Args: cobra.NoArgs,
		RunE: runValidate,
	}

	return validateCommand
}

func runValidate(cmd *cobra.Command, _ []string) error {
	logger := logging.GetLogger(cmd)

	rt, err := cli.GetRuntime(cmd.Context())
	if err != nil {
		return err
	}

	var c *checklist.Checklist
	load := func(ctx context.Context) error {
		loaded, err := rt.Checklist(ctx)
		if err != nil {
			return err
		}
		c = loaded
		return nil
	}

	if ui.IsTerminal() {
		err = spinner.New().
			Title(fmt.Sprintf("Validating %s...", rt.ChecklistPath())).
			Context(cmd.Context()).
			ActionWithErr(load).
			Run()
	} else {
		err = load(cmd.Context())
	}
	if err != nil {
		return err
	}

	logger.Info("Checklist found", "title", c.Title, "apiVersion", c.APIVersion, "steps", len(c.Steps))
	for _, step := range c.Steps {
		logger.Debug("Step", "step", step.ID, "title", step.Title)
	}
	logger.Info("Checklist validated successfully", "file", rt.ChecklistPath())

	return nil
}
