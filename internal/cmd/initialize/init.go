package initialize

import (
	"fmt"
	"io"
	"slices"
	"strings"

	"github.com/charmbracelet/huh"
	"github.com/spf13/cobra"
	"sigs.k8s.io/yaml"

	"github.com/deployah-dev/activation/internal/activation"
	"github.com/deployah-dev/activation/internal/checklist"
	"github.com/deployah-dev/activation/internal/checklist/schema"
	"github.com/deployah-dev/activation/internal/cli"
	"github.com/deployah-dev/activation/internal/logging"
	"github.com/deployah-dev/activation/internal/ui"
	"github.com/deployah-dev/activation/internal/util"
)

// Dry-run mode constants
const (
	DryRunPreviewHeader = "=== DRY RUN MODE - PREVIEW OF GENERATED CHECKLIST ===\n"
	DryRunPreviewFooter = "\n=== END PREVIEW ===\n\nThis is a preview. Use --dry-run=false to actually save the checklist."
)

// Form steps
const (
	StepTitle     = "Title"
	StepSteps     = "Steps"
	StepVariables = "Variables"
	StepSummary   = "Summary"
)

// ChecklistConfig holds the collected checklist data
type ChecklistConfig struct {
	Title      string
	Steps      []activation.Step
	Variables  map[string]string
	OutputPath string
	DryRun     bool
}

// New creates and returns a new cobra command for authoring a checklist.
func New() *cobra.Command {
	initCommand := &cobra.Command{
		Use:     "init",
		Aliases: []string{"initialize"},
		Short:   "Create an activation checklist interactively",
		Long:    `Create an activation checklist interactively and save it to the checklist path (-f).`,
		Args:    cobra.NoArgs,
		RunE:    runInit,
		Example: `
# Create ./.activation.yaml
activation init

# Create a checklist at another path
activation init -f onboarding.yaml

# Preview the generated checklist without saving it
activation init --dry-run
		`,
	}

	initCommand.Flags().BoolP("dry-run", "d", false, "Preview the generated checklist without saving it")
	initCommand.Flags().Bool("force", false, "Overwrite an existing checklist without asking")

	return initCommand
}

// runInit is the main function for the init command
func runInit(cmd *cobra.Command, _ []string) error {
	logger := logging.GetLogger(cmd)
	logger.Info("Starting checklist authoring", "cmd", "init")

	dryRun, _ := cmd.Flags().GetBool("dry-run")
	force, _ := cmd.Flags().GetBool("force")

	rt, err := cli.GetRuntime(cmd.Context())
	if err != nil {
		return err
	}

	config := &ChecklistConfig{
		OutputPath: rt.ChecklistPath(),
		DryRun:     dryRun,
	}

	if !dryRun && !force {
		proceed, err := confirmOverwrite(config.OutputPath)
		if err != nil {
			return err
		}
		if !proceed {
			logger.Info("Keeping the existing checklist", "file", config.OutputPath)
			return nil
		}
	}

	progress := ui.NewProgressTracker(StepTitle, StepSteps, StepVariables, StepSummary)

	if err := collectTitle(config, progress); err != nil {
		return fmt.Errorf("failed to collect title: %w", err)
	}
	if err := collectSteps(config, progress); err != nil {
		return fmt.Errorf("failed to collect steps: %w", err)
	}
	if err := collectVariables(config, progress); err != nil {
		return fmt.Errorf("failed to collect variables: %w", err)
	}

	c, err := buildChecklist(config)
	if err != nil {
		return err
	}

	if config.DryRun {
		if err := showChecklistPreview(cmd.OutOrStdout(), c); err != nil {
			return err
		}
		logger.Info("Checklist authoring completed (dry-run mode)", "steps", len(c.Steps))
		return nil
	}

	var save bool
	summary := ui.CreateConfirmForm(
		progress.GetCurrentStep(),
		fmt.Sprintf("Save %q with %d step(s) to %s?", c.Title, len(c.Steps), config.OutputPath),
		"Save",
		"Discard",
		&save,
	)
	if err := ui.CollectWithForm(summary, "failed to confirm checklist"); err != nil {
		return err
	}
	if !save {
		logger.Info("Checklist discarded")
		return nil
	}

	if err := rt.SaveChecklist(c); err != nil {
		return err
	}

	logger.Info("Checklist created successfully",
		"title", c.Title,
		"steps", len(c.Steps),
		"variables", len(c.Variables),
		"file", config.OutputPath)
	return nil
}

// confirmOverwrite asks before replacing an existing checklist
func confirmOverwrite(path string) (bool, error) {
	exists, err := checklist.Exists(path)
	if err != nil {
		return false, fmt.Errorf("failed to check %s: %w", path, err)
	}
	if !exists {
		return true, nil
	}

	var overwrite bool
	form := ui.CreateConfirmForm(
		"Overwrite existing checklist?",
		fmt.Sprintf("%s already exists.", path),
		"Yes, overwrite",
		"No, keep it",
		&overwrite,
	)
	if err := ui.CollectWithForm(form, "failed to get confirmation"); err != nil {
		return false, err
	}
	return overwrite, nil
}

// collectTitle collects the product name shown in the welcome header
func collectTitle(config *ChecklistConfig, progress *ui.ProgressTracker) error {
	form := ui.CreateInputForm(
		progress.GetCurrentStep(),
		checklist.DefaultTitle,
		"Shown as \"Welcome to <title>\" before any step is done.",
		func(s string) error { return util.ValidateNonEmpty(s, "title") },
		&config.Title,
	)

	err := ui.CollectWithForm(form, "failed to get title from user")
	if err == nil {
		progress.NextStep()
	}
	return err
}

// collectSteps collects checklist steps until the user is done
func collectSteps(config *ChecklistConfig, progress *ui.ProgressTracker) error {
	for addAnother := true; addAnother; {
		var step activation.Step
		taken := activation.StepIDs(config.Steps)

		form := huh.NewForm(
			ui.CreateStepGroup(
				func(s string) error { return util.ValidateStepID(s, taken) },
				func(s string) error { return util.ValidateNonEmpty(s, "title") },
				&step,
			).Title(fmt.Sprintf("%s (#%d)", progress.GetCurrentStep(), len(config.Steps)+1)),
			ui.CreateConfirmGroup("Add another step?", "", "Yes, add another", "No, I'm done", &addAnother),
		)
		if err := ui.CollectWithForm(form, "failed to get step from user"); err != nil {
			return err
		}

		config.Steps = append(config.Steps, normalizeStep(step))
	}

	progress.NextStep()
	return nil
}

// collectVariables collects optional KEY=value variables used in step details
func collectVariables(config *ChecklistConfig, progress *ui.ProgressTracker) error {
	var raw string
	form := huh.NewForm(
		huh.NewGroup(
			huh.NewText().
				Title(progress.GetCurrentStep()).
				Description("Optional KEY=value pairs, one per line. Reference them in details as ${KEY}.").
				Lines(4).
				Validate(func(s string) error {
					_, err := util.ParseVariables(s)
					return err
				}).
				Value(&raw),
		),
	)
	if err := ui.CollectWithForm(form, "failed to get variables from user"); err != nil {
		return err
	}

	vars, err := util.ParseVariables(raw)
	if err != nil {
		return err
	}
	if len(vars) > 0 {
		config.Variables = vars
	}

	progress.NextStep()
	return nil
}

func normalizeStep(step activation.Step) activation.Step {
	return activation.Step{
		ID:     strings.TrimSpace(step.ID),
		Title:  strings.TrimSpace(step.Title),
		Detail: strings.TrimSpace(step.Detail),
	}
}

// buildChecklist assembles a checklist at the latest apiVersion and validates it
func buildChecklist(config *ChecklistConfig) (*checklist.Checklist, error) {
	version, err := schema.Latest()
	if err != nil {
		return nil, fmt.Errorf("failed to resolve apiVersion: %w", err)
	}

	c := &checklist.Checklist{
		APIVersion: version,
		Title:      strings.TrimSpace(config.Title),
		Variables:  config.Variables,
		Steps:      slices.Clone(config.Steps),
	}

	if len(c.Steps) == 0 {
		return nil, fmt.Errorf("a checklist needs at least one step")
	}
	if err := checklist.ValidateSteps(c); err != nil {
		return nil, fmt.Errorf("failed to validate checklist: %w", err)
	}
	return c, nil
}

// showChecklistPreview prints the YAML that would be written
func showChecklistPreview(w io.Writer, c *checklist.Checklist) error {
	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("failed to marshal checklist: %w", err)
	}
	_, err = fmt.Fprintf(w, "%s%s%s\n", DryRunPreviewHeader, data, DryRunPreviewFooter)
	return err
}
