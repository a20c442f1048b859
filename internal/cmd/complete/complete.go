// Package complete marks checklist steps as done.
package complete

import (
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/deployah-dev/activation/internal/activation"
	"github.com/deployah-dev/activation/internal/checklist"
	"github.com/deployah-dev/activation/internal/cli"
	"github.com/deployah-dev/activation/internal/logging"
	"github.com/deployah-dev/activation/internal/ui"
)

// New creates the complete sub-command for the CLI.
func New() *cobra.Command {
	completeCommand := &cobra.Command{
		Use:     "complete [step-id]...",
		Aliases: []string{"done"},
		Short:   "Mark checklist steps as done",
		Long: `Mark one or more checklist steps as done in the completion file. A running "activation show"
picks up the change and celebrates. Without arguments, pick the steps interactively.`,
		RunE: runComplete,
		ValidArgsFunction: func(cmd *cobra.Command, args []string, toComplete string) ([]string, cobra.ShellCompDirective) {
			c, _, err := cli.LoadChecklistAndStore(cmd.Context())
			if err != nil {
				return nil, cobra.ShellCompDirectiveNoFileComp
			}
			return c.IDs(), cobra.ShellCompDirectiveNoFileComp
		},
		Example: `
# Mark a step as done
activation complete connect-code-host

# Undo a step
activation complete --undo connect-code-host

# Pick steps interactively
activation complete`,
	}

	completeCommand.Flags().Bool("undo", false, "Mark the steps as not done")

	return completeCommand
}

func runComplete(cmd *cobra.Command, args []string) error {
	logger := logging.GetLogger(cmd)
	undo, _ := cmd.Flags().GetBool("undo")

	c, store, err := cli.LoadChecklistAndStore(cmd.Context())
	if err != nil {
		return err
	}

	ids := args
	if len(ids) == 0 {
		completion, err := store.Completion()
		if err != nil {
			return fmt.Errorf("failed to read completion state: %w", err)
		}
		ids, err = selectStepsInteractively(c, completion, !undo)
		if errors.Is(err, ui.ErrAborted) {
			logger.Info("No steps changed")
			return nil
		}
		if err != nil {
			return err
		}
		if len(ids) == 0 {
			logger.Info("No steps selected")
			return nil
		}
	}

	state, err := store.MarkSteps(c, ids, !undo)
	if err != nil {
		return fmt.Errorf("failed to update completion state: %w", err)
	}

	verb := "done"
	if undo {
		verb = "not done"
	}
	logger.Info(fmt.Sprintf("Marked %s", verb), "step", strings.Join(ids, ","), "file", store.Path())

	pct, _ := activation.PercentageDone(c.Steps, activation.Completion(state.Completed))
	logger.Info("Progress", "progress", ui.FormatPercentage(pct),
		"done", len(checklist.CompletedIDs(c, state)), "total", len(c.Steps))

	return nil
}

// selectStepsInteractively shows a multi-select of the steps that would change
func selectStepsInteractively(c *checklist.Checklist, completion activation.Completion, done bool) ([]string, error) {
	options := ui.StepOptions(c.Steps, completion, done)
	if len(options) == 0 {
		if done {
			return nil, fmt.Errorf("every step is already done")
		}
		return nil, fmt.Errorf("no step is done yet")
	}

	title, description := "Complete steps", "Choose the steps you have finished:"
	if !done {
		title, description = "Undo steps", "Choose the steps to mark as not done:"
	}

	var selected []string
	form := ui.CreateMultiSelectForm(title, description, options, &selected)
	if err := ui.CollectWithForm(form, "failed to select steps"); err != nil {
		return nil, err
	}
	return selected, nil
}
