// Package reset clears the completion file.
package reset

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/deployah-dev/activation/internal/checklist"
	"github.com/deployah-dev/activation/internal/cli"
	"github.com/deployah-dev/activation/internal/logging"
	"github.com/deployah-dev/activation/internal/ui"
)

// New creates the reset sub-command for the CLI.
func New() *cobra.Command {
	resetCommand := &cobra.Command{
		Use:   "reset",
		Short: "Mark every checklist step as not done",
		Long: `Clear the completion file so every step is pending again. The widget reappears at 0%.
Use --dry-run to see which steps would be cleared.`,
		Args: cobra.NoArgs,
		RunE: runReset,
	}

	resetCommand.Flags().BoolP("yes", "y", false, "Reset without confirmation")
	resetCommand.Flags().Bool("dry-run", false, "Show what would be cleared without changing the completion file")

	return resetCommand
}

func runReset(cmd *cobra.Command, _ []string) error {
	logger := logging.GetLogger(cmd)

	yes, _ := cmd.Flags().GetBool("yes")
	dryRun, _ := cmd.Flags().GetBool("dry-run")

	c, store, err := cli.LoadChecklistAndStore(cmd.Context())
	if err != nil {
		return err
	}

	state, err := store.Read()
	if err != nil {
		return fmt.Errorf("failed to read completion state: %w", err)
	}
	done := checklist.CompletedIDs(c, state)

	if dryRun {
		if len(done) == 0 {
			logger.Info("DRY RUN: no completed steps - nothing to reset", "file", store.Path())
			return nil
		}
		logger.Info("DRY RUN: would mark the following steps as not done", "file", store.Path())
		for _, id := range done {
			step, _ := c.Step(id)
			logger.Info("  • "+step.Title, "step", id)
		}
		return nil
	}

	if !yes {
		var confirmed bool
		form := ui.CreateConfirmForm(
			"Reset onboarding progress?",
			fmt.Sprintf("This marks %d completed step(s) in %s as not done.", len(done), store.Path()),
			"Yes, reset it",
			"No, cancel",
			&confirmed,
		)
		if err := ui.CollectWithForm(form, "failed to get confirmation"); err != nil {
			if errors.Is(err, ui.ErrAborted) {
				logger.Info("Reset cancelled by user")
				return nil
			}
			return err
		}
		if !confirmed {
			logger.Info("Reset cancelled by user")
			return nil
		}
	}

	if err := store.Reset(); err != nil {
		return fmt.Errorf("failed to reset completion state: %w", err)
	}

	logger.Info("Progress reset", "cleared", len(done), "file", store.Path())
	return nil
}
