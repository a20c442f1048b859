// Package show runs the activation widget.
package show

import (
	"context"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/deployah-dev/activation/internal/activation"
	"github.com/deployah-dev/activation/internal/cli"
	"github.com/deployah-dev/activation/internal/logging"
	"github.com/deployah-dev/activation/internal/provider"
	"github.com/deployah-dev/activation/internal/runtime"
	"github.com/deployah-dev/activation/internal/ui"
)

// New creates the show sub-command for the CLI.
func New() *cobra.Command {
	showCommand := &cobra.Command{
		Use:   "show",
		Short: "Show the onboarding widget",
		Long: `Show the "Get started" widget with the completion percentage. The widget follows the completion file
and celebrates every increase in progress. Once onboarding is complete the widget hides itself unless progress was
made while it was open or --always-show is set.`,
		Args: cobra.NoArgs,
		PreRunE: func(cmd *cobra.Command, args []string) error {
			duration, err := cmd.Flags().GetDuration("duration")
			if err != nil {
				return fmt.Errorf("failed to get duration: %w", err)
			}
			if !runtime.ValidateDuration(duration) {
				return fmt.Errorf("invalid duration %s: must be between %s and %s", duration, runtime.DurationMin, runtime.DurationMax)
			}
			return nil
		},
		RunE: runShow,
		Example: `
# Show the widget for ./.activation.yaml
activation show

# Keep the widget visible after onboarding is complete
activation show --always-show

# Log progress changes instead of drawing the widget
activation show --plain`,
	}

	showCommand.Flags().Bool("always-show", false, "Keep the widget visible even when every step is complete")
	showCommand.Flags().Bool("plain", false, "Log progress changes instead of drawing the interactive widget")
	showCommand.Flags().Bool("open", false, "Open the checklist popover on start")
	showCommand.Flags().Bool("alt-screen", false, "Draw the widget in the alternate screen buffer")
	showCommand.Flags().Duration("duration", runtime.DefaultDuration, "How long each celebration lasts")

	return showCommand
}

func runShow(cmd *cobra.Command, _ []string) error {
	ctx := cmd.Context()
	logger := logging.GetLogger(cmd)

	alwaysShow, _ := cmd.Flags().GetBool("always-show")
	plain, _ := cmd.Flags().GetBool("plain")
	open, _ := cmd.Flags().GetBool("open")
	altScreen, _ := cmd.Flags().GetBool("alt-screen")

	rt, err := cli.GetRuntime(ctx)
	if err != nil {
		return err
	}

	duration := rt.Duration()
	if cmd.Flags().Changed("duration") {
		duration, _ = cmd.Flags().GetDuration("duration")
	}

	c, store, err := cli.LoadChecklistAndStore(ctx)
	if err != nil {
		return err
	}

	initial, err := store.Completion()
	if err != nil {
		logger.Warn("Failed to read completion file, waiting for it to change", "file", store.Path(), "err", err)
	}

	controller := activation.New(c.Steps,
		activation.WithClock(rt.Clock()),
		activation.WithDuration(duration),
		activation.WithInitialCompletion(initial),
		activation.WithForceShow(alwaysShow),
		activation.WithLogger(logger),
		activation.WithMetrics(logging.GetObservableLogger(cmd)),
	)
	defer controller.Close()

	watcher, err := provider.NewWatcher(store.Path(), store, controller,
		provider.WithDebounce(rt.Debounce()),
		provider.WithClock(rt.Clock()),
		provider.WithLogger(logger),
	)
	if err != nil {
		return fmt.Errorf("failed to watch completion file: %w", err)
	}
	if err := watcher.Start(ctx); err != nil {
		return fmt.Errorf("failed to watch completion file: %w", err)
	}
	defer func() {
		watcher.Stop()
		stats := watcher.Stats()
		logger.Debug("Stopped watching completion file",
			"events", stats.Events, "snapshots", stats.Snapshots, "errors", stats.Errors)
	}()

	signals := controller.Subscribe()

	if plain || !ui.IsTerminal() {
		logger.Debug("Rendering progress as log lines", "file", store.Path())
		return ui.NewPlainRenderer(c.Title, logger).Run(ctx, signals)
	}

	widget := ui.NewWidget(c.Title, signals,
		ui.WithInitialSignals(controller.Signals()),
		ui.WithOpen(open),
	)

	return runWidget(ctx, widget, cmd, altScreen)
}

func runWidget(ctx context.Context, widget ui.Widget, cmd *cobra.Command, altScreen bool) error {
	start := time.Now()
	err := ui.RunWidget(ctx, widget,
		ui.WithInput(cmd.InOrStdin()),
		ui.WithOutput(cmd.OutOrStdout()),
		ui.WithAltScreen(altScreen),
	)
	if err != nil {
		return fmt.Errorf("failed to run widget: %w", err)
	}
	logging.GetLogger(cmd).Debug("Widget closed", "after", time.Since(start).Round(time.Millisecond))
	return nil
}
