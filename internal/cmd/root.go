// Package cmd provides the commands for the activation application.
package cmd

import (
	"context"
	"errors"
	"os"
	"os/signal"
	"syscall"

	"github.com/charmbracelet/fang"
	"github.com/spf13/cobra"

	"github.com/deployah-dev/activation/internal/activation"
	"github.com/deployah-dev/activation/internal/checklist"
	"github.com/deployah-dev/activation/internal/cli"
	"github.com/deployah-dev/activation/internal/cmd/complete"
	"github.com/deployah-dev/activation/internal/cmd/initialize"
	"github.com/deployah-dev/activation/internal/cmd/reset"
	"github.com/deployah-dev/activation/internal/cmd/show"
	"github.com/deployah-dev/activation/internal/cmd/status"
	"github.com/deployah-dev/activation/internal/cmd/validate"
	"github.com/deployah-dev/activation/internal/logging"
	"github.com/deployah-dev/activation/internal/runtime"
)

// NewRootCommand creates the root command with every sub-command attached.
func NewRootCommand() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "activation",
		Short: "Track onboarding progress with a celebratory checklist widget",
		Long: `activation shows a "Get started" widget with the percentage of onboarding steps completed,
a checklist of the remaining steps, and a burst of confetti whenever progress increases.`,
		CompletionOptions: cobra.CompletionOptions{
			HiddenDefaultCmd: true,
		},
		SilenceUsage:      true,
		PersistentPreRunE: setup,
		PersistentPostRunE: func(cmd *cobra.Command, args []string) error {
			return teardown(cmd)
		},
	}

	flags := rootCmd.PersistentFlags()
	flags.StringP("log-level", "l", logging.DefaultLogLevel, "Set the logging level (debug|info|warn|error|fatal)")
	flags.Bool("no-color", false, "If specified, output won't contain any color.")
	flags.BoolP("quiet", "q", false, "Quiet or silent mode. Do not show logs or error messages.")
	flags.StringP("checklist", "f", checklist.DefaultChecklistPath, "Path to the checklist file (YAML or JSON)")
	flags.StringP("state", "s", checklist.DefaultStatePath, "Path to the completion file")
	flags.String("env-file", "", "Path to a .env file used for variable substitution")

	rootCmd.AddCommand(
		show.New(),
		status.New(),
		validate.New(),
		complete.New(),
		reset.New(),
		initialize.New(),
	)

	return rootCmd
}

// setup configures logging and stores the per-invocation runtime in the command context.
func setup(cmd *cobra.Command, _ []string) error {
	logLevel := stringFlag(cmd, "log-level", runtime.LogLevelEnvVar)
	noColor, _ := cmd.Flags().GetBool("no-color")
	quiet, _ := cmd.Flags().GetBool("quiet")

	// When quiet is true, errors are not printed either.
	cmd.SilenceErrors = quiet

	if err := logging.SetupCharmLogger(cmd, logLevel, noColor, quiet); err != nil {
		return err
	}

	obsLogger := logging.GetObservableLogger(cmd)
	if collector := logging.MetricsFrom(cmd.Context()); collector != nil {
		collector.AddHook(logging.NewLogExporter(obsLogger.Logger()))
	}

	rt := runtime.New(
		runtime.WithChecklistPath(stringFlag(cmd, "checklist", runtime.ChecklistEnvVar)),
		runtime.WithStatePath(stringFlag(cmd, "state", runtime.StateEnvVar)),
		runtime.WithEnvFile(stringFlag(cmd, "env-file", runtime.EnvFileEnvVar)),
		runtime.WithLogger(runtime.NewLoggerAdapter(obsLogger.Logger())),
	)
	cmd.SetContext(runtime.WithRuntime(cmd.Context(), rt))
	return nil
}

func teardown(cmd *cobra.Command) error {
	if collector := logging.MetricsFrom(cmd.Context()); collector != nil {
		if err := collector.ExportMetrics(cmd.Context()); err != nil {
			logging.GetLogger(cmd).Debug("Failed to export metrics", "err", err)
		}
	}
	if rt := runtime.FromRuntime(cmd.Context()); rt != nil {
		return rt.Close()
	}
	return nil
}

// stringFlag returns the flag value, falling back to envVar when the flag was not set explicitly.
func stringFlag(cmd *cobra.Command, name, envVar string) string {
	value, _ := cmd.Flags().GetString(name)
	if cmd.Flags().Changed(name) {
		return value
	}
	if env, ok := os.LookupEnv(envVar); ok && env != "" {
		return env
	}
	return value
}

// Execute is the main entry point for the activation application.
func Execute(version string) {
	os.Exit(execute(version))
}

// execute owns the signal context so it is released before the process exits.
func execute(version string) int {
	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	return exitCode(fang.Execute(ctx, NewRootCommand(), fang.WithVersion(version)))
}

func exitCode(err error) int {
	switch {
	case err == nil:
		return cli.ExitSuccess
	case errors.Is(err, context.DeadlineExceeded):
		return cli.ExitTimedOut
	case errors.Is(err, activation.ErrClosed), errors.Is(err, context.Canceled):
		return cli.ExitSuccess
	}
	return cli.ExitError
}
