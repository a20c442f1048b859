package status

import (
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/deployah-dev/activation/internal/cli"
	"github.com/deployah-dev/activation/internal/ui"
)

// New creates the status sub-command for the CLI.
func New() *cobra.Command {
	statusCommand := &cobra.Command{
		Use:   "status",
		Short: "Display onboarding progress",
		Long:  `Display the completion percentage of the checklist and the done state of every step.`,
		Args:  cobra.NoArgs,
		PreRunE: func(cmd *cobra.Command, args []string) error {
			outputFormat, err := cmd.Flags().GetString("output")
			if err != nil {
				return fmt.Errorf("failed to get output format: %w", err)
			}
			return cli.ValidateOutputFormat(outputFormat)
		},
		RunE: runStatus,
		Example: `
# Display progress as a table
activation status

# Include step details
activation status --detailed

# Display progress as JSON
activation status --output json

# Print a single progress line
activation status -o summary`,
	}

	statusCommand.Flags().StringP("output", "o", cli.OutputFormatTable, "Output format: table, json, summary")
	statusCommand.Flags().Bool("detailed", false, "Show the detail text of every step")

	return statusCommand
}

func runStatus(cmd *cobra.Command, _ []string) error {
	outputFormat, err := cmd.Flags().GetString("output")
	if err != nil {
		return fmt.Errorf("failed to get output format: %w", err)
	}

	detailed, err := cmd.Flags().GetBool("detailed")
	if err != nil {
		return fmt.Errorf("failed to get detailed flag: %w", err)
	}

	rt, err := cli.GetRuntime(cmd.Context())
	if err != nil {
		return err
	}

	c, store, err := cli.LoadChecklistAndStore(cmd.Context())
	if err != nil {
		return err
	}

	state, err := store.Read()
	if err != nil {
		return fmt.Errorf("failed to read completion state: %w", err)
	}

	vm := cli.BuildStatus(c, state, rt.Clock().Now())

	switch outputFormat {
	case cli.OutputFormatJSON:
		return outputJSON(cmd.OutOrStdout(), vm)
	case cli.OutputFormatSummary:
		_, err := fmt.Fprintln(cmd.OutOrStdout(), vm.Summary())
		return err
	case cli.OutputFormatTable:
		return printTable(cmd.OutOrStdout(), vm, detailed)
	default:
		return fmt.Errorf("unsupported output format: %s", outputFormat)
	}
}

func outputJSON(w io.Writer, vm cli.StatusViewModel) error {
	out, err := json.MarshalIndent(vm, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to serialize json: %w", err)
	}

	if w != io.Writer(os.Stdout) {
		_, err = fmt.Fprintln(w, string(out))
		return err
	}

	colorized, err := cli.ColorizeJSONWithChroma(out)
	if err != nil {
		// Fall back to plain JSON if colorization fails
		_, err = fmt.Fprintln(w, string(out))
		return err
	}

	_, err = fmt.Fprintln(w, colorized)
	return err
}

func printTable(w io.Writer, vm cli.StatusViewModel, detailed bool) error {
	if _, err := fmt.Fprintln(w, vm.Summary()); err != nil {
		return err
	}
	if len(vm.Steps) == 0 {
		_, err := fmt.Fprintln(w, "No steps defined.")
		return err
	}

	table := ui.NewTable().
		SetColumns(cli.GetTableColumns(detailed)).
		SetRows(vm.Rows())

	return table.Fprint(w)
}
