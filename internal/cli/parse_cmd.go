package cli

import (
	"encoding/json"
	"strings"

	"github.com/alexanderramin/taskpilot/internal/intelligence"
	"github.com/alexanderramin/taskpilot/internal/scheduler"
	"github.com/spf13/cobra"
)

func newParseCmd(app *App) *cobra.Command {
	var payload bool
	cmd := &cobra.Command{
		Use:   `parse "<message>"`,
		Short: "Print the structured command for a message without running it",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			parsed, err := app.Resolver.Resolve(cmd.Context(), strings.Join(args, " "))
			if err != nil {
				return err
			}

			enc := json.NewEncoder(cmd.OutOrStdout())
			enc.SetIndent("", "  ")
			if !payload {
				return enc.Encode(parsed)
			}
			return enc.Encode(scheduler.BuildPayload(payloadAction(parsed.Intent), parsed.Name(), parsed.Total(), parsed.Allocations))
		},
	}
	cmd.Flags().BoolVar(&payload, "payload", false, "print the export payload instead of the command")
	return cmd
}

func payloadAction(kind intelligence.IntentKind) scheduler.PayloadAction {
	switch kind {
	case intelligence.IntentUpdateTask:
		return scheduler.ActionUpdate
	case intelligence.IntentDeleteProject:
		return scheduler.ActionDelete
	default:
		return scheduler.ActionCreate
	}
}
