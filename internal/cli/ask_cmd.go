package cli

import (
	"fmt"
	"strings"

	"github.com/alexanderramin/taskpilot/internal/cli/formatter"
	"github.com/alexanderramin/taskpilot/internal/intelligence"
	"github.com/alexanderramin/taskpilot/internal/service"
	"github.com/spf13/cobra"
)

func newAskCmd(app *App) *cobra.Command {
	var yes bool
	cmd := &cobra.Command{
		Use:   `ask "<message>"`,
		Short: "Send one message to the assistant",
		Long: "Resolve a natural-language message and act on it. Deletes (and, " +
			"when configured, every write) are held for confirmation: an interactive " +
			"terminal asks, otherwise pass --yes.",
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			out := cmd.OutOrStdout()
			req := service.ChatRequest{
				SessionID: sessionFlag(cmd),
				Message:   strings.Join(args, " "),
				Confirmed: yes,
			}
			resp, err := app.Assistant.Chat(cmd.Context(), req)
			if err != nil {
				return err
			}

			if resp.State == intelligence.StateNeedsConfirmation {
				if !app.interactive() {
					fmt.Fprint(out, formatter.FormatChat(resp))
					fmt.Fprintln(out, formatter.Dim("Re-run with --yes to proceed."))
					return nil
				}
				ok, err := app.confirm(resp.Response)
				if err != nil {
					return err
				}
				if !ok {
					fmt.Fprintln(out, formatter.Dim("Cancelled."))
					return nil
				}
				req.Confirmed = true
				if resp, err = app.Assistant.Chat(cmd.Context(), req); err != nil {
					return err
				}
			}

			fmt.Fprint(out, formatter.FormatChat(resp))
			return nil
		},
	}
	cmd.Flags().BoolVarP(&yes, "yes", "y", false, "approve commands that need confirmation")
	return cmd
}
