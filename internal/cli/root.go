package cli

import (
	"context"

	"github.com/alexanderramin/taskpilot/internal/intelligence"
	"github.com/alexanderramin/taskpilot/internal/scheduler"
	"github.com/alexanderramin/taskpilot/internal/service"
	"github.com/alexanderramin/taskpilot/internal/vocab"
	"github.com/spf13/cobra"
)

// App holds the services the commands call into.
type App struct {
	Assistant     service.AssistantService
	Projects      service.ProjectService
	Conversations service.ConversationService
	Resolver      intelligence.Resolver
	DefaultTeams  []string
	// Categorizer serves assign. Nil uses the embedded vocabulary.
	Categorizer *scheduler.Categorizer

	// Serve runs the HTTP API until ctx is cancelled. Nil disables serve.
	Serve func(ctx context.Context) error

	// IsInteractive reports whether stdin is a terminal. Nil means no.
	IsInteractive func() bool
	// Confirm asks a yes/no question. Nil uses a huh confirm form.
	Confirm func(title string) (bool, error)
	// HistoryPath is where the shell keeps its input history. Empty
	// disables persistence.
	HistoryPath string
}

func (a *App) interactive() bool {
	return a.IsInteractive != nil && a.IsInteractive()
}

func (a *App) categorizer() *scheduler.Categorizer {
	if a.Categorizer == nil {
		a.Categorizer = scheduler.NewCategorizer(vocab.Default())
	}
	return a.Categorizer
}

func (a *App) confirm(title string) (bool, error) {
	if a.Confirm != nil {
		return a.Confirm(title)
	}
	return huhConfirm(title)
}

// NewRootCmd creates the top-level "taskpilot" command and registers every
// subcommand against app.
func NewRootCmd(app *App) *cobra.Command {
	root := &cobra.Command{
		Use:           "taskpilot",
		Short:         "Conversational project assistant",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.PersistentFlags().String("config", "", "config file (default $TASKPILOT_CONFIG)")
	root.PersistentFlags().String("session", service.DefaultSessionID, "conversation session id")

	root.AddCommand(
		newAskCmd(app),
		newParseCmd(app),
		newAssignCmd(app),
		newProjectCmd(app),
		newRiskCmd(app),
		newServeCmd(app),
		newShellCmd(app),
	)
	return root
}

func sessionFlag(cmd *cobra.Command) string {
	s, _ := cmd.Flags().GetString("session")
	if s == "" {
		return service.DefaultSessionID
	}
	return s
}
