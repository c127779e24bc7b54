package cli

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/alexanderramin/taskpilot/internal/cli/formatter"
	"github.com/alexanderramin/taskpilot/internal/domain"
	"github.com/alexanderramin/taskpilot/internal/importer"
	"github.com/spf13/cobra"
)

func newProjectCmd(app *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:     "project",
		Aliases: []string{"projects"},
		Short:   "Inspect and manage stored projects",
	}
	cmd.AddCommand(
		newProjectListCmd(app),
		newProjectShowCmd(app),
		newProjectUpdateCmd(app),
		newProjectDeleteCmd(app),
		newProjectImportCmd(app),
	)
	return cmd
}

func newProjectListCmd(app *App) *cobra.Command {
	var search string
	cmd := &cobra.Command{
		Use:     "list",
		Aliases: []string{"ls"},
		Short:   "List projects, newest first",
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			var (
				projects []domain.ProjectSummary
				err      error
			)
			if search != "" {
				projects, err = app.Projects.Search(cmd.Context(), search)
			} else {
				projects, err = app.Projects.List(cmd.Context())
			}
			if err != nil {
				return err
			}
			fmt.Fprint(cmd.OutOrStdout(), formatter.FormatProjectList(projects))
			return nil
		},
	}
	cmd.Flags().StringVarP(&search, "search", "s", "", "only projects whose name contains this text")
	return cmd
}

func newProjectShowCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "show <name>",
		Short: "Show a project with its allocations and risk",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			p, risk, err := app.Projects.Risk(cmd.Context(), strings.Join(args, " "))
			if err != nil {
				return err
			}
			fmt.Fprint(cmd.OutOrStdout(), formatter.FormatProject(p, risk))
			return nil
		},
	}
}

func newProjectUpdateCmd(app *App) *cobra.Command {
	var (
		completion int
		delayed    int
		status     string
	)
	cmd := &cobra.Command{
		Use:   "update <name>",
		Short: "Update completion, status or delayed tasks",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			u := &domain.UpdateFields{}
			flags := cmd.Flags()
			if flags.Changed("completion") {
				u.Completion = &completion
			}
			if flags.Changed("delayed") {
				u.DelayedTasks = &delayed
			}
			if flags.Changed("status") {
				s, err := parseStatus(status)
				if err != nil {
					return err
				}
				u.Status = &s
			}
			if u.IsEmpty() {
				return fmt.Errorf("nothing to update: pass --completion, --status or --delayed")
			}

			p, err := app.Projects.Update(cmd.Context(), strings.Join(args, " "), u)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Updated %s: %s, %d%% complete, %d delayed.\n",
				formatter.Bold(p.Name), formatter.StatusPill(p.Status), p.Completion, p.DelayedTasks)
			return nil
		},
	}
	cmd.Flags().IntVar(&completion, "completion", 0, "completion percentage (0-100)")
	cmd.Flags().IntVar(&delayed, "delayed", 0, "number of delayed tasks")
	cmd.Flags().StringVar(&status, "status", "", `one of "Created", "In Progress", "Completed", "On Hold", "Cancelled"`)
	return cmd
}

func newProjectDeleteCmd(app *App) *cobra.Command {
	var yes bool
	cmd := &cobra.Command{
		Use:     "delete <name>",
		Aliases: []string{"rm"},
		Short:   "Delete a project and its allocations",
		Args:    cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			out := cmd.OutOrStdout()
			p, err := app.Projects.Find(cmd.Context(), strings.Join(args, " "))
			if err != nil {
				return err
			}

			if !yes {
				if !app.interactive() {
					return fmt.Errorf("refusing to delete %s without --yes", p.Name)
				}
				ok, err := app.confirm(fmt.Sprintf("Delete %s?", p.Name))
				if err != nil {
					return err
				}
				if !ok {
					fmt.Fprintln(out, formatter.Dim("Cancelled."))
					return nil
				}
			}

			if err := app.Projects.Delete(cmd.Context(), p.Name); err != nil {
				return err
			}
			fmt.Fprintf(out, "Deleted %s.\n", p.Name)
			return nil
		},
	}
	cmd.Flags().BoolVarP(&yes, "yes", "y", false, "skip the confirmation prompt")
	return cmd
}

func newProjectImportCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "import <file.json>",
		Short: "Create projects from exported payload JSON",
		Long: "Read one payload or an array of payloads, as printed by " +
			"`parse --payload` or `assign --json`, and create a project for each.",
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			payloads, err := importer.LoadFile(args[0])
			if err != nil {
				return err
			}
			for i, p := range payloads {
				if errs := importer.ValidatePayload(p); len(errs) > 0 {
					return fmt.Errorf("payload %d: %w", i, errors.Join(errs...))
				}
			}

			out := cmd.OutOrStdout()
			for _, p := range payloads {
				project := importer.Convert(p, time.Now().UTC())
				if err := app.Projects.Create(cmd.Context(), project); err != nil {
					return fmt.Errorf("importing %s: %w", project.Name, err)
				}
				fmt.Fprintf(out, "Imported %s (%d tasks).\n", project.Name, project.TotalTasks)
			}
			return nil
		},
	}
}

// parseStatus matches a status case-insensitively.
func parseStatus(s string) (domain.ProjectStatus, error) {
	for _, known := range domain.ProjectStatuses {
		if strings.EqualFold(strings.TrimSpace(s), string(known)) {
			return known, nil
		}
	}
	return "", fmt.Errorf("unknown status %q", s)
}

func newRiskCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "risk <name>",
		Short: "Score a project's delivery risk",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			p, risk, err := app.Projects.Risk(cmd.Context(), strings.Join(args, " "))
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			fmt.Fprintln(out, formatter.Bold(p.Name))
			fmt.Fprint(out, formatter.FormatRisk(risk))
			return nil
		},
	}
}
