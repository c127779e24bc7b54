package cli

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/alexanderramin/taskpilot/internal/cli/formatter"
	"github.com/alexanderramin/taskpilot/internal/scheduler"
	"github.com/spf13/cobra"
)

func newAssignCmd(app *App) *cobra.Command {
	var (
		name    string
		total   int
		teams   []string
		members []string
		descs   []string
		asJSON  bool
	)
	cmd := &cobra.Command{
		Use:   "assign",
		Short: "Suggest a team allocation and per-person workload",
		Example: `  taskpilot assign --total 10 --teams frontend,backend --member frontend=John,Sarah
  taskpilot assign --desc "Build login UI" --desc "Write API endpoint" --desc "Add unit tests"`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if total < 0 {
				return fmt.Errorf("--total must be non-negative")
			}
			byTeam, err := parseMembers(members)
			if err != nil {
				return err
			}
			if len(teams) == 0 {
				teams = app.DefaultTeams
			}

			allocs, sum := app.categorizer().Assign(total, teams, byTeam, descs)
			out := cmd.OutOrStdout()
			if asJSON {
				enc := json.NewEncoder(out)
				enc.SetIndent("", "  ")
				return enc.Encode(scheduler.BuildPayload(scheduler.ActionCreate, name, sum, allocs))
			}
			fmt.Fprintln(out, formatter.Header(fmt.Sprintf("Allocation for %d tasks", sum)))
			fmt.Fprint(out, formatter.FormatAllocations(allocs))
			return nil
		},
	}
	cmd.Flags().StringVar(&name, "name", "", "project name for the payload")
	cmd.Flags().IntVar(&total, "total", 0, "total number of tasks")
	cmd.Flags().StringSliceVar(&teams, "teams", nil, "teams to split across (default: configured teams)")
	cmd.Flags().StringArrayVar(&members, "member", nil, "team members as team=Name,Name (repeatable)")
	cmd.Flags().StringArrayVar(&descs, "desc", nil, "task description to categorize (repeatable)")
	cmd.Flags().BoolVar(&asJSON, "json", false, "print the export payload as JSON")
	return cmd
}

func parseMembers(specs []string) (map[string][]string, error) {
	out := make(map[string][]string, len(specs))
	for _, spec := range specs {
		team, names, ok := strings.Cut(spec, "=")
		team = strings.ToLower(strings.TrimSpace(team))
		if !ok || team == "" {
			return nil, fmt.Errorf("invalid --member %q: want team=Name,Name", spec)
		}
		for _, n := range strings.Split(names, ",") {
			if n = strings.TrimSpace(n); n != "" {
				out[team] = append(out[team], n)
			}
		}
	}
	return out, nil
}
