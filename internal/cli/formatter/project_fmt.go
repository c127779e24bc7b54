package formatter

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/alexanderramin/taskpilot/internal/domain"
)

const completionBarWidth = 12

// FormatProjectList renders project summaries in a bordered table.
func FormatProjectList(projects []domain.ProjectSummary) string {
	if len(projects) == 0 {
		return Dim("No projects yet.") + "\n"
	}
	headers := []string{"NAME", "STATUS", "COMPLETION", "TASKS", "CREATED"}
	rows := make([][]string, 0, len(projects))
	for _, p := range projects {
		rows = append(rows, []string{
			Bold(p.Name),
			StatusPill(p.Status),
			RenderCompletion(p.Completion, completionBarWidth),
			strconv.Itoa(p.TotalTasks),
			Dim(p.CreatedAt.Format("2006-01-02")),
		})
	}
	return RenderBox("Projects", RenderTable(headers, rows)) + "\n"
}

// FormatProject renders a project card with its allocations and risk.
func FormatProject(p *domain.Project, risk domain.RiskAssessment) string {
	var b strings.Builder
	fmt.Fprintf(&b, "%s  %s\n", Bold(p.Name), StatusPill(p.Status))
	fmt.Fprintf(&b, "%s %s\n", Dim("Completion"), RenderCompletion(p.Completion, completionBarWidth))
	fmt.Fprintf(&b, "%s %d  %s %d\n", Dim("Tasks"), p.TotalTasks, Dim("Delayed"), p.DelayedTasks)
	b.WriteString("\n" + FormatRisk(risk))
	if len(p.Allocations) > 0 {
		b.WriteString("\n" + FormatAllocations(p.Allocations))
	}
	return RenderBox("Project", strings.TrimRight(b.String(), "\n")) + "\n"
}

// FormatRisk renders a risk level, score and contributing factors.
func FormatRisk(risk domain.RiskAssessment) string {
	var b strings.Builder
	fmt.Fprintf(&b, "%s %s %s\n", Dim("Risk"), RiskIndicator(risk.Level), Dim(fmt.Sprintf("(%d/100)", risk.Score)))
	for _, f := range risk.Factors {
		b.WriteString("  " + StyleYellow.Render("• ") + f + "\n")
	}
	return b.String()
}

// FormatAllocations renders one table row per person, or per team when a
// team names nobody.
func FormatAllocations(allocs domain.Allocations) string {
	headers := []string{"TEAM", "TASKS", "MEMBER", "ASSIGNED"}
	var rows [][]string
	for _, ta := range allocs {
		if len(ta.People) == 0 {
			rows = append(rows, []string{StylePurple.Render(ta.Team), strconv.Itoa(ta.Count), Dim("--"), Dim("--")})
			continue
		}
		for i, person := range ta.People {
			team, count := "", ""
			if i == 0 {
				team, count = StylePurple.Render(ta.Team), strconv.Itoa(ta.Count)
			}
			rows = append(rows, []string{team, count, person, strconv.Itoa(ta.Assignments[person])})
		}
	}
	return RenderTable(headers, rows)
}
