package service

import (
	"fmt"
	"strings"

	"github.com/alexanderramin/taskpilot/internal/domain"
)

// Fixed replies.
const (
	replyUnknown      = "I'm not sure what you mean. Try asking for project status or creating a project."
	replyWhichProject = "Which project are you referring to?"
	replyNoProjects   = "You don't have any projects yet. Try \"Create Project Alpha with 10 tasks\"."
)

func replyNotFound(name string) string {
	return fmt.Sprintf("I couldn't find any data for %s.", name)
}

func replyRejected(verb, reason string) string {
	return fmt.Sprintf("I can't %s that project: %s", verb, reason)
}

func replyStatus(p *domain.Project, risk domain.RiskAssessment) string {
	var b strings.Builder
	fmt.Fprintf(&b, "%s is %s, %d%% complete", p.Name, p.Status, p.Completion)
	if p.TotalTasks > 0 {
		fmt.Fprintf(&b, " across %d tasks", p.TotalTasks)
	}
	if p.DelayedTasks > 0 {
		fmt.Fprintf(&b, " with %d delayed", p.DelayedTasks)
	}
	fmt.Fprintf(&b, ". Risk is %s (%d/100)", risk.Level, risk.Score)
	if len(risk.Factors) > 0 {
		fmt.Fprintf(&b, ": %s", strings.Join(risk.Factors, "; "))
	}
	b.WriteString(".")
	if len(p.Allocations) > 0 {
		fmt.Fprintf(&b, " Teams: %s.", formatAllocations(p.Allocations))
	}
	return b.String()
}

func replyCreated(p *domain.Project, suggested bool) string {
	msg := fmt.Sprintf("Created %s with %d tasks.", p.Name, p.TotalTasks)
	if len(p.Allocations) == 0 {
		return msg
	}
	if suggested {
		return fmt.Sprintf("%s No split was given, so I suggested: %s.", msg, formatAllocations(p.Allocations))
	}
	return fmt.Sprintf("%s Teams: %s.", msg, formatAllocations(p.Allocations))
}

func replyUpdated(p *domain.Project, u *domain.UpdateFields) string {
	var changes []string
	if u.Status != nil {
		changes = append(changes, fmt.Sprintf("status %s", *u.Status))
	}
	if u.Completion != nil {
		changes = append(changes, fmt.Sprintf("completion %d%%", *u.Completion))
	}
	if u.DelayedTasks != nil {
		changes = append(changes, fmt.Sprintf("%d delayed tasks", *u.DelayedTasks))
	}
	return fmt.Sprintf("Updated %s: %s.", p.Name, strings.Join(changes, ", "))
}

func replyList(list []domain.ProjectSummary) string {
	if len(list) == 0 {
		return replyNoProjects
	}
	var b strings.Builder
	noun := "projects"
	if len(list) == 1 {
		noun = "project"
	}
	fmt.Fprintf(&b, "You have %d %s:", len(list), noun)
	for _, s := range list {
		fmt.Fprintf(&b, "\n- %s (%s, %d%%)", s.Name, s.Status, s.Completion)
	}
	return b.String()
}

func replyConfirmDelete(name string) string {
	return fmt.Sprintf("Are you sure you want to delete %s? Confirm to proceed.", name)
}

func replyConfirmWrite(action, name string) string {
	return fmt.Sprintf("Ready to %s %s. Confirm to proceed.", action, name)
}

func replyDeleted(name string) string {
	return fmt.Sprintf("Deleted %s.", name)
}

// formatAllocations renders "frontend 7 (John 4, Sarah 3), backend 3".
func formatAllocations(allocs domain.Allocations) string {
	parts := make([]string, 0, len(allocs))
	for _, ta := range allocs {
		part := fmt.Sprintf("%s %d", ta.Team, ta.Count)
		if len(ta.People) > 0 {
			people := make([]string, 0, len(ta.People))
			for _, person := range ta.People {
				people = append(people, fmt.Sprintf("%s %d", person, ta.Assignments[person]))
			}
			part += " (" + strings.Join(people, ", ") + ")"
		}
		parts = append(parts, part)
	}
	return strings.Join(parts, ", ")
}
