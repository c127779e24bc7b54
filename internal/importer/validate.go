package importer

import (
	"fmt"
	"strings"

	"github.com/alexanderramin/taskpilot/internal/scheduler"
)

// ValidatePayload checks the structure of one payload and returns every
// problem found. Task arithmetic is left to project creation.
func ValidatePayload(p scheduler.Payload) []error {
	var errs []error

	switch p.Action {
	case "", scheduler.ActionCreate:
	default:
		errs = append(errs, fmt.Errorf("action: only %s payloads can be imported, got %q", scheduler.ActionCreate, p.Action))
	}
	if strings.TrimSpace(p.Project.Name) == "" {
		errs = append(errs, fmt.Errorf("project.name is required"))
	}
	if p.Project.TotalTasks < 0 {
		errs = append(errs, fmt.Errorf("project.totalTasks must be >= 0"))
	}

	teams := make(map[string]bool, len(p.Project.Teams))
	for i, team := range p.Project.Teams {
		errs = append(errs, validateTeam(i, team, teams)...)
	}
	return errs
}

func validateTeam(i int, team scheduler.PayloadTeam, seen map[string]bool) []error {
	var errs []error
	prefix := fmt.Sprintf("teams[%d]", i)

	name := strings.ToLower(strings.TrimSpace(team.TeamName))
	switch {
	case name == "":
		errs = append(errs, fmt.Errorf("%s.teamName is required", prefix))
	case seen[name]:
		errs = append(errs, fmt.Errorf("%s.teamName %q is duplicated", prefix, team.TeamName))
	}
	seen[name] = true

	if team.TaskCount < 0 {
		errs = append(errs, fmt.Errorf("%s.taskCount must be >= 0", prefix))
	}

	members := make(map[string]bool, len(team.Members))
	assigned := 0
	for j, m := range team.Members {
		mp := fmt.Sprintf("%s.members[%d]", prefix, j)
		if strings.TrimSpace(m.Name) == "" {
			errs = append(errs, fmt.Errorf("%s.name is required", mp))
		} else if members[m.Name] {
			errs = append(errs, fmt.Errorf("%s.name %q is duplicated", mp, m.Name))
		}
		members[m.Name] = true
		if m.AssignedTasks < 0 {
			errs = append(errs, fmt.Errorf("%s.assignedTasks must be >= 0", mp))
		}
		assigned += m.AssignedTasks
	}
	if assigned > 0 && assigned != team.TaskCount {
		errs = append(errs, fmt.Errorf("%s: members are assigned %d tasks but the team has %d", prefix, assigned, team.TaskCount))
	}
	return errs
}
