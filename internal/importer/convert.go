package importer

import (
	"strings"
	"time"

	"github.com/alexanderramin/taskpilot/internal/domain"
	"github.com/alexanderramin/taskpilot/internal/scheduler"
	"github.com/google/uuid"
)

// Convert turns a validated payload into a new project. Members keep their
// assigned counts; a team whose members carry no assignments has its count
// distributed among them.
func Convert(p scheduler.Payload, now time.Time) *domain.Project {
	allocs := make(domain.Allocations, 0, len(p.Project.Teams))
	for _, team := range p.Project.Teams {
		ta := domain.TeamAllocation{
			Team:        strings.ToLower(strings.TrimSpace(team.TeamName)),
			Count:       team.TaskCount,
			People:      make([]string, 0, len(team.Members)),
			Assignments: map[string]int{},
		}
		assigned := 0
		for _, m := range team.Members {
			ta.People = append(ta.People, strings.TrimSpace(m.Name))
			ta.Assignments[strings.TrimSpace(m.Name)] = m.AssignedTasks
			assigned += m.AssignedTasks
		}
		if assigned == 0 && len(ta.People) > 0 {
			ta.Assignments = scheduler.Distribute(ta.Count, ta.People)
		}
		allocs = append(allocs, ta)
	}

	total := p.Project.TotalTasks
	if total == 0 {
		total = allocs.Sum()
	}
	return &domain.Project{
		ID:          uuid.New().String(),
		Name:        strings.TrimSpace(p.Project.Name),
		Status:      domain.StatusCreated,
		TotalTasks:  total,
		Allocations: allocs,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
}
