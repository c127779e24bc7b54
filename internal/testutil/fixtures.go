package testutil

import (
	"time"

	"github.com/alexanderramin/taskpilot/internal/domain"
	"github.com/google/uuid"
)

// ProjectOption customises a fixture project.
type ProjectOption func(*domain.Project)

func WithStatus(s domain.ProjectStatus) ProjectOption {
	return func(p *domain.Project) {
		p.Status = s
	}
}

func WithCompletion(c int) ProjectOption {
	return func(p *domain.Project) {
		p.Completion = c
	}
}

func WithDelayedTasks(n int) ProjectOption {
	return func(p *domain.Project) {
		p.DelayedTasks = n
	}
}

// WithAllocation appends a team allocation and grows TotalTasks to match.
func WithAllocation(team string, count int, people ...string) ProjectOption {
	return func(p *domain.Project) {
		ta := domain.TeamAllocation{Team: team, Count: count, People: people}
		if len(people) > 0 {
			ta.Assignments = make(map[string]int, len(people))
			base, rem := count/len(people), count%len(people)
			for i, name := range people {
				n := base
				if i < rem {
					n++
				}
				ta.Assignments[name] = n
			}
		}
		p.Allocations.Set(ta)
		p.TotalTasks = p.Allocations.Sum()
	}
}

func WithCreatedAt(ts time.Time) ProjectOption {
	return func(p *domain.Project) {
		p.CreatedAt = ts
		p.UpdatedAt = ts
	}
}

func NewTestProject(name string, opts ...ProjectOption) *domain.Project {
	now := time.Now().UTC()
	p := &domain.Project{
		ID:        uuid.New().String(),
		Name:      name,
		Status:    domain.StatusCreated,
		CreatedAt: now,
		UpdatedAt: now,
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}
