package domain

import "time"

type Project struct {
	ID           string
	Name         string
	Status       ProjectStatus
	Completion   int
	DelayedTasks int
	TotalTasks   int
	Allocations  Allocations
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// UpdateFields is a partial project update. Nil fields are left unchanged.
type UpdateFields struct {
	Status       *ProjectStatus `json:"status"`
	Completion   *int           `json:"completion"`
	DelayedTasks *int           `json:"delayed_tasks"`
}

// IsEmpty reports whether no field is set.
func (u *UpdateFields) IsEmpty() bool {
	return u == nil || (u.Status == nil && u.Completion == nil && u.DelayedTasks == nil)
}

// Apply copies every set field onto p.
func (u *UpdateFields) Apply(p *Project) {
	if u == nil {
		return
	}
	if u.Status != nil {
		p.Status = *u.Status
	}
	if u.Completion != nil {
		p.Completion = *u.Completion
	}
	if u.DelayedTasks != nil {
		p.DelayedTasks = *u.DelayedTasks
	}
}

// RiskAssessment is derived from a project's current metrics on every query.
type RiskAssessment struct {
	Score   int       `json:"risk_score"`
	Level   RiskLevel `json:"risk_level"`
	Factors []string  `json:"risk_factors"`
}

// Message is one turn of a chat session.
type Message struct {
	SessionID string
	Role      MessageRole
	Content   string
	CreatedAt time.Time
}

// ProjectSummary is the list view of a project.
type ProjectSummary struct {
	Name       string        `json:"name"`
	Status     ProjectStatus `json:"status"`
	Completion int           `json:"completion"`
	TotalTasks int           `json:"total_tasks"`
	CreatedAt  time.Time     `json:"created_at"`
}

// Summary returns the list view of p.
func (p *Project) Summary() ProjectSummary {
	return ProjectSummary{
		Name:       p.Name,
		Status:     p.Status,
		Completion: p.Completion,
		TotalTasks: p.TotalTasks,
		CreatedAt:  p.CreatedAt,
	}
}
