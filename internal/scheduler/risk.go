package scheduler

import (
	"fmt"

	"github.com/alexanderramin/taskpilot/internal/domain"
)

const (
	DelayedTaskWeight      = 10
	LowCompletionPenalty   = 20
	LowCompletionThreshold = 20
	MaxRiskScore           = 100
	HighRiskThreshold      = 50
	MediumRiskThreshold    = 20
)

type RiskInput struct {
	Status       domain.ProjectStatus
	Completion   int
	DelayedTasks int
}

// RiskInputFor reads the scoring inputs off a stored project.
func RiskInputFor(p *domain.Project) RiskInput {
	return RiskInput{
		Status:       p.Status,
		Completion:   p.Completion,
		DelayedTasks: p.DelayedTasks,
	}
}

// ComputeRisk scores delay and completion additively: 10 points per delayed
// task, plus 20 when an in-progress project is under 20% complete, capped at
// 100.
func ComputeRisk(input RiskInput) domain.RiskAssessment {
	score := 0
	factors := []string{}

	if input.DelayedTasks > 0 {
		// Saturate before multiplying so huge counts cannot overflow.
		if input.DelayedTasks >= MaxRiskScore/DelayedTaskWeight {
			score = MaxRiskScore
		} else {
			score += input.DelayedTasks * DelayedTaskWeight
		}
		factors = append(factors, fmt.Sprintf("%d delayed tasks", input.DelayedTasks))
	}

	if input.Status == domain.StatusInProgress && input.Completion < LowCompletionThreshold {
		score += LowCompletionPenalty
		factors = append(factors, "Low completion rate (<20%)")
	}

	if score > MaxRiskScore {
		score = MaxRiskScore
	}

	level := domain.RiskLow
	switch {
	case score >= HighRiskThreshold:
		level = domain.RiskHigh
	case score >= MediumRiskThreshold:
		level = domain.RiskMedium
	}

	return domain.RiskAssessment{Score: score, Level: level, Factors: factors}
}
