package service

import (
	"context"

	"github.com/alexanderramin/taskpilot/internal/domain"
	"github.com/alexanderramin/taskpilot/internal/intelligence"
)

type ProjectService interface {
	Create(ctx context.Context, p *domain.Project) error
	// Find looks a project up by exact name, then by the longest stored
	// name that prefixes text.
	Find(ctx context.Context, text string) (*domain.Project, error)
	List(ctx context.Context) ([]domain.ProjectSummary, error)
	Search(ctx context.Context, fragment string) ([]domain.ProjectSummary, error)
	Update(ctx context.Context, name string, u *domain.UpdateFields) (*domain.Project, error)
	Delete(ctx context.Context, name string) error
	Risk(ctx context.Context, name string) (*domain.Project, domain.RiskAssessment, error)
}

type ConversationService interface {
	Record(ctx context.Context, sessionID string, role domain.MessageRole, content string) error
	History(ctx context.Context, sessionID string) ([]domain.Message, error)
	Remember(ctx context.Context, sessionID, projectName string) error
	LastProject(ctx context.Context, sessionID string) (string, error)
	Clear(ctx context.Context, sessionID string) error
}

type AssistantService interface {
	Chat(ctx context.Context, req ChatRequest) (*ChatResponse, error)
}

// ChatRequest is one user turn.
type ChatRequest struct {
	SessionID string `json:"session_id"`
	Message   string `json:"message"`
	// Confirmed approves a command that the confirmation policy holds back.
	Confirmed bool `json:"confirm"`
}

// ChatResponse is the assistant's answer and everything it acted on.
type ChatResponse struct {
	SessionID string                      `json:"session_id"`
	Intent    intelligence.IntentKind     `json:"intent"`
	State     intelligence.ExecutionState `json:"state"`
	Command   *intelligence.Command       `json:"data"`
	Response  string                      `json:"response"`
	Project   *domain.Project             `json:"project,omitempty"`
	Risk      *domain.RiskAssessment      `json:"risk,omitempty"`
	Projects  []domain.ProjectSummary     `json:"projects,omitempty"`
}
