package repository

import (
	"context"
	"errors"
	"time"

	"github.com/alexanderramin/taskpilot/internal/domain"
)

var (
	// ErrNotFound is returned when a lookup matches no row.
	ErrNotFound = errors.New("not found")
	// ErrDuplicate is returned when a project name is already taken,
	// compared case-insensitively.
	ErrDuplicate = errors.New("duplicate project name")
)

type ProjectRepo interface {
	Create(ctx context.Context, p *domain.Project) error
	GetByName(ctx context.Context, name string) (*domain.Project, error)
	// FindByNamePrefix returns the project with the longest name that is a
	// case-insensitive whole-word prefix of text.
	FindByNamePrefix(ctx context.Context, text string) (*domain.Project, error)
	List(ctx context.Context) ([]domain.ProjectSummary, error)
	Search(ctx context.Context, fragment string) ([]domain.ProjectSummary, error)
	UpdateFields(ctx context.Context, name string, u *domain.UpdateFields) (*domain.Project, error)
	Delete(ctx context.Context, name string) error
}

type ConversationRepo interface {
	AddMessage(ctx context.Context, m *domain.Message) error
	// History returns the most recent limit messages, oldest first.
	History(ctx context.Context, sessionID string, limit int) ([]domain.Message, error)
	SetLastProject(ctx context.Context, sessionID, projectName string, expiresAt time.Time) error
	// LastProject returns the remembered project name, or "" when none is
	// stored or it expired before now.
	LastProject(ctx context.Context, sessionID string, now time.Time) (string, error)
	Clear(ctx context.Context, sessionID string) error
}
