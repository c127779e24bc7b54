package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/alexanderramin/taskpilot/internal/db"
	"github.com/alexanderramin/taskpilot/internal/domain"
	"github.com/alexanderramin/taskpilot/internal/events"
	"github.com/alexanderramin/taskpilot/internal/repository"
	"github.com/alexanderramin/taskpilot/internal/scheduler"
	"github.com/alexanderramin/taskpilot/internal/validation"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

var (
	ErrProjectExists   = errors.New("project already exists")
	ErrProjectNotFound = errors.New("project not found")
)

type projectService struct {
	projects  repository.ProjectRepo
	uow       db.UnitOfWork
	publisher events.Publisher
	logger    *zap.Logger
	observer  UseCaseObserver
}

func NewProjectService(
	projects repository.ProjectRepo,
	uow db.UnitOfWork,
	publisher events.Publisher,
	logger *zap.Logger,
	observers ...UseCaseObserver,
) ProjectService {
	if publisher == nil {
		publisher = events.NoopPublisher{}
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &projectService{
		projects:  projects,
		uow:       uow,
		publisher: publisher,
		logger:    logger.Named("projects"),
		observer:  useCaseObserverOrNoop(observers),
	}
}

func (s *projectService) Create(ctx context.Context, p *domain.Project) (err error) {
	defer observe(ctx, s.observer, "create-project", time.Now(), map[string]any{"project": p.Name}, &err)

	total := p.TotalTasks
	if err = validation.ValidateProjectCreation(p.Name, &total, p.Allocations); err != nil {
		return err
	}

	if p.ID == "" {
		p.ID = uuid.New().String()
	}
	now := time.Now().UTC()
	p.Name = strings.TrimSpace(p.Name)
	p.CreatedAt = now
	p.UpdatedAt = now
	if p.Status == "" {
		p.Status = domain.StatusCreated
	}

	err = s.uow.WithinTx(ctx, func(ctx context.Context, tx db.DBTX) error {
		return repository.NewSQLProjectRepo(tx).Create(ctx, p)
	})
	if errors.Is(err, repository.ErrDuplicate) {
		return fmt.Errorf("%s: %w", p.Name, ErrProjectExists)
	}
	if err != nil {
		return err
	}

	s.publish(ctx, scheduler.BuildPayload(scheduler.ActionCreate, p.Name, p.TotalTasks, p.Allocations))
	return nil
}

func (s *projectService) Find(ctx context.Context, text string) (*domain.Project, error) {
	p, err := s.projects.GetByName(ctx, text)
	if errors.Is(err, repository.ErrNotFound) {
		p, err = s.projects.FindByNamePrefix(ctx, text)
	}
	return p, notFound(err)
}

func (s *projectService) List(ctx context.Context) ([]domain.ProjectSummary, error) {
	return s.projects.List(ctx)
}

func (s *projectService) Search(ctx context.Context, fragment string) ([]domain.ProjectSummary, error) {
	return s.projects.Search(ctx, fragment)
}

func (s *projectService) Update(ctx context.Context, name string, u *domain.UpdateFields) (p *domain.Project, err error) {
	defer observe(ctx, s.observer, "update-project", time.Now(), map[string]any{"project": name}, &err)

	if u.IsEmpty() {
		return nil, &validation.Error{Field: "update_fields", Message: "Nothing to update: give a completion, status or delayed task count."}
	}
	if err = validation.ValidateProjectUpdate(u); err != nil {
		return nil, err
	}

	p, err = s.projects.UpdateFields(ctx, name, u)
	if err != nil {
		return nil, notFound(err)
	}
	s.publish(ctx, scheduler.BuildPayload(scheduler.ActionUpdate, p.Name, p.TotalTasks, p.Allocations))
	return p, nil
}

func (s *projectService) Delete(ctx context.Context, name string) (err error) {
	defer observe(ctx, s.observer, "delete-project", time.Now(), map[string]any{"project": name}, &err)

	if err = notFound(s.projects.Delete(ctx, name)); err != nil {
		return err
	}
	s.publish(ctx, scheduler.BuildPayload(scheduler.ActionDelete, name, 0, nil))
	return nil
}

func (s *projectService) Risk(ctx context.Context, name string) (*domain.Project, domain.RiskAssessment, error) {
	p, err := s.Find(ctx, name)
	if err != nil {
		return nil, domain.RiskAssessment{}, err
	}
	return p, scheduler.ComputeRisk(scheduler.RiskInputFor(p)), nil
}

// publish is best effort; a broker outage never fails a write that has
// already committed.
func (s *projectService) publish(ctx context.Context, payload scheduler.Payload) {
	if err := s.publisher.Publish(ctx, payload); err != nil {
		s.logger.Warn("publishing project event failed",
			zap.String("action", string(payload.Action)),
			zap.String("project", payload.Project.Name),
			zap.Error(err))
	}
}

// notFound maps the repository sentinel onto the service one.
func notFound(err error) error {
	if errors.Is(err, repository.ErrNotFound) {
		return fmt.Errorf("%w: %v", ErrProjectNotFound, err)
	}
	return err
}
