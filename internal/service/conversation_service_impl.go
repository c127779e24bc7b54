package service

import (
	"context"
	"time"

	"github.com/alexanderramin/taskpilot/internal/domain"
	"github.com/alexanderramin/taskpilot/internal/repository"
)

type conversationService struct {
	repo         repository.ConversationRepo
	ttl          time.Duration
	historyLimit int
	now          func() time.Time
}

// NewConversationService keeps project references for ttl and returns at
// most historyLimit messages per session.
func NewConversationService(repo repository.ConversationRepo, ttl time.Duration, historyLimit int) ConversationService {
	return &conversationService{
		repo:         repo,
		ttl:          ttl,
		historyLimit: historyLimit,
		now:          func() time.Time { return time.Now().UTC() },
	}
}

func (s *conversationService) Record(ctx context.Context, sessionID string, role domain.MessageRole, content string) error {
	return s.repo.AddMessage(ctx, &domain.Message{
		SessionID: sessionID,
		Role:      role,
		Content:   content,
		CreatedAt: s.now(),
	})
}

func (s *conversationService) History(ctx context.Context, sessionID string) ([]domain.Message, error) {
	return s.repo.History(ctx, sessionID, s.historyLimit)
}

func (s *conversationService) Remember(ctx context.Context, sessionID, projectName string) error {
	return s.repo.SetLastProject(ctx, sessionID, projectName, s.now().Add(s.ttl))
}

func (s *conversationService) LastProject(ctx context.Context, sessionID string) (string, error) {
	return s.repo.LastProject(ctx, sessionID, s.now())
}

func (s *conversationService) Clear(ctx context.Context, sessionID string) error {
	return s.repo.Clear(ctx, sessionID)
}
