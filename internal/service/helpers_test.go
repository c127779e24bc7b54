package service

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/alexanderramin/taskpilot/internal/events"
	"github.com/alexanderramin/taskpilot/internal/intelligence"
	"github.com/alexanderramin/taskpilot/internal/repository"
	"github.com/alexanderramin/taskpilot/internal/scheduler"
	"github.com/alexanderramin/taskpilot/internal/testutil"
	"github.com/jmoiron/sqlx"
	"go.uber.org/zap"
)

const defaultTTL = time.Hour

type recordingPublisher struct {
	mu       sync.Mutex
	payloads []scheduler.Payload
	err      error
}

func (p *recordingPublisher) Publish(_ context.Context, payload scheduler.Payload) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.err != nil {
		return p.err
	}
	p.payloads = append(p.payloads, payload)
	return nil
}

func (p *recordingPublisher) Close() error { return nil }

func (p *recordingPublisher) actions() []scheduler.PayloadAction {
	p.mu.Lock()
	defer p.mu.Unlock()
	out := make([]scheduler.PayloadAction, len(p.payloads))
	for i, pl := range p.payloads {
		out[i] = pl.Action
	}
	return out
}

var _ events.Publisher = (*recordingPublisher)(nil)

// failingResolver always errors, standing in for a broken resolver.
type failingResolver struct{}

func (failingResolver) Resolve(context.Context, string) (*intelligence.Command, error) {
	return nil, errors.New("resolver down")
}

type fixture struct {
	db            *sqlx.DB
	publisher     *recordingPublisher
	projects      ProjectService
	conversations ConversationService
	assistant     AssistantService
}

func defaultAssistantConfig() AssistantConfig {
	return AssistantConfig{
		SuggestWhenMissing: true,
		DefaultTeams:       []string{"frontend", "backend", "testing"},
		Policy:             intelligence.DefaultConfirmationPolicy(),
	}
}

func newFixture(t *testing.T, cfg AssistantConfig, observers ...UseCaseObserver) *fixture {
	t.Helper()
	database := testutil.NewTestDB(t)
	pub := &recordingPublisher{}

	projects := NewProjectService(
		repository.NewSQLProjectRepo(database),
		testutil.NewTestUoW(database),
		pub,
		zap.NewNop(),
		observers...,
	)
	conversations := NewConversationService(repository.NewSQLConversationRepo(database), defaultTTL, 20)
	assistant := NewAssistantService(intelligence.DefaultParser(), projects, conversations, cfg, zap.NewNop(), observers...)

	return &fixture{
		db:            database,
		publisher:     pub,
		projects:      projects,
		conversations: conversations,
		assistant:     assistant,
	}
}
