package service

import (
	"context"
	"errors"
	"testing"

	"github.com/alexanderramin/taskpilot/internal/domain"
	"github.com/alexanderramin/taskpilot/internal/intelligence"
	"github.com/alexanderramin/taskpilot/internal/repository"
	"github.com/alexanderramin/taskpilot/internal/scheduler"
	"github.com/alexanderramin/taskpilot/internal/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func chat(t *testing.T, a AssistantService, session, msg string) *ChatResponse {
	t.Helper()
	resp, err := a.Chat(context.Background(), ChatRequest{SessionID: session, Message: msg})
	require.NoError(t, err)
	return resp
}

const createAlpha = "Create Project Alpha with 10 tasks, 7 to frontend (John, Sarah), 3 to backend"

func TestAssistant_ProjectLifecycle(t *testing.T) {
	f := newFixture(t, defaultAssistantConfig())
	ctx := context.Background()

	created := chat(t, f.assistant, "s1", createAlpha)
	assert.Equal(t, intelligence.IntentCreateProject, created.Intent)
	assert.Equal(t, intelligence.StateExecuted, created.State)
	assert.Equal(t, "Created Project Alpha with 10 tasks. Teams: frontend 7 (John 4, Sarah 3), backend 3.", created.Response)
	require.NotNil(t, created.Project)

	status := chat(t, f.assistant, "s1", "How is Project Alpha doing?")
	assert.Equal(t, intelligence.IntentGetStatus, status.Intent)
	require.NotNil(t, status.Risk)
	assert.Equal(t, domain.RiskLow, status.Risk.Level)
	assert.Contains(t, status.Response, "Project Alpha is Created, 0% complete across 10 tasks. Risk is LOW (0/100).")

	updated := chat(t, f.assistant, "s1", "Update it to 75% completion")
	assert.Equal(t, intelligence.IntentUpdateTask, updated.Intent)
	assert.Equal(t, "Updated Project Alpha: completion 75%.", updated.Response)
	assert.Equal(t, 75, updated.Project.Completion)

	list := chat(t, f.assistant, "s1", "List all projects")
	assert.Equal(t, "You have 1 project:\n- Project Alpha (Created, 75%)", list.Response)
	assert.Len(t, list.Projects, 1)

	held := chat(t, f.assistant, "s1", "Delete Project Alpha")
	assert.Equal(t, intelligence.StateNeedsConfirmation, held.State)
	assert.Equal(t, "Are you sure you want to delete Project Alpha? Confirm to proceed.", held.Response)
	_, err := f.projects.Find(ctx, "Project Alpha")
	require.NoError(t, err, "nothing is deleted before confirmation")

	deleted, err := f.assistant.Chat(ctx, ChatRequest{SessionID: "s1", Message: "Delete Project Alpha", Confirmed: true})
	require.NoError(t, err)
	assert.Equal(t, intelligence.StateExecuted, deleted.State)
	assert.Equal(t, "Deleted Project Alpha.", deleted.Response)

	assert.Equal(t, []scheduler.PayloadAction{
		scheduler.ActionCreate, scheduler.ActionUpdate, scheduler.ActionDelete,
	}, f.publisher.actions())

	history, err := f.conversations.History(ctx, "s1")
	require.NoError(t, err)
	assert.Len(t, history, 12)
	assert.Equal(t, domain.RoleUser, history[0].Role)
	assert.Equal(t, domain.RoleAssistant, history[1].Role)
}

func TestAssistant_PronounReferences(t *testing.T) {
	f := newFixture(t, defaultAssistantConfig())
	chat(t, f.assistant, "s1", createAlpha)
	chat(t, f.assistant, "s1", "Create Project Beta with 4 tasks")

	tests := []struct {
		name string
		msg  string
	}{
		{"bare it", "How is it doing?"},
		{"the project", "How is the project doing?"},
		{"that project", "What's the status of that project"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resp := chat(t, f.assistant, "s1", tt.msg)
			require.NotNil(t, resp.Project, resp.Response)
			assert.Equal(t, "Project Beta", resp.Project.Name)
		})
	}
}

func TestAssistant_PronounDoesNotOverrideStoredName(t *testing.T) {
	f := newFixture(t, defaultAssistantConfig())
	chat(t, f.assistant, "s1", createAlpha)
	chat(t, f.assistant, "s1", "Create Project Beta with 4 tasks")

	resp := chat(t, f.assistant, "s1", "Tell me about the project Alpha")
	require.NotNil(t, resp.Project)
	assert.Equal(t, "Project Alpha", resp.Project.Name)
}

func TestAssistant_SessionsAreIsolated(t *testing.T) {
	f := newFixture(t, defaultAssistantConfig())
	chat(t, f.assistant, "s1", createAlpha)

	resp := chat(t, f.assistant, "s2", "How is it doing?")
	assert.Equal(t, intelligence.StateNeedsClarification, resp.State)
	assert.Equal(t, "Which project are you referring to?", resp.Response)
}

func TestAssistant_StatusNotFound(t *testing.T) {
	f := newFixture(t, defaultAssistantConfig())

	resp := chat(t, f.assistant, "s1", "Tell me about Project Zeta")
	assert.Equal(t, "I couldn't find any data for Project Zeta.", resp.Response)
	assert.Nil(t, resp.Project)
}

func TestAssistant_CreateRejected(t *testing.T) {
	f := newFixture(t, defaultAssistantConfig())

	resp := chat(t, f.assistant, "s1", "Create Project Beta with 10 tasks, 3 to frontend, 3 to backend")
	assert.Equal(t, intelligence.StateRejected, resp.State)
	assert.Contains(t, resp.Response, "I can't create that project: ")
	assert.Contains(t, resp.Response, "mismatch")
	assert.Empty(t, f.publisher.actions())
}

func TestAssistant_CreateDuplicate(t *testing.T) {
	f := newFixture(t, defaultAssistantConfig())
	chat(t, f.assistant, "s1", createAlpha)

	resp := chat(t, f.assistant, "s1", createAlpha)
	assert.Equal(t, intelligence.StateRejected, resp.State)
	assert.Equal(t, "Project Alpha already exists.", resp.Response)
}

func TestAssistant_SuggestsAllocationWhenMissing(t *testing.T) {
	f := newFixture(t, defaultAssistantConfig())

	resp := chat(t, f.assistant, "s1", "Create Project Gamma with 10 tasks")
	assert.Equal(t, "Created Project Gamma with 10 tasks. No split was given, so I suggested: frontend 4, backend 3, testing 3.", resp.Response)
	assert.Equal(t, []string{"frontend", "backend", "testing"}, resp.Project.Allocations.Teams())
	assert.Empty(t, resp.Command.Allocations, "the resolved command is not modified")
}

func TestAssistant_NoSuggestionWhenDisabled(t *testing.T) {
	cfg := defaultAssistantConfig()
	cfg.SuggestWhenMissing = false
	f := newFixture(t, cfg)

	resp := chat(t, f.assistant, "s1", "Create Project Gamma with 10 tasks")
	assert.Equal(t, "Created Project Gamma with 10 tasks.", resp.Response)
	assert.Empty(t, resp.Project.Allocations)
}

func TestAssistant_ConfirmWritesPolicy(t *testing.T) {
	cfg := defaultAssistantConfig()
	cfg.Policy = intelligence.ConfirmationPolicy{ConfirmWrites: true}
	f := newFixture(t, cfg)
	ctx := context.Background()

	held := chat(t, f.assistant, "s1", createAlpha)
	assert.Equal(t, intelligence.StateNeedsConfirmation, held.State)
	assert.Equal(t, "Ready to create Project Alpha. Confirm to proceed.", held.Response)
	_, err := f.projects.Find(ctx, "Project Alpha")
	assert.True(t, errors.Is(err, ErrProjectNotFound))

	done, err := f.assistant.Chat(ctx, ChatRequest{SessionID: "s1", Message: createAlpha, Confirmed: true})
	require.NoError(t, err)
	assert.Equal(t, intelligence.StateExecuted, done.State)
	assert.NotNil(t, done.Project)
}

func TestAssistant_UpdateNeedsFields(t *testing.T) {
	f := newFixture(t, defaultAssistantConfig())
	chat(t, f.assistant, "s1", createAlpha)

	resp := chat(t, f.assistant, "s1", "Update Project Alpha")
	assert.Equal(t, intelligence.StateNeedsClarification, resp.State)
	assert.Contains(t, resp.Response, "What should I change on Project Alpha?")
}

func TestAssistant_UpdateRejectsOutOfRange(t *testing.T) {
	f := newFixture(t, defaultAssistantConfig())
	chat(t, f.assistant, "s1", createAlpha)

	resp := chat(t, f.assistant, "s1", "Update Project Alpha to 150% complete")
	assert.Equal(t, intelligence.StateRejected, resp.State)
	assert.Equal(t, "I can't update that project: Completion must be an integer between 0 and 100.", resp.Response)
}

func TestAssistant_FixedReplies(t *testing.T) {
	f := newFixture(t, defaultAssistantConfig())

	unknown := chat(t, f.assistant, "", "The weather is nice")
	assert.Equal(t, intelligence.IntentUnknown, unknown.Intent)
	assert.Equal(t, "I'm not sure what you mean. Try asking for project status or creating a project.", unknown.Response)
	assert.Equal(t, DefaultSessionID, unknown.SessionID)

	help := chat(t, f.assistant, "", "help")
	assert.Equal(t, intelligence.FormatHelp(), help.Response)

	empty := chat(t, f.assistant, "", "List all projects")
	assert.Equal(t, replyNoProjects, empty.Response)
}

func TestAssistant_Errors(t *testing.T) {
	f := newFixture(t, defaultAssistantConfig())

	_, err := f.assistant.Chat(context.Background(), ChatRequest{Message: "   "})
	assert.True(t, errors.Is(err, ErrEmptyMessage))

	database := testutil.NewTestDB(t)
	broken := NewAssistantService(failingResolver{}, f.projects,
		NewConversationService(repository.NewSQLConversationRepo(database), defaultTTL, 10),
		defaultAssistantConfig(), zap.NewNop())
	_, err = broken.Chat(context.Background(), ChatRequest{Message: "help"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "resolver down")
}
