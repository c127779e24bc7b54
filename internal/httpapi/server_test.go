package httpapi

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"net"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/alexanderramin/taskpilot/internal/config"
	"github.com/alexanderramin/taskpilot/internal/domain"
	"github.com/alexanderramin/taskpilot/internal/events"
	"github.com/alexanderramin/taskpilot/internal/intelligence"
	"github.com/alexanderramin/taskpilot/internal/repository"
	"github.com/alexanderramin/taskpilot/internal/scheduler"
	"github.com/alexanderramin/taskpilot/internal/service"
	"github.com/alexanderramin/taskpilot/internal/testutil"
	"github.com/alexanderramin/taskpilot/internal/vocab"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

const createAlpha = "Create Project Alpha with 10 tasks, 7 to frontend (John, Sarah), 3 to backend"

type testServer struct {
	handler  http.Handler
	projects service.ProjectService
}

func newTestServer(t *testing.T, mutate ...func(*Deps)) *testServer {
	t.Helper()
	database := testutil.NewTestDB(t)
	reg := prometheus.NewRegistry()
	metrics := service.NewMetrics(reg)

	projects := service.NewProjectService(
		repository.NewSQLProjectRepo(database),
		testutil.NewTestUoW(database),
		events.NoopPublisher{},
		zap.NewNop(),
		metrics,
	)
	conversations := service.NewConversationService(repository.NewSQLConversationRepo(database), time.Hour, 20)
	resolver := intelligence.DefaultParser()
	assistant := service.NewAssistantService(resolver, projects, conversations, service.AssistantConfig{
		SuggestWhenMissing: true,
		DefaultTeams:       []string{"frontend", "backend", "testing"},
		Policy:             intelligence.DefaultConfirmationPolicy(),
	}, zap.NewNop(), metrics)

	deps := Deps{
		Assistant:     assistant,
		Projects:      projects,
		Conversations: conversations,
		Resolver:      resolver,
		Ping:          database.PingContext,
		ResolverMode:  "rules",
		DefaultTeams:  []string{"frontend", "backend", "testing"},
		Gatherer:      reg,
		Logger:        zap.NewNop(),
	}
	for _, m := range mutate {
		m(&deps)
	}
	cfg := config.HTTPConfig{AllowedOrigins: []string{"http://localhost:3000"}, RequestTimeout: 5 * time.Second}
	return &testServer{handler: NewRouter(cfg, deps), projects: projects}
}

func (s *testServer) do(t *testing.T, method, path string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var rdr io.Reader
	if body != nil {
		switch b := body.(type) {
		case string:
			rdr = strings.NewReader(b)
		default:
			raw, err := json.Marshal(b)
			require.NoError(t, err)
			rdr = bytes.NewReader(raw)
		}
	}
	req := httptest.NewRequest(method, path, rdr)
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	s.handler.ServeHTTP(rec, req)
	return rec
}

func decodeBody[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &v), rec.Body.String())
	return v
}

func TestChat_CreateThenStatus(t *testing.T) {
	s := newTestServer(t)

	rec := s.do(t, http.MethodPost, "/chat", service.ChatRequest{SessionID: "web", Message: createAlpha})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	created := decodeBody[service.ChatResponse](t, rec)
	assert.Equal(t, intelligence.IntentCreateProject, created.Intent)
	assert.Equal(t, intelligence.StateExecuted, created.State)
	assert.Equal(t, "web", created.SessionID)

	rec = s.do(t, http.MethodPost, "/chat", service.ChatRequest{SessionID: "web", Message: "How is it doing?"})
	require.Equal(t, http.StatusOK, rec.Code)
	status := decodeBody[service.ChatResponse](t, rec)
	assert.Equal(t, intelligence.IntentGetStatus, status.Intent)
	require.NotNil(t, status.Risk)
	assert.Equal(t, domain.RiskLow, status.Risk.Level)
}

func TestChat_DeleteNeedsConfirm(t *testing.T) {
	s := newTestServer(t)
	s.do(t, http.MethodPost, "/chat", service.ChatRequest{Message: createAlpha})

	rec := s.do(t, http.MethodPost, "/chat", `{"message":"Delete Project Alpha"}`)
	held := decodeBody[service.ChatResponse](t, rec)
	assert.Equal(t, intelligence.StateNeedsConfirmation, held.State)

	rec = s.do(t, http.MethodPost, "/chat", `{"message":"Delete Project Alpha","confirm":true}`)
	deleted := decodeBody[service.ChatResponse](t, rec)
	assert.Equal(t, intelligence.StateExecuted, deleted.State)

	_, err := s.projects.Find(context.Background(), "Project Alpha")
	assert.ErrorIs(t, err, service.ErrProjectNotFound)
}

func TestChat_BadRequests(t *testing.T) {
	s := newTestServer(t)

	tests := []struct {
		name string
		body string
	}{
		{"malformed json", `{"message":`},
		{"empty message", `{"message":"   "}`},
		{"unknown field", `{"msg":"hi"}`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := s.do(t, http.MethodPost, "/chat", tt.body)
			assert.Equal(t, http.StatusBadRequest, rec.Code)
			assert.NotEmpty(t, decodeBody[errorResponse](t, rec).Error)
		})
	}
}

func TestParse_ReturnsCommandWithoutExecuting(t *testing.T) {
	s := newTestServer(t)

	rec := s.do(t, http.MethodPost, "/v1/parse?payload=true", parseRequest{Message: createAlpha})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	out := decodeBody[parseResponse](t, rec)
	require.NotNil(t, out.Command)
	assert.Equal(t, intelligence.IntentCreateProject, out.Command.Intent)
	assert.Equal(t, "Project Alpha", out.Command.Name())
	assert.Equal(t, 10, out.Command.Total())
	assert.Equal(t, []string{"frontend", "backend"}, out.Command.Allocations.Teams())

	require.NotNil(t, out.Payload)
	assert.Equal(t, scheduler.ActionCreate, out.Payload.Action)
	require.Len(t, out.Payload.Project.Teams, 2)
	assert.Equal(t, []scheduler.PayloadMember{
		{Name: "John", AssignedTasks: 4},
		{Name: "Sarah", AssignedTasks: 3},
	}, out.Payload.Project.Teams[0].Members)

	list, err := s.projects.List(context.Background())
	require.NoError(t, err)
	assert.Empty(t, list)
}

func TestParse_NoPayloadByDefault(t *testing.T) {
	s := newTestServer(t)
	rec := s.do(t, http.MethodPost, "/v1/parse", parseRequest{Message: "list all projects"})
	require.Equal(t, http.StatusOK, rec.Code)
	out := decodeBody[parseResponse](t, rec)
	assert.Equal(t, intelligence.IntentListProjects, out.Command.Intent)
	assert.Nil(t, out.Payload)
}

func TestAssign(t *testing.T) {
	s := newTestServer(t)

	t.Run("default teams", func(t *testing.T) {
		rec := s.do(t, http.MethodPost, "/v1/assign", assignRequest{Name: "Gamma", TotalTasks: 10})
		require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
		out := decodeBody[assignResponse](t, rec)
		assert.Equal(t, []string{"frontend", "backend", "testing"}, out.Allocations.Teams())
		assert.Equal(t, 10, out.Allocations.Sum())
		assert.Equal(t, 10, out.Payload.Project.TotalTasks)
	})

	t.Run("members are distributed", func(t *testing.T) {
		rec := s.do(t, http.MethodPost, "/v1/assign", assignRequest{
			TotalTasks: 5,
			Teams:      []string{"backend"},
			Members:    map[string][]string{"backend": {"Ann", "Bob"}},
		})
		require.Equal(t, http.StatusOK, rec.Code)
		out := decodeBody[assignResponse](t, rec)
		ta, ok := out.Allocations.Get("backend")
		require.True(t, ok)
		assert.Equal(t, map[string]int{"Ann": 3, "Bob": 2}, ta.Assignments)
	})

	t.Run("descriptions drive the teams", func(t *testing.T) {
		rec := s.do(t, http.MethodPost, "/v1/assign", assignRequest{
			TotalTasks:   3,
			Descriptions: []string{"Build login UI", "Write API endpoint", "Add unit tests"},
		})
		require.Equal(t, http.StatusOK, rec.Code)
		out := decodeBody[assignResponse](t, rec)
		assert.Equal(t, 3, out.Allocations.Sum())
		assert.Equal(t, 3, out.Payload.Project.TotalTasks)
	})

	t.Run("negative total", func(t *testing.T) {
		rec := s.do(t, http.MethodPost, "/v1/assign", assignRequest{TotalTasks: -1})
		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})
}

func TestAssign_ConfiguredVocabulary(t *testing.T) {
	v, err := vocab.Parse([]byte(`
extraction_teams: [ops, web]
categories:
  - team: ops
    keywords: [deploy]
  - team: web
    keywords: [page]
`))
	require.NoError(t, err)
	s := newTestServer(t, func(d *Deps) { d.Categorizer = scheduler.NewCategorizer(v) })

	rec := s.do(t, http.MethodPost, "/v1/assign", assignRequest{
		Descriptions: []string{"Deploy the service", "Landing page", "Pricing page"},
	})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	out := decodeBody[assignResponse](t, rec)
	assert.Equal(t, []string{"ops", "web"}, out.Allocations.Teams())
	assert.Equal(t, 3, out.Payload.Project.TotalTasks)
}

func TestProjects_ListAndSearch(t *testing.T) {
	s := newTestServer(t)

	rec := s.do(t, http.MethodGet, "/v1/projects", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"projects":[]}`, rec.Body.String())

	ctx := context.Background()
	require.NoError(t, s.projects.Create(ctx, testutil.NewTestProject("Project Alpha")))
	require.NoError(t, s.projects.Create(ctx, testutil.NewTestProject("Website Redesign")))

	out := decodeBody[projectsResponse](t, s.do(t, http.MethodGet, "/v1/projects", nil))
	assert.Len(t, out.Projects, 2)

	out = decodeBody[projectsResponse](t, s.do(t, http.MethodGet, "/v1/projects?q=alpha", nil))
	require.Len(t, out.Projects, 1)
	assert.Equal(t, "Project Alpha", out.Projects[0].Name)
}

func TestProjectRisk(t *testing.T) {
	s := newTestServer(t)
	require.NoError(t, s.projects.Create(context.Background(),
		testutil.NewTestProject("Project Alpha", testutil.WithCompletion(10), testutil.WithDelayedTasks(6))))

	rec := s.do(t, http.MethodGet, "/v1/projects/Project%20Alpha/risk", nil)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	out := decodeBody[riskResponse](t, rec)
	assert.Equal(t, "Project Alpha", out.Project)
	assert.Equal(t, 10, out.Completion)
	assert.NotEmpty(t, out.Factors)

	rec = s.do(t, http.MethodGet, "/v1/projects/Nope/risk", nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestSessions_MessagesAndClear(t *testing.T) {
	s := newTestServer(t)
	s.do(t, http.MethodPost, "/chat", service.ChatRequest{SessionID: "abc", Message: "help"})

	out := decodeBody[messagesResponse](t, s.do(t, http.MethodGet, "/v1/sessions/abc/messages", nil))
	require.Len(t, out.Messages, 2)
	assert.Equal(t, domain.RoleUser, out.Messages[0].Role)
	assert.Equal(t, "help", out.Messages[0].Content)
	assert.Equal(t, domain.RoleAssistant, out.Messages[1].Role)

	rec := s.do(t, http.MethodDelete, "/v1/sessions/abc", nil)
	assert.Equal(t, http.StatusNoContent, rec.Code)

	out = decodeBody[messagesResponse](t, s.do(t, http.MethodGet, "/v1/sessions/abc/messages", nil))
	assert.Empty(t, out.Messages)
}

func TestHealth(t *testing.T) {
	t.Run("ok", func(t *testing.T) {
		s := newTestServer(t)
		rec := s.do(t, http.MethodGet, "/health", nil)
		assert.Equal(t, http.StatusOK, rec.Code)
		assert.JSONEq(t, `{"status":"ok","store":"ok","resolver":"rules"}`, rec.Body.String())
	})

	t.Run("store down", func(t *testing.T) {
		s := newTestServer(t, func(d *Deps) {
			d.Ping = func(context.Context) error { return errors.New("closed") }
		})
		rec := s.do(t, http.MethodGet, "/health", nil)
		assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
		assert.JSONEq(t, `{"status":"degraded","store":"unreachable","resolver":"rules"}`, rec.Body.String())
	})
}

func TestMetrics_ExposesUseCaseCounters(t *testing.T) {
	s := newTestServer(t)
	s.do(t, http.MethodPost, "/chat", service.ChatRequest{Message: createAlpha})

	rec := s.do(t, http.MethodGet, "/metrics", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "taskpilot_use_case_total")
	assert.Contains(t, rec.Body.String(), `taskpilot_chat_intents_total{intent="CREATE_PROJECT",state="executed"} 1`)
}

func TestCORS_Preflight(t *testing.T) {
	s := newTestServer(t)
	req := httptest.NewRequest(http.MethodOptions, "/chat", nil)
	req.Header.Set("Origin", "http://localhost:3000")
	req.Header.Set("Access-Control-Request-Method", http.MethodPost)
	rec := httptest.NewRecorder()
	s.handler.ServeHTTP(rec, req)

	assert.Equal(t, "http://localhost:3000", rec.Header().Get("Access-Control-Allow-Origin"))
}

func TestRecoverer_TurnsPanicInto500(t *testing.T) {
	s := newTestServer(t, func(d *Deps) { d.Resolver = panicResolver{} })
	rec := s.do(t, http.MethodPost, "/v1/parse", parseRequest{Message: "hi"})
	assert.Equal(t, http.StatusInternalServerError, rec.Code)
}

type panicResolver struct{}

func (panicResolver) Resolve(context.Context, string) (*intelligence.Command, error) {
	panic("boom")
}

func TestServe_GracefulShutdown(t *testing.T) {
	s := newTestServer(t)
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- Serve(ctx, ln, s.handler, zap.NewNop()) }()

	client := &http.Client{Transport: &http.Transport{DisableKeepAlives: true}, Timeout: 5 * time.Second}
	resp, err := client.Get("http://" + ln.Addr().String() + "/health")
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	cancel()
	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(10 * time.Second):
		t.Fatal("server did not shut down")
	}
}
