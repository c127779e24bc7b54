package httpapi

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/url"
	"strings"

	"github.com/alexanderramin/taskpilot/internal/domain"
	"github.com/alexanderramin/taskpilot/internal/intelligence"
	"github.com/alexanderramin/taskpilot/internal/scheduler"
	"github.com/alexanderramin/taskpilot/internal/service"
	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

// maxBodyBytes bounds request bodies; chat messages are short.
const maxBodyBytes = 1 << 20

type errorResponse struct {
	Error string `json:"error"`
}

type parseRequest struct {
	Message string `json:"message"`
}

type parseResponse struct {
	Command *intelligence.Command `json:"data"`
	Payload *scheduler.Payload    `json:"payload,omitempty"`
}

type assignRequest struct {
	Name         string              `json:"name"`
	TotalTasks   int                 `json:"total_tasks"`
	Teams        []string            `json:"teams"`
	Members      map[string][]string `json:"members"`
	Descriptions []string            `json:"descriptions"`
}

type assignResponse struct {
	Allocations domain.Allocations `json:"allocations"`
	Payload     scheduler.Payload  `json:"payload"`
}

type projectsResponse struct {
	Projects []domain.ProjectSummary `json:"projects"`
}

type riskResponse struct {
	Project    string               `json:"project"`
	Status     domain.ProjectStatus `json:"status"`
	Completion int                  `json:"completion"`
	domain.RiskAssessment
}

type messageJSON struct {
	Role      domain.MessageRole `json:"role"`
	Content   string             `json:"content"`
	CreatedAt string             `json:"created_at"`
}

type messagesResponse struct {
	SessionID string        `json:"session_id"`
	Messages  []messageJSON `json:"messages"`
}

type healthResponse struct {
	Status   string `json:"status"`
	Store    string `json:"store"`
	Resolver string `json:"resolver"`
}

func (a *api) chat(w http.ResponseWriter, r *http.Request) {
	var req service.ChatRequest
	if !a.decode(w, r, &req) {
		return
	}
	resp, err := a.Assistant.Chat(r.Context(), req)
	if errors.Is(err, service.ErrEmptyMessage) {
		a.writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	if err != nil {
		a.internalError(w, r, "chat failed", err)
		return
	}
	a.writeJSON(w, http.StatusOK, resp)
}

// parse resolves a message without executing it. ?payload=true adds the
// export payload for commands that name a project.
func (a *api) parse(w http.ResponseWriter, r *http.Request) {
	var req parseRequest
	if !a.decode(w, r, &req) {
		return
	}
	if strings.TrimSpace(req.Message) == "" {
		a.writeError(w, http.StatusBadRequest, service.ErrEmptyMessage.Error())
		return
	}
	cmd, err := a.Resolver.Resolve(r.Context(), req.Message)
	if err != nil {
		a.internalError(w, r, "parse failed", err)
		return
	}
	out := parseResponse{Command: cmd}
	if r.URL.Query().Get("payload") == "true" && cmd.ProjectName != nil {
		p := scheduler.BuildPayload(payloadAction(cmd.Intent), cmd.Name(), cmd.Total(), cmd.Allocations)
		out.Payload = &p
	}
	a.writeJSON(w, http.StatusOK, out)
}

func (a *api) assign(w http.ResponseWriter, r *http.Request) {
	var req assignRequest
	if !a.decode(w, r, &req) {
		return
	}
	if req.TotalTasks < 0 {
		a.writeError(w, http.StatusBadRequest, "total_tasks must be non-negative")
		return
	}
	teams := req.Teams
	if len(teams) == 0 {
		teams = a.DefaultTeams
	}

	allocs, total := a.Categorizer.Assign(req.TotalTasks, teams, req.Members, req.Descriptions)
	a.writeJSON(w, http.StatusOK, assignResponse{
		Allocations: allocs,
		Payload:     scheduler.BuildPayload(scheduler.ActionCreate, req.Name, total, allocs),
	})
}

func (a *api) listProjects(w http.ResponseWriter, r *http.Request) {
	var (
		projects []domain.ProjectSummary
		err      error
	)
	if q := strings.TrimSpace(r.URL.Query().Get("q")); q != "" {
		projects, err = a.Projects.Search(r.Context(), q)
	} else {
		projects, err = a.Projects.List(r.Context())
	}
	if err != nil {
		a.internalError(w, r, "list projects failed", err)
		return
	}
	if projects == nil {
		projects = []domain.ProjectSummary{}
	}
	a.writeJSON(w, http.StatusOK, projectsResponse{Projects: projects})
}

func (a *api) projectRisk(w http.ResponseWriter, r *http.Request) {
	name := pathParam(r, "name")
	p, risk, err := a.Projects.Risk(r.Context(), name)
	if errors.Is(err, service.ErrProjectNotFound) {
		a.writeError(w, http.StatusNotFound, "project not found: "+name)
		return
	}
	if err != nil {
		a.internalError(w, r, "risk failed", err)
		return
	}
	a.writeJSON(w, http.StatusOK, riskResponse{
		Project:        p.Name,
		Status:         p.Status,
		Completion:     p.Completion,
		RiskAssessment: risk,
	})
}

func (a *api) sessionMessages(w http.ResponseWriter, r *http.Request) {
	id := pathParam(r, "id")
	history, err := a.Conversations.History(r.Context(), id)
	if err != nil {
		a.internalError(w, r, "history failed", err)
		return
	}
	out := messagesResponse{SessionID: id, Messages: make([]messageJSON, 0, len(history))}
	for _, m := range history {
		out.Messages = append(out.Messages, messageJSON{
			Role:      m.Role,
			Content:   m.Content,
			CreatedAt: m.CreatedAt.UTC().Format("2006-01-02T15:04:05Z07:00"),
		})
	}
	a.writeJSON(w, http.StatusOK, out)
}

func (a *api) clearSession(w http.ResponseWriter, r *http.Request) {
	if err := a.Conversations.Clear(r.Context(), pathParam(r, "id")); err != nil {
		a.internalError(w, r, "clear session failed", err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (a *api) health(w http.ResponseWriter, r *http.Request) {
	out := healthResponse{Status: "ok", Store: "ok", Resolver: a.ResolverMode}
	status := http.StatusOK
	if a.Ping != nil {
		if err := a.Ping(r.Context()); err != nil {
			a.Logger.Warn("store ping failed", zap.Error(err))
			out.Status, out.Store = "degraded", "unreachable"
			status = http.StatusServiceUnavailable
		}
	}
	a.writeJSON(w, status, out)
}

func payloadAction(kind intelligence.IntentKind) scheduler.PayloadAction {
	switch kind {
	case intelligence.IntentUpdateTask:
		return scheduler.ActionUpdate
	case intelligence.IntentDeleteProject:
		return scheduler.ActionDelete
	default:
		return scheduler.ActionCreate
	}
}

func pathParam(r *http.Request, key string) string {
	raw := chi.URLParam(r, key)
	if v, err := url.PathUnescape(raw); err == nil {
		return v
	}
	return raw
}

func (a *api) decode(w http.ResponseWriter, r *http.Request, v any) bool {
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	dec.DisallowUnknownFields()
	if err := dec.Decode(v); err != nil {
		a.writeError(w, http.StatusBadRequest, "invalid request body: "+err.Error())
		return false
	}
	return true
}

func (a *api) internalError(w http.ResponseWriter, r *http.Request, msg string, err error) {
	a.Logger.Error(msg, zap.Error(err), zap.String("path", r.URL.Path))
	a.writeError(w, http.StatusInternalServerError, msg)
}

func (a *api) writeError(w http.ResponseWriter, status int, msg string) {
	a.writeJSON(w, status, errorResponse{Error: msg})
}

func (a *api) writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		a.Logger.Warn("encode response", zap.Error(err))
	}
}
