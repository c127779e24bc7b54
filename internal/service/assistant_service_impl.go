package service

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"strings"
	"time"

	"github.com/alexanderramin/taskpilot/internal/domain"
	"github.com/alexanderramin/taskpilot/internal/intelligence"
	"github.com/alexanderramin/taskpilot/internal/scheduler"
	"github.com/alexanderramin/taskpilot/internal/validation"
	"github.com/alexanderramin/taskpilot/internal/vocab"
	"go.uber.org/zap"
)

// DefaultSessionID is used when a request names no session.
const DefaultSessionID = "default"

var ErrEmptyMessage = errors.New("message is empty")

var (
	pronounRe       = regexp.MustCompile(`(?i)\b(?:it|(?:that|the|this) project)\b`)
	projectPhraseRe = regexp.MustCompile(`(?i)\b(?:that|the|this) project\b`)
)

// AssistantConfig tunes the chat pipeline.
type AssistantConfig struct {
	// SuggestWhenMissing splits a new project's total across DefaultTeams
	// when the message gives no allocation.
	SuggestWhenMissing bool
	DefaultTeams       []string
	Policy             intelligence.ConfirmationPolicy
	// Categorizer builds suggested allocations. Nil uses the embedded
	// vocabulary.
	Categorizer *scheduler.Categorizer
}

type assistantService struct {
	resolver      intelligence.Resolver
	projects      ProjectService
	conversations ConversationService
	cfg           AssistantConfig
	logger        *zap.Logger
	observer      UseCaseObserver
}

func NewAssistantService(
	resolver intelligence.Resolver,
	projects ProjectService,
	conversations ConversationService,
	cfg AssistantConfig,
	logger *zap.Logger,
	observers ...UseCaseObserver,
) AssistantService {
	if logger == nil {
		logger = zap.NewNop()
	}
	if cfg.Categorizer == nil {
		cfg.Categorizer = scheduler.NewCategorizer(vocab.Default())
	}
	return &assistantService{
		resolver:      resolver,
		projects:      projects,
		conversations: conversations,
		cfg:           cfg,
		logger:        logger.Named("assistant"),
		observer:      useCaseObserverOrNoop(observers),
	}
}

// turn carries one message through the pipeline.
type turn struct {
	req      ChatRequest
	cmd      *intelligence.Command
	resp     *ChatResponse
	remember string
}

func (s *assistantService) Chat(ctx context.Context, req ChatRequest) (resp *ChatResponse, err error) {
	fields := map[string]any{}
	defer observe(ctx, s.observer, "chat", time.Now(), fields, &err)

	if req.SessionID == "" {
		req.SessionID = DefaultSessionID
	}
	req.Message = strings.TrimSpace(req.Message)
	if req.Message == "" {
		return nil, ErrEmptyMessage
	}

	if err = s.conversations.Record(ctx, req.SessionID, domain.RoleUser, req.Message); err != nil {
		return nil, fmt.Errorf("recording user message: %w", err)
	}

	var cmd *intelligence.Command
	cmd, err = s.resolver.Resolve(ctx, req.Message)
	if err != nil {
		return nil, fmt.Errorf("resolving message: %w", err)
	}
	cmd = s.resolveReference(ctx, req, cmd)

	t := &turn{
		req: req,
		cmd: cmd,
		resp: &ChatResponse{
			SessionID: req.SessionID,
			Intent:    cmd.Intent,
			Command:   cmd,
		},
	}
	if err = s.dispatch(ctx, t); err != nil {
		return nil, err
	}
	fields["intent"] = t.resp.Intent
	fields["state"] = t.resp.State

	if err = s.conversations.Record(ctx, req.SessionID, domain.RoleAssistant, t.resp.Response); err != nil {
		return nil, fmt.Errorf("recording reply: %w", err)
	}
	if t.remember != "" {
		if rerr := s.conversations.Remember(ctx, req.SessionID, t.remember); rerr != nil {
			s.logger.Warn("remembering project reference failed", zap.String("session", req.SessionID), zap.Error(rerr))
		}
	}
	return t.resp, nil
}

// resolveReference substitutes the session's last project for "it",
// "that project" and similar references. A name pulled out of a phrase like
// "the project" only yields to the reference when it names no stored
// project.
func (s *assistantService) resolveReference(ctx context.Context, req ChatRequest, cmd *intelligence.Command) *intelligence.Command {
	if !intelligence.NeedsProjectName(cmd.Intent) || !pronounRe.MatchString(req.Message) {
		return cmd
	}
	if cmd.ProjectName != nil {
		if !projectPhraseRe.MatchString(req.Message) {
			return cmd
		}
		if _, err := s.projects.Find(ctx, cmd.Name()); err == nil {
			return cmd
		}
	}

	last, err := s.conversations.LastProject(ctx, req.SessionID)
	if err != nil {
		s.logger.Warn("reading project reference failed", zap.String("session", req.SessionID), zap.Error(err))
		return cmd
	}
	if last == "" {
		return cmd
	}
	resolved := *cmd
	resolved.ProjectName = &last
	return &resolved
}

func (s *assistantService) dispatch(ctx context.Context, t *turn) error {
	state := s.cfg.Policy.Evaluate(t.cmd)
	t.resp.State = state

	switch state {
	case intelligence.StateRejected:
		t.resp.Response = replyRejected(rejectVerb(t.cmd.Intent), *t.cmd.ValidationError)
		return nil
	case intelligence.StateNeedsClarification:
		t.resp.Response = replyWhichProject
		return nil
	}

	switch t.cmd.Intent {
	case intelligence.IntentGetStatus:
		return s.status(ctx, t)
	case intelligence.IntentCreateProject:
		return s.create(ctx, t)
	case intelligence.IntentUpdateTask:
		return s.update(ctx, t)
	case intelligence.IntentListProjects:
		return s.list(ctx, t)
	case intelligence.IntentDeleteProject:
		return s.delete(ctx, t)
	case intelligence.IntentHelp:
		t.resp.Response = intelligence.FormatHelp()
		return nil
	case intelligence.IntentUnknown:
		t.resp.Response = replyUnknown
		return nil
	default:
		return fmt.Errorf("unhandled intent %q", t.cmd.Intent)
	}
}

func rejectVerb(kind intelligence.IntentKind) string {
	switch kind {
	case intelligence.IntentCreateProject:
		return "create"
	case intelligence.IntentUpdateTask:
		return "update"
	case intelligence.IntentDeleteProject:
		return "delete"
	default:
		return "act on"
	}
}

// held reports whether the command waits for confirmation, answering with
// prompt when it does.
func held(t *turn, prompt string) bool {
	if t.resp.State != intelligence.StateNeedsConfirmation {
		return false
	}
	if t.req.Confirmed {
		t.resp.State = intelligence.StateExecuted
		return false
	}
	t.resp.Response = prompt
	return true
}

// lookup finds the named project, answering "not found" itself.
func (s *assistantService) lookup(ctx context.Context, t *turn) (*domain.Project, error) {
	p, err := s.projects.Find(ctx, t.cmd.Name())
	if errors.Is(err, ErrProjectNotFound) {
		t.resp.Response = replyNotFound(t.cmd.Name())
		return nil, nil
	}
	return p, err
}

func (s *assistantService) status(ctx context.Context, t *turn) error {
	p, err := s.lookup(ctx, t)
	if err != nil || p == nil {
		return err
	}
	risk := scheduler.ComputeRisk(scheduler.RiskInputFor(p))
	t.resp.Project = p
	t.resp.Risk = &risk
	t.resp.Response = replyStatus(p, risk)
	t.remember = p.Name
	return nil
}

func (s *assistantService) create(ctx context.Context, t *turn) error {
	name := t.cmd.Name()
	if held(t, replyConfirmWrite("create", name)) {
		t.remember = name
		return nil
	}

	allocs := t.cmd.Allocations.Clone()
	suggested := false
	if len(allocs) == 0 && s.cfg.SuggestWhenMissing && t.cmd.Total() > 0 {
		allocs = s.cfg.Categorizer.Enhance(s.cfg.Categorizer.SuggestAllocation(t.cmd.Total(), s.cfg.DefaultTeams), nil)
		suggested = true
	}

	p := &domain.Project{Name: name, TotalTasks: t.cmd.Total(), Allocations: allocs}
	err := s.projects.Create(ctx, p)
	var verr *validation.Error
	switch {
	case errors.Is(err, ErrProjectExists):
		t.resp.State = intelligence.StateRejected
		t.resp.Response = fmt.Sprintf("%s already exists.", name)
		return nil
	case errors.As(err, &verr):
		t.resp.State = intelligence.StateRejected
		t.resp.Response = replyRejected("create", verr.Message)
		return nil
	case err != nil:
		return err
	}

	t.resp.Project = p
	t.resp.Response = replyCreated(p, suggested)
	t.remember = p.Name
	return nil
}

func (s *assistantService) update(ctx context.Context, t *turn) error {
	if t.cmd.UpdateFields.IsEmpty() {
		t.resp.State = intelligence.StateNeedsClarification
		t.resp.Response = fmt.Sprintf("What should I change on %s? Give a completion, status or delayed task count.", t.cmd.Name())
		t.remember = t.cmd.Name()
		return nil
	}

	p, err := s.lookup(ctx, t)
	if err != nil || p == nil {
		return err
	}
	t.remember = p.Name
	if held(t, replyConfirmWrite("update", p.Name)) {
		return nil
	}

	p, err = s.projects.Update(ctx, p.Name, t.cmd.UpdateFields)
	var verr *validation.Error
	if errors.As(err, &verr) {
		t.resp.State = intelligence.StateRejected
		t.resp.Response = replyRejected("update", verr.Message)
		return nil
	}
	if err != nil {
		return err
	}
	t.resp.Project = p
	t.resp.Response = replyUpdated(p, t.cmd.UpdateFields)
	return nil
}

func (s *assistantService) list(ctx context.Context, t *turn) error {
	list, err := s.projects.List(ctx)
	if err != nil {
		return err
	}
	t.resp.Projects = list
	t.resp.Response = replyList(list)
	return nil
}

func (s *assistantService) delete(ctx context.Context, t *turn) error {
	p, err := s.lookup(ctx, t)
	if err != nil || p == nil {
		return err
	}
	if held(t, replyConfirmDelete(p.Name)) {
		t.remember = p.Name
		return nil
	}

	if err := s.projects.Delete(ctx, p.Name); err != nil {
		if errors.Is(err, ErrProjectNotFound) {
			t.resp.Response = replyNotFound(p.Name)
			return nil
		}
		return err
	}
	t.resp.Response = replyDeleted(p.Name)
	return nil
}
