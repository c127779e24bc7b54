package intelligence

import (
	"context"
	"fmt"
	"strings"

	"github.com/alexanderramin/taskpilot/internal/domain"
	"github.com/alexanderramin/taskpilot/internal/llm"
	"github.com/alexanderramin/taskpilot/internal/vocab"
	"go.uber.org/zap"
)

// LLMResolver parses messages with a language model and falls back to the
// deterministic Parser when the model fails, times out or returns output
// that does not fit the Command schema.
type LLMResolver struct {
	client     llm.LLMClient
	fallback   *Parser
	vocab      *vocab.Vocabulary
	prompt     string
	log        *zap.Logger
	onResolved func(source ResolverSource, err error)
}

// ResolverOption configures an LLMResolver.
type ResolverOption func(*LLMResolver)

// WithLogger sets the logger used for fallback warnings.
func WithLogger(log *zap.Logger) ResolverOption {
	return func(r *LLMResolver) { r.log = log }
}

// WithResolveHook is called after every Resolve with the source that
// produced the command and, for fallbacks, the error that caused it.
func WithResolveHook(fn func(source ResolverSource, err error)) ResolverOption {
	return func(r *LLMResolver) { r.onResolved = fn }
}

// NewLLMResolver creates a resolver backed by client with fallback as the
// canonical parser.
func NewLLMResolver(client llm.LLMClient, fallback *Parser, v *vocab.Vocabulary, opts ...ResolverOption) *LLMResolver {
	r := &LLMResolver{
		client:     client,
		fallback:   fallback,
		vocab:      v,
		prompt:     buildParseSystemPrompt(v),
		log:        zap.NewNop(),
		onResolved: func(ResolverSource, error) {},
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Resolve never returns an error: any failure of the model path is
// answered by the fallback parser.
func (r *LLMResolver) Resolve(ctx context.Context, text string) (*Command, error) {
	cmd, err := r.resolveLLM(ctx, text)
	if err == nil {
		r.onResolved(SourceLLM, nil)
		return cmd, nil
	}

	r.log.Warn("llm resolve failed, using fallback parser", zap.Error(err))
	r.onResolved(SourceFallback, err)
	return r.fallback.Resolve(ctx, text)
}

func (r *LLMResolver) resolveLLM(ctx context.Context, text string) (*Command, error) {
	resp, err := r.client.Generate(ctx, llm.GenerateRequest{
		Task:         llm.TaskParse,
		SystemPrompt: r.prompt,
		UserPrompt:   text,
	})
	if err != nil {
		return nil, fmt.Errorf("llm parse failed: %w", err)
	}

	cmd, err := llm.ExtractJSON[Command](resp.Text, r.validateCommandSchema)
	if err != nil {
		return nil, err
	}

	// The model's own validation_error and assignments are never trusted.
	normalizeCommand(&cmd)
	Finalize(&cmd)
	return &cmd, nil
}

// validateCommandSchema is a schema validator for ExtractJSON. Teams must
// come from the extraction vocabulary, as they do for the Parser.
func (r *LLMResolver) validateCommandSchema(c Command) error {
	if !IsValidIntent(c.Intent) {
		return fmt.Errorf("unknown intent: %q", c.Intent)
	}
	for _, ta := range c.Allocations {
		team := strings.TrimSpace(ta.Team)
		if team == "" {
			return fmt.Errorf("allocation with empty team name")
		}
		if !r.vocab.IsExtractionTeam(team) {
			return fmt.Errorf("unknown team: %q", team)
		}
	}
	return nil
}

// normalizeCommand applies the same shape rules the deterministic extractor
// guarantees: trimmed names, lower-case teams, totals derived from counts.
func normalizeCommand(c *Command) {
	if c.ProjectName != nil {
		name := strings.TrimSpace(*c.ProjectName)
		if name == "" {
			c.ProjectName = nil
		} else {
			c.ProjectName = &name
		}
	}

	var allocs domain.Allocations
	for _, ta := range c.Allocations {
		people := []string{}
		for _, p := range ta.People {
			people = append(people, strings.TrimSpace(p))
		}
		allocs.Set(domain.TeamAllocation{
			Team:   strings.ToLower(strings.TrimSpace(ta.Team)),
			Count:  ta.Count,
			People: people,
		})
	}
	c.Allocations = allocs

	if c.TotalTasks == nil && len(c.Allocations) > 0 {
		sum := c.Allocations.Sum()
		c.TotalTasks = &sum
	}
	if c.Intent != IntentUpdateTask || c.UpdateFields.IsEmpty() {
		c.UpdateFields = nil
	}
}
