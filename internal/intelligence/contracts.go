package intelligence

import (
	"context"

	"github.com/alexanderramin/taskpilot/internal/domain"
)

// IntentKind enumerates the commands the interpreter can produce.
type IntentKind string

const (
	IntentGetStatus     IntentKind = "GET_STATUS"
	IntentCreateProject IntentKind = "CREATE_PROJECT"
	IntentListProjects  IntentKind = "LIST_PROJECTS"
	IntentUpdateTask    IntentKind = "UPDATE_TASK"
	IntentDeleteProject IntentKind = "DELETE_PROJECT"
	IntentHelp          IntentKind = "HELP"
	IntentUnknown       IntentKind = "UNKNOWN"
)

// Intents lists every IntentKind.
var Intents = []IntentKind{
	IntentGetStatus, IntentCreateProject, IntentListProjects,
	IntentUpdateTask, IntentDeleteProject, IntentHelp, IntentUnknown,
}

// IsValidIntent returns true if the given kind is a known intent.
func IsValidIntent(kind IntentKind) bool {
	for _, k := range Intents {
		if k == kind {
			return true
		}
	}
	return false
}

// IsWriteIntent returns true if the intent changes stored projects.
func IsWriteIntent(kind IntentKind) bool {
	switch kind {
	case IntentCreateProject, IntentUpdateTask, IntentDeleteProject:
		return true
	default:
		return false
	}
}

// Command is the structured form of one chat message. Both resolvers
// produce it and nothing mutates it after it is returned.
type Command struct {
	Intent          IntentKind           `json:"intent"`
	ProjectName     *string              `json:"project_name"`
	TotalTasks      *int                 `json:"total_tasks"`
	Allocations     domain.Allocations   `json:"allocations"`
	ValidationError *string              `json:"validation_error"`
	UpdateFields    *domain.UpdateFields `json:"update_fields"`
}

// Name returns the project name or "" when none was given.
func (c *Command) Name() string {
	if c.ProjectName == nil {
		return ""
	}
	return *c.ProjectName
}

// Total returns the task total or 0 when none was given.
func (c *Command) Total() int {
	if c.TotalTasks == nil {
		return 0
	}
	return *c.TotalTasks
}

// Valid reports whether the command carries no validation error.
func (c *Command) Valid() bool {
	return c.ValidationError == nil
}

// Entities are the raw values pulled out of a message before validation.
type Entities struct {
	ProjectName *string
	TotalTasks  *int
	Allocations domain.Allocations
}

// Resolver turns a chat message into a Command.
type Resolver interface {
	Resolve(ctx context.Context, text string) (*Command, error)
}

// ResolverSource records which resolver produced a Command.
type ResolverSource string

const (
	SourceLLM      ResolverSource = "llm"
	SourceFallback ResolverSource = "fallback"
)
