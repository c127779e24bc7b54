package intelligence

import (
	"fmt"
	"strings"

	"github.com/alexanderramin/taskpilot/internal/vocab"
)

// parseSystemPromptTemplate instructs the LLM to convert a chat message into
// a Command. %s receives the team vocabulary.
const parseSystemPromptTemplate = `You are a project management command parser.
Convert the user's message into a single JSON object. Output ONLY the JSON object.

Fields:
- intent: one of [GET_STATUS, CREATE_PROJECT, LIST_PROJECTS, UPDATE_TASK, DELETE_PROJECT, HELP, UNKNOWN]
  - GET_STATUS: asking about a project's progress, status or an "update on" it
  - CREATE_PROJECT: creating a project, adding tasks or assigning work
  - LIST_PROJECTS: listing or showing all projects
  - UPDATE_TASK: changing status, completion or delayed tasks of a project
  - DELETE_PROJECT: deleting or removing a project
  - HELP: asking what the assistant can do
- project_name: string or null. Keep the user's wording, e.g. "Project Alpha".
- total_tasks: integer or null
- allocations: object keyed by lower-case team name, each {"count": int, "people": [string]}.
  Teams: %s. Use {} when no team is mentioned. Use [] when no people are named.
- update_fields: for UPDATE_TASK only, {"status": one of [Created, In Progress, Completed, On Hold, Cancelled] or null,
  "completion": integer 0-100 or null, "delayed_tasks": integer or null}; null otherwise.
- validation_error: always null

Rules:
1. Never invent names, counts or people that are not in the message.
2. Use strict JSON numeric literals.
3. No markdown, no explanation.`

func buildParseSystemPrompt(v *vocab.Vocabulary) string {
	return fmt.Sprintf(parseSystemPromptTemplate, strings.Join(v.ExtractionTeams, ", "))
}
