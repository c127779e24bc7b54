package intelligence

import (
	"fmt"
	"strings"
)

// HelpExample pairs an intent with a phrasing the parser understands.
type HelpExample struct {
	Intent  IntentKind
	Summary string
	Example string
}

// HelpExamples is shown for HELP and as a hint for UNKNOWN messages.
var HelpExamples = []HelpExample{
	{IntentCreateProject, "create a project and split its tasks",
		"Create Project Alpha with 10 tasks, 7 to frontend (John, Sarah), 3 to backend"},
	{IntentGetStatus, "check progress and risk",
		"How is Project Alpha doing?"},
	{IntentUpdateTask, "record completion, status or delays",
		"Update Project Alpha to 75% completion"},
	{IntentListProjects, "list every project",
		"List all projects"},
	{IntentDeleteProject, "remove a project",
		"Delete Project Alpha"},
}

// FormatHelp renders HelpExamples as a bulleted list.
func FormatHelp() string {
	var b strings.Builder
	b.WriteString("I can help you manage projects:\n")
	for _, ex := range HelpExamples {
		fmt.Fprintf(&b, "- %s: \"%s\"\n", ex.Summary, ex.Example)
	}
	return strings.TrimRight(b.String(), "\n")
}
