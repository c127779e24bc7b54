package intelligence

import "strings"

// intentTriggers is checked top to bottom and the first intent with a
// matching phrase wins. "update on" must be seen as a status request before
// the bare "update" trigger claims it.
var intentTriggers = []struct {
	intent  IntentKind
	phrases []string
}{
	{IntentGetStatus, []string{"update on", "status", "progress", "how is", "doing", "tell me about"}},
	{IntentUpdateTask, []string{"update", "change status", "mark as", "set completion", "set status"}},
	{IntentCreateProject, []string{"create", "new project", "set up", "add project", "build"}},
	{IntentListProjects, []string{"list", "show all", "all projects", "which projects"}},
	{IntentDeleteProject, []string{"delete", "remove", "drop"}},
	{IntentHelp, []string{"help", "what can you do", "commands", "usage"}},
}

// ClassifyIntent maps text to an intent by case-insensitive phrase matching.
// It never fails; unmatched text is IntentUnknown.
func ClassifyIntent(text string) IntentKind {
	lower := strings.ToLower(text)
	for _, t := range intentTriggers {
		for _, phrase := range t.phrases {
			if strings.Contains(lower, phrase) {
				return t.intent
			}
		}
	}
	return IntentUnknown
}
