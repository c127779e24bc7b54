package formatter

import (
	"fmt"
	"strings"
)

// FormatShellWelcome renders the banner shown when the shell starts.
func FormatShellWelcome(sessionID string) string {
	var b strings.Builder
	b.WriteString("\n" + StylePurple.Render("  taskpilot") + " " + Dim("session "+sessionID) + "\n")
	b.WriteString(StyleDim.Render("  ─────────────────────────────") + "\n\n")
	examples := [][]string{
		{"Create Project Alpha with 10 tasks", "start a project"},
		{"How is Project Alpha doing?", "status and risk"},
		{"Update it to 75% completion", "change the last project"},
		{"List all projects", "summaries"},
		{"help", "more examples"},
	}
	for _, e := range examples {
		b.WriteString(fmt.Sprintf("  %-40s %s\n", StyleGreen.Render(e[0]), Dim(e[1])))
	}
	b.WriteString("\n" + Dim("  'yes' confirms a held command. 'exit' quits.") + "\n")
	return b.String()
}

// FormatUserLine echoes a user message in the transcript.
func FormatUserLine(text string) string {
	return StylePurple.Render("you") + Dim(" ❯ ") + text
}
