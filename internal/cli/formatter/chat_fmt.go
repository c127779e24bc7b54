package formatter

import (
	"strings"

	"github.com/alexanderramin/taskpilot/internal/intelligence"
	"github.com/alexanderramin/taskpilot/internal/service"
)

// FormatChat renders an assistant reply, marking replies that need
// something from the user.
func FormatChat(resp *service.ChatResponse) string {
	var b strings.Builder
	switch resp.State {
	case intelligence.StateRejected:
		b.WriteString(StyleRed.Render("✖ ") + resp.Response)
	case intelligence.StateNeedsConfirmation:
		b.WriteString(StyleYellow.Render("? ") + resp.Response)
	case intelligence.StateNeedsClarification:
		b.WriteString(StyleBlue.Render("? ") + resp.Response)
	default:
		b.WriteString(StyleGreen.Render("● ") + resp.Response)
	}
	b.WriteString("\n")
	if resp.Command != nil && len(resp.Command.Allocations) > 0 && resp.State == intelligence.StateExecuted &&
		resp.Intent == intelligence.IntentCreateProject {
		b.WriteString("\n" + FormatAllocations(resp.Command.Allocations))
	}
	return b.String()
}

// FormatIntent renders a short intent label such as "create project".
func FormatIntent(kind intelligence.IntentKind) string {
	return StylePurple.Render(strings.ReplaceAll(strings.ToLower(string(kind)), "_", " "))
}
