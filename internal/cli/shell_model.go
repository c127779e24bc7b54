package cli

import (
	"context"
	"strings"

	"github.com/alexanderramin/taskpilot/internal/cli/formatter"
	"github.com/alexanderramin/taskpilot/internal/intelligence"
	"github.com/alexanderramin/taskpilot/internal/service"
	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
)

const (
	defaultShellWidth  = 80
	defaultShellHeight = 24
)

// chatResultMsg carries the assistant's answer back into Update.
type chatResultMsg struct {
	resp *service.ChatResponse
	err  error
}

// shellModel is the bubbletea model behind `taskpilot shell`: a scrolling
// transcript above a single-line prompt, one chat turn per line.
type shellModel struct {
	ctx       context.Context
	app       *App
	sessionID string

	input    textinput.Model
	viewport viewport.Model
	ready    bool

	transcript []string
	// pending is the last request the assistant held for confirmation.
	pending *service.ChatRequest
	waiting bool

	history     []string
	historyIdx  int
	historyPath string

	quitting bool
}

func newShellModel(ctx context.Context, app *App, sessionID string) shellModel {
	ti := textinput.New()
	ti.Focus()
	ti.Prompt = ""
	ti.CharLimit = 500
	ti.Placeholder = "ask about your projects"

	hist := loadHistory(app.HistoryPath)
	m := shellModel{
		ctx:         ctx,
		app:         app,
		sessionID:   sessionID,
		input:       ti,
		viewport:    viewport.New(defaultShellWidth, defaultShellHeight-2),
		history:     hist,
		historyIdx:  len(hist),
		historyPath: app.HistoryPath,
	}
	m.appendOutput(formatter.FormatShellWelcome(sessionID))
	return m
}

func (m shellModel) Init() tea.Cmd {
	return textinput.Blink
}

func (m shellModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.viewport.Width = msg.Width
		m.viewport.Height = max(msg.Height-2, 1)
		m.input.Width = msg.Width - len(m.promptText()) - 1
		m.ready = true
		m.refreshViewport()
		return m, nil

	case chatResultMsg:
		m.waiting = false
		if msg.err != nil {
			m.appendOutput(formatter.StyleRed.Render("error: ") + msg.err.Error())
			return m, nil
		}
		if msg.resp.State == intelligence.StateNeedsConfirmation {
			req := service.ChatRequest{SessionID: m.sessionID, Message: m.lastUserMessage(), Confirmed: true}
			m.pending = &req
		}
		m.appendOutput(formatter.FormatChat(msg.resp))
		return m, nil

	case tea.KeyMsg:
		switch msg.Type {
		case tea.KeyCtrlC:
			m.quitting = true
			return m, tea.Quit
		case tea.KeyEnter:
			return m.submit()
		case tea.KeyUp:
			m.historyUp()
			return m, nil
		case tea.KeyDown:
			m.historyDown()
			return m, nil
		case tea.KeyPgUp, tea.KeyPgDown:
			var cmd tea.Cmd
			m.viewport, cmd = m.viewport.Update(msg)
			return m, cmd
		}
	}

	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return m, cmd
}

func (m shellModel) View() string {
	if m.quitting {
		return formatter.Dim("Goodbye.") + "\n"
	}
	return m.viewport.View() + "\n" + m.promptText() + m.input.View()
}

func (m shellModel) promptText() string {
	switch {
	case m.waiting:
		return formatter.Dim("thinking… ")
	case m.pending != nil:
		return formatter.StyleYellow.Render("confirm (yes/no)") + formatter.Dim(" ❯ ")
	default:
		return formatter.StylePurple.Render("taskpilot") + formatter.Dim(" ❯ ")
	}
}

func (m shellModel) submit() (tea.Model, tea.Cmd) {
	line := strings.TrimSpace(m.input.Value())
	m.input.Reset()
	if line == "" || m.waiting {
		return m, nil
	}
	m.addHistory(line)
	m.appendOutput(formatter.FormatUserLine(line))

	if m.pending != nil {
		req := *m.pending
		m.pending = nil
		switch strings.ToLower(line) {
		case "y", "yes", "confirm":
			return m.send(req)
		case "n", "no", "cancel":
			m.appendOutput(formatter.Dim("Cancelled."))
			return m, nil
		}
		m.appendOutput(formatter.Dim("Cancelled."))
	}

	switch strings.ToLower(line) {
	case "exit", "quit":
		m.quitting = true
		return m, tea.Quit
	case "clear":
		if err := m.app.Conversations.Clear(m.ctx, m.sessionID); err != nil {
			m.appendOutput(formatter.StyleRed.Render("error: ") + err.Error())
			return m, nil
		}
		m.transcript = nil
		m.appendOutput(formatter.Dim("Session cleared."))
		return m, nil
	}
	return m.send(service.ChatRequest{SessionID: m.sessionID, Message: line})
}

func (m shellModel) send(req service.ChatRequest) (tea.Model, tea.Cmd) {
	m.waiting = true
	ctx, assistant := m.ctx, m.app.Assistant
	return m, func() tea.Msg {
		resp, err := assistant.Chat(ctx, req)
		return chatResultMsg{resp: resp, err: err}
	}
}

// lastUserMessage returns the most recent line the user sent.
func (m *shellModel) lastUserMessage() string {
	if len(m.history) == 0 {
		return ""
	}
	return m.history[len(m.history)-1]
}

func (m *shellModel) appendOutput(text string) {
	m.transcript = append(m.transcript, strings.TrimRight(text, "\n"))
	m.refreshViewport()
}

func (m *shellModel) refreshViewport() {
	m.viewport.SetContent(strings.Join(m.transcript, "\n"))
	m.viewport.GotoBottom()
}

func (m *shellModel) addHistory(line string) {
	m.history = append(m.history, line)
	m.historyIdx = len(m.history)
	appendHistory(m.historyPath, line)
}

func (m *shellModel) historyUp() {
	if m.historyIdx > 0 {
		m.historyIdx--
		m.input.SetValue(m.history[m.historyIdx])
		m.input.CursorEnd()
	}
}

func (m *shellModel) historyDown() {
	if m.historyIdx < len(m.history)-1 {
		m.historyIdx++
		m.input.SetValue(m.history[m.historyIdx])
		m.input.CursorEnd()
		return
	}
	m.historyIdx = len(m.history)
	m.input.Reset()
}
