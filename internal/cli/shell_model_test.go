package cli

import (
	"context"
	"os"
	"strings"
	"testing"
	"time"

	"github.com/alexanderramin/taskpilot/internal/teatest"
	"github.com/charmbracelet/bubbles/cursor"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// newTestShell builds a shell with a static cursor so the driver can wait
// on real database work without tripping over blink timers.
func newTestShell(t *testing.T, app *App) *teatest.Driver {
	t.Helper()
	m := newShellModel(context.Background(), app, "shell")
	m.input.Cursor.SetMode(cursor.CursorStatic)
	d := teatest.New(t, m, teatest.WithSize(120, 40), teatest.WithCmdTimeout(5*time.Second))
	d.DrainInit()
	return d
}

func shellOf(t *testing.T, d *teatest.Driver) shellModel {
	t.Helper()
	m, ok := d.Model.(shellModel)
	require.True(t, ok)
	return m
}

func lastOutput(t *testing.T, d *teatest.Driver) string {
	t.Helper()
	m := shellOf(t, d)
	require.NotEmpty(t, m.transcript)
	return m.transcript[len(m.transcript)-1]
}

func TestShell_WelcomeAndPrompt(t *testing.T) {
	d := newTestShell(t, testApp(t))

	assert.Contains(t, d.View(), "taskpilot")
	assert.Contains(t, d.View(), "session shell")
	assert.Contains(t, d.View(), "❯")
}

func TestShell_ChatTurns(t *testing.T) {
	d := newTestShell(t, testApp(t))

	d.Submit(createAlpha)
	assert.Contains(t, lastOutput(t, d), "Created Project Alpha with 10 tasks.")
	assert.False(t, shellOf(t, d).waiting)

	d.Submit("Update it to 75% completion")
	assert.Contains(t, lastOutput(t, d), "Updated Project Alpha: completion 75%.")

	d.Submit("list all projects")
	assert.Contains(t, lastOutput(t, d), "You have 1 project:")

	transcript := strings.Join(shellOf(t, d).transcript, "\n")
	assert.Contains(t, transcript, "you ❯ "+createAlpha)
}

func TestShell_ConfirmDelete(t *testing.T) {
	app := testApp(t)
	d := newTestShell(t, app)
	d.Submit(createAlpha)

	d.Submit("Delete Project Alpha")
	assert.Contains(t, lastOutput(t, d), "Are you sure you want to delete Project Alpha?")
	require.NotNil(t, shellOf(t, d).pending)
	assert.Contains(t, d.View(), "confirm (yes/no)")

	d.Submit("yes")
	assert.Contains(t, lastOutput(t, d), "Deleted Project Alpha.")
	assert.Nil(t, shellOf(t, d).pending)

	list, err := app.Projects.List(context.Background())
	require.NoError(t, err)
	assert.Empty(t, list)
}

func TestShell_DeclineDelete(t *testing.T) {
	app := testApp(t)
	d := newTestShell(t, app)
	d.Submit(createAlpha)
	d.Submit("Delete Project Alpha")

	d.Submit("no")
	assert.Contains(t, lastOutput(t, d), "Cancelled.")

	_, err := app.Projects.Find(context.Background(), "Project Alpha")
	assert.NoError(t, err)
}

func TestShell_OtherInputCancelsPending(t *testing.T) {
	d := newTestShell(t, testApp(t))
	d.Submit(createAlpha)
	d.Submit("Delete Project Alpha")

	d.Submit("list all projects")
	m := shellOf(t, d)
	assert.Nil(t, m.pending)
	assert.Contains(t, strings.Join(m.transcript, "\n"), "Cancelled.")
	assert.Contains(t, lastOutput(t, d), "You have 1 project:")
}

func TestShell_Clear(t *testing.T) {
	app := testApp(t)
	d := newTestShell(t, app)
	d.Submit("help")

	d.Submit("clear")
	m := shellOf(t, d)
	assert.Equal(t, []string{"Session cleared."}, m.transcript)

	history, err := app.Conversations.History(context.Background(), "shell")
	require.NoError(t, err)
	assert.Empty(t, history)
}

func TestShell_HistoryNavigation(t *testing.T) {
	app := testApp(t)
	d := newTestShell(t, app)
	d.Submit("help")
	d.Submit("list all projects")

	d.PressUp()
	assert.Equal(t, "list all projects", shellOf(t, d).input.Value())
	d.PressUp()
	assert.Equal(t, "help", shellOf(t, d).input.Value())
	d.PressDown()
	assert.Equal(t, "list all projects", shellOf(t, d).input.Value())
	d.PressDown()
	assert.Empty(t, shellOf(t, d).input.Value())

	raw, err := os.ReadFile(app.HistoryPath)
	require.NoError(t, err)
	assert.Equal(t, "help\nlist all projects\n", string(raw))

	reopened := newShellModel(context.Background(), app, "shell")
	assert.Equal(t, []string{"help", "list all projects"}, reopened.history)
}

func TestShell_Exit(t *testing.T) {
	for _, key := range []string{"exit", "quit"} {
		t.Run(key, func(t *testing.T) {
			d := newTestShell(t, testApp(t))
			d.Submit(key)
			assert.True(t, d.Quitting)
			assert.Contains(t, d.View(), "Goodbye.")
		})
	}

	t.Run("ctrl+c", func(t *testing.T) {
		d := newTestShell(t, testApp(t))
		d.PressCtrlC()
		assert.True(t, d.Quitting)
	})
}
