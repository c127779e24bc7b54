package importer

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/alexanderramin/taskpilot/internal/scheduler"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const alphaJSON = `{
  "action": "CREATE",
  "project": {
    "name": "Project Alpha",
    "totalTasks": 10,
    "teams": [
      {"teamName": "frontend", "taskCount": 7, "members": [
        {"name": "John", "assignedTasks": 4},
        {"name": "Sarah", "assignedTasks": 3}
      ]},
      {"teamName": "backend", "taskCount": 3, "members": []}
    ]
  }
}`

func validPayload() scheduler.Payload {
	return scheduler.BuildPayload(scheduler.ActionCreate, "Gamma", 4, nil)
}

func TestDecode_SingleAndArray(t *testing.T) {
	single, err := Decode([]byte(alphaJSON))
	require.NoError(t, err)
	require.Len(t, single, 1)
	assert.Equal(t, "Project Alpha", single[0].Project.Name)

	many, err := Decode([]byte("[" + alphaJSON + "," + alphaJSON + "]"))
	require.NoError(t, err)
	assert.Len(t, many, 2)
}

func TestDecode_Errors(t *testing.T) {
	tests := []struct {
		name string
		data string
	}{
		{"empty", "  "},
		{"malformed", `{"project":`},
		{"unknown field", `{"project":{"name":"A","owner":"x"}}`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Decode([]byte(tt.data))
			assert.Error(t, err)
		})
	}
}

func TestLoadFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "alpha.json")
	require.NoError(t, os.WriteFile(path, []byte(alphaJSON), 0o644))

	payloads, err := LoadFile(path)
	require.NoError(t, err)
	require.Len(t, payloads, 1)
	assert.Empty(t, ValidatePayload(payloads[0]))

	_, err = LoadFile(filepath.Join(t.TempDir(), "missing.json"))
	assert.ErrorContains(t, err, "reading import file")
}

func TestValidatePayload(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*scheduler.Payload)
		wantErr string
	}{
		{"valid", func(*scheduler.Payload) {}, ""},
		{"empty action allowed", func(p *scheduler.Payload) { p.Action = "" }, ""},
		{"delete action", func(p *scheduler.Payload) { p.Action = scheduler.ActionDelete }, "only CREATE"},
		{"missing name", func(p *scheduler.Payload) { p.Project.Name = " " }, "project.name is required"},
		{"negative total", func(p *scheduler.Payload) { p.Project.TotalTasks = -1 }, "totalTasks must be >= 0"},
		{"team without name", func(p *scheduler.Payload) {
			p.Project.Teams = []scheduler.PayloadTeam{{TaskCount: 1}}
		}, "teams[0].teamName is required"},
		{"duplicate team", func(p *scheduler.Payload) {
			p.Project.Teams = []scheduler.PayloadTeam{{TeamName: "qa"}, {TeamName: "QA"}}
		}, "is duplicated"},
		{"assignments disagree", func(p *scheduler.Payload) {
			p.Project.Teams = []scheduler.PayloadTeam{{TeamName: "qa", TaskCount: 4, Members: []scheduler.PayloadMember{
				{Name: "Ann", AssignedTasks: 1},
			}}}
		}, "assigned 1 tasks but the team has 4"},
		{"duplicate member", func(p *scheduler.Payload) {
			p.Project.Teams = []scheduler.PayloadTeam{{TeamName: "qa", Members: []scheduler.PayloadMember{
				{Name: "Ann"}, {Name: "Ann"},
			}}}
		}, `"Ann" is duplicated`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := validPayload()
			tt.mutate(&p)
			errs := ValidatePayload(p)
			if tt.wantErr == "" {
				assert.Empty(t, errs)
				return
			}
			require.NotEmpty(t, errs)
			assert.ErrorContains(t, errs[0], tt.wantErr)
		})
	}
}

func TestConvert(t *testing.T) {
	payloads, err := Decode([]byte(alphaJSON))
	require.NoError(t, err)
	now := time.Date(2026, 5, 1, 0, 0, 0, 0, time.UTC)

	p := Convert(payloads[0], now)

	assert.NotEmpty(t, p.ID)
	assert.Equal(t, "Project Alpha", p.Name)
	assert.Equal(t, 10, p.TotalTasks)
	assert.Equal(t, now, p.CreatedAt)
	assert.Equal(t, []string{"frontend", "backend"}, p.Allocations.Teams())
	fe, _ := p.Allocations.Get("frontend")
	assert.Equal(t, map[string]int{"John": 4, "Sarah": 3}, fe.Assignments)
}

func TestConvert_DistributesUnassignedMembers(t *testing.T) {
	p := scheduler.Payload{Project: scheduler.PayloadProject{
		Name: "Gamma",
		Teams: []scheduler.PayloadTeam{{TeamName: "Backend", TaskCount: 5, Members: []scheduler.PayloadMember{
			{Name: "Ann"}, {Name: "Bob"},
		}}},
	}}

	got := Convert(p, time.Now())

	assert.Equal(t, 5, got.TotalTasks, "total falls back to the team sum")
	be, ok := got.Allocations.Get("backend")
	require.True(t, ok)
	assert.Equal(t, map[string]int{"Ann": 3, "Bob": 2}, be.Assignments)
}

func TestConvert_RoundTripsBuildPayload(t *testing.T) {
	payloads, err := Decode([]byte(alphaJSON))
	require.NoError(t, err)

	p := Convert(payloads[0], time.Now())
	again := scheduler.BuildPayload(scheduler.ActionCreate, p.Name, p.TotalTasks, p.Allocations)

	assert.Equal(t, payloads[0], again)
}
