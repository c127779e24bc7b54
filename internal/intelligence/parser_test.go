package intelligence

import (
	"context"
	"testing"

	"github.com/alexanderramin/taskpilot/internal/domain"
	"github.com/alexanderramin/taskpilot/internal/vocab"
	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/sync/errgroup"
)

func intPtr(n int) *int { return &n }

func TestParser_CreateWithConsistentAllocations(t *testing.T) {
	got := DefaultParser().Parse("Create Project Alpha with 10 tasks, 5 to frontend, 5 to backend")

	want := &Command{
		Intent:      IntentCreateProject,
		ProjectName: strPtr("Project Alpha"),
		TotalTasks:  intPtr(10),
		Allocations: domain.Allocations{
			{Team: "frontend", Count: 5, People: []string{}, Assignments: map[string]int{}},
			{Team: "backend", Count: 5, People: []string{}, Assignments: map[string]int{}},
		},
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("Parse() mismatch (-want +got):\n%s", diff)
	}
}

func TestParser_CreateWithMismatchedAllocations(t *testing.T) {
	got := DefaultParser().Parse("Create Project X with 10 tasks, 3 to frontend, 3 to backend")

	assert.Equal(t, IntentCreateProject, got.Intent)
	require.NotNil(t, got.ValidationError)
	assert.Contains(t, *got.ValidationError, "mismatch")
	assert.Equal(t, "Allocation mismatch: assigned 6 tasks but total is 10. (3 frontend + 3 backend = 6)", *got.ValidationError)
	assert.Nil(t, got.Allocations[0].Assignments, "invalid commands are not enhanced")
}

func TestParser_UpdateCompletion(t *testing.T) {
	got := DefaultParser().Parse("Update Project A to 75% completion")

	assert.Equal(t, IntentUpdateTask, got.Intent)
	require.NotNil(t, got.UpdateFields)
	require.NotNil(t, got.UpdateFields.Completion)
	assert.Equal(t, 75, *got.UpdateFields.Completion)
	assert.Equal(t, "Project A", got.Name())
	assert.Nil(t, got.ValidationError)
}

func TestParser_UpdateOutOfRangeIsInvalid(t *testing.T) {
	got := DefaultParser().Parse("Update Project A to 150% complete")

	require.NotNil(t, got.ValidationError)
	assert.Equal(t, "Completion must be an integer between 0 and 100.", *got.ValidationError)
}

func TestParser_UpdateHugeDelayedCountIsInvalid(t *testing.T) {
	got := DefaultParser().Parse("Update Project A: 922337203685477581 tasks delayed")

	assert.Equal(t, IntentUpdateTask, got.Intent)
	require.NotNil(t, got.UpdateFields)
	require.NotNil(t, got.ValidationError)
	assert.Equal(t, "Delayed tasks cannot exceed 1000.", *got.ValidationError)
}

func TestParser_UsesVocabularyStatusKeywords(t *testing.T) {
	v, err := vocab.Parse([]byte(`
extraction_teams: [frontend, web]
categories:
  - team: frontend
    keywords: [ui]
status_keywords:
  - phrase: wip
    status: In Progress
  - phrase: shipped
    status: Completed
`))
	require.NoError(t, err)
	p := NewParser(v)

	got := p.Parse("Update Project A to wip")
	require.NotNil(t, got.UpdateFields)
	require.NotNil(t, got.UpdateFields.Status)
	assert.Equal(t, domain.StatusInProgress, *got.UpdateFields.Status)
	assert.Nil(t, got.ValidationError)

	got = p.Parse("Update Project A, shipped")
	require.NotNil(t, got.UpdateFields)
	assert.Equal(t, domain.StatusCompleted, *got.UpdateFields.Status)

	// Phrases from the embedded table are not known to this vocabulary.
	assert.Nil(t, p.Parse("Update Project A to in progress").UpdateFields)
	assert.NotNil(t, DefaultParser().Parse("Update Project A to in progress").UpdateFields)
}

func TestParser_CreateDistributesAmongPeople(t *testing.T) {
	got := DefaultParser().Parse("Create project Beta with 10 tasks: 7 to frontend (John, Sarah) and 3 to the backend team (Mike and Tom)")

	require.Nil(t, got.ValidationError)
	assert.Equal(t, map[string]int{"John": 4, "Sarah": 3}, got.Allocations[0].Assignments)
	assert.Equal(t, map[string]int{"Mike": 2, "Tom": 1}, got.Allocations[1].Assignments)
}

func TestParser_CreateRequiresName(t *testing.T) {
	got := DefaultParser().Parse("create 10 tasks")

	require.NotNil(t, got.ValidationError)
	assert.Equal(t, "Project name cannot be empty.", *got.ValidationError)
}

func TestParser_CreateWithZeroTotalSkipsSumCheck(t *testing.T) {
	got := DefaultParser().Parse("Create Project Zero with 0 tasks, 3 to frontend")
	assert.Nil(t, got.ValidationError)
}

func TestParser_NonCreateStillChecksAllocations(t *testing.T) {
	got := DefaultParser().Parse("status of Project A, 10 tasks, 3 to frontend")

	assert.Equal(t, IntentGetStatus, got.Intent)
	require.NotNil(t, got.ValidationError)
	assert.Contains(t, *got.ValidationError, "mismatch")
}

func TestParser_ReadIntentsCarryNoUpdateFields(t *testing.T) {
	got := DefaultParser().Parse("How is Project Alpha doing with 50% done?")
	assert.Equal(t, IntentGetStatus, got.Intent)
	assert.Nil(t, got.UpdateFields)
}

func TestParser_UnknownNeverFails(t *testing.T) {
	got, err := DefaultParser().Resolve(context.Background(), "¯\\_(ツ)_/¯")
	require.NoError(t, err)
	assert.Equal(t, IntentUnknown, got.Intent)
	assert.Nil(t, got.ProjectName)
	assert.Nil(t, got.ValidationError)
}

func TestParser_Idempotent(t *testing.T) {
	p := DefaultParser()
	in := "Create project Beta with 10 tasks: 7 to frontend (John, Sarah) and 3 to backend"
	if diff := cmp.Diff(p.Parse(in), p.Parse(in)); diff != "" {
		t.Errorf("second parse differs:\n%s", diff)
	}
}

// TestParser_ConcurrentUse checks that shared vocabulary and compiled
// patterns give the same answers under concurrent callers.
func TestParser_ConcurrentUse(t *testing.T) {
	p := DefaultParser()
	inputs := []string{
		"Create Project Alpha with 10 tasks, 5 to frontend, 5 to backend",
		"Create Project X with 10 tasks, 3 to frontend, 3 to backend",
		"Update Project A to 75% completion",
		"assign 4 to Alice and Bob for design",
		"List all projects",
	}
	want := make([]*Command, len(inputs))
	for i, in := range inputs {
		want[i] = p.Parse(in)
	}

	var g errgroup.Group
	results := make([][]*Command, 16)
	for w := range results {
		g.Go(func() error {
			out := make([]*Command, len(inputs))
			for i, in := range inputs {
				out[i] = p.Parse(in)
			}
			results[w] = out
			return nil
		})
	}
	require.NoError(t, g.Wait())

	for w, got := range results {
		if diff := cmp.Diff(want, got); diff != "" {
			t.Errorf("worker %d mismatch (-want +got):\n%s", w, diff)
		}
	}
}
