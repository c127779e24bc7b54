package scheduler

import "github.com/alexanderramin/taskpilot/internal/domain"

type PayloadAction string

const (
	ActionCreate PayloadAction = "CREATE"
	ActionUpdate PayloadAction = "UPDATE"
	ActionDelete PayloadAction = "DELETE"
)

// Payload is the flattened project description handed to downstream
// consumers (event subscribers, exports).
type Payload struct {
	Action  PayloadAction  `json:"action"`
	Project PayloadProject `json:"project"`
}

type PayloadProject struct {
	Name       string        `json:"name"`
	TotalTasks int           `json:"totalTasks"`
	Teams      []PayloadTeam `json:"teams"`
}

type PayloadTeam struct {
	TeamName  string          `json:"teamName"`
	TaskCount int             `json:"taskCount"`
	Members   []PayloadMember `json:"members"`
}

type PayloadMember struct {
	Name          string `json:"name"`
	AssignedTasks int    `json:"assignedTasks"`
}

// BuildPayload flattens allocations into the team/member payload shape.
// Members without an assignment report zero tasks.
func BuildPayload(action PayloadAction, name string, totalTasks int, allocs domain.Allocations) Payload {
	teams := make([]PayloadTeam, 0, len(allocs))
	for _, ta := range allocs {
		members := make([]PayloadMember, 0, len(ta.People))
		for _, person := range ta.People {
			members = append(members, PayloadMember{
				Name:          person,
				AssignedTasks: ta.Assignments[person],
			})
		}
		teams = append(teams, PayloadTeam{
			TeamName:  ta.Team,
			TaskCount: ta.Count,
			Members:   members,
		})
	}
	return Payload{
		Action: action,
		Project: PayloadProject{
			Name:       name,
			TotalTasks: totalTasks,
			Teams:      teams,
		},
	}
}
