package domain

import (
	"bytes"
	"encoding/json"
	"fmt"
)

// TeamAllocation is a team's share of a project's tasks plus the people
// working them. Assignments maps each person to their task count.
type TeamAllocation struct {
	Team        string
	Count       int
	People      []string
	Assignments map[string]int
}

type teamAllocationJSON struct {
	Count       int            `json:"count"`
	People      []string       `json:"people"`
	Assignments map[string]int `json:"assignments"`
}

// Allocations is an insertion-ordered team -> allocation mapping. It encodes
// as a JSON object whose keys keep the insertion order.
type Allocations []TeamAllocation

// Get returns the allocation for team, if present.
func (a Allocations) Get(team string) (TeamAllocation, bool) {
	for _, ta := range a {
		if ta.Team == team {
			return ta, true
		}
	}
	return TeamAllocation{}, false
}

// Has reports whether team already has an allocation.
func (a Allocations) Has(team string) bool {
	_, ok := a.Get(team)
	return ok
}

// Set replaces the allocation for ta.Team or appends it when absent.
func (a *Allocations) Set(ta TeamAllocation) {
	for i := range *a {
		if (*a)[i].Team == ta.Team {
			(*a)[i] = ta
			return
		}
	}
	*a = append(*a, ta)
}

// Teams returns the team names in insertion order.
func (a Allocations) Teams() []string {
	teams := make([]string, len(a))
	for i, ta := range a {
		teams[i] = ta.Team
	}
	return teams
}

// Sum returns the total task count across all teams.
func (a Allocations) Sum() int {
	total := 0
	for _, ta := range a {
		total += ta.Count
	}
	return total
}

// Clone returns a deep copy so callers can derive new allocations without
// touching the original.
func (a Allocations) Clone() Allocations {
	if a == nil {
		return nil
	}
	out := make(Allocations, len(a))
	for i, ta := range a {
		out[i] = TeamAllocation{Team: ta.Team, Count: ta.Count}
		if ta.People != nil {
			out[i].People = append([]string(nil), ta.People...)
		}
		if ta.Assignments != nil {
			out[i].Assignments = make(map[string]int, len(ta.Assignments))
			for k, v := range ta.Assignments {
				out[i].Assignments[k] = v
			}
		}
	}
	return out
}

func (a Allocations) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, ta := range a {
		if i > 0 {
			buf.WriteByte(',')
		}
		key, err := json.Marshal(ta.Team)
		if err != nil {
			return nil, err
		}
		buf.Write(key)
		buf.WriteByte(':')

		v := teamAllocationJSON{Count: ta.Count, People: ta.People, Assignments: ta.Assignments}
		if v.People == nil {
			v.People = []string{}
		}
		if v.Assignments == nil {
			v.Assignments = map[string]int{}
		}
		val, err := json.Marshal(v)
		if err != nil {
			return nil, err
		}
		buf.Write(val)
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

func (a *Allocations) UnmarshalJSON(data []byte) error {
	if bytes.Equal(bytes.TrimSpace(data), []byte("null")) {
		*a = nil
		return nil
	}

	dec := json.NewDecoder(bytes.NewReader(data))
	tok, err := dec.Token()
	if err != nil {
		return err
	}
	if delim, ok := tok.(json.Delim); !ok || delim != '{' {
		return fmt.Errorf("allocations must be a JSON object")
	}

	out := Allocations{}
	for dec.More() {
		keyTok, err := dec.Token()
		if err != nil {
			return err
		}
		team, ok := keyTok.(string)
		if !ok {
			return fmt.Errorf("allocation key must be a string")
		}
		var v teamAllocationJSON
		if err := dec.Decode(&v); err != nil {
			return fmt.Errorf("decoding allocation %q: %w", team, err)
		}
		out.Set(TeamAllocation{
			Team:        team,
			Count:       v.Count,
			People:      v.People,
			Assignments: v.Assignments,
		})
	}
	if _, err := dec.Token(); err != nil {
		return err
	}
	*a = out
	return nil
}
