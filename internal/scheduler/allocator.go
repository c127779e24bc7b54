package scheduler

import "github.com/alexanderramin/taskpilot/internal/domain"

// Enhance runs the default categorizer's Enhance.
func Enhance(allocs domain.Allocations, descriptions []string) domain.Allocations {
	return categorizer().Enhance(allocs, descriptions)
}

// Enhance fills in per-person assignments for every team that names people.
// When descriptions are given, teams are first derived from categorizing
// them: each bucket becomes a team whose count is the bucket size, reusing
// the people of a matching explicit team. Without descriptions the explicit
// allocations are used as given. The input is never modified.
func (c *Categorizer) Enhance(allocs domain.Allocations, descriptions []string) domain.Allocations {
	source := allocs
	if len(descriptions) > 0 {
		source = allocationsFromBuckets(c.CategorizeBatch(descriptions), allocs)
	}

	out := make(domain.Allocations, 0, len(source))
	for _, ta := range source {
		enhanced := domain.TeamAllocation{
			Team:        ta.Team,
			Count:       ta.Count,
			People:      append([]string{}, ta.People...),
			Assignments: map[string]int{},
		}
		if len(ta.People) > 0 {
			enhanced.Assignments = Distribute(ta.Count, ta.People)
		}
		out = append(out, enhanced)
	}
	return out
}

func allocationsFromBuckets(buckets TaskBuckets, explicit domain.Allocations) domain.Allocations {
	out := make(domain.Allocations, 0, len(buckets))
	for _, b := range buckets {
		ta := domain.TeamAllocation{Team: b.Team, Count: len(b.Tasks)}
		if existing, ok := explicit.Get(b.Team); ok {
			ta.People = existing.People
		}
		out = append(out, ta)
	}
	return out
}

// SuggestAllocation runs the default categorizer's SuggestAllocation.
func SuggestAllocation(total int, teams []string) domain.Allocations {
	return categorizer().SuggestAllocation(total, teams)
}

// SuggestAllocation splits total evenly across teams, or across the
// vocabulary's default teams when none are given, using the same
// base/remainder rule as Distribute.
func (c *Categorizer) SuggestAllocation(total int, teams []string) domain.Allocations {
	if len(teams) == 0 {
		teams = c.defaultTeams
	}

	shares := Distribute(total, teams)
	out := make(domain.Allocations, 0, len(teams))
	for _, team := range teams {
		if out.Has(team) {
			continue
		}
		out = append(out, domain.TeamAllocation{
			Team:        team,
			Count:       shares[team],
			People:      []string{},
			Assignments: map[string]int{},
		})
	}
	return out
}

// Assign runs the default categorizer's Assign.
func Assign(total int, teams []string, members map[string][]string, descriptions []string) (domain.Allocations, int) {
	return categorizer().Assign(total, teams, members, descriptions)
}

// Assign suggests an even split of total across teams, attaches members to
// their teams and distributes each share among them. With descriptions the
// teams come from categorizing them instead and the returned total is the
// number of descriptions.
func (c *Categorizer) Assign(total int, teams []string, members map[string][]string, descriptions []string) (domain.Allocations, int) {
	allocs := c.SuggestAllocation(total, teams)
	for i := range allocs {
		if people, ok := members[allocs[i].Team]; ok {
			allocs[i].People = append([]string{}, people...)
		}
	}
	allocs = c.Enhance(allocs, descriptions)
	if len(descriptions) > 0 {
		total = allocs.Sum()
	}
	return allocs, total
}
