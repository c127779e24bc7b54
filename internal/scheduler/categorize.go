package scheduler

import (
	"strings"
	"sync"

	"github.com/alexanderramin/taskpilot/internal/vocab"
)

// Categorizer assigns free-text task descriptions to teams by keyword score
// and builds allocations over the vocabulary's teams.
type Categorizer struct {
	categories   []vocab.Category
	defaultTeams []string
}

// NewCategorizer builds a Categorizer over the given vocabulary. Category
// order in the vocabulary decides ties.
func NewCategorizer(v *vocab.Vocabulary) *Categorizer {
	return &Categorizer{categories: v.Categories, defaultTeams: v.DefaultTeams}
}

var categorizer = sync.OnceValue(func() *Categorizer {
	return NewCategorizer(vocab.Default())
})

// Categorize returns the team whose keywords appear most often in desc, or
// vocab.GeneralTeam when none match.
func Categorize(desc string) string {
	return categorizer().Categorize(desc)
}

// CategorizeBatch groups descriptions by team.
func CategorizeBatch(descs []string) TaskBuckets {
	return categorizer().CategorizeBatch(descs)
}

func (c *Categorizer) Categorize(desc string) string {
	text := strings.ToLower(desc)

	best, bestScore := vocab.GeneralTeam, 0
	for _, cat := range c.categories {
		score := 0
		for _, kw := range cat.Keywords {
			if strings.Contains(text, kw) {
				score++
			}
		}
		// Strictly greater keeps the earlier team on ties.
		if score > bestScore {
			best, bestScore = cat.Team, score
		}
	}
	return best
}

// TaskBucket is the ordered list of descriptions categorized into one team.
type TaskBucket struct {
	Team  string
	Tasks []string
}

// TaskBuckets keeps teams in the order their first task appeared.
type TaskBuckets []TaskBucket

// Get returns the tasks bucketed under team.
func (b TaskBuckets) Get(team string) []string {
	for _, bucket := range b {
		if bucket.Team == team {
			return bucket.Tasks
		}
	}
	return nil
}

func (c *Categorizer) CategorizeBatch(descs []string) TaskBuckets {
	var buckets TaskBuckets
	index := make(map[string]int)
	for _, desc := range descs {
		team := c.Categorize(desc)
		i, ok := index[team]
		if !ok {
			i = len(buckets)
			index[team] = i
			buckets = append(buckets, TaskBucket{Team: team})
		}
		buckets[i].Tasks = append(buckets[i].Tasks, desc)
	}
	return buckets
}
