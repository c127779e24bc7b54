package intelligence

import (
	"regexp"
	"strconv"
	"strings"
	"sync"

	"github.com/alexanderramin/taskpilot/internal/domain"
	"github.com/alexanderramin/taskpilot/internal/vocab"
)

// nameConnectors end a project name: "Project Alpha with 10 tasks".
var nameConnectors = map[string]bool{
	"with": true, "having": true, "and": true, "to": true, "for": true,
}

var (
	projectNameRe = regexp.MustCompile(`(?i)project(?:\s+(?:named|called))?\s+([A-Za-z0-9][A-Za-z0-9_ -]*)`)
	totalTasksRe  = regexp.MustCompile(`(?i)\b(\d+)\s*(?:tasks?|items?)\b`)
	peopleSplitRe = regexp.MustCompile(`(?i)\s*,\s*|\s+and\s+`)
	namesSplitRe  = regexp.MustCompile(`(?i)\s+and\s+`)
)

// Extractor pulls project entities out of free text. It holds only compiled
// patterns and is safe for concurrent use.
type Extractor struct {
	teamFirst      *regexp.Regexp
	personFirst    *regexp.Regexp
	statusKeywords []vocab.StatusKeyword
}

// NewExtractor compiles the allocation patterns for the vocabulary's
// extraction teams and keeps its status keywords.
func NewExtractor(v *vocab.Vocabulary) *Extractor {
	quoted := make([]string, len(v.ExtractionTeams))
	for i, team := range v.ExtractionTeams {
		quoted[i] = regexp.QuoteMeta(team)
	}
	teams := strings.Join(quoted, "|")

	return &Extractor{
		// <n> [tasks|items] [to|for] [the] <team> [team] [(<people>)]
		teamFirst: regexp.MustCompile(
			`(?i)(\d+)\s*(?:tasks?|items?)?\s*(?:to|for)?\s*(?:the\s+)?(` + teams + `)(?:\s+team)?(?:\s*\(([^)]*)\))?`),
		// assign <n> to <Name> [and <Name>]... for <team>
		personFirst: regexp.MustCompile(
			`(?i:assign)\s+(\d+)\s+(?i:to)\s+([A-Z][a-z]+(?:\s+(?i:and)\s+[A-Z][a-z]+)*)\s+(?i:for)\s+(?i:(` + teams + `))`),
		statusKeywords: v.StatusKeywords,
	}
}

var extractor = sync.OnceValue(func() *Extractor {
	return NewExtractor(vocab.Default())
})

// ExtractEntities runs the default extractor over text.
func ExtractEntities(text string) Entities {
	return extractor().Extract(text)
}

// Extract returns the project name, total and allocations found in text.
// When no total is stated but allocations were found, the total is the sum
// of their counts.
func (e *Extractor) Extract(text string) Entities {
	ent := Entities{
		ProjectName: extractProjectName(text),
		TotalTasks:  extractTotalTasks(text),
		Allocations: e.extractAllocations(text),
	}
	if ent.TotalTasks == nil && len(ent.Allocations) > 0 {
		sum := ent.Allocations.Sum()
		ent.TotalTasks = &sum
	}
	return ent
}

func extractProjectName(text string) *string {
	m := projectNameRe.FindStringSubmatch(text)
	if m == nil {
		return nil
	}

	var kept []string
	for _, word := range strings.Fields(m[1]) {
		if nameConnectors[strings.ToLower(word)] {
			break
		}
		kept = append(kept, word)
	}
	if len(kept) == 0 {
		return nil
	}

	name := strings.Join(kept, " ")
	if !strings.HasPrefix(strings.ToLower(name), "project") {
		name = "Project " + name
	}
	return &name
}

func extractTotalTasks(text string) *int {
	m := totalTasksRe.FindStringSubmatch(text)
	if m == nil {
		return nil
	}
	n, err := strconv.Atoi(m[1])
	if err != nil {
		return nil
	}
	return &n
}

// extractAllocations runs the team-first pass, then lets the person-first
// pass fill in teams the first pass did not find. A team repeated within
// one pass keeps its first position and its last values.
func (e *Extractor) extractAllocations(text string) domain.Allocations {
	var allocs domain.Allocations

	for _, m := range e.teamFirst.FindAllStringSubmatch(text, -1) {
		count, err := strconv.Atoi(m[1])
		if err != nil {
			continue
		}
		allocs.Set(domain.TeamAllocation{
			Team:   strings.ToLower(m[2]),
			Count:  count,
			People: splitNames(peopleSplitRe, m[3]),
		})
	}

	for _, m := range e.personFirst.FindAllStringSubmatch(text, -1) {
		team := strings.ToLower(m[3])
		if allocs.Has(team) {
			continue
		}
		count, err := strconv.Atoi(m[1])
		if err != nil {
			continue
		}
		allocs = append(allocs, domain.TeamAllocation{
			Team:   team,
			Count:  count,
			People: splitNames(namesSplitRe, m[2]),
		})
	}

	return allocs
}

func splitNames(sep *regexp.Regexp, s string) []string {
	people := []string{}
	for _, name := range sep.Split(s, -1) {
		if name = strings.TrimSpace(name); name != "" {
			people = append(people, name)
		}
	}
	return people
}
