package intelligence

import (
	"regexp"
	"strconv"
	"strings"

	"github.com/alexanderramin/taskpilot/internal/domain"
)

var (
	completionRes = []*regexp.Regexp{
		regexp.MustCompile(`(?i)(\d+)\s*%?\s*(?:complete|completion|done)`),
		regexp.MustCompile(`(?i)completion\s+(?:to\s+|at\s+|of\s+)?(\d+)`),
	}
	delayedRes = []*regexp.Regexp{
		regexp.MustCompile(`(?i)(\d+)\s+(?:tasks?\s+)?(?:are\s+|is\s+)?delayed`),
		regexp.MustCompile(`(?i)delayed(?:\s+tasks?)?\s+(?:to\s+)?(\d+)`),
	}
)

// ExtractUpdateFields runs the default extractor's update pass over text.
func ExtractUpdateFields(text string) *domain.UpdateFields {
	return extractor().ExtractUpdateFields(text)
}

// ExtractUpdateFields reads completion, status and delayed-task changes out
// of text. The first status keyword of the vocabulary found in text wins.
// It returns nil when nothing was found.
func (e *Extractor) ExtractUpdateFields(text string) *domain.UpdateFields {
	var u domain.UpdateFields

	u.Completion = firstInt(completionRes, text)
	u.DelayedTasks = firstInt(delayedRes, text)

	lower := strings.ToLower(text)
	for _, sk := range e.statusKeywords {
		if strings.Contains(lower, sk.Phrase) {
			status := sk.Status
			u.Status = &status
			break
		}
	}

	if u.IsEmpty() {
		return nil
	}
	return &u
}

func firstInt(patterns []*regexp.Regexp, text string) *int {
	for _, re := range patterns {
		m := re.FindStringSubmatch(text)
		if m == nil {
			continue
		}
		if n, err := strconv.Atoi(m[1]); err == nil {
			return &n
		}
	}
	return nil
}
