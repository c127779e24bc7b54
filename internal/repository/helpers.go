package repository

import (
	"strings"
	"time"
)

// timeLayout is fixed-width so stored timestamps sort lexically.
const timeLayout = "2006-01-02T15:04:05.000000000Z"

func formatTime(t time.Time) string {
	return t.UTC().Format(timeLayout)
}

// parseTime returns the zero time for values that fail to parse.
func parseTime(s string) time.Time {
	t, err := time.Parse(timeLayout, s)
	if err != nil {
		return time.Time{}
	}
	return t
}

// nowUTC returns the current UTC time in storage format.
func nowUTC() string {
	return formatTime(time.Now())
}

// nameKey is the case-insensitive lookup key for a project name.
func nameKey(name string) string {
	return strings.ToLower(strings.TrimSpace(name))
}

var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

// containsPattern builds a LIKE pattern matching fragment anywhere. Use
// with ESCAPE '\'.
func containsPattern(fragment string) string {
	return "%" + likeEscaper.Replace(nameKey(fragment)) + "%"
}
