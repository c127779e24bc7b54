// Package validation checks project commands before anything is written.
// Problems are returned as *Error values so callers can report them as data
// instead of aborting the request.
package validation

import (
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/alexanderramin/taskpilot/internal/domain"
)

const (
	MaxNameLength = 100
	MaxTotalTasks = 1000
)

// Error describes the first rule a command violated.
type Error struct {
	Field   string
	Message string
}

func (e *Error) Error() string {
	return e.Message
}

func invalid(field, format string, args ...any) error {
	return &Error{Field: field, Message: fmt.Sprintf(format, args...)}
}

// ValidateProjectCreation checks name, total and allocations in that order and
// returns the first violation, or nil when the project may be created.
func ValidateProjectCreation(name string, totalTasks *int, allocs domain.Allocations) error {
	trimmed := strings.TrimSpace(name)
	if trimmed == "" {
		return invalid("name", "Project name cannot be empty.")
	}
	if utf8.RuneCountInString(trimmed) > MaxNameLength {
		return invalid("name", "Project name cannot exceed %d characters.", MaxNameLength)
	}

	if totalTasks == nil {
		return invalid("total_tasks", "Total tasks must be specified.")
	}
	if *totalTasks < 0 {
		return invalid("total_tasks", "Total tasks must be a non-negative integer.")
	}
	if *totalTasks > MaxTotalTasks {
		return invalid("total_tasks", "Total tasks cannot exceed %d per project.", MaxTotalTasks)
	}

	if len(allocs) > 0 {
		return ValidateAllocations(allocs, *totalTasks)
	}
	return nil
}

// ValidateAllocations checks every team entry, then checks that the counts
// add up to totalTasks. A zero total skips the sum check.
func ValidateAllocations(allocs domain.Allocations, totalTasks int) error {
	allocated := 0
	for _, ta := range allocs {
		if strings.TrimSpace(ta.Team) == "" {
			return invalid("allocations", "Team name cannot be empty.")
		}
		if ta.Count < 0 {
			return invalid("allocations", "Task count for '%s' must be a non-negative integer.", ta.Team)
		}
		if ta.Count == 0 {
			return invalid("allocations", "Task count for '%s' cannot be zero.", ta.Team)
		}
		for _, person := range ta.People {
			if strings.TrimSpace(person) == "" {
				return invalid("allocations", "Invalid person name in '%s' team.", ta.Team)
			}
		}
		allocated += ta.Count
	}

	if totalTasks != 0 && allocated != totalTasks {
		parts := make([]string, len(allocs))
		for i, ta := range allocs {
			parts[i] = fmt.Sprintf("%d %s", ta.Count, ta.Team)
		}
		return invalid("allocations",
			"Allocation mismatch: assigned %d tasks but total is %d. (%s = %d)",
			allocated, totalTasks, strings.Join(parts, " + "), allocated)
	}
	return nil
}

// ValidateProjectUpdate checks each field that is set.
func ValidateProjectUpdate(u *domain.UpdateFields) error {
	if u == nil {
		return nil
	}
	if u.Status != nil && !u.Status.Valid() {
		names := make([]string, len(domain.ProjectStatuses))
		for i, s := range domain.ProjectStatuses {
			names[i] = string(s)
		}
		return invalid("status", "Invalid status '%s'. Must be one of: %s", *u.Status, strings.Join(names, ", "))
	}
	if u.Completion != nil && (*u.Completion < 0 || *u.Completion > 100) {
		return invalid("completion", "Completion must be an integer between 0 and 100.")
	}
	if u.DelayedTasks != nil && *u.DelayedTasks < 0 {
		return invalid("delayed_tasks", "Delayed tasks must be a non-negative integer.")
	}
	if u.DelayedTasks != nil && *u.DelayedTasks > MaxTotalTasks {
		return invalid("delayed_tasks", "Delayed tasks cannot exceed %d.", MaxTotalTasks)
	}
	return nil
}
