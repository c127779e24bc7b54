package domain

// ProjectStatus is the lifecycle state of a stored project.
type ProjectStatus string

const (
	StatusCreated    ProjectStatus = "Created"
	StatusInProgress ProjectStatus = "In Progress"
	StatusCompleted  ProjectStatus = "Completed"
	StatusOnHold     ProjectStatus = "On Hold"
	StatusCancelled  ProjectStatus = "Cancelled"
)

// ProjectStatuses lists every accepted status in display order.
var ProjectStatuses = []ProjectStatus{
	StatusCreated, StatusInProgress, StatusCompleted, StatusOnHold, StatusCancelled,
}

// Valid reports whether s is one of the closed set of project statuses.
func (s ProjectStatus) Valid() bool {
	for _, known := range ProjectStatuses {
		if s == known {
			return true
		}
	}
	return false
}

type RiskLevel string

const (
	RiskLow    RiskLevel = "LOW"
	RiskMedium RiskLevel = "MEDIUM"
	RiskHigh   RiskLevel = "HIGH"
)

type MessageRole string

const (
	RoleUser      MessageRole = "user"
	RoleAssistant MessageRole = "assistant"
)
