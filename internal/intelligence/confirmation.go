package intelligence

// ExecutionState describes what the caller may do with a resolved command.
type ExecutionState string

const (
	StateExecuted           ExecutionState = "executed"
	StateNeedsConfirmation  ExecutionState = "needs_confirmation"
	StateNeedsClarification ExecutionState = "needs_clarification"
	StateRejected           ExecutionState = "rejected"
)

// ConfirmationPolicy defines when resolved commands may run without asking.
type ConfirmationPolicy struct {
	// ConfirmWrites asks before creates and updates too. Deletes always ask.
	ConfirmWrites bool
}

// DefaultConfirmationPolicy confirms deletes only.
func DefaultConfirmationPolicy() ConfirmationPolicy {
	return ConfirmationPolicy{}
}

// Evaluate determines the execution state for a command.
func (p ConfirmationPolicy) Evaluate(cmd *Command) ExecutionState {
	if !cmd.Valid() {
		return StateRejected
	}
	if NeedsProjectName(cmd.Intent) && cmd.ProjectName == nil {
		return StateNeedsClarification
	}
	if cmd.Intent == IntentDeleteProject {
		return StateNeedsConfirmation
	}
	if p.ConfirmWrites && IsWriteIntent(cmd.Intent) {
		return StateNeedsConfirmation
	}
	return StateExecuted
}

// NeedsProjectName reports whether an intent targets one existing project.
func NeedsProjectName(kind IntentKind) bool {
	switch kind {
	case IntentGetStatus, IntentUpdateTask, IntentDeleteProject:
		return true
	default:
		return false
	}
}
