// Package domain defines the core domain models for the reflection service.
package domain

// SessionStatus represents the lifecycle status of a reflection session.
type SessionStatus string

const (
	StatusInProgress    SessionStatus = "in_progress"
	StatusReadyToSubmit SessionStatus = "ready_to_submit"
	StatusSubmitted     SessionStatus = "submitted"
)

// ActiveStatuses are the statuses that count toward the one-active-session-per-team rule.
func ActiveStatuses() []SessionStatus {
	return []SessionStatus{StatusInProgress, StatusReadyToSubmit}
}

// Color is the tri-color classification of a submitted reflection.
type Color string

const (
	ColorGreen  Color = "green"
	ColorYellow Color = "yellow"
	ColorRed    Color = "red"
)

// IntentKind is the controller's directive for the next interviewer message.
type IntentKind string

const (
	IntentClarifyCurrent IntentKind = "clarify_current"
	IntentAdvanceTopic   IntentKind = "advance_topic"
	IntentWrapUp         IntentKind = "wrap_up"
)

// Valid reports whether k is one of the known intent kinds.
func (k IntentKind) Valid() bool {
	switch k {
	case IntentClarifyCurrent, IntentAdvanceTopic, IntentWrapUp:
		return true
	}
	return false
}

// Message roles.
const (
	RoleUser  = "user"
	RoleModel = "model"
)
