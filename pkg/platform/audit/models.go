package audit

import (
	"context"
	"time"
)

// Action names a registration audit event.
type Action string

const (
	ActionRegistrationSucceeded Action = "registration_succeeded"
	ActionRegistrationFailed    Action = "registration_failed"
	ActionRegistrationRejected  Action = "registration_rejected"
)

// EventCategory classifies audit events by their primary purpose so sinks
// can route and retain them differently.
type EventCategory string

const (
	// CategoryCompliance covers account creation, which has legal significance.
	CategoryCompliance EventCategory = "compliance"
	// CategorySecurity covers failed registrations (username probing, abuse).
	CategorySecurity EventCategory = "security"
	// CategoryOperations covers client-side validation rejections.
	CategoryOperations EventCategory = "operations"
)

var actionCategories = map[Action]EventCategory{
	ActionRegistrationSucceeded: CategoryCompliance,
	ActionRegistrationFailed:    CategorySecurity,
	ActionRegistrationRejected:  CategoryOperations,
}

// Category returns the category of the action. Unknown actions are operations.
func (a Action) Category() EventCategory {
	if cat, ok := actionCategories[a]; ok {
		return cat
	}
	return CategoryOperations
}

// Event is emitted by the registration flow. It never carries passwords.
type Event struct {
	ID        string    `json:"id"`
	Action    Action    `json:"action"`
	Timestamp time.Time `json:"timestamp"`
	SessionID string    `json:"session_id,omitempty"`
	Username  string    `json:"username,omitempty"`
	Country   string    `json:"country,omitempty"`
	Reason    string    `json:"reason,omitempty"`
	RequestID string    `json:"request_id,omitempty"`
	ClientIP  string    `json:"client_ip,omitempty"`
	Device    string    `json:"device,omitempty"`
}

// Category is shorthand for e.Action.Category().
func (e Event) Category() EventCategory {
	return e.Action.Category()
}

// Store persists audit events.
type Store interface {
	Append(ctx context.Context, event Event) error
}
