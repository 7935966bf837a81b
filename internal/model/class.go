package model

import "time"

// ClassState is the lifecycle state of a class.
type ClassState string

// Class lifecycle states. Every class is created in pending_approval;
// inactive and rejected are terminal.
const (
	ClassStatePending  ClassState = "pending_approval"
	ClassStateActive   ClassState = "active"
	ClassStateInactive ClassState = "inactive"
	ClassStateRejected ClassState = "rejected"
)

// ClassRecord represents a school class and its lifecycle state.
type ClassRecord struct {
	ID                string     `json:"id"`
	Name              string     `json:"name"`
	Level             string     `json:"level"`
	State             ClassState `json:"state"`
	EstablishmentID   *string    `json:"establishment_id"`
	ModeratorID       *string    `json:"moderator_id"`
	ActivationCode    string     `json:"activation_code"`
	RejectReason      string     `json:"reject_reason"`
	MotifCode         string     `json:"motif_code"`
	DeactivateComment string     `json:"deactivate_comment"`
	CreatedAt         time.Time  `json:"created_at"`
	UpdatedAt         *time.Time `json:"updated_at"`
}

// IsPending checks if the class is awaiting approval
func (c *ClassRecord) IsPending() bool {
	return c.State == ClassStatePending
}

// IsActive checks if the class is active
func (c *ClassRecord) IsActive() bool {
	return c.State == ClassStateActive
}

// IsTerminal checks if the class reached a state with no outgoing transition
func (c *ClassRecord) IsTerminal() bool {
	return c.State == ClassStateInactive || c.State == ClassStateRejected
}

// ClassFilter defines filter criteria for listing classes.
type ClassFilter struct {
	State    ClassState
	Search   string
	Page     int
	PageSize int
}

// ClassScope narrows a class listing to what the actor is entitled to see.
type ClassScope struct {
	Role            Role
	UserID          string
	EstablishmentID *string
}
