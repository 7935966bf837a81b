package model

import "time"

// AccessRequestState is the decision state of an access request.
type AccessRequestState string

// Request states. Approved and denied are terminal; re-application
// requires a new request.
const (
	RequestStatePending  AccessRequestState = "pending"
	RequestStateApproved AccessRequestState = "approved"
	RequestStateDenied   AccessRequestState = "denied"
)

// AccessRequest represents a user's token-backed request to gain standing
// with respect to a class.
type AccessRequest struct {
	ID          string             `json:"id"`
	ClassID     string             `json:"class_id"`
	RequesterID string             `json:"requester_id"`
	State       AccessRequestState `json:"state"`
	Note        string             `json:"note"`
	CreatedAt   time.Time          `json:"created_at"`
	DecidedAt   *time.Time         `json:"decided_at"`
}

// IsPending checks if the request awaits a decision
func (r *AccessRequest) IsPending() bool {
	return r.State == RequestStatePending
}

// IsApproved checks if the request was approved
func (r *AccessRequest) IsApproved() bool {
	return r.State == RequestStateApproved
}

// IsDenied checks if the request was denied
func (r *AccessRequest) IsDenied() bool {
	return r.State == RequestStateDenied
}
