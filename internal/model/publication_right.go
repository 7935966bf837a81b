package model

import "time"

// PublicationRight represents publication capabilities of a user on a class.
// At most one record exists per (user, class) pair; absence means no rights.
type PublicationRight struct {
	UserID      string    `json:"user_id"`
	ClassID     string    `json:"class_id"`
	CanPublish  bool      `json:"can_publish"`
	CanModerate bool      `json:"can_moderate"`
	GrantedAt   time.Time `json:"granted_at"`
}

// HasAny checks if the record carries at least one capability
func (r *PublicationRight) HasAny() bool {
	return r.CanPublish || r.CanModerate
}

// BulkGrantFailure describes a single failed grant within a bulk operation.
type BulkGrantFailure struct {
	UserID string `json:"user_id"`
	Reason string `json:"reason"`
}

// BulkGrantSummary reports per-user outcomes of a bulk grant. Partial
// success is expected and must be reported, never masked.
type BulkGrantSummary struct {
	Succeeded []string           `json:"succeeded"`
	Failed    []BulkGrantFailure `json:"failed"`
}
