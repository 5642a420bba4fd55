package models

import "time"

// NATS subjects for activity events
const (
	SubjectEventCreated    = "events.created"
	SubjectEventUpdated    = "events.updated"
	SubjectEventDeleted    = "events.deleted"
	SubjectTicketCreated   = "tickets.created"
	SubjectTicketUpdated   = "tickets.updated"
	SubjectTicketDeleted   = "tickets.deleted"
	SubjectPoliciesCreated = "policies.created"
	SubjectPoliciesUpdated = "policies.updated"
	SubjectPoliciesDeleted = "policies.deleted"
)

// ActivitySubjects lists every subject the API publishes to.
var ActivitySubjects = []string{
	SubjectEventCreated, SubjectEventUpdated, SubjectEventDeleted,
	SubjectTicketCreated, SubjectTicketUpdated, SubjectTicketDeleted,
	SubjectPoliciesCreated, SubjectPoliciesUpdated, SubjectPoliciesDeleted,
}

// ActivityEvent is published after every successful mutation.
type ActivityEvent struct {
	Action     string         `json:"action"`
	ResourceID string         `json:"resource_id"`
	RequestID  string         `json:"request_id,omitempty"`
	Details    map[string]any `json:"details,omitempty"`
	Service    string         `json:"service"`
	Timestamp  time.Time      `json:"timestamp"`
}
