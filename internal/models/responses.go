package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// APIResponse is the envelope shared by every endpoint.
type APIResponse struct {
	Success bool     `json:"success"`
	Data    any      `json:"data,omitempty"`
	Error   string   `json:"error,omitempty"`
	Message string   `json:"message,omitempty"`
	Count   *int     `json:"count,omitempty"`
	Details []string `json:"details,omitempty"`
}

// EventStats - GET /events/stats
type EventStats struct {
	Total         int             `json:"total"`
	ByStatus      map[string]int  `json:"by_status"`
	ByCategory    map[string]int  `json:"by_category"`
	TotalCapacity int             `json:"total_capacity"`
	TotalSold     int             `json:"total_sold"`
	Revenue       decimal.Decimal `json:"revenue"`
	OccupancyRate int             `json:"occupancy_rate"`
}

// TicketStats - GET /tickets/stats
type TicketStats struct {
	Total    int            `json:"total"`
	Active   int            `json:"active"`
	Inactive int            `json:"inactive"`
	ByType   map[string]int `json:"by_type"`
}

// PoliciesStats - GET /producers-policies/stats
type PoliciesStats struct {
	TotalProducers     int    `json:"total_producers"`
	WithTerms          int    `json:"with_terms"`
	WithPrivacy        int    `json:"with_privacy"`
	WithRefund         int    `json:"with_refund"`
	CompletePolicies   int    `json:"complete_policies"`
	IncompletePolicies int    `json:"incomplete_policies"`
	CompletionRate     int    `json:"completion_rate"`
	Summary            string `json:"summary"`
	RequestID          string `json:"request_id,omitempty"`
}

// CapacityInfo describes how full an event is.
type CapacityInfo struct {
	Available  int    `json:"available"`
	Percentage int    `json:"percentage"`
	Status     string `json:"status"`
}

// EventDetails - GET /events/:id
type EventDetails struct {
	Event
	Slug           string       `json:"slug"`
	FormattedDate  string       `json:"formatted_date"`
	FormattedPrice string       `json:"formatted_price"`
	CapacityInfo   CapacityInfo `json:"capacity_info"`
	ComputedStatus string       `json:"computed_status"`
}

// TicketDetails - GET /tickets/:id
type TicketDetails struct {
	Ticket
	TicketNumber       string `json:"ticket_number"`
	FormattedCreatedAt string `json:"formatted_created_at"`
	QRData             string `json:"qr_data,omitempty"`
}

// TicketConfig - GET /tickets/config
type TicketConfig struct {
	Version              string `json:"version"`
	MaxTicketsPerRequest int    `json:"max_tickets_per_request"`
	DefaultStatus        string `json:"default_status"`
}

// PolicyPreviews are plain-text excerpts of each policy.
type PolicyPreviews struct {
	TermsPreview   *string `json:"terms_preview"`
	PrivacyPreview *string `json:"privacy_preview"`
	RefundPreview  *string `json:"refund_preview"`
}

type FormattedDates struct {
	CreatedAt string  `json:"created_at"`
	UpdatedAt *string `json:"updated_at"`
}

// PoliciesDetails - GET /producers-policies/:producer_id
type PoliciesDetails struct {
	ProducerPolicies
	Previews       PolicyPreviews `json:"previews"`
	FormattedDates FormattedDates `json:"formatted_dates"`
	RequestID      string         `json:"request_id,omitempty"`
}

// PoliciesResult wraps a mutated policies row with the request id.
type PoliciesResult struct {
	ProducerPolicies
	RequestID string `json:"request_id,omitempty"`
}

// PoliciesList - GET /producers-policies
type PoliciesList struct {
	Policies       []ProducerPolicies `json:"policies"`
	Count          int                `json:"count"`
	FiltersApplied PoliciesFilters    `json:"filters_applied"`
	RequestID      string             `json:"request_id,omitempty"`
}

// PoliciesDeleted - DELETE /producers-policies/:producer_id
type PoliciesDeleted struct {
	ProducerID string    `json:"producer_id"`
	Deleted    bool      `json:"deleted"`
	Timestamp  time.Time `json:"timestamp"`
	RequestID  string    `json:"request_id,omitempty"`
}

// ServiceHealth - GET /producers-policies/health
type ServiceHealth struct {
	Status    string    `json:"status"`
	Service   string    `json:"service"`
	Timestamp time.Time `json:"timestamp"`
	RequestID string    `json:"request_id,omitempty"`
}
