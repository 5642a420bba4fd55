package models

import (
	"bytes"
	"encoding/json"
	"time"

	"github.com/shopspring/decimal"
)

// OptionalString tells apart a missing key, an explicit null and a value.
type OptionalString struct {
	Set   bool
	Valid bool
	Value string
}

// UnmarshalJSON is only called when the key is present in the payload
func (o *OptionalString) UnmarshalJSON(data []byte) error {
	o.Set = true
	if bytes.Equal(bytes.TrimSpace(data), []byte("null")) {
		o.Valid = false
		o.Value = ""
		return nil
	}
	if err := json.Unmarshal(data, &o.Value); err != nil {
		return err
	}
	o.Valid = true
	return nil
}

func (o OptionalString) MarshalJSON() ([]byte, error) {
	if !o.Valid {
		return []byte("null"), nil
	}
	return json.Marshal(o.Value)
}

// Ptr returns nil for a null or missing value.
func (o OptionalString) Ptr() *string {
	if !o.Valid {
		return nil
	}
	v := o.Value
	return &v
}

// NewOptionalString returns a present, non-null value.
func NewOptionalString(v string) OptionalString {
	return OptionalString{Set: true, Valid: true, Value: v}
}

// CreateEventRequest - POST /events payload
type CreateEventRequest struct {
	Title       string           `json:"title"`
	Description *string          `json:"description,omitempty"`
	EventDate   string           `json:"event_date"`
	Location    string           `json:"location"`
	MaxCapacity *int             `json:"max_capacity,omitempty"`
	Price       *decimal.Decimal `json:"price,omitempty"`
	Category    string           `json:"category,omitempty"`
	OrganizerID *string          `json:"organizer_id,omitempty"`
}

// UpdateEventRequest - PUT /events/:id payload, every field optional
type UpdateEventRequest struct {
	Title           *string          `json:"title,omitempty"`
	Description     *string          `json:"description,omitempty"`
	EventDate       *string          `json:"event_date,omitempty"`
	Location        *string          `json:"location,omitempty"`
	MaxCapacity     *int             `json:"max_capacity,omitempty"`
	CurrentCapacity *int             `json:"current_capacity,omitempty"`
	Price           *decimal.Decimal `json:"price,omitempty"`
	Status          *string          `json:"status,omitempty"`
	Category        *string          `json:"category,omitempty"`
	OrganizerID     *string          `json:"organizer_id,omitempty"`
	Metadata        JSONMap          `json:"metadata,omitempty"`
}

// IsEmpty reports whether no mutable field was supplied.
func (r *UpdateEventRequest) IsEmpty() bool {
	return r.Title == nil && r.Description == nil && r.EventDate == nil && r.Location == nil &&
		r.MaxCapacity == nil && r.CurrentCapacity == nil && r.Price == nil && r.Status == nil &&
		r.Category == nil && r.OrganizerID == nil && r.Metadata == nil
}

// EventUpdate is the sanitized, typed form of UpdateEventRequest handed to the store.
type EventUpdate struct {
	Title           *string
	Description     OptionalString
	EventDate       *time.Time
	Location        *string
	MaxCapacity     *int
	CurrentCapacity *int
	Price           *decimal.Decimal
	Status          *string
	Category        *string
	OrganizerID     *string
	Metadata        JSONMap
}

// CreateTicketRequest - POST /tickets payload
type CreateTicketRequest struct {
	Name       string  `json:"name"`
	Email      string  `json:"email"`
	Phone      *string `json:"phone,omitempty"`
	EventID    *int64  `json:"event_id,omitempty"`
	TicketType string  `json:"ticket_type,omitempty"`
}

// UpdateTicketRequest - PUT /tickets/:id payload
type UpdateTicketRequest struct {
	Name       *string `json:"name,omitempty"`
	Email      *string `json:"email,omitempty"`
	Phone      *string `json:"phone,omitempty"`
	Status     *string `json:"status,omitempty"`
	EventID    *int64  `json:"event_id,omitempty"`
	TicketType *string `json:"ticket_type,omitempty"`
}

func (r *UpdateTicketRequest) IsEmpty() bool {
	return r.Name == nil && r.Email == nil && r.Phone == nil && r.Status == nil &&
		r.EventID == nil && r.TicketType == nil
}

// PoliciesRequest - POST /producers-policies payload
type PoliciesRequest struct {
	ProducerID         string  `json:"producer_id"`
	TermsAndConditions *string `json:"terms_and_conditions,omitempty"`
	PrivacyPolicy      *string `json:"privacy_policy,omitempty"`
	RefundPolicy       *string `json:"refund_policy,omitempty"`
}

// PoliciesUpdate - PUT /producers-policies/:producer_id payload.
// A field set to null clears the stored text.
type PoliciesUpdate struct {
	TermsAndConditions OptionalString `json:"terms_and_conditions"`
	PrivacyPolicy      OptionalString `json:"privacy_policy"`
	RefundPolicy       OptionalString `json:"refund_policy"`
}

// Fields lists the names of the supplied fields.
func (u *PoliciesUpdate) Fields() []string {
	var fields []string
	if u.TermsAndConditions.Set {
		fields = append(fields, "terms_and_conditions")
	}
	if u.PrivacyPolicy.Set {
		fields = append(fields, "privacy_policy")
	}
	if u.RefundPolicy.Set {
		fields = append(fields, "refund_policy")
	}
	return fields
}

// EventFilters - query parameters of GET /events
type EventFilters struct {
	Status      string     `json:"status,omitempty"`
	Category    string     `json:"category,omitempty"`
	Location    string     `json:"location,omitempty"`
	OrganizerID string     `json:"organizer_id,omitempty"`
	Query       string     `json:"q,omitempty"`
	DateFrom    *time.Time `json:"date_from,omitempty"`
	DateTo      *time.Time `json:"date_to,omitempty"`
	Limit       *int       `json:"limit,omitempty" validate:"omitempty,min=1"`
	Offset      *int       `json:"offset,omitempty" validate:"omitempty,min=0"`
}

// TicketFilters - query parameters of GET /tickets
type TicketFilters struct {
	Status     string `json:"status,omitempty"`
	TicketType string `json:"ticket_type,omitempty"`
	EventID    *int64 `json:"event_id,omitempty" validate:"omitempty,min=1"`
	Limit      *int   `json:"limit,omitempty" validate:"omitempty,min=1"`
	Offset     *int   `json:"offset,omitempty" validate:"omitempty,min=0"`
}

// PoliciesFilters - query parameters of GET /producers-policies
type PoliciesFilters struct {
	ProducerID string `json:"producer_id,omitempty" validate:"omitempty,uuidv4"`
	HasTerms   *bool  `json:"has_terms,omitempty"`
	HasPrivacy *bool  `json:"has_privacy,omitempty"`
	HasRefund  *bool  `json:"has_refund,omitempty"`
	Limit      *int   `json:"limit,omitempty" validate:"omitempty,min=1,max=1000"`
	Offset     *int   `json:"offset,omitempty" validate:"omitempty,min=0"`
}

// DefaultPageSize applies when an offset is given without a limit.
const DefaultPageSize = 10

// Page resolves limit/offset into concrete values; zero limit means unbounded.
func Page(limit, offset *int) (int, int) {
	l, o := 0, 0
	if limit != nil {
		l = *limit
	}
	if offset != nil {
		o = *offset
	}
	if o > 0 && l == 0 {
		l = DefaultPageSize
	}
	return l, o
}
