package models

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
	"time"

	"github.com/shopspring/decimal"
)

func init() {
	// Prices go over the wire as JSON numbers.
	decimal.MarshalJSONWithoutQuotes = true
}

// Event statuses
const (
	EventStatusActive    = "active"
	EventStatusInactive  = "inactive"
	EventStatusSoldOut   = "sold_out"
	EventStatusCancelled = "cancelled"
	// EventStatusCompleted is only ever computed, never stored.
	EventStatusCompleted = "completed"
)

// Event categories
const (
	CategoryConcert    = "concert"
	CategoryTheater    = "theater"
	CategorySports     = "sports"
	CategoryConference = "conference"
	CategoryGeneral    = "general"
)

// Ticket types
const (
	TicketTypeRegular   = "regular"
	TicketTypeVIP       = "vip"
	TicketTypeBackstage = "backstage"
)

const (
	TicketStatusActive = "active"
	DefaultMaxCapacity = 100
)

var (
	EventStatuses   = []string{EventStatusActive, EventStatusInactive, EventStatusSoldOut, EventStatusCancelled}
	EventCategories = []string{CategoryConcert, CategoryTheater, CategorySports, CategoryConference, CategoryGeneral}
	TicketTypes     = []string{TicketTypeRegular, TicketTypeVIP, TicketTypeBackstage}
)

// JSONMap is an open key-value document stored in a jsonb column.
type JSONMap map[string]any

func (m JSONMap) Value() (driver.Value, error) {
	if m == nil {
		return []byte("{}"), nil
	}
	return json.Marshal(m)
}

func (m *JSONMap) Scan(src any) error {
	return scanJSON(src, m)
}

// Event represents an event row
type Event struct {
	ID              int64           `json:"id" db:"id"`
	Title           string          `json:"title" db:"title"`
	Description     *string         `json:"description" db:"description"`
	EventDate       time.Time       `json:"event_date" db:"event_date"`
	Location        string          `json:"location" db:"location"`
	MaxCapacity     int             `json:"max_capacity" db:"max_capacity"`
	CurrentCapacity int             `json:"current_capacity" db:"current_capacity"`
	Price           decimal.Decimal `json:"price" db:"price"`
	Status          string          `json:"status" db:"status"`
	Category        string          `json:"category" db:"category"`
	OrganizerID     *string         `json:"organizer_id" db:"organizer_id"`
	Metadata        JSONMap         `json:"metadata" db:"metadata"`
	CreatedAt       time.Time       `json:"created_at" db:"created_at"`
	UpdatedAt       time.Time       `json:"updated_at" db:"updated_at"`
}

// TicketMetadata is the nested document carried by every ticket.
type TicketMetadata struct {
	EventID    *int64 `json:"event_id"`
	TicketType string `json:"ticket_type,omitempty"`
	CreatedBy  string `json:"created_by,omitempty"`
	Version    string `json:"version,omitempty"`
}

func (m TicketMetadata) Value() (driver.Value, error) {
	return json.Marshal(m)
}

func (m *TicketMetadata) Scan(src any) error {
	return scanJSON(src, m)
}

// Ticket represents a ticket row
type Ticket struct {
	ID        int64          `json:"id" db:"id"`
	Name      string         `json:"name" db:"name"`
	Email     string         `json:"email" db:"email"`
	Phone     *string        `json:"phone" db:"phone"`
	Status    string         `json:"status" db:"status"`
	Metadata  TicketMetadata `json:"metadata" db:"metadata"`
	CreatedAt time.Time      `json:"created_at" db:"created_at"`
	UpdatedAt *time.Time     `json:"updated_at" db:"updated_at"`
}

// Producer is referenced by policies; producers are managed elsewhere.
type Producer struct {
	ID          string     `json:"id" db:"id"`
	Name        string     `json:"name" db:"name"`
	Description *string    `json:"description" db:"description"`
	CreatedAt   time.Time  `json:"created_at" db:"created_at"`
	UpdatedAt   *time.Time `json:"updated_at" db:"updated_at"`
}

// ProducerPolicies is the per-producer legal text bundle.
type ProducerPolicies struct {
	ID                 string     `json:"id" db:"id"`
	ProducerID         string     `json:"producer_id" db:"producer_id"`
	TermsAndConditions *string    `json:"terms_and_conditions" db:"terms_and_conditions"`
	PrivacyPolicy      *string    `json:"privacy_policy" db:"privacy_policy"`
	RefundPolicy       *string    `json:"refund_policy" db:"refund_policy"`
	CreatedAt          time.Time  `json:"created_at" db:"created_at"`
	UpdatedAt          *time.Time `json:"updated_at" db:"updated_at"`
}

// IsComplete reports whether all three policy texts are populated.
func (p *ProducerPolicies) IsComplete() bool {
	return nonEmpty(p.TermsAndConditions) && nonEmpty(p.PrivacyPolicy) && nonEmpty(p.RefundPolicy)
}

func nonEmpty(s *string) bool {
	return s != nil && *s != ""
}

func scanJSON(src any, dst any) error {
	switch v := src.(type) {
	case nil:
		return nil
	case []byte:
		if len(v) == 0 {
			return nil
		}
		return json.Unmarshal(v, dst)
	case string:
		if v == "" {
			return nil
		}
		return json.Unmarshal([]byte(v), dst)
	default:
		return fmt.Errorf("unsupported jsonb source type %T", src)
	}
}
